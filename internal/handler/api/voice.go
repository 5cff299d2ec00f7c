package api

import (
	"errors"
	"net/http"

	reqdto "github.com/uday68/VyaparMitra-sub000/internal/handler/dto/request"
	resdto "github.com/uday68/VyaparMitra-sub000/internal/handler/dto/response"
	"github.com/uday68/VyaparMitra-sub000/internal/handler/middleware"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"

	"github.com/gin-gonic/gin"
)

type VoiceHandler struct {
	voiceUseCase usecase.VoiceUseCase
}

func NewVoiceHandler(voiceUseCase usecase.VoiceUseCase) *VoiceHandler {
	return &VoiceHandler{
		voiceUseCase: voiceUseCase,
	}
}

// HandleUtterance processes one voice turn, text or base64 audio, and
// answers with the recognized intent plus the next workflow prompt.
func (h *VoiceHandler) HandleUtterance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.UtteranceRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	audio, err := req.AudioBytes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Audio must be base64 encoded",
		})
		return
	}

	rm, err := h.voiceUseCase.HandleUtterance(c.Request.Context(), usecase.UtteranceInput{
		UserID:       userID,
		Text:         req.Text,
		Audio:        audio,
		LanguageHint: req.LanguageHint(),
		PhotoRef:     req.PhotoRef,
		WantAudio:    req.WantAudio,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSpeechUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Speech recognition unavailable",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromUtteranceRM(rm))
}
