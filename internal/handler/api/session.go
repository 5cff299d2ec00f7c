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
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionUseCase usecase.SessionUseCase
}

func NewSessionHandler(sessionUseCase usecase.SessionUseCase) *SessionHandler {
	return &SessionHandler{
		sessionUseCase: sessionUseCase,
	}
}

// GenerateSession mints a new QR session for a vendor. The response carries
// the QR payload URL to render and the vendor's own participant token.
func (h *SessionHandler) GenerateSession(c *gin.Context) {
	var req reqdto.GenerateSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	vendorLang, err := req.Language()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported vendor language",
		})
		return
	}

	result, err := h.sessionUseCase.Generate(c.Request.Context(), req.VendorID, req.ProductID, vendorLang)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusCreated, resdto.FromGenerateResult(result))
}

// ValidateSession checks a scanned QR token and mints a customer identity
// for the scanner. The customer is not a participant until they join.
func (h *SessionHandler) ValidateSession(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Token query parameter required",
		})
		return
	}

	result, err := h.sessionUseCase.Validate(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid session token",
			})
		case errors.Is(err, errs.ErrSessionExpired):
			c.JSON(http.StatusGone, gin.H{
				"error": "Session has expired",
			})
		case errors.Is(err, errs.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromValidationResult(result))
}

// JoinSession claims the customer seat on a session. First scanner wins;
// later attempts get a conflict.
func (h *SessionHandler) JoinSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid session ID format",
		})
		return
	}

	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.JoinSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	customerLang, err := req.Language()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported customer language",
		})
		return
	}

	result, err := h.sessionUseCase.Join(c.Request.Context(), sessionID, customerID, customerLang)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
			})
		case errors.Is(err, errs.ErrSessionExpired):
			c.JSON(http.StatusGone, gin.H{
				"error": "Session has expired",
			})
		case errors.Is(err, errs.ErrJoinConflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Session already has a customer",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromJoinResult(result))
}
