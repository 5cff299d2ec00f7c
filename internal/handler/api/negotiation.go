package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "github.com/uday68/VyaparMitra-sub000/internal/handler/dto/request"
	resdto "github.com/uday68/VyaparMitra-sub000/internal/handler/dto/response"
	"github.com/uday68/VyaparMitra-sub000/internal/handler/middleware"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 50

type NegotiationHandler struct {
	negotiationUseCase usecase.NegotiationUseCase
}

func NewNegotiationHandler(negotiationUseCase usecase.NegotiationUseCase) *NegotiationHandler {
	return &NegotiationHandler{
		negotiationUseCase: negotiationUseCase,
	}
}

// GetSnapshot returns the room plus its recent messages in one read, the
// state a client needs to render the conversation after a reconnect.
func (h *NegotiationHandler) GetSnapshot(c *gin.Context) {
	sessionID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	snapshot, err := h.negotiationUseCase.Snapshot(c.Request.Context(), sessionID, userID, historyLimit(c))
	if err != nil {
		h.abortWithRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSnapshotRM(snapshot))
}

// SendMessage appends a message over REST. Translation happens async; the
// returned message carries its initial translation status.
func (h *NegotiationHandler) SendMessage(c *gin.Context) {
	sessionID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req reqdto.SendMessageRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	msg, err := h.negotiationUseCase.SendMessage(c.Request.Context(), usecase.SendMessageInput{
		SessionID: sessionID,
		SenderID:  userID,
		Content:   req.Content,
		Type:      req.MessageType(),
		AudioURL:  req.AudioURL,
	})
	if err != nil {
		h.abortWithRoomError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromMessage(msg))
}

// CompleteNegotiation records the final agreement. Exactly one completion
// wins; the loser gets a conflict.
func (h *NegotiationHandler) CompleteNegotiation(c *gin.Context) {
	sessionID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req reqdto.CompleteNegotiationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	room, err := h.negotiationUseCase.Complete(c.Request.Context(), sessionID, userID, req.Details)
	if err != nil {
		h.abortWithRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromRoomRM(room))
}

func (h *NegotiationHandler) GetHistory(c *gin.Context) {
	sessionID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	messages, err := h.negotiationUseCase.History(c.Request.Context(), sessionID, userID, historyLimit(c))
	if err != nil {
		h.abortWithRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromMessages(messages))
}

func (h *NegotiationHandler) MarkRead(c *gin.Context) {
	sessionID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req reqdto.MarkReadRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.negotiationUseCase.MarkRead(c.Request.Context(), sessionID, userID, req.MessageIDs); err != nil {
		h.abortWithRoomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"marked": len(req.MessageIDs),
	})
}

// identity resolves the room and caller from the route and the participant
// token, cross-checking that the token was minted for this session.
func (h *NegotiationHandler) identity(c *gin.Context) (sessionID, userID uuid.UUID, ok bool) {
	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid session ID format",
		})
		return uuid.Nil, uuid.Nil, false
	}

	userID, found := middleware.GetUserID(c)
	if !found {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return uuid.Nil, uuid.Nil, false
	}

	if tokenSession, found := middleware.GetSessionID(c); found && tokenSession != sessionID {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Token was issued for a different session",
		})
		return uuid.Nil, uuid.Nil, false
	}

	return sessionID, userID, true
}

func (h *NegotiationHandler) abortWithRoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Negotiation room not found",
		})
	case errors.Is(err, errs.ErrUnauthorizedRoomAccess):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not a participant of this negotiation",
		})
	case errors.Is(err, errs.ErrRoomClosed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Negotiation room is closed",
		})
	case errors.Is(err, errs.ErrCompletionConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Negotiation already completed",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func historyLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}
