package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/uday68/VyaparMitra-sub000/internal/pkg/qrtoken"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey    = "user_id"
	ctxUserTypeKey  = "user_type"
	ctxSessionIDKey = "session_id"
)

type ParticipantValidator interface {
	ValidateParticipantToken(tokenString string) (*qrtoken.ParticipantClaims, error)
}

// AuthMiddleware authenticates participant tokens issued at session
// generation (vendor) or validation/join (customer). There are no accounts;
// the token is the whole identity.
type AuthMiddleware struct {
	tokens ParticipantValidator
}

func NewAuthMiddleware(tokens ParticipantValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) RequireParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}
		if token == "" {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Participant token required",
			})
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateParticipantToken(token)
		if err != nil {
			slog.Warn("participant token validation failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUserTypeKey, claims.UserType)
		c.Set(ctxSessionIDKey, claims.SessionID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserType(c *gin.Context) (string, bool) {
	userType, exists := c.Get(ctxUserTypeKey)
	if !exists {
		return "", false
	}
	t, ok := userType.(string)
	return t, ok
}

func GetSessionID(c *gin.Context) (uuid.UUID, bool) {
	sessionID, exists := c.Get(ctxSessionIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := sessionID.(uuid.UUID)
	return id, ok
}
