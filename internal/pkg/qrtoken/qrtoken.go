package qrtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrWrongType    = errors.New("unexpected token type")
)

const (
	TypeQRSession   = "qr_session"
	TypeParticipant = "participant"
)

// SessionClaims is the payload embedded in a QR code. The customer scans it
// to reach the negotiation session.
type SessionClaims struct {
	SessionID uuid.UUID  `json:"session_id"`
	VendorID  uuid.UUID  `json:"vendor_id"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	TokenType string     `json:"type"`
	jwt.RegisteredClaims
}

// ParticipantClaims authenticates a single party on the realtime channel
// after validation/join.
type ParticipantClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserType  string    `json:"user_type"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func NewService(secretKey string, tokenDuration time.Duration) *Service {
	return &Service{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

func (s *Service) TokenDuration() time.Duration {
	return s.tokenDuration
}

func (s *Service) GenerateSessionToken(sessionID, vendorID uuid.UUID, productID *uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenDuration)
	claims := SessionClaims{
		SessionID: sessionID,
		VendorID:  vendorID,
		ProductID: productID,
		TokenType: TypeQRSession,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *Service) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TypeQRSession {
		return nil, ErrWrongType
	}

	return claims, nil
}

func (s *Service) GenerateParticipantToken(sessionID, userID uuid.UUID, userType string) (string, error) {
	now := time.Now()
	claims := ParticipantClaims{
		SessionID: sessionID,
		UserID:    userID,
		UserType:  userType,
		TokenType: TypeParticipant,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateParticipantToken(tokenString string) (*ParticipantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ParticipantClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ParticipantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != TypeParticipant {
		return nil, ErrWrongType
	}

	return claims, nil
}

func (s *Service) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return s.secretKey, nil
}
