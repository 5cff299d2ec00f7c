package readmodel

import (
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/session"

	"github.com/google/uuid"
)

type SessionRM struct {
	ID               uuid.UUID  `json:"id"`
	VendorID         uuid.UUID  `json:"vendorId"`
	ProductID        *uuid.UUID `json:"productId,omitempty"`
	VendorLanguage   string     `json:"vendorLanguage"`
	CustomerLanguage *string    `json:"customerLanguage,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	LastActivityAt   time.Time  `json:"lastActivityAt"`
}

func NewSessionRM(s *session.Session) *SessionRM {
	rm := &SessionRM{
		ID:             s.ID(),
		VendorID:       s.VendorID(),
		ProductID:      s.ProductID(),
		VendorLanguage: s.VendorLanguage().String(),
		Status:         s.Status().String(),
		CreatedAt:      s.CreatedAt(),
		ExpiresAt:      s.ExpiresAt(),
		LastActivityAt: s.LastActivityAt(),
	}
	if l := s.CustomerLanguage(); l != nil {
		v := l.String()
		rm.CustomerLanguage = &v
	}
	return rm
}
