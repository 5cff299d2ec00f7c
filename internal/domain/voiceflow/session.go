package voiceflow

import (
	"errors"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"

	"github.com/google/uuid"
)

var (
	ErrSessionCompleted = errors.New("workflow session already completed")
	ErrMissingQuantity  = errors.New("quantity intent without quantity entity")
	ErrMissingPrice     = errors.New("price intent without price entity")
)

// ProductDraft is the partial product assembled across the flow.
type ProductDraft struct {
	PhotoRef *string  `json:"photoRef,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

// TransitionInput carries the entities a transition may consume.
type TransitionInput struct {
	PhotoRef    *string
	ProductName *string
	Quantity    *float64
	Unit        *string
	Price       *float64
}

// Session is the ephemeral, TTL-refreshed state-machine instance. It is
// exclusively owned by the invoking user and never shared.
type Session struct {
	SessionID uuid.UUID     `json:"sessionId"`
	UserID    uuid.UUID     `json:"userId"`
	Language  lang.Language `json:"language"`
	State     State         `json:"state"`
	Data      ProductDraft  `json:"data"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func NewSession(userID uuid.UUID, language lang.Language, ttl time.Duration, now time.Time) *Session {
	return &Session{
		SessionID: uuid.New(),
		UserID:    userID,
		Language:  language,
		State:     StatePhotoCapture,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Advance applies one intent: resolves the transition, applies its data
// effect and refreshes the sliding TTL.
func (s *Session) Advance(intent Intent, in TransitionInput, ttl time.Duration, now time.Time) error {
	if s.State.IsTerminal() {
		return ErrSessionCompleted
	}

	next, err := Next(s.State, intent)
	if err != nil {
		return err
	}

	switch {
	case s.State == StatePhotoCapture && intent == IntentPhotoCaptured:
		s.Data.PhotoRef = in.PhotoRef
	case intent == IntentRetake:
		s.Data.PhotoRef = nil
	case intent == IntentQuantityGiven:
		if in.Quantity == nil {
			return ErrMissingQuantity
		}
		s.Data.Quantity = in.Quantity
		s.Data.Unit = in.Unit
	case intent == IntentPriceGiven:
		if in.Price == nil {
			return ErrMissingPrice
		}
		s.Data.Price = in.Price
	}
	if in.ProductName != nil {
		s.Data.Name = in.ProductName
	}

	s.State = next
	s.ExpiresAt = now.Add(ttl)
	return nil
}

func (s *Session) HasExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
