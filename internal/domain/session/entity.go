package session

import (
	"errors"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrMissingVendor     = errors.New("vendor id is required")
	ErrMissingLanguage   = errors.New("vendor language is required")
	ErrAlreadyJoined     = errors.New("session already joined")
	ErrSessionTerminal   = errors.New("session is in a terminal status")
	ErrInvalidTransition = errors.New("invalid session status transition")
)

// Session is the QR-issued, time-boxed handle binding a vendor (and later a
// customer) to one negotiation.
type Session struct {
	id               uuid.UUID
	vendorID         uuid.UUID
	productID        *uuid.UUID
	vendorLanguage   lang.Language
	customerLanguage *lang.Language
	status           Status
	createdAt        time.Time
	expiresAt        time.Time
	lastActivityAt   time.Time
}

func NewSession(clk clock.Clock, vendorID uuid.UUID, productID *uuid.UUID, vendorLanguage lang.Language, lifetime time.Duration) (*Session, error) {
	if vendorID == uuid.Nil {
		return nil, ErrMissingVendor
	}
	if vendorLanguage.IsZero() {
		return nil, ErrMissingLanguage
	}

	now := clk.Now()
	return &Session{
		id:             uuid.New(),
		vendorID:       vendorID,
		productID:      productID,
		vendorLanguage: vendorLanguage,
		status:         StatusActive,
		createdAt:      now,
		expiresAt:      now.Add(lifetime),
		lastActivityAt: now,
	}, nil
}

func Reconstruct(
	id, vendorID uuid.UUID,
	productID *uuid.UUID,
	vendorLanguage lang.Language,
	customerLanguage *lang.Language,
	status Status,
	createdAt, expiresAt, lastActivityAt time.Time,
) *Session {
	return &Session{
		id:               id,
		vendorID:         vendorID,
		productID:        productID,
		vendorLanguage:   vendorLanguage,
		customerLanguage: customerLanguage,
		status:           status,
		createdAt:        createdAt,
		expiresAt:        expiresAt,
		lastActivityAt:   lastActivityAt,
	}
}

// HasExpired is the lazy expiry check; callers flip status to EXPIRED as a
// side effect of observing this.
func (s *Session) HasExpired(now time.Time) bool {
	return now.After(s.expiresAt)
}

func (s *Session) IsJoinable() bool {
	return s.status == StatusActive
}

// Join records the customer side. customerLanguage is set at most once,
// exactly when a customer joins.
func (s *Session) Join(customerLanguage lang.Language, now time.Time) error {
	if s.status != StatusActive {
		if s.status == StatusJoined {
			return ErrAlreadyJoined
		}
		return ErrSessionTerminal
	}
	s.status = StatusJoined
	s.customerLanguage = &customerLanguage
	s.lastActivityAt = now
	return nil
}

func (s *Session) Complete(now time.Time) error {
	if !s.status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	s.status = StatusCompleted
	s.lastActivityAt = now
	return nil
}

func (s *Session) Expire() error {
	if s.status.IsTerminal() {
		return ErrInvalidTransition
	}
	s.status = StatusExpired
	return nil
}

func (s *Session) ID() uuid.UUID                    { return s.id }
func (s *Session) VendorID() uuid.UUID              { return s.vendorID }
func (s *Session) ProductID() *uuid.UUID            { return s.productID }
func (s *Session) VendorLanguage() lang.Language    { return s.vendorLanguage }
func (s *Session) CustomerLanguage() *lang.Language { return s.customerLanguage }
func (s *Session) Status() Status                   { return s.status }
func (s *Session) CreatedAt() time.Time             { return s.createdAt }
func (s *Session) ExpiresAt() time.Time             { return s.expiresAt }
func (s *Session) LastActivityAt() time.Time        { return s.lastActivityAt }
