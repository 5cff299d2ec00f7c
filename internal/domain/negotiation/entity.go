package negotiation

import (
	"errors"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"

	"github.com/google/uuid"
)

var (
	ErrRoomClosed         = errors.New("room is in a terminal status")
	ErrCustomerAlreadySet = errors.New("customer already set")
	ErrAlreadyCompleted   = errors.New("negotiation already completed")
)

// Room is the durable conversation ledger paired 1:1 with a session. The room
// log is the single writer for message ordering.
type Room struct {
	id               uuid.UUID
	sessionID        uuid.UUID
	vendorID         uuid.UUID
	customerID       *uuid.UUID
	vendorLanguage   lang.Language
	customerLanguage *lang.Language
	status           RoomStatus
	lastMessageAt    *time.Time
	agreementReached bool
	agreementDetails *string
	createdAt        time.Time
	updatedAt        time.Time
}

// NewRoom creates the WAITING room paired with a freshly generated session.
func NewRoom(sessionID, vendorID uuid.UUID, vendorLanguage lang.Language, now time.Time) *Room {
	return &Room{
		id:             uuid.New(),
		sessionID:      sessionID,
		vendorID:       vendorID,
		vendorLanguage: vendorLanguage,
		status:         RoomWaiting,
		createdAt:      now,
		updatedAt:      now,
	}
}

func ReconstructRoom(
	id, sessionID, vendorID uuid.UUID,
	customerID *uuid.UUID,
	vendorLanguage lang.Language,
	customerLanguage *lang.Language,
	status RoomStatus,
	lastMessageAt *time.Time,
	agreementReached bool,
	agreementDetails *string,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:               id,
		sessionID:        sessionID,
		vendorID:         vendorID,
		customerID:       customerID,
		vendorLanguage:   vendorLanguage,
		customerLanguage: customerLanguage,
		status:           status,
		lastMessageAt:    lastMessageAt,
		agreementReached: agreementReached,
		agreementDetails: agreementDetails,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// AttachCustomer is first-join-wins: customerID is set at most once.
func (r *Room) AttachCustomer(customerID uuid.UUID, customerLanguage lang.Language, now time.Time) error {
	if r.status.IsTerminal() {
		return ErrRoomClosed
	}
	if r.customerID != nil {
		return ErrCustomerAlreadySet
	}
	r.customerID = &customerID
	r.customerLanguage = &customerLanguage
	r.status = RoomActive
	r.updatedAt = now
	return nil
}

// CanAppend reports whether the ledger still accepts messages. Once a room
// is terminal, append attempts are no-ops logged as invariant violations.
func (r *Room) CanAppend() bool {
	return !r.status.IsTerminal()
}

func (r *Room) RecordMessage(at time.Time) {
	r.lastMessageAt = &at
	r.updatedAt = at
}

// Complete is the idempotent terminal transition.
func (r *Room) Complete(details string, now time.Time) error {
	if r.status == RoomCompleted {
		return ErrAlreadyCompleted
	}
	if r.status == RoomAbandoned {
		return ErrRoomClosed
	}
	r.status = RoomCompleted
	r.agreementReached = true
	r.agreementDetails = &details
	r.updatedAt = now
	return nil
}

func (r *Room) Abandon(now time.Time) error {
	if r.status.IsTerminal() {
		return ErrRoomClosed
	}
	r.status = RoomAbandoned
	r.updatedAt = now
	return nil
}

// IsParticipant authorizes realtime room access.
func (r *Room) IsParticipant(userID uuid.UUID) bool {
	if userID == r.vendorID {
		return true
	}
	return r.customerID != nil && *r.customerID == userID
}

// SenderTypeOf derives the side a participant speaks for.
func (r *Room) SenderTypeOf(userID uuid.UUID) (SenderType, bool) {
	if userID == r.vendorID {
		return SenderVendor, true
	}
	if r.customerID != nil && *r.customerID == userID {
		return SenderCustomer, true
	}
	return "", false
}

// LanguagePair returns (from, to) for a message sent by the given side. The
// target falls back to the vendor language while no customer has joined.
func (r *Room) LanguagePair(sender SenderType) (lang.Language, lang.Language) {
	customerLang := r.vendorLanguage
	if r.customerLanguage != nil {
		customerLang = *r.customerLanguage
	}
	if sender == SenderVendor {
		return r.vendorLanguage, customerLang
	}
	return customerLang, r.vendorLanguage
}

func (r *Room) ID() uuid.UUID                    { return r.id }
func (r *Room) SessionID() uuid.UUID             { return r.sessionID }
func (r *Room) VendorID() uuid.UUID              { return r.vendorID }
func (r *Room) CustomerID() *uuid.UUID           { return r.customerID }
func (r *Room) VendorLanguage() lang.Language    { return r.vendorLanguage }
func (r *Room) CustomerLanguage() *lang.Language { return r.customerLanguage }
func (r *Room) Status() RoomStatus               { return r.status }
func (r *Room) LastMessageAt() *time.Time        { return r.lastMessageAt }
func (r *Room) AgreementReached() bool           { return r.agreementReached }
func (r *Room) AgreementDetails() *string        { return r.agreementDetails }
func (r *Room) CreatedAt() time.Time             { return r.createdAt }
func (r *Room) UpdatedAt() time.Time             { return r.updatedAt }
