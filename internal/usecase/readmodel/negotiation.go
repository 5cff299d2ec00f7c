package readmodel

import (
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"

	"github.com/google/uuid"
)

type RoomRM struct {
	ID               uuid.UUID  `json:"id"`
	SessionID        uuid.UUID  `json:"sessionId"`
	VendorID         uuid.UUID  `json:"vendorId"`
	CustomerID       *uuid.UUID `json:"customerId,omitempty"`
	VendorLanguage   string     `json:"vendorLanguage"`
	CustomerLanguage *string    `json:"customerLanguage,omitempty"`
	Status           string     `json:"status"`
	LastMessageAt    *time.Time `json:"lastMessageAt,omitempty"`
	AgreementReached bool       `json:"agreementReached"`
	AgreementDetails *string    `json:"agreementDetails,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func NewRoomRM(r *negotiation.Room) *RoomRM {
	rm := &RoomRM{
		ID:               r.ID(),
		SessionID:        r.SessionID(),
		VendorID:         r.VendorID(),
		CustomerID:       r.CustomerID(),
		VendorLanguage:   r.VendorLanguage().String(),
		Status:           r.Status().String(),
		LastMessageAt:    r.LastMessageAt(),
		AgreementReached: r.AgreementReached(),
		AgreementDetails: r.AgreementDetails(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
	if l := r.CustomerLanguage(); l != nil {
		v := l.String()
		rm.CustomerLanguage = &v
	}
	return rm
}

// RoomSnapshotRM is the room plus its recent history, served to a client
// joining the realtime channel.
type RoomSnapshotRM struct {
	Room     *RoomRM               `json:"room"`
	Messages []negotiation.Message `json:"messages"`
}
