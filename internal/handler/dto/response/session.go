package response

import (
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/usecase"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type GenerateSessionResponse struct {
	Session      *readmodel.SessionRM `json:"session"`
	Token        string               `json:"token"`
	QRPayloadURL string               `json:"qrPayloadUrl"`
	VendorToken  string               `json:"vendorToken"`
	ExpiresAt    time.Time            `json:"expiresAt"`
}

func FromGenerateResult(r *usecase.GenerateResult) *GenerateSessionResponse {
	return &GenerateSessionResponse{
		Session:      r.Session,
		Token:        r.Token,
		QRPayloadURL: r.QRPayloadURL,
		VendorToken:  r.VendorToken,
		ExpiresAt:    r.ExpiresAt,
	}
}

type ValidateSessionResponse struct {
	Session       *readmodel.SessionRM `json:"session"`
	CustomerID    uuid.UUID            `json:"customerId"`
	CustomerToken string               `json:"customerToken"`
}

func FromValidationResult(r *usecase.ValidationResult) *ValidateSessionResponse {
	return &ValidateSessionResponse{
		Session:       r.Session,
		CustomerID:    r.CustomerID,
		CustomerToken: r.CustomerToken,
	}
}

type JoinSessionResponse struct {
	Session          *readmodel.SessionRM `json:"session"`
	ParticipantToken string               `json:"participantToken"`
}

func FromJoinResult(r *usecase.JoinResult) *JoinSessionResponse {
	return &JoinSessionResponse{
		Session:          r.Session,
		ParticipantToken: r.ParticipantToken,
	}
}
