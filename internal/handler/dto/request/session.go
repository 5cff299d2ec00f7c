package request

import (
	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"

	"github.com/google/uuid"
)

type GenerateSessionRequest struct {
	VendorID       uuid.UUID  `json:"vendorId" binding:"required"`
	ProductID      *uuid.UUID `json:"productId,omitempty"`
	VendorLanguage string     `json:"vendorLanguage" binding:"required"`
}

func (r GenerateSessionRequest) Language() (lang.Language, error) {
	return lang.New(r.VendorLanguage)
}

type JoinSessionRequest struct {
	CustomerLanguage string `json:"customerLanguage" binding:"required"`
}

func (r JoinSessionRequest) Language() (lang.Language, error) {
	return lang.New(r.CustomerLanguage)
}
