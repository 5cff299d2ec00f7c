package request

import (
	"strings"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
)

type SendMessageRequest struct {
	Content  string  `json:"content" binding:"required"`
	Type     string  `json:"type,omitempty"`
	AudioURL *string `json:"audioUrl,omitempty"`
}

func (r SendMessageRequest) MessageType() negotiation.MessageType {
	if r.Type == "" {
		return negotiation.MessageText
	}
	return negotiation.MessageType(strings.ToUpper(r.Type))
}

type CompleteNegotiationRequest struct {
	Details string `json:"details" binding:"required"`
}

type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required,min=1"`
}
