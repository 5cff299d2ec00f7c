package negotiation

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	ErrEmptyContent      = errors.New("message content is empty")
	ErrInvalidSender     = errors.New("invalid sender type")
	ErrInvalidMsgType    = errors.New("invalid message type")
	ErrUpgradeNotPending = errors.New("translation upgrade on non-pending message")
)

// Message is the canonical message record shared by the store, the realtime
// hub and the translation pipeline. Messages are append-only; only Content
// and TranslationStatus change after append, during a translation upgrade.
//
// IDs are ULIDs so that lexicographic order matches append order.
type Message struct {
	ID                string            `json:"id"`
	SessionID         uuid.UUID         `json:"sessionId"`
	SenderID          uuid.UUID         `json:"senderId"`
	SenderType        SenderType        `json:"senderType"`
	Content           string            `json:"content"`
	OriginalContent   string            `json:"originalContent"`
	Language          lang.Language     `json:"language"`
	TargetLanguage    lang.Language     `json:"targetLanguage"`
	Type              MessageType       `json:"type"`
	TranslationStatus TranslationStatus `json:"translationStatus"`
	AudioURL          *string           `json:"audioUrl,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
	DeliveredAt       *time.Time        `json:"deliveredAt,omitempty"`
	ReadAt            *time.Time        `json:"readAt,omitempty"`
}

// NewMessage assigns the id and timestamp and seeds Content from
// OriginalContent. Translation is PENDING unless source and target languages
// coincide, in which case it is NOT_REQUIRED.
func NewMessage(
	sessionID, senderID uuid.UUID,
	senderType SenderType,
	content string,
	language, targetLanguage lang.Language,
	msgType MessageType,
	audioURL *string,
	now time.Time,
) (*Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if !senderType.IsValid() {
		return nil, ErrInvalidSender
	}
	if !msgType.IsValid() {
		return nil, ErrInvalidMsgType
	}

	status := TranslationPending
	if language == targetLanguage || targetLanguage.IsZero() {
		status = TranslationNotRequired
	}

	return &Message{
		ID:                ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		SessionID:         sessionID,
		SenderID:          senderID,
		SenderType:        senderType,
		Content:           content,
		OriginalContent:   content,
		Language:          language,
		TargetLanguage:    targetLanguage,
		Type:              msgType,
		TranslationStatus: status,
		AudioURL:          audioURL,
		Timestamp:         now,
	}, nil
}

// ApplyTranslation overwrites Content in place. Valid exactly once, from
// PENDING.
func (m *Message) ApplyTranslation(translated string) error {
	if m.TranslationStatus != TranslationPending {
		return ErrUpgradeNotPending
	}
	m.Content = translated
	m.TranslationStatus = TranslationCompleted
	return nil
}

// FailTranslation leaves the original content visible and marks the message
// FAILED. Valid exactly once, from PENDING.
func (m *Message) FailTranslation() error {
	if m.TranslationStatus != TranslationPending {
		return ErrUpgradeNotPending
	}
	m.TranslationStatus = TranslationFailed
	return nil
}
