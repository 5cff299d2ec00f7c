package realtime

import (
	"encoding/json"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type EventType string

// Client → server.
const (
	EventJoinNegotiation     EventType = "join_negotiation"
	EventSendMessage         EventType = "send_message"
	EventTypingStart         EventType = "typing_start"
	EventTypingStop          EventType = "typing_stop"
	EventMarkMessagesRead    EventType = "mark_messages_read"
	EventChangeLanguage      EventType = "change_language"
	EventCompleteNegotiation EventType = "complete_negotiation"
)

// Server → client.
const (
	EventRoomState         EventType = "room_state"
	EventCustomerJoined    EventType = "customer_joined"
	EventNewMessage        EventType = "new_message"
	EventMessageTranslated EventType = "message_translated"
	EventMessagesRead      EventType = "messages_read"
	EventUserTyping        EventType = "user_typing"
	EventSessionUpdate     EventType = "session_update"
	EventAgreementReached  EventType = "agreement_reached"
	EventLanguageChanged   EventType = "language_changed"
	EventUserDisconnected  EventType = "user_disconnected"
	EventServerShutdown    EventType = "server_shutdown"
	EventError             EventType = "error"
)

// Envelope is the wire frame in both directions: a type tag plus a
// type-specific payload.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func marshalEvent(eventType EventType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Data: data})
}

// Inbound payloads.

type JoinPayload struct {
	Limit int `json:"limit,omitempty"`
}

type SendMessagePayload struct {
	Content   string  `json:"content"`
	Type      string  `json:"type,omitempty"`
	AudioData string  `json:"audioData,omitempty"`
	AudioURL  *string `json:"audioUrl,omitempty"`
}

type MarkReadPayload struct {
	MessageIDs []string `json:"messageIds"`
}

type ChangeLanguagePayload struct {
	Language string `json:"language"`
}

type CompletePayload struct {
	Details string `json:"details"`
}

// Outbound payloads.

type RoomStatePayload struct {
	Room     *readmodel.RoomRM     `json:"room"`
	Messages []negotiation.Message `json:"messages"`
}

type CustomerJoinedPayload struct {
	SessionID        uuid.UUID `json:"sessionId"`
	CustomerID       uuid.UUID `json:"customerId"`
	CustomerLanguage string    `json:"customerLanguage,omitempty"`
}

type MessagePayload struct {
	Message *negotiation.Message `json:"message"`
}

type MessagesReadPayload struct {
	MessageIDs []string  `json:"messageIds"`
	ReaderID   uuid.UUID `json:"readerId"`
}

type UserTypingPayload struct {
	UserID   uuid.UUID `json:"userId"`
	UserType string    `json:"userType"`
	Typing   bool      `json:"typing"`
}

type SessionUpdatePayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	Status    string    `json:"status"`
}

type AgreementReachedPayload struct {
	Room *readmodel.RoomRM `json:"room"`
}

type LanguageChangedPayload struct {
	UserID   uuid.UUID `json:"userId"`
	UserType string    `json:"userType"`
	Language string    `json:"language"`
}

type UserDisconnectedPayload struct {
	UserID   uuid.UUID `json:"userId"`
	UserType string    `json:"userType"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
