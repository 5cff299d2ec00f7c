package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/session"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/qrtoken"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"
	"github.com/uday68/VyaparMitra-sub000/internal/voice"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const opTimeout = 10 * time.Second

type TokenValidator interface {
	ValidateParticipantToken(tokenString string) (*qrtoken.ParticipantClaims, error)
}

// Hub fans events out to the clients of each negotiation session. One topic
// per session; a client enters its topic on join_negotiation and leaves on
// disconnect.
type Hub struct {
	mu     sync.RWMutex
	topics map[uuid.UUID]map[*Client]struct{}
	// announced tracks customer ids already introduced per session, so a
	// reconnecting customer replays the snapshot without re-notifying peers.
	announced    map[uuid.UUID]map[uuid.UUID]struct{}
	closed       bool
	negotiations usecase.NegotiationUseCase
	tokens       TokenValidator
	stt          voice.SpeechToText
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

func NewHub(negotiations usecase.NegotiationUseCase, tokens TokenValidator, stt voice.SpeechToText, logger *slog.Logger) *Hub {
	return &Hub{
		topics:       make(map[uuid.UUID]map[*Client]struct{}),
		announced:    make(map[uuid.UUID]map[uuid.UUID]struct{}),
		negotiations: negotiations,
		tokens:       tokens,
		stt:          stt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin is enforced by the CORS layer in front of the upgrade.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeWS authenticates the participant token and upgrades the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Sec-WebSocket-Protocol")
	}
	claims, err := h.tokens.ValidateParticipantToken(token)
	if err != nil {
		http.Error(w, "invalid participant token", http.StatusUnauthorized)
		return
	}

	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h, conn, claims.SessionID, claims.UserID, claims.UserType)
	go client.writePump()
	go client.readPump()
}

func (h *Hub) handleFrame(c *Client, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		h.sendError(c, "BAD_FRAME", "malformed event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	switch envelope.Type {
	case EventJoinNegotiation:
		h.handleJoin(ctx, c, envelope.Data)
	case EventSendMessage:
		h.handleSendMessage(ctx, c, envelope.Data)
	case EventTypingStart, EventTypingStop:
		h.handleTyping(c, envelope.Type == EventTypingStart)
	case EventMarkMessagesRead:
		h.handleMarkRead(ctx, c, envelope.Data)
	case EventChangeLanguage:
		h.handleChangeLanguage(c, envelope.Data)
	case EventCompleteNegotiation:
		h.handleComplete(ctx, c, envelope.Data)
	default:
		h.sendError(c, "UNKNOWN_EVENT", "unsupported event type")
	}
}

// handleJoin subscribes the client to its session topic and replays the room
// snapshot. A customer's first attach announces itself to the peers already
// there; reconnects replay the snapshot silently.
func (h *Hub) handleJoin(ctx context.Context, c *Client, data json.RawMessage) {
	var payload JoinPayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &payload)
	}

	snapshot, err := h.negotiations.Snapshot(ctx, c.sessionID, c.userID, payload.Limit)
	if err != nil {
		h.sendError(c, errorCode(err), err.Error())
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	topic, ok := h.topics[c.sessionID]
	if !ok {
		topic = make(map[*Client]struct{})
		h.topics[c.sessionID] = topic
	}
	topic[c] = struct{}{}
	c.joined = true
	firstAttach := false
	if c.userType == usecase.UserTypeCustomer {
		seen, ok := h.announced[c.sessionID]
		if !ok {
			seen = make(map[uuid.UUID]struct{})
			h.announced[c.sessionID] = seen
		}
		if _, done := seen[c.userID]; !done {
			seen[c.userID] = struct{}{}
			firstAttach = true
		}
	}
	if snapshot.Room.CustomerLanguage != nil && c.userType == usecase.UserTypeCustomer {
		c.language = lang.Language(*snapshot.Room.CustomerLanguage)
	} else {
		c.language = lang.Language(snapshot.Room.VendorLanguage)
	}
	h.mu.Unlock()

	h.sendEvent(c, EventRoomState, RoomStatePayload{Room: snapshot.Room, Messages: snapshot.Messages})

	if firstAttach {
		customerLanguage := ""
		if snapshot.Room.CustomerLanguage != nil {
			customerLanguage = *snapshot.Room.CustomerLanguage
		}
		h.broadcast(c.sessionID, EventCustomerJoined, CustomerJoinedPayload{
			SessionID:        c.sessionID,
			CustomerID:       c.userID,
			CustomerLanguage: customerLanguage,
		}, c)
		h.broadcast(c.sessionID, EventSessionUpdate, SessionUpdatePayload{
			SessionID: c.sessionID,
			Status:    session.StatusJoined.String(),
		}, c)
	}
}

func (h *Hub) handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	if !h.requireJoined(c) {
		return
	}
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(c, "BAD_FRAME", "malformed send_message payload")
		return
	}

	msgType := negotiation.MessageType(payload.Type)
	if payload.Type == "" {
		msgType = negotiation.MessageText
	}

	content := payload.Content
	if msgType == negotiation.MessageVoice && content == "" && payload.AudioData != "" {
		transcript, ok := h.transcribe(ctx, c, payload.AudioData)
		if !ok {
			return
		}
		content = transcript
	}

	message, err := h.negotiations.SendMessage(ctx, usecase.SendMessageInput{
		SessionID: c.sessionID,
		SenderID:  c.userID,
		Content:   content,
		Type:      msgType,
		AudioURL:  payload.AudioURL,
	})
	if err != nil {
		if errors.Is(err, errs.ErrRoomClosed) {
			h.logger.Warn("append to closed room ignored",
				"session_id", c.sessionID, "user_id", c.userID)
		}
		h.sendError(c, errorCode(err), err.Error())
		return
	}

	// A connected peer receives the frame right away, so stamp delivery
	// before fanning out. Failure to stamp never blocks the message.
	if h.hasPeer(c.sessionID, c) {
		if at, err := h.negotiations.MarkDelivered(ctx, c.sessionID, message.ID); err != nil {
			h.logger.Warn("failed to stamp message delivery",
				"session_id", c.sessionID, "message_id", message.ID, "error", err)
		} else {
			message.DeliveredAt = &at
		}
	}

	h.broadcast(c.sessionID, EventNewMessage, MessagePayload{Message: message}, nil)
}

func (h *Hub) hasPeer(sessionID uuid.UUID, except *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[sessionID] {
		if c != except {
			return true
		}
	}
	return false
}

// transcribe resolves a voice frame's audio into text. Speech failure is
// non-fatal for the room: only the sender is told, and text messaging keeps
// working.
func (h *Hub) transcribe(ctx context.Context, c *Client, audioData string) (string, bool) {
	if h.stt == nil {
		h.sendError(c, "SPEECH_UNAVAILABLE", "speech recognition is not configured")
		return "", false
	}
	audio, err := base64.StdEncoding.DecodeString(audioData)
	if err != nil {
		h.sendError(c, "BAD_FRAME", "audioData must be base64 encoded")
		return "", false
	}
	transcript, err := h.stt.Transcribe(ctx, audio, c.language)
	if err != nil {
		h.logger.Warn("voice message transcription failed",
			"session_id", c.sessionID, "user_id", c.userID, "error", err)
		h.sendError(c, "SPEECH_UNAVAILABLE", "could not transcribe audio")
		return "", false
	}
	return transcript.Text, true
}

func (h *Hub) handleTyping(c *Client, typing bool) {
	if !h.requireJoined(c) {
		return
	}
	h.broadcast(c.sessionID, EventUserTyping, UserTypingPayload{
		UserID:   c.userID,
		UserType: c.userType,
		Typing:   typing,
	}, c)
}

func (h *Hub) handleMarkRead(ctx context.Context, c *Client, data json.RawMessage) {
	if !h.requireJoined(c) {
		return
	}
	var payload MarkReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.MessageIDs) == 0 {
		h.sendError(c, "BAD_FRAME", "malformed mark_messages_read payload")
		return
	}

	if err := h.negotiations.MarkRead(ctx, c.sessionID, c.userID, payload.MessageIDs); err != nil {
		h.sendError(c, errorCode(err), err.Error())
		return
	}
	h.broadcast(c.sessionID, EventMessagesRead, MessagesReadPayload{
		MessageIDs: payload.MessageIDs,
		ReaderID:   c.userID,
	}, c)
}

// handleChangeLanguage updates the display language announced to peers. The
// room's translation pair stays as fixed at join time.
func (h *Hub) handleChangeLanguage(c *Client, data json.RawMessage) {
	if !h.requireJoined(c) {
		return
	}
	var payload ChangeLanguagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.sendError(c, "BAD_FRAME", "malformed change_language payload")
		return
	}
	language, err := lang.New(payload.Language)
	if err != nil {
		h.sendError(c, "BAD_FRAME", "invalid language code")
		return
	}

	h.mu.Lock()
	c.language = language
	h.mu.Unlock()

	h.broadcast(c.sessionID, EventLanguageChanged, LanguageChangedPayload{
		UserID:   c.userID,
		UserType: c.userType,
		Language: language.String(),
	}, c)
}

func (h *Hub) handleComplete(ctx context.Context, c *Client, data json.RawMessage) {
	if !h.requireJoined(c) {
		return
	}
	var payload CompletePayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &payload)
	}

	room, err := h.negotiations.Complete(ctx, c.sessionID, c.userID, payload.Details)
	if err != nil {
		h.sendError(c, errorCode(err), err.Error())
		return
	}

	h.broadcast(c.sessionID, EventAgreementReached, AgreementReachedPayload{Room: room}, nil)
	h.broadcast(c.sessionID, EventSessionUpdate, SessionUpdatePayload{
		SessionID: c.sessionID,
		Status:    session.StatusCompleted.String(),
	}, nil)
}

// NotifyTranslationUpgrade announces a finished background translation to the
// room. Connections that joined after the original frame still get the final
// content from the snapshot, so late delivery here is harmless.
func (h *Hub) NotifyTranslationUpgrade(sessionID uuid.UUID, message *negotiation.Message) {
	h.broadcast(sessionID, EventMessageTranslated, MessagePayload{Message: message}, nil)
}

// NotifySessionExpired announces sweep-detected expiry to a still-connected
// room.
func (h *Hub) NotifySessionExpired(sessionID uuid.UUID) {
	h.broadcast(sessionID, EventSessionUpdate, SessionUpdatePayload{
		SessionID: sessionID,
		Status:    session.StatusExpired.String(),
	}, nil)
}

// Shutdown notifies every client and closes their send channels; the write
// pumps flush what is queued and close the connections.
func (h *Hub) Shutdown(reason string) {
	frame, err := marshalEvent(EventServerShutdown, ServerShutdownPayload{Reason: reason})
	if err != nil {
		h.logger.Error("failed to marshal shutdown event", "error", err)
		frame = nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, topic := range h.topics {
		for c := range topic {
			if frame != nil {
				c.enqueue(frame)
			}
			c.closeSend()
		}
	}
	h.topics = make(map[uuid.UUID]map[*Client]struct{})
	h.announced = make(map[uuid.UUID]map[uuid.UUID]struct{})
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	wasJoined := false
	if topic, ok := h.topics[c.sessionID]; ok {
		if _, member := topic[c]; member {
			delete(topic, c)
			wasJoined = true
			if len(topic) == 0 {
				delete(h.topics, c.sessionID)
				delete(h.announced, c.sessionID)
			}
		}
	}
	h.mu.Unlock()

	c.closeSend()
	if wasJoined {
		h.broadcast(c.sessionID, EventUserDisconnected, UserDisconnectedPayload{
			UserID:   c.userID,
			UserType: c.userType,
		}, nil)
	}
}

func (h *Hub) broadcast(sessionID uuid.UUID, eventType EventType, payload any, except *Client) {
	frame, err := marshalEvent(eventType, payload)
	if err != nil {
		h.logger.Error("failed to marshal event", "event", string(eventType), "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.topics[sessionID] {
		if c == except {
			continue
		}
		c.enqueue(frame)
	}
}

func (h *Hub) sendEvent(c *Client, eventType EventType, payload any) {
	frame, err := marshalEvent(eventType, payload)
	if err != nil {
		h.logger.Error("failed to marshal event", "event", string(eventType), "error", err)
		return
	}
	c.enqueue(frame)
}

func (h *Hub) sendError(c *Client, code, message string) {
	h.sendEvent(c, EventError, ErrorPayload{Code: code, Message: message})
}

func (h *Hub) requireJoined(c *Client) bool {
	h.mu.RLock()
	joined := c.joined
	h.mu.RUnlock()
	if !joined {
		h.sendError(c, "NOT_JOINED", errs.ErrNotJoined.Error())
	}
	return joined
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, errs.ErrRoomNotFound), errors.Is(err, errs.ErrSessionNotFound):
		return "NOT_FOUND"
	case errors.Is(err, errs.ErrUnauthorizedRoomAccess):
		return "UNAUTHORIZED"
	case errors.Is(err, errs.ErrRoomClosed):
		return "ROOM_CLOSED"
	case errors.Is(err, errs.ErrCompletionConflict):
		return "ALREADY_COMPLETED"
	default:
		return "INTERNAL"
	}
}
