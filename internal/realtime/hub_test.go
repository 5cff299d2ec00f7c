//go:build unit

package realtime_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/qrtoken"
	"github.com/uday68/VyaparMitra-sub000/internal/realtime"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"
	"github.com/uday68/VyaparMitra-sub000/internal/voice"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNegotiations struct {
	mu        sync.Mutex
	sessionID uuid.UUID
	vendorID  uuid.UUID
	room         *readmodel.RoomRM
	messages     []negotiation.Message
	readIDs      []string
	deliveredIDs []string
	completed    bool
}

func newFakeNegotiations(sessionID, vendorID, customerID uuid.UUID) *fakeNegotiations {
	customerLang := "en"
	return &fakeNegotiations{
		sessionID: sessionID,
		vendorID:  vendorID,
		room: &readmodel.RoomRM{
			ID:               uuid.New(),
			SessionID:        sessionID,
			VendorID:         vendorID,
			CustomerID:       &customerID,
			VendorLanguage:   "hi",
			CustomerLanguage: &customerLang,
			Status:           negotiation.RoomActive.String(),
		},
	}
}

func (f *fakeNegotiations) Snapshot(_ context.Context, sessionID, _ uuid.UUID, _ int) (*readmodel.RoomSnapshotRM, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sessionID != f.sessionID {
		return nil, errs.ErrRoomNotFound
	}
	return &readmodel.RoomSnapshotRM{Room: f.room, Messages: f.messages}, nil
}

func (f *fakeNegotiations) SendMessage(_ context.Context, in usecase.SendMessageInput) (*negotiation.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		return nil, errs.ErrRoomClosed
	}
	senderType := negotiation.SenderCustomer
	if in.SenderID == f.vendorID {
		senderType = negotiation.SenderVendor
	}
	m, err := negotiation.NewMessage(in.SessionID, in.SenderID, senderType,
		in.Content, lang.Hindi, lang.English, in.Type, in.AudioURL, time.Now())
	if err != nil {
		return nil, err
	}
	f.messages = append(f.messages, *m)
	return m, nil
}

func (f *fakeNegotiations) Complete(_ context.Context, sessionID, _ uuid.UUID, details string) (*readmodel.RoomRM, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		return nil, errs.ErrCompletionConflict
	}
	f.completed = true
	room := *f.room
	room.Status = negotiation.RoomCompleted.String()
	room.AgreementReached = true
	room.AgreementDetails = &details
	f.room = &room
	return &room, nil
}

func (f *fakeNegotiations) History(_ context.Context, _, _ uuid.UUID, _ int) ([]negotiation.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages, nil
}

func (f *fakeNegotiations) MarkDelivered(_ context.Context, _ uuid.UUID, messageID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at := time.Now()
	for i := range f.messages {
		if f.messages[i].ID == messageID && f.messages[i].DeliveredAt == nil {
			f.messages[i].DeliveredAt = &at
		}
	}
	f.deliveredIDs = append(f.deliveredIDs, messageID)
	return at, nil
}

func (f *fakeNegotiations) MarkRead(_ context.Context, _, _ uuid.UUID, messageIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readIDs = append(f.readIDs, messageIDs...)
	return nil
}

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _ lang.Language) (voice.Transcript, error) {
	if f.err != nil {
		return voice.Transcript{}, f.err
	}
	return voice.Transcript{Text: f.text, Confidence: 0.9}, nil
}

type hubFixture struct {
	hub        *realtime.Hub
	fake       *fakeNegotiations
	stt        *fakeSTT
	server     *httptest.Server
	tokens     *qrtoken.Service
	sessionID  uuid.UUID
	vendorID   uuid.UUID
	customerID uuid.UUID
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	sessionID, vendorID, customerID := uuid.New(), uuid.New(), uuid.New()
	fake := newFakeNegotiations(sessionID, vendorID, customerID)
	stt := &fakeSTT{text: "450 rupees final"}
	tokens := qrtoken.NewService("test-secret", time.Hour)
	hub := realtime.NewHub(fake, tokens, stt, slog.Default())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)
	return &hubFixture{
		hub: hub, fake: fake, stt: stt, server: server, tokens: tokens,
		sessionID: sessionID, vendorID: vendorID, customerID: customerID,
	}
}

func (f *hubFixture) dial(t *testing.T, userID uuid.UUID, userType string) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.GenerateParticipantToken(f.sessionID, userID, userType)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType realtime.EventType, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(realtime.Envelope{Type: eventType, Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func recv(t *testing.T, conn *websocket.Conn) realtime.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var envelope realtime.Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope
}

func join(t *testing.T, conn *websocket.Conn) realtime.RoomStatePayload {
	t.Helper()
	send(t, conn, realtime.EventJoinNegotiation, realtime.JoinPayload{Limit: 50})
	envelope := recv(t, conn)
	require.Equal(t, realtime.EventRoomState, envelope.Type)
	var state realtime.RoomStatePayload
	require.NoError(t, json.Unmarshal(envelope.Data, &state))
	return state
}

func TestHub(t *testing.T) {
	t.Run("rejects a bad token at upgrade", func(t *testing.T) {
		f := newHubFixture(t)
		url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?token=garbage"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("join replays the room snapshot", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)

		state := join(t, vendor)
		assert.Equal(t, f.sessionID, state.Room.SessionID)
	})

	t.Run("customer join is announced to the vendor", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		customer := f.dial(t, f.customerID, usecase.UserTypeCustomer)
		join(t, customer)

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventCustomerJoined, envelope.Type)
		var joined realtime.CustomerJoinedPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &joined))
		assert.Equal(t, f.customerID, joined.CustomerID)
		assert.Equal(t, "en", joined.CustomerLanguage)

		envelope = recv(t, vendor)
		assert.Equal(t, realtime.EventSessionUpdate, envelope.Type)
	})

	t.Run("messages fan out to both sides", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)
		customer := f.dial(t, f.customerID, usecase.UserTypeCustomer)
		join(t, customer)
		recv(t, vendor) // customer_joined
		recv(t, vendor) // session_update

		send(t, vendor, realtime.EventSendMessage, realtime.SendMessagePayload{Content: "₹500"})

		for _, conn := range []*websocket.Conn{vendor, customer} {
			envelope := recv(t, conn)
			require.Equal(t, realtime.EventNewMessage, envelope.Type)
			var payload realtime.MessagePayload
			require.NoError(t, json.Unmarshal(envelope.Data, &payload))
			assert.Equal(t, "₹500", payload.Message.OriginalContent)
		}
	})

	t.Run("delivery is stamped only when a peer is connected", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		send(t, vendor, realtime.EventSendMessage, realtime.SendMessagePayload{Content: "anyone there?"})
		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventNewMessage, envelope.Type)
		var alone realtime.MessagePayload
		require.NoError(t, json.Unmarshal(envelope.Data, &alone))
		assert.Nil(t, alone.Message.DeliveredAt)

		customer := f.dial(t, f.customerID, usecase.UserTypeCustomer)
		join(t, customer)
		recv(t, vendor) // customer_joined
		recv(t, vendor) // session_update

		send(t, customer, realtime.EventSendMessage, realtime.SendMessagePayload{Content: "₹450?"})
		envelope = recv(t, vendor)
		require.Equal(t, realtime.EventNewMessage, envelope.Type)
		var delivered realtime.MessagePayload
		require.NoError(t, json.Unmarshal(envelope.Data, &delivered))
		assert.NotNil(t, delivered.Message.DeliveredAt)
	})

	t.Run("customer reconnect is not re-announced", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)
		customer := f.dial(t, f.customerID, usecase.UserTypeCustomer)
		join(t, customer)
		recv(t, vendor) // customer_joined
		recv(t, vendor) // session_update

		require.NoError(t, customer.Close())
		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventUserDisconnected, envelope.Type)

		customer = f.dial(t, f.customerID, usecase.UserTypeCustomer)
		join(t, customer)

		// The vendor's next frame is the typing relay, not a second
		// customer_joined announcement.
		send(t, customer, realtime.EventTypingStart, struct{}{})
		envelope = recv(t, vendor)
		assert.Equal(t, realtime.EventUserTyping, envelope.Type)
	})

	t.Run("voice messages are transcribed before appending", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		send(t, vendor, realtime.EventSendMessage, realtime.SendMessagePayload{
			Type:      string(negotiation.MessageVoice),
			AudioData: base64.StdEncoding.EncodeToString([]byte("pcm-bytes")),
		})

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventNewMessage, envelope.Type)
		var payload realtime.MessagePayload
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		assert.Equal(t, "450 rupees final", payload.Message.Content)
		assert.Equal(t, negotiation.MessageVoice, payload.Message.Type)
	})

	t.Run("speech failure only rejects the voice frame", func(t *testing.T) {
		f := newHubFixture(t)
		f.stt.err = errors.New("stt backend down")
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		send(t, vendor, realtime.EventSendMessage, realtime.SendMessagePayload{
			Type:      string(negotiation.MessageVoice),
			AudioData: base64.StdEncoding.EncodeToString([]byte("pcm-bytes")),
		})

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventError, envelope.Type)
		var errPayload realtime.ErrorPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &errPayload))
		assert.Equal(t, "SPEECH_UNAVAILABLE", errPayload.Code)

		// Text messaging still works on the same connection.
		send(t, vendor, realtime.EventSendMessage, realtime.SendMessagePayload{Content: "typing instead"})
		envelope = recv(t, vendor)
		assert.Equal(t, realtime.EventNewMessage, envelope.Type)
	})

	t.Run("sending before joining is rejected", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)

		send(t, vendor, realtime.EventSendMessage, realtime.SendMessagePayload{Content: "hi"})

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventError, envelope.Type)
		var payload realtime.ErrorPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		assert.Equal(t, "NOT_JOINED", payload.Code)
	})

	t.Run("typing indicators reach only the peer", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)
		customer := f.dial(t, f.customerID, usecase.UserTypeCustomer)
		join(t, customer)
		recv(t, vendor)
		recv(t, vendor)

		send(t, customer, realtime.EventTypingStart, struct{}{})

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventUserTyping, envelope.Type)
		var payload realtime.UserTypingPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		assert.True(t, payload.Typing)
		assert.Equal(t, f.customerID, payload.UserID)
	})

	t.Run("completion broadcasts agreement and session update", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		send(t, vendor, realtime.EventCompleteNegotiation, realtime.CompletePayload{Details: "450 for 2 kg"})

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventAgreementReached, envelope.Type)
		var agreement realtime.AgreementReachedPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &agreement))
		require.NotNil(t, agreement.Room.AgreementDetails)
		assert.Equal(t, "450 for 2 kg", *agreement.Room.AgreementDetails)

		envelope = recv(t, vendor)
		require.Equal(t, realtime.EventSessionUpdate, envelope.Type)

		// Second completion loses the race.
		send(t, vendor, realtime.EventCompleteNegotiation, realtime.CompletePayload{Details: "other"})
		envelope = recv(t, vendor)
		require.Equal(t, realtime.EventError, envelope.Type)
		var payload realtime.ErrorPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		assert.Equal(t, "ALREADY_COMPLETED", payload.Code)
	})

	t.Run("translation upgrades reach the room", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		m, err := negotiation.NewMessage(f.sessionID, f.vendorID, negotiation.SenderVendor,
			"₹500", lang.Hindi, lang.English, negotiation.MessageText, nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, m.ApplyTranslation("500 rupees"))

		f.hub.NotifyTranslationUpgrade(f.sessionID, m)

		envelope := recv(t, vendor)
		require.Equal(t, realtime.EventMessageTranslated, envelope.Type)
		var payload realtime.MessagePayload
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		assert.Equal(t, "500 rupees", payload.Message.Content)
	})

	t.Run("shutdown notifies connected clients", func(t *testing.T) {
		f := newHubFixture(t)
		vendor := f.dial(t, f.vendorID, usecase.UserTypeVendor)
		join(t, vendor)

		f.hub.Shutdown("maintenance")

		envelope := recv(t, vendor)
		assert.Equal(t, realtime.EventServerShutdown, envelope.Type)
	})
}
