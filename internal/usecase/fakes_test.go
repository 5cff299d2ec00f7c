//go:build unit

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/session"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/voiceflow"
	"github.com/uday68/VyaparMitra-sub000/internal/infra"
	"github.com/uday68/VyaparMitra-sub000/internal/translation"
	"github.com/uday68/VyaparMitra-sub000/internal/voice"

	"github.com/google/uuid"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
	touched  int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*session.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "session not found", nil)
	}
	return s, nil
}

func (r *fakeSessionRepo) Join(_ context.Context, id uuid.UUID, customerLanguage lang.Language, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status() != session.StatusActive {
		return infra.WrapRepoErr(infra.KindConflict, "session not joinable", nil)
	}
	return s.Join(customerLanguage, now)
}

func (r *fakeSessionRepo) MarkExpired(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && !s.Status().IsTerminal() {
		_ = s.Expire()
	}
	return nil
}

func (r *fakeSessionRepo) Complete(_ context.Context, id uuid.UUID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return infra.WrapRepoErr(infra.KindConflict, "session not completable", nil)
	}
	if err := s.Complete(now); err != nil {
		return infra.WrapRepoErr(infra.KindConflict, "session not completable", err)
	}
	return nil
}

func (r *fakeSessionRepo) TouchActivity(_ context.Context, _ uuid.UUID, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched++
	return nil
}

func (r *fakeSessionRepo) ExpireSweep(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, s := range r.sessions {
		if !s.Status().IsTerminal() && s.HasExpired(now) {
			_ = s.Expire()
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeRoomRepo struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*negotiation.Room
	messages map[string]*negotiation.Message
	order    []string
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:    make(map[uuid.UUID]*negotiation.Room),
		messages: make(map[string]*negotiation.Message),
	}
}

func (r *fakeRoomRepo) CreateRoom(_ context.Context, room *negotiation.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.SessionID()] = room
	return nil
}

func (r *fakeRoomRepo) FindBySessionID(_ context.Context, sessionID uuid.UUID) (*negotiation.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[sessionID]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "room not found", nil)
	}
	return room, nil
}

func (r *fakeRoomRepo) AttachCustomer(_ context.Context, sessionID, customerID uuid.UUID, customerLanguage lang.Language, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[sessionID]
	if !ok {
		return infra.WrapRepoErr(infra.KindNotFound, "room not found", nil)
	}
	if err := room.AttachCustomer(customerID, customerLanguage, now); err != nil {
		return infra.WrapRepoErr(infra.KindConflict, "room already has a customer", err)
	}
	return nil
}

func (r *fakeRoomRepo) Complete(_ context.Context, sessionID uuid.UUID, details string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[sessionID]
	if !ok {
		return infra.WrapRepoErr(infra.KindNotFound, "room not found", nil)
	}
	if err := room.Complete(details, now); err != nil {
		return infra.WrapRepoErr(infra.KindConflict, "negotiation not completable", err)
	}
	return nil
}

func (r *fakeRoomRepo) AbandonBySessionIDs(_ context.Context, sessionIDs []uuid.UUID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range sessionIDs {
		if room, ok := r.rooms[id]; ok {
			_ = room.Abandon(now)
		}
	}
	return nil
}

func (r *fakeRoomRepo) PurgeTerminalBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, room := range r.rooms {
		if room.Status().IsTerminal() && room.UpdatedAt().Before(cutoff) {
			delete(r.rooms, id)
			purged++
		}
	}
	return purged, nil
}

func (r *fakeRoomRepo) AppendMessage(_ context.Context, m *negotiation.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[m.ID]; ok {
		return false, nil
	}
	copied := *m
	r.messages[m.ID] = &copied
	r.order = append(r.order, m.ID)
	if room, ok := r.rooms[m.SessionID]; ok {
		room.RecordMessage(m.Timestamp)
	}
	return true, nil
}

func (r *fakeRoomRepo) History(_ context.Context, sessionID uuid.UUID, limit int) ([]negotiation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []negotiation.Message
	for _, id := range r.order {
		if m := r.messages[id]; m.SessionID == sessionID {
			all = append(all, *m)
		}
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (r *fakeRoomRepo) FindMessage(_ context.Context, id string) (*negotiation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "message not found", nil)
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRoomRepo) MarkDelivered(_ context.Context, sessionID uuid.UUID, messageID string, deliveredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[messageID]; ok && m.SessionID == sessionID && m.DeliveredAt == nil {
		at := deliveredAt
		m.DeliveredAt = &at
	}
	return nil
}

func (r *fakeRoomRepo) MarkRead(_ context.Context, messageIDs []string, readAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range messageIDs {
		if m, ok := r.messages[id]; ok && m.ReadAt == nil {
			at := readAt
			m.ReadAt = &at
		}
	}
	return nil
}

type dispatchCall struct {
	messageID string
	sessionID uuid.UUID
	from, to  lang.Language
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
}

func (d *fakeDispatcher) TranslateMessageAsync(messageID string, sessionID uuid.UUID, _ string, from, to lang.Language) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{messageID: messageID, sessionID: sessionID, from: from, to: to})
}

type fakeWorkflowStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*voiceflow.Session
}

func newFakeWorkflowStore() *fakeWorkflowStore {
	return &fakeWorkflowStore{sessions: make(map[uuid.UUID]*voiceflow.Session)}
}

func (s *fakeWorkflowStore) Find(_ context.Context, userID uuid.UUID) (*voiceflow.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *fakeWorkflowStore) Save(_ context.Context, sess *voiceflow.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[sess.UserID] = &copied
	return nil
}

func (s *fakeWorkflowStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// identityTranslator passes text through unchanged, which keeps the English
// test utterances routable after the pivot step.
type identityTranslator struct{}

func (identityTranslator) Translate(_ context.Context, text string, _, _ lang.Language) translation.Result {
	return translation.Result{Text: text, Confidence: 1, Provider: "test"}
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

type fakeTTS struct {
	url string
}

func (f *fakeTTS) Synthesize(_ context.Context, _ string, _ lang.Language) (voice.Synthesis, error) {
	return voice.Synthesis{AudioURL: f.url, Duration: time.Second}, nil
}
