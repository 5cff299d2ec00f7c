package usecase

import (
	"context"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/infra"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/clock"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, room *negotiation.Room) error
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*negotiation.Room, error)
	AttachCustomer(ctx context.Context, sessionID, customerID uuid.UUID, customerLanguage lang.Language, now time.Time) error
	Complete(ctx context.Context, sessionID uuid.UUID, details string, now time.Time) error
	AbandonBySessionIDs(ctx context.Context, sessionIDs []uuid.UUID, now time.Time) error
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
	AppendMessage(ctx context.Context, m *negotiation.Message) (bool, error)
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]negotiation.Message, error)
	FindMessage(ctx context.Context, id string) (*negotiation.Message, error)
	MarkDelivered(ctx context.Context, sessionID uuid.UUID, messageID string, deliveredAt time.Time) error
	MarkRead(ctx context.Context, messageIDs []string, readAt time.Time) error
}

// TranslationDispatcher schedules the asynchronous translation upgrade of an
// already-delivered message.
type TranslationDispatcher interface {
	TranslateMessageAsync(messageID string, sessionID uuid.UUID, text string, from, to lang.Language)
}

type SendMessageInput struct {
	SessionID uuid.UUID
	SenderID  uuid.UUID
	Content   string
	Type      negotiation.MessageType
	AudioURL  *string
}

type NegotiationUseCase interface {
	Snapshot(ctx context.Context, sessionID, userID uuid.UUID, limit int) (*readmodel.RoomSnapshotRM, error)
	SendMessage(ctx context.Context, in SendMessageInput) (*negotiation.Message, error)
	Complete(ctx context.Context, sessionID, userID uuid.UUID, details string) (*readmodel.RoomRM, error)
	History(ctx context.Context, sessionID, userID uuid.UUID, limit int) ([]negotiation.Message, error)
	MarkDelivered(ctx context.Context, sessionID uuid.UUID, messageID string) (time.Time, error)
	MarkRead(ctx context.Context, sessionID, userID uuid.UUID, messageIDs []string) error
}

type negotiationUseCaseImpl struct {
	rooms      RoomRepository
	sessions   SessionRepository
	translator TranslationDispatcher
	clock      clock.Clock
}

func NewNegotiationUseCase(
	rooms RoomRepository,
	sessions SessionRepository,
	translator TranslationDispatcher,
	clock clock.Clock,
) NegotiationUseCase {
	return &negotiationUseCaseImpl{
		rooms:      rooms,
		sessions:   sessions,
		translator: translator,
		clock:      clock,
	}
}

func (u *negotiationUseCaseImpl) loadRoomFor(ctx context.Context, sessionID, userID uuid.UUID) (*negotiation.Room, error) {
	room, err := u.rooms.FindBySessionID(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrRoomNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !room.IsParticipant(userID) {
		return nil, errs.ErrUnauthorizedRoomAccess
	}
	return room, nil
}

// Snapshot serves the room state plus recent history a client replays when
// (re)connecting.
func (u *negotiationUseCaseImpl) Snapshot(ctx context.Context, sessionID, userID uuid.UUID, limit int) (*readmodel.RoomSnapshotRM, error) {
	room, err := u.loadRoomFor(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	messages, err := u.rooms.History(ctx, sessionID, limit)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return &readmodel.RoomSnapshotRM{
		Room:     readmodel.NewRoomRM(room),
		Messages: messages,
	}, nil
}

// SendMessage appends to the room ledger and returns the message immediately,
// original content first. The translation upgrade runs in the background and
// is announced separately once it lands.
func (u *negotiationUseCaseImpl) SendMessage(ctx context.Context, in SendMessageInput) (*negotiation.Message, error) {
	room, err := u.loadRoomFor(ctx, in.SessionID, in.SenderID)
	if err != nil {
		return nil, err
	}
	if !room.CanAppend() {
		return nil, errs.ErrRoomClosed
	}

	senderType, ok := room.SenderTypeOf(in.SenderID)
	if !ok {
		return nil, errs.ErrUnauthorizedRoomAccess
	}
	from, to := room.LanguagePair(senderType)

	now := u.clock.Now()
	message, err := negotiation.NewMessage(in.SessionID, in.SenderID, senderType,
		in.Content, from, to, in.Type, in.AudioURL, now)
	if err != nil {
		return nil, errs.Wrap(err, "invalid message")
	}

	inserted, err := u.rooms.AppendMessage(ctx, message)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := u.sessions.TouchActivity(ctx, in.SessionID, now); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if inserted && message.TranslationStatus == negotiation.TranslationPending {
		u.translator.TranslateMessageAsync(message.ID, message.SessionID,
			message.OriginalContent, message.Language, message.TargetLanguage)
	}
	return message, nil
}

// Complete records the agreement. The room transition is compare-and-set, so
// simultaneous completions collapse to one; the loser gets
// ErrCompletionConflict and can simply re-read the room.
func (u *negotiationUseCaseImpl) Complete(ctx context.Context, sessionID, userID uuid.UUID, details string) (*readmodel.RoomRM, error) {
	if _, err := u.loadRoomFor(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	now := u.clock.Now()
	if err := u.rooms.Complete(ctx, sessionID, details, now); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.ErrCompletionConflict
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// The paired session may already be expired; that race is benign.
	if err := u.sessions.Complete(ctx, sessionID, now); err != nil && !infra.IsKind(err, infra.KindConflict) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	room, err := u.rooms.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return readmodel.NewRoomRM(room), nil
}

func (u *negotiationUseCaseImpl) History(ctx context.Context, sessionID, userID uuid.UUID, limit int) ([]negotiation.Message, error) {
	if _, err := u.loadRoomFor(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	messages, err := u.rooms.History(ctx, sessionID, limit)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return messages, nil
}

// MarkDelivered stamps the moment a connected recipient first received the
// message frame. The stamp is first-wins: re-delivery on reconnect keeps the
// original time.
func (u *negotiationUseCaseImpl) MarkDelivered(ctx context.Context, sessionID uuid.UUID, messageID string) (time.Time, error) {
	now := u.clock.Now()
	if err := u.rooms.MarkDelivered(ctx, sessionID, messageID, now); err != nil {
		return time.Time{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return now, nil
}

func (u *negotiationUseCaseImpl) MarkRead(ctx context.Context, sessionID, userID uuid.UUID, messageIDs []string) error {
	if _, err := u.loadRoomFor(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := u.rooms.MarkRead(ctx, messageIDs, u.clock.Now()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
