package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/session"
	"github.com/uday68/VyaparMitra-sub000/internal/infra"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/clock"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/errs"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/qrtoken"
	"github.com/uday68/VyaparMitra-sub000/internal/usecase/readmodel"

	"github.com/google/uuid"
)

const (
	UserTypeVendor   = "VENDOR"
	UserTypeCustomer = "CUSTOMER"
)

type SessionRepository interface {
	Create(ctx context.Context, s *session.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Join(ctx context.Context, id uuid.UUID, customerLanguage lang.Language, now time.Time) error
	MarkExpired(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, now time.Time) error
	TouchActivity(ctx context.Context, id uuid.UUID, now time.Time) error
	ExpireSweep(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type TokenService interface {
	TokenDuration() time.Duration
	GenerateSessionToken(sessionID, vendorID uuid.UUID, productID *uuid.UUID) (string, time.Time, error)
	ValidateSessionToken(tokenString string) (*qrtoken.SessionClaims, error)
	GenerateParticipantToken(sessionID, userID uuid.UUID, userType string) (string, error)
}

// GenerateResult carries everything the vendor app needs to render the QR
// code and open its own realtime connection.
type GenerateResult struct {
	Session      *readmodel.SessionRM `json:"session"`
	Token        string               `json:"token"`
	QRPayloadURL string               `json:"qrPayloadUrl"`
	VendorToken  string               `json:"vendorToken"`
	ExpiresAt    time.Time            `json:"expiresAt"`
}

// ValidationResult is returned to a customer who scanned the QR code. The
// customer identity is minted here; the participant token authenticates the
// subsequent join and websocket connection.
type ValidationResult struct {
	Session       *readmodel.SessionRM `json:"session"`
	CustomerID    uuid.UUID            `json:"customerId"`
	CustomerToken string               `json:"customerToken"`
}

type JoinResult struct {
	Session          *readmodel.SessionRM `json:"session"`
	ParticipantToken string               `json:"participantToken"`
}

type SessionUseCase interface {
	Generate(ctx context.Context, vendorID uuid.UUID, productID *uuid.UUID, vendorLanguage lang.Language) (*GenerateResult, error)
	Validate(ctx context.Context, token string) (*ValidationResult, error)
	Join(ctx context.Context, sessionID, customerID uuid.UUID, customerLanguage lang.Language) (*JoinResult, error)
	ExpireSweep(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type sessionUseCaseImpl struct {
	sessions      SessionRepository
	rooms         RoomRepository
	tokens        TokenService
	clock         clock.Clock
	publicBaseURL string
}

func NewSessionUseCase(
	sessions SessionRepository,
	rooms RoomRepository,
	tokens TokenService,
	clock clock.Clock,
	publicBaseURL string,
) SessionUseCase {
	return &sessionUseCaseImpl{
		sessions:      sessions,
		rooms:         rooms,
		tokens:        tokens,
		clock:         clock,
		publicBaseURL: publicBaseURL,
	}
}

// Generate creates the session and its paired WAITING room, then issues the
// QR token. Session lifetime and token lifetime coincide.
func (u *sessionUseCaseImpl) Generate(ctx context.Context, vendorID uuid.UUID, productID *uuid.UUID, vendorLanguage lang.Language) (*GenerateResult, error) {
	sess, err := session.NewSession(u.clock, vendorID, productID, vendorLanguage, u.tokens.TokenDuration())
	if err != nil {
		return nil, errs.Wrap(err, "invalid session parameters")
	}

	if err := u.sessions.Create(ctx, sess); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	room := negotiation.NewRoom(sess.ID(), vendorID, vendorLanguage, u.clock.Now())
	if err := u.rooms.CreateRoom(ctx, room); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	token, expiresAt, err := u.tokens.GenerateSessionToken(sess.ID(), vendorID, productID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to sign session token")
	}
	vendorToken, err := u.tokens.GenerateParticipantToken(sess.ID(), vendorID, UserTypeVendor)
	if err != nil {
		return nil, errs.Wrap(err, "failed to sign vendor token")
	}

	return &GenerateResult{
		Session:      readmodel.NewSessionRM(sess),
		Token:        token,
		QRPayloadURL: fmt.Sprintf("%s/join?token=%s", u.publicBaseURL, token),
		VendorToken:  vendorToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Validate resolves a scanned QR token to a live session. Expiry observed
// here flips the stored status lazily before reporting the error.
func (u *sessionUseCaseImpl) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	claims, err := u.tokens.ValidateSessionToken(token)
	if err != nil {
		if err == qrtoken.ErrExpiredToken {
			return nil, errs.ErrSessionExpired
		}
		return nil, errs.ErrInvalidToken
	}

	sess, err := u.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if sess.HasExpired(u.clock.Now()) {
		if err := u.sessions.MarkExpired(ctx, sess.ID()); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil, errs.ErrSessionExpired
	}
	if sess.Status().IsTerminal() {
		return nil, errs.ErrSessionExpired
	}

	customerID := uuid.New()
	customerToken, err := u.tokens.GenerateParticipantToken(sess.ID(), customerID, UserTypeCustomer)
	if err != nil {
		return nil, errs.Wrap(err, "failed to sign customer token")
	}

	return &ValidationResult{
		Session:       readmodel.NewSessionRM(sess),
		CustomerID:    customerID,
		CustomerToken: customerToken,
	}, nil
}

// Join performs the single customer join. The conditional update in the
// store arbitrates concurrent scans: exactly one wins, the rest get
// ErrJoinConflict.
func (u *sessionUseCaseImpl) Join(ctx context.Context, sessionID, customerID uuid.UUID, customerLanguage lang.Language) (*JoinResult, error) {
	sess, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := u.clock.Now()
	if sess.HasExpired(now) {
		if err := u.sessions.MarkExpired(ctx, sess.ID()); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil, errs.ErrSessionExpired
	}

	if err := u.sessions.Join(ctx, sessionID, customerLanguage, now); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.ErrJoinConflict
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := u.rooms.AttachCustomer(ctx, sessionID, customerID, customerLanguage, now); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.ErrJoinConflict
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	participantToken, err := u.tokens.GenerateParticipantToken(sessionID, customerID, UserTypeCustomer)
	if err != nil {
		return nil, errs.Wrap(err, "failed to sign participant token")
	}

	joined, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return &JoinResult{
		Session:          readmodel.NewSessionRM(joined),
		ParticipantToken: participantToken,
	}, nil
}

// ExpireSweep expires overdue sessions in bulk and abandons their rooms.
func (u *sessionUseCaseImpl) ExpireSweep(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ids, err := u.sessions.ExpireSweep(ctx, now)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := u.rooms.AbandonBySessionIDs(ctx, ids, now); err != nil {
		return ids, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return ids, nil
}
