package repository

import (
	"context"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/session"
	"github.com/uday68/VyaparMitra-sub000/internal/infra"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, vendor_id, product_id, vendor_language, customer_language, status, created_at, expires_at, last_activity_at`

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, vendor_id, product_id, vendor_language, customer_language, status, created_at, expires_at, last_activity_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6, $7, $8)`,
		s.ID(), s.VendorID(), pgconv.UUIDPtrToPgtype(s.ProductID()), s.VendorLanguage().String(),
		s.Status().String(), s.CreatedAt(), s.ExpiresAt(), s.LastActivityAt(),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create session", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// Join performs the atomic, conditional ACTIVE→JOINED transition. A second
// concurrent join matches zero rows and surfaces as CONFLICT.
func (r *SessionRepository) Join(ctx context.Context, id uuid.UUID, customerLanguage lang.Language, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions
		SET status = 'JOINED', customer_language = $2, last_activity_at = $3
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, customerLanguage.String(), now,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to join session", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "session not joinable", nil)
	}
	return nil
}

// MarkExpired is the lazy status flip observed during validation.
func (r *SessionRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET status = 'EXPIRED'
		WHERE id = $1 AND status IN ('ACTIVE', 'JOINED')`,
		id,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to mark session expired", err)
	}
	return nil
}

func (r *SessionRepository) Complete(ctx context.Context, id uuid.UUID, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sessions SET status = 'COMPLETED', last_activity_at = $2
		WHERE id = $1 AND status IN ('ACTIVE', 'JOINED')`,
		id, now,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to complete session", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "session not completable", nil)
	}
	return nil
}

func (r *SessionRepository) TouchActivity(ctx context.Context, id uuid.UUID, now time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE sessions SET last_activity_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to touch session activity", err)
	}
	return nil
}

// ExpireSweep flips every overdue non-terminal session to EXPIRED and returns
// the affected ids so the caller can abandon the paired rooms.
func (r *SessionRepository) ExpireSweep(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE sessions SET status = 'EXPIRED'
		WHERE expires_at < $1 AND status IN ('ACTIVE', 'JOINED')
		RETURNING id`,
		now,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to sweep expired sessions", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan swept session id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate swept sessions", err)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*session.Session, error) {
	var (
		id, vendorID     uuid.UUID
		productID        pgtype.UUID
		vendorLanguage   string
		customerLanguage pgtype.Text
		status           string
		createdAt        time.Time
		expiresAt        time.Time
		lastActivityAt   time.Time
	)
	err := row.Scan(&id, &vendorID, &productID, &vendorLanguage, &customerLanguage,
		&status, &createdAt, &expiresAt, &lastActivityAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "session not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan session", err)
	}

	var customerLang *lang.Language
	if s := pgconv.StringPtrFromPgtype(customerLanguage); s != nil {
		l := lang.Language(*s)
		customerLang = &l
	}

	return session.Reconstruct(
		id, vendorID,
		pgconv.UUIDPtrFromPgtype(productID),
		lang.Language(vendorLanguage),
		customerLang,
		session.Status(status),
		createdAt, expiresAt, lastActivityAt,
	), nil
}
