package repository

import (
	"context"
	"time"

	"github.com/uday68/VyaparMitra-sub000/internal/domain/lang"
	"github.com/uday68/VyaparMitra-sub000/internal/domain/negotiation"
	"github.com/uday68/VyaparMitra-sub000/internal/infra"
	"github.com/uday68/VyaparMitra-sub000/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NegotiationRepository struct {
	db DBTX
}

func NewNegotiationRepository(db DBTX) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

const roomColumns = `id, session_id, vendor_id, customer_id, vendor_language, customer_language, status, last_message_at, agreement_reached, agreement_details, created_at, updated_at`

func (r *NegotiationRepository) CreateRoom(ctx context.Context, room *negotiation.Room) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO negotiation_rooms (id, session_id, vendor_id, vendor_language, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		room.ID(), room.SessionID(), room.VendorID(), room.VendorLanguage().String(),
		room.Status().String(), room.CreatedAt(), room.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to create negotiation room", err)
	}
	return nil
}

func (r *NegotiationRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*negotiation.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM negotiation_rooms WHERE session_id = $1`, sessionID)
	return scanRoom(row)
}

// AttachCustomer is first-join-wins: the guard matches only while no
// customer is set.
func (r *NegotiationRepository) AttachCustomer(ctx context.Context, sessionID, customerID uuid.UUID, customerLanguage lang.Language, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE negotiation_rooms
		SET customer_id = $2, customer_language = $3, status = 'ACTIVE', updated_at = $4
		WHERE session_id = $1 AND customer_id IS NULL AND status = 'WAITING'`,
		sessionID, customerID, customerLanguage.String(), now,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to attach customer", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "room already has a customer", nil)
	}
	return nil
}

// Complete is the compare-and-set terminal transition; a second completion
// matches zero rows.
func (r *NegotiationRepository) Complete(ctx context.Context, sessionID uuid.UUID, details string, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE negotiation_rooms
		SET status = 'COMPLETED', agreement_reached = TRUE, agreement_details = $2, updated_at = $3
		WHERE session_id = $1 AND status IN ('WAITING', 'ACTIVE')`,
		sessionID, details, now,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to complete negotiation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "negotiation not completable", nil)
	}
	return nil
}

// AbandonBySessionIDs abandons the rooms paired with expired sessions,
// leaving COMPLETED rooms untouched.
func (r *NegotiationRepository) AbandonBySessionIDs(ctx context.Context, sessionIDs []uuid.UUID, now time.Time) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE negotiation_rooms
		SET status = 'ABANDONED', updated_at = $2
		WHERE session_id = ANY($1) AND status IN ('WAITING', 'ACTIVE')`,
		sessionIDs, now,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to abandon rooms", err)
	}
	return nil
}

// PurgeTerminalBefore deletes terminal rooms (and their messages) whose last
// update predates the retention cutoff.
func (r *NegotiationRepository) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	_, err := r.db.Exec(ctx, `
		DELETE FROM messages WHERE session_id IN (
			SELECT session_id FROM negotiation_rooms
			WHERE status IN ('COMPLETED', 'ABANDONED') AND updated_at < $1
		)`, cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to purge messages", err)
	}

	tag, err := r.db.Exec(ctx, `
		DELETE FROM negotiation_rooms
		WHERE status IN ('COMPLETED', 'ABANDONED') AND updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr(infra.KindDBFailure, "failed to purge rooms", err)
	}
	return tag.RowsAffected(), nil
}

// AppendMessage is at-most-once per id: a retried append with the same id
// inserts nothing and reports false.
func (r *NegotiationRepository) AppendMessage(ctx context.Context, m *negotiation.Message) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, session_id, sender_id, sender_type, content, original_content,
			language, target_language, message_type, translation_status, audio_url, ts, delivered_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`,
		m.ID, m.SessionID, m.SenderID, m.SenderType.String(), m.Content, m.OriginalContent,
		m.Language.String(), m.TargetLanguage.String(), string(m.Type), m.TranslationStatus.String(),
		pgconv.StringPtrToPgtype(m.AudioURL), m.Timestamp,
		pgconv.TimePtrToPgtype(m.DeliveredAt), pgconv.TimePtrToPgtype(m.ReadAt),
	)
	if err != nil {
		return false, infra.WrapRepoErr(infra.KindDBFailure, "failed to append message", err)
	}

	inserted := tag.RowsAffected() == 1
	if inserted {
		_, err = r.db.Exec(ctx, `
			UPDATE negotiation_rooms SET last_message_at = $2, updated_at = $2
			WHERE session_id = $1`,
			m.SessionID, m.Timestamp,
		)
		if err != nil {
			return true, infra.WrapRepoErr(infra.KindDBFailure, "failed to update last_message_at", err)
		}
	}
	return inserted, nil
}

// History returns the most recent messages ordered oldest first.
func (r *NegotiationRepository) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]negotiation.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, sender_id, sender_type, content, original_content,
			language, target_language, message_type, translation_status, audio_url, ts, delivered_at, read_at
		FROM (
			SELECT * FROM messages WHERE session_id = $1 ORDER BY ts DESC, id DESC LIMIT $2
		) recent
		ORDER BY ts ASC, id ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load history", err)
	}
	defer rows.Close()

	var out []negotiation.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate history", err)
	}
	return out, nil
}

func (r *NegotiationRepository) FindMessage(ctx context.Context, id string) (*negotiation.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, session_id, sender_id, sender_type, content, original_content,
			language, target_language, message_type, translation_status, audio_url, ts, delivered_at, read_at
		FROM messages WHERE id = $1`, id)
	m, err := scanMessage(row)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ApplyTranslation upgrades a message in place, exactly once: the guard only
// matches PENDING rows. Late upgrades still land in terminal rooms; room
// status is never touched here.
func (r *NegotiationRepository) ApplyTranslation(ctx context.Context, messageID, content string, status negotiation.TranslationStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE messages SET content = $2, translation_status = $3
		WHERE id = $1 AND translation_status = 'PENDING'`,
		messageID, content, status.String(),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to apply translation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "message translation not pending", nil)
	}
	return nil
}

func (r *NegotiationRepository) MarkDelivered(ctx context.Context, sessionID uuid.UUID, messageID string, deliveredAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages SET delivered_at = $3
		WHERE id = $1 AND session_id = $2 AND delivered_at IS NULL`,
		messageID, sessionID, deliveredAt,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to mark message delivered", err)
	}
	return nil
}

func (r *NegotiationRepository) MarkRead(ctx context.Context, messageIDs []string, readAt time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE messages SET read_at = $2 WHERE id = ANY($1) AND read_at IS NULL`,
		messageIDs, readAt,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to mark messages read", err)
	}
	return nil
}

func scanRoom(row rowScanner) (*negotiation.Room, error) {
	var (
		id, sessionID, vendorID uuid.UUID
		customerID              pgtype.UUID
		vendorLanguage          string
		customerLanguage        pgtype.Text
		status                  string
		lastMessageAt           pgtype.Timestamptz
		agreementReached        bool
		agreementDetails        pgtype.Text
		createdAt, updatedAt    time.Time
	)
	err := row.Scan(&id, &sessionID, &vendorID, &customerID, &vendorLanguage, &customerLanguage,
		&status, &lastMessageAt, &agreementReached, &agreementDetails, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "negotiation room not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan negotiation room", err)
	}

	var customerLang *lang.Language
	if s := pgconv.StringPtrFromPgtype(customerLanguage); s != nil {
		l := lang.Language(*s)
		customerLang = &l
	}

	return negotiation.ReconstructRoom(
		id, sessionID, vendorID,
		pgconv.UUIDPtrFromPgtype(customerID),
		lang.Language(vendorLanguage),
		customerLang,
		negotiation.RoomStatus(status),
		pgconv.TimePtrFromPgtype(lastMessageAt),
		agreementReached,
		pgconv.StringPtrFromPgtype(agreementDetails),
		createdAt, updatedAt,
	), nil
}

func scanMessage(row rowScanner) (*negotiation.Message, error) {
	var (
		m                    negotiation.Message
		senderType, msgType  string
		language, targetLang string
		translationStatus    string
		audioURL             pgtype.Text
		deliveredAt, readAt  pgtype.Timestamptz
	)
	err := row.Scan(&m.ID, &m.SessionID, &m.SenderID, &senderType, &m.Content, &m.OriginalContent,
		&language, &targetLang, &msgType, &translationStatus, &audioURL, &m.Timestamp, &deliveredAt, &readAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "message not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan message", err)
	}

	m.SenderType = negotiation.SenderType(senderType)
	m.Type = negotiation.MessageType(msgType)
	m.Language = lang.Language(language)
	m.TargetLanguage = lang.Language(targetLang)
	m.TranslationStatus = negotiation.TranslationStatus(translationStatus)
	m.AudioURL = pgconv.StringPtrFromPgtype(audioURL)
	m.DeliveredAt = pgconv.TimePtrFromPgtype(deliveredAt)
	m.ReadAt = pgconv.TimePtrFromPgtype(readAt)
	return &m, nil
}
