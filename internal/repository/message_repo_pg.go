package repository

import (
	"context"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository interface {
	ListTemplates(ctx context.Context) ([]domain.MessageTemplate, error)
	GetTemplate(ctx context.Context, key string) (*domain.MessageTemplate, error)
	UpsertTemplate(ctx context.Context, tpl *domain.MessageTemplate) error
	AppendLog(ctx context.Context, entry *domain.MessageLog) error
	ListLogs(ctx context.Context, bookingID *int64, limit, offset int) ([]domain.MessageLog, error)
}

type PGMessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &PGMessageRepository{db: db}
}

const templateColumns = `key, channel, body, active, updated_at`

func scanTemplate(row rowScanner) (*domain.MessageTemplate, error) {
	var t domain.MessageTemplate
	if err := row.Scan(&t.Key, &t.Channel, &t.Body, &t.Active, &t.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.NotFoundError{Resource: "template", Err: err}
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGMessageRepository) ListTemplates(ctx context.Context) ([]domain.MessageTemplate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+templateColumns+` FROM message_templates ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MessageTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *PGMessageRepository) GetTemplate(ctx context.Context, key string) (*domain.MessageTemplate, error) {
	return scanTemplate(r.db.QueryRow(ctx, `SELECT `+templateColumns+` FROM message_templates WHERE key=$1`, key))
}

func (r *PGMessageRepository) UpsertTemplate(ctx context.Context, tpl *domain.MessageTemplate) error {
	return r.db.QueryRow(ctx, `INSERT INTO message_templates (key, channel, body, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET channel=EXCLUDED.channel, body=EXCLUDED.body, active=EXCLUDED.active, updated_at=now()
		RETURNING updated_at`,
		tpl.Key, tpl.Channel, tpl.Body, tpl.Active).Scan(&tpl.UpdatedAt)
}

func (r *PGMessageRepository) AppendLog(ctx context.Context, entry *domain.MessageLog) error {
	return r.db.QueryRow(ctx, `INSERT INTO message_logs (booking_id, template_key, channel, recipient, body, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		entry.BookingID, entry.TemplateKey, entry.Channel, entry.Recipient, entry.Body, entry.Status).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PGMessageRepository) ListLogs(ctx context.Context, bookingID *int64, limit, offset int) ([]domain.MessageLog, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, template_key, channel, recipient, body, status, created_at
		FROM message_logs
		WHERE ($1::bigint IS NULL OR booking_id = $1)
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, bookingID, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MessageLog, 0)
	for rows.Next() {
		var l domain.MessageLog
		if err := rows.Scan(&l.ID, &l.BookingID, &l.TemplateKey, &l.Channel, &l.Recipient, &l.Body, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

var _ MessageRepository = (*PGMessageRepository)(nil)
