package repository

import (
	"context"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, error)
	SetStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.ContactMessage, error)
}

type PGContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) ContactRepository {
	return &PGContactRepository{db: db}
}

const contactColumns = `id, name, phone, email, subject, message, status, created_at, updated_at`

func scanContact(row rowScanner) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Email, &m.Subject, &m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFoundError{Resource: "contact message", Err: err}
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	if msg.Status == "" {
		msg.Status = domain.ContactStatusNew
	}
	return r.db.QueryRow(ctx, `INSERT INTO contact_messages (name, phone, email, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		msg.Name, msg.Phone, msg.Email, msg.Subject, msg.Message, msg.Status).
		Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
}

func (r *PGContactRepository) List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contact_messages
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, string(status), limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ContactMessage, 0)
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *PGContactRepository) SetStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.ContactMessage, error) {
	return scanContact(r.db.QueryRow(ctx, `UPDATE contact_messages SET status=$2, updated_at=now()
		WHERE id=$1 RETURNING `+contactColumns, id, status))
}

var _ ContactRepository = (*PGContactRepository)(nil)
