package repository

import (
	"context"
	"encoding/json"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository stores raw JSON values. Decoding and validation live in
// domain.Settings.
type SettingsRepository interface {
	LoadAll(ctx context.Context) (map[domain.SettingKey]json.RawMessage, error)
	Upsert(ctx context.Context, key domain.SettingKey, value json.RawMessage) error
}

type PGSettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) SettingsRepository {
	return &PGSettingsRepository{db: db}
}

func (r *PGSettingsRepository) LoadAll(ctx context.Context) (map[domain.SettingKey]json.RawMessage, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value::text FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.SettingKey]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value string
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[domain.SettingKey(key)] = json.RawMessage(value)
	}
	return out, rows.Err()
}

func (r *PGSettingsRepository) Upsert(ctx context.Context, key domain.SettingKey, value json.RawMessage) error {
	_, err := r.db.Exec(ctx, `INSERT INTO app_settings (key, value) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`, string(key), string(value))
	return err
}

var _ SettingsRepository = (*PGSettingsRepository)(nil)
