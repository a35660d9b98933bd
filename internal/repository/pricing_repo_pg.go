package repository

import (
	"context"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PricingRepository interface {
	ActiveRate(ctx context.Context, fromZoneID, toZoneID int64) (*domain.ZoneRate, error)
	ActiveAddonsByCodes(ctx context.Context, codes []string) ([]domain.Addon, error)
	ListRates(ctx context.Context) ([]domain.ZoneRate, error)
	UpsertRate(ctx context.Context, rate *domain.ZoneRate) error
	ListAddons(ctx context.Context, activeOnly bool) ([]domain.Addon, error)
	UpsertAddon(ctx context.Context, addon *domain.Addon) error
}

type PGPricingRepository struct {
	db *pgxpool.Pool
}

func NewPricingRepository(db *pgxpool.Pool) PricingRepository {
	return &PGPricingRepository{db: db}
}

const rateColumns = `id, from_zone_id, to_zone_id, (base_price * 100)::bigint, eta_text, active, created_at, updated_at`

func scanRate(row rowScanner) (*domain.ZoneRate, error) {
	var (
		rate  domain.ZoneRate
		price int64
	)
	if err := row.Scan(&rate.ID, &rate.FromZoneID, &rate.ToZoneID, &price, &rate.EtaText, &rate.Active, &rate.CreatedAt, &rate.UpdatedAt); err != nil {
		return nil, err
	}
	rate.BasePrice = domain.Money(price)
	return &rate, nil
}

const addonColumns = `id, code, name, (fee * 100)::bigint, active, created_at, updated_at`

func scanAddon(row rowScanner) (*domain.Addon, error) {
	var (
		addon domain.Addon
		fee   int64
	)
	if err := row.Scan(&addon.ID, &addon.Code, &addon.Name, &fee, &addon.Active, &addon.CreatedAt, &addon.UpdatedAt); err != nil {
		return nil, err
	}
	addon.Fee = domain.Money(fee)
	return &addon, nil
}

// ActiveRate returns the active rate for the ordered zone pair, or nil when
// none is configured. The reverse pair is never consulted.
func (r *PGPricingRepository) ActiveRate(ctx context.Context, fromZoneID, toZoneID int64) (*domain.ZoneRate, error) {
	rate, err := scanRate(r.db.QueryRow(ctx, `SELECT `+rateColumns+` FROM zone_rates
		WHERE from_zone_id=$1 AND to_zone_id=$2 AND active`, fromZoneID, toZoneID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return rate, nil
}

func (r *PGPricingRepository) ActiveAddonsByCodes(ctx context.Context, codes []string) ([]domain.Addon, error) {
	addons := make([]domain.Addon, 0)
	if len(codes) == 0 {
		return addons, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+addonColumns+` FROM addons WHERE active AND code = ANY($1) ORDER BY code`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAddon(rows)
		if err != nil {
			return nil, err
		}
		addons = append(addons, *a)
	}
	return addons, rows.Err()
}

func (r *PGPricingRepository) ListRates(ctx context.Context) ([]domain.ZoneRate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rateColumns+` FROM zone_rates ORDER BY from_zone_id, to_zone_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make([]domain.ZoneRate, 0)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rate)
	}
	return rates, rows.Err()
}

func (r *PGPricingRepository) UpsertRate(ctx context.Context, rate *domain.ZoneRate) error {
	err := r.db.QueryRow(ctx, `INSERT INTO zone_rates (from_zone_id, to_zone_id, base_price, eta_text, active)
		VALUES ($1, $2, $3::bigint::numeric / 100, $4, $5)
		ON CONFLICT ON CONSTRAINT zone_rates_pair_key DO UPDATE
		SET base_price=EXCLUDED.base_price, eta_text=EXCLUDED.eta_text, active=EXCLUDED.active, updated_at=now()
		RETURNING id, created_at, updated_at`,
		rate.FromZoneID, rate.ToZoneID, int64(rate.BasePrice), rate.EtaText, rate.Active).
		Scan(&rate.ID, &rate.CreatedAt, &rate.UpdatedAt)
	if isForeignKeyViolation(err) {
		return domain.NotFoundError{Resource: "zone"}
	}
	return err
}

func (r *PGPricingRepository) ListAddons(ctx context.Context, activeOnly bool) ([]domain.Addon, error) {
	rows, err := r.db.Query(ctx, `SELECT `+addonColumns+` FROM addons WHERE (NOT $1 OR active) ORDER BY code`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addons := make([]domain.Addon, 0)
	for rows.Next() {
		a, err := scanAddon(rows)
		if err != nil {
			return nil, err
		}
		addons = append(addons, *a)
	}
	return addons, rows.Err()
}

func (r *PGPricingRepository) UpsertAddon(ctx context.Context, addon *domain.Addon) error {
	return r.db.QueryRow(ctx, `INSERT INTO addons (code, name, fee, active)
		VALUES ($1, $2, $3::bigint::numeric / 100, $4)
		ON CONFLICT (code) DO UPDATE
		SET name=EXCLUDED.name, fee=EXCLUDED.fee, active=EXCLUDED.active, updated_at=now()
		RETURNING id, created_at, updated_at`,
		addon.Code, addon.Name, int64(addon.Fee), addon.Active).
		Scan(&addon.ID, &addon.CreatedAt, &addon.UpdatedAt)
}

var _ PricingRepository = (*PGPricingRepository)(nil)
