package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationRepository interface {
	ListStates(ctx context.Context, activeOnly bool) ([]domain.State, error)
	ListCities(ctx context.Context, stateID int64, activeOnly bool) ([]domain.City, error)
	ListZones(ctx context.Context, cityID int64) ([]domain.Zone, error)
	ListAreas(ctx context.Context, cityID int64, activeOnly bool) ([]domain.Area, error)
	ZoneOfArea(ctx context.Context, areaID int64) (int64, bool, error)
	AreaParents(ctx context.Context, areaID int64) (domain.AreaParents, error)
	AreaLabel(ctx context.Context, areaID int64) (string, error)
	CreateState(ctx context.Context, state *domain.State) error
	CreateCity(ctx context.Context, city *domain.City) error
	CreateZone(ctx context.Context, zone *domain.Zone) error
	CreateArea(ctx context.Context, area *domain.Area) error
	AssignAreaZone(ctx context.Context, areaID int64, zoneID *int64) error
	SetActive(ctx context.Context, kind domain.LocationKind, id int64, active bool) error
}

type PGLocationRepository struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) LocationRepository {
	return &PGLocationRepository{db: db}
}

func (r *PGLocationRepository) ListStates(ctx context.Context, activeOnly bool) ([]domain.State, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, active, created_at FROM states
		WHERE (NOT $1 OR active) ORDER BY name`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make([]domain.State, 0)
	for rows.Next() {
		var s domain.State
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func (r *PGLocationRepository) ListCities(ctx context.Context, stateID int64, activeOnly bool) ([]domain.City, error) {
	rows, err := r.db.Query(ctx, `SELECT c.id, c.state_id, c.name, c.active, c.created_at FROM cities c
		JOIN states s ON s.id = c.state_id
		WHERE c.state_id=$1 AND (NOT $2 OR (c.active AND s.active)) ORDER BY c.name`, stateID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]domain.City, 0)
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.StateID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *PGLocationRepository) ListZones(ctx context.Context, cityID int64) ([]domain.Zone, error) {
	rows, err := r.db.Query(ctx, `SELECT id, city_id, name, active, created_at FROM zones
		WHERE city_id=$1 ORDER BY name`, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := make([]domain.Zone, 0)
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.CityID, &z.Name, &z.Active, &z.CreatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *PGLocationRepository) ListAreas(ctx context.Context, cityID int64, activeOnly bool) ([]domain.Area, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.city_id, a.zone_id, a.name, a.active, a.created_at FROM areas a
		JOIN cities c ON c.id = a.city_id
		JOIN states s ON s.id = c.state_id
		WHERE a.city_id=$1 AND (NOT $2 OR (a.active AND c.active AND s.active)) ORDER BY a.name`, cityID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]domain.Area, 0)
	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.ID, &a.CityID, &a.ZoneID, &a.Name, &a.Active, &a.CreatedAt); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// AreaLabel returns "Area, City, State" for printing. Inactive rows still
// resolve so older bookings keep their labels.
func (r *PGLocationRepository) AreaLabel(ctx context.Context, areaID int64) (string, error) {
	var label string
	err := r.db.QueryRow(ctx, `SELECT a.name || ', ' || c.name || ', ' || s.name FROM areas a
		JOIN cities c ON c.id = a.city_id
		JOIN states s ON s.id = c.state_id
		WHERE a.id=$1`, areaID).Scan(&label)
	if err != nil {
		if isNoRows(err) {
			return "", domain.NotFoundError{Resource: "area"}
		}
		return "", err
	}
	return label, nil
}

// ZoneOfArea returns the zone of an area when the area, its zone, its city
// and its state are all active. found is false otherwise.
func (r *PGLocationRepository) ZoneOfArea(ctx context.Context, areaID int64) (int64, bool, error) {
	var zoneID int64
	err := r.db.QueryRow(ctx, `SELECT z.id FROM areas a
		JOIN zones z ON z.id = a.zone_id
		JOIN cities c ON c.id = a.city_id
		JOIN states s ON s.id = c.state_id
		WHERE a.id=$1 AND a.active AND z.active AND c.active AND s.active`, areaID).Scan(&zoneID)
	if err != nil {
		if isNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return zoneID, true, nil
}

func (r *PGLocationRepository) AreaParents(ctx context.Context, areaID int64) (domain.AreaParents, error) {
	p := domain.AreaParents{AreaID: areaID}
	err := r.db.QueryRow(ctx, `SELECT a.city_id, c.state_id FROM areas a
		JOIN cities c ON c.id = a.city_id
		WHERE a.id=$1`, areaID).Scan(&p.CityID, &p.StateID)
	if err != nil {
		if isNoRows(err) {
			return domain.AreaParents{}, domain.NotFoundError{Resource: "area"}
		}
		return domain.AreaParents{}, err
	}
	return p, nil
}

func (r *PGLocationRepository) CreateState(ctx context.Context, state *domain.State) error {
	err := r.db.QueryRow(ctx, `INSERT INTO states (name, active) VALUES ($1, $2) RETURNING id, created_at`,
		state.Name, state.Active).Scan(&state.ID, &state.CreatedAt)
	if isUniqueViolation(err, "") {
		return domain.ValidationError{Field: "name", Msg: "state already exists"}
	}
	return err
}

func (r *PGLocationRepository) CreateCity(ctx context.Context, city *domain.City) error {
	err := r.db.QueryRow(ctx, `INSERT INTO cities (state_id, name, active) VALUES ($1, $2, $3) RETURNING id, created_at`,
		city.StateID, city.Name, city.Active).Scan(&city.ID, &city.CreatedAt)
	switch {
	case isForeignKeyViolation(err):
		return domain.NotFoundError{Resource: "state"}
	case isUniqueViolation(err, ""):
		return domain.ValidationError{Field: "name", Msg: "city already exists in state"}
	}
	return err
}

func (r *PGLocationRepository) CreateZone(ctx context.Context, zone *domain.Zone) error {
	err := r.db.QueryRow(ctx, `INSERT INTO zones (city_id, name, active) VALUES ($1, $2, $3) RETURNING id, created_at`,
		zone.CityID, zone.Name, zone.Active).Scan(&zone.ID, &zone.CreatedAt)
	switch {
	case isForeignKeyViolation(err):
		return domain.NotFoundError{Resource: "city"}
	case isUniqueViolation(err, ""):
		return domain.ValidationError{Field: "name", Msg: "zone already exists in city"}
	}
	return err
}

func (r *PGLocationRepository) CreateArea(ctx context.Context, area *domain.Area) error {
	err := r.db.QueryRow(ctx, `INSERT INTO areas (city_id, zone_id, name, active)
		SELECT $1, $2, $3, $4
		WHERE $2::bigint IS NULL OR EXISTS (SELECT 1 FROM zones WHERE id=$2 AND city_id=$1)
		RETURNING id, created_at`,
		area.CityID, area.ZoneID, area.Name, area.Active).Scan(&area.ID, &area.CreatedAt)
	switch {
	case isNoRows(err):
		return domain.ValidationError{Field: "zone_id", Msg: "zone does not belong to the area's city"}
	case isForeignKeyViolation(err):
		return domain.NotFoundError{Resource: "city"}
	case isUniqueViolation(err, ""):
		return domain.ValidationError{Field: "name", Msg: "area already exists in city"}
	}
	return err
}

// AssignAreaZone sets or clears an area's zone. The zone must belong to the
// same city as the area.
func (r *PGLocationRepository) AssignAreaZone(ctx context.Context, areaID int64, zoneID *int64) error {
	res, err := r.db.Exec(ctx, `UPDATE areas a SET zone_id=$2
		WHERE a.id=$1 AND ($2::bigint IS NULL OR EXISTS (SELECT 1 FROM zones z WHERE z.id=$2 AND z.city_id=a.city_id))`,
		areaID, zoneID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "area or zone in the same city"}
	}
	return nil
}

func (r *PGLocationRepository) SetActive(ctx context.Context, kind domain.LocationKind, id int64, active bool) error {
	if !kind.IsValid() {
		return domain.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown location kind %q", kind)}
	}
	// kind is one of four fixed table names.
	res, err := r.db.Exec(ctx, `UPDATE `+string(kind)+` SET active=$1 WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: string(kind)}
	}
	return nil
}

var _ LocationRepository = (*PGLocationRepository)(nil)
