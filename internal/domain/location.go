package domain

import "time"

type State struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type City struct {
	ID        int64     `json:"id"`
	StateID   int64     `json:"state_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Zone groups areas of one city for pricing.
type Zone struct {
	ID        int64     `json:"id"`
	CityID    int64     `json:"city_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Area belongs to a city and optionally to a zone. An area without a zone
// cannot be quoted.
type Area struct {
	ID        int64     `json:"id"`
	CityID    int64     `json:"city_id"`
	ZoneID    *int64    `json:"zone_id,omitempty"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AreaParents is the city and state an area belongs to.
type AreaParents struct {
	AreaID  int64
	CityID  int64
	StateID int64
}

// LocationKind names a reference table whose rows can be toggled active.
type LocationKind string

const (
	LocationKindState LocationKind = "states"
	LocationKindCity  LocationKind = "cities"
	LocationKindZone  LocationKind = "zones"
	LocationKindArea  LocationKind = "areas"
)

func (k LocationKind) IsValid() bool {
	switch k {
	case LocationKindState, LocationKindCity, LocationKindZone, LocationKindArea:
		return true
	}
	return false
}
