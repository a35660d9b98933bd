package domain

import "time"

// ZoneRate is the directional base price between an ordered pair of zones.
type ZoneRate struct {
	ID         int64     `json:"id"`
	FromZoneID int64     `json:"from_zone_id"`
	ToZoneID   int64     `json:"to_zone_id"`
	BasePrice  Money     `json:"base_price"`
	EtaText    string    `json:"eta_text"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Addon is a flat fee service option identified by a unique code.
type Addon struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Fee       Money     `json:"fee"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteFailure is the reason a quote could not be produced. These are
// expected outcomes and travel as values, not errors.
type QuoteFailure string

const (
	QuoteInvalidPickupArea  QuoteFailure = "InvalidPickupArea"
	QuoteInvalidDropoffArea QuoteFailure = "InvalidDropoffArea"
	QuoteNoRouteAvailable   QuoteFailure = "NoRouteAvailable"
)

// PriceQuote is computed on demand and never stored as such; its price fields
// are copied into a Booking at creation.
type PriceQuote struct {
	Success       bool         `json:"success"`
	BasePrice     Money        `json:"base_price"`
	AddonsPrice   Money        `json:"addons_price"`
	TotalPrice    Money        `json:"total_price"`
	EtaText       string       `json:"eta_text,omitempty"`
	AddonsApplied []string     `json:"addons_applied,omitempty"`
	Error         QuoteFailure `json:"error,omitempty"`
}

func FailedQuote(reason QuoteFailure) PriceQuote {
	return PriceQuote{Success: false, Error: reason}
}
