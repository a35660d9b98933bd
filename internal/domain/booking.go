package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusNotAccepted BookingStatus = "not_accepted"
	BookingStatusInProgress  BookingStatus = "in_progress"
	BookingStatusDelivered   BookingStatus = "delivered"
	BookingStatusCancelled   BookingStatus = "cancelled"
)

var bookingStatuses = map[BookingStatus]struct{}{
	BookingStatusPending:     {},
	BookingStatusConfirmed:   {},
	BookingStatusNotAccepted: {},
	BookingStatusInProgress:  {},
	BookingStatusDelivered:   {},
	BookingStatusCancelled:   {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingStatuses[s]
	return ok
}

// IsTerminal reports the conventional end states. Transitions out of them
// are not blocked; the flag is advisory for clients.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusDelivered, BookingStatusCancelled, BookingStatusNotAccepted:
		return true
	}
	return false
}

// IsTransitionTarget reports whether staff may move a booking into s.
// pending is assigned only at creation.
func (s BookingStatus) IsTransitionTarget() bool {
	return s.IsValid() && s != BookingStatusPending
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
	}
	return status, nil
}

// SuggestedStatusNote is recorded when staff change status without a note.
func SuggestedStatusNote(s BookingStatus) string {
	switch s {
	case BookingStatusConfirmed:
		return "Booking confirmed"
	case BookingStatusNotAccepted:
		return "Booking could not be accepted"
	case BookingStatusInProgress:
		return "Parcel picked up and in transit"
	case BookingStatusDelivered:
		return "Parcel delivered"
	case BookingStatusCancelled:
		return "Booking cancelled"
	default:
		return "Status updated"
	}
}

// InitialStatusNote is the history note written with every new booking.
const InitialStatusNote = "Booking created and awaiting confirmation"

// Actor records who produced a history entry.
type Actor string

const (
	ActorSystem Actor = "system"
	ActorAdmin  Actor = "admin"
)

// Party is a sender or receiver. There is deliberately no email field.
type Party struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

type Address struct {
	StateID  int64  `json:"state_id"`
	CityID   int64  `json:"city_id"`
	AreaID   int64  `json:"area_id"`
	Street   string `json:"street"`
	Landmark string `json:"landmark,omitempty"`
}

// Booking is a parcel pickup request. PriceBase, PriceAddons, PriceTotal and
// AddonsSelected are copied from the quote at creation and never rewritten.
type Booking struct {
	ID                 int64         `json:"id"`
	TrackingID         string        `json:"tracking_id"`
	Sender             Party         `json:"sender"`
	Receiver           Party         `json:"receiver"`
	Pickup             Address       `json:"pickup"`
	Dropoff            Address       `json:"dropoff"`
	PackageDescription string        `json:"package_description,omitempty"`
	CustomerNotes      string        `json:"customer_notes,omitempty"`
	PriceBase          Money         `json:"price_base"`
	PriceAddons        Money         `json:"price_addons"`
	PriceTotal         Money         `json:"price_total"`
	AddonsSelected     []string      `json:"addons_selected"`
	EtaText            string        `json:"eta_text,omitempty"`
	Status             BookingStatus `json:"status"`
	RiderName          string        `json:"rider_name,omitempty"`
	RiderPhone         string        `json:"rider_phone,omitempty"`
	AdminNotes         string        `json:"admin_notes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// StatusHistoryEntry is one append-only audit row for a status a booking held.
type StatusHistoryEntry struct {
	ID        int64         `json:"id"`
	BookingID int64         `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	Note      string        `json:"note"`
	CreatedBy Actor         `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
}

type BookingFilter struct {
	Status BookingStatus
	Limit  int
	Offset int
}
