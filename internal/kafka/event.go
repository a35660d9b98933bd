package kafka

import (
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is created or changes status.
// It carries everything needed to render customer notifications.
type BookingEvent struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	BookingID     int64                `json:"booking_id"`
	TrackingID    string               `json:"tracking_id"`
	Status        domain.BookingStatus `json:"status"`
	SenderName    string               `json:"sender_name"`
	SenderPhone   string               `json:"sender_phone"`
	ReceiverName  string               `json:"receiver_name"`
	ReceiverPhone string               `json:"receiver_phone"`
	PriceTotal    domain.Money         `json:"price_total"`
	EtaText       string               `json:"eta_text"`
	Note          string               `json:"note,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, note string, at time.Time) BookingEvent {
	return BookingEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		BookingID:     b.ID,
		TrackingID:    b.TrackingID,
		Status:        b.Status,
		SenderName:    b.Sender.Name,
		SenderPhone:   b.Sender.Phone,
		ReceiverName:  b.Receiver.Name,
		ReceiverPhone: b.Receiver.Phone,
		PriceTotal:    b.PriceTotal,
		EtaText:       b.EtaText,
		Note:          note,
		OccurredAt:    at,
	}
}
