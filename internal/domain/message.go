package domain

import "time"

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail:
		return true
	}
	return false
}

// MessageTemplate is keyed by the event it renders for, e.g. booking_created
// or status_confirmed. Body holds {{placeholder}} tokens.
type MessageTemplate struct {
	Key       string    `json:"key"`
	Channel   Channel   `json:"channel"`
	Body      string    `json:"body"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageLogStatusLogged marks a rendered message that was recorded only.
const MessageLogStatusLogged = "logged"

// MessageLog is append-only.
type MessageLog struct {
	ID          int64     `json:"id"`
	BookingID   *int64    `json:"booking_id,omitempty"`
	TemplateKey string    `json:"template_key"`
	Channel     Channel   `json:"channel"`
	Recipient   string    `json:"recipient"`
	Body        string    `json:"body"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TemplateKeyForStatus returns the template key used when a booking enters s.
func TemplateKeyForStatus(s BookingStatus) string {
	if s == BookingStatusPending {
		return "booking_created"
	}
	return "status_" + string(s)
}
