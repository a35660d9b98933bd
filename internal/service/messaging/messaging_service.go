package messaging

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/kafka"
	"github.com/Domenick1991/parcelbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type MessagingUseCase interface {
	ListTemplates(ctx context.Context) ([]domain.MessageTemplate, error)
	UpsertTemplate(ctx context.Context, tpl domain.MessageTemplate) (*domain.MessageTemplate, error)
	Preview(ctx context.Context, key string, vars map[string]string) (string, error)
	ListLogs(ctx context.Context, bookingID *int64, limit, offset int) ([]domain.MessageLog, error)
	HandleEvent(ctx context.Context, event kafka.BookingEvent) error
}

type SettingsProvider interface {
	Get(ctx context.Context) (domain.Settings, error)
}

// Sender delivers one rendered message and returns the status to log.
type Sender interface {
	Send(ctx context.Context, msg domain.MessageLog) (string, error)
}

type MessagingService struct {
	repo     repository.MessageRepository
	settings SettingsProvider
	sender   Sender
	log      logrus.FieldLogger
}

func NewMessagingService(repo repository.MessageRepository, settings SettingsProvider, sender Sender, log logrus.FieldLogger) *MessagingService {
	return &MessagingService{repo: repo, settings: settings, sender: sender, log: log}
}

var templateKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

func (s *MessagingService) ListTemplates(ctx context.Context) ([]domain.MessageTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

func (s *MessagingService) UpsertTemplate(ctx context.Context, tpl domain.MessageTemplate) (*domain.MessageTemplate, error) {
	tpl.Key = strings.TrimSpace(tpl.Key)
	tpl.Body = strings.TrimSpace(tpl.Body)
	switch {
	case !templateKeyPattern.MatchString(tpl.Key):
		return nil, domain.ValidationError{Field: "key", Msg: "must be lower_snake_case"}
	case !tpl.Channel.IsValid():
		return nil, domain.ValidationError{Field: "channel", Msg: "must be one of sms, whatsapp, email"}
	case tpl.Body == "":
		return nil, domain.ValidationError{Field: "body", Msg: "is required"}
	}
	if unknown := UnknownPlaceholders(tpl.Body); len(unknown) > 0 {
		return nil, domain.ValidationError{Field: "body", Msg: fmt.Sprintf("unknown placeholders: %s", strings.Join(unknown, ", "))}
	}
	if err := s.repo.UpsertTemplate(ctx, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Preview renders a stored template with sample values, overridden by vars.
func (s *MessagingService) Preview(ctx context.Context, key string, vars map[string]string) (string, error) {
	tpl, err := s.repo.GetTemplate(ctx, key)
	if err != nil {
		return "", err
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	sample := map[string]string{
		"business_name": current.BusinessName,
		"support_phone": current.SupportPhone,
		"tracking_id":   "DL20250101001",
		"sender_name":   "Ada Obi",
		"receiver_name": "Bola Ade",
		"status":        "confirmed",
		"price_total":   formatPrice(current.Currency, domain.MustMoney("1500")),
		"eta_text":      "45-60 minutes",
		"note":          "Rider assigned",
	}
	for k, v := range vars {
		sample[k] = v
	}
	return Render(tpl.Body, sample), nil
}

func (s *MessagingService) ListLogs(ctx context.Context, bookingID *int64, limit, offset int) ([]domain.MessageLog, error) {
	return s.repo.ListLogs(ctx, bookingID, limit, offset)
}

// HandleEvent renders the template for the booking's new status and logs
// one message per recipient. Disabled notifications, a missing or inactive
// template and a disabled channel are all silent no-ops.
func (s *MessagingService) HandleEvent(ctx context.Context, event kafka.BookingEvent) error {
	log := s.log.WithFields(logrus.Fields{"event_id": event.ID, "tracking_id": event.TrackingID, "status": event.Status})

	current, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !current.NotificationsEnabled {
		log.Debug("notifications disabled")
		return nil
	}

	key := domain.TemplateKeyForStatus(event.Status)
	tpl, err := s.repo.GetTemplate(ctx, key)
	if err != nil {
		if domain.IsNotFound(err) {
			log.WithField("template_key", key).Debug("no template for status")
			return nil
		}
		return err
	}
	if !tpl.Active || !current.ChannelEnabled(tpl.Channel) {
		log.WithField("template_key", key).Debug("template inactive or channel disabled")
		return nil
	}
	if tpl.Channel == domain.ChannelEmail {
		// Bookings carry no email address.
		log.WithField("template_key", key).Warn("email template has no recipient")
		return nil
	}

	body := Render(tpl.Body, eventVars(event, current))
	bookingID := event.BookingID
	for _, recipient := range recipients(event) {
		entry := domain.MessageLog{
			BookingID:   &bookingID,
			TemplateKey: key,
			Channel:     tpl.Channel,
			Recipient:   recipient,
			Body:        body,
		}
		status, err := s.sender.Send(ctx, entry)
		if err != nil {
			log.WithError(err).WithField("recipient", recipient).Warn("send notification")
			status = "failed"
		}
		entry.Status = status
		if err := s.repo.AppendLog(ctx, &entry); err != nil {
			return err
		}
	}
	return nil
}

func eventVars(e kafka.BookingEvent, current domain.Settings) map[string]string {
	return map[string]string{
		"business_name": current.BusinessName,
		"support_phone": current.SupportPhone,
		"tracking_id":   e.TrackingID,
		"sender_name":   e.SenderName,
		"receiver_name": e.ReceiverName,
		"status":        humanStatus(string(e.Status)),
		"price_total":   formatPrice(current.Currency, e.PriceTotal),
		"eta_text":      e.EtaText,
		"note":          e.Note,
	}
}

func recipients(e kafka.BookingEvent) []string {
	out := make([]string, 0, 2)
	for _, p := range []string{e.SenderPhone, e.ReceiverPhone} {
		if p == "" {
			continue
		}
		if len(out) == 1 && out[0] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

func formatPrice(currency string, m domain.Money) string {
	if currency == "" {
		return m.String()
	}
	return currency + " " + m.String()
}

var _ MessagingUseCase = (*MessagingService)(nil)
