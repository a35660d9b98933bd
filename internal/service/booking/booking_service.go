package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/kafka"
	"github.com/Domenick1991/parcelbooking/internal/repository"
	"github.com/Domenick1991/parcelbooking/internal/service/tracking"
	"github.com/Domenick1991/parcelbooking/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput, quote domain.PriceQuote) (*domain.Booking, error)
	QuoteAndCreate(ctx context.Context, input CreateBookingInput) (*domain.Booking, domain.PriceQuote, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*Details, error)
	GetByID(ctx context.Context, id int64) (*Details, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, status domain.BookingStatus, note string) (*domain.Booking, error)
	AssignRider(ctx context.Context, id int64, name, phone string) (*domain.Booking, error)
	UpdateAdminNotes(ctx context.Context, id int64, notes string) (*domain.Booking, error)
}

type IDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type Quoter interface {
	Quote(ctx context.Context, pickupAreaID, dropoffAreaID int64, addonCodes []string) (domain.PriceQuote, error)
}

// AreaResolver reports which city and state own an area.
type AreaResolver interface {
	AreaParents(ctx context.Context, areaID int64) (domain.AreaParents, error)
}

type SettingsProvider interface {
	Get(ctx context.Context) (domain.Settings, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Details is a booking with its full status history, oldest first.
type Details struct {
	Booking *domain.Booking             `json:"booking"`
	History []domain.StatusHistoryEntry `json:"history"`
}

type PartyInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,phone"`
	WhatsApp string `json:"whatsapp" validate:"omitempty,phone"`
}

type AddressInput struct {
	StateID  int64  `json:"state_id" validate:"gt=0"`
	CityID   int64  `json:"city_id" validate:"gt=0"`
	AreaID   int64  `json:"area_id" validate:"gt=0"`
	Street   string `json:"street" validate:"required,max=255"`
	Landmark string `json:"landmark" validate:"max=255"`
}

type CreateBookingInput struct {
	Sender             PartyInput   `json:"sender"`
	Receiver           PartyInput   `json:"receiver"`
	Pickup             AddressInput `json:"pickup"`
	Dropoff            AddressInput `json:"dropoff"`
	PackageDescription string       `json:"package_description" validate:"max=500"`
	CustomerNotes      string       `json:"customer_notes" validate:"max=1000"`
	AddonCodes         []string     `json:"addon_codes"`
}

func (in *CreateBookingInput) normalize() {
	for _, p := range []*PartyInput{&in.Sender, &in.Receiver} {
		p.Name = strings.TrimSpace(p.Name)
		p.Phone = validation.NormalizePhone(p.Phone)
		p.WhatsApp = validation.NormalizePhone(p.WhatsApp)
	}
	for _, a := range []*AddressInput{&in.Pickup, &in.Dropoff} {
		a.Street = strings.TrimSpace(a.Street)
		a.Landmark = strings.TrimSpace(a.Landmark)
	}
	in.PackageDescription = strings.TrimSpace(in.PackageDescription)
	in.CustomerNotes = strings.TrimSpace(in.CustomerNotes)
}

const maxAdminNotes = 2000

type BookingService struct {
	bookings     repository.BookingRepository
	ids          IDGenerator
	quoter       Quoter
	areas        AreaResolver
	settings     SettingsProvider
	producer     Producer
	bookingTopic string
	idAttempts   int
	validate     *validator.Validate
	log          logrus.FieldLogger
	now          func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithQuoter(q Quoter) BookingServiceOption {
	return func(s *BookingService) {
		s.quoter = q
	}
}

// WithAreaResolver makes creation reject addresses whose city or state
// does not own the chosen area.
func WithAreaResolver(r AreaResolver) BookingServiceOption {
	return func(s *BookingService) {
		s.areas = r
	}
}

func WithSettings(p SettingsProvider) BookingServiceOption {
	return func(s *BookingService) {
		s.settings = p
	}
}

// WithProducer publishes booking events to topic.
func WithProducer(p Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.bookingTopic = topic
	}
}

// WithTrackingIDAttempts bounds how many times creation retries after
// losing a tracking id race.
func WithTrackingIDAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.idAttempts = n
		}
	}
}

func WithLogger(log logrus.FieldLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(bookings repository.BookingRepository, ids IDGenerator, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		bookings:   bookings,
		ids:        ids,
		idAttempts: 5,
		validate:   validation.New(),
		log:        logrus.StandardLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking persists a pending booking priced by quote. The quote's
// prices are copied verbatim and the booking and its first history entry
// are written in one transaction. Only the tracking id step is retried.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput, quote domain.PriceQuote) (*domain.Booking, error) {
	if err := s.checkInput(ctx, &input); err != nil {
		return nil, err
	}
	return s.create(ctx, input, quote)
}

func (s *BookingService) create(ctx context.Context, input CreateBookingInput, quote domain.PriceQuote) (*domain.Booking, error) {
	if !quote.Success {
		return nil, domain.ErrQuoteRequired
	}
	if err := s.ensureOpen(ctx); err != nil {
		return nil, err
	}

	addons := make([]string, len(quote.AddonsApplied))
	copy(addons, quote.AddonsApplied)

	booking := &domain.Booking{
		Sender:             domain.Party{Name: input.Sender.Name, Phone: input.Sender.Phone, WhatsApp: input.Sender.WhatsApp},
		Receiver:           domain.Party{Name: input.Receiver.Name, Phone: input.Receiver.Phone, WhatsApp: input.Receiver.WhatsApp},
		Pickup:             toAddress(input.Pickup),
		Dropoff:            toAddress(input.Dropoff),
		PackageDescription: input.PackageDescription,
		CustomerNotes:      input.CustomerNotes,
		PriceBase:          quote.BasePrice,
		PriceAddons:        quote.AddonsPrice,
		PriceTotal:         quote.TotalPrice,
		AddonsSelected:     addons,
		EtaText:            quote.EtaText,
		Status:             domain.BookingStatusPending,
	}

	var entry *domain.StatusHistoryEntry
	for attempt := 1; ; attempt++ {
		id, err := s.ids.Generate(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrTrackingIDExhausted) {
				s.log.WithError(err).Error("tracking ids exhausted")
			}
			return nil, err
		}
		booking.TrackingID = id
		entry = &domain.StatusHistoryEntry{
			Status:    domain.BookingStatusPending,
			Note:      domain.InitialStatusNote,
			CreatedBy: domain.ActorSystem,
		}

		err = s.bookings.CreateWithHistory(ctx, booking, entry)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrTrackingIDTaken) {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"tracking_id": id, "attempt": attempt}).Warn("tracking id taken, retrying")
		if attempt >= s.idAttempts {
			return nil, fmt.Errorf("%w after %d attempts", domain.ErrTrackingIDTaken, attempt)
		}
	}

	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "tracking_id": booking.TrackingID}).Info("booking created")
	s.publish(ctx, kafka.EventBookingCreated, booking, entry.Note)
	return booking, nil
}

// QuoteAndCreate prices the input server-side and creates the booking from
// that quote. An unsuccessful quote is returned with domain.ErrQuoteRequired.
func (s *BookingService) QuoteAndCreate(ctx context.Context, input CreateBookingInput) (*domain.Booking, domain.PriceQuote, error) {
	if s.quoter == nil {
		return nil, domain.PriceQuote{}, errors.New("booking service has no quoter")
	}
	if err := s.checkInput(ctx, &input); err != nil {
		return nil, domain.PriceQuote{}, err
	}
	quote, err := s.quoter.Quote(ctx, input.Pickup.AreaID, input.Dropoff.AreaID, input.AddonCodes)
	if err != nil {
		return nil, domain.PriceQuote{}, err
	}
	if !quote.Success {
		return nil, quote, domain.ErrQuoteRequired
	}
	booking, err := s.create(ctx, input, quote)
	return booking, quote, err
}

func (s *BookingService) checkInput(ctx context.Context, input *CreateBookingInput) error {
	input.normalize()
	if err := validation.Struct(s.validate, *input); err != nil {
		return err
	}
	if err := s.checkAddress(ctx, "pickup", input.Pickup); err != nil {
		return err
	}
	return s.checkAddress(ctx, "dropoff", input.Dropoff)
}

// checkAddress requires the address's state and city to be the ones that
// own its area.
func (s *BookingService) checkAddress(ctx context.Context, field string, a AddressInput) error {
	if s.areas == nil {
		return nil
	}
	parents, err := s.areas.AreaParents(ctx, a.AreaID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.ValidationError{Field: field + ".area_id", Msg: "unknown area", Err: err}
		}
		return err
	}
	switch {
	case parents.CityID != a.CityID:
		return domain.ValidationError{Field: field + ".city_id", Msg: "area does not belong to this city"}
	case parents.StateID != a.StateID:
		return domain.ValidationError{Field: field + ".state_id", Msg: "city does not belong to this state"}
	}
	return nil
}

func (s *BookingService) GetByTrackingID(ctx context.Context, trackingID string) (*Details, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))
	if !tracking.Valid(trackingID) {
		return nil, domain.ErrBookingNotFound
	}
	booking, err := s.bookings.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	return s.withHistory(ctx, booking)
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*Details, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withHistory(ctx, booking)
}

func (s *BookingService) withHistory(ctx context.Context, booking *domain.Booking) (*Details, error) {
	history, err := s.bookings.History(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	return &Details{Booking: booking, History: history}, nil
}

func (s *BookingService) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status", Err: domain.ErrInvalidStatus}
	}
	return s.bookings.List(ctx, filter)
}

// TransitionStatus moves a booking to status and records the change as an
// admin history entry. Any status may follow any other except pending, which
// only creation assigns. An empty note is replaced by the suggested note.
func (s *BookingService) TransitionStatus(ctx context.Context, id int64, status domain.BookingStatus, note string) (*domain.Booking, error) {
	if !status.IsTransitionTarget() {
		return nil, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("cannot transition to %q", status), Err: domain.ErrInvalidStatus}
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = domain.SuggestedStatusNote(status)
	}

	entry := &domain.StatusHistoryEntry{Status: status, Note: note, CreatedBy: domain.ActorAdmin}
	updated, err := s.bookings.TransitionStatus(ctx, id, entry)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": updated.ID, "status": status}).Info("booking status changed")
	s.publish(ctx, kafka.EventBookingStatusChanged, updated, note)
	return updated, nil
}

func (s *BookingService) AssignRider(ctx context.Context, id int64, name, phone string) (*domain.Booking, error) {
	name = strings.TrimSpace(name)
	phone = validation.NormalizePhone(phone)
	rider := struct {
		Name  string `json:"rider_name" validate:"max=120"`
		Phone string `json:"rider_phone" validate:"omitempty,phone"`
	}{name, phone}
	if err := validation.Struct(s.validate, rider); err != nil {
		return nil, err
	}
	return s.bookings.AssignRider(ctx, id, name, phone)
}

func (s *BookingService) UpdateAdminNotes(ctx context.Context, id int64, notes string) (*domain.Booking, error) {
	notes = strings.TrimSpace(notes)
	if len(notes) > maxAdminNotes {
		return nil, domain.ValidationError{Field: "admin_notes", Msg: fmt.Sprintf("must be at most %d characters", maxAdminNotes)}
	}
	return s.bookings.UpdateAdminNotes(ctx, id, notes)
}

func (s *BookingService) ensureOpen(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !current.BookingsOpen {
		return domain.ErrBookingsClosed
	}
	return nil
}

// publish never fails the caller; the booking is already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, note string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, note, s.now())
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.TrackingID, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":       eventType,
			"tracking_id": booking.TrackingID,
		}).Warn("failed to publish booking event")
	}
}

func toAddress(a AddressInput) domain.Address {
	return domain.Address{StateID: a.StateID, CityID: a.CityID, AreaID: a.AreaID, Street: a.Street, Landmark: a.Landmark}
}

var _ BookingUseCase = (*BookingService)(nil)
