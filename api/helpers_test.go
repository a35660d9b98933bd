package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/parcelbooking/internal/auth"
	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/kafka"
	"github.com/Domenick1991/parcelbooking/internal/service/booking"
	"github.com/Domenick1991/parcelbooking/internal/service/contact"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "valid-token"

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput, quote domain.PriceQuote) (*domain.Booking, error) {
	args := m.Called(ctx, input, quote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) QuoteAndCreate(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, domain.PriceQuote, error) {
	args := m.Called(ctx, input)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Get(1).(domain.PriceQuote), args.Error(2)
}

func (m *MockBookingUseCase) GetByTrackingID(ctx context.Context, trackingID string) (*booking.Details, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Details), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, id int64) (*booking.Details, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Details), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingUseCase) TransitionStatus(ctx context.Context, id int64, status domain.BookingStatus, note string) (*domain.Booking, error) {
	args := m.Called(ctx, id, status, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AssignRider(ctx context.Context, id int64, name, phone string) (*domain.Booking, error) {
	args := m.Called(ctx, id, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateAdminNotes(ctx context.Context, id int64, notes string) (*domain.Booking, error) {
	args := m.Called(ctx, id, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockLocationUseCase struct {
	mock.Mock
}

func (m *MockLocationUseCase) ActiveStates(ctx context.Context) ([]domain.State, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.State)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) ActiveCities(ctx context.Context, stateID int64) ([]domain.City, error) {
	args := m.Called(ctx, stateID)
	v, _ := args.Get(0).([]domain.City)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) ActiveAreas(ctx context.Context, cityID int64) ([]domain.Area, error) {
	args := m.Called(ctx, cityID)
	v, _ := args.Get(0).([]domain.Area)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) ZoneOf(ctx context.Context, areaID int64) (int64, bool, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockLocationUseCase) AreaLabel(ctx context.Context, areaID int64) (string, error) {
	args := m.Called(ctx, areaID)
	return args.String(0), args.Error(1)
}

func (m *MockLocationUseCase) AreaParents(ctx context.Context, areaID int64) (domain.AreaParents, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).(domain.AreaParents), args.Error(1)
}

func (m *MockLocationUseCase) ListZones(ctx context.Context, cityID int64) ([]domain.Zone, error) {
	args := m.Called(ctx, cityID)
	v, _ := args.Get(0).([]domain.Zone)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) CreateState(ctx context.Context, name string) (*domain.State, error) {
	args := m.Called(ctx, name)
	v, _ := args.Get(0).(*domain.State)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) CreateCity(ctx context.Context, stateID int64, name string) (*domain.City, error) {
	args := m.Called(ctx, stateID, name)
	v, _ := args.Get(0).(*domain.City)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) CreateZone(ctx context.Context, cityID int64, name string) (*domain.Zone, error) {
	args := m.Called(ctx, cityID, name)
	v, _ := args.Get(0).(*domain.Zone)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) CreateArea(ctx context.Context, cityID int64, zoneID *int64, name string) (*domain.Area, error) {
	args := m.Called(ctx, cityID, zoneID, name)
	v, _ := args.Get(0).(*domain.Area)
	return v, args.Error(1)
}

func (m *MockLocationUseCase) AssignAreaZone(ctx context.Context, areaID int64, zoneID *int64) error {
	return m.Called(ctx, areaID, zoneID).Error(0)
}

func (m *MockLocationUseCase) SetActive(ctx context.Context, kind domain.LocationKind, id int64, active bool) error {
	return m.Called(ctx, kind, id, active).Error(0)
}

type MockPricingUseCase struct {
	mock.Mock
}

func (m *MockPricingUseCase) Quote(ctx context.Context, pickupAreaID, dropoffAreaID int64, addonCodes []string) (domain.PriceQuote, error) {
	args := m.Called(ctx, pickupAreaID, dropoffAreaID, addonCodes)
	return args.Get(0).(domain.PriceQuote), args.Error(1)
}

func (m *MockPricingUseCase) ActiveAddons(ctx context.Context) ([]domain.Addon, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.Addon)
	return v, args.Error(1)
}

func (m *MockPricingUseCase) ListRates(ctx context.Context) ([]domain.ZoneRate, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.ZoneRate)
	return v, args.Error(1)
}

func (m *MockPricingUseCase) UpsertRate(ctx context.Context, rate domain.ZoneRate) (*domain.ZoneRate, error) {
	args := m.Called(ctx, rate)
	v, _ := args.Get(0).(*domain.ZoneRate)
	return v, args.Error(1)
}

func (m *MockPricingUseCase) ListAddons(ctx context.Context) ([]domain.Addon, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.Addon)
	return v, args.Error(1)
}

func (m *MockPricingUseCase) UpsertAddon(ctx context.Context, addon domain.Addon) (*domain.Addon, error) {
	args := m.Called(ctx, addon)
	v, _ := args.Get(0).(*domain.Addon)
	return v, args.Error(1)
}

type MockContactUseCase struct {
	mock.Mock
}

func (m *MockContactUseCase) Submit(ctx context.Context, input contact.SubmitInput) (*domain.ContactMessage, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(*domain.ContactMessage)
	return v, args.Error(1)
}

func (m *MockContactUseCase) List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, error) {
	args := m.Called(ctx, status, limit, offset)
	v, _ := args.Get(0).([]domain.ContactMessage)
	return v, args.Error(1)
}

func (m *MockContactUseCase) SetStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.ContactMessage, error) {
	args := m.Called(ctx, id, status)
	v, _ := args.Get(0).(*domain.ContactMessage)
	return v, args.Error(1)
}

type MockMessagingUseCase struct {
	mock.Mock
}

func (m *MockMessagingUseCase) ListTemplates(ctx context.Context) ([]domain.MessageTemplate, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.MessageTemplate)
	return v, args.Error(1)
}

func (m *MockMessagingUseCase) UpsertTemplate(ctx context.Context, tpl domain.MessageTemplate) (*domain.MessageTemplate, error) {
	args := m.Called(ctx, tpl)
	v, _ := args.Get(0).(*domain.MessageTemplate)
	return v, args.Error(1)
}

func (m *MockMessagingUseCase) Preview(ctx context.Context, key string, vars map[string]string) (string, error) {
	args := m.Called(ctx, key, vars)
	return args.String(0), args.Error(1)
}

func (m *MockMessagingUseCase) ListLogs(ctx context.Context, bookingID *int64, limit, offset int) ([]domain.MessageLog, error) {
	args := m.Called(ctx, bookingID, limit, offset)
	v, _ := args.Get(0).([]domain.MessageLog)
	return v, args.Error(1)
}

func (m *MockMessagingUseCase) HandleEvent(ctx context.Context, event kafka.BookingEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockSettingsUseCase struct {
	mock.Mock
}

func (m *MockSettingsUseCase) Get(ctx context.Context) (domain.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockSettingsUseCase) Update(ctx context.Context, key domain.SettingKey, value json.RawMessage) (domain.Settings, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(domain.Settings), args.Error(1)
}

type MockLoginService struct {
	mock.Mock
}

func (m *MockLoginService) Login(ctx context.Context, ip, password string) (auth.Token, error) {
	args := m.Called(ctx, ip, password)
	return args.Get(0).(auth.Token), args.Error(1)
}

type staticVerifier struct{}

func (staticVerifier) Verify(raw string) (*auth.Claims, error) {
	if raw != testToken {
		return nil, domain.ErrUnauthorized
	}
	return &auth.Claims{Role: auth.RoleAdmin}, nil
}

type testServer struct {
	router    *gin.Engine
	bookings  *MockBookingUseCase
	locations *MockLocationUseCase
	pricing   *MockPricingUseCase
	contact   *MockContactUseCase
	messaging *MockMessagingUseCase
	settings  *MockSettingsUseCase
	login     *MockLoginService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testLogger()

	s := &testServer{
		bookings:  &MockBookingUseCase{},
		locations: &MockLocationUseCase{},
		pricing:   &MockPricingUseCase{},
		contact:   &MockContactUseCase{},
		messaging: &MockMessagingUseCase{},
		settings:  &MockSettingsUseCase{},
		login:     &MockLoginService{},
	}
	s.router = NewRouter(Handlers{
		Bookings:  NewBookingHandler(s.bookings, s.locations, s.settings, nil, log),
		Locations: NewLocationHandler(s.locations, log),
		Pricing:   NewPricingHandler(s.pricing, log),
		Contact:   NewContactHandler(s.contact, log),
		Messaging: NewMessagingHandler(s.messaging, log),
		Settings:  NewSettingsHandler(s.settings, log),
		Auth:      NewAuthHandler(s.login, log),
	}, RouterOptions{Verifier: staticVerifier{}, Log: log})

	t.Cleanup(func() {
		s.bookings.AssertExpectations(t)
		s.locations.AssertExpectations(t)
		s.pricing.AssertExpectations(t)
		s.contact.AssertExpectations(t)
		s.messaging.AssertExpectations(t)
		s.settings.AssertExpectations(t)
		s.login.AssertExpectations(t)
	})
	return s
}

// do sends body (marshalled unless it is already a string) and returns the
// recorder. Admin requests carry the test bearer token.
func (s *testServer) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
