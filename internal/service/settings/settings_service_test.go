package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) LoadAll(ctx context.Context) (map[domain.SettingKey]json.RawMessage, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).(map[domain.SettingKey]json.RawMessage)
	return rows, args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, key domain.SettingKey, value json.RawMessage) error {
	return m.Called(ctx, key, value).Error(0)
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	repo := &MockSettingsRepository{}
	repo.On("LoadAll", mock.Anything).Return(map[domain.SettingKey]json.RawMessage{}, nil)
	svc := NewSettingsService(repo)

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)
}

func TestSettingsService_Get_RejectsBadStoredValue(t *testing.T) {
	repo := &MockSettingsRepository{}
	repo.On("LoadAll", mock.Anything).Return(map[domain.SettingKey]json.RawMessage{
		domain.SettingBookingsOpen: json.RawMessage(`"yes"`),
	}, nil)
	svc := NewSettingsService(repo)

	_, err := svc.Get(context.Background())
	assert.True(t, domain.IsValidation(err))
}

func TestSettingsService_Get_UsesSnapshotUntilStale(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &MockSettingsRepository{}
	repo.On("LoadAll", mock.Anything).Return(map[domain.SettingKey]json.RawMessage{}, nil)
	svc := NewSettingsService(repo, WithRefreshInterval(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)
	_, err = svc.Get(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "LoadAll", 1)

	now = now.Add(2 * time.Minute)
	_, err = svc.Get(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "LoadAll", 2)
}

func TestSettingsService_Update(t *testing.T) {
	repo := &MockSettingsRepository{}
	repo.On("LoadAll", mock.Anything).Return(map[domain.SettingKey]json.RawMessage{}, nil)
	repo.On("Upsert", mock.Anything, domain.SettingNotificationChannels, json.RawMessage(`["whatsapp","sms"]`)).Return(nil)
	svc := NewSettingsService(repo)

	s, err := svc.Update(context.Background(), domain.SettingNotificationChannels, json.RawMessage(`[" WhatsApp","sms","sms"]`))
	require.NoError(t, err)
	assert.Equal(t, []domain.Channel{domain.ChannelWhatsApp, domain.ChannelSMS}, s.NotificationChannels)
	repo.AssertExpectations(t)
}

func TestSettingsService_Update_Rejections(t *testing.T) {
	repo := &MockSettingsRepository{}
	repo.On("LoadAll", mock.Anything).Return(map[domain.SettingKey]json.RawMessage{}, nil)
	svc := NewSettingsService(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, "bookings_opn", json.RawMessage(`false`))
	assert.ErrorIs(t, err, domain.ErrUnknownSetting)

	_, err = svc.Update(ctx, domain.SettingCurrency, json.RawMessage(`"naira"`))
	assert.True(t, domain.IsValidation(err))

	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettingsService_Update_StoreError(t *testing.T) {
	repo := &MockSettingsRepository{}
	repo.On("LoadAll", mock.Anything).Return(nil, errors.New("db down"))
	svc := NewSettingsService(repo)

	_, err := svc.Update(context.Background(), domain.SettingBookingsOpen, json.RawMessage(`false`))
	assert.EqualError(t, err, "db down")
}
