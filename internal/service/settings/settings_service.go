package settings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/repository"
)

type SettingsUseCase interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, key domain.SettingKey, value json.RawMessage) (domain.Settings, error)
}

// SettingsService loads the typed settings snapshot. With a refresh interval
// the snapshot is reused until it goes stale.
type SettingsService struct {
	repo    repository.SettingsRepository
	refresh time.Duration
	now     func() time.Time

	mu       sync.Mutex
	cached   domain.Settings
	loadedAt time.Time
	loaded   bool
}

type SettingsServiceOption func(*SettingsService)

func WithRefreshInterval(d time.Duration) SettingsServiceOption {
	return func(s *SettingsService) {
		s.refresh = d
	}
}

func WithClock(now func() time.Time) SettingsServiceOption {
	return func(s *SettingsService) {
		s.now = now
	}
}

func NewSettingsService(repo repository.SettingsRepository, opts ...SettingsServiceOption) *SettingsService {
	s := &SettingsService{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && s.refresh > 0 && s.now().Sub(s.loadedAt) < s.refresh {
		return s.cached, nil
	}
	return s.loadLocked(ctx)
}

// Update validates value against the key's schema before storing it, so a
// bad write can never poison later loads.
func (s *SettingsService) Update(ctx context.Context, key domain.SettingKey, value json.RawMessage) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := current.Apply(key, value); err != nil {
		return domain.Settings{}, err
	}
	normalized, err := json.Marshal(current.Value(key))
	if err != nil {
		return domain.Settings{}, err
	}
	if err := s.repo.Upsert(ctx, key, normalized); err != nil {
		return domain.Settings{}, err
	}
	s.cached = current
	s.loadedAt = s.now()
	s.loaded = true
	return current, nil
}

func (s *SettingsService) loadLocked(ctx context.Context) (domain.Settings, error) {
	rows, err := s.repo.LoadAll(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	decoded, err := domain.DecodeSettings(rows)
	if err != nil {
		return domain.Settings{}, err
	}
	s.cached = decoded
	s.loadedAt = s.now()
	s.loaded = true
	return decoded, nil
}

var _ SettingsUseCase = (*SettingsService)(nil)
