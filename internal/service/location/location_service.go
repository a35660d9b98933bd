package location

import (
	"context"
	"strings"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type LocationUseCase interface {
	ActiveStates(ctx context.Context) ([]domain.State, error)
	ActiveCities(ctx context.Context, stateID int64) ([]domain.City, error)
	ActiveAreas(ctx context.Context, cityID int64) ([]domain.Area, error)
	ZoneOf(ctx context.Context, areaID int64) (int64, bool, error)
	AreaLabel(ctx context.Context, areaID int64) (string, error)
	AreaParents(ctx context.Context, areaID int64) (domain.AreaParents, error)

	ListZones(ctx context.Context, cityID int64) ([]domain.Zone, error)
	CreateState(ctx context.Context, name string) (*domain.State, error)
	CreateCity(ctx context.Context, stateID int64, name string) (*domain.City, error)
	CreateZone(ctx context.Context, cityID int64, name string) (*domain.Zone, error)
	CreateArea(ctx context.Context, cityID int64, zoneID *int64, name string) (*domain.Area, error)
	AssignAreaZone(ctx context.Context, areaID int64, zoneID *int64) error
	SetActive(ctx context.Context, kind domain.LocationKind, id int64, active bool) error
}

// Cache holds customer-facing listings. found is false on a miss.
type Cache interface {
	GetStates(ctx context.Context) ([]domain.State, bool, error)
	SetStates(ctx context.Context, states []domain.State) error
	GetCities(ctx context.Context, stateID int64) ([]domain.City, bool, error)
	SetCities(ctx context.Context, stateID int64, cities []domain.City) error
	GetAreas(ctx context.Context, cityID int64) ([]domain.Area, bool, error)
	SetAreas(ctx context.Context, cityID int64, areas []domain.Area) error
	InvalidateLocations(ctx context.Context) error
}

type LocationService struct {
	repo  repository.LocationRepository
	cache Cache
	log   logrus.FieldLogger
}

type LocationServiceOption func(*LocationService)

func WithCache(cache Cache) LocationServiceOption {
	return func(s *LocationService) {
		s.cache = cache
	}
}

func WithLogger(log logrus.FieldLogger) LocationServiceOption {
	return func(s *LocationService) {
		s.log = log
	}
}

func NewLocationService(repo repository.LocationRepository, opts ...LocationServiceOption) *LocationService {
	s := &LocationService{repo: repo, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocationService) ActiveStates(ctx context.Context) ([]domain.State, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetStates(ctx); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).Warn("read states from cache")
		}
	}

	states, err := s.repo.ListStates(ctx, true)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetStates(ctx, states); err != nil {
			s.log.WithError(err).Warn("write states to cache")
		}
	}
	return states, nil
}

func (s *LocationService) ActiveCities(ctx context.Context, stateID int64) ([]domain.City, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetCities(ctx, stateID); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).WithField("state_id", stateID).Warn("read cities from cache")
		}
	}

	cities, err := s.repo.ListCities(ctx, stateID, true)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCities(ctx, stateID, cities); err != nil {
			s.log.WithError(err).WithField("state_id", stateID).Warn("write cities to cache")
		}
	}
	return cities, nil
}

func (s *LocationService) ActiveAreas(ctx context.Context, cityID int64) ([]domain.Area, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.GetAreas(ctx, cityID); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.log.WithError(err).WithField("city_id", cityID).Warn("read areas from cache")
		}
	}

	areas, err := s.repo.ListAreas(ctx, cityID, true)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAreas(ctx, cityID, areas); err != nil {
			s.log.WithError(err).WithField("city_id", cityID).Warn("write areas to cache")
		}
	}
	return areas, nil
}

// ZoneOf resolves an area to its zone. It never falls back to a default:
// unknown, inactive or unzoned areas report found=false. Pricing reads go
// straight to the store so a deactivation takes effect immediately.
func (s *LocationService) ZoneOf(ctx context.Context, areaID int64) (int64, bool, error) {
	if areaID <= 0 {
		return 0, false, nil
	}
	return s.repo.ZoneOfArea(ctx, areaID)
}

func (s *LocationService) AreaLabel(ctx context.Context, areaID int64) (string, error) {
	return s.repo.AreaLabel(ctx, areaID)
}

func (s *LocationService) AreaParents(ctx context.Context, areaID int64) (domain.AreaParents, error) {
	return s.repo.AreaParents(ctx, areaID)
}

func (s *LocationService) ListZones(ctx context.Context, cityID int64) ([]domain.Zone, error) {
	return s.repo.ListZones(ctx, cityID)
}

func (s *LocationService) CreateState(ctx context.Context, name string) (*domain.State, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	state := &domain.State{Name: name, Active: true}
	if err := s.repo.CreateState(ctx, state); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return state, nil
}

func (s *LocationService) CreateCity(ctx context.Context, stateID int64, name string) (*domain.City, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	city := &domain.City{StateID: stateID, Name: name, Active: true}
	if err := s.repo.CreateCity(ctx, city); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return city, nil
}

func (s *LocationService) CreateZone(ctx context.Context, cityID int64, name string) (*domain.Zone, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	zone := &domain.Zone{CityID: cityID, Name: name, Active: true}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, err
	}
	return zone, nil
}

func (s *LocationService) CreateArea(ctx context.Context, cityID int64, zoneID *int64, name string) (*domain.Area, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	area := &domain.Area{CityID: cityID, ZoneID: zoneID, Name: name, Active: true}
	if err := s.repo.CreateArea(ctx, area); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return area, nil
}

func (s *LocationService) AssignAreaZone(ctx context.Context, areaID int64, zoneID *int64) error {
	if err := s.repo.AssignAreaZone(ctx, areaID, zoneID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *LocationService) SetActive(ctx context.Context, kind domain.LocationKind, id int64, active bool) error {
	if !kind.IsValid() {
		return domain.ValidationError{Field: "kind", Msg: "must be one of states, cities, zones, areas"}
	}
	if err := s.repo.SetActive(ctx, kind, id, active); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *LocationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLocations(ctx); err != nil {
		s.log.WithError(err).Warn("invalidate location cache")
	}
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ValidationError{Field: "name", Msg: "is required"}
	}
	return name, nil
}

var _ LocationUseCase = (*LocationService)(nil)
