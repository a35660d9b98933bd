package pricing

import (
	"context"
	"sort"
	"strings"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/repository"
)

type PricingUseCase interface {
	Quote(ctx context.Context, pickupAreaID, dropoffAreaID int64, addonCodes []string) (domain.PriceQuote, error)
	ActiveAddons(ctx context.Context) ([]domain.Addon, error)

	ListRates(ctx context.Context) ([]domain.ZoneRate, error)
	UpsertRate(ctx context.Context, rate domain.ZoneRate) (*domain.ZoneRate, error)
	ListAddons(ctx context.Context) ([]domain.Addon, error)
	UpsertAddon(ctx context.Context, addon domain.Addon) (*domain.Addon, error)
}

// ZoneResolver maps an area to its pricing zone.
type ZoneResolver interface {
	ZoneOf(ctx context.Context, areaID int64) (int64, bool, error)
}

type PricingService struct {
	zones ZoneResolver
	repo  repository.PricingRepository
}

func NewPricingService(zones ZoneResolver, repo repository.PricingRepository) *PricingService {
	return &PricingService{zones: zones, repo: repo}
}

// Quote prices a pickup/dropoff pair plus add-ons. Expected failures
// (unzoned area, missing route) come back as an unsuccessful quote; the
// error return is reserved for storage failures.
func (s *PricingService) Quote(ctx context.Context, pickupAreaID, dropoffAreaID int64, addonCodes []string) (domain.PriceQuote, error) {
	pickupZone, ok, err := s.zones.ZoneOf(ctx, pickupAreaID)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if !ok {
		return domain.FailedQuote(domain.QuoteInvalidPickupArea), nil
	}

	dropoffZone, ok, err := s.zones.ZoneOf(ctx, dropoffAreaID)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if !ok {
		return domain.FailedQuote(domain.QuoteInvalidDropoffArea), nil
	}

	rate, err := s.repo.ActiveRate(ctx, pickupZone, dropoffZone)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if rate == nil {
		return domain.FailedQuote(domain.QuoteNoRouteAvailable), nil
	}

	addons, err := s.repo.ActiveAddonsByCodes(ctx, NormalizeCodes(addonCodes))
	if err != nil {
		return domain.PriceQuote{}, err
	}

	var addonsPrice domain.Money
	applied := make([]string, 0, len(addons))
	for _, a := range addons {
		addonsPrice = addonsPrice.Add(a.Fee)
		applied = append(applied, a.Code)
	}
	sort.Strings(applied)

	return domain.PriceQuote{
		Success:       true,
		BasePrice:     rate.BasePrice,
		AddonsPrice:   addonsPrice,
		TotalPrice:    rate.BasePrice.Add(addonsPrice),
		EtaText:       rate.EtaText,
		AddonsApplied: applied,
	}, nil
}

func (s *PricingService) ActiveAddons(ctx context.Context) ([]domain.Addon, error) {
	return s.repo.ListAddons(ctx, true)
}

func (s *PricingService) ListRates(ctx context.Context) ([]domain.ZoneRate, error) {
	return s.repo.ListRates(ctx)
}

func (s *PricingService) UpsertRate(ctx context.Context, rate domain.ZoneRate) (*domain.ZoneRate, error) {
	if rate.FromZoneID <= 0 || rate.ToZoneID <= 0 {
		return nil, domain.ValidationError{Field: "zone", Msg: "from_zone_id and to_zone_id are required"}
	}
	if rate.BasePrice.IsNegative() {
		return nil, domain.ValidationError{Field: "base_price", Msg: "must not be negative"}
	}
	rate.EtaText = strings.TrimSpace(rate.EtaText)
	if err := s.repo.UpsertRate(ctx, &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

func (s *PricingService) ListAddons(ctx context.Context) ([]domain.Addon, error) {
	return s.repo.ListAddons(ctx, false)
}

func (s *PricingService) UpsertAddon(ctx context.Context, addon domain.Addon) (*domain.Addon, error) {
	codes := NormalizeCodes([]string{addon.Code})
	if len(codes) == 0 {
		return nil, domain.ValidationError{Field: "code", Msg: "is required"}
	}
	if addon.Fee.IsNegative() {
		return nil, domain.ValidationError{Field: "fee", Msg: "must not be negative"}
	}
	addon.Code = codes[0]
	addon.Name = strings.TrimSpace(addon.Name)
	if err := s.repo.UpsertAddon(ctx, &addon); err != nil {
		return nil, err
	}
	return &addon, nil
}

// NormalizeCodes upper-cases, trims and de-duplicates add-on codes, dropping
// blanks. Order of first appearance is kept.
func NormalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

var _ PricingUseCase = (*PricingService)(nil)
