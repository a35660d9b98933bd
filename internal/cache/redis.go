package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/parcelbooking/config"
	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client       *redis.Client
	locationsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, locationsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), locationsTTL)
}

func NewRedisCacheWithClient(client *redis.Client, locationsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, locationsTTL: locationsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetStates(ctx context.Context) ([]domain.State, bool, error) {
	var states []domain.State
	ok, err := c.getJSON(ctx, statesKey(), &states)
	return states, ok, err
}

func (c *RedisCache) SetStates(ctx context.Context, states []domain.State) error {
	return c.setJSON(ctx, statesKey(), states)
}

func (c *RedisCache) GetCities(ctx context.Context, stateID int64) ([]domain.City, bool, error) {
	var cities []domain.City
	ok, err := c.getJSON(ctx, citiesKey(stateID), &cities)
	return cities, ok, err
}

func (c *RedisCache) SetCities(ctx context.Context, stateID int64, cities []domain.City) error {
	return c.setJSON(ctx, citiesKey(stateID), cities)
}

func (c *RedisCache) GetAreas(ctx context.Context, cityID int64) ([]domain.Area, bool, error) {
	var areas []domain.Area
	ok, err := c.getJSON(ctx, areasKey(cityID), &areas)
	return areas, ok, err
}

func (c *RedisCache) SetAreas(ctx context.Context, cityID int64, areas []domain.Area) error {
	return c.setJSON(ctx, areasKey(cityID), areas)
}

// InvalidateLocations drops every cached location listing.
func (c *RedisCache) InvalidateLocations(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, locationsPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// NextTrackingSeq returns a per-day counter used as the starting point when
// searching for a free tracking sequence. The key expires after two days.
func (c *RedisCache) NextTrackingSeq(ctx context.Context, day string) (int64, error) {
	key := trackingSeqKey(day)
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RegisterLoginFailure counts a failed login for ip within window.
func (c *RedisCache) RegisterLoginFailure(ctx context.Context, ip string, window time.Duration) (int64, error) {
	key := loginAttemptsKey(ip)
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *RedisCache) LoginFailures(ctx context.Context, ip string) (int64, error) {
	n, err := c.client.Get(ctx, loginAttemptsKey(ip)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCache) ResetLoginFailures(ctx context.Context, ip string) error {
	return c.client.Del(ctx, loginAttemptsKey(ip)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.locationsTTL).Err()
}

const locationsPrefix = "cache:locations:"

func statesKey() string {
	return locationsPrefix + "states"
}

func citiesKey(stateID int64) string {
	return fmt.Sprintf("%sstate:%d:cities", locationsPrefix, stateID)
}

func areasKey(cityID int64) string {
	return fmt.Sprintf("%scity:%d:areas", locationsPrefix, cityID)
}

func trackingSeqKey(day string) string {
	return "tracking:seq:" + day
}

func loginAttemptsKey(ip string) string {
	return "auth:login_failures:" + ip
}
