package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mokarr/appointpro/internal/domain/entities"
	"github.com/mokarr/appointpro/internal/domain/providers"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

// CachedFacilityAdapter wraps FacilityAdapter with caching
type CachedFacilityAdapter struct {
	adapter repositories.FacilityRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedFacilityAdapter creates a new cached facility adapter
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) repositories.FacilityRepository {
	return &CachedFacilityAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Cache key generators
func facilityCacheKey(id string) string {
	return fmt.Sprintf("facility:%s", id)
}

func locationHoursCacheKey(locationID string, weekday time.Weekday) string {
	return fmt.Sprintf("hours:location:%s:%d", locationID, weekday)
}

func organizationHoursCacheKey(organizationID string, weekday time.Weekday) string {
	return fmt.Sprintf("hours:organization:%s:%d", organizationID, weekday)
}

// GetByID retrieves a facility by ID with caching
func (a *CachedFacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	cacheKey := facilityCacheKey(id)

	var facility entities.Facility
	if a.fromCache(ctx, cacheKey, &facility) {
		return &facility, nil
	}

	fetched, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, fetched)
	return fetched, nil
}

// FindLocationHours returns the location's hours with caching. An unset day is cached too.
func (a *CachedFacilityAdapter) FindLocationHours(ctx context.Context, locationID string, weekday time.Weekday) (*entities.OperatingHours, error) {
	return a.findHours(ctx, locationHoursCacheKey(locationID, weekday), func() (*entities.OperatingHours, error) {
		return a.adapter.FindLocationHours(ctx, locationID, weekday)
	})
}

// FindOrganizationHours returns the organization default with caching
func (a *CachedFacilityAdapter) FindOrganizationHours(ctx context.Context, organizationID string, weekday time.Weekday) (*entities.OperatingHours, error) {
	return a.findHours(ctx, organizationHoursCacheKey(organizationID, weekday), func() (*entities.OperatingHours, error) {
		return a.adapter.FindOrganizationHours(ctx, organizationID, weekday)
	})
}

func (a *CachedFacilityAdapter) findHours(ctx context.Context, cacheKey string, load func() (*entities.OperatingHours, error)) (*entities.OperatingHours, error) {
	// "null" in the cache is a remembered absence
	var hours *entities.OperatingHours
	if a.fromCache(ctx, cacheKey, &hours) {
		return hours, nil
	}

	hours, err := load()
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, hours)
	return hours, nil
}

func (a *CachedFacilityAdapter) fromCache(ctx context.Context, cacheKey string, dest interface{}) bool {
	cached, err := a.cache.Get(ctx, cacheKey)
	if err != nil {
		observability.RecordCacheMiss(ctx, a.metrics, cacheKey)
		return false
	}
	if err := json.Unmarshal(cached, dest); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to unmarshal cached value")
		observability.RecordCacheMiss(ctx, a.metrics, cacheKey)
		return false
	}
	observability.RecordCacheHit(ctx, a.metrics, cacheKey)
	return true
}

// storeAsync updates the cache without blocking the response
func (a *CachedFacilityAdapter) storeAsync(cacheKey string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to marshal value for cache")
		return
	}
	go func() {
		if err := a.cache.Set(context.Background(), cacheKey, data, a.ttl); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache value")
		}
	}()
}
