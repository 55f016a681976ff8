// Package cache wraps an upstream provider with in-memory TTL caching.
package cache

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"weather-app/datasource"
	"weather-app/models"
)

// CachedProvider wraps a datasource.Provider and adds caching functionality
type CachedProvider struct {
	logger        *zap.Logger
	source        datasource.Provider
	cacheDuration time.Duration

	weather  *store[models.WeatherData]
	forecast *store[models.ForecastData]

	statsMutex     sync.Mutex
	cacheHitCount  int
	cacheMissCount int
}

var _ datasource.Provider = (*CachedProvider)(nil)

// NewCachedProvider creates a new cached wrapper around a provider
func NewCachedProvider(logger *zap.Logger, source datasource.Provider, cacheDuration time.Duration) *CachedProvider {
	return newCachedProvider(logger, source, cacheDuration, time.Now)
}

func newCachedProvider(logger *zap.Logger, source datasource.Provider, cacheDuration time.Duration, now func() time.Time) *CachedProvider {
	return &CachedProvider{
		logger:        logger,
		source:        source,
		cacheDuration: cacheDuration,
		weather:       newStore[models.WeatherData](now),
		forecast:      newStore[models.ForecastData](now),
	}
}

// Name returns the name of the underlying provider with a [Cached] suffix
func (c *CachedProvider) Name() string {
	return c.source.Name() + " [Cached]"
}

// GetWeather fetches weather for a city, using the cache when available
func (c *CachedProvider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	return cached(c, c.weather, "city:"+normalize(city), func() (models.WeatherData, error) {
		return c.source.GetWeather(ctx, city)
	})
}

// GetWeatherByCoords fetches weather for a position, using the cache when available.
// Positions within roughly a kilometre share an entry.
func (c *CachedProvider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	key := fmt.Sprintf("coords:%.2f,%.2f", round2(coords.Latitude), round2(coords.Longitude))
	return cached(c, c.weather, key, func() (models.WeatherData, error) {
		return c.source.GetWeatherByCoords(ctx, coords)
	})
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedProvider) CacheStats() (hits, misses int) {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	return c.cacheHitCount, c.cacheMissCount
}

// PruneExpired removes every entry older than the cache duration and returns the number removed
func (c *CachedProvider) PruneExpired() int {
	return c.weather.prune(c.cacheDuration) + c.forecast.prune(c.cacheDuration)
}

// Len returns the number of cached weather and forecast entries
func (c *CachedProvider) Len() int {
	return c.weather.len() + c.forecast.len()
}

func cached[T any](c *CachedProvider, s *store[T], key string, fetch func() (T, error)) (T, error) {
	if data, age, ok := s.get(key, c.cacheDuration); ok {
		c.statsMutex.Lock()
		c.cacheHitCount++
		c.statsMutex.Unlock()

		c.logger.Debug("cache hit",
			zap.String("key", key),
			zap.String("provider", c.source.Name()),
			zap.Duration("age", age.Round(time.Second)),
		)
		return data, nil
	}

	c.statsMutex.Lock()
	c.cacheMissCount++
	c.statsMutex.Unlock()

	c.logger.Debug("cache miss, fetching fresh data",
		zap.String("key", key),
		zap.String("provider", c.source.Name()),
	)

	data, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	s.put(key, data)
	return data, nil
}

func normalize(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
