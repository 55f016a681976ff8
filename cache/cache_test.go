package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weather-app/models"
)

type countingProvider struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (p *countingProvider) count(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	p.calls[key]++
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	p.count("weather")
	return models.WeatherData{City: city}, p.err
}

func (p *countingProvider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	p.count("coords")
	return models.WeatherData{City: coords.String()}, p.err
}

func (p *countingProvider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	p.count("forecast")
	return models.ForecastData{Location: city}, p.err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCachedProviderHitsAndExpiry(t *testing.T) {
	upstream := &countingProvider{}
	clk := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newCachedProvider(zaptest.NewLogger(t), upstream, time.Minute, clk.Now)
	ctx := context.Background()

	_, err := c.GetWeather(ctx, "Almaty")
	require.NoError(t, err)
	_, err = c.GetWeather(ctx, " almaty ")
	require.NoError(t, err)

	hits, misses := c.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, upstream.calls["weather"])

	clk.Advance(2 * time.Minute)
	_, err = c.GetWeather(ctx, "Almaty")
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls["weather"])
}

func TestCachedProviderForecastKeyIncludesDays(t *testing.T) {
	upstream := &countingProvider{}
	c := NewCachedProvider(zaptest.NewLogger(t), upstream, time.Minute)
	ctx := context.Background()

	for _, days := range []int{5, 5, 3} {
		_, err := c.FetchForecast(ctx, "Almaty", days)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, upstream.calls["forecast"])
	assert.Equal(t, "counting [Cached]", c.Name())
}

func TestCachedProviderCoordsRounding(t *testing.T) {
	upstream := &countingProvider{}
	c := NewCachedProvider(zaptest.NewLogger(t), upstream, time.Minute)
	ctx := context.Background()

	_, err := c.GetWeatherByCoords(ctx, models.Coordinates{Latitude: 43.2501, Longitude: 76.9499})
	require.NoError(t, err)
	_, err = c.GetWeatherByCoords(ctx, models.Coordinates{Latitude: 43.2499, Longitude: 76.9501})
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls["coords"])
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	upstream := &countingProvider{err: errors.New("upstream down")}
	c := NewCachedProvider(zaptest.NewLogger(t), upstream, time.Minute)
	ctx := context.Background()

	_, err := c.GetWeather(ctx, "Almaty")
	assert.Error(t, err)
	_, err = c.GetWeather(ctx, "Almaty")
	assert.Error(t, err)
	assert.Equal(t, 2, upstream.calls["weather"])
	assert.Equal(t, 0, c.Len())
}

func TestCachedProviderPruneExpired(t *testing.T) {
	upstream := &countingProvider{}
	clk := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newCachedProvider(zaptest.NewLogger(t), upstream, time.Minute, clk.Now)
	ctx := context.Background()

	_, _ = c.GetWeather(ctx, "Almaty")
	_, _ = c.FetchForecast(ctx, "Almaty", 5)
	clk.Advance(30 * time.Second)
	_, _ = c.GetWeather(ctx, "Astana")
	require.Equal(t, 3, c.Len())

	clk.Advance(45 * time.Second)
	assert.Equal(t, 2, c.PruneExpired())
	assert.Equal(t, 1, c.Len())
}
