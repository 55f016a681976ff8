package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"weather-app/models"
)

// RateLimitedProvider wraps a Provider with separate limiters for weather and forecast calls
type RateLimitedProvider struct {
	provider        Provider
	weatherLimiter  *rate.Limiter
	forecastLimiter *rate.Limiter
	name            string
}

// NewRateLimitedProvider creates a provider that waits for its limiter before every upstream call.
// weatherRPS and forecastRPS are the maximum requests per second (can be fractional),
// burst is the maximum burst size allowed for each.
func NewRateLimitedProvider(provider Provider, weatherRPS, forecastRPS float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider:        provider,
		weatherLimiter:  rate.NewLimiter(rate.Limit(weatherRPS), burst),
		forecastLimiter: rate.NewLimiter(rate.Limit(forecastRPS), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// GetWeather implements WeatherProvider with rate limiting
func (r *RateLimitedProvider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	if err := r.weatherLimiter.Wait(ctx); err != nil {
		return models.WeatherData{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return r.provider.GetWeather(ctx, city)
}

// GetWeatherByCoords implements WeatherProvider with rate limiting
func (r *RateLimitedProvider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	if err := r.weatherLimiter.Wait(ctx); err != nil {
		return models.WeatherData{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return r.provider.GetWeatherByCoords(ctx, coords)
}

// FetchForecast implements ForecastSource with rate limiting
func (r *RateLimitedProvider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return models.ForecastData{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return r.provider.FetchForecast(ctx, city, days)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}

var _ Provider = (*RateLimitedProvider)(nil)
