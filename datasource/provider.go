package datasource

import (
	"context"
	"errors"
	"fmt"

	"weather-app/models"
)

var (
	// ErrCityNotFound is returned when the upstream API does not know the requested city.
	ErrCityNotFound = errors.New("city not found")
	// ErrMissingAPIKey is returned when a provider is used without an API key.
	ErrMissingAPIKey = errors.New("API key is not configured")
	// ErrRateLimited is returned when a call could not be admitted by the rate limiter before its context ended.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// WeatherProvider is an interface for services that can fetch current weather data
type WeatherProvider interface {
	// GetWeather fetches current weather for a city
	GetWeather(ctx context.Context, city string) (models.WeatherData, error)

	// GetWeatherByCoords fetches current weather for a geographic position
	GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error)

	// Name returns the provider's name
	Name() string
}

// ForecastSource is an interface for services that can fetch weather forecasts
type ForecastSource interface {
	// FetchForecast fetches forecast samples for a city for the specified number of days
	FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error)

	// Name returns the source's name
	Name() string
}

// Provider is implemented by upstreams that serve both current weather and forecasts
type Provider interface {
	WeatherProvider
	ForecastSource
}

// APIError is a non-success response from an upstream weather API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
