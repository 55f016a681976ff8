package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"weather-app/models"
)

// Fallback tries each provider in order and returns the first successful result.
type Fallback struct {
	logger    *zap.Logger
	providers []Provider
}

var _ Provider = (*Fallback)(nil)

// NewFallback creates a provider chain. At least one provider must be supplied.
func NewFallback(logger *zap.Logger, providers ...Provider) *Fallback {
	return &Fallback{
		logger:    logger,
		providers: providers,
	}
}

// Name returns the names of the chained providers
func (f *Fallback) Name() string {
	names := make([]string, 0, len(f.providers))
	for _, p := range f.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, " > ")
}

// GetWeather implements WeatherProvider
func (f *Fallback) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	return try(ctx, f, "weather", func(p Provider) (models.WeatherData, error) {
		return p.GetWeather(ctx, city)
	})
}

// GetWeatherByCoords implements WeatherProvider
func (f *Fallback) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	return try(ctx, f, "weather by coords", func(p Provider) (models.WeatherData, error) {
		return p.GetWeatherByCoords(ctx, coords)
	})
}

// FetchForecast implements ForecastSource
func (f *Fallback) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	return try(ctx, f, "forecast", func(p Provider) (models.ForecastData, error) {
		return p.FetchForecast(ctx, city, days)
	})
}

func try[T any](ctx context.Context, f *Fallback, op string, call func(Provider) (T, error)) (T, error) {
	var zero T
	if len(f.providers) == 0 {
		return zero, errors.New("no providers configured")
	}

	var errs []error
	for _, p := range f.providers {
		res, err := call(p)
		if err == nil {
			return res, nil
		}

		f.logger.Info("provider failed, trying next",
			zap.String("op", op),
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return zero, errors.Join(errs...)
}
