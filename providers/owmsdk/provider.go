// Package owmsdk serves weather and forecasts through the briandowns OpenWeatherMap client.
package owmsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	owm "github.com/briandowns/openweathermap"
	"go.uber.org/zap"

	"weather-app/datasource"
	"weather-app/models"
)

const (
	unitCelsius = "C"
	// three-hourly samples in the five day forecast
	samplesPerDay = 8
	maxDays       = 5
)

// Provider is a datasource.Provider backed by github.com/briandowns/openweathermap
type Provider struct {
	logger     *zap.Logger
	apiKey     string
	lang       string
	httpClient *http.Client
}

var _ datasource.Provider = (*Provider)(nil)

// NewProvider validates the API key and language and creates a new provider.
// lang is an OpenWeatherMap language code such as "ru"; an empty value selects English.
func NewProvider(logger *zap.Logger, apiKey, lang string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, datasource.ErrMissingAPIKey
	}
	if err := owm.ValidAPIKey(apiKey); err != nil {
		return nil, err
	}
	if lang == "" {
		lang = "en"
	}
	lang = strings.ToUpper(lang)
	if !owm.ValidLangCode(lang) {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &Provider{
		logger: logger,
		apiKey: apiKey,
		lang:   lang,
	}
	p.httpClient = &http.Client{
		Timeout:   timeout,
		Transport: &statusTransport{provider: p.Name(), base: http.DefaultTransport},
	}
	return p, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "OpenWeatherMap SDK"
}

// GetWeather fetches current weather for a city
func (p *Provider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	return p.current(ctx, func(w *owm.CurrentWeatherData) error {
		return w.CurrentByName(city)
	})
}

// GetWeatherByCoords fetches current weather for a position
func (p *Provider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	return p.current(ctx, func(w *owm.CurrentWeatherData) error {
		return w.CurrentByCoordinates(&owm.Coordinates{
			Latitude:  coords.Latitude,
			Longitude: coords.Longitude,
		})
	})
}

func (p *Provider) current(ctx context.Context, fetch func(*owm.CurrentWeatherData) error) (models.WeatherData, error) {
	// the SDK has no context support, so only check before dispatching
	if err := ctx.Err(); err != nil {
		return models.WeatherData{}, err
	}

	w, err := owm.NewCurrent(unitCelsius, p.lang, p.apiKey, owm.WithHttpClient(p.httpClient))
	if err != nil {
		return models.WeatherData{}, fmt.Errorf("creating owm client: %w", err)
	}
	if err := fetch(w); err != nil {
		return models.WeatherData{}, p.upstreamError("owm current weather", err)
	}
	if w.Name == "" && len(w.Weather) == 0 {
		return models.WeatherData{}, p.emptyResponse()
	}

	data := models.WeatherData{
		Provider:    p.Name(),
		City:        w.Name,
		Temperature: w.Main.Temp,
		Timestamp:   time.Unix(int64(w.Dt), 0),
	}
	if len(w.Weather) > 0 {
		data.Description = w.Weather[0].Description
		data.Icon = w.Weather[0].Icon
	}

	return data, nil
}

// FetchForecast fetches the five day, three-hourly forecast for a city
func (p *Provider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	if err := ctx.Err(); err != nil {
		return models.ForecastData{}, err
	}
	if days <= 0 || days > maxDays {
		days = maxDays
	}

	f, err := owm.NewForecast("5", unitCelsius, p.lang, p.apiKey, owm.WithHttpClient(p.httpClient))
	if err != nil {
		return models.ForecastData{}, fmt.Errorf("creating owm client: %w", err)
	}
	if err := f.DailyByName(city, days*samplesPerDay); err != nil {
		return models.ForecastData{}, p.upstreamError("owm forecast", err)
	}

	data, ok := f.ForecastWeatherJson.(*owm.Forecast5WeatherData)
	if !ok || data == nil {
		return models.ForecastData{}, fmt.Errorf("owm forecast: unexpected payload %T", f.ForecastWeatherJson)
	}
	if len(data.List) == 0 {
		return models.ForecastData{}, p.emptyResponse()
	}

	forecast := models.ForecastData{
		Provider: p.Name(),
		Location: data.City.Name,
		Forecast: make([]models.ForecastSample, 0, len(data.List)),
		Updated:  time.Now(),
	}
	for _, item := range data.List {
		sample := models.ForecastSample{
			Timestamp:   time.Unix(int64(item.Dt), 0).UTC().Format(models.TimestampLayout),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
			sample.Icon = item.Weather[0].Icon
		}
		forecast.Forecast = append(forecast.Forecast, sample)
	}

	return forecast, nil
}

// upstreamError returns the datasource error recorded by the transport, or
// wraps anything else. The request URL is dropped since it carries the API key.
func (p *Provider) upstreamError(op string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	p.logger.Debug("owm sdk request failed",
		zap.String("op", op),
		zap.Error(err),
	)

	var apiErr *datasource.APIError
	switch {
	case errors.Is(err, datasource.ErrCityNotFound):
		return datasource.ErrCityNotFound
	case errors.As(err, &apiErr):
		return apiErr
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// emptyResponse is returned when the upstream answered 200 without any weather data
func (p *Provider) emptyResponse() error {
	return &datasource.APIError{
		Provider:   p.Name(),
		StatusCode: http.StatusBadGateway,
		Message:    defaultErrorMessage,
	}
}
