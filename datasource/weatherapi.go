package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"weather-app/models"
)

const (
	// DefaultWeatherAPIURL is the base URL of the weatherapi.com v1 API.
	DefaultWeatherAPIURL = "https://api.weatherapi.com/v1"

	weatherAPINoLocation = 1006
	weatherAPIMaxDays    = 3
	weatherAPITimeLayout = "2006-01-02 15:04"
)

// WeatherAPIConfig configures a WeatherAPIProvider
type WeatherAPIConfig struct {
	APIKey  string
	BaseURL string
	Lang    string
	Timeout time.Duration
}

// WeatherAPIProvider implements Provider against weatherapi.com
type WeatherAPIProvider struct {
	logger     *zap.Logger
	apiKey     string
	baseURL    string
	lang       string
	httpClient *http.Client
}

var _ Provider = (*WeatherAPIProvider)(nil)

// NewWeatherAPIProvider creates a new WeatherAPI provider
func NewWeatherAPIProvider(logger *zap.Logger, cfg WeatherAPIConfig) *WeatherAPIProvider {
	p := &WeatherAPIProvider{
		logger:  logger,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		lang:    cfg.Lang,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if p.baseURL == "" {
		p.baseURL = DefaultWeatherAPIURL
	}
	if p.httpClient.Timeout <= 0 {
		p.httpClient.Timeout = 10 * time.Second
	}
	return p
}

// Name returns the provider name
func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type weatherAPICurrentResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC            float64             `json:"temp_c"`
		Condition        weatherAPICondition `json:"condition"`
		LastUpdatedEpoch int64               `json:"last_updated_epoch"`
	} `json:"current"`
}

// GetWeather fetches current weather for a city
func (p *WeatherAPIProvider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	params := url.Values{}
	params.Add("q", city)
	return p.current(ctx, params)
}

// GetWeatherByCoords fetches current weather for a position
func (p *WeatherAPIProvider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	params := url.Values{}
	params.Add("q", strconv.FormatFloat(coords.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	return p.current(ctx, params)
}

func (p *WeatherAPIProvider) current(ctx context.Context, params url.Values) (models.WeatherData, error) {
	var response weatherAPICurrentResponse
	if err := p.get(ctx, "current.json", params, &response); err != nil {
		return models.WeatherData{}, err
	}

	return models.WeatherData{
		Provider:    p.Name(),
		City:        response.Location.Name,
		Temperature: response.Current.TempC,
		Description: response.Current.Condition.Text,
		Icon:        response.Current.Condition.Icon,
		Timestamp:   time.Unix(response.Current.LastUpdatedEpoch, 0),
	}, nil
}

type weatherAPIForecastResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Hour []struct {
				TimeEpoch int64               `json:"time_epoch"`
				Time      string              `json:"time"`
				TempC     float64             `json:"temp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// FetchForecast fetches the hourly forecast for a city. The free tier is limited to 3 days.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	if days <= 0 || days > weatherAPIMaxDays {
		days = weatherAPIMaxDays
	}

	// Build query
	params := url.Values{}
	params.Add("q", city)
	params.Add("days", strconv.Itoa(days))
	params.Add("aqi", "no")
	params.Add("alerts", "no")

	var response weatherAPIForecastResponse
	if err := p.get(ctx, "forecast.json", params, &response); err != nil {
		return models.ForecastData{}, err
	}

	forecast := models.ForecastData{
		Provider: p.Name(),
		Location: fmt.Sprintf("%s,%s", response.Location.Name, response.Location.Country),
		Forecast: []models.ForecastSample{},
		Updated:  time.Now(),
	}

	// Flatten the per-day hourly lists into our model
	for _, day := range response.Forecast.ForecastDay {
		for _, hour := range day.Hour {
			// The hour is reported in location-local time without seconds
			ts, err := time.Parse(weatherAPITimeLayout, hour.Time)
			if err != nil {
				ts = time.Unix(hour.TimeEpoch, 0).UTC()
			}

			forecast.Forecast = append(forecast.Forecast, models.ForecastSample{
				Timestamp:   ts.Format(models.TimestampLayout),
				Temperature: hour.TempC,
				Description: hour.Condition.Text,
				Icon:        hour.Condition.Icon,
			})
		}
	}

	return forecast, nil
}

func (p *WeatherAPIProvider) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if p.apiKey == "" {
		return ErrMissingAPIKey
	}

	// Build URL
	params.Add("key", p.apiKey)
	if p.lang != "" {
		params.Add("lang", p.lang)
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, params.Encode()), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Execute request
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for error status code
	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)

		p.logger.Debug("received non-OK response",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.Int("error_code", errBody.Error.Code),
		)

		if errBody.Error.Code == weatherAPINoLocation || resp.StatusCode == http.StatusNotFound {
			return ErrCityNotFound
		}

		message := errBody.Error.Message
		if message == "" {
			message = "Error fetching weather data"
		}
		return &APIError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	// Parse response
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
