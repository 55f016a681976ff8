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
	// DefaultOpenWeatherMapURL is the base URL of the OpenWeatherMap 2.5 API.
	DefaultOpenWeatherMapURL = "https://api.openweathermap.org/data/2.5"

	// OpenWeatherMap's forecast endpoint returns data in 3-hour steps
	samplesPerDay   = 8
	maxForecastDays = 5
)

// OpenWeatherMapConfig configures an OpenWeatherMapProvider
type OpenWeatherMapConfig struct {
	APIKey  string
	BaseURL string
	Lang    string
	Units   string
	Timeout time.Duration
}

// OpenWeatherMapProvider implements Provider against the OpenWeatherMap HTTP API
type OpenWeatherMapProvider struct {
	logger     *zap.Logger
	apiKey     string
	baseURL    string
	lang       string
	units      string
	httpClient *http.Client
}

var _ Provider = (*OpenWeatherMapProvider)(nil)

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(logger *zap.Logger, cfg OpenWeatherMapConfig) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		logger:  logger,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		lang:    cfg.Lang,
		units:   cfg.Units,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if p.baseURL == "" {
		p.baseURL = DefaultOpenWeatherMapURL
	}
	if p.units == "" {
		p.units = "metric"
	}
	if p.httpClient.Timeout <= 0 {
		p.httpClient.Timeout = 10 * time.Second
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

type owmCurrentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
}

// GetWeather fetches current weather for a city
func (p *OpenWeatherMapProvider) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	params := url.Values{}
	params.Add("q", city)
	return p.current(ctx, params)
}

// GetWeatherByCoords fetches current weather for a position
func (p *OpenWeatherMapProvider) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	return p.current(ctx, params)
}

func (p *OpenWeatherMapProvider) current(ctx context.Context, params url.Values) (models.WeatherData, error) {
	var response owmCurrentResponse
	if err := p.get(ctx, "weather", params, &response); err != nil {
		return models.WeatherData{}, err
	}

	data := models.WeatherData{
		Provider:    p.Name(),
		City:        response.Name,
		Temperature: response.Main.Temp,
		Timestamp:   time.Unix(response.Dt, 0),
	}
	// Extract weather description and icon if available
	if len(response.Weather) > 0 {
		data.Description = response.Weather[0].Description
		data.Icon = response.Weather[0].Icon
	}

	return data, nil
}

type owmForecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
	} `json:"list"`
}

// FetchForecast fetches the 3-hourly forecast for a city, limited to the requested number of days
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city string, days int) (models.ForecastData, error) {
	if days <= 0 || days > maxForecastDays {
		days = maxForecastDays
	}

	params := url.Values{}
	params.Add("q", city)

	var response owmForecastResponse
	if err := p.get(ctx, "forecast", params, &response); err != nil {
		return models.ForecastData{}, err
	}

	location := response.City.Name
	if response.City.Country != "" {
		location = fmt.Sprintf("%s,%s", response.City.Name, response.City.Country)
	}

	forecast := models.ForecastData{
		Provider: p.Name(),
		Location: location,
		Forecast: []models.ForecastSample{},
		Updated:  time.Now(),
	}

	// Number of entries to include, 8 per day at 3-hour intervals
	maxEntries := days * samplesPerDay
	if maxEntries > len(response.List) {
		maxEntries = len(response.List)
	}

	// Convert response to our model
	for _, item := range response.List[:maxEntries] {
		sample := models.ForecastSample{
			Timestamp:   item.DtTxt,
			Temperature: item.Main.Temp,
		}
		// dt_txt is the UTC rendering of dt
		if sample.Timestamp == "" {
			sample.Timestamp = time.Unix(item.Dt, 0).UTC().Format(models.TimestampLayout)
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
			sample.Icon = item.Weather[0].Icon
		}
		forecast.Forecast = append(forecast.Forecast, sample)
	}

	return forecast, nil
}

// get performs a GET on the named endpoint and decodes a 200 response into out.
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if p.apiKey == "" {
		return ErrMissingAPIKey
	}

	// Build URL
	params.Add("appid", p.apiKey)
	params.Add("units", p.units)
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
	if resp.StatusCode == http.StatusNotFound {
		return ErrCityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    "Error fetching weather data",
		}
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
		}

		p.logger.Debug("received non-OK response",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	// Parse response
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
