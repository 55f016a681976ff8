// Package client talks to the weatherd HTTP API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"weather-app/models"
)

// DefaultMessage is shown when a failure carries no detail of its own
const DefaultMessage = "Failed to load weather data."

// FetchError describes a failed call to the backend
type FetchError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to display for a failed fetch
func UserMessage(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.Detail != "" {
		return fetchErr.Detail
	}
	return DefaultMessage
}

// Client calls the weather backend
type Client struct {
	logger  *zap.Logger
	baseURL string
	http    *http.Client
}

// New creates a client for the backend at baseURL
func New(logger *zap.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetWeather fetches the current weather for a city
func (c *Client) GetWeather(ctx context.Context, city string) (models.WeatherData, error) {
	var data models.WeatherData
	err := c.do(ctx, "get weather", http.MethodGet, "/api/weather/"+url.PathEscape(city), nil, &data)
	return data, err
}

// GetWeatherByCoords fetches the current weather for a position
func (c *Client) GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error) {
	var data models.WeatherData
	err := c.do(ctx, "get weather by coords", http.MethodPost, "/api/weather/coords", coords, &data)
	return data, err
}

// GetForecast fetches the raw forecast samples for a city. Zero days uses the server default.
func (c *Client) GetForecast(ctx context.Context, city string, days int) ([]models.ForecastSample, error) {
	path := "/api/forecast/" + url.PathEscape(city)
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}

	var data models.ForecastData
	if err := c.do(ctx, "get forecast", http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	return data.Forecast, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(raw, &problem); err != nil {
			c.logger.Debug("error body is not json", zap.String("op", op), zap.Int("status_code", resp.StatusCode))
		}
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Detail: problem.Detail}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
