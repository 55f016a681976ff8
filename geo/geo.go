// Package geo resolves the user's approximate position.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"weather-app/models"
)

// GeolocationError is returned when a position could not be determined
type GeolocationError struct {
	Source string
	Err    error
}

func (e *GeolocationError) Error() string {
	return fmt.Sprintf("geolocation via %s failed: %v", e.Source, e.Err)
}

func (e *GeolocationError) Unwrap() error {
	return e.Err
}

// Locator determines the current position
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// StaticLocator always reports the same position
type StaticLocator struct {
	Position models.Coordinates
}

// Locate returns the configured position
func (l StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, &GeolocationError{Source: "static", Err: err}
	}
	if err := l.Position.Validate(); err != nil {
		return models.Coordinates{}, &GeolocationError{Source: "static", Err: err}
	}
	return l.Position, nil
}

// IPLocator resolves the position from the caller's public IP address using an ip-api.com style endpoint
type IPLocator struct {
	url    string
	client *http.Client
}

// NewIPLocator creates a locator that queries url
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	return &IPLocator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate queries the endpoint for the current position
func (l *IPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	fail := func(err error) (models.Coordinates, error) {
		return models.Coordinates{}, &GeolocationError{Source: l.url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return fail(err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fail(fmt.Errorf("decoding response: %w", err))
	}
	if body.Status != "" && body.Status != "success" {
		return fail(fmt.Errorf("lookup %s: %s", body.Status, body.Message))
	}

	position := models.Coordinates{Latitude: body.Lat, Longitude: body.Lon}
	if err := position.Validate(); err != nil {
		return fail(err)
	}
	return position, nil
}
