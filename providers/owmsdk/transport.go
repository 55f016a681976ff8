package owmsdk

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"weather-app/datasource"
)

const defaultErrorMessage = "Error fetching weather data"

// statusTransport turns non-200 upstream responses into datasource errors
// before the SDK tries to decode them as weather data.
type statusTransport struct {
	provider string
	base     http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, datasource.ErrCityNotFound
	}

	// OpenWeatherMap sends cod as a number or a string depending on the endpoint, so only message is read
	var body struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = defaultErrorMessage
	}

	return nil, &datasource.APIError{
		Provider:   t.provider,
		StatusCode: resp.StatusCode,
		Message:    body.Message,
	}
}
