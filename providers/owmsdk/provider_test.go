package owmsdk

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weather-app/datasource"
	"weather-app/models"
)

const testKey = "0123456789abcdef0123456789abcdef"

// rewriteTransport sends every request to target while keeping path and query
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	p, err := NewProvider(zaptest.NewLogger(t), testKey, "ru", 0)
	require.NoError(t, err)
	p.httpClient.Transport.(*statusTransport).base = rewriteTransport{target: target}
	return p
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(zaptest.NewLogger(t), "", "ru", 0)
	assert.ErrorIs(t, err, datasource.ErrMissingAPIKey)

	_, err = NewProvider(zaptest.NewLogger(t), strings.Repeat("k", 65), "ru", 0)
	assert.Error(t, err)

	_, err = NewProvider(zaptest.NewLogger(t), testKey, "klingon", 0)
	assert.Error(t, err)

	p, err := NewProvider(zaptest.NewLogger(t), testKey, "ru", 0)
	require.NoError(t, err)
	assert.Equal(t, "RU", p.lang)
	assert.Equal(t, "OpenWeatherMap SDK", p.Name())

	p, err = NewProvider(zaptest.NewLogger(t), testKey, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "EN", p.lang)
}

func TestGetWeather(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Almaty", r.URL.Query().Get("q"))
		assert.Equal(t, "RU", r.URL.Query().Get("lang"))
		io.WriteString(w, `{"cod":200,"name":"Almaty","dt":1714564800,"main":{"temp":21.4},"weather":[{"description":"ясно","icon":"01d"}]}`)
	})

	got, err := p.GetWeather(context.Background(), "Almaty")

	require.NoError(t, err)
	assert.Equal(t, "Almaty", got.City)
	assert.Equal(t, 21.4, got.Temperature)
	assert.Equal(t, "ясно", got.Description)
	assert.Equal(t, "01d", got.Icon)
}

func TestGetWeatherByCoords(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "43.250000", r.URL.Query().Get("lat"))
		assert.Equal(t, "76.950000", r.URL.Query().Get("lon"))
		io.WriteString(w, `{"cod":200,"name":"Almaty","main":{"temp":18},"weather":[{"description":"облачно","icon":"03d"}]}`)
	})

	got, err := p.GetWeatherByCoords(context.Background(), models.Coordinates{Latitude: 43.25, Longitude: 76.95})

	require.NoError(t, err)
	assert.Equal(t, "Almaty", got.City)
	assert.Equal(t, 18.0, got.Temperature)
}

func TestFetchForecast(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		assert.Equal(t, "16", r.URL.Query().Get("cnt"))
		io.WriteString(w, `{"cod":"200","city":{"name":"Almaty"},"list":[
			{"dt":1714564800,"dt_txt":"2024-05-01 12:00:00","main":{"temp":20.5},"weather":[{"description":"ясно","icon":"01d"}]},
			{"dt":1714575600,"dt_txt":"2024-05-01 15:00:00","main":{"temp":22},"weather":[{"description":"облачно","icon":"03d"}]}
		]}`)
	})

	got, err := p.FetchForecast(context.Background(), "Almaty", 2)

	require.NoError(t, err)
	assert.Equal(t, "Almaty", got.Location)
	assert.Equal(t, []models.ForecastSample{
		{Timestamp: "2024-05-01 12:00:00", Temperature: 20.5, Description: "ясно", Icon: "01d"},
		{Timestamp: "2024-05-01 15:00:00", Temperature: 22, Description: "облачно", Icon: "03d"},
	}, got.Forecast)
}

func TestFetchForecastCapsDays(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "40", r.URL.Query().Get("cnt"))
		io.WriteString(w, `{"cod":"200","city":{"name":"Almaty"},"list":[{"dt":1714564800,"dt_txt":"2024-05-01 12:00:00","main":{"temp":1}}]}`)
	})

	_, err := p.FetchForecast(context.Background(), "Almaty", 9)

	require.NoError(t, err)
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"invalid key", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key."}`, http.StatusUnauthorized, "Invalid API key."},
		{"server error without body", http.StatusInternalServerError, ``, http.StatusInternalServerError, "Error fetching weather data"},
		{"too many requests", http.StatusTooManyRequests, `{"cod":429,"message":"limit exceeded"}`, http.StatusTooManyRequests, "limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := p.FetchForecast(context.Background(), "Almaty", 5)
			var apiErr *datasource.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.NotErrorIs(t, err, datasource.ErrCityNotFound)

			_, err = p.GetWeather(context.Background(), "Almaty")
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.NotContains(t, err.Error(), testKey)
		})
	}
}

func TestCityNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"cod":"404","message":"city not found"}`)
	})

	_, err := p.GetWeather(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, datasource.ErrCityNotFound)

	_, err = p.FetchForecast(context.Background(), "Atlantis", 5)
	assert.ErrorIs(t, err, datasource.ErrCityNotFound)
}

func TestEmptyForecastIsNotCityNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"cod":"200","city":{"name":"Almaty"},"list":[]}`)
	})

	_, err := p.FetchForecast(context.Background(), "Almaty", 5)

	var apiErr *datasource.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.NotErrorIs(t, err, datasource.ErrCityNotFound)
}

func TestCanceledContext(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetWeather(ctx, "Almaty")
	assert.ErrorIs(t, err, context.Canceled)
}
