// Package api serves current weather and forecasts over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"weather-app/datasource"
	"weather-app/forecast"
	"weather-app/models"
)

const (
	defaultForecastDays = 5
	maxForecastDays     = 5
)

// Options configures a Server
type Options struct {
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server represents the API server
type Server struct {
	logger   *zap.Logger
	provider datasource.Provider
	server   *http.Server
	schemas  map[string][]byte
}

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Detail string `json:"detail"`
}

// NewServer creates a new API server in front of the supplied provider
func NewServer(logger *zap.Logger, provider datasource.Provider, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:   logger,
		provider: provider,
		schemas:  buildSchemas(),
	}

	mux.HandleFunc("GET /api/weather/{city}", s.handleGetWeather)
	mux.HandleFunc("POST /api/weather/coords", s.handleGetWeatherByCoords)
	mux.HandleFunc("GET /api/forecast/{city}", s.handleGetForecast)
	mux.HandleFunc("GET /api/forecast/{city}/daily", s.handleGetDailyForecast)
	mux.HandleFunc("GET /api/schema/{name}", s.handleGetSchema)
	mux.HandleFunc("GET /api/health", s.handleHealthCheck)

	var handler http.Handler = mux
	handler = cors(opts.AllowedOrigins, handler)
	handler = accessLog(logger, handler)
	handler = requestID(handler)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting api server",
		zap.String("addr", s.server.Addr),
		zap.String("provider", s.provider.Name()),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleGetWeather(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")

	data, err := s.provider.GetWeather(r.Context(), city)
	if err != nil {
		s.writeUpstreamError(w, r, err, zap.String("city", city))
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetWeatherByCoords(w http.ResponseWriter, r *http.Request) {
	var coords struct {
		Latitude  *float64 `json:"lat"`
		Longitude *float64 `json:"lon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&coords); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Request body must be a JSON object with lat and lon")
		return
	}
	if coords.Latitude == nil || coords.Longitude == nil {
		writeError(w, http.StatusUnprocessableEntity, "Both lat and lon are required")
		return
	}

	position := models.Coordinates{Latitude: *coords.Latitude, Longitude: *coords.Longitude}
	if err := position.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	data, err := s.provider.GetWeatherByCoords(r.Context(), position)
	if err != nil {
		s.writeUpstreamError(w, r, err, zap.Stringer("coords", position))
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")

	data, err := s.provider.FetchForecast(r.Context(), city, forecastDays(r))
	if err != nil {
		s.writeUpstreamError(w, r, err, zap.String("city", city))
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetDailyForecast(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")

	data, err := s.provider.FetchForecast(r.Context(), city, maxForecastDays)
	if err != nil {
		s.writeUpstreamError(w, r, err, zap.String("city", city))
		return
	}

	daily, err := forecast.Daily(data.Forecast)
	if err != nil {
		s.writeUpstreamError(w, r, err, zap.String("city", city))
		return
	}

	writeJSON(w, http.StatusOK, models.ForecastData{Forecast: daily})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schemas[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown schema")
		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	w.Write(schema)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"provider":  s.provider.Name(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// forecastDays extracts the days parameter from the query string, capped at five days
func forecastDays(r *http.Request) int {
	days := defaultForecastDays
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
		if days > maxForecastDays {
			days = maxForecastDays
		}
	}
	return days
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error, fields ...zap.Field) {
	status, detail := statusForError(err)

	fields = append(fields,
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Int("status_code", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("upstream request failed", fields...)
	} else {
		s.logger.Info("upstream request rejected", fields...)
	}

	writeError(w, status, detail)
}

// statusForError maps provider and selector errors onto a status code and a user facing detail
func statusForError(err error) (int, string) {
	var apiErr *datasource.APIError
	var parseErr *forecast.ParseError

	switch {
	case errors.Is(err, datasource.ErrCityNotFound):
		return http.StatusNotFound, "City not found"
	case errors.Is(err, datasource.ErrMissingAPIKey):
		return http.StatusInternalServerError, "API key is not configured"
	case errors.Is(err, datasource.ErrRateLimited):
		return http.StatusServiceUnavailable, "Too many requests to the weather service, try again later"
	case errors.As(err, &parseErr), errors.Is(err, forecast.ErrOutOfOrder):
		return http.StatusBadGateway, "Weather service returned malformed forecast data"
	case errors.As(err, &apiErr):
		if apiErr.StatusCode < 400 || apiErr.StatusCode > 599 {
			return http.StatusBadGateway, apiErr.Message
		}
		return apiErr.StatusCode, apiErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Weather service did not respond in time"
	default:
		return http.StatusBadGateway, "Error fetching weather data"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
