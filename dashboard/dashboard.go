// Package dashboard holds the client side view state: current weather for a
// searched city, its daily forecast and the weather at the user's position.
package dashboard

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"weather-app/client"
	"weather-app/forecast"
	"weather-app/geo"
	"weather-app/models"
)

// Backend is the subset of the weather API the dashboard needs
type Backend interface {
	GetWeather(ctx context.Context, city string) (models.WeatherData, error)
	GetWeatherByCoords(ctx context.Context, coords models.Coordinates) (models.WeatherData, error)
	GetForecast(ctx context.Context, city string, days int) ([]models.ForecastSample, error)
}

// State is the lifecycle of one fetch. Result is nil until a fetch succeeds.
type State[T any] struct {
	Loading bool
	Error   string
	Result  *T
}

// Snapshot is a copy of every state at one point in time
type Snapshot struct {
	City     string
	Weather  State[models.WeatherData]
	Forecast State[[]models.ForecastSample]
	Geo      State[models.WeatherData]
}

type fetchKind int

const (
	weatherFetch fetchKind = iota
	forecastFetch
	geoFetch
)

// Dashboard coordinates the fetches behind a weather screen
type Dashboard struct {
	logger   *zap.Logger
	backend  Backend
	locator  geo.Locator
	selector forecast.Selector

	mu          sync.Mutex
	entropy     io.Reader
	latest      map[fetchKind]ulid.ULID
	snapshot    Snapshot
	subscribers []func(Snapshot)
}

// New creates a dashboard. A nil locator disables the geolocated panel.
func New(logger *zap.Logger, backend Backend, locator geo.Locator) *Dashboard {
	return &Dashboard{
		logger:   logger,
		backend:  backend,
		locator:  locator,
		selector: forecast.Selector{Days: forecast.DefaultDays, Hour: forecast.NoonHour},
		entropy:  ulid.Monotonic(rand.Reader, 0),
		latest:   make(map[fetchKind]ulid.ULID),
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// Subscribers are called with the dashboard locked and must not call back into it.
func (d *Dashboard) Subscribe(fn func(Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// Snapshot returns the current state
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// Start runs the initial search for city alongside the geolocated lookup
func (d *Dashboard) Start(ctx context.Context, city string) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.Search(ctx, city)
	}()
	go func() {
		defer wg.Done()
		d.Locate(ctx)
	}()
	wg.Wait()
}

// Search fetches the current weather and the daily forecast for city.
// A blank city is ignored.
func (d *Dashboard) Search(ctx context.Context, city string) {
	city = strings.TrimSpace(city)
	if city == "" {
		return
	}

	weatherID := d.begin(weatherFetch, func(s *Snapshot) {
		s.City = city
		s.Weather = State[models.WeatherData]{Loading: true}
	})
	forecastID := d.begin(forecastFetch, func(s *Snapshot) {
		s.Forecast = State[[]models.ForecastSample]{Loading: true}
	})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		data, err := d.backend.GetWeather(ctx, city)
		d.finish(weatherFetch, weatherID, func(s *Snapshot) {
			s.Weather = settle(data, err)
		})
		if err != nil {
			d.logger.Info("error fetching weather", zap.String("city", city), zap.Error(err))
		}
	}()

	go func() {
		defer wg.Done()
		daily, err := d.dailyForecast(ctx, city)
		d.finish(forecastFetch, forecastID, func(s *Snapshot) {
			s.Forecast = settle(daily, err)
		})
		if err != nil {
			d.logger.Info("error fetching forecast", zap.String("city", city), zap.Error(err))
		}
	}()

	wg.Wait()
}

// Locate fetches the weather at the user's position. Failures leave the
// geolocated state empty and are only logged.
func (d *Dashboard) Locate(ctx context.Context) {
	if d.locator == nil {
		return
	}

	id := d.begin(geoFetch, func(s *Snapshot) {
		s.Geo = State[models.WeatherData]{Loading: true}
	})

	var (
		data models.WeatherData
		err  error
	)
	coords, err := d.locator.Locate(ctx)
	if err == nil {
		data, err = d.backend.GetWeatherByCoords(ctx, coords)
	}

	d.finish(geoFetch, id, func(s *Snapshot) {
		if err != nil {
			s.Geo = State[models.WeatherData]{}
			return
		}
		s.Geo = State[models.WeatherData]{Result: &data}
	})
	if err != nil {
		d.logger.Debug("geolocated weather unavailable", zap.Error(err))
	}
}

func (d *Dashboard) dailyForecast(ctx context.Context, city string) ([]models.ForecastSample, error) {
	samples, err := d.backend.GetForecast(ctx, city, 0)
	if err != nil {
		return nil, err
	}
	return d.selector.Select(samples)
}

// begin tags a new fetch of kind and applies its loading state
func (d *Dashboard) begin(kind fetchKind, update func(*Snapshot)) ulid.ULID {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := ulid.MustNew(ulid.Now(), d.entropy)
	d.latest[kind] = id
	update(&d.snapshot)
	d.notify()
	return id
}

// finish applies the outcome of a fetch unless a newer fetch of the same kind has started
func (d *Dashboard) finish(kind fetchKind, id ulid.ULID, update func(*Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id.Compare(d.latest[kind]) < 0 {
		d.logger.Debug("discarding stale result", zap.Stringer("fetch_id", id))
		return
	}
	update(&d.snapshot)
	d.notify()
}

func (d *Dashboard) notify() {
	for _, fn := range d.subscribers {
		fn(d.snapshot)
	}
}

func settle[T any](data T, err error) State[T] {
	if err != nil {
		return State[T]{Error: client.UserMessage(err)}
	}
	return State[T]{Result: &data}
}
