// Package collector keeps the cache warm for a fixed set of cities.
package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"weather-app/datasource"
)

const defaultFetchTimeout = 10 * time.Second

// Pruner drops expired entries and reports how many were removed
type Pruner interface {
	PruneExpired() int
}

// Config controls which cities are prefetched and when
type Config struct {
	Cities        []string
	Schedule      string
	PruneSchedule string
	FetchTimeout  time.Duration
	ForecastDays  int
}

// Collector periodically fetches weather and forecasts for every configured city
type Collector struct {
	logger   *zap.Logger
	provider datasource.Provider
	pruner   Pruner
	cfg      Config

	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	initial sync.WaitGroup
}

// NewCollector creates a collector. A nil pruner disables the prune job.
func NewCollector(logger *zap.Logger, provider datasource.Provider, pruner Pruner, cfg Config) *Collector {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 5
	}

	return &Collector{
		logger:   logger,
		provider: provider,
		pruner:   pruner,
		cfg:      cfg,
		cron:     cron.New(),
	}
}

// Start registers the scheduled jobs and begins running them.
// An initial collection runs immediately in the background.
func (c *Collector) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if len(c.cfg.Cities) > 0 && c.cfg.Schedule != "" {
		if _, err := c.cron.AddFunc(c.cfg.Schedule, func() { c.CollectOnce(c.ctx) }); err != nil {
			c.cancel()
			return err
		}
		c.initial.Add(1)
		go func() {
			defer c.initial.Done()
			c.CollectOnce(c.ctx)
		}()
	}

	if c.pruner != nil && c.cfg.PruneSchedule != "" {
		if _, err := c.cron.AddFunc(c.cfg.PruneSchedule, c.prune); err != nil {
			c.cancel()
			return err
		}
	}

	c.cron.Start()
	c.logger.Info("collector started",
		zap.Strings("cities", c.cfg.Cities),
		zap.String("schedule", c.cfg.Schedule),
		zap.String("prune_schedule", c.cfg.PruneSchedule),
	)
	return nil
}

// Stop halts the schedule and waits for running jobs to finish
func (c *Collector) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.cron.Stop().Done()
	c.initial.Wait()
}

// CollectOnce fetches weather and forecasts for every city concurrently and returns the number of failed fetches
func (c *Collector) CollectOnce(ctx context.Context) int {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)

	record := func(kind, city string, err error) {
		if err == nil {
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		mu.Lock()
		failures++
		mu.Unlock()
		c.logger.Warn("error prefetching "+kind,
			zap.String("city", city),
			zap.String("provider", c.provider.Name()),
			zap.Error(err),
		)
	}

	for _, city := range c.cfg.Cities {
		wg.Add(2)

		go func(city string) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
			defer cancel()

			_, err := c.provider.GetWeather(fetchCtx, city)
			record("weather", city, err)
		}(city)

		go func(city string) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
			defer cancel()

			_, err := c.provider.FetchForecast(fetchCtx, city, c.cfg.ForecastDays)
			record("forecast", city, err)
		}(city)
	}

	wg.Wait()
	c.logger.Debug("prefetch complete",
		zap.Int("cities", len(c.cfg.Cities)),
		zap.Int("failures", failures),
	)
	return failures
}

func (c *Collector) prune() {
	removed := c.pruner.PruneExpired()
	c.logger.Debug("pruned cache", zap.Int("removed", removed))
}
