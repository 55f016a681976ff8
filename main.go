package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"weather-app/api"
	"weather-app/cache"
	"weather-app/collector"
	"weather-app/config"
	"weather-app/datasource"
	"weather-app/providers/owmsdk"
)

func main() {
	configFile := flag.String("config", "", "Path to a JSON or YAML configuration file")
	envFile := flag.String("env", ".env", "Path to a .env file")
	port := flag.Int("port", 0, "Port to run the server on, overrides the configuration")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error loading %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	provider, err := buildProvider(logger, cfg)
	if err != nil {
		logger.Fatal("error configuring weather provider", zap.Error(err))
	}

	cachedProvider := cache.NewCachedProvider(logger, provider, cfg.Cache.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefetcher := collector.NewCollector(logger, cachedProvider, cachedProvider, collector.Config{
		Cities:        cfg.Prefetch.Cities,
		Schedule:      cfg.Prefetch.Schedule,
		PruneSchedule: cfg.Cache.PruneSchedule,
		FetchTimeout:  cfg.Prefetch.FetchTimeout,
	})
	if err := prefetcher.Start(ctx); err != nil {
		logger.Fatal("error starting collector", zap.Error(err))
	}

	server := api.NewServer(logger, cachedProvider, api.Options{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", zap.Error(err))
	}
	prefetcher.Stop()

	hits, misses := cachedProvider.CacheStats()
	logger.Info("shutdown complete",
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildProvider creates the primary provider followed by any fallbacks,
// each rate limited when enabled.
func buildProvider(logger *zap.Logger, cfg *config.Config) (datasource.Provider, error) {
	names := append([]string{cfg.Provider}, cfg.Fallback...)

	var providers []datasource.Provider
	for _, name := range names {
		p, err := newProvider(logger, cfg, name)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}

		if cfg.RateLimit.Enabled {
			p = datasource.NewRateLimitedProvider(p, cfg.RateLimit.WeatherRPS, cfg.RateLimit.ForecastRPS, cfg.RateLimit.Burst)
		}
		logger.Info("configured weather provider", zap.String("provider", p.Name()))
		providers = append(providers, p)
	}

	if len(providers) == 1 {
		return providers[0], nil
	}
	return datasource.NewFallback(logger, providers...), nil
}

func newProvider(logger *zap.Logger, cfg *config.Config, name string) (datasource.Provider, error) {
	switch name {
	case config.ProviderOpenWeatherMap:
		if cfg.OpenWeatherMap.APIKey == "" {
			logger.Warn("no OpenWeatherMap API key configured, requests will fail")
		}
		return datasource.NewOpenWeatherMapProvider(logger, datasource.OpenWeatherMapConfig{
			APIKey:  cfg.OpenWeatherMap.APIKey,
			BaseURL: cfg.OpenWeatherMap.BaseURL,
			Lang:    cfg.OpenWeatherMap.Lang,
			Units:   cfg.OpenWeatherMap.Units,
			Timeout: cfg.OpenWeatherMap.Timeout,
		}), nil
	case config.ProviderOWMSDK:
		p, err := owmsdk.NewProvider(logger, cfg.OpenWeatherMap.APIKey, cfg.OpenWeatherMap.Lang, cfg.OpenWeatherMap.Timeout)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderWeatherAPI:
		if cfg.WeatherAPI.APIKey == "" {
			logger.Warn("no WeatherAPI key configured, requests will fail")
		}
		return datasource.NewWeatherAPIProvider(logger, datasource.WeatherAPIConfig{
			APIKey:  cfg.WeatherAPI.APIKey,
			BaseURL: cfg.WeatherAPI.BaseURL,
			Lang:    cfg.WeatherAPI.Lang,
			Timeout: cfg.WeatherAPI.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
