package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rivo/tview"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"weather-app/client"
	"weather-app/config"
	"weather-app/dashboard"
	"weather-app/geo"
	"weather-app/models"
	"weather-app/ui"
)

func main() {
	configFile := flag.String("config", "", "Path to a JSON or YAML configuration file")
	server := flag.String("server", "", "Base URL of the weather server, overrides the configuration")
	city := flag.String("city", "", "City to show on startup, overrides the configuration")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Client.BaseURL = *server
	}
	if *city != "" {
		cfg.Client.City = *city
	}

	app := tview.NewApplication()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var board *dashboard.Dashboard
	view := ui.NewView(app, cfg.Client.City, func(city string) {
		go board.Search(ctx, city)
	})

	logger := newLogger(cfg.Log, view.Status)
	defer logger.Sync()

	backend := client.New(logger, cfg.Client.BaseURL, cfg.Client.Timeout)
	board = dashboard.New(logger, backend, newLocator(cfg.Geo))
	board.Subscribe(view.Refresh)

	go board.Start(ctx, cfg.Client.City)

	if err := app.SetRoot(view, true).SetFocus(view.Search).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running ui: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes log lines to the status line, since stderr belongs to the terminal UI
func newLogger(cfg config.LogConfig, status *ui.StatusLine) *zap.Logger {
	level := zap.InfoLevel
	if cfg.Development {
		level = zap.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(ui.NewStatusSink(status)),
		level,
	)
	return zap.New(core)
}

func newLocator(cfg config.GeoConfig) geo.Locator {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Latitude != nil && cfg.Longitude != nil {
		return geo.StaticLocator{Position: models.Coordinates{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}}
	}
	return geo.NewIPLocator(cfg.URL, cfg.Timeout)
}
