package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"weather-app/client"
	"weather-app/config"
	"weather-app/forecast"
	"weather-app/report"
)

func main() {
	configFile := flag.String("config", "", "Path to a JSON or YAML configuration file")
	server := flag.String("server", "", "Base URL of the weather server, overrides the configuration")
	city := flag.String("city", "", "City to fetch, overrides the configuration")
	format := flag.String("format", "text", "Output format, text or csv")
	raw := flag.Bool("raw", false, "Dump the raw forecast samples instead of the daily selection")
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

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend := client.New(logger, cfg.Client.BaseURL, cfg.Client.Timeout)

	samples, err := backend.GetForecast(ctx, cfg.Client.City, 0)
	if err != nil {
		logger.Fatal("error fetching forecast",
			zap.String("city", cfg.Client.City),
			zap.String("detail", client.UserMessage(err)),
			zap.Error(err),
		)
	}

	if *raw {
		spew.Dump(samples)
		return
	}

	daily, err := forecast.Daily(samples)
	if err != nil {
		logger.Fatal("error selecting daily forecast", zap.Error(err))
	}

	switch *format {
	case "csv":
		err = report.WriteCSV(os.Stdout, cfg.Client.City, daily)
	case "text":
		weather, werr := backend.GetWeather(ctx, cfg.Client.City)
		if werr != nil {
			logger.Fatal("error fetching weather",
				zap.String("city", cfg.Client.City),
				zap.String("detail", client.UserMessage(werr)),
				zap.Error(werr),
			)
		}
		err = report.WriteText(os.Stdout, weather, daily)
	default:
		logger.Fatal("unknown format", zap.String("format", *format))
	}
	if err != nil {
		logger.Fatal("error writing output", zap.Error(err))
	}
}
