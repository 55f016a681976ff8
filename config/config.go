// Package config loads settings for the weather server and clients from a
// config file, environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "WEATHER"

// Provider names accepted in Config.Provider and Config.Fallback
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderOWMSDK         = "owmsdk"
	ProviderWeatherAPI     = "weatherapi"
)

// Config represents the application configuration
type Config struct {
	Log LogConfig `mapstructure:"log"`

	Server ServerConfig `mapstructure:"server"`

	// Provider is the primary upstream, Fallback lists upstreams tried after it
	Provider string   `mapstructure:"provider"`
	Fallback []string `mapstructure:"fallback"`

	OpenWeatherMap OpenWeatherMapConfig `mapstructure:"openweathermap"`
	WeatherAPI     WeatherAPIConfig     `mapstructure:"weatherapi"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Prefetch  PrefetchConfig  `mapstructure:"prefetch"`

	Client ClientConfig `mapstructure:"client"`
	Geo    GeoConfig    `mapstructure:"geo"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type OpenWeatherMapConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Lang    string        `mapstructure:"lang"`
	Units   string        `mapstructure:"units"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WeatherAPIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Lang    string        `mapstructure:"lang"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig mirrors the free tier limits of the upstream APIs
type RateLimitConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	WeatherRPS  float64 `mapstructure:"weather_rps"`
	ForecastRPS float64 `mapstructure:"forecast_rps"`
	Burst       int     `mapstructure:"burst"`
}

type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	PruneSchedule string        `mapstructure:"prune_schedule"`
}

// PrefetchConfig lists cities whose weather is refreshed on a cron schedule
type PrefetchConfig struct {
	Cities       []string      `mapstructure:"cities"`
	Schedule     string        `mapstructure:"schedule"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	City    string        `mapstructure:"city"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeoConfig selects how the client finds its own position. When Latitude and
// Longitude are both set they are used as is and no lookup is performed.
type GeoConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	Latitude  *float64      `mapstructure:"latitude"`
	Longitude *float64      `mapstructure:"longitude"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Defaults holds the value of every key that has one. The rate limits
// follow the OpenWeatherMap free tier of 60 calls/minute.
var Defaults = map[string]interface{}{
	"log.development":         true,
	"server.port":             8000,
	"server.allowed_origins":  []string{"http://localhost:3000"},
	"server.read_timeout":     10 * time.Second,
	"server.write_timeout":    30 * time.Second,
	"provider":                ProviderOpenWeatherMap,
	"fallback":                []string{},
	"openweathermap.base_url": "https://api.openweathermap.org/data/2.5",
	"openweathermap.lang":     "ru",
	"openweathermap.units":    "metric",
	"openweathermap.timeout":  10 * time.Second,
	"weatherapi.base_url":     "https://api.weatherapi.com/v1",
	"weatherapi.lang":         "ru",
	"weatherapi.timeout":      10 * time.Second,
	"rate_limit.enabled":      true,
	"rate_limit.weather_rps":  1.0,
	"rate_limit.forecast_rps": 1.0,
	"rate_limit.burst":        5,
	"cache.ttl":               10 * time.Minute,
	"cache.prune_schedule":    "@every 1h",
	"prefetch.cities":         []string{},
	"prefetch.schedule":       "@every 5m",
	"prefetch.fetch_timeout":  10 * time.Second,
	"client.base_url":         "http://localhost:8000",
	"client.city":             "Almaty",
	"client.timeout":          15 * time.Second,
	"geo.enabled":             true,
	"geo.url":                 "http://ip-api.com/json/",
	"geo.timeout":             5 * time.Second,
}

// LoadDotEnv loads environment variables from the supplied .env files, or
// from ./.env when none are supplied. Missing files are not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	var existing []string
	for _, f := range filenames {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads the configuration. filename may be empty, in which case only
// defaults and the environment are used.
func Load(filename string) (*Config, error) {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the names used by the upstream services' own documentation
	if err := v.BindEnv("openweathermap.api_key", "WEATHER_OPENWEATHERMAP_API_KEY", "OPENWEATHER_API_KEY", "OPENWEATHERMAP_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("weatherapi.api_key", "WEATHER_WEATHERAPI_API_KEY", "WEATHERAPI_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("server.port", "WEATHER_SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}
	// keys without defaults are only seen by Unmarshal once bound
	for _, key := range []string{"geo.latitude", "geo.longitude"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", filename, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that cannot be corrected with a default
func (c *Config) Validate() error {
	for _, name := range append([]string{c.Provider}, c.Fallback...) {
		switch name {
		case ProviderOpenWeatherMap, ProviderOWMSDK, ProviderWeatherAPI:
		default:
			return fmt.Errorf("unknown provider %q", name)
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if (c.Geo.Latitude == nil) != (c.Geo.Longitude == nil) {
		return errors.New("geo.latitude and geo.longitude must be set together")
	}
	return nil
}
