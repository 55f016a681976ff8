package models

import (
	"strings"
	"time"
)

// TimestampLayout is the layout of ForecastSample.Timestamp as delivered upstream.
const TimestampLayout = "2006-01-02 15:04:05"

// ForecastSample is a single forecast point, three hours apart in the OpenWeatherMap feed
type ForecastSample struct {
	Timestamp   string  `json:"dt_txt"`
	Temperature float64 `json:"temp"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Date returns the date component of the timestamp, or the whole
// timestamp when it has no time component.
func (s ForecastSample) Date() string {
	date, _, _ := strings.Cut(s.Timestamp, " ")
	return date
}

// ForecastData is the forecast for a location from a provider
type ForecastData struct {
	Provider string           `json:"-"`
	Location string           `json:"-"`
	Forecast []ForecastSample `json:"forecast"`
	Updated  time.Time        `json:"-"`
}
