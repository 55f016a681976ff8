package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// WeatherData represents the current weather for a city
type WeatherData struct {
	Provider    string    `json:"-"`
	City        string    `json:"city_name"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Timestamp   time.Time `json:"-"`
}

// UnmarshalJSON accepts both the {city, temp, description} and the
// {city_name, temperature, description, icon} shapes of a weather object.
func (w *WeatherData) UnmarshalJSON(data []byte) error {
	var raw struct {
		City        string   `json:"city"`
		CityName    string   `json:"city_name"`
		Temp        *float64 `json:"temp"`
		Temperature *float64 `json:"temperature"`
		Description string   `json:"description"`
		Icon        string   `json:"icon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*w = WeatherData{
		City:        raw.CityName,
		Description: raw.Description,
		Icon:        raw.Icon,
	}
	if w.City == "" {
		w.City = raw.City
	}

	switch {
	case raw.Temperature != nil:
		w.Temperature = *raw.Temperature
	case raw.Temp != nil:
		w.Temperature = *raw.Temp
	}

	return nil
}

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"lat" jsonschema:"minimum=-90,maximum=90"`
	Longitude float64 `json:"lon" jsonschema:"minimum=-180,maximum=180"`
}

// Validate reports whether the coordinates are within range
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}
