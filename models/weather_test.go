package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherDataUnmarshal(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result WeatherData
	}{
		{
			"short variant",
			`{"city":"Almaty","temp":21.4,"description":"ясно"}`,
			WeatherData{City: "Almaty", Temperature: 21.4, Description: "ясно"},
		},
		{
			"long variant",
			`{"city_name":"Almaty","temperature":-3,"description":"снег","icon":"13d"}`,
			WeatherData{City: "Almaty", Temperature: -3, Description: "снег", Icon: "13d"},
		},
		{
			"zero temperature is kept",
			`{"city_name":"Oslo","temperature":0,"temp":5}`,
			WeatherData{City: "Oslo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res WeatherData
			require.NoError(t, json.Unmarshal([]byte(tt.body), &res))
			assert.Equal(t, tt.result, res)
		})
	}
}

func TestWeatherDataMarshal(t *testing.T) {
	b, err := json.Marshal(WeatherData{Provider: "OpenWeatherMap", City: "Almaty", Temperature: 1.5, Description: "туман", Icon: "50n"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"city_name":"Almaty","temperature":1.5,"description":"туман","icon":"50n"}`, string(b))
}

func TestCoordinatesValidate(t *testing.T) {
	assert.NoError(t, Coordinates{Latitude: 43.25, Longitude: 76.95}.Validate())
	assert.Error(t, Coordinates{Latitude: 91}.Validate())
	assert.Error(t, Coordinates{Longitude: -180.5}.Validate())
}

func TestForecastSampleDate(t *testing.T) {
	assert.Equal(t, "2024-01-01", ForecastSample{Timestamp: "2024-01-01 12:00:00"}.Date())
	assert.Equal(t, "bad-data", ForecastSample{Timestamp: "bad-data"}.Date())
}
