package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-app/models"
)

func TestIconURL(t *testing.T) {
	tests := []struct {
		icon string
		want string
	}{
		{"01d", "https://openweathermap.org/img/wn/01d@2x.png"},
		{"10n", "https://openweathermap.org/img/wn/10n@2x.png"},
		{"//cdn.weatherapi.com/weather/64x64/day/113.png", "https://cdn.weatherapi.com/weather/64x64/day/113.png"},
		{"https://example.com/a.png", "https://example.com/a.png"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IconURL(tt.icon), tt.icon)
	}
}

func TestIconGlyph(t *testing.T) {
	assert.Equal(t, "☀", IconGlyph("01d"))
	assert.Equal(t, "☾", IconGlyph("01n"))
	assert.Equal(t, "🌧", IconGlyph("09n"))
	assert.Equal(t, "?", IconGlyph("x"))
	assert.Equal(t, "?", IconGlyph("//cdn.weatherapi.com/113.png"))
}

func TestDailyLine(t *testing.T) {
	s := models.ForecastSample{Timestamp: "2024-05-01 12:00:00", Temperature: 20.5, Description: "ясно"}
	assert.Equal(t, "2024-05-01: 20.5°C, ясно", DailyLine(s))

	s.Temperature = -3
	assert.Equal(t, "2024-05-01: -3°C, ясно", DailyLine(s))
}

func TestRoundedTemperature(t *testing.T) {
	assert.Equal(t, "22°C", RoundedTemperature(21.6))
	assert.Equal(t, "0°C", RoundedTemperature(-0.2))
	assert.Equal(t, "-3°C", RoundedTemperature(-3.5))
	assert.Equal(t, "-1°C", RoundedTemperature(-0.6))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteText(&buf,
		models.WeatherData{City: "Almaty", Temperature: 21.4, Description: "ясно", Icon: "01d"},
		[]models.ForecastSample{
			{Timestamp: "2024-05-01 12:00:00", Temperature: 20, Description: "ясно", Icon: "01d"},
			{Timestamp: "2024-05-02 12:00:00", Temperature: 18.25, Description: "дождь", Icon: "10d"},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Almaty 21°C",
		"☀ ясно",
		"☀ 2024-05-01: 20°C, ясно",
		"🌦 2024-05-02: 18.25°C, дождь",
		"",
	}, "\n"), buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, "Almaty", []models.ForecastSample{
		{Timestamp: "2024-05-01 12:00:00", Temperature: 20.5, Description: "clear sky", Icon: "01d"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "city,date,dt_txt,temperature,description,icon,icon_url", lines[0])
	assert.Equal(t, "Almaty,2024-05-01,2024-05-01 12:00:00,20.5,clear sky,01d,https://openweathermap.org/img/wn/01d@2x.png", lines[1])
}
