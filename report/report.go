// Package report formats weather and forecast data for display and export.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"weather-app/models"
)

const iconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"

// IconURL returns the image URL for an OpenWeatherMap icon code.
// Icons that are already URLs are returned with an https scheme.
func IconURL(icon string) string {
	switch {
	case icon == "":
		return ""
	case strings.HasPrefix(icon, "//"):
		return "https:" + icon
	case strings.HasPrefix(icon, "http://"), strings.HasPrefix(icon, "https://"):
		return icon
	default:
		return fmt.Sprintf(iconURLTemplate, icon)
	}
}

var glyphs = map[string]string{
	"01": "☀",
	"02": "🌤",
	"03": "☁",
	"04": "☁",
	"09": "🌧",
	"10": "🌦",
	"11": "⛈",
	"13": "❄",
	"50": "🌫",
}

// IconGlyph maps an OpenWeatherMap icon code such as "10d" to a symbol.
// Night variants of the clear sky icon get a moon.
func IconGlyph(icon string) string {
	if len(icon) < 2 {
		return "?"
	}
	if icon == "01n" {
		return "☾"
	}
	if g, ok := glyphs[icon[:2]]; ok {
		return g
	}
	return "?"
}

// Temperature renders a temperature as delivered, without rounding
func Temperature(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64) + "°C"
}

// RoundedTemperature renders a temperature rounded to whole degrees, halves rounding up
func RoundedTemperature(t float64) string {
	r := math.Floor(t + 0.5)
	if r == 0 {
		r = 0 // normalise -0
	}
	return strconv.FormatFloat(r, 'f', 0, 64) + "°C"
}

// DailyLine renders one daily sample as "{date}: {temp}°C, {description}"
func DailyLine(s models.ForecastSample) string {
	return fmt.Sprintf("%s: %s, %s", s.Date(), Temperature(s.Temperature), s.Description)
}

// WriteText writes the current weather followed by one line per daily sample
func WriteText(w io.Writer, weather models.WeatherData, daily []models.ForecastSample) error {
	if _, err := fmt.Fprintf(w, "%s %s\n%s %s\n", weather.City, RoundedTemperature(weather.Temperature), IconGlyph(weather.Icon), weather.Description); err != nil {
		return err
	}
	for _, s := range daily {
		if _, err := fmt.Fprintf(w, "%s %s\n", IconGlyph(s.Icon), DailyLine(s)); err != nil {
			return err
		}
	}
	return nil
}

type csvRow struct {
	City        string  `csv:"city"`
	Date        string  `csv:"date"`
	Timestamp   string  `csv:"dt_txt"`
	Temperature float64 `csv:"temperature"`
	Description string  `csv:"description"`
	Icon        string  `csv:"icon"`
	IconURL     string  `csv:"icon_url"`
}

// WriteCSV writes one row per sample with a header
func WriteCSV(w io.Writer, city string, samples []models.ForecastSample) error {
	rows := make([]csvRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, csvRow{
			City:        city,
			Date:        s.Date(),
			Timestamp:   s.Timestamp,
			Temperature: s.Temperature,
			Description: s.Description,
			Icon:        s.Icon,
			IconURL:     IconURL(s.Icon),
		})
	}
	return gocsv.Marshal(rows, w)
}
