package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-app/dashboard"
	"weather-app/models"
)

func TestSearchFormIgnoresSubmitWhileLoading(t *testing.T) {
	var submitted []string
	sf := NewSearchForm(tview.NewApplication(), " Almaty ", func(city string) {
		submitted = append(submitted, city)
	})

	sf.submit()
	require.Equal(t, []string{"Almaty"}, submitted)

	sf.render(true)
	assert.Equal(t, "...", sf.GetButton(0).GetLabel())
	sf.submit()
	assert.Len(t, submitted, 1)

	sf.render(false)
	assert.Equal(t, "Search", sf.GetButton(0).GetLabel())
	sf.submit()
	assert.Len(t, submitted, 2)
}

func TestSearchFormIgnoresBlank(t *testing.T) {
	called := false
	sf := NewSearchForm(tview.NewApplication(), "   ", func(string) { called = true })

	sf.submit()

	assert.False(t, called)
}

func TestWeatherPanel(t *testing.T) {
	wp := NewWeatherPanel(tview.NewApplication())

	wp.render(dashboard.State[models.WeatherData]{Loading: true})
	assert.Equal(t, "Loading...", wp.GetText(true))

	wp.render(dashboard.State[models.WeatherData]{Error: "City not found"})
	assert.Equal(t, "City not found", wp.GetText(true))

	wp.render(dashboard.State[models.WeatherData]{Result: &models.WeatherData{
		City:        "Almaty",
		Temperature: 21.6,
		Description: "ясно",
		Icon:        "01d",
	}})
	text := wp.GetText(true)
	assert.Contains(t, text, "Almaty")
	assert.Contains(t, text, "22°C")
	assert.Contains(t, text, "https://openweathermap.org/img/wn/01d@2x.png")
}

func TestForecastList(t *testing.T) {
	fl := NewForecastList(tview.NewApplication())
	require.Len(t, fl.records, 5)

	days := []models.ForecastSample{
		{Timestamp: "2024-05-01 12:00:00", Temperature: 20.5, Description: "ясно", Icon: "01d"},
		{Timestamp: "2024-05-02 12:00:00", Temperature: 18, Description: "дождь", Icon: "10d"},
	}
	fl.render(dashboard.State[[]models.ForecastSample]{Result: &days})

	assert.Equal(t, "2024-05-01: 20.5°C, ясно", fl.records[0].lineText.GetText(true))
	assert.Equal(t, "2024-05-02: 18°C, дождь", fl.records[1].lineText.GetText(true))
	assert.Empty(t, fl.records[2].lineText.GetText(true))
	assert.Empty(t, fl.status.GetText(true))

	fl.render(dashboard.State[[]models.ForecastSample]{Error: "Failed to load weather data."})
	assert.Equal(t, "Failed to load weather data.", fl.status.GetText(true))
	assert.Empty(t, fl.records[0].lineText.GetText(true))
}

func TestGeoPanelEmptyWithoutResult(t *testing.T) {
	gp := NewGeoPanel(tview.NewApplication())

	gp.render(dashboard.State[models.WeatherData]{Loading: true})
	assert.Empty(t, gp.GetText(true))

	gp.render(dashboard.State[models.WeatherData]{Result: &models.WeatherData{City: "Almaty", Temperature: 15.5}})
	assert.True(t, strings.HasPrefix(gp.GetText(true), "Almaty\nTemperature: 15.5°C"))
}

func TestStatusLine(t *testing.T) {
	sl := NewStatusLine(tview.NewApplication())

	sl.render("INFO\tsearching\n")

	assert.Equal(t, "INFO\tsearching", sl.GetText(true))
}

func TestStatusSinkShowsLatestEntry(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	app := tview.NewApplication().SetScreen(screen)
	screen.SetSize(80, 5)

	line := NewStatusLine(app)
	app.SetRoot(line, true)

	done := make(chan error, 1)
	go func() {
		done <- app.Run()
	}()
	defer func() {
		app.Stop()
		require.NoError(t, <-done)
	}()

	sink := NewStatusSink(line)
	n, err := sink.Write([]byte("INFO\tfirst\n"))
	require.NoError(t, err)
	assert.Equal(t, len("INFO\tfirst\n"), n)

	_, err = sink.Write([]byte("WARN\tsecond\n"))
	require.NoError(t, err)

	var text string
	app.QueueUpdate(func() {
		text = line.GetText(true)
	})
	assert.Equal(t, "WARN\tsecond", text)
	assert.NoError(t, sink.Sync())
}
