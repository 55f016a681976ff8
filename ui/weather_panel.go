package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"weather-app/dashboard"
	"weather-app/models"
	"weather-app/report"
)

// WeatherPanel displays the current weather for the searched city
type WeatherPanel struct {
	*tview.TextView

	app *tview.Application
}

// NewWeatherPanel creates an empty weather panel
func NewWeatherPanel(app *tview.Application) *WeatherPanel {
	wp := &WeatherPanel{
		TextView: tview.NewTextView(),
		app:      app,
	}

	wp.SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetBorder(true).
		SetTitle("Current").
		SetTitleAlign(tview.AlignLeft)

	return wp
}

// Refresh displays the supplied state
func (wp *WeatherPanel) Refresh(state dashboard.State[models.WeatherData]) {
	wp.app.QueueUpdateDraw(func() {
		wp.render(state)
	})
}

func (wp *WeatherPanel) render(state dashboard.State[models.WeatherData]) {
	wp.Clear()

	switch {
	case state.Loading:
		wp.SetText("Loading...")
	case state.Error != "":
		wp.SetText("[red]" + tview.Escape(state.Error))
	case state.Result != nil:
		w := state.Result
		wp.SetText(fmt.Sprintf("[::b]%s[::-]\n%s\n%s %s\n[gray]%s",
			tview.Escape(w.City),
			report.RoundedTemperature(w.Temperature),
			report.IconGlyph(w.Icon),
			tview.Escape(w.Description),
			report.IconURL(w.Icon),
		))
	}
}
