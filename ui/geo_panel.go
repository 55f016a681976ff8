package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"weather-app/dashboard"
	"weather-app/models"
	"weather-app/report"
)

// GeoPanel displays the weather at the user's position. It stays empty
// until a geolocated result arrives.
type GeoPanel struct {
	*tview.TextView

	app *tview.Application
}

// NewGeoPanel creates an empty geo panel
func NewGeoPanel(app *tview.Application) *GeoPanel {
	gp := &GeoPanel{
		TextView: tview.NewTextView(),
		app:      app,
	}

	gp.SetBorder(true).
		SetTitle("Your location").
		SetTitleAlign(tview.AlignLeft)

	return gp
}

// Refresh displays the supplied state
func (gp *GeoPanel) Refresh(state dashboard.State[models.WeatherData]) {
	gp.app.QueueUpdateDraw(func() {
		gp.render(state)
	})
}

func (gp *GeoPanel) render(state dashboard.State[models.WeatherData]) {
	gp.Clear()
	if state.Result == nil {
		return
	}
	gp.SetText(fmt.Sprintf("%s\nTemperature: %s\n%s",
		state.Result.City,
		report.Temperature(state.Result.Temperature),
		state.Result.Description,
	))
}
