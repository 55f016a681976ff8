package ui

import (
	"github.com/rivo/tview"

	"weather-app/dashboard"
)

// View lays out every dashboard widget
type View struct {
	*tview.Flex

	Search   *SearchForm
	Weather  *WeatherPanel
	Forecast *ForecastList
	Geo      *GeoPanel
	Status   *StatusLine
}

// NewView creates the dashboard layout. onSearch is called from the UI goroutine and must not block.
func NewView(app *tview.Application, city string, onSearch func(city string)) *View {
	v := &View{
		Flex:     tview.NewFlex(),
		Search:   NewSearchForm(app, city, onSearch),
		Weather:  NewWeatherPanel(app),
		Forecast: NewForecastList(app),
		Geo:      NewGeoPanel(app),
		Status:   NewStatusLine(app),
	}

	v.SetDirection(tview.FlexRow).
		AddItem(v.Search, 3, 1, true).
		AddItem(tview.NewFlex().
			AddItem(v.Weather, 0, 1, false).
			AddItem(v.Geo, 0, 1, false), 7, 1, false).
		AddItem(v.Forecast, 8, 1, false).
		AddItem(v.Status, 1, 1, false)

	return v
}

// Refresh redraws every widget from the snapshot
func (v *View) Refresh(snap dashboard.Snapshot) {
	v.Search.Refresh(snap.Weather.Loading || snap.Forecast.Loading)
	v.Weather.Refresh(snap.Weather)
	v.Forecast.Refresh(snap.Forecast)
	v.Geo.Refresh(snap.Geo)
}
