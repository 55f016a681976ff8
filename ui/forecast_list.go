package ui

import (
	"github.com/rivo/tview"

	"weather-app/dashboard"
	"weather-app/forecast"
	"weather-app/models"
	"weather-app/report"
)

type forecastRow struct {
	*tview.Flex

	lineText *tview.TextView
	iconText *tview.TextView
}

func newForecastRow() *forecastRow {
	fr := &forecastRow{
		Flex:     tview.NewFlex(),
		lineText: tview.NewTextView(),
		iconText: tview.NewTextView(),
	}

	fr.lineText.SetTextAlign(tview.AlignLeft)
	fr.iconText.SetTextAlign(tview.AlignRight)

	fr.SetDirection(tview.FlexColumn).
		AddItem(fr.lineText, 0, 6, false).
		AddItem(fr.iconText, 0, 1, false)

	return fr
}

func (fr *forecastRow) clear() {
	fr.lineText.Clear()
	fr.iconText.Clear()
}

// ForecastList displays one line per forecast day
type ForecastList struct {
	*tview.Flex

	app *tview.Application

	status  *tview.TextView
	records []*forecastRow
}

// NewForecastList creates a list with a row for each selected day
func NewForecastList(app *tview.Application) *ForecastList {
	fl := &ForecastList{
		Flex:   tview.NewFlex(),
		app:    app,
		status: tview.NewTextView().SetDynamicColors(true),
	}

	fl.SetBorder(true).
		SetTitle("Forecast").
		SetTitleAlign(tview.AlignLeft)

	fl.SetDirection(tview.FlexRow).
		AddItem(fl.status, 1, 1, false)
	for i := 0; i < forecast.DefaultDays; i++ {
		fl.records = append(fl.records, newForecastRow())
		fl.AddItem(fl.records[i], 1, 1, false)
	}

	return fl
}

// Refresh displays the supplied state
func (fl *ForecastList) Refresh(state dashboard.State[[]models.ForecastSample]) {
	fl.app.QueueUpdateDraw(func() {
		fl.render(state)
	})
}

func (fl *ForecastList) render(state dashboard.State[[]models.ForecastSample]) {
	fl.status.Clear()
	switch {
	case state.Loading:
		fl.status.SetText("Loading...")
	case state.Error != "":
		fl.status.SetText("[red]" + tview.Escape(state.Error))
	}

	var days []models.ForecastSample
	if state.Result != nil {
		days = *state.Result
	}

	for i, row := range fl.records {
		if i >= len(days) {
			row.clear()
			continue
		}
		row.lineText.SetText(report.DailyLine(days[i]))
		row.iconText.SetText(report.IconGlyph(days[i].Icon))
	}
}
