// Package ui contains the terminal widgets of the weather dashboard.
package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	searchLabel  = "Search"
	loadingLabel = "..."
)

// SearchForm is a city input with a search button.
// While a search is running the button shows "..." and further submits are ignored.
type SearchForm struct {
	*tview.Form

	app      *tview.Application
	input    *tview.InputField
	onSubmit func(city string)
	loading  bool
}

// NewSearchForm creates a search form prefilled with city
func NewSearchForm(app *tview.Application, city string, onSubmit func(city string)) *SearchForm {
	sf := &SearchForm{
		Form:     tview.NewForm(),
		app:      app,
		input:    tview.NewInputField(),
		onSubmit: onSubmit,
	}

	sf.input.SetLabel("City ").
		SetText(city).
		SetFieldWidth(32).
		SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter {
				sf.submit()
			}
		})

	sf.AddFormItem(sf.input).
		AddButton(searchLabel, sf.submit).
		SetHorizontal(true).
		SetBorder(true).
		SetTitle("Weather").
		SetTitleAlign(tview.AlignLeft)

	return sf
}

// Text returns the current contents of the city input
func (sf *SearchForm) Text() string {
	return sf.input.GetText()
}

// Refresh updates the loading indicator
func (sf *SearchForm) Refresh(loading bool) {
	sf.app.QueueUpdateDraw(func() {
		sf.render(loading)
	})
}

func (sf *SearchForm) render(loading bool) {
	sf.loading = loading

	label := searchLabel
	if loading {
		label = loadingLabel
	}
	sf.GetButton(0).SetLabel(label)
}

func (sf *SearchForm) submit() {
	if sf.loading {
		return
	}
	city := strings.TrimSpace(sf.input.GetText())
	if city == "" {
		return
	}
	sf.onSubmit(city)
}
