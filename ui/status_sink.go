package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// StatusLine shows the most recent log message
type StatusLine struct {
	*tview.TextView

	app *tview.Application
}

// NewStatusLine creates an empty status line
func NewStatusLine(app *tview.Application) *StatusLine {
	sl := &StatusLine{
		TextView: tview.NewTextView(),
		app:      app,
	}

	sl.SetTextAlign(tview.AlignLeft).
		SetTextColor(tcell.ColorGray)

	return sl
}

// Refresh replaces the contents of the status line
func (sl *StatusLine) Refresh(contents string) {
	sl.app.QueueUpdateDraw(func() {
		sl.render(contents)
	})
}

func (sl *StatusLine) render(contents string) {
	sl.Clear()
	sl.SetText(strings.TrimRight(contents, "\n"))
}

// StatusSink is a zap.Sink for the terminal UI. Each encoded entry replaces
// the status line, so only the latest message is visible.
type StatusSink struct {
	line *StatusLine
}

// NewStatusSink creates a sink that writes to line
func NewStatusSink(line *StatusLine) *StatusSink {
	return &StatusSink{
		line: line,
	}
}

// Write shows one encoded log entry. It blocks until the UI has drawn it, so
// it must not be called from the UI goroutine.
func (s *StatusSink) Write(p []byte) (n int, err error) {
	s.line.Refresh(string(p))
	return len(p), nil
}

// Close leaves the status line as is; the application owns it.
func (s *StatusSink) Close() error { return nil }

// Sync has nothing to flush since every Write is drawn immediately.
func (s *StatusSink) Sync() error { return nil }
