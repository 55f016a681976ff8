package forecast

import (
	"errors"
	"fmt"
)

// ErrOutOfOrder is matched by OrderError.
var ErrOutOfOrder = errors.New("forecast samples are not in chronological order")

// ParseError is returned when a sample's timestamp does not match models.TimestampLayout.
type ParseError struct {
	Index     int
	Timestamp string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sample %d: malformed timestamp %q: %v", e.Index, e.Timestamp, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// OrderError is returned when a sample's date precedes the date of the sample before it.
type OrderError struct {
	Index    int
	Date     string
	Previous string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("sample %d: date %s follows %s", e.Index, e.Date, e.Previous)
}

func (e *OrderError) Unwrap() error {
	return ErrOutOfOrder
}
