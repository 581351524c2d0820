package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidWindow is returned when a window does not end strictly after it starts.
var ErrInvalidWindow = errors.New("invalid window")

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Window is a half-open rental interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New builds a window and validates it.
func New(start, end time.Time) (Window, error) {
	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks End > Start.
func (w Window) Validate() error {
	if !w.End.After(w.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Hours returns the exact duration in hours, without rounding.
func (w Window) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(w.Duration())).Div(nanosPerHour)
}
