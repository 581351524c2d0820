// Package parse turns raw request values into domain types.
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/window"
)

// ErrInvalidInput marks a malformed request value.
var ErrInvalidInput = errors.New("invalid input")

// Time parses an RFC3339 timestamp.
func Time(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC3339 timestamp", ErrInvalidInput, field)
	}
	return t, nil
}

// Window parses start and end into a validated window.
func Window(startRaw, endRaw string) (window.Window, error) {
	start, err := Time("start", startRaw)
	if err != nil {
		return window.Window{}, err
	}
	end, err := Time("end", endRaw)
	if err != nil {
		return window.Window{}, err
	}
	return window.New(start, end)
}

// ID parses a positive integer identifier.
func ID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidInput, field)
	}
	return id, nil
}

// Km parses a non-negative distance. An empty value is zero.
func Km(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	km, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: actual_km must be a number", ErrInvalidInput)
	}
	if km.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: actual_km must not be negative", ErrInvalidInput)
	}
	return km, nil
}
