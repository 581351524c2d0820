// Package pricing computes rental quotes for a bike's pricing configuration.
//
// Quotes are pure functions of the configuration, the window and the options; the
// engine holds only the location used to find weekend days.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/window"
)

const DefaultCurrencySymbol = "₹"

// Options are the caller's choices for a quote.
type Options struct {
	// PricingType picks the slab; required when more than one slab is populated.
	PricingType PricingType
	// ActualKm is the distance travelled, zero for a pre-ride quote.
	ActualKm decimal.Decimal
}

// Quote is a complete price breakdown. Only Total is rounded.
type Quote struct {
	Strategy                   Strategy        `json:"strategy_used"`
	PricingType                PricingType     `json:"pricing_type,omitempty"`
	DurationHours              decimal.Decimal `json:"duration_hours"`
	BasePrice                  decimal.Decimal `json:"base_price"`
	SurchargeMultiplierApplied decimal.Decimal `json:"surcharge_multiplier_applied"`
	HasWeekend                 bool            `json:"has_weekend"`
	WithinSlabRange            bool            `json:"within_slab_range"`
	ExtraKmCharge              decimal.Decimal `json:"extra_km_charge"`
	Subtotal                   decimal.Decimal `json:"subtotal"`
	GSTPercentage              decimal.Decimal `json:"gst_percentage"`
	GSTAmount                  decimal.Decimal `json:"gst_amount"`
	Total                      decimal.Decimal `json:"total"`
	IncludedKm                 int             `json:"included_km"`
	ExtraKmPrice               decimal.Decimal `json:"extra_km_price"`
	BreakdownText              string          `json:"breakdown_text"`
}

// Engine produces quotes. It is safe for concurrent use.
type Engine struct {
	loc      *time.Location
	currency string
}

// NewEngine returns an engine that judges weekends in loc (UTC when nil).
func NewEngine(loc *time.Location, currencySymbol string) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if currencySymbol == "" {
		currencySymbol = DefaultCurrencySymbol
	}
	return &Engine{loc: loc, currency: currencySymbol}
}

// Quote prices cfg for w.
func (e *Engine) Quote(cfg Config, w window.Window, opts Options) (Quote, error) {
	if err := w.Validate(); err != nil {
		return Quote{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Quote{}, err
	}
	scheme, err := Classify(cfg)
	if err != nil {
		return Quote{}, err
	}
	q, err := scheme.quote(e, w, opts)
	if err != nil {
		return Quote{}, err
	}
	if q.Total.IsNegative() {
		return Quote{}, fmt.Errorf("%w: negative total %s", ErrConfiguration, q.Total)
	}
	return q, nil
}

// finish rounds the total and appends the tax and total lines to the breakdown.
func (e *Engine) finish(q Quote, lines []string) Quote {
	q.Total = q.Subtotal.Add(q.GSTAmount).Round(2)
	if q.GSTPercentage.IsPositive() {
		lines = append(lines, fmt.Sprintf("GST %s%% = %s", q.GSTPercentage, e.money(q.GSTAmount)))
	}
	lines = append(lines, "Total "+e.money(q.Total))
	q.BreakdownText = strings.Join(lines, "; ")
	return q
}

func (e *Engine) money(d decimal.Decimal) string {
	return e.currency + d.StringFixed(2)
}

// touchesWeekend reports whether any part of w falls on a Saturday or Sunday in the
// engine's location.
func (e *Engine) touchesWeekend(w window.Window) bool {
	start := w.Start.In(e.loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, e.loc)
	// Any seven consecutive days contain a weekend day.
	for i := 0; i < 8 && day.Before(w.End); i++ {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return true
		}
		day = day.AddDate(0, 0, 1)
	}
	return false
}

func formatHours(h decimal.Decimal) string {
	return h.Round(2).String()
}
