package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/window"
)

// Legacy rentals are billed on whole hours, rounded up, with no GST and no surge.
func (p LegacyPricing) quote(e *Engine, w window.Window, _ Options) (Quote, error) {
	hours := w.Hours()
	billed := hours.Ceil()
	base := p.HourlyRate.Mul(billed)

	q := Quote{
		Strategy:                   StrategyLegacy,
		DurationHours:              hours,
		BasePrice:                  base,
		SurchargeMultiplierApplied: one,
		ExtraKmCharge:              decimal.Zero,
		Subtotal:                   base,
		GSTPercentage:              decimal.Zero,
		GSTAmount:                  decimal.Zero,
		IncludedKm:                 p.IncludedKm,
		ExtraKmPrice:               decimal.Zero,
	}
	line := fmt.Sprintf("%s hrs × %s = %s", billed, e.money(p.HourlyRate), e.money(base))
	if !billed.Equal(hours) {
		line = fmt.Sprintf("%s hrs (%s rounded up) × %s = %s",
			billed, formatHours(hours), e.money(p.HourlyRate), e.money(base))
	}
	return e.finish(q, []string{line}), nil
}
