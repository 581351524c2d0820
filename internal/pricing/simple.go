package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/window"
)

func (p SimpleTierPricing) quote(e *Engine, w window.Window, _ Options) (Quote, error) {
	hours := w.Hours()
	tier := &p.Tier
	inSecondBand := hours.GreaterThan(twelve) && hours.LessThanOrEqual(twentyFour)

	var (
		base  decimal.Decimal
		lines []string
	)
	switch {
	case hours.LessThanOrEqual(twelve) && tier.Price12Hours != nil:
		base = *tier.Price12Hours
		// The rounded hour count is for display only.
		lines = append(lines, fmt.Sprintf("12-hour package (%s hrs) = %s", hours.Round(0), e.money(base)))
	case inSecondBand && tier.hasHourlyRates():
		base, lines = p.incremental(e, hours)
	case inSecondBand && tier.Price12Hours != nil:
		// Without rates for hours 13..24 the package price covers the whole day.
		base = *tier.Price12Hours
		lines = append(lines, fmt.Sprintf("12-hour package (%s hrs, no rates beyond 12 hrs) = %s",
			formatHours(hours), e.money(base)))
	case p.LegacyHourlyRate != nil:
		base = p.LegacyHourlyRate.Mul(hours)
		lines = append(lines, fmt.Sprintf("%s hrs × %s = %s",
			formatHours(hours), e.money(*p.LegacyHourlyRate), e.money(base)))
	default:
		return Quote{}, fmt.Errorf("%w: simple tier cannot price a %s hour window",
			ErrConfiguration, formatHours(hours))
	}

	// Weekend surge is not applied on this path.
	q := Quote{
		Strategy:                   StrategySimple,
		DurationHours:              hours,
		BasePrice:                  base,
		SurchargeMultiplierApplied: one,
		ExtraKmCharge:              decimal.Zero,
		Subtotal:                   base,
		GSTPercentage:              p.GSTPercentage,
		GSTAmount:                  base.Mul(p.GSTPercentage).Div(hundred),
		IncludedKm:                 p.IncludedKm,
		ExtraKmPrice:               decimal.Zero,
	}
	return e.finish(q, lines), nil
}

// incremental prices a 12..24 hour window: the package price plus each whole hour
// past 12 at its own rate, plus the next hour's rate pro-rated for a partial hour.
func (p SimpleTierPricing) incremental(e *Engine, hours decimal.Decimal) (decimal.Decimal, []string) {
	tier := &p.Tier
	base := decimal.Zero
	var lines []string
	if tier.Price12Hours != nil {
		base = *tier.Price12Hours
		lines = append(lines, "12-hour package = "+e.money(base))
	}

	over := hours.Sub(twelve)
	whole := int(over.Floor().IntPart())
	frac := over.Sub(decimal.NewFromInt(int64(whole)))

	if whole > 0 {
		sum := decimal.Zero
		for h := 13; h < 13+whole; h++ {
			sum = sum.Add(tier.rate(h))
		}
		base = base.Add(sum)
		if whole == 1 {
			lines = append(lines, fmt.Sprintf("hour 13 = %s", e.money(sum)))
		} else {
			lines = append(lines, fmt.Sprintf("hours 13-%d = %s", 12+whole, e.money(sum)))
		}
	}
	if frac.IsPositive() {
		next := min(13+whole, 24)
		rate := tier.rate(next)
		part := rate.Mul(frac)
		base = base.Add(part)
		lines = append(lines, fmt.Sprintf("%s hrs of hour %d × %s = %s",
			formatHours(frac), next, e.money(rate), e.money(part)))
	}
	return base, lines
}
