package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/window"
)

// pick returns the slab for t. An unspecified type is accepted only when a single
// slab is populated.
func (p SlabPricing) pick(t PricingType) (PricingType, Slab, error) {
	if t == "" {
		if len(p.Slabs) == 1 {
			for only, s := range p.Slabs {
				return only, s, nil
			}
		}
		return "", Slab{}, fmt.Errorf("%w: pricing type is required, bike has %d slabs",
			ErrInvalidPricingType, len(p.Slabs))
	}
	s, ok := p.Slabs[t]
	if !ok {
		return "", Slab{}, fmt.Errorf("%w: bike has no %s slab", ErrInvalidPricingType, t)
	}
	return t, s, nil
}

func (p SlabPricing) quote(e *Engine, w window.Window, opts Options) (Quote, error) {
	typ, slab, err := p.pick(opts.PricingType)
	if err != nil {
		return Quote{}, err
	}

	hours := w.Hours()
	// Outside the slab's range is flagged, not rejected.
	within := slab.DurationMinHours.LessThanOrEqual(hours) && hours.LessThanOrEqual(slab.DurationMaxHours)

	var lines []string
	billed := hours
	if slab.MinimumBookingRule == RuleMinDuration && hours.LessThan(slab.MinimumValue) {
		billed = slab.MinimumValue
		lines = append(lines, fmt.Sprintf("minimum booking %s hrs applied", formatHours(billed)))
	}

	base := slab.Price.Mul(billed)
	if ref := typ.referenceHours(); !ref.Equal(one) {
		base = base.Div(ref)
		lines = append(lines, fmt.Sprintf("%s hrs / %s × %s = %s",
			formatHours(billed), ref, e.money(slab.Price), e.money(base)))
	} else {
		lines = append(lines, fmt.Sprintf("%s hrs × %s = %s",
			formatHours(billed), e.money(slab.Price), e.money(base)))
	}

	if slab.MinimumBookingRule == RuleMinPrice && base.LessThan(slab.MinimumValue) {
		base = slab.MinimumValue
		lines = append(lines, "minimum price "+e.money(base)+" applied")
	}

	multiplier := one
	weekend := e.touchesWeekend(w)
	if weekend {
		multiplier = p.WeekendSurgeMultiplier
		lines = append(lines, fmt.Sprintf("weekend surge × %s", multiplier))
	}
	surged := base.Mul(multiplier)

	extraCharge := decimal.Zero
	included := decimal.NewFromInt(int64(slab.IncludedKm))
	if opts.ActualKm.GreaterThan(included) {
		excess := opts.ActualKm.Sub(included)
		extraCharge = excess.Mul(slab.ExtraKmPrice)
		lines = append(lines, fmt.Sprintf("%s extra km × %s = %s",
			excess, e.money(slab.ExtraKmPrice), e.money(extraCharge)))
	}

	subtotal := surged.Add(extraCharge)
	q := Quote{
		Strategy:                   StrategySlab,
		PricingType:                typ,
		DurationHours:              hours,
		BasePrice:                  base,
		SurchargeMultiplierApplied: multiplier,
		HasWeekend:                 weekend,
		WithinSlabRange:            within,
		ExtraKmCharge:              extraCharge,
		Subtotal:                   subtotal,
		GSTPercentage:              p.GSTPercentage,
		GSTAmount:                  subtotal.Mul(p.GSTPercentage).Div(hundred),
		IncludedKm:                 slab.IncludedKm,
		ExtraKmPrice:               slab.ExtraKmPrice,
	}
	return e.finish(q, lines), nil
}
