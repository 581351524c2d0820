package rental

import (
	"time"

	"bike-rental-backend/internal/availability"
	"bike-rental-backend/internal/model"
	"bike-rental-backend/internal/pricing"
)

// snapshot converts a stored reservation into the checker's view as of now.
// Completed and cancelled rows are dropped.
func snapshot(row model.Reservation, now time.Time) (availability.Reservation, bool) {
	r := availability.Reservation{
		ID:             row.ID,
		BikeID:         row.BikeID,
		EffectiveStart: row.StartTime,
	}

	switch row.Status {
	case model.ReservationConfirmed:
		if row.PickedUpAt != nil && !row.PickedUpAt.After(now) {
			r.Status = availability.StatusOngoing
			r.EffectiveStart = *row.PickedUpAt
			return r, true
		}
		r.Status = availability.StatusConfirmed
		r.EffectiveEnd = row.EndTime
	case model.ReservationOngoing:
		r.Status = availability.StatusOngoing
		if row.PickedUpAt != nil {
			r.EffectiveStart = *row.PickedUpAt
		}
	default:
		return availability.Reservation{}, false
	}
	return r, true
}

// pricingConfig reads a bike's pricing columns.
func pricingConfig(b model.Bike) pricing.Config {
	cfg := pricing.Config{
		LegacyHourlyRate:       b.LegacyHourlyRate,
		KmLimitPerRental:       b.KmLimitPerRental,
		WeekendSurgeMultiplier: b.WeekendSurgeMultiplier,
		GSTPercentage:          b.GSTPercentage,
	}

	if len(b.Slabs) > 0 {
		cfg.Slabs = make(map[pricing.PricingType]*pricing.Slab, len(b.Slabs))
		for _, s := range b.Slabs {
			t, err := pricing.ParsePricingType(s.Type)
			if err != nil || t == "" {
				continue
			}
			cfg.Slabs[t] = &pricing.Slab{
				Price:              s.Price,
				DurationMinHours:   s.DurationMinHours,
				DurationMaxHours:   s.DurationMaxHours,
				IncludedKm:         s.IncludedKm,
				ExtraKmPrice:       s.ExtraKmPrice,
				MinimumBookingRule: pricing.BookingRule(s.MinimumBookingRule),
				MinimumValue:       s.MinimumValue,
			}
		}
	}

	tier := pricing.SimpleTier{Price12Hours: b.Price12Hours, PricePerWeek: b.PricePerWeek}
	hasTier := tier.Price12Hours != nil || tier.PricePerWeek != nil
	for i, rate := range b.HourlyRates13to24 {
		if i >= len(tier.HourlyRates13to24) {
			break
		}
		if rate != nil {
			tier.HourlyRates13to24[i] = rate
			hasTier = true
		}
	}
	if hasTier {
		cfg.SimpleTier = &tier
	}
	return cfg
}
