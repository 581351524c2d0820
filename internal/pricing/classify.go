package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bike-rental-backend/internal/window"
)

// Scheme is the pricing scheme resolved for a configuration. It is one of
// SimpleTierPricing, SlabPricing or LegacyPricing.
type Scheme interface {
	Strategy() Strategy
	quote(e *Engine, w window.Window, opts Options) (Quote, error)
}

// SimpleTierPricing prices with the 12-hour package and per-hour rates for hours 13..24.
type SimpleTierPricing struct {
	Tier             SimpleTier
	LegacyHourlyRate *decimal.Decimal // fallback outside the package bands
	GSTPercentage    decimal.Decimal
	IncludedKm       int
}

// SlabPricing prices with the hourly, daily or weekly slab picked by the caller.
type SlabPricing struct {
	Slabs                  map[PricingType]Slab
	WeekendSurgeMultiplier decimal.Decimal
	GSTPercentage          decimal.Decimal
}

// LegacyPricing bills a flat hourly rate on whole hours.
type LegacyPricing struct {
	HourlyRate decimal.Decimal
	IncludedKm int
}

func (SimpleTierPricing) Strategy() Strategy { return StrategySimple }
func (SlabPricing) Strategy() Strategy       { return StrategySlab }
func (LegacyPricing) Strategy() Strategy     { return StrategyLegacy }

// Classify resolves which scheme prices cfg. Simple tier wins over slabs, slabs win
// over the legacy rate.
func Classify(cfg Config) (Scheme, error) {
	if cfg.SimpleTier.populated() {
		return SimpleTierPricing{
			Tier:             *cfg.SimpleTier,
			LegacyHourlyRate: cfg.LegacyHourlyRate,
			GSTPercentage:    cfg.gst(),
			IncludedKm:       cfg.includedKm(),
		}, nil
	}
	if slabs := cfg.populatedSlabs(); len(slabs) > 0 {
		return SlabPricing{
			Slabs:                  slabs,
			WeekendSurgeMultiplier: cfg.surge(),
			GSTPercentage:          cfg.gst(),
		}, nil
	}
	if cfg.LegacyHourlyRate != nil {
		return LegacyPricing{HourlyRate: *cfg.LegacyHourlyRate, IncludedKm: cfg.includedKm()}, nil
	}
	return nil, fmt.Errorf("%w: no pricing scheme configured", ErrConfiguration)
}
