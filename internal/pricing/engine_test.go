package pricing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bike-rental-backend/internal/window"
)

// 2026-03-04 is a Wednesday, 2026-03-07 a Saturday.
var (
	wednesday = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	saturday  = time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func win(t *testing.T, start time.Time, d time.Duration) window.Window {
	t.Helper()
	w, err := window.New(start, start.Add(d))
	require.NoError(t, err)
	return w
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestEngine_LegacyRoundsUpToWholeHours(t *testing.T) {
	e := NewEngine(time.UTC, "")
	cfg := Config{LegacyHourlyRate: decPtr("10"), KmLimitPerRental: intPtr(50)}

	q, err := e.Quote(cfg, win(t, wednesday, 2*time.Hour+6*time.Minute), Options{})
	require.NoError(t, err)

	assert.Equal(t, StrategyLegacy, q.Strategy)
	assertDec(t, "30", q.BasePrice, "base")
	assertDec(t, "0", q.GSTAmount, "gst")
	assertDec(t, "1", q.SurchargeMultiplierApplied, "surcharge")
	assert.Equal(t, "30.00", q.Total.StringFixed(2))
	assert.Equal(t, 50, q.IncludedKm)
	assert.Contains(t, q.BreakdownText, "3 hrs (2.1 rounded up) × ₹10.00 = ₹30.00")
}

func TestEngine_LegacyIgnoresWeekend(t *testing.T) {
	e := NewEngine(time.UTC, "")
	cfg := Config{LegacyHourlyRate: decPtr("10"), WeekendSurgeMultiplier: decPtr("2")}

	q, err := e.Quote(cfg, win(t, saturday, 2*time.Hour), Options{})
	require.NoError(t, err)
	assertDec(t, "20", q.Total, "total")
	assert.False(t, q.HasWeekend)
}

func TestEngine_SimpleTier(t *testing.T) {
	e := NewEngine(time.UTC, "")
	rates := [12]*decimal.Decimal{decPtr("50"), decPtr("60"), decPtr("70")}

	testCases := []struct {
		name      string
		cfg       Config
		duration  time.Duration
		wantBase  string
		wantGST   string
		wantTotal string
	}{
		{
			name:      "Flat package within 12 hours",
			cfg:       Config{SimpleTier: &SimpleTier{Price12Hours: decPtr("500")}},
			duration:  6 * time.Hour,
			wantBase:  "500",
			wantGST:   "90",
			wantTotal: "590.00",
		},
		{
			name:      "Exactly 12 hours",
			cfg:       Config{SimpleTier: &SimpleTier{Price12Hours: decPtr("500")}},
			duration:  12 * time.Hour,
			wantBase:  "500",
			wantGST:   "90",
			wantTotal: "590.00",
		},
		{
			name:      "Whole and partial hours beyond 12",
			cfg:       Config{SimpleTier: &SimpleTier{Price12Hours: decPtr("500"), HourlyRates13to24: rates}},
			duration:  14*time.Hour + 30*time.Minute,
			wantBase:  "645", // 500 + 50 + 60 + 70*0.5
			wantGST:   "116.1",
			wantTotal: "761.10",
		},
		{
			name:      "Only hourly rates, no package price",
			cfg:       Config{SimpleTier: &SimpleTier{HourlyRates13to24: rates}},
			duration:  13 * time.Hour,
			wantBase:  "50",
			wantGST:   "9",
			wantTotal: "59.00",
		},
		{
			name:      "Package price only covers up to 24 hours",
			cfg:       Config{SimpleTier: &SimpleTier{Price12Hours: decPtr("500")}},
			duration:  18 * time.Hour,
			wantBase:  "500",
			wantGST:   "90",
			wantTotal: "590.00",
		},
		{
			name: "Beyond 24 hours falls back to the legacy rate",
			cfg: Config{
				LegacyHourlyRate: decPtr("20"),
				SimpleTier:       &SimpleTier{Price12Hours: decPtr("500"), PricePerWeek: decPtr("2000")},
			},
			duration:  30*time.Hour + 30*time.Minute,
			wantBase:  "610",
			wantGST:   "109.8",
			wantTotal: "719.80",
		},
		{
			name: "Custom GST",
			cfg: Config{
				SimpleTier:    &SimpleTier{Price12Hours: decPtr("333.33")},
				GSTPercentage: decPtr("5"),
			},
			duration:  3 * time.Hour,
			wantBase:  "333.33",
			wantGST:   "16.6665",
			wantTotal: "350.00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := e.Quote(tc.cfg, win(t, saturday, tc.duration), Options{})
			require.NoError(t, err)

			assert.Equal(t, StrategySimple, q.Strategy)
			assertDec(t, tc.wantBase, q.BasePrice, "base")
			assertDec(t, tc.wantGST, q.GSTAmount, "gst")
			assert.Equal(t, tc.wantTotal, q.Total.StringFixed(2))
			// The weekend never surges the simple tier.
			assertDec(t, "1", q.SurchargeMultiplierApplied, "surcharge")
			assert.False(t, q.HasWeekend)
		})
	}
}

func TestEngine_SimpleTierUnpriceableWindows(t *testing.T) {
	e := NewEngine(time.UTC, "")

	testCases := []struct {
		name     string
		cfg      Config
		duration time.Duration
	}{
		{
			name:     "Beyond 24 hours without legacy rate",
			cfg:      Config{SimpleTier: &SimpleTier{Price12Hours: decPtr("500"), PricePerWeek: decPtr("2000")}},
			duration: 48 * time.Hour,
		},
		{
			name:     "Weekly price alone is never selected",
			cfg:      Config{SimpleTier: &SimpleTier{PricePerWeek: decPtr("2000")}},
			duration: 7 * 24 * time.Hour,
		},
		{
			name:     "Short window with only hourly rates",
			cfg:      Config{SimpleTier: &SimpleTier{HourlyRates13to24: [12]*decimal.Decimal{decPtr("10")}}},
			duration: 2 * time.Hour,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Quote(tc.cfg, win(t, wednesday, tc.duration), Options{})
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestEngine_Slab(t *testing.T) {
	e := NewEngine(time.UTC, "")
	hourly := &Slab{
		Price:            dec("100"),
		DurationMinHours: dec("1"),
		DurationMaxHours: dec("12"),
		IncludedKm:       10,
		ExtraKmPrice:     dec("5"),
	}

	testCases := []struct {
		name        string
		cfg         Config
		start       time.Time
		duration    time.Duration
		opts        Options
		wantBase    string
		wantMult    string
		wantSub     string
		wantTotal   string
		wantWeekend bool
		wantWithin  bool
	}{
		{
			name:       "Weekday hourly",
			cfg:        Config{Slabs: map[PricingType]*Slab{Hourly: hourly}, WeekendSurgeMultiplier: decPtr("1.5")},
			start:      wednesday,
			duration:   3 * time.Hour,
			wantBase:   "300",
			wantMult:   "1",
			wantSub:    "300",
			wantTotal:  "354.00",
			wantWithin: true,
		},
		{
			name:        "Weekend surge",
			cfg:         Config{Slabs: map[PricingType]*Slab{Hourly: hourly}, WeekendSurgeMultiplier: decPtr("1.5")},
			start:       saturday,
			duration:    3 * time.Hour,
			wantBase:    "300",
			wantMult:    "1.5",
			wantSub:     "450",
			wantTotal:   "531.00",
			wantWeekend: true,
			wantWithin:  true,
		},
		{
			name:        "Window running into Saturday",
			cfg:         Config{Slabs: map[PricingType]*Slab{Hourly: hourly}, WeekendSurgeMultiplier: decPtr("2")},
			start:       time.Date(2026, 3, 6, 22, 0, 0, 0, time.UTC),
			duration:    3 * time.Hour,
			wantBase:    "300",
			wantMult:    "2",
			wantSub:     "600",
			wantTotal:   "708.00",
			wantWeekend: true,
			wantWithin:  true,
		},
		{
			name:       "Window ending exactly at Saturday midnight",
			cfg:        Config{Slabs: map[PricingType]*Slab{Hourly: hourly}, WeekendSurgeMultiplier: decPtr("2")},
			start:      time.Date(2026, 3, 6, 21, 0, 0, 0, time.UTC),
			duration:   3 * time.Hour,
			wantBase:   "300",
			wantMult:   "1",
			wantSub:    "300",
			wantTotal:  "354.00",
			wantWithin: true,
		},
		{
			name:       "Excess distance",
			cfg:        Config{Slabs: map[PricingType]*Slab{Hourly: hourly}, GSTPercentage: decPtr("0")},
			start:      wednesday,
			duration:   2 * time.Hour,
			opts:       Options{ActualKm: dec("14")},
			wantBase:   "200",
			wantMult:   "1",
			wantSub:    "220",
			wantTotal:  "220.00",
			wantWithin: true,
		},
		{
			name: "Minimum duration",
			cfg: Config{Slabs: map[PricingType]*Slab{Hourly: {
				Price:              dec("50"),
				DurationMaxHours:   dec("24"),
				MinimumBookingRule: RuleMinDuration,
				MinimumValue:       dec("4"),
			}}, GSTPercentage: decPtr("0")},
			start:      wednesday,
			duration:   2 * time.Hour,
			wantBase:   "200",
			wantMult:   "1",
			wantSub:    "200",
			wantTotal:  "200.00",
			wantWithin: true,
		},
		{
			name: "Minimum price",
			cfg: Config{Slabs: map[PricingType]*Slab{Daily: {
				Price:              dec("240"),
				DurationMinHours:   dec("24"),
				DurationMaxHours:   dec("72"),
				MinimumBookingRule: RuleMinPrice,
				MinimumValue:       dec("100"),
			}}, GSTPercentage: decPtr("0")},
			start:     wednesday,
			duration:  6 * time.Hour,
			wantBase:  "100",
			wantMult:  "1",
			wantSub:   "100",
			wantTotal: "100.00",
		},
		{
			name: "Daily slab scales linearly",
			cfg: Config{Slabs: map[PricingType]*Slab{Daily: {
				Price:            dec("240"),
				DurationMinHours: dec("24"),
				DurationMaxHours: dec("72"),
			}}, GSTPercentage: decPtr("0")},
			start:      time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			duration:   36 * time.Hour,
			wantBase:   "360",
			wantMult:   "1",
			wantSub:    "360",
			wantTotal:  "360.00",
			wantWithin: true,
		},
		{
			name: "Weekly slab scales linearly",
			cfg: Config{Slabs: map[PricingType]*Slab{Weekly: {
				Price:            dec("1680"),
				DurationMinHours: dec("168"),
				DurationMaxHours: dec("336"),
			}}, GSTPercentage: decPtr("0")},
			start:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			duration:  84 * time.Hour,
			wantBase:  "840",
			wantMult:  "1",
			wantSub:   "840",
			wantTotal: "840.00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := e.Quote(tc.cfg, win(t, tc.start, tc.duration), tc.opts)
			require.NoError(t, err)

			assert.Equal(t, StrategySlab, q.Strategy)
			assertDec(t, tc.wantBase, q.BasePrice, "base")
			assertDec(t, tc.wantMult, q.SurchargeMultiplierApplied, "multiplier")
			assertDec(t, tc.wantSub, q.Subtotal, "subtotal")
			assert.Equal(t, tc.wantTotal, q.Total.StringFixed(2))
			assert.Equal(t, tc.wantWeekend, q.HasWeekend)
			assert.Equal(t, tc.wantWithin, q.WithinSlabRange)
		})
	}
}

func TestEngine_WeekendUsesEngineLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	cfg := Config{
		Slabs:                  map[PricingType]*Slab{Hourly: {Price: dec("100"), DurationMaxHours: dec("24")}},
		WeekendSurgeMultiplier: decPtr("1.5"),
	}
	// Friday 20:00 UTC is already Saturday 01:30 in IST.
	w := win(t, time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC), time.Hour)

	q, err := NewEngine(time.UTC, "").Quote(cfg, w, Options{})
	require.NoError(t, err)
	assert.False(t, q.HasWeekend)

	q, err = NewEngine(kolkata, "").Quote(cfg, w, Options{})
	require.NoError(t, err)
	assert.True(t, q.HasWeekend)
}

func TestEngine_SlabPricingType(t *testing.T) {
	e := NewEngine(time.UTC, "")
	slab := &Slab{Price: dec("100"), DurationMaxHours: dec("24")}
	two := Config{Slabs: map[PricingType]*Slab{Hourly: slab, Daily: slab}}
	single := Config{Slabs: map[PricingType]*Slab{Daily: slab, Weekly: nil}}
	w := win(t, wednesday, 2*time.Hour)

	_, err := e.Quote(two, w, Options{})
	assert.ErrorIs(t, err, ErrInvalidPricingType)

	_, err = e.Quote(two, w, Options{PricingType: Weekly})
	assert.ErrorIs(t, err, ErrInvalidPricingType)

	q, err := e.Quote(two, w, Options{PricingType: Daily})
	require.NoError(t, err)
	assert.Equal(t, Daily, q.PricingType)

	q, err = e.Quote(single, w, Options{})
	require.NoError(t, err)
	assert.Equal(t, Daily, q.PricingType)
}

func TestEngine_Errors(t *testing.T) {
	e := NewEngine(time.UTC, "")

	_, err := e.Quote(Config{LegacyHourlyRate: decPtr("10")}, window.Window{Start: wednesday, End: wednesday}, Options{})
	assert.ErrorIs(t, err, window.ErrInvalidWindow)

	_, err = e.Quote(Config{}, win(t, wednesday, time.Hour), Options{})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = e.Quote(Config{LegacyHourlyRate: decPtr("10"), GSTPercentage: decPtr("120")}, win(t, wednesday, time.Hour), Options{})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = e.Quote(Config{LegacyHourlyRate: decPtr("10"), WeekendSurgeMultiplier: decPtr("0.5")}, win(t, wednesday, time.Hour), Options{})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = e.Quote(Config{LegacyHourlyRate: decPtr("-1")}, win(t, wednesday, time.Hour), Options{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEngine_QuoteIsDeterministic(t *testing.T) {
	e := NewEngine(time.UTC, "")
	cfg := Config{
		Slabs: map[PricingType]*Slab{
			Hourly: {Price: dec("99.99"), DurationMaxHours: dec("12"), IncludedKm: 5, ExtraKmPrice: dec("3.5")},
			Weekly: {Price: dec("1999"), DurationMinHours: dec("168"), DurationMaxHours: dec("336")},
		},
		WeekendSurgeMultiplier: decPtr("1.25"),
	}
	w := win(t, saturday, 7*time.Hour+20*time.Minute)
	opts := Options{PricingType: Hourly, ActualKm: dec("12.5")}

	first, err := e.Quote(cfg, w, opts)
	require.NoError(t, err)
	second, err := e.Quote(cfg, w, opts)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestClassify(t *testing.T) {
	slabs := map[PricingType]*Slab{Hourly: {Price: dec("10"), DurationMaxHours: dec("5")}}

	testCases := []struct {
		name     string
		cfg      Config
		expected Strategy
	}{
		{name: "Simple tier wins over everything", cfg: Config{LegacyHourlyRate: decPtr("1"), Slabs: slabs, SimpleTier: &SimpleTier{PricePerWeek: decPtr("1")}}, expected: StrategySimple},
		{name: "Slabs win over legacy", cfg: Config{LegacyHourlyRate: decPtr("1"), Slabs: slabs, SimpleTier: &SimpleTier{}}, expected: StrategySlab},
		{name: "Nil slab entries do not count", cfg: Config{LegacyHourlyRate: decPtr("1"), Slabs: map[PricingType]*Slab{Daily: nil}}, expected: StrategyLegacy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Classify(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s.Strategy())
		})
	}

	_, err := Classify(Config{SimpleTier: &SimpleTier{}, Slabs: map[PricingType]*Slab{Hourly: nil}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestParsePricingType(t *testing.T) {
	for in, want := range map[string]PricingType{"": "", "hourly": Hourly, " Daily ": Daily, "WEEKLY": Weekly} {
		got, err := ParsePricingType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePricingType("monthly")
	assert.ErrorIs(t, err, ErrInvalidPricingType)
}
