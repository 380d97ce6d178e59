package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-rate-engine/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testEngine(now time.Time, diags *[]Diagnostic) *Engine {
	return New(DefaultConfig(), Options{
		Now:   func() time.Time { return now },
		NewID: func() string { return "rec_test" },
		OnDiagnostic: func(d Diagnostic) {
			if diags != nil {
				*diags = append(*diags, d)
			}
		},
	})
}

func rateContext(current int64, day time.Time) models.RateContext {
	return models.RateContext{
		PropertyID:   "prop-1",
		RoomTypeID:   "rt-1",
		RatePlanID:   "rp-1",
		Date:         day,
		CurrentRate:  decimal.NewFromInt(current),
		Inventory:    4,
		RoomTypeCode: "DLX",
		RoomTypeName: "Deluxe King",
		RatePlanCode: "BAR",
		RatePlanName: "Best Available Rate",
	}
}

func competitors(day time.Time, rates ...int64) []models.CompetitorObservation {
	obs := make([]models.CompetitorObservation, 0, len(rates))
	for i, r := range rates {
		obs = append(obs, models.CompetitorObservation{
			CompetitorID:   string(rune('a' + i)),
			CompetitorName: "Competitor",
			RoomTypeCode:   "DLX",
			Rate:           decimal.NewFromInt(r),
			Currency:       "THB",
			Date:           day,
			Availability:   true,
		})
	}
	return obs
}

func history(occupancy float64, trend models.MarketTrend) models.HistoricalPerformance {
	return models.HistoricalPerformance{
		AverageOccupancy:  occupancy,
		AverageADR:        decimal.NewFromInt(4800),
		SeasonalTrend:     trend,
		HasHistoricalData: true,
	}
}

func TestGenerate_SummerWeekendStrongOccupancy(t *testing.T) {
	day := date(2026, time.June, 13) // Saturday
	e := testEngine(date(2026, time.June, 1), nil)

	res := e.Generate(rateContext(5000, day), competitors(day, 5200, 5300, 4800, 5100, 5250), history(88, models.TrendStable))
	rec, ok := res.Get()
	require.True(t, ok)

	// 0.3*5000/5130 + 0.4*0.88 + 0.15*1.2 + 0.15*1.15 = 0.997
	assert.Equal(t, models.DemandMedium, rec.Factors.DemandLevel)
	assert.Equal(t, models.TrendStable, rec.Factors.MarketTrend)
	assert.Equal(t, int64(5335), rec.SuggestedRate)
	assert.GreaterOrEqual(t, rec.SuggestedRate, int64(5130))
	assert.LessOrEqual(t, rec.SuggestedRate, int64(5700))
	assert.Equal(t, 97, rec.Confidence)
	assert.Equal(t, 100.0, rec.Factors.OccupancyForecast)
	assert.True(t, rec.Factors.CompetitorAverage.Equal(decimal.NewFromInt(5130)))
	assert.Equal(t, "rec_test", rec.ID)
	assert.Equal(t, "DLX", rec.RoomTypeCode)
	assert.Equal(t, "BAR", rec.RatePlanCode)
	assert.Contains(t, rec.Reasoning, "increasing the rate by 7%")
	assert.Contains(t, rec.Reasoning, "close to the market average of 5130")
}

func TestGenerate_NoCompetitorsReturnsNothing(t *testing.T) {
	day := date(2026, time.June, 13)
	var diags []Diagnostic
	e := testEngine(date(2026, time.June, 1), &diags)

	res := e.Generate(rateContext(5000, day), nil, history(88, models.TrendStable))
	rec, ok := res.Get()

	assert.False(t, ok)
	assert.Nil(t, rec)
	assert.Equal(t, NoRelevantData, res.Outcome)
	require.Len(t, diags, 1)
	assert.Equal(t, LevelWarn, diags[0].Level)
	assert.Equal(t, "prop-1", diags[0].PropertyID)
}

func TestGenerate_IrrelevantObservationsAreIgnored(t *testing.T) {
	day := date(2026, time.June, 13)
	e := testEngine(date(2026, time.June, 1), nil)

	obs := competitors(day, 5200)
	obs[0].RoomTypeCode = "STD"
	other := competitors(day.AddDate(0, 0, 1), 5200)
	soldOut := competitors(day, 5200)
	soldOut[0].Availability = false
	free := competitors(day, 0)

	all := append(append(append(obs, other...), soldOut...), free...)
	res := e.Generate(rateContext(5000, day), all, history(70, models.TrendStable))

	assert.Equal(t, NoRelevantData, res.Outcome)
	assert.Nil(t, res.Recommendation)
}

func TestGenerate_OverpricedInWeakFall(t *testing.T) {
	day := date(2026, time.October, 14) // Wednesday
	e := testEngine(date(2026, time.October, 1), nil)

	res := e.Generate(rateContext(5000, day), competitors(day, 2900, 3000, 3100), history(40, models.TrendDown))
	rec, ok := res.Get()
	require.True(t, ok)

	// rate position 5000/3000 keeps the composite score at 0.9525
	assert.Equal(t, models.DemandMedium, rec.Factors.DemandLevel)
	assert.Equal(t, models.TrendDown, rec.Factors.MarketTrend)
	assert.Less(t, rec.SuggestedRate, int64(5000))
	assert.Equal(t, int64(3750), rec.SuggestedRate)
	assert.Contains(t, rec.Reasoning, "decreasing the rate by 25%")
	assert.Contains(t, rec.Reasoning, "significantly above the market average of 3000")
}

func TestGenerate_LeadTimePenalty(t *testing.T) {
	day := date(2026, time.August, 20)
	rates := []int64{5000, 5000, 5000, 5000, 5000}

	near := testEngine(day.AddDate(0, 0, -10), nil).
		Generate(rateContext(5000, day), competitors(day, rates...), history(80, models.TrendStable))
	far := testEngine(day.AddDate(0, 0, -60), nil).
		Generate(rateContext(5000, day), competitors(day, rates...), history(80, models.TrendStable))

	require.Equal(t, Recommended, near.Outcome)
	require.Equal(t, Recommended, far.Outcome)
	assert.Equal(t, 100, near.Recommendation.Confidence)
	assert.Equal(t, 85, far.Recommendation.Confidence)
}

func TestGenerate_MoreCompetitorsNeverLowerConfidence(t *testing.T) {
	day := date(2026, time.May, 5)
	e := testEngine(date(2026, time.May, 1), nil)
	hp := history(70, models.TrendStable)

	two := e.Generate(rateContext(5000, day), competitors(day, 5000, 5000), hp)
	five := e.Generate(rateContext(5000, day), competitors(day, 5000, 5000, 5000, 5000, 5000), hp)

	require.Equal(t, Recommended, two.Outcome)
	require.Equal(t, Recommended, five.Outcome)
	assert.GreaterOrEqual(t, five.Recommendation.Confidence, two.Recommendation.Confidence)
	assert.Equal(t, 70, two.Recommendation.Confidence)
	assert.Equal(t, 100, five.Recommendation.Confidence)
}

func TestGenerate_Deterministic(t *testing.T) {
	day := date(2026, time.July, 4)
	e := testEngine(date(2026, time.June, 20), nil)
	obs := competitors(day, 4100, 4500, 3900, 5200)
	hp := history(72, models.TrendUp)

	first := e.Generate(rateContext(4300, day), obs, hp)
	second := e.Generate(rateContext(4300, day), obs, hp)

	assert.Equal(t, first, second)
}

func TestGenerate_PanicBecomesFault(t *testing.T) {
	day := date(2026, time.July, 4)
	var diags []Diagnostic
	e := New(DefaultConfig(), Options{
		Metrics:      panickingMetrics{},
		OnDiagnostic: func(d Diagnostic) { diags = append(diags, d) },
	})

	res := e.Generate(rateContext(4300, day), competitors(day, 4000), history(72, models.TrendUp))

	assert.Equal(t, ComputationFault, res.Outcome)
	assert.Nil(t, res.Recommendation)
	assert.Error(t, res.Err)
	require.Len(t, diags, 1)
	assert.Equal(t, LevelError, diags[0].Level)
	assert.Equal(t, "DLX", diags[0].RoomTypeCode)
}

func TestGenerate_NonFiniteMetricsBecomeFault(t *testing.T) {
	day := date(2026, time.July, 4)
	e := New(DefaultConfig(), Options{Metrics: fixedMetrics{m: models.MarketMetrics{Average: math.NaN(), Count: 1}}})

	res := e.Generate(rateContext(4300, day), competitors(day, 4000), history(72, models.TrendStable))

	assert.Equal(t, ComputationFault, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNonFiniteValue)
}

func TestGenerate_RateTooSmallForWholeUnitBecomesFault(t *testing.T) {
	day := date(2026, time.July, 4)
	var diags []Diagnostic
	e := testEngine(date(2026, time.July, 1), &diags)

	rc := rateContext(0, day)
	rc.CurrentRate = decimal.RequireFromString("1.5")
	res := e.Generate(rc, competitors(day, 1, 2), history(70, models.TrendStable))

	_, ok := res.Get()
	assert.False(t, ok)
	assert.Equal(t, ComputationFault, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNoWholeRateInBand)
	require.Len(t, diags, 1)
	assert.Equal(t, LevelError, diags[0].Level)
}

func TestGenerate_InvalidContextBecomesFault(t *testing.T) {
	day := date(2026, time.July, 4)
	e := testEngine(date(2026, time.July, 1), nil)

	res := e.Generate(rateContext(0, day), competitors(day, 4000), history(72, models.TrendStable))

	assert.Equal(t, ComputationFault, res.Outcome)
	assert.ErrorIs(t, res.Err, models.ErrInvalidInput)
}

func TestGenerate_InvariantsHoldAcrossInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := date(2026, time.January, 1)
	e := testEngine(now, nil)
	trends := []models.MarketTrend{models.TrendUp, models.TrendDown, models.TrendStable}

	for i := 0; i < 2000; i++ {
		day := now.AddDate(0, 0, rng.Intn(400))
		current := int64(500 + rng.Intn(20000))
		n := 1 + rng.Intn(8)
		rates := make([]int64, n)
		for j := range rates {
			rates[j] = int64(1 + rng.Intn(30000))
		}
		hp := models.HistoricalPerformance{
			AverageOccupancy:  float64(rng.Intn(101)),
			SeasonalTrend:     trends[rng.Intn(3)],
			HasHistoricalData: rng.Intn(2) == 0,
		}

		rec, ok := e.Generate(rateContext(current, day), competitors(day, rates...), hp).Get()
		require.True(t, ok)

		c := float64(current)
		assert.GreaterOrEqual(t, float64(rec.SuggestedRate), 0.75*c)
		assert.LessOrEqual(t, float64(rec.SuggestedRate), 1.25*c)
		assert.GreaterOrEqual(t, rec.Confidence, 30)
		assert.LessOrEqual(t, rec.Confidence, 100)
		assert.True(t, rec.Factors.DemandLevel.Valid())
		assert.True(t, rec.Factors.MarketTrend.Valid())
		assert.GreaterOrEqual(t, rec.Factors.OccupancyForecast, 0.0)
		assert.LessOrEqual(t, rec.Factors.OccupancyForecast, 100.0)
	}
}

func TestResultGet(t *testing.T) {
	rec := &models.RateRecommendation{ID: "x"}

	got, ok := Result{Recommendation: rec, Outcome: Recommended}.Get()
	assert.True(t, ok)
	assert.Same(t, rec, got)

	_, ok = Result{Outcome: NoRelevantData}.Get()
	assert.False(t, ok)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "recommended", Recommended.String())
	assert.Equal(t, "no_relevant_data", NoRelevantData.String())
	assert.Equal(t, "computation_fault", ComputationFault.String())
}

func TestDefaultIDIsPrefixedUUID(t *testing.T) {
	day := date(2026, time.July, 4)
	e := New(DefaultConfig(), Options{})

	rec, ok := e.Generate(rateContext(4300, day), competitors(day, 4000), history(72, models.TrendStable)).Get()
	require.True(t, ok)
	assert.Regexp(t, `^rec_[0-9a-f-]{36}$`, rec.ID)
}

type panickingMetrics struct{}

func (panickingMetrics) MarketMetrics(string, time.Time, []float64) models.MarketMetrics {
	panic("metrics backend exploded")
}

type fixedMetrics struct{ m models.MarketMetrics }

func (f fixedMetrics) MarketMetrics(string, time.Time, []float64) models.MarketMetrics {
	return f.m
}
