package services

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-rate-engine/engine"
	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

func quietLogger() *utils.Logger {
	return utils.NewLoggerWithWriter(&bytes.Buffer{}, "error")
}

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func gridRow(room, plan string, date time.Time, current int64, occupancy float64, trend models.MarketTrend) models.GridRow {
	return models.GridRow{
		Context: models.RateContext{
			PropertyID:   "prop-1",
			Date:         date,
			CurrentRate:  decimal.NewFromInt(current),
			RoomTypeCode: room,
			RatePlanCode: plan,
		},
		Historical: models.HistoricalPerformance{
			AverageOccupancy:  occupancy,
			AverageADR:        decimal.NewFromInt(4000),
			SeasonalTrend:     trend,
			HasHistoricalData: true,
		},
	}
}

func observations(room string, date time.Time, rates ...int64) []models.CompetitorObservation {
	out := make([]models.CompetitorObservation, 0, len(rates))
	for i, r := range rates {
		out = append(out, models.CompetitorObservation{
			CompetitorID: fmt.Sprintf("c%d", i),
			RoomTypeCode: room,
			Rate:         decimal.NewFromInt(r),
			Currency:     "USD",
			Date:         date,
			Availability: true,
		})
	}
	return out
}

func sampleCells() []models.RateCell {
	summer := day(time.June, 13)
	fall := day(time.October, 14)
	grid := []models.GridRow{
		gridRow("DLX", "BAR", summer, 5000, 88, models.TrendStable),
		gridRow("DLX", "NRF", summer, 5000, 88, models.TrendStable),
		gridRow("STD", "BAR", fall, 5000, 40, models.TrendDown),
		gridRow("STE", "BAR", summer, 9000, 60, models.TrendStable),
	}
	var obs []models.CompetitorObservation
	obs = append(obs, observations("DLX", summer, 5200, 5300, 4800, 5100, 5250)...)
	obs = append(obs, observations("STD", fall, 2900, 3000, 3100)...)
	return BuildCells(grid, obs)
}

func testRunner(opts BatchOptions) *BatchRunner {
	var seq atomic.Int64
	opts.Now = func() time.Time { return day(time.June, 1) }
	opts.NewID = func() string { return fmt.Sprintf("rec_%d", seq.Add(1)) }
	return NewBatchRunner(engine.DefaultConfig(), opts, quietLogger())
}

func TestRateCleaner_Clean(t *testing.T) {
	shopped := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	raw := []*models.RawCompetitorRate{
		{CompetitorID: "c1", CompetitorName: " Riverside ", RoomTypeCode: "DLX", RawRate: "$5,200.00", RawDate: "2026-06-13", RawAvailable: "yes", ShoppedAt: shopped},
		{CompetitorID: "c2", RoomTypeCode: "DLX", RawRate: "€10,400 for 2 nights", RawDate: "06/13/2026", RawAvailable: "sold out"},
		{CompetitorID: "c3", RoomTypeCode: "DLX", RawRate: "5100", Currency: "thb", RawDate: "13 Jun 2026"},
		{CompetitorID: "c4", RoomTypeCode: "DLX", RawRate: "call for price", RawDate: "2026-06-13"},
		{CompetitorID: "c5", RoomTypeCode: "DLX", RawRate: "5000", RawDate: "soon"},
		{CompetitorID: "", RoomTypeCode: "DLX", RawRate: "5000", RawDate: "2026-06-13"},
		{CompetitorID: "c1", RoomTypeCode: "DLX", RawRate: "$5,400", RawDate: "2026-06-13", ShoppedAt: shopped.Add(time.Hour)},
		{CompetitorID: "c1", RoomTypeCode: "DLX", RawRate: "$4,000", RawDate: "2026-06-13", ShoppedAt: shopped.Add(-time.Hour)},
	}

	cleaned := NewRateCleaner("usd", quietLogger()).Clean(raw)
	require.Len(t, cleaned, 3)

	c1 := cleaned[0]
	assert.Equal(t, "c1", c1.CompetitorID)
	assert.True(t, c1.Rate.Equal(decimal.NewFromInt(5400)), "latest shop wins, got %s", c1.Rate)
	assert.Equal(t, "USD", c1.Currency)
	assert.Equal(t, day(time.June, 13), c1.Date)
	assert.True(t, c1.Availability)

	c2 := cleaned[1]
	assert.True(t, c2.Rate.Equal(decimal.NewFromInt(5200)))
	assert.Equal(t, "EUR", c2.Currency)
	assert.False(t, c2.Availability)
	assert.Equal(t, day(time.June, 13), c2.Date)

	c3 := cleaned[2]
	assert.Equal(t, "THB", c3.Currency)
	assert.True(t, c3.Availability)
	assert.Equal(t, day(time.June, 13), c3.Date)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$5,200.00", "5200"},
		{"USD 180.50", "180.5"},
		{"$300 for 3 nights", "100"},
		{"", "0"},
		{"n/a", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			got := parseRate(tt.raw)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestMarketMetricsCache(t *testing.T) {
	cache, err := NewMarketMetricsCache(16)
	require.NoError(t, err)

	first := cache.MarketMetrics("DLX", day(time.June, 13), []float64{100, 200})
	second := cache.MarketMetrics("DLX", day(time.June, 13), []float64{100, 200})
	other := cache.MarketMetrics("DLX", day(time.June, 14), []float64{300})

	assert.Equal(t, 150.0, first.Average)
	assert.Equal(t, first, second)
	assert.Equal(t, 300.0, other.Average)
	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestMarketMetricsCache_InvalidSize(t *testing.T) {
	_, err := NewMarketMetricsCache(0)
	assert.Error(t, err)
}

func TestBuildCells(t *testing.T) {
	cells := sampleCells()
	require.Len(t, cells, 4)
	assert.Len(t, cells[0].Competitors, 5)
	assert.Len(t, cells[1].Competitors, 5)
	assert.Len(t, cells[2].Competitors, 3)
	assert.Empty(t, cells[3].Competitors)
}

func TestBatchRunner_Run(t *testing.T) {
	r := testRunner(BatchOptions{MaxConcurrency: 2, Timeout: time.Minute})
	cells := sampleCells()
	broken := cells[0]
	broken.Context.CurrentRate = decimal.Zero
	cells = append(cells, broken)

	report, err := r.Run(context.Background(), cells)
	require.NoError(t, err)

	assert.Equal(t, "prop-1", report.PropertyID)
	assert.Equal(t, 5, report.TotalCells)
	assert.Equal(t, 3, report.Recommended)
	assert.Equal(t, 1, report.NoData)
	assert.Equal(t, 1, report.Faults)
	assert.Zero(t, report.Skipped)
	assert.Equal(t, 3, report.ByDemandLevel[models.DemandMedium])
	assert.Equal(t, 1, report.ByMarketTrend[models.TrendDown])

	require.NotNil(t, report.LargestIncrease)
	assert.Equal(t, int64(5335), report.LargestIncrease.SuggestedRate)
	require.NotNil(t, report.LargestDecrease)
	assert.Equal(t, int64(3750), report.LargestDecrease.SuggestedRate)
	assert.Equal(t, "STD", report.LargestDecrease.RoomTypeCode)

	require.Len(t, report.Recommendations, 3)
	assert.Equal(t, "BAR", report.Recommendations[0].RatePlanCode)
	assert.Equal(t, "NRF", report.Recommendations[1].RatePlanCode)
	assert.Equal(t, "STD", report.Recommendations[2].RoomTypeCode)
	assert.InDelta(t, (6.7+6.7-25)/3, report.AverageChangePct, 0.01)
}

func TestBatchRunner_CancelledContextSkipsCells(t *testing.T) {
	r := testRunner(BatchOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx, sampleCells())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 4, report.TotalCells)
	assert.Equal(t, 4, report.Skipped)
	assert.Zero(t, report.Recommended)
}

func TestBatchRunner_EmptyGrid(t *testing.T) {
	report, err := testRunner(BatchOptions{}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.TotalCells)
	assert.Empty(t, report.PropertyID)
	assert.Nil(t, report.LargestIncrease)
}

func TestWriteBatchReport(t *testing.T) {
	report, err := testRunner(BatchOptions{}).Run(context.Background(), sampleCells())
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteBatchReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "RATE RECOMMENDATION SUMMARY")
	assert.Contains(t, out, "Property                : prop-1")
	assert.Contains(t, out, "Recommendations         : 3")
	assert.Contains(t, out, "LARGEST INCREASE")
	assert.Contains(t, out, "5000.00 -> 5335")
	assert.Contains(t, out, "LARGEST DECREASE")
	assert.NotContains(t, out, "Skipped")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
