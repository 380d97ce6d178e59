package engine

import (
	"math"
	"time"

	"hotel-rate-engine/models"
)

// DaysAhead is the number of whole days, rounded up, from now until date
func DaysAhead(date, now time.Time) int {
	return int(math.Ceil(date.Sub(now).Hours() / 24))
}

// ScoreConfidence starts from a perfect score and subtracts penalties for a
// thin competitor set, market volatility, missing history and a long lead
// time. The score is clamped but not rounded.
func ScoreConfidence(cfg Config, competitorCount int, volatility float64, historical models.HistoricalPerformance, date, now time.Time) float64 {
	c := cfg.Confidence
	score := c.Start

	switch {
	case competitorCount < c.FewCompetitors:
		score -= c.FewPenalty
	case competitorCount < c.SomeCompetitors:
		score -= c.SomePenalty
	}

	score -= math.Min(c.VolatilityCap, volatility*100)

	if missingHistory(cfg, historical) {
		score -= c.NoHistoryPenalty
	}

	if days := float64(DaysAhead(date, now)); days > c.HorizonDays {
		score -= math.Min(c.HorizonPenaltyCap, (days-c.HorizonDays)*c.HorizonPenaltyRate)
	}

	return clamp(score, c.Min, c.Max)
}

func missingHistory(cfg Config, hp models.HistoricalPerformance) bool {
	if !hp.HasHistoricalData {
		return true
	}
	return cfg.LegacyOccupancySentinel && hp.AverageOccupancy == cfg.SentinelOccupancy
}
