package models

import "time"

// BatchReport holds the aggregated outcome of a rate-grid run
type BatchReport struct {
	PropertyID        string
	StartedAt         time.Time
	Duration          time.Duration
	TotalCells        int
	Recommended       int
	NoData            int
	Faults            int
	Skipped           int
	AverageChangePct  float64
	AverageConfidence float64
	LargestIncrease   *RateRecommendation
	LargestDecrease   *RateRecommendation
	ByDemandLevel     map[DemandLevel]int
	ByMarketTrend     map[MarketTrend]int
	Recommendations   []*RateRecommendation
}
