package engine

import "hotel-rate-engine/models"

// OptimizeRate blends the current rate with the market average, applies the
// demand, trend and occupancy multipliers and clamps the result to the band
// around currentRate. The result is not rounded.
func OptimizeRate(cfg Config, currentRate float64, metrics models.MarketMetrics, demand models.DemandLevel, trend models.MarketTrend, historical models.HistoricalPerformance) float64 {
	o := cfg.Optimizer

	suggested := cfg.MarketWeight*metrics.Average + cfg.CurrentWeight*currentRate

	switch demand {
	case models.DemandHigh:
		suggested *= o.HighDemand
	case models.DemandMedium:
		suggested *= o.MediumDemand
	case models.DemandLow:
		suggested *= o.LowDemand
	}

	switch trend {
	case models.TrendUp:
		suggested *= o.TrendUp
	case models.TrendDown:
		suggested *= o.TrendDown
	case models.TrendStable:
		suggested *= o.TrendStable
	}

	switch {
	case historical.AverageOccupancy > o.StrongOccupancy:
		suggested *= o.StrongOccupancyMult
	case historical.AverageOccupancy < o.WeakOccupancy:
		suggested *= o.WeakOccupancyMult
	}

	return clamp(suggested, o.MinRatio*currentRate, o.MaxRatio*currentRate)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
