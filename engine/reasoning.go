package engine

import (
	"fmt"
	"math"
	"strings"

	"hotel-rate-engine/models"
)

// GenerateReasoning explains a recommendation in four sentences: the size of
// the change, the position against the market, the demand level and the trend.
func GenerateReasoning(cfg Config, currentRate, suggestedRate float64, metrics models.MarketMetrics, demand models.DemandLevel, trend models.MarketTrend) string {
	var parts []string

	change := (suggestedRate - currentRate) / currentRate * 100
	switch {
	case math.Abs(change) < cfg.Reasoning.MaterialChangePct:
		parts = append(parts, "Current rate is well positioned; no material change recommended.")
	case change > 0:
		parts = append(parts, fmt.Sprintf("Recommend increasing the rate by %.0f%%.", math.Abs(change)))
	default:
		parts = append(parts, fmt.Sprintf("Recommend decreasing the rate by %.0f%%.", math.Abs(change)))
	}

	position := (currentRate - metrics.Average) / metrics.Average * 100
	switch {
	case position > cfg.Reasoning.MarketBandPct:
		parts = append(parts, fmt.Sprintf("Current rate is significantly above the market average of %.0f.", metrics.Average))
	case position < -cfg.Reasoning.MarketBandPct:
		parts = append(parts, fmt.Sprintf("Current rate is significantly below the market average of %.0f.", metrics.Average))
	default:
		parts = append(parts, fmt.Sprintf("Current rate is close to the market average of %.0f.", metrics.Average))
	}

	switch demand {
	case models.DemandHigh:
		parts = append(parts, "High demand supports premium pricing.")
	case models.DemandMedium:
		parts = append(parts, "Moderate demand supports pricing near market levels.")
	case models.DemandLow:
		parts = append(parts, "Low demand calls for competitive pricing.")
	}

	switch trend {
	case models.TrendUp:
		parts = append(parts, "Market rates are trending upward.")
	case models.TrendDown:
		parts = append(parts, "Market rates are trending downward.")
	case models.TrendStable:
		parts = append(parts, "Market rates are stable.")
	}

	return strings.Join(parts, " ")
}
