package engine

import (
	"time"

	"hotel-rate-engine/models"
)

// ClassifyTrend returns the historical trend when it carries a direction.
// A stable history is kept only while the market is calm; a volatile market
// is resolved by the seasonal prior for date.
func ClassifyTrend(cfg Config, historical models.MarketTrend, metrics models.MarketMetrics, date time.Time) models.MarketTrend {
	if historical != models.TrendStable {
		return historical
	}

	if metrics.Volatility() <= cfg.Trend.VolatilityThreshold {
		return models.TrendStable
	}

	switch date.Month() {
	case time.June, time.July, time.August, time.September, time.December, time.January:
		return models.TrendUp
	case time.March, time.April, time.May:
		return models.TrendUp
	default:
		return models.TrendDown
	}
}
