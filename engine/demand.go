package engine

import (
	"time"

	"hotel-rate-engine/models"
)

// SeasonalFactor returns the seasonal demand multiplier for date
func SeasonalFactor(cfg Config, date time.Time) float64 {
	switch date.Month() {
	case time.June, time.July, time.August, time.September:
		return cfg.Seasonal.Summer
	case time.December, time.January:
		return cfg.Seasonal.Holiday
	case time.March, time.April, time.May:
		return cfg.Seasonal.Spring
	default:
		return cfg.Seasonal.Fall
	}
}

// IsWeekend reports whether date is a Saturday or Sunday
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DemandScore is the weighted composite of rate position, occupancy,
// weekend and season.
func DemandScore(cfg Config, currentRate, marketAverage, averageOccupancy float64, date time.Time) float64 {
	d := cfg.Demand

	ratePosition := currentRate / marketAverage
	occupancyFactor := averageOccupancy / 100
	weekendFactor := 1.0
	if IsWeekend(date) {
		weekendFactor = d.WeekendFactor
	}
	seasonalFactor := SeasonalFactor(cfg, date)

	return d.RatePositionWeight*ratePosition +
		d.OccupancyWeight*occupancyFactor +
		d.WeekendWeight*weekendFactor +
		d.SeasonalWeight*seasonalFactor
}

// ClassifyDemand maps the demand score onto low/medium/high
func ClassifyDemand(cfg Config, currentRate, marketAverage, averageOccupancy float64, date time.Time) models.DemandLevel {
	score := DemandScore(cfg, currentRate, marketAverage, averageOccupancy, date)
	switch {
	case score >= cfg.Demand.HighThreshold:
		return models.DemandHigh
	case score >= cfg.Demand.MediumThreshold:
		return models.DemandMedium
	default:
		return models.DemandLow
	}
}
