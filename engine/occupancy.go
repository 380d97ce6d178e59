package engine

import (
	"time"

	"hotel-rate-engine/models"
)

// ForecastOccupancy projects occupancy (percent) for date from the
// historical average, the demand level, the season and the weekend effect.
func ForecastOccupancy(cfg Config, averageOccupancy float64, demand models.DemandLevel, date time.Time) float64 {
	o := cfg.Occupancy
	forecast := averageOccupancy

	switch demand {
	case models.DemandHigh:
		forecast += o.HighDemandBoost
	case models.DemandLow:
		forecast -= o.LowDemandCut
	}

	forecast *= SeasonalFactor(cfg, date)
	if IsWeekend(date) {
		forecast += o.WeekendBoost
	}

	return clamp(forecast, o.Min, o.Max)
}
