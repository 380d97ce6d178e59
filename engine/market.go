package engine

import (
	"math"

	"hotel-rate-engine/models"
)

// CalculateMarketMetrics reduces competitor rates to mean, min, max and
// population standard deviation. rates must not be empty.
func CalculateMarketMetrics(rates []float64) models.MarketMetrics {
	m := models.MarketMetrics{
		Min:   rates[0],
		Max:   rates[0],
		Count: len(rates),
	}

	var sum float64
	for _, r := range rates {
		sum += r
		if r < m.Min {
			m.Min = r
		}
		if r > m.Max {
			m.Max = r
		}
	}
	m.Average = sum / float64(len(rates))

	var sq float64
	for _, r := range rates {
		d := r - m.Average
		sq += d * d
	}
	m.StandardDeviation = math.Sqrt(sq / float64(len(rates)))

	return m
}

// RelevantRates returns the rates of observations for the context's room type
// and stay date that are available and priced above zero.
func RelevantRates(rc models.RateContext, observations []models.CompetitorObservation) []float64 {
	var rates []float64
	for _, o := range observations {
		if o.RoomTypeCode != rc.RoomTypeCode || !models.SameDate(o.Date, rc.Date) {
			continue
		}
		if !o.Availability || !o.Rate.IsPositive() {
			continue
		}
		rates = append(rates, o.Rate.InexactFloat64())
	}
	return rates
}
