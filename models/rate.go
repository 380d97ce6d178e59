package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandLevel is the engine's classification of booking pressure for a room/date
type DemandLevel string

const (
	DemandLow    DemandLevel = "low"
	DemandMedium DemandLevel = "medium"
	DemandHigh   DemandLevel = "high"
)

// Valid reports whether d is one of the known demand levels
func (d DemandLevel) Valid() bool {
	switch d {
	case DemandLow, DemandMedium, DemandHigh:
		return true
	}
	return false
}

// MarketTrend is the directional movement of competitor pricing
type MarketTrend string

const (
	TrendUp     MarketTrend = "up"
	TrendDown   MarketTrend = "down"
	TrendStable MarketTrend = "stable"
)

// Valid reports whether t is one of the known trends
func (t MarketTrend) Valid() bool {
	switch t {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

// RateContext identifies one rate cell (property, room type, rate plan, stay date)
// and carries its current selling rate.
type RateContext struct {
	PropertyID   string          `json:"propertyId" validate:"required"`
	RoomTypeID   string          `json:"roomTypeId"`
	RatePlanID   string          `json:"ratePlanId"`
	Date         time.Time       `json:"date"`
	CurrentRate  decimal.Decimal `json:"currentRate" validate:"gt=0"`
	Inventory    int             `json:"inventory" validate:"gte=0"`
	RoomTypeCode string          `json:"roomTypeCode" validate:"required"`
	RoomTypeName string          `json:"roomTypeName"`
	RatePlanCode string          `json:"ratePlanCode"`
	RatePlanName string          `json:"ratePlanName"`
}

// RawCompetitorRate is an unprocessed row from a rate-shopper export
type RawCompetitorRate struct {
	CompetitorID   string
	CompetitorName string
	RoomTypeCode   string
	RawRate        string // e.g. "$5,200.00"
	Currency       string
	RawDate        string // e.g. "2026-06-13"
	RawAvailable   string // e.g. "yes", "sold out"
	ShoppedAt      time.Time
}

// CompetitorObservation is one competitor's rate for a room category and date
type CompetitorObservation struct {
	CompetitorID   string          `json:"competitorId"`
	CompetitorName string          `json:"competitorName"`
	RoomTypeCode   string          `json:"roomTypeCode"`
	Rate           decimal.Decimal `json:"rate"`
	Currency       string          `json:"currency"`
	Date           time.Time       `json:"date"`
	Availability   bool            `json:"availability"`
}

// HistoricalPerformance is the aggregated booking history for a room/date
type HistoricalPerformance struct {
	AverageOccupancy float64         `json:"averageOccupancy" validate:"gte=0,lte=100"`
	AverageADR       decimal.Decimal `json:"averageAdr" validate:"gte=0"`
	SeasonalTrend    MarketTrend     `json:"seasonalTrend" validate:"oneof=up down stable"`

	// HasHistoricalData is false when the aggregate is a placeholder rather
	// than real booking history.
	HasHistoricalData bool `json:"hasHistoricalData"`
}

// MarketMetrics summarises the relevant competitor rates of one invocation
type MarketMetrics struct {
	Average           float64
	Min               float64
	Max               float64
	StandardDeviation float64
	Count             int
}

// Volatility is the coefficient of variation of the competitor rates
func (m MarketMetrics) Volatility() float64 {
	if m.Average == 0 {
		return 0
	}
	return m.StandardDeviation / m.Average
}

// Factors are the intermediate values a recommendation was derived from
type Factors struct {
	CompetitorAverage decimal.Decimal `json:"competitorAverage"`
	MarketTrend       MarketTrend     `json:"marketTrend"`
	DemandLevel       DemandLevel     `json:"demandLevel"`
	OccupancyForecast float64         `json:"occupancyForecast"`
}

// RateRecommendation is the transient output for one rate cell
type RateRecommendation struct {
	ID            string          `json:"id"`
	PropertyID    string          `json:"propertyId"`
	RoomTypeID    string          `json:"roomTypeId"`
	RatePlanID    string          `json:"ratePlanId"`
	Date          time.Time       `json:"date"`
	RoomTypeCode  string          `json:"roomTypeCode"`
	RoomTypeName  string          `json:"roomTypeName"`
	RatePlanCode  string          `json:"ratePlanCode"`
	RatePlanName  string          `json:"ratePlanName"`
	CurrentRate   decimal.Decimal `json:"currentRate"`
	SuggestedRate int64           `json:"suggestedRate"`
	Confidence    int             `json:"confidence"`
	Reasoning     string          `json:"reasoning"`
	Factors       Factors         `json:"factors"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ChangePercent is the relative move from current to suggested rate
func (r *RateRecommendation) ChangePercent() float64 {
	current := r.CurrentRate.InexactFloat64()
	if current == 0 {
		return 0
	}
	return (float64(r.SuggestedRate) - current) / current * 100
}

// RateCell bundles everything the engine needs for one cell of a rate grid
type RateCell struct {
	Context     RateContext
	Competitors []CompetitorObservation
	Historical  HistoricalPerformance
}

// GridRow is one cell of a property's rate grid before competitor data is attached
type GridRow struct {
	Context    RateContext
	Historical HistoricalPerformance
}
