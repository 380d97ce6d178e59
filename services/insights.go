package services

import (
	"sort"
	"time"

	"hotel-rate-engine/engine"
	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

// InsightService aggregates the results of a batch into a report
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Summarize builds a BatchReport from the results of the evaluated cells.
// skipped is the number of cells that were never evaluated.
func (s *InsightService) Summarize(propertyID string, startedAt time.Time, duration time.Duration, results []engine.Result, skipped int) *models.BatchReport {
	report := &models.BatchReport{
		PropertyID:    propertyID,
		StartedAt:     startedAt,
		Duration:      duration,
		TotalCells:    len(results) + skipped,
		Skipped:       skipped,
		ByDemandLevel: make(map[models.DemandLevel]int),
		ByMarketTrend: make(map[models.MarketTrend]int),
	}

	var totalChange, totalConfidence float64
	for _, res := range results {
		switch res.Outcome {
		case engine.NoRelevantData:
			report.NoData++
			continue
		case engine.ComputationFault:
			report.Faults++
			continue
		}

		rec, ok := res.Get()
		if !ok {
			report.Faults++
			continue
		}
		report.Recommended++
		report.Recommendations = append(report.Recommendations, rec)

		change := rec.ChangePercent()
		totalChange += change
		totalConfidence += float64(rec.Confidence)
		report.ByDemandLevel[rec.Factors.DemandLevel]++
		report.ByMarketTrend[rec.Factors.MarketTrend]++

		if change > 0 && (report.LargestIncrease == nil || change > report.LargestIncrease.ChangePercent()) {
			report.LargestIncrease = rec
		}
		if change < 0 && (report.LargestDecrease == nil || change < report.LargestDecrease.ChangePercent()) {
			report.LargestDecrease = rec
		}
	}

	if report.Recommended > 0 {
		report.AverageChangePct = totalChange / float64(report.Recommended)
		report.AverageConfidence = totalConfidence / float64(report.Recommended)
	} else {
		s.logger.Warn("No recommendations produced for property %s", propertyID)
	}

	sort.Slice(report.Recommendations, func(i, j int) bool {
		a, b := report.Recommendations[i], report.Recommendations[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.RoomTypeCode != b.RoomTypeCode {
			return a.RoomTypeCode < b.RoomTypeCode
		}
		return a.RatePlanCode < b.RatePlanCode
	})

	return report
}
