package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

var recommendationHeader = []string{
	"id", "property_id", "room_type_code", "rate_plan_code", "stay_date",
	"current_rate", "suggested_rate", "change_pct", "confidence",
	"competitor_average", "market_trend", "demand_level", "occupancy_forecast",
	"reasoning", "created_at",
}

// CSVWriter exports recommendations to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// WriteRecommendations writes recs to the CSV file, replacing its contents
func (w *CSVWriter) WriteRecommendations(_ context.Context, recs []*models.RateRecommendation) error {
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(recommendationHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range recs {
		if err := writer.Write(recommendationRow(r)); err != nil {
			w.logger.Error("Failed to write CSV row for '%s': %v", r.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}

	w.logger.Info("Recommendations written to: %s (%d rows)", w.filePath, len(recs))
	return nil
}

func recommendationRow(r *models.RateRecommendation) []string {
	return []string{
		r.ID,
		r.PropertyID,
		r.RoomTypeCode,
		r.RatePlanCode,
		r.Date.Format("2006-01-02"),
		r.CurrentRate.StringFixed(2),
		strconv.FormatInt(r.SuggestedRate, 10),
		strconv.FormatFloat(r.ChangePercent(), 'f', 1, 64),
		strconv.Itoa(r.Confidence),
		r.Factors.CompetitorAverage.StringFixed(2),
		string(r.Factors.MarketTrend),
		string(r.Factors.DemandLevel),
		strconv.FormatFloat(r.Factors.OccupancyForecast, 'f', 1, 64),
		r.Reasoning,
		r.CreatedAt.Format(time.RFC3339),
	}
}
