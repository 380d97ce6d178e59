package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

const recommendationSheet = "Recommendations"

// XLSXWriter exports recommendations to an Excel workbook for revenue managers
type XLSXWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewXLSXWriter creates a new XLSXWriter
func NewXLSXWriter(filePath string, logger *utils.Logger) *XLSXWriter {
	return &XLSXWriter{filePath: filePath, logger: logger}
}

// WriteRecommendations writes recs to a single-sheet workbook
func (w *XLSXWriter) WriteRecommendations(_ context.Context, recs []*models.RateRecommendation) error {
	if err := os.MkdirAll(filepath.Dir(w.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recommendationSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(recommendationHeader))
	for i, h := range recommendationHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(recommendationSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(recommendationHeader))
	if err := f.SetCellStyle(recommendationSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.PropertyID,
			r.RoomTypeCode,
			r.RatePlanCode,
			r.Date.Format(dateLayout),
			r.CurrentRate.InexactFloat64(),
			r.SuggestedRate,
			r.ChangePercent(),
			r.Confidence,
			r.Factors.CompetitorAverage.InexactFloat64(),
			string(r.Factors.MarketTrend),
			string(r.Factors.DemandLevel),
			r.Factors.OccupancyForecast,
			r.Reasoning,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(recommendationSheet, cell, &row); err != nil {
			w.logger.Error("Failed to write XLSX row for '%s': %v", r.ID, err)
		}
	}

	_ = f.SetColWidth(recommendationSheet, "A", "A", 42)
	_ = f.SetColWidth(recommendationSheet, "N", "N", 90)

	if err := f.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Recommendations written to: %s (%d rows)", w.filePath, len(recs))
	return nil
}
