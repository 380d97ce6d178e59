package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

const dateLayout = "2006-01-02"

// CleanFunc turns raw rate-shopper rows into competitor observations
type CleanFunc func(raw []*models.RawCompetitorRate) []models.CompetitorObservation

// CSVSource reads a rate grid and a rate-shopper export from CSV files
type CSVSource struct {
	gridPath    string
	shopperPath string
	clean       CleanFunc
	logger      *utils.Logger
}

// NewCSVSource creates a CSVSource. clean normalises the shopper rows.
func NewCSVSource(gridPath, shopperPath string, clean CleanFunc, logger *utils.Logger) *CSVSource {
	return &CSVSource{gridPath: gridPath, shopperPath: shopperPath, clean: clean, logger: logger}
}

// LoadRateGrid reads grid rows for propertyID with a stay date in [from, to]
func (s *CSVSource) LoadRateGrid(_ context.Context, propertyID string, from, to time.Time) ([]models.GridRow, error) {
	file, err := os.Open(s.gridPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate grid: %w", err)
	}
	defer file.Close()

	rows, err := ReadRateGrid(file, s.logger)
	if err != nil {
		return nil, err
	}

	var out []models.GridRow
	for _, r := range rows {
		if r.Context.PropertyID != propertyID || !inRange(r.Context.Date, from, to) {
			continue
		}
		out = append(out, r)
	}
	s.logger.Info("Loaded %d rate cells for property %s from %s", len(out), propertyID, s.gridPath)
	return out, nil
}

// LoadCompetitorRates reads and cleans the rate-shopper export. The export
// carries no property column; every row with a stay date in [from, to] is
// returned.
func (s *CSVSource) LoadCompetitorRates(_ context.Context, _ string, from, to time.Time) ([]models.CompetitorObservation, error) {
	file, err := os.Open(s.shopperPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate shopper export: %w", err)
	}
	defer file.Close()

	raw, err := ReadRateShopper(file)
	if err != nil {
		return nil, err
	}

	var out []models.CompetitorObservation
	for _, o := range s.clean(raw) {
		if inRange(o.Date, from, to) {
			out = append(out, o)
		}
	}
	s.logger.Info("Loaded %d competitor rates from %s", len(out), s.shopperPath)
	return out, nil
}

// Close is a no-op; files are closed after each read
func (s *CSVSource) Close() error { return nil }

// ReadRateShopper parses a rate-shopper CSV export. Columns are matched by
// header name: competitor_id, competitor_name, room_type_code, rate,
// currency, stay_date, availability, shopped_at.
func ReadRateShopper(r io.Reader) ([]*models.RawCompetitorRate, error) {
	records, idx, err := readWithHeader(r, "competitor_id", "room_type_code", "rate", "stay_date")
	if err != nil {
		return nil, fmt.Errorf("failed to read rate shopper export: %w", err)
	}

	out := make([]*models.RawCompetitorRate, 0, len(records))
	for _, rec := range records {
		raw := &models.RawCompetitorRate{
			CompetitorID:   field(rec, idx, "competitor_id"),
			CompetitorName: field(rec, idx, "competitor_name"),
			RoomTypeCode:   field(rec, idx, "room_type_code"),
			RawRate:        field(rec, idx, "rate"),
			Currency:       field(rec, idx, "currency"),
			RawDate:        field(rec, idx, "stay_date"),
			RawAvailable:   field(rec, idx, "availability"),
		}
		if ts := field(rec, idx, "shopped_at"); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				raw.ShoppedAt = t
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

// ReadRateGrid parses a rate grid CSV. A blank avg_occupancy marks a cell
// without booking history. Rows violating the input contract are logged and
// skipped.
func ReadRateGrid(r io.Reader, logger *utils.Logger) ([]models.GridRow, error) {
	records, idx, err := readWithHeader(r, "property_id", "room_type_code", "stay_date", "current_rate")
	if err != nil {
		return nil, fmt.Errorf("failed to read rate grid: %w", err)
	}

	var out []models.GridRow
	for line, rec := range records {
		row, err := parseGridRow(rec, idx)
		if err != nil {
			logger.Warn("Skipping rate grid line %d: %v", line+2, err)
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func parseGridRow(rec []string, idx map[string]int) (models.GridRow, error) {
	date, err := time.Parse(dateLayout, field(rec, idx, "stay_date"))
	if err != nil {
		return models.GridRow{}, fmt.Errorf("%w: stay_date: %v", models.ErrInvalidInput, err)
	}
	rate, err := decimal.NewFromString(field(rec, idx, "current_rate"))
	if err != nil {
		return models.GridRow{}, fmt.Errorf("%w: current_rate: %v", models.ErrInvalidInput, err)
	}
	inventory := 0
	if v := field(rec, idx, "inventory"); v != "" {
		if inventory, err = strconv.Atoi(v); err != nil {
			return models.GridRow{}, fmt.Errorf("%w: inventory: %v", models.ErrInvalidInput, err)
		}
	}

	rc, err := models.NewRateContext(models.RateContext{
		PropertyID:   field(rec, idx, "property_id"),
		RoomTypeID:   field(rec, idx, "room_type_id"),
		RatePlanID:   field(rec, idx, "rate_plan_id"),
		Date:         date,
		CurrentRate:  rate,
		Inventory:    inventory,
		RoomTypeCode: field(rec, idx, "room_type_code"),
		RoomTypeName: field(rec, idx, "room_type_name"),
		RatePlanCode: field(rec, idx, "rate_plan_code"),
		RatePlanName: field(rec, idx, "rate_plan_name"),
	})
	if err != nil {
		return models.GridRow{}, err
	}

	hp := models.HistoricalPerformance{
		AverageOccupancy: placeholderOccupancy,
		SeasonalTrend:    models.TrendStable,
	}
	if v := field(rec, idx, "avg_occupancy"); v != "" {
		occ, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.GridRow{}, fmt.Errorf("%w: avg_occupancy: %v", models.ErrInvalidInput, err)
		}
		hp.AverageOccupancy = occ
		hp.HasHistoricalData = true
	}
	if v := field(rec, idx, "avg_adr"); v != "" {
		if hp.AverageADR, err = decimal.NewFromString(v); err != nil {
			return models.GridRow{}, fmt.Errorf("%w: avg_adr: %v", models.ErrInvalidInput, err)
		}
	}
	if v := field(rec, idx, "seasonal_trend"); v != "" {
		hp.SeasonalTrend = models.MarketTrend(strings.ToLower(v))
	}
	valid, err := models.NewHistoricalPerformance(hp)
	if err != nil {
		return models.GridRow{}, err
	}

	return models.GridRow{Context: *rc, Historical: *valid}, nil
}

func readWithHeader(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("missing header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return records, idx, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func inRange(d, from, to time.Time) bool {
	d = models.CalendarDate(d)
	return !d.Before(models.CalendarDate(from)) && !d.After(models.CalendarDate(to))
}
