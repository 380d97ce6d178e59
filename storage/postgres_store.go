package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"

	_ "github.com/lib/pq"
)

// placeholderOccupancy is reported for cells without booking history
const placeholderOccupancy = 75

// PostgresStore reads rate grids and competitor rates from PostgreSQL and
// stores recommendations back.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection pool and pings the DB
func NewPostgresStore(ctx context.Context, connStr string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return NewPostgresStoreFromDB(db, logger), nil
}

// NewPostgresStoreFromDB wraps an existing pool
func NewPostgresStoreFromDB(db *sql.DB, logger *utils.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// CreateTables creates the grid, market and recommendation tables if missing
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS rate_grid (
		property_id    VARCHAR(64)   NOT NULL,
		room_type_id   VARCHAR(64),
		rate_plan_id   VARCHAR(64),
		room_type_code VARCHAR(32)   NOT NULL,
		room_type_name TEXT,
		rate_plan_code VARCHAR(32)   NOT NULL,
		rate_plan_name TEXT,
		stay_date      DATE          NOT NULL,
		current_rate   NUMERIC(12,2) NOT NULL,
		inventory      INTEGER       NOT NULL DEFAULT 0,
		PRIMARY KEY (property_id, room_type_code, rate_plan_code, stay_date)
	);

	CREATE TABLE IF NOT EXISTS competitor_rates (
		id              SERIAL PRIMARY KEY,
		property_id     VARCHAR(64)   NOT NULL,
		competitor_id   VARCHAR(64)   NOT NULL,
		competitor_name TEXT,
		room_type_code  VARCHAR(32)   NOT NULL,
		stay_date       DATE          NOT NULL,
		rate            NUMERIC(12,2) NOT NULL,
		currency        CHAR(3)       NOT NULL,
		available       BOOLEAN       NOT NULL DEFAULT TRUE,
		shopped_at      TIMESTAMP     NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS historical_performance (
		property_id    VARCHAR(64)   NOT NULL,
		room_type_code VARCHAR(32)   NOT NULL,
		stay_date      DATE          NOT NULL,
		avg_occupancy  NUMERIC(5,2)  NOT NULL,
		avg_adr        NUMERIC(12,2) NOT NULL,
		seasonal_trend VARCHAR(8)    NOT NULL DEFAULT 'stable',
		PRIMARY KEY (property_id, room_type_code, stay_date)
	);

	CREATE TABLE IF NOT EXISTS rate_recommendations (
		id                 VARCHAR(64)   PRIMARY KEY,
		property_id        VARCHAR(64)   NOT NULL,
		room_type_id       VARCHAR(64),
		rate_plan_id       VARCHAR(64),
		room_type_code     VARCHAR(32)   NOT NULL,
		rate_plan_code     VARCHAR(32)   NOT NULL,
		stay_date          DATE          NOT NULL,
		current_rate       NUMERIC(12,2) NOT NULL,
		suggested_rate     BIGINT        NOT NULL,
		confidence         SMALLINT      NOT NULL,
		reasoning          TEXT,
		competitor_average NUMERIC(12,2),
		market_trend       VARCHAR(8),
		demand_level       VARCHAR(8),
		occupancy_forecast NUMERIC(5,1),
		created_at         TIMESTAMP     NOT NULL DEFAULT NOW(),
		UNIQUE (property_id, room_type_code, rate_plan_code, stay_date)
	);

	CREATE INDEX IF NOT EXISTS idx_competitor_rates_lookup ON competitor_rates (property_id, stay_date, room_type_code);
	CREATE INDEX IF NOT EXISTS idx_rate_recommendations_date ON rate_recommendations (property_id, stay_date);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	s.logger.Info("Tables are ready")
	return nil
}

// LoadRateGrid returns the property's rate cells between from and to
// (inclusive) joined with their booking history. Cells without history get
// a placeholder aggregate with HasHistoricalData unset. Rows violating the
// input contract are skipped.
func (s *PostgresStore) LoadRateGrid(ctx context.Context, propertyID string, from, to time.Time) ([]models.GridRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.property_id, g.room_type_id, g.rate_plan_id, g.room_type_code, g.room_type_name,
		       g.rate_plan_code, g.rate_plan_name, g.stay_date, g.current_rate, g.inventory,
		       h.avg_occupancy, h.avg_adr, h.seasonal_trend
		FROM rate_grid g
		LEFT JOIN historical_performance h
		  ON h.property_id = g.property_id
		 AND h.room_type_code = g.room_type_code
		 AND h.stay_date = g.stay_date
		WHERE g.property_id = $1 AND g.stay_date BETWEEN $2 AND $3
		ORDER BY g.stay_date, g.room_type_code, g.rate_plan_code
	`, propertyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate grid: %w", err)
	}
	defer rows.Close()

	var grid []models.GridRow
	for rows.Next() {
		var (
			rc           models.RateContext
			roomTypeID   sql.NullString
			ratePlanID   sql.NullString
			roomTypeName sql.NullString
			ratePlanName sql.NullString
			occupancy    sql.NullFloat64
			adr          decimal.NullDecimal
			trend        sql.NullString
		)
		if err := rows.Scan(
			&rc.PropertyID, &roomTypeID, &ratePlanID, &rc.RoomTypeCode, &roomTypeName,
			&rc.RatePlanCode, &ratePlanName, &rc.Date, &rc.CurrentRate, &rc.Inventory,
			&occupancy, &adr, &trend,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rate grid row: %w", err)
		}
		rc.RoomTypeID = roomTypeID.String
		rc.RatePlanID = ratePlanID.String
		rc.RoomTypeName = roomTypeName.String
		rc.RatePlanName = ratePlanName.String

		ctxRow, err := models.NewRateContext(rc)
		if err != nil {
			s.logger.Warn("Skipping grid row %s/%s/%s: %v", rc.RoomTypeCode, rc.RatePlanCode, rc.Date.Format("2006-01-02"), err)
			continue
		}

		hp := models.HistoricalPerformance{
			AverageOccupancy: placeholderOccupancy,
			SeasonalTrend:    models.TrendStable,
		}
		if occupancy.Valid {
			hp.AverageOccupancy = occupancy.Float64
			hp.HasHistoricalData = true
			if adr.Valid {
				hp.AverageADR = adr.Decimal
			}
			if trend.Valid {
				hp.SeasonalTrend = models.MarketTrend(trend.String)
			}
		}
		if err := hp.Validate(); err != nil {
			s.logger.Warn("Skipping grid row %s/%s/%s: %v", rc.RoomTypeCode, rc.RatePlanCode, rc.Date.Format("2006-01-02"), err)
			continue
		}

		grid = append(grid, models.GridRow{Context: *ctxRow, Historical: hp})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rate grid: %w", err)
	}

	s.logger.Info("Loaded %d rate cells for property %s", len(grid), propertyID)
	return grid, nil
}

// LoadCompetitorRates returns every competitor rate shopped for the property
// between from and to (inclusive). Relevance filtering is left to the engine.
func (s *PostgresStore) LoadCompetitorRates(ctx context.Context, propertyID string, from, to time.Time) ([]models.CompetitorObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT competitor_id, competitor_name, room_type_code, rate, currency, stay_date, available
		FROM competitor_rates
		WHERE property_id = $1 AND stay_date BETWEEN $2 AND $3
	`, propertyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitor rates: %w", err)
	}
	defer rows.Close()

	var observations []models.CompetitorObservation
	for rows.Next() {
		var (
			o    models.CompetitorObservation
			name sql.NullString
		)
		if err := rows.Scan(&o.CompetitorID, &name, &o.RoomTypeCode, &o.Rate, &o.Currency, &o.Date, &o.Availability); err != nil {
			return nil, fmt.Errorf("failed to scan competitor rate: %w", err)
		}
		o.CompetitorName = name.String
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read competitor rates: %w", err)
	}

	s.logger.Info("Loaded %d competitor rates for property %s", len(observations), propertyID)
	return observations, nil
}

// WriteRecommendations upserts recommendations in a single transaction,
// replacing any earlier suggestion for the same cell.
func (s *PostgresStore) WriteRecommendations(ctx context.Context, recs []*models.RateRecommendation) (err error) {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rate_recommendations (
			id, property_id, room_type_id, rate_plan_id, room_type_code, rate_plan_code, stay_date,
			current_rate, suggested_rate, confidence, reasoning,
			competitor_average, market_trend, demand_level, occupancy_forecast, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (property_id, room_type_code, rate_plan_code, stay_date) DO UPDATE SET
			id                 = EXCLUDED.id,
			current_rate       = EXCLUDED.current_rate,
			suggested_rate     = EXCLUDED.suggested_rate,
			confidence         = EXCLUDED.confidence,
			reasoning          = EXCLUDED.reasoning,
			competitor_average = EXCLUDED.competitor_average,
			market_trend       = EXCLUDED.market_trend,
			demand_level       = EXCLUDED.demand_level,
			occupancy_forecast = EXCLUDED.occupancy_forecast,
			created_at         = EXCLUDED.created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err = stmt.ExecContext(ctx,
			r.ID,
			r.PropertyID,
			r.RoomTypeID,
			r.RatePlanID,
			r.RoomTypeCode,
			r.RatePlanCode,
			r.Date,
			r.CurrentRate,
			r.SuggestedRate,
			r.Confidence,
			r.Reasoning,
			r.Factors.CompetitorAverage,
			string(r.Factors.MarketTrend),
			string(r.Factors.DemandLevel),
			r.Factors.OccupancyForecast,
			r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert recommendation %s: %w", r.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Stored %d recommendations in PostgreSQL", len(recs))
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
