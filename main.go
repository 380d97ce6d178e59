package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-rate-engine/api"
	"hotel-rate-engine/config"
	"hotel-rate-engine/engine"
	"hotel-rate-engine/services"
	"hotel-rate-engine/storage"
	"hotel-rate-engine/utils"
)

func main() {
	mode := flag.String("mode", "batch", "batch | serve")
	source := flag.String("source", "csv", "csv | postgres")
	propertyID := flag.String("property", "", "property to price (batch mode)")
	fromFlag := flag.String("from", "", "first stay date, YYYY-MM-DD (default today)")
	toFlag := flag.String("to", "", "last stay date, YYYY-MM-DD (default from + 90 days)")
	initDB := flag.Bool("init-db", false, "create PostgreSQL tables before running")
	flag.Parse()

	// ================== Bootstrap ====================
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)

	engineCfg := engine.DefaultConfig()
	engineCfg.LegacyOccupancySentinel = cfg.LegacyOccupancySentinel

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Hotel Rate Recommendation Engine (%s mode)", *mode)

	var err error
	switch *mode {
	case "batch":
		err = runBatch(ctx, cfg, engineCfg, logger, *source, *propertyID, *fromFlag, *toFlag, *initDB)
	case "serve":
		err = serve(ctx, cfg, engineCfg, logger)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, cfg *config.Config, engineCfg engine.Config, logger *utils.Logger, source, propertyID, fromFlag, toFlag string, initDB bool) error {
	if propertyID == "" {
		return errors.New("-property is required in batch mode")
	}
	from, to, err := stayRange(fromFlag, toFlag)
	if err != nil {
		return err
	}
	logger.Info("Property %s | stay dates %s to %s | workers: %d",
		propertyID, from.Format("2006-01-02"), to.Format("2006-01-02"), cfg.MaxConcurrency)

	// =================== Data source ========================================
	var (
		src   storage.MarketDataSource
		sinks []storage.RecommendationSink
	)
	switch source {
	case "postgres":
		store, err := connectPostgres(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if initDB {
			if err := store.CreateTables(ctx); err != nil {
				_ = store.Close()
				return err
			}
		}
		src = store
		sinks = append(sinks, store)
	case "csv":
		cleaner := services.NewRateCleaner(cfg.DefaultCurrency, logger)
		src = storage.NewCSVSource(cfg.RateGridCSV, cfg.RateShopperCSV, cleaner.Clean, logger)
	default:
		return fmt.Errorf("unknown source %q", source)
	}
	defer src.Close()

	sinks = append(sinks,
		storage.NewCSVWriter(cfg.CSVFilePath, logger),
		storage.NewXLSXWriter(cfg.XLSXFilePath, logger),
	)

	grid, err := src.LoadRateGrid(ctx, propertyID, from, to)
	if err != nil {
		return fmt.Errorf("failed to load rate grid: %w", err)
	}
	if len(grid) == 0 {
		logger.Warn("No rate cells for property %s in range", propertyID)
		return nil
	}
	observations, err := src.LoadCompetitorRates(ctx, propertyID, from, to)
	if err != nil {
		return fmt.Errorf("failed to load competitor rates: %w", err)
	}

	// =========== Recommendation batch ======================
	runner := services.NewBatchRunner(engineCfg, services.BatchOptions{
		MaxConcurrency:   cfg.MaxConcurrency,
		Timeout:          cfg.BatchTimeout,
		MetricsCacheSize: cfg.MetricsCacheSize,
		ShowProgress:     true,
	}, logger)
	report, err := runner.Run(ctx, services.BuildCells(grid, observations))
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	// ========= Store results ============
	for _, sink := range sinks {
		if err := sink.WriteRecommendations(ctx, report.Recommendations); err != nil {
			// Non-fatal: the other sinks still get the results
			logger.Error("Failed to store recommendations: %v", err)
		}
	}

	services.PrintBatchReport(report)
	fmt.Println(" Done! Recommendations →", cfg.CSVFilePath, "and", cfg.XLSXFilePath)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, engineCfg engine.Config, logger *utils.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	eng := engine.New(engineCfg, engine.Options{OnDiagnostic: services.DiagnosticLogger(logger)})
	limiter := utils.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(eng, limiter, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// connectPostgres retries the initial connection so the engine can start
// alongside its database
func connectPostgres(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*storage.PostgresStore, error) {
	var store *storage.PostgresStore
	err := utils.RetryWithBackoff(ctx, cfg.MaxRetries, func() error {
		s, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		store = s
		return nil
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}
	return store, nil
}

func stayRange(fromFlag, toFlag string) (time.Time, time.Time, error) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	if fromFlag != "" {
		t, err := time.Parse("2006-01-02", fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
		}
		from = t
	}
	to := from.AddDate(0, 0, 90)
	if toFlag != "" {
		t, err := time.Parse("2006-01-02", toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to %s is before -from %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return from, to, nil
}
