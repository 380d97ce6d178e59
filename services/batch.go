package services

import (
	"context"
	"errors"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"hotel-rate-engine/engine"
	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

// BatchOptions tune a BatchRunner. Zero values fall back to eight workers
// and a 1024-entry metrics cache with no deadline.
type BatchOptions struct {
	MaxConcurrency   int
	Timeout          time.Duration
	MetricsCacheSize int
	ShowProgress     bool

	// Now and NewID are passed to the engine; nil uses its defaults.
	Now   func() time.Time
	NewID func() string
}

// BatchRunner evaluates every cell of a rate grid with a bounded pool of
// workers. A failing cell never aborts the batch.
type BatchRunner struct {
	cfg      engine.Config
	opts     BatchOptions
	logger   *utils.Logger
	insights *InsightService
}

// NewBatchRunner creates a BatchRunner using the given engine configuration
func NewBatchRunner(cfg engine.Config, opts BatchOptions, logger *utils.Logger) *BatchRunner {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	if opts.MetricsCacheSize <= 0 {
		opts.MetricsCacheSize = 1024
	}
	return &BatchRunner{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		insights: NewInsightService(logger),
	}
}

// Run evaluates cells and summarises the outcome. Cells not started before
// the batch deadline are counted as skipped. An error is returned only when
// ctx itself is cancelled or the metrics cache cannot be built; the report
// is returned either way once evaluation began.
func (r *BatchRunner) Run(ctx context.Context, cells []models.RateCell) (*models.BatchReport, error) {
	now := time.Now
	if r.opts.Now != nil {
		now = r.opts.Now
	}
	startedAt := now()
	wallStart := time.Now()

	cache, err := NewMarketMetricsCache(r.opts.MetricsCacheSize)
	if err != nil {
		return nil, err
	}
	eng := engine.New(r.cfg, engine.Options{
		Now:          r.opts.Now,
		NewID:        r.opts.NewID,
		Metrics:      cache,
		OnDiagnostic: DiagnosticLogger(r.logger),
	})

	batchCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var bar *progressbar.ProgressBar
	if r.opts.ShowProgress {
		bar = progressbar.Default(int64(len(cells)), "pricing cells")
	}

	results := make([]engine.Result, len(cells))
	done := make([]bool, len(cells))

	var g errgroup.Group
	g.SetLimit(r.opts.MaxConcurrency)
	for i := range cells {
		if batchCtx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if batchCtx.Err() != nil {
				return nil
			}
			c := cells[i]
			results[i] = eng.Generate(c.Context, c.Competitors, c.Historical)
			done[i] = true
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	evaluated := make([]engine.Result, 0, len(cells))
	for i, ok := range done {
		if ok {
			evaluated = append(evaluated, results[i])
		}
	}
	skipped := len(cells) - len(evaluated)
	if skipped > 0 {
		r.logger.Warn("Batch deadline reached: %d of %d cells skipped", skipped, len(cells))
	}

	hits, misses := cache.Stats()
	r.logger.Debug("Market metrics cache: %d hits, %d misses", hits, misses)

	propertyID := ""
	if len(cells) > 0 {
		propertyID = cells[0].Context.PropertyID
	}
	report := r.insights.Summarize(propertyID, startedAt, time.Since(wallStart), evaluated, skipped)

	if err := ctx.Err(); err != nil && errors.Is(err, context.Canceled) {
		return report, err
	}
	return report, nil
}

// DiagnosticLogger returns an engine diagnostic hook that logs each
// diagnostic tagged with its rate cell
func DiagnosticLogger(logger *utils.Logger) func(engine.Diagnostic) {
	return func(d engine.Diagnostic) {
		l := logger.WithCell(d.PropertyID, d.RoomTypeCode, d.RatePlanCode, d.Date).With("outcome", d.Outcome.String())
		if d.Level == engine.LevelError {
			l.Error("Rate cell failed: %v", d.Err)
			return
		}
		l.Warn("No recommendation: %v", d.Err)
	}
}

// BuildCells attaches to each grid row the competitor observations for its
// room type and stay date.
func BuildCells(grid []models.GridRow, observations []models.CompetitorObservation) []models.RateCell {
	byKey := make(map[string][]models.CompetitorObservation)
	for _, o := range observations {
		key := cellKey(o.RoomTypeCode, o.Date)
		byKey[key] = append(byKey[key], o)
	}

	cells := make([]models.RateCell, 0, len(grid))
	for _, row := range grid {
		cells = append(cells, models.RateCell{
			Context:     row.Context,
			Competitors: byKey[cellKey(row.Context.RoomTypeCode, row.Context.Date)],
			Historical:  row.Historical,
		})
	}
	return cells
}

func cellKey(roomTypeCode string, date time.Time) string {
	return roomTypeCode + "|" + date.Format("2006-01-02")
}
