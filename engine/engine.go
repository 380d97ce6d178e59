// Package engine turns a rate cell, its competitor rates and its booking
// history into a bounded, confidence-scored and explained rate suggestion.
//
// The engine performs no I/O and holds no mutable state; an *Engine may be
// shared by any number of goroutines.
package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hotel-rate-engine/models"
)

// ErrNonFiniteValue is reported when an intermediate value is NaN or infinite
var ErrNonFiniteValue = errors.New("non-finite intermediate value")

// ErrNoWholeRateInBand is reported when no whole currency unit lies inside
// the allowed band around the current rate
var ErrNoWholeRateInBand = errors.New("no whole rate inside the allowed band")

// Outcome is the terminal state of one Generate call
type Outcome int

const (
	Recommended Outcome = iota
	NoRelevantData
	ComputationFault
)

func (o Outcome) String() string {
	switch o {
	case Recommended:
		return "recommended"
	case NoRelevantData:
		return "no_relevant_data"
	case ComputationFault:
		return "computation_fault"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Level is the severity of a Diagnostic
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Diagnostic describes why a cell produced no recommendation
type Diagnostic struct {
	Level        Level
	Outcome      Outcome
	PropertyID   string
	RoomTypeCode string
	RatePlanCode string
	Date         time.Time
	Err          error
}

// Result is the outcome of Generate. Recommendation is set iff Outcome is
// Recommended.
type Result struct {
	Recommendation *models.RateRecommendation
	Outcome        Outcome
	Err            error
}

// Get returns the recommendation and whether there is one
func (r Result) Get() (*models.RateRecommendation, bool) {
	return r.Recommendation, r.Outcome == Recommended && r.Recommendation != nil
}

// MetricsProvider supplies market metrics for a room type and date. It lets
// batch callers share metrics across cells with the same competitor set.
type MetricsProvider interface {
	MarketMetrics(roomTypeCode string, date time.Time, rates []float64) models.MarketMetrics
}

type directMetrics struct{}

func (directMetrics) MarketMetrics(_ string, _ time.Time, rates []float64) models.MarketMetrics {
	return CalculateMarketMetrics(rates)
}

// Options are the optional collaborators of an Engine. Zero values fall back
// to the system clock, UUID ids and direct metric computation.
type Options struct {
	Now          func() time.Time
	NewID        func() string
	Metrics      MetricsProvider
	OnDiagnostic func(Diagnostic)
}

// Engine generates rate recommendations
type Engine struct {
	cfg  Config
	opts Options
}

// New creates an Engine with the given heuristic configuration
func New(cfg Config, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "rec_" + uuid.NewString() }
	}
	if opts.Metrics == nil {
		opts.Metrics = directMetrics{}
	}
	return &Engine{cfg: cfg, opts: opts}
}

// Config returns the heuristic configuration of e
func (e *Engine) Config() Config {
	return e.cfg
}

// Generate produces a recommendation for rc. It never panics: a missing
// competitor set yields NoRelevantData and any internal failure yields
// ComputationFault.
func (e *Engine) Generate(rc models.RateContext, observations []models.CompetitorObservation, hp models.HistoricalPerformance) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = e.fail(rc, fmt.Errorf("recovered: %v", r))
		}
	}()

	rates := RelevantRates(rc, observations)
	if len(rates) == 0 {
		e.emit(Diagnostic{
			Level:   LevelWarn,
			Outcome: NoRelevantData,
			Err:     fmt.Errorf("no competitor rates for %s on %s", rc.RoomTypeCode, rc.Date.Format("2006-01-02")),
		}, rc)
		return Result{Outcome: NoRelevantData}
	}

	rec, err := e.run(rc, rates, hp)
	if err != nil {
		return e.fail(rc, err)
	}
	return Result{Recommendation: rec, Outcome: Recommended}
}

func (e *Engine) run(rc models.RateContext, rates []float64, hp models.HistoricalPerformance) (*models.RateRecommendation, error) {
	current := rc.CurrentRate.InexactFloat64()
	if current <= 0 || rc.Date.IsZero() {
		return nil, fmt.Errorf("%w: current rate %s, date %v", models.ErrInvalidInput, rc.CurrentRate, rc.Date)
	}

	now := e.opts.Now()
	cfg := e.cfg

	metrics := e.opts.Metrics.MarketMetrics(rc.RoomTypeCode, rc.Date, rates)
	demand := ClassifyDemand(cfg, current, metrics.Average, hp.AverageOccupancy, rc.Date)
	trend := ClassifyTrend(cfg, hp.SeasonalTrend, metrics, rc.Date)
	optimized := OptimizeRate(cfg, current, metrics, demand, trend, hp)
	confidence := ScoreConfidence(cfg, metrics.Count, metrics.Volatility(), hp, rc.Date, now)
	occupancy := ForecastOccupancy(cfg, hp.AverageOccupancy, demand, rc.Date)

	for _, v := range []float64{metrics.Average, optimized, confidence, occupancy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFiniteValue
		}
	}

	lo, hi := cfg.Optimizer.MinRatio*current, cfg.Optimizer.MaxRatio*current
	suggested, ok := roundWithinBand(optimized, lo, hi)
	if !ok {
		return nil, fmt.Errorf("%w: [%.4f, %.4f]", ErrNoWholeRateInBand, lo, hi)
	}
	reasoning := GenerateReasoning(cfg, current, float64(suggested), metrics, demand, trend)

	return &models.RateRecommendation{
		ID:            e.opts.NewID(),
		PropertyID:    rc.PropertyID,
		RoomTypeID:    rc.RoomTypeID,
		RatePlanID:    rc.RatePlanID,
		Date:          rc.Date,
		RoomTypeCode:  rc.RoomTypeCode,
		RoomTypeName:  rc.RoomTypeName,
		RatePlanCode:  rc.RatePlanCode,
		RatePlanName:  rc.RatePlanName,
		CurrentRate:   rc.CurrentRate,
		SuggestedRate: suggested,
		Confidence:    int(math.Round(confidence)),
		Reasoning:     reasoning,
		Factors: models.Factors{
			CompetitorAverage: decimal.NewFromFloat(metrics.Average).Round(2),
			MarketTrend:       trend,
			DemandLevel:       demand,
			OccupancyForecast: math.Round(occupancy*10) / 10,
		},
		CreatedAt: now,
	}, nil
}

// roundWithinBand rounds v to a whole currency unit without leaving
// [lo, hi]. It reports false when the band holds no whole unit.
func roundWithinBand(v, lo, hi float64) (int64, bool) {
	if math.Ceil(lo) > math.Floor(hi) {
		return 0, false
	}
	r := math.Round(v)
	if r < lo {
		r = math.Ceil(lo)
	}
	if r > hi {
		r = math.Floor(hi)
	}
	return int64(r), true
}

func (e *Engine) fail(rc models.RateContext, err error) Result {
	e.emit(Diagnostic{Level: LevelError, Outcome: ComputationFault, Err: err}, rc)
	return Result{Outcome: ComputationFault, Err: err}
}

func (e *Engine) emit(d Diagnostic, rc models.RateContext) {
	if e.opts.OnDiagnostic == nil {
		return
	}
	d.PropertyID = rc.PropertyID
	d.RoomTypeCode = rc.RoomTypeCode
	d.RatePlanCode = rc.RatePlanCode
	d.Date = rc.Date
	e.opts.OnDiagnostic(d)
}
