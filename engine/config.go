package engine

// Config holds every weight and threshold of the recommendation heuristic
type Config struct {
	// Base blend: suggested = MarketWeight*marketAverage + CurrentWeight*currentRate
	MarketWeight  float64
	CurrentWeight float64

	Demand     DemandConfig
	Seasonal   SeasonalConfig
	Trend      TrendConfig
	Optimizer  OptimizerConfig
	Confidence ConfidenceConfig
	Occupancy  OccupancyConfig
	Reasoning  ReasoningConfig

	// LegacyOccupancySentinel also treats averageOccupancy == SentinelOccupancy
	// as "no historical data" for feeds that encode missing history that way.
	LegacyOccupancySentinel bool
	SentinelOccupancy       float64
}

// DemandConfig weights the composite demand score
type DemandConfig struct {
	RatePositionWeight float64
	OccupancyWeight    float64
	WeekendWeight      float64
	SeasonalWeight     float64
	WeekendFactor      float64
	HighThreshold      float64
	MediumThreshold    float64
}

// SeasonalConfig holds the seasonal factor per calendar season
type SeasonalConfig struct {
	Summer  float64 // June - September
	Holiday float64 // December, January
	Spring  float64 // March - May
	Fall    float64 // everything else
}

// TrendConfig controls how volatility resolves a stable historical trend
type TrendConfig struct {
	VolatilityThreshold float64
}

// OptimizerConfig holds the multipliers and the clamp band
type OptimizerConfig struct {
	HighDemand   float64
	MediumDemand float64
	LowDemand    float64
	TrendUp      float64
	TrendDown    float64
	TrendStable  float64

	StrongOccupancy     float64 // occupancy above this is strong
	WeakOccupancy       float64 // occupancy below this is weak
	StrongOccupancyMult float64
	WeakOccupancyMult   float64

	MinRatio float64
	MaxRatio float64
}

// ConfidenceConfig holds the penalties subtracted from a perfect score
type ConfidenceConfig struct {
	Start              float64
	FewCompetitors     int // below this count: FewPenalty
	SomeCompetitors    int // below this count: SomePenalty
	FewPenalty         float64
	SomePenalty        float64
	VolatilityCap      float64
	NoHistoryPenalty   float64
	HorizonDays        float64
	HorizonPenaltyRate float64 // per day beyond HorizonDays
	HorizonPenaltyCap  float64
	Min                float64
	Max                float64
}

// OccupancyConfig adjusts the historical baseline for the forecast
type OccupancyConfig struct {
	HighDemandBoost float64
	LowDemandCut    float64
	WeekendBoost    float64
	Min             float64
	Max             float64
}

// ReasoningConfig holds the text thresholds, in percent
type ReasoningConfig struct {
	MaterialChangePct float64
	MarketBandPct     float64
}

// DefaultConfig returns the production heuristic
func DefaultConfig() Config {
	return Config{
		MarketWeight:  0.6,
		CurrentWeight: 0.4,
		Demand: DemandConfig{
			RatePositionWeight: 0.30,
			OccupancyWeight:    0.40,
			WeekendWeight:      0.15,
			SeasonalWeight:     0.15,
			WeekendFactor:      1.2,
			HighThreshold:      1.10,
			MediumThreshold:    0.90,
		},
		Seasonal: SeasonalConfig{
			Summer:  1.15,
			Holiday: 1.20,
			Spring:  1.05,
			Fall:    0.95,
		},
		Trend: TrendConfig{
			VolatilityThreshold: 0.15,
		},
		Optimizer: OptimizerConfig{
			HighDemand:          1.08,
			MediumDemand:        1.02,
			LowDemand:           0.95,
			TrendUp:             1.05,
			TrendDown:           0.97,
			TrendStable:         1.0,
			StrongOccupancy:     85,
			WeakOccupancy:       65,
			StrongOccupancyMult: 1.03,
			WeakOccupancyMult:   0.98,
			MinRatio:            0.75,
			MaxRatio:            1.25,
		},
		Confidence: ConfidenceConfig{
			Start:              100,
			FewCompetitors:     3,
			SomeCompetitors:    5,
			FewPenalty:         30,
			SomePenalty:        15,
			VolatilityCap:      25,
			NoHistoryPenalty:   10,
			HorizonDays:        30,
			HorizonPenaltyRate: 0.5,
			HorizonPenaltyCap:  20,
			Min:                30,
			Max:                100,
		},
		Occupancy: OccupancyConfig{
			HighDemandBoost: 10,
			LowDemandCut:    8,
			WeekendBoost:    5,
			Min:             20,
			Max:             100,
		},
		Reasoning: ReasoningConfig{
			MaterialChangePct: 2,
			MarketBandPct:     10,
		},
		SentinelOccupancy: 75,
	}
}
