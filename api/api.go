package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-rate-engine/engine"
	"hotel-rate-engine/models"
	"hotel-rate-engine/utils"
)

// placeholderOccupancy stands in for the booking history of a request that
// carries none
const placeholderOccupancy = 75

// RecommendationRequest is the body of POST /recommendations
type RecommendationRequest struct {
	RateContext           models.RateContext             `json:"rateContext"`
	Competitors           []models.CompetitorObservation `json:"competitors"`
	HistoricalPerformance *HistoryRequest                `json:"historicalPerformance"`
}

// HistoryRequest is the booking history of a request. A present block counts
// as real history unless hasHistoricalData is explicitly false.
type HistoryRequest struct {
	AverageOccupancy  float64            `json:"averageOccupancy"`
	AverageADR        decimal.Decimal    `json:"averageAdr"`
	SeasonalTrend     models.MarketTrend `json:"seasonalTrend"`
	HasHistoricalData *bool              `json:"hasHistoricalData"`
}

func (r *HistoryRequest) toModel() models.HistoricalPerformance {
	hp := models.HistoricalPerformance{
		AverageOccupancy:  r.AverageOccupancy,
		AverageADR:        r.AverageADR,
		SeasonalTrend:     r.SeasonalTrend,
		HasHistoricalData: r.HasHistoricalData == nil || *r.HasHistoricalData,
	}
	if hp.SeasonalTrend == "" {
		hp.SeasonalTrend = models.TrendStable
	}
	return hp
}

type APIHandler struct {
	engine *engine.Engine
	logger *utils.Logger
}

// NewRouter builds the HTTP server: health check, rate limiting and the
// versioned API routes.
func NewRouter(eng *engine.Engine, limiter *utils.RateLimiter, logger *utils.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(RateLimit(limiter))
	SetupRoutes(v1, eng, logger)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func SetupRoutes(r *gin.RouterGroup, eng *engine.Engine, logger *utils.Logger) *APIHandler {
	handler := &APIHandler{engine: eng, logger: logger}

	r.POST("/recommendations", handler.GenerateRecommendation)

	return handler
}

// GenerateRecommendation evaluates one rate cell. It answers 400 when the
// request breaks the input contract and 422 when the engine has nothing to
// recommend.
func (h *APIHandler) GenerateRecommendation(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	rc, err := models.NewRateContext(req.RateContext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hp := models.HistoricalPerformance{
		AverageOccupancy: placeholderOccupancy,
		SeasonalTrend:    models.TrendStable,
	}
	if req.HistoricalPerformance != nil {
		hp = req.HistoricalPerformance.toModel()
	}
	if err := hp.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.engine.Generate(*rc, req.Competitors, hp)
	rec, ok := res.Get()
	if !ok {
		if errors.Is(res.Err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": res.Err.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "no recommendation available",
			"outcome": res.Outcome.String(),
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// RateLimit rejects requests with 429 once limiter is exhausted
func RateLimit(limiter *utils.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
