package storage

import (
	"context"
	"time"

	"hotel-rate-engine/models"
)

// MarketDataSource supplies the rate grid and competitor rates for a property
type MarketDataSource interface {
	LoadRateGrid(ctx context.Context, propertyID string, from, to time.Time) ([]models.GridRow, error)
	LoadCompetitorRates(ctx context.Context, propertyID string, from, to time.Time) ([]models.CompetitorObservation, error)
	Close() error
}

// RecommendationSink stores or exports generated recommendations
type RecommendationSink interface {
	WriteRecommendations(ctx context.Context, recs []*models.RateRecommendation) error
}
