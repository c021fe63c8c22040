package redis

import (
	"context"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
)

// PatternCacheInterface defines the interface for movement pattern caching.
type PatternCacheInterface interface {
	GetPattern(ctx context.Context, journeyID string) (*domain.MovementPattern, error)
	SetPattern(ctx context.Context, journeyID string, pattern domain.MovementPattern) error
	InvalidatePattern(ctx context.Context, journeyID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ ephemeral.Store       = (*SampleStore)(nil)
	_ PatternCacheInterface = (*CacheStore)(nil)
)
