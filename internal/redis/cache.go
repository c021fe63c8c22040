package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bikeride/internal/domain"
)

// DefaultPatternCacheTTL keeps a computed pattern shorter than one live-map
// poll interval.
const DefaultPatternCacheTTL = 15 * time.Second

const patternCachePrefix = "cache:movement:"

// CacheStore caches derived movement patterns in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultPatternCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// GetPattern retrieves a cached pattern. Returns nil on a cache miss.
func (s *CacheStore) GetPattern(ctx context.Context, journeyID string) (*domain.MovementPattern, error) {
	data, err := s.client.Get(ctx, patternCachePrefix+journeyID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var pattern domain.MovementPattern
	if err := json.Unmarshal(data, &pattern); err != nil {
		return nil, err
	}
	return &pattern, nil
}

// SetPattern stores a pattern in cache.
func (s *CacheStore) SetPattern(ctx context.Context, journeyID string, pattern domain.MovementPattern) error {
	data, err := json.Marshal(pattern)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, patternCachePrefix+journeyID, data, s.ttl).Err()
}

// InvalidatePattern removes a cached pattern.
func (s *CacheStore) InvalidatePattern(ctx context.Context, journeyID string) error {
	return s.client.Del(ctx, patternCachePrefix+journeyID).Err()
}
