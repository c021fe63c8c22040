package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
)

// DefaultSampleTTL bounds how long samples of an abandoned journey survive.
const DefaultSampleTTL = 72 * time.Hour

// samplesKey is the hash holding one journey's live samples, one field per
// sample.
func samplesKey(journeyID string) string {
	return "journey:" + journeyID + ":samples"
}

// SampleStore keeps live location samples in Redis.
type SampleStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSampleStore creates a new SampleStore. The TTL slides forward on every
// append; zero disables expiry.
func NewSampleStore(client *redis.Client, ttl time.Duration) *SampleStore {
	return &SampleStore{client: client, ttl: ttl}
}

// AppendSample stores a sample under its deterministic field so retries
// overwrite rather than duplicate.
func (s *SampleStore) AppendSample(ctx context.Context, journeyID string, sample domain.LocationSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}

	key := samplesKey(journeyID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, ephemeral.SampleKey(sample), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// ReadAll returns every sample of the journey in no particular order.
// Entries that fail to decode are skipped.
func (s *SampleStore) ReadAll(ctx context.Context, journeyID string) ([]domain.LocationSample, error) {
	fields, err := s.client.HGetAll(ctx, samplesKey(journeyID)).Result()
	if err != nil {
		return nil, err
	}

	samples := make([]domain.LocationSample, 0, len(fields))
	for field, raw := range fields {
		var sample domain.LocationSample
		if err := json.Unmarshal([]byte(raw), &sample); err != nil {
			log.Printf("[EPHEMERAL] skipping undecodable sample journey=%s field=%s: %v", journeyID, field, err)
			continue
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// DeleteAll removes the journey's sample hash.
func (s *SampleStore) DeleteAll(ctx context.Context, journeyID string) error {
	return s.client.Del(ctx, samplesKey(journeyID)).Err()
}

// Count returns the number of samples currently held for the journey.
func (s *SampleStore) Count(ctx context.Context, journeyID string) (int64, error) {
	return s.client.HLen(ctx, samplesKey(journeyID)).Result()
}
