package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bikeride/internal/domain"
)

// newTestClient connects to the Redis named by REDIS_ADDR_TEST or skips.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR_TEST")
	if addr == "" {
		t.Skip("REDIS_ADDR_TEST not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSampleStore_AppendIsIdempotent(t *testing.T) {
	client := newTestClient(t)
	store := NewSampleStore(client, time.Minute)
	ctx := context.Background()
	journeyID := uuid.New().String()
	t.Cleanup(func() { _ = store.DeleteAll(ctx, journeyID) })

	sample := domain.LocationSample{Lat: 51.5074, Lng: -0.1278, Timestamp: 1_760_000_000_000, CustomerID: "cust-1"}

	for i := 0; i < 3; i++ {
		if err := store.AppendSample(ctx, journeyID, sample); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	samples, err := store.ReadAll(ctx, journeyID)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected 1 sample after duplicate appends, got %d", len(samples))
	}
	if samples[0] != sample {
		t.Errorf("round trip mismatch: got %+v", samples[0])
	}

	ttl, err := client.TTL(ctx, samplesKey(journeyID)).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected sliding ttl within 1m, got %v", ttl)
	}
}

func TestSampleStore_DeleteAll(t *testing.T) {
	client := newTestClient(t)
	store := NewSampleStore(client, 0)
	ctx := context.Background()
	journeyID := uuid.New().String()

	for i := int64(1); i <= 3; i++ {
		_ = store.AppendSample(ctx, journeyID, domain.LocationSample{Lat: 1, Lng: 1, Timestamp: i})
	}

	if n, _ := store.Count(ctx, journeyID); n != 3 {
		t.Fatalf("expected 3 samples, got %d", n)
	}

	if err := store.DeleteAll(ctx, journeyID); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	samples, err := store.ReadAll(ctx, journeyID)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected empty store after delete, got %d samples", len(samples))
	}
}

func TestCacheStore_MissThenHit(t *testing.T) {
	client := newTestClient(t)
	cache := NewCacheStore(client, time.Minute)
	ctx := context.Background()
	journeyID := uuid.New().String()
	t.Cleanup(func() { _ = cache.InvalidatePattern(ctx, journeyID) })

	got, err := cache.GetPattern(ctx, journeyID)
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %+v, %v", got, err)
	}

	want := domain.MovementPattern{Type: domain.PatternLinear, Confidence: 0.6, Duration: 60_000, Distance: 420}
	if err := cache.SetPattern(ctx, journeyID, want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err = cache.GetPattern(ctx, journeyID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
