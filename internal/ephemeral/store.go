// Package ephemeral defines the contract of the fast, low-durability store
// that holds in-flight GPS samples until a ride journey is reconciled.
package ephemeral

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"bikeride/internal/domain"
)

// Store holds the live sample set of each ride journey.
// AppendSample must be idempotent: appending an identical sample twice
// leaves a single copy. No transaction spans ReadAll and DeleteAll.
type Store interface {
	AppendSample(ctx context.Context, journeyID string, sample domain.LocationSample) error
	ReadAll(ctx context.Context, journeyID string) ([]domain.LocationSample, error)
	DeleteAll(ctx context.Context, journeyID string) error
}

// SampleKey returns the deterministic key under which a sample is stored.
// Samples sharing (timestamp, lat, lng) map to the same key, so re-appending
// overwrites instead of duplicating. Keys sort by timestamp and contain no
// '.', '/', '#', '$', '[' or ']' so they are valid in every backend.
func SampleKey(s domain.LocationSample) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%x|%x", s.Timestamp, math.Float64bits(s.Lat), math.Float64bits(s.Lng))
	return fmt.Sprintf("%013d-%016x", s.Timestamp, h.Sum64())
}
