// Package firebase backs the tracking pipeline with Firebase: live samples in
// the Realtime Database and push delivery through Cloud Messaging.
package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
)

// journeyLocationsPath is the RTDB subtree holding one journey's samples.
func journeyLocationsPath(journeyID string) string {
	return fmt.Sprintf("ride_journeys/%s/locations", journeyID)
}

// SampleStore keeps live location samples in the Realtime Database, one
// child per sample under ride_journeys/{id}/locations.
type SampleStore struct {
	client *db.Client
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(client *db.Client) *SampleStore {
	return &SampleStore{client: client}
}

// AppendSample writes the sample at its deterministic child key, so a retry
// overwrites the same node.
func (s *SampleStore) AppendSample(ctx context.Context, journeyID string, sample domain.LocationSample) error {
	ref := s.client.NewRef(journeyLocationsPath(journeyID)).Child(ephemeral.SampleKey(sample))
	if err := ref.Set(ctx, sample); err != nil {
		return fmt.Errorf("writing sample for journey %s: %w", journeyID, err)
	}
	return nil
}

// ReadAll returns every sample under the journey's subtree.
func (s *SampleStore) ReadAll(ctx context.Context, journeyID string) ([]domain.LocationSample, error) {
	var entries map[string]domain.LocationSample
	if err := s.client.NewRef(journeyLocationsPath(journeyID)).Get(ctx, &entries); err != nil {
		return nil, fmt.Errorf("reading samples for journey %s: %w", journeyID, err)
	}

	samples := make([]domain.LocationSample, 0, len(entries))
	for _, entry := range entries {
		samples = append(samples, entry)
	}
	return samples, nil
}

// DeleteAll removes the journey's sample subtree.
func (s *SampleStore) DeleteAll(ctx context.Context, journeyID string) error {
	if err := s.client.NewRef(journeyLocationsPath(journeyID)).Delete(ctx); err != nil {
		return fmt.Errorf("deleting samples for journey %s: %w", journeyID, err)
	}
	return nil
}

var _ ephemeral.Store = (*SampleStore)(nil)
