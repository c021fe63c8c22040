package service

import (
	"context"
	"fmt"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
	"bikeride/internal/metrics"
	"bikeride/internal/repository"
)

// IngestionService accepts live location samples from riders' devices.
type IngestionService struct {
	journeys repository.RideJourneyRepository
	store    ephemeral.Store
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(journeys repository.RideJourneyRepository, store ephemeral.Store) *IngestionService {
	return &IngestionService{
		journeys: journeys,
		store:    store,
	}
}

// IngestSample appends a sample to an active journey's live stream.
// Duplicate pushes of the same sample are harmless.
func (s *IngestionService) IngestSample(ctx context.Context, journeyID string, sample domain.LocationSample) error {
	if journeyID == "" {
		return ErrInvalidJourneyID
	}

	if !sample.Valid() {
		return ErrInvalidLocation
	}

	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return err
	}

	if journey.Status != domain.JourneyStatusActive {
		return ErrJourneyNotActive
	}

	if sample.CustomerID == "" {
		sample.CustomerID = journey.CustomerID
	}
	if sample.CustomerID != journey.CustomerID {
		return ErrCustomerMismatch
	}

	if err := s.store.AppendSample(ctx, journeyID, sample); err != nil {
		return fmt.Errorf("%w: %v", ErrEphemeralStoreUnavailable, err)
	}

	metrics.SamplesIngested.Inc()
	return nil
}
