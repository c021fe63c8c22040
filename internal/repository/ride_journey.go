package repository

import (
	"context"

	"bikeride/internal/domain"
)

// RideJourneyRepository defines the persistence operations for ride journeys.
type RideJourneyRepository interface {
	// Create persists a new ride journey. Returns ErrConflict if the booking
	// already owns an open journey.
	Create(ctx context.Context, journey *domain.RideJourney) error

	// GetByID retrieves a ride journey by ID.
	GetByID(ctx context.Context, id string) (*domain.RideJourney, error)

	// GetOpenByBookingID retrieves the pending, active or paused journey of a
	// booking. Returns nil if none exists.
	GetOpenByBookingID(ctx context.Context, bookingID string) (*domain.RideJourney, error)

	// List retrieves journeys, most recent first. An empty status lists all.
	List(ctx context.Context, status domain.JourneyStatus) ([]*domain.RideJourney, error)

	// UpdateStatus writes the journey's status and timestamps only if the
	// stored status is one of from. Reports whether a row was updated.
	UpdateStatus(ctx context.Context, journey *domain.RideJourney, from ...domain.JourneyStatus) (bool, error)
}
