package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bikeride/internal/domain"
	"bikeride/internal/repository"
)

// JourneyService handles ride journey lifecycle operations other than
// completion.
type JourneyService struct {
	journeys repository.RideJourneyRepository
	bookings repository.BookingRepository
	tracking repository.TrackingRepository
	now      func() time.Time
}

// NewJourneyService creates a new JourneyService.
func NewJourneyService(
	journeys repository.RideJourneyRepository,
	bookings repository.BookingRepository,
	tracking repository.TrackingRepository,
) *JourneyService {
	return &JourneyService{
		journeys: journeys,
		bookings: bookings,
		tracking: tracking,
		now:      time.Now,
	}
}

// CreateJourney creates a pending journey for a booking whose rental period
// has begun.
func (s *JourneyService) CreateJourney(ctx context.Context, bookingID string) (*domain.RideJourney, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusConfirmed && booking.Status != domain.BookingStatusOngoing {
		return nil, ErrBookingNotActive
	}

	existing, err := s.journeys.GetOpenByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBookingHasOpenJourney
	}

	journey := &domain.RideJourney{
		ID:         uuid.New().String(),
		BookingID:  booking.ID,
		BikeID:     booking.BikeID,
		CustomerID: booking.CustomerID,
		Status:     domain.JourneyStatusPending,
		CreatedAt:  s.now(),
	}

	if err := s.journeys.Create(ctx, journey); err != nil {
		// Lost a race with a concurrent create for the same booking.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrBookingHasOpenJourney
		}
		return nil, err
	}

	return journey, nil
}

// StartRide moves a pending journey to active.
func (s *JourneyService) StartRide(ctx context.Context, journeyID string) (*domain.RideJourney, error) {
	return s.transition(ctx, journeyID, (*domain.RideJourney).Start)
}

// PauseRide moves an active journey to paused.
func (s *JourneyService) PauseRide(ctx context.Context, journeyID string) (*domain.RideJourney, error) {
	return s.transition(ctx, journeyID, (*domain.RideJourney).Pause)
}

// ResumeRide moves a paused journey back to active.
func (s *JourneyService) ResumeRide(ctx context.Context, journeyID string) (*domain.RideJourney, error) {
	return s.transition(ctx, journeyID, (*domain.RideJourney).Resume)
}

// transition applies a state change and writes it only if no one else
// changed the status in between.
func (s *JourneyService) transition(
	ctx context.Context,
	journeyID string,
	apply func(*domain.RideJourney, time.Time) error,
) (*domain.RideJourney, error) {
	if journeyID == "" {
		return nil, ErrInvalidJourneyID
	}

	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	from := journey.Status
	if err := apply(journey, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.journeys.UpdateStatus(ctx, journey, from)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrInvalidTransition
	}

	return journey, nil
}

// GetJourney retrieves a journey by ID.
func (s *JourneyService) GetJourney(ctx context.Context, journeyID string) (*domain.RideJourney, error) {
	if journeyID == "" {
		return nil, ErrInvalidJourneyID
	}

	return s.journeys.GetByID(ctx, journeyID)
}

// ListJourneys lists journeys, optionally filtered by status.
func (s *JourneyService) ListJourneys(ctx context.Context, status domain.JourneyStatus) ([]*domain.RideJourney, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	return s.journeys.List(ctx, status)
}

// GetPath returns the path snapshot of a completed journey. A journey
// completed without samples has an empty path.
func (s *JourneyService) GetPath(ctx context.Context, journeyID string) (*domain.TrackingPath, error) {
	journey, err := s.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	if journey.Status != domain.JourneyStatusCompleted {
		return nil, ErrJourneyNotCompleted
	}

	path, err := s.tracking.GetPath(ctx, journeyID)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.TrackingPath{RideJourneyID: journeyID, Points: []domain.LocationSample{}, CreatedAt: journey.EndTime}, nil
	}
	if err != nil {
		return nil, err
	}

	return path, nil
}
