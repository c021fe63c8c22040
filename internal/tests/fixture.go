package tests

import (
	"context"
	"time"

	"bikeride/internal/domain"
	"bikeride/internal/service"
)

// Fixture IDs shared by the service tests.
const (
	BookingID  = "42"
	JourneyID  = "7"
	BikeID     = "bike-1"
	CustomerID = "cust-1"
	OwnerID    = "owner-1"
	AdminID    = "admin-1"
)

// TestRetryPolicy retries quickly so failure tests stay fast.
var TestRetryPolicy = service.RetryPolicy{
	Timeout: time.Second,
	Retries: 2,
	Backoff: time.Millisecond,
}

// Env wires every mock into the services under test around one ongoing
// booking with a journey in the given status.
type Env struct {
	Journeys *MockRideJourneyRepository
	Bookings *MockBookingRepository
	Bikes    *MockBikeRepository
	Users    *MockUserRepository
	Tracking *MockTrackingRepository
	Store    *MockEphemeralStore
	Gateway  *MockGateway
	Tx       *MockTransactor

	Reconciler    *service.Reconciler
	Journey       *service.JourneyService
	Ingestion     *service.IngestionService
	Notifications *service.NotificationService

	StartedAt time.Time
}

// NewEnv creates an Env whose journey is in status.
func NewEnv(status domain.JourneyStatus) *Env {
	e := &Env{
		Journeys:  NewMockRideJourneyRepository(),
		Bookings:  NewMockBookingRepository(),
		Bikes:     NewMockBikeRepository(),
		Users:     NewMockUserRepository(),
		Tracking:  NewMockTrackingRepository(),
		Store:     NewMockEphemeralStore(),
		Gateway:   NewMockGateway(),
		StartedAt: time.Now().Add(-30 * time.Minute),
	}
	e.Tx = NewMockTransactor(e.Journeys, e.Bookings, e.Bikes)

	e.Users.AddUser(&domain.User{ID: CustomerID, Role: domain.UserRoleCustomer})
	e.Users.AddUser(&domain.User{ID: OwnerID, Role: domain.UserRoleOwner})
	e.Users.AddUser(&domain.User{ID: AdminID, Role: domain.UserRoleAdmin})
	e.Bikes.AddBike(&domain.Bike{ID: BikeID, OwnerID: OwnerID, Available: false})
	e.Bookings.AddBooking(&domain.Booking{
		ID:         BookingID,
		CustomerID: CustomerID,
		BikeID:     BikeID,
		Status:     domain.BookingStatusOngoing,
	})

	journey := &domain.RideJourney{
		ID:         JourneyID,
		BookingID:  BookingID,
		BikeID:     BikeID,
		CustomerID: CustomerID,
		Status:     status,
		CreatedAt:  e.StartedAt.Add(-time.Minute),
	}
	if status != domain.JourneyStatusPending {
		journey.StartTime = e.StartedAt
	}
	if status == domain.JourneyStatusPaused {
		journey.PausedAt = e.StartedAt.Add(20 * time.Minute)
	}
	e.Journeys.AddJourney(journey)

	e.Notifications = service.NewNotificationService(e.Gateway, e.Users)
	e.Reconciler = service.NewReconciler(e.Tx, e.Journeys, e.Bikes, e.Tracking, e.Store, e.Notifications, TestRetryPolicy)
	e.Journey = service.NewJourneyService(e.Journeys, e.Bookings, e.Tracking)
	e.Ingestion = service.NewIngestionService(e.Journeys, e.Store)
	return e
}

// Push appends samples to the journey's live stream, bypassing ingestion.
func (e *Env) Push(samples ...domain.LocationSample) {
	for _, s := range samples {
		_ = e.Store.AppendSample(context.Background(), JourneyID, s)
	}
}

// Samples returns n samples heading north from a fixed origin, one every
// ten seconds.
func Samples(n int) []domain.LocationSample {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli()
	out := make([]domain.LocationSample, n)
	for i := range out {
		out[i] = domain.LocationSample{
			Lat:        48.8566 + float64(i)*0.0005,
			Lng:        2.3522,
			Timestamp:  base + int64(i)*10_000,
			CustomerID: CustomerID,
		}
	}
	return out
}
