package repository

import (
	"context"

	"bikeride/internal/domain"
)

// BookingRepository defines the booking operations the tracking core needs.
type BookingRepository interface {
	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// SetStatus updates the status of a booking.
	SetStatus(ctx context.Context, id string, status domain.BookingStatus) error
}

// BikeRepository defines the bike inventory operations the tracking core needs.
type BikeRepository interface {
	// GetByID retrieves a bike by ID.
	GetByID(ctx context.Context, id string) (*domain.Bike, error)

	// SetAvailability marks a bike as available or rented out.
	SetAvailability(ctx context.Context, id string, available bool) error
}

// UserRepository is the read-only account directory.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// ListAdmins retrieves all admin accounts.
	ListAdmins(ctx context.Context) ([]*domain.User, error)
}
