package repository

import (
	"context"

	"bikeride/internal/domain"
)

// TrackingRepository is the append-only durable store for tracking points
// and path snapshots.
type TrackingRepository interface {
	// InsertPoints bulk-inserts points, silently skipping any whose natural
	// key (journey, timestamp, lat, lng) already exists. Returns the number
	// of rows actually inserted.
	InsertPoints(ctx context.Context, journeyID string, samples []domain.LocationSample) (int64, error)

	// CreatePath stores the path snapshot unless one already exists for the
	// journey. Reports whether it was created.
	CreatePath(ctx context.Context, path *domain.TrackingPath) (bool, error)

	// GetPath retrieves the path snapshot of a journey.
	GetPath(ctx context.Context, journeyID string) (*domain.TrackingPath, error)

	// RecentPoints returns up to limit of the latest points, oldest first.
	RecentPoints(ctx context.Context, journeyID string, limit int) ([]domain.LocationSample, error)

	// CountPoints returns the number of stored points for a journey.
	CountPoints(ctx context.Context, journeyID string) (int64, error)
}
