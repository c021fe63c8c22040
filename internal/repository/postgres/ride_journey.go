package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"bikeride/internal/domain"
	"bikeride/internal/repository"
)

// RideJourneyRepository is a PostgreSQL implementation of repository.RideJourneyRepository.
type RideJourneyRepository struct {
	q Querier
}

// NewRideJourneyRepository creates a new PostgreSQL ride journey repository.
func NewRideJourneyRepository(db *sql.DB) *RideJourneyRepository {
	return &RideJourneyRepository{q: db}
}

// NewRideJourneyRepositoryWithTx creates a ride journey repository using a transaction.
func NewRideJourneyRepositoryWithTx(tx *sql.Tx) *RideJourneyRepository {
	return &RideJourneyRepository{q: tx}
}

const journeyColumns = `id, booking_id, bike_id, customer_id, status, start_time, end_time, paused_at, total_paused_seconds, created_at`

// Create persists a new ride journey.
func (r *RideJourneyRepository) Create(ctx context.Context, journey *domain.RideJourney) error {
	query := `
		INSERT INTO ride_journeys (` + journeyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		journey.ID,
		journey.BookingID,
		journey.BikeID,
		journey.CustomerID,
		journey.Status,
		nullTime(journey.StartTime),
		nullTime(journey.EndTime),
		nullTime(journey.PausedAt),
		int64(journey.TotalPaused.Seconds()),
		journey.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// GetByID retrieves a ride journey by ID.
func (r *RideJourneyRepository) GetByID(ctx context.Context, id string) (*domain.RideJourney, error) {
	query := `SELECT ` + journeyColumns + ` FROM ride_journeys WHERE id = $1`

	journey, err := scanJourney(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return journey, nil
}

// GetOpenByBookingID retrieves the open journey of a booking.
// Returns nil if no open journey exists.
func (r *RideJourneyRepository) GetOpenByBookingID(ctx context.Context, bookingID string) (*domain.RideJourney, error) {
	query := `
		SELECT ` + journeyColumns + `
		FROM ride_journeys
		WHERE booking_id = $1 AND status <> $2
		LIMIT 1
	`

	journey, err := scanJourney(r.q.QueryRowContext(ctx, query, bookingID, domain.JourneyStatusCompleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return journey, nil
}

// List retrieves ride journeys, optionally filtered by status.
func (r *RideJourneyRepository) List(ctx context.Context, status domain.JourneyStatus) ([]*domain.RideJourney, error) {
	query := `
		SELECT ` + journeyColumns + `
		FROM ride_journeys
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var journeys []*domain.RideJourney
	for rows.Next() {
		journey, err := scanJourney(rows)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, journey)
	}

	return journeys, rows.Err()
}

// UpdateStatus writes status and timestamps when the stored status is in from.
func (r *RideJourneyRepository) UpdateStatus(ctx context.Context, journey *domain.RideJourney, from ...domain.JourneyStatus) (bool, error) {
	query := `
		UPDATE ride_journeys
		SET status = $1, start_time = $2, end_time = $3, paused_at = $4, total_paused_seconds = $5
		WHERE id = $6 AND status = ANY($7)
	`

	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	result, err := r.q.ExecContext(ctx, query,
		journey.Status,
		nullTime(journey.StartTime),
		nullTime(journey.EndTime),
		nullTime(journey.PausedAt),
		int64(journey.TotalPaused.Seconds()),
		journey.ID,
		pq.Array(allowed),
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (*domain.RideJourney, error) {
	var journey domain.RideJourney
	var startTime, endTime, pausedAt sql.NullTime
	var totalPausedSeconds int64

	if err := row.Scan(
		&journey.ID,
		&journey.BookingID,
		&journey.BikeID,
		&journey.CustomerID,
		&journey.Status,
		&startTime,
		&endTime,
		&pausedAt,
		&totalPausedSeconds,
		&journey.CreatedAt,
	); err != nil {
		return nil, err
	}

	if startTime.Valid {
		journey.StartTime = startTime.Time
	}
	if endTime.Valid {
		journey.EndTime = endTime.Time
	}
	if pausedAt.Valid {
		journey.PausedAt = pausedAt.Time
	}
	journey.TotalPaused = time.Duration(totalPausedSeconds) * time.Second

	return &journey, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure RideJourneyRepository implements repository.RideJourneyRepository.
var _ repository.RideJourneyRepository = (*RideJourneyRepository)(nil)
