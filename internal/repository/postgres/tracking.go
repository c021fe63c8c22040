package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"bikeride/internal/domain"
	"bikeride/internal/repository"
)

// TrackingRepository is a PostgreSQL implementation of repository.TrackingRepository.
type TrackingRepository struct {
	q Querier
}

// NewTrackingRepository creates a new PostgreSQL tracking repository.
func NewTrackingRepository(db *sql.DB) *TrackingRepository {
	return &TrackingRepository{q: db}
}

// InsertPoints bulk-inserts samples in one statement. Rows whose natural key
// already exists are skipped.
func (r *TrackingRepository) InsertPoints(ctx context.Context, journeyID string, samples []domain.LocationSample) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO tracking_points (ride_journey_id, lat, lng, recorded_at_ms)
		SELECT $1, u.lat, u.lng, u.ts
		FROM unnest($2::float8[], $3::float8[], $4::bigint[]) AS u(lat, lng, ts)
		ON CONFLICT (ride_journey_id, recorded_at_ms, lat, lng) DO NOTHING
	`

	lats := make([]float64, len(samples))
	lngs := make([]float64, len(samples))
	stamps := make([]int64, len(samples))
	for i, s := range samples {
		lats[i] = s.Lat
		lngs[i] = s.Lng
		stamps[i] = s.Timestamp
	}

	result, err := r.q.ExecContext(ctx, query, journeyID, pq.Array(lats), pq.Array(lngs), pq.Array(stamps))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CreatePath stores the snapshot unless the journey already has one.
func (r *TrackingRepository) CreatePath(ctx context.Context, path *domain.TrackingPath) (bool, error) {
	query := `
		INSERT INTO tracking_paths (ride_journey_id, path_json, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ride_journey_id) DO NOTHING
	`

	pathJSON, err := json.Marshal(path.Points)
	if err != nil {
		return false, err
	}

	createdAt := path.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.q.ExecContext(ctx, query, path.RideJourneyID, pathJSON, createdAt)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// GetPath retrieves the path snapshot of a journey.
func (r *TrackingRepository) GetPath(ctx context.Context, journeyID string) (*domain.TrackingPath, error) {
	query := `SELECT ride_journey_id, path_json, created_at FROM tracking_paths WHERE ride_journey_id = $1`

	var path domain.TrackingPath
	var pathJSON []byte

	err := r.q.QueryRowContext(ctx, query, journeyID).Scan(&path.RideJourneyID, &pathJSON, &path.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(pathJSON, &path.Points); err != nil {
		return nil, err
	}
	return &path, nil
}

// RecentPoints returns the latest points of a journey in ascending order.
func (r *TrackingRepository) RecentPoints(ctx context.Context, journeyID string, limit int) ([]domain.LocationSample, error) {
	query := `
		SELECT lat, lng, recorded_at_ms FROM (
			SELECT lat, lng, recorded_at_ms
			FROM tracking_points
			WHERE ride_journey_id = $1
			ORDER BY recorded_at_ms DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at_ms ASC
	`

	rows, err := r.q.QueryContext(ctx, query, journeyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.LocationSample
	for rows.Next() {
		var s domain.LocationSample
		if err := rows.Scan(&s.Lat, &s.Lng, &s.Timestamp); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// CountPoints returns the number of stored points for a journey.
func (r *TrackingRepository) CountPoints(ctx context.Context, journeyID string) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracking_points WHERE ride_journey_id = $1`, journeyID).Scan(&n)
	return n, err
}

// Ensure TrackingRepository implements repository.TrackingRepository.
var _ repository.TrackingRepository = (*TrackingRepository)(nil)
