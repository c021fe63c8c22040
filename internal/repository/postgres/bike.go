package postgres

import (
	"context"
	"database/sql"
	"errors"

	"bikeride/internal/domain"
	"bikeride/internal/repository"
)

// BikeRepository is a PostgreSQL implementation of repository.BikeRepository.
type BikeRepository struct {
	q Querier
}

// NewBikeRepository creates a new PostgreSQL bike repository.
func NewBikeRepository(db *sql.DB) *BikeRepository {
	return &BikeRepository{q: db}
}

// NewBikeRepositoryWithTx creates a bike repository using a transaction.
func NewBikeRepositoryWithTx(tx *sql.Tx) *BikeRepository {
	return &BikeRepository{q: tx}
}

// GetByID retrieves a bike by ID.
func (r *BikeRepository) GetByID(ctx context.Context, id string) (*domain.Bike, error) {
	query := `SELECT id, owner_id, COALESCE(name, ''), available FROM bikes WHERE id = $1`

	var bike domain.Bike
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&bike.ID,
		&bike.OwnerID,
		&bike.Name,
		&bike.Available,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &bike, nil
}

// SetAvailability marks a bike as available or rented out.
func (r *BikeRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	result, err := r.q.ExecContext(ctx, `UPDATE bikes SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure BikeRepository implements repository.BikeRepository.
var _ repository.BikeRepository = (*BikeRepository)(nil)
