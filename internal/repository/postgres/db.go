package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"bikeride/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// TxManager implements repository.Transactor on a *sql.DB.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn with transaction-scoped repositories.
func (m *TxManager) WithinTx(ctx context.Context, fn func(repository.TxRepositories) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	if err = fn(repository.TxRepositories{
		Journeys: NewRideJourneyRepositoryWithTx(tx),
		Bookings: NewBookingRepositoryWithTx(tx),
		Bikes:    NewBikeRepositoryWithTx(tx),
	}); err != nil {
		return err
	}

	return tx.Commit()
}

var _ repository.Transactor = (*TxManager)(nil)
