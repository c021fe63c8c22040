package repository

import "context"

// TxRepositories are repositories bound to one transaction.
type TxRepositories struct {
	Journeys RideJourneyRepository
	Bookings BookingRepository
	Bikes    BikeRepository
}

// Transactor runs fn inside a single database transaction. The transaction
// commits if fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(TxRepositories) error) error
}
