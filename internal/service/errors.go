package service

import (
	"errors"

	"bikeride/internal/domain"
)

var (
	// ErrInvalidTransition is returned when a journey cannot move to the
	// requested status from its current one.
	ErrInvalidTransition = domain.ErrInvalidTransition

	// ErrEphemeralStoreUnavailable is returned when draining, deleting or
	// appending live samples fails. Completion aborts before any durable
	// write and is safe to retry.
	ErrEphemeralStoreUnavailable = errors.New("ephemeral store unavailable")

	// ErrDurablePersistenceFailure is returned when tracking points, the path
	// snapshot or the final state transition could not be written. Ephemeral
	// samples are kept, so a retry loses nothing.
	ErrDurablePersistenceFailure = errors.New("durable persistence failure")

	// ErrNotificationDeliveryFailure marks a failed notification send. It is
	// logged and counted, never returned from completion.
	ErrNotificationDeliveryFailure = errors.New("notification delivery failure")

	// ErrInvalidJourneyID is returned when ride journey ID is empty.
	ErrInvalidJourneyID = errors.New("invalid ride journey id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrBookingMismatch is returned when a journey does not belong to the
	// given booking.
	ErrBookingMismatch = errors.New("ride journey does not belong to booking")

	// ErrBookingNotActive is returned when a journey is requested for a
	// completed or cancelled booking.
	ErrBookingNotActive = errors.New("booking is not active")

	// ErrBookingHasOpenJourney is returned when a booking already owns a
	// pending, active or paused journey.
	ErrBookingHasOpenJourney = errors.New("booking already has an open ride journey")

	// ErrInvalidLocation is returned when sample coordinates or timestamp are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrJourneyNotActive is returned when samples are pushed to a journey
	// that is not active.
	ErrJourneyNotActive = errors.New("ride journey not active")

	// ErrCustomerMismatch is returned when a sample is pushed by someone other
	// than the journey's customer.
	ErrCustomerMismatch = errors.New("sample customer does not match ride journey")

	// ErrInvalidStatus is returned when filtering by an unknown status.
	ErrInvalidStatus = errors.New("invalid ride journey status")

	// ErrJourneyNotCompleted is returned when a path is requested before the
	// journey has been completed.
	ErrJourneyNotCompleted = errors.New("ride journey not completed")
)
