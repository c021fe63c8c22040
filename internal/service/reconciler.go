package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
	"bikeride/internal/metrics"
	"bikeride/internal/repository"
)

// Reconciler completes ride journeys: it flushes the live samples into
// durable storage, clears them, finalises journey, booking and bike in one
// transaction, and fans out notifications.
//
// Every step is idempotent, so duplicate or concurrent completions of the
// same journey converge on one end state without locking.
type Reconciler struct {
	tx            repository.Transactor
	journeys      repository.RideJourneyRepository
	bikes         repository.BikeRepository
	tracking      repository.TrackingRepository
	store         ephemeral.Store
	notifications *NotificationService
	retry         RetryPolicy
	now           func() time.Time
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	tx repository.Transactor,
	journeys repository.RideJourneyRepository,
	bikes repository.BikeRepository,
	tracking repository.TrackingRepository,
	store ephemeral.Store,
	notifications *NotificationService,
	retry RetryPolicy,
) *Reconciler {
	return &Reconciler{
		tx:            tx,
		journeys:      journeys,
		bikes:         bikes,
		tracking:      tracking,
		store:         store,
		notifications: notifications,
		retry:         retry,
		now:           time.Now,
	}
}

// CompleteRide runs the completion protocol and returns the journey's end
// time. Completing an already completed journey returns its end time with
// no side effects. On failure nothing already made durable is undone and
// the call can be repeated.
func (r *Reconciler) CompleteRide(ctx context.Context, bookingID, journeyID string) (endTime time.Time, err error) {
	start := time.Now()
	outcome := metrics.OutcomeRejected
	defer func() {
		metrics.CompletionsTotal.WithLabelValues(outcome).Inc()
		metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	}()

	if bookingID == "" {
		return time.Time{}, ErrInvalidBookingID
	}
	if journeyID == "" {
		return time.Time{}, ErrInvalidJourneyID
	}

	journey, err := r.loadJourney(ctx, journeyID)
	if err != nil {
		return time.Time{}, err
	}
	if journey.BookingID != bookingID {
		return time.Time{}, ErrBookingMismatch
	}

	// Step 0: already completed, nothing to do.
	if journey.Status == domain.JourneyStatusCompleted {
		outcome = metrics.OutcomeAlreadyCompleted
		return journey.EndTime, nil
	}
	if !domain.CanTransition(journey.Status, domain.JourneyStatusCompleted) {
		return time.Time{}, ErrInvalidTransition
	}

	// Step 1: drain.
	samples, err := r.drain(ctx, journeyID)
	if err != nil {
		outcome = metrics.OutcomeEphemeralFailure
		return time.Time{}, err
	}

	// Steps 2 and 3: persist points and snapshot.
	if err := r.persist(ctx, journeyID, samples); err != nil {
		outcome = metrics.OutcomeDurableFailure
		return time.Time{}, err
	}

	// Step 4: clear ephemeral state, only after persistence succeeded.
	if err := r.clear(ctx, journeyID); err != nil {
		outcome = metrics.OutcomeEphemeralFailure
		return time.Time{}, err
	}

	// Step 5: journey, booking and bike in one transaction.
	transitioned, err := r.finalize(ctx, journey)
	if err != nil {
		outcome = metrics.OutcomeDurableFailure
		return time.Time{}, err
	}

	if !transitioned {
		// A concurrent completion won the conditional update.
		current, err := r.loadJourney(ctx, journeyID)
		if err != nil {
			return time.Time{}, err
		}
		if current.Status != domain.JourneyStatusCompleted {
			return time.Time{}, ErrInvalidTransition
		}
		outcome = metrics.OutcomeAlreadyCompleted
		return current.EndTime, nil
	}

	outcome = metrics.OutcomeCompleted

	// Step 6: notify. The state is final, so the request's cancellation no
	// longer applies.
	r.notify(context.WithoutCancel(ctx), journey, samples)

	return journey.EndTime, nil
}

func (r *Reconciler) loadJourney(ctx context.Context, journeyID string) (*domain.RideJourney, error) {
	var journey *domain.RideJourney
	err := r.retry.Do(ctx, "get_journey", func(ctx context.Context) error {
		var err error
		journey, err = r.journeys.GetByID(ctx, journeyID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading journey %s: %v", ErrDurablePersistenceFailure, journeyID, err)
	}
	return journey, nil
}

// drain reads every live sample and returns the valid ones ordered by
// timestamp without duplicates. An empty result is not an error.
func (r *Reconciler) drain(ctx context.Context, journeyID string) ([]domain.LocationSample, error) {
	defer startSegment(ctx, "reconciler/drain").End()

	var raw []domain.LocationSample
	err := r.retry.Do(ctx, "ephemeral_read_all", func(ctx context.Context) error {
		var err error
		raw, err = r.store.ReadAll(ctx, journeyID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: draining journey %s: %v", ErrEphemeralStoreUnavailable, journeyID, err)
	}

	valid := make([]domain.LocationSample, 0, len(raw))
	for _, s := range raw {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	if dropped := len(raw) - len(valid); dropped > 0 {
		log.Printf("[RECONCILER] journey %s: dropped %d malformed samples", journeyID, dropped)
	}

	samples := domain.NormalizeSamples(valid)
	if len(samples) == 0 {
		log.Printf("[RECONCILER] journey %s: no samples to flush", journeyID)
	}
	return samples, nil
}

func (r *Reconciler) persist(ctx context.Context, journeyID string, samples []domain.LocationSample) error {
	if len(samples) == 0 {
		return nil
	}

	defer startSegment(ctx, "reconciler/persist").End()

	var inserted int64
	err := r.retry.Do(ctx, "insert_points", func(ctx context.Context) error {
		var err error
		inserted, err = r.tracking.InsertPoints(ctx, journeyID, samples)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: inserting points for journey %s: %v", ErrDurablePersistenceFailure, journeyID, err)
	}
	metrics.SamplesFlushed.Add(float64(inserted))

	var created bool
	err = r.retry.Do(ctx, "create_path", func(ctx context.Context) error {
		var err error
		created, err = r.tracking.CreatePath(ctx, &domain.TrackingPath{
			RideJourneyID: journeyID,
			Points:        samples,
			CreatedAt:     r.now(),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: creating path for journey %s: %v", ErrDurablePersistenceFailure, journeyID, err)
	}

	log.Printf("[RECONCILER] journey %s: %d samples drained, %d points inserted, path created=%t",
		journeyID, len(samples), inserted, created)
	return nil
}

func (r *Reconciler) clear(ctx context.Context, journeyID string) error {
	defer startSegment(ctx, "reconciler/clear").End()

	err := r.retry.Do(ctx, "ephemeral_delete_all", func(ctx context.Context) error {
		return r.store.DeleteAll(ctx, journeyID)
	})
	if err != nil {
		return fmt.Errorf("%w: clearing journey %s: %v", ErrEphemeralStoreUnavailable, journeyID, err)
	}
	return nil
}

// finalize completes the journey, the booking and the bike atomically. It
// reports false when the journey was no longer active or paused, in which
// case nothing was written.
func (r *Reconciler) finalize(ctx context.Context, journey *domain.RideJourney) (bool, error) {
	defer startSegment(ctx, "reconciler/finalize").End()

	completed := *journey
	if err := completed.Complete(r.now()); err != nil {
		return false, err
	}

	var transitioned bool
	err := r.retry.Do(ctx, "finalize", func(ctx context.Context) error {
		transitioned = false
		return r.tx.WithinTx(ctx, func(repos repository.TxRepositories) error {
			ok, err := repos.Journeys.UpdateStatus(ctx, &completed, domain.JourneyStatusActive, domain.JourneyStatusPaused)
			if err != nil || !ok {
				return err
			}
			if err := repos.Bookings.SetStatus(ctx, completed.BookingID, domain.BookingStatusCompleted); err != nil {
				return err
			}
			if err := repos.Bikes.SetAvailability(ctx, completed.BikeID, true); err != nil {
				return err
			}
			transitioned = true
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("%w: finalizing journey %s: %v", ErrDurablePersistenceFailure, journey.ID, err)
	}

	if transitioned {
		*journey = completed
	}
	return transitioned, nil
}

// notify fans the summaries out. Failures are logged by the notification
// service and never reach the caller.
func (r *Reconciler) notify(ctx context.Context, journey *domain.RideJourney, samples []domain.LocationSample) {
	if r.notifications == nil {
		return
	}

	defer startSegment(ctx, "reconciler/notify").End()

	// A retry after the ephemeral delete drains nothing; the durable path
	// still describes the ride.
	points := samples
	if len(points) == 0 {
		if path, err := r.tracking.GetPath(ctx, journey.ID); err == nil {
			points = path.Points
		}
	}

	var ownerID string
	bike, err := r.bikes.GetByID(ctx, journey.BikeID)
	if err != nil {
		log.Printf("[NOTIFICATION] %v: resolving owner of bike %s: %v", ErrNotificationDeliveryFailure, journey.BikeID, err)
	} else {
		ownerID = bike.OwnerID
	}

	report := r.notifications.NotifyRideCompleted(ctx, BuildRideSummary(journey, points), ownerID)
	log.Printf("[RECONCILER] journey %s completed: %d notifications sent, %d failed", journey.ID, report.Sent, report.Failed)
}

// startSegment times one protocol step when the request carries a New Relic
// transaction.
func startSegment(ctx context.Context, name string) *newrelic.Segment {
	if txn := newrelic.FromContext(ctx); txn != nil {
		return txn.StartSegment(name)
	}
	return nil
}
