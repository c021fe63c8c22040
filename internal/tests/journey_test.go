package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bikeride/internal/domain"
	"bikeride/internal/repository"
	"bikeride/internal/service"
)

// ──────────────────────────────────────────────
// JOURNEY CREATION
// ──────────────────────────────────────────────

func TestCreateJourney_CreatesPendingJourney(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusCompleted)

	journey, err := env.Journey.CreateJourney(context.Background(), BookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if journey.Status != domain.JourneyStatusPending {
		t.Errorf("expected status pending, got %s", journey.Status)
	}
	if journey.CustomerID != CustomerID || journey.BikeID != BikeID {
		t.Errorf("expected customer %s and bike %s, got %s and %s", CustomerID, BikeID, journey.CustomerID, journey.BikeID)
	}
	if journey.ID == "" || journey.ID == JourneyID {
		t.Errorf("expected a fresh journey ID, got %q", journey.ID)
	}
	if env.Journeys.GetJourney(journey.ID) == nil {
		t.Error("expected journey to be stored")
	}
}

func TestCreateJourney_RejectsSecondOpenJourney(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusActive)

	_, err := env.Journey.CreateJourney(context.Background(), BookingID)
	if err != service.ErrBookingHasOpenJourney {
		t.Errorf("expected ErrBookingHasOpenJourney, got %v", err)
	}
	if env.Journeys.CreateCallCount != 0 {
		t.Error("expected no create attempt")
	}
}

func TestCreateJourney_LostRaceReportsOpenJourney(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusCompleted)
	env.Journeys.CreateError = repository.ErrConflict

	_, err := env.Journey.CreateJourney(context.Background(), BookingID)
	if err != service.ErrBookingHasOpenJourney {
		t.Errorf("expected ErrBookingHasOpenJourney, got %v", err)
	}
}

func TestCreateJourney_Validation(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusCompleted)
	env.Bookings.AddBooking(&domain.Booking{ID: "cancelled", CustomerID: CustomerID, BikeID: BikeID, Status: domain.BookingStatusCancelled})

	testCases := []struct {
		name      string
		bookingID string
		want      error
	}{
		{"empty booking", "", service.ErrInvalidBookingID},
		{"unknown booking", "missing", repository.ErrNotFound},
		{"cancelled booking", "cancelled", service.ErrBookingNotActive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Journey.CreateJourney(context.Background(), tc.bookingID)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

// ──────────────────────────────────────────────
// STATE TRANSITIONS
// ──────────────────────────────────────────────

func TestJourney_StartPauseResume(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusPending)
	ctx := context.Background()

	journey, err := env.Journey.StartRide(ctx, JourneyID)
	if err != nil {
		t.Fatalf("start: unexpected error: %v", err)
	}
	if journey.Status != domain.JourneyStatusActive || journey.StartTime.IsZero() {
		t.Errorf("expected active journey with start time, got %s at %v", journey.Status, journey.StartTime)
	}

	if journey, err = env.Journey.PauseRide(ctx, JourneyID); err != nil {
		t.Fatalf("pause: unexpected error: %v", err)
	}
	if journey.Status != domain.JourneyStatusPaused {
		t.Errorf("expected paused, got %s", journey.Status)
	}

	if journey, err = env.Journey.ResumeRide(ctx, JourneyID); err != nil {
		t.Fatalf("resume: unexpected error: %v", err)
	}
	if journey.Status != domain.JourneyStatusActive {
		t.Errorf("expected active, got %s", journey.Status)
	}
	if !journey.PausedAt.IsZero() {
		t.Error("expected pause to be closed")
	}

	if got := env.Journeys.GetJourney(JourneyID).Status; got != domain.JourneyStatusActive {
		t.Errorf("expected stored status active, got %s", got)
	}
}

func TestJourney_InvalidTransitions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status domain.JourneyStatus
		op     func(*service.JourneyService, context.Context, string) (*domain.RideJourney, error)
	}{
		{"pause pending", domain.JourneyStatusPending, (*service.JourneyService).PauseRide},
		{"resume active", domain.JourneyStatusActive, (*service.JourneyService).ResumeRide},
		{"start active", domain.JourneyStatusActive, (*service.JourneyService).StartRide},
		{"start completed", domain.JourneyStatusCompleted, (*service.JourneyService).StartRide},
		{"resume completed", domain.JourneyStatusCompleted, (*service.JourneyService).ResumeRide},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := NewEnv(tc.status)

			_, err := tc.op(env.Journey, context.Background(), JourneyID)
			if !errors.Is(err, service.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
			if got := env.Journeys.GetJourney(JourneyID).Status; got != tc.status {
				t.Errorf("expected status unchanged at %s, got %s", tc.status, got)
			}
		})
	}
}

func TestJourney_ConcurrentPauseOnlyOneWins(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusActive)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Journey.PauseRide(context.Background(), JourneyID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, service.ErrInvalidTransition) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one successful pause, got %d", succeeded)
	}
}

// ──────────────────────────────────────────────
// QUERIES
// ──────────────────────────────────────────────

func TestListJourneys_FiltersByStatus(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusActive)
	env.Journeys.AddJourney(&domain.RideJourney{ID: "old", BookingID: "b-0", Status: domain.JourneyStatusCompleted, CreatedAt: time.Now().Add(-48 * time.Hour)})

	all, err := env.Journey.ListJourneys(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 journeys, got %d", len(all))
	}
	if all[0].ID != JourneyID {
		t.Errorf("expected most recent first, got %s", all[0].ID)
	}

	completed, err := env.Journey.ListJourneys(context.Background(), domain.JourneyStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "old" {
		t.Errorf("expected only the completed journey, got %d", len(completed))
	}

	if _, err := env.Journey.ListJourneys(context.Background(), "riding"); err != service.ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestGetPath(t *testing.T) {
	t.Parallel()

	t.Run("open journey", func(t *testing.T) {
		env := NewEnv(domain.JourneyStatusActive)
		if _, err := env.Journey.GetPath(context.Background(), JourneyID); err != service.ErrJourneyNotCompleted {
			t.Errorf("expected ErrJourneyNotCompleted, got %v", err)
		}
	})

	t.Run("completed without samples", func(t *testing.T) {
		env := NewEnv(domain.JourneyStatusActive)
		if _, err := env.Reconciler.CompleteRide(context.Background(), BookingID, JourneyID); err != nil {
			t.Fatalf("complete: %v", err)
		}

		path, err := env.Journey.GetPath(context.Background(), JourneyID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path.Points == nil || len(path.Points) != 0 {
			t.Errorf("expected an empty, non-nil path, got %v", path.Points)
		}
	})

	t.Run("completed with samples", func(t *testing.T) {
		env := NewEnv(domain.JourneyStatusActive)
		env.Push(Samples(4)...)
		if _, err := env.Reconciler.CompleteRide(context.Background(), BookingID, JourneyID); err != nil {
			t.Fatalf("complete: %v", err)
		}

		path, err := env.Journey.GetPath(context.Background(), JourneyID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(path.Points) != 4 {
			t.Errorf("expected 4 points, got %d", len(path.Points))
		}
	})
}
