package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from JourneyStatus
		to   JourneyStatus
		want bool
	}{
		{JourneyStatusPending, JourneyStatusActive, true},
		{JourneyStatusPending, JourneyStatusPaused, false},
		{JourneyStatusPending, JourneyStatusCompleted, false},
		{JourneyStatusActive, JourneyStatusPaused, true},
		{JourneyStatusActive, JourneyStatusCompleted, true},
		{JourneyStatusActive, JourneyStatusActive, false},
		{JourneyStatusPaused, JourneyStatusActive, true},
		{JourneyStatusPaused, JourneyStatusPaused, false},
		{JourneyStatusPaused, JourneyStatusCompleted, true},
		{JourneyStatusCompleted, JourneyStatusActive, false},
		{JourneyStatusCompleted, JourneyStatusCompleted, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRideJourney_PauseOnPendingFails(t *testing.T) {
	t.Parallel()

	j := &RideJourney{ID: "journey-1", Status: JourneyStatusPending}

	if err := j.Pause(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if j.Status != JourneyStatusPending {
		t.Errorf("status changed to %s", j.Status)
	}
}

func TestRideJourney_FullLifecycle(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	j := &RideJourney{ID: "journey-1", Status: JourneyStatusPending}

	if err := j.Start(base); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := j.Pause(base.Add(10 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := j.Pause(base.Add(11 * time.Minute)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second pause: expected ErrInvalidTransition, got %v", err)
	}
	if err := j.Resume(base.Add(15 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := j.Resume(base.Add(16 * time.Minute)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second resume: expected ErrInvalidTransition, got %v", err)
	}
	if err := j.Complete(base.Add(30 * time.Minute)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if j.Status != JourneyStatusCompleted {
		t.Errorf("expected completed, got %s", j.Status)
	}
	if !j.EndTime.After(j.StartTime) {
		t.Errorf("expected endTime > startTime, got %v <= %v", j.EndTime, j.StartTime)
	}
	if j.TotalPaused != 5*time.Minute {
		t.Errorf("expected 5m paused, got %v", j.TotalPaused)
	}
	if got := j.ActiveDuration(time.Time{}); got != 25*time.Minute {
		t.Errorf("expected 25m active, got %v", got)
	}
}

func TestRideJourney_CompleteWhilePausedClosesPause(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	j := &RideJourney{Status: JourneyStatusActive, StartTime: base}

	_ = j.Pause(base.Add(5 * time.Minute))
	if err := j.Complete(base.Add(8 * time.Minute)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if j.TotalPaused != 3*time.Minute {
		t.Errorf("expected 3m paused, got %v", j.TotalPaused)
	}
	if !j.PausedAt.IsZero() {
		t.Error("expected pausedAt to be cleared")
	}
}

func TestRideJourney_CompleteIsTerminal(t *testing.T) {
	t.Parallel()

	j := &RideJourney{Status: JourneyStatusCompleted, EndTime: time.Now()}
	now := time.Now()

	for name, fn := range map[string]func(time.Time) error{
		"start":    j.Start,
		"pause":    j.Pause,
		"resume":   j.Resume,
		"complete": j.Complete,
	} {
		if err := fn(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s on completed journey: expected ErrInvalidTransition, got %v", name, err)
		}
	}
}
