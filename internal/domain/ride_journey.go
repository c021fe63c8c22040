package domain

import (
	"errors"
	"time"
)

// ErrInvalidTransition is returned when a ride journey is asked to move to a
// status its current status does not allow.
var ErrInvalidTransition = errors.New("invalid ride journey transition")

// JourneyStatus represents the lifecycle status of a ride journey.
type JourneyStatus string

const (
	JourneyStatusPending   JourneyStatus = "pending"
	JourneyStatusActive    JourneyStatus = "active"
	JourneyStatusPaused    JourneyStatus = "paused"
	JourneyStatusCompleted JourneyStatus = "completed"
)

// Valid reports whether s is a known status.
func (s JourneyStatus) Valid() bool {
	switch s {
	case JourneyStatusPending, JourneyStatusActive, JourneyStatusPaused, JourneyStatusCompleted:
		return true
	}
	return false
}

// Open reports whether a journey in this status still holds its booking.
func (s JourneyStatus) Open() bool {
	return s == JourneyStatusPending || s == JourneyStatusActive || s == JourneyStatusPaused
}

// AllowedTransitions is the journey state diagram as code. Completed is
// terminal; pending can only move to active.
var AllowedTransitions = map[JourneyStatus][]JourneyStatus{
	JourneyStatusPending: {JourneyStatusActive},
	JourneyStatusActive:  {JourneyStatusPaused, JourneyStatusCompleted},
	JourneyStatusPaused:  {JourneyStatusActive, JourneyStatusCompleted},
}

// CanTransition reports whether from -> to is an edge of the state diagram.
func CanTransition(from, to JourneyStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RideJourney is the tracked lifecycle of a single rental ride, from
// tracking start to completion.
type RideJourney struct {
	ID          string
	BookingID   string
	BikeID      string
	CustomerID  string
	Status      JourneyStatus
	StartTime   time.Time
	EndTime     time.Time
	PausedAt    time.Time     // set while paused
	TotalPaused time.Duration // closed pauses only
	CreatedAt   time.Time
}

// Start moves a pending journey to active.
func (j *RideJourney) Start(now time.Time) error {
	if j.Status != JourneyStatusPending {
		return ErrInvalidTransition
	}
	j.Status = JourneyStatusActive
	j.StartTime = now
	return nil
}

// Pause moves an active journey to paused.
func (j *RideJourney) Pause(now time.Time) error {
	if j.Status != JourneyStatusActive {
		return ErrInvalidTransition
	}
	j.Status = JourneyStatusPaused
	j.PausedAt = now
	return nil
}

// Resume moves a paused journey back to active.
func (j *RideJourney) Resume(now time.Time) error {
	if j.Status != JourneyStatusPaused {
		return ErrInvalidTransition
	}
	j.closePause(now)
	j.Status = JourneyStatusActive
	return nil
}

// Complete terminates an active or paused journey.
func (j *RideJourney) Complete(now time.Time) error {
	if !CanTransition(j.Status, JourneyStatusCompleted) {
		return ErrInvalidTransition
	}
	if j.Status == JourneyStatusPaused {
		j.closePause(now)
	}
	j.Status = JourneyStatusCompleted
	j.EndTime = now
	return nil
}

// ActiveDuration is the ridden time excluding pauses. For journeys that are
// not completed it is measured up to now.
func (j *RideJourney) ActiveDuration(now time.Time) time.Duration {
	if j.StartTime.IsZero() {
		return 0
	}
	end := now
	if !j.EndTime.IsZero() {
		end = j.EndTime
	}
	paused := j.TotalPaused
	if j.Status == JourneyStatusPaused && !j.PausedAt.IsZero() {
		paused += end.Sub(j.PausedAt)
	}
	d := end.Sub(j.StartTime) - paused
	if d < 0 {
		return 0
	}
	return d
}

func (j *RideJourney) closePause(now time.Time) {
	if !j.PausedAt.IsZero() {
		j.TotalPaused += now.Sub(j.PausedAt)
	}
	j.PausedAt = time.Time{}
}
