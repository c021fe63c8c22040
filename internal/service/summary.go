package service

import (
	"time"

	"bikeride/internal/domain"
	"bikeride/internal/geo"
)

// RideSummary is the content of the ride-summary notification.
type RideSummary struct {
	RideJourneyID  string
	BookingID      string
	BikeID         string
	CustomerID     string
	StartTime      time.Time
	EndTime        time.Time
	Elapsed        time.Duration
	ActiveDuration time.Duration
	PointCount     int
	DistanceMeters float64
}

// BuildRideSummary summarises a completed journey and its path.
func BuildRideSummary(journey *domain.RideJourney, points []domain.LocationSample) RideSummary {
	return RideSummary{
		RideJourneyID:  journey.ID,
		BookingID:      journey.BookingID,
		BikeID:         journey.BikeID,
		CustomerID:     journey.CustomerID,
		StartTime:      journey.StartTime,
		EndTime:        journey.EndTime,
		Elapsed:        journey.EndTime.Sub(journey.StartTime),
		ActiveDuration: journey.ActiveDuration(journey.EndTime),
		PointCount:     len(points),
		DistanceMeters: PathDistance(points),
	}
}

// PathDistance is the great-circle length of an ordered path in metres.
func PathDistance(points []domain.LocationSample) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		total += geo.Distance(a.Lat, a.Lng, b.Lat, b.Lng)
	}
	return total
}

// RidePayload is the ride_summary notification payload.
func (s RideSummary) RidePayload() map[string]any {
	return map[string]any{
		"rideJourneyId":         s.RideJourneyID,
		"bookingId":             s.BookingID,
		"bikeId":                s.BikeID,
		"startTime":             s.StartTime,
		"endTime":               s.EndTime,
		"durationSeconds":       int64(s.Elapsed.Seconds()),
		"activeDurationSeconds": int64(s.ActiveDuration.Seconds()),
		"pointCount":            s.PointCount,
		"distanceMeters":        s.DistanceMeters,
	}
}

// BookingPayload is the booking_summary notification payload.
func (s RideSummary) BookingPayload(ownerID string) map[string]any {
	return map[string]any{
		"bookingId":     s.BookingID,
		"rideJourneyId": s.RideJourneyID,
		"bikeId":        s.BikeID,
		"customerId":    s.CustomerID,
		"ownerId":       ownerID,
		"status":        string(domain.BookingStatusCompleted),
		"endTime":       s.EndTime,
	}
}
