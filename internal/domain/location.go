package domain

import (
	"math"
	"sort"
	"time"
)

// LocationSample is a single GPS fix pushed by the customer's device while a
// ride journey is active. Timestamp is epoch milliseconds.
type LocationSample struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Timestamp  int64   `json:"timestamp"`
	CustomerID string  `json:"customerId"`
}

// Time returns the sample timestamp as a time.Time.
func (s LocationSample) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// TrackingPoint is the durable copy of one LocationSample. The tuple
// (RideJourneyID, Timestamp, Lat, Lng) is its natural key.
type TrackingPoint struct {
	RideJourneyID string
	Lat           float64
	Lng           float64
	Timestamp     int64
}

// TrackingPath is the ready-to-render snapshot of a finished journey. At
// most one exists per ride journey.
type TrackingPath struct {
	RideJourneyID string
	Points        []LocationSample
	CreatedAt     time.Time
}

// Valid reports whether the sample carries usable coordinates and a
// positive timestamp.
func (s LocationSample) Valid() bool {
	if s.Timestamp <= 0 {
		return false
	}
	if math.IsNaN(s.Lat) || math.IsNaN(s.Lng) || math.IsInf(s.Lat, 0) || math.IsInf(s.Lng, 0) {
		return false
	}
	return s.Lat >= -90 && s.Lat <= 90 && s.Lng >= -180 && s.Lng <= 180
}

// NormalizeSamples returns a copy of samples sorted ascending by timestamp
// with exact (timestamp, lat, lng) duplicates removed.
func NormalizeSamples(samples []LocationSample) []LocationSample {
	out := make([]LocationSample, len(samples))
	copy(out, samples)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Lng < out[j].Lng
	})

	deduped := out[:0]
	for _, s := range out {
		if n := len(deduped); n > 0 {
			prev := deduped[n-1]
			if prev.Timestamp == s.Timestamp && prev.Lat == s.Lat && prev.Lng == s.Lng {
				continue
			}
		}
		deduped = append(deduped, s)
	}
	return deduped
}
