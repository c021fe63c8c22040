package tests

import (
	"context"
	"errors"
	"testing"

	"bikeride/internal/domain"
	"bikeride/internal/service"
)

func TestIngestSample_AppendsToActiveJourney(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusActive)
	sample := Samples(1)[0]
	sample.CustomerID = ""

	if err := env.Ingestion.IngestSample(context.Background(), JourneyID, sample); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Device retries the same fix.
	if err := env.Ingestion.IngestSample(context.Background(), JourneyID, sample); err != nil {
		t.Fatalf("unexpected error on duplicate: %v", err)
	}

	if got := env.Store.Count(JourneyID); got != 1 {
		t.Errorf("expected 1 live sample, got %d", got)
	}
	stored, _ := env.Store.ReadAll(context.Background(), JourneyID)
	if stored[0].CustomerID != CustomerID {
		t.Errorf("expected customer filled from journey, got %q", stored[0].CustomerID)
	}
}

func TestIngestSample_Rejections(t *testing.T) {
	t.Parallel()

	valid := Samples(1)[0]
	stranger := valid
	stranger.CustomerID = "someone-else"

	testCases := []struct {
		name      string
		status    domain.JourneyStatus
		journeyID string
		sample    domain.LocationSample
		want      error
	}{
		{"empty journey id", domain.JourneyStatusActive, "", valid, service.ErrInvalidJourneyID},
		{"latitude out of range", domain.JourneyStatusActive, JourneyID, domain.LocationSample{Lat: 91, Lng: 2, Timestamp: 1}, service.ErrInvalidLocation},
		{"missing timestamp", domain.JourneyStatusActive, JourneyID, domain.LocationSample{Lat: 48, Lng: 2}, service.ErrInvalidLocation},
		{"pending journey", domain.JourneyStatusPending, JourneyID, valid, service.ErrJourneyNotActive},
		{"paused journey", domain.JourneyStatusPaused, JourneyID, valid, service.ErrJourneyNotActive},
		{"completed journey", domain.JourneyStatusCompleted, JourneyID, valid, service.ErrJourneyNotActive},
		{"other customer", domain.JourneyStatusActive, JourneyID, stranger, service.ErrCustomerMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := NewEnv(tc.status)

			err := env.Ingestion.IngestSample(context.Background(), tc.journeyID, tc.sample)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
			if env.Store.AppendCallCount != 0 {
				t.Error("expected nothing appended")
			}
		})
	}
}

func TestIngestSample_StoreFailure(t *testing.T) {
	t.Parallel()

	env := NewEnv(domain.JourneyStatusActive)
	env.Store.FailNextAppends(1, errBoom)

	err := env.Ingestion.IngestSample(context.Background(), JourneyID, Samples(1)[0])
	if !errors.Is(err, service.ErrEphemeralStoreUnavailable) {
		t.Errorf("expected ErrEphemeralStoreUnavailable, got %v", err)
	}
}
