package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
	"bikeride/internal/metrics"
	"bikeride/internal/movement"
	"bikeride/internal/redis"
	"bikeride/internal/repository"
)

// MovementService derives movement patterns for the live map.
type MovementService struct {
	journeys   repository.RideJourneyRepository
	tracking   repository.TrackingRepository
	store      ephemeral.Store
	cache      redis.PatternCacheInterface
	classifier *movement.Classifier
	now        func() time.Time
}

// NewMovementService creates a new MovementService. cache may be nil.
func NewMovementService(
	journeys repository.RideJourneyRepository,
	tracking repository.TrackingRepository,
	store ephemeral.Store,
	cache redis.PatternCacheInterface,
	classifier *movement.Classifier,
) *MovementService {
	return &MovementService{
		journeys:   journeys,
		tracking:   tracking,
		store:      store,
		cache:      cache,
		classifier: classifier,
		now:        time.Now,
	}
}

// LiveFrame is one update of the live map feed.
type LiveFrame struct {
	Journey *domain.RideJourney    `json:"journey"`
	Latest  *domain.LocationSample `json:"latest,omitempty"`
	Pattern domain.MovementPattern `json:"pattern"`
	At      time.Time              `json:"at"`
}

// GetMovementPattern classifies the journey's most recent samples. Fewer
// than three usable samples yields an insufficient-data pattern, not an
// error.
func (s *MovementService) GetMovementPattern(ctx context.Context, journeyID string) (domain.MovementPattern, error) {
	if journeyID == "" {
		return domain.MovementPattern{}, ErrInvalidJourneyID
	}

	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return domain.MovementPattern{}, err
	}

	if cached := s.cached(ctx, journeyID); cached != nil {
		return *cached, nil
	}

	samples, err := s.window(ctx, journey)
	if err != nil {
		return domain.MovementPattern{}, err
	}

	return s.classify(ctx, journeyID, samples), nil
}

// Snapshot builds one live frame for the journey.
func (s *MovementService) Snapshot(ctx context.Context, journeyID string) (*LiveFrame, error) {
	if journeyID == "" {
		return nil, ErrInvalidJourneyID
	}

	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	samples, err := s.window(ctx, journey)
	if err != nil {
		return nil, err
	}

	frame := &LiveFrame{Journey: journey, At: s.now()}
	if n := len(samples); n > 0 {
		latest := samples[n-1]
		frame.Latest = &latest
	}

	if cached := s.cached(ctx, journeyID); cached != nil {
		frame.Pattern = *cached
	} else {
		frame.Pattern = s.classify(ctx, journeyID, samples)
	}

	return frame, nil
}

// Watch emits a frame immediately and then every interval until ctx is
// cancelled, emit fails, or the journey completes. The final frame of a
// completed journey is emitted before returning.
func (s *MovementService) Watch(ctx context.Context, journeyID string, interval time.Duration, emit func(*LiveFrame) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		frame, err := s.Snapshot(ctx, journeyID)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := emit(frame); err != nil {
			return err
		}

		if frame.Journey.Status == domain.JourneyStatusCompleted {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// window returns the samples the classifier should see: live samples while
// the ride is open, durable points once it is completed.
func (s *MovementService) window(ctx context.Context, journey *domain.RideJourney) ([]domain.LocationSample, error) {
	limit := s.classifier.Config().Window

	switch journey.Status {
	case domain.JourneyStatusActive, domain.JourneyStatusPaused:
		samples, err := s.store.ReadAll(ctx, journey.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEphemeralStoreUnavailable, err)
		}
		samples = domain.NormalizeSamples(samples)
		if len(samples) > limit {
			samples = samples[len(samples)-limit:]
		}
		return samples, nil

	case domain.JourneyStatusCompleted:
		return s.tracking.RecentPoints(ctx, journey.ID, limit)

	default:
		return nil, nil
	}
}

func (s *MovementService) classify(ctx context.Context, journeyID string, samples []domain.LocationSample) domain.MovementPattern {
	pattern := s.classifier.Classify(samples)
	metrics.PatternsClassified.WithLabelValues(string(pattern.Type)).Inc()

	if s.cache != nil {
		if err := s.cache.SetPattern(ctx, journeyID, pattern); err != nil {
			log.Printf("[MOVEMENT] caching pattern for journey %s: %v", journeyID, err)
		}
	}
	return pattern
}

func (s *MovementService) cached(ctx context.Context, journeyID string) *domain.MovementPattern {
	if s.cache == nil {
		return nil
	}
	pattern, err := s.cache.GetPattern(ctx, journeyID)
	if err != nil {
		log.Printf("[MOVEMENT] reading cached pattern for journey %s: %v", journeyID, err)
		return nil
	}
	return pattern
}
