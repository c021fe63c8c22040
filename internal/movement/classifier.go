// Package movement derives a coarse movement pattern from a window of recent
// location samples. Results are advisory and never gate ride state.
package movement

import (
	"math"

	"bikeride/internal/domain"
	"bikeride/internal/geo"
)

// Config holds the classifier thresholds. All values are policy, not derived.
type Config struct {
	Window     int // most recent samples considered
	MinSamples int // below this the result is insufficient data

	StationaryMaxDistance float64 // metres, total path length
	CircularTargetDegrees float64 // expected cumulative turn for a loop
	CircularTolerance     float64 // degrees either side of the target
	ZigzagMinAlternation  float64 // fraction of interior angles that flip sign
	MinTurnDegrees        float64 // smaller turns count as straight

	StationaryConfidence float64
	CircularConfidence   float64
	ZigzagConfidence     float64
	LinearConfidence     float64
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		Window:     20,
		MinSamples: 3,

		StationaryMaxDistance: 50,
		CircularTargetDegrees: 360,
		CircularTolerance:     45,
		ZigzagMinAlternation:  0.6,
		MinTurnDegrees:        1,

		StationaryConfidence: 0.9,
		CircularConfidence:   0.8,
		ZigzagConfidence:     0.7,
		LinearConfidence:     0.6,
	}
}

// Classifier turns sample windows into movement patterns.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a Classifier. Zero-valued window settings fall back
// to the defaults.
func NewClassifier(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MinSamples < 3 {
		cfg.MinSamples = def.MinSamples
	}
	return &Classifier{cfg: cfg}
}

// Config returns the configuration in use.
func (c *Classifier) Config() Config {
	return c.cfg
}

// series holds the values derived from consecutive samples.
type series struct {
	distances  []float64 // metres between consecutive samples
	turns      []float64 // signed degrees at each interior sample
	timeDeltas []int64   // milliseconds between consecutive samples
}

// Classify returns the pattern for the most recent samples. Malformed
// samples are dropped, the rest are ordered by timestamp and deduplicated.
// Fewer than MinSamples usable samples yields PatternInsufficientData.
func (c *Classifier) Classify(samples []domain.LocationSample) domain.MovementPattern {
	window := c.window(samples)
	s := derive(window)

	pattern := domain.MovementPattern{
		Duration: sumInt(s.timeDeltas),
		Distance: sum(s.distances),
	}

	if len(window) < c.cfg.MinSamples {
		pattern.Type = domain.PatternInsufficientData
		return pattern
	}

	switch {
	case pattern.Distance < c.cfg.StationaryMaxDistance:
		pattern.Type = domain.PatternStationary
		pattern.Confidence = c.cfg.StationaryConfidence
	case c.isCircular(s.turns):
		pattern.Type = domain.PatternCircular
		pattern.Confidence = c.cfg.CircularConfidence
	case c.isZigzag(s.turns):
		pattern.Type = domain.PatternZigzag
		pattern.Confidence = c.cfg.ZigzagConfidence
	default:
		pattern.Type = domain.PatternLinear
		pattern.Confidence = c.cfg.LinearConfidence
	}

	return pattern
}

func (c *Classifier) window(samples []domain.LocationSample) []domain.LocationSample {
	usable := make([]domain.LocationSample, 0, len(samples))
	for _, s := range samples {
		if s.Valid() {
			usable = append(usable, s)
		}
	}

	usable = domain.NormalizeSamples(usable)
	if len(usable) > c.cfg.Window {
		usable = usable[len(usable)-c.cfg.Window:]
	}
	return usable
}

func derive(points []domain.LocationSample) series {
	var s series
	if len(points) < 2 {
		return s
	}

	bearings := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		s.distances = append(s.distances, geo.Distance(a.Lat, a.Lng, b.Lat, b.Lng))
		s.timeDeltas = append(s.timeDeltas, b.Timestamp-a.Timestamp)
		bearings = append(bearings, geo.Bearing(a.Lat, a.Lng, b.Lat, b.Lng))
	}

	for i := 1; i < len(bearings); i++ {
		s.turns = append(s.turns, geo.TurnAngle(bearings[i-1], bearings[i]))
	}
	return s
}

// isCircular reports whether the cumulative absolute turn is close to one
// full revolution.
func (c *Classifier) isCircular(turns []float64) bool {
	if len(turns) == 0 {
		return false
	}
	total := 0.0
	for _, t := range turns {
		total += math.Abs(t)
	}
	return math.Abs(total-c.cfg.CircularTargetDegrees) <= c.cfg.CircularTolerance
}

// isZigzag counts sign flips between consecutive interior angles over the
// number of interior angles. A straight segment never counts as a flip.
func (c *Classifier) isZigzag(turns []float64) bool {
	if len(turns) == 0 {
		return false
	}
	alternations := 0
	for i := 1; i < len(turns); i++ {
		prev, cur := c.sign(turns[i-1]), c.sign(turns[i])
		if prev != 0 && cur != 0 && prev != cur {
			alternations++
		}
	}
	return float64(alternations)/float64(len(turns)) >= c.cfg.ZigzagMinAlternation
}

func (c *Classifier) sign(turn float64) int {
	switch {
	case turn > 0 && turn >= c.cfg.MinTurnDegrees:
		return 1
	case turn < 0 && turn <= -c.cfg.MinTurnDegrees:
		return -1
	default:
		return 0
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func sumInt(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}
