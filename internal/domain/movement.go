package domain

// PatternType is a coarse behavioural classification of recent movement.
type PatternType string

const (
	PatternStationary PatternType = "STATIONARY"
	PatternCircular   PatternType = "CIRCULAR"
	PatternZigzag     PatternType = "ZIGZAG"
	PatternLinear     PatternType = "LINEAR"

	// PatternInsufficientData is reported when fewer than three usable
	// samples are available.
	PatternInsufficientData PatternType = "INSUFFICIENT_DATA"
)

// MovementPattern is derived on demand from a window of samples and never
// persisted. Duration is milliseconds, Distance is metres.
type MovementPattern struct {
	Type       PatternType `json:"type"`
	Confidence float64     `json:"confidence"`
	Duration   int64       `json:"duration"`
	Distance   float64     `json:"distance"`
}

// Insufficient reports whether the window was too small to classify.
func (p MovementPattern) Insufficient() bool {
	return p.Type == PatternInsufficientData
}
