// Package notify defines the out-of-band notification contract used at ride
// completion.
package notify

import (
	"context"
	"log"
)

// Event types fanned out when a ride completes.
const (
	EventRideSummary    = "ride_summary"
	EventBookingSummary = "booking_summary"
)

// Gateway delivers one event to one recipient. Callers treat delivery as
// fire-and-forget: an error is logged, never retried synchronously.
type Gateway interface {
	Notify(ctx context.Context, recipientID, eventType string, payload map[string]any) error
}

// LogGateway writes notifications to the process log.
type LogGateway struct{}

// NewLogGateway creates a new LogGateway.
func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

// Notify logs the notification.
func (g *LogGateway) Notify(ctx context.Context, recipientID, eventType string, payload map[string]any) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Payload=%v", eventType, recipientID, payload)
	return nil
}

var _ Gateway = (*LogGateway)(nil)
