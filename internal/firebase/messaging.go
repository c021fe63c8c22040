package firebase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"firebase.google.com/go/v4/messaging"

	"bikeride/internal/domain"
	"bikeride/internal/notify"
)

// ErrNoDeviceToken is returned when the recipient has no registered device.
var ErrNoDeviceToken = errors.New("recipient has no device token")

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// UserDirectory resolves recipients to their device tokens.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// PushGateway delivers notifications as FCM data messages.
type PushGateway struct {
	sender MessageSender
	users  UserDirectory
}

// NewPushGateway creates a new PushGateway.
func NewPushGateway(sender MessageSender, users UserDirectory) *PushGateway {
	return &PushGateway{sender: sender, users: users}
}

var titles = map[string]string{
	notify.EventRideSummary:    "Ride completed",
	notify.EventBookingSummary: "Booking completed",
}

// Notify resolves the recipient's device and sends one FCM message.
func (g *PushGateway) Notify(ctx context.Context, recipientID, eventType string, payload map[string]any) error {
	user, err := g.users.GetByID(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("resolving recipient %s: %w", recipientID, err)
	}
	if user.DeviceToken == "" {
		return fmt.Errorf("%w: %s", ErrNoDeviceToken, recipientID)
	}

	msg := &messaging.Message{
		Token: user.DeviceToken,
		Data:  dataPayload(eventType, payload),
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if title, ok := titles[eventType]; ok {
		msg.Notification = &messaging.Notification{Title: title}
	}

	messageID, err := g.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending FCM to %s: %w", recipientID, err)
	}

	log.Printf("FCM sent type=%s recipient=%s message_id=%s", eventType, recipientID, messageID)
	return nil
}

// dataPayload flattens a payload into the string map FCM data messages carry.
func dataPayload(eventType string, payload map[string]any) map[string]string {
	data := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			data[k] = val
		case float64:
			data[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			data[k] = strconv.Itoa(val)
		case int64:
			data[k] = strconv.FormatInt(val, 10)
		case bool:
			data[k] = strconv.FormatBool(val)
		case time.Time:
			data[k] = val.UTC().Format(time.RFC3339)
		case fmt.Stringer:
			data[k] = val.String()
		default:
			data[k] = fmt.Sprint(val)
		}
	}
	data["type"] = eventType
	return data
}

var _ notify.Gateway = (*PushGateway)(nil)
