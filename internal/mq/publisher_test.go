package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"bikeride/internal/notify"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublisher_Notify(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p := NewPublisher(ch, "")

	err := p.Notify(context.Background(), "owner-1", notify.EventBookingSummary, map[string]any{"bookingId": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.sent) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(ch.sent))
	}
	got := ch.sent[0]
	if got.exchange != NotificationsExchange {
		t.Errorf("expected exchange %s, got %s", NotificationsExchange, got.exchange)
	}
	if got.key != "notification.booking_summary" {
		t.Errorf("unexpected routing key %s", got.key)
	}
	if got.msg.DeliveryMode != amqp091.Persistent {
		t.Error("expected persistent delivery")
	}

	var body NotificationMessage
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.RecipientID != "owner-1" || body.EventType != notify.EventBookingSummary {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Payload["bookingId"] != "42" {
		t.Errorf("expected bookingId 42, got %v", body.Payload["bookingId"])
	}
	if body.ID == "" || body.ID != got.msg.MessageId {
		t.Errorf("expected message id to match body id, got %q and %q", got.msg.MessageId, body.ID)
	}
}

func TestPublisher_NotifyError(t *testing.T) {
	t.Parallel()

	brokerErr := errors.New("channel closed")
	p := NewPublisher(&fakeChannel{err: brokerErr}, "events")

	if err := p.Notify(context.Background(), "cust-1", notify.EventRideSummary, nil); !errors.Is(err, brokerErr) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
