package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"bikeride/internal/domain"
	"bikeride/internal/metrics"
	"bikeride/internal/notify"
)

// AdminDirectory lists the admin accounts that receive completion events.
type AdminDirectory interface {
	ListAdmins(ctx context.Context) ([]*domain.User, error)
}

// DeliveryReport counts the sends of one fan-out.
type DeliveryReport struct {
	Sent   int
	Failed int
}

// NotificationService fans completion events out through a gateway.
type NotificationService struct {
	gateway     notify.Gateway
	admins      AdminDirectory
	sendTimeout time.Duration
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(gateway notify.Gateway, admins AdminDirectory) *NotificationService {
	return &NotificationService{
		gateway:     gateway,
		admins:      admins,
		sendTimeout: 5 * time.Second,
	}
}

type delivery struct {
	recipientID string
	eventType   string
	payload     map[string]any
}

// NotifyRideCompleted sends the ride and booking summaries to the customer,
// the bike owner and every admin. Each send is independent; failures are
// logged and counted but never returned.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, summary RideSummary, ownerID string) DeliveryReport {
	recipients := []string{summary.CustomerID, ownerID}

	admins, err := s.admins.ListAdmins(ctx)
	if err != nil {
		log.Printf("[NOTIFICATION] %v: listing admins for journey %s: %v", ErrNotificationDeliveryFailure, summary.RideJourneyID, err)
	}
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}

	ridePayload := summary.RidePayload()
	bookingPayload := summary.BookingPayload(ownerID)

	var deliveries []delivery
	seen := make(map[string]bool, len(recipients))
	for _, id := range recipients {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		deliveries = append(deliveries,
			delivery{recipientID: id, eventType: notify.EventRideSummary, payload: ridePayload},
			delivery{recipientID: id, eventType: notify.EventBookingSummary, payload: bookingPayload},
		)
	}

	return s.dispatch(ctx, deliveries)
}

// dispatch sends every delivery concurrently and waits for all of them.
func (s *NotificationService) dispatch(ctx context.Context, deliveries []delivery) DeliveryReport {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		report DeliveryReport
	)

	for _, d := range deliveries {
		wg.Add(1)
		go func(d delivery) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
			defer cancel()

			err := s.send(sendCtx, d)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				metrics.NotificationFailures.WithLabelValues(d.eventType).Inc()
				log.Printf("[NOTIFICATION] %v: Type=%s, Recipient=%s: %v", ErrNotificationDeliveryFailure, d.eventType, d.recipientID, err)
				return
			}
			report.Sent++
		}(d)
	}

	wg.Wait()
	return report
}

// send turns a gateway panic into an error.
func (s *NotificationService) send(ctx context.Context, d delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return s.gateway.Notify(ctx, d.recipientID, d.eventType, d.payload)
}
