package notifier

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"dinequeue/internal/store"

	"github.com/google/uuid"
)

const consumerName = "notifier"

type Notifier struct {
	store     store.NotificationStore
	provider  Provider
	batchSize int
}

type Config struct {
	BatchSize int
	Provider  string
}

type payloadData map[string]interface{}

func New(st store.NotificationStore, cfg Config) *Notifier {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	return &Notifier{
		store:     st,
		provider:  newProvider(cfg.Provider),
		batchSize: batch,
	}
}

// Run drains one batch of outbox events and sends guest SMS for the ones
// that carry a phone number. The offset advances over every event in the
// batch, including ones that fail: a failure is logged and recorded on the
// notification row rather than replayed, so a poison event cannot wedge
// the feed. Only a crash mid-batch replays events.
func (n *Notifier) Run(ctx context.Context) error {
	offset, err := n.store.GetFeedOffset(ctx, consumerName)
	if err != nil {
		return err
	}

	events, err := n.store.ListFeedEvents(ctx, offset, n.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := n.processEvent(ctx, event); err != nil {
			log.Printf("notifier process error event=%s: %v", event.EventID, err)
		}
		offset = store.FeedOffset{LastEventTime: event.CreatedAt, LastEventID: event.EventID}
	}

	if len(events) > 0 {
		if err := n.store.UpdateFeedOffset(ctx, consumerName, offset); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) processEvent(ctx context.Context, event store.OutboxEvent) error {
	template := templateForEvent(event.Type)
	if template == "" {
		return nil
	}

	payload := payloadData{}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	phone := str(payload, "phone")
	if phone == "" {
		return nil
	}

	message := renderTemplate(template, payload)
	notification := store.Notification{
		NotificationID: uuid.NewString(),
		RestaurantID:   event.RestaurantID,
		Channel:        "sms",
		Recipient:      phone,
		Message:        message,
		Status:         "pending",
		Attempts:       1,
	}
	if err := n.store.InsertNotification(ctx, notification); err != nil {
		return err
	}

	if sendErr := n.provider.Send(ctx, message, phone); sendErr != nil {
		return n.store.MarkNotificationFailed(ctx, notification.NotificationID, sendErr.Error())
	}
	return n.store.MarkNotificationSent(ctx, notification.NotificationID)
}

func templateForEvent(eventType string) string {
	switch eventType {
	case "queue.joined":
		return "You are in line. Your code is {queue_code}."
	case "queue.called":
		return "Your table is ready, {customer_name}. Please come to the host stand. Code {queue_code}."
	case "reservation.confirmed":
		return "Your reservation {reservation_code} is confirmed for {reserved_time}."
	default:
		return ""
	}
}

func renderTemplate(template string, payload payloadData) string {
	result := template
	result = strings.ReplaceAll(result, "{queue_code}", str(payload, "queue_code"))
	result = strings.ReplaceAll(result, "{customer_name}", str(payload, "customer_name"))
	result = strings.ReplaceAll(result, "{reservation_code}", str(payload, "reservation_code"))
	result = strings.ReplaceAll(result, "{reserved_time}", str(payload, "reserved_time"))
	return result
}

func str(payload payloadData, key string) string {
	if value, ok := payload[key]; ok {
		if text, ok := value.(string); ok {
			return text
		}
	}
	return ""
}

func Start(ctx context.Context, interval time.Duration, n *Notifier) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.Run(ctx); err != nil {
				log.Printf("notifier error: %v", err)
			}
		}
	}
}
