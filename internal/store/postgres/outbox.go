package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dinequeue/internal/models"
	"dinequeue/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Every state change writes an outbox event in the same transaction as the
// row mutation. The realtime poller and the notifier consume the log with
// independent offsets; delivery is eventually consistent, not push-exact.

func insertEntryEvent(ctx context.Context, tx pgx.Tx, eventType string, entry models.QueueEntry) error {
	payload := map[string]interface{}{
		"entry_id":      entry.EntryID,
		"restaurant_id": entry.RestaurantID,
		"queue_code":    entry.QueueCode,
		"customer_name": entry.CustomerName,
		"status":        entry.Status,
		"position":      entry.Position,
		"party_size":    entry.PartySize,
		"phone":         entry.Phone,
		"joined_at":     entry.JoinedAt,
		"called_at":     entry.CalledAt,
		"seated_at":     entry.SeatedAt,
		"cancelled_at":  entry.CancelledAt,
	}
	return insertOutboxEvent(ctx, tx, entry.RestaurantID, eventType, payload)
}

func insertReservationEvent(ctx context.Context, tx pgx.Tx, eventType string, reservation models.Reservation) error {
	payload := map[string]interface{}{
		"reservation_id":   reservation.ReservationID,
		"restaurant_id":    reservation.RestaurantID,
		"reservation_code": reservation.ReservationCode,
		"status":           reservation.Status,
		"party_size":       reservation.PartySize,
		"phone":            reservation.Phone,
		"reserved_for":     reservation.ReservedFor,
		"reserved_time":    reservation.ReservedTime,
	}
	return insertOutboxEvent(ctx, tx, reservation.RestaurantID, eventType, payload)
}

func insertOutboxEvent(ctx context.Context, tx pgx.Tx, restaurantID, eventType string, payload map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox_events (event_id, restaurant_id, type, payload_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), restaurantID, eventType, payloadJSON, time.Now().UTC())
	return err
}

func (s *Store) ListOutboxEvents(ctx context.Context, restaurantID string, after time.Time, limit int) ([]store.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT event_id, restaurant_id, type, payload_json, created_at
		FROM outbox_events
		WHERE restaurant_id = $1
	`
	args := []interface{}{restaurantID}
	if !after.IsZero() {
		query += " AND created_at > $2 ORDER BY created_at ASC LIMIT $3"
		args = append(args, after, limit)
	} else {
		query += " ORDER BY created_at ASC LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (s *Store) ListFeedEvents(ctx context.Context, offset store.FeedOffset, limit int) ([]store.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	lastTime := offset.LastEventTime
	if lastTime.IsZero() {
		lastTime = time.Unix(0, 0).UTC()
	}
	lastID := offset.LastEventID
	if lastID == "" {
		lastID = "00000000-0000-0000-0000-000000000000"
	}

	rows, err := s.pool.Query(ctx, `
		SELECT event_id, restaurant_id, type, payload_json, created_at
		FROM outbox_events
		WHERE (created_at, event_id) > ($1, $2)
		ORDER BY created_at ASC, event_id ASC
		LIMIT $3
	`, lastTime, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (s *Store) GetFeedOffset(ctx context.Context, consumer string) (store.FeedOffset, error) {
	var offset store.FeedOffset
	row := s.pool.QueryRow(ctx, `
		SELECT last_event_time, last_event_id
		FROM feed_offsets
		WHERE consumer = $1
	`, consumer)
	if err := row.Scan(&offset.LastEventTime, &offset.LastEventID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.FeedOffset{}, nil
		}
		return store.FeedOffset{}, err
	}
	return offset, nil
}

func (s *Store) UpdateFeedOffset(ctx context.Context, consumer string, offset store.FeedOffset) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feed_offsets (consumer, last_event_time, last_event_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (consumer)
		DO UPDATE SET last_event_time = $2, last_event_id = $3
	`, consumer, offset.LastEventTime, offset.LastEventID)
	return err
}

// CleanupOutbox prunes events every consumer has moved past.
func (s *Store) CleanupOutbox(ctx context.Context, before time.Time) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM outbox_events
		WHERE created_at < $1
	`, before)
	return err
}

func (s *Store) InsertNotification(ctx context.Context, notification store.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (notification_id, restaurant_id, channel, recipient, message, status, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, notification.NotificationID, notification.RestaurantID, notification.Channel,
		notification.Recipient, notification.Message, notification.Status, notification.Attempts)
	return err
}

func (s *Store) MarkNotificationSent(ctx context.Context, notificationID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'sent', sent_at = $1
		WHERE notification_id = $2
	`, time.Now().UTC(), notificationID)
	return err
}

func (s *Store) MarkNotificationFailed(ctx context.Context, notificationID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'failed', error = $1
		WHERE notification_id = $2
	`, reason, notificationID)
	return err
}

func collectEvents(rows pgx.Rows) ([]store.OutboxEvent, error) {
	var events []store.OutboxEvent
	for rows.Next() {
		var event store.OutboxEvent
		if err := rows.Scan(&event.EventID, &event.RestaurantID, &event.Type, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
