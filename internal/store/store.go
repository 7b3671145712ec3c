package store

import (
	"context"
	"encoding/json"
	"time"

	"dinequeue/internal/models"
)

type JoinQueueInput struct {
	RequestID    string
	RestaurantID string
	CustomerName string
	Phone        string
	PartySize    int
	Notes        string
	JoinedAt     time.Time
}

type EntryActionInput struct {
	RequestID    string
	RestaurantID string
	EntryID      string
	OccurredAt   time.Time
}

type CreateReservationInput struct {
	RequestID    string
	RestaurantID string
	CustomerName string
	Phone        string
	PartySize    int
	Notes        string
	ReservedFor  string
	ReservedTime string
	CreatedAt    time.Time
}

type ReservationActionInput struct {
	RequestID     string
	RestaurantID  string
	ReservationID string
	OccurredAt    time.Time
}

// VisitorBinding remembers which queue entry an anonymous device belongs to.
// Bindings expire; a read past ExpiresAt purges the row.
type VisitorBinding struct {
	Token     string    `json:"token"`
	EntryID   string    `json:"entry_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OutboxEvent struct {
	EventID      string          `json:"event_id"`
	RestaurantID string          `json:"restaurant_id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
}

type FeedOffset struct {
	LastEventTime time.Time
	LastEventID   string
}

type Notification struct {
	NotificationID string
	RestaurantID   string
	Channel        string
	Recipient      string
	Message        string
	Status         string
	Attempts       int
}

// EntryStore is the persistence surface the HTTP handler works against.
type EntryStore interface {
	GetRestaurant(ctx context.Context, restaurantID string) (models.Restaurant, bool, error)

	JoinQueue(ctx context.Context, input JoinQueueInput) (models.QueueEntry, bool, error)
	GetEntry(ctx context.Context, restaurantID, entryID string) (models.QueueEntry, error)
	ListActiveQueue(ctx context.Context, restaurantID string) ([]models.QueueEntry, error)
	LivePosition(ctx context.Context, restaurantID, entryID string) (int, bool, error)
	SeatedDurations(ctx context.Context, restaurantID string, limit int) ([]time.Duration, error)
	CallEntry(ctx context.Context, input EntryActionInput) (models.QueueEntry, error)
	SeatEntry(ctx context.Context, input EntryActionInput) (models.QueueEntry, error)
	CancelEntry(ctx context.Context, input EntryActionInput) (models.QueueEntry, error)
	NoShowEntry(ctx context.Context, input EntryActionInput) (models.QueueEntry, error)

	CreateReservation(ctx context.Context, input CreateReservationInput) (models.Reservation, bool, error)
	ListReservations(ctx context.Context, restaurantID, day string) ([]models.Reservation, error)
	ConfirmReservation(ctx context.Context, input ReservationActionInput) (models.Reservation, error)
	SeatReservation(ctx context.Context, input ReservationActionInput) (models.Reservation, error)
	CancelReservation(ctx context.Context, input ReservationActionInput) (models.Reservation, error)
	NoShowReservation(ctx context.Context, input ReservationActionInput) (models.Reservation, error)

	GetBusinessHours(ctx context.Context, restaurantID string) (models.WeekSchedule, bool, error)
	UpdateBusinessHours(ctx context.Context, restaurantID string, schedule models.WeekSchedule) error

	SaveVisitorBinding(ctx context.Context, binding VisitorBinding) error
	GetVisitorBinding(ctx context.Context, token string, now time.Time) (VisitorBinding, error)

	ListOutboxEvents(ctx context.Context, restaurantID string, after time.Time, limit int) ([]OutboxEvent, error)
}

// FeedStore is what the realtime poller consumes.
type FeedStore interface {
	ListFeedEvents(ctx context.Context, offset FeedOffset, limit int) ([]OutboxEvent, error)
	GetFeedOffset(ctx context.Context, consumer string) (FeedOffset, error)
	UpdateFeedOffset(ctx context.Context, consumer string, offset FeedOffset) error
	CleanupOutbox(ctx context.Context, before time.Time) error
}

// NotificationStore is what the guest notifier consumes.
type NotificationStore interface {
	ListFeedEvents(ctx context.Context, offset FeedOffset, limit int) ([]OutboxEvent, error)
	GetFeedOffset(ctx context.Context, consumer string) (FeedOffset, error)
	UpdateFeedOffset(ctx context.Context, consumer string, offset FeedOffset) error
	InsertNotification(ctx context.Context, notification Notification) error
	MarkNotificationSent(ctx context.Context, notificationID string) error
	MarkNotificationFailed(ctx context.Context, notificationID, reason string) error
}
