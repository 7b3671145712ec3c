package models

import "time"

type QueueEntry struct {
	EntryID              string     `json:"entry_id"`
	RestaurantID         string     `json:"restaurant_id,omitempty"`
	QueueCode            string     `json:"queue_code"`
	CustomerName         string     `json:"customer_name"`
	Phone                string     `json:"phone,omitempty"`
	PartySize            int        `json:"party_size"`
	Notes                string     `json:"notes,omitempty"`
	Status               string     `json:"status"`
	Position             int        `json:"position"`
	EstimatedWaitMinutes int        `json:"estimated_wait_minutes"`
	RequestID            string     `json:"request_id"`
	JoinedAt             time.Time  `json:"joined_at"`
	CalledAt             *time.Time `json:"called_at,omitempty"`
	SeatedAt             *time.Time `json:"seated_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
}

const (
	StatusWaiting   = "waiting"
	StatusCalled    = "called"
	StatusSeated    = "seated"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Active reports whether the entry still occupies a spot in the queue.
// seated, cancelled, and no_show are terminal.
func Active(status string) bool {
	return status == StatusWaiting || status == StatusCalled
}
