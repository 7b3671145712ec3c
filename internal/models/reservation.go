package models

import "time"

type Reservation struct {
	ReservationID   string    `json:"reservation_id"`
	RestaurantID    string    `json:"restaurant_id,omitempty"`
	ReservationCode string    `json:"reservation_code"`
	CustomerName    string    `json:"customer_name"`
	Phone           string    `json:"phone,omitempty"`
	PartySize       int       `json:"party_size"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	ReservedFor     string    `json:"reserved_for"`
	ReservedTime    string    `json:"reserved_time"`
	RequestID       string    `json:"request_id"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	ReservationBooked    = "booked"
	ReservationConfirmed = "confirmed"
	ReservationSeated    = "seated"
	ReservationCancelled = "cancelled"
	ReservationNoShow    = "no_show"
)
