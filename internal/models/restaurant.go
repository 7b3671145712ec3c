package models

import "time"

type Restaurant struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	Timezone     string `json:"timezone,omitempty"`
}

// DayHours is one weekday's standing schedule. Open and Close are wall-clock
// "HH:MM" strings in the restaurant's time zone.
type DayHours struct {
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"is_closed"`
}

// WeekSchedule maps each weekday to its hours. A missing weekday is treated
// the same as IsClosed.
type WeekSchedule map[time.Weekday]DayHours
