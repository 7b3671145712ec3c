// Package hours answers "is the restaurant open right now" from a standing
// weekly schedule. It is pure: callers pass the schedule, the zone, and the
// clock reading, which keeps every branch testable with fixed inputs.
package hours

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"dinequeue/internal/models"
)

type Status struct {
	IsOpen   bool   `json:"is_open"`
	Message  string `json:"message"`
	OpensAt  string `json:"opens_at,omitempty"`
	ClosesAt string `json:"closes_at,omitempty"`
}

const (
	msgNotConfigured = "hours not configured"
	msgClosedToday   = "closed today"
	msgClosed        = "closed"
	msgUnavailable   = "status unavailable"
)

// Compute resolves the current open/closed state of a restaurant in the given
// IANA time zone. An unknown zone falls back to the configured default zone
// before giving up. Any other malformed input degrades to a closed status
// instead of an error: the result feeds customer-facing displays directly.
func Compute(schedule models.WeekSchedule, timezone, defaultTimezone string, now time.Time) Status {
	if len(schedule) == 0 {
		return Status{IsOpen: false, Message: msgNotConfigured}
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("hours invalid timezone %q: %v", timezone, err)
		loc, err = time.LoadLocation(defaultTimezone)
		if err != nil {
			log.Printf("hours invalid default timezone %q: %v", defaultTimezone, err)
			return Status{IsOpen: false, Message: msgUnavailable}
		}
	}

	local := now.In(loc)
	day, ok := schedule[local.Weekday()]
	if !ok || day.IsClosed {
		return Status{IsOpen: false, Message: msgClosedToday}
	}

	openMin, err := parseMinutes(day.Open)
	if err != nil {
		log.Printf("hours malformed open time %q: %v", day.Open, err)
		return Status{IsOpen: false, Message: msgUnavailable}
	}
	closeMin, err := parseMinutes(day.Close)
	if err != nil {
		log.Printf("hours malformed close time %q: %v", day.Close, err)
		return Status{IsOpen: false, Message: msgUnavailable}
	}

	current := local.Hour()*60 + local.Minute()

	var open bool
	if closeMin < openMin {
		// Overnight schedule, e.g. 22:00-02:00.
		open = current >= openMin || current < closeMin
	} else {
		open = current >= openMin && current < closeMin
	}

	if open {
		return Status{
			IsOpen:   true,
			Message:  "open until " + day.Close,
			ClosesAt: day.Close,
		}
	}
	if current < openMin {
		return Status{
			IsOpen:  false,
			Message: "opens at " + day.Open,
			OpensAt: day.Open,
		}
	}
	// Past closing for a same-day schedule. No look-ahead to tomorrow.
	return Status{IsOpen: false, Message: msgClosed}
}

func parseMinutes(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("want HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("out of range: %q", value)
	}
	return hour*60 + minute, nil
}
