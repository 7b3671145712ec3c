package hours

import (
	"testing"
	"time"

	"dinequeue/internal/models"
)

func allWeek(day models.DayHours) models.WeekSchedule {
	schedule := models.WeekSchedule{}
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		schedule[weekday] = day
	}
	return schedule
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 24, hour, minute, 0, 0, time.UTC)
}

func TestComputeMissingSchedule(t *testing.T) {
	status := Compute(nil, "UTC", "UTC", at(12, 0))
	if status.IsOpen {
		t.Fatalf("expected closed for missing schedule")
	}
	if status.Message != "hours not configured" {
		t.Fatalf("unexpected message: %s", status.Message)
	}
}

func TestComputeClosedDay(t *testing.T) {
	schedule := allWeek(models.DayHours{Open: "09:00", Close: "17:00", IsClosed: true})
	status := Compute(schedule, "UTC", "UTC", at(12, 0))
	if status.IsOpen {
		t.Fatalf("expected closed when weekday marked closed")
	}
	if status.Message != "closed today" {
		t.Fatalf("unexpected message: %s", status.Message)
	}
}

func TestComputeSameDay(t *testing.T) {
	schedule := allWeek(models.DayHours{Open: "11:00", Close: "14:00"})

	cases := []struct {
		name    string
		now     time.Time
		open    bool
		message string
		opensAt string
	}{
		{"before opening", at(10, 59), false, "opens at 11:00", "11:00"},
		{"at opening", at(11, 0), true, "open until 14:00", ""},
		{"mid service", at(13, 30), true, "open until 14:00", ""},
		{"at closing", at(14, 0), false, "closed", ""},
		{"after closing", at(18, 0), false, "closed", ""},
	}

	for _, tt := range cases {
		status := Compute(schedule, "UTC", "UTC", tt.now)
		if status.IsOpen != tt.open {
			t.Fatalf("%s: IsOpen=%v, want %v", tt.name, status.IsOpen, tt.open)
		}
		if status.Message != tt.message {
			t.Fatalf("%s: message=%q, want %q", tt.name, status.Message, tt.message)
		}
		if status.OpensAt != tt.opensAt {
			t.Fatalf("%s: opens_at=%q, want %q", tt.name, status.OpensAt, tt.opensAt)
		}
	}
}

func TestComputeOvernight(t *testing.T) {
	schedule := allWeek(models.DayHours{Open: "22:00", Close: "02:00"})

	cases := []struct {
		name string
		now  time.Time
		open bool
	}{
		{"before open", at(10, 0), false},
		{"evening", at(23, 30), true},
		{"after midnight", at(1, 30), true},
		{"morning gap", at(2, 0), false},
	}

	for _, tt := range cases {
		status := Compute(schedule, "UTC", "UTC", tt.now)
		if status.IsOpen != tt.open {
			t.Fatalf("%s: IsOpen=%v, want %v", tt.name, status.IsOpen, tt.open)
		}
	}
}

func TestComputeRespectsTimezone(t *testing.T) {
	schedule := allWeek(models.DayHours{Open: "09:00", Close: "17:00"})

	// 03:00 UTC is 10:00 in Jakarta (UTC+7).
	status := Compute(schedule, "Asia/Jakarta", "UTC", at(3, 0))
	if !status.IsOpen {
		t.Fatalf("expected open at 10:00 Jakarta time")
	}

	status = Compute(schedule, "UTC", "UTC", at(3, 0))
	if status.IsOpen {
		t.Fatalf("expected closed at 03:00 UTC")
	}
}

func TestComputeInvalidTimezoneFallsBackToDefault(t *testing.T) {
	schedule := allWeek(models.DayHours{Open: "09:00", Close: "17:00"})

	// A bad stored zone must not hide the schedule when the default zone
	// still resolves: 03:00 UTC is 10:00 in Jakarta.
	status := Compute(schedule, "Mars/Olympus", "Asia/Jakarta", at(3, 0))
	if !status.IsOpen {
		t.Fatalf("expected default zone fallback to report open, got %+v", status)
	}
}

func TestComputeInvalidTimezoneAndDefault(t *testing.T) {
	schedule := allWeek(models.DayHours{Open: "09:00", Close: "17:00"})
	status := Compute(schedule, "Mars/Olympus", "Mars/Pavonis", at(12, 0))
	if status.IsOpen {
		t.Fatalf("expected closed when no timezone resolves")
	}
	if status.Message != "status unavailable" {
		t.Fatalf("unexpected message: %s", status.Message)
	}
}

func TestComputeMalformedTimes(t *testing.T) {
	cases := []models.DayHours{
		{Open: "nine", Close: "17:00"},
		{Open: "09:00", Close: "25:00"},
		{Open: "", Close: "17:00"},
	}
	for _, day := range cases {
		status := Compute(allWeek(day), "UTC", "UTC", at(12, 0))
		if status.IsOpen {
			t.Fatalf("expected closed for malformed hours %+v", day)
		}
		if status.Message != "status unavailable" {
			t.Fatalf("unexpected message for %+v: %s", day, status.Message)
		}
	}
}

func TestComputeMissingWeekday(t *testing.T) {
	schedule := models.WeekSchedule{
		time.Tuesday: {Open: "09:00", Close: "17:00"},
	}
	// 2026-08-24 is a Monday.
	status := Compute(schedule, "UTC", "UTC", at(12, 0))
	if status.IsOpen {
		t.Fatalf("expected closed for missing weekday")
	}
	if status.Message != "closed today" {
		t.Fatalf("unexpected message: %s", status.Message)
	}
}
