package store

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action string
		from   string
		valid  bool
	}{
		{"call", "waiting", true},
		{"call", "called", false},
		{"call", "seated", false},
		{"seat", "called", true},
		{"seat", "waiting", false},
		{"seat", "cancelled", false},
		{"cancel", "waiting", true},
		{"cancel", "called", true},
		{"cancel", "seated", false},
		{"cancel", "no_show", false},
		{"no_show", "called", true},
		{"no_show", "waiting", false},
		{"no_show", "cancelled", false},
		{"unknown", "waiting", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

func TestValidReservationTransition(t *testing.T) {
	cases := []struct {
		action string
		from   string
		valid  bool
	}{
		{"confirm", "booked", true},
		{"confirm", "confirmed", false},
		{"seat", "confirmed", true},
		{"seat", "booked", false},
		{"cancel", "booked", true},
		{"cancel", "confirmed", true},
		{"cancel", "seated", false},
		{"no_show", "confirmed", true},
		{"no_show", "booked", false},
		{"unknown", "booked", false},
	}

	for _, tt := range cases {
		if got := ValidReservationTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidReservationTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}
