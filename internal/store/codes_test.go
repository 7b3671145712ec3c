package store

import (
	"errors"
	"testing"
)

func TestNextCodeSequence(t *testing.T) {
	cases := []struct {
		last string
		want string
	}{
		{"", "A-001"},
		{"A-001", "A-002"},
		{"A-042", "A-043"},
		{"A-999", "B-001"},
		{"B-001", "B-002"},
		{"Y-999", "Z-001"},
	}
	for _, tt := range cases {
		got, err := NextCode(tt.last)
		if err != nil {
			t.Fatalf("NextCode(%q): %v", tt.last, err)
		}
		if got != tt.want {
			t.Fatalf("NextCode(%q)=%q, want %q", tt.last, got, tt.want)
		}
	}
}

func TestNextCodeMalformedFallsBack(t *testing.T) {
	cases := []string{"garbage", "1-001", "A001", "A-1", "A-0000", "a-001", "A-abc"}
	for _, last := range cases {
		got, err := NextCode(last)
		if err != nil {
			t.Fatalf("NextCode(%q): %v", last, err)
		}
		if got != FirstCode {
			t.Fatalf("NextCode(%q)=%q, want %q", last, got, FirstCode)
		}
	}
}

func TestNextCodeExhausted(t *testing.T) {
	if _, err := NextCode("Z-999"); !errors.Is(err, ErrCodesExhausted) {
		t.Fatalf("expected ErrCodesExhausted, got %v", err)
	}
}

func TestCodeForSequence(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "A-001"},
		{999, "A-999"},
		{1000, "B-001"},
		{1998, "B-999"},
		{26 * 999, "Z-999"},
	}
	for _, tt := range cases {
		got, err := CodeForSequence(tt.seq)
		if err != nil {
			t.Fatalf("CodeForSequence(%d): %v", tt.seq, err)
		}
		if got != tt.want {
			t.Fatalf("CodeForSequence(%d)=%q, want %q", tt.seq, got, tt.want)
		}
	}

	if _, err := CodeForSequence(26*999 + 1); !errors.Is(err, ErrCodesExhausted) {
		t.Fatalf("expected ErrCodesExhausted past Z-999, got %v", err)
	}
	if _, err := CodeForSequence(0); err == nil {
		t.Fatalf("expected error for non-positive sequence")
	}
}

func TestSequenceForCode(t *testing.T) {
	for _, seq := range []int64{1, 42, 999, 1000, 25974} {
		code, err := CodeForSequence(seq)
		if err != nil {
			t.Fatalf("CodeForSequence(%d): %v", seq, err)
		}
		if got := SequenceForCode(code); got != seq {
			t.Fatalf("SequenceForCode(%q)=%d, want %d", code, got, seq)
		}
	}
	if got := SequenceForCode("not-a-code"); got != 0 {
		t.Fatalf("expected 0 for malformed code, got %d", got)
	}
}
