package clock

import (
	"testing"
	"time"
)

func TestFakeClockNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	c := NewFakeClock(time.Date(2024, time.June, 1, 10, 0, 0, 0, loc))
	if got := c.Now(); got.Location() != time.UTC || got.Hour() != 5 {
		t.Fatalf("expected 05:00 UTC, got %v", got)
	}

	c.Set(time.Date(2024, time.July, 1, 0, 0, 0, 0, loc))
	if got := c.Now(); got.Location() != time.UTC {
		t.Fatalf("Set must normalize to UTC, got %v", got)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)
	c.Advance(48 * time.Hour)
	if got := c.Now(); !got.Equal(start.AddDate(0, 0, 2)) {
		t.Fatalf("expected %v, got %v", start.AddDate(0, 0, 2), got)
	}
}
