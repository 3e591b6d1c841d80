package domain

import (
	"testing"
	"time"
)

func TestLiveTreatsEndDateAsAssigned(t *testing.T) {
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	a := MeterTenant{AssignedFrom: end.AddDate(0, -3, 0), AssignedTo: &end}

	if !a.Live(end) {
		t.Fatal("assignment must still be live on its end date")
	}
	if a.Live(end.AddDate(0, 0, 1)) {
		t.Fatal("assignment must not be live the day after its end date")
	}
}

func TestLiveOpenEnded(t *testing.T) {
	a := MeterTenant{AssignedFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	if !a.Live(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("open-ended assignment must stay live")
	}
}
