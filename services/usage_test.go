package services

import (
	"testing"
	"time"
)

func TestDayWindow(t *testing.T) {
	at := time.Date(2026, 3, 15, 17, 42, 9, 0, time.UTC)
	start, end := DayWindow(at)

	if !start.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected day start: %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected day end: %v", end)
	}
}

func TestDayWindowMidnightBoundary(t *testing.T) {
	midnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	start, end := DayWindow(midnight)

	if !start.Equal(midnight) {
		t.Errorf("midnight should start its own window, got %v", start)
	}

	// A tick before midnight belongs to the previous day
	prevStart, prevEnd := DayWindow(midnight.Add(-time.Nanosecond))
	if !prevEnd.Equal(start) {
		t.Errorf("windows should be contiguous: prev end %v, next start %v", prevEnd, start)
	}
	if !prevStart.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected previous day start: %v", prevStart)
	}
	_ = end
}

func TestDayWindowNormalizesZone(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	// 02:00 on the 15th in UTC+5 is still the 14th in UTC
	at := time.Date(2026, 3, 15, 2, 0, 0, 0, zone)
	start, _ := DayWindow(at)

	if !start.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window should be computed in UTC, got start %v", start)
	}
}

func TestMonthWindow(t *testing.T) {
	at := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	start, end := MonthWindow(at)

	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected month start: %v", start)
	}
	if !end.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected month end: %v", end)
	}
}

func TestMonthWindowDecemberRollover(t *testing.T) {
	at := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	_, end := MonthWindow(at)

	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("december window should end in january, got %v", end)
	}
}
