package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-01-02")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if got := FormatDate(parsed); got != "2024-01-02" {
		t.Fatalf("expected formatted date to round-trip, got %s", got)
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)
	value := time.Date(2024, 1, 2, 23, 0, 0, 0, loc)
	if got := FormatDate(value); got != "2024-01-02" {
		t.Fatalf("expected formatted date, got %s", got)
	}
}

func TestDaysBetweenUsesCalendarDates(t *testing.T) {
	a := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	b := time.Date(2024, 1, 2, 0, 15, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 1 {
		t.Fatalf("expected 1 day, got %d", got)
	}
	if got := DaysBetween(b, a); got != -1 {
		t.Fatalf("expected -1 day, got %d", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Fatalf("expected 0 days, got %d", got)
	}
}

func TestAtHourKeepsCalendarDate(t *testing.T) {
	loc := ResolveLocation("America/New_York")
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got := AtHour(day, 17, loc)
	if got.Hour() != 17 || got.Day() != 5 || got.Location() != loc {
		t.Fatalf("unexpected time %s", got)
	}
	if AtHour(day, 8, nil).Location() != time.UTC {
		t.Fatalf("expected nil location to default to UTC")
	}
}

func TestResolveLocationFallsBack(t *testing.T) {
	if ResolveLocation("Not/AZone") != time.UTC || ResolveLocation("") != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
