package services

import (
	"testing"
	"time"

	"roti-erp/internal/apperr"
)

func TestResolvePeriod(t *testing.T) {
	// Thursday
	now := time.Date(2026, 5, 14, 15, 4, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		selector, start, end string
		wantStart, wantEnd   time.Time
		wantName             string
	}{
		{"today", "", "", day(2026, 5, 14), day(2026, 5, 15), "today"},
		{"yesterday", "", "", day(2026, 5, 13), day(2026, 5, 14), "yesterday"},
		{"this-week", "", "", day(2026, 5, 11), day(2026, 5, 18), "this-week"},
		{"last_week", "", "", day(2026, 5, 4), day(2026, 5, 11), "last-week"},
		{"thisMonth", "", "", day(2026, 5, 1), day(2026, 6, 1), "this-month"},
		{"last-month", "", "", day(2026, 4, 1), day(2026, 5, 1), "last-month"},
		{"this-year", "", "", day(2026, 1, 1), day(2027, 1, 1), "this-year"},
		{"", "", "", day(2026, 5, 1), day(2026, 6, 1), "this-month"},
		{"custom", "2026-04-10", "2026-04-12", day(2026, 4, 10), day(2026, 4, 13), "custom"},
		{"", "2026-05-01", "", day(2026, 5, 1), day(2026, 5, 15), "custom"},
	}
	for _, tc := range cases {
		p, err := ResolvePeriod(tc.selector, tc.start, tc.end, now, time.UTC)
		if err != nil {
			t.Fatalf("%q: %v", tc.selector, err)
		}
		if !p.Start.Equal(tc.wantStart) || !p.End.Equal(tc.wantEnd) || p.Name != tc.wantName {
			t.Fatalf("%q: got %s [%s, %s), want %s [%s, %s)", tc.selector, p.Name, p.Start, p.End, tc.wantName, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestResolvePeriodWeekOnSunday(t *testing.T) {
	sunday := time.Date(2026, 5, 17, 23, 0, 0, 0, time.UTC)
	p, err := ResolvePeriod("this-week", "", "", sunday, time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.StartDate() != "2026-05-11" || p.EndDate() != "2026-05-18" {
		t.Fatalf("unexpected week %s..%s", p.StartDate(), p.EndDate())
	}
}

func TestResolvePeriodUsesLocalMidnight(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC is already the next day in IST
	now := time.Date(2026, 5, 14, 20, 0, 0, 0, time.UTC)
	p, err := ResolvePeriod("today", "", "", now, loc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.StartDate() != "2026-05-15" {
		t.Fatalf("expected local date 2026-05-15, got %s", p.StartDate())
	}
	if p.Start.Hour() != 0 || p.Start.Location() != loc {
		t.Fatalf("start is not local midnight: %s", p.Start)
	}
}

func TestResolvePeriodErrors(t *testing.T) {
	now := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	bad := []struct{ selector, start, end string }{
		{"fortnight", "", ""},
		{"custom", "", ""},
		{"custom", "2026-13-01", ""},
		{"custom", "2026-05-10", "yesterday"},
		{"custom", "2026-05-10", "2026-05-01"},
	}
	for _, b := range bad {
		if _, err := ResolvePeriod(b.selector, b.start, b.end, now, time.UTC); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%+v: expected validation error, got %v", b, err)
		}
	}
}
