package daterange

import (
	"strings"
	"testing"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

func TestDayBounds_LocalZoneToUTC(t *testing.T) {
	r, err := DayBounds("2024-03-01", "2024-03-02", jst)
	if err != nil {
		t.Fatalf("DayBounds() error = %v", err)
	}

	wantFrom := time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 3, 2, 14, 59, 59, 999999000, time.UTC)
	if !r.From.Equal(wantFrom) || r.From.Location() != time.UTC {
		t.Fatalf("From = %v, want %v", r.From, wantFrom)
	}
	if !r.To.Equal(wantTo) || r.To.Location() != time.UTC {
		t.Fatalf("To = %v, want %v", r.To, wantTo)
	}
	if !r.Contains(wantFrom) || !r.Contains(wantTo) {
		t.Fatalf("bounds must be inclusive")
	}
	if r.Contains(wantTo.Add(time.Microsecond)) || r.Contains(wantFrom.Add(-time.Microsecond)) {
		t.Fatalf("range leaks past its bounds")
	}
}

func TestDayBounds_DefaultsToToday(t *testing.T) {
	now := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) // 2024-03-02 05:00 in JST
	r, err := dayBounds("", " ", jst, now)
	if err != nil {
		t.Fatalf("dayBounds() error = %v", err)
	}
	if got := r.From.In(jst).Format(Layout); got != "2024-03-02" {
		t.Fatalf("From day = %s, want 2024-03-02", got)
	}
	if got := r.To.In(jst).Format(Layout); got != "2024-03-02" {
		t.Fatalf("To day = %s, want 2024-03-02", got)
	}
}

func TestDayBounds_Errors(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantErr  string
	}{
		{"bad from", "03/01/2024", "2024-03-01", "invalid from date"},
		{"bad to", "2024-03-01", "2024-13-01", "invalid to date"},
		{"reversed", "2024-03-02", "2024-03-01", "after to date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DayBounds(tt.from, tt.to, time.UTC)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPeriod(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC)
	endOf := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 23, 59, 59, 999999000, time.UTC)
	}
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		now      time.Time
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"today", now, day(2024, 3, 13), endOf(2024, 3, 13)},
		{"yesterday", now, day(2024, 3, 12), endOf(2024, 3, 12)},
		{"this-week", now, day(2024, 3, 11), endOf(2024, 3, 17)},
		{"this-week", time.Date(2024, 3, 17, 8, 0, 0, 0, time.UTC), day(2024, 3, 11), endOf(2024, 3, 17)},
		{"last-week", now, day(2024, 3, 4), endOf(2024, 3, 10)},
		{"this-month", now, day(2024, 3, 1), endOf(2024, 3, 31)},
		{"last-month", now, day(2024, 2, 1), endOf(2024, 2, 29)},
		{"Last-Month", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), day(2023, 12, 1), endOf(2023, 12, 31)},
		{"all-time", now, time.Time{}, endOf(2024, 3, 13)},
	}

	for _, tt := range tests {
		t.Run(tt.name+"@"+tt.now.Format(Layout), func(t *testing.T) {
			r, err := Period(tt.name, tt.now)
			if err != nil {
				t.Fatalf("Period() error = %v", err)
			}
			if !r.From.Equal(tt.wantFrom) {
				t.Errorf("From = %v, want %v", r.From, tt.wantFrom)
			}
			if !r.To.Equal(tt.wantTo) {
				t.Errorf("To = %v, want %v", r.To, tt.wantTo)
			}
		})
	}
}

func TestPeriod_Unknown(t *testing.T) {
	if _, err := Period("fortnight", time.Now()); err == nil {
		t.Fatalf("expected error for unknown period")
	}
}
