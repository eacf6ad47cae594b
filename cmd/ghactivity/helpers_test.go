package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Afrawles/ghactivity/internal/report"
)

func TestResolveRange(t *testing.T) {
	now := time.Date(2024, 3, 13, 15, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		from, to string
		period   string
		wantFrom time.Time
		wantErr  bool
	}{
		{
			name:     "explicit dates",
			from:     "2024-03-01",
			to:       "2024-03-07",
			wantFrom: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:     "period wins",
			period:   "yesterday",
			wantFrom: time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local),
		},
		{
			name:    "bad date",
			from:    "03/01/2024",
			wantErr: true,
		},
		{
			name:    "unknown period",
			period:  "fortnight",
			wantErr: true,
		},
		{
			name:    "reversed dates",
			from:    "2024-03-07",
			to:      "2024-03-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolveRange(tt.from, tt.to, tt.period, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", r)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRange() error = %v", err)
			}
			if !r.From.Equal(tt.wantFrom) {
				t.Fatalf("From = %v, want %v", r.From, tt.wantFrom)
			}
			if !r.To.After(r.From) {
				t.Fatalf("To %v not after From %v", r.To, r.From)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	stats := report.Stats{
		Repositories: 2,
		Objects:      3,
		Activities:   4,
		ByAction:     map[string]int{"opened": 1, "Comment created": 3},
	}

	var buf bytes.Buffer
	printSummary(&buf, stats, []string{"reports/a.json", "reports/a.xlsx"})
	out := buf.String()

	for _, want := range []string{
		"Repositories: 2",
		"Activities: 4",
		"Actions: Comment created 3, opened 1",
		"-> reports/a.xlsx",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary_NoFiles(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, report.Stats{}, nil)
	if strings.Contains(buf.String(), "Reports saved") {
		t.Fatalf("unexpected files section:\n%s", buf.String())
	}
}
