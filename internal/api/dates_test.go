package api

import (
	"testing"
	"time"
)

func TestParseDateRange_BothDates(t *testing.T) {
	start, end, err := ParseDateRange("2024-01-15", "2024-01-20")
	if err != nil {
		t.Fatalf("ParseDateRange failed: %v", err)
	}

	wantStart := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("Expected start %v, got %v", wantStart, start)
	}
	wantEnd := time.Date(2024, 1, 20, 23, 59, 59, 0, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("Expected end %v, got %v", wantEnd, end)
	}
}

func TestParseDateRange_Defaults(t *testing.T) {
	start, end, err := ParseDateRange("", "")
	if err != nil {
		t.Fatalf("ParseDateRange failed: %v", err)
	}

	now := time.Now().UTC()
	if d := now.Sub(end); d < 0 || d > 2*time.Second {
		t.Errorf("Expected end near now, got %v", end)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("Expected 24h window, got %v", got)
	}
}

func TestParseDateRange_DefaultStartOnly(t *testing.T) {
	start, end, err := ParseDateRange("", "2024-01-20")
	if err != nil {
		t.Fatalf("ParseDateRange failed: %v", err)
	}
	if end.Day() != 20 || end.Hour() != 23 {
		t.Errorf("Unexpected end: %v", end)
	}
	if want := end.AddDate(0, 0, -1); !start.Equal(want) {
		t.Errorf("Expected start 24h before end, got %v", start)
	}
}

func TestParseDateRange_InvalidFormat(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"bad start", "15-01-2024", ""},
		{"bad end", "", "2024/01/20"},
		{"not a date", "yesterday", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseDateRange(tc.start, tc.end); err == nil {
				t.Errorf("Expected error for start=%q end=%q", tc.start, tc.end)
			}
		})
	}
}

func TestParseDateRange_FutureStartRejected(t *testing.T) {
	future := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	if _, _, err := ParseDateRange(future, ""); err == nil {
		t.Error("Expected error for future start_date")
	}
}

func TestParseDateRange_FutureEndRejected(t *testing.T) {
	future := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	if _, _, err := ParseDateRange("", future); err == nil {
		t.Error("Expected error for future end_date")
	}
}

func TestParseDateRange_EndBeforeStartRejected(t *testing.T) {
	if _, _, err := ParseDateRange("2024-01-20", "2024-01-10"); err == nil {
		t.Error("Expected error for end_date before start_date")
	}
}

func TestFormatGatewayDates(t *testing.T) {
	dt := time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)
	if got := FormatGatewayStart(dt); got != "2024.01.15" {
		t.Errorf("Expected 2024.01.15, got %s", got)
	}
	if got := FormatGatewayEnd(dt); got != "2024-01-15T23:59:59Z" {
		t.Errorf("Expected RFC3339, got %s", got)
	}
}
