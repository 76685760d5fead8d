package api

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDateRange resolves the optional start_date/end_date query values
// (YYYY-MM-DD) into UTC bounds. The end date defaults to now and otherwise
// extends to the end of its day; the start date defaults to 24 hours before
// the end. Neither date may lie in the future and the end may not precede
// the start.
func ParseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var start, end time.Time
	if endDate == "" {
		end = now
	} else {
		d, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return start, end, fmt.Errorf("invalid end_date format, expected YYYY-MM-DD")
		}
		if d.After(today) {
			return start, end, fmt.Errorf("end_date cannot be in the future")
		}
		end = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC)
	}

	if startDate == "" {
		start = end.AddDate(0, 0, -1)
	} else {
		d, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return start, end, fmt.Errorf("invalid start_date format, expected YYYY-MM-DD")
		}
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

		if start.After(today) {
			return start, end, fmt.Errorf("start_date cannot be in the future")
		}
		if end.Before(start) {
			return start, end, fmt.Errorf("end_date must not be before start_date")
		}
	}

	return start, end, nil
}

// FormatGatewayStart renders a start bound the way the gateway expects it.
func FormatGatewayStart(t time.Time) string {
	return t.Format("2006.01.02")
}

// FormatGatewayEnd renders an end bound the way the gateway expects it.
func FormatGatewayEnd(t time.Time) string {
	return t.Format(time.RFC3339)
}
