// Package audit records served analytics queries for offline inspection.
package audit

import (
	"context"
	"time"
)

// QueryRecord is one served analytics request.
type QueryRecord struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	View       string    `json:"view"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type Store interface {
	LogQuery(ctx context.Context, rec *QueryRecord) error
	RecentQueries(ctx context.Context, limit int) ([]*QueryRecord, error)
}
