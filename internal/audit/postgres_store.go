package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) Store {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LogQuery(ctx context.Context, rec *QueryRecord) error {
	query := `
		INSERT INTO analytics_queries (request_id, view, start_date, end_date, status, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		rec.RequestID, rec.View, rec.StartDate, rec.EndDate, rec.Status, rec.DurationMs,
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}

	return nil
}

func (s *PostgresStore) RecentQueries(ctx context.Context, limit int) ([]*QueryRecord, error) {
	query := `
		SELECT id, request_id, view, start_date, end_date, status, duration_ms, created_at
		FROM analytics_queries
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []*QueryRecord
	for rows.Next() {
		var r QueryRecord
		err := rows.Scan(
			&r.ID, &r.RequestID, &r.View, &r.StartDate, &r.EndDate,
			&r.Status, &r.DurationMs, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}

	return records, nil
}
