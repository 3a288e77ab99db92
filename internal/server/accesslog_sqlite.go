package server

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// AccessEntry is one served endpoint request.
type AccessEntry struct {
	RequestID string
	Method    string
	Path      string
	Found     bool
	Status    int
	At        time.Time
}

// AccessLog records served requests. Implementations must be safe for
// concurrent use.
type AccessLog interface {
	Record(ctx context.Context, e AccessEntry) error
}

type nopAccessLog struct{}

func (nopAccessLog) Record(context.Context, AccessEntry) error { return nil }

type SQLiteAccessLog struct {
	DB *sql.DB
}

func NewSQLiteAccessLog(db *sql.DB) *SQLiteAccessLog {
	return &SQLiteAccessLog{DB: db}
}

func (s *SQLiteAccessLog) Record(ctx context.Context, e AccessEntry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO access_log (id, request_id, method, path, found, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.RequestID, e.Method, e.Path, e.Found, e.Status, at.UnixNano(),
	)
	return errors.Wrap(err, "insert access log entry")
}

// PathCount is a request count for one requested path.
type PathCount struct {
	Path  string
	Count int64
}

type AccessSummary struct {
	Total  int64
	Misses int64
	Top    []PathCount
}

// Summary aggregates the access log, listing at most limit paths ordered by
// request count.
func (s *SQLiteAccessLog) Summary(ctx context.Context, limit int) (*AccessSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var sum AccessSummary
	row := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN found = 0 THEN 1 ELSE 0 END), 0) FROM access_log`,
	)
	if err := row.Scan(&sum.Total, &sum.Misses); err != nil {
		return nil, errors.Wrap(err, "count access log")
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT path, COUNT(*) AS n
		 FROM access_log
		 GROUP BY path
		 ORDER BY n DESC, path
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query top paths")
	}
	defer rows.Close()

	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return nil, err
		}
		sum.Top = append(sum.Top, pc)
	}
	return &sum, rows.Err()
}
