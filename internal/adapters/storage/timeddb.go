package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"shoptrack/internal/adapters/http/perf"
)

// SQLDB is the query surface the stores depend on. Both *sql.DB and
// *TimedDB satisfy it, so instrumentation is optional at wiring time.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is the threshold above which a query logs at WARN.
const DefaultSlowQueryMs = 50

// TimedDB wraps a *sql.DB so every query is timed, logged and fed to
// the perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// NewTimedDB wraps db. Queries slower than thresholdMs log a slow_query
// warning; thresholdMs <= 0 uses DefaultSlowQueryMs.
func NewTimedDB(db *sql.DB, collector *perf.Collector, thresholdMs float64) *TimedDB {
	if thresholdMs <= 0 {
		thresholdMs = DefaultSlowQueryMs
	}
	return &TimedDB{db: db, collector: collector, threshold: thresholdMs}
}

// record logs the finished operation and feeds the collector. It runs
// whether or not the query failed; failures still cost their duration.
func (t *TimedDB) record(op string, start time.Time) {
	ms := float64(time.Since(start).Microseconds()) / 1000.0

	level, msg := slog.LevelDebug, "query"
	if ms >= t.threshold {
		level, msg = slog.LevelWarn, "slow_query"
	}
	slog.Log(context.Background(), level, msg, "op", op, "duration_ms", ms)

	if t.collector != nil {
		t.collector.RecordQuery(op, ms)
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.record("ExecContext", time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.record("QueryContext", time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.record("QueryRowContext", time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	defer t.record("BeginTx", time.Now())
	return t.db.BeginTx(ctx, opts)
}
