package infra

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLExecutor is what the job store needs from a database handle.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ErrMissingMarker rejects queries that do not start with a "--sql <uuid>" line.
var ErrMissingMarker = errors.New("sql marker missing or invalid")

const defaultSlowQuery = 250 * time.Millisecond

// SQLRunner strips the marker line from inline queries and logs every call
// under it. db is usually a *pgxpool.Pool.
type SQLRunner struct {
	db        SQLExecutor
	logger    zerolog.Logger
	slowQuery time.Duration
}

func NewSQLRunner(db SQLExecutor, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{db: db, logger: logger, slowQuery: defaultSlowQuery}
}

// WithSlowQuery sets the duration above which a statement is logged at warn
// level. Zero disables the warning.
func (r *SQLRunner) WithSlowQuery(d time.Duration) *SQLRunner {
	r.slowQuery = d
	return r
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.db.Exec(ctx, body, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("sql", marker).Msg("sql exec failed")
		return tag, fmt.Errorf("sql %s: %w", marker, err)
	}
	r.observe(marker, "exec", start).Int64("rows", tag.RowsAffected()).Msg("sql ok")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, body, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	return &loggingRow{
		row:    r.db.QueryRow(ctx, body, args...),
		runner: r,
		marker: marker,
		start:  time.Now(),
	}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.db.Query(ctx, body, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("sql", marker).Msg("sql query failed")
		return nil, fmt.Errorf("sql %s: %w", marker, err)
	}
	r.observe(marker, "query", start).Msg("sql ok")
	return rows, nil
}

// observe starts a log event for a finished statement, escalating slow ones.
func (r *SQLRunner) observe(marker, op string, start time.Time) *zerolog.Event {
	elapsed := time.Since(start)
	ev := r.logger.Debug()
	if r.slowQuery > 0 && elapsed >= r.slowQuery {
		ev = r.logger.Warn().Bool("slow", true)
	}
	return ev.Str("sql", marker).Str("op", op).Dur("elapsed", elapsed)
}

type loggingRow struct {
	row    pgx.Row
	runner *SQLRunner
	marker string
	start  time.Time
}

func (l *loggingRow) Scan(dest ...any) error {
	err := l.row.Scan(dest...)
	switch {
	case err == nil:
		l.runner.observe(l.marker, "query_row", l.start).Msg("sql ok")
	case IsNoRows(err):
		l.runner.observe(l.marker, "query_row", l.start).Msg("sql no rows")
	default:
		l.runner.logger.Error().Err(err).Str("sql", l.marker).Msg("sql scan failed")
		return fmt.Errorf("sql %s: %w", l.marker, err)
	}
	return err
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(...any) error {
	return e.err
}

// extractMarker splits a query into its marker uuid and the SQL body.
func extractMarker(query string) (string, string, error) {
	first, body, _ := strings.Cut(strings.TrimSpace(query), "\n")
	first = strings.TrimSpace(first)
	if !markerRegexp.MatchString(first) {
		return "", "", ErrMissingMarker
	}
	return strings.TrimPrefix(first, "--sql "), body, nil
}

// IsNoRows reports whether err signals an empty result set.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var _ SQLExecutor = (*SQLRunner)(nil)
