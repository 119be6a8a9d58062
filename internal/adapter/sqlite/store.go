// Package sqlite provides the SQLite-backed fire detection store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
	_ "modernc.org/sqlite"
)

// timeLayout is how datetime_utc is stored, matching the layout the loader
// writes and the datetime index expects. Second granularity; lexicographic
// order equals chronological order.
const timeLayout = "2006-01-02 15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS fire_events (
	id INTEGER PRIMARY KEY,
	datetime_utc TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	brightness REAL NOT NULL,
	bright_t31 REAL NOT NULL,
	frp REAL DEFAULT 0.0,
	confidence TEXT DEFAULT 'low',
	scan REAL DEFAULT 1.0,
	track REAL DEFAULT 1.0,
	satellite TEXT NOT NULL,
	instrument TEXT NOT NULL,
	daynight TEXT DEFAULT 'U',
	type INTEGER DEFAULT 0,
	version TEXT DEFAULT '1.0',
	is_matched INTEGER NOT NULL DEFAULT 0,
	match_confidence TEXT,
	matched_event_type TEXT,
	matched_place_name TEXT
);
CREATE INDEX IF NOT EXISTS idx_datetime ON fire_events(datetime_utc);
CREATE INDEX IF NOT EXISTS idx_location ON fire_events(latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_datetime_location ON fire_events(datetime_utc, latitude, longitude);
`

// Store persists fire detections in SQLite. It implements the engine's Store
// interface and the HTTP server's readiness check.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) a SQLite detection store and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CheckReadiness reports whether the store can serve queries.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

const eventColumns = `id, datetime_utc, latitude, longitude, brightness, bright_t31,
	frp, confidence, scan, track, satellite, instrument, daynight, type, version,
	is_matched, match_confidence, matched_event_type, matched_place_name`

// QueryInterval returns all detections with startExclusive < t <= endInclusive,
// ascending by time. There is deliberately no LIMIT: replay completeness
// depends on every record in the window being returned.
func (s *Store) QueryInterval(ctx context.Context, startExclusive, endInclusive time.Time) ([]domain.FireEvent, error) {
	query := `SELECT ` + eventColumns + `
		FROM fire_events
		WHERE datetime_utc > ? AND datetime_utc <= ?
		ORDER BY datetime_utc`

	rows, err := s.sqlDB.QueryContext(ctx, query, formatTime(startExclusive), formatTime(endInclusive))
	if err != nil {
		return nil, fmt.Errorf("query interval: %w", err)
	}
	defer rows.Close()

	events := []domain.FireEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interval rows: %w", err)
	}
	return events, nil
}

// CountInterval returns the number of detections in the same half-open
// interval as QueryInterval, so the session's estimated total matches what
// replay will actually emit.
func (s *Store) CountInterval(ctx context.Context, startExclusive, endInclusive time.Time) (int64, error) {
	var count int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fire_events WHERE datetime_utc > ? AND datetime_utc <= ?`,
		formatTime(startExclusive), formatTime(endInclusive),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count interval: %w", err)
	}
	return count, nil
}

// InsertBatch writes detections in a single transaction. Callers assign IDs;
// the loader hands out sequential ones.
func (s *Store) InsertBatch(ctx context.Context, events []domain.FireEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fire_events (
			id, datetime_utc, latitude, longitude, brightness, bright_t31,
			frp, confidence, scan, track, satellite, instrument, daynight, type, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID, formatTime(e.Time), e.Lat, e.Lon, e.Brightness, e.BrightT31,
			e.FRP, string(e.Confidence), e.Scan, e.Track, e.Satellite, e.Instrument,
			e.DayNight, e.DetectionType, e.Version,
		)
		if err != nil {
			return fmt.Errorf("insert detection %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

// MarkCorrelated records the offline matching job's annotation on one
// detection. This is the only write surface the correlation job needs.
func (s *Store) MarkCorrelated(ctx context.Context, id int64, c domain.Correlation) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE fire_events
		 SET is_matched = 1, match_confidence = ?, matched_event_type = ?, matched_place_name = ?
		 WHERE id = ?`,
		c.Confidence, c.EventType, nullableString(c.PlaceName), id,
	)
	if err != nil {
		return fmt.Errorf("mark correlated %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark correlated %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("mark correlated: detection %d not found", id)
	}
	return nil
}

// scanEvent maps one row onto a FireEvent, resolving the sparse correlation
// columns into the optional sub-record exactly once.
func scanEvent(rows *sql.Rows) (domain.FireEvent, error) {
	var (
		e          domain.FireEvent
		ts         string
		confidence string
		isMatched  int
		matchConf  sql.NullString
		matchType  sql.NullString
		matchPlace sql.NullString
	)
	err := rows.Scan(
		&e.ID, &ts, &e.Lat, &e.Lon, &e.Brightness, &e.BrightT31,
		&e.FRP, &confidence, &e.Scan, &e.Track, &e.Satellite, &e.Instrument,
		&e.DayNight, &e.DetectionType, &e.Version,
		&isMatched, &matchConf, &matchType, &matchPlace,
	)
	if err != nil {
		return domain.FireEvent{}, fmt.Errorf("scan detection row: %w", err)
	}

	e.Time, err = time.ParseInLocation(timeLayout, ts, time.UTC)
	if err != nil {
		return domain.FireEvent{}, fmt.Errorf("parse stored time %q: %w", ts, err)
	}
	e.Confidence = domain.Confidence(confidence)

	if isMatched != 0 {
		e.Match = &domain.Correlation{
			Confidence: matchConf.String,
			EventType:  matchType.String,
			PlaceName:  matchPlace.String,
		}
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
