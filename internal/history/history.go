// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/tomtom215/vrcxtracker/internal/metrics"
	"github.com/tomtom215/vrcxtracker/internal/models"
)

// MemoryPath opens a process-local in-memory database.
const MemoryPath = ":memory:"

// Limits for List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("history store is closed")

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id            VARCHAR PRIMARY KEY,
	join_id       BIGINT NOT NULL,
	message_id    VARCHAR,
	action        VARCHAR NOT NULL,
	location      VARCHAR NOT NULL,
	world_name    VARCHAR,
	current_count INTEGER NOT NULL,
	past_count    INTEGER NOT NULL,
	policy        VARCHAR,
	reduced       BOOLEAN NOT NULL,
	fingerprint   VARCHAR,
	error         VARCHAR,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_join ON notifications (join_id);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications (created_at);
`

// Filter narrows List results. Zero values match everything.
type Filter struct {
	JoinID int64
	Action string
	Since  time.Time
	Limit  int
}

// Summary aggregates the history table.
type Summary struct {
	Total    int            `json:"total"`
	Visits   int            `json:"visits"`
	ByAction map[string]int `json:"by_action"`
	LastAt   *time.Time     `json:"last_at,omitempty"`
}

// Store records one row per delivery attempt in DuckDB.
type Store struct {
	conn *sql.DB

	mu     sync.RWMutex
	closed bool
}

// Open opens the database at path, creating parent directories and the
// schema as needed. Use MemoryPath for an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := ""
	if path != MemoryPath && path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create history directory: %w", err)
			}
		}
		dsn = path
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Record inserts rec, assigning an id and timestamp when absent.
func (s *Store) Record(ctx context.Context, rec models.NotificationRecord) (models.NotificationRecord, error) {
	if err := s.checkOpen(); err != nil {
		return rec, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO notifications (
			id, join_id, message_id, action, location, world_name,
			current_count, past_count, policy, reduced, fingerprint, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.JoinID, nullString(rec.MessageID), rec.Action, rec.Location, nullString(rec.WorldName),
		rec.CurrentCount, rec.PastCount, nullString(rec.Policy), rec.Reduced, nullString(rec.Fingerprint),
		nullString(rec.Error), rec.CreatedAt.UTC(),
	)
	metrics.RecordHistoryWrite(err)
	if err != nil {
		return rec, fmt.Errorf("insert notification: %w", err)
	}
	return rec, nil
}

// List returns matching rows, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.NotificationRecord, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if f.JoinID != 0 {
		where = append(where, "join_id = ?")
		args = append(args, f.JoinID)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var b strings.Builder
	b.WriteString(`SELECT id, join_id, message_id, action, location, world_name,
		current_count, past_count, policy, reduced, fingerprint, error, created_at
		FROM notifications`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id LIMIT ?")
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.NotificationRecord, 0, limit)
	for rows.Next() {
		var (
			rec                                                   models.NotificationRecord
			messageID, worldName, policy, fingerprint, errMessage sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.JoinID, &messageID, &rec.Action, &rec.Location, &worldName,
			&rec.CurrentCount, &rec.PastCount, &policy, &rec.Reduced, &fingerprint, &errMessage, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.MessageID = messageID.String
		rec.WorldName = worldName.String
		rec.Policy = policy.String
		rec.Fingerprint = fingerprint.String
		rec.Error = errMessage.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// Summarize returns row counts per action, the number of distinct visits and
// the newest timestamp.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{ByAction: make(map[string]int)}
	if err := s.checkOpen(); err != nil {
		return sum, err
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT action, COUNT(*) FROM notifications GROUP BY action`)
	if err != nil {
		return sum, fmt.Errorf("count notifications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			action string
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return sum, fmt.Errorf("scan action count: %w", err)
		}
		sum.ByAction[action] = n
		sum.Total += n
	}
	if err := rows.Err(); err != nil {
		return sum, err
	}

	var last sql.NullTime
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT join_id), MAX(created_at) FROM notifications`,
	).Scan(&sum.Visits, &last); err != nil {
		return sum, fmt.Errorf("summarize notifications: %w", err)
	}
	if last.Valid {
		t := last.Time
		sum.LastAt = &t
	}
	return sum, nil
}

// Prune deletes rows older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notifications WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
