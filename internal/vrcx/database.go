// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package vrcx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/metrics"
	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/vrchat"
)

// timestampLayout matches the ISO-8601 strings VRCX writes to created_at.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ErrUserNotFound is returned when VRCX has no logged-in user recorded.
var ErrUserNotFound = errors.New("vrchat user id not found in vrcx database")

var friendTablePattern = regexp.MustCompile(`^[A-Za-z0-9]+_friend_log_current$`)

// Database is a read-only view of the VRCX SQLite database.
type Database struct {
	conn *sql.DB
	path string
	now  func() time.Time

	myLocations string
}

// Open opens path read-only. The file must exist.
func Open(ctx context.Context, path string) (*Database, error) {
	if path == "" {
		return nil, errors.New("vrcx database path is empty")
	}
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open vrcx database: %w", err)
	}
	conn.SetMaxOpenConns(2)
	conn.SetConnMaxIdleTime(time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping vrcx database %s: %w", path, err)
	}
	d := &Database{conn: conn, path: path, now: time.Now}
	if err := d.prepareQueries(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) prepareQueries(ctx context.Context) error {
	var n int
	if err := d.conn.QueryRowContext(ctx, groupNameColumnQuery).Scan(&n); err != nil {
		return fmt.Errorf("inspect gamelog_location: %w", err)
	}
	groupExpr := "NULL"
	if n > 0 {
		groupExpr = "gl.group_name"
	}
	d.myLocations = strings.ReplaceAll(myLocationsQuery, "{{group_name}}", groupExpr)
	return nil
}

// Path returns the database file path.
func (d *Database) Path() string { return d.path }

// Close closes the connection pool.
func (d *Database) Close() error { return d.conn.Close() }

// Ping checks the connection.
func (d *Database) Ping(ctx context.Context) error { return d.conn.PingContext(ctx) }

// UserID returns the id of the user last logged in to VRCX.
func (d *Database) UserID(ctx context.Context) (string, error) {
	start := time.Now()
	var id sql.NullString
	err := d.conn.QueryRowContext(ctx, userIDQuery).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && strings.TrimSpace(id.String) == "") {
		metrics.RecordVRCXQuery("user_id", time.Since(start), nil)
		return "", ErrUserNotFound
	}
	metrics.RecordVRCXQuery("user_id", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("query user id: %w", err)
	}
	return id.String, nil
}

// MyLocations returns up to count of the user's most recent visits whose
// estimated leave is within lookback of now (or still open), oldest first.
func (d *Database) MyLocations(ctx context.Context, userID string, count int, lookback time.Duration) ([]Location, error) {
	if count <= 0 {
		return nil, nil
	}
	since := d.now().Add(-lookback).UTC().Format(timestampLayout)

	start := time.Now()
	rows, err := d.conn.QueryContext(ctx, d.myLocations,
		sql.Named("user_id", userID),
		sql.Named("since", since),
		sql.Named("location_count", count),
	)
	if err != nil {
		metrics.RecordVRCXQuery("my_locations", time.Since(start), err)
		return nil, fmt.Errorf("query my locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var (
			loc                                   Location
			leaveID                               sql.NullInt64
			joinedAt, leftAt, nextJoin, estimated sql.NullString
			worldName, worldID, groupName         sql.NullString
		)
		if err := rows.Scan(&loc.JoinID, &loc.UserID, &loc.DisplayName, &loc.LocationID, &joinedAt,
			&leaveID, &leftAt, &nextJoin, &estimated, &worldName, &worldID, &groupName); err != nil {
			metrics.RecordVRCXQuery("my_locations", time.Since(start), err)
			return nil, fmt.Errorf("scan my location: %w", err)
		}

		t, err := parseTimestamp(joinedAt.String)
		if err != nil {
			logging.Warn().Err(err).Int64("join_id", loc.JoinID).Msg("Skipping visit with unreadable join time")
			continue
		}
		loc.JoinedAt = t
		if leaveID.Valid {
			id := leaveID.Int64
			loc.LeaveID = &id
		}
		loc.LeftAt = parseOptional(leftAt)
		loc.NextJoinAt = parseOptional(nextJoin)
		loc.EstimatedLeaveAt = parseOptional(estimated)
		loc.WorldName = worldName.String
		loc.WorldID = worldID.String
		loc.GroupName = groupName.String
		if loc.WorldID == "" {
			if i := strings.IndexByte(loc.LocationID, ':'); i > 0 {
				loc.WorldID = loc.LocationID[:i]
			}
		}
		if vrchat.IsPseudoLocation(loc.LocationID) {
			continue
		}
		out = append(out, loc)
	}
	err = rows.Err()
	metrics.RecordVRCXQuery("my_locations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("iterate my locations: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// InstanceMembers returns the roster of loc. The window runs from one second
// before the viewer joined to one second after the estimated leave, or to
// now while the visit is open.
func (d *Database) InstanceMembers(ctx context.Context, userID string, loc Location) ([]models.RosterRecord, error) {
	friends, err := d.friendSource(ctx, userID)
	if err != nil {
		return nil, err
	}

	var windowEnd any
	if loc.EstimatedLeaveAt != nil {
		windowEnd = loc.EstimatedLeaveAt.Add(time.Second).UTC().Format(timestampLayout)
	}

	start := time.Now()
	rows, err := d.conn.QueryContext(ctx, fmt.Sprintf(instanceMembersQuery, friends),
		sql.Named("location", loc.LocationID),
		sql.Named("window_start", loc.JoinedAt.Add(-time.Second).UTC().Format(timestampLayout)),
		sql.Named("window_end", windowEnd),
	)
	if err != nil {
		metrics.RecordVRCXQuery("instance_members", time.Since(start), err)
		return nil, fmt.Errorf("query instance members: %w", err)
	}
	defer rows.Close()

	var out []models.RosterRecord
	for rows.Next() {
		var (
			rec                models.RosterRecord
			name               sql.NullString
			lastJoin, lastLeft sql.NullString
		)
		if err := rows.Scan(&rec.UserID, &name, &lastJoin, &lastLeft,
			&rec.IsCurrently, &rec.IsInstanceOwner, &rec.IsFriend); err != nil {
			metrics.RecordVRCXQuery("instance_members", time.Since(start), err)
			return nil, fmt.Errorf("scan instance member: %w", err)
		}
		rec.DisplayName = name.String
		rec.LastJoinAt = parseOptional(lastJoin)
		rec.LastLeaveAt = parseOptional(lastLeft)
		out = append(out, rec)
	}
	err = rows.Err()
	metrics.RecordVRCXQuery("instance_members", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("iterate instance members: %w", err)
	}
	return out, nil
}

// friendSource returns the per-user friend log table, or an empty derived
// table when VRCX has not created one.
func (d *Database) friendSource(ctx context.Context, userID string) (string, error) {
	table := FriendTableName(userID)
	if !friendTablePattern.MatchString(table) {
		return noFriendsSource, nil
	}
	var one int
	err := d.conn.QueryRowContext(ctx, tableExistsQuery, table).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return noFriendsSource, nil
	}
	if err != nil {
		return "", fmt.Errorf("look up friend table: %w", err)
	}
	return table, nil
}

// FriendTableName is the VRCX friend log table for userID: the id with
// underscores and hyphens removed, suffixed with _friend_log_current.
func FriendTableName(userID string) string {
	r := strings.NewReplacer("_", "", "-", "")
	return r.Replace(userID) + "_friend_log_current"
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseOptional(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := parseTimestamp(s.String)
	if err != nil {
		return nil
	}
	return &t
}
