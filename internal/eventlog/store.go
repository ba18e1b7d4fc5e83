package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // database/sql driver
)

// activityFeeds are the per-user feed tables whose timestamps prove the
// companion app was running. They share the user-derived table prefix.
var activityFeeds = []string{
	"feed_avatar",
	"feed_gps",
	"feed_online_offline",
	"feed_status",
	"friend_log_history",
}

// Store reads the companion application's event database.
type Store struct {
	db     *sql.DB
	prefix string
}

// Open opens the database read-only. The companion app names its per-user
// tables after the observing user's id with separators stripped.
func Open(path, userID string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping event database: %w", err)
	}
	return &Store{db: db, prefix: TablePrefix(userID)}, nil
}

// TablePrefix strips the separators the companion app drops from a user id
// when naming that user's feed tables.
func TablePrefix(userID string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(userID)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ActivityTimestamps returns every event timestamp across all feeds in
// ascending order. Any feed event at all proves the companion app was
// running at that instant.
func (s *Store) ActivityTimestamps(ctx context.Context) ([]time.Time, error) {
	parts := make([]string, len(activityFeeds))
	for i, feed := range activityFeeds {
		parts[i] = fmt.Sprintf("select created_at from %s_%s", s.prefix, feed)
	}
	query := strings.Join(parts, " union ") + " order by created_at asc"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity timestamps: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan activity timestamp: %w", err)
		}
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading activity timestamps: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Loaded activity timestamps")
	return out, nil
}

// PresenceEvents returns the online/offline feed in insertion order, which
// the companion app keeps chronological.
func (s *Store) PresenceEvents(ctx context.Context) ([]PresenceEvent, error) {
	query := fmt.Sprintf("select created_at, user_id, display_name, type from %s_feed_online_offline order by id",
		s.prefix)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query presence events: %w", err)
	}
	defer rows.Close()

	var out []PresenceEvent
	for rows.Next() {
		var raw, userID, displayName, kindRaw string
		if err := rows.Scan(&raw, &userID, &displayName, &kindRaw); err != nil {
			return nil, fmt.Errorf("failed to scan presence event: %w", err)
		}
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, err
		}
		kind, err := ParsePresenceKind(kindRaw)
		if err != nil {
			return nil, err
		}
		out = append(out, PresenceEvent{
			CreatedAt:   ts,
			UserID:      userID,
			DisplayName: displayName,
			Kind:        kind,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading presence events: %w", err)
	}

	log.Debug().Int("count", len(out)).Msg("Loaded presence events")
	return out, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q: %w", raw, err)
	}
	return ts.UTC(), nil
}
