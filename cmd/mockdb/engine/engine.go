package engine

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"optime/internal/eventlog"

	_ "modernc.org/sqlite"
)

// GeneratorConfig controls the synthetic database layout.
type GeneratorConfig struct {
	UserID  string
	Days    int
	Friends int
	Seed    int64
	Now     time.Time
}

var activityFeeds = []string{"feed_gps", "feed_status", "feed_avatar", "friend_log_history"}

// Generate writes a synthetic companion-app event database: observer
// sessions with activity ticks at a cadence well under the default running
// threshold, friend online/offline pairs inside those sessions, and the
// occasional pair in the dead of night so the clamper's drop path has
// something to drop.
func Generate(path string, cfg GeneratorConfig) error {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Friends < 1 {
		cfg.Friends = 1
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	prefix := eventlog.TablePrefix(cfg.UserID)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := createSchema(db, prefix); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertFeed := func(feed string, t time.Time) error {
		_, err := tx.Exec(
			fmt.Sprintf("insert into %s_%s (created_at) values (?)", prefix, feed),
			stamp(t))
		return err
	}
	insertPresence := func(t time.Time, friend int, kind string) error {
		_, err := tx.Exec(
			fmt.Sprintf("insert into %s_feed_online_offline (created_at, user_id, display_name, type) values (?, ?, ?, ?)", prefix),
			stamp(t),
			fmt.Sprintf("usr_friend-%04d", friend),
			fmt.Sprintf("Friend %d", friend),
			kind)
		return err
	}

	start := cfg.Now.UTC().AddDate(0, 0, -cfg.Days)
	haveSession := false
	for day := 0; day < cfg.Days; day++ {
		dayStart := start.AddDate(0, 0, day)

		// A nighttime pair no uptime can account for. Only once sessions
		// exist, so the pair falls between timeline events rather than
		// before the first one.
		if haveSession && rng.Float64() < 0.3 {
			on := dayStart.Add(time.Duration(3+rng.Intn(3)) * time.Hour)
			friend := rng.Intn(cfg.Friends)
			if err := insertPresence(on, friend, "Online"); err != nil {
				return err
			}
			if err := insertPresence(on.Add(30*time.Minute), friend, "Offline"); err != nil {
				return err
			}
		}

		// Most days get one evening session; skipped days leave some
		// weekdays undersampled, which is what normalization corrects.
		if rng.Float64() < 0.2 {
			continue
		}
		sessionStart := dayStart.Add(time.Duration(17+rng.Intn(4)) * time.Hour)
		sessionEnd := sessionStart.Add(time.Duration(1+rng.Intn(4)) * time.Hour)
		haveSession = true

		for t := sessionStart; t.Before(sessionEnd); t = t.Add(time.Duration(1+rng.Intn(3)) * time.Minute) {
			if err := insertFeed(activityFeeds[rng.Intn(len(activityFeeds))], t); err != nil {
				return err
			}
		}

		for friend := 0; friend < cfg.Friends; friend++ {
			if rng.Float64() < 0.5 {
				continue
			}
			on := sessionStart.Add(time.Duration(rng.Intn(45)) * time.Minute)
			off := on.Add(time.Duration(10+rng.Intn(90)) * time.Minute)
			if err := insertPresence(on, friend, "Online"); err != nil {
				return err
			}
			if err := insertPresence(off, friend, "Offline"); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func createSchema(db *sql.DB, prefix string) error {
	for _, feed := range activityFeeds {
		stmt := fmt.Sprintf(
			"create table if not exists %s_%s (id integer primary key autoincrement, created_at text not null)",
			prefix, feed)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create %s table: %w", feed, err)
		}
	}
	stmt := fmt.Sprintf(
		"create table if not exists %s_feed_online_offline (id integer primary key autoincrement, created_at text not null, user_id text not null, display_name text not null, type text not null)",
		prefix)
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("failed to create online/offline table: %w", err)
	}
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
