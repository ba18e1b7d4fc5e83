package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const minutesPerDay = 24 * 60

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// DBPath is the companion app's SQLite event database.
	DBPath string
	// UserID is the observing user's id; the feed table names derive
	// from it.
	UserID string
	// FriendIDs restricts analysis to these user ids. Nil allows all.
	FriendIDs map[string]struct{}
	// RunningThreshold is the largest gap between activity timestamps
	// still counted as continuous observer uptime.
	RunningThreshold time.Duration
	// BucketMinutes is the histogram bucket width; evenly divides a day.
	BucketMinutes int
	// StartTime drops presence rows before this instant. Zero disables
	// the filter.
	StartTime time.Time
	// Normalize emits bias-corrected ratios instead of raw counts.
	Normalize bool
	// MinBucketActivations is the sample-size floor below which a cell
	// reports no data.
	MinBucketActivations int
	// NoDataZero renders below-floor cells as 0 instead of blank.
	NoDataZero bool
}

// Load loads the configuration from .env files and environment variables.
// The .env beside the binary wins over one in the working directory.
func Load() (*AppConfig, error) {
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables")
	}

	cfg := &AppConfig{
		DBPath:     os.Getenv("OPTIME_DB_PATH"),
		UserID:     os.Getenv("OPTIME_USER_ID"),
		Normalize:  getEnvBool("OPTIME_NORMALIZE", true),
		NoDataZero: getEnvBool("OPTIME_NO_DATA_ZERO", false),
	}
	if cfg.DBPath == "" {
		return nil, errors.New("OPTIME_DB_PATH is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("OPTIME_USER_ID is required")
	}

	thresholdMinutes, err := getEnvInt("OPTIME_RUNNING_THRESHOLD_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	if thresholdMinutes <= 0 {
		return nil, errors.New("OPTIME_RUNNING_THRESHOLD_MINUTES must be positive")
	}
	cfg.RunningThreshold = time.Duration(thresholdMinutes) * time.Minute

	cfg.BucketMinutes, err = getEnvInt("OPTIME_BUCKET_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if cfg.BucketMinutes <= 0 || minutesPerDay%cfg.BucketMinutes != 0 {
		return nil, fmt.Errorf("OPTIME_BUCKET_MINUTES (%d) must evenly divide a day", cfg.BucketMinutes)
	}

	cfg.MinBucketActivations, err = getEnvInt("OPTIME_MIN_BUCKET_ACTIVATIONS", 1)
	if err != nil {
		return nil, err
	}
	if cfg.MinBucketActivations < 1 {
		return nil, errors.New("OPTIME_MIN_BUCKET_ACTIVATIONS must be at least 1")
	}

	if raw := os.Getenv("OPTIME_FRIEND_IDS"); raw != "" {
		cfg.FriendIDs = make(map[string]struct{})
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.FriendIDs[id] = struct{}{}
			}
		}
	}

	if raw := os.Getenv("OPTIME_START_TIME"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid OPTIME_START_TIME %q: %w", raw, err)
		}
		cfg.StartTime = start.UTC()
	}

	return cfg, nil
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
