package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPTIME_DB_PATH", "/tmp/events.db")
	t.Setenv("OPTIME_USER_ID", "usr_test-user")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RunningThreshold != 5*time.Minute {
		t.Errorf("RunningThreshold = %v, want 5m", cfg.RunningThreshold)
	}
	if cfg.BucketMinutes != 30 {
		t.Errorf("BucketMinutes = %d, want 30", cfg.BucketMinutes)
	}
	if cfg.MinBucketActivations != 1 {
		t.Errorf("MinBucketActivations = %d, want 1", cfg.MinBucketActivations)
	}
	if !cfg.Normalize {
		t.Error("Normalize should default to true")
	}
	if cfg.NoDataZero {
		t.Error("NoDataZero should default to false")
	}
	if cfg.FriendIDs != nil {
		t.Error("FriendIDs should default to nil (allow all)")
	}
	if !cfg.StartTime.IsZero() {
		t.Error("StartTime should default to zero")
	}
}

func TestLoad_RequiredValues(t *testing.T) {
	t.Setenv("OPTIME_DB_PATH", "")
	t.Setenv("OPTIME_USER_ID", "usr_test-user")
	if _, err := Load(); err == nil {
		t.Error("expected error when OPTIME_DB_PATH is missing")
	}

	t.Setenv("OPTIME_DB_PATH", "/tmp/events.db")
	t.Setenv("OPTIME_USER_ID", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when OPTIME_USER_ID is missing")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"BucketDoesNotDivideDay", "OPTIME_BUCKET_MINUTES", "7"},
		{"BucketNegative", "OPTIME_BUCKET_MINUTES", "-30"},
		{"BucketNotANumber", "OPTIME_BUCKET_MINUTES", "half-hour"},
		{"ThresholdZero", "OPTIME_RUNNING_THRESHOLD_MINUTES", "0"},
		{"ActivationsZero", "OPTIME_MIN_BUCKET_ACTIVATIONS", "0"},
		{"StartTimeGarbage", "OPTIME_START_TIME", "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_FriendIDs(t *testing.T) {
	setRequired(t)
	t.Setenv("OPTIME_FRIEND_IDS", "usr_a, usr_b,,usr_c")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.FriendIDs) != 3 {
		t.Fatalf("FriendIDs = %v, want 3 entries", cfg.FriendIDs)
	}
	for _, id := range []string{"usr_a", "usr_b", "usr_c"} {
		if _, ok := cfg.FriendIDs[id]; !ok {
			t.Errorf("FriendIDs missing %q", id)
		}
	}
}

func TestLoad_StartTime(t *testing.T) {
	setRequired(t)
	t.Setenv("OPTIME_START_TIME", "2022-03-07T00:00:00Z")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := time.Date(2022, time.March, 7, 0, 0, 0, 0, time.UTC)
	if !cfg.StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v", cfg.StartTime, want)
	}
}

func TestLoad_BucketWidthOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("OPTIME_BUCKET_MINUTES", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BucketMinutes != 45 {
		t.Errorf("BucketMinutes = %d, want 45", cfg.BucketMinutes)
	}
}
