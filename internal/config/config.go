// Package config loads runtime settings from an optional .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/jobs"
	"github.com/abhisek/yokdil/internal/store"
)

// DefaultLockTTL bounds how long a Redis lock is held.
const DefaultLockTTL = 10 * time.Second

// Config holds the runtime settings.
type Config struct {
	DBDriver string
	DBPath   string // SQLite file or Postgres DSN; empty uses the default path
	LogMode  string

	RedisAddr string
	LockTTL   time.Duration

	MasteryThreshold  float64
	MasteryWindowDays int
	AttemptPageSize   int
	ScanConcurrency   int

	JobsInterval time.Duration
	JobTimeout   time.Duration
}

// Load reads envFile if it exists and then the environment. Variables
// already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		DBDriver:          String("YOKDIL_DB_DRIVER", store.DriverSQLite),
		DBPath:            String("YOKDIL_DB", ""),
		LogMode:           String("YOKDIL_LOG_MODE", "production"),
		RedisAddr:         String("REDIS_ADDR", ""),
		LockTTL:           Duration("YOKDIL_LOCK_TTL", DefaultLockTTL),
		MasteryThreshold:  Float("YOKDIL_MASTERY_THRESHOLD", assignment.DefaultMasteryThreshold),
		MasteryWindowDays: Int("YOKDIL_MASTERY_WINDOW_DAYS", assignment.DefaultWindowDays),
		AttemptPageSize:   Int("YOKDIL_ATTEMPT_PAGE_SIZE", assignment.DefaultPageSize),
		ScanConcurrency:   Int("YOKDIL_SCAN_CONCURRENCY", assignment.DefaultConcurrency),
		JobsInterval:      Duration("YOKDIL_JOBS_INTERVAL", jobs.DefaultInterval),
		JobTimeout:        Duration("YOKDIL_JOB_TIMEOUT", jobs.DefaultTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("YOKDIL_DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if c.DBDriver == store.DriverPostgres && c.DBPath == "" {
		return errors.New("YOKDIL_DB: a Postgres DSN is required")
	}
	if c.MasteryThreshold <= 0 || c.MasteryThreshold > 1 {
		return fmt.Errorf("YOKDIL_MASTERY_THRESHOLD: %v outside (0, 1]", c.MasteryThreshold)
	}
	if c.MasteryWindowDays <= 0 {
		return fmt.Errorf("YOKDIL_MASTERY_WINDOW_DAYS: must be positive, got %d", c.MasteryWindowDays)
	}
	return nil
}

// String returns the trimmed variable or def when unset.
func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

// Int returns the variable as an int, or def when unset or malformed.
func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// Float returns the variable as a float64, or def when unset or malformed.
func Float(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Duration parses values like "30s" or "2m", or returns def when unset or
// malformed.
func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
