package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/config"
	"github.com/abhisek/yokdil/internal/jobs"
	"github.com/abhisek/yokdil/internal/keylock"
	"github.com/abhisek/yokdil/internal/logger"
	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/quiz"
	"github.com/abhisek/yokdil/internal/store"
	"github.com/abhisek/yokdil/internal/streak"
)

var rootCmd = &cobra.Command{
	Use:           "yokdil",
	Short:         "Spaced-repetition vocabulary trainer",
	Long:          "yokdil schedules vocabulary reviews with SM-2, tracks streaks and builds trap-aware assignments for exam preparation.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file or Postgres DSN (overrides YOKDIL_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file with settings")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(learnerCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(trapsCmd)
	rootCmd.AddCommand(resetCmd)
}

// resolveDBPath returns the database location using --db flag (highest
// priority), then YOKDIL_DB, then the default XDG path. Postgres always
// needs an explicit DSN.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = cfg.DBPath
	}
	if cfg.DBDriver == store.DriverPostgres {
		if p == "" {
			return "", fmt.Errorf("a Postgres DSN is required")
		}
		return p, nil
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// app bundles the services a command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	locks    keylock.Locker
	streaks  *streak.Tracker
	tracker  *progress.Tracker
	composer *quiz.Composer
	builder  *assignment.Builder

	closers []func()
}

// openApp loads settings, opens the store and builds the services.
func openApp(cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, log.Sync)

	dsn, err := resolveDBPath(cmd, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(store.Config{Driver: cfg.DBDriver, DSN: dsn})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, func() { _ = st.Close() })

	a.locks = keylock.NewMemory()
	if cfg.RedisAddr != "" {
		client, err := keylock.Dial(cmd.Context(), cfg.RedisAddr)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.locks = keylock.NewRedis(client, cfg.LockTTL, log)
	}

	a.streaks = streak.NewTracker(st.Streaks(), a.locks, log)
	a.tracker = progress.New(progress.Options{
		States:   st.States(),
		Reviews:  st.States(),
		Words:    st.Words(),
		Learners: st.Learners(),
		Streaks:  a.streaks,
		Locker:   a.locks,
		Logger:   log,
	})
	a.composer = quiz.NewComposer(st.Words(), st.States(), nil, log)
	a.builder = assignment.NewBuilder(assignment.Options{
		Questions:   st.Questions(),
		Attempts:    st.Attempts(),
		Traps:       st.Questions(),
		PageSize:    cfg.AttemptPageSize,
		Concurrency: cfg.ScanConcurrency,
		Logger:      log,
	})
	return a, nil
}

// runner returns a job runner over the request queue.
func (a *app) runner() *jobs.Runner {
	return jobs.New(jobs.Options{
		Queue:    a.store.Requests(),
		Builder:  a.builder,
		Interval: a.cfg.JobsInterval,
		Timeout:  a.cfg.JobTimeout,
		Logger:   a.log,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
