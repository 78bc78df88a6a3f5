package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/logger"
	"github.com/abhisek/yokdil/internal/store"
)

// Runner defaults.
const (
	DefaultInterval  = 30 * time.Second
	DefaultTimeout   = 2 * time.Minute
	DefaultBatchSize = 10
)

// Queue is the assignment request queue.
type Queue interface {
	// Claim marks up to limit pending requests running and returns them.
	Claim(ctx context.Context, limit int) ([]store.AssignmentRequest, error)
	Complete(ctx context.Context, id string, questionIDs []string) error
	Fail(ctx context.Context, id, reason string) error
}

// Builder selects assignment questions.
type Builder interface {
	Build(ctx context.Context, criteria assignment.Criteria, cohort []string) ([]string, error)
}

// Options configures a Runner.
type Options struct {
	Queue     Queue
	Builder   Builder
	Interval  time.Duration
	Timeout   time.Duration
	BatchSize int
	Logger    *logger.Logger
}

// Summary counts the outcome of one polling pass.
type Summary struct {
	Done   int `json:"done"`
	Failed int `json:"failed"`
}

// Runner builds queued assignments on a schedule.
type Runner struct {
	queue     Queue
	builder   Builder
	interval  time.Duration
	timeout   time.Duration
	batchSize int
	log       *logger.Logger

	mu        sync.Mutex
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
}

// New creates a runner.
func New(opts Options) *Runner {
	r := &Runner{
		queue:     opts.Queue,
		builder:   opts.Builder,
		interval:  opts.Interval,
		timeout:   opts.Timeout,
		batchSize: opts.BatchSize,
		log:       opts.Logger,
	}
	if r.interval <= 0 {
		r.interval = DefaultInterval
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.batchSize <= 0 {
		r.batchSize = DefaultBatchSize
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	return r
}

// Start polls the queue every interval until Stop is called. Passes never
// overlap.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scheduler != nil {
		return errors.New("runner already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(r.interval).StartImmediately().Do(func() {
		if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Error("assignment poll failed", "error", err)
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("schedule poll: %w", err)
	}
	s.StartAsync()
	r.scheduler = s
	r.cancel = cancel
	r.log.Info("assignment runner started", "interval", r.interval.String())
	return nil
}

// Stop cancels the running pass and stops the schedule.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scheduler == nil {
		return
	}
	r.cancel()
	r.scheduler.Stop()
	r.scheduler = nil
	r.log.Info("assignment runner stopped")
}

// RunOnce claims one batch of pending requests and builds each.
func (r *Runner) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary
	reqs, err := r.queue.Claim(ctx, r.batchSize)
	if err != nil {
		return sum, fmt.Errorf("claim requests: %w", err)
	}
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			// Claimed requests are never left running.
			r.fail(ctx, req.ID, err)
			sum.Failed++
			continue
		}
		ids, err := r.build(ctx, req)
		if err != nil {
			r.fail(ctx, req.ID, err)
			sum.Failed++
			continue
		}
		if err := r.queue.Complete(ctx, req.ID, ids); err != nil {
			r.fail(ctx, req.ID, err)
			sum.Failed++
			continue
		}
		sum.Done++
		r.log.Info("assignment built", "request_id", req.ID, "questions", len(ids))
	}
	return sum, nil
}

func (r *Runner) build(ctx context.Context, req store.AssignmentRequest) ([]string, error) {
	criteria, err := assignment.ParseCriteria(req.Criteria)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.builder.Build(ctx, criteria, req.Cohort)
}

func (r *Runner) fail(ctx context.Context, id string, cause error) {
	r.log.Warn("assignment request failed", "request_id", id, "error", cause)
	if err := r.queue.Fail(context.WithoutCancel(ctx), id, cause.Error()); err != nil {
		r.log.Error("mark request failed", "request_id", id, "error", err)
	}
}
