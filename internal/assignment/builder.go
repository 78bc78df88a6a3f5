package assignment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/logger"
	"github.com/abhisek/yokdil/internal/sampling"
	"github.com/abhisek/yokdil/internal/trap"
)

// Scan defaults.
const (
	DefaultPageSize    = 500
	DefaultConcurrency = 4
	DefaultChunkSize   = 50
)

// Attempt is one answered question in the attempt history.
type Attempt struct {
	Sequence       int64     `json:"sequence"`
	LearnerID      string    `json:"learner_id"`
	QuestionID     string    `json:"question_id"`
	ChosenOptionID string    `json:"chosen_option_id"`
	Correct        bool      `json:"correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// AttemptLog pages through attempt history.
type AttemptLog interface {
	// AttemptsPage returns up to limit attempts by learnerIDs answered at or
	// after since with Sequence > after, ordered by Sequence.
	AttemptsPage(ctx context.Context, learnerIDs []string, since time.Time, after int64, limit int) ([]Attempt, error)
}

// TrapLookup resolves trap categories of answer options.
type TrapLookup interface {
	// TrapsForOptions returns the category of each labeled option. Options
	// without a label are absent from the result.
	TrapsForOptions(ctx context.Context, optionIDs []string) (map[string]trap.Code, error)
}

// Options configures a Builder. Questions is required; Attempts and Traps
// are required when criteria exclude mastered categories.
type Options struct {
	Questions   catalog.QuestionCatalog
	Attempts    AttemptLog
	Traps       TrapLookup
	Rand        sampling.Source
	Now         func() time.Time
	PageSize    int
	Concurrency int
	ChunkSize   int
	Logger      *logger.Logger
}

// Builder selects assignment questions for a cohort.
type Builder struct {
	questions   catalog.QuestionCatalog
	attempts    AttemptLog
	traps       TrapLookup
	now         func() time.Time
	pageSize    int
	concurrency int
	chunkSize   int
	log         *logger.Logger

	randMu sync.Mutex
	rand   sampling.Source
}

// NewBuilder creates a builder.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		questions:   opts.Questions,
		attempts:    opts.Attempts,
		traps:       opts.Traps,
		rand:        opts.Rand,
		now:         opts.Now,
		pageSize:    opts.PageSize,
		concurrency: opts.Concurrency,
		chunkSize:   opts.ChunkSize,
		log:         opts.Logger,
	}
	if b.rand == nil {
		b.rand = sampling.NewSource()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.pageSize <= 0 {
		b.pageSize = DefaultPageSize
	}
	if b.concurrency <= 0 {
		b.concurrency = DefaultConcurrency
	}
	if b.chunkSize <= 0 {
		b.chunkSize = DefaultChunkSize
	}
	if b.log == nil {
		b.log = logger.Nop()
	}
	return b
}

// Build returns the ids of the questions selected for cohort. Fewer than
// criteria.Count ids are returned when fewer candidates remain.
func (b *Builder) Build(ctx context.Context, criteria Criteria, cohort []string) ([]string, error) {
	c, err := criteria.Normalize()
	if err != nil {
		return nil, err
	}

	candidates, err := b.questions.Questions(ctx, catalog.QuestionFilter{
		Tags:         c.Tags,
		TrapCodes:    c.TrapCodes,
		Difficulties: c.Difficulties,
	})
	if err != nil {
		return nil, fmt.Errorf("filter questions: %w", err)
	}
	matched := len(candidates)

	if c.ExcludeMastered && len(candidates) > 0 {
		agg, err := b.MasteryReport(ctx, cohort, c.WindowDays)
		if err != nil {
			return nil, err
		}
		mastered := agg.Mastered(c.MasteryThreshold)
		candidates = ExcludeMastered(candidates, mastered)
		b.log.Debug("mastered categories excluded", "mastered", len(mastered),
			"before", matched, "after", len(candidates))
	}

	b.randMu.Lock()
	picked := sampling.Sample(b.rand, candidates, c.Count)
	b.randMu.Unlock()

	ids := make([]string, len(picked))
	for i, q := range picked {
		ids[i] = q.ID
	}
	b.log.Info("assignment built", "cohort", len(cohort), "matched", matched,
		"eligible", len(candidates), "selected", len(ids))
	return ids, nil
}

// MasteryReport aggregates the cohort's attempts over the trailing
// windowDays by trap category of the chosen option. Attempts whose option
// has no category are skipped. The cohort is scanned in chunks with bounded
// concurrency; each learner is counted once however often listed. The
// first error or a cancelled context aborts the scan.
func (b *Builder) MasteryReport(ctx context.Context, cohort []string, windowDays int) (Aggregate, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cohort = uniqueLearners(cohort)
	total := make(Aggregate)
	if len(cohort) == 0 {
		return total, nil
	}
	if b.attempts == nil || b.traps == nil {
		return nil, fmt.Errorf("mastery report: attempt log and trap lookup are required")
	}
	since := b.now().AddDate(0, 0, -windowDays)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for start := 0; start < len(cohort); start += b.chunkSize {
		end := start + b.chunkSize
		if end > len(cohort) {
			end = len(cohort)
		}
		chunk := cohort[start:end]
		g.Go(func() error {
			agg, err := b.scanChunk(gctx, chunk, since)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Merge(agg)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan attempts: %w", err)
	}
	return total, nil
}

// uniqueLearners drops repeated and empty ids, keeping first-seen order.
func uniqueLearners(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (b *Builder) scanChunk(ctx context.Context, learners []string, since time.Time) (Aggregate, error) {
	agg := make(Aggregate)
	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := b.attempts.AttemptsPage(ctx, learners, since, after, b.pageSize)
		if err != nil {
			return nil, fmt.Errorf("attempts page: %w", err)
		}
		if len(page) == 0 {
			return agg, nil
		}

		optionIDs := make([]string, 0, len(page))
		for _, a := range page {
			if a.ChosenOptionID != "" {
				optionIDs = append(optionIDs, a.ChosenOptionID)
			}
		}
		var labels map[string]trap.Code
		if len(optionIDs) > 0 {
			if labels, err = b.traps.TrapsForOptions(ctx, optionIDs); err != nil {
				return nil, fmt.Errorf("trap lookup: %w", err)
			}
		}
		for _, a := range page {
			code, ok := labels[a.ChosenOptionID]
			if !ok || code == "" {
				continue
			}
			agg.Add(code, a.Correct)
		}

		after = page[len(page)-1].Sequence
		if len(page) < b.pageSize {
			return agg, nil
		}
	}
}
