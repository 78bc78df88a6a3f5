package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/keylock"
	"github.com/abhisek/yokdil/internal/logger"
	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/spacedrep"
)

// Default page sizes.
const (
	DefaultDueLimit = 20
	DefaultNewLimit = 10
)

// Options configures a Tracker. States, Reviews and Words are required.
type Options struct {
	States   StateStore
	Reviews  ReviewLog
	Words    Words
	Learners Learners       // optional; skips the learner check when nil
	Streaks  Streaks        // optional
	Locker   keylock.Locker // defaults to an in-process locker
	Now      func() time.Time
	Logger   *logger.Logger
}

// Tracker owns learner item states and applies review events to them.
type Tracker struct {
	states   StateStore
	reviews  ReviewLog
	words    Words
	learners Learners
	streaks  Streaks
	locks    keylock.Locker
	now      func() time.Time
	log      *logger.Logger
}

// New creates a tracker.
func New(opts Options) *Tracker {
	t := &Tracker{
		states:   opts.States,
		reviews:  opts.Reviews,
		words:    opts.Words,
		learners: opts.Learners,
		streaks:  opts.Streaks,
		locks:    opts.Locker,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if t.locks == nil {
		t.locks = keylock.NewMemory()
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.log == nil {
		t.log = logger.Nop()
	}
	return t
}

// Review is a single review event submitted by a learner.
type Review struct {
	LearnerID      string `json:"learner_id"`
	ItemID         string `json:"item_id"`
	Quality        int    `json:"quality"`
	SessionID      string `json:"session_id,omitempty"`
	ResponseTimeMs int    `json:"response_time_ms"`
}

// Answer is a raw quiz answer whose quality is inferred.
type Answer struct {
	LearnerID      string `json:"learner_id"`
	ItemID         string `json:"item_id"`
	Correct        bool   `json:"correct"`
	HintUsed       bool   `json:"hint_used"`
	SessionID      string `json:"session_id,omitempty"`
	ResponseTimeMs int    `json:"response_time_ms"`
}

// ReviewResult reports the outcome of a recorded review.
type ReviewResult struct {
	ItemID         string            `json:"item_id"`
	Quality        spacedrep.Quality `json:"quality"`
	NewInterval    int               `json:"new_interval"`
	NextReviewDate time.Time         `json:"next_review_date"`
	MasteryLevel   mastery.Level     `json:"mastery_level"`
	EaseFactor     float64           `json:"ease_factor"`

	Transition *mastery.StateTransition `json:"-"`
}

// ReviewLockKey is the lock key guarding one learner's state for one item.
func ReviewLockKey(learnerID, itemID string) string {
	return "review:" + learnerID + ":" + itemID
}

// GetOrCreate returns the learner's state for the item, or a fresh unsaved
// state if none exists.
func (t *Tracker) GetOrCreate(ctx context.Context, learnerID, itemID string) (*ItemState, error) {
	s, err := t.states.LoadState(ctx, learnerID, itemID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if s == nil {
		s = NewItemState(learnerID, itemID)
	}
	return s, nil
}

// RecordReview applies one review event. Nothing is written when validation
// fails. A concurrent write to the same state surfaces as ErrVersionConflict.
func (t *Tracker) RecordReview(ctx context.Context, r Review) (*ReviewResult, error) {
	q, err := spacedrep.ParseQuality(r.Quality)
	if err != nil {
		return nil, err
	}
	if r.ResponseTimeMs < 0 {
		return nil, fmt.Errorf("%w: negative response time", ErrInvalidReview)
	}
	if r.LearnerID == "" || r.ItemID == "" {
		return nil, fmt.Errorf("%w: learner and item are required", ErrInvalidReview)
	}
	if err := t.checkLearner(ctx, r.LearnerID); err != nil {
		return nil, err
	}
	if _, err := t.words.Word(ctx, r.ItemID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItem, r.ItemID)
		}
		return nil, fmt.Errorf("lookup item: %w", err)
	}

	unlock, err := t.locks.Lock(ctx, ReviewLockKey(r.LearnerID, r.ItemID))
	if err != nil {
		return nil, fmt.Errorf("lock state: %w", err)
	}
	defer unlock()

	state, err := t.GetOrCreate(ctx, r.LearnerID, r.ItemID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	from := state.Mastery
	res := spacedrep.Transition(state.Schedule(), q, now)

	state.EaseFactor = res.EaseFactor
	state.Interval = res.Interval
	state.Repetition = res.Repetition
	state.Mastery = res.Mastery
	nextDue := res.NextDue
	state.NextDue = &nextDue
	state.LastReviewedAt = &now
	state.TotalReviews++
	if q.Passed() {
		state.CorrectCount++
	}

	rec := &ReviewRecord{
		LearnerID:      r.LearnerID,
		ItemID:         r.ItemID,
		SessionID:      r.SessionID,
		Quality:        q,
		ResponseTimeMs: r.ResponseTimeMs,
		MasteryFrom:    from,
		MasteryTo:      res.Mastery,
		ReviewDay:      spacedrep.Day(now),
		ReviewedAt:     now,
	}
	if err := t.states.SaveReview(ctx, state, rec); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			t.log.Warn("review conflict", "learner_id", r.LearnerID, "item_id", r.ItemID)
		}
		return nil, fmt.Errorf("save review: %w", err)
	}

	if t.streaks != nil {
		if _, err := t.streaks.Record(ctx, r.LearnerID, now); err != nil {
			// Review is already committed.
			t.log.Warn("streak update failed", "learner_id", r.LearnerID, "error", err)
		}
	}

	result := &ReviewResult{
		ItemID:         r.ItemID,
		Quality:        q,
		NewInterval:    res.Interval,
		NextReviewDate: res.NextDue,
		MasteryLevel:   res.Mastery,
		EaseFactor:     res.EaseFactor,
	}
	if from != res.Mastery {
		result.Transition = &mastery.StateTransition{
			ItemID:  r.ItemID,
			From:    from,
			To:      res.Mastery,
			Trigger: "review",
		}
		t.log.Debug("mastery changed", "learner_id", r.LearnerID, "item_id", r.ItemID,
			"from", from, "to", res.Mastery)
	}
	return result, nil
}

// RecordAnswer infers a quality from a raw answer and records it.
func (t *Tracker) RecordAnswer(ctx context.Context, a Answer) (*ReviewResult, error) {
	q := spacedrep.QualityFromResponse(a.Correct, a.ResponseTimeMs, a.HintUsed)
	return t.RecordReview(ctx, Review{
		LearnerID:      a.LearnerID,
		ItemID:         a.ItemID,
		Quality:        int(q),
		SessionID:      a.SessionID,
		ResponseTimeMs: a.ResponseTimeMs,
	})
}

func (t *Tracker) checkLearner(ctx context.Context, learnerID string) error {
	if t.learners == nil {
		return nil
	}
	ok, err := t.learners.LearnerExists(ctx, learnerID)
	if err != nil {
		return fmt.Errorf("lookup learner: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLearner, learnerID)
	}
	return nil
}

// DueItem pairs a due state with its word.
type DueItem struct {
	State ItemState    `json:"state"`
	Word  catalog.Word `json:"word"`
}

// DueQueue returns the learner's due items: never-scheduled first, then by
// due date ascending, capped at limit (DefaultDueLimit when limit <= 0).
// A non-empty setID restricts the queue to one word set.
func (t *Tracker) DueQueue(ctx context.Context, learnerID string, limit int, setID string) ([]DueItem, error) {
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	states, err := t.states.DueStates(ctx, learnerID, t.now(), setID, limit)
	if err != nil {
		return nil, fmt.Errorf("due states: %w", err)
	}
	if len(states) == 0 {
		return nil, nil
	}

	ids := make([]string, len(states))
	for i, s := range states {
		ids[i] = s.ItemID
	}
	words, err := t.words.WordsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}

	out := make([]DueItem, 0, len(states))
	for _, s := range states {
		w, ok := words[s.ItemID]
		if !ok {
			continue
		}
		out = append(out, DueItem{State: s, Word: w})
	}
	return out, nil
}

// NewItems returns words of the set the learner has never reviewed, in
// catalog order, capped at limit (DefaultNewLimit when limit <= 0).
func (t *Tracker) NewItems(ctx context.Context, learnerID, setID string, limit int) ([]catalog.Word, error) {
	if limit <= 0 {
		limit = DefaultNewLimit
	}
	words, err := t.words.WordsInSet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("load set: %w", err)
	}
	if len(words) == 0 {
		return nil, nil
	}

	ids := make([]string, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	studied, err := t.states.ListStates(ctx, learnerID, ids)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}

	var out []catalog.Word
	for _, w := range words {
		if _, ok := studied[w.ID]; ok {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
