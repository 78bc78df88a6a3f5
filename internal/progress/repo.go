package progress

import (
	"context"
	"time"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/spacedrep"
	"github.com/abhisek/yokdil/internal/streak"
)

// ReviewRecord is one entry in the append-only review log.
type ReviewRecord struct {
	Sequence       int64             `json:"sequence"`
	LearnerID      string            `json:"learner_id"`
	ItemID         string            `json:"item_id"`
	SessionID      string            `json:"session_id,omitempty"`
	Quality        spacedrep.Quality `json:"quality"`
	ResponseTimeMs int               `json:"response_time_ms"`
	MasteryFrom    mastery.Level     `json:"mastery_from"`
	MasteryTo      mastery.Level     `json:"mastery_to"`
	ReviewDay      time.Time         `json:"review_day"`
	ReviewedAt     time.Time         `json:"reviewed_at"`
}

// ReviewTotals summarizes a learner's review history.
type ReviewTotals struct {
	Reviews int
	Correct int
}

// StateStore persists learner item states.
type StateStore interface {
	// LoadState returns nil, nil when the learner has no state for the item.
	LoadState(ctx context.Context, learnerID, itemID string) (*ItemState, error)

	// SaveReview atomically writes the state and appends rec to the review
	// log. A state with Version 0 is inserted; otherwise it is updated only
	// if the stored version still equals s.Version. On success s.Version is
	// incremented and rec.Sequence assigned. Returns ErrVersionConflict when
	// the stored state moved.
	SaveReview(ctx context.Context, s *ItemState, rec *ReviewRecord) error

	// DueStates returns states with NextDue on or before today or unset,
	// unset first, then by NextDue ascending. A non-empty setID restricts
	// the result to items of that word set.
	DueStates(ctx context.Context, learnerID string, today time.Time, setID string, limit int) ([]ItemState, error)

	// ListStates returns the learner's states for the given items, keyed by
	// item id. Items without a state are absent.
	ListStates(ctx context.Context, learnerID string, itemIDs []string) (map[string]ItemState, error)

	MasteryCounts(ctx context.Context, learnerID string) (map[mastery.Level]int, error)
	CountDue(ctx context.Context, learnerID string, today time.Time) (int, error)
}

// ReviewLog reads the review history.
type ReviewLog interface {
	ReviewTotals(ctx context.Context, learnerID string) (ReviewTotals, error)
	// ReviewCountsByDay returns review counts keyed by YYYY-MM-DD for days
	// in [from, to].
	ReviewCountsByDay(ctx context.Context, learnerID string, from, to time.Time) (map[string]int, error)
}

// Learners checks learner identity.
type Learners interface {
	LearnerExists(ctx context.Context, learnerID string) (bool, error)
}

// Words is the catalog view the tracker needs.
type Words interface {
	catalog.WordCatalog
	// WordsByID returns the words for ids, keyed by id. Unknown ids are absent.
	WordsByID(ctx context.Context, ids []string) (map[string]catalog.Word, error)
}

// Streaks records study days and reports the current streak.
type Streaks interface {
	streak.Recorder
	Get(ctx context.Context, learnerID string) (*streak.Streak, error)
}
