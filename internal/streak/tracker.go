package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/yokdil/internal/keylock"
	"github.com/abhisek/yokdil/internal/logger"
)

// Store persists one streak record per learner.
type Store interface {
	// LoadStreak returns nil, nil when the learner has no streak yet.
	LoadStreak(ctx context.Context, learnerID string) (*Streak, error)
	SaveStreak(ctx context.Context, s *Streak) error
}

// Recorder is notified of every qualifying study event.
type Recorder interface {
	Record(ctx context.Context, learnerID string, today time.Time) (*Streak, error)
}

// Tracker applies study events to persisted streaks.
type Tracker struct {
	store Store
	locks keylock.Locker
	log   *logger.Logger
}

// NewTracker creates a tracker. A nil locker uses an in-process one.
func NewTracker(store Store, locks keylock.Locker, log *logger.Logger) *Tracker {
	if locks == nil {
		locks = keylock.NewMemory()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{store: store, locks: locks, log: log}
}

// LockKey is the lock key guarding a learner's streak.
func LockKey(learnerID string) string {
	return "streak:" + learnerID
}

// Record registers a study event for learnerID on today, creating the streak
// on the first event.
func (t *Tracker) Record(ctx context.Context, learnerID string, today time.Time) (*Streak, error) {
	unlock, err := t.locks.Lock(ctx, LockKey(learnerID))
	if err != nil {
		return nil, fmt.Errorf("lock streak: %w", err)
	}
	defer unlock()

	cur, err := t.store.LoadStreak(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if cur == nil {
		cur = &Streak{LearnerID: learnerID}
	}

	next, changed := Advance(*cur, today)
	if !changed {
		return cur, nil
	}
	if err := t.store.SaveStreak(ctx, &next); err != nil {
		return nil, fmt.Errorf("save streak: %w", err)
	}
	if next.Current > cur.Current && next.Current == NextMilestone(cur.Current) {
		t.log.Info("streak milestone", "learner_id", learnerID, "days", next.Current)
	}
	return &next, nil
}

// Get returns the learner's streak, or a zero streak if none exists.
func (t *Tracker) Get(ctx context.Context, learnerID string) (*Streak, error) {
	s, err := t.store.LoadStreak(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	if s == nil {
		s = &Streak{LearnerID: learnerID}
	}
	return s, nil
}
