package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/yokdil/internal/mastery"
)

// State is the scheduling portion of a learner's progress on one item.
type State struct {
	EaseFactor float64 `json:"ease_factor"`
	Interval   int     `json:"interval"`
	Repetition int     `json:"repetition"`
}

// NewState returns the state of an item that has never been reviewed.
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// Result is the outcome of applying one review to a State.
type Result struct {
	State
	NextDue time.Time     `json:"next_due"`
	Mastery mastery.Level `json:"mastery"`
}

// Transition applies a single review of quality q on day today to s.
// It is a pure function: the same inputs always produce the same Result.
func Transition(s State, q Quality, today time.Time) Result {
	next := s

	if !q.Passed() {
		next.Repetition = 0
		next.Interval = FailedIntervalDays
	} else {
		next.Repetition = s.Repetition + 1
		switch next.Repetition {
		case 1:
			next.Interval = FirstIntervalDays
		case 2:
			next.Interval = SecondIntervalDays
		default:
			// Uses the ease factor in effect before this review.
			next.Interval = int(math.Round(float64(s.Interval) * s.EaseFactor))
		}

		diff := float64(Easy - q)
		next.EaseFactor = s.EaseFactor + (0.1 - diff*(0.08+diff*0.02))
	}

	if next.EaseFactor < MinEaseFactor {
		next.EaseFactor = MinEaseFactor
	}
	next.EaseFactor = roundEase(next.EaseFactor)
	if next.Interval > MaxIntervalDays {
		next.Interval = MaxIntervalDays
	}

	return Result{
		State:   next,
		NextDue: Day(today).AddDate(0, 0, next.Interval),
		Mastery: mastery.Classify(next.Repetition, next.EaseFactor, next.Interval),
	}
}

// roundEase keeps the stored ease factor at two decimals.
func roundEase(ef float64) float64 {
	return math.Round(ef*100) / 100
}
