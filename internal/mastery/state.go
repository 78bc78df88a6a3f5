package mastery

import "fmt"

// Level represents an item's position in the mastery lifecycle.
type Level string

const (
	New      Level = "new"
	Learning Level = "learning"
	Review   Level = "review"
	Mastered Level = "mastered"
)

// Classification thresholds.
const (
	MasteredRepetitions  = 8
	MasteredEaseFactor   = 2.5
	MasteredIntervalDays = 21
	ReviewRepetitions    = 3
)

var levels = []Level{New, Learning, Review, Mastered}

// Levels returns all levels in ascending order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// Rank orders levels from new (0) to mastered (3). Unknown levels rank as new.
func (l Level) Rank() int {
	for i, v := range levels {
		if v == l {
			return i
		}
	}
	return 0
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case New, Learning, Review, Mastered:
		return true
	}
	return false
}

// ParseLevel converts a stored string into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown mastery level %q", s)
	}
	return l, nil
}

// Classify derives the mastery level from scheduling values. It is the only
// way a level is assigned after a review.
func Classify(repetition int, easeFactor float64, intervalDays int) Level {
	switch {
	case repetition == 0:
		return Learning
	case repetition >= MasteredRepetitions &&
		easeFactor >= MasteredEaseFactor &&
		intervalDays >= MasteredIntervalDays:
		return Mastered
	case repetition >= ReviewRepetitions:
		return Review
	default:
		return Learning
	}
}

// StateTransition records a mastery level change for display and logging.
type StateTransition struct {
	ItemID  string
	From    Level
	To      Level
	Trigger string // "review", "reset"
}

// Promoted reports whether the transition moved up the lifecycle.
func (t StateTransition) Promoted() bool {
	return t.To.Rank() > t.From.Rank()
}
