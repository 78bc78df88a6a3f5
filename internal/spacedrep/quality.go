package spacedrep

import (
	"errors"
	"fmt"
)

// ErrInvalidQuality is returned for quality ratings outside the accepted set.
var ErrInvalidQuality = errors.New("invalid quality")

// Quality is the learner's self-rated (or inferred) recall quality.
type Quality int

const (
	Again Quality = 0 // incorrect
	Hard  Quality = 3 // correct with difficulty
	Good  Quality = 4 // correct
	Easy  Quality = 5 // correct and effortless
)

// Response time thresholds used when inferring quality from an answer.
const (
	FastResponseMs = 3000
	SlowResponseMs = 8000
)

// Valid reports whether q is one of the accepted ratings.
func (q Quality) Valid() bool {
	switch q {
	case Again, Hard, Good, Easy:
		return true
	}
	return false
}

// Passed reports whether the rating counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= Hard
}

func (q Quality) String() string {
	switch q {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// ParseQuality converts a raw rating into a Quality.
func ParseQuality(v int) (Quality, error) {
	q := Quality(v)
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %d (want 0, 3, 4 or 5)", ErrInvalidQuality, v)
	}
	return q, nil
}

// QualityFromResponse infers a rating from a quiz answer. Wrong answers are
// Again, hinted answers are Hard, answers under FastResponseMs are Easy,
// answers under SlowResponseMs are Good and slower answers default to Good.
func QualityFromResponse(correct bool, responseTimeMs int, hintUsed bool) Quality {
	switch {
	case !correct:
		return Again
	case hintUsed:
		return Hard
	case responseTimeMs > 0 && responseTimeMs < FastResponseMs:
		return Easy
	case responseTimeMs > 0 && responseTimeMs < SlowResponseMs:
		return Good
	default:
		return Good
	}
}
