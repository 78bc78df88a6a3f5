package spacedrep

// DefaultEaseFactor is the ease factor assigned to a never-reviewed item.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the lower bound for the ease factor after any review.
const MinEaseFactor = 1.3

// MaxIntervalDays caps the review interval.
const MaxIntervalDays = 365

// Intervals for the first and second consecutive successful reviews.
const (
	FirstIntervalDays  = 1
	SecondIntervalDays = 6
)

// FailedIntervalDays is the interval applied after a failed review.
const FailedIntervalDays = 1
