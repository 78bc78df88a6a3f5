package progress

import (
	"time"

	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/spacedrep"
)

// ItemState is a learner's progress on one learnable item.
type ItemState struct {
	LearnerID      string        `json:"learner_id"`
	ItemID         string        `json:"item_id"`
	EaseFactor     float64       `json:"ease_factor"`
	Interval       int           `json:"interval"`
	Repetition     int           `json:"repetition"`
	NextDue        *time.Time    `json:"next_due,omitempty"`
	LastReviewedAt *time.Time    `json:"last_reviewed_at,omitempty"`
	Mastery        mastery.Level `json:"mastery"`
	TotalReviews   int           `json:"total_reviews"`
	CorrectCount   int           `json:"correct_count"`

	// Version is 0 for a state that has never been saved and is bumped by
	// every successful save.
	Version int `json:"version"`
}

// NewItemState returns the unsaved initial state for a learner and item.
func NewItemState(learnerID, itemID string) *ItemState {
	s := spacedrep.NewState()
	return &ItemState{
		LearnerID:  learnerID,
		ItemID:     itemID,
		EaseFactor: s.EaseFactor,
		Interval:   s.Interval,
		Repetition: s.Repetition,
		Mastery:    mastery.New,
	}
}

// Schedule returns the scheduling triple consumed by the engine.
func (s *ItemState) Schedule() spacedrep.State {
	return spacedrep.State{
		EaseFactor: s.EaseFactor,
		Interval:   s.Interval,
		Repetition: s.Repetition,
	}
}

// Persisted reports whether the state has been saved at least once.
func (s *ItemState) Persisted() bool {
	return s.Version > 0
}

// IsDue reports whether the item should be reviewed on today.
func (s *ItemState) IsDue(today time.Time) bool {
	return spacedrep.IsDue(s.NextDue, today)
}

// OverdueDays returns how many days past due the item is.
func (s *ItemState) OverdueDays(today time.Time) int {
	return spacedrep.OverdueDays(s.NextDue, today)
}

// DaysUntilReview returns the number of days until the next review.
func (s *ItemState) DaysUntilReview(today time.Time) int {
	return spacedrep.DaysUntilReview(s.NextDue, today)
}

// Accuracy is the fraction of correct reviews, 0 when never reviewed.
func (s *ItemState) Accuracy() float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalReviews)
}
