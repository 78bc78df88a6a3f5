package streak

import "time"

// Streak counts consecutive calendar days with at least one review.
type Streak struct {
	LearnerID     string     `json:"learner_id"`
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`
}

// Advance applies a study event on today to s. The second return value is
// false when the event does not change the streak (same day as the last one).
func Advance(s Streak, today time.Time) (Streak, bool) {
	day := dateOf(today)

	if s.LastStudyDate != nil {
		switch daysBetween(*s.LastStudyDate, day) {
		case 0:
			return s, false
		case 1:
			s.Current++
		default:
			s.Current = 1
		}
	} else {
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastStudyDate = &day
	return s, true
}

// Active reports whether the streak is still alive on today: the learner
// studied today or yesterday.
func (s Streak) Active(today time.Time) bool {
	if s.LastStudyDate == nil || s.Current == 0 {
		return false
	}
	d := daysBetween(*s.LastStudyDate, dateOf(today))
	return d == 0 || d == 1
}

// NextMilestone returns the next streak milestone above the current length.
func NextMilestone(current int) int {
	thresholds := []int{5, 10, 15, 20}
	for _, t := range thresholds {
		if t > current {
			return t
		}
	}
	// Beyond 20, every 5.
	return ((current / 5) + 1) * 5
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)).Hours() / 24)
}
