package progress

import (
	"context"
	"fmt"

	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/spacedrep"
	"github.com/abhisek/yokdil/internal/streak"
)

// ActivityDays is the number of daily buckets in Stats.
const ActivityDays = 7

// DayCount is the number of reviews on one calendar day.
type DayCount struct {
	Date    string `json:"date"`
	Reviews int    `json:"reviews"`
}

// Stats summarizes a learner's progress.
type Stats struct {
	LearnerID           string                `json:"learner_id"`
	MasteryDistribution map[mastery.Level]int `json:"mastery_distribution"`
	TotalWordsStudied   int                   `json:"total_words_studied"`
	TotalReviews        int                   `json:"total_reviews"`
	CorrectReviews      int                   `json:"correct_reviews"`
	Accuracy            float64               `json:"accuracy"`
	DueToday            int                   `json:"due_today"`
	Streak              streak.Streak         `json:"streak"`
	NextMilestone       int                   `json:"next_milestone"`
	Last7Days           []DayCount            `json:"last_7_days"`
}

// Stats returns the learner's progress summary. The mastery distribution
// always contains every level and Last7Days always has ActivityDays entries,
// oldest first, ending today.
func (t *Tracker) Stats(ctx context.Context, learnerID string) (*Stats, error) {
	today := spacedrep.Day(t.now())

	counts, err := t.states.MasteryCounts(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("mastery counts: %w", err)
	}
	st := &Stats{
		LearnerID:           learnerID,
		MasteryDistribution: make(map[mastery.Level]int, len(mastery.Levels())),
	}
	for _, l := range mastery.Levels() {
		st.MasteryDistribution[l] = counts[l]
		st.TotalWordsStudied += counts[l]
	}

	totals, err := t.reviews.ReviewTotals(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("review totals: %w", err)
	}
	st.TotalReviews = totals.Reviews
	st.CorrectReviews = totals.Correct
	if totals.Reviews > 0 {
		st.Accuracy = float64(totals.Correct) / float64(totals.Reviews)
	}

	if st.DueToday, err = t.states.CountDue(ctx, learnerID, today); err != nil {
		return nil, fmt.Errorf("count due: %w", err)
	}

	st.Streak = streak.Streak{LearnerID: learnerID}
	if t.streaks != nil {
		s, err := t.streaks.Get(ctx, learnerID)
		if err != nil {
			return nil, fmt.Errorf("streak: %w", err)
		}
		if !s.Active(today) {
			s.Current = 0
		}
		st.Streak = *s
	}
	st.NextMilestone = streak.NextMilestone(st.Streak.Current)

	from := today.AddDate(0, 0, -(ActivityDays - 1))
	byDay, err := t.reviews.ReviewCountsByDay(ctx, learnerID, from, today)
	if err != nil {
		return nil, fmt.Errorf("daily reviews: %w", err)
	}
	st.Last7Days = make([]DayCount, ActivityDays)
	for i := 0; i < ActivityDays; i++ {
		d := spacedrep.FormatDate(from.AddDate(0, 0, i))
		st.Last7Days[i] = DayCount{Date: d, Reviews: byDay[d]}
	}
	return st, nil
}
