package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/yokdil/internal/streak"
)

// StreakRepo stores one streak row per learner. It implements streak.Store.
type StreakRepo struct {
	s *Store
}

// Streaks returns the streak repository.
func (s *Store) Streaks() *StreakRepo {
	return &StreakRepo{s: s}
}

var _ streak.Store = (*StreakRepo)(nil)

// LoadStreak returns nil, nil when the learner has no streak yet.
func (r *StreakRepo) LoadStreak(ctx context.Context, learnerID string) (*streak.Streak, error) {
	b := r.s.builder()
	q := b.Select("learner_id", "current_days", "longest_days", "last_study_date").
		From(b.Table(tableStreaks)).
		Where(entsql.EQ("learner_id", learnerID))
	var out *streak.Streak
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var (
			st   streak.Streak
			last sql.NullString
		)
		if err := rows.Scan(&st.LearnerID, &st.Current, &st.Longest, &last); err != nil {
			return err
		}
		d, err := parseDay(last)
		if err != nil {
			return err
		}
		st.LastStudyDate = d
		out = &st
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load streak: %w", err)
	}
	return out, nil
}

// SaveStreak inserts or replaces the learner's streak.
func (r *StreakRepo) SaveStreak(ctx context.Context, st *streak.Streak) error {
	q := r.s.builder().Insert(tableStreaks).
		Columns("learner_id", "current_days", "longest_days", "last_study_date").
		Values(st.LearnerID, st.Current, st.Longest, dayString(st.LastStudyDate)).
		OnConflict(entsql.ConflictColumns("learner_id"), entsql.ResolveWithNewValues())
	if _, err := exec(ctx, r.s.drv, q); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}
