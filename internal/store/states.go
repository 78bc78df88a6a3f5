package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/spacedrep"
)

var stateColumns = []string{
	"learner_id", "item_id", "ease_factor", "interval_days", "repetition",
	"next_due", "last_reviewed_at", "mastery", "total_reviews", "correct_count", "version",
}

// StateRepo stores learner item states and the review log. It implements
// progress.StateStore and progress.ReviewLog.
type StateRepo struct {
	s *Store
}

// States returns the state repository.
func (s *Store) States() *StateRepo {
	return &StateRepo{s: s}
}

var (
	_ progress.StateStore = (*StateRepo)(nil)
	_ progress.ReviewLog  = (*StateRepo)(nil)
)

func scanState(rows entsql.ColumnScanner) (progress.ItemState, error) {
	var (
		st       progress.ItemState
		nextDue  sql.NullString
		reviewed sql.NullTime
		level    string
	)
	err := rows.Scan(&st.LearnerID, &st.ItemID, &st.EaseFactor, &st.Interval, &st.Repetition,
		&nextDue, &reviewed, &level, &st.TotalReviews, &st.CorrectCount, &st.Version)
	if err != nil {
		return st, err
	}
	if st.NextDue, err = parseDay(nextDue); err != nil {
		return st, err
	}
	st.LastReviewedAt = nullTime(reviewed)
	if st.Mastery, err = mastery.ParseLevel(level); err != nil {
		return st, err
	}
	return st, nil
}

func (r *StateRepo) selectStates(ctx context.Context, q *entsql.Selector) ([]progress.ItemState, error) {
	var out []progress.ItemState
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		st, err := scanState(rows)
		if err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

// LoadState returns nil, nil when the learner has no state for the item.
func (r *StateRepo) LoadState(ctx context.Context, learnerID, itemID string) (*progress.ItemState, error) {
	b := r.s.builder()
	q := b.Select(stateColumns...).
		From(b.Table(tableItemStates)).
		Where(entsql.And(entsql.EQ("learner_id", learnerID), entsql.EQ("item_id", itemID)))
	states, err := r.selectStates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if len(states) == 0 {
		return nil, nil
	}
	return &states[0], nil
}

// SaveReview writes st and appends rec in one transaction. See
// progress.StateStore for the versioning contract.
func (r *StateRepo) SaveReview(ctx context.Context, st *progress.ItemState, rec *progress.ReviewRecord) error {
	now := r.s.now().UTC()
	var seq int64
	err := r.s.withTx(ctx, func(tx dialect.Tx) error {
		b := r.s.builder()
		var affected int64
		var err error
		if st.Version == 0 {
			ins := b.Insert(tableItemStates).
				Columns(append(stateColumns, "updated_at")...).
				Values(st.LearnerID, st.ItemID, st.EaseFactor, st.Interval, st.Repetition,
					dayString(st.NextDue), timeOrNil(st.LastReviewedAt), string(st.Mastery),
					st.TotalReviews, st.CorrectCount, 1, now).
				OnConflict(entsql.ConflictColumns("learner_id", "item_id"), entsql.DoNothing())
			affected, err = exec(ctx, tx, ins)
		} else {
			upd := b.Update(tableItemStates).
				Set("ease_factor", st.EaseFactor).
				Set("interval_days", st.Interval).
				Set("repetition", st.Repetition).
				Set("next_due", dayString(st.NextDue)).
				Set("last_reviewed_at", timeOrNil(st.LastReviewedAt)).
				Set("mastery", string(st.Mastery)).
				Set("total_reviews", st.TotalReviews).
				Set("correct_count", st.CorrectCount).
				Set("version", st.Version+1).
				Set("updated_at", now).
				Where(entsql.And(
					entsql.EQ("learner_id", st.LearnerID),
					entsql.EQ("item_id", st.ItemID),
					entsql.EQ("version", st.Version),
				))
			affected, err = exec(ctx, tx, upd)
		}
		if err != nil {
			return fmt.Errorf("write state: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("state %s/%s at version %d: %w",
				st.LearnerID, st.ItemID, st.Version, progress.ErrVersionConflict)
		}

		if seq, err = r.s.seq.Next(ctx, tx); err != nil {
			return err
		}
		ins := b.Insert(tableReviewEvents).
			Columns("sequence", "learner_id", "item_id", "session_id", "quality",
				"response_time_ms", "mastery_from", "mastery_to", "review_day", "reviewed_at").
			Values(seq, rec.LearnerID, rec.ItemID, nullString(rec.SessionID), int(rec.Quality),
				rec.ResponseTimeMs, string(rec.MasteryFrom), string(rec.MasteryTo),
				spacedrep.FormatDate(rec.ReviewDay), rec.ReviewedAt.UTC())
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("append review: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	st.Version++
	rec.Sequence = seq
	return nil
}

// DueStates returns the learner's states due on or before today or never
// scheduled, unscheduled first, then by due date.
func (r *StateRepo) DueStates(ctx context.Context, learnerID string, today time.Time, setID string, limit int) ([]progress.ItemState, error) {
	b := r.s.builder()
	where := entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.Or(entsql.IsNull("next_due"), entsql.LTE("next_due", spacedrep.FormatDate(today))),
	)
	if setID != "" {
		inSet := b.Select("id").From(b.Table(tableWords)).Where(entsql.EQ("set_id", setID))
		where = entsql.And(where, entsql.In("item_id", inSet))
	}
	q := b.Select(stateColumns...).
		From(b.Table(tableItemStates)).
		Where(where).
		OrderExpr(entsql.Expr("CASE WHEN next_due IS NULL THEN 0 ELSE 1 END")).
		OrderBy("next_due", "item_id")
	if limit > 0 {
		q.Limit(limit)
	}
	states, err := r.selectStates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("due states: %w", err)
	}
	return states, nil
}

// ListStates returns the learner's states for itemIDs keyed by item id.
func (r *StateRepo) ListStates(ctx context.Context, learnerID string, itemIDs []string) (map[string]progress.ItemState, error) {
	out := make(map[string]progress.ItemState, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	b := r.s.builder()
	q := b.Select(stateColumns...).
		From(b.Table(tableItemStates)).
		Where(entsql.And(entsql.EQ("learner_id", learnerID), entsql.In("item_id", anys(itemIDs)...)))
	states, err := r.selectStates(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	for _, st := range states {
		out[st.ItemID] = st
	}
	return out, nil
}

// MasteryCounts returns the number of the learner's items per level.
// Levels without items are absent.
func (r *StateRepo) MasteryCounts(ctx context.Context, learnerID string) (map[mastery.Level]int, error) {
	b := r.s.builder()
	q := b.Select("mastery", entsql.Count("*")).
		From(b.Table(tableItemStates)).
		Where(entsql.EQ("learner_id", learnerID)).
		GroupBy("mastery")
	out := make(map[mastery.Level]int)
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return err
		}
		out[mastery.Level(level)] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mastery counts: %w", err)
	}
	return out, nil
}

// CountDue returns how many of the learner's items are due on today.
func (r *StateRepo) CountDue(ctx context.Context, learnerID string, today time.Time) (int, error) {
	b := r.s.builder()
	q := b.Select(entsql.Count("*")).
		From(b.Table(tableItemStates)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.Or(entsql.IsNull("next_due"), entsql.LTE("next_due", spacedrep.FormatDate(today))),
		))
	n, err := queryInt(ctx, r.s.drv, q)
	if err != nil {
		return 0, fmt.Errorf("count due: %w", err)
	}
	return n, nil
}

// ReviewTotals counts the learner's reviews and the passing ones.
func (r *StateRepo) ReviewTotals(ctx context.Context, learnerID string) (progress.ReviewTotals, error) {
	b := r.s.builder()
	var totals progress.ReviewTotals
	q := b.Select(entsql.Count("*")).
		From(b.Table(tableReviewEvents)).
		Where(entsql.EQ("learner_id", learnerID))
	n, err := queryInt(ctx, r.s.drv, q)
	if err != nil {
		return totals, fmt.Errorf("count reviews: %w", err)
	}
	totals.Reviews = n

	q = b.Select(entsql.Count("*")).
		From(b.Table(tableReviewEvents)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.GTE("quality", int(spacedrep.Hard)),
		))
	if totals.Correct, err = queryInt(ctx, r.s.drv, q); err != nil {
		return totals, fmt.Errorf("count correct reviews: %w", err)
	}
	return totals, nil
}

// ReviewCountsByDay returns review counts keyed by YYYY-MM-DD for days in
// [from, to].
func (r *StateRepo) ReviewCountsByDay(ctx context.Context, learnerID string, from, to time.Time) (map[string]int, error) {
	b := r.s.builder()
	q := b.Select("review_day", entsql.Count("*")).
		From(b.Table(tableReviewEvents)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.GTE("review_day", spacedrep.FormatDate(from)),
			entsql.LTE("review_day", spacedrep.FormatDate(to)),
		)).
		GroupBy("review_day")
	out := make(map[string]int)
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return err
		}
		out[day] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("review counts: %w", err)
	}
	return out, nil
}

// Reviews returns the learner's review log after sequence, oldest first.
func (r *StateRepo) Reviews(ctx context.Context, learnerID string, after int64, limit int) ([]progress.ReviewRecord, error) {
	b := r.s.builder()
	q := b.Select("sequence", "learner_id", "item_id", "session_id", "quality",
		"response_time_ms", "mastery_from", "mastery_to", "review_day", "reviewed_at").
		From(b.Table(tableReviewEvents)).
		Where(entsql.And(entsql.EQ("learner_id", learnerID), entsql.GT("sequence", after))).
		OrderBy("sequence")
	if limit > 0 {
		q.Limit(limit)
	}
	var out []progress.ReviewRecord
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var (
			rec      progress.ReviewRecord
			session  sql.NullString
			quality  int
			from, to string
			day      string
		)
		if err := rows.Scan(&rec.Sequence, &rec.LearnerID, &rec.ItemID, &session, &quality,
			&rec.ResponseTimeMs, &from, &to, &day, &rec.ReviewedAt); err != nil {
			return err
		}
		d, err := spacedrep.ParseDate(day)
		if err != nil {
			return fmt.Errorf("parse review day %q: %w", day, err)
		}
		rec.SessionID = session.String
		rec.Quality = spacedrep.Quality(quality)
		rec.MasteryFrom = mastery.Level(from)
		rec.MasteryTo = mastery.Level(to)
		rec.ReviewDay = d
		rec.ReviewedAt = rec.ReviewedAt.UTC()
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
