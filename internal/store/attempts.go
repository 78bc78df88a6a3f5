package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/catalog"
)

// AttemptRepo stores answered questions. It implements assignment.AttemptLog.
type AttemptRepo struct {
	s *Store
}

// Attempts returns the attempt repository.
func (s *Store) Attempts() *AttemptRepo {
	return &AttemptRepo{s: s}
}

var _ assignment.AttemptLog = (*AttemptRepo)(nil)

// Record appends an attempt by learnerID choosing optionID on questionID.
// Correctness is taken from the option. Returns catalog.ErrNotFound when the
// option does not belong to the question.
func (r *AttemptRepo) Record(ctx context.Context, learnerID, questionID, optionID string, at time.Time) (*assignment.Attempt, error) {
	a := &assignment.Attempt{
		LearnerID:      learnerID,
		QuestionID:     questionID,
		ChosenOptionID: optionID,
		AnsweredAt:     at.UTC(),
	}
	err := r.s.withTx(ctx, func(tx dialect.Tx) error {
		b := r.s.builder()
		q := b.Select("correct").
			From(b.Table(tableOptions)).
			Where(entsql.And(entsql.EQ("id", optionID), entsql.EQ("question_id", questionID)))
		found := false
		if err := queryEach(ctx, tx, q, func(rows entsql.ColumnScanner) error {
			found = true
			return rows.Scan(&a.Correct)
		}); err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("option %s of question %s: %w", optionID, questionID, catalog.ErrNotFound)
		}

		seq, err := r.s.seq.Next(ctx, tx)
		if err != nil {
			return err
		}
		a.Sequence = seq
		ins := b.Insert(tableAttempts).
			Columns("sequence", "learner_id", "question_id", "chosen_option_id", "correct", "answered_at").
			Values(a.Sequence, a.LearnerID, a.QuestionID, a.ChosenOptionID, a.Correct, a.AnsweredAt)
		_, err = exec(ctx, tx, ins)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	return a, nil
}

// AttemptsPage returns up to limit attempts by learnerIDs answered at or
// after since with a sequence above after, ordered by sequence.
func (r *AttemptRepo) AttemptsPage(ctx context.Context, learnerIDs []string, since time.Time, after int64, limit int) ([]assignment.Attempt, error) {
	if len(learnerIDs) == 0 {
		return nil, nil
	}
	b := r.s.builder()
	q := b.Select("sequence", "learner_id", "question_id", "chosen_option_id", "correct", "answered_at").
		From(b.Table(tableAttempts)).
		Where(entsql.And(
			entsql.In("learner_id", anys(learnerIDs)...),
			entsql.GTE("answered_at", since.UTC()),
			entsql.GT("sequence", after),
		)).
		OrderBy("sequence")
	if limit > 0 {
		q.Limit(limit)
	}
	var out []assignment.Attempt
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var a assignment.Attempt
		if err := rows.Scan(&a.Sequence, &a.LearnerID, &a.QuestionID, &a.ChosenOptionID, &a.Correct, &a.AnsweredAt); err != nil {
			return err
		}
		a.AnsweredAt = a.AnsweredAt.UTC()
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attempts page: %w", err)
	}
	return out, nil
}
