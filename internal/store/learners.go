package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Learner is a registered learner.
type Learner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// LearnerRepo manages learners.
type LearnerRepo struct {
	s *Store
}

// Learners returns the learner repository.
func (s *Store) Learners() *LearnerRepo {
	return &LearnerRepo{s: s}
}

// Add registers a learner. An empty id gets a generated one.
func (r *LearnerRepo) Add(ctx context.Context, id, name string) (*Learner, error) {
	if id == "" {
		id = uuid.NewString()
	}
	l := &Learner{ID: id, Name: strings.TrimSpace(name), CreatedAt: r.s.now().UTC()}
	q := r.s.builder().Insert(tableLearners).
		Columns("id", "name", "created_at").
		Values(l.ID, l.Name, l.CreatedAt)
	if _, err := exec(ctx, r.s.drv, q); err != nil {
		return nil, fmt.Errorf("insert learner: %w", err)
	}
	return l, nil
}

// Get returns the learner or ErrNotFound.
func (r *LearnerRepo) Get(ctx context.Context, id string) (*Learner, error) {
	b := r.s.builder()
	q := b.Select("id", "name", "created_at").
		From(b.Table(tableLearners)).
		Where(entsql.EQ("id", id))
	var out *Learner
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var l Learner
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return err
		}
		out = &l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query learner: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("learner %s: %w", id, ErrNotFound)
	}
	return out, nil
}

// List returns all learners ordered by creation time.
func (r *LearnerRepo) List(ctx context.Context) ([]Learner, error) {
	b := r.s.builder()
	q := b.Select("id", "name", "created_at").
		From(b.Table(tableLearners)).
		OrderBy("created_at", "id")
	var out []Learner
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var l Learner
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	return out, nil
}

// LearnerExists reports whether the learner is registered.
func (r *LearnerRepo) LearnerExists(ctx context.Context, id string) (bool, error) {
	b := r.s.builder()
	q := b.Select(entsql.Count("*")).
		From(b.Table(tableLearners)).
		Where(entsql.EQ("id", id))
	n, err := queryInt(ctx, r.s.drv, q)
	if err != nil {
		return false, fmt.Errorf("count learner: %w", err)
	}
	return n > 0, nil
}

// ResetProgress deletes the learner's item states, review history, attempts
// and streak. The learner itself is kept.
func (r *LearnerRepo) ResetProgress(ctx context.Context, id string) error {
	return r.s.withTx(ctx, func(tx dialect.Tx) error {
		for _, table := range []string{tableItemStates, tableReviewEvents, tableAttempts, tableStreaks} {
			q := r.s.builder().Delete(table).Where(entsql.EQ("learner_id", id))
			if _, err := exec(ctx, tx, q); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		return nil
	})
}
