package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/trap"
)

// inChunk bounds the number of values bound into one IN list.
const inChunk = 500

// QuestionRepo stores multiple-choice questions. It implements
// catalog.QuestionCatalog and the assignment trap lookup.
type QuestionRepo struct {
	s *Store
}

// Questions returns the question repository.
func (s *Store) Questions() *QuestionRepo {
	return &QuestionRepo{s: s}
}

var _ catalog.QuestionCatalog = (*QuestionRepo)(nil)

// Add stores q with its options and tags and returns its id. Missing ids
// are generated and missing option letters assigned A, B, C...
func (r *QuestionRepo) Add(ctx context.Context, q catalog.Question) (string, error) {
	if strings.TrimSpace(q.Stem) == "" {
		return "", fmt.Errorf("question stem is required")
	}
	if q.Difficulty == "" {
		q.Difficulty = catalog.Medium
	}
	d, err := catalog.ParseDifficulty(string(q.Difficulty))
	if err != nil {
		return "", err
	}
	correct := 0
	for _, o := range q.Options {
		if o.Correct {
			correct++
		}
		if o.Trap != "" && !trap.Valid(o.Trap) {
			return "", fmt.Errorf("option %q: unknown trap code %s", o.Text, o.Trap)
		}
	}
	if len(q.Options) < 2 || correct != 1 {
		return "", fmt.Errorf("question needs at least two options and exactly one correct, got %d/%d", len(q.Options), correct)
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	err = r.s.withTx(ctx, func(tx dialect.Tx) error {
		b := r.s.builder()
		ins := b.Insert(tableQuestions).
			Columns("id", "stem", "difficulty", "created_at").
			Values(q.ID, q.Stem, string(d), r.s.now().UTC())
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}

		opts := b.Insert(tableOptions).Columns("id", "question_id", "letter", "text", "correct", "trap_code")
		for i, o := range q.Options {
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			if o.Letter == "" {
				o.Letter = string(rune('A' + i))
			}
			opts.Values(o.ID, q.ID, o.Letter, o.Text, o.Correct, nullString(string(o.Trap)))
		}
		if _, err := exec(ctx, tx, opts); err != nil {
			return fmt.Errorf("insert options: %w", err)
		}

		if tags := normalizeTags(q.Tags); len(tags) > 0 {
			ti := b.Insert(tableTags).Columns("question_id", "tag")
			for _, t := range tags {
				ti.Values(q.ID, t)
			}
			if _, err := exec(ctx, tx, ti); err != nil {
				return fmt.Errorf("insert tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return q.ID, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Questions returns the questions matching filter ordered by id.
func (r *QuestionRepo) Questions(ctx context.Context, filter catalog.QuestionFilter) ([]catalog.Question, error) {
	b := r.s.builder()
	q := b.Select("id", "stem", "difficulty").
		From(b.Table(tableQuestions)).
		OrderBy("id")
	if len(filter.Difficulties) > 0 {
		ds := make([]any, len(filter.Difficulties))
		for i, d := range filter.Difficulties {
			ds[i] = string(d)
		}
		q.Where(entsql.In("difficulty", ds...))
	}
	if tags := normalizeTags(filter.Tags); len(tags) > 0 {
		sub := b.Select("question_id").From(b.Table(tableTags)).Where(entsql.In("tag", anys(tags)...))
		q.Where(entsql.In("id", sub))
	}
	if len(filter.TrapCodes) > 0 {
		codes := make([]any, len(filter.TrapCodes))
		for i, c := range filter.TrapCodes {
			codes[i] = string(c)
		}
		sub := b.Select("question_id").From(b.Table(tableOptions)).Where(entsql.In("trap_code", codes...))
		q.Where(entsql.In("id", sub))
	}

	var out []catalog.Question
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var (
			qu catalog.Question
			d  string
		)
		if err := rows.Scan(&qu.ID, &qu.Stem, &d); err != nil {
			return err
		}
		qu.Difficulty = catalog.Difficulty(d)
		out = append(out, qu)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Question returns one question or catalog.ErrNotFound.
func (r *QuestionRepo) Question(ctx context.Context, id string) (*catalog.Question, error) {
	b := r.s.builder()
	q := b.Select("id", "stem", "difficulty").
		From(b.Table(tableQuestions)).
		Where(entsql.EQ("id", id))
	var out []catalog.Question
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var (
			qu catalog.Question
			d  string
		)
		if err := rows.Scan(&qu.ID, &qu.Stem, &d); err != nil {
			return err
		}
		qu.Difficulty = catalog.Difficulty(d)
		out = append(out, qu)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query question: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("question %s: %w", id, catalog.ErrNotFound)
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// attach loads options and tags for questions in place.
func (r *QuestionRepo) attach(ctx context.Context, questions []catalog.Question) error {
	if len(questions) == 0 {
		return nil
	}
	index := make(map[string]int, len(questions))
	ids := make([]string, len(questions))
	for i, q := range questions {
		index[q.ID] = i
		ids[i] = q.ID
	}
	b := r.s.builder()
	for start := 0; start < len(ids); start += inChunk {
		chunk := ids[start:min(start+inChunk, len(ids))]

		oq := b.Select("id", "question_id", "letter", "text", "correct", "trap_code").
			From(b.Table(tableOptions)).
			Where(entsql.In("question_id", anys(chunk)...)).
			OrderBy("question_id", "letter")
		err := queryEach(ctx, r.s.drv, oq, func(rows entsql.ColumnScanner) error {
			var (
				o    catalog.Option
				qid  string
				code sql.NullString
			)
			if err := rows.Scan(&o.ID, &qid, &o.Letter, &o.Text, &o.Correct, &code); err != nil {
				return err
			}
			o.Trap = trap.Code(code.String)
			i := index[qid]
			questions[i].Options = append(questions[i].Options, o)
			return nil
		})
		if err != nil {
			return fmt.Errorf("query options: %w", err)
		}

		tq := b.Select("question_id", "tag").
			From(b.Table(tableTags)).
			Where(entsql.In("question_id", anys(chunk)...))
		err = queryEach(ctx, r.s.drv, tq, func(rows entsql.ColumnScanner) error {
			var qid, tag string
			if err := rows.Scan(&qid, &tag); err != nil {
				return err
			}
			i := index[qid]
			questions[i].Tags = append(questions[i].Tags, tag)
			return nil
		})
		if err != nil {
			return fmt.Errorf("query tags: %w", err)
		}
	}
	for i := range questions {
		sort.Strings(questions[i].Tags)
	}
	return nil
}

// TrapsForOptions returns the trap category of each labeled option.
// Unlabeled and unknown options are absent.
func (r *QuestionRepo) TrapsForOptions(ctx context.Context, optionIDs []string) (map[string]trap.Code, error) {
	out := make(map[string]trap.Code, len(optionIDs))
	b := r.s.builder()
	for start := 0; start < len(optionIDs); start += inChunk {
		chunk := optionIDs[start:min(start+inChunk, len(optionIDs))]
		q := b.Select("id", "trap_code").
			From(b.Table(tableOptions)).
			Where(entsql.And(entsql.In("id", anys(chunk)...), entsql.NotNull("trap_code")))
		err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
			var id, code string
			if err := rows.Scan(&id, &code); err != nil {
				return err
			}
			if code != "" {
				out[id] = trap.Code(code)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("trap lookup: %w", err)
		}
	}
	return out, nil
}
