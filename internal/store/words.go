package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/yokdil/internal/catalog"
)

var wordColumns = []string{"id", "set_id", "term", "translation", "example", "position"}

// WordRepo stores word sets and their vocabulary.
type WordRepo struct {
	s *Store
}

// Words returns the word repository.
func (s *Store) Words() *WordRepo {
	return &WordRepo{s: s}
}

// EnsureWordSet returns the id of the named set, creating it if needed.
func (r *WordRepo) EnsureWordSet(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("word set name is required")
	}
	var id string
	err := r.s.withTx(ctx, func(tx dialect.Tx) error {
		b := r.s.builder()
		q := b.Select("id").From(b.Table(tableWordSets)).Where(entsql.EQ("name", name))
		err := queryEach(ctx, tx, q, func(rows entsql.ColumnScanner) error {
			return rows.Scan(&id)
		})
		if err != nil || id != "" {
			return err
		}
		id = uuid.NewString()
		ins := b.Insert(tableWordSets).
			Columns("id", "name", "created_at").
			Values(id, name, r.s.now().UTC())
		_, err = exec(ctx, tx, ins)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("ensure word set %q: %w", name, err)
	}
	return id, nil
}

// UpsertWord inserts w or updates the set's word with the same term. It
// reports whether a new row was created.
func (r *WordRepo) UpsertWord(ctx context.Context, w catalog.Word) (bool, error) {
	var created bool
	err := r.s.withTx(ctx, func(tx dialect.Tx) error {
		b := r.s.builder()
		var id string
		q := b.Select("id").From(b.Table(tableWords)).
			Where(entsql.And(entsql.EQ("set_id", w.SetID), entsql.EQ("term", w.Term)))
		if err := queryEach(ctx, tx, q, func(rows entsql.ColumnScanner) error {
			return rows.Scan(&id)
		}); err != nil {
			return err
		}

		if id != "" {
			upd := b.Update(tableWords).
				Set("translation", w.Translation).
				Set("example", w.Example).
				Set("position", w.Position).
				Where(entsql.EQ("id", id))
			_, err := exec(ctx, tx, upd)
			return err
		}

		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		ins := b.Insert(tableWords).
			Columns(wordColumns...).
			Values(w.ID, w.SetID, w.Term, w.Translation, w.Example, w.Position)
		if _, err := exec(ctx, tx, ins); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("upsert word %q: %w", w.Term, err)
	}
	return created, nil
}

// Word returns the word or catalog.ErrNotFound.
func (r *WordRepo) Word(ctx context.Context, id string) (*catalog.Word, error) {
	words, err := r.query(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word %s: %w", id, catalog.ErrNotFound)
	}
	return &words[0], nil
}

// WordsInSet returns the set's words in catalog order.
func (r *WordRepo) WordsInSet(ctx context.Context, setID string) ([]catalog.Word, error) {
	return r.query(ctx, entsql.EQ("set_id", setID))
}

// WordsByID returns the words for ids keyed by id. Unknown ids are absent.
func (r *WordRepo) WordsByID(ctx context.Context, ids []string) (map[string]catalog.Word, error) {
	out := make(map[string]catalog.Word, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	words, err := r.query(ctx, entsql.In("id", anys(ids)...))
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		out[w.ID] = w
	}
	return out, nil
}

func (r *WordRepo) query(ctx context.Context, where *entsql.Predicate) ([]catalog.Word, error) {
	b := r.s.builder()
	q := b.Select(wordColumns...).
		From(b.Table(tableWords)).
		Where(where).
		OrderBy("set_id", "position", "id")
	var out []catalog.Word
	err := queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var w catalog.Word
		if err := rows.Scan(&w.ID, &w.SetID, &w.Term, &w.Translation, &w.Example, &w.Position); err != nil {
			return err
		}
		out = append(out, w)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	return out, nil
}

// WordSets returns every word set with its word count, ordered by name.
func (r *WordRepo) WordSets(ctx context.Context) ([]catalog.WordSet, error) {
	b := r.s.builder()
	counts := make(map[string]int)
	cq := b.Select("set_id", entsql.Count("*")).
		From(b.Table(tableWords)).
		GroupBy("set_id")
	err := queryEach(ctx, r.s.drv, cq, func(rows entsql.ColumnScanner) error {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return err
		}
		counts[id] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}

	q := b.Select("id", "name").From(b.Table(tableWordSets)).OrderBy("name")
	var out []catalog.WordSet
	err = queryEach(ctx, r.s.drv, q, func(rows entsql.ColumnScanner) error {
		var ws catalog.WordSet
		if err := rows.Scan(&ws.ID, &ws.Name); err != nil {
			return err
		}
		ws.Words = counts[ws.ID]
		out = append(out, ws)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list word sets: %w", err)
	}
	return out, nil
}

// WordSetByName returns the named set or catalog.ErrNotFound.
func (r *WordRepo) WordSetByName(ctx context.Context, name string) (*catalog.WordSet, error) {
	sets, err := r.WordSets(ctx)
	if err != nil {
		return nil, err
	}
	for _, ws := range sets {
		if ws.Name == name || ws.ID == name {
			return &ws, nil
		}
	}
	return nil, fmt.Errorf("word set %q: %w", name, catalog.ErrNotFound)
}
