package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/spacedrep"
	"github.com/abhisek/yokdil/internal/streak"
)

// memStore implements StateStore and ReviewLog in memory.
type memStore struct {
	mu      sync.Mutex
	states  map[string]ItemState
	records []ReviewRecord
	seq     int64
	setOf   map[string]string // item id -> set id

	// beforeSave runs under the store lock before the version check.
	beforeSave func(states map[string]ItemState)
}

func newMemStore() *memStore {
	return &memStore{states: map[string]ItemState{}, setOf: map[string]string{}}
}

func stateKey(learnerID, itemID string) string { return learnerID + "|" + itemID }

func (m *memStore) LoadState(_ context.Context, learnerID, itemID string) (*ItemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[stateKey(learnerID, itemID)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) SaveReview(_ context.Context, s *ItemState, rec *ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeSave != nil {
		m.beforeSave(m.states)
	}
	key := stateKey(s.LearnerID, s.ItemID)
	cur, exists := m.states[key]
	switch {
	case s.Version == 0 && exists:
		return ErrVersionConflict
	case s.Version > 0 && (!exists || cur.Version != s.Version):
		return ErrVersionConflict
	}
	s.Version++
	m.states[key] = *s
	m.seq++
	rec.Sequence = m.seq
	m.records = append(m.records, *rec)
	return nil
}

func (m *memStore) DueStates(_ context.Context, learnerID string, today time.Time, setID string, limit int) ([]ItemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ItemState
	for _, s := range m.states {
		if s.LearnerID != learnerID || !s.IsDue(today) {
			continue
		}
		if setID != "" && m.setOf[s.ItemID] != setID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].NextDue, out[j].NextDue
		switch {
		case a == nil && b == nil:
			return out[i].ItemID < out[j].ItemID
		case a == nil:
			return true
		case b == nil:
			return false
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return out[i].ItemID < out[j].ItemID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListStates(_ context.Context, learnerID string, itemIDs []string) (map[string]ItemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]ItemState{}
	for _, id := range itemIDs {
		if s, ok := m.states[stateKey(learnerID, id)]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (m *memStore) MasteryCounts(_ context.Context, learnerID string) (map[mastery.Level]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[mastery.Level]int{}
	for _, s := range m.states {
		if s.LearnerID == learnerID {
			out[s.Mastery]++
		}
	}
	return out, nil
}

func (m *memStore) CountDue(_ context.Context, learnerID string, today time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.states {
		if s.LearnerID == learnerID && s.IsDue(today) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ReviewTotals(_ context.Context, learnerID string) (ReviewTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var t ReviewTotals
	for _, r := range m.records {
		if r.LearnerID != learnerID {
			continue
		}
		t.Reviews++
		if r.Quality.Passed() {
			t.Correct++
		}
	}
	return t, nil
}

func (m *memStore) ReviewCountsByDay(_ context.Context, learnerID string, from, to time.Time) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, r := range m.records {
		if r.LearnerID != learnerID {
			continue
		}
		if spacedrep.DaysBetween(from, r.ReviewDay) < 0 || spacedrep.DaysBetween(r.ReviewDay, to) < 0 {
			continue
		}
		out[spacedrep.FormatDate(r.ReviewDay)]++
	}
	return out, nil
}

// memWords implements Words.
type memWords struct {
	words map[string]catalog.Word
	sets  map[string][]catalog.Word
}

func newMemWords(sets map[string][]string) *memWords {
	w := &memWords{words: map[string]catalog.Word{}, sets: map[string][]catalog.Word{}}
	for setID, terms := range sets {
		for i, term := range terms {
			word := catalog.Word{
				ID:          setID + "-" + term,
				SetID:       setID,
				Term:        term,
				Translation: term + "-tr",
				Position:    i,
			}
			w.words[word.ID] = word
			w.sets[setID] = append(w.sets[setID], word)
		}
	}
	return w
}

func (w *memWords) Word(_ context.Context, id string) (*catalog.Word, error) {
	word, ok := w.words[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &word, nil
}

func (w *memWords) WordsInSet(_ context.Context, setID string) ([]catalog.Word, error) {
	return w.sets[setID], nil
}

func (w *memWords) WordsByID(_ context.Context, ids []string) (map[string]catalog.Word, error) {
	out := map[string]catalog.Word{}
	for _, id := range ids {
		if word, ok := w.words[id]; ok {
			out[id] = word
		}
	}
	return out, nil
}

// memLearners implements Learners.
type memLearners map[string]bool

func (m memLearners) LearnerExists(_ context.Context, id string) (bool, error) {
	return m[id], nil
}

// countingStreaks implements Streaks.
type countingStreaks struct {
	mu    sync.Mutex
	calls int
	cur   streak.Streak
	err   error
}

func (c *countingStreaks) Record(_ context.Context, learnerID string, today time.Time) (*streak.Streak, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	c.cur.LearnerID = learnerID
	c.cur, _ = streak.Advance(c.cur, today)
	s := c.cur
	return &s, nil
}

func (c *countingStreaks) Get(_ context.Context, learnerID string) (*streak.Streak, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.cur
	s.LearnerID = learnerID
	return &s, nil
}
