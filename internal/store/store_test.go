package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/spacedrep"
	"github.com/abhisek/yokdil/internal/streak"
	"github.com/abhisek/yokdil/internal/trap"
)

var day0 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	s.now = func() time.Time { return day0.Add(9 * time.Hour) }
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWords(t *testing.T, s *Store, set string, terms ...string) []catalog.Word {
	t.Helper()
	ctx := context.Background()
	setID, err := s.Words().EnsureWordSet(ctx, set)
	if err != nil {
		t.Fatalf("ensure set: %v", err)
	}
	for i, term := range terms {
		if _, err := s.Words().UpsertWord(ctx, catalog.Word{SetID: setID, Term: term, Translation: term + "-tr", Position: i + 1}); err != nil {
			t.Fatalf("upsert %s: %v", term, err)
		}
	}
	words, err := s.Words().WordsInSet(ctx, setID)
	if err != nil {
		t.Fatalf("words in set: %v", err)
	}
	return words
}

func addLearner(t *testing.T, s *Store, id string) {
	t.Helper()
	if _, err := s.Learners().Add(context.Background(), id, id); err != nil {
		t.Fatalf("add learner: %v", err)
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
	if s.Dialect() != "sqlite3" {
		t.Errorf("dialect = %q, want sqlite3", s.Dialect())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"journal_mode", "wal"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWithPragmas(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"a.db", "a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"},
		{"file:a.db?mode=rwc", "file:a.db?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"},
		{"a.db?_pragma=foreign_keys(1)", "a.db?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		if got := withPragmas(tt.dsn); got != tt.want {
			t.Errorf("withPragmas(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestReopenKeepsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(Config{DSN: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := s.seq.Next(ctx, s.drv)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	s.Close()

	s, err = Open(Config{DSN: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	second, err := s.seq.Next(ctx, s.drv)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first != 1 || second != 2 {
		t.Errorf("sequence = %d, %d; want 1, 2", first, second)
	}
}

func TestLearners(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Learners()

	ok, err := repo.LearnerExists(ctx, "ayse")
	if err != nil || ok {
		t.Fatalf("exists before add = %v, %v", ok, err)
	}
	if _, err := repo.Add(ctx, "ayse", " Ayşe "); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ok, _ := repo.LearnerExists(ctx, "ayse"); !ok {
		t.Fatal("expected learner to exist")
	}
	l, err := repo.Get(ctx, "ayse")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l.Name != "Ayşe" {
		t.Errorf("name = %q", l.Name)
	}
	if _, err := repo.Get(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get unknown: %v", err)
	}
	gen, err := repo.Add(ctx, "", "Generated")
	if err != nil || gen.ID == "" {
		t.Fatalf("add with generated id: %+v, %v", gen, err)
	}
	all, err := repo.List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %d, %v", len(all), err)
	}
}

func TestWords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	words := seedWords(t, s, "health", "cure", "disease", "remedy")

	if len(words) != 3 || words[0].Term != "cure" || words[2].Term != "remedy" {
		t.Fatalf("words in catalog order = %+v", words)
	}

	again, err := s.Words().EnsureWordSet(ctx, "health")
	if err != nil || again != words[0].SetID {
		t.Fatalf("ensure existing set = %q, %v", again, err)
	}

	created, err := s.Words().UpsertWord(ctx, catalog.Word{SetID: again, Term: "cure", Translation: "tedavi", Position: 1})
	if err != nil || created {
		t.Fatalf("upsert existing = %v, %v", created, err)
	}
	w, err := s.Words().Word(ctx, words[0].ID)
	if err != nil {
		t.Fatalf("word: %v", err)
	}
	if w.Translation != "tedavi" {
		t.Errorf("translation = %q, want updated", w.Translation)
	}
	if _, err := s.Words().Word(ctx, "missing"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing word: %v", err)
	}

	byID, err := s.Words().WordsByID(ctx, []string{words[1].ID, "missing"})
	if err != nil || len(byID) != 1 || byID[words[1].ID].Term != "disease" {
		t.Fatalf("words by id = %+v, %v", byID, err)
	}

	sets, err := s.Words().WordSets(ctx)
	if err != nil || len(sets) != 1 || sets[0].Words != 3 {
		t.Fatalf("word sets = %+v, %v", sets, err)
	}
	if _, err := s.Words().WordSetByName(ctx, "health"); err != nil {
		t.Errorf("set by name: %v", err)
	}
}

func newReview(st *progress.ItemState, q spacedrep.Quality, day time.Time) *progress.ReviewRecord {
	res := spacedrep.Transition(st.Schedule(), q, day)
	from := st.Mastery
	st.EaseFactor, st.Interval, st.Repetition = res.State.EaseFactor, res.State.Interval, res.State.Repetition
	due := res.NextDue
	st.NextDue = &due
	st.Mastery = res.Mastery
	st.TotalReviews++
	if q.Passed() {
		st.CorrectCount++
	}
	at := day.Add(10 * time.Hour)
	st.LastReviewedAt = &at
	return &progress.ReviewRecord{
		LearnerID:   st.LearnerID,
		ItemID:      st.ItemID,
		Quality:     q,
		MasteryFrom: from,
		MasteryTo:   st.Mastery,
		ReviewDay:   day,
		ReviewedAt:  at,
	}
}

func TestSaveReviewRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addLearner(t, s, "l1")
	words := seedWords(t, s, "set", "alpha")
	repo := s.States()

	st, err := repo.LoadState(ctx, "l1", words[0].ID)
	if err != nil || st != nil {
		t.Fatalf("load before save = %+v, %v", st, err)
	}

	st = progress.NewItemState("l1", words[0].ID)
	rec := newReview(st, spacedrep.Good, day0)
	if err := repo.SaveReview(ctx, st, rec); err != nil {
		t.Fatalf("save new: %v", err)
	}
	if st.Version != 1 || rec.Sequence == 0 {
		t.Fatalf("version = %d, sequence = %d", st.Version, rec.Sequence)
	}

	got, err := repo.LoadState(ctx, "l1", words[0].ID)
	if err != nil || got == nil {
		t.Fatalf("load: %+v, %v", got, err)
	}
	if got.Interval != 1 || got.Repetition != 1 || got.Version != 1 || got.Mastery != mastery.Learning {
		t.Errorf("loaded state = %+v", got)
	}
	if got.NextDue == nil || !got.NextDue.Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("next due = %v", got.NextDue)
	}
	if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(*st.LastReviewedAt) {
		t.Errorf("last reviewed = %v, want %v", got.LastReviewedAt, st.LastReviewedAt)
	}

	rec2 := newReview(got, spacedrep.Easy, day0.AddDate(0, 0, 1))
	rec2.SessionID = "sess-1"
	if err := repo.SaveReview(ctx, got, rec2); err != nil {
		t.Fatalf("save update: %v", err)
	}
	if got.Version != 2 || rec2.Sequence <= rec.Sequence {
		t.Errorf("version = %d, sequences %d then %d", got.Version, rec.Sequence, rec2.Sequence)
	}

	reviews, err := repo.Reviews(ctx, "l1", 0, 0)
	if err != nil || len(reviews) != 2 {
		t.Fatalf("reviews = %d, %v", len(reviews), err)
	}
	if reviews[1].SessionID != "sess-1" || reviews[0].SessionID != "" {
		t.Errorf("session ids = %q, %q", reviews[0].SessionID, reviews[1].SessionID)
	}
	if reviews[1].Quality != spacedrep.Easy || !reviews[1].ReviewDay.Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("second review = %+v", reviews[1])
	}
}

func TestSaveReviewVersionConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addLearner(t, s, "l1")
	words := seedWords(t, s, "set", "alpha")
	repo := s.States()

	st := progress.NewItemState("l1", words[0].ID)
	if err := repo.SaveReview(ctx, st, newReview(st, spacedrep.Good, day0)); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second fresh insert loses.
	dup := progress.NewItemState("l1", words[0].ID)
	err := repo.SaveReview(ctx, dup, newReview(dup, spacedrep.Good, day0))
	if !errors.Is(err, progress.ErrVersionConflict) {
		t.Fatalf("duplicate insert err = %v", err)
	}
	if dup.Version != 0 {
		t.Errorf("failed save must not bump version")
	}

	// A stale update loses.
	stale := *st
	if err := repo.SaveReview(ctx, st, newReview(st, spacedrep.Good, day0.AddDate(0, 0, 1))); err != nil {
		t.Fatalf("save: %v", err)
	}
	err = repo.SaveReview(ctx, &stale, newReview(&stale, spacedrep.Again, day0.AddDate(0, 0, 1)))
	if !errors.Is(err, progress.ErrVersionConflict) {
		t.Fatalf("stale update err = %v", err)
	}

	// Failed saves append nothing.
	totals, err := repo.ReviewTotals(ctx, "l1")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Reviews != 2 || totals.Correct != 2 {
		t.Errorf("totals = %+v, want 2 reviews 2 correct", totals)
	}
}

func TestDueStatesOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addLearner(t, s, "l1")
	a := seedWords(t, s, "a", "a1", "a2", "a3", "a4")
	b := seedWords(t, s, "b", "b1")
	repo := s.States()

	save := func(itemID string, due *time.Time) {
		t.Helper()
		st := progress.NewItemState("l1", itemID)
		rec := newReview(st, spacedrep.Good, day0)
		st.NextDue = due
		if err := repo.SaveReview(ctx, st, rec); err != nil {
			t.Fatalf("save %s: %v", itemID, err)
		}
	}
	date := func(offset int) *time.Time {
		d := day0.AddDate(0, 0, offset)
		return &d
	}
	save(a[0].ID, date(-1))
	save(a[1].ID, nil)
	save(a[2].ID, date(-5))
	save(a[3].ID, date(3)) // not due
	save(b[0].ID, date(0))

	due, err := repo.DueStates(ctx, "l1", day0, "", 0)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	want := []string{a[1].ID, a[2].ID, a[0].ID, b[0].ID}
	if len(due) != len(want) {
		t.Fatalf("due = %d items, want %d", len(due), len(want))
	}
	for i, id := range want {
		if due[i].ItemID != id {
			t.Errorf("due[%d] = %s, want %s", i, due[i].ItemID, id)
		}
	}

	inSet, err := repo.DueStates(ctx, "l1", day0, a[0].SetID, 2)
	if err != nil || len(inSet) != 2 || inSet[0].ItemID != a[1].ID {
		t.Fatalf("due in set = %+v, %v", inSet, err)
	}

	n, err := repo.CountDue(ctx, "l1", day0)
	if err != nil || n != 4 {
		t.Errorf("count due = %d, %v", n, err)
	}

	counts, err := repo.MasteryCounts(ctx, "l1")
	if err != nil || counts[mastery.Learning] != 5 {
		t.Errorf("mastery counts = %v, %v", counts, err)
	}

	states, err := repo.ListStates(ctx, "l1", []string{a[0].ID, "unknown"})
	if err != nil || len(states) != 1 {
		t.Errorf("list states = %v, %v", states, err)
	}

	byDay, err := repo.ReviewCountsByDay(ctx, "l1", day0.AddDate(0, 0, -6), day0)
	if err != nil || byDay[spacedrep.FormatDate(day0)] != 5 {
		t.Errorf("review counts = %v, %v", byDay, err)
	}
}

func TestStreaks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addLearner(t, s, "l1")
	repo := s.Streaks()

	got, err := repo.LoadStreak(ctx, "l1")
	if err != nil || got != nil {
		t.Fatalf("load empty = %+v, %v", got, err)
	}

	tracker := streak.NewTracker(repo, nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := tracker.Record(ctx, "l1", day0.AddDate(0, 0, i)); err != nil {
			t.Fatalf("record day %d: %v", i, err)
		}
	}
	got, err = repo.LoadStreak(ctx, "l1")
	if err != nil || got == nil {
		t.Fatalf("load = %+v, %v", got, err)
	}
	if got.Current != 3 || got.Longest != 3 || !got.LastStudyDate.Equal(day0.AddDate(0, 0, 2)) {
		t.Errorf("streak = %+v", got)
	}
}

func addQuestion(t *testing.T, s *Store, id string, d catalog.Difficulty, tags []string, traps ...trap.Code) catalog.Question {
	t.Helper()
	q := catalog.Question{
		ID:         id,
		Stem:       "Stem of " + id,
		Difficulty: d,
		Tags:       tags,
		Options:    []catalog.Option{{ID: id + "-A", Text: "right", Correct: true}},
	}
	for i, c := range traps {
		q.Options = append(q.Options, catalog.Option{ID: id + "-" + string(rune('B'+i)), Text: "wrong", Trap: c})
	}
	if len(traps) == 0 {
		q.Options = append(q.Options, catalog.Option{ID: id + "-B", Text: "wrong"})
	}
	if _, err := s.Questions().Add(context.Background(), q); err != nil {
		t.Fatalf("add question %s: %v", id, err)
	}
	return q
}

func TestQuestionsFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addQuestion(t, s, "q1", catalog.Easy, []string{"Health"}, "TRAP_CAUSE_EFFECT")
	addQuestion(t, s, "q2", catalog.Hard, []string{"health", "science"}, "TRAP_NEGATION", "TRAP_CAUSE_EFFECT")
	addQuestion(t, s, "q3", catalog.Hard, []string{"law"})

	tests := []struct {
		name   string
		filter catalog.QuestionFilter
		want   []string
	}{
		{"all", catalog.QuestionFilter{}, []string{"q1", "q2", "q3"}},
		{"tag", catalog.QuestionFilter{Tags: []string{"health"}}, []string{"q1", "q2"}},
		{"difficulty", catalog.QuestionFilter{Difficulties: []catalog.Difficulty{catalog.Hard}}, []string{"q2", "q3"}},
		{"trap", catalog.QuestionFilter{TrapCodes: []trap.Code{"TRAP_NEGATION"}}, []string{"q2"}},
		{"combined", catalog.QuestionFilter{Tags: []string{"health"}, Difficulties: []catalog.Difficulty{catalog.Easy}}, []string{"q1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Questions().Questions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("questions: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d questions, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}

	q2, err := s.Questions().Question(ctx, "q2")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if len(q2.Options) != 3 || q2.Options[0].Letter != "A" || !q2.Options[0].Correct {
		t.Errorf("options = %+v", q2.Options)
	}
	if len(q2.Tags) != 2 || q2.Tags[0] != "health" {
		t.Errorf("tags = %v", q2.Tags)
	}
	if codes := q2.TrapCodes(); len(codes) != 2 {
		t.Errorf("trap codes = %v", codes)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	bad := []catalog.Question{
		{Stem: ""},
		{Stem: "no correct", Options: []catalog.Option{{Text: "a"}, {Text: "b"}}},
		{Stem: "bad trap", Options: []catalog.Option{{Text: "a", Correct: true}, {Text: "b", Trap: "TRAP_BOGUS"}}},
		{Stem: "bad difficulty", Difficulty: "insane", Options: []catalog.Option{{Text: "a", Correct: true}, {Text: "b"}}},
	}
	for _, q := range bad {
		if _, err := s.Questions().Add(ctx, q); err == nil {
			t.Errorf("expected error for %q", q.Stem)
		}
	}
}

func TestAttemptsAndTraps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addQuestion(t, s, "q1", catalog.Medium, nil, "TRAP_CAUSE_EFFECT")

	traps, err := s.Questions().TrapsForOptions(ctx, []string{"q1-A", "q1-B", "nope"})
	if err != nil {
		t.Fatalf("traps: %v", err)
	}
	if len(traps) != 1 || traps["q1-B"] != "TRAP_CAUSE_EFFECT" {
		t.Errorf("traps = %v", traps)
	}

	at := day0.Add(time.Hour)
	for i := 0; i < 5; i++ {
		option := "q1-A"
		if i%2 == 1 {
			option = "q1-B"
		}
		if _, err := s.Attempts().Record(ctx, "l1", "q1", option, at.AddDate(0, 0, -i*10)); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}
	if _, err := s.Attempts().Record(ctx, "l1", "q1", "other-question-option", at); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("foreign option err = %v", err)
	}

	// Paging by sequence covers the window exactly once.
	since := at.AddDate(0, 0, -25)
	var seen []assignment.Attempt
	var after int64
	for {
		page, err := s.Attempts().AttemptsPage(ctx, []string{"l1"}, since, after, 2)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		seen = append(seen, page...)
		if len(page) < 2 {
			break
		}
		after = page[len(page)-1].Sequence
	}
	if len(seen) != 3 {
		t.Fatalf("attempts in window = %d, want 3", len(seen))
	}
	if !seen[0].Correct || seen[1].Correct {
		t.Errorf("correctness = %v, %v", seen[0].Correct, seen[1].Correct)
	}

	// The builder aggregates through the same repositories.
	b := assignment.NewBuilder(assignment.Options{
		Questions: s.Questions(),
		Attempts:  s.Attempts(),
		Traps:     s.Questions(),
		Now:       func() time.Time { return at },
		PageSize:  2,
	})
	agg, err := b.MasteryReport(ctx, []string{"l1"}, 25)
	if err != nil {
		t.Fatalf("mastery report: %v", err)
	}
	// Only wrong answers chose the trap option.
	if got := agg["TRAP_CAUSE_EFFECT"]; got.Total != 1 || got.Correct != 0 {
		t.Errorf("aggregate = %+v", got)
	}
}

func TestRequestQueue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Requests()

	criteria := json.RawMessage(`{"count": 5}`)
	r1, err := repo.Enqueue(ctx, criteria, []string{"l1", "l2"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	r2, err := repo.Enqueue(ctx, criteria, nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, err := repo.Claim(ctx, 10)
	if err != nil || len(claimed) != 2 {
		t.Fatalf("claim = %d, %v", len(claimed), err)
	}
	if claimed[0].Status != StatusRunning || len(claimed[0].Cohort) != 2 {
		t.Errorf("claimed = %+v", claimed[0])
	}
	again, err := repo.Claim(ctx, 10)
	if err != nil || len(again) != 0 {
		t.Fatalf("second claim = %d, %v", len(again), err)
	}

	if err := repo.Complete(ctx, r1.ID, []string{"q2", "q1"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := repo.Fail(ctx, r2.ID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := repo.Get(ctx, r1.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDone || got.CompletedAt == nil || len(got.QuestionIDs) != 2 || got.QuestionIDs[0] != "q2" {
		t.Errorf("completed request = %+v", got)
	}
	got, err = repo.Get(ctx, r2.ID)
	if err != nil || got.Status != StatusFailed || got.Error != "boom" {
		t.Errorf("failed request = %+v, %v", got, err)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing request err = %v", err)
	}
}

func TestRequestQueue_ClaimFailureLeavesPending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Requests()

	r1, err := repo.Enqueue(ctx, json.RawMessage(`{}`), []string{"l1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	r2, err := repo.Enqueue(ctx, json.RawMessage(`{}`), []string{"l2"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	// Same created_at, so the larger id is claimed second.
	last := max(r1.ID, r2.ID)
	trigger := fmt.Sprintf(`CREATE TRIGGER block_claim BEFORE UPDATE ON %s
		WHEN NEW.id = '%s' BEGIN SELECT RAISE(ABORT, 'claim blocked'); END`, tableRequests, last)
	if _, err := s.DB().ExecContext(ctx, trigger); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if claimed, err := repo.Claim(ctx, 10); err == nil {
		t.Fatalf("claim succeeded with %d requests, want error", len(claimed))
	}
	for _, id := range []string{r1.ID, r2.ID} {
		got, err := repo.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if got.Status != StatusPending {
			t.Errorf("request %s status = %s after failed claim, want pending", id, got.Status)
		}
	}

	if _, err := s.DB().ExecContext(ctx, "DROP TRIGGER block_claim"); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	claimed, err := repo.Claim(ctx, 10)
	if err != nil || len(claimed) != 2 {
		t.Fatalf("claim after recovery = %d, %v", len(claimed), err)
	}
}

func TestResetProgress(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	addLearner(t, s, "l1")
	words := seedWords(t, s, "set", "alpha")

	st := progress.NewItemState("l1", words[0].ID)
	if err := s.States().SaveReview(ctx, st, newReview(st, spacedrep.Good, day0)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Streaks().SaveStreak(ctx, &streak.Streak{LearnerID: "l1", Current: 1, Longest: 1}); err != nil {
		t.Fatalf("save streak: %v", err)
	}

	if err := s.Learners().ResetProgress(ctx, "l1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := s.States().LoadState(ctx, "l1", words[0].ID); got != nil {
		t.Error("state survived reset")
	}
	if totals, _ := s.States().ReviewTotals(ctx, "l1"); totals.Reviews != 0 {
		t.Error("reviews survived reset")
	}
	if got, _ := s.Streaks().LoadStreak(ctx, "l1"); got != nil {
		t.Error("streak survived reset")
	}
	if ok, _ := s.Learners().LearnerExists(ctx, "l1"); !ok {
		t.Error("learner removed by reset")
	}
}
