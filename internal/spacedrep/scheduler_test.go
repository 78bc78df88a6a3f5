package spacedrep

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abhisek/yokdil/internal/mastery"
)

var today = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestTransition_FirstReview(t *testing.T) {
	tests := []struct {
		name    string
		q       Quality
		wantEF  float64
		wantRep int
		wantInt int
	}{
		{"again", Again, 2.5, 0, 1},
		{"hard", Hard, 2.36, 1, 1},
		{"good", Good, 2.5, 1, 1},
		{"easy", Easy, 2.6, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Transition(NewState(), tt.q, today)
			if r.EaseFactor != tt.wantEF {
				t.Errorf("EaseFactor = %v, want %v", r.EaseFactor, tt.wantEF)
			}
			if r.Repetition != tt.wantRep {
				t.Errorf("Repetition = %d, want %d", r.Repetition, tt.wantRep)
			}
			if r.Interval != tt.wantInt {
				t.Errorf("Interval = %d, want %d", r.Interval, tt.wantInt)
			}
			if r.Mastery != mastery.Learning {
				t.Errorf("Mastery = %s, want learning", r.Mastery)
			}
			want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
			if !r.NextDue.Equal(want) {
				t.Errorf("NextDue = %v, want %v", r.NextDue, want)
			}
		})
	}
}

func TestTransition_IntervalProgression(t *testing.T) {
	s := NewState()
	wantIntervals := []int{1, 6, 15, 38, 95}
	for i, want := range wantIntervals {
		r := Transition(s, Good, today)
		if r.Interval != want {
			t.Fatalf("review %d: Interval = %d, want %d", i+1, r.Interval, want)
		}
		s = r.State
	}
	if s.Repetition != 5 {
		t.Errorf("Repetition = %d, want 5", s.Repetition)
	}
}

func TestTransition_UsesPreviousEaseForInterval(t *testing.T) {
	// 6 * 2.0 = 12 with the old ease; the new ease (2.1) would give 13.
	r := Transition(State{EaseFactor: 2.0, Interval: 6, Repetition: 2}, Easy, today)
	if r.Interval != 12 {
		t.Errorf("Interval = %d, want 12", r.Interval)
	}
	if r.EaseFactor != 2.1 {
		t.Errorf("EaseFactor = %v, want 2.1", r.EaseFactor)
	}
}

func TestTransition_FailureResets(t *testing.T) {
	r := Transition(State{EaseFactor: 2.36, Interval: 15, Repetition: 3}, Again, today)
	if r.Repetition != 0 || r.Interval != 1 {
		t.Errorf("got rep=%d interval=%d, want rep=0 interval=1", r.Repetition, r.Interval)
	}
	if r.EaseFactor != 2.36 {
		t.Errorf("EaseFactor = %v, want unchanged 2.36", r.EaseFactor)
	}
	if r.Mastery != mastery.Learning {
		t.Errorf("Mastery = %s, want learning", r.Mastery)
	}
}

func TestTransition_EaseFloor(t *testing.T) {
	r := Transition(State{EaseFactor: 1.3, Interval: 6, Repetition: 2}, Hard, today)
	if r.EaseFactor != MinEaseFactor {
		t.Errorf("EaseFactor = %v, want %v", r.EaseFactor, MinEaseFactor)
	}
	if r.Interval != 8 {
		t.Errorf("Interval = %d, want 8", r.Interval)
	}
}

func TestTransition_IntervalCap(t *testing.T) {
	r := Transition(State{EaseFactor: 2.5, Interval: 200, Repetition: 5}, Easy, today)
	if r.Interval != MaxIntervalDays {
		t.Errorf("Interval = %d, want %d", r.Interval, MaxIntervalDays)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !r.NextDue.Equal(want) {
		t.Errorf("NextDue = %v, want %v", r.NextDue, want)
	}
}

func TestTransition_EasyStreakNeverShrinksInterval(t *testing.T) {
	s := NewState()
	prev := 0
	for i := range 40 {
		r := Transition(s, Easy, today)
		if r.Interval < prev {
			t.Fatalf("review %d: interval %d < previous %d", i+1, r.Interval, prev)
		}
		if r.Interval > MaxIntervalDays {
			t.Fatalf("review %d: interval %d above cap %d", i+1, r.Interval, MaxIntervalDays)
		}
		prev = r.Interval
		s = r.State
	}
	if prev != MaxIntervalDays {
		t.Errorf("final interval = %d, want cap %d", prev, MaxIntervalDays)
	}
}

func TestTransition_Mastery(t *testing.T) {
	tests := []struct {
		name  string
		state State
		q     Quality
		want  mastery.Level
	}{
		{"third success is review", State{EaseFactor: 2.5, Interval: 6, Repetition: 2}, Good, mastery.Review},
		{"eighth success is mastered", State{EaseFactor: 2.5, Interval: 30, Repetition: 7}, Good, mastery.Mastered},
		{"low ease stays review", State{EaseFactor: 2.4, Interval: 30, Repetition: 7}, Good, mastery.Review},
		{"hard drops ease below mastery", State{EaseFactor: 2.5, Interval: 30, Repetition: 7}, Hard, mastery.Review},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Transition(tt.state, tt.q, today)
			if r.Mastery != tt.want {
				t.Errorf("Mastery = %s, want %s", r.Mastery, tt.want)
			}
		})
	}
}

func TestTransition_Deterministic(t *testing.T) {
	s := State{EaseFactor: 2.18, Interval: 17, Repetition: 4}
	a := Transition(s, Good, today)
	b := Transition(s, Good, today)
	if a != b {
		t.Errorf("Transition not deterministic: %+v vs %+v", a, b)
	}
}

func TestTransition_RandomSequenceInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	qualities := []Quality{Again, Hard, Good, Easy}

	for run := 0; run < 50; run++ {
		s := NewState()
		day := today
		for i := 0; i < 40; i++ {
			q := qualities[rng.IntN(len(qualities))]
			r := Transition(s, q, day)

			if r.EaseFactor < MinEaseFactor {
				t.Fatalf("EaseFactor %v below floor", r.EaseFactor)
			}
			if r.Interval > MaxIntervalDays {
				t.Fatalf("Interval %d above cap", r.Interval)
			}
			if !q.Passed() && (r.Repetition != 0 || r.Interval != 1 || r.EaseFactor != s.EaseFactor) {
				t.Fatalf("failed review did not reset: %+v -> %+v", s, r.State)
			}
			if q.Passed() && r.Repetition != s.Repetition+1 {
				t.Fatalf("Repetition = %d, want %d", r.Repetition, s.Repetition+1)
			}
			mastered := r.Repetition >= 8 && r.EaseFactor >= 2.5 && r.Interval >= 21
			if (r.Mastery == mastery.Mastered) != mastered {
				t.Fatalf("Mastery = %s for %+v", r.Mastery, r.State)
			}
			if DaysBetween(day, r.NextDue) != r.Interval {
				t.Fatalf("NextDue %v is not %d days after %v", r.NextDue, r.Interval, day)
			}

			s = r.State
			day = r.NextDue
		}
	}
}

func TestParseQuality(t *testing.T) {
	for _, v := range []int{0, 3, 4, 5} {
		q, err := ParseQuality(v)
		if err != nil {
			t.Errorf("ParseQuality(%d) error: %v", v, err)
		}
		if int(q) != v {
			t.Errorf("ParseQuality(%d) = %d", v, q)
		}
	}
	for _, v := range []int{-1, 1, 2, 6, 100} {
		_, err := ParseQuality(v)
		if !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("ParseQuality(%d) error = %v, want ErrInvalidQuality", v, err)
		}
	}
}

func TestQualityFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		timeMs  int
		hint    bool
		want    Quality
	}{
		{"wrong", false, 1000, false, Again},
		{"wrong with hint", false, 1000, true, Again},
		{"hint", true, 1000, true, Hard},
		{"fast", true, 2999, false, Easy},
		{"medium", true, 5000, false, Good},
		{"just under slow", true, SlowResponseMs - 1, false, Good},
		{"at slow", true, SlowResponseMs, false, Good},
		{"slow", true, 20000, false, Good},
		{"no timing", true, 0, false, Good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualityFromResponse(tt.correct, tt.timeMs, tt.hint); got != tt.want {
				t.Errorf("QualityFromResponse = %s, want %s", got, tt.want)
			}
		})
	}
}
