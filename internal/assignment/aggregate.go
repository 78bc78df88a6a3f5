package assignment

import (
	"sort"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/trap"
)

// CategoryStats counts attempts on options of one trap category.
type CategoryStats struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns Correct/Total, 0 when there are no attempts.
func (s CategoryStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Aggregate maps trap categories to cohort-wide attempt counts.
type Aggregate map[trap.Code]CategoryStats

// Add counts one attempt.
func (a Aggregate) Add(code trap.Code, correct bool) {
	s := a[code]
	s.Total++
	if correct {
		s.Correct++
	}
	a[code] = s
}

// Merge adds every count of other into a.
func (a Aggregate) Merge(other Aggregate) {
	for code, o := range other {
		s := a[code]
		s.Correct += o.Correct
		s.Total += o.Total
		a[code] = s
	}
}

// Mastered returns the categories whose accuracy reaches threshold.
func (a Aggregate) Mastered(threshold float64) map[trap.Code]bool {
	out := make(map[trap.Code]bool)
	for code, s := range a {
		if s.Total > 0 && s.Accuracy() >= threshold {
			out[code] = true
		}
	}
	return out
}

// Codes returns the aggregated categories sorted by code.
func (a Aggregate) Codes() []trap.Code {
	out := make([]trap.Code, 0, len(a))
	for code := range a {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ExcludeMastered drops questions whose trap categories are all mastered.
// Questions without any trap category are always kept.
func ExcludeMastered(questions []catalog.Question, mastered map[trap.Code]bool) []catalog.Question {
	out := make([]catalog.Question, 0, len(questions))
	for _, q := range questions {
		codes := q.TrapCodes()
		if len(codes) == 0 {
			out = append(out, q)
			continue
		}
		for _, c := range codes {
			if !mastered[c] {
				out = append(out, q)
				break
			}
		}
	}
	return out
}
