package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/yokdil/internal/trap"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("not found")

// WordSet groups vocabulary items studied together.
type WordSet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Words int    `json:"words"`
}

// Word is a vocabulary item. Position keeps the catalog order within its set.
type Word struct {
	ID          string `json:"id"`
	SetID       string `json:"set_id"`
	Term        string `json:"term"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
	Position    int    `json:"position"`
}

// Difficulty is a question's difficulty band.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty normalizes and validates a difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Option is one answer choice of a multiple-choice question. Distractors
// may carry the trap category they exploit.
type Option struct {
	ID      string    `json:"id"`
	Letter  string    `json:"letter"`
	Text    string    `json:"text"`
	Correct bool      `json:"correct"`
	Trap    trap.Code `json:"trap,omitempty"`
}

// Question is a multiple-choice quiz question.
type Question struct {
	ID         string     `json:"id"`
	Stem       string     `json:"stem"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags,omitempty"`
	Options    []Option   `json:"options"`
}

// TrapCodes returns the distinct trap categories of the question's options.
func (q Question) TrapCodes() []trap.Code {
	var out []trap.Code
	seen := make(map[trap.Code]bool)
	for _, o := range q.Options {
		if o.Trap == "" || seen[o.Trap] {
			continue
		}
		seen[o.Trap] = true
		out = append(out, o.Trap)
	}
	return out
}

// QuestionFilter narrows the question catalog. Empty fields do not filter.
// A question matches TrapCodes if any of its options carries one of them.
type QuestionFilter struct {
	Tags         []string
	TrapCodes    []trap.Code
	Difficulties []Difficulty
}

// WordCatalog reads vocabulary content.
type WordCatalog interface {
	// Word returns ErrNotFound if the id is unknown.
	Word(ctx context.Context, id string) (*Word, error)
	// WordsInSet returns the set's words in catalog order.
	WordsInSet(ctx context.Context, setID string) ([]Word, error)
}

// QuestionCatalog reads quiz questions.
type QuestionCatalog interface {
	Questions(ctx context.Context, filter QuestionFilter) ([]Question, error)
}
