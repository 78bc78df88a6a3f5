package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientItems is returned when a set has too few items to build
	// multiple-choice options.
	ErrInsufficientItems = errors.New("insufficient items for quiz")

	// ErrUnknownMode is returned for an unsupported quiz mode.
	ErrUnknownMode = errors.New("unknown quiz mode")
)

// MinItems is the smallest set a quiz can be built from: the correct answer
// plus DistractorCount alternatives.
const MinItems = DistractorCount + 1

// DistractorCount is the number of wrong options per question.
const DistractorCount = 3

// DefaultCount is the number of questions when none is requested.
const DefaultCount = 10

// PriorityShare is the fraction of a quiz taken from the top of the ranking.
const PriorityShare = 0.7

// Blank replaces the target term in fill-in-the-blank prompts.
const Blank = "_____"

// Mode selects what is shown and what is asked.
type Mode string

const (
	ModeEnTr      Mode = "en_tr"      // show the term, pick the translation
	ModeTrEn      Mode = "tr_en"      // show the translation, pick the term
	ModeFillBlank Mode = "fill_blank" // complete the example sentence
)

// ParseMode validates a mode string. An empty string selects ModeEnTr.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeEnTr, nil
	case ModeEnTr, ModeTrEn, ModeFillBlank:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Option is one answer choice.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"is_correct"`
}

// Question is a multiple-choice question about one item.
type Question struct {
	ItemID        string   `json:"item_id"`
	Mode          Mode     `json:"mode"`
	Prompt        string   `json:"prompt"`
	PromptLabel   string   `json:"prompt_label"`
	AnswerLabel   string   `json:"answer_label,omitempty"`
	Hint          string   `json:"hint,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []Option `json:"options"`
}
