package quiz

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"sync"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/logger"
	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/sampling"
)

// States reads a learner's item states.
type States interface {
	ListStates(ctx context.Context, learnerID string, itemIDs []string) (map[string]progress.ItemState, error)
}

// Composer builds multiple-choice quizzes from a word set.
type Composer struct {
	words  catalog.WordCatalog
	states States
	log    *logger.Logger

	randMu sync.Mutex
	rand   sampling.Source
}

// NewComposer creates a composer. A nil source uses a clock-seeded one.
func NewComposer(words catalog.WordCatalog, states States, src sampling.Source, log *logger.Logger) *Composer {
	if src == nil {
		src = sampling.NewSource()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Composer{words: words, states: states, rand: src, log: log}
}

// Generate builds up to count questions (DefaultCount when count <= 0) from
// setID for learnerID. Items the learner knows least are preferred.
func (c *Composer) Generate(ctx context.Context, learnerID, setID string, mode Mode, count int) ([]Question, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ModeEnTr
	}
	if count <= 0 {
		count = DefaultCount
	}

	words, err := c.words.WordsInSet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("load set: %w", err)
	}
	if len(words) < MinItems {
		return nil, fmt.Errorf("%w: set %s has %d items, need %d", ErrInsufficientItems, setID, len(words), MinItems)
	}

	ids := make([]string, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	states, err := c.states.ListStates(ctx, learnerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}

	selected := c.selectItems(Rank(words, states), count)

	questions := make([]Question, 0, len(selected))
	for _, w := range selected {
		questions = append(questions, c.buildQuestion(w, words, mode))
	}
	c.log.Debug("quiz generated", "learner_id", learnerID, "set_id", setID,
		"mode", mode, "questions", len(questions))
	return questions, nil
}

// priorityKey orders items: never studied first, then by mastery level,
// then fewer correct answers, then shorter interval.
type priorityKey struct {
	tier, correct, interval int
}

func keyFor(s *progress.ItemState) priorityKey {
	if s == nil {
		return priorityKey{}
	}
	return priorityKey{tier: s.Mastery.Rank() + 1, correct: s.CorrectCount, interval: s.Interval}
}

func (k priorityKey) less(o priorityKey) bool {
	if k.tier != o.tier {
		return k.tier < o.tier
	}
	if k.correct != o.correct {
		return k.correct < o.correct
	}
	return k.interval < o.interval
}

// Rank returns words ordered by study priority. Ties keep catalog order.
func Rank(words []catalog.Word, states map[string]progress.ItemState) []catalog.Word {
	type ranked struct {
		word catalog.Word
		key  priorityKey
	}
	rs := make([]ranked, len(words))
	for i, w := range words {
		var sp *progress.ItemState
		if s, ok := states[w.ID]; ok {
			sp = &s
		}
		rs[i] = ranked{word: w, key: keyFor(sp)}
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].key.less(rs[j].key) })

	out := make([]catalog.Word, len(rs))
	for i, r := range rs {
		out[i] = r.word
	}
	return out
}

// selectItems takes the top share of the ranking plus a uniform sample of
// the rest, then shuffles so the priority order is not visible.
func (c *Composer) selectItems(ranked []catalog.Word, count int) []catalog.Word {
	if len(ranked) <= count {
		out := append([]catalog.Word(nil), ranked...)
		c.randMu.Lock()
		sampling.Shuffle(c.rand, out)
		c.randMu.Unlock()
		return out
	}

	priority := int(math.Ceil(float64(count) * PriorityShare))
	if priority > count {
		priority = count
	}
	out := append([]catalog.Word(nil), ranked[:priority]...)
	c.randMu.Lock()
	out = append(out, sampling.Sample(c.rand, ranked[priority:], count-priority)...)
	sampling.Shuffle(c.rand, out)
	c.randMu.Unlock()
	return out
}

func (c *Composer) buildQuestion(w catalog.Word, all []catalog.Word, mode Mode) Question {
	q := Question{ItemID: w.ID, Mode: mode}

	var field func(catalog.Word) string
	switch mode {
	case ModeTrEn:
		field = termOf
		q.Prompt = w.Translation
		q.PromptLabel = "Turkish"
		q.AnswerLabel = "What is the English word?"
	case ModeFillBlank:
		field = termOf
		q.Prompt = FillBlank(w)
		q.PromptLabel = "Complete the sentence"
		q.Hint = w.Translation
	default:
		field = translationOf
		q.Prompt = w.Term
		q.PromptLabel = "English"
		q.AnswerLabel = "What is the Turkish meaning?"
	}

	q.CorrectAnswer = field(w)
	q.Options = append(q.Options, Option{Text: q.CorrectAnswer, Correct: true})
	for _, d := range c.distractors(w, all, field) {
		q.Options = append(q.Options, Option{Text: d})
	}
	c.randMu.Lock()
	sampling.Shuffle(c.rand, q.Options)
	c.randMu.Unlock()
	return q
}

// distractors draws up to DistractorCount distinct values of field from the
// other words, never equal to the target's value.
func (c *Composer) distractors(target catalog.Word, all []catalog.Word, field func(catalog.Word) string) []string {
	correct := field(target)
	seen := map[string]bool{correct: true}
	var pool []string
	for _, w := range all {
		if w.ID == target.ID {
			continue
		}
		v := field(w)
		if seen[v] {
			continue
		}
		seen[v] = true
		pool = append(pool, v)
	}
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return sampling.Sample(c.rand, pool, DistractorCount)
}

// FillBlank blanks the first case-insensitive occurrence of the term in the
// word's example sentence. Without an example a template sentence is used;
// if the term does not occur the blank is appended.
func FillBlank(w catalog.Word) string {
	if w.Example == "" {
		return fmt.Sprintf("The meaning of %s is '%s'.", Blank, w.Translation)
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(w.Term))
	if err == nil && w.Term != "" {
		if loc := re.FindStringIndex(w.Example); loc != nil {
			return w.Example[:loc[0]] + Blank + w.Example[loc[1]:]
		}
	}
	return w.Example + " (" + Blank + ")"
}

func termOf(w catalog.Word) string        { return w.Term }
func translationOf(w catalog.Word) string { return w.Translation }
