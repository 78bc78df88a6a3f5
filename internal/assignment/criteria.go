package assignment

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/trap"
)

// ErrInvalidCriteria is returned for criteria that fail validation.
var ErrInvalidCriteria = errors.New("invalid assignment criteria")

// Criteria defaults.
const (
	DefaultCount            = 20
	DefaultMasteryThreshold = 0.85
	DefaultWindowDays       = 30
)

// Criteria selects the questions of an assignment. Zero values mean
// "not set" and take the defaults above.
type Criteria struct {
	Tags             []string             `json:"tags,omitempty"`
	TrapCodes        []trap.Code          `json:"trap_type_codes,omitempty"`
	Difficulties     []catalog.Difficulty `json:"difficulty_range,omitempty"`
	ExcludeMastered  bool                 `json:"exclude_mastered"`
	Count            int                  `json:"count,omitempty"`
	MasteryThreshold float64              `json:"mastery_threshold,omitempty"`
	WindowDays       int                  `json:"mastery_window_days,omitempty"`
}

// Normalize applies defaults and validates the criteria.
func (c Criteria) Normalize() (Criteria, error) {
	if c.Count == 0 {
		c.Count = DefaultCount
	}
	if c.MasteryThreshold == 0 {
		c.MasteryThreshold = DefaultMasteryThreshold
	}
	if c.WindowDays == 0 {
		c.WindowDays = DefaultWindowDays
	}

	if c.Count < 0 {
		return c, fmt.Errorf("%w: count %d", ErrInvalidCriteria, c.Count)
	}
	if c.MasteryThreshold < 0 || c.MasteryThreshold > 1 {
		return c, fmt.Errorf("%w: mastery threshold %v outside (0, 1]", ErrInvalidCriteria, c.MasteryThreshold)
	}
	if c.WindowDays < 0 {
		return c, fmt.Errorf("%w: window %d days", ErrInvalidCriteria, c.WindowDays)
	}
	for _, code := range c.TrapCodes {
		if !trap.Valid(code) {
			return c, fmt.Errorf("%w: unknown trap code %s", ErrInvalidCriteria, code)
		}
	}
	c.Difficulties = append([]catalog.Difficulty(nil), c.Difficulties...)
	for i, d := range c.Difficulties {
		parsed, err := catalog.ParseDifficulty(string(d))
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
		}
		c.Difficulties[i] = parsed
	}
	return c, nil
}

//go:embed criteria.schema.json
var criteriaSchemaJSON []byte

const criteriaSchemaURL = "schema://assignment-criteria.json"

var (
	criteriaSchemaOnce sync.Once
	criteriaSchema     *jsonschema.Schema
	criteriaSchemaErr  error
)

func compiledCriteriaSchema() (*jsonschema.Schema, error) {
	criteriaSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(criteriaSchemaJSON, &def); err != nil {
			criteriaSchemaErr = fmt.Errorf("parse criteria schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(criteriaSchemaURL, def); err != nil {
			criteriaSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		criteriaSchema, criteriaSchemaErr = c.Compile(criteriaSchemaURL)
	})
	return criteriaSchema, criteriaSchemaErr
}

// ParseCriteria validates raw criteria JSON against the criteria schema,
// decodes it and applies defaults.
func ParseCriteria(raw []byte) (Criteria, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Criteria{}, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidCriteria, err)
	}

	schema, err := compiledCriteriaSchema()
	if err != nil {
		return Criteria{}, err
	}
	if err := schema.Validate(parsed); err != nil {
		return Criteria{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}

	var c Criteria
	if err := json.Unmarshal(raw, &c); err != nil {
		return Criteria{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return c.Normalize()
}
