package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/config"
	"github.com/abhisek/yokdil/internal/trap"
)

func criteriaCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addCriteriaFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func testConfig() *config.Config {
	return &config.Config{MasteryThreshold: 0.9, MasteryWindowDays: 14}
}

func TestCriteriaFromFlags_Individual(t *testing.T) {
	c := criteriaCmd(t,
		"--tags", "reading, grammar",
		"--traps", "TRAP_NEGATION",
		"--difficulty", "hard",
		"--count", "5",
		"--exclude-mastered",
	)
	raw, got, err := criteriaFromFlags(c, testConfig())
	if err != nil {
		t.Fatalf("criteriaFromFlags: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "grammar" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if len(got.TrapCodes) != 1 || got.TrapCodes[0] != trap.Code("TRAP_NEGATION") {
		t.Errorf("TrapCodes = %v", got.TrapCodes)
	}
	if len(got.Difficulties) != 1 || got.Difficulties[0] != catalog.Hard {
		t.Errorf("Difficulties = %v", got.Difficulties)
	}
	if got.Count != 5 || !got.ExcludeMastered {
		t.Errorf("Count = %d, ExcludeMastered = %v", got.Count, got.ExcludeMastered)
	}
	if got.MasteryThreshold != 0.9 || got.WindowDays != 14 {
		t.Errorf("configured defaults not applied: %+v", got)
	}

	// The queued JSON must parse back to the same criteria.
	again, err := assignment.ParseCriteria(raw)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.MasteryThreshold != got.MasteryThreshold || again.Count != got.Count {
		t.Errorf("reparsed %+v, want %+v", again, got)
	}
}

func TestCriteriaFromFlags_FlagOverridesConfig(t *testing.T) {
	c := criteriaCmd(t, "--threshold", "0.7", "--window", "60")
	_, got, err := criteriaFromFlags(c, testConfig())
	if err != nil {
		t.Fatalf("criteriaFromFlags: %v", err)
	}
	if got.MasteryThreshold != 0.7 || got.WindowDays != 60 {
		t.Errorf("got %+v", got)
	}
	if got.Count != assignment.DefaultCount {
		t.Errorf("Count = %d, want default %d", got.Count, assignment.DefaultCount)
	}
}

func TestCriteriaFromFlags_InlineAndFile(t *testing.T) {
	c := criteriaCmd(t, "--criteria", `{"count": 3, "mastery_threshold": 0.5}`)
	raw, got, err := criteriaFromFlags(c, testConfig())
	if err != nil {
		t.Fatalf("inline: %v", err)
	}
	if got.Count != 3 || got.MasteryThreshold != 0.5 || got.WindowDays != 14 {
		t.Errorf("inline got %+v", got)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if fields["mastery_window_days"] != float64(14) {
		t.Errorf("raw criteria missing window: %s", raw)
	}

	path := filepath.Join(t.TempDir(), "criteria.json")
	if err := os.WriteFile(path, []byte(`{"tags": ["vocab"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c = criteriaCmd(t, "--criteria-file", path)
	_, got, err = criteriaFromFlags(c, testConfig())
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "vocab" {
		t.Errorf("file got %+v", got)
	}
}

func TestCriteriaFromFlags_Invalid(t *testing.T) {
	tests := [][]string{
		{"--criteria", `{"count": 3}`, "--criteria-file", "x.json"},
		{"--criteria", `{not json`},
		{"--criteria", `{"unknown": true}`},
		{"--difficulty", "impossible"},
	}
	for _, args := range tests {
		c := criteriaCmd(t, args...)
		if _, _, err := criteriaFromFlags(c, testConfig()); err == nil {
			t.Errorf("args %v: expected error", args)
		}
	}

	c := criteriaCmd(t, "--criteria", `{"count": 0}`)
	_, _, err := criteriaFromFlags(c, testConfig())
	if !errors.Is(err, assignment.ErrInvalidCriteria) {
		t.Errorf("count 0: err = %v, want ErrInvalidCriteria", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("merhaba dünya", 8); got != "merha..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("kısa", 8); got != "kısa" {
		t.Errorf("truncate = %q", got)
	}
}
