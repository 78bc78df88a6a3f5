package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WordWriter persists imported words.
type WordWriter interface {
	EnsureWordSet(ctx context.Context, name string) (string, error)
	// UpsertWord inserts the word or updates the set's word with the same
	// term. It reports whether a new row was created.
	UpsertWord(ctx context.Context, w Word) (bool, error)
}

// ImportConfig defines the import configuration.
type ImportConfig struct {
	FilePath          string // .xlsx or .csv
	SetName           string // target word set; defaults to the file name
	TermColumn        string // column letter with the English term
	TranslationColumn string // column letter with the translation
	ExampleColumn     string // column letter with an example sentence; optional
	SheetName         string // defaults to the first sheet
	StartRow          int    // 1-based first data row
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TermColumn:        "A",
		TranslationColumn: "B",
		ExampleColumn:     "C",
		StartRow:          2, // skip header
	}
}

// ImportResult holds the result of an import operation.
type ImportResult struct {
	SetID          string   `json:"set_id"`
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}

type columns struct {
	term, translation, example int
}

// Import reads words from an Excel or CSV file into a word set.
func Import(ctx context.Context, cfg ImportConfig, w WordWriter) (*ImportResult, error) {
	cols, err := resolveColumns(cfg)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		rows, err = readCSV(cfg.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(cfg.FilePath))
	}
	if err != nil {
		return nil, err
	}

	setName := cfg.SetName
	if setName == "" {
		base := filepath.Base(cfg.FilePath)
		setName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	setID, err := w.EnsureWordSet(ctx, setName)
	if err != nil {
		return nil, fmt.Errorf("ensure word set: %w", err)
	}

	result := &ImportResult{SetID: setID}
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}
	position := 0
	for i, row := range rows {
		if i < start-1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		word := Word{
			SetID:       setID,
			Term:        cleanTerm(cell(row, cols.term)),
			Translation: strings.TrimSpace(cell(row, cols.translation)),
			Example:     strings.TrimSpace(cell(row, cols.example)),
			Position:    position,
		}
		if word.Term == "" || word.Translation == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: term and translation are required", i+1))
			continue
		}

		created, err := w.UpsertWord(ctx, word)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		position++
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func resolveColumns(cfg ImportConfig) (columns, error) {
	var c columns
	var err error
	if c.term, err = columnIndex(cfg.TermColumn); err != nil {
		return c, fmt.Errorf("term column: %w", err)
	}
	if c.translation, err = columnIndex(cfg.TranslationColumn); err != nil {
		return c, fmt.Errorf("translation column: %w", err)
	}
	c.example = -1
	if cfg.ExampleColumn != "" {
		if c.example, err = columnIndex(cfg.ExampleColumn); err != nil {
			return c, fmt.Errorf("example column: %w", err)
		}
	}
	return c, nil
}

// columnIndex converts a column letter ("A", "AB") to a 0-based index.
func columnIndex(col string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(col))
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cleanTerm drops trailing notes in parentheses: "go (went, gone)" -> "go".
func cleanTerm(term string) string {
	if i := strings.Index(term, "("); i > 0 {
		return strings.TrimSpace(term[:i])
	}
	return strings.TrimSpace(term)
}
