package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/catalog"
	"github.com/abhisek/yokdil/internal/ui/theme"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import vocabulary and questions",
}

var importWordsCmd = &cobra.Command{
	Use:   "words <file.xlsx|file.csv>",
	Short: "Import words from an Excel or CSV file into a word set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := catalog.DefaultImportConfig()
		cfg.FilePath = args[0]
		cfg.SetName, _ = cmd.Flags().GetString("set")
		cfg.TermColumn, _ = cmd.Flags().GetString("term-col")
		cfg.TranslationColumn, _ = cmd.Flags().GetString("translation-col")
		cfg.ExampleColumn, _ = cmd.Flags().GetString("example-col")
		cfg.SheetName, _ = cmd.Flags().GetString("sheet")
		cfg.StartRow, _ = cmd.Flags().GetInt("start-row")

		return withApp(cmd, func(a *app) error {
			res, err := catalog.Import(cmd.Context(), cfg, a.store.Words())
			if err != nil {
				return err
			}
			fmt.Println(theme.Title.Render("Import complete"))
			fmt.Printf("  Set:       %s\n", res.SetID)
			fmt.Printf("  Processed: %d\n", res.TotalProcessed)
			fmt.Printf("  Created:   %d\n", res.Created)
			fmt.Printf("  Updated:   %d\n", res.Updated)
			fmt.Printf("  Skipped:   %d\n", res.Skipped)
			for _, e := range res.Errors {
				fmt.Println(" ", theme.Incorrect.Render(e))
			}
			return nil
		})
	},
}

var importQuestionsCmd = &cobra.Command{
	Use:   "questions <file.json>",
	Short: "Import multiple-choice questions from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var questions []catalog.Question
		if err := json.Unmarshal(data, &questions); err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}
		return withApp(cmd, func(a *app) error {
			repo := a.store.Questions()
			added := 0
			for i, q := range questions {
				if _, err := repo.Add(cmd.Context(), q); err != nil {
					fmt.Println(theme.Incorrect.Render(fmt.Sprintf("question %d: %v", i+1, err)))
					continue
				}
				added++
			}
			fmt.Printf("%d of %d questions imported\n", added, len(questions))
			return nil
		})
	},
}

func init() {
	def := catalog.DefaultImportConfig()
	f := importWordsCmd.Flags()
	f.String("set", "", "Target word set (defaults to the file name)")
	f.String("term-col", def.TermColumn, "Column with the English term")
	f.String("translation-col", def.TranslationColumn, "Column with the translation")
	f.String("example-col", def.ExampleColumn, "Column with an example sentence")
	f.String("sheet", "", "Excel sheet (defaults to the first)")
	f.Int("start-row", def.StartRow, "First data row (1-based)")

	importCmd.AddCommand(importWordsCmd)
	importCmd.AddCommand(importQuestionsCmd)
}
