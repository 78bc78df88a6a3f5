package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/spacedrep"
	"github.com/abhisek/yokdil/internal/ui/theme"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List words due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		set, _ := cmd.Flags().GetString("set")
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(cmd, func(a *app) error {
			setID, err := resolveSet(cmd.Context(), a, set)
			if err != nil {
				return err
			}
			items, err := a.tracker.DueQueue(cmd.Context(), learner, limit, setID)
			if err != nil {
				return err
			}
			today := time.Now()
			fmt.Println(theme.TableHeader.Render(fmt.Sprintf("%-36s  %-20s  %-20s  %-12s  %s",
				"ID", "Term", "Translation", "Due", "Mastery")))
			fmt.Println(theme.Rule(110))
			for _, it := range items {
				due := "never seen"
				if it.State.NextDue != nil {
					due = spacedrep.FormatDate(*it.State.NextDue)
					if d := it.State.OverdueDays(today); d > 0 {
						due += theme.Incorrect.Render(fmt.Sprintf(" +%d", d))
					}
				}
				fmt.Printf("%-36s  %-20s  %-20s  %-12s  %s\n",
					it.Word.ID, truncate(it.Word.Term, 20), truncate(it.Word.Translation, 20),
					due, theme.Level(it.State.Mastery))
			}
			fmt.Printf("\n%d due\n", len(items))
			return nil
		})
	},
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "List words of a set the learner has not studied yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		set, _ := cmd.Flags().GetString("set")
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(cmd, func(a *app) error {
			setID, err := resolveSet(cmd.Context(), a, set)
			if err != nil {
				return err
			}
			words, err := a.tracker.NewItems(cmd.Context(), learner, setID, limit)
			if err != nil {
				return err
			}
			fmt.Println(theme.TableHeader.Render(fmt.Sprintf("%-36s  %-24s  %s", "ID", "Term", "Translation")))
			fmt.Println(theme.Rule(90))
			for _, w := range words {
				fmt.Printf("%-36s  %-24s  %s\n", w.ID, truncate(w.Term, 24), w.Translation)
			}
			fmt.Printf("\n%d new\n", len(words))
			return nil
		})
	},
}

// resolveSet maps a set name or id to its id. An empty name stays empty.
func resolveSet(ctx context.Context, a *app, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	ws, err := a.store.Words().WordSetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return ws.ID, nil
}

func init() {
	dueCmd.Flags().String("learner", "", "Learner id")
	dueCmd.Flags().String("set", "", "Restrict to one word set (name or id)")
	dueCmd.Flags().Int("limit", progress.DefaultDueLimit, "Maximum items")
	_ = dueCmd.MarkFlagRequired("learner")

	newCmd.Flags().String("learner", "", "Learner id")
	newCmd.Flags().String("set", "", "Word set (name or id)")
	newCmd.Flags().Int("limit", progress.DefaultNewLimit, "Maximum items")
	_ = newCmd.MarkFlagRequired("learner")
	_ = newCmd.MarkFlagRequired("set")
}
