package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/mastery"
	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withApp(cmd, func(a *app) error {
			st, err := a.tracker.Stats(cmd.Context(), learner)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStats(st)
			return nil
		})
	},
}

func printStats(st *progress.Stats) {
	fmt.Println(theme.Card.Render(theme.Title.Render("Progress for " + st.LearnerID)))
	fmt.Println()

	fmt.Printf("  Words studied: %d\n", st.TotalWordsStudied)
	fmt.Printf("  Reviews:       %d (%d correct)\n", st.TotalReviews, st.CorrectReviews)
	fmt.Printf("  Accuracy:      %s %.0f%%\n", theme.Bar(st.Accuracy, 20), st.Accuracy*100)
	fmt.Printf("  Due today:     %d\n", st.DueToday)
	fmt.Println()

	fmt.Println(theme.TableHeader.Render("  Mastery"))
	for _, l := range mastery.Levels() {
		n := st.MasteryDistribution[l]
		ratio := 0.0
		if st.TotalWordsStudied > 0 {
			ratio = float64(n) / float64(st.TotalWordsStudied)
		}
		fmt.Printf("  %-24s %s %d\n", theme.Level(l), theme.Bar(ratio, 20), n)
	}
	fmt.Println()

	fmt.Printf("  Streak: %s  longest %d  next milestone %d\n",
		theme.Streak.Render(fmt.Sprintf("%d days", st.Streak.Current)), st.Streak.Longest, st.NextMilestone)
	fmt.Println()

	peak := 0
	for _, d := range st.Last7Days {
		peak = max(peak, d.Reviews)
	}
	fmt.Println(theme.TableHeader.Render("  Last 7 days"))
	for _, d := range st.Last7Days {
		ratio := 0.0
		if peak > 0 {
			ratio = float64(d.Reviews) / float64(peak)
		}
		fmt.Printf("  %s %s %d\n", d.Date, theme.Bar(ratio, 20), d.Reviews)
	}
}

func init() {
	statsCmd.Flags().String("learner", "", "Learner id")
	statsCmd.Flags().Bool("json", false, "Print as JSON")
	_ = statsCmd.MarkFlagRequired("learner")
}
