package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/spacedrep"
	"github.com/abhisek/yokdil/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Record a review of one word",
	Long: `Record a review with an explicit SM-2 quality (0, 3, 4 or 5), or pass
--correct/--incorrect with a response time to have the quality inferred.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		item, _ := cmd.Flags().GetString("item")
		quality, _ := cmd.Flags().GetInt("quality")
		correct, _ := cmd.Flags().GetBool("correct")
		incorrect, _ := cmd.Flags().GetBool("incorrect")
		hint, _ := cmd.Flags().GetBool("hint")
		ms, _ := cmd.Flags().GetInt("time-ms")
		session, _ := cmd.Flags().GetString("session")

		if correct && incorrect {
			return fmt.Errorf("use --correct or --incorrect, not both")
		}
		raw := correct || incorrect
		if !raw && !cmd.Flags().Changed("quality") {
			return fmt.Errorf("one of --quality, --correct or --incorrect is required")
		}

		return withApp(cmd, func(a *app) error {
			var (
				res *progress.ReviewResult
				err error
			)
			if raw {
				res, err = a.tracker.RecordAnswer(cmd.Context(), progress.Answer{
					LearnerID:      learner,
					ItemID:         item,
					Correct:        correct,
					HintUsed:       hint,
					SessionID:      session,
					ResponseTimeMs: ms,
				})
			} else {
				res, err = a.tracker.RecordReview(cmd.Context(), progress.Review{
					LearnerID:      learner,
					ItemID:         item,
					Quality:        quality,
					SessionID:      session,
					ResponseTimeMs: ms,
				})
			}
			if err != nil {
				return err
			}
			printReviewResult(res)
			return nil
		})
	},
}

func printReviewResult(res *progress.ReviewResult) {
	verdict := theme.Correct.Render("passed")
	if !res.Quality.Passed() {
		verdict = theme.Incorrect.Render("failed")
	}
	fmt.Printf("%s  quality %d (%s)\n", verdict, res.Quality, res.Quality)
	fmt.Printf("  Next review: %s (in %d days)\n", spacedrep.FormatDate(res.NextReviewDate), res.NewInterval)
	fmt.Printf("  Ease factor: %.2f\n", res.EaseFactor)
	fmt.Printf("  Mastery:     %s\n", theme.Level(res.MasteryLevel))
	if tr := res.Transition; tr != nil {
		fmt.Println(" ", theme.Streak.Render(fmt.Sprintf("%s → %s", tr.From.Label(), tr.To.Label())))
	}
}

func init() {
	f := reviewCmd.Flags()
	f.String("learner", "", "Learner id")
	f.String("item", "", "Word id")
	f.Int("quality", 0, "SM-2 quality: 0 again, 3 hard, 4 good, 5 easy")
	f.Bool("correct", false, "Answer was correct (quality inferred)")
	f.Bool("incorrect", false, "Answer was wrong (quality inferred)")
	f.Bool("hint", false, "A hint was used")
	f.Int("time-ms", 0, "Response time in milliseconds")
	f.String("session", "", "Optional session id")
	_ = reviewCmd.MarkFlagRequired("learner")
	_ = reviewCmd.MarkFlagRequired("item")
}
