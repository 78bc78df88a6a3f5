package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/progress"
	"github.com/abhisek/yokdil/internal/quiz"
	"github.com/abhisek/yokdil/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice quiz from a word set",
	Long: `Generate a quiz that favours the words the learner knows least. With
--play the questions are asked on the terminal and every answer is recorded
as a review.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		set, _ := cmd.Flags().GetString("set")
		modeName, _ := cmd.Flags().GetString("mode")
		count, _ := cmd.Flags().GetInt("count")
		play, _ := cmd.Flags().GetBool("play")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode, err := quiz.ParseMode(modeName)
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			setID, err := resolveSet(cmd.Context(), a, set)
			if err != nil {
				return err
			}
			questions, err := a.composer.Generate(cmd.Context(), learner, setID, mode, count)
			if err != nil {
				return err
			}
			switch {
			case asJSON:
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(questions)
			case play:
				return playQuiz(cmd, a, learner, questions)
			default:
				for i, q := range questions {
					printQuestion(i, q)
				}
				return nil
			}
		})
	},
}

func printQuestion(i int, q quiz.Question) {
	fmt.Printf("%s %s\n", theme.Title.Render(fmt.Sprintf("%d.", i+1)), q.Prompt)
	if q.Hint != "" {
		fmt.Println("  ", theme.Hint.Render(q.Hint))
	}
	for j, o := range q.Options {
		fmt.Printf("   %d) %s\n", j+1, o.Text)
	}
}

// playQuiz asks each question on stdin and records the answers.
func playQuiz(cmd *cobra.Command, a *app, learner string, questions []quiz.Question) error {
	in := bufio.NewScanner(os.Stdin)
	session := newSessionID()
	right := 0
	for i, q := range questions {
		printQuestion(i, q)
		start := time.Now()
		choice := -1
		for choice < 0 {
			fmt.Print("  > ")
			if !in.Scan() {
				return in.Err()
			}
			n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
			if err != nil || n < 1 || n > len(q.Options) {
				fmt.Println(theme.Hint.Render(fmt.Sprintf("  pick 1-%d", len(q.Options))))
				continue
			}
			choice = n - 1
		}
		correct := q.Options[choice].Correct
		if correct {
			right++
			fmt.Println(theme.Correct.Render("  Correct!"))
		} else {
			fmt.Println(theme.Incorrect.Render("  Wrong:"), q.CorrectAnswer)
		}
		_, err := a.tracker.RecordAnswer(cmd.Context(), progress.Answer{
			LearnerID:      learner,
			ItemID:         q.ItemID,
			Correct:        correct,
			SessionID:      session,
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
		})
		if err != nil {
			return err
		}
		fmt.Println()
	}
	fmt.Printf("%s %d/%d\n", theme.Title.Render("Score:"), right, len(questions))
	return nil
}

// newSessionID returns the id grouping the reviews of one played quiz.
func newSessionID() string {
	return uuid.NewString()
}

func init() {
	f := quizCmd.Flags()
	f.String("learner", "", "Learner id")
	f.String("set", "", "Word set (name or id)")
	f.String("mode", string(quiz.ModeEnTr), "Quiz mode: en_tr, tr_en or fill_blank")
	f.Int("count", quiz.DefaultCount, "Number of questions")
	f.Bool("play", false, "Ask the questions and record the answers")
	f.Bool("json", false, "Print the questions as JSON")
	_ = quizCmd.MarkFlagRequired("learner")
	_ = quizCmd.MarkFlagRequired("set")
}
