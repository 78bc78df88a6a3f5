package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/assignment"
	"github.com/abhisek/yokdil/internal/config"
	"github.com/abhisek/yokdil/internal/trap"
	"github.com/abhisek/yokdil/internal/ui/theme"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Build question assignments for a cohort",
}

var assignBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Select assignment questions now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cohort := cohortFlag(cmd)
		return withApp(cmd, func(a *app) error {
			_, criteria, err := criteriaFromFlags(cmd, a.cfg)
			if err != nil {
				return err
			}
			ids, err := a.builder.Build(cmd.Context(), criteria, cohort)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			fmt.Fprintf(os.Stderr, "%d questions selected\n", len(ids))
			return nil
		})
	},
}

var assignQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Queue an assignment build for the job runner",
	RunE: func(cmd *cobra.Command, args []string) error {
		cohort := cohortFlag(cmd)
		return withApp(cmd, func(a *app) error {
			raw, _, err := criteriaFromFlags(cmd, a.cfg)
			if err != nil {
				return err
			}
			req, err := a.store.Requests().Enqueue(cmd.Context(), raw, cohort)
			if err != nil {
				return err
			}
			fmt.Println(theme.Correct.Render("Queued:"), req.ID)
			return nil
		})
	},
}

var assignShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show a queued assignment request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			req, err := a.store.Requests().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(req)
		})
	},
}

var assignReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the cohort's accuracy per trap category",
	RunE: func(cmd *cobra.Command, args []string) error {
		cohort := cohortFlag(cmd)
		window, _ := cmd.Flags().GetInt("window")
		return withApp(cmd, func(a *app) error {
			threshold := a.cfg.MasteryThreshold
			if cmd.Flags().Changed("threshold") {
				threshold, _ = cmd.Flags().GetFloat64("threshold")
			}
			if !cmd.Flags().Changed("window") {
				window = a.cfg.MasteryWindowDays
			}
			agg, err := a.builder.MasteryReport(cmd.Context(), cohort, window)
			if err != nil {
				return err
			}
			mastered := agg.Mastered(threshold)

			fmt.Println(theme.TableHeader.Render(fmt.Sprintf("%-28s  %8s  %8s  %-22s  %s",
				"Category", "Correct", "Total", "Accuracy", "Mastered")))
			fmt.Println(theme.Rule(90))
			for _, code := range agg.Codes() {
				s := agg[code]
				mark := ""
				if mastered[code] {
					mark = theme.Correct.Render("yes")
				}
				fmt.Printf("%-28s  %8d  %8d  %s %5.1f%%  %s\n",
					code, s.Correct, s.Total, theme.Bar(s.Accuracy(), 15), s.Accuracy()*100, mark)
			}
			fmt.Printf("\n%d learners, last %d days, threshold %.2f\n", len(cohort), window, threshold)
			return nil
		})
	},
}

var assignAttemptCmd = &cobra.Command{
	Use:   "attempt",
	Short: "Record a learner's answer to a question",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		question, _ := cmd.Flags().GetString("question")
		option, _ := cmd.Flags().GetString("option")
		return withApp(cmd, func(a *app) error {
			if ok, err := a.store.Learners().LearnerExists(cmd.Context(), learner); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("unknown learner %s", learner)
			}
			at, err := a.store.Attempts().Record(cmd.Context(), learner, question, option, time.Now())
			if err != nil {
				return err
			}
			if at.Correct {
				fmt.Println(theme.Correct.Render("Correct"))
			} else {
				fmt.Println(theme.Incorrect.Render("Incorrect"))
			}
			return nil
		})
	},
}

func addCriteriaFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("cohort", "", "Comma-separated learner ids")
	f.String("criteria", "", "Criteria as JSON")
	f.String("criteria-file", "", "Criteria JSON file")
	f.String("tags", "", "Comma-separated tags")
	f.String("traps", "", "Comma-separated trap codes")
	f.String("difficulty", "", "Comma-separated difficulties (easy, medium, hard)")
	f.Int("count", assignment.DefaultCount, "Number of questions")
	f.Bool("exclude-mastered", false, "Skip questions targeting categories the cohort has mastered")
	f.Float64("threshold", assignment.DefaultMasteryThreshold, "Accuracy at which a category counts as mastered")
	f.Int("window", assignment.DefaultWindowDays, "Days of attempt history to consider")
}

func cohortFlag(cmd *cobra.Command) []string {
	s, _ := cmd.Flags().GetString("cohort")
	return splitList(s)
}

// criteriaFromFlags returns the criteria from --criteria/--criteria-file or
// from the individual flags. Unset mastery settings take the configured
// defaults so a queued request is built with the same values later.
func criteriaFromFlags(cmd *cobra.Command, cfg *config.Config) (json.RawMessage, assignment.Criteria, error) {
	fields := map[string]any{}

	inline, _ := cmd.Flags().GetString("criteria")
	file, _ := cmd.Flags().GetString("criteria-file")
	switch {
	case inline != "" && file != "":
		return nil, assignment.Criteria{}, fmt.Errorf("use --criteria or --criteria-file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, assignment.Criteria{}, err
		}
		inline = string(data)
		fallthrough
	case inline != "":
		if err := json.Unmarshal([]byte(inline), &fields); err != nil {
			return nil, assignment.Criteria{}, fmt.Errorf("%w: %v", assignment.ErrInvalidCriteria, err)
		}
	default:
		if tags := splitList(mustString(cmd, "tags")); len(tags) > 0 {
			fields["tags"] = tags
		}
		if traps := splitList(mustString(cmd, "traps")); len(traps) > 0 {
			fields["trap_type_codes"] = traps
		}
		if ds := splitList(mustString(cmd, "difficulty")); len(ds) > 0 {
			fields["difficulty_range"] = ds
		}
		if cmd.Flags().Changed("count") {
			n, _ := cmd.Flags().GetInt("count")
			fields["count"] = n
		}
		ex, _ := cmd.Flags().GetBool("exclude-mastered")
		fields["exclude_mastered"] = ex
		if cmd.Flags().Changed("threshold") {
			v, _ := cmd.Flags().GetFloat64("threshold")
			fields["mastery_threshold"] = v
		}
		if cmd.Flags().Changed("window") {
			v, _ := cmd.Flags().GetInt("window")
			fields["mastery_window_days"] = v
		}
	}
	if _, ok := fields["mastery_threshold"]; !ok {
		fields["mastery_threshold"] = cfg.MasteryThreshold
	}
	if _, ok := fields["mastery_window_days"]; !ok {
		fields["mastery_window_days"] = cfg.MasteryWindowDays
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, assignment.Criteria{}, err
	}
	c, err := assignment.ParseCriteria(raw)
	if err != nil {
		return nil, assignment.Criteria{}, err
	}
	return raw, c, nil
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

var trapsCmd = &cobra.Command{
	Use:   "traps",
	Short: "List trap categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		var types []*trap.Type
		if group != "" {
			types = trap.ByGroup(trap.Group(group))
			if len(types) == 0 {
				return fmt.Errorf("no trap categories in group %q", group)
			}
		} else {
			types = trap.All()
			sort.SliceStable(types, func(i, j int) bool { return types[i].Group < types[j].Group })
		}

		fmt.Println(theme.TableHeader.Render(fmt.Sprintf("%-28s  %-11s  %s", "Code", "Group", "Title")))
		fmt.Println(theme.Rule(90))
		for _, t := range types {
			fmt.Printf("%-28s  %-11s  %s\n", t.Code, t.Group, t.Title)
		}
		fmt.Printf("\n%d categories\n", len(types))
		return nil
	},
}

func init() {
	addCriteriaFlags(assignBuildCmd)
	addCriteriaFlags(assignQueueCmd)
	assignReportCmd.Flags().String("cohort", "", "Comma-separated learner ids")
	assignReportCmd.Flags().Float64("threshold", assignment.DefaultMasteryThreshold, "Accuracy at which a category counts as mastered")
	assignReportCmd.Flags().Int("window", assignment.DefaultWindowDays, "Days of attempt history to consider")
	_ = assignReportCmd.MarkFlagRequired("cohort")

	assignAttemptCmd.Flags().String("learner", "", "Learner id")
	assignAttemptCmd.Flags().String("question", "", "Question id")
	assignAttemptCmd.Flags().String("option", "", "Chosen option id")
	for _, name := range []string{"learner", "question", "option"} {
		_ = assignAttemptCmd.MarkFlagRequired(name)
	}

	assignCmd.AddCommand(assignBuildCmd)
	assignCmd.AddCommand(assignQueueCmd)
	assignCmd.AddCommand(assignShowCmd)
	assignCmd.AddCommand(assignReportCmd)
	assignCmd.AddCommand(assignAttemptCmd)

	trapsCmd.Flags().String("group", "", "Only one group (semantic, logic, grammar, structural, domain)")
}
