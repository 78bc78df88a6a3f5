package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/ui/theme"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Delete a learner's item states, review history, attempts and streak. The learner stays registered.",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all progress of %s; pass --yes to confirm", learner)
		}
		return withApp(cmd, func(a *app) error {
			if err := a.store.Learners().ResetProgress(cmd.Context(), learner); err != nil {
				return err
			}
			fmt.Println(theme.Correct.Render("Progress reset for"), learner)
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().String("learner", "", "Learner id")
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
	_ = resetCmd.MarkFlagRequired("learner")
}
