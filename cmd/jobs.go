package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/ui/theme"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Process queued assignment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		return withApp(cmd, func(a *app) error {
			r := a.runner()
			if !watch {
				sum, err := r.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("%s %d  %s %d\n",
					theme.Correct.Render("done"), sum.Done, theme.Incorrect.Render("failed"), sum.Failed)
				return nil
			}
			if err := r.Start(); err != nil {
				return err
			}
			fmt.Println(theme.Hint.Render(fmt.Sprintf("polling every %s, Ctrl+C to stop", a.cfg.JobsInterval)))
			<-cmd.Context().Done()
			r.Stop()
			return nil
		})
	},
}

func init() {
	jobsCmd.Flags().Bool("watch", false, "Keep polling until interrupted")
}
