package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/yokdil/internal/ui/theme"
)

var learnerCmd = &cobra.Command{
	Use:   "learner",
	Short: "Manage learners",
}

var learnerAddCmd = &cobra.Command{
	Use:   "add [id]",
	Short: "Register a learner (an id is generated when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return withApp(cmd, func(a *app) error {
			l, err := a.store.Learners().Add(cmd.Context(), id, name)
			if err != nil {
				return err
			}
			fmt.Println(theme.Correct.Render("Learner added:"), l.ID)
			return nil
		})
	},
}

var learnerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learners",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			learners, err := a.store.Learners().List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(theme.TableHeader.Render(fmt.Sprintf("%-36s  %-24s  %s", "ID", "Name", "Created")))
			fmt.Println(theme.Rule(80))
			for _, l := range learners {
				fmt.Printf("%-36s  %-24s  %s\n", l.ID, truncate(l.Name, 24), l.CreatedAt.Format("2006-01-02"))
			}
			fmt.Printf("\n%d learners\n", len(learners))
			return nil
		})
	},
}

func init() {
	learnerAddCmd.Flags().String("name", "", "Display name")
	learnerCmd.AddCommand(learnerAddCmd)
	learnerCmd.AddCommand(learnerListCmd)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
