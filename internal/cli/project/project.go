package project

import (
	"github.com/spf13/cobra"
)

// ProjectCmd returns the project parent command
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Inspect and move projects",
		Long: `Projects come from GitHub and cannot be created or deleted here; run
'ghpd sync' to pick up changes. Projects can be referenced by node ID,
number or title.`,
	}

	cmd.AddCommand(ListCmd())
	cmd.AddCommand(MoveCmd())

	return cmd
}
