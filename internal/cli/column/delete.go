package column

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
)

// DeleteCmd returns the column delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a column",
		Long: `Delete a column (requires confirmation unless --force, --json or --quiet).

Warning: Deleting a column moves all of its projects to the "No Status" column.

Examples:
  # Delete with confirmation
  ghpd column delete --id="Review"

  # Skip confirmation
  ghpd column delete --id="Review" --force
`,
		RunE: runDelete,
	}

	cmd.Flags().String("id", "", "Column ID or title (required)")
	requireFlag(cmd, "id")
	cmd.Flags().Bool("force", false, "Skip confirmation")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	ref, _ := cmd.Flags().GetString("id")
	force, _ := cmd.Flags().GetBool("force")

	svc := cliInstance.App.ColumnService
	column, err := cli.ResolveColumn(svc.Columns(), ref)
	if err != nil {
		return formatter.Fail(err)
	}

	if !force && !formatter.Quiet && !formatter.JSON {
		fmt.Fprintln(formatter.Out, "Warning: projects in this column will move to the \"No Status\" column")
		if !cli.Confirm(cmd, fmt.Sprintf("Delete column '%s'?", column.Title)) {
			fmt.Fprintln(formatter.Out, "Cancelled")
			return nil
		}
	}

	if err := svc.DeleteColumn(cmd.Context(), column.ID); err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(map[string]string{"column_id": column.ID}, "",
		fmt.Sprintf("Column '%s' deleted successfully\n", column.Title))
}
