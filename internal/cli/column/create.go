package column

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"
)

// CreateCmd returns the column create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new column",
		Long: `Create a new column.

Without --after the column goes just before the Closed column.

Examples:
  # Create column before Closed
  ghpd column create --title="Review"

  # Create column after a specific column
  ghpd column create --title="Backlog" --after="No Status"

  # Quiet mode for bash capture
  COLUMN_ID=$(ghpd column create --title="Review" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Column title (required)")
	requireFlag(cmd, "title")
	cmd.Flags().String("after", "", "Insert after this column (ID or title)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	after, _ := cmd.Flags().GetString("after")

	svc := cliInstance.App.ColumnService
	req := columnservice.CreateColumnRequest{Title: title}
	if after != "" {
		afterCol, err := cli.ResolveColumn(svc.Columns(), after)
		if err != nil {
			return formatter.Fail(err)
		}
		req.AfterID = afterCol.ID
	}

	column, err := svc.CreateColumn(cmd.Context(), req)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(column, column.ID,
		fmt.Sprintf("Column '%s' created successfully (ID: %s, position %d)\n", column.Title, column.ID, column.Position))
}
