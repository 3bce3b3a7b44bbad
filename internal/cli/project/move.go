package project

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
)

// MoveCmd returns the project move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a project to another column",
		Long: `Move a project to another column. The change shows immediately and is
rolled back if it cannot be saved.

Examples:
  ghpd project move --project=2 --column="Doing"
  ghpd project move --project="Home lab" --column=col-doing --json
`,
		RunE: runMove,
	}

	cmd.Flags().String("project", "", "Project ID, number or title (required)")
	if err := cmd.MarkFlagRequired("project"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("column", "", "Target column ID or title (required)")
	if err := cmd.MarkFlagRequired("column"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	projectRef, _ := cmd.Flags().GetString("project")
	columnRef, _ := cmd.Flags().GetString("column")

	a := cliInstance.App
	project, err := cli.ResolveProject(a.Cache().GitHubProjects(), projectRef)
	if err != nil {
		return formatter.Fail(err)
	}
	column, err := cli.ResolveColumn(a.ColumnService.Columns(), columnRef)
	if err != nil {
		return formatter.Fail(err)
	}

	if err := a.ProjectService.MoveProjectToColumn(cmd.Context(), project.ID, column.ID); err != nil {
		return formatter.Fail(err)
	}

	moved, _ := a.ProjectService.Project(project.ID)
	return formatter.Success(moved, moved.ID,
		fmt.Sprintf("Project '%s' moved to '%s'\n", project.Title, column.Title))
}
