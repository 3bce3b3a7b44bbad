package column

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// RenameCmd returns the column rename subcommand
func RenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a column",
		Long: `Rename a column. Titles are unique per owner, ignoring case.

Examples:
  ghpd column rename --id="Doing" --title="In progress"
`,
		RunE: runRename,
	}

	cmd.Flags().String("id", "", "Column ID or title (required)")
	requireFlag(cmd, "id")
	cmd.Flags().String("title", "", "New title (required)")
	requireFlag(cmd, "title")

	return cmd
}

func runRename(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	ref, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")

	svc := cliInstance.App.ColumnService
	column, err := cli.ResolveColumn(svc.Columns(), ref)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := svc.RenameColumn(cmd.Context(), column.ID, title); err != nil {
		return formatter.Fail(err)
	}

	updated, _ := models.FindColumn(svc.Columns(), column.ID)
	return formatter.Success(updated, updated.ID,
		fmt.Sprintf("Column '%s' renamed to '%s'\n", column.Title, updated.Title))
}

// MoveCmd returns the column move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a column one step left or right",
		Long: `Swap a user column with its neighbour. Columns never move past the
system columns at either end.

Examples:
  ghpd column move --id="Review" --direction=left
`,
		RunE: runMove,
	}

	cmd.Flags().String("id", "", "Column ID or title (required)")
	requireFlag(cmd, "id")
	cmd.Flags().String("direction", "", "left or right (required)")
	requireFlag(cmd, "direction")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	ref, _ := cmd.Flags().GetString("id")
	direction, _ := cmd.Flags().GetString("direction")

	svc := cliInstance.App.ColumnService
	column, err := cli.ResolveColumn(svc.Columns(), ref)
	if err != nil {
		return formatter.Fail(err)
	}

	switch direction {
	case "left":
		if !svc.CanMoveLeft(column.ID) {
			return usageError(formatter, fmt.Sprintf("column '%s' cannot move further left", column.Title))
		}
		err = svc.MoveColumnLeft(cmd.Context(), column.ID)
	case "right":
		if !svc.CanMoveRight(column.ID) {
			return usageError(formatter, fmt.Sprintf("column '%s' cannot move further right", column.Title))
		}
		err = svc.MoveColumnRight(cmd.Context(), column.ID)
	default:
		return usageError(formatter, fmt.Sprintf("invalid direction '%s' (must be: left, right)", direction))
	}
	if err != nil {
		return formatter.Fail(err)
	}

	moved, _ := models.FindColumn(svc.Columns(), column.ID)
	return formatter.Success(moved, moved.ID,
		fmt.Sprintf("Column '%s' moved %s (position %d)\n", moved.Title, direction, moved.Position))
}

// SortCmd returns the column sort subcommand
func SortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Change how a column orders its projects",
		Long: `Set a column's sort order as field[:direction].

Fields: title, number, items, updatedAt, closedAt, createdAt
Directions: asc (default), desc

Examples:
  ghpd column sort --id="Doing" --by=updatedAt:desc
`,
		RunE: runSort,
	}

	cmd.Flags().String("id", "", "Column ID or title (required)")
	requireFlag(cmd, "id")
	cmd.Flags().String("by", "", "Sort order, e.g. title:asc (required)")
	requireFlag(cmd, "by")

	return cmd
}

func runSort(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	ref, _ := cmd.Flags().GetString("id")
	by, _ := cmd.Flags().GetString("by")

	field, dir, err := cli.ParseSort(by)
	if err != nil {
		return usageError(formatter, err.Error())
	}

	svc := cliInstance.App.ColumnService
	column, err := cli.ResolveColumn(svc.Columns(), ref)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := svc.UpdateColumnSort(cmd.Context(), column.ID, field, dir); err != nil {
		return formatter.Fail(err)
	}

	updated, _ := models.FindColumn(svc.Columns(), column.ID)
	return formatter.Success(updated, updated.ID,
		fmt.Sprintf("Column '%s' now sorted by %s %s\n", updated.Title, field, dir))
}

func usageError(formatter *cli.OutputFormatter, msg string) error {
	if fmtErr := formatter.Error("USAGE_ERROR", msg); fmtErr != nil {
		return fmtErr
	}
	return &cli.ExitError{Code: cli.ExitUsage, Err: fmt.Errorf("%s", msg)}
}
