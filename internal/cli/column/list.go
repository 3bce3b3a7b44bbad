package column

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/cli/styles"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

type columnSummary struct {
	models.Column
	Projects int `json:"projects"`
}

// ListCmd returns the column list subcommand
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List columns in board order",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	board, err := cliInstance.App.Board("")
	if err != nil {
		return formatter.Fail(err)
	}

	summaries := make([]columnSummary, len(board.Columns))
	ids := make([]string, len(board.Columns))
	var sb strings.Builder
	for i, col := range board.Columns {
		summaries[i] = columnSummary{Column: col.Column, Projects: len(col.Cards)}
		ids[i] = col.ID
		kind := ""
		if col.IsSystem() {
			kind = styles.SubtitleStyle.Render(" [system]")
		}
		fmt.Fprintf(&sb, "%d. %s%s  %s  sort: %s %s  projects: %d\n",
			col.Position, styles.TitleStyle.Render(col.Title), kind,
			styles.SubtitleStyle.Render(col.ID), col.SortField, col.SortDirection, len(col.Cards))
	}

	if formatter.Quiet {
		_, err := fmt.Fprintln(formatter.Out, strings.Join(ids, "\n"))
		return err
	}
	return formatter.Success(summaries, "", sb.String())
}
