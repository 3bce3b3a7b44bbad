package project

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/cli/styles"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

type projectSummary struct {
	view.Card
	Column string `json:"column"`
}

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects in board order",
		Long: `List projects column by column, in each column's sort order.

Examples:
  ghpd project list
  ghpd project list --filter 'closed:false items:>5'
`,
		RunE: runList,
	}

	cmd.Flags().StringP("filter", "f", "", "Filter query (see 'ghpd board --help')")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("filter")
	board, err := cliInstance.App.Board(query)
	if err != nil {
		return formatter.Fail(err)
	}

	summaries := []projectSummary{}
	var sb strings.Builder
	for _, col := range board.Columns {
		for _, card := range col.Cards {
			summaries = append(summaries, projectSummary{Card: card, Column: col.Title})
			state := "open"
			if card.Closed {
				state = "closed"
			}
			labels := make([]string, len(card.Labels))
			for i, l := range card.Labels {
				labels[i] = styles.ChipStyle(l).Render(l.Title)
			}
			fmt.Fprintf(&sb, "#%-4d %s  %s  %s  %s\n",
				card.Number, styles.TitleStyle.Render(card.Title),
				styles.SubtitleStyle.Render(col.Title+" / "+state), card.ID, strings.Join(labels, " "))
		}
	}
	if len(summaries) == 0 {
		sb.WriteString("No projects\n")
	}

	if formatter.Quiet {
		for _, s := range summaries {
			fmt.Fprintln(formatter.Out, s.ID)
		}
		return nil
	}
	return formatter.Success(summaries, "", sb.String())
}
