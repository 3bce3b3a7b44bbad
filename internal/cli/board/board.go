package board

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

// BoardCmd returns the board command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the project board",
		Long: `Show every GitHub project in its column.

Filter syntax (terms are ANDed):
  bare words               match the title or any label
  title:x  label:x         case-insensitive substring
  number:>=5  items:<3     numeric comparison
  closed:true  public:false
  column:doing             restrict the visible columns
  updated:>2025-01-31  created:<"last week"  closed_at:>=1 month ago

Examples:
  # Columns side by side
  ghpd board

  # Only open projects labeled frontend
  ghpd board --filter 'closed:false label:frontend'

  # Markdown document, rendered for the terminal
  ghpd board --markdown

  # JSON output for scripts
  ghpd board --json
`,
		RunE: runBoard,
	}

	cmd.Flags().StringP("filter", "f", "", "Filter query")
	cmd.Flags().Bool("markdown", false, "Print the board as markdown")
	cmd.Flags().Bool("raw", false, "With --markdown, skip terminal rendering")
	cmd.Flags().Int("width", 0, "Output width (0 = terminal width)")

	return cmd
}

func runBoard(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("filter")
	asMarkdown, _ := cmd.Flags().GetBool("markdown")
	raw, _ := cmd.Flags().GetBool("raw")
	width, _ := cmd.Flags().GetInt("width")

	if query != "" {
		if _, err := view.ParseQuery(query, time.Now()); err != nil {
			return formatter.FailWithSuggestion(err, "see 'ghpd board --help' for the filter syntax")
		}
	}
	board, err := cliInstance.App.Board(query)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.JSON {
		return formatter.Success(board, "", "")
	}
	if formatter.Quiet {
		_, err := fmt.Fprintln(formatter.Out, board.CardCount())
		return err
	}

	if width == 0 {
		width = terminalWidth(cmd)
	}
	if asMarkdown {
		md := Markdown(board)
		if !raw {
			md = RenderMarkdown(md, width)
		}
		_, err := fmt.Fprint(formatter.Out, md)
		return err
	}
	_, err = fmt.Fprint(formatter.Out, Render(board, width))
	return err
}

func terminalWidth(cmd *cobra.Command) int {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
