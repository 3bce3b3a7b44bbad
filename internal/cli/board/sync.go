package board

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/services/reconcile"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch projects from GitHub and reconcile the board",
		Long: `Fetch the owner's projects from GitHub and reconcile them with the
local board: new projects land in the unassigned column, closed ones move
to the closed column, reopened ones move back and deleted ones are removed.

Examples:
  ghpd sync
  ghpd sync --json
`,
		Annotations: map[string]string{cli.AnnotationSkipLoad: "true"},
		RunE:        runSync,
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	err = cliInstance.App.ReloadGitHub(cmd.Context())
	var effErr *reconcile.EffectsError
	if err != nil && (!errors.As(err, &effErr) || errors.Is(err, reconcile.ErrReread)) {
		return formatter.Fail(err)
	}

	board, boardErr := cliInstance.App.Board("")
	if boardErr != nil {
		return formatter.Fail(boardErr)
	}

	result := map[string]any{
		"projects": board.CardCount(),
		"columns":  len(board.Columns),
	}
	human := fmt.Sprintf("Synced %d projects across %d columns\n", board.CardCount(), len(board.Columns))
	if effErr != nil {
		result["failed"] = effErr.Failed()
		human += fmt.Sprintf("Warning: %d of %d changes could not be saved: %v\n",
			len(effErr.Failures), effErr.Total, effErr.Failed())
	}
	return formatter.Success(result, "", human)
}
