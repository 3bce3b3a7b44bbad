package label

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
)

// DeleteCmd returns the label delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a label",
		Long: `Delete a label and detach it from every project. A label that is still
attached somewhere asks for confirmation unless --force, --json or --quiet.

Examples:
  ghpd label delete --id="bug"
  ghpd label delete --id="bug" --force
`,
		RunE: runDelete,
	}

	cmd.Flags().String("id", "", "Label ID or title (required)")
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

	svc := cliInstance.App.LabelService
	label, err := cli.ResolveLabel(svc.Labels(), ref)
	if err != nil {
		return formatter.Fail(err)
	}

	if n := svc.ProjectCount(label.ID); n > 0 && !force && !formatter.Quiet && !formatter.JSON {
		prompt := fmt.Sprintf("Label '%s' is attached to %d project(s). Delete it?", label.Title, n)
		if !cli.Confirm(cmd, prompt) {
			fmt.Fprintln(formatter.Out, "Cancelled")
			return nil
		}
	}

	if err := svc.DeleteLabel(cmd.Context(), label.ID); err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(map[string]string{"label_id": label.ID}, "",
		fmt.Sprintf("Label '%s' deleted successfully\n", label.Title))
}
