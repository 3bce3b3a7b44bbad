package label

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
)

// UpdateCmd returns the label update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a label",
		Long: `Update a label's title or colors. Changing only the background color
re-derives the text color.

Examples:
  ghpd label update --id="bug" --title="defect"
  ghpd label update --id="bug" --color="#ffffff"
`,
		RunE: runUpdate,
	}

	cmd.Flags().String("id", "", "Label ID or title (required)")
	requireFlag(cmd, "id")
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("color", "", "New background color #RRGGBB")
	cmd.Flags().String("text-color", "", "New text color: white or black")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	ref, _ := cmd.Flags().GetString("id")
	svc := cliInstance.App.LabelService
	label, err := cli.ResolveLabel(svc.Labels(), ref)
	if err != nil {
		return formatter.Fail(err)
	}

	req := labelservice.UpdateLabelRequest{ID: label.ID}
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		req.Title = &v
	}
	if cmd.Flags().Changed("color") {
		v, _ := cmd.Flags().GetString("color")
		req.Color = &v
	}
	if cmd.Flags().Changed("text-color") {
		v, _ := cmd.Flags().GetString("text-color")
		req.TextColor = &v
	}
	if req.Title == nil && req.Color == nil && req.TextColor == nil {
		if fmtErr := formatter.Error("USAGE_ERROR", "nothing to update: pass --title, --color or --text-color"); fmtErr != nil {
			return fmtErr
		}
		return &cli.ExitError{Code: cli.ExitUsage, Err: fmt.Errorf("nothing to update")}
	}

	if err := svc.UpdateLabel(cmd.Context(), req); err != nil {
		return formatter.Fail(err)
	}

	updated, err := cli.ResolveLabel(svc.Labels(), label.ID)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(updated, updated.ID,
		fmt.Sprintf("Label '%s' updated successfully\n", updated.Title))
}
