package label

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// AttachCmd returns the label attach subcommand
func AttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a label to a project",
		Long: `Attach a label to a project. Attaching twice is a no-op.

Examples:
  ghpd label attach --label="urgent" --project=2
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelation(cmd, "attached to", func(c *cli.CLI, ctx context.Context, projectID, labelID string) error {
				return c.App.LabelService.AttachLabel(ctx, projectID, labelID)
			})
		},
	}
	relationFlags(cmd)
	return cmd
}

// DetachCmd returns the label detach subcommand
func DetachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detach",
		Short: "Detach a label from a project",
		Long: `Detach a label from a project. Detaching a label that is not attached
is a no-op.

Examples:
  ghpd label detach --label="urgent" --project=2
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelation(cmd, "detached from", func(c *cli.CLI, ctx context.Context, projectID, labelID string) error {
				return c.App.LabelService.DetachLabel(ctx, projectID, labelID)
			})
		},
	}
	relationFlags(cmd)
	return cmd
}

func relationFlags(cmd *cobra.Command) {
	cmd.Flags().String("label", "", "Label ID or title (required)")
	requireFlag(cmd, "label")
	cmd.Flags().String("project", "", "Project ID, number or title (required)")
	requireFlag(cmd, "project")
}

func runRelation(cmd *cobra.Command, verb string, apply func(*cli.CLI, context.Context, string, string) error) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	labelRef, _ := cmd.Flags().GetString("label")
	projectRef, _ := cmd.Flags().GetString("project")

	label, err := cli.ResolveLabel(cliInstance.App.LabelService.Labels(), labelRef)
	if err != nil {
		return formatter.Fail(err)
	}
	project, err := cli.ResolveProject(cliInstance.App.Cache().GitHubProjects(), projectRef)
	if err != nil {
		return formatter.Fail(err)
	}

	if err := apply(cliInstance, cmd.Context(), project.ID, label.ID); err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(models.ProjectLabel{ProjectID: project.ID, LabelID: label.ID}, "",
		fmt.Sprintf("Label '%s' %s '%s'\n", label.Title, verb, project.Title))
}
