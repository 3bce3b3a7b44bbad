package label

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/cli/styles"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

type labelSummary struct {
	models.Label
	Projects int `json:"projects"`
}

// ListCmd returns the label list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List labels",
		Long: `List labels by title.

With --project, list the labels attached to that project; add --available
to list the ones that could still be attached, optionally narrowed by
--search.

Examples:
  ghpd label list
  ghpd label list --project=1
  ghpd label list --project=1 --available --search=urg
`,
		RunE: runList,
	}

	cmd.Flags().String("project", "", "Project ID, number or title")
	cmd.Flags().Bool("available", false, "With --project, list labels not yet attached")
	cmd.Flags().String("search", "", "With --available, filter by title")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	projectRef, _ := cmd.Flags().GetString("project")
	available, _ := cmd.Flags().GetBool("available")
	search, _ := cmd.Flags().GetString("search")

	svc := cliInstance.App.LabelService
	var labels []models.Label
	switch {
	case projectRef == "":
		labels = svc.Labels()
	default:
		project, err := cli.ResolveProject(cliInstance.App.Cache().GitHubProjects(), projectRef)
		if err != nil {
			return formatter.Fail(err)
		}
		if available {
			labels = svc.AvailableLabels(project.ID, search)
		} else {
			labels = svc.LabelsForProject(project.ID)
		}
	}

	summaries := make([]labelSummary, len(labels))
	ids := make([]string, len(labels))
	var sb strings.Builder
	for i, l := range labels {
		summaries[i] = labelSummary{Label: l, Projects: svc.ProjectCount(l.ID)}
		ids[i] = l.ID
		fmt.Fprintf(&sb, "%s  %s  %s  projects: %d\n",
			styles.ChipStyle(l).Render(l.Title), l.Color, styles.SubtitleStyle.Render(l.ID), summaries[i].Projects)
	}
	if len(labels) == 0 {
		sb.WriteString("No labels\n")
	}

	if formatter.Quiet {
		for _, id := range ids {
			fmt.Fprintln(formatter.Out, id)
		}
		return nil
	}
	return formatter.Success(summaries, "", sb.String())
}
