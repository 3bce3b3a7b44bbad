package label

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
)

// CreateCmd returns the label create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new label",
		Long: `Create a new label. The text color is picked from the background
unless --text-color is given.

Examples:
  # Create a label
  ghpd label create --title="bug" --color="#d73a4a"

  # Create and attach it to project #3
  ghpd label create --title="talk" --color="#0e8a16" --project=3

  # Quiet mode for bash capture
  LABEL_ID=$(ghpd label create --title="bug" --color="#d73a4a" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Label title (required)")
	requireFlag(cmd, "title")
	cmd.Flags().String("color", "", "Background color in hex format #RRGGBB (required)")
	requireFlag(cmd, "color")
	cmd.Flags().String("text-color", "", "Text color: white or black")
	cmd.Flags().String("project", "", "Attach to this project (ID, number or title)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	color, _ := cmd.Flags().GetString("color")
	textColor, _ := cmd.Flags().GetString("text-color")
	projectRef, _ := cmd.Flags().GetString("project")

	req := labelservice.CreateLabelRequest{Title: title, Color: color, TextColor: textColor}
	if projectRef != "" {
		project, err := cli.ResolveProject(cliInstance.App.Cache().GitHubProjects(), projectRef)
		if err != nil {
			return formatter.Fail(err)
		}
		req.ProjectID = project.ID
	}

	label, err := cliInstance.App.LabelService.CreateLabel(cmd.Context(), req)
	if err != nil {
		return formatter.Fail(err)
	}

	human := fmt.Sprintf("Label '%s' created successfully (ID: %s)\n", label.Title, label.ID)
	if req.ProjectID != "" {
		human += fmt.Sprintf("  Attached to: %s\n", projectRef)
	}
	return formatter.Success(label, label.ID, human)
}
