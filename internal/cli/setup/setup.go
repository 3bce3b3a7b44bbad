package setup

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/config"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage ghpd's configuration file.

The file lives at $GHPD_CONFIG, $XDG_CONFIG_HOME/ghpd/config.yaml or
~/.config/ghpd/config.yaml. Environment variables prefixed with GHPD_
override it; the GitHub token is read from GHPD_GITHUB_TOKEN or
GITHUB_TOKEN and never written to disk.`,
	}

	cmd.AddCommand(initCmd())
	cmd.AddCommand(pathCmd())
	cmd.AddCommand(showCmd())

	return cmd
}

func configOf(cmd *cobra.Command) (*config.Config, error) {
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	return cliInstance.Config, nil
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the effective configuration to the config file",
		Annotations: map[string]string{cli.AnnotationSkipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.NewFormatter(cmd)
			cfg, err := configOf(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			path, err := config.Path()
			if err != nil {
				return formatter.Fail(err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				if fmtErr := formatter.ErrorWithSuggestion("CONFIG_EXISTS",
					fmt.Sprintf("config file already exists: %s", path), "use --force to overwrite it"); fmtErr != nil {
					return fmtErr
				}
				return &cli.ExitError{Code: cli.ExitUsage, Err: errors.New("config file exists")}
			}
			if err := cfg.Save(); err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(map[string]string{"path": path}, path,
				fmt.Sprintf("Config written to %s\n", path))
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

func pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Annotations: map[string]string{cli.AnnotationSkipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.NewFormatter(cmd)
			path, err := config.Path()
			if err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(map[string]string{"path": path}, path, path+"\n")
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Annotations: map[string]string{cli.AnnotationSkipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := cli.NewFormatter(cmd)
			cfg, err := configOf(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return formatter.Fail(err)
			}
			// round-trip through yaml so JSON output drops the token too
			var data map[string]any
			if err := yaml.Unmarshal(out, &data); err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(data, "", string(out))
		},
	}
}
