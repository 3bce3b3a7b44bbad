package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/cli/board"
	"github.com/weibeld/github-projects-dashboard/internal/cli/column"
	"github.com/weibeld/github-projects-dashboard/internal/cli/label"
	"github.com/weibeld/github-projects-dashboard/internal/cli/project"
	"github.com/weibeld/github-projects-dashboard/internal/cli/serve"
	"github.com/weibeld/github-projects-dashboard/internal/cli/setup"
	"github.com/weibeld/github-projects-dashboard/internal/cli/styles"
	"github.com/weibeld/github-projects-dashboard/internal/config"
	"github.com/weibeld/github-projects-dashboard/internal/logging"
	"github.com/weibeld/github-projects-dashboard/internal/services/reconcile"
	"github.com/weibeld/github-projects-dashboard/internal/telemetry"
)

// Version is set at build time.
var Version = "dev"

type session struct {
	cli       *cli.CLI
	logCloser io.Closer
	telemetry bool
}

// NewRootCmd builds the command tree. The returned cleanup releases
// whatever the pre-run hook opened and must run after Execute.
func NewRootCmd() (*cobra.Command, func()) {
	s := &session{}

	cmd := &cobra.Command{
		Use:   "ghpd",
		Short: "A kanban board for your GitHub projects",
		Long: `ghpd arranges a GitHub account's Projects on a personal kanban board.

Columns and labels are stored locally; the project list is fetched from
GitHub and reconciled on every load. Closed projects collect in the
"Closed" column and new ones appear under "No Status".

Set GITHUB_TOKEN and 'owner' in the config file, or pass --mock=default to
try it against a built-in fixture.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: s.setup,
	}

	cli.AddOutputFlags(cmd)
	cmd.PersistentFlags().String("mock", "", `Run against a fixture file ("default" = built-in)`)
	cmd.PersistentFlags().String("store", "", "Store driver: sqlite, postgres or memory")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(board.BoardCmd())
	cmd.AddCommand(board.SyncCmd())
	cmd.AddCommand(column.ColumnCmd())
	cmd.AddCommand(label.LabelCmd())
	cmd.AddCommand(project.ProjectCmd())
	cmd.AddCommand(serve.ServeCmd())
	cmd.AddCommand(setup.ConfigCmd())

	return cmd, s.cleanup
}

func (s *session) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd ||
		(cmd.Parent() != nil && cmd.Parent().Name() == "completion") {
		return nil
	}
	formatter := cli.NewFormatter(cmd)
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fail(formatter, cli.ExitDataErr, err)
	}
	applyFlags(cmd, cfg)

	if cmd.Annotations[cli.AnnotationSkipApp] != "" {
		s.cli = cli.New(nil, cfg)
		cmd.SetContext(cli.WithCLI(ctx, s.cli))
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fail(formatter, cli.ExitDataErr, err)
	}

	if s.logCloser, err = logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
		return fail(formatter, cli.ExitGeneral, err)
	}
	if err := telemetry.Init(ctx, cfg.Telemetry.Enabled, "ghpd", Version); err != nil {
		return fail(formatter, cli.ExitGeneral, err)
	}
	s.telemetry = true
	styles.Init(cfg.Theme)

	s.cli, err = cli.NewCLI(ctx, cfg)
	if err != nil {
		return formatter.FailWithSuggestion(err, "run 'ghpd config show' to check the configuration")
	}

	if cmd.Annotations[cli.AnnotationSkipLoad] == "" {
		err := s.cli.App.Load(ctx)
		var effErr *reconcile.EffectsError
		switch {
		case errors.As(err, &effErr) && !errors.Is(err, reconcile.ErrReread):
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d of %d board changes could not be saved\n",
				len(effErr.Failures), effErr.Total)
		case err != nil:
			return formatter.Fail(err)
		}
	}

	cmd.SetContext(cli.WithCLI(ctx, s.cli))
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mock") {
		cfg.Mock.Fixture, _ = flags.GetString("mock")
	}
	if flags.Changed("store") {
		cfg.Store.Driver, _ = flags.GetString("store")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
}

func fail(formatter *cli.OutputFormatter, code int, err error) error {
	if fmtErr := formatter.Error("CONFIG_ERROR", err.Error()); fmtErr != nil {
		return fmtErr
	}
	return &cli.ExitError{Code: code, Err: err}
}

func (s *session) cleanup() {
	if s.cli != nil {
		if err := s.cli.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing: %v\n", err)
		}
	}
	if s.telemetry {
		telemetry.Shutdown(context.Background())
	}
	if s.logCloser != nil {
		_ = s.logCloser.Close()
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root, cleanup := NewRootCmd()
	defer cleanup()
	return run(context.Background(), root)
}

func run(ctx context.Context, root *cobra.Command) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		// cobra's own errors: unknown commands, bad or missing flags
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return cli.ExitUsage
	}
	return exitErr.Code
}
