// Package clitest runs CLI subcommands against the built-in mock fixture.
package clitest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/app"
	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/config"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/mock"
)

// Env is a loaded mock CLI plus the handles tests poke at.
type Env struct {
	CLI    *cli.CLI
	Source *github.StaticSource
}

// Setup builds a CLI over the built-in fixture and loads the board.
func Setup(t *testing.T) *Env {
	t.Helper()

	f := mock.Default()
	source := f.Source()
	a := app.New(f.Store(), source, f.Session(),
		app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, a.Load(context.Background()))

	cfg := config.Default()
	cfg.Mock.Fixture = cli.DefaultFixture
	c := cli.New(a, cfg)
	t.Cleanup(func() { _ = c.Close() })

	return &Env{CLI: c, Source: source}
}

// Result is the captured output of one command run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run executes cmd under a bare root carrying the output flags. Input, if
// any, is fed to stdin.
func (e *Env) Run(t *testing.T, cmd *cobra.Command, input string, args ...string) Result {
	t.Helper()

	root := &cobra.Command{Use: "ghpd", SilenceUsage: true, SilenceErrors: true}
	cli.AddOutputFlags(root)
	root.AddCommand(cmd)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(append([]string{cmd.Name()}, args...))

	err := root.ExecuteContext(cli.WithCLI(context.Background(), e.CLI))
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
