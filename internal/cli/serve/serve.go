package serve

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/api"
	"github.com/weibeld/github-projects-dashboard/internal/cli"
	"github.com/weibeld/github-projects-dashboard/internal/logging"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP and WebSocket",
		Long: `Serve the board as a JSON API. Clients connected to /ws receive the
board again after every change, filtered by the query they sent.

Endpoints:
  GET    /healthz
  GET    /api/board?q=<filter>
  POST   /api/reload
  GET    /api/columns                POST /api/columns
  PATCH  /api/columns/:id            DELETE /api/columns/:id
  POST   /api/columns/:id/move
  GET    /api/labels                 POST /api/labels
  PATCH  /api/labels/:id             DELETE /api/labels/:id
  PUT    /api/projects/:id/column
  PUT    /api/projects/:id/labels/:labelId
  DELETE /api/projects/:id/labels/:labelId
  GET    /ws?q=<filter>

Examples:
  ghpd serve
  ghpd serve --addr=:9000 --mock=default
`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cliInstance.Config.Server.Addr
	}

	// foreground server: logs go to the terminal
	if err := logging.InitWriter(cmd.ErrOrStderr(), cliInstance.Config.Log.Level); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.New(cliInstance.App, api.WithLogger(slog.Default()))
	slog.Info("serving", "addr", addr)
	cmd.Printf("Listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}
