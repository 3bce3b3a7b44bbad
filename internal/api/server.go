// Package api serves the board over HTTP and pushes live updates over a
// websocket.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/weibeld/github-projects-dashboard/internal/app"
)

const shutdownTimeout = 5 * time.Second

// Server exposes an App over HTTP.
type Server struct {
	app    *app.App
	fiber  *fiber.App
	hub    *Hub
	logger *slog.Logger
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds the server and registers all routes. The app is expected to be
// loaded already; requests before that answer 503.
func New(a *app.App, opts ...Option) *Server {
	s := &Server{app: a, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(a, s.logger)
	s.fiber = fiber.New(fiber.Config{
		AppName:               "ghpd",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.fiber.Use(requestID())
	s.fiber.Use(recover.New())
	s.fiber.Use(requestLogger(s.logger))

	s.fiber.Get("/healthz", s.health)

	s.fiber.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("query", c.Query("q"))
		return c.Next()
	})
	s.fiber.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		query, _ := conn.Locals("query").(string)
		s.hub.Serve(conn, query)
	}))

	api := s.fiber.Group("/api")
	api.Get("/board", s.getBoard)
	api.Post("/reload", s.reload)

	columns := api.Group("/columns")
	columns.Get("/", s.listColumns)
	columns.Post("/", s.createColumn)
	columns.Patch("/:id", s.updateColumn)
	columns.Delete("/:id", s.deleteColumn)
	columns.Post("/:id/move", s.moveColumn)

	labels := api.Group("/labels")
	labels.Get("/", s.listLabels)
	labels.Post("/", s.createLabel)
	labels.Patch("/:id", s.updateLabel)
	labels.Delete("/:id", s.deleteLabel)
	labels.Get("/:id/count", s.labelCount)

	projects := api.Group("/projects")
	projects.Put("/:id/column", s.moveProject)
	projects.Put("/:id/labels/:labelId", s.attachLabel)
	projects.Delete("/:id/labels/:labelId", s.detachLabel)
}

// Handler returns the underlying fiber app (for tests and embedding).
func (s *Server) Handler() *fiber.App { return s.fiber }

func (s *Server) Hub() *Hub { return s.hub }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	s.hub.Start(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.fiber.Listen(addr)
	}()
	s.logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		stopHub()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.fiber.ShutdownWithContext(shutdownCtx)
	}
}

func (s *Server) health(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, fiber.Map{
		"status":    "ok",
		"loaded":    s.app.Cache().Loaded(),
		"websocket": s.hub.Metrics().Snapshot(),
	})
}
