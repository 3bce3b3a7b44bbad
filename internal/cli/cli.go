package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/weibeld/github-projects-dashboard/internal/app"
	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/config"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/database/memory"
	"github.com/weibeld/github-projects-dashboard/internal/database/postgres"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/mock"
)

// DefaultFixture selects the fixture compiled into the binary.
const DefaultFixture = "default"

// Command annotations read by the root command's pre-run hook.
const (
	// AnnotationSkipLoad marks commands that run without a loaded board.
	AnnotationSkipLoad = "ghpd/skip-load"
	// AnnotationSkipApp marks commands that only need the configuration.
	AnnotationSkipApp = "ghpd/skip-app"
)

// ErrNoToken is returned outside mock mode when no token is configured.
var ErrNoToken = fmt.Errorf("%w: set GHPD_GITHUB_TOKEN or GITHUB_TOKEN", auth.ErrNotAuthenticated)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config

	closers []func() error
}

// New wraps an already built App. closers run in reverse order on Close.
func New(a *app.App, cfg *config.Config, closers ...func() error) *CLI {
	return &CLI{App: a, Config: cfg, closers: closers}
}

// NewCLI builds the adapters cfg selects and the App on top of them. The
// board is not loaded yet.
func NewCLI(ctx context.Context, cfg *config.Config) (*CLI, error) {
	opts := []app.Option{app.WithLogger(slog.Default())}

	if cfg.MockMode() {
		fixture, err := loadFixture(cfg.Mock.Fixture)
		if err != nil {
			return nil, err
		}
		slog.Info("mock mode", "fixture", cfg.Mock.Fixture, "owner", fixture.Auth.Owner)
		a := app.New(fixture.Store(), fixture.Source(), fixture.Session(), opts...)
		return New(a, cfg), nil
	}

	if cfg.GitHub.Token == "" {
		return nil, ErrNoToken
	}

	store, closers, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	source := github.NewClient().
		WithEndpoint(cfg.GitHub.Endpoint).
		WithHTTPClient(&http.Client{Timeout: cfg.GitHub.Timeout})
	session := auth.NewSession(cfg.GitHub.Token, cfg.Owner)

	a := app.New(store, source, session, opts...)
	return New(a, cfg, closers...), nil
}

func loadFixture(name string) (*mock.Fixture, error) {
	if name == DefaultFixture {
		return mock.Default(), nil
	}
	return mock.Load(name)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (database.DataStore, []func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil, nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, []func() error{func() error { store.Close(); return nil }}, nil
	default:
		db, err := database.InitDB(ctx, cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return database.NewRepository(db), []func() error{db.Close}, nil
	}
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	var errs []error
	if c.App != nil {
		if err := c.App.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

type contextKey struct{}

// WithCLI stores c in ctx for subcommands.
func WithCLI(ctx context.Context, c *CLI) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// GetCLIFromContext returns the CLI set up by the root command.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		return nil, errors.New("no CLI in context")
	}
	c, ok := ctx.Value(contextKey{}).(*CLI)
	if !ok || c == nil {
		return nil, errors.New("no CLI in context")
	}
	return c, nil
}
