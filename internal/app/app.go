package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/events"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
	projectservice "github.com/weibeld/github-projects-dashboard/internal/services/project"
	"github.com/weibeld/github-projects-dashboard/internal/services/reconcile"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

// App holds all application services and provides dependency injection.
// It owns the cache and is the only place that replaces it wholesale.
type App struct {
	// Adapters
	store   database.DataStore
	source  github.Source
	session *auth.Session

	// Core
	cache      *cache.Cache
	bus        *events.Bus
	reconciler *reconcile.Reconciler
	runner     *mutation.Runner

	logger     *slog.Logger
	now        func() time.Time
	newBackOff func() backoff.BackOff
	reloading  atomic.Bool

	// Service layer (business logic)
	ColumnService  columnservice.Service
	LabelService   labelservice.Service
	ProjectService projectservice.Service
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(store database.DataStore, source github.Source, session *auth.Session, opts ...Option) *App {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bus == nil {
		cfg.bus = events.NewBus()
	}

	a := &App{
		store:      store,
		source:     source,
		session:    session,
		cache:      cache.New(cfg.bus),
		bus:        cfg.bus,
		logger:     cfg.logger,
		now:        cfg.now,
		newBackOff: cfg.newBackOff,
	}
	recOpts := []reconcile.Option{reconcile.WithLogger(cfg.logger)}
	if cfg.concurrency != 0 {
		recOpts = append(recOpts, reconcile.WithConcurrency(cfg.concurrency))
	}
	a.reconciler = reconcile.New(store, recOpts...)
	a.runner = mutation.NewRunner(a.cache, mutation.ReloaderFunc(a.reloadFromStore),
		mutation.WithLogger(cfg.logger),
		mutation.WithAuthExpired(a.Logout))

	a.ColumnService = columnservice.NewService(store, a.cache, a.runner, session)
	a.LabelService = labelservice.NewService(store, a.cache, a.runner, session)
	a.ProjectService = projectservice.NewService(store, a.cache, a.runner, session)
	return a
}

// Load bootstraps the system columns, fetches GitHub, reconciles and fills
// the cache. Transient failures are retried with exponential backoff; an
// expired credential ends the session instead.
func (a *App) Load(ctx context.Context) error {
	op := func() error {
		err := a.runner.Exclusive(ctx, a.load)
		if isSessionEnded(err) || errors.Is(err, reconcile.ErrSystemColumnsMissing) {
			return backoff.Permanent(err)
		}
		if err != nil {
			a.logger.Warn("load failed, retrying", "error", err)
		}
		return err
	}
	err := backoff.Retry(op, backoff.WithContext(a.newBackOff(), ctx))
	if isSessionEnded(err) {
		a.Logout()
	}
	return err
}

func (a *App) load(ctx context.Context) error {
	ownerID, err := a.session.OwnerID()
	if err != nil {
		return err
	}
	token, err := a.session.Token()
	if err != nil {
		return err
	}

	var (
		columns  []models.Column
		external []models.GitHubProject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		columns, err = a.reconciler.EnsureSystemColumns(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		external, err = a.source.FetchProjects(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	local, err := a.store.GetProjects(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("read projects: %w", err)
	}
	res, recErr := a.reconciler.Reconcile(ctx, ownerID, external, local, columns)
	if !usableResult(recErr) {
		return recErr
	}

	board := models.BoardData{Columns: columns, Projects: res.Projects}
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		board.Labels, err = a.store.GetLabels(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		board.ProjectLabels, err = a.store.GetProjectLabels(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.cache.Init(external, board)
	a.logger.Info("board loaded",
		"owner", ownerID,
		"projects", len(board.Projects),
		"columns", len(board.Columns),
		"labels", len(board.Labels))
	// the cache reflects what landed; the caller still learns what did not
	return recErr
}

// ReloadGitHub re-runs reconciliation against a fresh GitHub fetch. Only
// one reload runs at a time; a second caller gets ErrReloadInProgress.
func (a *App) ReloadGitHub(ctx context.Context) error {
	if !a.reloading.CompareAndSwap(false, true) {
		return ErrReloadInProgress
	}
	defer a.reloading.Store(false)

	if !a.cache.Loaded() {
		return a.Load(ctx)
	}
	err := a.runner.Exclusive(ctx, a.reloadGitHub)
	if isSessionEnded(err) {
		a.Logout()
	}
	return err
}

func (a *App) reloadGitHub(ctx context.Context) error {
	ownerID, err := a.session.OwnerID()
	if err != nil {
		return err
	}
	token, err := a.session.Token()
	if err != nil {
		return err
	}
	external, err := a.source.FetchProjects(ctx, token)
	if err != nil {
		return err
	}
	local, err := a.store.GetProjects(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("read projects: %w", err)
	}

	res, recErr := a.reconciler.Reconcile(ctx, ownerID, external, local, a.cache.Columns())
	if !usableResult(recErr) {
		// the cache keeps its last good state
		return recErr
	}
	if err := a.cache.Mutate("reload_github", func(d *cache.Data) error {
		d.GitHub = external
		d.Projects = res.Projects
		return nil
	}); err != nil {
		return err
	}
	a.logger.Debug("github reloaded", "owner", ownerID, "effects", res.Plan.Len())
	return recErr
}

// ReloadFromStore replaces the four local collections with a fresh read.
func (a *App) ReloadFromStore(ctx context.Context) error {
	return a.runner.Exclusive(ctx, a.reloadFromStore)
}

// reloadFromStore is the rollback path; callers hold the barrier.
func (a *App) reloadFromStore(ctx context.Context) error {
	ownerID, err := a.session.OwnerID()
	if err != nil {
		return err
	}
	board, err := database.LoadBoard(ctx, a.store, ownerID)
	if err != nil {
		return fmt.Errorf("reload from store: %w", err)
	}
	a.cache.Replace("reload", board)
	return nil
}

// Logout clears the cache and drops the credential.
func (a *App) Logout() {
	a.cache.Clear()
	a.session.Invalidate()
	a.logger.Info("logged out")
}

// Board returns the projected board, filtered by query.
func (a *App) Board(query string) (view.Board, error) {
	if !a.cache.Loaded() {
		return view.Board{}, ErrNotLoaded
	}
	return view.Filter(view.Project(a.cache.Snapshot()), query, a.now()), nil
}

// Subscribe delivers an event on every cache change.
func (a *App) Subscribe(buffer int) (<-chan events.Event, func()) {
	return a.bus.Subscribe(buffer)
}

func (a *App) Cache() *cache.Cache { return a.cache }

func (a *App) Session() *auth.Session { return a.session }

// Close releases the store if it holds resources.
func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// usableResult reports whether a reconcile outcome left a usable project set:
// success, or failed effects followed by a successful re-read.
func usableResult(recErr error) bool {
	if recErr == nil {
		return true
	}
	var effErr *reconcile.EffectsError
	return errors.As(recErr, &effErr) && !errors.Is(recErr, reconcile.ErrReread)
}

func isSessionEnded(err error) bool {
	return errors.Is(err, github.ErrAuthExpired) || errors.Is(err, auth.ErrNotAuthenticated)
}
