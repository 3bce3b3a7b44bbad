// Package reconcile merges the GitHub project set into the locally-owned
// project records and bootstraps the two system columns.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/telemetry"
)

// DefaultConcurrency caps simultaneous store writes within one pass
const DefaultConcurrency = 16

// Store is the part of the persistent store the reconciler touches.
type Store interface {
	database.ColumnRepository
	database.ProjectRepository
}

// Result is the outcome of one pass. Projects is what the store holds after
// the pass (or the input set when the plan was empty).
type Result struct {
	Projects []models.Project
	Plan     Plan
}

// Reconciler is the only component that creates or deletes local project
// records, and the only one that moves projects between system columns.
type Reconciler struct {
	store       Store
	logger      *slog.Logger
	concurrency int
	effects     metric.Int64Counter
}

// Option configures a Reconciler
type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithConcurrency bounds concurrent effect writes; n <= 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) { r.concurrency = n }
}

func New(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:       store,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	counter, err := telemetry.Meter("ghpd/reconcile").Int64Counter("ghpd.reconcile.effects",
		metric.WithDescription("reconciliation effects issued"))
	if err != nil {
		r.logger.Warn("failed to create reconcile counter", "error", err)
	}
	r.effects = counter
	return r
}

// EnsureSystemColumns creates whichever system column is missing and returns
// the owner's columns afterwards. The unassigned column goes to position 0
// (shifting any existing columns right), the closed column to the end. Safe
// to call on every start.
func (r *Reconciler) EnsureSystemColumns(ctx context.Context, ownerID string) ([]models.Column, error) {
	columns, err := r.store.GetColumns(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	_, hasUnassigned := models.FindColumnByKind(columns, models.ColumnKindUnassigned)
	_, hasClosed := models.FindColumnByKind(columns, models.ColumnKindClosed)
	if hasUnassigned && hasClosed {
		return columns, nil
	}

	if len(columns) == 0 {
		r.logger.Info("creating system columns", "owner", ownerID)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return r.createUnassigned(gctx, ownerID) })
		g.Go(func() error { return r.createClosed(gctx, ownerID, 1) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return r.store.GetColumns(ctx, ownerID)
	}

	if !hasUnassigned {
		r.logger.Warn("unassigned column missing, recreating", "owner", ownerID)
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range columns {
			g.Go(func() error {
				return r.store.UpdateColumnPosition(gctx, ownerID, c.ID, c.Position+1)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("shift columns: %w", err)
		}
		if err := r.createUnassigned(ctx, ownerID); err != nil {
			return nil, err
		}
	}
	if !hasClosed {
		r.logger.Warn("closed column missing, recreating", "owner", ownerID)
		end := len(columns)
		if !hasUnassigned {
			end++
		}
		if err := r.createClosed(ctx, ownerID, end); err != nil {
			return nil, err
		}
	}
	return r.store.GetColumns(ctx, ownerID)
}

func (r *Reconciler) createUnassigned(ctx context.Context, ownerID string) error {
	_, err := r.store.CreateColumn(ctx, models.Column{
		OwnerID:       ownerID,
		Title:         models.UnassignedColumnTitle,
		Position:      0,
		Kind:          models.ColumnKindUnassigned,
		SortField:     models.UnassignedSortField,
		SortDirection: models.UnassignedSortDirection,
	})
	if err != nil {
		return fmt.Errorf("create unassigned column: %w", err)
	}
	return nil
}

func (r *Reconciler) createClosed(ctx context.Context, ownerID string, position int) error {
	_, err := r.store.CreateColumn(ctx, models.Column{
		OwnerID:       ownerID,
		Title:         models.ClosedColumnTitle,
		Position:      position,
		Kind:          models.ColumnKindClosed,
		SortField:     models.ClosedSortField,
		SortDirection: models.ClosedSortDirection,
	})
	if err != nil {
		return fmt.Errorf("create closed column: %w", err)
	}
	return nil
}

// Reconcile runs one pass. All effects are issued together and awaited
// jointly; one failing does not stop the others. Unless the plan is empty
// the local set is then re-read from the store. When some effects fail the
// re-read result is still returned, together with an *EffectsError. When the
// re-read fails Result.Projects is nil and the error matches ErrReread.
func (r *Reconciler) Reconcile(ctx context.Context, ownerID string, external []models.GitHubProject, local []models.Project, columns []models.Column) (Result, error) {
	ctx, span := telemetry.Tracer("ghpd/reconcile").Start(ctx, "reconcile.Run")
	defer span.End()

	unassigned, okU := models.FindColumnByKind(columns, models.ColumnKindUnassigned)
	closed, okC := models.FindColumnByKind(columns, models.ColumnKindClosed)
	if !okU || !okC {
		span.SetStatus(codes.Error, ErrSystemColumnsMissing.Error())
		return Result{}, ErrSystemColumnsMissing
	}

	plan := PlanEffects(external, local, unassigned.ID, closed.ID)
	span.SetAttributes(
		attribute.Int("create", len(plan.Create)),
		attribute.Int("delete", len(plan.Delete)),
		attribute.Int("reassign", len(plan.Reassign)),
	)
	if plan.Empty() {
		return Result{Projects: local, Plan: plan}, nil
	}

	r.logger.Debug("reconciling projects",
		"owner", ownerID,
		"create", len(plan.Create),
		"delete", len(plan.Delete),
		"reassign", len(plan.Reassign))

	failures := r.execute(ctx, ownerID, plan)

	projects, readErr := r.store.GetProjects(ctx, ownerID)
	if readErr != nil {
		readErr = fmt.Errorf("%w: %w", ErrReread, readErr)
	}

	var effErr error
	if len(failures) > 0 {
		effErr = &EffectsError{Total: plan.Len(), Failures: failures}
	}
	if err := errors.Join(effErr, readErr); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if readErr != nil {
			return Result{Plan: plan}, err
		}
		return Result{Projects: projects, Plan: plan}, err
	}
	return Result{Projects: projects, Plan: plan}, nil
}

// execute issues every effect and collects the failures in plan order.
func (r *Reconciler) execute(ctx context.Context, ownerID string, plan Plan) []EffectFailure {
	effects := plan.Effects()
	errs := make([]error, len(effects))

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, e := range effects {
		g.Go(func() error {
			errs[i] = r.apply(ctx, ownerID, e)
			return nil
		})
	}
	_ = g.Wait()

	var failures []EffectFailure
	for i, err := range errs {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
			failures = append(failures, EffectFailure{Effect: effects[i], Err: err})
			r.logger.Error("reconcile effect failed",
				"owner", ownerID,
				"effect", effects[i].Kind,
				"project_id", effects[i].ProjectID,
				"error", err)
		}
		if r.effects != nil {
			r.effects.Add(ctx, 1, metric.WithAttributes(
				attribute.String("kind", string(effects[i].Kind)),
				attribute.String("outcome", outcome)))
		}
	}
	return failures
}

func (r *Reconciler) apply(ctx context.Context, ownerID string, e Effect) error {
	switch e.Kind {
	case EffectCreate:
		_, err := r.store.CreateProject(ctx, models.Project{ID: e.ProjectID, OwnerID: ownerID, ColumnID: e.ColumnID})
		return err
	case EffectDelete:
		return r.store.DeleteProject(ctx, ownerID, e.ProjectID)
	case EffectReassign:
		return r.store.UpdateProjectColumn(ctx, ownerID, e.ProjectID, e.ColumnID)
	}
	return fmt.Errorf("unknown effect kind %q", e.Kind)
}
