// Package mutation runs user-initiated changes through the optimistic
// protocol: validate against the cache, patch the cache, persist, and on
// failure reload everything from the store.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/telemetry"
)

// Reloader re-reads all four collections from the store into the cache.
// The runner calls it while holding the shared barrier, so it must not
// take the barrier itself.
type Reloader interface {
	ReloadFromStore(ctx context.Context) error
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(ctx context.Context) error

func (f ReloaderFunc) ReloadFromStore(ctx context.Context) error { return f(ctx) }

// Op is one mutation. Validate and Apply run inside a single cache patch;
// Apply may capture values for Persist through its closure.
type Op struct {
	Name string
	// Keys lists the entities the op touches; ops sharing a key run one at a time.
	Keys []string
	// SharedKeys may be held by many ops at once but never alongside
	// the same key in Keys.
	SharedKeys []string
	// Validate checks d without changing it. Optional.
	Validate func(d *cache.Data) error
	// Apply patches d to look as if the op already succeeded.
	Apply func(d *cache.Data) error
	// Persist issues the store writes.
	Persist func(ctx context.Context) error
	// Commit patches server-confirmed fields into the cache. Optional.
	Commit func(d *cache.Data) error
}

// Runner executes ops. It owns the barrier that keeps reconciliation and
// reloads from interleaving with in-flight mutations.
type Runner struct {
	cache         *cache.Cache
	reloader      Reloader
	onAuthExpired func()
	logger        *slog.Logger
	observers     []Observer

	barrier sync.RWMutex
	keys    *keyLocks
	count   metric.Int64Counter
}

// Option configures a Runner
type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithObserver registers fn for every state transition.
func WithObserver(fn Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, fn) }
}

// WithAuthExpired sets the handler run instead of a reload when persisting
// fails because the session ended.
func WithAuthExpired(fn func()) Option {
	return func(r *Runner) { r.onAuthExpired = fn }
}

func NewRunner(c *cache.Cache, reloader Reloader, opts ...Option) *Runner {
	r := &Runner{
		cache:    c,
		reloader: reloader,
		logger:   slog.Default(),
		keys:     newKeyLocks(),
	}
	for _, opt := range opts {
		opt(r)
	}
	counter, err := telemetry.Meter("ghpd/mutation").Int64Counter("ghpd.mutations",
		metric.WithDescription("mutations by outcome"))
	if err != nil {
		r.logger.Warn("failed to create mutation counter", "error", err)
	}
	r.count = counter
	return r
}

// Run executes op to completion. A validation failure comes back as a
// *RejectedError with nothing changed. A persist failure comes back as
// itself after the cache was reloaded from the store; a failing reload
// is joined to it.
func (r *Runner) Run(ctx context.Context, op Op) (err error) {
	ctx, span := telemetry.Tracer("ghpd/mutation").Start(ctx, "mutation."+op.Name)
	defer span.End()

	r.barrier.RLock()
	defer r.barrier.RUnlock()
	release := r.keys.lock(op.Keys, op.SharedKeys)
	defer release()

	outcome := "committed"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		if r.count != nil {
			r.count.Add(ctx, 1, metric.WithAttributes(
				attribute.String("op", op.Name),
				attribute.String("outcome", outcome)))
		}
	}()

	r.transition(op.Name, Idle, Validating, nil)
	gen, err := r.cache.Patch(op.Name, func(d *cache.Data) error {
		if op.Validate != nil {
			if err := op.Validate(d); err != nil {
				return &RejectedError{Op: op.Name, Err: err}
			}
		}
		if err := op.Apply(d); err != nil {
			return &RejectedError{Op: op.Name, Err: err}
		}
		return nil
	})
	if err != nil {
		outcome = "rejected"
		r.transition(op.Name, Validating, Idle, err)
		return err
	}
	r.transition(op.Name, Validating, OptimisticallyApplied, nil)

	r.transition(op.Name, OptimisticallyApplied, Persisting, nil)
	if perr := op.Persist(ctx); perr != nil {
		outcome = "rolled_back"
		r.transition(op.Name, Persisting, RolledBack, perr)
		err = r.rollback(ctx, op.Name, perr)
		r.transition(op.Name, RolledBack, Idle, err)
		return err
	}

	r.transition(op.Name, Persisting, Committed, nil)
	if r.cache.Generation() != gen {
		// a reload read the store before this write landed and dropped the patch
		if !r.cache.Loaded() {
			r.transition(op.Name, Committed, Idle, nil)
			return nil
		}
		r.logger.Debug("cache reloaded during persist, resyncing", "op", op.Name)
		if rerr := r.reload(ctx); rerr != nil {
			r.logger.Error("resync after commit failed", "op", op.Name, "error", rerr)
			r.transition(op.Name, Committed, Idle, rerr)
			return fmt.Errorf("%s: resync after commit: %w", op.Name, rerr)
		}
		r.transition(op.Name, Committed, Idle, nil)
		return nil
	}
	if op.Commit != nil {
		if cerr := r.cache.Mutate(op.Name, op.Commit); cerr != nil {
			// the store has the write; resync instead of failing the op
			r.logger.Warn("commit patch failed, reloading", "op", op.Name, "error", cerr)
			if rerr := r.reload(ctx); rerr != nil {
				r.transition(op.Name, Committed, Idle, rerr)
				return fmt.Errorf("%s: resync after commit: %w", op.Name, rerr)
			}
		}
	}
	r.transition(op.Name, Committed, Idle, nil)
	return nil
}

func (r *Runner) rollback(ctx context.Context, name string, perr error) error {
	if errors.Is(perr, github.ErrAuthExpired) || errors.Is(perr, auth.ErrNotAuthenticated) {
		r.logger.Warn("session ended during mutation, logging out", "op", name, "error", perr)
		if r.onAuthExpired != nil {
			r.onAuthExpired()
		}
		return perr
	}

	r.logger.Warn("mutation failed, reloading from store", "op", name, "error", perr)
	if rerr := r.reload(ctx); rerr != nil {
		r.logger.Error("rollback reload failed", "op", name, "error", rerr)
		return errors.Join(perr, fmt.Errorf("rollback reload: %w", rerr))
	}
	return perr
}

func (r *Runner) reload(ctx context.Context) error {
	if r.reloader == nil {
		return errors.New("no reloader configured")
	}
	// the persist may have failed on cancellation; the reload still has to run
	return r.reloader.ReloadFromStore(context.WithoutCancel(ctx))
}

// Exclusive runs fn while no mutation is in flight and none can start.
func (r *Runner) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	r.barrier.Lock()
	defer r.barrier.Unlock()
	return fn(ctx)
}

func (r *Runner) transition(op string, from, to State, err error) {
	r.logger.Debug("mutation transition", "op", op, "from", from.String(), "state", to.String())
	t := Transition{Op: op, From: from, To: to, Err: err}
	for _, obs := range r.observers {
		obs(t)
	}
}
