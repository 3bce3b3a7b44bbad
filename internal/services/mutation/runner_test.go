package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

func board() models.BoardData {
	return models.BoardData{
		Columns: []models.Column{
			{ID: "u", Title: models.UnassignedColumnTitle, Kind: models.ColumnKindUnassigned},
			{ID: "a", Title: "A", Position: 1, Kind: models.ColumnKindUser},
			{ID: "c", Title: models.ClosedColumnTitle, Position: 2, Kind: models.ColumnKindClosed},
		},
		Projects: []models.Project{{ID: "p1", ColumnID: "a"}},
	}
}

// fixture wires a runner whose reloads restore truth.
type fixture struct {
	cache   *cache.Cache
	runner  *Runner
	reloads atomic.Int32

	truthMu sync.Mutex
	truth   models.BoardData

	mu          sync.Mutex
	transitions []Transition
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{cache: cache.New(nil), truth: board()}
	f.cache.Init(nil, f.truth)
	reload := ReloaderFunc(func(context.Context) error {
		f.reloads.Add(1)
		f.truthMu.Lock()
		defer f.truthMu.Unlock()
		f.cache.Replace("reload", f.truth)
		return nil
	})
	opts = append(opts, WithObserver(func(tr Transition) {
		f.mu.Lock()
		f.transitions = append(f.transitions, tr)
		f.mu.Unlock()
	}))
	f.runner = NewRunner(f.cache, reload, opts...)
	return f
}

// store returns a persist func that writes the move into the truth.
func (f *fixture) store(projectID, columnID string) func(context.Context) error {
	return func(context.Context) error {
		f.truthMu.Lock()
		defer f.truthMu.Unlock()
		for i := range f.truth.Projects {
			if f.truth.Projects[i].ID == projectID {
				f.truth.Projects[i].ColumnID = columnID
			}
		}
		return nil
	}
}

func columnOf(t *testing.T, c *cache.Cache, projectID string) string {
	t.Helper()
	for _, p := range c.Projects() {
		if p.ID == projectID {
			return p.ColumnID
		}
	}
	t.Fatalf("project %s not in cache", projectID)
	return ""
}

func (f *fixture) states() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]State, len(f.transitions))
	for i, tr := range f.transitions {
		out[i] = tr.To
	}
	return out
}

func moveOp(projectID, columnID string, persist func(context.Context) error) Op {
	return Op{
		Name: "move_project",
		Keys: []string{ProjectKey(projectID)},
		Validate: func(d *cache.Data) error {
			if _, ok := models.FindColumn(d.Columns, columnID); !ok {
				return errors.New("no such column")
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			for i := range d.Projects {
				if d.Projects[i].ID == projectID {
					d.Projects[i].ColumnID = columnID
				}
			}
			return nil
		},
		Persist: persist,
	}
}

func TestRun_Commit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var committed bool
	op := moveOp("p1", "u", func(context.Context) error { return nil })
	op.Commit = func(d *cache.Data) error { committed = true; return nil }

	require.NoError(t, f.runner.Run(context.Background(), op))
	assert.Equal(t, "u", f.cache.Projects()[0].ColumnID)
	assert.True(t, committed)
	assert.Zero(t, f.reloads.Load())
	assert.Equal(t, []State{Validating, OptimisticallyApplied, Persisting, Committed, Idle}, f.states())
}

func TestRun_ValidationRejects(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	persisted := false
	err := f.runner.Run(context.Background(), moveOp("p1", "missing", func(context.Context) error {
		persisted = true
		return nil
	}))
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.False(t, persisted)
	assert.Equal(t, "a", f.cache.Projects()[0].ColumnID)
	assert.Equal(t, []State{Validating, Idle}, f.states())
}

func TestRun_NotLoaded(t *testing.T) {
	t.Parallel()
	r := NewRunner(cache.New(nil), nil)
	err := r.Run(context.Background(), moveOp("p1", "u", func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, cache.ErrNotLoaded)
	assert.False(t, IsRejected(err))
}

func TestRun_OptimisticThenRollback(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	boom := fmt.Errorf("write: %w", database.ErrUnavailable)
	op := moveOp("p1", "u", func(context.Context) error {
		close(entered)
		<-release
		return boom
	})

	done := make(chan error, 1)
	go func() { done <- f.runner.Run(context.Background(), op) }()

	<-entered
	// persist in flight: the view already shows the move
	assert.Equal(t, "u", f.cache.Projects()[0].ColumnID)
	close(release)

	err := <-done
	assert.Same(t, boom, err, "original error is re-raised")
	assert.Equal(t, "a", f.cache.Projects()[0].ColumnID)
	assert.Equal(t, int32(1), f.reloads.Load())
	assert.Equal(t, f.truth.Projects, f.cache.Projects())
	assert.Equal(t, []State{Validating, OptimisticallyApplied, Persisting, RolledBack, Idle}, f.states())
}

func TestRun_ReloadFailureIsJoined(t *testing.T) {
	t.Parallel()
	c := cache.New(nil)
	c.Init(nil, board())
	reloadErr := errors.New("store down")
	r := NewRunner(c, ReloaderFunc(func(context.Context) error { return reloadErr }))

	boom := errors.New("boom")
	err := r.Run(context.Background(), moveOp("p1", "u", func(context.Context) error { return boom }))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, reloadErr)
}

func TestRun_AuthExpiredLogsOut(t *testing.T) {
	t.Parallel()
	var loggedOut atomic.Bool
	f := newFixture(t, WithAuthExpired(func() { loggedOut.Store(true) }))

	err := f.runner.Run(context.Background(), moveOp("p1", "u", func(context.Context) error {
		return github.ErrAuthExpired
	}))
	assert.ErrorIs(t, err, github.ErrAuthExpired)
	assert.True(t, loggedOut.Load())
	assert.Zero(t, f.reloads.Load())
}

func TestRun_SameKeySerialized(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	first := moveOp("p1", "u", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})

	var secondApplied atomic.Bool
	second := moveOp("p1", "c", func(context.Context) error { return nil })
	apply := second.Apply
	second.Apply = func(d *cache.Data) error {
		secondApplied.Store(true)
		return apply(d)
	}

	errs := make(chan error, 2)
	go func() { errs <- f.runner.Run(context.Background(), first) }()
	<-entered
	go func() { errs <- f.runner.Run(context.Background(), second) }()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, secondApplied.Load(), "second op must wait for the first to finish")

	close(release)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Equal(t, "c", f.cache.Projects()[0].ColumnID)
	assert.Zero(t, f.runner.keys.size())
}

func TestRun_DisjointKeysProceed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	release := make(chan struct{})
	entered := make(chan struct{})
	blocked := moveOp("p1", "u", func(context.Context) error {
		close(entered)
		<-release
		return nil
	})
	other := Op{
		Name:    "rename_column",
		Keys:    []string{ColumnsKey},
		Apply:   func(d *cache.Data) error { d.Columns[1].Title = "B"; return nil },
		Persist: func(context.Context) error { return nil },
	}

	done := make(chan error, 1)
	go func() { done <- f.runner.Run(context.Background(), blocked) }()
	<-entered

	require.NoError(t, f.runner.Run(context.Background(), other))
	assert.Equal(t, "B", f.cache.Columns()[1].Title)

	close(release)
	require.NoError(t, <-done)
}

func TestRun_CommitAfterRollbackReloadResyncs(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.truth.Projects = append(f.truth.Projects, models.Project{ID: "p2", ColumnID: "u"})
	f.cache.Init(nil, f.truth)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	persist := f.store("p1", "u")
	slow := moveOp("p1", "u", func(ctx context.Context) error {
		close(entered)
		<-release
		return persist(ctx)
	})

	done := make(chan error, 1)
	go func() { done <- f.runner.Run(ctx, slow) }()
	<-entered

	// a disjoint op fails; its rollback reads the store before p1 lands
	err := f.runner.Run(ctx, moveOp("p2", "c", func(context.Context) error {
		return errors.New("store down")
	}))
	require.Error(t, err)
	assert.Equal(t, "a", columnOf(t, f.cache, "p1"))
	assert.Equal(t, "u", columnOf(t, f.cache, "p2"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "u", columnOf(t, f.cache, "p1"), "committed write must reach the cache")
	assert.Equal(t, "u", columnOf(t, f.cache, "p2"))
	assert.Equal(t, int32(2), f.reloads.Load())
}

func TestRun_NoResyncWithoutReload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.runner.Run(ctx, moveOp("p1", "u", f.store("p1", "u"))))
	require.NoError(t, f.runner.Run(ctx, moveOp("p1", "c", f.store("p1", "c"))))
	assert.Equal(t, "c", columnOf(t, f.cache, "p1"))
	assert.Zero(t, f.reloads.Load())
}

func TestExclusive_WaitsForInFlight(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.runner.Run(context.Background(), moveOp("p1", "u", func(context.Context) error {
			close(entered)
			<-release
			return nil
		}))
	}()
	<-entered

	var ran atomic.Bool
	exDone := make(chan error, 1)
	go func() {
		exDone <- f.runner.Exclusive(context.Background(), func(context.Context) error {
			ran.Store(true)
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load())

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-exDone)
	assert.True(t, ran.Load())
}

func TestTransitionsAreLegal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_ = f.runner.Run(ctx, moveOp("p1", "u", func(context.Context) error { return nil }))
	_ = f.runner.Run(ctx, moveOp("p1", "nope", func(context.Context) error { return nil }))
	_ = f.runner.Run(ctx, moveOp("p1", "c", func(context.Context) error { return errors.New("x") }))

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tr := range f.transitions {
		assert.True(t, CanTransition(tr.From, tr.To), "%s -> %s", tr.From, tr.To)
	}
	assert.False(t, CanTransition(Idle, Committed))
	assert.Equal(t, "rolled_back", RolledBack.String())
	assert.Equal(t, "unknown", State(42).String())
}
