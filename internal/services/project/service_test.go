package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
	"github.com/weibeld/github-projects-dashboard/internal/testutil"
)

func setup(t *testing.T) (*testutil.Harness, Service) {
	t.Helper()
	h := testutil.NewHarness(t, []string{"A", "B"}, "p1", "p2")
	return h, NewService(h.Store, h.Cache, h.Runner, h.Session)
}

func TestMoveProjectToColumn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t)
	colA := h.Columns["A"].ID

	require.NoError(t, svc.MoveProjectToColumn(ctx, "p1", colA))
	p, ok := svc.Project("p1")
	require.True(t, ok)
	assert.Equal(t, colA, p.ColumnID)
	assert.ElementsMatch(t, h.StoreBoard(t).Projects, h.Cache.Projects())

	// same column: nothing issued
	h.Store.Reset()
	require.NoError(t, svc.MoveProjectToColumn(ctx, "p1", colA))
	assert.Zero(t, h.Store.Writes())
}

func TestMoveProjectToColumn_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t)

	err := svc.MoveProjectToColumn(ctx, "nope", h.Columns["A"].ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.True(t, mutation.IsRejected(err))
	assert.ErrorIs(t, svc.MoveProjectToColumn(ctx, "p1", "nope"), ErrColumnNotFound)
	assert.Zero(t, h.Store.Writes())
}

// The cache shows the move while the write is in flight, then falls back
// to whatever the store holds once the write fails.
func TestMoveProjectToColumn_OptimisticThenFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t)
	colA, colB := h.Columns["A"].ID, h.Columns["B"].ID
	require.NoError(t, svc.MoveProjectToColumn(ctx, "p1", colA))

	h.Store.FailOn(testutil.OpUpdateProjectColumn, database.ErrUnavailable)
	entered, release := h.Store.Block(testutil.OpUpdateProjectColumn)

	done := make(chan error, 1)
	go func() { done <- svc.MoveProjectToColumn(ctx, "p1", colB) }()

	<-entered
	p, _ := svc.Project("p1")
	assert.Equal(t, colB, p.ColumnID, "optimistic state visible before persist resolves")

	release()
	err := <-done
	require.ErrorIs(t, err, database.ErrUnavailable)

	p, _ = svc.Project("p1")
	assert.Equal(t, colA, p.ColumnID)
	assert.Equal(t, h.StoreBoard(t), h.Cache.Snapshot().BoardData)
}

func TestMoveProjectToColumn_DisjointProjectsConcurrently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t)
	colA, colB := h.Columns["A"].ID, h.Columns["B"].ID

	entered, release := h.Store.Block(testutil.OpUpdateProjectColumn)
	done := make(chan error, 1)
	go func() { done <- svc.MoveProjectToColumn(ctx, "p1", colA) }()
	<-entered

	// p2 is not held up by the in-flight write for p1
	require.NoError(t, svc.MoveProjectToColumn(ctx, "p2", colB))
	release()
	require.NoError(t, <-done)

	p1, _ := svc.Project("p1")
	p2, _ := svc.Project("p2")
	assert.Equal(t, colA, p1.ColumnID)
	assert.Equal(t, colB, p2.ColumnID)
}
