package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/database/memory"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/testutil"
)

const owner = testutil.Owner

// setup returns a bootstrapped store with one user column "A".
func setup(t *testing.T) (*testutil.FaultyStore, map[string]models.Column) {
	t.Helper()
	store := testutil.NewFaultyStore(memory.New())
	cols := testutil.MustColumns(t, store, "A")
	store.Reset()
	return store, cols
}

func columnsOf(m map[string]models.Column) []models.Column {
	out := make([]models.Column, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

func projectsByID(projects []models.Project) map[string]string {
	out := make(map[string]string, len(projects))
	for _, p := range projects {
		out[p.ID] = p.ColumnID
	}
	return out
}

func TestReconcile_NewProjectAppears(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	r := New(store)

	res, err := r.Reconcile(ctx, owner, []models.GitHubProject{{ID: "p1"}}, nil, columnsOf(cols))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"p1": cols[models.UnassignedColumnTitle].ID}, projectsByID(res.Projects))
	assert.Len(t, res.Plan.Create, 1)
	assert.Equal(t, 1, store.Writes())
	assert.Equal(t, 1, store.Calls(testutil.OpCreateProject))
}

func TestReconcile_ProjectCloses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	colA := cols["A"].ID
	_, err := store.CreateProject(ctx, models.Project{ID: "p1", OwnerID: owner, ColumnID: colA})
	require.NoError(t, err)
	store.Reset()

	r := New(store)
	res, err := r.Reconcile(ctx, owner,
		[]models.GitHubProject{{ID: "p1", Closed: true}},
		[]models.Project{{ID: "p1", OwnerID: owner, ColumnID: colA}},
		columnsOf(cols))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"p1": cols[models.ClosedColumnTitle].ID}, projectsByID(res.Projects))
	assert.Len(t, res.Plan.Reassign, 1)
	assert.Equal(t, 1, store.Writes(), "reassign, not delete+create")
	assert.Zero(t, store.Calls(testutil.OpDeleteProject))
	assert.Zero(t, store.Calls(testutil.OpCreateProject))
}

func TestReconcile_ProjectRemovedUpstream(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	closedID := cols[models.ClosedColumnTitle].ID
	_, err := store.CreateProject(ctx, models.Project{ID: "p1", OwnerID: owner, ColumnID: closedID})
	require.NoError(t, err)
	store.Reset()

	r := New(store)
	res, err := r.Reconcile(ctx, owner, nil,
		[]models.Project{{ID: "p1", OwnerID: owner, ColumnID: closedID}},
		columnsOf(cols))
	require.NoError(t, err)

	assert.Empty(t, res.Projects)
	assert.Len(t, res.Plan.Delete, 1)
	assert.Equal(t, 1, store.Writes())
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	r := New(store)

	external := []models.GitHubProject{
		{ID: "p1"}, {ID: "p2", Closed: true}, {ID: "p3"},
	}
	first, err := r.Reconcile(ctx, owner, external, nil, columnsOf(cols))
	require.NoError(t, err)
	writes := store.Writes()
	reads := store.Calls(testutil.OpGetProjects)

	second, err := r.Reconcile(ctx, owner, external, first.Projects, columnsOf(cols))
	require.NoError(t, err)

	assert.True(t, second.Plan.Empty())
	assert.Equal(t, writes, store.Writes(), "second run must not write")
	assert.Equal(t, reads, store.Calls(testutil.OpGetProjects), "empty plan skips the re-read")
	assert.Equal(t, projectsByID(first.Projects), projectsByID(second.Projects))
}

func TestReconcile_CoverageAndClosedConvergence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	colA := cols["A"].ID
	closedID := cols[models.ClosedColumnTitle].ID

	local := []models.Project{
		{ID: "open-in-a", OwnerID: owner, ColumnID: colA},
		{ID: "open-in-closed", OwnerID: owner, ColumnID: closedID},
		{ID: "closed-in-a", OwnerID: owner, ColumnID: colA},
		{ID: "gone", OwnerID: owner, ColumnID: colA},
	}
	for _, p := range local {
		_, err := store.CreateProject(ctx, p)
		require.NoError(t, err)
	}
	external := []models.GitHubProject{
		{ID: "open-in-a"}, {ID: "open-in-closed"}, {ID: "closed-in-a", Closed: true},
		{ID: "new-open"}, {ID: "new-closed", Closed: true},
	}

	res, err := New(store).Reconcile(ctx, owner, external, local, columnsOf(cols))
	require.NoError(t, err)

	got := projectsByID(res.Projects)
	require.Len(t, got, len(external))
	for _, gh := range external {
		col, ok := got[gh.ID]
		require.True(t, ok, "missing local record for %s", gh.ID)
		if gh.Closed {
			assert.Equal(t, closedID, col, gh.ID)
		} else {
			assert.NotEqual(t, closedID, col, gh.ID)
		}
	}
	assert.Equal(t, colA, got["open-in-a"], "manual placement of open project is kept")
}

func TestReconcile_ReassignsManualMoveOutOfClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	colA := cols["A"].ID
	closedID := cols[models.ClosedColumnTitle].ID

	// user dragged a still-closed project into A after the last pass
	_, err := store.CreateProject(ctx, models.Project{ID: "p1", OwnerID: owner, ColumnID: colA})
	require.NoError(t, err)

	res, err := New(store).Reconcile(ctx, owner,
		[]models.GitHubProject{{ID: "p1", Closed: true}},
		[]models.Project{{ID: "p1", OwnerID: owner, ColumnID: colA}},
		columnsOf(cols))
	require.NoError(t, err)
	assert.Equal(t, closedID, projectsByID(res.Projects)["p1"])
}

func TestReconcile_PartialFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, cols := setup(t)
	boom := fmt.Errorf("insert: %w", database.ErrUnavailable)
	store.FailOnID(testutil.OpCreateProject, "p2", boom)

	external := []models.GitHubProject{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
	res, err := New(store).Reconcile(ctx, owner, external, nil, columnsOf(cols))
	require.Error(t, err)

	var effErr *EffectsError
	require.True(t, errors.As(err, &effErr))
	assert.Equal(t, 3, effErr.Total)
	assert.Equal(t, []string{"p2"}, effErr.Failed())
	assert.ErrorIs(t, err, database.ErrUnavailable)
	assert.Contains(t, err.Error(), "1 of 3 effects failed")

	// the other effects still landed and the store was re-read
	got := projectsByID(res.Projects)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "p1")
	assert.Contains(t, got, "p3")
	assert.Equal(t, 3, store.Calls(testutil.OpCreateProject))
	assert.Equal(t, 1, store.Calls(testutil.OpGetProjects))
}

func TestReconcile_ReReadFailure(t *testing.T) {
	t.Parallel()
	store, cols := setup(t)
	store.FailOn(testutil.OpGetProjects, database.ErrUnavailable)

	res, err := New(store).Reconcile(context.Background(), owner,
		[]models.GitHubProject{{ID: "p1"}}, nil, columnsOf(cols))
	require.ErrorIs(t, err, database.ErrUnavailable)
	assert.ErrorIs(t, err, ErrReread)
	assert.Nil(t, res.Projects)
	assert.Len(t, res.Plan.Create, 1)
}

func TestReconcile_RequiresSystemColumns(t *testing.T) {
	t.Parallel()
	store := testutil.NewFaultyStore(memory.New())

	_, err := New(store).Reconcile(context.Background(), owner,
		[]models.GitHubProject{{ID: "p1"}}, nil, nil)
	require.ErrorIs(t, err, ErrSystemColumnsMissing)
	assert.Zero(t, store.Writes())
}

func TestEnsureSystemColumns_Bootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewFaultyStore(memory.New())
	r := New(store)

	cols, err := r.EnsureSystemColumns(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cols, 2)

	assert.Equal(t, models.ColumnKindUnassigned, cols[0].Kind)
	assert.Equal(t, 0, cols[0].Position)
	assert.Equal(t, models.UnassignedSortField, cols[0].SortField)
	assert.Equal(t, models.UnassignedSortDirection, cols[0].SortDirection)
	assert.Equal(t, models.ColumnKindClosed, cols[1].Kind)
	assert.Equal(t, 1, cols[1].Position)
	assert.Equal(t, models.ClosedSortField, cols[1].SortField)

	// idempotent
	writes := store.Writes()
	again, err := r.EnsureSystemColumns(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, cols, again)
	assert.Equal(t, writes, store.Writes())
}

func TestEnsureSystemColumns_RecreatesMissingKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seed    []models.Column
		wantIDs []string // by position; "" marks the recreated column
	}{
		{
			name: "unassigned missing",
			seed: []models.Column{
				{ID: "a", OwnerID: owner, Title: "A", Position: 0, Kind: models.ColumnKindUser},
				{ID: "c", OwnerID: owner, Title: models.ClosedColumnTitle, Position: 1, Kind: models.ColumnKindClosed},
			},
			wantIDs: []string{"", "a", "c"},
		},
		{
			name: "closed missing",
			seed: []models.Column{
				{ID: "u", OwnerID: owner, Title: models.UnassignedColumnTitle, Position: 0, Kind: models.ColumnKindUnassigned},
				{ID: "a", OwnerID: owner, Title: "A", Position: 1, Kind: models.ColumnKindUser},
			},
			wantIDs: []string{"u", "a", ""},
		},
		{
			name: "both missing with user columns",
			seed: []models.Column{
				{ID: "a", OwnerID: owner, Title: "A", Position: 0, Kind: models.ColumnKindUser},
				{ID: "b", OwnerID: owner, Title: "B", Position: 1, Kind: models.ColumnKindUser},
			},
			wantIDs: []string{"", "a", "b", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mem := memory.New()
			mem.Seed(models.BoardData{Columns: tt.seed})

			cols, err := New(mem).EnsureSystemColumns(context.Background(), owner)
			require.NoError(t, err)
			require.Len(t, cols, len(tt.wantIDs))

			for i, c := range cols {
				assert.Equal(t, i, c.Position, "positions stay dense")
				if tt.wantIDs[i] != "" {
					assert.Equal(t, tt.wantIDs[i], c.ID)
				}
			}
			assert.Equal(t, models.ColumnKindUnassigned, cols[0].Kind)
			assert.Equal(t, models.ColumnKindClosed, cols[len(cols)-1].Kind)
		})
	}
}

func TestEnsureSystemColumns_StoreFailure(t *testing.T) {
	t.Parallel()
	store := testutil.NewFaultyStore(memory.New())
	store.FailOn(testutil.OpGetColumns, database.ErrUnavailable)

	_, err := New(store).EnsureSystemColumns(context.Background(), owner)
	assert.ErrorIs(t, err, database.ErrUnavailable)
}
