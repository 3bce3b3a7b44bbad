// Package storetest holds a behavioural test suite every DataStore adapter
// must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// Factory returns an empty store. Each call must return an isolated store.
type Factory func(t *testing.T) database.DataStore

// Run exercises the DataStore contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("ColumnsOrderedByPosition", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		mustColumn(t, s, "alice", "B", 1)
		mustColumn(t, s, "alice", "C", 2)
		mustColumn(t, s, "alice", "A", 0)
		mustColumn(t, s, "bob", "Other", 0)

		cols, err := s.GetColumns(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, cols, 3)
		assert.Equal(t, []string{"A", "B", "C"}, titles(cols))
		assert.Equal(t, models.ColumnKindUser, cols[0].Kind)
		assert.Equal(t, models.DefaultSortField, cols[0].SortField)
		assert.NotEmpty(t, cols[0].ID)
	})

	t.Run("DuplicateColumnTitleConflicts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		mustColumn(t, s, "alice", "Todo", 0)
		_, err := s.CreateColumn(ctx, models.Column{OwnerID: "alice", Title: "Todo", Position: 1})
		assert.ErrorIs(t, err, database.ErrConflict)

		// other owners are independent
		_, err = s.CreateColumn(ctx, models.Column{OwnerID: "bob", Title: "Todo", Position: 0})
		assert.NoError(t, err)
	})

	t.Run("ColumnUpdates", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a := mustColumn(t, s, "alice", "A", 0)
		b := mustColumn(t, s, "alice", "B", 1)

		require.NoError(t, s.UpdateColumnTitle(ctx, "alice", a.ID, "Renamed"))
		require.NoError(t, s.UpdateColumnPosition(ctx, "alice", a.ID, 1))
		require.NoError(t, s.UpdateColumnPosition(ctx, "alice", b.ID, 0))
		require.NoError(t, s.UpdateColumnSort(ctx, "alice", a.ID, models.SortByTitle, models.SortAsc))

		cols, err := s.GetColumns(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "Renamed"}, titles(cols))
		assert.Equal(t, models.SortByTitle, cols[1].SortField)
		assert.Equal(t, models.SortAsc, cols[1].SortDirection)

		assert.ErrorIs(t, s.UpdateColumnTitle(ctx, "alice", b.ID, "Renamed"), database.ErrConflict)
		assert.ErrorIs(t, s.UpdateColumnTitle(ctx, "alice", "missing", "X"), database.ErrNotFound)
		assert.ErrorIs(t, s.UpdateColumnPosition(ctx, "bob", a.ID, 3), database.ErrNotFound)
		assert.ErrorIs(t, s.DeleteColumn(ctx, "alice", "missing"), database.ErrNotFound)
	})

	t.Run("DeleteColumnWithProjectsConflicts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a := mustColumn(t, s, "alice", "A", 0)
		b := mustColumn(t, s, "alice", "B", 1)
		_, err := s.CreateProject(ctx, models.Project{ID: "p1", OwnerID: "alice", ColumnID: a.ID})
		require.NoError(t, err)

		assert.ErrorIs(t, s.DeleteColumn(ctx, "alice", a.ID), database.ErrConflict)

		require.NoError(t, s.UpdateProjectColumn(ctx, "alice", "p1", b.ID))
		require.NoError(t, s.DeleteColumn(ctx, "alice", a.ID))
	})

	t.Run("ProjectLifecycle", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a := mustColumn(t, s, "alice", "A", 0)

		_, err := s.CreateProject(ctx, models.Project{ID: "p1", OwnerID: "alice", ColumnID: a.ID})
		require.NoError(t, err)
		_, err = s.CreateProject(ctx, models.Project{ID: "p1", OwnerID: "alice", ColumnID: a.ID})
		assert.ErrorIs(t, err, database.ErrConflict)
		_, err = s.CreateProject(ctx, models.Project{ID: "p2", OwnerID: "alice", ColumnID: "missing"})
		assert.ErrorIs(t, err, database.ErrNotFound)

		projects, err := s.GetProjects(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, models.Project{ID: "p1", OwnerID: "alice", ColumnID: a.ID}, projects[0])

		assert.ErrorIs(t, s.UpdateProjectColumn(ctx, "alice", "p1", "missing"), database.ErrNotFound)
		assert.ErrorIs(t, s.UpdateProjectColumn(ctx, "alice", "nope", a.ID), database.ErrNotFound)

		require.NoError(t, s.DeleteProject(ctx, "alice", "p1"))
		assert.ErrorIs(t, s.DeleteProject(ctx, "alice", "p1"), database.ErrNotFound)
		projects, err = s.GetProjects(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("LabelsOrderedByTitleAndUniqueIgnoringCase", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		mustLabel(t, s, "alice", "bug")
		mustLabel(t, s, "alice", "Alpha")
		_, err := s.CreateLabel(ctx, models.Label{OwnerID: "alice", Title: "BUG", Color: "#000000", TextColor: "white"})
		assert.ErrorIs(t, err, database.ErrConflict)

		labels, err := s.GetLabels(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, labels, 2)
		assert.Equal(t, "Alpha", labels[0].Title)
		assert.Equal(t, "bug", labels[1].Title)

		l := labels[1]
		l.Title = "defect"
		l.Color = "#FFFFFF"
		l.TextColor = "black"
		require.NoError(t, s.UpdateLabel(ctx, l))
		labels, err = s.GetLabels(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "defect", labels[1].Title)
		assert.Equal(t, "#FFFFFF", labels[1].Color)

		l.ID = "missing"
		assert.ErrorIs(t, s.UpdateLabel(ctx, l), database.ErrNotFound)
	})

	t.Run("RelationsIdempotentAndCascade", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a := mustColumn(t, s, "alice", "A", 0)
		_, err := s.CreateProject(ctx, models.Project{ID: "p1", OwnerID: "alice", ColumnID: a.ID})
		require.NoError(t, err)
		_, err = s.CreateProject(ctx, models.Project{ID: "p2", OwnerID: "alice", ColumnID: a.ID})
		require.NoError(t, err)
		bug := mustLabel(t, s, "alice", "bug")
		ui := mustLabel(t, s, "alice", "ui")

		rel := models.ProjectLabel{OwnerID: "alice", ProjectID: "p1", LabelID: bug.ID}
		require.NoError(t, s.CreateProjectLabel(ctx, rel))
		require.NoError(t, s.CreateProjectLabel(ctx, rel))
		require.NoError(t, s.CreateProjectLabel(ctx, models.ProjectLabel{OwnerID: "alice", ProjectID: "p1", LabelID: ui.ID}))
		require.NoError(t, s.CreateProjectLabel(ctx, models.ProjectLabel{OwnerID: "alice", ProjectID: "p2", LabelID: bug.ID}))
		assert.ErrorIs(t, s.CreateProjectLabel(ctx, models.ProjectLabel{OwnerID: "alice", ProjectID: "p1", LabelID: "missing"}), database.ErrNotFound)

		rels, err := s.GetProjectLabels(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, rels, 3)

		// deleting a label cascades its relations
		require.NoError(t, s.DeleteLabel(ctx, "alice", bug.ID))
		rels, err = s.GetProjectLabels(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, []models.ProjectLabel{{OwnerID: "alice", ProjectID: "p1", LabelID: ui.ID}}, rels)

		// deleting a project cascades its relations
		require.NoError(t, s.DeleteProject(ctx, "alice", "p1"))
		rels, err = s.GetProjectLabels(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, rels)

		assert.ErrorIs(t, s.DeleteProjectLabel(ctx, "alice", "p2", ui.ID), database.ErrNotFound)
	})

	t.Run("LoadBoard", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a := mustColumn(t, s, "alice", "A", 0)
		_, err := s.CreateProject(ctx, models.Project{ID: "p1", OwnerID: "alice", ColumnID: a.ID})
		require.NoError(t, err)
		l := mustLabel(t, s, "alice", "x")
		require.NoError(t, s.CreateProjectLabel(ctx, models.ProjectLabel{OwnerID: "alice", ProjectID: "p1", LabelID: l.ID}))

		data, err := database.LoadBoard(ctx, s, "alice")
		require.NoError(t, err)
		assert.Len(t, data.Columns, 1)
		assert.Len(t, data.Projects, 1)
		assert.Len(t, data.Labels, 1)
		assert.Len(t, data.ProjectLabels, 1)

		empty, err := database.LoadBoard(ctx, s, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty.Columns)
		assert.NotNil(t, empty.Projects)
	})
}

func mustColumn(t *testing.T, s database.DataStore, owner, title string, pos int) *models.Column {
	t.Helper()
	c, err := s.CreateColumn(context.Background(), models.Column{OwnerID: owner, Title: title, Position: pos})
	require.NoError(t, err)
	return c
}

func mustLabel(t *testing.T, s database.DataStore, owner, title string) *models.Label {
	t.Helper()
	l, err := s.CreateLabel(context.Background(), models.Label{OwnerID: owner, Title: title, Color: "#ff0000", TextColor: "white"})
	require.NoError(t, err)
	return l
}

func titles(cols []models.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
	}
	return out
}
