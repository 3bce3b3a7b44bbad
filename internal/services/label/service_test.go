package label

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/testutil"
)

func setup(t *testing.T, projects ...string) (*testutil.Harness, Service) {
	t.Helper()
	h := testutil.NewHarness(t, []string{"A"}, projects...)
	return h, NewService(h.Store, h.Cache, h.Runner, h.Session)
}

func mustCreate(t *testing.T, svc Service, title, color string) *models.Label {
	t.Helper()
	l, err := svc.CreateLabel(context.Background(), CreateLabelRequest{Title: title, Color: color})
	require.NoError(t, err)
	return l
}

func labelTitles(labels []models.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Title
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestCreateLabel(t *testing.T) {
	t.Parallel()
	h, svc := setup(t)

	l, err := svc.CreateLabel(context.Background(), CreateLabelRequest{Title: " bug ", Color: "#FFFF00"})
	require.NoError(t, err)
	assert.Equal(t, "bug", l.Title)
	assert.Equal(t, models.TextColorBlack, l.TextColor, "derived from a light background")
	assert.False(t, strings.HasPrefix(l.ID, models.TempIDPrefix))

	stored := h.StoreBoard(t)
	require.Len(t, stored.Labels, 1)
	assert.Equal(t, stored.Labels, h.Cache.Labels())

	dark, err := svc.CreateLabel(context.Background(), CreateLabelRequest{Title: "ops", Color: "#000080"})
	require.NoError(t, err)
	assert.Equal(t, models.TextColorWhite, dark.TextColor)

	explicit, err := svc.CreateLabel(context.Background(), CreateLabelRequest{
		Title: "docs", Color: "#000080", TextColor: models.TextColorBlack,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TextColorBlack, explicit.TextColor)
}

func TestCreateLabel_AttachesToProject(t *testing.T) {
	t.Parallel()
	h, svc := setup(t, "p1")

	l, err := svc.CreateLabel(context.Background(), CreateLabelRequest{Title: "bug", Color: "#d73a4a", ProjectID: "p1"})
	require.NoError(t, err)

	want := []models.ProjectLabel{{ProjectID: "p1", LabelID: l.ID, OwnerID: testutil.Owner}}
	assert.Equal(t, want, h.StoreBoard(t).ProjectLabels)
	assert.Equal(t, want, h.Cache.ProjectLabels(), "temp ID replaced in relations too")
	assert.Equal(t, 1, svc.ProjectCount(l.ID))
}

func TestCreateLabel_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     CreateLabelRequest
		wantErr error
	}{
		{"empty title", CreateLabelRequest{Title: " ", Color: "#ffffff"}, ErrEmptyTitle},
		{"long title", CreateLabelRequest{Title: strings.Repeat("l", 51), Color: "#ffffff"}, ErrTitleTooLong},
		{"bad color", CreateLabelRequest{Title: "x", Color: "red"}, ErrInvalidColor},
		{"bad text color", CreateLabelRequest{Title: "x", Color: "#ffffff", TextColor: "grey"}, ErrInvalidTextColor},
		{"duplicate ignoring case", CreateLabelRequest{Title: "BUG", Color: "#ffffff"}, ErrDuplicateTitle},
		{"unknown project", CreateLabelRequest{Title: "x", Color: "#ffffff", ProjectID: "nope"}, ErrProjectNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := setup(t)
			mustCreate(t, svc, "bug", "#d73a4a")
			h.Store.Reset()
			before := h.Cache.Snapshot()

			_, err := svc.CreateLabel(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, h.Cache.Snapshot())
			assert.Zero(t, h.Store.Writes())
		})
	}
}

func TestCreateLabel_AttachFailureRollsBack(t *testing.T) {
	t.Parallel()
	h, svc := setup(t, "p1")
	h.Store.FailOn(testutil.OpCreateProjectLabel, database.ErrUnavailable)

	_, err := svc.CreateLabel(context.Background(), CreateLabelRequest{Title: "bug", Color: "#d73a4a", ProjectID: "p1"})
	require.ErrorIs(t, err, database.ErrUnavailable)

	// the label row was written before the relation failed
	stored := h.StoreBoard(t)
	assert.Equal(t, stored.Labels, h.Cache.Labels())
	assert.Empty(t, h.Cache.ProjectLabels())
}

func TestUpdateLabel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t)
	bug := mustCreate(t, svc, "bug", "#000000")
	mustCreate(t, svc, "docs", "#ffffff")

	require.NoError(t, svc.UpdateLabel(ctx, UpdateLabelRequest{ID: bug.ID, Color: strPtr("#ffffff")}))
	got, _ := findLabel(h.StoreBoard(t).Labels, bug.ID)
	assert.Equal(t, "#ffffff", got.Color)
	assert.Equal(t, models.TextColorBlack, got.TextColor)

	require.NoError(t, svc.UpdateLabel(ctx, UpdateLabelRequest{ID: bug.ID, Title: strPtr("Bug"), TextColor: strPtr(models.TextColorWhite)}))
	got, _ = findLabel(h.Cache.Labels(), bug.ID)
	assert.Equal(t, "Bug", got.Title)
	assert.Equal(t, models.TextColorWhite, got.TextColor)

	assert.ErrorIs(t, svc.UpdateLabel(ctx, UpdateLabelRequest{ID: bug.ID, Title: strPtr("DOCS")}), ErrDuplicateTitle)
	assert.ErrorIs(t, svc.UpdateLabel(ctx, UpdateLabelRequest{ID: "nope", Title: strPtr("x")}), ErrLabelNotFound)
	assert.ErrorIs(t, svc.UpdateLabel(ctx, UpdateLabelRequest{ID: bug.ID, Color: strPtr("#fff")}), ErrInvalidColor)
}

func TestDeleteLabel_CascadesRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t, "p1", "p2")
	bug := mustCreate(t, svc, "bug", "#d73a4a")
	keep := mustCreate(t, svc, "keep", "#0e8a16")
	require.NoError(t, svc.AttachLabel(ctx, "p1", bug.ID))
	require.NoError(t, svc.AttachLabel(ctx, "p2", bug.ID))
	require.NoError(t, svc.AttachLabel(ctx, "p2", keep.ID))
	assert.Equal(t, 2, svc.ProjectCount(bug.ID))

	require.NoError(t, svc.DeleteLabel(ctx, bug.ID))
	assert.Zero(t, svc.ProjectCount(bug.ID))
	stored := h.StoreBoard(t)
	assert.Equal(t, []string{"keep"}, labelTitles(stored.Labels))
	assert.Len(t, stored.ProjectLabels, 1)
	assert.ElementsMatch(t, stored.ProjectLabels, h.Cache.ProjectLabels())

	assert.ErrorIs(t, svc.DeleteLabel(ctx, bug.ID), ErrLabelNotFound)
}

func TestAttachDetach(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t, "p1")
	bug := mustCreate(t, svc, "bug", "#d73a4a")

	require.NoError(t, svc.AttachLabel(ctx, "p1", bug.ID))
	require.NoError(t, svc.AttachLabel(ctx, "p1", bug.ID), "attach is idempotent")
	assert.Len(t, h.Cache.ProjectLabels(), 1)
	assert.Len(t, h.StoreBoard(t).ProjectLabels, 1)
	assert.Equal(t, []string{"bug"}, labelTitles(svc.LabelsForProject("p1")))

	require.NoError(t, svc.DetachLabel(ctx, "p1", bug.ID))
	assert.Empty(t, h.Cache.ProjectLabels())
	assert.Empty(t, h.StoreBoard(t).ProjectLabels)

	assert.ErrorIs(t, svc.AttachLabel(ctx, "nope", bug.ID), ErrProjectNotFound)
	assert.ErrorIs(t, svc.AttachLabel(ctx, "p1", "nope"), ErrLabelNotFound)
}

func TestAvailableLabels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, svc := setup(t, "p1")
	bug := mustCreate(t, svc, "bug", "#d73a4a")
	mustCreate(t, svc, "Backend", "#000000")
	mustCreate(t, svc, "docs", "#ffffff")
	require.NoError(t, svc.AttachLabel(ctx, "p1", bug.ID))

	assert.Equal(t, []string{"Backend", "docs"}, labelTitles(svc.AvailableLabels("p1", "")))
	assert.Equal(t, []string{"Backend"}, labelTitles(svc.AvailableLabels("p1", "BACK")))
	assert.Equal(t, []string{"Backend", "bug"}, labelTitles(svc.AvailableLabels("p2", "b")))
	assert.Empty(t, svc.AvailableLabels("p1", "zzz"))
}

func TestCreateLabel_TempIDLockedUntilCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h, svc := setup(t, "p1")

	entered, release := h.Store.Block(testutil.OpCreateLabel)
	created := make(chan *models.Label, 1)
	go func() {
		l, err := svc.CreateLabel(ctx, CreateLabelRequest{Title: "bug", Color: "#d73a4a"})
		assert.NoError(t, err)
		created <- l
	}()
	<-entered

	labels := h.Cache.Labels()
	require.Len(t, labels, 1)
	tempID := labels[0].ID
	require.True(t, strings.HasPrefix(tempID, models.TempIDPrefix))

	attached := make(chan error, 1)
	go func() { attached <- svc.AttachLabel(ctx, "p1", tempID) }()
	release()

	l := <-created
	require.NotNil(t, l)
	require.ErrorIs(t, <-attached, ErrLabelNotFound)
	assert.Zero(t, h.Store.Calls(testutil.OpCreateProjectLabel))
	assert.Equal(t, h.StoreBoard(t).Labels, h.Cache.Labels())
	assert.Empty(t, h.Cache.ProjectLabels())
}
