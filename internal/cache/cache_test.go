package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/events"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

func sampleBoard() models.BoardData {
	return models.BoardData{
		Columns: []models.Column{
			{ID: "u", Title: models.UnassignedColumnTitle, Position: 0, Kind: models.ColumnKindUnassigned},
			{ID: "c", Title: models.ClosedColumnTitle, Position: 1, Kind: models.ColumnKindClosed},
		},
		Projects: []models.Project{{ID: "p1", ColumnID: "u"}},
	}
}

func TestCache_InitAndSnapshotAreCopies(t *testing.T) {
	t.Parallel()
	c := New(nil)
	assert.False(t, c.Loaded())

	board := sampleBoard()
	c.Init([]models.GitHubProject{{ID: "p1"}}, board)
	require.True(t, c.Loaded())

	// caller's slice is not aliased
	board.Projects[0].ColumnID = "c"
	snap := c.Snapshot()
	assert.Equal(t, "u", snap.Projects[0].ColumnID)

	// snapshot is not aliased either
	snap.Projects[0].ColumnID = "c"
	assert.Equal(t, "u", c.Projects()[0].ColumnID)
	assert.Len(t, c.GitHubProjects(), 1)
}

func TestCache_MutateIsAtomic(t *testing.T) {
	t.Parallel()
	c := New(nil)
	c.Init(nil, sampleBoard())

	boom := errors.New("boom")
	err := c.Mutate("test", func(d *Data) error {
		d.Projects[0].ColumnID = "c"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "u", c.Projects()[0].ColumnID, "failed patch must not leak")

	require.NoError(t, c.Mutate("test", func(d *Data) error {
		d.Projects[0].ColumnID = "c"
		return nil
	}))
	assert.Equal(t, "c", c.Projects()[0].ColumnID)
}

func TestCache_GenerationCountsWholesaleWrites(t *testing.T) {
	t.Parallel()
	c := New(nil)
	c.Init(nil, sampleBoard())
	start := c.Generation()

	gen, err := c.Patch("test", func(d *Data) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, start, gen, "patches do not bump the generation")

	c.Replace("reload", sampleBoard())
	assert.Equal(t, start+1, c.Generation())
	c.Clear()
	assert.Equal(t, start+2, c.Generation())

	_, err = c.Patch("test", func(d *Data) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestCache_MutateBeforeInit(t *testing.T) {
	t.Parallel()
	c := New(nil)
	err := c.Mutate("test", func(d *Data) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestCache_ReplaceKeepsGitHub(t *testing.T) {
	t.Parallel()
	c := New(nil)
	c.Init([]models.GitHubProject{{ID: "p1"}}, sampleBoard())
	c.Replace("reload", models.BoardData{})

	assert.Empty(t, c.Columns())
	assert.Len(t, c.GitHubProjects(), 1)
}

func TestCache_ClearAndEvents(t *testing.T) {
	t.Parallel()
	bus := events.NewBus()
	ch, cancel := bus.Subscribe(10)
	defer cancel()

	c := New(bus)
	c.Init(nil, sampleBoard())
	c.SetLabels([]models.Label{{ID: "l1"}})
	c.Clear()

	assert.False(t, c.Loaded())
	assert.Empty(t, c.Columns())
	assert.Empty(t, c.Labels())

	var types []events.EventType
	for i := 0; i < 3; i++ {
		types = append(types, (<-ch).Type)
	}
	assert.Equal(t, []events.EventType{events.EventCacheLoaded, events.EventCacheMutated, events.EventCacheCleared}, types)
}

func TestCache_Setters(t *testing.T) {
	t.Parallel()
	c := New(nil)
	c.Init(nil, models.BoardData{})
	c.SetColumns([]models.Column{{ID: "x"}})
	c.SetProjects([]models.Project{{ID: "p"}})
	c.SetProjectLabels([]models.ProjectLabel{{ProjectID: "p", LabelID: "l"}})
	c.SetGitHubProjects([]models.GitHubProject{{ID: "p"}})

	snap := c.Snapshot()
	assert.Len(t, snap.Columns, 1)
	assert.Len(t, snap.Projects, 1)
	assert.Len(t, snap.ProjectLabels, 1)
	assert.Len(t, snap.GitHub, 1)
}
