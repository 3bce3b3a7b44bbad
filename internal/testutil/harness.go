package testutil

import (
	"context"
	"testing"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/database/memory"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
)

// Harness is a loaded cache over a fault-injecting memory store, with a
// runner whose rollbacks reload from that store.
type Harness struct {
	Store   *FaultyStore
	Cache   *cache.Cache
	Runner  *mutation.Runner
	Session *auth.Session
	Columns map[string]models.Column
}

// NewHarness bootstraps the system columns plus the given user columns,
// seeds projects into the unassigned column, and loads the cache.
func NewHarness(t *testing.T, columns []string, projects ...string) *Harness {
	t.Helper()
	ctx := context.Background()
	h := &Harness{
		Store:   NewFaultyStore(memory.New()),
		Cache:   cache.New(nil),
		Session: auth.NewSession("token", Owner),
	}
	h.Columns = MustColumns(t, h.Store, columns...)
	unassigned := h.Columns[models.UnassignedColumnTitle].ID
	for _, id := range projects {
		if _, err := h.Store.CreateProject(ctx, models.Project{ID: id, OwnerID: Owner, ColumnID: unassigned}); err != nil {
			t.Fatalf("Failed to create project %s: %v", id, err)
		}
	}
	board, err := database.LoadBoard(ctx, h.Store, Owner)
	if err != nil {
		t.Fatalf("Failed to load board: %v", err)
	}
	h.Cache.Init(nil, board)
	h.Runner = mutation.NewRunner(h.Cache, mutation.ReloaderFunc(h.Reload))
	h.Store.Reset()
	return h
}

// Reload replaces the cache with a fresh read of the store.
func (h *Harness) Reload(ctx context.Context) error {
	board, err := database.LoadBoard(ctx, h.Store, Owner)
	if err != nil {
		return err
	}
	h.Cache.Replace("reload", board)
	return nil
}

// StoreBoard reads the store directly.
func (h *Harness) StoreBoard(t *testing.T) models.BoardData {
	t.Helper()
	board, err := database.LoadBoard(context.Background(), h.Store.DataStore, Owner)
	if err != nil {
		t.Fatalf("Failed to load board: %v", err)
	}
	return board
}

// Positions returns column positions in cache order, failing on gaps or duplicates.
func Positions(t *testing.T, columns []models.Column) []int {
	t.Helper()
	seen := make(map[int]bool, len(columns))
	out := make([]int, 0, len(columns))
	for _, c := range columns {
		if seen[c.Position] {
			t.Fatalf("duplicate position %d", c.Position)
		}
		seen[c.Position] = true
		out = append(out, c.Position)
	}
	for i := range columns {
		if !seen[i] {
			t.Fatalf("positions not dense: missing %d in %v", i, out)
		}
	}
	return out
}
