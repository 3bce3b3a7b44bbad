package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// Owner is the owner ID used throughout the fixtures
const Owner = "octocat"

// NewSQLiteStore opens a migrated SQLite store in a temp dir.
func NewSQLiteStore(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.InitDB(context.Background(), filepath.Join(t.TempDir(), "ghpd.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return database.NewRepository(db)
}

// GitHubProject builds an external project with deterministic timestamps.
func GitHubProject(id string, number int, title string, closed bool) models.GitHubProject {
	created := time.Date(2024, 1, number%28+1, 0, 0, 0, 0, time.UTC)
	p := models.GitHubProject{
		ID:        id,
		Number:    number,
		Title:     title,
		URL:       "https://github.com/users/" + Owner + "/projects/" + id,
		CreatedAt: created,
		UpdatedAt: created.Add(24 * time.Hour),
		Closed:    closed,
		Items:     number,
	}
	if closed {
		at := created.Add(48 * time.Hour)
		p.ClosedAt = &at
	}
	return p
}

// MustColumns creates the system columns plus one user column per title,
// in order, and returns them by title.
func MustColumns(t *testing.T, store database.DataStore, titles ...string) map[string]models.Column {
	t.Helper()
	ctx := context.Background()
	out := make(map[string]models.Column)
	create := func(c models.Column) {
		created, err := store.CreateColumn(ctx, c)
		if err != nil {
			t.Fatalf("Failed to create column %q: %v", c.Title, err)
		}
		out[created.Title] = *created
	}
	create(models.Column{OwnerID: Owner, Title: models.UnassignedColumnTitle, Position: 0,
		Kind: models.ColumnKindUnassigned, SortField: models.UnassignedSortField, SortDirection: models.UnassignedSortDirection})
	for i, title := range titles {
		create(models.Column{OwnerID: Owner, Title: title, Position: i + 1})
	}
	create(models.Column{OwnerID: Owner, Title: models.ClosedColumnTitle, Position: len(titles) + 1,
		Kind: models.ColumnKindClosed, SortField: models.ClosedSortField, SortDirection: models.ClosedSortDirection})
	return out
}

// CaptureOutput captures stdout during function execution
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout
	return <-outC
}
