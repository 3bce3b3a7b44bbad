package database_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/database/storetest"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

func TestRepositoryContract(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T) database.DataStore {
		db, err := database.InitDB(context.Background(), filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return database.NewRepository(db)
	})
}

func TestInitDB_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ghpd.db")

	db, err := database.InitDB(ctx, path)
	require.NoError(t, err)
	repo := database.NewRepository(db)
	col, err := repo.CreateColumn(ctx, models.Column{OwnerID: "alice", Title: "Todo", Position: 0})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.InitDB(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	cols, err := database.NewRepository(db).GetColumns(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, col.ID, cols[0].ID)
}

func TestClosedDBReportsUnavailable(t *testing.T) {
	t.Parallel()
	db, err := database.InitDB(context.Background(), filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = database.NewRepository(db).GetColumns(context.Background(), "alice")
	if !errors.Is(err, database.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
	assert.True(t, database.IsStoreError(err))
	assert.False(t, errors.Is(err, sql.ErrNoRows))
}
