package database

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS columns (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL DEFAULT 'user'
			CHECK (kind IN ('system_unassigned', 'system_closed', 'user')),
		sort_field TEXT NOT NULL DEFAULT 'updatedAt',
		sort_direction TEXT NOT NULL DEFAULT 'desc'
			CHECK (sort_direction IN ('asc', 'desc')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (owner_id, title)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_columns_owner_position ON columns(owner_id, position)`,
	// at most one column of each system kind per owner
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_columns_owner_system_kind
		ON columns(owner_id, kind) WHERE kind <> 'user'`,

	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		column_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (owner_id, id),
		FOREIGN KEY (column_id) REFERENCES columns(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_column ON projects(column_id)`,

	`CREATE TABLE IF NOT EXISTS labels (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		color TEXT NOT NULL,
		text_color TEXT NOT NULL CHECK (text_color IN ('white', 'black')),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (owner_id, title COLLATE NOCASE)
	)`,

	`CREATE TABLE IF NOT EXISTS project_labels (
		owner_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		label_id TEXT NOT NULL,
		PRIMARY KEY (owner_id, project_id, label_id),
		FOREIGN KEY (owner_id, project_id) REFERENCES projects(owner_id, id) ON DELETE CASCADE,
		FOREIGN KEY (label_id) REFERENCES labels(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_labels_label ON project_labels(label_id)`,
}

// runMigrations creates the schema. Statements are idempotent.
func runMigrations(ctx context.Context, db *sql.DB) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}
