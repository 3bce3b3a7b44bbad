// Package postgres implements the DataStore on PostgreSQL through pgx. The
// schema is owner-scoped so one database can serve many GitHub users.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// Store implements database.DataStore using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ database.DataStore = (*Store)(nil)

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to dsn, retrying while the server is not reachable yet, and
// applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	var pool *pgxpool.Pool
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 15 * time.Second
	err = backoff.Retry(func() error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return backoff.Permanent(err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			slog.Debug("postgres not ready", "error", err)
			return err
		}
		pool = p
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w: %w", database.ErrUnavailable, err)
	}

	s := NewStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS columns (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	position INTEGER NOT NULL,
	kind TEXT NOT NULL DEFAULT 'user'
		CHECK (kind IN ('system_unassigned', 'system_closed', 'user')),
	sort_field TEXT NOT NULL DEFAULT 'updatedAt',
	sort_direction TEXT NOT NULL DEFAULT 'desc'
		CHECK (sort_direction IN ('asc', 'desc')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner_id, title)
);
CREATE INDEX IF NOT EXISTS idx_columns_owner_position ON columns (owner_id, position);
CREATE UNIQUE INDEX IF NOT EXISTS idx_columns_owner_system_kind
	ON columns (owner_id, kind) WHERE kind <> 'user';

CREATE TABLE IF NOT EXISTS projects (
	id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	column_id TEXT NOT NULL REFERENCES columns (id) ON DELETE RESTRICT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (owner_id, id)
);
CREATE INDEX IF NOT EXISTS idx_projects_column ON projects (column_id);

CREATE TABLE IF NOT EXISTS labels (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	color TEXT NOT NULL,
	text_color TEXT NOT NULL CHECK (text_color IN ('white', 'black')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_labels_owner_title ON labels (owner_id, lower(title));

CREATE TABLE IF NOT EXISTS project_labels (
	owner_id TEXT NOT NULL,
	project_id TEXT NOT NULL,
	label_id TEXT NOT NULL REFERENCES labels (id) ON DELETE CASCADE,
	PRIMARY KEY (owner_id, project_id, label_id),
	FOREIGN KEY (owner_id, project_id) REFERENCES projects (owner_id, id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_project_labels_label ON project_labels (label_id);
`

// Migrate applies the schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return classify("migrate", err, database.ErrConflict)
	}
	return nil
}

// --- Columns ---

func (s *Store) GetColumns(ctx context.Context, ownerID string) ([]models.Column, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, title, position, kind, sort_field, sort_direction
		 FROM columns WHERE owner_id = $1 ORDER BY position, id`, ownerID)
	if err != nil {
		return nil, classify("list columns", err, database.ErrNotFound)
	}
	defer rows.Close()

	columns := []models.Column{}
	for rows.Next() {
		var c models.Column
		var kind, field, dir string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Position, &kind, &field, &dir); err != nil {
			return nil, classify("scan column", err, database.ErrNotFound)
		}
		c.Kind = models.ColumnKind(kind)
		c.SortField = models.SortField(field)
		c.SortDirection = models.SortDirection(dir)
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list columns", err, database.ErrNotFound)
	}
	return columns, nil
}

func (s *Store) CreateColumn(ctx context.Context, col models.Column) (*models.Column, error) {
	col.ID = database.IDOrNew(col.ID)
	if col.Kind == "" {
		col.Kind = models.ColumnKindUser
	}
	if col.SortField == "" {
		col.SortField = models.DefaultSortField
	}
	if col.SortDirection == "" {
		col.SortDirection = models.DefaultSortDirection
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO columns (id, owner_id, title, position, kind, sort_field, sort_direction)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		col.ID, col.OwnerID, col.Title, col.Position, string(col.Kind), string(col.SortField), string(col.SortDirection))
	if err != nil {
		return nil, classify("create column", err, database.ErrNotFound)
	}
	return &col, nil
}

func (s *Store) UpdateColumnTitle(ctx context.Context, ownerID, id, title string) error {
	return s.exec(ctx, "update column title", database.ErrNotFound,
		`UPDATE columns SET title = $3 WHERE owner_id = $1 AND id = $2`, ownerID, id, title)
}

func (s *Store) UpdateColumnPosition(ctx context.Context, ownerID, id string, position int) error {
	return s.exec(ctx, "update column position", database.ErrNotFound,
		`UPDATE columns SET position = $3 WHERE owner_id = $1 AND id = $2`, ownerID, id, position)
}

func (s *Store) UpdateColumnSort(ctx context.Context, ownerID, id string, field models.SortField, dir models.SortDirection) error {
	return s.exec(ctx, "update column sort", database.ErrNotFound,
		`UPDATE columns SET sort_field = $3, sort_direction = $4 WHERE owner_id = $1 AND id = $2`,
		ownerID, id, string(field), string(dir))
}

func (s *Store) DeleteColumn(ctx context.Context, ownerID, id string) error {
	return s.exec(ctx, "delete column", database.ErrConflict,
		`DELETE FROM columns WHERE owner_id = $1 AND id = $2`, ownerID, id)
}

// --- Projects ---

func (s *Store) GetProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, column_id FROM projects WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, classify("list projects", err, database.ErrNotFound)
	}
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Project, error) {
		var p models.Project
		err := row.Scan(&p.ID, &p.OwnerID, &p.ColumnID)
		return p, err
	})
	if err != nil {
		return nil, classify("list projects", err, database.ErrNotFound)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, owner_id, column_id) VALUES ($1, $2, $3)`, p.ID, p.OwnerID, p.ColumnID)
	if err != nil {
		return nil, classify("create project", err, database.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) UpdateProjectColumn(ctx context.Context, ownerID, id, columnID string) error {
	return s.exec(ctx, "update project column", database.ErrNotFound,
		`UPDATE projects SET column_id = $3 WHERE owner_id = $1 AND id = $2`, ownerID, id, columnID)
}

func (s *Store) DeleteProject(ctx context.Context, ownerID, id string) error {
	return s.exec(ctx, "delete project", database.ErrConflict,
		`DELETE FROM projects WHERE owner_id = $1 AND id = $2`, ownerID, id)
}

// --- Labels ---

func (s *Store) GetLabels(ctx context.Context, ownerID string) ([]models.Label, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, title, color, text_color FROM labels
		 WHERE owner_id = $1 ORDER BY lower(title), id`, ownerID)
	if err != nil {
		return nil, classify("list labels", err, database.ErrNotFound)
	}
	labels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Label, error) {
		var l models.Label
		err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Color, &l.TextColor)
		return l, err
	})
	if err != nil {
		return nil, classify("list labels", err, database.ErrNotFound)
	}
	if labels == nil {
		labels = []models.Label{}
	}
	return labels, nil
}

func (s *Store) CreateLabel(ctx context.Context, l models.Label) (*models.Label, error) {
	l.ID = database.IDOrNew(l.ID)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO labels (id, owner_id, title, color, text_color) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.OwnerID, l.Title, l.Color, l.TextColor)
	if err != nil {
		return nil, classify("create label", err, database.ErrNotFound)
	}
	return &l, nil
}

func (s *Store) UpdateLabel(ctx context.Context, l models.Label) error {
	return s.exec(ctx, "update label", database.ErrNotFound,
		`UPDATE labels SET title = $3, color = $4, text_color = $5 WHERE owner_id = $1 AND id = $2`,
		l.OwnerID, l.ID, l.Title, l.Color, l.TextColor)
}

func (s *Store) DeleteLabel(ctx context.Context, ownerID, id string) error {
	return s.exec(ctx, "delete label", database.ErrConflict,
		`DELETE FROM labels WHERE owner_id = $1 AND id = $2`, ownerID, id)
}

// --- Relations ---

func (s *Store) GetProjectLabels(ctx context.Context, ownerID string) ([]models.ProjectLabel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT project_id, label_id, owner_id FROM project_labels
		 WHERE owner_id = $1 ORDER BY project_id, label_id`, ownerID)
	if err != nil {
		return nil, classify("list project labels", err, database.ErrNotFound)
	}
	rels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ProjectLabel, error) {
		var pl models.ProjectLabel
		err := row.Scan(&pl.ProjectID, &pl.LabelID, &pl.OwnerID)
		return pl, err
	})
	if err != nil {
		return nil, classify("list project labels", err, database.ErrNotFound)
	}
	if rels == nil {
		rels = []models.ProjectLabel{}
	}
	return rels, nil
}

func (s *Store) CreateProjectLabel(ctx context.Context, pl models.ProjectLabel) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO project_labels (owner_id, project_id, label_id) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`, pl.OwnerID, pl.ProjectID, pl.LabelID)
	if err != nil {
		return classify("create project label", err, database.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteProjectLabel(ctx context.Context, ownerID, projectID, labelID string) error {
	return s.exec(ctx, "delete project label", database.ErrNotFound,
		`DELETE FROM project_labels WHERE owner_id = $1 AND project_id = $2 AND label_id = $3`,
		ownerID, projectID, labelID)
}

// exec runs a single-row write and reports ErrNotFound when nothing matched.
func (s *Store) exec(ctx context.Context, op string, refErr error, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err, refErr)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrNotFound)
	}
	return nil
}

// classify maps pgx errors onto the store error kinds.
func classify(op string, err error, refErr error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, database.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23514", "23502": // unique, check, not null
			return fmt.Errorf("%s: %w: %v", op, database.ErrConflict, err)
		case "23503": // foreign key
			return fmt.Errorf("%s: %w: %v", op, refErr, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
}
