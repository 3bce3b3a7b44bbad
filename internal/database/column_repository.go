package database

import (
	"context"
	"database/sql"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// ColumnRepo handles all column-related database operations.
type ColumnRepo struct {
	db *sql.DB
}

// GetColumns retrieves all columns of an owner ordered by position
func (r *ColumnRepo) GetColumns(ctx context.Context, ownerID string) ([]models.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, position, kind, sort_field, sort_direction
		 FROM columns WHERE owner_id = ? ORDER BY position, id`,
		ownerID)
	if err != nil {
		return nil, classify("query columns", err, ErrNotFound)
	}
	defer rows.Close()

	columns := []models.Column{}
	for rows.Next() {
		var c models.Column
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Position, &c.Kind, &c.SortField, &c.SortDirection); err != nil {
			return nil, classify("scan column", err, ErrNotFound)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate columns", err, ErrNotFound)
	}
	return columns, nil
}

// CreateColumn inserts a column, generating its ID if none is set
func (r *ColumnRepo) CreateColumn(ctx context.Context, col models.Column) (*models.Column, error) {
	col.ID = IDOrNew(col.ID)
	if col.Kind == "" {
		col.Kind = models.ColumnKindUser
	}
	if col.SortField == "" {
		col.SortField = models.DefaultSortField
	}
	if col.SortDirection == "" {
		col.SortDirection = models.DefaultSortDirection
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO columns (id, owner_id, title, position, kind, sort_field, sort_direction)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		col.ID, col.OwnerID, col.Title, col.Position, col.Kind, col.SortField, col.SortDirection)
	if err != nil {
		return nil, classify("create column", err, ErrNotFound)
	}
	return &col, nil
}

func (r *ColumnRepo) UpdateColumnTitle(ctx context.Context, ownerID, id, title string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET title = ? WHERE owner_id = ? AND id = ?`, title, ownerID, id)
	if err != nil {
		return classify("update column title", err, ErrNotFound)
	}
	return requireAffected("update column title", res)
}

func (r *ColumnRepo) UpdateColumnPosition(ctx context.Context, ownerID, id string, position int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET position = ? WHERE owner_id = ? AND id = ?`, position, ownerID, id)
	if err != nil {
		return classify("update column position", err, ErrNotFound)
	}
	return requireAffected("update column position", res)
}

func (r *ColumnRepo) UpdateColumnSort(ctx context.Context, ownerID, id string, field models.SortField, dir models.SortDirection) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE columns SET sort_field = ?, sort_direction = ? WHERE owner_id = ? AND id = ?`,
		field, dir, ownerID, id)
	if err != nil {
		return classify("update column sort", err, ErrNotFound)
	}
	return requireAffected("update column sort", res)
}

// DeleteColumn removes a column. Projects must have been moved out first.
func (r *ColumnRepo) DeleteColumn(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM columns WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return classify("delete column", err, ErrConflict)
	}
	return requireAffected("delete column", res)
}
