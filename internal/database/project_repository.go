package database

import (
	"context"
	"database/sql"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// ProjectRepo handles the local project records.
type ProjectRepo struct {
	db *sql.DB
}

func (r *ProjectRepo) GetProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, column_id FROM projects WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, classify("query projects", err, ErrNotFound)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.ColumnID); err != nil {
			return nil, classify("scan project", err, ErrNotFound)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate projects", err, ErrNotFound)
	}
	return projects, nil
}

// CreateProject inserts a local record for a GitHub project. The column must exist.
func (r *ProjectRepo) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, column_id) VALUES (?, ?, ?)`,
		p.ID, p.OwnerID, p.ColumnID)
	if err != nil {
		return nil, classify("create project", err, ErrNotFound)
	}
	return &p, nil
}

func (r *ProjectRepo) UpdateProjectColumn(ctx context.Context, ownerID, id, columnID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET column_id = ? WHERE owner_id = ? AND id = ?`, columnID, ownerID, id)
	if err != nil {
		return classify("update project column", err, ErrNotFound)
	}
	return requireAffected("update project column", res)
}

// DeleteProject removes the record; label relations cascade.
func (r *ProjectRepo) DeleteProject(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return classify("delete project", err, ErrConflict)
	}
	return requireAffected("delete project", res)
}
