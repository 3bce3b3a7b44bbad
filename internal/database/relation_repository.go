package database

import (
	"context"
	"database/sql"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// RelationRepo handles project to label edges.
type RelationRepo struct {
	db *sql.DB
}

func (r *RelationRepo) GetProjectLabels(ctx context.Context, ownerID string) ([]models.ProjectLabel, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT project_id, label_id, owner_id FROM project_labels
		 WHERE owner_id = ? ORDER BY project_id, label_id`, ownerID)
	if err != nil {
		return nil, classify("query project labels", err, ErrNotFound)
	}
	defer rows.Close()

	rels := []models.ProjectLabel{}
	for rows.Next() {
		var pl models.ProjectLabel
		if err := rows.Scan(&pl.ProjectID, &pl.LabelID, &pl.OwnerID); err != nil {
			return nil, classify("scan project label", err, ErrNotFound)
		}
		rels = append(rels, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate project labels", err, ErrNotFound)
	}
	return rels, nil
}

// CreateProjectLabel relates a project to a label. Relating twice is a no-op.
func (r *RelationRepo) CreateProjectLabel(ctx context.Context, pl models.ProjectLabel) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_labels (owner_id, project_id, label_id) VALUES (?, ?, ?)
		 ON CONFLICT (owner_id, project_id, label_id) DO NOTHING`,
		pl.OwnerID, pl.ProjectID, pl.LabelID)
	return classify("create project label", err, ErrNotFound)
}

func (r *RelationRepo) DeleteProjectLabel(ctx context.Context, ownerID, projectID, labelID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM project_labels WHERE owner_id = ? AND project_id = ? AND label_id = ?`,
		ownerID, projectID, labelID)
	if err != nil {
		return classify("delete project label", err, ErrNotFound)
	}
	return requireAffected("delete project label", res)
}
