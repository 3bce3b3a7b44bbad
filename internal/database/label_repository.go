package database

import (
	"context"
	"database/sql"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// LabelRepo handles all label-related database operations.
type LabelRepo struct {
	db *sql.DB
}

// GetLabels retrieves an owner's labels ordered by title
func (r *LabelRepo) GetLabels(ctx context.Context, ownerID string) ([]models.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, color, text_color FROM labels
		 WHERE owner_id = ? ORDER BY title COLLATE NOCASE, id`, ownerID)
	if err != nil {
		return nil, classify("query labels", err, ErrNotFound)
	}
	defer rows.Close()

	labels := []models.Label{}
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Color, &l.TextColor); err != nil {
			return nil, classify("scan label", err, ErrNotFound)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate labels", err, ErrNotFound)
	}
	return labels, nil
}

// CreateLabel inserts a label, generating its ID if none is set
func (r *LabelRepo) CreateLabel(ctx context.Context, l models.Label) (*models.Label, error) {
	l.ID = IDOrNew(l.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO labels (id, owner_id, title, color, text_color) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, l.Title, l.Color, l.TextColor)
	if err != nil {
		return nil, classify("create label", err, ErrNotFound)
	}
	return &l, nil
}

// UpdateLabel overwrites title and colors of an existing label
func (r *LabelRepo) UpdateLabel(ctx context.Context, l models.Label) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE labels SET title = ?, color = ?, text_color = ? WHERE owner_id = ? AND id = ?`,
		l.Title, l.Color, l.TextColor, l.OwnerID, l.ID)
	if err != nil {
		return classify("update label", err, ErrNotFound)
	}
	return requireAffected("update label", res)
}

// DeleteLabel removes a label; relations cascade.
func (r *LabelRepo) DeleteLabel(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM labels WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return classify("delete label", err, ErrConflict)
	}
	return requireAffected("delete label", res)
}
