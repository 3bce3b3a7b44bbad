package database

import (
	"context"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// ColumnRepository covers column CRUD. Every call is scoped to one owner and
// touches exactly one record, so bulk effects (position shifts) are issued by
// callers as independent operations with independently observable failures.
type ColumnRepository interface {
	// GetColumns returns the owner's columns ordered by position
	GetColumns(ctx context.Context, ownerID string) ([]models.Column, error)
	// CreateColumn inserts col, assigning an ID when col.ID is empty
	CreateColumn(ctx context.Context, col models.Column) (*models.Column, error)
	UpdateColumnTitle(ctx context.Context, ownerID, id, title string) error
	UpdateColumnPosition(ctx context.Context, ownerID, id string, position int) error
	UpdateColumnSort(ctx context.Context, ownerID, id string, field models.SortField, dir models.SortDirection) error
	// DeleteColumn fails with ErrConflict while projects still reference the column
	DeleteColumn(ctx context.Context, ownerID, id string) error
}

// ProjectRepository covers the locally-owned project records.
type ProjectRepository interface {
	GetProjects(ctx context.Context, ownerID string) ([]models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (*models.Project, error)
	UpdateProjectColumn(ctx context.Context, ownerID, id, columnID string) error
	// DeleteProject also removes every label relation of the project
	DeleteProject(ctx context.Context, ownerID, id string) error
}

// LabelRepository covers label CRUD.
type LabelRepository interface {
	// GetLabels returns the owner's labels ordered by title
	GetLabels(ctx context.Context, ownerID string) ([]models.Label, error)
	CreateLabel(ctx context.Context, l models.Label) (*models.Label, error)
	UpdateLabel(ctx context.Context, l models.Label) error
	// DeleteLabel also removes every relation referencing the label
	DeleteLabel(ctx context.Context, ownerID, id string) error
}

// RelationRepository covers project to label edges.
type RelationRepository interface {
	GetProjectLabels(ctx context.Context, ownerID string) ([]models.ProjectLabel, error)
	// CreateProjectLabel is idempotent
	CreateProjectLabel(ctx context.Context, pl models.ProjectLabel) error
	DeleteProjectLabel(ctx context.Context, ownerID, projectID, labelID string) error
}

// DataStore is the full persistent store contract. It is composed of the
// per-entity interfaces so consumers can depend on the smallest one they need.
type DataStore interface {
	ColumnRepository
	ProjectRepository
	LabelRepository
	RelationRepository
}
