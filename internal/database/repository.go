package database

import "database/sql"

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*ColumnRepo
	*ProjectRepo
	*LabelRepo
	*RelationRepo
}

var _ DataStore = (*Repository)(nil)

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ColumnRepo:   &ColumnRepo{db: db},
		ProjectRepo:  &ProjectRepo{db: db},
		LabelRepo:    &LabelRepo{db: db},
		RelationRepo: &RelationRepo{db: db},
	}
}
