// Package column implements the column operations of the board.
package column

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
)

// Service defines all column-related business operations
type Service interface {
	// Read operations
	Columns() []models.Column
	CanMoveLeft(id string) bool
	CanMoveRight(id string) bool

	// Write operations
	CreateColumn(ctx context.Context, req CreateColumnRequest) (*models.Column, error)
	DeleteColumn(ctx context.Context, id string) error
	RenameColumn(ctx context.Context, id, title string) error
	MoveColumnLeft(ctx context.Context, id string) error
	MoveColumnRight(ctx context.Context, id string) error
	UpdateColumnSort(ctx context.Context, id string, field models.SortField, dir models.SortDirection) error
}

// CreateColumnRequest encapsulates data for creating a column
type CreateColumnRequest struct {
	Title   string
	AfterID string // Optional: column to insert after ("" = just before Closed)
}

// Store is the part of the persistent store column operations write to.
type Store interface {
	database.ColumnRepository
	database.ProjectRepository
}

type service struct {
	store  Store
	cache  *cache.Cache
	runner *mutation.Runner
	owner  auth.Identity
}

// NewService creates a new column service
func NewService(store Store, c *cache.Cache, runner *mutation.Runner, owner auth.Identity) Service {
	return &service{store: store, cache: c, runner: runner, owner: owner}
}

func (s *service) Columns() []models.Column {
	return s.cache.Columns()
}

// CreateColumn inserts a user column right after req.AfterID. Columns to the
// right shift by one first; the new column shows up under a temporary ID
// until the store assigns the real one.
func (s *service) CreateColumn(ctx context.Context, req CreateColumnRequest) (*models.Column, error) {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return nil, err
	}
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}

	tempID := models.TempIDPrefix + uuid.NewString()
	var (
		newCol  models.Column
		shifted []models.Column
		created *models.Column
	)
	op := mutation.Op{
		Name: "create_column",
		// the temp ID stays locked until the real ID replaces it
		Keys: []string{mutation.ColumnsKey, mutation.ColumnKey(tempID)},
		Validate: func(d *cache.Data) error {
			return checkUniqueTitle(d.Columns, title, "")
		},
		Apply: func(d *cache.Data) error {
			pos, err := insertPosition(d.Columns, req.AfterID)
			if err != nil {
				return err
			}
			for i := range d.Columns {
				if d.Columns[i].Position >= pos {
					d.Columns[i].Position++
					shifted = append(shifted, d.Columns[i])
				}
			}
			newCol = models.Column{
				ID:            tempID,
				OwnerID:       ownerID,
				Title:         title,
				Position:      pos,
				Kind:          models.ColumnKindUser,
				SortField:     models.DefaultSortField,
				SortDirection: models.DefaultSortDirection,
			}
			d.Columns = append(d.Columns, newCol)
			sortByPosition(d.Columns)
			return nil
		},
		Persist: func(ctx context.Context) error {
			if err := s.setPositions(ctx, ownerID, shifted); err != nil {
				return err
			}
			c := newCol
			c.ID = ""
			created, err = s.store.CreateColumn(ctx, c)
			return err
		},
		Commit: func(d *cache.Data) error {
			for i := range d.Columns {
				if d.Columns[i].ID == tempID {
					d.Columns[i].ID = created.ID
				}
			}
			return nil
		},
	}
	if err := s.runner.Run(ctx, op); err != nil {
		return nil, err
	}
	return created, nil
}

// insertPosition returns where a column inserted after afterID lands.
func insertPosition(columns []models.Column, afterID string) (int, error) {
	if afterID == "" {
		if closed, ok := models.FindColumnByKind(columns, models.ColumnKindClosed); ok {
			return closed.Position, nil
		}
		return len(columns), nil
	}
	after, ok := models.FindColumn(columns, afterID)
	if !ok {
		return 0, ErrColumnNotFound
	}
	if after.Kind == models.ColumnKindClosed {
		return 0, ErrInsertAfterClosed
	}
	return after.Position + 1, nil
}

// DeleteColumn moves the column's projects to the unassigned column, removes
// the column and closes the position gap.
func (s *service) DeleteColumn(ctx context.Context, id string) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}

	var (
		unassignedID string
		moved        []string
		shifted      []models.Column
	)
	op := mutation.Op{
		Name: "delete_column",
		Keys: []string{mutation.ColumnsKey, mutation.ColumnKey(id)},
		Validate: func(d *cache.Data) error {
			col, ok := models.FindColumn(d.Columns, id)
			if !ok {
				return ErrColumnNotFound
			}
			if col.IsSystem() {
				return ErrSystemColumn
			}
			if _, ok := models.FindColumnByKind(d.Columns, models.ColumnKindUnassigned); !ok {
				return ErrUnassignedMissing
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			col, _ := models.FindColumn(d.Columns, id)
			unassigned, _ := models.FindColumnByKind(d.Columns, models.ColumnKindUnassigned)
			unassignedID = unassigned.ID
			for i := range d.Projects {
				if d.Projects[i].ColumnID == id {
					d.Projects[i].ColumnID = unassignedID
					moved = append(moved, d.Projects[i].ID)
				}
			}
			d.Columns = slices.DeleteFunc(d.Columns, func(c models.Column) bool { return c.ID == id })
			for i := range d.Columns {
				if d.Columns[i].Position > col.Position {
					d.Columns[i].Position--
					shifted = append(shifted, d.Columns[i])
				}
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			var g errgroup.Group
			for _, pid := range moved {
				g.Go(func() error {
					return s.store.UpdateProjectColumn(ctx, ownerID, pid, unassignedID)
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("reassign projects: %w", err)
			}
			if err := s.store.DeleteColumn(ctx, ownerID, id); err != nil {
				return err
			}
			return s.setPositions(ctx, ownerID, shifted)
		},
	}
	return s.runner.Run(ctx, op)
}

func (s *service) RenameColumn(ctx context.Context, id, title string) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	title, err = validateTitle(title)
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, mutation.Op{
		Name: "rename_column",
		Keys: []string{mutation.ColumnsKey},
		Validate: func(d *cache.Data) error {
			if _, ok := models.FindColumn(d.Columns, id); !ok {
				return ErrColumnNotFound
			}
			return checkUniqueTitle(d.Columns, title, id)
		},
		Apply: func(d *cache.Data) error {
			for i := range d.Columns {
				if d.Columns[i].ID == id {
					d.Columns[i].Title = title
				}
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.UpdateColumnTitle(ctx, ownerID, id, title)
		},
	})
}

func (s *service) MoveColumnLeft(ctx context.Context, id string) error {
	return s.move(ctx, "move_column_left", id, -1)
}

func (s *service) MoveColumnRight(ctx context.Context, id string) error {
	return s.move(ctx, "move_column_right", id, 1)
}

// move swaps the column with its neighbour in direction dir.
func (s *service) move(ctx context.Context, name, id string, dir int) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	var a, b models.Column
	return s.runner.Run(ctx, mutation.Op{
		Name: name,
		Keys: []string{mutation.ColumnsKey},
		Validate: func(d *cache.Data) error {
			_, err := neighbour(d.Columns, id, dir)
			return err
		},
		Apply: func(d *cache.Data) error {
			other, _ := neighbour(d.Columns, id, dir)
			for i := range d.Columns {
				switch d.Columns[i].ID {
				case id:
					d.Columns[i].Position += dir
					a = d.Columns[i]
				case other.ID:
					d.Columns[i].Position -= dir
					b = d.Columns[i]
				}
			}
			sortByPosition(d.Columns)
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.setPositions(ctx, ownerID, []models.Column{a, b})
		},
	})
}

// neighbour returns the column a move in direction dir would swap with.
func neighbour(columns []models.Column, id string, dir int) (models.Column, error) {
	sorted := slices.Clone(columns)
	sortByPosition(sorted)
	idx := slices.IndexFunc(sorted, func(c models.Column) bool { return c.ID == id })
	if idx < 0 {
		return models.Column{}, ErrColumnNotFound
	}
	if sorted[idx].IsSystem() {
		return models.Column{}, ErrSystemColumn
	}
	boundary := models.ErrAlreadyFirstColumn
	if dir > 0 {
		boundary = models.ErrAlreadyLastColumn
	}
	next := idx + dir
	if next < 0 || next >= len(sorted) || sorted[next].IsSystem() {
		return models.Column{}, boundary
	}
	return sorted[next], nil
}

func (s *service) CanMoveLeft(id string) bool {
	_, err := neighbour(s.cache.Columns(), id, -1)
	return err == nil
}

func (s *service) CanMoveRight(id string) bool {
	_, err := neighbour(s.cache.Columns(), id, 1)
	return err == nil
}

func (s *service) UpdateColumnSort(ctx context.Context, id string, field models.SortField, dir models.SortDirection) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	if !field.Valid() || !dir.Valid() {
		return ErrInvalidSort
	}
	return s.runner.Run(ctx, mutation.Op{
		Name: "update_column_sort",
		Keys: []string{mutation.ColumnsKey},
		Validate: func(d *cache.Data) error {
			if _, ok := models.FindColumn(d.Columns, id); !ok {
				return ErrColumnNotFound
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			for i := range d.Columns {
				if d.Columns[i].ID == id {
					d.Columns[i].SortField = field
					d.Columns[i].SortDirection = dir
				}
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.UpdateColumnSort(ctx, ownerID, id, field, dir)
		},
	})
}

// setPositions writes each column's position as an independent update.
func (s *service) setPositions(ctx context.Context, ownerID string, columns []models.Column) error {
	var g errgroup.Group
	for _, c := range columns {
		g.Go(func() error {
			return s.store.UpdateColumnPosition(ctx, ownerID, c.ID, c.Position)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("update positions: %w", err)
	}
	return nil
}

// ============================================================================
// VALIDATION HELPERS
// ============================================================================

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// checkUniqueTitle rejects title if a column other than exceptID has it.
func checkUniqueTitle(columns []models.Column, title, exceptID string) error {
	for _, c := range columns {
		if c.ID != exceptID && c.Title == title {
			return ErrDuplicateTitle
		}
	}
	return nil
}

func sortByPosition(columns []models.Column) {
	slices.SortStableFunc(columns, func(a, b models.Column) int {
		return cmp.Compare(a.Position, b.Position)
	})
}
