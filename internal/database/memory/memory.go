// Package memory is an in-process DataStore. It backs mock mode and tests and
// enforces the same constraints as the SQL adapters.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

type projectKey struct{ owner, id string }

type relationKey struct{ owner, project, label string }

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu        sync.RWMutex
	columns   map[string]models.Column
	projects  map[projectKey]models.Project
	labels    map[string]models.Label
	relations map[relationKey]models.ProjectLabel
}

var _ database.DataStore = (*Store)(nil)

func New() *Store {
	return &Store{
		columns:   make(map[string]models.Column),
		projects:  make(map[projectKey]models.Project),
		labels:    make(map[string]models.Label),
		relations: make(map[relationKey]models.ProjectLabel),
	}
}

// Seed loads records verbatim, bypassing constraint checks. Used by mock fixtures.
func (s *Store) Seed(data models.BoardData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range data.Columns {
		s.columns[c.ID] = c
	}
	for _, p := range data.Projects {
		s.projects[projectKey{p.OwnerID, p.ID}] = p
	}
	for _, l := range data.Labels {
		s.labels[l.ID] = l
	}
	for _, r := range data.ProjectLabels {
		s.relations[relationKey{r.OwnerID, r.ProjectID, r.LabelID}] = r
	}
}

// ============================================================================
// COLUMNS
// ============================================================================

func (s *Store) GetColumns(ctx context.Context, ownerID string) ([]models.Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("query columns", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Column{}
	for _, c := range s.columns {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Column) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) CreateColumn(ctx context.Context, col models.Column) (*models.Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create column", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

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
	if _, ok := s.columns[col.ID]; ok {
		return nil, fmt.Errorf("create column: %w: id %s", database.ErrConflict, col.ID)
	}
	for _, c := range s.columns {
		if c.OwnerID != col.OwnerID {
			continue
		}
		if c.Title == col.Title {
			return nil, fmt.Errorf("create column: %w: title %q", database.ErrConflict, col.Title)
		}
		if col.Kind != models.ColumnKindUser && c.Kind == col.Kind {
			return nil, fmt.Errorf("create column: %w: kind %s", database.ErrConflict, col.Kind)
		}
	}
	s.columns[col.ID] = col
	return &col, nil
}

func (s *Store) UpdateColumnTitle(ctx context.Context, ownerID, id, title string) error {
	return s.updateColumn(ctx, "update column title", ownerID, id, func(c *models.Column) error {
		for _, other := range s.columns {
			if other.OwnerID == ownerID && other.ID != id && other.Title == title {
				return fmt.Errorf("update column title: %w: title %q", database.ErrConflict, title)
			}
		}
		c.Title = title
		return nil
	})
}

func (s *Store) UpdateColumnPosition(ctx context.Context, ownerID, id string, position int) error {
	return s.updateColumn(ctx, "update column position", ownerID, id, func(c *models.Column) error {
		c.Position = position
		return nil
	})
}

func (s *Store) UpdateColumnSort(ctx context.Context, ownerID, id string, field models.SortField, dir models.SortDirection) error {
	return s.updateColumn(ctx, "update column sort", ownerID, id, func(c *models.Column) error {
		c.SortField = field
		c.SortDirection = dir
		return nil
	})
}

func (s *Store) updateColumn(ctx context.Context, op, ownerID, id string, fn func(*models.Column) error) error {
	if err := ctx.Err(); err != nil {
		return unavailable(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.columns[id]
	if !ok || c.OwnerID != ownerID {
		return fmt.Errorf("%s: %w: column %s", op, database.ErrNotFound, id)
	}
	if err := fn(&c); err != nil {
		return err
	}
	s.columns[id] = c
	return nil
}

func (s *Store) DeleteColumn(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete column", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.columns[id]
	if !ok || c.OwnerID != ownerID {
		return fmt.Errorf("delete column: %w: column %s", database.ErrNotFound, id)
	}
	for _, p := range s.projects {
		if p.ColumnID == id {
			return fmt.Errorf("delete column: %w: project %s still in column", database.ErrConflict, p.ID)
		}
	}
	delete(s.columns, id)
	return nil
}

// ============================================================================
// PROJECTS
// ============================================================================

func (s *Store) GetProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("query projects", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Project{}
	for k, p := range s.projects {
		if k.owner == ownerID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Project) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create project", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := projectKey{p.OwnerID, p.ID}
	if _, ok := s.projects[k]; ok {
		return nil, fmt.Errorf("create project: %w: project %s", database.ErrConflict, p.ID)
	}
	if _, ok := s.columns[p.ColumnID]; !ok {
		return nil, fmt.Errorf("create project: %w: column %s", database.ErrNotFound, p.ColumnID)
	}
	s.projects[k] = p
	return &p, nil
}

func (s *Store) UpdateProjectColumn(ctx context.Context, ownerID, id, columnID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("update project column", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := projectKey{ownerID, id}
	p, ok := s.projects[k]
	if !ok {
		return fmt.Errorf("update project column: %w: project %s", database.ErrNotFound, id)
	}
	if _, ok := s.columns[columnID]; !ok {
		return fmt.Errorf("update project column: %w: column %s", database.ErrNotFound, columnID)
	}
	p.ColumnID = columnID
	s.projects[k] = p
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete project", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := projectKey{ownerID, id}
	if _, ok := s.projects[k]; !ok {
		return fmt.Errorf("delete project: %w: project %s", database.ErrNotFound, id)
	}
	delete(s.projects, k)
	for rk := range s.relations {
		if rk.owner == ownerID && rk.project == id {
			delete(s.relations, rk)
		}
	}
	return nil
}

// ============================================================================
// LABELS
// ============================================================================

func (s *Store) GetLabels(ctx context.Context, ownerID string) ([]models.Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("query labels", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Label{}
	for _, l := range s.labels {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b models.Label) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}

func (s *Store) CreateLabel(ctx context.Context, l models.Label) (*models.Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create label", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = database.IDOrNew(l.ID)
	if _, ok := s.labels[l.ID]; ok {
		return nil, fmt.Errorf("create label: %w: id %s", database.ErrConflict, l.ID)
	}
	if err := s.checkLabelTitle("create label", l); err != nil {
		return nil, err
	}
	s.labels[l.ID] = l
	return &l, nil
}

func (s *Store) UpdateLabel(ctx context.Context, l models.Label) error {
	if err := ctx.Err(); err != nil {
		return unavailable("update label", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.labels[l.ID]
	if !ok || existing.OwnerID != l.OwnerID {
		return fmt.Errorf("update label: %w: label %s", database.ErrNotFound, l.ID)
	}
	if err := s.checkLabelTitle("update label", l); err != nil {
		return err
	}
	s.labels[l.ID] = l
	return nil
}

func (s *Store) checkLabelTitle(op string, l models.Label) error {
	for _, other := range s.labels {
		if other.OwnerID == l.OwnerID && other.ID != l.ID && strings.EqualFold(other.Title, l.Title) {
			return fmt.Errorf("%s: %w: title %q", op, database.ErrConflict, l.Title)
		}
	}
	return nil
}

func (s *Store) DeleteLabel(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete label", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labels[id]
	if !ok || l.OwnerID != ownerID {
		return fmt.Errorf("delete label: %w: label %s", database.ErrNotFound, id)
	}
	delete(s.labels, id)
	for rk := range s.relations {
		if rk.label == id {
			delete(s.relations, rk)
		}
	}
	return nil
}

// ============================================================================
// RELATIONS
// ============================================================================

func (s *Store) GetProjectLabels(ctx context.Context, ownerID string) ([]models.ProjectLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("query project labels", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ProjectLabel{}
	for k, r := range s.relations {
		if k.owner == ownerID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.ProjectLabel) int {
		return cmp.Or(cmp.Compare(a.ProjectID, b.ProjectID), cmp.Compare(a.LabelID, b.LabelID))
	})
	return out, nil
}

func (s *Store) CreateProjectLabel(ctx context.Context, pl models.ProjectLabel) error {
	if err := ctx.Err(); err != nil {
		return unavailable("create project label", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectKey{pl.OwnerID, pl.ProjectID}]; !ok {
		return fmt.Errorf("create project label: %w: project %s", database.ErrNotFound, pl.ProjectID)
	}
	if _, ok := s.labels[pl.LabelID]; !ok {
		return fmt.Errorf("create project label: %w: label %s", database.ErrNotFound, pl.LabelID)
	}
	s.relations[relationKey{pl.OwnerID, pl.ProjectID, pl.LabelID}] = pl
	return nil
}

func (s *Store) DeleteProjectLabel(ctx context.Context, ownerID, projectID, labelID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete project label", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := relationKey{ownerID, projectID, labelID}
	if _, ok := s.relations[k]; !ok {
		return fmt.Errorf("delete project label: %w: %s/%s", database.ErrNotFound, projectID, labelID)
	}
	delete(s.relations, k)
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, database.ErrUnavailable, err)
}
