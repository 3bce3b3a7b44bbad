// Package project implements the user-driven project operations. Creating
// and deleting project records is left to reconciliation.
package project

import (
	"context"
	"errors"
	"slices"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
)

// Service defines all project-related business operations
type Service interface {
	// Read operations
	Project(id string) (models.Project, bool)

	// Write operations
	MoveProjectToColumn(ctx context.Context, projectID, columnID string) error
}

type service struct {
	store  database.ProjectRepository
	cache  *cache.Cache
	runner *mutation.Runner
	owner  auth.Identity
}

// NewService creates a new project service
func NewService(store database.ProjectRepository, c *cache.Cache, runner *mutation.Runner, owner auth.Identity) Service {
	return &service{store: store, cache: c, runner: runner, owner: owner}
}

func (s *service) Project(id string) (models.Project, bool) {
	projects := s.cache.Projects()
	i := slices.IndexFunc(projects, func(p models.Project) bool { return p.ID == id })
	if i < 0 {
		return models.Project{}, false
	}
	return projects[i], true
}

// moveAttempts bounds how often a move restarts when the project changed
// column between reading its source and taking the locks.
const moveAttempts = 3

// MoveProjectToColumn assigns the project to any column, system ones
// included. Moving to the current column does nothing.
func (s *service) MoveProjectToColumn(ctx context.Context, projectID, columnID string) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		p, ok := s.Project(projectID)
		if ok && p.ColumnID == columnID {
			return nil
		}
		err := s.runner.Run(ctx, s.moveOp(ownerID, projectID, p.ColumnID, columnID))
		if errors.Is(err, errSourceChanged) && attempt < moveAttempts {
			continue
		}
		return err
	}
}

// moveOp holds both columns shared so neither can be deleted mid-move.
func (s *service) moveOp(ownerID, projectID, fromID, columnID string) mutation.Op {
	shared := []string{mutation.ColumnKey(columnID)}
	if fromID != "" {
		shared = append(shared, mutation.ColumnKey(fromID))
	}
	return mutation.Op{
		Name:       "move_project",
		Keys:       []string{mutation.ProjectKey(projectID)},
		SharedKeys: shared,
		Validate: func(d *cache.Data) error {
			i := slices.IndexFunc(d.Projects, func(p models.Project) bool { return p.ID == projectID })
			if i < 0 {
				return ErrProjectNotFound
			}
			if d.Projects[i].ColumnID != fromID {
				return errSourceChanged
			}
			if _, ok := models.FindColumn(d.Columns, columnID); !ok {
				return ErrColumnNotFound
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			for i := range d.Projects {
				if d.Projects[i].ID == projectID {
					d.Projects[i].ColumnID = columnID
				}
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.UpdateProjectColumn(ctx, ownerID, projectID, columnID)
		},
	}
}
