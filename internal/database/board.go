package database

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// LoadBoard reads all four collections of an owner concurrently.
func LoadBoard(ctx context.Context, store DataStore, ownerID string) (models.BoardData, error) {
	var data models.BoardData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cols, err := store.GetColumns(gctx, ownerID)
		data.Columns = cols
		return err
	})
	g.Go(func() error {
		projects, err := store.GetProjects(gctx, ownerID)
		data.Projects = projects
		return err
	})
	g.Go(func() error {
		labels, err := store.GetLabels(gctx, ownerID)
		data.Labels = labels
		return err
	})
	g.Go(func() error {
		rels, err := store.GetProjectLabels(gctx, ownerID)
		data.ProjectLabels = rels
		return err
	})

	if err := g.Wait(); err != nil {
		return models.BoardData{}, err
	}
	return data, nil
}
