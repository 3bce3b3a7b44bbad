// Package github fetches the authenticated user's Projects (v2). The data is
// read-only: nothing in this package writes to GitHub.
package github

import (
	"context"
	"slices"
	"sync"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// Source yields the authoritative project set of the credential's owner.
// Implementations never retry; order of the result is unspecified.
type Source interface {
	FetchProjects(ctx context.Context, token string) ([]models.GitHubProject, error)
}

// StaticSource serves a fixed project list. It backs mock mode and tests.
type StaticSource struct {
	mu       sync.RWMutex
	projects []models.GitHubProject
	err      error
	calls    int
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(projects []models.GitHubProject) *StaticSource {
	return &StaticSource{projects: slices.Clone(projects)}
}

// FetchProjects returns a copy of the configured projects, or the configured error.
func (s *StaticSource) FetchProjects(ctx context.Context, _ string) ([]models.GitHubProject, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.projects), nil
}

// SetProjects replaces the served projects.
func (s *StaticSource) SetProjects(projects []models.GitHubProject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = slices.Clone(projects)
}

// SetError makes subsequent fetches fail with err; nil clears it.
func (s *StaticSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the number of fetches served.
func (s *StaticSource) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}
