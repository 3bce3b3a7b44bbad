// Package mock builds the adapters for mock mode from a YAML fixture: a
// static GitHub source, a seeded in-memory store and a session.
package mock

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/database/memory"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is the on-disk mock description.
type Fixture struct {
	Auth struct {
		Token string `yaml:"token"`
		Owner string `yaml:"owner"`
	} `yaml:"auth"`
	GitHub struct {
		Projects []models.GitHubProject `yaml:"projects"`
	} `yaml:"github"`
	Database models.BoardData `yaml:"database"`
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in fixture.
func Default() *Fixture {
	f, err := Parse(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("built-in fixture: %v", err))
	}
	return f
}

// Parse decodes a fixture and fills owner IDs left blank.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.Auth.Owner == "" {
		return nil, fmt.Errorf("parse fixture: auth.owner is required")
	}
	if f.Auth.Token == "" {
		f.Auth.Token = "mock-token"
	}
	owner := f.Auth.Owner
	for i := range f.Database.Columns {
		if f.Database.Columns[i].OwnerID == "" {
			f.Database.Columns[i].OwnerID = owner
		}
		if f.Database.Columns[i].Kind == "" {
			f.Database.Columns[i].Kind = models.ColumnKindUser
		}
	}
	for i := range f.Database.Projects {
		if f.Database.Projects[i].OwnerID == "" {
			f.Database.Projects[i].OwnerID = owner
		}
	}
	for i := range f.Database.Labels {
		l := &f.Database.Labels[i]
		if l.OwnerID == "" {
			l.OwnerID = owner
		}
		if l.TextColor == "" {
			l.TextColor = models.OptimalTextColor(l.Color)
		}
	}
	for i := range f.Database.ProjectLabels {
		if f.Database.ProjectLabels[i].OwnerID == "" {
			f.Database.ProjectLabels[i].OwnerID = owner
		}
	}
	return &f, nil
}

// Source returns a GitHub source serving the fixture's projects.
func (f *Fixture) Source() *github.StaticSource {
	return github.NewStaticSource(f.GitHub.Projects)
}

// Store returns a memory store seeded with the fixture's rows.
func (f *Fixture) Store() *memory.Store {
	s := memory.New()
	s.Seed(f.Database)
	return s
}

func (f *Fixture) Session() *auth.Session {
	return auth.NewSession(f.Auth.Token, f.Auth.Owner)
}
