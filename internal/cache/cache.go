// Package cache holds the last-known-good merged board state for synchronous
// reads. All writes go through the mutation runner or the wholesale replace
// path used by reconciliation and reloads.
package cache

import (
	"errors"
	"slices"
	"sync"

	"github.com/weibeld/github-projects-dashboard/internal/events"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// ErrNotLoaded is returned by Mutate before the first Init.
var ErrNotLoaded = errors.New("cache not loaded")

// Data is one immutable view of the cache.
type Data struct {
	GitHub []models.GitHubProject
	models.BoardData
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	return Data{
		GitHub:    slices.Clone(d.GitHub),
		BoardData: d.BoardData.Clone(),
	}
}

// Cache is the single owner of the in-memory state. Readers get copies;
// Mutate applies a patch atomically on a private copy and swaps it in.
type Cache struct {
	mu        sync.RWMutex
	data      Data
	loaded    bool
	gen       uint64
	publisher events.EventPublisher
}

// New creates an empty cache. publisher may be nil.
func New(publisher events.EventPublisher) *Cache {
	return &Cache{publisher: publisher}
}

// Init populates the cache from a reconciled load.
func (c *Cache) Init(github []models.GitHubProject, board models.BoardData) {
	c.mu.Lock()
	c.data = Data{GitHub: slices.Clone(github), BoardData: board.Clone()}
	c.loaded = true
	c.gen++
	c.mu.Unlock()
	c.publish(events.EventCacheLoaded, "init")
}

// Replace swaps all four local collections, keeping the GitHub projects.
func (c *Cache) Replace(source string, board models.BoardData) {
	c.mu.Lock()
	c.data.BoardData = board.Clone()
	c.loaded = true
	c.gen++
	c.mu.Unlock()
	c.publish(events.EventCacheLoaded, source)
}

// Clear empties the cache completely.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = Data{}
	c.loaded = false
	c.gen++
	c.mu.Unlock()
	c.publish(events.EventCacheCleared, "clear")
}

func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Generation counts wholesale writes (Init, Replace, Clear). A patch made
// under an older generation may have been overwritten by a store read.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Snapshot returns a deep copy of the current state.
func (c *Cache) Snapshot() Data {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Clone()
}

// Mutate runs fn against a copy of the state. If fn succeeds the copy
// replaces the state and subscribers are notified; otherwise nothing changes.
func (c *Cache) Mutate(source string, fn func(*Data) error) error {
	_, err := c.Patch(source, fn)
	return err
}

// Patch is Mutate that also returns the generation the patch landed on.
func (c *Cache) Patch(source string, fn func(*Data) error) (uint64, error) {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return 0, ErrNotLoaded
	}
	next := c.data.Clone()
	if err := fn(&next); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	c.data = next
	gen := c.gen
	c.mu.Unlock()
	c.publish(events.EventCacheMutated, source)
	return gen, nil
}

func (c *Cache) publish(t events.EventType, source string) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(events.Event{Type: t, Source: source})
}

// ============================================================================
// PER-COLLECTION ACCESSORS
// ============================================================================

func (c *Cache) GitHubProjects() []models.GitHubProject {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.GitHub)
}

func (c *Cache) Columns() []models.Column {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Columns)
}

func (c *Cache) Projects() []models.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Projects)
}

func (c *Cache) Labels() []models.Label {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Labels)
}

func (c *Cache) ProjectLabels() []models.ProjectLabel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.ProjectLabels)
}

func (c *Cache) SetGitHubProjects(projects []models.GitHubProject) {
	c.set("set_github", func(d *Data) { d.GitHub = slices.Clone(projects) })
}

func (c *Cache) SetColumns(columns []models.Column) {
	c.set("set_columns", func(d *Data) { d.Columns = slices.Clone(columns) })
}

func (c *Cache) SetProjects(projects []models.Project) {
	c.set("set_projects", func(d *Data) { d.Projects = slices.Clone(projects) })
}

func (c *Cache) SetLabels(labels []models.Label) {
	c.set("set_labels", func(d *Data) { d.Labels = slices.Clone(labels) })
}

func (c *Cache) SetProjectLabels(rels []models.ProjectLabel) {
	c.set("set_project_labels", func(d *Data) { d.ProjectLabels = slices.Clone(rels) })
}

func (c *Cache) set(source string, fn func(*Data)) {
	c.mu.Lock()
	fn(&c.data)
	c.mu.Unlock()
	c.publish(events.EventCacheMutated, source)
}
