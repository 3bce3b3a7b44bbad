// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// Store operation names understood by FaultyStore
const (
	OpGetColumns           = "GetColumns"
	OpCreateColumn         = "CreateColumn"
	OpUpdateColumnTitle    = "UpdateColumnTitle"
	OpUpdateColumnPosition = "UpdateColumnPosition"
	OpUpdateColumnSort     = "UpdateColumnSort"
	OpDeleteColumn         = "DeleteColumn"
	OpGetProjects          = "GetProjects"
	OpCreateProject        = "CreateProject"
	OpUpdateProjectColumn  = "UpdateProjectColumn"
	OpDeleteProject        = "DeleteProject"
	OpGetLabels            = "GetLabels"
	OpCreateLabel          = "CreateLabel"
	OpUpdateLabel          = "UpdateLabel"
	OpDeleteLabel          = "DeleteLabel"
	OpGetProjectLabels     = "GetProjectLabels"
	OpCreateProjectLabel   = "CreateProjectLabel"
	OpDeleteProjectLabel   = "DeleteProjectLabel"
)

var readOps = map[string]bool{
	OpGetColumns: true, OpGetProjects: true, OpGetLabels: true, OpGetProjectLabels: true,
}

type faultKey struct{ op, id string }

type nthFault struct {
	left int
	err  error
}

type gate struct {
	entered chan struct{}
	release chan struct{}
}

// FaultyStore wraps a DataStore and can fail or pause chosen operations.
// The id used for matching is the record the call addresses: the project
// for project and relation calls, the title when creating a column or
// label, and the column or label ID otherwise.
type FaultyStore struct {
	database.DataStore

	mu     sync.Mutex
	faults map[faultKey]error
	nth    map[string]*nthFault
	gates  map[string]*gate
	calls  map[string]int
	writes int
}

var _ database.DataStore = (*FaultyStore)(nil)

func NewFaultyStore(inner database.DataStore) *FaultyStore {
	return &FaultyStore{
		DataStore: inner,
		faults:    make(map[faultKey]error),
		nth:       make(map[string]*nthFault),
		gates:     make(map[string]*gate),
		calls:     make(map[string]int),
	}
}

// FailOn makes every call to op fail with err until Reset.
func (f *FaultyStore) FailOn(op string, err error) {
	f.FailOnID(op, "", err)
}

// FailOnID makes calls to op addressing id fail with err. An empty id matches any record.
func (f *FaultyStore) FailOnID(op, id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[faultKey{op, id}] = err
}

// FailNth makes only the nth call to op from now on fail with err.
func (f *FaultyStore) FailNth(op string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nth[op] = &nthFault{left: n, err: err}
}

// Block pauses the next call to op. entered is closed once the call is
// paused; the call proceeds after release is invoked.
func (f *FaultyStore) Block(op string) (entered <-chan struct{}, release func()) {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[op] = g
	f.mu.Unlock()
	var once sync.Once
	return g.entered, func() { once.Do(func() { close(g.release) }) }
}

// Reset clears all faults and counters.
func (f *FaultyStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = make(map[faultKey]error)
	f.nth = make(map[string]*nthFault)
	f.calls = make(map[string]int)
	f.writes = 0
}

// Calls returns how often op was invoked.
func (f *FaultyStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Writes returns the number of write calls issued, failed ones included.
func (f *FaultyStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FaultyStore) before(ctx context.Context, op, id string) error {
	f.mu.Lock()
	f.calls[op]++
	if !readOps[op] {
		f.writes++
	}
	g := f.gates[op]
	delete(f.gates, op)
	err, ok := f.faults[faultKey{op, id}]
	if !ok {
		err = f.faults[faultKey{op, ""}]
	}
	if nf := f.nth[op]; nf != nil {
		nf.left--
		if nf.left == 0 {
			err = nf.err
			delete(f.nth, op)
		}
	}
	f.mu.Unlock()

	if g != nil {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *FaultyStore) GetColumns(ctx context.Context, ownerID string) ([]models.Column, error) {
	if err := f.before(ctx, OpGetColumns, ""); err != nil {
		return nil, err
	}
	return f.DataStore.GetColumns(ctx, ownerID)
}

func (f *FaultyStore) CreateColumn(ctx context.Context, col models.Column) (*models.Column, error) {
	if err := f.before(ctx, OpCreateColumn, col.Title); err != nil {
		return nil, err
	}
	return f.DataStore.CreateColumn(ctx, col)
}

func (f *FaultyStore) UpdateColumnTitle(ctx context.Context, ownerID, id, title string) error {
	if err := f.before(ctx, OpUpdateColumnTitle, id); err != nil {
		return err
	}
	return f.DataStore.UpdateColumnTitle(ctx, ownerID, id, title)
}

func (f *FaultyStore) UpdateColumnPosition(ctx context.Context, ownerID, id string, position int) error {
	if err := f.before(ctx, OpUpdateColumnPosition, id); err != nil {
		return err
	}
	return f.DataStore.UpdateColumnPosition(ctx, ownerID, id, position)
}

func (f *FaultyStore) UpdateColumnSort(ctx context.Context, ownerID, id string, field models.SortField, dir models.SortDirection) error {
	if err := f.before(ctx, OpUpdateColumnSort, id); err != nil {
		return err
	}
	return f.DataStore.UpdateColumnSort(ctx, ownerID, id, field, dir)
}

func (f *FaultyStore) DeleteColumn(ctx context.Context, ownerID, id string) error {
	if err := f.before(ctx, OpDeleteColumn, id); err != nil {
		return err
	}
	return f.DataStore.DeleteColumn(ctx, ownerID, id)
}

func (f *FaultyStore) GetProjects(ctx context.Context, ownerID string) ([]models.Project, error) {
	if err := f.before(ctx, OpGetProjects, ""); err != nil {
		return nil, err
	}
	return f.DataStore.GetProjects(ctx, ownerID)
}

func (f *FaultyStore) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	if err := f.before(ctx, OpCreateProject, p.ID); err != nil {
		return nil, err
	}
	return f.DataStore.CreateProject(ctx, p)
}

func (f *FaultyStore) UpdateProjectColumn(ctx context.Context, ownerID, id, columnID string) error {
	if err := f.before(ctx, OpUpdateProjectColumn, id); err != nil {
		return err
	}
	return f.DataStore.UpdateProjectColumn(ctx, ownerID, id, columnID)
}

func (f *FaultyStore) DeleteProject(ctx context.Context, ownerID, id string) error {
	if err := f.before(ctx, OpDeleteProject, id); err != nil {
		return err
	}
	return f.DataStore.DeleteProject(ctx, ownerID, id)
}

func (f *FaultyStore) GetLabels(ctx context.Context, ownerID string) ([]models.Label, error) {
	if err := f.before(ctx, OpGetLabels, ""); err != nil {
		return nil, err
	}
	return f.DataStore.GetLabels(ctx, ownerID)
}

func (f *FaultyStore) CreateLabel(ctx context.Context, l models.Label) (*models.Label, error) {
	if err := f.before(ctx, OpCreateLabel, l.Title); err != nil {
		return nil, err
	}
	return f.DataStore.CreateLabel(ctx, l)
}

func (f *FaultyStore) UpdateLabel(ctx context.Context, l models.Label) error {
	if err := f.before(ctx, OpUpdateLabel, l.ID); err != nil {
		return err
	}
	return f.DataStore.UpdateLabel(ctx, l)
}

func (f *FaultyStore) DeleteLabel(ctx context.Context, ownerID, id string) error {
	if err := f.before(ctx, OpDeleteLabel, id); err != nil {
		return err
	}
	return f.DataStore.DeleteLabel(ctx, ownerID, id)
}

func (f *FaultyStore) GetProjectLabels(ctx context.Context, ownerID string) ([]models.ProjectLabel, error) {
	if err := f.before(ctx, OpGetProjectLabels, ""); err != nil {
		return nil, err
	}
	return f.DataStore.GetProjectLabels(ctx, ownerID)
}

func (f *FaultyStore) CreateProjectLabel(ctx context.Context, pl models.ProjectLabel) error {
	if err := f.before(ctx, OpCreateProjectLabel, pl.ProjectID); err != nil {
		return err
	}
	return f.DataStore.CreateProjectLabel(ctx, pl)
}

func (f *FaultyStore) DeleteProjectLabel(ctx context.Context, ownerID, projectID, labelID string) error {
	if err := f.before(ctx, OpDeleteProjectLabel, projectID); err != nil {
		return err
	}
	return f.DataStore.DeleteProjectLabel(ctx, ownerID, projectID, labelID)
}
