// Package label implements label operations and the label-to-project relation.
package label

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
)

// Service defines all label-related business operations
type Service interface {
	// Read operations
	Labels() []models.Label
	LabelsForProject(projectID string) []models.Label
	ProjectCount(labelID string) int
	AvailableLabels(projectID, query string) []models.Label

	// Write operations
	CreateLabel(ctx context.Context, req CreateLabelRequest) (*models.Label, error)
	UpdateLabel(ctx context.Context, req UpdateLabelRequest) error
	DeleteLabel(ctx context.Context, id string) error
	AttachLabel(ctx context.Context, projectID, labelID string) error
	DetachLabel(ctx context.Context, projectID, labelID string) error
}

// CreateLabelRequest encapsulates data for creating a label
type CreateLabelRequest struct {
	Title     string
	Color     string // Hex color like #FF5733
	TextColor string // Optional: derived from Color when empty
	ProjectID string // Optional: attach the new label to this project
}

// UpdateLabelRequest encapsulates data for updating a label
type UpdateLabelRequest struct {
	ID        string
	Title     *string
	Color     *string
	TextColor *string
}

// Store is the part of the persistent store label operations write to.
type Store interface {
	database.LabelRepository
	database.RelationRepository
}

type service struct {
	store  Store
	cache  *cache.Cache
	runner *mutation.Runner
	owner  auth.Identity
}

// NewService creates a new label service
func NewService(store Store, c *cache.Cache, runner *mutation.Runner, owner auth.Identity) Service {
	return &service{store: store, cache: c, runner: runner, owner: owner}
}

func (s *service) Labels() []models.Label {
	return s.cache.Labels()
}

// LabelsForProject returns the labels attached to a project, by title.
func (s *service) LabelsForProject(projectID string) []models.Label {
	snap := s.cache.Snapshot()
	attached := attachedTo(snap.ProjectLabels, projectID)
	out := []models.Label{}
	for _, l := range snap.Labels {
		if attached[l.ID] {
			out = append(out, l)
		}
	}
	sortByTitle(out)
	return out
}

// ProjectCount returns how many projects reference the label. Callers use
// it to decide whether deleting needs confirmation.
func (s *service) ProjectCount(labelID string) int {
	n := 0
	for _, r := range s.cache.ProjectLabels() {
		if r.LabelID == labelID {
			n++
		}
	}
	return n
}

// AvailableLabels returns the labels not yet attached to projectID whose
// title contains query, case-insensitively.
func (s *service) AvailableLabels(projectID, query string) []models.Label {
	snap := s.cache.Snapshot()
	attached := attachedTo(snap.ProjectLabels, projectID)
	query = strings.ToLower(strings.TrimSpace(query))
	out := []models.Label{}
	for _, l := range snap.Labels {
		if attached[l.ID] {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(l.Title), query) {
			continue
		}
		out = append(out, l)
	}
	sortByTitle(out)
	return out
}

// CreateLabel creates a label and, when req.ProjectID is set, attaches it.
func (s *service) CreateLabel(ctx context.Context, req CreateLabelRequest) (*models.Label, error) {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return nil, err
	}
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	textColor, err := resolveColors(req.Color, req.TextColor)
	if err != nil {
		return nil, err
	}

	tempID := models.TempIDPrefix + uuid.NewString()
	newLabel := models.Label{ID: tempID, OwnerID: ownerID, Title: title, Color: req.Color, TextColor: textColor}
	// the temp ID stays locked until the real ID replaces it
	keys := []string{mutation.LabelKey(strings.ToLower(title)), mutation.LabelKey(tempID)}
	if req.ProjectID != "" {
		keys = append(keys, mutation.ProjectKey(req.ProjectID))
	}

	var created *models.Label
	op := mutation.Op{
		Name: "create_label",
		Keys: keys,
		Validate: func(d *cache.Data) error {
			if err := checkUniqueTitle(d.Labels, title, ""); err != nil {
				return err
			}
			if req.ProjectID != "" && !hasProject(d.Projects, req.ProjectID) {
				return ErrProjectNotFound
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			d.Labels = append(d.Labels, newLabel)
			sortByTitle(d.Labels)
			if req.ProjectID != "" {
				d.ProjectLabels = append(d.ProjectLabels, models.ProjectLabel{
					ProjectID: req.ProjectID, LabelID: tempID, OwnerID: ownerID,
				})
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			l := newLabel
			l.ID = ""
			created, err = s.store.CreateLabel(ctx, l)
			if err != nil {
				return err
			}
			if req.ProjectID == "" {
				return nil
			}
			return s.store.CreateProjectLabel(ctx, models.ProjectLabel{
				ProjectID: req.ProjectID, LabelID: created.ID, OwnerID: ownerID,
			})
		},
		Commit: func(d *cache.Data) error {
			for i := range d.Labels {
				if d.Labels[i].ID == tempID {
					d.Labels[i].ID = created.ID
				}
			}
			for i := range d.ProjectLabels {
				if d.ProjectLabels[i].LabelID == tempID {
					d.ProjectLabels[i].LabelID = created.ID
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

// UpdateLabel changes the fields set in req. A new color without an
// explicit text color re-derives the text color.
func (s *service) UpdateLabel(ctx context.Context, req UpdateLabelRequest) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	var title string
	if req.Title != nil {
		if title, err = validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Color != nil && !models.IsValidHexColor(*req.Color) {
		return ErrInvalidColor
	}
	if req.TextColor != nil && !models.IsValidTextColor(*req.TextColor) {
		return ErrInvalidTextColor
	}

	var updated models.Label
	return s.runner.Run(ctx, mutation.Op{
		Name: "update_label",
		Keys: []string{mutation.LabelKey(req.ID)},
		Validate: func(d *cache.Data) error {
			if _, ok := findLabel(d.Labels, req.ID); !ok {
				return ErrLabelNotFound
			}
			if req.Title != nil {
				return checkUniqueTitle(d.Labels, title, req.ID)
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			for i := range d.Labels {
				l := &d.Labels[i]
				if l.ID != req.ID {
					continue
				}
				if req.Title != nil {
					l.Title = title
				}
				if req.Color != nil {
					l.Color = *req.Color
					l.TextColor = models.OptimalTextColor(l.Color)
				}
				if req.TextColor != nil {
					l.TextColor = *req.TextColor
				}
				l.OwnerID = ownerID
				updated = *l
			}
			sortByTitle(d.Labels)
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.UpdateLabel(ctx, updated)
		},
	})
}

// DeleteLabel removes the label and every relation to it. Confirmation for
// labels still in use happens upstream, see ProjectCount.
func (s *service) DeleteLabel(ctx context.Context, id string) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, mutation.Op{
		Name: "delete_label",
		Keys: []string{mutation.LabelKey(id)},
		Validate: func(d *cache.Data) error {
			if _, ok := findLabel(d.Labels, id); !ok {
				return ErrLabelNotFound
			}
			return nil
		},
		Apply: func(d *cache.Data) error {
			d.Labels = slices.DeleteFunc(d.Labels, func(l models.Label) bool { return l.ID == id })
			d.ProjectLabels = slices.DeleteFunc(d.ProjectLabels, func(r models.ProjectLabel) bool {
				return r.LabelID == id
			})
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.DeleteLabel(ctx, ownerID, id)
		},
	})
}

// AttachLabel relates a label to a project. Attaching twice is a no-op.
func (s *service) AttachLabel(ctx context.Context, projectID, labelID string) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	rel := models.ProjectLabel{ProjectID: projectID, LabelID: labelID, OwnerID: ownerID}
	return s.runner.Run(ctx, mutation.Op{
		Name:     "attach_label",
		Keys:     []string{mutation.ProjectKey(projectID), mutation.LabelKey(labelID)},
		Validate: s.validateRelation(projectID, labelID),
		Apply: func(d *cache.Data) error {
			if !attachedTo(d.ProjectLabels, projectID)[labelID] {
				d.ProjectLabels = append(d.ProjectLabels, rel)
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.CreateProjectLabel(ctx, rel)
		},
	})
}

func (s *service) DetachLabel(ctx context.Context, projectID, labelID string) error {
	ownerID, err := s.owner.OwnerID()
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, mutation.Op{
		Name:     "detach_label",
		Keys:     []string{mutation.ProjectKey(projectID), mutation.LabelKey(labelID)},
		Validate: s.validateRelation(projectID, labelID),
		Apply: func(d *cache.Data) error {
			d.ProjectLabels = slices.DeleteFunc(d.ProjectLabels, func(r models.ProjectLabel) bool {
				return r.ProjectID == projectID && r.LabelID == labelID
			})
			return nil
		},
		Persist: func(ctx context.Context) error {
			return s.store.DeleteProjectLabel(ctx, ownerID, projectID, labelID)
		},
	})
}

func (s *service) validateRelation(projectID, labelID string) func(d *cache.Data) error {
	return func(d *cache.Data) error {
		if !hasProject(d.Projects, projectID) {
			return ErrProjectNotFound
		}
		if _, ok := findLabel(d.Labels, labelID); !ok {
			return ErrLabelNotFound
		}
		return nil
	}
}

// ============================================================================
// HELPERS
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

// resolveColors validates the colors and returns the text color to use.
func resolveColors(color, textColor string) (string, error) {
	if !models.IsValidHexColor(color) {
		return "", ErrInvalidColor
	}
	if textColor == "" {
		return models.OptimalTextColor(color), nil
	}
	if !models.IsValidTextColor(textColor) {
		return "", ErrInvalidTextColor
	}
	return textColor, nil
}

// checkUniqueTitle compares case-insensitively, matching the store's constraint.
func checkUniqueTitle(labels []models.Label, title, exceptID string) error {
	for _, l := range labels {
		if l.ID != exceptID && strings.EqualFold(l.Title, title) {
			return ErrDuplicateTitle
		}
	}
	return nil
}

func findLabel(labels []models.Label, id string) (models.Label, bool) {
	i := slices.IndexFunc(labels, func(l models.Label) bool { return l.ID == id })
	if i < 0 {
		return models.Label{}, false
	}
	return labels[i], true
}

func hasProject(projects []models.Project, id string) bool {
	return slices.ContainsFunc(projects, func(p models.Project) bool { return p.ID == id })
}

func attachedTo(rels []models.ProjectLabel, projectID string) map[string]bool {
	out := make(map[string]bool)
	for _, r := range rels {
		if r.ProjectID == projectID {
			out[r.LabelID] = true
		}
	}
	return out
}

func sortByTitle(labels []models.Label) {
	slices.SortStableFunc(labels, func(a, b models.Label) int {
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
}
