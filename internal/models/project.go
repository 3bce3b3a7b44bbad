package models

import "time"

// GitHubProject is a project as reported by GitHub. Every field is owned by
// GitHub and replaced wholesale on each fetch.
type GitHubProject struct {
	ID        string     `json:"id" yaml:"id"`
	Number    int        `json:"number" yaml:"number"`
	Title     string     `json:"title" yaml:"title"`
	URL       string     `json:"url" yaml:"url"`
	Public    bool       `json:"public" yaml:"public"`
	Closed    bool       `json:"closed" yaml:"closed"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
	Items     int        `json:"items" yaml:"items"`
}

// Project is the locally-owned record of a GitHub project: its column
// assignment. Labels are tracked separately as ProjectLabel edges.
type Project struct {
	ID       string `json:"id" yaml:"id"`
	OwnerID  string `json:"owner_id" yaml:"owner_id"`
	ColumnID string `json:"column_id" yaml:"column_id"`
}

// ProjectLabel is a project to label edge
type ProjectLabel struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	LabelID   string `json:"label_id" yaml:"label_id"`
	OwnerID   string `json:"owner_id" yaml:"owner_id"`
}

// BoardData is one full read of an owner's locally-owned state.
type BoardData struct {
	Columns       []Column       `json:"columns" yaml:"columns"`
	Projects      []Project      `json:"projects" yaml:"projects"`
	Labels        []Label        `json:"labels" yaml:"labels"`
	ProjectLabels []ProjectLabel `json:"project_labels" yaml:"project_labels"`
}

// Clone returns a deep copy of d.
func (d BoardData) Clone() BoardData {
	return BoardData{
		Columns:       append([]Column(nil), d.Columns...),
		Projects:      append([]Project(nil), d.Projects...),
		Labels:        append([]Label(nil), d.Labels...),
		ProjectLabels: append([]ProjectLabel(nil), d.ProjectLabels...),
	}
}
