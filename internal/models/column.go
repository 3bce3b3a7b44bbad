package models

// ColumnKind tags a column as one of the two system columns or as user-defined.
type ColumnKind string

const (
	ColumnKindUnassigned ColumnKind = "system_unassigned"
	ColumnKindClosed     ColumnKind = "system_closed"
	ColumnKindUser       ColumnKind = "user"
)

// SortField is the project attribute a column orders its cards by
type SortField string

const (
	SortByTitle     SortField = "title"
	SortByNumber    SortField = "number"
	SortByItems     SortField = "items"
	SortByUpdatedAt SortField = "updatedAt"
	SortByClosedAt  SortField = "closedAt"
	SortByCreatedAt SortField = "createdAt"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByTitle, SortByNumber, SortByItems, SortByUpdatedAt, SortByClosedAt, SortByCreatedAt:
		return true
	}
	return false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// Column is a user-owned board column. Positions form a dense zero-based
// sequence across all of an owner's columns, system columns included.
type Column struct {
	ID            string        `json:"id" yaml:"id"`
	OwnerID       string        `json:"owner_id" yaml:"owner_id"`
	Title         string        `json:"title" yaml:"title"`
	Position      int           `json:"position" yaml:"position"`
	Kind          ColumnKind    `json:"kind" yaml:"kind"`
	SortField     SortField     `json:"sort_field" yaml:"sort_field"`
	SortDirection SortDirection `json:"sort_direction" yaml:"sort_direction"`
}

// IsSystem reports whether the column is managed by reconciliation.
func (c Column) IsSystem() bool {
	return c.Kind == ColumnKindUnassigned || c.Kind == ColumnKindClosed
}

// FindColumn returns the column with the given ID.
func FindColumn(columns []Column, id string) (Column, bool) {
	for _, c := range columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// FindColumnByKind returns the first column with the given kind tag.
func FindColumnByKind(columns []Column, kind ColumnKind) (Column, bool) {
	for _, c := range columns {
		if c.Kind == kind {
			return c, true
		}
	}
	return Column{}, false
}
