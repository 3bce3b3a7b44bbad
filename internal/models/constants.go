package models

// ============================================================================
// SYSTEM COLUMN DEFAULTS
// ============================================================================

const (
	UnassignedColumnTitle = "No Status"
	ClosedColumnTitle     = "Closed"
)

// Sort configuration applied to the system columns on bootstrap
const (
	UnassignedSortField     = SortByUpdatedAt
	UnassignedSortDirection = SortDesc
	ClosedSortField         = SortByClosedAt
	ClosedSortDirection     = SortDesc
)

// Sort configuration for newly created user columns
const (
	DefaultSortField     = SortByUpdatedAt
	DefaultSortDirection = SortDesc
)

// ============================================================================
// LIMITS
// ============================================================================

// MaxTitleLength bounds column and label titles
const MaxTitleLength = 50

// TempIDPrefix marks IDs assigned optimistically before the store confirms them
const TempIDPrefix = "temp-"
