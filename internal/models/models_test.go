package models

import (
	"errors"
	"testing"
)

// ============================================================================
// Error Tests
// ============================================================================

func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		err             error
		expectedMessage string
	}{
		{ErrAlreadyFirstColumn, "column is already the first user column"},
		{ErrAlreadyLastColumn, "column is already the last user column"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.expectedMessage {
			t.Errorf("Expected %q, got %q", tt.expectedMessage, tt.err.Error())
		}
	}
	if errors.Is(ErrAlreadyFirstColumn, ErrAlreadyLastColumn) {
		t.Error("errors should be distinct")
	}
}

// ============================================================================
// Column Tests
// ============================================================================

func TestColumn_IsSystem(t *testing.T) {
	tests := []struct {
		kind ColumnKind
		want bool
	}{
		{ColumnKindUnassigned, true},
		{ColumnKindClosed, true},
		{ColumnKindUser, false},
	}
	for _, tt := range tests {
		if got := (Column{Kind: tt.kind}).IsSystem(); got != tt.want {
			t.Errorf("IsSystem(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestSortField_Valid(t *testing.T) {
	for _, f := range []SortField{SortByTitle, SortByNumber, SortByItems, SortByUpdatedAt, SortByClosedAt, SortByCreatedAt} {
		if !f.Valid() {
			t.Errorf("Expected %q to be valid", f)
		}
	}
	if SortField("priority").Valid() {
		t.Error("Expected unknown field to be invalid")
	}
	if !SortAsc.Valid() || !SortDesc.Valid() || SortDirection("up").Valid() {
		t.Error("unexpected sort direction validity")
	}
}

func TestFindColumnByKind(t *testing.T) {
	cols := []Column{
		{ID: "a", Kind: ColumnKindUnassigned},
		{ID: "b", Kind: ColumnKindUser},
		{ID: "c", Kind: ColumnKindClosed},
	}
	c, ok := FindColumnByKind(cols, ColumnKindClosed)
	if !ok || c.ID != "c" {
		t.Errorf("Expected closed column c, got %+v (found=%v)", c, ok)
	}
	if _, ok := FindColumn(cols, "zzz"); ok {
		t.Error("Expected missing column not to be found")
	}
}

// ============================================================================
// Color Tests
// ============================================================================

func TestOptimalTextColor(t *testing.T) {
	tests := []struct {
		bg   string
		want string
	}{
		{"#FFFFFF", TextColorBlack},
		{"#000000", TextColorWhite},
		{"#FFFF00", TextColorBlack},
		{"#0000FF", TextColorWhite},
		{"#7D56F4", TextColorWhite},
		{"#d4c5f9", TextColorBlack},
		{"not-a-color", TextColorWhite},
	}
	for _, tt := range tests {
		if got := OptimalTextColor(tt.bg); got != tt.want {
			t.Errorf("OptimalTextColor(%q) = %q, want %q", tt.bg, got, tt.want)
		}
	}
}

func TestIsValidHexColor(t *testing.T) {
	valid := []string{"#000000", "#abcdef", "#ABCDEF", "#1a2B3c"}
	invalid := []string{"", "000000", "#fff", "#GGGGGG", "#1234567"}
	for _, s := range valid {
		if !IsValidHexColor(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidHexColor(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestBoardData_CloneIsIndependent(t *testing.T) {
	d := BoardData{Projects: []Project{{ID: "p1", ColumnID: "a"}}}
	c := d.Clone()
	c.Projects[0].ColumnID = "b"
	if d.Projects[0].ColumnID != "a" {
		t.Error("Clone shares backing storage with original")
	}
}
