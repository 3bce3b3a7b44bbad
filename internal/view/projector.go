// Package view turns cache state into the board the presentation layer
// shows. Everything here is pure.
package view

import (
	"cmp"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

// Card is a project as shown on the board.
type Card struct {
	models.GitHubProject
	ColumnID string         `json:"column_id"`
	Labels   []models.Label `json:"labels"`
}

// Column is a board column with its sorted cards.
type Column struct {
	models.Column
	Cards []Card `json:"cards"`
}

// Board is the projected view, columns in position order.
type Board struct {
	Columns []Column `json:"columns"`
}

// CardCount returns the number of cards across all columns.
func (b Board) CardCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Cards)
	}
	return n
}

// Project builds the board for d. Projects without a local record or whose
// column is unknown are left out. Labels on a card are ordered by title.
func Project(d cache.Data) Board {
	local := make(map[string]string, len(d.Projects))
	for _, p := range d.Projects {
		local[p.ID] = p.ColumnID
	}
	labels := make(map[string]models.Label, len(d.Labels))
	for _, l := range d.Labels {
		labels[l.ID] = l
	}
	attached := make(map[string][]models.Label)
	for _, r := range d.ProjectLabels {
		if l, ok := labels[r.LabelID]; ok {
			attached[r.ProjectID] = append(attached[r.ProjectID], l)
		}
	}

	col := newCollator()
	columns := slices.Clone(d.Columns)
	slices.SortStableFunc(columns, func(a, b models.Column) int { return cmp.Compare(a.Position, b.Position) })

	board := Board{Columns: make([]Column, len(columns))}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		board.Columns[i] = Column{Column: c, Cards: []Card{}}
		index[c.ID] = i
	}

	for _, gh := range d.GitHub {
		columnID, ok := local[gh.ID]
		if !ok {
			continue
		}
		i, ok := index[columnID]
		if !ok {
			continue
		}
		cardLabels := slices.Clone(attached[gh.ID])
		slices.SortFunc(cardLabels, func(a, b models.Label) int {
			return cmp.Or(col.CompareString(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
		})
		if cardLabels == nil {
			cardLabels = []models.Label{}
		}
		board.Columns[i].Cards = append(board.Columns[i].Cards, Card{
			GitHubProject: gh,
			ColumnID:      columnID,
			Labels:        cardLabels,
		})
	}

	for i := range board.Columns {
		c := &board.Columns[i]
		SortCards(col, c.Cards, c.SortField, c.SortDirection)
	}
	return board
}

func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

// SortCards orders cards by field in direction dir. Ties fall back to the
// project ID so the order is total.
func SortCards(col *collate.Collator, cards []Card, field models.SortField, dir models.SortDirection) {
	if col == nil {
		col = newCollator()
	}
	sign := 1
	if dir == models.SortDesc {
		sign = -1
	}
	slices.SortStableFunc(cards, func(a, b Card) int {
		return cmp.Or(sign*compareBy(col, field, a, b), cmp.Compare(a.ID, b.ID))
	})
}

func compareBy(col *collate.Collator, field models.SortField, a, b Card) int {
	switch field {
	case models.SortByTitle:
		return col.CompareString(a.Title, b.Title)
	case models.SortByNumber:
		return cmp.Compare(a.Number, b.Number)
	case models.SortByItems:
		return cmp.Compare(a.Items, b.Items)
	case models.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case models.SortByClosedAt:
		return orZero(a.ClosedAt).Compare(orZero(b.ClosedAt))
	default:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
}

// orZero treats a missing date as the earliest possible one.
func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
