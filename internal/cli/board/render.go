// Package board prints the projected board to the terminal, either as
// lipgloss columns or as markdown rendered by glamour.
package board

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/weibeld/github-projects-dashboard/internal/cli/styles"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

const defaultWidth = 100

// Render lays the columns out side by side, wrapping onto new rows when
// they do not fit in width.
func Render(b view.Board, width int) string {
	if len(b.Columns) == 0 {
		return styles.SubtitleStyle.Render("No columns") + "\n"
	}
	if width <= 0 {
		width = defaultWidth
	}
	perRow := max(1, width/(styles.ColumnWidth+2))

	rendered := make([]string, len(b.Columns))
	for i, col := range b.Columns {
		rendered[i] = renderColumn(col)
	}

	var rows []string
	for start := 0; start < len(rendered); start += perRow {
		end := min(start+perRow, len(rendered))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func renderColumn(col view.Column) string {
	var sb strings.Builder
	sb.WriteString(styles.ColumnTitleStyle.Render(col.Title))
	sb.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf(" (%d)", len(col.Cards))))
	if len(col.Cards) == 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.SubtitleStyle.Render("empty"))
	}
	for _, card := range col.Cards {
		sb.WriteString("\n")
		sb.WriteString(renderCard(card))
	}
	return styles.ColumnStyle.Render(sb.String())
}

func renderCard(card view.Card) string {
	title := styles.TitleStyle.Render(card.Title)
	if card.Closed {
		title = styles.ClosedTitleStyle.Render(card.Title)
	}
	lines := []string{
		title,
		styles.SubtitleStyle.Render(fmt.Sprintf("#%d · %d items", card.Number, card.Items)),
	}
	if len(card.Labels) > 0 {
		chips := make([]string, len(card.Labels))
		for i, l := range card.Labels {
			chips[i] = styles.ChipStyle(l).Render(l.Title)
		}
		lines = append(lines, strings.Join(chips, " "))
	}
	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}

// Markdown describes the board as a markdown document, one section per
// column.
func Markdown(b view.Board) string {
	var sb strings.Builder
	sb.WriteString("# Projects\n")
	for _, col := range b.Columns {
		fmt.Fprintf(&sb, "\n## %s (%d)\n\n", col.Title, len(col.Cards))
		if len(col.Cards) == 0 {
			sb.WriteString("_empty_\n")
			continue
		}
		for _, card := range col.Cards {
			title := card.Title
			if card.Closed {
				title = "~~" + title + "~~"
			}
			fmt.Fprintf(&sb, "- [%s](%s) #%d, %d items", title, card.URL, card.Number, card.Items)
			for _, l := range card.Labels {
				fmt.Fprintf(&sb, " `%s`", l.Title)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderMarkdown renders md for the terminal. It returns md unchanged when
// glamour fails.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
