package styles

import (
	"charm.land/lipgloss/v2"

	"github.com/weibeld/github-projects-dashboard/internal/config/colors"
	"github.com/weibeld/github-projects-dashboard/internal/models"
)

var (
	// Board styles
	ColumnStyle      lipgloss.Style
	ColumnTitleStyle lipgloss.Style
	CardStyle        lipgloss.Style
	ColumnWidth      = 32

	// Text styles
	TitleStyle       lipgloss.Style
	ClosedTitleStyle lipgloss.Style
	SubtitleStyle    lipgloss.Style
	ValueStyle       lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
)

func init() {
	Init(*colors.GetPreset("default"))
}

// Init initializes all CLI styles with the given color scheme
func Init(scheme colors.ColorScheme) {
	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(scheme.ColumnBorder)).
		Padding(0, 1).
		Width(ColumnWidth)

	ColumnTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Accent))

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(scheme.CardBorder)).
		Width(ColumnWidth - 4)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Title))

	ClosedTitleStyle = lipgloss.NewStyle().
		Strikethrough(true).
		Foreground(lipgloss.Color(scheme.Closed))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(scheme.Subtle))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(scheme.Normal))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Success))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Error))
}

// ChipStyle renders a label in its own colors.
func ChipStyle(l models.Label) lipgloss.Style {
	fg := "#FFFFFF"
	if l.TextColor == models.TextColorBlack {
		fg = "#000000"
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(l.Color)).
		Foreground(lipgloss.Color(fg)).
		Padding(0, 1)
}
