package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weibeld/github-projects-dashboard/internal/models"
	columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
	projectservice "github.com/weibeld/github-projects-dashboard/internal/services/project"
)

// ErrAmbiguousRef means a title matched more than one entity.
var ErrAmbiguousRef = errors.New("reference matches more than one entry, use the ID")

// ParseSort parses "field" or "field:direction". The direction defaults to
// ascending.
func ParseSort(s string) (models.SortField, models.SortDirection, error) {
	fieldStr, dirStr, found := strings.Cut(strings.TrimSpace(s), ":")
	field := models.SortField(fieldStr)
	dir := models.SortAsc
	if found {
		dir = models.SortDirection(strings.ToLower(dirStr))
	}
	if !field.Valid() {
		return "", "", fmt.Errorf("invalid sort field '%s' (must be: title, number, items, updatedAt, closedAt, createdAt)", fieldStr)
	}
	if !dir.Valid() {
		return "", "", fmt.Errorf("invalid sort direction '%s' (must be: asc, desc)", dirStr)
	}
	return field, dir, nil
}

// ResolveColumn finds a column by ID or, failing that, by case-insensitive
// title.
func ResolveColumn(columns []models.Column, ref string) (models.Column, error) {
	if c, ok := models.FindColumn(columns, ref); ok {
		return c, nil
	}
	return resolveByTitle(columns, ref, func(c models.Column) string { return c.Title },
		fmt.Errorf("%w: %s", columnservice.ErrColumnNotFound, ref))
}

// ResolveLabel finds a label by ID or case-insensitive title.
func ResolveLabel(labels []models.Label, ref string) (models.Label, error) {
	for _, l := range labels {
		if l.ID == ref {
			return l, nil
		}
	}
	return resolveByTitle(labels, ref, func(l models.Label) string { return l.Title },
		fmt.Errorf("%w: %s", labelservice.ErrLabelNotFound, ref))
}

// ResolveProject finds a GitHub project by node ID, by number ("12" or
// "#12") or by case-insensitive title.
func ResolveProject(projects []models.GitHubProject, ref string) (models.GitHubProject, error) {
	for _, p := range projects {
		if p.ID == ref {
			return p, nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		for _, p := range projects {
			if p.Number == n {
				return p, nil
			}
		}
	}
	return resolveByTitle(projects, ref, func(p models.GitHubProject) string { return p.Title },
		fmt.Errorf("%w: %s", projectservice.ErrProjectNotFound, ref))
}

func resolveByTitle[T any](items []T, ref string, title func(T) string, notFound error) (T, error) {
	var (
		match T
		n     int
	)
	for _, item := range items {
		if strings.EqualFold(title(item), ref) {
			match = item
			n++
		}
	}
	switch n {
	case 0:
		var zero T
		return zero, notFound
	case 1:
		return match, nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
	}
}

// Confirm asks a yes/no question on the command's streams. Anything but
// "y" or "yes" is a no.
func Confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", prompt)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
