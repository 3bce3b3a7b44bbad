package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

func TestPlanEffects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		external []models.GitHubProject
		local    []models.Project
		want     Plan
	}{
		{
			name:     "new open project goes to unassigned",
			external: []models.GitHubProject{{ID: "p1"}},
			want:     Plan{Create: []Effect{{Kind: EffectCreate, ProjectID: "p1", ColumnID: "u"}}},
		},
		{
			name:     "new closed project goes to closed",
			external: []models.GitHubProject{{ID: "p1", Closed: true}},
			want:     Plan{Create: []Effect{{Kind: EffectCreate, ProjectID: "p1", ColumnID: "c"}}},
		},
		{
			name:     "closed project in user column is reassigned",
			external: []models.GitHubProject{{ID: "p1", Closed: true}},
			local:    []models.Project{{ID: "p1", ColumnID: "col-a"}},
			want:     Plan{Reassign: []Effect{{Kind: EffectReassign, ProjectID: "p1", ColumnID: "c"}}},
		},
		{
			name:     "reopened project leaves closed",
			external: []models.GitHubProject{{ID: "p1"}},
			local:    []models.Project{{ID: "p1", ColumnID: "c"}},
			want:     Plan{Reassign: []Effect{{Kind: EffectReassign, ProjectID: "p1", ColumnID: "u"}}},
		},
		{
			name:     "open project in user column is left alone",
			external: []models.GitHubProject{{ID: "p1"}},
			local:    []models.Project{{ID: "p1", ColumnID: "col-a"}},
			want:     Plan{},
		},
		{
			name:  "removed upstream is deleted",
			local: []models.Project{{ID: "p1", ColumnID: "c"}},
			want:  Plan{Delete: []Effect{{Kind: EffectDelete, ProjectID: "p1"}}},
		},
		{
			name: "mixed plan is sorted per group",
			external: []models.GitHubProject{
				{ID: "p3"}, {ID: "p1"}, {ID: "p5", Closed: true},
			},
			local: []models.Project{
				{ID: "p5", ColumnID: "u"}, {ID: "p4", ColumnID: "u"}, {ID: "p2", ColumnID: "col-a"},
			},
			want: Plan{
				Create: []Effect{
					{Kind: EffectCreate, ProjectID: "p1", ColumnID: "u"},
					{Kind: EffectCreate, ProjectID: "p3", ColumnID: "u"},
				},
				Delete: []Effect{
					{Kind: EffectDelete, ProjectID: "p2"},
					{Kind: EffectDelete, ProjectID: "p4"},
				},
				Reassign: []Effect{{Kind: EffectReassign, ProjectID: "p5", ColumnID: "c"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PlanEffects(tt.external, tt.local, "u", "c")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(got.Effects()), got.Len())
		})
	}
}

func TestPlanEffects_GroupsAreDisjoint(t *testing.T) {
	t.Parallel()
	external := []models.GitHubProject{{ID: "a"}, {ID: "b", Closed: true}, {ID: "c"}}
	local := []models.Project{{ID: "b", ColumnID: "u"}, {ID: "c", ColumnID: "c"}, {ID: "d", ColumnID: "u"}}

	plan := PlanEffects(external, local, "u", "c")
	seen := map[string]EffectKind{}
	for _, e := range plan.Effects() {
		prev, dup := seen[e.ProjectID]
		assert.False(t, dup, "project %s in both %s and %s", e.ProjectID, prev, e.Kind)
		seen[e.ProjectID] = e.Kind
	}
	assert.Len(t, seen, 4)
}
