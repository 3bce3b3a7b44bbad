package reconcile

import (
	"cmp"
	"slices"

	"github.com/weibeld/github-projects-dashboard/internal/models"
)

type EffectKind string

const (
	EffectCreate   EffectKind = "create"
	EffectDelete   EffectKind = "delete"
	EffectReassign EffectKind = "reassign"
)

// Effect is one store write needed to make local records match GitHub.
// ColumnID is the target column for create and reassign.
type Effect struct {
	Kind      EffectKind
	ProjectID string
	ColumnID  string
}

// Plan partitions a reconciliation pass into three disjoint effect groups.
type Plan struct {
	Create   []Effect
	Delete   []Effect
	Reassign []Effect
}

func (p Plan) Len() int {
	return len(p.Create) + len(p.Delete) + len(p.Reassign)
}

func (p Plan) Empty() bool {
	return p.Len() == 0
}

// Effects returns all effects, creates first.
func (p Plan) Effects() []Effect {
	out := make([]Effect, 0, p.Len())
	out = append(out, p.Create...)
	out = append(out, p.Delete...)
	return append(out, p.Reassign...)
}

// PlanEffects computes the effects for GitHub set external and local set
// local. It is pure. A project is reassigned only between the two system
// columns: into closed when GitHub reports it closed, out of closed into
// unassigned when GitHub reports it open. Other placements are left alone.
func PlanEffects(external []models.GitHubProject, local []models.Project, unassignedID, closedID string) Plan {
	ext := make(map[string]models.GitHubProject, len(external))
	for _, p := range external {
		ext[p.ID] = p
	}
	loc := make(map[string]models.Project, len(local))
	for _, p := range local {
		loc[p.ID] = p
	}

	var plan Plan
	for id, gh := range ext {
		lp, ok := loc[id]
		if !ok {
			target := unassignedID
			if gh.Closed {
				target = closedID
			}
			plan.Create = append(plan.Create, Effect{Kind: EffectCreate, ProjectID: id, ColumnID: target})
			continue
		}
		inClosed := lp.ColumnID == closedID
		switch {
		case gh.Closed && !inClosed:
			plan.Reassign = append(plan.Reassign, Effect{Kind: EffectReassign, ProjectID: id, ColumnID: closedID})
		case !gh.Closed && inClosed:
			plan.Reassign = append(plan.Reassign, Effect{Kind: EffectReassign, ProjectID: id, ColumnID: unassignedID})
		}
	}
	for id := range loc {
		if _, ok := ext[id]; !ok {
			plan.Delete = append(plan.Delete, Effect{Kind: EffectDelete, ProjectID: id})
		}
	}

	byID := func(a, b Effect) int { return cmp.Compare(a.ProjectID, b.ProjectID) }
	slices.SortFunc(plan.Create, byID)
	slices.SortFunc(plan.Delete, byID)
	slices.SortFunc(plan.Reassign, byID)
	return plan
}
