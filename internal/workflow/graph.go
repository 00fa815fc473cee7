package workflow

import (
	"fmt"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// Graph is a template's compiled workflow: state nodes plus an
// adjacency list of role/group-gated transitions. Graphs are immutable
// once built; the repository layer rebuilds them when a template
// changes.
type Graph struct {
	Template domain.Template

	states  map[string]domain.State
	edges   map[string][]domain.Transition
	initial string
}

// NewGraph compiles states and transitions, enforcing exactly one
// initial state and edges that reference known states.
func NewGraph(template domain.Template, states []domain.State, transitions []domain.Transition) (*Graph, error) {
	g := &Graph{
		Template: template,
		states:   make(map[string]domain.State, len(states)),
		edges:    make(map[string][]domain.Transition),
	}
	for _, state := range states {
		if state.TemplateID != template.ID {
			return nil, fmt.Errorf("state %s belongs to template %s, not %s", state.ID, state.TemplateID, template.ID)
		}
		g.states[state.ID] = state
		if state.Type == domain.StateInitial {
			if g.initial != "" {
				return nil, fmt.Errorf("template %s has more than one initial state", template.ID)
			}
			g.initial = state.ID
		}
	}
	if g.initial == "" {
		return nil, fmt.Errorf("template %s has no initial state", template.ID)
	}
	for _, tr := range transitions {
		if _, ok := g.states[tr.FromStateID]; !ok {
			return nil, fmt.Errorf("transition from unknown state %s", tr.FromStateID)
		}
		if _, ok := g.states[tr.ToStateID]; !ok {
			return nil, fmt.Errorf("transition to unknown state %s", tr.ToStateID)
		}
		g.edges[tr.FromStateID] = append(g.edges[tr.FromStateID], tr)
	}
	return g, nil
}

// GraphSnapshot is the serializable form of a compiled graph, used by
// the cache layer.
type GraphSnapshot struct {
	Template    domain.Template     `json:"template"`
	States      []domain.State      `json:"states"`
	Transitions []domain.Transition `json:"transitions"`
}

// Snapshot exports the graph for serialization.
func (g *Graph) Snapshot() GraphSnapshot {
	return GraphSnapshot{
		Template:    g.Template,
		States:      g.States(),
		Transitions: g.Transitions(),
	}
}

// FromSnapshot recompiles a serialized graph.
func FromSnapshot(s GraphSnapshot) (*Graph, error) {
	return NewGraph(s.Template, s.States, s.Transitions)
}

// Initial returns the template's single initial state.
func (g *Graph) Initial() domain.State {
	return g.states[g.initial]
}

// State looks up a state node by id.
func (g *Graph) State(id string) (domain.State, bool) {
	s, ok := g.states[id]
	return s, ok
}

// States returns every node of the graph.
func (g *Graph) States() []domain.State {
	out := make([]domain.State, 0, len(g.states))
	for _, s := range g.states {
		out = append(out, s)
	}
	return out
}

// Transitions returns every declared edge.
func (g *Graph) Transitions() []domain.Transition {
	var out []domain.Transition
	for _, edges := range g.edges {
		out = append(out, edges...)
	}
	return out
}

// TransitionsFrom returns the outgoing edges of a state.
func (g *Graph) TransitionsFrom(stateID string) []domain.Transition {
	return g.edges[stateID]
}

// Edge returns the declared transition between two states, if any.
func (g *Graph) Edge(fromID, toID string) (domain.Transition, bool) {
	for _, tr := range g.edges[fromID] {
		if tr.ToStateID == toID {
			return tr, true
		}
	}
	return domain.Transition{}, false
}

// IsReachable reports whether a single declared edge connects the two
// states. There are no implicit transitions.
func (g *Graph) IsReachable(fromID, toID string) bool {
	_, ok := g.Edge(fromID, toID)
	return ok
}

// EdgePermitted checks the actor against the edge's allowed roles and
// groups. Admins traverse any declared edge; everyone else needs a
// matching role relative to the issue or membership in one of the
// edge's groups.
func EdgePermitted(tr domain.Transition, actor *domain.User, issue *domain.Issue, actorGroups []string) bool {
	if actor.IsAdmin {
		return true
	}
	for _, role := range tr.Roles {
		switch role {
		case domain.RoleAnyone:
			return true
		case domain.RoleAuthor:
			if issue.AuthorID == actor.ID {
				return true
			}
		case domain.RoleResponsible:
			if issue.ResponsibleID != nil && *issue.ResponsibleID == actor.ID {
				return true
			}
		}
	}
	for _, groupID := range tr.GroupIDs {
		for _, member := range actorGroups {
			if member == groupID {
				return true
			}
		}
	}
	return false
}
