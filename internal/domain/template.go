package domain

import "time"

// Template owns a workflow state graph.
type Template struct {
	ID          string
	Name        string
	Description string
	Locked      bool
	// FrozenDays freezes closed issues after this many days; zero means
	// issues never freeze.
	FrozenDays int
	CreatedAt  time.Time
}

// StateType classifies a workflow state.
type StateType string

const (
	StateInitial      StateType = "INITIAL"
	StateIntermediate StateType = "INTERMEDIATE"
	StateFinal        StateType = "FINAL"
)

// ResponsiblePolicy tells what happens to the responsible when an issue
// enters the state.
type ResponsiblePolicy string

const (
	ResponsibleRemove ResponsiblePolicy = "REMOVE"
	ResponsibleKeep   ResponsiblePolicy = "KEEP"
	ResponsibleAssign ResponsiblePolicy = "ASSIGN"
)

// State is a node in a template's workflow graph.
type State struct {
	ID          string
	TemplateID  string
	Name        string
	Type        StateType
	Responsible ResponsiblePolicy
	CreatedAt   time.Time
}

// IsFinal reports whether issues entering this state are closed.
func (s State) IsFinal() bool {
	return s.Type == StateFinal
}

// SystemRole is a caller role relative to an issue, used to gate
// transition edges alongside explicit groups.
type SystemRole string

const (
	RoleAnyone      SystemRole = "ANYONE"
	RoleAuthor      SystemRole = "AUTHOR"
	RoleResponsible SystemRole = "RESPONSIBLE"
)

// Transition is a directed, role/group-gated edge between two states of
// one template. Only declared edges are traversable; the reopen path out
// of a final state must be declared like any other edge.
type Transition struct {
	FromStateID string
	ToStateID   string
	Roles       []SystemRole
	GroupIDs    []string
}
