package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

func testTemplate() domain.Template {
	return domain.Template{ID: "tpl", Name: "Support"}
}

func testStates() []domain.State {
	return []domain.State{
		{ID: "new", TemplateID: "tpl", Name: "New", Type: domain.StateInitial, Responsible: domain.ResponsibleAssign},
		{ID: "open", TemplateID: "tpl", Name: "Open", Type: domain.StateIntermediate, Responsible: domain.ResponsibleKeep},
		{ID: "done", TemplateID: "tpl", Name: "Done", Type: domain.StateFinal, Responsible: domain.ResponsibleRemove},
	}
}

func testTransitions() []domain.Transition {
	return []domain.Transition{
		{FromStateID: "new", ToStateID: "open", Roles: []domain.SystemRole{domain.RoleAnyone}},
		{FromStateID: "open", ToStateID: "done", Roles: []domain.SystemRole{domain.RoleResponsible}},
		{FromStateID: "done", ToStateID: "open", GroupIDs: []string{"support"}},
	}
}

func TestNewGraph(t *testing.T) {
	graph, err := NewGraph(testTemplate(), testStates(), testTransitions())
	require.NoError(t, err)

	assert.Equal(t, "new", graph.Initial().ID)
	assert.Len(t, graph.States(), 3)
	assert.Len(t, graph.Transitions(), 3)
	assert.True(t, graph.IsReachable("new", "open"))
	assert.False(t, graph.IsReachable("new", "done"))
	assert.False(t, graph.IsReachable("open", "new"))
}

func TestNewGraphRejectsTwoInitialStates(t *testing.T) {
	states := testStates()
	states[1].Type = domain.StateInitial
	_, err := NewGraph(testTemplate(), states, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one initial state")
}

func TestNewGraphRejectsMissingInitialState(t *testing.T) {
	states := testStates()
	states[0].Type = domain.StateIntermediate
	_, err := NewGraph(testTemplate(), states, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no initial state")
}

func TestNewGraphRejectsEdgeToUnknownState(t *testing.T) {
	transitions := append(testTransitions(), domain.Transition{FromStateID: "open", ToStateID: "nowhere"})
	_, err := NewGraph(testTemplate(), testStates(), transitions)
	require.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	graph, err := NewGraph(testTemplate(), testStates(), testTransitions())
	require.NoError(t, err)

	rebuilt, err := FromSnapshot(graph.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, graph.Initial().ID, rebuilt.Initial().ID)
	assert.Len(t, rebuilt.Transitions(), len(graph.Transitions()))
	assert.True(t, rebuilt.IsReachable("open", "done"))
}

func TestEdgePermitted(t *testing.T) {
	responsible := "resp"
	issue := &domain.Issue{AuthorID: "author", ResponsibleID: &responsible}
	author := &domain.User{ID: "author"}
	resp := &domain.User{ID: "resp"}
	outsider := &domain.User{ID: "other"}
	admin := &domain.User{ID: "root", IsAdmin: true}

	anyone := domain.Transition{Roles: []domain.SystemRole{domain.RoleAnyone}}
	assert.True(t, EdgePermitted(anyone, outsider, issue, nil))

	authorOnly := domain.Transition{Roles: []domain.SystemRole{domain.RoleAuthor}}
	assert.True(t, EdgePermitted(authorOnly, author, issue, nil))
	assert.False(t, EdgePermitted(authorOnly, outsider, issue, nil))

	respOnly := domain.Transition{Roles: []domain.SystemRole{domain.RoleResponsible}}
	assert.True(t, EdgePermitted(respOnly, resp, issue, nil))
	assert.False(t, EdgePermitted(respOnly, author, issue, nil))

	grouped := domain.Transition{GroupIDs: []string{"support"}}
	assert.True(t, EdgePermitted(grouped, outsider, issue, []string{"support", "dev"}))
	assert.False(t, EdgePermitted(grouped, outsider, issue, []string{"dev"}))

	locked := domain.Transition{}
	assert.True(t, EdgePermitted(locked, admin, issue, nil))
	assert.False(t, EdgePermitted(locked, author, issue, nil))
}
