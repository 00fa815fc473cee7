package workflow

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/fieldtype"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

// memStore backs the fake repositories. Everything lives in maps; the
// fakes mirror the SQL repositories' semantics, including payload
// deduplication by (kind, content).
type memStore struct {
	users       map[string]*domain.User
	memberships map[string][]string

	template    domain.Template
	states      []domain.State
	transitions []domain.Transition
	fields      map[string]domain.Field
	respGroups  map[string][]string

	issues         map[string]*domain.Issue
	values         map[string]map[string]*int64
	payloads       map[string]int64
	payloadContent map[int64]string
	nextPayloadID  int64

	events  []domain.Event
	changes []domain.Change
}

type fakeIssues struct{ s *memStore }

func (f fakeIssues) Get(ctx context.Context, id string) (*domain.Issue, error) {
	issue, ok := f.s.issues[id]
	if !ok {
		return nil, apperrors.NewNotFound("issue", nil)
	}
	clone := *issue
	return &clone, nil
}

func (f fakeIssues) GetForUpdate(ctx context.Context, id string) (*domain.Issue, error) {
	return f.Get(ctx, id)
}

func (f fakeIssues) Create(ctx context.Context, issue *domain.Issue) error {
	clone := *issue
	f.s.issues[issue.ID] = &clone
	return nil
}

func (f fakeIssues) Update(ctx context.Context, issue *domain.Issue) error {
	if _, ok := f.s.issues[issue.ID]; !ok {
		return apperrors.NewNotFound("issue", nil)
	}
	clone := *issue
	f.s.issues[issue.ID] = &clone
	return nil
}

func (f fakeIssues) Delete(ctx context.Context, id string) error {
	if _, ok := f.s.issues[id]; !ok {
		return apperrors.NewNotFound("issue", nil)
	}
	delete(f.s.issues, id)
	return nil
}

type fakeTemplates struct{ s *memStore }

func (f fakeTemplates) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	if id != f.s.template.ID {
		return nil, apperrors.NewNotFound("template", nil)
	}
	clone := f.s.template
	return &clone, nil
}

func (f fakeTemplates) Graph(ctx context.Context, templateID string) (*Graph, error) {
	return NewGraph(f.s.template, f.s.states, f.s.transitions)
}

func (f fakeTemplates) GetField(ctx context.Context, id string) (*domain.Field, error) {
	field, ok := f.s.fields[id]
	if !ok {
		return nil, apperrors.NewNotFound("field", nil)
	}
	clone := field
	return &clone, nil
}

func (f fakeTemplates) FieldsByState(ctx context.Context, stateID string) ([]domain.Field, error) {
	var fields []domain.Field
	for _, field := range f.s.fields {
		if field.StateID == stateID {
			fields = append(fields, field)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Position < fields[j].Position })
	return fields, nil
}

func (f fakeTemplates) ResponsibleGroups(ctx context.Context, stateID string) ([]string, error) {
	return f.s.respGroups[stateID], nil
}

type fakeValues struct{ s *memStore }

func (f fakeValues) Current(ctx context.Context, issueID, fieldID string) (*int64, bool, error) {
	valueID, ok := f.s.values[issueID][fieldID]
	return valueID, ok, nil
}

func (f fakeValues) CurrentAll(ctx context.Context, issueID string) (map[string]*int64, error) {
	out := make(map[string]*int64, len(f.s.values[issueID]))
	for fieldID, valueID := range f.s.values[issueID] {
		out[fieldID] = valueID
	}
	return out, nil
}

func (f fakeValues) Write(ctx context.Context, issueID, fieldID string, kind domain.FieldKind, inline *int64, payload *string) (*int64, error) {
	valueID := inline
	if payload != nil {
		payloadKind, ok := fieldtype.PayloadKindOf(kind)
		if !ok {
			return nil, fmt.Errorf("field kind %s does not store payloads", kind)
		}
		id, err := f.PayloadID(ctx, payloadKind, *payload)
		if err != nil {
			return nil, err
		}
		valueID = &id
	}
	if err := f.WriteID(ctx, issueID, fieldID, valueID); err != nil {
		return nil, err
	}
	return valueID, nil
}

func (f fakeValues) WriteID(ctx context.Context, issueID, fieldID string, valueID *int64) error {
	if f.s.values[issueID] == nil {
		f.s.values[issueID] = map[string]*int64{}
	}
	f.s.values[issueID][fieldID] = valueID
	return nil
}

func (f fakeValues) PayloadID(ctx context.Context, kind domain.PayloadKind, content string) (int64, error) {
	key := string(kind) + "|" + content
	if id, ok := f.s.payloads[key]; ok {
		return id, nil
	}
	f.s.nextPayloadID++
	f.s.payloads[key] = f.s.nextPayloadID
	f.s.payloadContent[f.s.nextPayloadID] = content
	return f.s.nextPayloadID, nil
}

func (f fakeValues) PayloadContent(ctx context.Context, id int64) (string, error) {
	content, ok := f.s.payloadContent[id]
	if !ok {
		return "", apperrors.NewNotFound("payload", nil)
	}
	return content, nil
}

func (f fakeValues) History(ctx context.Context, issueID, fieldID string) ([]domain.Change, error) {
	var out []domain.Change
	for _, change := range f.s.changes {
		if change.IssueID == issueID && change.FieldID != nil && *change.FieldID == fieldID {
			out = append(out, change)
		}
	}
	return out, nil
}

func (f fakeValues) DeleteForIssue(ctx context.Context, issueID string) error {
	delete(f.s.values, issueID)
	return nil
}

type fakeAudit struct{ s *memStore }

func (f fakeAudit) AppendEvent(ctx context.Context, event *domain.Event) error {
	f.s.events = append(f.s.events, *event)
	return nil
}

func (f fakeAudit) AppendChange(ctx context.Context, change *domain.Change) error {
	f.s.changes = append(f.s.changes, *change)
	return nil
}

func (f fakeAudit) ListEvents(ctx context.Context, issueID string) ([]domain.Event, error) {
	var out []domain.Event
	for _, event := range f.s.events {
		if event.IssueID == issueID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f fakeAudit) DeleteForIssue(ctx context.Context, issueID string) error {
	kept := f.s.events[:0]
	for _, event := range f.s.events {
		if event.IssueID != issueID {
			kept = append(kept, event)
		}
	}
	f.s.events = kept
	keptChanges := f.s.changes[:0]
	for _, change := range f.s.changes {
		if change.IssueID != issueID {
			keptChanges = append(keptChanges, change)
		}
	}
	f.s.changes = keptChanges
	return nil
}

type fakeUsers struct{ s *memStore }

func (f fakeUsers) Get(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.s.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	clone := *user
	return &clone, nil
}

func (f fakeUsers) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	return f.s.memberships[userID], nil
}

func (f fakeUsers) IsMemberOfAny(ctx context.Context, userID string, groupIDs []string) (bool, error) {
	for _, have := range f.s.memberships[userID] {
		for _, want := range groupIDs {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}

type allowGuard struct{}

func (allowGuard) IsGranted(ctx context.Context, actor *domain.User, permission Permission, issue *domain.Issue) (bool, error) {
	return true, nil
}

type allowFields struct{}

func (allowFields) CanReadField(ctx context.Context, actor *domain.User, field domain.Field) (bool, error) {
	return true, nil
}

type env struct {
	store     *memStore
	processor *Processor
	clock     time.Time

	alice  *domain.User
	bob    *domain.User
	carol  *domain.User
	martin *domain.User
}

// newEnv builds a four-state workflow:
//
//	New (initial, keep) -> Open (keep) -> Assigned (assign: support) -> Done (final, remove)
//
// with a reopen edge Done -> Open. Every edge is open to anyone.
func newEnv(t *testing.T) *env {
	t.Helper()

	alice := &domain.User{ID: "alice", Email: "alice@example.com", FullName: "Alice Author"}
	bob := &domain.User{ID: "bob", Email: "bob@example.com", FullName: "Bob Builder"}
	carol := &domain.User{ID: "carol", Email: "carol@example.com", FullName: "Carol Coder"}
	martin := &domain.User{ID: "martin", Email: "martin@example.com", FullName: "Martin Outsider"}

	store := &memStore{
		users:       map[string]*domain.User{"alice": alice, "bob": bob, "carol": carol, "martin": martin},
		memberships: map[string][]string{"bob": {"support"}, "carol": {"support"}},
		template:    domain.Template{ID: "tpl", Name: "Support", FrozenDays: 7},
		states: []domain.State{
			{ID: "new", TemplateID: "tpl", Name: "New", Type: domain.StateInitial, Responsible: domain.ResponsibleKeep},
			{ID: "open", TemplateID: "tpl", Name: "Open", Type: domain.StateIntermediate, Responsible: domain.ResponsibleKeep},
			{ID: "assigned", TemplateID: "tpl", Name: "Assigned", Type: domain.StateIntermediate, Responsible: domain.ResponsibleAssign},
			{ID: "done", TemplateID: "tpl", Name: "Done", Type: domain.StateFinal, Responsible: domain.ResponsibleRemove},
		},
		transitions: []domain.Transition{
			{FromStateID: "new", ToStateID: "open", Roles: []domain.SystemRole{domain.RoleAnyone}},
			{FromStateID: "new", ToStateID: "assigned", Roles: []domain.SystemRole{domain.RoleAnyone}},
			{FromStateID: "open", ToStateID: "assigned", Roles: []domain.SystemRole{domain.RoleAnyone}},
			{FromStateID: "open", ToStateID: "done", Roles: []domain.SystemRole{domain.RoleAnyone}},
			{FromStateID: "assigned", ToStateID: "done", Roles: []domain.SystemRole{domain.RoleAnyone}},
			{FromStateID: "done", ToStateID: "open", Roles: []domain.SystemRole{domain.RoleAnyone}},
		},
		fields: map[string]domain.Field{
			"f_sev":    {ID: "f_sev", StateID: "new", Name: "Severity", Kind: domain.KindList, Required: true, Position: 1, Items: []domain.ListItem{{Value: 1, Text: "low"}, {Value: 2, Text: "high"}}},
			"f_desc":   {ID: "f_desc", StateID: "new", Name: "Description", Kind: domain.KindText, Required: true, Position: 2},
			"f_blocks": {ID: "f_blocks", StateID: "new", Name: "Blocks", Kind: domain.KindIssue, Position: 3},
			"f_eff":    {ID: "f_eff", StateID: "assigned", Name: "Estimate", Kind: domain.KindDuration, Required: true, Position: 1},
			"f_due":    {ID: "f_due", StateID: "assigned", Name: "Due", Kind: domain.KindDate, Position: 2},
			"f_res":    {ID: "f_res", StateID: "done", Name: "Resolution", Kind: domain.KindString, Required: true, Position: 1},
		},
		respGroups:     map[string][]string{"assigned": {"support"}},
		issues:         map[string]*domain.Issue{},
		values:         map[string]map[string]*int64{},
		payloads:       map[string]int64{},
		payloadContent: map[int64]string{},
		nextPayloadID:  1000,
	}

	e := &env{
		store:  store,
		clock:  time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
		alice:  alice,
		bob:    bob,
		carol:  carol,
		martin: martin,
	}
	e.processor = NewProcessor(Dependencies{
		IssueRepo:    fakeIssues{store},
		TemplateRepo: fakeTemplates{store},
		ValueRepo:    fakeValues{store},
		AuditRepo:    fakeAudit{store},
		UserRepo:     fakeUsers{store},
		Guard:        allowGuard{},
		FieldGuard:   allowFields{},
		Now:          func() time.Time { return e.clock },
	})
	return e
}

func (e *env) createIssue(t *testing.T, subject string) *domain.Issue {
	t.Helper()
	issue, events, err := e.processor.Create(context.Background(), e.alice, CreateInput{
		TemplateID: "tpl",
		Subject:    subject,
		Fields:     map[string]string{"f_sev": "2", "f_desc": "something broke"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	return issue
}

func messageOf(err error) string {
	return apperrors.ToDomainError(err).Message
}

func TestCreate(t *testing.T) {
	e := newEnv(t)

	issue, events, err := e.processor.Create(context.Background(), e.alice, CreateInput{
		TemplateID: "tpl",
		Subject:    "Printer on fire",
		Fields:     map[string]string{"f_sev": "2", "f_desc": "smoke everywhere"},
	})
	require.NoError(t, err)

	assert.Equal(t, "new", issue.StateID)
	assert.Equal(t, "alice", issue.AuthorID)
	assert.Nil(t, issue.ResponsibleID)
	assert.Nil(t, issue.ClosedAt)
	assert.Equal(t, e.clock, issue.CreatedAt)

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCreated, events[0].Type)

	values := e.store.values[issue.ID]
	require.NotNil(t, values["f_sev"])
	assert.Equal(t, int64(2), *values["f_sev"])
	require.NotNil(t, values["f_desc"])
	assert.Equal(t, "smoke everywhere", e.store.payloadContent[*values["f_desc"]])
	// One change record per written value.
	assert.Len(t, e.store.changes, 2)
}

func TestCreateMissingRequiredField(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.processor.Create(context.Background(), e.alice, CreateInput{
		TemplateID: "tpl",
		Subject:    "No description",
		Fields:     map[string]string{"f_sev": "1"},
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, []string{"Description is required."}, domainErr.Details["Description"])
}

func TestCreateRejectsZeroIssueReference(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.processor.Create(context.Background(), e.alice, CreateInput{
		TemplateID: "tpl",
		Subject:    "Bad reference",
		Fields:     map[string]string{"f_sev": "1", "f_desc": "x", "f_blocks": "0"},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"This value should be greater than 0."}, apperrors.ToDomainError(err).Details["Blocks"])
}

func TestCreateUnknownFieldRejected(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.processor.Create(context.Background(), e.alice, CreateInput{
		TemplateID: "tpl",
		Subject:    "Unknown field",
		Fields:     map[string]string{"f_sev": "1", "f_desc": "x", "f_eff": "1:00"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateOnLockedTemplate(t *testing.T) {
	e := newEnv(t)
	e.store.template.Locked = true

	_, _, err := e.processor.Create(context.Background(), e.alice, CreateInput{
		TemplateID: "tpl",
		Subject:    "Nope",
		Fields:     map[string]string{"f_sev": "1", "f_desc": "x"},
	})
	require.Error(t, err)
	assert.Equal(t, "Template is locked.", messageOf(err))
}

func TestPayloadDeduplication(t *testing.T) {
	e := newEnv(t)

	first := e.createIssue(t, "First")
	second := e.createIssue(t, "Second")

	a := e.store.values[first.ID]["f_desc"]
	b := e.store.values[second.ID]["f_desc"]
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, *a, *b)
}

func TestCloneInheritsOriginValues(t *testing.T) {
	e := newEnv(t)
	origin := e.createIssue(t, "Origin")

	clone, events, err := e.processor.Clone(context.Background(), e.bob, CloneInput{
		OriginID: origin.ID,
		Subject:  "Clone of origin",
	})
	require.NoError(t, err)

	require.NotNil(t, clone.OriginID)
	assert.Equal(t, origin.ID, *clone.OriginID)
	assert.Equal(t, "bob", clone.AuthorID)
	assert.Equal(t, "new", clone.StateID)

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventCloned, events[0].Type)
	require.NotNil(t, events[0].Parameter)
	assert.Equal(t, origin.ID, *events[0].Parameter)

	// Inherited payloads share the origin's value ids.
	assert.Equal(t, *e.store.values[origin.ID]["f_desc"], *e.store.values[clone.ID]["f_desc"])
	assert.Equal(t, *e.store.values[origin.ID]["f_sev"], *e.store.values[clone.ID]["f_sev"])
}

func TestChangeStateToAssign(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Assign me")

	bob := "bob"
	events, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID:  issue.ID,
		StateID:  "assigned",
		Assignee: &bob,
		Fields:   map[string]string{"f_eff": "2:30"},
	})
	require.NoError(t, err)

	stored := e.store.issues[issue.ID]
	assert.Equal(t, "assigned", stored.StateID)
	require.NotNil(t, stored.ResponsibleID)
	assert.Equal(t, "bob", *stored.ResponsibleID)

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventStateChanged, events[0].Type)
	require.NotNil(t, events[0].Parameter)
	assert.Equal(t, "Assigned", *events[0].Parameter)
	assert.Equal(t, domain.EventIssueAssigned, events[1].Type)
	require.NotNil(t, events[1].Parameter)
	assert.Equal(t, "Bob Builder", *events[1].Parameter)

	require.NotNil(t, e.store.values[issue.ID]["f_eff"])
	assert.Equal(t, int64(150), *e.store.values[issue.ID]["f_eff"])
}

func TestChangeStateAssignRequiresAssignee(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Needs assignee")

	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID,
		StateID: "assigned",
		Fields:  map[string]string{"f_eff": "1:00"},
	})
	require.Error(t, err)
	assert.Equal(t, "Responsible is required.", messageOf(err))
}

func TestChangeStateAssignRejectsNonMember(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Wrong assignee")

	martin := "martin"
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID:  issue.ID,
		StateID:  "assigned",
		Assignee: &martin,
		Fields:   map[string]string{"f_eff": "1:00"},
	})
	require.Error(t, err)
	assert.Equal(t, "The issue cannot be assigned to specified user.", messageOf(err))
}

func TestChangeStateKeepRejectsSuppliedAssignee(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Keep policy")

	bob := "bob"
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID:  issue.ID,
		StateID:  "open",
		Assignee: &bob,
	})
	require.Error(t, err)
	assert.Equal(t, "Responsible should not be specified for this transition.", messageOf(err))
}

func TestChangeStateUndeclaredEdge(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "No shortcut")

	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID,
		StateID: "done",
		Fields:  map[string]string{"f_res": "fixed"},
	})
	require.Error(t, err)
	assert.Equal(t, "You are not allowed to change the current state to specified one.", messageOf(err))
}

func TestChangeStateRequiredFieldOfTargetState(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Close without resolution")

	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID,
		StateID: "open",
	})
	require.NoError(t, err)

	_, err = e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID,
		StateID: "done",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"Resolution is required."}, apperrors.ToDomainError(err).Details["Resolution"])
}

func TestCloseAndReopen(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Full cycle")

	bob := "bob"
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID:  issue.ID,
		StateID:  "assigned",
		Assignee: &bob,
		Fields:   map[string]string{"f_eff": "1:00"},
	})
	require.NoError(t, err)

	events, err := e.processor.ChangeState(context.Background(), e.bob, ChangeStateInput{
		IssueID: issue.ID,
		StateID: "done",
		Fields:  map[string]string{"f_res": "fixed"},
	})
	require.NoError(t, err)

	stored := e.store.issues[issue.ID]
	require.NotNil(t, stored.ClosedAt)
	assert.Equal(t, e.clock, *stored.ClosedAt)
	// Final state carries the Remove policy.
	assert.Nil(t, stored.ResponsibleID)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssueClosed, events[0].Type)

	events, err = e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID,
		StateID: "open",
	})
	require.NoError(t, err)

	stored = e.store.issues[issue.ID]
	assert.Nil(t, stored.ClosedAt)
	assert.Nil(t, stored.ResponsibleID)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssueReopened, events[0].Type)
	require.NotNil(t, events[0].Parameter)
	assert.Equal(t, "Open", *events[0].Parameter)
}

func TestUpdateIsIdempotent(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Steady")
	eventsBefore := len(e.store.events)
	changesBefore := len(e.store.changes)

	events, err := e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Fields:  map[string]string{"f_desc": "something broke"},
	})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, e.store.events, eventsBefore)
	assert.Len(t, e.store.changes, changesBefore)
}

func TestUpdateWritesChangeAndEvent(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Changing")
	oldID := *e.store.values[issue.ID]["f_desc"]

	events, err := e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Fields:  map[string]string{"f_desc": "now it is worse"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssueEdited, events[0].Type)

	newID := *e.store.values[issue.ID]["f_desc"]
	assert.NotEqual(t, oldID, newID)

	history, err := fakeValues{e.store}.History(context.Background(), issue.ID, "f_desc")
	require.NoError(t, err)
	last := history[len(history)-1]
	require.NotNil(t, last.OldValueID)
	require.NotNil(t, last.NewValueID)
	assert.Equal(t, oldID, *last.OldValueID)
	assert.Equal(t, newID, *last.NewValueID)
}

func TestUpdateSubject(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Old subject")
	changesBefore := len(e.store.changes)

	subject := "New subject"
	events, err := e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Subject: &subject,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "New subject", e.store.issues[issue.ID].Subject)
	require.Len(t, e.store.changes, changesBefore+1)
	change := e.store.changes[len(e.store.changes)-1]
	// Subject edits are change records with no field id.
	assert.Nil(t, change.FieldID)
	require.NotNil(t, change.OldValueID)
	require.NotNil(t, change.NewValueID)
	assert.Equal(t, "Old subject", e.store.payloadContent[*change.OldValueID])
	assert.Equal(t, "New subject", e.store.payloadContent[*change.NewValueID])
}

func TestUpdateFieldOfOtherStateNeedsExistingValue(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Cross-state edit")

	// The issue never visited Assigned, so its Estimate has no value.
	_, err := e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Fields:  map[string]string{"f_eff": "3:00"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateClosedIssue(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Closed")
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{IssueID: issue.ID, StateID: "open"})
	require.NoError(t, err)
	_, err = e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID, StateID: "done", Fields: map[string]string{"f_res": "done"},
	})
	require.NoError(t, err)

	_, err = e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Fields:  map[string]string{"f_desc": "too late"},
	})
	require.Error(t, err)
	assert.Equal(t, "Issue is closed.", messageOf(err))
}

func TestFrozenIssueBlocksCommands(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Will freeze")
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{IssueID: issue.ID, StateID: "open"})
	require.NoError(t, err)
	_, err = e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID, StateID: "done", Fields: map[string]string{"f_res": "done"},
	})
	require.NoError(t, err)

	// FrozenDays is 7; eight days later even reopening is refused.
	e.clock = e.clock.Add(8 * 24 * time.Hour)
	_, err = e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{IssueID: issue.ID, StateID: "open"})
	require.Error(t, err)
	assert.Equal(t, "Issue is frozen.", messageOf(err))
}

func TestReassign(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Handover")
	bob := "bob"
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID, StateID: "assigned", Assignee: &bob,
		Fields: map[string]string{"f_eff": "1:00"},
	})
	require.NoError(t, err)

	// Reassigning the current responsible is a no-op.
	events, err := e.processor.Reassign(context.Background(), e.bob, issue.ID, "bob")
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = e.processor.Reassign(context.Background(), e.bob, issue.ID, "carol")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssueReassigned, events[0].Type)
	require.NotNil(t, events[0].Parameter)
	assert.Equal(t, "Carol Coder", *events[0].Parameter)
	assert.Equal(t, "carol", *e.store.issues[issue.ID].ResponsibleID)

	// Assign policy keeps membership enforced on reassignment.
	_, err = e.processor.Reassign(context.Background(), e.carol, issue.ID, "martin")
	require.Error(t, err)
	assert.Equal(t, "The issue cannot be assigned to specified user.", messageOf(err))
}

func TestSuspendAndResume(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Paused")

	_, err := e.processor.Suspend(context.Background(), e.alice, issue.ID, e.clock.Add(-time.Hour))
	require.Error(t, err)
	assert.Equal(t, "Date must be in future.", messageOf(err))

	until := e.clock.Add(48 * time.Hour)
	events, err := e.processor.Suspend(context.Background(), e.alice, issue.ID, until)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssueSuspended, events[0].Type)

	_, err = e.processor.Suspend(context.Background(), e.alice, issue.ID, until.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, "Issue is already suspended.", messageOf(err))

	_, err = e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Fields:  map[string]string{"f_desc": "blocked"},
	})
	require.Error(t, err)
	assert.Equal(t, "Issue is suspended.", messageOf(err))

	events, err = e.processor.Resume(context.Background(), e.alice, issue.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssueResumed, events[0].Type)
	assert.Nil(t, e.store.issues[issue.ID].SuspendedUntil)

	_, err = e.processor.Resume(context.Background(), e.alice, issue.ID)
	require.Error(t, err)
	assert.Equal(t, "Issue is not suspended.", messageOf(err))
}

func TestSuspensionExpiresOnItsOwn(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Short pause")

	_, err := e.processor.Suspend(context.Background(), e.alice, issue.ID, e.clock.Add(24*time.Hour))
	require.NoError(t, err)

	e.clock = e.clock.Add(25 * time.Hour)
	_, err = e.processor.Update(context.Background(), e.alice, UpdateInput{
		IssueID: issue.ID,
		Fields:  map[string]string{"f_desc": "back to work"},
	})
	require.NoError(t, err)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Doomed")

	require.NoError(t, e.processor.Delete(context.Background(), e.alice, issue.ID))
	assert.NotContains(t, e.store.issues, issue.ID)
	assert.NotContains(t, e.store.values, issue.ID)
	for _, event := range e.store.events {
		assert.NotEqual(t, issue.ID, event.IssueID)
	}
	for _, change := range e.store.changes {
		assert.NotEqual(t, issue.ID, change.IssueID)
	}
}

func TestDeleteSuspendedIssue(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Paused and doomed")
	_, err := e.processor.Suspend(context.Background(), e.alice, issue.ID, e.clock.Add(time.Hour))
	require.NoError(t, err)

	err = e.processor.Delete(context.Background(), e.alice, issue.ID)
	require.Error(t, err)
	assert.Equal(t, "Issue is suspended.", messageOf(err))
}

func TestReaderRendersValues(t *testing.T) {
	e := newEnv(t)
	issue := e.createIssue(t, "Readable")
	bob := "bob"
	_, err := e.processor.ChangeState(context.Background(), e.alice, ChangeStateInput{
		IssueID: issue.ID, StateID: "assigned", Assignee: &bob,
		Fields: map[string]string{"f_eff": "2:05", "f_due": "2026-09-01"},
	})
	require.NoError(t, err)

	views, err := e.processor.Values(context.Background(), e.alice, issue.ID)
	require.NoError(t, err)

	rendered := map[string]string{}
	for _, view := range views {
		rendered[view.Field.Name] = view.Value
	}
	assert.Equal(t, "high", rendered["Severity"])
	assert.Equal(t, "something broke", rendered["Description"])
	assert.Equal(t, "2:05", rendered["Estimate"])
	assert.Equal(t, "2026-09-01", rendered["Due"])
}
