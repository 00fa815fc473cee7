package workflow

import (
	"context"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// Permission names an operation checked against the authorization
// oracle. Transition-edge authorization is separate: it is evaluated
// against the edge's roles/groups, not the oracle.
type Permission string

const (
	PermissionCreateIssue   Permission = "issue.create"
	PermissionViewIssue     Permission = "issue.view"
	PermissionUpdateIssue   Permission = "issue.update"
	PermissionReassignIssue Permission = "issue.reassign"
	PermissionSuspendIssue  Permission = "issue.suspend"
	PermissionResumeIssue   Permission = "issue.resume"
	PermissionDeleteIssue   Permission = "issue.delete"
)

// Guard is the authorization oracle. It is injected as a capability;
// the engine never consults global state.
type Guard interface {
	IsGranted(ctx context.Context, actor *domain.User, permission Permission, issue *domain.Issue) (bool, error)
}

// FieldGuard filters which fields an actor may read.
type FieldGuard interface {
	CanReadField(ctx context.Context, actor *domain.User, field domain.Field) (bool, error)
}

// IssueRepository persists issues. Get* return a NotFound domain error
// on unknown ids. GetForUpdate locks the issue row for the remainder of
// the surrounding unit of work, so concurrent commands against the same
// issue serialize.
type IssueRepository interface {
	Get(ctx context.Context, id string) (*domain.Issue, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Issue, error)
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository reads workflow definitions: templates, the
// compiled state graph, per-state fields and responsible groups.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id string) (*domain.Template, error)
	Graph(ctx context.Context, templateID string) (*Graph, error)
	GetField(ctx context.Context, id string) (*domain.Field, error)
	FieldsByState(ctx context.Context, stateID string) ([]domain.Field, error)
	ResponsibleGroups(ctx context.Context, stateID string) ([]string, error)
}

// ValueRepository is the value store. Write upserts the current value
// of (issue, field) and returns the resulting value id; payload content
// is deduplicated, so byte-identical canonical payloads of one kind
// always resolve to the same id. A nil inline and nil payload clears
// the value.
type ValueRepository interface {
	Current(ctx context.Context, issueID, fieldID string) (*int64, bool, error)
	CurrentAll(ctx context.Context, issueID string) (map[string]*int64, error)
	Write(ctx context.Context, issueID, fieldID string, kind domain.FieldKind, inline *int64, payload *string) (*int64, error)
	// WriteID upserts the current value to an already-stored value id.
	// Clone uses it to share the origin's payload rows.
	WriteID(ctx context.Context, issueID, fieldID string, valueID *int64) error
	PayloadID(ctx context.Context, kind domain.PayloadKind, content string) (int64, error)
	PayloadContent(ctx context.Context, id int64) (string, error)
	History(ctx context.Context, issueID, fieldID string) ([]domain.Change, error)
	DeleteForIssue(ctx context.Context, issueID string) error
}

// AuditRepository appends immutable events and change records.
type AuditRepository interface {
	AppendEvent(ctx context.Context, event *domain.Event) error
	AppendChange(ctx context.Context, change *domain.Change) error
	ListEvents(ctx context.Context, issueID string) ([]domain.Event, error)
	DeleteForIssue(ctx context.Context, issueID string) error
}

// UserRepository resolves actors, assignees and group membership.
type UserRepository interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	GroupsOf(ctx context.Context, userID string) ([]string, error)
	IsMemberOfAny(ctx context.Context, userID string, groupIDs []string) (bool, error)
}
