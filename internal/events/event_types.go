package events

import (
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// EventType enumerates notification identifiers published after a
// workflow transaction commits.
type EventType string

const (
	EventIssueCreated   EventType = "issue_created"
	EventIssueCloned    EventType = "issue_cloned"
	EventStateChanged   EventType = "state_changed"
	EventIssueAssigned  EventType = "issue_assigned"
	EventIssueEdited    EventType = "issue_edited"
	EventIssueSuspended EventType = "issue_suspended"
	EventIssueResumed   EventType = "issue_resumed"
	EventIssueDeleted   EventType = "issue_deleted"
)

// Event represents a notification emitted by the service layer. It is
// derived from committed audit records; publishing failures never roll
// back the workflow mutation.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   string    `json:"issue_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	TemplateID    string  `json:"template_id"`
	Subject       string  `json:"subject"`
	ResponsibleID *string `json:"responsible_id,omitempty"`
}

// IssueClonedPayload payload.
type IssueClonedPayload struct {
	OriginID string `json:"origin_id"`
	Subject  string `json:"subject"`
}

// StateChangedPayload payload.
type StateChangedPayload struct {
	AuditType domain.EventType `json:"audit_type"`
	StateName string           `json:"state_name"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	AuditType       domain.EventType `json:"audit_type"`
	ResponsibleName string           `json:"responsible_name"`
}

// IssueEditedPayload payload.
type IssueEditedPayload struct {
	Subject string `json:"subject"`
}

// IssueSuspendedPayload payload.
type IssueSuspendedPayload struct {
	Until string `json:"until"`
}
