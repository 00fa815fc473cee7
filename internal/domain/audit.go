package domain

import "time"

// EventType enumerates lifecycle occurrences captured in the audit
// trail.
type EventType string

const (
	EventCreated         EventType = "CREATED"
	EventCloned          EventType = "CLONED"
	EventStateChanged    EventType = "STATE_CHANGED"
	EventIssueAssigned   EventType = "ISSUE_ASSIGNED"
	EventIssueReassigned EventType = "ISSUE_REASSIGNED"
	EventIssueEdited     EventType = "ISSUE_EDITED"
	EventIssueClosed     EventType = "ISSUE_CLOSED"
	EventIssueReopened   EventType = "ISSUE_REOPENED"
	EventIssueSuspended  EventType = "ISSUE_SUSPENDED"
	EventIssueResumed    EventType = "ISSUE_RESUMED"
)

// Event is an immutable audit record of one lifecycle occurrence.
// Created exactly once per occurrence, never mutated or deleted (except
// when the owning issue is physically deleted).
type Event struct {
	ID        string
	IssueID   string
	Type      EventType
	UserID    string
	CreatedAt time.Time
	// Parameter carries event-specific free text: the new state name,
	// the new responsible's name, the origin issue id of a clone.
	Parameter *string
}

// Change is an immutable audit record of one field mutation. A nil
// FieldID marks a subject change; old/new ids then reference string
// payload rows.
type Change struct {
	ID         string
	IssueID    string
	FieldID    *string
	UserID     string
	CreatedAt  time.Time
	OldValueID *int64
	NewValueID *int64
}
