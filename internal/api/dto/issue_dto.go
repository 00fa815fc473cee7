package dto

import (
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// CreateIssueRequest payload. Fields maps field id to raw input.
type CreateIssueRequest struct {
	TemplateID  string            `json:"template_id"`
	Subject     string            `json:"subject"`
	Responsible *string           `json:"responsible_id,omitempty"`
	Fields      map[string]string `json:"fields"`
}

// CloneIssueRequest payload. Fields omitted here inherit the origin
// issue's current values.
type CloneIssueRequest struct {
	Subject     string            `json:"subject"`
	Responsible *string           `json:"responsible_id,omitempty"`
	Fields      map[string]string `json:"fields"`
}

// ChangeStateRequest payload.
type ChangeStateRequest struct {
	StateID     string            `json:"state_id"`
	Responsible *string           `json:"responsible_id,omitempty"`
	Fields      map[string]string `json:"fields"`
}

// UpdateIssueRequest payload. A nil subject leaves it untouched.
type UpdateIssueRequest struct {
	Subject *string           `json:"subject,omitempty"`
	Fields  map[string]string `json:"fields"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	ResponsibleID string `json:"responsible_id"`
}

// SuspendRequest payload. Until is a date in YYYY-MM-DD form.
type SuspendRequest struct {
	Until string `json:"until"`
}

// IssueSummary response.
type IssueSummary struct {
	ID             string     `json:"id"`
	Subject        string     `json:"subject"`
	TemplateID     string     `json:"template_id"`
	StateID        string     `json:"state_id"`
	AuthorID       string     `json:"author_id"`
	ResponsibleID  *string    `json:"responsible_id"`
	OriginID       *string    `json:"origin_id,omitempty"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ChangedAt      time.Time  `json:"changed_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// FieldValueResponse is one rendered field value.
type FieldValueResponse struct {
	FieldID   string           `json:"field_id"`
	FieldName string           `json:"field_name"`
	Kind      domain.FieldKind `json:"kind"`
	ValueID   *int64           `json:"value_id"`
	Value     string           `json:"value"`
}

// ChangeResponse is one entry of a field's change log.
type ChangeResponse struct {
	ID         string    `json:"id"`
	FieldID    *string   `json:"field_id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	OldValueID *int64    `json:"old_value_id"`
	NewValueID *int64    `json:"new_value_id"`
}

// EventResponse is one audit event.
type EventResponse struct {
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	UserID    string           `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`
	Parameter *string          `json:"parameter,omitempty"`
}
