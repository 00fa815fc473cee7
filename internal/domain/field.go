package domain

import "time"

// FieldKind enumerates the supported field types. The set is closed;
// per-kind behavior lives in the fieldtype registry.
type FieldKind string

const (
	KindList     FieldKind = "LIST"
	KindText     FieldKind = "TEXT"
	KindString   FieldKind = "STRING"
	KindCheckbox FieldKind = "CHECKBOX"
	KindDate     FieldKind = "DATE"
	KindNumber   FieldKind = "NUMBER"
	KindDuration FieldKind = "DURATION"
	KindDecimal  FieldKind = "DECIMAL"
	KindIssue    FieldKind = "ISSUE"
)

// ListItem is one selectable entry of a LIST field. The item value is
// what gets stored inline for the issue.
type ListItem struct {
	Value int64
	Text  string
}

// FieldParams carries kind-specific validation parameters. Unset
// pointers fall back to the registry defaults for the kind.
type FieldParams struct {
	MaxLength  *int     `json:"max_length,omitempty"`
	Pattern    *string  `json:"pattern,omitempty"`
	MinValue   *int64   `json:"min_value,omitempty"`
	MaxValue   *int64   `json:"max_value,omitempty"`
	MinDecimal *string  `json:"min_decimal,omitempty"`
	MaxDecimal *string  `json:"max_decimal,omitempty"`
	// MinDate/MaxDate are ISO 8601 calendar dates.
	MinDate *string `json:"min_date,omitempty"`
	MaxDate *string `json:"max_date,omitempty"`
}

// Field is a typed data slot attached to a state. Field names are
// unique within their state.
type Field struct {
	ID        string
	StateID   string
	Name      string
	Kind      FieldKind
	Required  bool
	Position  int
	Params    FieldParams
	Items     []ListItem
	CreatedAt time.Time
}
