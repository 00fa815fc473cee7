package domain

import "time"

// FieldValue ties one (issue, field) pair to its current value id.
//
// The value id is a single nullable int64 whose interpretation depends
// on the field kind: checkbox, date, number, duration and list values
// encode directly into it, while text, string and decimal values hold
// the id of a deduplicated payload row. Identical payloads always
// resolve to the same id, so id equality detects "unchanged value"
// without content comparison.
type FieldValue struct {
	IssueID   string
	FieldID   string
	ValueID   *int64
	ChangedAt time.Time
}

// PayloadKind classifies deduplicated payload rows.
type PayloadKind string

const (
	PayloadText    PayloadKind = "TEXT"
	PayloadString  PayloadKind = "STRING"
	PayloadDecimal PayloadKind = "DECIMAL"
)

// Payload is one content-addressed row shared by every field value with
// byte-identical canonical content of the same kind.
type Payload struct {
	ID      int64
	Kind    PayloadKind
	Content string
}
