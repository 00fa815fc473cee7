// Package fieldtype implements the registry of field kinds: per-kind
// parsing, validation and canonical storage representation. The kind
// set is closed, so dispatch is a plain table over the enum. Everything
// here is pure; storage writes belong to the value repository.
package fieldtype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// Registry defaults, applied when the field carries no explicit
// parameter for its kind.
const (
	DefaultTextMaxLength   = 10000
	DefaultStringMaxLength = 250
	DefaultNumberMin       = 0
	DefaultNumberMax       = 1000000000
	DefaultDurationMin     = 0
	DefaultDurationMax     = 59999999 // 999999:59 in minutes
)

const dateLayout = "2006-01-02"

var durationPattern = regexp.MustCompile(`^\d{1,6}:[0-5]\d$`)

// Value is the parsed, typed form of a raw input. Inline kinds carry
// Int; payload kinds carry the canonical Text form.
type Value struct {
	Kind domain.FieldKind
	Int  int64
	Text string
}

type handler struct {
	parse    func(f domain.Field, raw string) (Value, string)
	validate func(f domain.Field, v Value) []string
}

// Registry dispatches parse/validate per field kind.
type Registry struct {
	handlers map[domain.FieldKind]handler
}

// NewRegistry builds the registry over the fixed kind set.
func NewRegistry() *Registry {
	return &Registry{handlers: map[domain.FieldKind]handler{
		domain.KindList:     {parseList, validateList},
		domain.KindText:     {parseText, validateText},
		domain.KindString:   {parseString, validateString},
		domain.KindCheckbox: {parseCheckbox, validateNone},
		domain.KindDate:     {parseDate, validateDate},
		domain.KindNumber:   {parseNumber, validateNumber},
		domain.KindDuration: {parseDuration, validateDuration},
		domain.KindDecimal:  {parseDecimal, validateDecimal},
		domain.KindIssue:    {parseIssue, validateNone},
	}}
}

// Parse converts raw input into a typed value. The second return is a
// parse violation message, empty on success.
func (r *Registry) Parse(f domain.Field, raw string) (Value, string) {
	h, ok := r.handlers[f.Kind]
	if !ok {
		return Value{}, fmt.Sprintf("%s has unsupported kind %s.", f.Name, f.Kind)
	}
	return h.parse(f, raw)
}

// Validate checks a parsed value against the field's parameters and
// returns every violation, not only the first.
func (r *Registry) Validate(f domain.Field, v Value) []string {
	h, ok := r.handlers[f.Kind]
	if !ok {
		return []string{fmt.Sprintf("%s has unsupported kind %s.", f.Name, f.Kind)}
	}
	return h.validate(f, v)
}

// Resolve parses and validates in one step, collecting violations.
func (r *Registry) Resolve(f domain.Field, raw string) (Value, []string) {
	v, parseErr := r.Parse(f, raw)
	if parseErr != "" {
		return Value{}, []string{parseErr}
	}
	if violations := r.Validate(f, v); len(violations) > 0 {
		return Value{}, violations
	}
	return v, nil
}

// Canonical returns the storage representation: an inline scalar or a
// deduplicated payload string, never both.
func (r *Registry) Canonical(v Value) (inline *int64, payload *string) {
	if _, ok := PayloadKindOf(v.Kind); ok {
		text := v.Text
		return nil, &text
	}
	n := v.Int
	return &n, nil
}

// PayloadKindOf maps a field kind to its payload table kind. The second
// return is false for inline kinds.
func PayloadKindOf(kind domain.FieldKind) (domain.PayloadKind, bool) {
	switch kind {
	case domain.KindText:
		return domain.PayloadText, true
	case domain.KindString:
		return domain.PayloadString, true
	case domain.KindDecimal:
		return domain.PayloadDecimal, true
	default:
		return "", false
	}
}

func parseList(f domain.Field, raw string) (Value, string) {
	key, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Value{}, fmt.Sprintf("%s value is not valid.", f.Name)
	}
	return Value{Kind: f.Kind, Int: key}, ""
}

func validateList(f domain.Field, v Value) []string {
	for _, item := range f.Items {
		if item.Value == v.Int {
			return nil
		}
	}
	return []string{fmt.Sprintf("%s value is not valid.", f.Name)}
}

func parseText(f domain.Field, raw string) (Value, string) {
	return Value{Kind: f.Kind, Text: raw}, ""
}

func validateText(f domain.Field, v Value) []string {
	max := DefaultTextMaxLength
	if f.Params.MaxLength != nil {
		max = *f.Params.MaxLength
	}
	if len(v.Text) > max {
		return []string{tooLong(f.Name, max)}
	}
	return nil
}

func parseString(f domain.Field, raw string) (Value, string) {
	return Value{Kind: f.Kind, Text: raw}, ""
}

func validateString(f domain.Field, v Value) []string {
	var violations []string
	max := DefaultStringMaxLength
	if f.Params.MaxLength != nil {
		max = *f.Params.MaxLength
	}
	if len(v.Text) > max {
		violations = append(violations, tooLong(f.Name, max))
	}
	if f.Params.Pattern != nil {
		re, err := regexp.Compile(*f.Params.Pattern)
		if err != nil || !re.MatchString(v.Text) {
			violations = append(violations, fmt.Sprintf("%s format is invalid.", f.Name))
		}
	}
	return violations
}

func parseCheckbox(f domain.Field, raw string) (Value, string) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false":
		return Value{Kind: f.Kind, Int: 0}, ""
	case "1", "true":
		return Value{Kind: f.Kind, Int: 1}, ""
	default:
		return Value{}, fmt.Sprintf("%s should be 'false' or 'true'.", f.Name)
	}
}

func parseDate(f domain.Field, raw string) (Value, string) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return Value{}, fmt.Sprintf("%s should be a date in YYYY-MM-DD format.", f.Name)
	}
	return Value{Kind: f.Kind, Int: t.Unix() / 86400}, ""
}

func validateDate(f domain.Field, v Value) []string {
	min, hasMin := epochDay(f.Params.MinDate)
	max, hasMax := epochDay(f.Params.MaxDate)
	if (hasMin && v.Int < min) || (hasMax && v.Int > max) {
		minText, maxText := "-", "-"
		if f.Params.MinDate != nil {
			minText = *f.Params.MinDate
		}
		if f.Params.MaxDate != nil {
			maxText = *f.Params.MaxDate
		}
		return []string{fmt.Sprintf("%s should be in range from %s to %s.", f.Name, minText, maxText)}
	}
	return nil
}

func parseNumber(f domain.Field, raw string) (Value, string) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Value{}, fmt.Sprintf("%s should be an integer.", f.Name)
	}
	return Value{Kind: f.Kind, Int: n}, ""
}

func validateNumber(f domain.Field, v Value) []string {
	min, max := int64(DefaultNumberMin), int64(DefaultNumberMax)
	if f.Params.MinValue != nil {
		min = *f.Params.MinValue
	}
	if f.Params.MaxValue != nil {
		max = *f.Params.MaxValue
	}
	if v.Int < min || v.Int > max {
		return []string{fmt.Sprintf("%s should be in range from %d to %d.", f.Name, min, max)}
	}
	return nil
}

func parseDuration(f domain.Field, raw string) (Value, string) {
	raw = strings.TrimSpace(raw)
	if !durationPattern.MatchString(raw) {
		return Value{}, fmt.Sprintf("%s should be an amount of time in H:MM format.", f.Name)
	}
	parts := strings.SplitN(raw, ":", 2)
	hours, _ := strconv.ParseInt(parts[0], 10, 64)
	minutes, _ := strconv.ParseInt(parts[1], 10, 64)
	return Value{Kind: f.Kind, Int: hours*60 + minutes}, ""
}

func validateDuration(f domain.Field, v Value) []string {
	min, max := int64(DefaultDurationMin), int64(DefaultDurationMax)
	if f.Params.MinValue != nil {
		min = *f.Params.MinValue
	}
	if f.Params.MaxValue != nil {
		max = *f.Params.MaxValue
	}
	if v.Int < min || v.Int > max {
		return []string{fmt.Sprintf("%s should be in range from %s to %s.", f.Name, FormatDuration(min), FormatDuration(max))}
	}
	return nil
}

func parseDecimal(f domain.Field, raw string) (Value, string) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Value{}, fmt.Sprintf("%s should be a decimal number.", f.Name)
	}
	// String() is the canonical form: no exponent, trailing zeros
	// trimmed, so byte-identical content means equal numbers.
	return Value{Kind: f.Kind, Text: d.String()}, ""
}

func validateDecimal(f domain.Field, v Value) []string {
	d, err := decimal.NewFromString(v.Text)
	if err != nil {
		return []string{fmt.Sprintf("%s should be a decimal number.", f.Name)}
	}
	if f.Params.MinDecimal != nil {
		if min, err := decimal.NewFromString(*f.Params.MinDecimal); err == nil && d.LessThan(min) {
			return []string{decimalRange(f)}
		}
	}
	if f.Params.MaxDecimal != nil {
		if max, err := decimal.NewFromString(*f.Params.MaxDecimal); err == nil && d.GreaterThan(max) {
			return []string{decimalRange(f)}
		}
	}
	return nil
}

func parseIssue(f domain.Field, raw string) (Value, string) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return Value{}, "This value should be greater than 0."
	}
	return Value{Kind: f.Kind, Int: n}, ""
}

func validateNone(domain.Field, Value) []string {
	return nil
}

// FormatDuration renders stored minutes back to H:MM.
func FormatDuration(minutes int64) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// FormatDate renders a stored epoch day back to YYYY-MM-DD.
func FormatDate(epochDays int64) string {
	return time.Unix(epochDays*86400, 0).UTC().Format(dateLayout)
}

func epochDay(date *string) (int64, bool) {
	if date == nil {
		return 0, false
	}
	t, err := time.ParseInLocation(dateLayout, *date, time.UTC)
	if err != nil {
		return 0, false
	}
	return t.Unix() / 86400, true
}

func tooLong(name string, max int) string {
	return fmt.Sprintf("%s should have %d characters or less.", name, max)
}

func decimalRange(f domain.Field) string {
	min, max := "-", "-"
	if f.Params.MinDecimal != nil {
		min = *f.Params.MinDecimal
	}
	if f.Params.MaxDecimal != nil {
		max = *f.Params.MaxDecimal
	}
	return fmt.Sprintf("%s should be in range from %s to %s.", f.Name, min, max)
}
