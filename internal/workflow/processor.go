package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/fieldtype"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

const subjectMaxLength = 250

// Processor executes workflow commands: it validates a requested
// transition or edit against the state graph and the authorization
// oracle, mutates the value store, recomputes the responsible, and
// appends audit records. The caller supplies the transactional unit of
// work; every method expects to run inside one.
type Processor struct {
	issues    IssueRepository
	templates TemplateRepository
	values    ValueRepository
	audit     AuditRepository
	users     UserRepository
	guard     Guard
	fields    FieldGuard
	registry  *fieldtype.Registry
	now       func() time.Time
}

// Dependencies bundles the processor's collaborators.
type Dependencies struct {
	IssueRepo    IssueRepository
	TemplateRepo TemplateRepository
	ValueRepo    ValueRepository
	AuditRepo    AuditRepository
	UserRepo     UserRepository
	Guard        Guard
	FieldGuard   FieldGuard
	Now          func() time.Time
}

// NewProcessor constructs the processor.
func NewProcessor(deps Dependencies) *Processor {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Processor{
		issues:    deps.IssueRepo,
		templates: deps.TemplateRepo,
		values:    deps.ValueRepo,
		audit:     deps.AuditRepo,
		users:     deps.UserRepo,
		guard:     deps.Guard,
		fields:    deps.FieldGuard,
		registry:  fieldtype.NewRegistry(),
		now:       now,
	}
}

// CreateInput describes the create command payload. Fields maps field
// id to raw input.
type CreateInput struct {
	TemplateID  string
	Subject     string
	Responsible *string
	Fields      map[string]string
}

// CloneInput describes the clone command payload. Fields not supplied
// fall back to the origin issue's current values.
type CloneInput struct {
	OriginID    string
	Subject     string
	Responsible *string
	Fields      map[string]string
}

// ChangeStateInput describes a state transition request.
type ChangeStateInput struct {
	IssueID  string
	StateID  string
	Assignee *string
	Fields   map[string]string
}

// UpdateInput describes an edit request. Only fields explicitly
// present are written; a nil Subject leaves the subject untouched.
type UpdateInput struct {
	IssueID string
	Subject *string
	Fields  map[string]string
}

// Create allocates an issue at the template's initial state.
func (p *Processor) Create(ctx context.Context, actor *domain.User, input CreateInput) (*domain.Issue, []domain.Event, error) {
	template, err := p.templates.GetTemplate(ctx, input.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if template.Locked {
		return nil, nil, apperrors.NewAccessDenied("Template is locked.")
	}
	if err := p.requireGranted(ctx, actor, PermissionCreateIssue, nil, "You are not allowed to create new issue."); err != nil {
		return nil, nil, err
	}
	graph, err := p.templates.Graph(ctx, template.ID)
	if err != nil {
		return nil, nil, err
	}
	initial := graph.Initial()
	fields, err := p.templates.FieldsByState(ctx, initial.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := p.rejectUnknownFields(input.Fields, fields); err != nil {
		return nil, nil, err
	}

	violations := map[string][]string{}
	validateSubject(input.Subject, violations)
	resolved := p.resolveSupplied(fields, input.Fields, true, violations)
	if len(violations) > 0 {
		return nil, nil, apperrors.NewValidation(violations)
	}

	responsible, err := p.resolveForState(ctx, initial, nil, input.Responsible, false)
	if err != nil {
		return nil, nil, err
	}

	now := p.now()
	issue := &domain.Issue{
		ID:            uuid.NewString(),
		Subject:       strings.TrimSpace(input.Subject),
		TemplateID:    template.ID,
		StateID:       initial.ID,
		AuthorID:      actor.ID,
		ResponsibleID: responsible,
		CreatedAt:     now,
		ChangedAt:     now,
	}
	if initial.IsFinal() {
		issue.ClosedAt = &now
	}
	if err := p.issues.Create(ctx, issue); err != nil {
		return nil, nil, err
	}
	if _, err := p.applyValues(ctx, actor, issue, fields, resolved, nil, now); err != nil {
		return nil, nil, err
	}

	events, err := p.appendEvent(ctx, nil, issue, domain.EventCreated, actor, nil, now)
	if err != nil {
		return nil, nil, err
	}
	events, err = p.appendResponsibleEvents(ctx, events, issue, actor, nil, responsible, now)
	if err != nil {
		return nil, nil, err
	}
	return issue, events, nil
}

// Clone allocates an issue at the origin template's initial state,
// seeding initial-state fields from the origin's current values.
func (p *Processor) Clone(ctx context.Context, actor *domain.User, input CloneInput) (*domain.Issue, []domain.Event, error) {
	origin, err := p.issues.Get(ctx, input.OriginID)
	if err != nil {
		return nil, nil, err
	}
	template, err := p.templates.GetTemplate(ctx, origin.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if template.Locked {
		return nil, nil, apperrors.NewAccessDenied("Template is locked.")
	}
	if err := p.requireGranted(ctx, actor, PermissionCreateIssue, nil, "You are not allowed to create new issue."); err != nil {
		return nil, nil, err
	}
	graph, err := p.templates.Graph(ctx, template.ID)
	if err != nil {
		return nil, nil, err
	}
	initial := graph.Initial()
	fields, err := p.templates.FieldsByState(ctx, initial.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := p.rejectUnknownFields(input.Fields, fields); err != nil {
		return nil, nil, err
	}
	originValues, err := p.values.CurrentAll(ctx, origin.ID)
	if err != nil {
		return nil, nil, err
	}

	violations := map[string][]string{}
	validateSubject(input.Subject, violations)
	resolved := map[string]fieldtype.Value{}
	inherited := map[string]*int64{}
	for _, field := range fields {
		raw, supplied := input.Fields[field.ID]
		if supplied && raw != "" {
			value, errs := p.registry.Resolve(field, raw)
			if len(errs) > 0 {
				violations[field.Name] = append(violations[field.Name], errs...)
				continue
			}
			resolved[field.ID] = value
			continue
		}
		if id, ok := originValues[field.ID]; ok && id != nil {
			inherited[field.ID] = id
			continue
		}
		if field.Required {
			violations[field.Name] = append(violations[field.Name], requiredMessage(field.Name))
		}
	}
	if len(violations) > 0 {
		return nil, nil, apperrors.NewValidation(violations)
	}

	responsible, err := p.resolveForState(ctx, initial, nil, input.Responsible, false)
	if err != nil {
		return nil, nil, err
	}

	now := p.now()
	issue := &domain.Issue{
		ID:            uuid.NewString(),
		Subject:       strings.TrimSpace(input.Subject),
		TemplateID:    template.ID,
		StateID:       initial.ID,
		AuthorID:      actor.ID,
		ResponsibleID: responsible,
		OriginID:      &origin.ID,
		CreatedAt:     now,
		ChangedAt:     now,
	}
	if initial.IsFinal() {
		issue.ClosedAt = &now
	}
	if err := p.issues.Create(ctx, issue); err != nil {
		return nil, nil, err
	}
	if _, err := p.applyValues(ctx, actor, issue, fields, resolved, nil, now); err != nil {
		return nil, nil, err
	}
	for fieldID, valueID := range inherited {
		if err := p.values.WriteID(ctx, issue.ID, fieldID, valueID); err != nil {
			return nil, nil, err
		}
		if err := p.appendChange(ctx, issue, &fieldID, actor, nil, valueID, now); err != nil {
			return nil, nil, err
		}
	}

	originRef := origin.ID
	events, err := p.appendEvent(ctx, nil, issue, domain.EventCloned, actor, &originRef, now)
	if err != nil {
		return nil, nil, err
	}
	events, err = p.appendResponsibleEvents(ctx, events, issue, actor, nil, responsible, now)
	if err != nil {
		return nil, nil, err
	}
	return issue, events, nil
}

// ChangeState moves an issue along a declared, permitted edge.
func (p *Processor) ChangeState(ctx context.Context, actor *domain.User, input ChangeStateInput) ([]domain.Event, error) {
	issue, template, err := p.lockActive(ctx, input.IssueID)
	if err != nil {
		return nil, err
	}
	graph, err := p.templates.Graph(ctx, template.ID)
	if err != nil {
		return nil, err
	}
	target, ok := graph.State(input.StateID)
	if !ok {
		return nil, apperrors.NewNotFound("state", map[string]any{"state_id": input.StateID})
	}
	edge, declared := graph.Edge(issue.StateID, target.ID)
	if !declared {
		return nil, apperrors.NewAccessDenied("You are not allowed to change the current state to specified one.")
	}
	actorGroups, err := p.users.GroupsOf(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !EdgePermitted(edge, actor, issue, actorGroups) {
		return nil, apperrors.NewAccessDenied("You are not allowed to change the current state to specified one.")
	}
	if input.Assignee != nil {
		if _, err := p.users.Get(ctx, *input.Assignee); err != nil {
			return nil, err
		}
	}

	fields, err := p.templates.FieldsByState(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if err := p.rejectUnknownFields(input.Fields, fields); err != nil {
		return nil, err
	}

	violations := map[string][]string{}
	resolved := map[string]fieldtype.Value{}
	for _, field := range fields {
		raw, supplied := input.Fields[field.ID]
		if !supplied || raw == "" {
			if !field.Required {
				continue
			}
			// A required field of the target state is acceptable only
			// when a value already exists from an earlier visit.
			_, has, err := p.values.Current(ctx, issue.ID, field.ID)
			if err != nil {
				return nil, err
			}
			if !has {
				violations[field.Name] = append(violations[field.Name], requiredMessage(field.Name))
			}
			continue
		}
		value, errs := p.registry.Resolve(field, raw)
		if len(errs) > 0 {
			violations[field.Name] = append(violations[field.Name], errs...)
			continue
		}
		resolved[field.ID] = value
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations)
	}

	responsible, err := p.resolveForState(ctx, target, issue.ResponsibleID, input.Assignee, true)
	if err != nil {
		return nil, err
	}

	now := p.now()
	if _, err := p.applyValues(ctx, actor, issue, fields, resolved, nil, now); err != nil {
		return nil, err
	}

	oldResponsible := issue.ResponsibleID
	wasClosed := issue.IsClosed()
	issue.StateID = target.ID
	issue.ResponsibleID = responsible
	issue.ChangedAt = now
	if target.IsFinal() {
		issue.ClosedAt = &now
	} else {
		issue.ClosedAt = nil
	}
	if err := p.issues.Update(ctx, issue); err != nil {
		return nil, err
	}

	stateName := target.Name
	eventType := domain.EventStateChanged
	switch {
	case target.IsFinal():
		eventType = domain.EventIssueClosed
	case wasClosed:
		eventType = domain.EventIssueReopened
	}
	events, err := p.appendEvent(ctx, nil, issue, eventType, actor, &stateName, now)
	if err != nil {
		return nil, err
	}
	return p.appendResponsibleEvents(ctx, events, issue, actor, oldResponsible, responsible, now)
}

// Update edits the subject and/or field values of an issue in a
// non-final state. A request that changes nothing appends no event and
// no change record.
func (p *Processor) Update(ctx context.Context, actor *domain.User, input UpdateInput) ([]domain.Event, error) {
	issue, _, err := p.lockActive(ctx, input.IssueID)
	if err != nil {
		return nil, err
	}
	if issue.IsClosed() {
		return nil, apperrors.NewAccessDenied("Issue is closed.")
	}
	if err := p.requireGranted(ctx, actor, PermissionUpdateIssue, issue, "You are not allowed to edit this issue."); err != nil {
		return nil, err
	}

	violations := map[string][]string{}
	var subject *string
	if input.Subject != nil {
		trimmed := strings.TrimSpace(*input.Subject)
		validateSubject(trimmed, violations)
		subject = &trimmed
	}

	type pendingWrite struct {
		field domain.Field
		value *fieldtype.Value
	}
	var writes []pendingWrite
	for fieldID, raw := range input.Fields {
		field, err := p.templates.GetField(ctx, fieldID)
		if err != nil {
			return nil, err
		}
		if field.StateID != issue.StateID {
			// Fields of other states are editable only once the issue
			// actually holds a value for them.
			if _, has, err := p.values.Current(ctx, issue.ID, fieldID); err != nil {
				return nil, err
			} else if !has {
				return nil, apperrors.NewNotFound("field", map[string]any{"field_id": fieldID})
			}
		}
		if raw == "" {
			if field.Required {
				violations[field.Name] = append(violations[field.Name], requiredMessage(field.Name))
				continue
			}
			writes = append(writes, pendingWrite{field: *field})
			continue
		}
		value, errs := p.registry.Resolve(*field, raw)
		if len(errs) > 0 {
			violations[field.Name] = append(violations[field.Name], errs...)
			continue
		}
		writes = append(writes, pendingWrite{field: *field, value: &value})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations)
	}

	now := p.now()
	changed := false
	for _, w := range writes {
		wrote, err := p.writeValue(ctx, actor, issue, w.field, w.value, now)
		if err != nil {
			return nil, err
		}
		changed = changed || wrote
	}

	if subject != nil && *subject != issue.Subject {
		oldID, err := p.values.PayloadID(ctx, domain.PayloadString, issue.Subject)
		if err != nil {
			return nil, err
		}
		newID, err := p.values.PayloadID(ctx, domain.PayloadString, *subject)
		if err != nil {
			return nil, err
		}
		if err := p.appendChange(ctx, issue, nil, actor, &oldID, &newID, now); err != nil {
			return nil, err
		}
		issue.Subject = *subject
		changed = true
	}

	if !changed {
		return nil, nil
	}
	issue.ChangedAt = now
	if err := p.issues.Update(ctx, issue); err != nil {
		return nil, err
	}
	return p.appendEvent(ctx, nil, issue, domain.EventIssueEdited, actor, nil, now)
}

// Reassign sets a new responsible without a state transition.
// Reassigning the current responsible is a no-op.
func (p *Processor) Reassign(ctx context.Context, actor *domain.User, issueID, responsibleID string) ([]domain.Event, error) {
	issue, _, err := p.lockActive(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.IsClosed() {
		return nil, apperrors.NewAccessDenied("Issue is closed.")
	}
	if err := p.requireGranted(ctx, actor, PermissionReassignIssue, issue, "You are not allowed to reassign this issue."); err != nil {
		return nil, err
	}
	assignee, err := p.users.Get(ctx, responsibleID)
	if err != nil {
		return nil, err
	}
	graph, err := p.templates.Graph(ctx, issue.TemplateID)
	if err != nil {
		return nil, err
	}
	state, ok := graph.State(issue.StateID)
	if !ok {
		return nil, apperrors.NewNotFound("state", map[string]any{"state_id": issue.StateID})
	}
	if state.Responsible == domain.ResponsibleAssign {
		groups, err := p.templates.ResponsibleGroups(ctx, state.ID)
		if err != nil {
			return nil, err
		}
		member, err := p.users.IsMemberOfAny(ctx, assignee.ID, groups)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperrors.NewAccessDenied("The issue cannot be assigned to specified user.")
		}
	}
	if issue.ResponsibleID != nil && *issue.ResponsibleID == assignee.ID {
		return nil, nil
	}

	now := p.now()
	oldResponsible := issue.ResponsibleID
	issue.ResponsibleID = &assignee.ID
	issue.ChangedAt = now
	if err := p.issues.Update(ctx, issue); err != nil {
		return nil, err
	}
	return p.appendResponsibleEvents(ctx, nil, issue, actor, oldResponsible, issue.ResponsibleID, now)
}

// Suspend blocks every command against the issue until the given date.
func (p *Processor) Suspend(ctx context.Context, actor *domain.User, issueID string, until time.Time) ([]domain.Event, error) {
	issue, err := p.issues.GetForUpdate(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := p.requireGranted(ctx, actor, PermissionSuspendIssue, issue, "You are not allowed to suspend this issue."); err != nil {
		return nil, err
	}
	now := p.now()
	if issue.IsClosed() {
		return nil, apperrors.NewAccessDenied("Issue is closed.")
	}
	if issue.IsSuspended(now) {
		return nil, apperrors.NewBadRequest("Issue is already suspended.")
	}
	if !until.After(now) {
		return nil, apperrors.NewBadRequest("Date must be in future.")
	}
	issue.SuspendedUntil = &until
	issue.ChangedAt = now
	if err := p.issues.Update(ctx, issue); err != nil {
		return nil, err
	}
	date := until.Format("2006-01-02")
	return p.appendEvent(ctx, nil, issue, domain.EventIssueSuspended, actor, &date, now)
}

// Resume lifts a suspension.
func (p *Processor) Resume(ctx context.Context, actor *domain.User, issueID string) ([]domain.Event, error) {
	issue, err := p.issues.GetForUpdate(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := p.requireGranted(ctx, actor, PermissionResumeIssue, issue, "You are not allowed to resume this issue."); err != nil {
		return nil, err
	}
	now := p.now()
	if !issue.IsSuspended(now) {
		return nil, apperrors.NewBadRequest("Issue is not suspended.")
	}
	issue.SuspendedUntil = nil
	issue.ChangedAt = now
	if err := p.issues.Update(ctx, issue); err != nil {
		return nil, err
	}
	return p.appendEvent(ctx, nil, issue, domain.EventIssueResumed, actor, nil, now)
}

// Delete physically removes the issue with its values, events and
// changes.
func (p *Processor) Delete(ctx context.Context, actor *domain.User, issueID string) error {
	issue, err := p.issues.GetForUpdate(ctx, issueID)
	if err != nil {
		return err
	}
	template, err := p.templates.GetTemplate(ctx, issue.TemplateID)
	if err != nil {
		return err
	}
	if template.Locked {
		return apperrors.NewAccessDenied("Template is locked.")
	}
	if issue.IsSuspended(p.now()) {
		return apperrors.NewAccessDenied("Issue is suspended.")
	}
	if err := p.requireGranted(ctx, actor, PermissionDeleteIssue, issue, "You are not allowed to delete this issue."); err != nil {
		return err
	}
	if err := p.values.DeleteForIssue(ctx, issue.ID); err != nil {
		return err
	}
	if err := p.audit.DeleteForIssue(ctx, issue.ID); err != nil {
		return err
	}
	return p.issues.Delete(ctx, issue.ID)
}

// lockActive loads the issue under a row lock and applies the shared
// preconditions every mutating command shares: the issue must not be
// suspended or frozen and the template must not be locked.
func (p *Processor) lockActive(ctx context.Context, issueID string) (*domain.Issue, *domain.Template, error) {
	issue, err := p.issues.GetForUpdate(ctx, issueID)
	if err != nil {
		return nil, nil, err
	}
	template, err := p.templates.GetTemplate(ctx, issue.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	now := p.now()
	if template.Locked {
		return nil, nil, apperrors.NewAccessDenied("Template is locked.")
	}
	if issue.IsSuspended(now) {
		return nil, nil, apperrors.NewAccessDenied("Issue is suspended.")
	}
	if issue.IsFrozen(*template, now) {
		return nil, nil, apperrors.NewAccessDenied("Issue is frozen.")
	}
	return issue, template, nil
}

func (p *Processor) requireGranted(ctx context.Context, actor *domain.User, permission Permission, issue *domain.Issue, message string) error {
	granted, err := p.guard.IsGranted(ctx, actor, permission, issue)
	if err != nil {
		return err
	}
	if !granted {
		return apperrors.NewAccessDenied(message)
	}
	return nil
}

func (p *Processor) resolveForState(ctx context.Context, target domain.State, current, requested *string, strict bool) (*string, error) {
	if requested != nil {
		if _, err := p.users.Get(ctx, *requested); err != nil {
			return nil, err
		}
	}
	groups, err := p.templates.ResponsibleGroups(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return ResolveResponsible(ctx, target, groups, current, requested, strict, p.users.IsMemberOfAny)
}

// resolveSupplied parses and validates the supplied raw inputs against
// the given fields, collecting violations. Required fields with no
// input at all are violations when requireMissing is set.
func (p *Processor) resolveSupplied(fields []domain.Field, raw map[string]string, requireMissing bool, violations map[string][]string) map[string]fieldtype.Value {
	resolved := map[string]fieldtype.Value{}
	for _, field := range fields {
		input, supplied := raw[field.ID]
		if !supplied || input == "" {
			if field.Required && requireMissing {
				violations[field.Name] = append(violations[field.Name], requiredMessage(field.Name))
			}
			continue
		}
		value, errs := p.registry.Resolve(field, input)
		if len(errs) > 0 {
			violations[field.Name] = append(violations[field.Name], errs...)
			continue
		}
		resolved[field.ID] = value
	}
	return resolved
}

// applyValues writes resolved values in field display order and
// appends a change record per actual mutation.
func (p *Processor) applyValues(ctx context.Context, actor *domain.User, issue *domain.Issue, fields []domain.Field, resolved map[string]fieldtype.Value, nulls map[string]bool, now time.Time) (bool, error) {
	changed := false
	for _, field := range fields {
		var value *fieldtype.Value
		if v, ok := resolved[field.ID]; ok {
			value = &v
		} else if !nulls[field.ID] {
			continue
		}
		wrote, err := p.writeValue(ctx, actor, issue, field, value, now)
		if err != nil {
			return changed, err
		}
		changed = changed || wrote
	}
	return changed, nil
}

// writeValue upserts one field value. Passing a nil value clears it.
// Returns true when the stored value id actually changed.
func (p *Processor) writeValue(ctx context.Context, actor *domain.User, issue *domain.Issue, field domain.Field, value *fieldtype.Value, now time.Time) (bool, error) {
	oldID, _, err := p.values.Current(ctx, issue.ID, field.ID)
	if err != nil {
		return false, err
	}
	var inline *int64
	var payload *string
	if value != nil {
		inline, payload = p.registry.Canonical(*value)
	}
	newID, err := p.values.Write(ctx, issue.ID, field.ID, field.Kind, inline, payload)
	if err != nil {
		return false, err
	}
	if valueIDEqual(oldID, newID) {
		return false, nil
	}
	fieldID := field.ID
	if err := p.appendChange(ctx, issue, &fieldID, actor, oldID, newID, now); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Processor) appendChange(ctx context.Context, issue *domain.Issue, fieldID *string, actor *domain.User, oldID, newID *int64, now time.Time) error {
	return p.audit.AppendChange(ctx, &domain.Change{
		ID:         uuid.NewString(),
		IssueID:    issue.ID,
		FieldID:    fieldID,
		UserID:     actor.ID,
		CreatedAt:  now,
		OldValueID: oldID,
		NewValueID: newID,
	})
}

func (p *Processor) appendEvent(ctx context.Context, events []domain.Event, issue *domain.Issue, eventType domain.EventType, actor *domain.User, parameter *string, now time.Time) ([]domain.Event, error) {
	event := domain.Event{
		ID:        uuid.NewString(),
		IssueID:   issue.ID,
		Type:      eventType,
		UserID:    actor.ID,
		CreatedAt: now,
		Parameter: parameter,
	}
	if err := p.audit.AppendEvent(ctx, &event); err != nil {
		return events, err
	}
	return append(events, event), nil
}

// appendResponsibleEvents records IssueAssigned/IssueReassigned when
// the responsible actually changed. Removal appends nothing.
func (p *Processor) appendResponsibleEvents(ctx context.Context, events []domain.Event, issue *domain.Issue, actor *domain.User, oldResponsible, newResponsible *string, now time.Time) ([]domain.Event, error) {
	if newResponsible == nil || valueEqual(oldResponsible, newResponsible) {
		return events, nil
	}
	assignee, err := p.users.Get(ctx, *newResponsible)
	if err != nil {
		return events, err
	}
	eventType := domain.EventIssueAssigned
	if oldResponsible != nil {
		eventType = domain.EventIssueReassigned
	}
	name := assignee.FullName
	return p.appendEvent(ctx, events, issue, eventType, actor, &name, now)
}

func validateSubject(subject string, violations map[string][]string) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		violations["subject"] = append(violations["subject"], "Subject is required.")
		return
	}
	if len(subject) > subjectMaxLength {
		violations["subject"] = append(violations["subject"],
			fmt.Sprintf("Subject should have %d characters or less.", subjectMaxLength))
	}
}

func (p *Processor) rejectUnknownFields(raw map[string]string, fields []domain.Field) error {
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		known[field.ID] = struct{}{}
	}
	for fieldID := range raw {
		if _, ok := known[fieldID]; !ok {
			return apperrors.NewNotFound("field", map[string]any{"field_id": fieldID})
		}
	}
	return nil
}

func requiredMessage(name string) string {
	return fmt.Sprintf("%s is required.", name)
}

func valueIDEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func valueEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
