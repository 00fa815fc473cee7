package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/observability"
	"github.com/spec-kit/issue-workflow/internal/repository"
	"github.com/spec-kit/issue-workflow/internal/workflow"
)

// IssueService runs workflow commands. Each command executes inside one
// unit of work; notifications derived from the appended audit records
// are published only after the transaction commits.
type IssueService struct {
	uow        repository.UnitOfWork
	processor  *workflow.Processor
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	UnitOfWork repository.UnitOfWork
	Processor  *workflow.Processor
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewIssueService creates the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		uow:        deps.UnitOfWork,
		processor:  deps.Processor,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Create opens a new issue at its template's initial state.
func (s *IssueService) Create(ctx context.Context, actor *domain.User, input workflow.CreateInput) (*domain.Issue, error) {
	var issue *domain.Issue
	var audit []domain.Event
	err := s.uow.Within(ctx, func(txCtx context.Context) error {
		var err error
		issue, audit, err = s.processor.Create(txCtx, actor, input)
		return err
	})
	s.metrics.RecordCommand("issue.create", err != nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("issue created",
		zap.String("issue_id", issue.ID),
		zap.String("template_id", issue.TemplateID),
		zap.String("actor_id", actor.ID))
	s.publish(ctx, issue, audit)
	return issue, nil
}

// Clone opens a new issue seeded from an existing one.
func (s *IssueService) Clone(ctx context.Context, actor *domain.User, input workflow.CloneInput) (*domain.Issue, error) {
	var issue *domain.Issue
	var audit []domain.Event
	err := s.uow.Within(ctx, func(txCtx context.Context) error {
		var err error
		issue, audit, err = s.processor.Clone(txCtx, actor, input)
		return err
	})
	s.metrics.RecordCommand("issue.clone", err != nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("issue cloned",
		zap.String("issue_id", issue.ID),
		zap.String("origin_id", input.OriginID),
		zap.String("actor_id", actor.ID))
	s.publish(ctx, issue, audit)
	return issue, nil
}

// ChangeState moves an issue along a declared transition.
func (s *IssueService) ChangeState(ctx context.Context, actor *domain.User, input workflow.ChangeStateInput) error {
	return s.command(ctx, actor, "issue.change_state", input.IssueID, func(txCtx context.Context) ([]domain.Event, error) {
		return s.processor.ChangeState(txCtx, actor, input)
	})
}

// Update edits the subject and field values of an issue.
func (s *IssueService) Update(ctx context.Context, actor *domain.User, input workflow.UpdateInput) error {
	return s.command(ctx, actor, "issue.update", input.IssueID, func(txCtx context.Context) ([]domain.Event, error) {
		return s.processor.Update(txCtx, actor, input)
	})
}

// Reassign hands the issue to another responsible.
func (s *IssueService) Reassign(ctx context.Context, actor *domain.User, issueID, responsibleID string) error {
	return s.command(ctx, actor, "issue.reassign", issueID, func(txCtx context.Context) ([]domain.Event, error) {
		return s.processor.Reassign(txCtx, actor, issueID, responsibleID)
	})
}

// Suspend blocks commands against the issue until the given date.
func (s *IssueService) Suspend(ctx context.Context, actor *domain.User, issueID string, until time.Time) error {
	return s.command(ctx, actor, "issue.suspend", issueID, func(txCtx context.Context) ([]domain.Event, error) {
		return s.processor.Suspend(txCtx, actor, issueID, until)
	})
}

// Resume lifts a suspension.
func (s *IssueService) Resume(ctx context.Context, actor *domain.User, issueID string) error {
	return s.command(ctx, actor, "issue.resume", issueID, func(txCtx context.Context) ([]domain.Event, error) {
		return s.processor.Resume(txCtx, actor, issueID)
	})
}

// Delete removes the issue with its values and audit trail.
func (s *IssueService) Delete(ctx context.Context, actor *domain.User, issueID string) error {
	err := s.uow.Within(ctx, func(txCtx context.Context) error {
		return s.processor.Delete(txCtx, actor, issueID)
	})
	s.metrics.RecordCommand("issue.delete", err != nil)
	if err != nil {
		return err
	}
	s.logger.Info("issue deleted", zap.String("issue_id", issueID), zap.String("actor_id", actor.ID))
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventIssueDeleted,
		IssueID:   issueID,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
	})
	return nil
}

// Get returns one issue for the actor.
func (s *IssueService) Get(ctx context.Context, actor *domain.User, issueID string) (*domain.Issue, error) {
	return s.processor.Issue(ctx, actor, issueID)
}

// Values returns the issue's readable field values.
func (s *IssueService) Values(ctx context.Context, actor *domain.User, issueID string) ([]workflow.FieldValueView, error) {
	return s.processor.Values(ctx, actor, issueID)
}

// History returns one field's change log.
func (s *IssueService) History(ctx context.Context, actor *domain.User, issueID, fieldID string) ([]domain.Change, error) {
	return s.processor.History(ctx, actor, issueID, fieldID)
}

// Events returns the issue's audit events.
func (s *IssueService) Events(ctx context.Context, actor *domain.User, issueID string) ([]domain.Event, error) {
	return s.processor.Events(ctx, actor, issueID)
}

// command wraps a mutating processor call with the unit of work, the
// command counter and post-commit notification publishing.
func (s *IssueService) command(ctx context.Context, actor *domain.User, name, issueID string, fn func(ctx context.Context) ([]domain.Event, error)) error {
	var audit []domain.Event
	err := s.uow.Within(ctx, func(txCtx context.Context) error {
		var err error
		audit, err = fn(txCtx)
		return err
	})
	s.metrics.RecordCommand(name, err != nil)
	if err != nil {
		return err
	}
	if len(audit) > 0 {
		s.logger.Info("issue command applied",
			zap.String("command", name),
			zap.String("issue_id", issueID),
			zap.String("actor_id", actor.ID),
			zap.Int("audit_events", len(audit)))
		s.publish(ctx, nil, audit)
	}
	return nil
}

// publish converts committed audit records into notifications. Delivery
// is best effort.
func (s *IssueService) publish(ctx context.Context, issue *domain.Issue, audit []domain.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, record := range audit {
		note, ok := s.notificationFor(issue, record)
		if !ok {
			continue
		}
		_ = s.dispatcher.Publish(ctx, note)
	}
}

func (s *IssueService) notificationFor(issue *domain.Issue, record domain.Event) (events.Event, bool) {
	note := events.Event{
		ID:        uuid.NewString(),
		IssueID:   record.IssueID,
		ActorID:   record.UserID,
		Timestamp: record.CreatedAt,
	}
	parameter := ""
	if record.Parameter != nil {
		parameter = *record.Parameter
	}
	switch record.Type {
	case domain.EventCreated:
		note.Type = events.EventIssueCreated
		if issue != nil {
			note.Payload = events.IssueCreatedPayload{
				TemplateID:    issue.TemplateID,
				Subject:       issue.Subject,
				ResponsibleID: issue.ResponsibleID,
			}
		}
	case domain.EventCloned:
		note.Type = events.EventIssueCloned
		payload := events.IssueClonedPayload{OriginID: parameter}
		if issue != nil {
			payload.Subject = issue.Subject
		}
		note.Payload = payload
	case domain.EventStateChanged, domain.EventIssueClosed, domain.EventIssueReopened:
		note.Type = events.EventStateChanged
		note.Payload = events.StateChangedPayload{AuditType: record.Type, StateName: parameter}
	case domain.EventIssueAssigned, domain.EventIssueReassigned:
		note.Type = events.EventIssueAssigned
		note.Payload = events.IssueAssignedPayload{AuditType: record.Type, ResponsibleName: parameter}
	case domain.EventIssueEdited:
		note.Type = events.EventIssueEdited
		if issue != nil {
			note.Payload = events.IssueEditedPayload{Subject: issue.Subject}
		}
	case domain.EventIssueSuspended:
		note.Type = events.EventIssueSuspended
		note.Payload = events.IssueSuspendedPayload{Until: parameter}
	case domain.EventIssueResumed:
		note.Type = events.EventIssueResumed
	default:
		return events.Event{}, false
	}
	return note, true
}
