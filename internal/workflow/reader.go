package workflow

import (
	"context"
	"sort"
	"strconv"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/fieldtype"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

// FieldValueView is one readable field value of an issue, rendered for
// display. Value is empty when the field holds no value.
type FieldValueView struct {
	Field   domain.Field
	ValueID *int64
	Value   string
}

// Issue returns the issue when the actor may view it.
func (p *Processor) Issue(ctx context.Context, actor *domain.User, issueID string) (*domain.Issue, error) {
	issue, err := p.issues.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if err := p.requireGranted(ctx, actor, PermissionViewIssue, issue, "You are not allowed to view this issue."); err != nil {
		return nil, err
	}
	return issue, nil
}

// Values returns the issue's current field values, restricted to the
// fields the actor may read, in state/position order.
func (p *Processor) Values(ctx context.Context, actor *domain.User, issueID string) ([]FieldValueView, error) {
	issue, err := p.Issue(ctx, actor, issueID)
	if err != nil {
		return nil, err
	}
	current, err := p.values.CurrentAll(ctx, issue.ID)
	if err != nil {
		return nil, err
	}
	views := make([]FieldValueView, 0, len(current))
	for fieldID, valueID := range current {
		field, err := p.templates.GetField(ctx, fieldID)
		if err != nil {
			return nil, err
		}
		readable, err := p.fields.CanReadField(ctx, actor, *field)
		if err != nil {
			return nil, err
		}
		if !readable {
			continue
		}
		rendered, err := p.render(ctx, *field, valueID)
		if err != nil {
			return nil, err
		}
		views = append(views, FieldValueView{Field: *field, ValueID: valueID, Value: rendered})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Field.StateID != views[j].Field.StateID {
			return views[i].Field.StateID < views[j].Field.StateID
		}
		return views[i].Field.Position < views[j].Field.Position
	})
	return views, nil
}

// History returns the ordered change log of one field of an issue.
func (p *Processor) History(ctx context.Context, actor *domain.User, issueID, fieldID string) ([]domain.Change, error) {
	issue, err := p.Issue(ctx, actor, issueID)
	if err != nil {
		return nil, err
	}
	field, err := p.templates.GetField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	readable, err := p.fields.CanReadField(ctx, actor, *field)
	if err != nil {
		return nil, err
	}
	if !readable {
		return nil, apperrors.NewAccessDenied("You are not allowed to view this field.")
	}
	return p.values.History(ctx, issue.ID, field.ID)
}

// Events returns the issue's audit events, oldest first.
func (p *Processor) Events(ctx context.Context, actor *domain.User, issueID string) ([]domain.Event, error) {
	issue, err := p.Issue(ctx, actor, issueID)
	if err != nil {
		return nil, err
	}
	return p.audit.ListEvents(ctx, issue.ID)
}

func (p *Processor) render(ctx context.Context, field domain.Field, valueID *int64) (string, error) {
	if valueID == nil {
		return "", nil
	}
	switch field.Kind {
	case domain.KindCheckbox:
		if *valueID == 0 {
			return "false", nil
		}
		return "true", nil
	case domain.KindDate:
		return fieldtype.FormatDate(*valueID), nil
	case domain.KindDuration:
		return fieldtype.FormatDuration(*valueID), nil
	case domain.KindNumber, domain.KindIssue:
		return strconv.FormatInt(*valueID, 10), nil
	case domain.KindList:
		for _, item := range field.Items {
			if item.Value == *valueID {
				return item.Text, nil
			}
		}
		return strconv.FormatInt(*valueID, 10), nil
	default:
		return p.values.PayloadContent(ctx, *valueID)
	}
}
