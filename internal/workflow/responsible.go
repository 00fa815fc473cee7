package workflow

import (
	"context"

	"github.com/spec-kit/issue-workflow/internal/domain"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

// MembershipFunc answers whether a user belongs to any of the groups.
type MembershipFunc func(ctx context.Context, userID string, groupIDs []string) (bool, error)

// ResolveResponsible derives the issue's responsible after entering the
// target state. It is a pure decision function; the processor performs
// the actual mutation and audit append.
//
// strict applies to the Keep policy only: state-change-only commands
// pass strict=true, so a caller-supplied assignee under Keep is a
// BadRequest. Create/Clone pass strict=false and the assignee is
// silently ignored unless the policy is Assign.
func ResolveResponsible(
	ctx context.Context,
	target domain.State,
	responsibleGroups []string,
	currentResponsible *string,
	requestedAssignee *string,
	strict bool,
	isMember MembershipFunc,
) (*string, error) {
	switch target.Responsible {
	case domain.ResponsibleRemove:
		return nil, nil

	case domain.ResponsibleKeep:
		if strict && requestedAssignee != nil {
			return nil, apperrors.NewBadRequest("Responsible should not be specified for this transition.")
		}
		return currentResponsible, nil

	case domain.ResponsibleAssign:
		if requestedAssignee == nil {
			return nil, apperrors.NewBadRequest("Responsible is required.")
		}
		member, err := isMember(ctx, *requestedAssignee, responsibleGroups)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperrors.NewAccessDenied("The issue cannot be assigned to specified user.")
		}
		return requestedAssignee, nil

	default:
		return currentResponsible, nil
	}
}
