package service

import (
	"context"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/repository"
	"github.com/spec-kit/issue-workflow/internal/workflow"
)

// RoleGuard is the authorization oracle for workflow commands.
// Administrators may do everything; everyone else is judged by their
// relation to the issue. Transition edges carry their own role/group
// checks and are not decided here.
type RoleGuard struct{}

// NewRoleGuard constructs the guard.
func NewRoleGuard() *RoleGuard {
	return &RoleGuard{}
}

// IsGranted reports whether the actor may perform the operation.
func (g *RoleGuard) IsGranted(ctx context.Context, actor *domain.User, permission workflow.Permission, issue *domain.Issue) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.IsAdmin {
		return true, nil
	}
	switch permission {
	case workflow.PermissionCreateIssue:
		return true, nil
	case workflow.PermissionDeleteIssue:
		return false, nil
	}
	if issue == nil {
		return false, nil
	}
	author := issue.AuthorID == actor.ID
	responsible := issue.ResponsibleID != nil && *issue.ResponsibleID == actor.ID
	switch permission {
	case workflow.PermissionViewIssue, workflow.PermissionUpdateIssue:
		return author || responsible, nil
	case workflow.PermissionReassignIssue:
		return responsible, nil
	case workflow.PermissionSuspendIssue, workflow.PermissionResumeIssue:
		return author || responsible, nil
	default:
		return false, nil
	}
}

// GroupFieldGuard restricts field reads by group ACLs. A field without
// ACL rows is readable by anyone allowed to view the issue.
type GroupFieldGuard struct {
	permissions repository.FieldPermissionRepository
	users       workflow.UserRepository
}

// NewGroupFieldGuard constructs the field guard.
func NewGroupFieldGuard(permissions repository.FieldPermissionRepository, users workflow.UserRepository) *GroupFieldGuard {
	return &GroupFieldGuard{permissions: permissions, users: users}
}

// CanReadField reports whether the actor may read the field's values.
func (g *GroupFieldGuard) CanReadField(ctx context.Context, actor *domain.User, field domain.Field) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.IsAdmin {
		return true, nil
	}
	groups, err := g.permissions.ReadGroups(ctx, field.ID)
	if err != nil {
		return false, err
	}
	if len(groups) == 0 {
		return true, nil
	}
	return g.users.IsMemberOfAny(ctx, actor.ID, groups)
}
