package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/workflow"
)

func TestRoleGuard(t *testing.T) {
	guard := NewRoleGuard()
	ctx := context.Background()

	responsible := "resp"
	issue := &domain.Issue{AuthorID: "author", ResponsibleID: &responsible}
	admin := &domain.User{ID: "root", IsAdmin: true}
	author := &domain.User{ID: "author"}
	resp := &domain.User{ID: "resp"}
	outsider := &domain.User{ID: "other"}

	cases := []struct {
		name       string
		actor      *domain.User
		permission workflow.Permission
		want       bool
	}{
		{"nil actor", nil, workflow.PermissionViewIssue, false},
		{"admin can delete", admin, workflow.PermissionDeleteIssue, true},
		{"anyone can create", outsider, workflow.PermissionCreateIssue, true},
		{"author views", author, workflow.PermissionViewIssue, true},
		{"responsible views", resp, workflow.PermissionViewIssue, true},
		{"outsider cannot view", outsider, workflow.PermissionViewIssue, false},
		{"author edits", author, workflow.PermissionUpdateIssue, true},
		{"author cannot reassign", author, workflow.PermissionReassignIssue, false},
		{"responsible reassigns", resp, workflow.PermissionReassignIssue, true},
		{"author suspends", author, workflow.PermissionSuspendIssue, true},
		{"outsider cannot resume", outsider, workflow.PermissionResumeIssue, false},
		{"author cannot delete", author, workflow.PermissionDeleteIssue, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := guard.IsGranted(ctx, tc.actor, tc.permission, issue)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type stubPermissions struct {
	groups map[string][]string
}

func (s stubPermissions) ReadGroups(ctx context.Context, fieldID string) ([]string, error) {
	return s.groups[fieldID], nil
}

type stubUsers struct {
	memberships map[string][]string
}

func (s stubUsers) Get(ctx context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func (s stubUsers) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	return s.memberships[userID], nil
}

func (s stubUsers) IsMemberOfAny(ctx context.Context, userID string, groupIDs []string) (bool, error) {
	for _, have := range s.memberships[userID] {
		for _, want := range groupIDs {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}

func TestGroupFieldGuard(t *testing.T) {
	guard := NewGroupFieldGuard(
		stubPermissions{groups: map[string][]string{"restricted": {"support"}}},
		stubUsers{memberships: map[string][]string{"bob": {"support"}}},
	)
	ctx := context.Background()

	open := domain.Field{ID: "open"}
	restricted := domain.Field{ID: "restricted"}
	alice := &domain.User{ID: "alice"}
	bob := &domain.User{ID: "bob"}
	admin := &domain.User{ID: "root", IsAdmin: true}

	readable, err := guard.CanReadField(ctx, alice, open)
	require.NoError(t, err)
	assert.True(t, readable, "field without ACL rows is readable")

	readable, err = guard.CanReadField(ctx, alice, restricted)
	require.NoError(t, err)
	assert.False(t, readable)

	readable, err = guard.CanReadField(ctx, bob, restricted)
	require.NoError(t, err)
	assert.True(t, readable)

	readable, err = guard.CanReadField(ctx, admin, restricted)
	require.NoError(t, err)
	assert.True(t, readable)
}
