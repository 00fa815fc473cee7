package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/workflow"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

const issueColumns = `id, subject, template_id, state_id, author_id, responsible_id,
               origin_id, suspended_until, created_at, changed_at, closed_at`

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the issue repository.
func NewIssueRepository(pool *pgxpool.Pool) workflow.IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Get(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        SELECT ` + issueColumns + `
        FROM issues WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetForUpdate locks the issue row until the surrounding transaction
// ends, serializing concurrent commands against the same issue.
func (r *issueRepository) GetForUpdate(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        SELECT ` + issueColumns + `
        FROM issues WHERE id=$1
        FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, subject, template_id, state_id, author_id, responsible_id,
            origin_id, suspended_until, created_at, changed_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		issue.ID,
		issue.Subject,
		issue.TemplateID,
		issue.StateID,
		issue.AuthorID,
		issue.ResponsibleID,
		issue.OriginID,
		issue.SuspendedUntil,
		issue.CreatedAt,
		issue.ChangedAt,
		issue.ClosedAt,
	)
	return err
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET subject=$1, state_id=$2, responsible_id=$3,
            suspended_until=$4, changed_at=$5, closed_at=$6
        WHERE id=$7`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		issue.Subject,
		issue.StateID,
		issue.ResponsibleID,
		issue.SuspendedUntil,
		issue.ChangedAt,
		issue.ClosedAt,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("issue", map[string]any{"issue_id": issue.ID})
	}
	return nil
}

func (r *issueRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("issue", map[string]any{"issue_id": id})
	}
	return nil
}

func (r *issueRepository) fetchSingle(ctx context.Context, query, id string) (*domain.Issue, error) {
	var issue domain.Issue
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&issue.ID,
		&issue.Subject,
		&issue.TemplateID,
		&issue.StateID,
		&issue.AuthorID,
		&issue.ResponsibleID,
		&issue.OriginID,
		&issue.SuspendedUntil,
		&issue.CreatedAt,
		&issue.ChangedAt,
		&issue.ClosedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": id})
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}
