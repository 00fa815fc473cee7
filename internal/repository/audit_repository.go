package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/workflow"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates the append-only audit trail.
func NewAuditRepository(pool *pgxpool.Pool) workflow.AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) AppendEvent(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO issue_events (id, issue_id, type, user_id, created_at, parameter)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.IssueID,
		event.Type,
		event.UserID,
		event.CreatedAt,
		event.Parameter,
	)
	return err
}

func (r *auditRepository) AppendChange(ctx context.Context, change *domain.Change) error {
	const query = `
        INSERT INTO issue_changes (id, issue_id, field_id, user_id, created_at, old_value_id, new_value_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		change.ID,
		change.IssueID,
		change.FieldID,
		change.UserID,
		change.CreatedAt,
		change.OldValueID,
		change.NewValueID,
	)
	return err
}

func (r *auditRepository) ListEvents(ctx context.Context, issueID string) ([]domain.Event, error) {
	const query = `
        SELECT id, issue_id, type, user_id, created_at, parameter
        FROM issue_events
        WHERE issue_id=$1
        ORDER BY created_at, id`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.IssueID, &e.Type, &e.UserID, &e.CreatedAt, &e.Parameter); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *auditRepository) DeleteForIssue(ctx context.Context, issueID string) error {
	q := querierFrom(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM issue_changes WHERE issue_id=$1`, issueID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM issue_events WHERE issue_id=$1`, issueID)
	return err
}
