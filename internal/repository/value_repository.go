package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/fieldtype"
	"github.com/spec-kit/issue-workflow/internal/workflow"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

type valueRepository struct {
	pool *pgxpool.Pool
}

// NewValueRepository instantiates the value store.
func NewValueRepository(pool *pgxpool.Pool) workflow.ValueRepository {
	return &valueRepository{pool: pool}
}

func (r *valueRepository) Current(ctx context.Context, issueID, fieldID string) (*int64, bool, error) {
	const query = `
        SELECT value_id FROM issue_values WHERE issue_id=$1 AND field_id=$2`
	var valueID *int64
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, issueID, fieldID).Scan(&valueID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return valueID, true, nil
}

func (r *valueRepository) CurrentAll(ctx context.Context, issueID string) (map[string]*int64, error) {
	const query = `
        SELECT field_id, value_id FROM issue_values WHERE issue_id=$1`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[string]*int64{}
	for rows.Next() {
		var fieldID string
		var valueID *int64
		if err := rows.Scan(&fieldID, &valueID); err != nil {
			return nil, err
		}
		values[fieldID] = valueID
	}
	return values, rows.Err()
}

// Write upserts the current value of (issue, field). Payload content
// goes through the content-addressed payload table, so identical
// canonical payloads of one kind share a single row and id.
func (r *valueRepository) Write(ctx context.Context, issueID, fieldID string, kind domain.FieldKind, inline *int64, payload *string) (*int64, error) {
	valueID := inline
	if payload != nil {
		payloadKind, ok := fieldtype.PayloadKindOf(kind)
		if !ok {
			return nil, fmt.Errorf("field kind %s does not store payloads", kind)
		}
		id, err := r.PayloadID(ctx, payloadKind, *payload)
		if err != nil {
			return nil, err
		}
		valueID = &id
	}
	if err := r.WriteID(ctx, issueID, fieldID, valueID); err != nil {
		return nil, err
	}
	return valueID, nil
}

func (r *valueRepository) WriteID(ctx context.Context, issueID, fieldID string, valueID *int64) error {
	const query = `
        INSERT INTO issue_values (issue_id, field_id, value_id, changed_at)
        VALUES ($1,$2,$3,NOW())
        ON CONFLICT (issue_id, field_id)
        DO UPDATE SET value_id=EXCLUDED.value_id, changed_at=NOW()`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query, issueID, fieldID, valueID)
	return err
}

// PayloadID resolves the id of a content-addressed payload row,
// inserting it when absent. The insert-or-select runs in the caller's
// transaction, so concurrent writers of the same content converge on
// one row.
func (r *valueRepository) PayloadID(ctx context.Context, kind domain.PayloadKind, content string) (int64, error) {
	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])
	const query = `
        INSERT INTO field_payloads (kind, content_hash, content)
        VALUES ($1,$2,$3)
        ON CONFLICT (kind, content_hash) DO UPDATE SET content_hash=EXCLUDED.content_hash
        RETURNING id`
	var id int64
	if err := querierFrom(ctx, r.pool).QueryRow(ctx, query, kind, hash, content).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *valueRepository) PayloadContent(ctx context.Context, id int64) (string, error) {
	const query = `SELECT content FROM field_payloads WHERE id=$1`
	var content string
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NewNotFound("payload", map[string]any{"payload_id": id})
	}
	return content, err
}

func (r *valueRepository) History(ctx context.Context, issueID, fieldID string) ([]domain.Change, error) {
	const query = `
        SELECT id, issue_id, field_id, user_id, created_at, old_value_id, new_value_id
        FROM issue_changes
        WHERE issue_id=$1 AND field_id=$2
        ORDER BY created_at`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, issueID, fieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.Change
	for rows.Next() {
		var c domain.Change
		if err := rows.Scan(&c.ID, &c.IssueID, &c.FieldID, &c.UserID, &c.CreatedAt,
			&c.OldValueID, &c.NewValueID); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (r *valueRepository) DeleteForIssue(ctx context.Context, issueID string) error {
	_, err := querierFrom(ctx, r.pool).Exec(ctx, `DELETE FROM issue_values WHERE issue_id=$1`, issueID)
	return err
}
