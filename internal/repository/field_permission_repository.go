package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FieldPermissionRepository reads per-field read ACLs. A field with no
// ACL rows is readable by anyone who can view the issue.
type FieldPermissionRepository interface {
	ReadGroups(ctx context.Context, fieldID string) ([]string, error)
}

type fieldPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewFieldPermissionRepository instantiates the repository.
func NewFieldPermissionRepository(pool *pgxpool.Pool) FieldPermissionRepository {
	return &fieldPermissionRepository{pool: pool}
}

func (r *fieldPermissionRepository) ReadGroups(ctx context.Context, fieldID string) ([]string, error) {
	const query = `SELECT group_id FROM field_permissions WHERE field_id=$1`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, fieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		groups = append(groups, id)
	}
	return groups, rows.Err()
}
