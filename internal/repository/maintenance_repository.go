package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MaintenanceRepository performs housekeeping writes outside the
// command path.
type MaintenanceRepository interface {
	ClearExpiredSuspensions(ctx context.Context, now time.Time) (int64, error)
}

type maintenanceRepository struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepository instantiates the repository.
func NewMaintenanceRepository(pool *pgxpool.Pool) MaintenanceRepository {
	return &maintenanceRepository{pool: pool}
}

// ClearExpiredSuspensions nulls out suspended_until on issues whose
// suspension date has passed. Commands already ignore expired
// suspensions; this keeps the column from accumulating stale dates.
func (r *maintenanceRepository) ClearExpiredSuspensions(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        UPDATE issues SET suspended_until=NULL
        WHERE suspended_until IS NOT NULL AND suspended_until <= $1`
	cmd, err := querierFrom(ctx, r.pool).Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
