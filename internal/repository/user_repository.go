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

// UserRepository extends the workflow engine's user lookups with the
// account operations the auth layer needs.
type UserRepository interface {
	workflow.UserRepository
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates the repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, full_name, password_hash, is_admin, created_at`

func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, email, full_name, password_hash, is_admin)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return querierFrom(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.IsAdmin,
	).Scan(&user.CreatedAt)
}

func (r *userRepository) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT group_id FROM group_memberships WHERE user_id=$1`
	rows, err := querierFrom(ctx, r.pool).Query(ctx, query, userID)
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

func (r *userRepository) IsMemberOfAny(ctx context.Context, userID string, groupIDs []string) (bool, error) {
	if len(groupIDs) == 0 {
		return false, nil
	}
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM group_memberships
            WHERE user_id=$1 AND group_id = ANY($2)
        )`
	var member bool
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, userID, groupIDs).Scan(&member)
	return member, err
}

func (r *userRepository) fetchSingle(ctx context.Context, query, arg string) (*domain.User, error) {
	var user domain.User
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
