package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priceopt/priceopt/internal/auth"
	"github.com/priceopt/priceopt/internal/shared"
)

// Repository persists (role, action) grant rows. Backed by a uniqueness
// constraint on (role, action).
type Repository interface {
	IsGranted(ctx context.Context, role auth.Role, action Action) (bool, error)
	Grant(ctx context.Context, role auth.Role, action Action) (created bool, err error)
	Revoke(ctx context.Context, role auth.Role, action Action) error
	ListForRole(ctx context.Context, role auth.Role) ([]Action, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// IsGranted reports whether a grant row exists for exactly this pair.
func (r *PGRepository) IsGranted(ctx context.Context, role auth.Role, action Action) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM role_permissions WHERE role = $1 AND action = $2)`,
		role, action).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Grant inserts a grant row. Inserting an existing pair is a no-op and is
// reported via created=false.
func (r *PGRepository) Grant(ctx context.Context, role auth.Role, action Action) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO role_permissions (role, action) VALUES ($1, $2) ON CONFLICT (role, action) DO NOTHING`,
		role, action)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Revoke deletes a grant row. Returns shared.ErrNotFound when no such grant
// exists.
func (r *PGRepository) Revoke(ctx context.Context, role auth.Role, action Action) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE role = $1 AND action = $2`, role, action)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListForRole returns all actions currently granted to a role.
func (r *PGRepository) ListForRole(ctx context.Context, role auth.Role) ([]Action, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT action FROM role_permissions WHERE role = $1 ORDER BY action`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
