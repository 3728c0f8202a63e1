package users

import (
	"context"

	"github.com/priceopt/priceopt/internal/auth"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id int64, role auth.Role) (*User, error)
}

// Service handles user management logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ChangeRole assigns a new role to the user. Role values are validated by the
// handler against the fixed set before reaching here.
func (s *Service) ChangeRole(ctx context.Context, id int64, role auth.Role) (*User, error) {
	return s.repo.UpdateRole(ctx, id, role)
}
