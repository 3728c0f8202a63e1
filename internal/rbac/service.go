package rbac

import (
	"context"
	"fmt"

	"github.com/priceopt/priceopt/internal/auth"
	"github.com/priceopt/priceopt/internal/platform/httpx"
)

// Service orchestrates permission decisions. Every check is a fresh store
// lookup: grants may change between requests and staleness is unacceptable
// for an access-control decision, so nothing is cached here.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IsGranted reports whether the role currently holds the action.
func (s *Service) IsGranted(ctx context.Context, role auth.Role, action Action) (bool, error) {
	return s.repo.IsGranted(ctx, role, action)
}

// Grant records a grant for the pair. Granting twice leaves exactly one row;
// created=false signals "already granted".
func (s *Service) Grant(ctx context.Context, role auth.Role, action Action) (created bool, err error) {
	return s.repo.Grant(ctx, role, action)
}

// Revoke removes a grant, failing with shared.ErrNotFound when absent.
func (s *Service) Revoke(ctx context.Context, role auth.Role, action Action) error {
	return s.repo.Revoke(ctx, role, action)
}

// ListForRole returns the actions granted to a role.
func (s *Service) ListForRole(ctx context.Context, role auth.Role) ([]Action, error) {
	return s.repo.ListForRole(ctx, role)
}

// Authorize decides whether the user may perform the action. The admin role
// implicitly holds every action and never consults the store; all other roles
// are default-deny against the grant table.
func (s *Service) Authorize(ctx context.Context, user *auth.User, action Action) error {
	if user.Role == auth.RoleAdmin {
		return nil
	}
	granted, err := s.repo.IsGranted(ctx, user.Role, action)
	if err != nil {
		return err
	}
	if !granted {
		return fmt.Errorf("%w: role '%s' does not have permission: '%s'", httpx.ErrForbidden, user.Role, action)
	}
	return nil
}
