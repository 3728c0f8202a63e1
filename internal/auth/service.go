package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/priceopt/priceopt/internal/shared"
)

// Notifier delivers account emails. Delivery is fire-and-forget: a failure is
// logged and never rolls back the operation that triggered it.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, username, token string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, notifier: notifier, logger: logger}
}

// Register creates a new account with the buyer role, issues an access token
// and queues a verification email. Callers can never self-assign a role.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleBuyer,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.sendVerification(ctx, user)
	return user, token, nil
}

// Login validates credentials and issues an access token. Unverified accounts
// are refused before any token is issued.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", shared.ErrEmailNotVerified
	}
	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// It is idempotent: an already-verified account reports success.
func (s *Service) VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error) {
	email, err := s.tokens.VerifyVerificationToken(token)
	if err != nil {
		return false, err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user.IsVerified {
		return true, nil
	}
	return false, s.repo.MarkVerified(ctx, email)
}

// CurrentUser loads the account behind an authenticated principal.
func (s *Service) CurrentUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// ResendVerification issues a fresh verification token for an unverified
// account and queues the email again.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}
	s.sendVerification(ctx, user)
	return nil
}

func (s *Service) sendVerification(ctx context.Context, user *User) {
	if s.notifier == nil {
		return
	}
	token, err := s.tokens.IssueVerificationToken(user.Email)
	if err != nil {
		s.logger.Warn("issue verification token", slog.Any("error", err))
		return
	}
	if err := s.notifier.SendVerificationEmail(ctx, user.Email, user.Username, token); err != nil {
		s.logger.Warn("queue verification email", slog.String("email", user.Email), slog.Any("error", err))
	}
}
