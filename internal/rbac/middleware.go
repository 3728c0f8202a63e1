package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/priceopt/priceopt/internal/auth"
	"github.com/priceopt/priceopt/internal/platform/httpx"
	"github.com/priceopt/priceopt/internal/shared"
)

// TokenVerifier validates an access token and returns the subject user id.
type TokenVerifier interface {
	VerifyAccessToken(token string) (int64, error)
}

// UserSource resolves token subjects to accounts.
type UserSource interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
}

// Middleware wires authorization helpers for HTTP handlers. Each guarded
// request walks the same path: bearer token, account lookup, admin bypass,
// grant-store check.
type Middleware struct {
	Service *Service
	Tokens  TokenVerifier
	Users   UserSource
	Logger  *slog.Logger
}

// Authenticate resolves the caller identity and stores the principal in the
// request context. It rejects missing, invalid or expired tokens and tokens
// whose subject no longer exists.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolve(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{
			UserID: user.ID,
			Email:  user.Email,
			Role:   string(user.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require authenticates the caller and checks the grant store for the given
// action. Admins bypass the store unconditionally.
func (m Middleware) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := m.resolve(r)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			if err := m.Service.Authorize(r.Context(), user, action); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.String("role", string(user.Role)),
						slog.String("action", string(action)))
				}
				httpx.RespondError(w, err)
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{
				UserID: user.ID,
				Email:  user.Email,
				Role:   string(user.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) resolve(r *http.Request) (*auth.User, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, httpx.ErrUnauthorized
	}
	userID, err := m.Tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}
	user, err := m.Users.FindByID(r.Context(), userID)
	if err != nil {
		// The subject no longer exists; the token is worthless.
		return nil, httpx.ErrUnauthorized
	}
	return user, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
