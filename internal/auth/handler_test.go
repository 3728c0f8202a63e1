package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceopt/priceopt/internal/shared"
	_ "github.com/priceopt/priceopt/testing"
)

// captureNotifier keeps the last issued verification token so the test can
// play it back through the verify-email endpoint.
type captureNotifier struct {
	lastToken string
}

func (c *captureNotifier) SendVerificationEmail(ctx context.Context, to, username, token string) error {
	c.lastToken = token
	return nil
}

type authFixture struct {
	router   chi.Router
	repo     *mockRepo
	notifier *captureNotifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newMockRepo()
	issuer, err := NewTokenIssuer("test-secret", "HS256", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	notifier := &captureNotifier{}
	service := NewService(repo, issuer, notifier, slog.Default())

	authn := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := issuer.VerifyAccessToken(bearer(r))
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			user, err := repo.FindByID(r.Context(), userID)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{
				UserID: user.ID, Email: user.Email, Role: string(user.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	router := chi.NewRouter()
	NewHandler(slog.Default(), service, authn).MountRoutes(router)
	return &authFixture{router: router, repo: repo, notifier: notifier}
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) {
		return ""
	}
	return header[len(prefix):]
}

func (f *authFixture) post(t *testing.T, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *authFixture) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) tokenResponse {
	t.Helper()
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandlerRegister(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeToken(t, rec)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	require.NotNil(t, resp.User)
	assert.Equal(t, RoleBuyer, resp.User.Role)
	assert.False(t, resp.User.IsVerified)
	assert.NotEmpty(t, f.notifier.lastToken)
}

func TestHandlerRegisterRejectsBadPayload(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "not-an-email", "password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	payload := map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}

	require.Equal(t, http.StatusCreated, f.post(t, "/register", payload, "").Code)
	assert.Equal(t, http.StatusConflict, f.post(t, "/register", payload, "").Code)
}

func TestHandlerLoginBeforeVerification(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}, "").Code)

	rec := f.post(t, "/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerVerifyEmailThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}, "").Code)

	rec := f.post(t, "/verify-email", map[string]string{"token": f.notifier.lastToken}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Email verified")

	// Replaying the token is harmless.
	rec = f.post(t, "/verify-email", map[string]string{"token": f.notifier.lastToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already verified")

	rec = f.post(t, "/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeToken(t, rec)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestHandlerLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}, "").Code)

	rec := f.post(t, "/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerResendVerification(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}, "").Code)
	rec := f.post(t, "/resend-verification", map[string]string{"email": "alice@example.com"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, f.notifier.lastToken)

	rec = f.post(t, "/resend-verification", map[string]string{"email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerMe(t *testing.T) {
	f := newAuthFixture(t)
	rec := f.post(t, "/register", map[string]string{
		"username": "Alice", "email": "alice@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeToken(t, rec).AccessToken

	rec = f.get(t, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)

	rec = f.get(t, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
