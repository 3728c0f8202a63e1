package users

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/priceopt/priceopt/internal/auth"
	"github.com/priceopt/priceopt/internal/platform/httpx"
	"github.com/priceopt/priceopt/internal/rbac"
)

// Handler manages user administration endpoints. Every route requires the
// user_manage action.
type Handler struct {
	logger  *slog.Logger
	service *Service
	grants  *rbac.Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, grants *rbac.Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, grants: grants, rbac: mw}
}

// MountRoutes registers user management routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ActionUserManage))
		r.Get("/", h.listUsers)
		r.Patch("/{id}/role", h.changeRole)
		r.Get("/permissions/{role}", h.listRolePermissions)
		r.Post("/permissions/{role}/{action}", h.grantPermission)
		r.Delete("/permissions/{role}/{action}", h.revokePermission)
	})
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

type rolePermissionsResponse struct {
	Role        auth.Role     `json:"role"`
	Permissions []rbac.Action `json:"permissions"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	var req roleUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.service.ChangeRole(r.Context(), id, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) listRolePermissions(w http.ResponseWriter, r *http.Request) {
	role, err := auth.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actions, err := h.grants.ListForRole(r.Context(), role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if actions == nil {
		actions = []rbac.Action{}
	}
	httpx.JSON(w, http.StatusOK, rolePermissionsResponse{Role: role, Permissions: actions})
}

func (h *Handler) grantPermission(w http.ResponseWriter, r *http.Request) {
	role, action, ok := h.grantPair(w, r)
	if !ok {
		return
	}
	created, err := h.grants.Grant(r.Context(), role, action)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !created {
		httpx.JSON(w, http.StatusOK, messageResponse{Message: "Already granted"})
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Granted '%s' to role '%s'", action, role)})
}

func (h *Handler) revokePermission(w http.ResponseWriter, r *http.Request) {
	role, action, ok := h.grantPair(w, r)
	if !ok {
		return
	}
	if err := h.grants.Revoke(r.Context(), role, action); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Revoked '%s' from role '%s'", action, role)})
}

func (h *Handler) grantPair(w http.ResponseWriter, r *http.Request) (auth.Role, rbac.Action, bool) {
	role, err := auth.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return "", "", false
	}
	action, err := rbac.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return "", "", false
	}
	return role, action, true
}
