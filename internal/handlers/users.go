// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// UserRepository is the account persistence used by Users.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, f store.UserFilter) ([]models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch store.ProfilePatch) (bool, error)
	ResetTOTP(ctx context.Context, userID uuid.UUID) error
}

// Users groups the profile and user administration endpoints.
type Users struct {
	users UserRepository
	audit AuditLogger
}

// NewUsers creates the Users handler group.
func NewUsers(users UserRepository, audit AuditLogger) *Users {
	return &Users{users: users, audit: audit}
}

// AdminList handles GET /admin/users?search&role.
func (h *Users) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.UserFilter{Search: q.Get("search")}
	if raw := q.Get("role"); raw != "" {
		f.Role = models.Role(raw)
		if !f.Role.Valid() {
			writeError(w, r, apperr.Validation("Invalid role %q", raw))
			return
		}
	}

	users, err := h.users.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// AdminUpdate handles PUT /admin/users/{id} with body {isActive}.
func (h *Users) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	caller := identity.FromContext(r.Context())
	if caller != nil && caller.UserID == id && !*req.IsActive {
		writeError(w, r, apperr.Validation("You cannot deactivate your own account"))
		return
	}

	ok, err := h.users.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("User not found"))
		return
	}

	action := "deactivate"
	if *req.IsActive {
		action = "activate"
	}
	h.audit.Log(r.Context(), caller, "user", id, action)
	writeMessage(w, http.StatusOK, "User updated successfully")
}

// AdminResetTwoFA handles POST /admin/users/{id}/reset-2fa for users who
// lost their authenticator.
func (h *Users) AdminResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "User")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, apperr.NotFound("User not found"))
		return
	}

	if err := h.users.ResetTOTP(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	caller := identity.FromContext(r.Context())
	h.audit.Log(r.Context(), caller, "user", id, "reset-2fa")
	slog.Info("2fa reset", "user_id", id, "by", caller.UserID)
	writeMessage(w, http.StatusOK, "Two-factor authentication reset")
}

// Profile handles GET /profile.
func (h *Users) Profile(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	user, err := h.users.FindByID(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, apperr.NotFound("User not found"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /profile.
func (h *Users) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	caller := identity.FromContext(r.Context())
	ok, err := h.users.UpdateProfile(r.Context(), caller.UserID, req.patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("User not found"))
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully")
}

// PublicProfile handles GET /users/{username}.
func (h *Users) PublicProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !user.IsActive {
		writeError(w, r, apperr.NotFound("User not found"))
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}
