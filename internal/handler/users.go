// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/auth"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// UsersHandler handles user management routes. All routes require
// the admin role.
type UsersHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *UsersHandler {
	return &UsersHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// UsersListData holds data for the users list template.
type UsersListData struct {
	Users []store.User
}

// List handles GET /admin/users - displays all users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/users_list", render.TemplateData{
		Title:    "Users",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data:     UsersListData{Users: users},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// UserFormData holds data for the user form template.
type UserFormData struct {
	User   store.User
	Roles  []string
	Errors map[string]string
	IsEdit bool
	IsSelf bool
}

// NewForm handles GET /admin/users/new - displays the create user form.
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.renderer.Render(w, r, "admin/users_form", render.TemplateData{
		Title:    "New User",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: UserFormData{
			Roles: model.ValidRoles,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// validateUserForm validates shared user form fields. Password rules are
// applied by the callers since they differ between create and edit.
func validateUserForm(email, name, role string) map[string]string {
	fieldErrors := make(map[string]string)

	if email == "" {
		fieldErrors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fieldErrors["email"] = "Invalid email address"
	}

	if name == "" {
		fieldErrors["name"] = "Name is required"
	}

	if !model.IsValidRole(role) {
		fieldErrors["role"] = "Invalid role"
	}

	return fieldErrors
}

// Create handles POST /admin/users - creates a new user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminUsersNew) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	name := strings.TrimSpace(r.FormValue("name"))
	role := r.FormValue("role")
	password := r.FormValue("password")

	fieldErrors := validateUserForm(email, name, role)
	if len(password) < MinPasswordLength {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, redirectAdminUsersNew, firstError(fieldErrors))
		return
	}

	if _, err := h.queries.GetUserByEmail(r.Context(), email); err == nil {
		flashError(w, r, h.renderer, redirectAdminUsersNew, "A user with this email already exists")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	newUser, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err, "email", email)
		flashError(w, r, h.renderer, redirectAdminUsersNew, "Error creating user")
		return
	}

	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User created: "+newUser.Email, &user.ID, map[string]any{"user_id": newUser.ID, "role": newUser.Role})

	slog.Info("user created", "user_id", newUser.ID, "email", newUser.Email, "created_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User created")
}

// EditForm handles GET /admin/users/{id} - displays the edit user form.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	target, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "admin/users_form", render.TemplateData{
		Title:    "Edit User",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: UserFormData{
			User:   target,
			Roles:  model.ValidRoles,
			IsEdit: true,
			IsSelf: target.ID == user.ID,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Update handles POST /admin/users/{id} - updates a user. An empty
// password field leaves the current password unchanged.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	target, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminUsers) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	name := strings.TrimSpace(r.FormValue("name"))
	role := r.FormValue("role")
	password := r.FormValue("password")

	fieldErrors := validateUserForm(email, name, role)
	if password != "" && len(password) < MinPasswordLength {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, redirectAdminUsers, firstError(fieldErrors))
		return
	}

	if existing, err := h.queries.GetUserByEmail(r.Context(), email); err == nil && existing.ID != id {
		flashError(w, r, h.renderer, redirectAdminUsers, "A user with this email already exists")
		return
	}

	// Demoting the last admin would lock everyone out of user management.
	if target.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := h.queries.CountAdmins(r.Context())
		if err != nil {
			logAndInternalError(w, "failed to count admins", "error", err)
			return
		}
		if admins <= 1 {
			flashError(w, r, h.renderer, redirectAdminUsers, "Cannot demote the last admin")
			return
		}
	}

	updated, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:    id,
		Email: email,
		Role:  role,
		Name:  name,
	})
	if err != nil {
		slog.Error("failed to update user", "error", err, "user_id", id)
		flashError(w, r, h.renderer, redirectAdminUsers, "Error updating user")
		return
	}

	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			logAndInternalError(w, "failed to hash password", "error", err)
			return
		}
		if err := h.queries.UpdateUserPassword(r.Context(), id, hash); err != nil {
			slog.Error("failed to update password", "error", err, "user_id", id)
			flashError(w, r, h.renderer, redirectAdminUsers, "Error updating password")
			return
		}
	}

	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User updated: "+updated.Email, &user.ID, map[string]any{"user_id": id, "role": updated.Role})

	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User updated")
}

// Delete handles POST /admin/users/{id}/delete - deletes a user.
// Self-deletion and deleting the last admin are rejected.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, "Invalid user ID")
		return
	}

	if id == user.ID {
		flashError(w, r, h.renderer, redirectAdminUsers, "You cannot delete your own account")
		return
	}

	target, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	if target.Role == model.RoleAdmin {
		admins, err := h.queries.CountAdmins(r.Context())
		if err != nil {
			logAndInternalError(w, "failed to count admins", "error", err)
			return
		}
		if admins <= 1 {
			flashError(w, r, h.renderer, redirectAdminUsers, "Cannot delete the last admin")
			return
		}
	}

	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		slog.Error("failed to delete user", "error", err, "user_id", id)
		flashError(w, r, h.renderer, redirectAdminUsers, "Error deleting user")
		return
	}

	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo,
		"User deleted: "+target.Email, &user.ID, map[string]any{"user_id": id})

	slog.Info("user deleted", "user_id", id, "deleted_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User deleted")
}
