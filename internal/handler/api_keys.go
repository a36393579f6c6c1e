// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
)

// SessionKeyNewAPIKey stores a freshly generated raw API key so it can
// be shown exactly once after the create redirect.
const SessionKeyNewAPIKey = "new_api_key"

// APIKeysHandler handles API key management routes. All routes require
// the admin role.
type APIKeysHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewAPIKeysHandler creates a new APIKeysHandler.
func NewAPIKeysHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *APIKeysHandler {
	return &APIKeysHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// APIKeysListData holds data for the API keys template.
type APIKeysListData struct {
	Keys []store.APIKey
	// NewKey is the raw key value, present only on the request
	// immediately following creation.
	NewKey string
}

// List handles GET /admin/api-keys - displays all API keys.
func (h *APIKeysHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	keys, err := h.queries.ListAPIKeys(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list API keys", "error", err)
		return
	}

	newKey := h.sessionManager.PopString(r.Context(), SessionKeyNewAPIKey)

	if err := h.renderer.Render(w, r, "admin/api_keys", render.TemplateData{
		Title:    "API Keys",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: APIKeysListData{
			Keys:   keys,
			NewKey: newKey,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Create handles POST /admin/api-keys - generates a new API key.
// Only the hash is stored; the raw key is flashed to the next request.
func (h *APIKeysHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminAPIKeys) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		flashError(w, r, h.renderer, redirectAdminAPIKeys, "Key name is required")
		return
	}

	rawKey, prefix, err := model.GenerateAPIKey()
	if err != nil {
		logAndInternalError(w, "failed to generate API key", "error", err)
		return
	}

	key, err := h.queries.CreateAPIKey(r.Context(), store.CreateAPIKeyParams{
		Name:      name,
		KeyHash:   model.HashAPIKey(rawKey),
		KeyPrefix: prefix,
		CreatedBy: user.ID,
	})
	if err != nil {
		slog.Error("failed to create API key", "error", err, "name", name)
		flashError(w, r, h.renderer, redirectAdminAPIKeys, "Error creating API key")
		return
	}

	h.sessionManager.Put(r.Context(), SessionKeyNewAPIKey, rawKey)

	_ = h.eventService.LogConfigEvent(r.Context(), model.EventLevelInfo,
		"API key created: "+key.Name, &user.ID, map[string]any{"key_id": key.ID, "prefix": key.KeyPrefix})

	slog.Info("api key created", "key_id", key.ID, "created_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminAPIKeys,
		"API key created. Copy it now - it will not be shown again.")
}

// Toggle handles POST /admin/api-keys/{id}/toggle - activates or
// deactivates a key.
func (h *APIKeysHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminAPIKeys, "Invalid key ID")
		return
	}

	key, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminAPIKeys, "API key", id,
		func(id int64) (store.APIKey, error) { return h.queries.GetAPIKeyByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.SetAPIKeyActive(r.Context(), id, !key.IsActive); err != nil {
		slog.Error("failed to toggle API key", "error", err, "key_id", id)
		flashError(w, r, h.renderer, redirectAdminAPIKeys, "Error updating API key")
		return
	}

	message := "API key activated"
	if key.IsActive {
		message = "API key deactivated"
	}

	_ = h.eventService.LogConfigEvent(r.Context(), model.EventLevelInfo,
		message+": "+key.Name, &user.ID, map[string]any{"key_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminAPIKeys, message)
}

// Delete handles POST /admin/api-keys/{id}/delete - deletes a key.
func (h *APIKeysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminAPIKeys, "Invalid key ID")
		return
	}

	key, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminAPIKeys, "API key", id,
		func(id int64) (store.APIKey, error) { return h.queries.GetAPIKeyByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteAPIKey(r.Context(), id); err != nil {
		slog.Error("failed to delete API key", "error", err, "key_id", id)
		flashError(w, r, h.renderer, redirectAdminAPIKeys, "Error deleting API key")
		return
	}

	_ = h.eventService.LogConfigEvent(r.Context(), model.EventLevelInfo,
		"API key deleted: "+key.Name, &user.ID, map[string]any{"key_id": id})

	slog.Info("api key deleted", "key_id", id, "deleted_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminAPIKeys, "API key deleted")
}
