// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/service"
)

// CacheHandler handles cache administration routes.
type CacheHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager,
	cm *cache.Manager) *CacheHandler {
	return &CacheHandler{
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// CacheStatsData holds data for the cache stats template.
type CacheStatsData struct {
	Stats    cache.Stats
	HasStats bool
}

// Stats handles GET /admin/cache - displays cache statistics.
// Backends without stats support render an empty panel.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	stats, ok := h.cacheManager.Stats()

	if err := h.renderer.Render(w, r, "admin/cache", render.TemplateData{
		Title:    "Cache",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data:     CacheStatsData{Stats: stats, HasStats: ok},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Clear handles POST /admin/cache/clear - flushes the page cache.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	h.cacheManager.ClearAll(r.Context())

	_ = h.eventService.LogCacheEvent(r.Context(), model.EventLevelInfo,
		"Cache cleared manually", &user.ID, nil)

	slog.Info("cache cleared", "cleared_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminCache, "Cache cleared")
}
