// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/store"
)

// AdminHandler handles the admin dashboard.
type AdminHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *AdminHandler {
	return &AdminHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	PageCount      int64
	PublishedCount int64
	MediaCount     int64
	UserCount      int64
	RecentEvents   []store.Event
}

// Dashboard handles GET /admin - displays the admin dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	data := DashboardData{}

	var err error
	if data.PageCount, err = h.queries.CountPages(r.Context()); err != nil {
		logAndInternalError(w, "failed to count pages", "error", err)
		return
	}

	published, err := h.queries.ListPagesByStatus(r.Context(), model.PageStatusPublished)
	if err != nil {
		logAndInternalError(w, "failed to list published pages", "error", err)
		return
	}
	data.PublishedCount = int64(len(published))

	if data.MediaCount, err = h.queries.CountMedia(r.Context(), store.ListMediaParams{}); err != nil {
		logAndInternalError(w, "failed to count media", "error", err)
		return
	}

	if data.UserCount, err = h.queries.CountUsers(r.Context()); err != nil {
		logAndInternalError(w, "failed to count users", "error", err)
		return
	}

	data.RecentEvents, err = h.queries.ListEvents(r.Context(), store.ListEventsParams{Limit: 10})
	if err != nil {
		slog.Error("failed to list recent events", "error", err)
		// The dashboard is still useful without the event feed.
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title:    "Dashboard",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data:     data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}
