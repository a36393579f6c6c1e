// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/store"
)

// EventsPerPage is the number of events to display per page.
const EventsPerPage = 50

// EventsHandler handles the admin event log.
type EventsHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *EventsHandler {
	return &EventsHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
	}
}

// EventRow is an event with its user email and formatted metadata
// resolved for display.
type EventRow struct {
	store.Event
	UserEmail string
	Metadata  string
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events     []EventRow
	Level      string
	Category   string
	Levels     []string
	Categories []string
	Pagination AdminPagination
}

// List handles GET /admin/events - displays the event log with
// level and category filters.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	page := ParsePageParam(r)

	level := r.URL.Query().Get("level")
	if !model.IsValidEventLevel(level) {
		level = ""
	}
	category := r.URL.Query().Get("category")
	if !model.IsValidEventCategory(category) {
		category = ""
	}

	totalCount, err := h.queries.CountEvents(r.Context(), store.ListEventsParams{
		Level:    level,
		Category: category,
	})
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	page, _ = NormalizePagination(page, int(totalCount), EventsPerPage)
	offset := int64((page - 1) * EventsPerPage)

	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Level:    level,
		Category: category,
		Limit:    EventsPerPage,
		Offset:   offset,
	})
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	// Resolve user emails once per distinct user.
	emails := make(map[int64]string)
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		row := EventRow{Event: ev, Metadata: formatMetadata(ev.Metadata)}
		if ev.UserID.Valid {
			email, ok := emails[ev.UserID.Int64]
			if !ok {
				if u, err := h.queries.GetUserByID(r.Context(), ev.UserID.Int64); err == nil {
					email = u.Email
				}
				emails[ev.UserID.Int64] = email
			}
			row.UserEmail = email
		}
		rows = append(rows, row)
	}

	if err := h.renderer.Render(w, r, "admin/events", render.TemplateData{
		Title:    "Event Log",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: EventsListData{
			Events:     rows,
			Level:      level,
			Category:   category,
			Levels:     model.EventLevels,
			Categories: model.EventCategories,
			Pagination: BuildAdminPagination(page, int(totalCount), EventsPerPage, redirectAdminEvents, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// formatMetadata renders an event metadata JSON blob as a short
// "key: value, key: value" string for the log table.
func formatMetadata(raw string) string {
	if raw == "" || raw == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return raw
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, data[k]))
	}
	return strings.Join(parts, ", ")
}
