// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/util"
)

// SectionsHandler handles section management within the page editor.
type SectionsHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewSectionsHandler creates a new SectionsHandler.
func NewSectionsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, cm *cache.Manager) *SectionsHandler {
	return &SectionsHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// sectionForm collects the submitted section fields. Padding values
// fall back to the default when missing or invalid.
func sectionForm(r *http.Request) (store.CreateSectionParams, map[string]string) {
	sectionType := r.FormValue("type")
	title := strings.TrimSpace(r.FormValue("title"))
	anchor := strings.TrimSpace(r.FormValue("anchor"))

	fieldErrors := make(map[string]string)
	if !model.IsValidSectionType(sectionType) {
		fieldErrors["type"] = "Invalid section type"
	}
	if anchor == "" && title != "" {
		// A titled section gets an in-page anchor so menu links can target it.
		anchor = util.Slugify(title)
	}
	if anchor != "" && !util.IsValidSlug(anchor) {
		fieldErrors["anchor"] = "Anchor must use lowercase letters, numbers, and hyphens"
	}

	params := store.CreateSectionParams{
		Type:              sectionType,
		Title:             title,
		Anchor:            anchor,
		IsVisible:         r.FormValue("is_visible") != "",
		BackgroundColor:   strings.TrimSpace(r.FormValue("background_color")),
		BackgroundImageID: util.ParseNullInt64(r.FormValue("background_image_id")),
		TextColor:         strings.TrimSpace(r.FormValue("text_color")),
		PaddingTop:        parsePadding(r.FormValue("padding_top")),
		PaddingBottom:     parsePadding(r.FormValue("padding_bottom")),
		CSSClass:          strings.TrimSpace(r.FormValue("css_class")),
		Config:            parseConfigJSON(r.FormValue("config"), fieldErrors),
	}
	return params, fieldErrors
}

// parsePadding parses a pixel padding value, defaulting when invalid.
func parsePadding(s string) int64 {
	if s == "" {
		return model.DefaultSectionPadding
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return model.DefaultSectionPadding
	}
	return n
}

// parseConfigJSON parses the optional free-form config field.
func parseConfigJSON(s string, fieldErrors map[string]string) model.JSONMap {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.JSONMap{}
	}
	var m model.JSONMap
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		fieldErrors["config"] = "Config must be a valid JSON object"
		return model.JSONMap{}
	}
	return m
}

// Create handles POST /admin/pages/{id}/sections - appends a section
// to the page.
func (h *SectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	pageID, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}
	editorURL := fmt.Sprintf(redirectAdminPagesIDEditor, pageID)

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", pageID,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, editorURL) {
		return
	}

	params, fieldErrors := sectionForm(r)
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, editorURL, firstError(fieldErrors))
		return
	}

	position, err := h.queries.CountSectionsByPage(r.Context(), pageID)
	if err != nil {
		logAndInternalError(w, "failed to count sections", "error", err, "page_id", pageID)
		return
	}
	params.PageID = pageID
	params.Position = position

	section, err := h.queries.CreateSection(r.Context(), params)
	if err != nil {
		slog.Error("failed to create section", "error", err, "page_id", pageID)
		flashError(w, r, h.renderer, editorURL, "Error creating section")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Section added to "+page.Title, &user.ID,
		map[string]any{"section_id": section.ID, "page_id": pageID, "type": section.Type})

	flashSuccess(w, r, h.renderer, editorURL, model.SectionTypeLabel(section.Type)+" added")
}

// Update handles POST /admin/sections/{id} - updates a section.
func (h *SectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid section ID")
		return
	}

	section, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "section", id,
		func(id int64) (store.Section, error) { return h.queries.GetSectionByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := fmt.Sprintf(redirectAdminPagesIDEditor, section.PageID)

	if !parseFormOrRedirect(w, r, h.renderer, editorURL) {
		return
	}

	params, fieldErrors := sectionForm(r)
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, editorURL, firstError(fieldErrors))
		return
	}

	if _, err := h.queries.UpdateSection(r.Context(), store.UpdateSectionParams{
		ID:                id,
		Type:              params.Type,
		Title:             params.Title,
		Anchor:            params.Anchor,
		IsVisible:         params.IsVisible,
		BackgroundColor:   params.BackgroundColor,
		BackgroundImageID: params.BackgroundImageID,
		TextColor:         params.TextColor,
		PaddingTop:        params.PaddingTop,
		PaddingBottom:     params.PaddingBottom,
		CSSClass:          params.CSSClass,
		Config:            params.Config,
	}); err != nil {
		slog.Error("failed to update section", "error", err, "section_id", id)
		flashError(w, r, h.renderer, editorURL, "Error updating section")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Section updated", &user.ID, map[string]any{"section_id": id, "page_id": section.PageID})

	flashSuccess(w, r, h.renderer, editorURL, "Section updated")
}

// ToggleVisibility handles POST /admin/sections/{id}/visibility.
func (h *SectionsHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid section ID")
		return
	}

	section, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "section", id,
		func(id int64) (store.Section, error) { return h.queries.GetSectionByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := fmt.Sprintf(redirectAdminPagesIDEditor, section.PageID)

	if err := h.queries.UpdateSectionVisibility(r.Context(), id, !section.IsVisible); err != nil {
		slog.Error("failed to toggle section visibility", "error", err, "section_id", id)
		flashError(w, r, h.renderer, editorURL, "Error updating section")
		return
	}

	invalidateContentCache(r, h.cacheManager)

	if section.IsVisible {
		flashSuccess(w, r, h.renderer, editorURL, "Section hidden")
	} else {
		flashSuccess(w, r, h.renderer, editorURL, "Section is now visible")
	}
}

// Delete handles POST /admin/sections/{id}/delete - deletes a section
// and, through foreign keys, its blocks and gallery images.
func (h *SectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid section ID")
		return
	}

	section, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "section", id,
		func(id int64) (store.Section, error) { return h.queries.GetSectionByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := fmt.Sprintf(redirectAdminPagesIDEditor, section.PageID)

	if err := h.queries.DeleteSection(r.Context(), id); err != nil {
		slog.Error("failed to delete section", "error", err, "section_id", id)
		flashError(w, r, h.renderer, editorURL, "Error deleting section")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Section deleted", &user.ID, map[string]any{"section_id": id, "page_id": section.PageID})

	flashSuccess(w, r, h.renderer, editorURL, "Section deleted")
}

// reorderRequest is the JSON body for reorder endpoints: the ordered
// list of IDs within one parent.
type reorderRequest struct {
	IDs []int64 `json:"ids"`
}

// pairsFromOrder converts an ordered ID list into position pairs.
func pairsFromOrder(ids []int64) []store.ReorderPair {
	pairs := make([]store.ReorderPair, len(ids))
	for i, id := range ids {
		pairs[i] = store.ReorderPair{ID: id, Position: int64(i)}
	}
	return pairs
}

// Reorder handles POST /admin/pages/{id}/sections/reorder - applies a
// new section order in one transaction. An ID belonging to another
// page rejects the whole batch.
func (h *SectionsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	pageID, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid page ID")
		return
	}

	if _, ok := requireEntityWithJSONError(w, "page", pageID,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) }); !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := store.ReorderSections(r.Context(), h.db, pageID, pairsFromOrder(req.IDs)); err != nil {
		if errors.Is(err, store.ErrNotSibling) {
			writeJSONError(w, http.StatusBadRequest, "Section does not belong to this page")
			return
		}
		slog.Error("failed to reorder sections", "error", err, "page_id", pageID)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	writeJSONSuccess(w, nil)
}

// firstError returns one field error for a flash message.
func firstError(fieldErrors map[string]string) string {
	for _, msg := range fieldErrors {
		return msg
	}
	return "Invalid form data"
}
