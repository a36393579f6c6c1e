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

// BlocksHandler handles content block management within the editor.
type BlocksHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewBlocksHandler creates a new BlocksHandler.
func NewBlocksHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, cm *cache.Manager) *BlocksHandler {
	return &BlocksHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// blockForm collects the submitted block fields.
func blockForm(r *http.Request) (store.CreateBlockParams, map[string]string) {
	blockType := r.FormValue("type")

	fieldErrors := make(map[string]string)
	if !model.IsValidBlockType(blockType) {
		fieldErrors["type"] = "Invalid block type"
	}

	linkTarget := r.FormValue("link_target")
	if linkTarget == "" {
		linkTarget = model.TargetSelf
	} else if !model.IsValidTarget(linkTarget) {
		fieldErrors["link_target"] = "Invalid link target"
	}

	buttonStyle := r.FormValue("button_style")
	if buttonStyle != "" && !model.IsValidButtonStyle(buttonStyle) {
		fieldErrors["button_style"] = "Invalid button style"
	}

	params := store.CreateBlockParams{
		Type:            blockType,
		Title:           strings.TrimSpace(r.FormValue("title")),
		Content:         r.FormValue("content"),
		HTMLContent:     r.FormValue("html_content"),
		ImageID:         util.ParseNullInt64(r.FormValue("image_id")),
		ImageAlt:        strings.TrimSpace(r.FormValue("image_alt")),
		LinkURL:         strings.TrimSpace(r.FormValue("link_url")),
		LinkText:        strings.TrimSpace(r.FormValue("link_text")),
		LinkTarget:      linkTarget,
		ButtonStyle:     buttonStyle,
		BackgroundColor: strings.TrimSpace(r.FormValue("background_color")),
		TextColor:       strings.TrimSpace(r.FormValue("text_color")),
		Config:          parseConfigJSON(r.FormValue("config"), fieldErrors),
	}
	return params, fieldErrors
}

// Create handles POST /admin/sections/{id}/blocks - appends a block
// to the section.
func (h *BlocksHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	sectionID, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid section ID")
		return
	}

	section, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "section", sectionID,
		func(id int64) (store.Section, error) { return h.queries.GetSectionByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := fmt.Sprintf(redirectAdminPagesIDEditor, section.PageID)

	if !parseFormOrRedirect(w, r, h.renderer, editorURL) {
		return
	}

	params, fieldErrors := blockForm(r)
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, editorURL, firstError(fieldErrors))
		return
	}

	position, err := h.queries.CountBlocksBySection(r.Context(), sectionID)
	if err != nil {
		logAndInternalError(w, "failed to count blocks", "error", err, "section_id", sectionID)
		return
	}
	params.SectionID = sectionID
	params.Position = position

	block, err := h.queries.CreateBlock(r.Context(), params)
	if err != nil {
		slog.Error("failed to create block", "error", err, "section_id", sectionID)
		flashError(w, r, h.renderer, editorURL, "Error creating block")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Block added", &user.ID,
		map[string]any{"block_id": block.ID, "section_id": sectionID, "type": block.Type})

	flashSuccess(w, r, h.renderer, editorURL, model.BlockTypeLabel(block.Type)+" added")
}

// Update handles POST /admin/blocks/{id} - updates a block.
func (h *BlocksHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid block ID")
		return
	}

	block, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "block", id,
		func(id int64) (store.ContentBlock, error) { return h.queries.GetBlockByID(r.Context(), id) })
	if !ok {
		return
	}

	editorURL := h.editorURLForSection(r, block.SectionID)

	if !parseFormOrRedirect(w, r, h.renderer, editorURL) {
		return
	}

	params, fieldErrors := blockForm(r)
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, editorURL, firstError(fieldErrors))
		return
	}

	if _, err := h.queries.UpdateBlock(r.Context(), store.UpdateBlockParams{
		ID:              id,
		Type:            params.Type,
		Title:           params.Title,
		Content:         params.Content,
		HTMLContent:     params.HTMLContent,
		ImageID:         params.ImageID,
		ImageAlt:        params.ImageAlt,
		LinkURL:         params.LinkURL,
		LinkText:        params.LinkText,
		LinkTarget:      params.LinkTarget,
		ButtonStyle:     params.ButtonStyle,
		BackgroundColor: params.BackgroundColor,
		TextColor:       params.TextColor,
		Config:          params.Config,
	}); err != nil {
		slog.Error("failed to update block", "error", err, "block_id", id)
		flashError(w, r, h.renderer, editorURL, "Error updating block")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Block updated", &user.ID, map[string]any{"block_id": id})

	flashSuccess(w, r, h.renderer, editorURL, "Block updated")
}

// Delete handles POST /admin/blocks/{id}/delete - deletes a block.
func (h *BlocksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid block ID")
		return
	}

	block, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "block", id,
		func(id int64) (store.ContentBlock, error) { return h.queries.GetBlockByID(r.Context(), id) })
	if !ok {
		return
	}

	editorURL := h.editorURLForSection(r, block.SectionID)

	if err := h.queries.DeleteBlock(r.Context(), id); err != nil {
		slog.Error("failed to delete block", "error", err, "block_id", id)
		flashError(w, r, h.renderer, editorURL, "Error deleting block")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Block deleted", &user.ID, map[string]any{"block_id": id, "section_id": block.SectionID})

	flashSuccess(w, r, h.renderer, editorURL, "Block deleted")
}

// Reorder handles POST /admin/sections/{id}/blocks/reorder - applies
// a new block order within one section.
func (h *BlocksHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	sectionID, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid section ID")
		return
	}

	if _, ok := requireEntityWithJSONError(w, "section", sectionID,
		func(id int64) (store.Section, error) { return h.queries.GetSectionByID(r.Context(), id) }); !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := store.ReorderBlocks(r.Context(), h.db, sectionID, pairsFromOrder(req.IDs)); err != nil {
		if errors.Is(err, store.ErrNotSibling) {
			writeJSONError(w, http.StatusBadRequest, "Block does not belong to this section")
			return
		}
		slog.Error("failed to reorder blocks", "error", err, "section_id", sectionID)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	writeJSONSuccess(w, nil)
}

// editorURLForSection resolves the editor URL for the page owning the
// section, falling back to the pages list.
func (h *BlocksHandler) editorURLForSection(r *http.Request, sectionID int64) string {
	section, err := h.queries.GetSectionByID(r.Context(), sectionID)
	if err != nil {
		return redirectAdminPages
	}
	return fmt.Sprintf(redirectAdminPagesIDEditor, section.PageID)
}
