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
)

// GalleryHandler handles gallery image management for gallery blocks.
type GalleryHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, cm *cache.Manager) *GalleryHandler {
	return &GalleryHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// Add handles POST /admin/blocks/{id}/gallery - appends an image to a
// gallery block.
func (h *GalleryHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	blockID, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid block ID")
		return
	}

	block, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "block", blockID,
		func(id int64) (store.ContentBlock, error) { return h.queries.GetBlockByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := h.editorURL(r, block.SectionID)

	if block.Type != model.BlockTypeGallery {
		flashError(w, r, h.renderer, editorURL, "Images can only be added to gallery blocks")
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, editorURL) {
		return
	}

	mediaID, err := strconv.ParseInt(r.FormValue("media_id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, editorURL, "Select an image to add")
		return
	}

	media, err := h.queries.GetMediaByID(r.Context(), mediaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashError(w, r, h.renderer, editorURL, "Image not found")
		} else {
			slog.Error("failed to get media", "error", err, "media_id", mediaID)
			flashError(w, r, h.renderer, editorURL, "Error loading image")
		}
		return
	}
	if media.MediaType != model.MediaTypeImage {
		flashError(w, r, h.renderer, editorURL, "Only images can be added to a gallery")
		return
	}

	position, err := h.queries.CountGalleryImagesByBlock(r.Context(), blockID)
	if err != nil {
		logAndInternalError(w, "failed to count gallery images", "error", err, "block_id", blockID)
		return
	}

	alt := strings.TrimSpace(r.FormValue("alt"))
	if alt == "" {
		alt = media.Alt
	}

	image, err := h.queries.CreateGalleryImage(r.Context(), store.CreateGalleryImageParams{
		BlockID:  blockID,
		MediaID:  mediaID,
		Alt:      alt,
		Caption:  strings.TrimSpace(r.FormValue("caption")),
		Position: position,
	})
	if err != nil {
		slog.Error("failed to add gallery image", "error", err, "block_id", blockID)
		flashError(w, r, h.renderer, editorURL, "Error adding image to gallery")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Gallery image added", &user.ID,
		map[string]any{"gallery_image_id": image.ID, "block_id": blockID, "media_id": mediaID})

	flashSuccess(w, r, h.renderer, editorURL, "Image added to gallery")
}

// Update handles POST /admin/gallery/{id} - updates alt text and
// caption of a gallery image.
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid gallery image ID")
		return
	}

	image, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "gallery image", id,
		func(id int64) (store.GalleryImage, error) { return h.queries.GetGalleryImageByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := h.editorURLForBlock(r, image.BlockID)

	if !parseFormOrRedirect(w, r, h.renderer, editorURL) {
		return
	}

	if _, err := h.queries.UpdateGalleryImage(r.Context(), store.UpdateGalleryImageParams{
		ID:      id,
		Alt:     strings.TrimSpace(r.FormValue("alt")),
		Caption: strings.TrimSpace(r.FormValue("caption")),
	}); err != nil {
		slog.Error("failed to update gallery image", "error", err, "gallery_image_id", id)
		flashError(w, r, h.renderer, editorURL, "Error updating gallery image")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	flashSuccess(w, r, h.renderer, editorURL, "Gallery image updated")
}

// Delete handles POST /admin/gallery/{id}/delete - removes an image
// from its gallery. The media library entry is untouched.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid gallery image ID")
		return
	}

	image, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "gallery image", id,
		func(id int64) (store.GalleryImage, error) { return h.queries.GetGalleryImageByID(r.Context(), id) })
	if !ok {
		return
	}
	editorURL := h.editorURLForBlock(r, image.BlockID)

	if err := h.queries.DeleteGalleryImage(r.Context(), id); err != nil {
		slog.Error("failed to delete gallery image", "error", err, "gallery_image_id", id)
		flashError(w, r, h.renderer, editorURL, "Error removing image")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Gallery image removed", &user.ID,
		map[string]any{"gallery_image_id": id, "block_id": image.BlockID})

	flashSuccess(w, r, h.renderer, editorURL, "Image removed from gallery")
}

// Reorder handles POST /admin/blocks/{id}/gallery/reorder - applies a
// new image order within one gallery block.
func (h *GalleryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	blockID, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid block ID")
		return
	}

	if _, ok := requireEntityWithJSONError(w, "block", blockID,
		func(id int64) (store.ContentBlock, error) { return h.queries.GetBlockByID(r.Context(), id) }); !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := store.ReorderGalleryImages(r.Context(), h.db, blockID, pairsFromOrder(req.IDs)); err != nil {
		if errors.Is(err, store.ErrNotSibling) {
			writeJSONError(w, http.StatusBadRequest, "Image does not belong to this gallery")
			return
		}
		slog.Error("failed to reorder gallery images", "error", err, "block_id", blockID)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	writeJSONSuccess(w, nil)
}

// editorURL resolves the page editor URL from a section ID.
func (h *GalleryHandler) editorURL(r *http.Request, sectionID int64) string {
	section, err := h.queries.GetSectionByID(r.Context(), sectionID)
	if err != nil {
		return redirectAdminPages
	}
	return fmt.Sprintf(redirectAdminPagesIDEditor, section.PageID)
}

// editorURLForBlock resolves the page editor URL from a block ID.
func (h *GalleryHandler) editorURLForBlock(r *http.Request, blockID int64) string {
	block, err := h.queries.GetBlockByID(r.Context(), blockID)
	if err != nil {
		return redirectAdminPages
	}
	return h.editorURL(r, block.SectionID)
}
