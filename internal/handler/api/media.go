// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"
)

// MediaResponse is one media library entry.
type MediaResponse struct {
	ID           int64  `json:"id"`
	UUID         string `json:"uuid"`
	Filename     string `json:"filename"`
	MediaType    string `json:"media_type"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Width        int64  `json:"width,omitempty"`
	Height       int64  `json:"height,omitempty"`
	Title        string `json:"title,omitempty"`
	Alt          string `json:"alt,omitempty"`
	Caption      string `json:"caption,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) mediaResponse(m store.Media) MediaResponse {
	resp := MediaResponse{
		ID:        m.ID,
		UUID:      m.UUID,
		Filename:  m.Filename,
		MediaType: m.MediaType,
		MimeType:  m.MimeType,
		Size:      m.Size,
		Title:     m.Title,
		Alt:       m.Alt,
		Caption:   m.Caption,
		URL:       h.mediaService.URL(m),
		CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if m.Width.Valid {
		resp.Width = m.Width.Int64
	}
	if m.Height.Valid {
		resp.Height = m.Height.Int64
	}
	if m.MediaType == model.MediaTypeImage {
		resp.ThumbnailURL = h.mediaService.ThumbnailURL(m)
	}
	return resp
}

// ListMedia handles GET /api/v1/media - lists media library entries
// with optional type filtering and pagination.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	mediaType := r.URL.Query().Get("type")
	valid := false
	for _, t := range model.MediaTypes {
		if t == mediaType {
			valid = true
			break
		}
	}
	if !valid {
		mediaType = ""
	}

	page, perPage := parsePagination(r)

	total, err := h.queries.CountMedia(r.Context(), store.ListMediaParams{MediaType: mediaType})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	media, err := h.queries.ListMedia(r.Context(), store.ListMediaParams{
		MediaType: mediaType,
		Limit:     int64(perPage),
		Offset:    int64((page - 1) * perPage),
	})
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	items := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		items = append(items, h.mediaResponse(m))
	}

	totalPages := (int(total) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	WriteSuccessMeta(w, items, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages,
	})
}

// GetMedia handles GET /api/v1/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID")
		return
	}

	media, err := h.queries.GetMediaByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Media not found")
		return
	}
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	WriteSuccess(w, h.mediaResponse(media))
}
