// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api implements the public read-only JSON API under /api/v1.
//
// All endpoints serve published content to anonymous clients. Requests
// authenticated with an API key additionally see draft pages and
// hidden sections.
package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
)

// APIVersion is the current API version string.
const APIVersion = "v1"

// Response is the standard success envelope.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta holds pagination metadata for list responses.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode API response", "error", err)
	}
}

// WriteSuccess writes a 200 response wrapping data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteSuccessMeta writes a 200 response wrapping data with pagination.
func WriteSuccessMeta(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteError writes an error envelope with the given status code.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// WriteBadRequest writes a 400 error.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

// WriteNotFound writes a 404 error.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteInternalError logs err and writes a generic 500 error.
func WriteInternalError(w http.ResponseWriter, err error) {
	slog.Error("API internal error", "error", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
}

// Handler holds shared dependencies for API endpoints.
type Handler struct {
	db           *sql.DB
	queries      *store.Queries
	pageService  *service.PageService
	menuService  *service.MenuService
	mediaService *service.MediaService
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, ps *service.PageService, ms *service.MenuService,
	media *service.MediaService) *Handler {
	return &Handler{
		db:           db,
		queries:      store.New(db),
		pageService:  ps,
		menuService:  ms,
		mediaService: media,
	}
}

// parseIDParam extracts the {id} route parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: APIVersion})
}
