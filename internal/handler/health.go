// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/version"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	db         *sql.DB
	queries    *store.Queries
	uploadsDir string
	buildInfo  version.Info
	startTime  time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, uploadsDir string, buildInfo version.Info) *HealthHandler {
	return &HealthHandler{
		db:         db,
		queries:    store.New(db),
		uploadsDir: uploadsDir,
		buildInfo:  buildInfo,
		startTime:  time.Now(),
	}
}

// HealthStatusPublic is the minimal response for anonymous requests.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed response for authenticated requests.
type HealthStatus struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
	Checks   map[string]string `json:"checks"`
	PageInfo map[string]int64  `json:"pages"`
}

// Check handles GET /health. Anonymous requests get a bare status;
// authenticated requests get per-component checks.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := make(map[string]string)

	if err := h.db.PingContext(r.Context()); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "degraded"
	} else {
		checks["database"] = "ok"
	}

	if _, err := os.Stat(h.uploadsDir); err != nil {
		checks["uploads"] = "error: " + err.Error()
		status = "degraded"
	} else {
		checks["uploads"] = "ok"
	}

	w.Header().Set(HeaderContentType, "application/json")
	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if middleware.GetUser(r) == nil {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: status})
		return
	}

	pageInfo := make(map[string]int64)
	if total, err := h.queries.CountPages(r.Context()); err == nil {
		pageInfo["total"] = total
	}

	_ = json.NewEncoder(w).Encode(HealthStatus{
		Status:   status,
		Version:  h.buildInfo.Version,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Checks:   checks,
		PageInfo: pageInfo,
	})
}
