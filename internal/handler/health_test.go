// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/testutil"
	"github.com/olegiv/pagecms-go/internal/version"
)

func TestHealthHandler_Anonymous(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, t.TempDir(), version.Info{Version: "1.2.3"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}

	var resp HealthStatusPublic
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q; want ok", resp.Status)
	}

	// The anonymous response must not leak version or check details.
	var raw map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &raw)
	if _, ok := raw["version"]; ok {
		t.Error("anonymous response must not include version")
	}
	if _, ok := raw["checks"]; ok {
		t.Error("anonymous response must not include checks")
	}
}

func TestHealthHandler_Authenticated(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, t.TempDir(), version.Info{Version: "1.2.3"})
	admin := testutil.SeedAdmin(t, db)
	createTestPage(t, db, "Home", "home", model.PageStatusPublished)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = requestWithUser(req, admin)
	w := httptest.NewRecorder()
	h.Check(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("version = %q; want 1.2.3", resp.Version)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["uploads"] != "ok" {
		t.Errorf("checks = %v; want database and uploads ok", resp.Checks)
	}
	if resp.PageInfo["total"] != 1 {
		t.Errorf("page total = %d; want 1", resp.PageInfo["total"])
	}
}

func TestHealthHandler_MissingUploadsDirDegraded(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, "/nonexistent/uploads", version.Info{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Check(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp HealthStatusPublic
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q; want degraded", resp.Status)
	}
}
