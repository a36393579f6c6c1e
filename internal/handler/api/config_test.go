// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/pagecms-go/internal/store"
)

func TestAPIGetSiteConfig(t *testing.T) {
	h, db := testHandler(t)
	ctx := context.Background()
	q := store.New(db)

	// The singleton self-seeds on first read.
	cfg, err := q.GetSiteConfig(ctx)
	if err != nil {
		t.Fatalf("GetSiteConfig: %v", err)
	}
	_, err = q.UpdateSiteConfig(ctx, store.UpdateSiteConfigParams{
		SiteName:          "Acme Pages",
		GoogleAnalyticsID: "G-TEST123",
		PrimaryColor:      cfg.PrimaryColor,
		TextColor:         cfg.TextColor,
		BackgroundColor:   cfg.BackgroundColor,
		FontFamily:        cfg.FontFamily,
		BaseFontSize:      cfg.BaseFontSize,
	})
	if err != nil {
		t.Fatalf("UpdateSiteConfig: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/config", nil)
	w := httptest.NewRecorder()
	h.GetSiteConfig(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}

	var envelope struct {
		Data SiteConfigResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data.SiteName != "Acme Pages" {
		t.Errorf("site name = %q; want Acme Pages", envelope.Data.SiteName)
	}
	if envelope.Data.GoogleAnalyticsID != "" {
		t.Error("anonymous response must not include the analytics ID")
	}

	req = privilegedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))
	w = httptest.NewRecorder()
	h.GetSiteConfig(w, req)

	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data.GoogleAnalyticsID != "G-TEST123" {
		t.Errorf("analytics ID = %q; want G-TEST123", envelope.Data.GoogleAnalyticsID)
	}
}

func TestAPIStatus(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	var envelope struct {
		Data StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data.Status != "ok" || envelope.Data.Version != APIVersion {
		t.Errorf("status = %+v; want ok/%s", envelope.Data, APIVersion)
	}
}
