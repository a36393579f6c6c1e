// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"

	"github.com/olegiv/pagecms-go/internal/middleware"
)

// SiteConfigResponse is the public site configuration. Analytics and
// internal IDs are only included for API key clients.
type SiteConfigResponse struct {
	SiteName               string `json:"site_name"`
	LogoURL                string `json:"logo_url,omitempty"`
	FaviconURL             string `json:"favicon_url,omitempty"`
	PrimaryColor           string `json:"primary_color,omitempty"`
	SecondaryColor         string `json:"secondary_color,omitempty"`
	TextColor              string `json:"text_color,omitempty"`
	BackgroundColor        string `json:"background_color,omitempty"`
	FontFamily             string `json:"font_family,omitempty"`
	BaseFontSize           int64  `json:"base_font_size,omitempty"`
	FooterText             string `json:"footer_text,omitempty"`
	FooterBackgroundColor  string `json:"footer_background_color,omitempty"`
	FooterTextColor        string `json:"footer_text_color,omitempty"`
	DefaultMetaDescription string `json:"default_meta_description,omitempty"`
	FacebookURL            string `json:"facebook_url,omitempty"`
	TwitterURL             string `json:"twitter_url,omitempty"`
	LinkedinURL            string `json:"linkedin_url,omitempty"`
	InstagramURL           string `json:"instagram_url,omitempty"`

	GoogleAnalyticsID string `json:"google_analytics_id,omitempty"`
}

// GetSiteConfig handles GET /api/v1/config - returns the site
// configuration for headless frontends.
func (h *Handler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.queries.GetSiteConfig(r.Context())
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	resp := SiteConfigResponse{
		SiteName:               cfg.SiteName,
		LogoURL:                h.resolveMediaURL(r, cfg.LogoID),
		FaviconURL:             h.resolveMediaURL(r, cfg.FaviconID),
		PrimaryColor:           cfg.PrimaryColor,
		SecondaryColor:         cfg.SecondaryColor,
		TextColor:              cfg.TextColor,
		BackgroundColor:        cfg.BackgroundColor,
		FontFamily:             cfg.FontFamily,
		BaseFontSize:           cfg.BaseFontSize,
		FooterText:             cfg.FooterText,
		FooterBackgroundColor:  cfg.FooterBackgroundColor,
		FooterTextColor:        cfg.FooterTextColor,
		DefaultMetaDescription: cfg.DefaultMetaDescription,
		FacebookURL:            cfg.FacebookURL,
		TwitterURL:             cfg.TwitterURL,
		LinkedinURL:            cfg.LinkedinURL,
		InstagramURL:           cfg.InstagramURL,
	}

	if middleware.HasAPIKey(r) {
		resp.GoogleAnalyticsID = cfg.GoogleAnalyticsID
	}

	WriteSuccess(w, resp)
}

func (h *Handler) resolveMediaURL(r *http.Request, id sql.NullInt64) string {
	if !id.Valid {
		return ""
	}
	media, err := h.queries.GetMediaByID(r.Context(), id.Int64)
	if err != nil {
		return ""
	}
	return h.mediaService.URL(media)
}
