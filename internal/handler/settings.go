// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
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

// SettingsHandler handles site configuration routes.
type SettingsHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager,
	cm *cache.Manager) *SettingsHandler {
	return &SettingsHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// DefaultBaseFontSize is used when the base font size field is empty
// or not a number.
const DefaultBaseFontSize = 16

// parseFontSize parses the base font size field, clamping to a sane
// range.
func parseFontSize(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 10 || n > 32 {
		return DefaultBaseFontSize
	}
	return n
}

// SettingsFormData holds data for the settings template.
type SettingsFormData struct {
	Config store.SiteConfig
	Images []store.Media
}

// Form handles GET /admin/settings - displays the site settings form.
func (h *SettingsHandler) Form(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	cfg, err := h.queries.GetSiteConfig(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load site config", "error", err)
		return
	}

	images, err := h.queries.ListMedia(r.Context(), store.ListMediaParams{
		MediaType: model.MediaTypeImage,
		Limit:     200,
	})
	if err != nil {
		logAndInternalError(w, "failed to list images", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/settings", render.TemplateData{
		Title:    "Site Settings",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: SettingsFormData{
			Config: cfg,
			Images: images,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Update handles POST /admin/settings - saves the site configuration.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminSettings) {
		return
	}

	siteName := strings.TrimSpace(r.FormValue("site_name"))
	if siteName == "" {
		flashError(w, r, h.renderer, redirectAdminSettings, "Site name is required")
		return
	}

	_, err := h.queries.UpdateSiteConfig(r.Context(), store.UpdateSiteConfigParams{
		SiteName:               siteName,
		LogoID:                 util.ParseNullInt64(r.FormValue("logo_id")),
		FaviconID:              util.ParseNullInt64(r.FormValue("favicon_id")),
		PrimaryColor:           strings.TrimSpace(r.FormValue("primary_color")),
		SecondaryColor:         strings.TrimSpace(r.FormValue("secondary_color")),
		TextColor:              strings.TrimSpace(r.FormValue("text_color")),
		BackgroundColor:        strings.TrimSpace(r.FormValue("background_color")),
		FontFamily:             strings.TrimSpace(r.FormValue("font_family")),
		BaseFontSize:           parseFontSize(r.FormValue("base_font_size")),
		FooterText:             strings.TrimSpace(r.FormValue("footer_text")),
		FooterBackgroundColor:  strings.TrimSpace(r.FormValue("footer_background_color")),
		FooterTextColor:        strings.TrimSpace(r.FormValue("footer_text_color")),
		DefaultMetaDescription: strings.TrimSpace(r.FormValue("default_meta_description")),
		GoogleAnalyticsID:      strings.TrimSpace(r.FormValue("google_analytics_id")),
		FacebookURL:            strings.TrimSpace(r.FormValue("facebook_url")),
		TwitterURL:             strings.TrimSpace(r.FormValue("twitter_url")),
		LinkedinURL:            strings.TrimSpace(r.FormValue("linkedin_url")),
		InstagramURL:           strings.TrimSpace(r.FormValue("instagram_url")),
	})
	if err != nil {
		slog.Error("failed to update site config", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, redirectAdminSettings, "Error saving settings")
		return
	}

	// Branding changes every rendered page.
	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogConfigEvent(r.Context(), model.EventLevelInfo,
		"Site settings updated", &user.ID, nil)

	slog.Info("site settings updated", "updated_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminSettings, "Settings saved")
}
