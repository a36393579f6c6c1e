package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/composer"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/seo"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
)

// FrontendHandler serves the public site: composed pages, robots.txt
// and the sitemap. Responses are cached whole and invalidated on any
// content change.
type FrontendHandler struct {
	db                *sql.DB
	queries           *store.Queries
	renderer          *render.Renderer
	pageService       *service.PageService
	menuService       *service.MenuService
	cacheManager      *cache.Manager
	siteURL           string
	robotsDisallowAll bool
}

// FrontendConfig holds frontend handler configuration.
type FrontendConfig struct {
	DB                *sql.DB
	Renderer          *render.Renderer
	PageService       *service.PageService
	MenuService       *service.MenuService
	CacheManager      *cache.Manager
	SiteURL           string
	RobotsDisallowAll bool
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(cfg FrontendConfig) *FrontendHandler {
	return &FrontendHandler{
		db:                cfg.DB,
		queries:           store.New(cfg.DB),
		renderer:          cfg.Renderer,
		pageService:       cfg.PageService,
		menuService:       cfg.MenuService,
		cacheManager:      cfg.CacheManager,
		siteURL:           cfg.SiteURL,
		robotsDisallowAll: cfg.RobotsDisallowAll,
	}
}

// SitePageData holds data for the public page template.
type SitePageData struct {
	Page composer.PageView
	Menu []service.MenuItem
	Site store.SiteConfig
	Meta *seo.Meta
}

// Home handles GET / - serves the homepage.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.queries.GetHomePage(r.Context())
	if errors.Is(err, sql.ErrNoRows) {
		// No page is flagged as home yet; fall back to the first
		// published page so a fresh site still serves something.
		page, err = h.queries.GetFirstPublishedPage(r.Context())
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to load homepage", "error", err)
		return
	}

	h.servePage(w, r, page)
}

// Page handles GET /{slug} - serves a published page.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.queries.GetPublishedPageBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to load page", "error", err, "slug", slug)
		return
	}

	h.servePage(w, r, page)
}

// servePage renders a published page, consulting the page cache first.
func (h *FrontendHandler) servePage(w http.ResponseWriter, r *http.Request, page store.Page) {
	if h.cacheManager != nil {
		if html, ok := h.cacheManager.GetPage(r.Context(), page.Slug); ok {
			w.Header().Set(HeaderContentType, "text/html; charset=utf-8")
			_, _ = w.Write(html)
			return
		}
	}

	view, err := h.pageService.ComposePage(r.Context(), page, false)
	if err != nil {
		logAndInternalError(w, "failed to compose page", "error", err, "slug", page.Slug)
		return
	}

	menu, err := h.menuService.PublicMenu(r.Context())
	if err != nil {
		slog.Error("failed to build menu", "error", err)
		// An empty menu is better than a broken page.
	}

	site, err := h.queries.GetSiteConfig(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load site config", "error", err)
		return
	}

	meta := seo.BuildMeta(&seo.PageData{
		Title:           page.Title,
		Slug:            page.Slug,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		OGImageURL:      view.OgImageURL,
		IsHome:          page.IsHome,
	}, h.siteData(site))

	html, err := h.renderer.RenderToBytes(r, "site/page", render.TemplateData{
		Title:    meta.Title,
		SiteName: site.SiteName,
		Data: SitePageData{
			Page: view,
			Menu: menu,
			Site: site,
			Meta: meta,
		},
	})
	if err != nil {
		logAndInternalError(w, "render error", "error", err, "slug", page.Slug)
		return
	}

	if h.cacheManager != nil {
		h.cacheManager.SetPage(r.Context(), page.Slug, html)
	}

	w.Header().Set(HeaderContentType, "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

// NotFound renders the public 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	site, err := h.queries.GetSiteConfig(r.Context())
	siteName := "PageCMS"
	if err == nil {
		siteName = site.SiteName
	}

	menu, _ := h.menuService.PublicMenu(r.Context())

	html, err := h.renderer.RenderToBytes(r, "site/404", render.TemplateData{
		Title:    "Page Not Found",
		SiteName: siteName,
		Data: SitePageData{
			Menu: menu,
			Site: site,
		},
	})
	if err != nil {
		slog.Error("render error", "error", err)
		http.Error(w, "Page Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set(HeaderContentType, "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(html)
}

// Robots handles GET /robots.txt.
func (h *FrontendHandler) Robots(w http.ResponseWriter, r *http.Request) {
	if h.cacheManager != nil {
		if body, ok := h.cacheManager.GetRobots(r.Context()); ok {
			w.Header().Set(HeaderContentType, "text/plain; charset=utf-8")
			_, _ = w.Write(body)
			return
		}
	}

	body := []byte(seo.NewRobotsBuilder(seo.RobotsConfig{
		SiteURL:     h.siteURL,
		DisallowAll: h.robotsDisallowAll,
	}).Build())

	if h.cacheManager != nil {
		h.cacheManager.SetRobots(r.Context(), body)
	}

	w.Header().Set(HeaderContentType, "text/plain; charset=utf-8")
	_, _ = w.Write(body)
}

// Sitemap handles GET /sitemap.xml - lists the homepage and all
// published pages.
func (h *FrontendHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	if h.cacheManager != nil {
		if body, ok := h.cacheManager.GetSitemap(r.Context()); ok {
			w.Header().Set(HeaderContentType, "application/xml; charset=utf-8")
			_, _ = w.Write(body)
			return
		}
	}

	pages, err := h.queries.ListPagesByStatus(r.Context(), model.PageStatusPublished)
	if err != nil {
		logAndInternalError(w, "failed to list pages for sitemap", "error", err)
		return
	}

	builder := seo.NewSitemapBuilder(h.siteURL)
	builder.AddHomepage()
	for _, p := range pages {
		if p.IsHome {
			continue // already covered by the homepage entry
		}
		builder.AddPage(seo.SitemapPage{Slug: p.Slug, UpdatedAt: p.UpdatedAt})
	}

	body, err := builder.Build()
	if err != nil {
		logAndInternalError(w, "failed to build sitemap", "error", err)
		return
	}

	if h.cacheManager != nil {
		h.cacheManager.SetSitemap(r.Context(), body)
	}

	w.Header().Set(HeaderContentType, "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// siteData converts the stored site configuration into SEO site data.
func (h *FrontendHandler) siteData(site store.SiteConfig) *seo.SiteData {
	return &seo.SiteData{
		SiteName:           site.SiteName,
		SiteURL:            h.siteURL,
		DefaultDescription: site.DefaultMetaDescription,
	}
}
