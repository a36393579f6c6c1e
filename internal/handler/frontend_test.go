package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
)

func newTestFrontend(t *testing.T, db *sql.DB, cm *cache.Manager) *FrontendHandler {
	t.Helper()

	sm := testSessionManager()
	mediaService := service.NewMediaService(db, t.TempDir())
	return NewFrontendHandler(FrontendConfig{
		DB:           db,
		Renderer:     testRenderer(t, sm),
		PageService:  service.NewPageService(db, mediaService),
		MenuService:  service.NewMenuService(db),
		CacheManager: cm,
		SiteURL:      "https://example.com",
	})
}

func TestFrontendHandler_Home_NoPages(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Home(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
}

func TestFrontendHandler_Home_FallsBackToFirstPublished(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	createTestPage(t, db, "About", "about", model.PageStatusPublished)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Home(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "About") {
		t.Error("response should contain the fallback page title")
	}
}

func TestFrontendHandler_Page_Published(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	page := createTestPage(t, db, "Contact Us", "contact", model.PageStatusPublished)
	section := createTestSection(t, db, page.ID, model.SectionTypeText)
	_, err := store.New(db).CreateBlock(context.Background(), store.CreateBlockParams{
		SectionID:  section.ID,
		Type:       model.BlockTypeHeading,
		Title:      "Get in touch",
		LinkTarget: "_self",
		Config:     model.JSONMap{},
	})
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	req := requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/contact", nil),
		map[string]string{"slug": "contact"})
	w := httptest.NewRecorder()
	h.Page(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Get in touch") {
		t.Error("response should contain the heading block text")
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestFrontendHandler_Page_DraftHidden(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	createTestPage(t, db, "Secret", "secret", model.PageStatusDraft)

	req := requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/secret", nil),
		map[string]string{"slug": "secret"})
	w := httptest.NewRecorder()
	h.Page(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d for a draft page", w.Code, http.StatusNotFound)
	}
}

func TestFrontendHandler_PageCache(t *testing.T) {
	db := testDB(t)
	cm := testCacheManager(t)
	h := newTestFrontend(t, db, cm)

	page := createTestPage(t, db, "Original Title", "cached", model.PageStatusPublished)

	serve := func() string {
		req := requestWithURLParams(
			httptest.NewRequest(http.MethodGet, "/cached", nil),
			map[string]string{"slug": "cached"})
		w := httptest.NewRecorder()
		h.Page(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
		}
		return w.Body.String()
	}

	first := serve()
	if !strings.Contains(first, "Original Title") {
		t.Fatal("first response should contain the page title")
	}

	// Change the title behind the cache's back. The cached copy must
	// keep serving until the cache is cleared.
	_, err := store.New(db).UpdatePage(context.Background(), store.UpdatePageParams{
		ID:     page.ID,
		Title:  "Changed Title",
		Slug:   "cached",
		Status: model.PageStatusPublished,
	})
	if err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}

	second := serve()
	if !strings.Contains(second, "Original Title") {
		t.Error("second response should come from the cache")
	}

	cm.ClearAll(context.Background())

	third := serve()
	if !strings.Contains(third, "Changed Title") {
		t.Error("after clearing the cache the new title should be served")
	}
}

func TestFrontendHandler_NotFoundPage(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	h.NotFound(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
	if !strings.Contains(w.Body.String(), "404") {
		t.Error("404 page should render the not-found template")
	}
}

func TestFrontendHandler_Robots(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	w := httptest.NewRecorder()
	h.Robots(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "Disallow: /admin") {
		t.Error("robots.txt should disallow the admin area")
	}
	if !strings.Contains(body, "Sitemap: https://example.com/sitemap.xml") {
		t.Error("robots.txt should reference the sitemap")
	}
}

func TestFrontendHandler_Robots_DisallowAll(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewFrontendHandler(FrontendConfig{
		DB:                db,
		Renderer:          testRenderer(t, sm),
		PageService:       service.NewPageService(db, service.NewMediaService(db, t.TempDir())),
		MenuService:       service.NewMenuService(db),
		SiteURL:           "https://staging.example.com",
		RobotsDisallowAll: true,
	})

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	w := httptest.NewRecorder()
	h.Robots(w, req)

	if !strings.Contains(w.Body.String(), "Disallow: /\n") {
		t.Error("staging robots.txt should disallow everything")
	}
}

func TestFrontendHandler_Sitemap(t *testing.T) {
	db := testDB(t)
	h := newTestFrontend(t, db, nil)

	createTestPage(t, db, "Published", "published-page", model.PageStatusPublished)
	createTestPage(t, db, "Draft", "draft-page", model.PageStatusDraft)

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	w := httptest.NewRecorder()
	h.Sitemap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "https://example.com/published-page") {
		t.Error("sitemap should list published pages")
	}
	if strings.Contains(body, "draft-page") {
		t.Error("sitemap should not list draft pages")
	}
	if !strings.Contains(body, "<urlset") {
		t.Error("sitemap should be a urlset document")
	}
}
