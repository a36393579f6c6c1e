package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/testutil"
	"github.com/olegiv/pagecms-go/web"
)

// testDB creates a migrated test database that is cleaned up with the test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return db
}

// testSessionManager creates an in-memory session manager for testing.
func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer parses the embedded templates against the given session
// manager so flash messages work in tests.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return renderer
}

// testCacheManager creates a memory-backed cache manager.
func testCacheManager(t *testing.T) *cache.Manager {
	t.Helper()

	cm := cache.NewManager(cache.NewCache(cache.Config{
		Type:            "memory",
		DefaultTTL:      time.Minute,
		MaxSize:         100,
		CleanupInterval: time.Minute,
	}), time.Minute)
	t.Cleanup(func() { _ = cm.Close() })
	return cm
}

// requestWithSession loads an empty session into the request context so
// handlers can set flash messages and session values.
func requestWithSession(t *testing.T, sm *scs.SessionManager, r *http.Request) *http.Request {
	t.Helper()

	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return r.WithContext(ctx)
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithUser puts a signed-in user into the request context the
// way the LoadUser middleware does.
func requestWithUser(r *http.Request, user store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// createTestPage inserts a page at the next free position.
func createTestPage(t *testing.T, db *sql.DB, title, slug, status string) store.Page {
	t.Helper()

	q := store.New(db)
	pos, err := q.NextPagePosition(context.Background())
	if err != nil {
		t.Fatalf("NextPagePosition: %v", err)
	}
	page, err := q.CreatePage(context.Background(), store.CreatePageParams{
		Title:    title,
		Slug:     slug,
		Status:   status,
		Position: pos,
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	return page
}

// createTestSection inserts a section on the given page.
func createTestSection(t *testing.T, db *sql.DB, pageID int64, typ string) store.Section {
	t.Helper()

	q := store.New(db)
	ctx := context.Background()
	pos, err := q.CountSectionsByPage(ctx, pageID)
	if err != nil {
		t.Fatalf("CountSectionsByPage: %v", err)
	}
	section, err := q.CreateSection(ctx, store.CreateSectionParams{
		PageID:        pageID,
		Type:          typ,
		IsVisible:     true,
		PaddingTop:    60,
		PaddingBottom: 60,
		Config:        model.JSONMap{},
		Position:      pos,
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	return section
}
