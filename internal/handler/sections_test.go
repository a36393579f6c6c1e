package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/testutil"
)

func newTestSectionsHandler(t *testing.T, db *sql.DB) *SectionsHandler {
	t.Helper()
	sm := testSessionManager()
	return NewSectionsHandler(db, testRenderer(t, sm), sm, nil)
}

func TestSectionsHandler_Create(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)
	admin := testutil.SeedAdmin(t, db)
	page := createTestPage(t, db, "Page", "page", model.PageStatusDraft)

	form := url.Values{
		"type":       {model.SectionTypeHero},
		"title":      {"Welcome"},
		"is_visible": {"1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/pages/1/sections", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	req = requestWithSession(t, h.sessionManager, req)
	req = requestWithUser(req, admin)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(page.ID)})

	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}

	sections, err := store.New(db).ListSectionsByPage(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("section count = %d; want 1", len(sections))
	}
	if sections[0].Type != model.SectionTypeHero {
		t.Errorf("type = %q", sections[0].Type)
	}
}

func TestSectionsHandler_Create_DerivesAnchorFromTitle(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)
	admin := testutil.SeedAdmin(t, db)
	page := createTestPage(t, db, "Page", "page", model.PageStatusDraft)

	form := url.Values{
		"type":       {model.SectionTypeText},
		"title":      {"Our Services"},
		"is_visible": {"1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/pages/1/sections", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	req = requestWithSession(t, h.sessionManager, req)
	req = requestWithUser(req, admin)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(page.ID)})

	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}

	sections, err := store.New(db).ListSectionsByPage(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("section count = %d; want 1", len(sections))
	}
	if sections[0].Anchor != "our-services" {
		t.Errorf("anchor = %q; want %q derived from the title", sections[0].Anchor, "our-services")
	}
}

func TestSectionsHandler_Create_ExplicitAnchorKept(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)
	admin := testutil.SeedAdmin(t, db)
	page := createTestPage(t, db, "Page", "page", model.PageStatusDraft)

	form := url.Values{
		"type":   {model.SectionTypeText},
		"title":  {"Our Services"},
		"anchor": {"services"},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/pages/1/sections", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	req = requestWithSession(t, h.sessionManager, req)
	req = requestWithUser(req, admin)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(page.ID)})

	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}

	sections, err := store.New(db).ListSectionsByPage(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(sections) != 1 || sections[0].Anchor != "services" {
		t.Errorf("anchor = %q; an explicit anchor must not be overwritten", sections[0].Anchor)
	}
}

func TestSectionsHandler_Create_InvalidType(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)
	admin := testutil.SeedAdmin(t, db)
	page := createTestPage(t, db, "Page", "page", model.PageStatusDraft)

	form := url.Values{"type": {"sidebar"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/pages/1/sections", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	req = requestWithSession(t, h.sessionManager, req)
	req = requestWithUser(req, admin)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(page.ID)})

	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want redirect", w.Code)
	}

	sections, _ := store.New(db).ListSectionsByPage(context.Background(), page.ID)
	if len(sections) != 0 {
		t.Errorf("section count = %d; want 0 after invalid type", len(sections))
	}
}

func postReorder(t *testing.T, h *SectionsHandler, pageID int64, ids []int64) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(reorderRequest{IDs: ids})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/pages/1/sections/reorder", bytes.NewReader(body))
	req.Header.Set(HeaderContentType, "application/json")
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(pageID)})

	w := httptest.NewRecorder()
	h.Reorder(w, req)
	return w
}

func TestSectionsHandler_Reorder(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)
	page := createTestPage(t, db, "Page", "page", model.PageStatusDraft)

	s1 := createTestSection(t, db, page.ID, model.SectionTypeHero)
	s2 := createTestSection(t, db, page.ID, model.SectionTypeText)
	s3 := createTestSection(t, db, page.ID, model.SectionTypeCTA)

	w := postReorder(t, h, page.ID, []int64{s3.ID, s1.ID, s2.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	sections, err := store.New(db).ListSectionsByPage(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	want := []int64{s3.ID, s1.ID, s2.ID}
	for i, s := range sections {
		if s.ID != want[i] {
			t.Errorf("position %d = section %d; want %d", i, s.ID, want[i])
		}
	}
}

func TestSectionsHandler_Reorder_ForeignSectionRejected(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)

	pageA := createTestPage(t, db, "A", "a", model.PageStatusDraft)
	pageB := createTestPage(t, db, "B", "b", model.PageStatusDraft)

	own := createTestSection(t, db, pageA.ID, model.SectionTypeHero)
	foreign := createTestSection(t, db, pageB.ID, model.SectionTypeHero)

	w := postReorder(t, h, pageA.ID, []int64{foreign.ID, own.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}

	// The batch must not have been partially applied.
	sections, _ := store.New(db).ListSectionsByPage(context.Background(), pageA.ID)
	if len(sections) != 1 || sections[0].ID != own.ID {
		t.Error("own section should be untouched")
	}
}

func TestSectionsHandler_Reorder_UnknownPage(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)

	w := postReorder(t, h, 999, []int64{1})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", w.Code, http.StatusNotFound)
	}
}

func TestSectionsHandler_ToggleVisibility(t *testing.T) {
	db := testDB(t)
	h := newTestSectionsHandler(t, db)
	admin := testutil.SeedAdmin(t, db)
	page := createTestPage(t, db, "Page", "page", model.PageStatusDraft)
	section := createTestSection(t, db, page.ID, model.SectionTypeText)

	req := httptest.NewRequest(http.MethodPost, "/admin/sections/1/visibility", nil)
	req = requestWithSession(t, h.sessionManager, req)
	req = requestWithUser(req, admin)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(section.ID)})

	w := httptest.NewRecorder()
	h.ToggleVisibility(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}

	got, err := store.New(db).GetSectionByID(context.Background(), section.ID)
	if err != nil {
		t.Fatalf("GetSectionByID: %v", err)
	}
	if got.IsVisible {
		t.Error("section should be hidden after the toggle")
	}
}
