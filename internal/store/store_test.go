package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/olegiv/pagecms-go/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "pagecms-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func createTestPage(t *testing.T, q *Queries, title, slug, status string) Page {
	t.Helper()
	pos, err := q.NextPagePosition(context.Background())
	if err != nil {
		t.Fatalf("NextPagePosition: %v", err)
	}
	p, err := q.CreatePage(context.Background(), CreatePageParams{
		Title:    title,
		Slug:     slug,
		Status:   status,
		Position: pos,
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	return p
}

func createTestSection(t *testing.T, q *Queries, pageID int64, typ string) Section {
	t.Helper()
	ctx := context.Background()
	pos, err := q.CountSectionsByPage(ctx, pageID)
	if err != nil {
		t.Fatalf("CountSectionsByPage: %v", err)
	}
	s, err := q.CreateSection(ctx, CreateSectionParams{
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
	return s
}

func createTestBlock(t *testing.T, q *Queries, sectionID int64, typ string) ContentBlock {
	t.Helper()
	ctx := context.Background()
	pos, err := q.CountBlocksBySection(ctx, sectionID)
	if err != nil {
		t.Fatalf("CountBlocksBySection: %v", err)
	}
	b, err := q.CreateBlock(ctx, CreateBlockParams{
		SectionID:  sectionID,
		Type:       typ,
		LinkTarget: "_self",
		Config:     model.JSONMap{},
		Position:   pos,
	})
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	return b
}

func TestCreateAndGetPage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "About Us", "about-us", "draft")
	if page.ID == 0 {
		t.Fatal("expected non-zero page ID")
	}
	if page.IsHome {
		t.Error("new page should not be home")
	}
	if page.Status != "draft" {
		t.Errorf("status = %q, want draft", page.Status)
	}

	got, err := q.GetPageBySlug(ctx, "about-us")
	if err != nil {
		t.Fatalf("GetPageBySlug: %v", err)
	}
	if got.ID != page.ID {
		t.Errorf("got page %d, want %d", got.ID, page.ID)
	}
}

func TestSlugUniqueness(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	createTestPage(t, q, "First", "duplicate", "draft")
	_, err := q.CreatePage(ctx, CreatePageParams{Title: "Second", Slug: "duplicate", Status: "draft"})
	if err == nil {
		t.Fatal("expected unique constraint violation for duplicate slug")
	}

	exists, err := q.SlugExists(ctx, "duplicate")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if !exists {
		t.Error("SlugExists = false, want true")
	}
}

func TestPublishedFiltering(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	createTestPage(t, q, "Draft", "draft-page", "draft")
	createTestPage(t, q, "Live", "live-page", "published")

	if _, err := q.GetPublishedPageBySlug(ctx, "draft-page"); err != sql.ErrNoRows {
		t.Errorf("draft page visible to public, err = %v", err)
	}
	if _, err := q.GetPublishedPageBySlug(ctx, "live-page"); err != nil {
		t.Errorf("published page not found: %v", err)
	}

	pages, err := q.ListPublishedPages(ctx)
	if err != nil {
		t.Fatalf("ListPublishedPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Slug != "live-page" {
		t.Errorf("ListPublishedPages = %+v, want only live-page", pages)
	}
}

func TestSetHomePageExclusive(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	p1 := createTestPage(t, q, "One", "one", "published")
	p2 := createTestPage(t, q, "Two", "two", "published")

	if err := SetHomePage(ctx, db, p1.ID); err != nil {
		t.Fatalf("SetHomePage(p1): %v", err)
	}
	if err := SetHomePage(ctx, db, p2.ID); err != nil {
		t.Fatalf("SetHomePage(p2): %v", err)
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE is_home = 1`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("pages with is_home = %d, want 1", count)
	}

	home, err := q.GetHomePage(ctx)
	if err != nil {
		t.Fatalf("GetHomePage: %v", err)
	}
	if home.ID != p2.ID {
		t.Errorf("home page = %d, want %d", home.ID, p2.ID)
	}
}

func TestSetHomePageMissing(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	if err := SetHomePage(context.Background(), db, 9999); err != sql.ErrNoRows {
		t.Errorf("SetHomePage(missing) = %v, want sql.ErrNoRows", err)
	}
}

func TestHomePageFallback(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	createTestPage(t, q, "Hidden", "hidden", "draft")
	first := createTestPage(t, q, "Fallback", "fallback", "published")
	createTestPage(t, q, "Later", "later", "published")

	if _, err := q.GetHomePage(ctx); err != sql.ErrNoRows {
		t.Fatalf("GetHomePage with no flag = %v, want sql.ErrNoRows", err)
	}

	got, err := q.GetFirstPublishedPage(ctx)
	if err != nil {
		t.Fatalf("GetFirstPublishedPage: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("fallback page = %d, want %d", got.ID, first.ID)
	}
}

func TestAppendPositions(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Home", "home", "published")
	for i := 0; i < 3; i++ {
		s := createTestSection(t, q, page.ID, model.SectionTypeText)
		if s.Position != int64(i) {
			t.Errorf("section %d position = %d, want %d", i, s.Position, i)
		}
	}

	sections, err := q.ListSectionsByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	for i, s := range sections {
		if s.Position != int64(i) {
			t.Errorf("listed position = %d at index %d", s.Position, i)
		}
	}
}

func TestReorderSections(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Home", "home", "published")
	s0 := createTestSection(t, q, page.ID, model.SectionTypeHero)
	s1 := createTestSection(t, q, page.ID, model.SectionTypeText)
	s2 := createTestSection(t, q, page.ID, model.SectionTypeFAQ)

	err := ReorderSections(ctx, db, page.ID, []ReorderPair{
		{ID: s2.ID, Position: 0},
		{ID: s0.ID, Position: 1},
		{ID: s1.ID, Position: 2},
	})
	if err != nil {
		t.Fatalf("ReorderSections: %v", err)
	}

	sections, err := q.ListSectionsByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	wantOrder := []int64{s2.ID, s0.ID, s1.ID}
	for i, s := range sections {
		if s.ID != wantOrder[i] {
			t.Errorf("position %d has section %d, want %d", i, s.ID, wantOrder[i])
		}
	}
}

func TestReorderRejectsForeignSibling(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	pageA := createTestPage(t, q, "A", "a", "published")
	pageB := createTestPage(t, q, "B", "b", "published")
	a0 := createTestSection(t, q, pageA.ID, model.SectionTypeText)
	a1 := createTestSection(t, q, pageA.ID, model.SectionTypeText)
	b0 := createTestSection(t, q, pageB.ID, model.SectionTypeText)

	err := ReorderSections(ctx, db, pageA.ID, []ReorderPair{
		{ID: a1.ID, Position: 0},
		{ID: b0.ID, Position: 1}, // belongs to pageB
		{ID: a0.ID, Position: 2},
	})
	if !errors.Is(err, ErrNotSibling) {
		t.Fatalf("err = %v, want ErrNotSibling", err)
	}

	// The whole batch must roll back, so a1 keeps its old position.
	sections, err := q.ListSectionsByPage(ctx, pageA.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if sections[0].ID != a0.ID || sections[1].ID != a1.ID {
		t.Errorf("order changed after failed reorder: %d, %d", sections[0].ID, sections[1].ID)
	}
}

func TestReorderBlocksUnknownID(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Home", "home", "published")
	section := createTestSection(t, q, page.ID, model.SectionTypeText)
	block := createTestBlock(t, q, section.ID, model.BlockTypeRichText)

	err := ReorderBlocks(ctx, db, section.ID, []ReorderPair{
		{ID: block.ID, Position: 1},
		{ID: 424242, Position: 0},
	})
	if !errors.Is(err, ErrNotSibling) {
		t.Fatalf("err = %v, want ErrNotSibling", err)
	}

	got, err := q.GetBlockByID(ctx, block.ID)
	if err != nil {
		t.Fatalf("GetBlockByID: %v", err)
	}
	if got.Position != 0 {
		t.Errorf("block position = %d after rollback, want 0", got.Position)
	}
}

func TestCascadeDelete(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Home", "home", "published")
	section := createTestSection(t, q, page.ID, model.SectionTypeGallery)
	block := createTestBlock(t, q, section.ID, model.BlockTypeGallery)

	media, err := q.CreateMedia(ctx, CreateMediaParams{
		UUID:             "11111111-1111-1111-1111-111111111111",
		Filename:         "photo.jpg",
		OriginalFilename: "photo.jpg",
		MediaType:        "image",
		MimeType:         "image/jpeg",
		Size:             1024,
	})
	if err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}
	if _, err := q.CreateGalleryImage(ctx, CreateGalleryImageParams{
		BlockID: block.ID,
		MediaID: media.ID,
	}); err != nil {
		t.Fatalf("CreateGalleryImage: %v", err)
	}

	if err := q.DeletePage(ctx, page.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}

	for _, tc := range []struct {
		table string
		want  int64
	}{
		{"sections", 0},
		{"content_blocks", 0},
		{"gallery_images", 0},
		{"media", 1}, // media survives, only the link is removed
	} {
		var n int64
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tc.table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", tc.table, err)
		}
		if n != tc.want {
			t.Errorf("%s count = %d after cascade, want %d", tc.table, n, tc.want)
		}
	}
}

func TestMenuItemCascade(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Docs", "docs", "published")
	parent, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
		Label:     "Docs",
		LinkType:  model.LinkTypePage,
		PageID:    sql.NullInt64{Int64: page.ID, Valid: true},
		IsVisible: true,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	if _, err := q.CreateMenuItem(ctx, CreateMenuItemParams{
		Label:       "External",
		LinkType:    model.LinkTypeExternal,
		ParentID:    sql.NullInt64{Int64: parent.ID, Valid: true},
		ExternalURL: "https://example.com",
		IsVisible:   true,
	}); err != nil {
		t.Fatalf("CreateMenuItem child: %v", err)
	}

	// Deleting the page removes the page-linked item and its child.
	if err := q.DeletePage(ctx, page.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	items, err := q.ListMenuItems(ctx)
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("menu items after cascade = %d, want 0", len(items))
	}
}

func TestSiteConfigSingleton(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	cfg, err := q.GetSiteConfig(ctx)
	if err != nil {
		t.Fatalf("GetSiteConfig: %v", err)
	}
	if cfg.ID != 1 {
		t.Errorf("config ID = %d, want 1", cfg.ID)
	}
	if cfg.SiteName != "My Site" {
		t.Errorf("default site name = %q", cfg.SiteName)
	}

	updated, err := q.UpdateSiteConfig(ctx, UpdateSiteConfigParams{
		SiteName:     "PageCMS Demo",
		PrimaryColor: "#ff0000",
		BaseFontSize: 18,
	})
	if err != nil {
		t.Fatalf("UpdateSiteConfig: %v", err)
	}
	if updated.SiteName != "PageCMS Demo" {
		t.Errorf("site name = %q after update", updated.SiteName)
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM site_config`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("site_config rows = %d, want 1", count)
	}

	// Direct inserts at other IDs violate the CHECK constraint.
	if _, err := db.ExecContext(ctx, `INSERT INTO site_config (id) VALUES (2)`); err == nil {
		t.Error("expected CHECK violation inserting second config row")
	}
}

func TestSectionVisibilityFiltering(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Home", "home", "published")
	visible := createTestSection(t, q, page.ID, model.SectionTypeText)
	hidden := createTestSection(t, q, page.ID, model.SectionTypeCTA)
	if err := q.UpdateSectionVisibility(ctx, hidden.ID, false); err != nil {
		t.Fatalf("UpdateSectionVisibility: %v", err)
	}

	all, err := q.ListSectionsByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListSectionsByPage: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all sections = %d, want 2", len(all))
	}

	public, err := q.ListVisibleSectionsByPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListVisibleSectionsByPage: %v", err)
	}
	if len(public) != 1 || public[0].ID != visible.ID {
		t.Errorf("visible sections = %+v, want only %d", public, visible.ID)
	}
}

func TestSectionConfigRoundTrip(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	page := createTestPage(t, q, "Home", "home", "published")
	s, err := q.CreateSection(ctx, CreateSectionParams{
		PageID:    page.ID,
		Type:      model.SectionTypeGallery,
		IsVisible: true,
		Config:    model.JSONMap{"columns": 4, "lightbox": true},
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}

	got, err := q.GetSectionByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSectionByID: %v", err)
	}
	if got.Config.Int("columns", 0) != 4 {
		t.Errorf("columns = %d, want 4", got.Config.Int("columns", 0))
	}
	if got.Config["lightbox"] != true {
		t.Errorf("lightbox = %v, want true", got.Config["lightbox"])
	}
}

func TestAPIKeyLookup(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "admin@test.local",
		PasswordHash: "x",
		Role:         "admin",
		Name:         "Admin",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	key, err := q.CreateAPIKey(ctx, CreateAPIKeyParams{
		Name:      "ci",
		KeyHash:   "deadbeef",
		KeyPrefix: "pk_test_",
		CreatedBy: user.ID,
	})
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	got, err := q.GetAPIKeyByHash(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("GetAPIKeyByHash: %v", err)
	}
	if got.ID != key.ID {
		t.Errorf("key ID = %d, want %d", got.ID, key.ID)
	}

	if err := q.SetAPIKeyActive(ctx, key.ID, false); err != nil {
		t.Fatalf("SetAPIKeyActive: %v", err)
	}
	if _, err := q.GetAPIKeyByHash(ctx, "deadbeef"); err != sql.ErrNoRows {
		t.Errorf("inactive key lookup = %v, want sql.ErrNoRows", err)
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Idempotent.
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("Seed again: %v", err)
	}

	q := New(db)
	user, err := q.GetUserByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("seeded role = %q, want admin", user.Role)
	}
	n, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
}
