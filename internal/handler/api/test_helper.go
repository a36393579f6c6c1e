// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/testutil"
)

// testHandler creates an API handler backed by a migrated temp database.
func testHandler(t *testing.T) (*Handler, *sql.DB) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	media := service.NewMediaService(db, t.TempDir())
	h := NewHandler(db, service.NewPageService(db, media), service.NewMenuService(db), media)
	return h, db
}

// privilegedRequest attaches an API key to the request context, as the
// API key middleware would after a successful Bearer auth.
func privilegedRequest(r *http.Request) *http.Request {
	key := store.APIKey{
		ID:        1,
		Name:      "test key",
		KeyPrefix: "pk_test",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	ctx := context.WithValue(r.Context(), middleware.ContextKeyAPIKey, key)
	return r.WithContext(ctx)
}

// requestWithSlug sets the {slug} route parameter on the request.
func requestWithSlug(r *http.Request, slug string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", slug)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func seedPage(t *testing.T, db *sql.DB, title, slug, status string) store.Page {
	t.Helper()

	q := store.New(db)
	ctx := context.Background()

	pos, err := q.NextPagePosition(ctx)
	if err != nil {
		t.Fatalf("NextPagePosition: %v", err)
	}
	page, err := q.CreatePage(ctx, store.CreatePageParams{
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

func seedSection(t *testing.T, db *sql.DB, pageID int64, visible bool) store.Section {
	t.Helper()

	q := store.New(db)
	section, err := q.CreateSection(context.Background(), store.CreateSectionParams{
		PageID:        pageID,
		Type:          model.SectionTypeHero,
		Title:         "Welcome",
		IsVisible:     visible,
		PaddingTop:    model.DefaultSectionPadding,
		PaddingBottom: model.DefaultSectionPadding,
		Config:        model.JSONMap{},
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	return section
}

func seedHeadingBlock(t *testing.T, db *sql.DB, sectionID int64, text string) store.ContentBlock {
	t.Helper()

	q := store.New(db)
	block, err := q.CreateBlock(context.Background(), store.CreateBlockParams{
		SectionID: sectionID,
		Type:      model.BlockTypeHeading,
		Title:     text,
		Config:    model.JSONMap{},
	})
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	return block
}
