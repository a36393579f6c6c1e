// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"
)

// MenuItem represents a resolved menu item for frontend rendering.
// Items form a two-level tree: children never have children of their own.
type MenuItem struct {
	ID       int64
	Label    string
	URL      string
	LinkType string
	PageSlug string
	Position int
	Children []MenuItem
}

// MenuService loads the site navigation and resolves item URLs.
type MenuService struct {
	queries *store.Queries
}

// NewMenuService creates a new MenuService.
func NewMenuService(db *sql.DB) *MenuService {
	return &MenuService{queries: store.New(db)}
}

// PublicMenu returns the visible navigation tree. Items pointing at
// draft pages or at sections of draft pages are dropped.
func (s *MenuService) PublicMenu(ctx context.Context) ([]MenuItem, error) {
	items, err := s.queries.ListVisibleMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildTree(ctx, items, true), nil
}

// FullMenu returns every menu item regardless of visibility, for the
// admin console.
func (s *MenuService) FullMenu(ctx context.Context) ([]MenuItem, error) {
	items, err := s.queries.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildTree(ctx, items, false), nil
}

// buildTree converts the flat item list into a two-level tree with
// resolved URLs. When publishedOnly is set, items whose target page is
// not published are skipped.
func (s *MenuService) buildTree(ctx context.Context, items []store.MenuItem, publishedOnly bool) []MenuItem {
	resolved := make(map[int64]*MenuItem)
	var rootIDs []int64
	childIDs := make(map[int64][]int64) // parent ID -> child IDs

	for _, item := range items {
		url, slug, ok := s.resolveURL(ctx, item, publishedOnly)
		if !ok {
			continue
		}

		resolved[item.ID] = &MenuItem{
			ID:       item.ID,
			Label:    item.Label,
			URL:      url,
			LinkType: item.LinkType,
			PageSlug: slug,
			Position: int(item.Position),
			Children: []MenuItem{},
		}

		if item.ParentID.Valid {
			childIDs[item.ParentID.Int64] = append(childIDs[item.ParentID.Int64], item.ID)
		} else {
			rootIDs = append(rootIDs, item.ID)
		}
	}

	roots := make([]MenuItem, 0, len(rootIDs))
	for _, id := range rootIDs {
		root := *resolved[id]
		for _, childID := range childIDs[id] {
			root.Children = append(root.Children, *resolved[childID])
		}
		sort.Slice(root.Children, func(i, j int) bool {
			return root.Children[i].Position < root.Children[j].Position
		})
		roots = append(roots, root)
	}

	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Position < roots[j].Position
	})

	return roots
}

// resolveURL computes the target URL for one menu item. The third
// return value is false when the item cannot be resolved and must be
// dropped from output.
func (s *MenuService) resolveURL(ctx context.Context, item store.MenuItem, publishedOnly bool) (url, slug string, ok bool) {
	switch item.LinkType {
	case model.LinkTypePage:
		if !item.PageID.Valid {
			return "", "", false
		}
		page, err := s.queries.GetPageByID(ctx, item.PageID.Int64)
		if err != nil {
			return "", "", false
		}
		if publishedOnly && page.Status != model.PageStatusPublished {
			return "", "", false
		}
		return pageURL(page), page.Slug, true

	case model.LinkTypeSection:
		if !item.SectionID.Valid {
			return "", "", false
		}
		section, err := s.queries.GetSectionByID(ctx, item.SectionID.Int64)
		if err != nil {
			return "", "", false
		}
		page, err := s.queries.GetPageByID(ctx, section.PageID)
		if err != nil {
			return "", "", false
		}
		if publishedOnly && page.Status != model.PageStatusPublished {
			return "", "", false
		}
		return pageURL(page) + "#" + section.Anchor, page.Slug, true

	case model.LinkTypeExternal:
		if item.ExternalURL == "" {
			return "", "", false
		}
		return item.ExternalURL, "", true

	default:
		return "", "", false
	}
}

// pageURL returns the public path for a page. The homepage is served
// from the site root rather than its slug.
func pageURL(page store.Page) string {
	if page.IsHome {
		return "/"
	}
	return "/" + page.Slug
}
