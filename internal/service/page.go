// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/olegiv/pagecms-go/internal/composer"
	"github.com/olegiv/pagecms-go/internal/store"
)

// ErrHomePageDelete is returned when deleting the homepage is attempted.
var ErrHomePageDelete = errors.New("the homepage cannot be deleted")

// PageService composes stored pages into renderable views.
type PageService struct {
	db      *sql.DB
	queries *store.Queries
	media   *MediaService
}

// NewPageService creates a new PageService.
func NewPageService(db *sql.DB, media *MediaService) *PageService {
	return &PageService{
		db:      db,
		queries: store.New(db),
		media:   media,
	}
}

// ComposePage loads a page's sections, blocks and gallery images and
// runs them through the composer. With includeHidden set, invisible
// sections are kept (editor preview); otherwise they are filtered out.
func (s *PageService) ComposePage(ctx context.Context, page store.Page, includeHidden bool) (composer.PageView, error) {
	var (
		sections []store.Section
		err      error
	)
	if includeHidden {
		sections, err = s.queries.ListSectionsByPage(ctx, page.ID)
	} else {
		sections, err = s.queries.ListVisibleSectionsByPage(ctx, page.ID)
	}
	if err != nil {
		return composer.PageView{}, err
	}

	blocks, err := s.queries.ListBlocksByPage(ctx, page.ID)
	if err != nil {
		return composer.PageView{}, err
	}

	blocksBySection := make(map[int64][]store.ContentBlock)
	for _, b := range blocks {
		blocksBySection[b.SectionID] = append(blocksBySection[b.SectionID], b)
	}

	galleriesByBlock := make(map[int64][]store.GalleryImage)
	for _, b := range blocks {
		images, err := s.queries.ListGalleryImagesByBlock(ctx, b.ID)
		if err != nil {
			return composer.PageView{}, err
		}
		if len(images) > 0 {
			galleriesByBlock[b.ID] = images
		}
	}

	c := composer.New(s.media.ResolveURL(ctx))
	return c.Compose(page, sections, blocksBySection, galleriesByBlock), nil
}

// PublishedBySlug composes the published page at the given slug.
// Returns sql.ErrNoRows for drafts and unknown slugs.
func (s *PageService) PublishedBySlug(ctx context.Context, slug string) (composer.PageView, error) {
	page, err := s.queries.GetPublishedPageBySlug(ctx, slug)
	if err != nil {
		return composer.PageView{}, err
	}
	return s.ComposePage(ctx, page, false)
}

// Homepage composes the homepage: the published page flagged is_home,
// falling back to the first published page by position. Returns
// sql.ErrNoRows when no published page exists.
func (s *PageService) Homepage(ctx context.Context) (composer.PageView, error) {
	page, err := s.queries.GetHomePage(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		page, err = s.queries.GetFirstPublishedPage(ctx)
	}
	if err != nil {
		return composer.PageView{}, err
	}
	return s.ComposePage(ctx, page, false)
}

// DeletePage removes a page after checking the homepage guard.
func (s *PageService) DeletePage(ctx context.Context, id int64) error {
	page, err := s.queries.GetPageByID(ctx, id)
	if err != nil {
		return err
	}
	if page.IsHome {
		return ErrHomePageDelete
	}
	return s.queries.DeletePage(ctx, id)
}
