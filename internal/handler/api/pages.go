// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pagecms-go/internal/composer"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// PageSummary is a page in list responses, without composed content.
type PageSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Status    string `json:"status,omitempty"`
	IsHome    bool   `json:"is_home"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PageDetail is a fully composed page.
type PageDetail struct {
	PageSummary
	MetaTitle       string            `json:"meta_title,omitempty"`
	MetaDescription string            `json:"meta_description,omitempty"`
	OgImageURL      string            `json:"og_image_url,omitempty"`
	Sections        []SectionResponse `json:"sections"`
}

// SectionResponse is one composed section.
type SectionResponse struct {
	ID       int64           `json:"id"`
	Type     string          `json:"type"`
	Title    string          `json:"title,omitempty"`
	Anchor   string          `json:"anchor,omitempty"`
	CSSClass string          `json:"css_class,omitempty"`
	Config   model.JSONMap   `json:"config,omitempty"`
	Blocks   []BlockResponse `json:"blocks"`
}

// BlockResponse is one composed block. Only fields relevant to the
// block type are populated.
type BlockResponse struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`

	HTML     string `json:"html,omitempty"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`

	HeadingLevel int    `json:"heading_level,omitempty"`
	HeadingText  string `json:"heading_text,omitempty"`

	ImageURL string `json:"image_url,omitempty"`
	ImageAlt string `json:"image_alt,omitempty"`

	Images []GalleryImageResponse `json:"images,omitempty"`

	EmbedURL string `json:"embed_url,omitempty"`

	LinkURL     string `json:"link_url,omitempty"`
	LinkText    string `json:"link_text,omitempty"`
	LinkTarget  string `json:"link_target,omitempty"`
	ButtonStyle string `json:"button_style,omitempty"`

	Icon  string `json:"icon,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`

	Height int `json:"height,omitempty"`
}

// GalleryImageResponse is one gallery image.
type GalleryImageResponse struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func pageSummary(p store.Page, privileged bool) PageSummary {
	s := PageSummary{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		IsHome:    p.IsHome,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	// Status is only meaningful to privileged clients; anonymous
	// clients never see drafts.
	if privileged {
		s.Status = p.Status
	}
	return s
}

func pageDetail(p store.Page, view composer.PageView, privileged bool) PageDetail {
	sections := make([]SectionResponse, 0, len(view.Sections))
	for _, sv := range view.Sections {
		blocks := make([]BlockResponse, 0, len(sv.Blocks))
		for _, bv := range sv.Blocks {
			blocks = append(blocks, blockResponse(bv))
		}
		sections = append(sections, SectionResponse{
			ID:       sv.ID,
			Type:     sv.Type,
			Title:    sv.Title,
			Anchor:   sv.Anchor,
			CSSClass: sv.CSSClass,
			Config:   sv.Config,
			Blocks:   blocks,
		})
	}
	return PageDetail{
		PageSummary:     pageSummary(p, privileged),
		MetaTitle:       view.MetaTitle,
		MetaDescription: view.MetaDescription,
		OgImageURL:      view.OgImageURL,
		Sections:        sections,
	}
}

func blockResponse(bv composer.BlockView) BlockResponse {
	resp := BlockResponse{
		ID:           bv.ID,
		Type:         bv.Type,
		HTML:         string(bv.HTML),
		Language:     bv.Language,
		Code:         bv.Code,
		HeadingLevel: bv.HeadingLevel,
		HeadingText:  bv.HeadingText,
		ImageURL:     bv.ImageURL,
		ImageAlt:     bv.ImageAlt,
		EmbedURL:     bv.EmbedURL,
		LinkURL:      bv.LinkURL,
		LinkText:     bv.LinkText,
		LinkTarget:   bv.LinkTarget,
		ButtonStyle:  bv.ButtonStyle,
		Icon:         bv.Icon,
		Title:        bv.Title,
		Text:         bv.Text,
		Height:       bv.Height,
	}
	for _, img := range bv.Images {
		resp.Images = append(resp.Images, GalleryImageResponse{
			URL:     img.URL,
			Alt:     img.Alt,
			Caption: img.Caption,
		})
	}
	return resp
}

// parsePagination parses page and per_page query parameters.
func parsePagination(r *http.Request) (page, perPage int) {
	page = 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	perPage = defaultPerPage
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && pp > 0 {
		perPage = min(pp, maxPerPage)
	}
	return page, perPage
}

// ListPages handles GET /api/v1/pages. Anonymous clients see published
// pages only; API key clients see all pages including drafts.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	privileged := middleware.HasAPIKey(r)

	var (
		pages []store.Page
		err   error
	)
	if privileged {
		pages, err = h.queries.ListPages(r.Context())
	} else {
		pages, err = h.queries.ListPagesByStatus(r.Context(), model.PageStatusPublished)
	}
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	page, perPage := parsePagination(r)
	total := len(pages)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := min(start+perPage, total)

	summaries := make([]PageSummary, 0, end-start)
	for _, p := range pages[start:end] {
		summaries = append(summaries, pageSummary(p, privileged))
	}

	WriteSuccessMeta(w, summaries, &Meta{
		Total:   int64(total),
		Page:    page,
		PerPage: perPage,
		Pages:   totalPages,
	})
}

// GetPage handles GET /api/v1/pages/{slug} - returns a composed page.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	privileged := middleware.HasAPIKey(r)

	var (
		page store.Page
		err  error
	)
	if privileged {
		page, err = h.queries.GetPageBySlug(r.Context(), slug)
	} else {
		page, err = h.queries.GetPublishedPageBySlug(r.Context(), slug)
	}
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "Page not found")
		return
	}
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	view, err := h.pageService.ComposePage(r.Context(), page, privileged)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	WriteSuccess(w, pageDetail(page, view, privileged))
}

// GetHomepage handles GET /api/v1/pages/home - returns the composed
// homepage.
func (h *Handler) GetHomepage(w http.ResponseWriter, r *http.Request) {
	privileged := middleware.HasAPIKey(r)

	page, err := h.queries.GetHomePage(r.Context())
	if errors.Is(err, sql.ErrNoRows) {
		page, err = h.queries.GetFirstPublishedPage(r.Context())
	}
	if errors.Is(err, sql.ErrNoRows) {
		WriteNotFound(w, "No homepage configured")
		return
	}
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	view, err := h.pageService.ComposePage(r.Context(), page, privileged)
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	WriteSuccess(w, pageDetail(page, view, privileged))
}
