// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package composer assembles renderable page views from stored content.
// It resolves the visible sections of a page, the visible blocks of each
// section, and turns every block into a typed view following per-type
// rules: blocks missing their required inputs are omitted rather than
// rendered broken.
package composer

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"
)

// Defaults applied when a block's config omits a value.
const (
	DefaultHeadingLevel = 2
	DefaultIcon         = "bi-star"
	DefaultCodeLanguage = "plaintext"
	DefaultSpacerHeight = 40
)

// MediaResolver maps a media ID to its public URL. It returns an empty
// string for unknown IDs.
type MediaResolver func(id int64) string

// BlockView is one rendered content block. Type drives template
// dispatch; only the fields relevant to the type are populated.
type BlockView struct {
	ID   int64
	Type string

	// rich_text, html, code
	HTML     template.HTML
	Language string
	Code     string

	// heading
	HeadingLevel int
	HeadingText  string

	// image
	ImageURL string
	ImageAlt string

	// gallery
	Images []GalleryImageView

	// video
	EmbedURL string

	// button
	LinkURL     string
	LinkText    string
	LinkTarget  string
	ButtonStyle string

	// icon_text
	Icon  string
	Title string
	Text  string

	// spacer
	Height int

	Style template.CSS
}

// GalleryImageView is one image inside a gallery block.
type GalleryImageView struct {
	URL     string
	Alt     string
	Caption string
}

// SectionView is one page section with its rendered blocks.
type SectionView struct {
	ID       int64
	Type     string
	Title    string
	Anchor   string
	CSSClass string
	Style    template.CSS
	Config   model.JSONMap
	Blocks   []BlockView
}

// PageView is a fully composed page ready for template rendering.
type PageView struct {
	ID              int64
	Title           string
	Slug            string
	MetaTitle       string
	MetaDescription string
	OgImageURL      string
	Sections        []SectionView
}

// Composer turns stored pages into renderable views.
type Composer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
	media     MediaResolver
}

// New creates a Composer. The resolver may be nil, in which case all
// media references resolve to empty URLs and image blocks are omitted.
func New(media MediaResolver) *Composer {
	if media == nil {
		media = func(int64) string { return "" }
	}
	return &Composer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		sanitizer: bluemonday.UGCPolicy(),
		media:     media,
	}
}

// Compose builds the view for a page from its sections, the blocks of
// each section keyed by section ID, and the gallery images keyed by
// block ID. Invisible sections must already be filtered out by the
// caller; blocks that fail their type's requirements are dropped here.
func (c *Composer) Compose(page store.Page, sections []store.Section,
	blocksBySection map[int64][]store.ContentBlock,
	galleriesByBlock map[int64][]store.GalleryImage) PageView {

	view := PageView{
		ID:              page.ID,
		Title:           page.Title,
		Slug:            page.Slug,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
	}
	if view.MetaTitle == "" {
		view.MetaTitle = page.Title
	}
	if page.OgImageID.Valid {
		view.OgImageURL = c.media(page.OgImageID.Int64)
	}

	for _, s := range sections {
		sv := SectionView{
			ID:       s.ID,
			Type:     s.Type,
			Title:    s.Title,
			Anchor:   s.Anchor,
			CSSClass: s.CSSClass,
			Style:    SectionStyle(s, c.media),
			Config:   s.Config,
		}
		for _, b := range blocksBySection[s.ID] {
			bv, ok := c.composeBlock(b, galleriesByBlock[b.ID])
			if !ok {
				continue
			}
			sv.Blocks = append(sv.Blocks, bv)
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

// composeBlock builds the view for one block. The second return value
// is false when the block must be omitted from output.
func (c *Composer) composeBlock(b store.ContentBlock, gallery []store.GalleryImage) (BlockView, bool) {
	v := BlockView{
		ID:    b.ID,
		Type:  b.Type,
		Style: BlockStyle(b),
	}

	switch b.Type {
	case model.BlockTypeRichText:
		v.HTML = c.renderMarkdown(b.Content)

	case model.BlockTypeHTML:
		// Raw pass-through: the editor is trusted with this type.
		v.HTML = template.HTML(b.HTMLContent) //nolint:gosec

	case model.BlockTypeHeading:
		level := b.Config.Int("heading_level", DefaultHeadingLevel)
		if level < 1 || level > 6 {
			level = DefaultHeadingLevel
		}
		v.HeadingLevel = level
		v.HeadingText = b.Title

	case model.BlockTypeImage:
		if !b.ImageID.Valid {
			return v, false
		}
		url := c.media(b.ImageID.Int64)
		if url == "" {
			return v, false
		}
		v.ImageURL = url
		v.ImageAlt = b.ImageAlt
		if v.ImageAlt == "" {
			v.ImageAlt = b.Title
		}

	case model.BlockTypeGallery:
		for _, g := range gallery {
			url := c.media(g.MediaID)
			if url == "" {
				continue
			}
			v.Images = append(v.Images, GalleryImageView{
				URL:     url,
				Alt:     g.Alt,
				Caption: g.Caption,
			})
		}
		if len(v.Images) == 0 {
			return v, false
		}

	case model.BlockTypeVideo:
		embed := VideoEmbedURL(b.LinkURL)
		if embed == "" {
			return v, false
		}
		v.EmbedURL = embed

	case model.BlockTypeButton:
		if b.LinkURL == "" || b.LinkText == "" {
			return v, false
		}
		v.LinkURL = b.LinkURL
		v.LinkText = b.LinkText
		v.LinkTarget = b.LinkTarget
		if v.LinkTarget == "" {
			v.LinkTarget = model.TargetSelf
		}
		v.ButtonStyle = b.ButtonStyle
		if v.ButtonStyle == "" {
			v.ButtonStyle = model.ButtonStylePrimary
		}

	case model.BlockTypeIconText:
		v.Icon = b.Config.String("icon", DefaultIcon)
		v.Title = b.Title
		v.Text = b.Content

	case model.BlockTypeCode:
		v.Language = b.Config.String("language", DefaultCodeLanguage)
		// Editors paste code into either field; HTMLContent wins.
		v.Code = b.HTMLContent
		if v.Code == "" {
			v.Code = b.Content
		}

	case model.BlockTypeSpacer:
		v.Height = b.Config.Int("height", DefaultSpacerHeight)

	case model.BlockTypeDivider:
		// Nothing beyond the type itself.

	default:
		// Unknown types render a placeholder naming the type so the
		// editor notices instead of silently losing content.
		v.HTML = template.HTML(template.HTMLEscapeString(
			fmt.Sprintf("[unsupported block type: %s]", b.Type)))
	}

	return v, true
}

// renderMarkdown converts Markdown to sanitized HTML. Conversion
// failures degrade to escaped source text rather than dropping content.
func (c *Composer) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(src), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(c.sanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec
}
