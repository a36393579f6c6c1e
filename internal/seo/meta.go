// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
)

// Meta holds all SEO meta tag data for a page.
type Meta struct {
	Title         string // Page title (for <title> tag)
	Description   string // Meta description
	Canonical     string // Canonical URL
	OGTitle       string // Open Graph title
	OGDescription string // Open Graph description
	OGImage       string // Open Graph image URL (absolute)
	OGType        string // Open Graph type (website, article)
	OGSiteName    string // Open Graph site name
	OGURL         string // Open Graph URL
	TwitterCard   string // Twitter card type
}

// PageData contains page information for building meta tags.
type PageData struct {
	Title           string
	Slug            string
	MetaTitle       string
	MetaDescription string
	OGImageURL      string
	IsHome          bool
}

// SiteData contains site-wide settings for SEO.
type SiteData struct {
	SiteName           string
	SiteURL            string
	DefaultDescription string
	DefaultOGImage     string
}

// BuildMeta creates a Meta struct from page and site data with proper
// fallbacks: meta_title falls back to the page title plus site name,
// meta_description to the site-wide default.
func BuildMeta(page *PageData, site *SiteData) *Meta {
	meta := &Meta{
		OGType:      "website",
		TwitterCard: "summary_large_image",
		OGSiteName:  site.SiteName,
	}

	if page == nil {
		meta.Title = site.SiteName
		meta.OGTitle = site.SiteName
		meta.Description = site.DefaultDescription
		meta.OGDescription = site.DefaultDescription
		meta.Canonical = site.SiteURL
		meta.OGURL = site.SiteURL
		if site.DefaultOGImage != "" {
			meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
		}
		return meta
	}

	if page.MetaTitle != "" {
		meta.Title = page.MetaTitle
	} else if site.SiteName != "" {
		meta.Title = page.Title + " | " + site.SiteName
	} else {
		meta.Title = page.Title
	}
	meta.OGTitle = meta.Title

	if page.MetaDescription != "" {
		meta.Description = page.MetaDescription
	} else {
		meta.Description = site.DefaultDescription
	}
	meta.OGDescription = meta.Description

	switch {
	case page.OGImageURL != "":
		meta.OGImage = makeAbsoluteURL(page.OGImageURL, site.SiteURL)
	case site.DefaultOGImage != "":
		meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
	}

	if page.IsHome {
		meta.Canonical = site.SiteURL
	} else {
		meta.Canonical = strings.TrimSuffix(site.SiteURL, "/") + "/" + page.Slug
	}
	meta.OGURL = meta.Canonical

	return meta
}

// makeAbsoluteURL ensures a URL is absolute by prepending site URL if needed.
func makeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
