// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// Key prefixes within the shared backend.
const (
	pageKeyPrefix = "page:"
	sitemapKey    = "sitemap"
	robotsKey     = "robots"
)

// Manager fronts the cache backend with typed accessors for rendered
// pages and SEO output. Invalidation is deliberately coarse: any
// content change clears everything, which keeps correctness trivial
// for a small site.
type Manager struct {
	backend Cache
	pageTTL time.Duration
}

// NewManager creates a cache manager on the given backend.
func NewManager(backend Cache, pageTTL time.Duration) *Manager {
	if pageTTL == 0 {
		pageTTL = time.Hour
	}
	return &Manager{backend: backend, pageTTL: pageTTL}
}

// GetPage returns the cached rendered HTML for a slug. The homepage is
// cached under the empty slug.
func (m *Manager) GetPage(ctx context.Context, slug string) ([]byte, bool) {
	val, err := m.backend.Get(ctx, pageKeyPrefix+slug)
	if err != nil {
		return nil, false
	}
	return val, true
}

// SetPage caches the rendered HTML for a slug.
func (m *Manager) SetPage(ctx context.Context, slug string, html []byte) {
	if err := m.backend.Set(ctx, pageKeyPrefix+slug, html, m.pageTTL); err != nil {
		slog.Warn("caching page failed", "slug", slug, "error", err)
	}
}

// GetSitemap returns the cached sitemap XML.
func (m *Manager) GetSitemap(ctx context.Context) ([]byte, bool) {
	val, err := m.backend.Get(ctx, sitemapKey)
	if err != nil {
		return nil, false
	}
	return val, true
}

// SetSitemap caches the sitemap XML.
func (m *Manager) SetSitemap(ctx context.Context, xml []byte) {
	if err := m.backend.Set(ctx, sitemapKey, xml, m.pageTTL); err != nil {
		slog.Warn("caching sitemap failed", "error", err)
	}
}

// GetRobots returns the cached robots.txt body.
func (m *Manager) GetRobots(ctx context.Context) ([]byte, bool) {
	val, err := m.backend.Get(ctx, robotsKey)
	if err != nil {
		return nil, false
	}
	return val, true
}

// SetRobots caches the robots.txt body.
func (m *Manager) SetRobots(ctx context.Context, body []byte) {
	if err := m.backend.Set(ctx, robotsKey, body, m.pageTTL); err != nil {
		slog.Warn("caching robots.txt failed", "error", err)
	}
}

// ClearAll wipes the whole cache. Called after every content mutation.
func (m *Manager) ClearAll(ctx context.Context) {
	if err := m.backend.Clear(ctx); err != nil {
		slog.Warn("cache clear failed", "error", err)
		return
	}
	slog.Debug("cache cleared")
}

// Stats returns backend statistics when the backend provides them.
func (m *Manager) Stats() (Stats, bool) {
	if sp, ok := m.backend.(StatsProvider); ok {
		return sp.Stats(), true
	}
	return Stats{}, false
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
