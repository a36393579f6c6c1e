// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SiteConfig is the single row of the site_config table. The table's
// CHECK (id = 1) constraint enforces the singleton.
type SiteConfig struct {
	ID                     int64
	SiteName               string
	LogoID                 sql.NullInt64
	FaviconID              sql.NullInt64
	PrimaryColor           string
	SecondaryColor         string
	TextColor              string
	BackgroundColor        string
	FontFamily             string
	BaseFontSize           int64
	FooterText             string
	FooterBackgroundColor  string
	FooterTextColor        string
	DefaultMetaDescription string
	GoogleAnalyticsID      string
	FacebookURL            string
	TwitterURL             string
	LinkedinURL            string
	InstagramURL           string
	UpdatedAt              time.Time
}

const siteConfigColumns = `id, site_name, logo_id, favicon_id,
	primary_color, secondary_color, text_color, background_color,
	font_family, base_font_size, footer_text, footer_background_color,
	footer_text_color, default_meta_description, google_analytics_id,
	facebook_url, twitter_url, linkedin_url, instagram_url, updated_at`

func scanSiteConfig(row interface{ Scan(...any) error }) (SiteConfig, error) {
	var c SiteConfig
	err := row.Scan(&c.ID, &c.SiteName, &c.LogoID, &c.FaviconID,
		&c.PrimaryColor, &c.SecondaryColor, &c.TextColor, &c.BackgroundColor,
		&c.FontFamily, &c.BaseFontSize, &c.FooterText, &c.FooterBackgroundColor,
		&c.FooterTextColor, &c.DefaultMetaDescription, &c.GoogleAnalyticsID,
		&c.FacebookURL, &c.TwitterURL, &c.LinkedinURL, &c.InstagramURL,
		&c.UpdatedAt)
	return c, err
}

// GetSiteConfig returns the singleton config row, inserting defaults
// on first access.
func (q *Queries) GetSiteConfig(ctx context.Context) (SiteConfig, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteConfigColumns+` FROM site_config WHERE id = 1`)
	cfg, err := scanSiteConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		row = q.db.QueryRowContext(ctx, `
			INSERT INTO site_config (id) VALUES (1)
			ON CONFLICT (id) DO NOTHING
			RETURNING `+siteConfigColumns)
		cfg, err = scanSiteConfig(row)
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with another writer; the row exists now.
			row = q.db.QueryRowContext(ctx,
				`SELECT `+siteConfigColumns+` FROM site_config WHERE id = 1`)
			return scanSiteConfig(row)
		}
	}
	return cfg, err
}

type UpdateSiteConfigParams struct {
	SiteName               string
	LogoID                 sql.NullInt64
	FaviconID              sql.NullInt64
	PrimaryColor           string
	SecondaryColor         string
	TextColor              string
	BackgroundColor        string
	FontFamily             string
	BaseFontSize           int64
	FooterText             string
	FooterBackgroundColor  string
	FooterTextColor        string
	DefaultMetaDescription string
	GoogleAnalyticsID      string
	FacebookURL            string
	TwitterURL             string
	LinkedinURL            string
	InstagramURL           string
}

// UpdateSiteConfig upserts the singleton row. Writes always target
// id 1 so concurrent saves converge on a single row.
func (q *Queries) UpdateSiteConfig(ctx context.Context, arg UpdateSiteConfigParams) (SiteConfig, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO site_config (id, site_name, logo_id, favicon_id,
			primary_color, secondary_color, text_color, background_color,
			font_family, base_font_size, footer_text, footer_background_color,
			footer_text_color, default_meta_description, google_analytics_id,
			facebook_url, twitter_url, linkedin_url, instagram_url, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			site_name = excluded.site_name,
			logo_id = excluded.logo_id,
			favicon_id = excluded.favicon_id,
			primary_color = excluded.primary_color,
			secondary_color = excluded.secondary_color,
			text_color = excluded.text_color,
			background_color = excluded.background_color,
			font_family = excluded.font_family,
			base_font_size = excluded.base_font_size,
			footer_text = excluded.footer_text,
			footer_background_color = excluded.footer_background_color,
			footer_text_color = excluded.footer_text_color,
			default_meta_description = excluded.default_meta_description,
			google_analytics_id = excluded.google_analytics_id,
			facebook_url = excluded.facebook_url,
			twitter_url = excluded.twitter_url,
			linkedin_url = excluded.linkedin_url,
			instagram_url = excluded.instagram_url,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+siteConfigColumns,
		arg.SiteName, arg.LogoID, arg.FaviconID,
		arg.PrimaryColor, arg.SecondaryColor, arg.TextColor, arg.BackgroundColor,
		arg.FontFamily, arg.BaseFontSize, arg.FooterText, arg.FooterBackgroundColor,
		arg.FooterTextColor, arg.DefaultMetaDescription, arg.GoogleAnalyticsID,
		arg.FacebookURL, arg.TwitterURL, arg.LinkedinURL, arg.InstagramURL)
	return scanSiteConfig(row)
}
