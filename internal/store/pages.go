// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Page is a row in the pages table.
type Page struct {
	ID              int64
	Title           string
	Slug            string
	Status          string
	IsHome          bool
	MetaTitle       string
	MetaDescription string
	OgImageID       sql.NullInt64
	Position        int64
	CreatedBy       sql.NullInt64
	UpdatedBy       sql.NullInt64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const pageColumns = `id, title, slug, status, is_home, meta_title, meta_description,
	og_image_id, position, created_by, updated_by, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.IsHome,
		&p.MetaTitle, &p.MetaDescription, &p.OgImageID, &p.Position,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) collectPages(rows *sql.Rows) ([]Page, error) {
	defer rows.Close()
	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

type CreatePageParams struct {
	Title           string
	Slug            string
	Status          string
	MetaTitle       string
	MetaDescription string
	OgImageID       sql.NullInt64
	Position        int64
	CreatedBy       sql.NullInt64
}

func (q *Queries) CreatePage(ctx context.Context, arg CreatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO pages (title, slug, status, meta_title, meta_description,
			og_image_id, position, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+pageColumns,
		arg.Title, arg.Slug, arg.Status, arg.MetaTitle, arg.MetaDescription,
		arg.OgImageID, arg.Position, arg.CreatedBy, arg.CreatedBy)
	return scanPage(row)
}

func (q *Queries) GetPageByID(ctx context.Context, id int64) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug)
	return scanPage(row)
}

// GetPublishedPageBySlug returns the page only when it is published.
// Draft pages are invisible to the public site.
func (q *Queries) GetPublishedPageBySlug(ctx context.Context, slug string) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE slug = ? AND status = 'published'`, slug)
	return scanPage(row)
}

// GetHomePage returns the page flagged as home, if any.
func (q *Queries) GetHomePage(ctx context.Context) (Page, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE is_home = 1 AND status = 'published' LIMIT 1`)
	return scanPage(row)
}

// GetFirstPublishedPage is the homepage fallback when no page carries
// the home flag.
func (q *Queries) GetFirstPublishedPage(ctx context.Context) (Page, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE status = 'published'
		ORDER BY position, id LIMIT 1`)
	return scanPage(row)
}

func (q *Queries) ListPages(ctx context.Context) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	return q.collectPages(rows)
}

func (q *Queries) ListPagesByStatus(ctx context.Context, status string) ([]Page, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE status = ? ORDER BY position, id`, status)
	if err != nil {
		return nil, err
	}
	return q.collectPages(rows)
}

func (q *Queries) ListPublishedPages(ctx context.Context) ([]Page, error) {
	return q.ListPagesByStatus(ctx, "published")
}

func (q *Queries) CountPages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}

type UpdatePageParams struct {
	ID              int64
	Title           string
	Slug            string
	Status          string
	MetaTitle       string
	MetaDescription string
	OgImageID       sql.NullInt64
	UpdatedBy       sql.NullInt64
}

func (q *Queries) UpdatePage(ctx context.Context, arg UpdatePageParams) (Page, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE pages
		SET title = ?, slug = ?, status = ?, meta_title = ?, meta_description = ?,
			og_image_id = ?, updated_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+pageColumns,
		arg.Title, arg.Slug, arg.Status, arg.MetaTitle, arg.MetaDescription,
		arg.OgImageID, arg.UpdatedBy, arg.ID)
	return scanPage(row)
}

func (q *Queries) UpdatePageStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE pages SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	return err
}

func (q *Queries) DeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	return err
}

func (q *Queries) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pages WHERE slug = ?)`, slug).Scan(&exists)
	return exists, err
}

type SlugExistsExcludingParams struct {
	Slug string
	ID   int64
}

func (q *Queries) SlugExistsExcluding(ctx context.Context, arg SlugExistsExcludingParams) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pages WHERE slug = ? AND id != ?)`,
		arg.Slug, arg.ID).Scan(&exists)
	return exists, err
}

// NextPagePosition returns the position for a newly appended page.
func (q *Queries) NextPagePosition(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}
