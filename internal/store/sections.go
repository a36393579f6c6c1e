// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/pagecms-go/internal/model"
)

// Section is a row in the sections table.
type Section struct {
	ID                int64
	PageID            int64
	Type              string
	Title             string
	Anchor            string
	IsVisible         bool
	BackgroundColor   string
	BackgroundImageID sql.NullInt64
	TextColor         string
	PaddingTop        int64
	PaddingBottom     int64
	CSSClass          string
	Config            model.JSONMap
	Position          int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const sectionColumns = `id, page_id, type, title, anchor, is_visible,
	background_color, background_image_id, text_color, padding_top, padding_bottom,
	css_class, config, position, created_at, updated_at`

func scanSection(row interface{ Scan(...any) error }) (Section, error) {
	var s Section
	err := row.Scan(&s.ID, &s.PageID, &s.Type, &s.Title, &s.Anchor, &s.IsVisible,
		&s.BackgroundColor, &s.BackgroundImageID, &s.TextColor,
		&s.PaddingTop, &s.PaddingBottom, &s.CSSClass, &s.Config,
		&s.Position, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func collectSections(rows *sql.Rows) ([]Section, error) {
	defer rows.Close()
	var sections []Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

type CreateSectionParams struct {
	PageID            int64
	Type              string
	Title             string
	Anchor            string
	IsVisible         bool
	BackgroundColor   string
	BackgroundImageID sql.NullInt64
	TextColor         string
	PaddingTop        int64
	PaddingBottom     int64
	CSSClass          string
	Config            model.JSONMap
	Position          int64
}

func (q *Queries) CreateSection(ctx context.Context, arg CreateSectionParams) (Section, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO sections (page_id, type, title, anchor, is_visible,
			background_color, background_image_id, text_color,
			padding_top, padding_bottom, css_class, config, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+sectionColumns,
		arg.PageID, arg.Type, arg.Title, arg.Anchor, arg.IsVisible,
		arg.BackgroundColor, arg.BackgroundImageID, arg.TextColor,
		arg.PaddingTop, arg.PaddingBottom, arg.CSSClass, arg.Config, arg.Position)
	return scanSection(row)
}

func (q *Queries) GetSectionByID(ctx context.Context, id int64) (Section, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	return scanSection(row)
}

func (q *Queries) ListSectionsByPage(ctx context.Context, pageID int64) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE page_id = ? ORDER BY position, id`,
		pageID)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

// ListVisibleSectionsByPage returns only sections shown on the public site.
func (q *Queries) ListVisibleSectionsByPage(ctx context.Context, pageID int64) ([]Section, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+sectionColumns+` FROM sections
		WHERE page_id = ? AND is_visible = 1
		ORDER BY position, id`, pageID)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

func (q *Queries) CountSectionsByPage(ctx context.Context, pageID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sections WHERE page_id = ?`, pageID).Scan(&n)
	return n, err
}

type UpdateSectionParams struct {
	ID                int64
	Type              string
	Title             string
	Anchor            string
	IsVisible         bool
	BackgroundColor   string
	BackgroundImageID sql.NullInt64
	TextColor         string
	PaddingTop        int64
	PaddingBottom     int64
	CSSClass          string
	Config            model.JSONMap
}

func (q *Queries) UpdateSection(ctx context.Context, arg UpdateSectionParams) (Section, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE sections
		SET type = ?, title = ?, anchor = ?, is_visible = ?,
			background_color = ?, background_image_id = ?, text_color = ?,
			padding_top = ?, padding_bottom = ?, css_class = ?, config = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+sectionColumns,
		arg.Type, arg.Title, arg.Anchor, arg.IsVisible,
		arg.BackgroundColor, arg.BackgroundImageID, arg.TextColor,
		arg.PaddingTop, arg.PaddingBottom, arg.CSSClass, arg.Config, arg.ID)
	return scanSection(row)
}

func (q *Queries) UpdateSectionVisibility(ctx context.Context, id int64, visible bool) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE sections SET is_visible = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		visible, id)
	return err
}

func (q *Queries) DeleteSection(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	return err
}
