// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/pagecms-go/internal/model"
)

// ContentBlock is a row in the content_blocks table.
type ContentBlock struct {
	ID              int64
	SectionID       int64
	Type            string
	Title           string
	Content         string
	HTMLContent     string
	ImageID         sql.NullInt64
	ImageAlt        string
	LinkURL         string
	LinkText        string
	LinkTarget      string
	ButtonStyle     string
	BackgroundColor string
	TextColor       string
	Config          model.JSONMap
	Position        int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const blockColumns = `id, section_id, type, title, content, html_content,
	image_id, image_alt, link_url, link_text, link_target, button_style,
	background_color, text_color, config, position, created_at, updated_at`

func scanBlock(row interface{ Scan(...any) error }) (ContentBlock, error) {
	var b ContentBlock
	err := row.Scan(&b.ID, &b.SectionID, &b.Type, &b.Title, &b.Content, &b.HTMLContent,
		&b.ImageID, &b.ImageAlt, &b.LinkURL, &b.LinkText, &b.LinkTarget, &b.ButtonStyle,
		&b.BackgroundColor, &b.TextColor, &b.Config, &b.Position,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBlocks(rows *sql.Rows) ([]ContentBlock, error) {
	defer rows.Close()
	var blocks []ContentBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

type CreateBlockParams struct {
	SectionID       int64
	Type            string
	Title           string
	Content         string
	HTMLContent     string
	ImageID         sql.NullInt64
	ImageAlt        string
	LinkURL         string
	LinkText        string
	LinkTarget      string
	ButtonStyle     string
	BackgroundColor string
	TextColor       string
	Config          model.JSONMap
	Position        int64
}

func (q *Queries) CreateBlock(ctx context.Context, arg CreateBlockParams) (ContentBlock, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO content_blocks (section_id, type, title, content, html_content,
			image_id, image_alt, link_url, link_text, link_target, button_style,
			background_color, text_color, config, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+blockColumns,
		arg.SectionID, arg.Type, arg.Title, arg.Content, arg.HTMLContent,
		arg.ImageID, arg.ImageAlt, arg.LinkURL, arg.LinkText, arg.LinkTarget,
		arg.ButtonStyle, arg.BackgroundColor, arg.TextColor, arg.Config, arg.Position)
	return scanBlock(row)
}

func (q *Queries) GetBlockByID(ctx context.Context, id int64) (ContentBlock, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM content_blocks WHERE id = ?`, id)
	return scanBlock(row)
}

func (q *Queries) ListBlocksBySection(ctx context.Context, sectionID int64) ([]ContentBlock, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+blockColumns+` FROM content_blocks
		WHERE section_id = ? ORDER BY position, id`, sectionID)
	if err != nil {
		return nil, err
	}
	return collectBlocks(rows)
}

// ListBlocksByPage returns every block on the page joined through its
// section, ordered section-first. Used by the composer to assemble a
// full page in one query.
func (q *Queries) ListBlocksByPage(ctx context.Context, pageID int64) ([]ContentBlock, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT b.id, b.section_id, b.type, b.title, b.content, b.html_content,
			b.image_id, b.image_alt, b.link_url, b.link_text, b.link_target, b.button_style,
			b.background_color, b.text_color, b.config, b.position, b.created_at, b.updated_at
		FROM content_blocks b
		JOIN sections s ON s.id = b.section_id
		WHERE s.page_id = ?
		ORDER BY s.position, s.id, b.position, b.id`, pageID)
	if err != nil {
		return nil, err
	}
	return collectBlocks(rows)
}

func (q *Queries) CountBlocksBySection(ctx context.Context, sectionID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_blocks WHERE section_id = ?`, sectionID).Scan(&n)
	return n, err
}

type UpdateBlockParams struct {
	ID              int64
	Type            string
	Title           string
	Content         string
	HTMLContent     string
	ImageID         sql.NullInt64
	ImageAlt        string
	LinkURL         string
	LinkText        string
	LinkTarget      string
	ButtonStyle     string
	BackgroundColor string
	TextColor       string
	Config          model.JSONMap
}

func (q *Queries) UpdateBlock(ctx context.Context, arg UpdateBlockParams) (ContentBlock, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE content_blocks
		SET type = ?, title = ?, content = ?, html_content = ?,
			image_id = ?, image_alt = ?, link_url = ?, link_text = ?,
			link_target = ?, button_style = ?, background_color = ?,
			text_color = ?, config = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+blockColumns,
		arg.Type, arg.Title, arg.Content, arg.HTMLContent,
		arg.ImageID, arg.ImageAlt, arg.LinkURL, arg.LinkText,
		arg.LinkTarget, arg.ButtonStyle, arg.BackgroundColor,
		arg.TextColor, arg.Config, arg.ID)
	return scanBlock(row)
}

func (q *Queries) DeleteBlock(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM content_blocks WHERE id = ?`, id)
	return err
}
