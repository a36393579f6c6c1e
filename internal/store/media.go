// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Media is a row in the media table.
type Media struct {
	ID               int64
	UUID             string
	Filename         string
	OriginalFilename string
	Title            string
	MediaType        string
	MimeType         string
	Size             int64
	Width            sql.NullInt64
	Height           sql.NullInt64
	Alt              string
	Caption          string
	Tags             string
	UploadedBy       sql.NullInt64
	CreatedAt        time.Time
}

const mediaColumns = `id, uuid, filename, original_filename, title, media_type,
	mime_type, size, width, height, alt, caption, tags, uploaded_by, created_at`

func scanMedia(row interface{ Scan(...any) error }) (Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.UUID, &m.Filename, &m.OriginalFilename, &m.Title,
		&m.MediaType, &m.MimeType, &m.Size, &m.Width, &m.Height,
		&m.Alt, &m.Caption, &m.Tags, &m.UploadedBy, &m.CreatedAt)
	return m, err
}

func collectMedia(rows *sql.Rows) ([]Media, error) {
	defer rows.Close()
	var items []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

type CreateMediaParams struct {
	UUID             string
	Filename         string
	OriginalFilename string
	Title            string
	MediaType        string
	MimeType         string
	Size             int64
	Width            sql.NullInt64
	Height           sql.NullInt64
	Alt              string
	Caption          string
	Tags             string
	UploadedBy       sql.NullInt64
}

func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO media (uuid, filename, original_filename, title, media_type,
			mime_type, size, width, height, alt, caption, tags, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+mediaColumns,
		arg.UUID, arg.Filename, arg.OriginalFilename, arg.Title, arg.MediaType,
		arg.MimeType, arg.Size, arg.Width, arg.Height,
		arg.Alt, arg.Caption, arg.Tags, arg.UploadedBy)
	return scanMedia(row)
}

func (q *Queries) GetMediaByID(ctx context.Context, id int64) (Media, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

func (q *Queries) GetMediaByUUID(ctx context.Context, uuid string) (Media, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE uuid = ?`, uuid)
	return scanMedia(row)
}

// ListMediaParams filters and paginates the media library. An empty
// MediaType matches all types; Search matches filename, title and tags.
type ListMediaParams struct {
	MediaType string
	Search    string
	Limit     int64
	Offset    int64
}

func (q *Queries) ListMedia(ctx context.Context, arg ListMediaParams) ([]Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE 1=1`
	var args []any
	if arg.MediaType != "" {
		query += ` AND media_type = ?`
		args = append(args, arg.MediaType)
	}
	if arg.Search != "" {
		query += ` AND (original_filename LIKE ? OR title LIKE ? OR tags LIKE ?)`
		like := "%" + arg.Search + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectMedia(rows)
}

func (q *Queries) CountMedia(ctx context.Context, arg ListMediaParams) (int64, error) {
	query := `SELECT COUNT(*) FROM media WHERE 1=1`
	var args []any
	if arg.MediaType != "" {
		query += ` AND media_type = ?`
		args = append(args, arg.MediaType)
	}
	if arg.Search != "" {
		query += ` AND (original_filename LIKE ? OR title LIKE ? OR tags LIKE ?)`
		like := "%" + arg.Search + "%"
		args = append(args, like, like, like)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

type UpdateMediaParams struct {
	ID      int64
	Title   string
	Alt     string
	Caption string
	Tags    string
}

func (q *Queries) UpdateMedia(ctx context.Context, arg UpdateMediaParams) (Media, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE media SET title = ?, alt = ?, caption = ?, tags = ? WHERE id = ?
		RETURNING `+mediaColumns,
		arg.Title, arg.Alt, arg.Caption, arg.Tags, arg.ID)
	return scanMedia(row)
}

func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
