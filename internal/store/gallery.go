// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// GalleryImage links a media item into a gallery block.
type GalleryImage struct {
	ID        int64
	BlockID   int64
	MediaID   int64
	Alt       string
	Caption   string
	Position  int64
	CreatedAt time.Time
}

const galleryColumns = `id, block_id, media_id, alt, caption, position, created_at`

func scanGalleryImage(row interface{ Scan(...any) error }) (GalleryImage, error) {
	var g GalleryImage
	err := row.Scan(&g.ID, &g.BlockID, &g.MediaID, &g.Alt, &g.Caption,
		&g.Position, &g.CreatedAt)
	return g, err
}

type CreateGalleryImageParams struct {
	BlockID  int64
	MediaID  int64
	Alt      string
	Caption  string
	Position int64
}

func (q *Queries) CreateGalleryImage(ctx context.Context, arg CreateGalleryImageParams) (GalleryImage, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO gallery_images (block_id, media_id, alt, caption, position)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+galleryColumns,
		arg.BlockID, arg.MediaID, arg.Alt, arg.Caption, arg.Position)
	return scanGalleryImage(row)
}

func (q *Queries) GetGalleryImageByID(ctx context.Context, id int64) (GalleryImage, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+galleryColumns+` FROM gallery_images WHERE id = ?`, id)
	return scanGalleryImage(row)
}

func (q *Queries) ListGalleryImagesByBlock(ctx context.Context, blockID int64) ([]GalleryImage, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+galleryColumns+` FROM gallery_images
		WHERE block_id = ? ORDER BY position, id`, blockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var images []GalleryImage
	for rows.Next() {
		g, err := scanGalleryImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, g)
	}
	return images, rows.Err()
}

func (q *Queries) CountGalleryImagesByBlock(ctx context.Context, blockID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gallery_images WHERE block_id = ?`, blockID).Scan(&n)
	return n, err
}

type UpdateGalleryImageParams struct {
	ID      int64
	Alt     string
	Caption string
}

func (q *Queries) UpdateGalleryImage(ctx context.Context, arg UpdateGalleryImageParams) (GalleryImage, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE gallery_images SET alt = ?, caption = ? WHERE id = ?
		RETURNING `+galleryColumns,
		arg.Alt, arg.Caption, arg.ID)
	return scanGalleryImage(row)
}

func (q *Queries) DeleteGalleryImage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM gallery_images WHERE id = ?`, id)
	return err
}
