// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ErrNotSibling is returned when a reorder request names an entity
// that does not belong to the stated parent. The whole batch is
// rolled back.
var ErrNotSibling = fmt.Errorf("store: entity does not belong to the given parent")

// ReorderPair assigns one entity its new position within its parent.
type ReorderPair struct {
	ID       int64
	Position int64
}

// reorderScoped applies a batch of position updates inside one
// transaction. Every UPDATE is scoped to the parent, so an ID from
// another parent (or a missing ID) affects zero rows and aborts the
// batch.
func reorderScoped(ctx context.Context, db *sql.DB, query string, parentID int64, pairs []ReorderPair) error {
	if len(pairs) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for _, p := range pairs {
		res, err := tx.ExecContext(ctx, query, p.Position, p.ID, parentID)
		if err != nil {
			return fmt.Errorf("reorder id %d: %w", p.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reorder id %d: %w", p.ID, err)
		}
		if n != 1 {
			return fmt.Errorf("reorder id %d: %w", p.ID, ErrNotSibling)
		}
	}
	return tx.Commit()
}

// ReorderSections repositions sections within one page.
func ReorderSections(ctx context.Context, db *sql.DB, pageID int64, pairs []ReorderPair) error {
	return reorderScoped(ctx, db, `
		UPDATE sections SET position = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND page_id = ?`, pageID, pairs)
}

// ReorderBlocks repositions content blocks within one section.
func ReorderBlocks(ctx context.Context, db *sql.DB, sectionID int64, pairs []ReorderPair) error {
	return reorderScoped(ctx, db, `
		UPDATE content_blocks SET position = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND section_id = ?`, sectionID, pairs)
}

// ReorderGalleryImages repositions images within one gallery block.
func ReorderGalleryImages(ctx context.Context, db *sql.DB, blockID int64, pairs []ReorderPair) error {
	return reorderScoped(ctx, db, `
		UPDATE gallery_images SET position = ?
		WHERE id = ? AND block_id = ?`, blockID, pairs)
}

// ReorderMenuItems repositions menu items that share a parent. A zero
// parentID means the top level.
func ReorderMenuItems(ctx context.Context, db *sql.DB, parentID int64, pairs []ReorderPair) error {
	if len(pairs) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for _, p := range pairs {
		var (
			res sql.Result
		)
		if parentID == 0 {
			res, err = tx.ExecContext(ctx, `
				UPDATE menu_items SET position = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND parent_id IS NULL`, p.Position, p.ID)
		} else {
			res, err = tx.ExecContext(ctx, `
				UPDATE menu_items SET position = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ? AND parent_id = ?`, p.Position, p.ID, parentID)
		}
		if err != nil {
			return fmt.Errorf("reorder menu item %d: %w", p.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reorder menu item %d: %w", p.ID, err)
		}
		if n != 1 {
			return fmt.Errorf("reorder menu item %d: %w", p.ID, ErrNotSibling)
		}
	}
	return tx.Commit()
}

// SetHomePage flags one page as the homepage and clears the flag
// everywhere else, in a single transaction. At most one page carries
// the flag at any time.
func SetHomePage(ctx context.Context, db *sql.DB, pageID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set home page: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE pages SET is_home = 0 WHERE is_home = 1 AND id != ?`, pageID); err != nil {
		return fmt.Errorf("clear home flag: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE pages SET is_home = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, pageID)
	if err != nil {
		return fmt.Errorf("set home flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set home flag: %w", err)
	}
	if n != 1 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}
