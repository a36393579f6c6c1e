// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// MenuItem is a row in the menu_items table. Items form a two-level
// tree: top-level items have a NULL parent_id, children point at a
// top-level item.
type MenuItem struct {
	ID          int64
	Label       string
	LinkType    string
	PageID      sql.NullInt64
	SectionID   sql.NullInt64
	ParentID    sql.NullInt64
	ExternalURL string
	IsVisible   bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const menuItemColumns = `id, label, link_type, page_id, section_id, parent_id,
	external_url, is_visible, position, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...any) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Label, &m.LinkType, &m.PageID, &m.SectionID,
		&m.ParentID, &m.ExternalURL, &m.IsVisible, &m.Position,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func collectMenuItems(rows *sql.Rows) ([]MenuItem, error) {
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

type CreateMenuItemParams struct {
	Label       string
	LinkType    string
	PageID      sql.NullInt64
	SectionID   sql.NullInt64
	ParentID    sql.NullInt64
	ExternalURL string
	IsVisible   bool
	Position    int64
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (label, link_type, page_id, section_id, parent_id,
			external_url, is_visible, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+menuItemColumns,
		arg.Label, arg.LinkType, arg.PageID, arg.SectionID, arg.ParentID,
		arg.ExternalURL, arg.IsVisible, arg.Position)
	return scanMenuItem(row)
}

func (q *Queries) GetMenuItemByID(ctx context.Context, id int64) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id)
	return scanMenuItem(row)
}

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

// ListVisibleMenuItems returns items shown in the public navigation.
func (q *Queries) ListVisibleMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+menuItemColumns+` FROM menu_items
		WHERE is_visible = 1 ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

func (q *Queries) ListMenuItemsByParent(ctx context.Context, parentID sql.NullInt64) ([]MenuItem, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID.Valid {
		rows, err = q.db.QueryContext(ctx, `
			SELECT `+menuItemColumns+` FROM menu_items
			WHERE parent_id = ? ORDER BY position, id`, parentID.Int64)
	} else {
		rows, err = q.db.QueryContext(ctx, `
			SELECT `+menuItemColumns+` FROM menu_items
			WHERE parent_id IS NULL ORDER BY position, id`)
	}
	if err != nil {
		return nil, err
	}
	return collectMenuItems(rows)
}

func (q *Queries) CountMenuItemsByParent(ctx context.Context, parentID sql.NullInt64) (int64, error) {
	var n int64
	var err error
	if parentID.Valid {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM menu_items WHERE parent_id = ?`, parentID.Int64).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM menu_items WHERE parent_id IS NULL`).Scan(&n)
	}
	return n, err
}

type UpdateMenuItemParams struct {
	ID          int64
	Label       string
	LinkType    string
	PageID      sql.NullInt64
	SectionID   sql.NullInt64
	ExternalURL string
	IsVisible   bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE menu_items
		SET label = ?, link_type = ?, page_id = ?, section_id = ?,
			external_url = ?, is_visible = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+menuItemColumns,
		arg.Label, arg.LinkType, arg.PageID, arg.SectionID,
		arg.ExternalURL, arg.IsVisible, arg.ID)
	return scanMenuItem(row)
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}
