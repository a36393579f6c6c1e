// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// APIKey is a row in the api_keys table. Only the SHA-256 hash of the
// key is stored; the prefix is kept for display in the admin console.
type APIKey struct {
	ID         int64
	Name       string
	KeyHash    string
	KeyPrefix  string
	IsActive   bool
	CreatedBy  int64
	LastUsedAt sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const apiKeyColumns = `id, name, key_hash, key_prefix, is_active, created_by,
	last_used_at, created_at, updated_at`

func scanAPIKey(row interface{ Scan(...any) error }) (APIKey, error) {
	var k APIKey
	err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.IsActive,
		&k.CreatedBy, &k.LastUsedAt, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

type CreateAPIKeyParams struct {
	Name      string
	KeyHash   string
	KeyPrefix string
	CreatedBy int64
}

func (q *Queries) CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (APIKey, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO api_keys (name, key_hash, key_prefix, created_by)
		VALUES (?, ?, ?, ?)
		RETURNING `+apiKeyColumns,
		arg.Name, arg.KeyHash, arg.KeyPrefix, arg.CreatedBy)
	return scanAPIKey(row)
}

// GetAPIKeyByHash returns the active key matching the hash, if any.
func (q *Queries) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE key_hash = ? AND is_active = 1`, keyHash)
	return scanAPIKey(row)
}

func (q *Queries) GetAPIKeyByID(ctx context.Context, id int64) (APIKey, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id)
	return scanAPIKey(row)
}

func (q *Queries) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (q *Queries) UpdateAPIKeyLastUsed(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (q *Queries) SetAPIKeyActive(ctx context.Context, id int64, active bool) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE api_keys SET is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, active, id)
	return err
}

func (q *Queries) DeleteAPIKey(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	return err
}
