// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a free-form JSON object stored as TEXT in SQLite.
// Sections and content blocks carry one for per-type configuration
// options (heading level, icon name, spacer height, ...).
type JSONMap map[string]any

// Value implements driver.Valuer. A nil map is stored as "{}".
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling json map: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL and empty values scan to an empty map.
func (m *JSONMap) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", src)
	}

	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		// Tolerate malformed stored config instead of failing the row scan
		*m = JSONMap{}
		return nil
	}
	*m = parsed
	return nil
}

// Int returns the value for key as an int, or def when absent or
// not a number. JSON numbers decode as float64.
func (m JSONMap) Int(key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// String returns the value for key as a string, or def when absent
// or not a string.
func (m JSONMap) String(key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}
