// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package composer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/olegiv/pagecms-go/internal/store"
)

// SectionStyle builds the inline style for a section wrapper from its
// colors, background image and paddings.
func SectionStyle(s store.Section, media MediaResolver) template.CSS {
	var parts []string
	if s.BackgroundColor != "" {
		parts = append(parts, "background-color: "+s.BackgroundColor)
	}
	if s.BackgroundImageID.Valid {
		if url := media(s.BackgroundImageID.Int64); url != "" {
			parts = append(parts,
				fmt.Sprintf("background-image: url('%s')", url),
				"background-size: cover",
				"background-position: center")
		}
	}
	if s.TextColor != "" {
		parts = append(parts, "color: "+s.TextColor)
	}
	parts = append(parts,
		fmt.Sprintf("padding-top: %dpx", s.PaddingTop),
		fmt.Sprintf("padding-bottom: %dpx", s.PaddingBottom))
	return template.CSS(strings.Join(parts, "; ")) //nolint:gosec
}

// BlockStyle builds the inline style for a block wrapper. Empty when
// the block sets no colors.
func BlockStyle(b store.ContentBlock) template.CSS {
	var parts []string
	if b.BackgroundColor != "" {
		parts = append(parts, "background-color: "+b.BackgroundColor)
	}
	if b.TextColor != "" {
		parts = append(parts, "color: "+b.TextColor)
	}
	return template.CSS(strings.Join(parts, "; ")) //nolint:gosec
}
