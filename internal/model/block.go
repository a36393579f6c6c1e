// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Content block types
const (
	BlockTypeRichText = "rich_text"
	BlockTypeHeading  = "heading"
	BlockTypeImage    = "image"
	BlockTypeGallery  = "gallery"
	BlockTypeVideo    = "video"
	BlockTypeButton   = "button"
	BlockTypeIconText = "icon_text"
	BlockTypeCode     = "code"
	BlockTypeSpacer   = "spacer"
	BlockTypeDivider  = "divider"
	BlockTypeHTML     = "html"
)

// BlockTypes lists all valid content block types in display order.
var BlockTypes = []string{
	BlockTypeRichText,
	BlockTypeHeading,
	BlockTypeImage,
	BlockTypeGallery,
	BlockTypeVideo,
	BlockTypeButton,
	BlockTypeIconText,
	BlockTypeCode,
	BlockTypeSpacer,
	BlockTypeDivider,
	BlockTypeHTML,
}

// BlockTypeLabels maps block types to human-readable labels.
var BlockTypeLabels = map[string]string{
	BlockTypeRichText: "Rich Text",
	BlockTypeHeading:  "Heading",
	BlockTypeImage:    "Single Image",
	BlockTypeGallery:  "Image Gallery",
	BlockTypeVideo:    "Video Embed",
	BlockTypeButton:   "Button/CTA",
	BlockTypeIconText: "Icon + Text",
	BlockTypeCode:     "Code Block",
	BlockTypeSpacer:   "Spacer",
	BlockTypeDivider:  "Divider",
	BlockTypeHTML:     "Raw HTML",
}

// Link target values
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// ValidTargets contains all valid link target values.
var ValidTargets = []string{TargetSelf, TargetBlank}

// Button styles
const (
	ButtonStylePrimary   = "primary"
	ButtonStyleSecondary = "secondary"
	ButtonStyleSuccess   = "success"
	ButtonStyleDanger    = "danger"
	ButtonStyleWarning   = "warning"
	ButtonStyleInfo      = "info"
	ButtonStyleLight     = "light"
	ButtonStyleDark      = "dark"
)

// ButtonStyles lists all valid button styles.
var ButtonStyles = []string{
	ButtonStylePrimary,
	ButtonStyleSecondary,
	ButtonStyleSuccess,
	ButtonStyleDanger,
	ButtonStyleWarning,
	ButtonStyleInfo,
	ButtonStyleLight,
	ButtonStyleDark,
}

// IsValidBlockType checks if a block type value is valid.
func IsValidBlockType(t string) bool {
	_, ok := BlockTypeLabels[t]
	return ok
}

// BlockTypeLabel returns the display label for a block type,
// falling back to the raw type for unknown values.
func BlockTypeLabel(t string) string {
	if label, ok := BlockTypeLabels[t]; ok {
		return label
	}
	return t
}

// IsValidTarget checks if a link target value is valid.
func IsValidTarget(target string) bool {
	for _, t := range ValidTargets {
		if t == target {
			return true
		}
	}
	return false
}

// IsValidButtonStyle checks if a button style value is valid.
func IsValidButtonStyle(style string) bool {
	for _, s := range ButtonStyles {
		if s == style {
			return true
		}
	}
	return false
}
