// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"path/filepath"
	"strings"
)

// Media types, derived from the uploaded file's extension.
const (
	MediaTypeImage    = "image"
	MediaTypeDocument = "document"
	MediaTypeVideo    = "video"
	MediaTypeOther    = "other"
)

// MediaTypes lists all media type values.
var MediaTypes = []string{MediaTypeImage, MediaTypeDocument, MediaTypeVideo, MediaTypeOther}

// Extension sets used for media type inference.
var (
	imageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}
	documentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx"}
	videoExtensions    = []string{".mp4", ".avi", ".mov", ".wmv", ".webm"}
)

// DetectMediaType infers the media type from a filename's extension.
func DetectMediaType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case containsExt(imageExtensions, ext):
		return MediaTypeImage
	case containsExt(documentExtensions, ext):
		return MediaTypeDocument
	case containsExt(videoExtensions, ext):
		return MediaTypeVideo
	default:
		return MediaTypeOther
	}
}

// HasImageDimensions reports whether dimension probing applies to the file.
// SVG is vector and carries no raster dimensions.
func HasImageDimensions(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return containsExt(imageExtensions, ext) && ext != ".svg"
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// ImageVariantConfig defines settings for generating image variants.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool // true = crop to exact size, false = fit within bounds
}

// VariantThumbnail is the thumbnail variant name.
const VariantThumbnail = "thumbnail"

// ImageVariants defines the default image variant configurations.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumbnail: {Width: 300, Height: 300, Quality: 80, Crop: true},
}
