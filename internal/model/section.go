// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Section layout types
const (
	SectionTypeHero         = "hero"
	SectionTypeText         = "text"
	SectionTypeImage        = "image"
	SectionTypeGallery      = "gallery"
	SectionTypeTwoColumn    = "two_column"
	SectionTypeThreeColumn  = "three_column"
	SectionTypeCarousel     = "carousel"
	SectionTypeCTA          = "cta"
	SectionTypeFAQ          = "faq"
	SectionTypeContact      = "contact"
	SectionTypeTestimonials = "testimonials"
	SectionTypeFeatures     = "features"
	SectionTypeCustom       = "custom"
)

// SectionTypes lists all valid section layout types in display order.
var SectionTypes = []string{
	SectionTypeHero,
	SectionTypeText,
	SectionTypeImage,
	SectionTypeGallery,
	SectionTypeTwoColumn,
	SectionTypeThreeColumn,
	SectionTypeCarousel,
	SectionTypeCTA,
	SectionTypeFAQ,
	SectionTypeContact,
	SectionTypeTestimonials,
	SectionTypeFeatures,
	SectionTypeCustom,
}

// SectionTypeLabels maps section types to human-readable labels.
var SectionTypeLabels = map[string]string{
	SectionTypeHero:         "Hero Section",
	SectionTypeText:         "Text Section",
	SectionTypeImage:        "Image Section",
	SectionTypeGallery:      "Image Gallery",
	SectionTypeTwoColumn:    "Two Column Layout",
	SectionTypeThreeColumn:  "Three Column Layout",
	SectionTypeCarousel:     "Carousel/Slider",
	SectionTypeCTA:          "Call to Action",
	SectionTypeFAQ:          "FAQ Section",
	SectionTypeContact:      "Contact Section",
	SectionTypeTestimonials: "Testimonials",
	SectionTypeFeatures:     "Features Grid",
	SectionTypeCustom:       "Custom Section",
}

// DefaultSectionPadding is the default top/bottom padding in pixels.
const DefaultSectionPadding = 60

// IsValidSectionType checks if a section type value is valid.
func IsValidSectionType(t string) bool {
	_, ok := SectionTypeLabels[t]
	return ok
}

// SectionTypeLabel returns the display label for a section type,
// falling back to the raw type for unknown values.
func SectionTypeLabel(t string) string {
	if label, ok := SectionTypeLabels[t]; ok {
		return label
	}
	return t
}
