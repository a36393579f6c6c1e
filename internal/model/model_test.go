package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", MediaTypeImage},
		{"photo.JPEG", MediaTypeImage},
		{"logo.svg", MediaTypeImage},
		{"report.pdf", MediaTypeDocument},
		{"sheet.xlsx", MediaTypeDocument},
		{"clip.mp4", MediaTypeVideo},
		{"clip.webm", MediaTypeVideo},
		{"archive.zip", MediaTypeOther},
		{"noextension", MediaTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMediaType(tt.filename))
		})
	}
}

func TestHasImageDimensions(t *testing.T) {
	assert.True(t, HasImageDimensions("photo.png"))
	assert.False(t, HasImageDimensions("logo.svg"), "SVG carries no raster dimensions")
	assert.False(t, HasImageDimensions("report.pdf"))
}

func TestJSONMapScanValue(t *testing.T) {
	var m JSONMap
	if err := m.Scan(`{"heading_level": 3, "icon": "bi-gear"}`); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	assert.Equal(t, 3, m.Int("heading_level", 2))
	assert.Equal(t, "bi-gear", m.String("icon", "bi-star"))
	assert.Equal(t, 40, m.Int("height", 40), "missing key falls back to default")
	assert.Equal(t, "plaintext", m.String("language", "plaintext"))

	v, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	assert.Contains(t, v.(string), "heading_level")
}

func TestJSONMapScanTolerant(t *testing.T) {
	var m JSONMap
	assert.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	assert.NoError(t, m.Scan("not-json"), "malformed config must not fail a row scan")
	assert.Empty(t, m)
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidPageStatus(PageStatusDraft))
	assert.True(t, IsValidPageStatus(PageStatusPublished))
	assert.False(t, IsValidPageStatus("archived"))

	assert.True(t, IsValidSectionType(SectionTypeHero))
	assert.True(t, IsValidSectionType(SectionTypeCustom))
	assert.False(t, IsValidSectionType("sidebar"))
	assert.Len(t, SectionTypes, 13)

	assert.True(t, IsValidBlockType(BlockTypeRichText))
	assert.True(t, IsValidBlockType(BlockTypeDivider))
	assert.False(t, IsValidBlockType("table"))
	assert.Len(t, BlockTypes, 11)

	assert.True(t, IsValidLinkType(LinkTypePage))
	assert.False(t, IsValidLinkType("anchor"))

	assert.True(t, IsValidTarget(TargetBlank))
	assert.False(t, IsValidTarget("_parent"))
}

func TestAPIKeyGeneration(t *testing.T) {
	raw, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	assert.Len(t, prefix, 8)
	assert.Equal(t, raw[:8], prefix)
	assert.Len(t, HashAPIKey(raw), 64)
	assert.Equal(t, HashAPIKey(raw), HashAPIKey(raw))
}
