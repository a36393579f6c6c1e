// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/pagecms-go/internal/model"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(width, height), nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessorIsImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	tests := []struct {
		mimeType string
		want     bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypePNG, true},
		{model.MimeTypeGIF, true},
		{model.MimeTypeWebP, true},
		{model.MimeTypeSVG, false},
		{"application/pdf", false},
		{"video/mp4", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsImage(tt.mimeType); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestProcessorIsSupportedType(t *testing.T) {
	p := NewProcessor(t.TempDir())

	tests := []struct {
		mimeType string
		want     bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypeSVG, true},
		{"application/pdf", true},
		{"video/mp4", true},
		{"application/octet-stream", false},
		{"text/plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsSupportedType(tt.mimeType); got != tt.want {
				t.Errorf("IsSupportedType(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestProcessImage(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 640, 480)
	result, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "photo.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	if result.Width != 640 || result.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", result.Width, result.Height)
	}
	if result.MimeType != model.MimeTypeJPEG {
		t.Errorf("mime type = %q", result.MimeType)
	}
	if result.Size == 0 {
		t.Error("size should be non-zero")
	}

	wantPath := filepath.Join(dir, "originals", "test-uuid", "photo.jpg")
	if result.FilePath != wantPath {
		t.Errorf("file path = %q, want %q", result.FilePath, wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestProcessImageRejectsNonImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.ProcessImage(bytes.NewReader([]byte("plain text, not an image")), "u", "f.jpg")
	if err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestProcessImageRejectsTraversalFilename(t *testing.T) {
	p := NewProcessor(t.TempDir())

	data := encodeTestJPEG(t, 10, 10)
	result, err := p.ProcessImage(bytes.NewReader(data), "u", "../../etc/evil.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	// The filename gets reduced to its base.
	if filepath.Base(result.FilePath) != "evil.jpg" {
		t.Errorf("file path not sanitized: %q", result.FilePath)
	}
}

func TestCreateThumbnail(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 1200, 800)
	orig, err := p.ProcessImage(bytes.NewReader(data), "thumb-uuid", "big.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	result, err := p.CreateThumbnail(orig.FilePath, "thumb-uuid", "big.jpg")
	if err != nil {
		t.Fatalf("CreateThumbnail: %v", err)
	}
	if result == nil {
		t.Fatal("expected a thumbnail for a large source")
	}
	if result.Width != 300 || result.Height != 300 {
		t.Errorf("thumbnail = %dx%d, want 300x300 crop", result.Width, result.Height)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("thumbnail file missing: %v", err)
	}
}

func TestGetImageDimensions(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	path := filepath.Join(dir, "probe.jpg")
	if err := os.WriteFile(path, encodeTestJPEG(t, 321, 123), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	w, h, err := p.GetImageDimensions(path)
	if err != nil {
		t.Fatalf("GetImageDimensions: %v", err)
	}
	if w != 321 || h != 123 {
		t.Errorf("dimensions = %dx%d, want 321x123", w, h)
	}
}

func TestDeleteMediaFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeTestJPEG(t, 400, 400)
	orig, err := p.ProcessImage(bytes.NewReader(data), "del-uuid", "gone.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if _, err := p.CreateThumbnail(orig.FilePath, "del-uuid", "gone.jpg"); err != nil {
		t.Fatalf("CreateThumbnail: %v", err)
	}

	if err := p.DeleteMediaFiles("del-uuid"); err != nil {
		t.Fatalf("DeleteMediaFiles: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "originals", "del-uuid")); !os.IsNotExist(err) {
		t.Error("originals directory still exists")
	}
	if _, err := os.Stat(filepath.Join(dir, "thumbnail", "del-uuid")); !os.IsNotExist(err) {
		t.Error("thumbnail directory still exists")
	}
	// Deleting again is a no-op.
	if err := p.DeleteMediaFiles("del-uuid"); err != nil {
		t.Errorf("second DeleteMediaFiles: %v", err)
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(40, 20)

	rotated := applyOrientation(img, 6)
	if b := rotated.Bounds(); b.Dx() != 20 || b.Dy() != 40 {
		t.Errorf("orientation 6 = %dx%d, want 20x40", b.Dx(), b.Dy())
	}

	same := applyOrientation(img, 1)
	if b := same.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("orientation 1 changed dimensions: %dx%d", b.Dx(), b.Dy())
	}
}
