// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/pagecms-go/internal/imaging"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/util"
)

// Upload limits.
const (
	MaxUploadSize    = 20 * 1024 * 1024 // 20MB
	DefaultUploadDir = "./uploads"
)

// MediaService handles media file operations: upload, deletion, and
// URL resolution for composed pages.
type MediaService struct {
	db        *sql.DB
	queries   *store.Queries
	processor *imaging.Processor
	uploadDir string
}

// NewMediaService creates a new media service.
func NewMediaService(db *sql.DB, uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &MediaService{
		db:        db,
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// Upload validates, stores and records an uploaded file. Raster images
// are re-encoded (stripping EXIF) and get a thumbnail; SVG, documents
// and video are stored as-is with no dimensions.
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID int64) (store.Media, error) {
	if header.Size > MaxUploadSize {
		return store.Media{}, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromExtension(header.Filename)
	}
	if !model.IsSupportedMimeType(mimeType) {
		return store.Media{}, fmt.Errorf("file type %s is not allowed", mimeType)
	}

	fileUUID := uuid.New().String()
	filename, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		return store.Media{}, fmt.Errorf("invalid filename: %w", err)
	}

	params := store.CreateMediaParams{
		UUID:             fileUUID,
		Filename:         filename,
		OriginalFilename: header.Filename,
		Title:            titleFromFilename(header.Filename),
		MediaType:        model.DetectMediaType(header.Filename),
		MimeType:         mimeType,
		Size:             header.Size,
		UploadedBy:       sql.NullInt64{Int64: userID, Valid: userID != 0},
	}

	if s.processor.IsImage(mimeType) && model.HasImageDimensions(filename) {
		result, err := s.processor.ProcessImage(file, fileUUID, filename)
		if err != nil {
			return store.Media{}, fmt.Errorf("failed to process image: %w", err)
		}
		params.MimeType = result.MimeType
		params.Size = result.Size
		params.Width = sql.NullInt64{Int64: int64(result.Width), Valid: true}
		params.Height = sql.NullInt64{Int64: int64(result.Height), Valid: true}

		if _, err := s.processor.CreateThumbnail(result.FilePath, fileUUID, filename); err != nil {
			// The original is still usable without a thumbnail
			slog.Warn("failed to create thumbnail", "uuid", fileUUID, "error", err)
		}
	} else {
		_, size, err := s.processor.SaveRaw(file, fileUUID, filename)
		if err != nil {
			return store.Media{}, fmt.Errorf("failed to save file: %w", err)
		}
		params.Size = size
	}

	media, err := s.queries.CreateMedia(ctx, params)
	if err != nil {
		_ = s.processor.DeleteMediaFiles(fileUUID)
		return store.Media{}, fmt.Errorf("failed to create media record: %w", err)
	}

	return media, nil
}

// Delete removes a media item and its files.
func (s *MediaService) Delete(ctx context.Context, mediaID int64) error {
	media, err := s.queries.GetMediaByID(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("failed to get media: %w", err)
	}

	if err := s.queries.DeleteMedia(ctx, mediaID); err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	if err := s.processor.DeleteMediaFiles(media.UUID); err != nil {
		// DB record is already gone; orphaned files are harmless
		slog.Warn("failed to delete media files", "media_id", mediaID, "error", err)
	}

	return nil
}

// URL returns the public path for a media item's original file.
func (s *MediaService) URL(media store.Media) string {
	return fmt.Sprintf("/uploads/originals/%s/%s", media.UUID, media.Filename)
}

// ThumbnailURL returns the thumbnail path for an image, or the
// original path for media without thumbnails.
func (s *MediaService) ThumbnailURL(media store.Media) string {
	if media.MediaType != model.MediaTypeImage || !media.Width.Valid {
		return s.URL(media)
	}
	return fmt.Sprintf("/uploads/%s/%s/%s", model.VariantThumbnail, media.UUID, media.Filename)
}

// ResolveURL maps a media ID to its public URL for the composer.
// Unknown IDs resolve to an empty string, which omits the block.
func (s *MediaService) ResolveURL(ctx context.Context) func(id int64) string {
	return func(id int64) string {
		media, err := s.queries.GetMediaByID(ctx, id)
		if err != nil {
			return ""
		}
		return s.URL(media)
	}
}

// titleFromFilename derives a display title from the uploaded name.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func mimeTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	case ".svg":
		return model.MimeTypeSVG
	case ".pdf":
		return "application/pdf"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
