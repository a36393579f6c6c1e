package model

// MIME types for processable images.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypeSVG  = "image/svg+xml"
)

// supportedUploadMimeTypes lists MIME types accepted by the media
// library. Documents and videos are stored as-is; only raster images
// go through the processing pipeline.
var supportedUploadMimeTypes = map[string]bool{
	MimeTypeJPEG: true,
	MimeTypePNG:  true,
	MimeTypeGIF:  true,
	MimeTypeWebP: true,
	MimeTypeSVG:  true,

	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,

	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"video/x-ms-wmv":  true,
}

// IsSupportedMimeType reports whether uploads of this MIME type are
// accepted.
func IsSupportedMimeType(mimeType string) bool {
	return supportedUploadMimeTypes[mimeType]
}
