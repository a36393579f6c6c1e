package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
)

// MediaPerPage is the number of media items to display per page.
const MediaPerPage = 24

// MediaHandler handles media library routes.
type MediaHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	mediaService   *service.MediaService
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager,
	ms *service.MediaService, cm *cache.Manager) *MediaHandler {
	return &MediaHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		mediaService:   ms,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// MediaItem represents a media item with computed URLs.
type MediaItem struct {
	store.Media
	URL          string
	ThumbnailURL string
	IsImage      bool
}

// MediaLibraryData holds data for the media library template.
type MediaLibraryData struct {
	Media      []MediaItem
	Filter     string
	Search     string
	Types      []string
	Pagination AdminPagination
}

// Library handles GET /admin/media - displays the media library.
func (h *MediaHandler) Library(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	page := ParsePageParam(r)

	filter := r.URL.Query().Get("type")
	valid := false
	for _, t := range model.MediaTypes {
		if t == filter {
			valid = true
			break
		}
	}
	if !valid {
		filter = ""
	}

	search := strings.TrimSpace(r.URL.Query().Get("q"))

	totalCount, err := h.queries.CountMedia(r.Context(), store.ListMediaParams{
		MediaType: filter,
		Search:    search,
	})
	if err != nil {
		logAndInternalError(w, "failed to count media", "error", err)
		return
	}

	page, _ = NormalizePagination(page, int(totalCount), MediaPerPage)
	offset := int64((page - 1) * MediaPerPage)

	media, err := h.queries.ListMedia(r.Context(), store.ListMediaParams{
		MediaType: filter,
		Search:    search,
		Limit:     MediaPerPage,
		Offset:    offset,
	})
	if err != nil {
		logAndInternalError(w, "failed to list media", "error", err)
		return
	}

	items := make([]MediaItem, 0, len(media))
	for _, m := range media {
		items = append(items, MediaItem{
			Media:        m,
			URL:          h.mediaService.URL(m),
			ThumbnailURL: h.mediaService.ThumbnailURL(m),
			IsImage:      m.MediaType == model.MediaTypeImage,
		})
	}

	if err := h.renderer.Render(w, r, "admin/media_library", render.TemplateData{
		Title:    "Media Library",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: MediaLibraryData{
			Media:      items,
			Filter:     filter,
			Search:     search,
			Types:      model.MediaTypes,
			Pagination: BuildAdminPagination(page, int(totalCount), MediaPerPage, redirectAdminMedia, r.URL.Query()),
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Upload handles POST /admin/media/upload - stores an uploaded file
// and registers it in the library.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, redirectAdminMedia, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminMedia, "Select a file to upload")
		return
	}
	defer file.Close()

	media, err := h.mediaService.Upload(r.Context(), file, header, user.ID)
	if err != nil {
		slog.Error("media upload failed", "error", err, "filename", header.Filename)
		flashError(w, r, h.renderer, redirectAdminMedia, "Upload failed: "+err.Error())
		return
	}

	_ = h.eventService.LogMediaEvent(r.Context(), model.EventLevelInfo,
		"Media uploaded: "+media.OriginalFilename, &user.ID,
		map[string]any{"media_id": media.ID, "type": media.MediaType, "size": media.Size})

	slog.Info("media uploaded", "media_id", media.ID, "filename", media.Filename, "uploaded_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminMedia, "File uploaded successfully")
}

// MediaFormData holds data for the media edit template.
type MediaFormData struct {
	Item MediaItem
}

// EditForm handles GET /admin/media/{id} - displays the media edit form.
func (h *MediaHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminMedia, "Invalid media ID")
		return
	}

	media, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminMedia, "media", id,
		func(id int64) (store.Media, error) { return h.queries.GetMediaByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "admin/media_form", render.TemplateData{
		Title:    "Edit Media",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: MediaFormData{
			Item: MediaItem{
				Media:        media,
				URL:          h.mediaService.URL(media),
				ThumbnailURL: h.mediaService.ThumbnailURL(media),
				IsImage:      media.MediaType == model.MediaTypeImage,
			},
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Update handles POST /admin/media/{id} - updates media metadata.
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminMedia, "Invalid media ID")
		return
	}

	if _, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminMedia, "media", id,
		func(id int64) (store.Media, error) { return h.queries.GetMediaByID(r.Context(), id) }); !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminMedia) {
		return
	}

	media, err := h.queries.UpdateMedia(r.Context(), store.UpdateMediaParams{
		ID:      id,
		Title:   strings.TrimSpace(r.FormValue("title")),
		Alt:     strings.TrimSpace(r.FormValue("alt")),
		Caption: strings.TrimSpace(r.FormValue("caption")),
		Tags:    strings.TrimSpace(r.FormValue("tags")),
	})
	if err != nil {
		slog.Error("failed to update media", "error", err, "media_id", id)
		flashError(w, r, h.renderer, redirectAdminMedia, "Error updating media")
		return
	}

	// Alt text and captions appear on rendered pages.
	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogMediaEvent(r.Context(), model.EventLevelInfo,
		"Media updated: "+media.OriginalFilename, &user.ID, map[string]any{"media_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminMedia, "Media updated")
}

// Delete handles POST /admin/media/{id}/delete - removes a media item
// and its files from disk.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminMedia, "Invalid media ID")
		return
	}

	media, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminMedia, "media", id,
		func(id int64) (store.Media, error) { return h.queries.GetMediaByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.mediaService.Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete media", "error", err, "media_id", id)
		flashError(w, r, h.renderer, redirectAdminMedia, "Error deleting media")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogMediaEvent(r.Context(), model.EventLevelInfo,
		"Media deleted: "+media.OriginalFilename, &user.ID, map[string]any{"media_id": id})

	slog.Info("media deleted", "media_id", id, "deleted_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminMedia, "Media deleted")
}
