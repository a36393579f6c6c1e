package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/seo"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/util"
)

// invalidateContentCache drops every cached response after a content
// mutation. Invalidation is deliberately coarse: any change clears the
// whole cache rather than tracking which pages a menu or media edit
// can reach.
func invalidateContentCache(r *http.Request, cm *cache.Manager) {
	if cm != nil {
		cm.ClearAll(r.Context())
	}
}

// PagesHandler handles page management routes.
type PagesHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	pageService    *service.PageService
	mediaService   *service.MediaService
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager,
	ps *service.PageService, ms *service.MediaService, cm *cache.Manager) *PagesHandler {
	return &PagesHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		pageService:    ps,
		mediaService:   ms,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// PagesListData holds data for the pages list template.
type PagesListData struct {
	Pages        []store.Page
	StatusFilter string
	Statuses     []string
}

// List handles GET /admin/pages - displays all pages in position order.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" && !model.IsValidPageStatus(statusFilter) {
		statusFilter = ""
	}

	var pages []store.Page
	var err error
	if statusFilter != "" {
		pages, err = h.queries.ListPagesByStatus(r.Context(), statusFilter)
	} else {
		pages, err = h.queries.ListPages(r.Context())
	}
	if err != nil {
		logAndInternalError(w, "failed to list pages", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/pages_list", render.TemplateData{
		Title:    "Pages",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: PagesListData{
			Pages:        pages,
			StatusFilter: statusFilter,
			Statuses:     model.ValidPageStatuses,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// PageFormData holds data for the page form template.
type PageFormData struct {
	Page       *store.Page
	Statuses   []string
	Images     []store.Media
	Errors     map[string]string
	FormValues map[string]string
	IsEdit     bool
}

// NewForm handles GET /admin/pages/new - displays the new page form.
func (h *PagesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, PageFormData{
		Statuses:   model.ValidPageStatuses,
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
	}, "New Page")
}

// renderForm renders the page form with OG image choices loaded.
func (h *PagesHandler) renderForm(w http.ResponseWriter, r *http.Request, data PageFormData, title string) {
	images, err := h.queries.ListMedia(r.Context(), store.ListMediaParams{
		MediaType: model.MediaTypeImage,
		Limit:     200,
	})
	if err != nil {
		slog.Error("failed to list images for page form", "error", err)
	}
	data.Images = images

	if err := h.renderer.Render(w, r, "admin/pages_form", render.TemplateData{
		Title:    title,
		SiteName: middleware.GetSiteName(r),
		User:     middleware.GetUser(r),
		Data:     data,
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// pageForm collects and validates the submitted page fields. The slug
// is derived from the title when left empty.
func (h *PagesHandler) pageForm(r *http.Request, excludeID int64) (store.CreatePageParams, map[string]string, map[string]string) {
	title := strings.TrimSpace(r.FormValue("title"))
	slug := strings.TrimSpace(r.FormValue("slug"))
	status := r.FormValue("status")
	metaTitle := strings.TrimSpace(r.FormValue("meta_title"))
	metaDescription := strings.TrimSpace(r.FormValue("meta_description"))
	ogImageID := util.ParseNullInt64(r.FormValue("og_image_id"))

	formValues := map[string]string{
		"title":            title,
		"slug":             slug,
		"status":           status,
		"meta_title":       metaTitle,
		"meta_description": metaDescription,
		"og_image_id":      r.FormValue("og_image_id"),
	}

	fieldErrors := make(map[string]string)

	if title == "" {
		fieldErrors["title"] = "Title is required"
	} else if len(title) < 2 {
		fieldErrors["title"] = "Title must be at least 2 characters"
	}

	if slug == "" {
		slug = util.Slugify(title)
		formValues["slug"] = slug
	}

	if slug == "" {
		fieldErrors["slug"] = "Slug is required"
	} else if !util.IsValidSlug(slug) {
		fieldErrors["slug"] = "Invalid slug format (use lowercase letters, numbers, and hyphens)"
	} else {
		var exists bool
		var err error
		if excludeID > 0 {
			exists, err = h.queries.SlugExistsExcluding(r.Context(), store.SlugExistsExcludingParams{Slug: slug, ID: excludeID})
		} else {
			exists, err = h.queries.SlugExists(r.Context(), slug)
		}
		if err != nil {
			slog.Error("database error checking slug", "error", err)
			fieldErrors["slug"] = "Error checking slug"
		} else if exists {
			fieldErrors["slug"] = "Slug already exists"
		}
	}

	if status == "" {
		status = model.PageStatusDraft
		formValues["status"] = status
	} else if !model.IsValidPageStatus(status) {
		fieldErrors["status"] = "Invalid status"
	}

	return store.CreatePageParams{
		Title:           title,
		Slug:            slug,
		Status:          status,
		MetaTitle:       metaTitle,
		MetaDescription: metaDescription,
		OgImageID:       ogImageID,
	}, formValues, fieldErrors
}

// Create handles POST /admin/pages - creates a new page.
func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminPagesNew) {
		return
	}

	params, formValues, fieldErrors := h.pageForm(r, 0)
	if len(fieldErrors) > 0 {
		h.renderForm(w, r, PageFormData{
			Statuses:   model.ValidPageStatuses,
			Errors:     fieldErrors,
			FormValues: formValues,
		}, "New Page")
		return
	}

	position, err := h.queries.NextPagePosition(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to compute page position", "error", err)
		return
	}
	params.Position = position
	params.CreatedBy = util.NullInt64FromValue(user.ID)

	newPage, err := h.queries.CreatePage(r.Context(), params)
	if err != nil {
		slog.Error("failed to create page", "error", err)
		flashError(w, r, h.renderer, redirectAdminPagesNew, "Error creating page")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Page created: "+newPage.Title, &user.ID, map[string]any{"page_id": newPage.ID, "slug": newPage.Slug})

	slog.Info("page created", "page_id", newPage.ID, "slug", newPage.Slug, "created_by", user.ID)
	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectAdminPagesIDEditor, newPage.ID), "Page created successfully")
}

// EditForm handles GET /admin/pages/{id} - displays the edit page form.
func (h *PagesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	h.renderForm(w, r, PageFormData{
		Page:       &page,
		Statuses:   model.ValidPageStatuses,
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
		IsEdit:     true,
	}, "Edit Page")
}

// Update handles POST /admin/pages/{id} - updates an existing page.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, fmt.Sprintf(redirectAdminPagesID, id)) {
		return
	}

	params, formValues, fieldErrors := h.pageForm(r, id)
	if len(fieldErrors) > 0 {
		h.renderForm(w, r, PageFormData{
			Page:       &page,
			Statuses:   model.ValidPageStatuses,
			Errors:     fieldErrors,
			FormValues: formValues,
			IsEdit:     true,
		}, "Edit Page")
		return
	}

	updated, err := h.queries.UpdatePage(r.Context(), store.UpdatePageParams{
		ID:              id,
		Title:           params.Title,
		Slug:            params.Slug,
		Status:          params.Status,
		MetaTitle:       params.MetaTitle,
		MetaDescription: params.MetaDescription,
		OgImageID:       params.OgImageID,
		UpdatedBy:       util.NullInt64FromValue(user.ID),
	})
	if err != nil {
		slog.Error("failed to update page", "error", err, "page_id", id)
		flashError(w, r, h.renderer, fmt.Sprintf(redirectAdminPagesID, id), "Error updating page")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Page updated: "+updated.Title, &user.ID, map[string]any{"page_id": updated.ID, "slug": updated.Slug})

	flashSuccess(w, r, h.renderer, redirectAdminPages, "Page updated successfully")
}

// Publish handles POST /admin/pages/{id}/publish - toggles the page
// between draft and published.
func (h *PagesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	newStatus := model.PageStatusPublished
	if page.Status == model.PageStatusPublished {
		newStatus = model.PageStatusDraft
	}

	if err := h.queries.UpdatePageStatus(r.Context(), id, newStatus); err != nil {
		slog.Error("failed to update page status", "error", err, "page_id", id)
		flashError(w, r, h.renderer, redirectAdminPages, "Error updating page status")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Page status changed: "+page.Title, &user.ID,
		map[string]any{"page_id": id, "status": newStatus})

	if newStatus == model.PageStatusPublished {
		flashSuccess(w, r, h.renderer, redirectAdminPages, "Page published")
	} else {
		flashSuccess(w, r, h.renderer, redirectAdminPages, "Page unpublished")
	}
}

// SetHome handles POST /admin/pages/{id}/home - makes the page the
// site homepage. The store clears the previous flag in the same
// transaction, so exactly one page carries it.
func (h *PagesHandler) SetHome(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := store.SetHomePage(r.Context(), h.db, id); err != nil {
		slog.Error("failed to set homepage", "error", err, "page_id", id)
		flashError(w, r, h.renderer, redirectAdminPages, "Error setting homepage")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Homepage changed: "+page.Title, &user.ID, map[string]any{"page_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminPages, page.Title+" is now the homepage")
}

// Delete handles POST /admin/pages/{id}/delete - deletes a page. The
// homepage cannot be deleted; another page must be assigned first.
func (h *PagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.pageService.DeletePage(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrHomePageDelete) {
			flashError(w, r, h.renderer, redirectAdminPages,
				"The homepage cannot be deleted. Assign another homepage first.")
			return
		}
		slog.Error("failed to delete page", "error", err, "page_id", id)
		flashError(w, r, h.renderer, redirectAdminPages, "Error deleting page")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Page deleted: "+page.Title, &user.ID, map[string]any{"page_id": id, "slug": page.Slug})

	slog.Info("page deleted", "page_id", id, "slug", page.Slug, "deleted_by", user.ID)
	flashSuccess(w, r, h.renderer, redirectAdminPages, "Page deleted successfully")
}

// EditorData holds data for the page editor template.
type EditorData struct {
	Page          store.Page
	Sections      []EditorSection
	SectionTypes  []string
	SectionLabels map[string]string
	BlockTypes    []string
	BlockLabels   map[string]string
	ButtonStyles  []string
	Images        []store.Media
}

// EditorSection is one section with its blocks, for the editor tree.
type EditorSection struct {
	Section store.Section
	Blocks  []EditorBlock
}

// EditorBlock is one block with its gallery images, if any.
type EditorBlock struct {
	Block   store.ContentBlock
	Gallery []store.GalleryImage
}

// Editor handles GET /admin/pages/{id}/editor - the section and block
// editor for one page. Hidden sections are included.
func (h *PagesHandler) Editor(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	sections, err := h.queries.ListSectionsByPage(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list sections", "error", err, "page_id", id)
		return
	}

	blocks, err := h.queries.ListBlocksByPage(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "failed to list blocks", "error", err, "page_id", id)
		return
	}

	blocksBySection := make(map[int64][]store.ContentBlock)
	for _, b := range blocks {
		blocksBySection[b.SectionID] = append(blocksBySection[b.SectionID], b)
	}

	editorSections := make([]EditorSection, 0, len(sections))
	for _, s := range sections {
		es := EditorSection{Section: s}
		for _, b := range blocksBySection[s.ID] {
			eb := EditorBlock{Block: b}
			if b.Type == model.BlockTypeGallery {
				gallery, err := h.queries.ListGalleryImagesByBlock(r.Context(), b.ID)
				if err != nil {
					logAndInternalError(w, "failed to list gallery images", "error", err, "block_id", b.ID)
					return
				}
				eb.Gallery = gallery
			}
			es.Blocks = append(es.Blocks, eb)
		}
		editorSections = append(editorSections, es)
	}

	images, err := h.queries.ListMedia(r.Context(), store.ListMediaParams{
		MediaType: model.MediaTypeImage,
		Limit:     200,
	})
	if err != nil {
		slog.Error("failed to list images for editor", "error", err)
	}

	if err := h.renderer.Render(w, r, "admin/editor", render.TemplateData{
		Title:    "Edit: " + page.Title,
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: EditorData{
			Page:          page,
			Sections:      editorSections,
			SectionTypes:  model.SectionTypes,
			SectionLabels: model.SectionTypeLabels,
			BlockTypes:    model.BlockTypes,
			BlockLabels:   model.BlockTypeLabels,
			ButtonStyles:  model.ButtonStyles,
			Images:        images,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// Preview handles GET /admin/pages/{id}/preview - renders the page as
// visitors would see it, but including hidden sections and drafts.
func (h *PagesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminPages, "Invalid page ID")
		return
	}

	page, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPages, "page", id,
		func(id int64) (store.Page, error) { return h.queries.GetPageByID(r.Context(), id) })
	if !ok {
		return
	}

	view, err := h.pageService.ComposePage(r.Context(), page, true)
	if err != nil {
		logAndInternalError(w, "failed to compose preview", "error", err, "page_id", id)
		return
	}

	site, err := h.queries.GetSiteConfig(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load site config", "error", err)
		return
	}

	meta := seo.BuildMeta(&seo.PageData{
		Title:           page.Title,
		Slug:            page.Slug,
		MetaTitle:       page.MetaTitle,
		MetaDescription: page.MetaDescription,
		OGImageURL:      view.OgImageURL,
		IsHome:          page.IsHome,
	}, &seo.SiteData{
		SiteName:           site.SiteName,
		DefaultDescription: site.DefaultMetaDescription,
	})

	html, err := h.renderer.RenderToBytes(r, "site/page", render.TemplateData{
		Title:    page.Title,
		SiteName: site.SiteName,
		Data: SitePageData{
			Page: view,
			Site: site,
			Meta: meta,
		},
	})
	if err != nil {
		logAndInternalError(w, "render error", "error", err, "page_id", id)
		return
	}

	w.Header().Set(HeaderContentType, "text/html; charset=utf-8")
	_, _ = w.Write(html)
}
