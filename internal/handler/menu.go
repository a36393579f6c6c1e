package handler

import (
	"database/sql"
	"encoding/json"
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
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/util"
)

// MenuHandler handles navigation menu management. The site has a
// single menu with at most two levels.
type MenuHandler struct {
	db             *sql.DB
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	menuService    *service.MenuService
	eventService   *service.EventService
	cacheManager   *cache.Manager
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager,
	ms *service.MenuService, cm *cache.Manager) *MenuHandler {
	return &MenuHandler{
		db:             db,
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		menuService:    ms,
		eventService:   service.NewEventService(db),
		cacheManager:   cm,
	}
}

// MenuListData holds data for the menu builder template.
type MenuListData struct {
	Items     []service.MenuItem
	AllItems  []store.MenuItem
	RootItems []store.MenuItem
	Pages     []store.Page
	Sections  []store.Section
	LinkTypes []string
}

// List handles GET /admin/menu - displays the menu tree and the item
// form inputs.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	items, err := h.menuService.FullMenu(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to build menu", "error", err)
		return
	}

	allItems, err := h.queries.ListMenuItems(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list menu items", "error", err)
		return
	}

	var rootItems []store.MenuItem
	for _, item := range allItems {
		if !item.ParentID.Valid {
			rootItems = append(rootItems, item)
		}
	}

	pages, err := h.queries.ListPages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list pages", "error", err)
		return
	}

	// Sections across all pages, for section links
	var sections []store.Section
	for _, p := range pages {
		pageSections, err := h.queries.ListSectionsByPage(r.Context(), p.ID)
		if err != nil {
			logAndInternalError(w, "failed to list sections", "error", err, "page_id", p.ID)
			return
		}
		sections = append(sections, pageSections...)
	}

	if err := h.renderer.Render(w, r, "admin/menu", render.TemplateData{
		Title:    "Menu",
		SiteName: middleware.GetSiteName(r),
		User:     user,
		Data: MenuListData{
			Items:     items,
			AllItems:  allItems,
			RootItems: rootItems,
			Pages:     pages,
			Sections:  sections,
			LinkTypes: model.ValidLinkTypes,
		},
	}); err != nil {
		logAndInternalError(w, "render error", "error", err)
	}
}

// menuItemForm collects and validates the submitted menu item fields.
func (h *MenuHandler) menuItemForm(r *http.Request) (store.CreateMenuItemParams, map[string]string) {
	label := strings.TrimSpace(r.FormValue("label"))
	linkType := r.FormValue("link_type")
	externalURL := strings.TrimSpace(r.FormValue("external_url"))
	pageID := util.ParseNullInt64(r.FormValue("page_id"))
	sectionID := util.ParseNullInt64(r.FormValue("section_id"))
	parentID := util.ParseNullInt64(r.FormValue("parent_id"))

	fieldErrors := make(map[string]string)

	if label == "" {
		fieldErrors["label"] = "Label is required"
	}

	switch linkType {
	case model.LinkTypePage:
		if !pageID.Valid {
			fieldErrors["page_id"] = "Select a page to link to"
		}
		sectionID = sql.NullInt64{}
		externalURL = ""
	case model.LinkTypeSection:
		if !sectionID.Valid {
			fieldErrors["section_id"] = "Select a section to link to"
		}
		pageID = sql.NullInt64{}
		externalURL = ""
	case model.LinkTypeExternal:
		if externalURL == "" {
			fieldErrors["external_url"] = "External URL is required"
		}
		pageID = sql.NullInt64{}
		sectionID = sql.NullInt64{}
	default:
		fieldErrors["link_type"] = "Invalid link type"
	}

	// The menu is two levels deep at most: a parent must itself be a
	// top-level item.
	if parentID.Valid {
		parent, err := h.queries.GetMenuItemByID(r.Context(), parentID.Int64)
		if err != nil {
			fieldErrors["parent_id"] = "Parent item not found"
		} else if parent.ParentID.Valid {
			fieldErrors["parent_id"] = "Menu items can only be nested one level deep"
		}
	}

	return store.CreateMenuItemParams{
		Label:       label,
		LinkType:    linkType,
		PageID:      pageID,
		SectionID:   sectionID,
		ParentID:    parentID,
		ExternalURL: externalURL,
		IsVisible:   r.FormValue("is_visible") != "",
	}, fieldErrors
}

// Create handles POST /admin/menu - adds a menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminMenu) {
		return
	}

	params, fieldErrors := h.menuItemForm(r)
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, redirectAdminMenu, firstError(fieldErrors))
		return
	}

	position, err := h.queries.CountMenuItemsByParent(r.Context(), params.ParentID)
	if err != nil {
		logAndInternalError(w, "failed to count menu items", "error", err)
		return
	}
	params.Position = position

	item, err := h.queries.CreateMenuItem(r.Context(), params)
	if err != nil {
		slog.Error("failed to create menu item", "error", err)
		flashError(w, r, h.renderer, redirectAdminMenu, "Error creating menu item")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Menu item added: "+item.Label, &user.ID, map[string]any{"menu_item_id": item.ID})

	flashSuccess(w, r, h.renderer, redirectAdminMenu, "Menu item added")
}

// Update handles POST /admin/menu/{id} - updates a menu item. The
// parent is changed through reordering, not here.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminMenu, "Invalid menu item ID")
		return
	}

	if _, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminMenu, "menu item", id,
		func(id int64) (store.MenuItem, error) { return h.queries.GetMenuItemByID(r.Context(), id) }); !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminMenu) {
		return
	}

	params, fieldErrors := h.menuItemForm(r)
	if len(fieldErrors) > 0 {
		flashError(w, r, h.renderer, redirectAdminMenu, firstError(fieldErrors))
		return
	}

	item, err := h.queries.UpdateMenuItem(r.Context(), store.UpdateMenuItemParams{
		ID:          id,
		Label:       params.Label,
		LinkType:    params.LinkType,
		PageID:      params.PageID,
		SectionID:   params.SectionID,
		ExternalURL: params.ExternalURL,
		IsVisible:   params.IsVisible,
	})
	if err != nil {
		slog.Error("failed to update menu item", "error", err, "menu_item_id", id)
		flashError(w, r, h.renderer, redirectAdminMenu, "Error updating menu item")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Menu item updated: "+item.Label, &user.ID, map[string]any{"menu_item_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminMenu, "Menu item updated")
}

// Delete handles POST /admin/menu/{id}/delete - deletes a menu item
// and, through the cascade, its children.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := parseIDParam(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectAdminMenu, "Invalid menu item ID")
		return
	}

	item, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminMenu, "menu item", id,
		func(id int64) (store.MenuItem, error) { return h.queries.GetMenuItemByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteMenuItem(r.Context(), id); err != nil {
		slog.Error("failed to delete menu item", "error", err, "menu_item_id", id)
		flashError(w, r, h.renderer, redirectAdminMenu, "Error deleting menu item")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventLevelInfo,
		"Menu item deleted: "+item.Label, &user.ID, map[string]any{"menu_item_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminMenu, "Menu item deleted")
}

// menuReorderRequest is the JSON body for menu reordering: the parent
// whose children are being reordered (0 for the top level) and the
// ordered IDs.
type menuReorderRequest struct {
	ParentID int64   `json:"parent_id"`
	IDs      []int64 `json:"ids"`
}

// Reorder handles POST /admin/menu/reorder - applies a new order to
// the children of one parent.
func (h *MenuHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req menuReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := store.ReorderMenuItems(r.Context(), h.db, req.ParentID, pairsFromOrder(req.IDs)); err != nil {
		if errors.Is(err, store.ErrNotSibling) {
			writeJSONError(w, http.StatusBadRequest,
				fmt.Sprintf("Menu items do not all belong to parent %d", req.ParentID))
			return
		}
		slog.Error("failed to reorder menu items", "error", err, "parent_id", req.ParentID)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	invalidateContentCache(r, h.cacheManager)
	writeJSONSuccess(w, nil)
}
