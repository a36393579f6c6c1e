// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/service"
)

// MenuItemResponse is one resolved navigation item.
type MenuItemResponse struct {
	ID       int64              `json:"id"`
	Label    string             `json:"label"`
	URL      string             `json:"url"`
	LinkType string             `json:"link_type"`
	PageSlug string             `json:"page_slug,omitempty"`
	Children []MenuItemResponse `json:"children,omitempty"`
}

func menuItemResponses(items []service.MenuItem) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, MenuItemResponse{
			ID:       item.ID,
			Label:    item.Label,
			URL:      item.URL,
			LinkType: item.LinkType,
			PageSlug: item.PageSlug,
			Children: menuItemResponses(item.Children),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// GetMenu handles GET /api/v1/menu - returns the navigation tree.
// Anonymous clients see the public menu; API key clients see every
// item including ones pointing at drafts.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	var (
		items []service.MenuItem
		err   error
	)
	if middleware.HasAPIKey(r) {
		items, err = h.menuService.FullMenu(r.Context())
	} else {
		items, err = h.menuService.PublicMenu(r.Context())
	}
	if err != nil {
		WriteInternalError(w, err)
		return
	}

	resp := menuItemResponses(items)
	if resp == nil {
		resp = []MenuItemResponse{}
	}
	WriteSuccess(w, resp)
}
