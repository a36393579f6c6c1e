// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package composer

import (
	"net/url"
	"strings"
)

// VideoEmbedURL converts a YouTube or Vimeo page URL into the matching
// player embed URL. Unrecognized URLs yield an empty string, which
// causes the video block to be omitted.
func VideoEmbedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case "youtu.be":
		if id := lastPathSegment(u.Path); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case "vimeo.com", "player.vimeo.com":
		if id := lastPathSegment(u.Path); id != "" {
			return "https://player.vimeo.com/video/" + id
		}
	}
	return ""
}

func lastPathSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}
