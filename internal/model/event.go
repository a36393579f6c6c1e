package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventLevels lists all event level values.
var EventLevels = []string{EventLevelInfo, EventLevelWarning, EventLevelError}

// IsValidEventLevel reports whether level is a known event level.
func IsValidEventLevel(level string) bool {
	for _, l := range EventLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryContent = "content"
	EventCategoryMedia   = "media"
	EventCategoryUser    = "user"
	EventCategoryConfig  = "config"
	EventCategorySystem  = "system"
	EventCategoryCache   = "cache"
)

// EventCategories lists all event category values.
var EventCategories = []string{
	EventCategoryAuth, EventCategoryContent, EventCategoryMedia,
	EventCategoryUser, EventCategoryConfig, EventCategorySystem,
	EventCategoryCache,
}

// IsValidEventCategory reports whether category is a known event category.
func IsValidEventCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}
