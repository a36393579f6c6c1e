package model

// Menu item link types
const (
	LinkTypePage     = "page"
	LinkTypeSection  = "section"
	LinkTypeExternal = "external"
)

// ValidLinkTypes contains all valid menu item link types.
var ValidLinkTypes = []string{LinkTypePage, LinkTypeSection, LinkTypeExternal}

// IsValidLinkType checks if a link type value is valid.
func IsValidLinkType(t string) bool {
	for _, lt := range ValidLinkTypes {
		if lt == t {
			return true
		}
	}
	return false
}
