package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixUpload is the suffix for upload routes.
	RouteSuffixUpload = "/upload"
	// RouteSuffixReorder is the suffix for reorder routes.
	RouteSuffixReorder = "/reorder"
	// RouteSuffixEditor is the suffix for the page editor route.
	RouteSuffixEditor = "/editor"
	// RouteSuffixPublish is the suffix for the publish toggle route.
	RouteSuffixPublish = "/publish"
	// RouteSuffixHome is the suffix for the homepage assignment route.
	RouteSuffixHome = "/home"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RoutePages is the pages admin route.
	RoutePages = "/pages"
	// RouteSections is the sections admin route.
	RouteSections = "/sections"
	// RouteBlocks is the blocks admin route.
	RouteBlocks = "/blocks"
	// RouteGallery is the gallery admin route.
	RouteGallery = "/gallery"
	// RouteMenu is the menu admin route.
	RouteMenu = "/menu"
	// RouteMedia is the media admin route.
	RouteMedia = "/media"
	// RouteSettings is the site settings admin route.
	RouteSettings = "/settings"
	// RouteUsers is the users admin route.
	RouteUsers = "/users"
	// RouteEvents is the event log admin route.
	RouteEvents = "/events"
	// RouteAPIKeys is the API keys admin route.
	RouteAPIKeys = "/api-keys"
	// RouteCache is the cache admin route.
	RouteCache = "/cache"
)

const (
	redirectAdmin         = "/admin"
	redirectAdminPages    = redirectAdmin + RoutePages
	redirectAdminPagesNew = redirectAdminPages + RouteSuffixNew
	redirectAdminMenu     = redirectAdmin + RouteMenu
	redirectAdminMenuNew  = redirectAdminMenu + RouteSuffixNew
	redirectAdminMedia    = redirectAdmin + RouteMedia
	redirectAdminSettings = redirectAdmin + RouteSettings
	redirectAdminUsers    = redirectAdmin + RouteUsers
	redirectAdminUsersNew = redirectAdminUsers + RouteSuffixNew
	redirectAdminAPIKeys  = redirectAdmin + RouteAPIKeys
	redirectAdminEvents   = redirectAdmin + RouteEvents
	redirectAdminCache    = redirectAdmin + RouteCache
	redirectLogin         = RouteLogin

	redirectAdminPagesID       = redirectAdminPages + "/%d"
	redirectAdminPagesIDEditor = redirectAdminPagesID + RouteSuffixEditor
	redirectAdminMenuID        = redirectAdminMenu + "/%d"
	redirectAdminMediaID       = redirectAdminMedia + "/%d"
)

// Utility constants used by main.go.
const (
	// UploadsDirPath is the default uploads directory path.
	UploadsDirPath = "./uploads"
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
)
