// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/pagecms-go/internal/cache"
	"github.com/olegiv/pagecms-go/internal/config"
	"github.com/olegiv/pagecms-go/internal/handler"
	"github.com/olegiv/pagecms-go/internal/handler/api"
	"github.com/olegiv/pagecms-go/internal/logging"
	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/render"
	"github.com/olegiv/pagecms-go/internal/service"
	"github.com/olegiv/pagecms-go/internal/session"
	"github.com/olegiv/pagecms-go/internal/store"
	"github.com/olegiv/pagecms-go/internal/version"
	"github.com/olegiv/pagecms-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "PageCMS - Page Builder CMS\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_DB_PATH           SQLite database path (default: ./data/pagecms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_SITE_URL          Canonical site URL for sitemap and SEO tags\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_UPLOADS_DIR       Media upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECMS_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/pagecms-go\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(buildInfo().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the Event Log database
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize cache
	cacheConfig := cache.Config{
		Type:            "memory",
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = "redis"
	}
	cacheManager := cache.NewManager(cache.NewCache(cacheConfig), cacheConfig.DefaultTTL)
	defer func() {
		if err := cacheManager.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	slog.Info("cache manager initialized", "backend", cacheConfig.Type)

	// Initialize services
	mediaService := service.NewMediaService(db, cfg.UploadsDir)
	pageService := service.NewPageService(db, mediaService)
	menuService := service.NewMenuService(db)

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Create router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CompressSelective(5, 1024))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	// CSRF protection, applied per route group; API routes stay exempt
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	adminHandler := handler.NewAdminHandler(db, renderer, sessionManager)
	pagesHandler := handler.NewPagesHandler(db, renderer, sessionManager, pageService, mediaService, cacheManager)
	sectionsHandler := handler.NewSectionsHandler(db, renderer, sessionManager, cacheManager)
	blocksHandler := handler.NewBlocksHandler(db, renderer, sessionManager, cacheManager)
	galleryHandler := handler.NewGalleryHandler(db, renderer, sessionManager, cacheManager)
	menuHandler := handler.NewMenuHandler(db, renderer, sessionManager, menuService, cacheManager)
	mediaHandler := handler.NewMediaHandler(db, renderer, sessionManager, mediaService, cacheManager)
	settingsHandler := handler.NewSettingsHandler(db, renderer, sessionManager, cacheManager)
	usersHandler := handler.NewUsersHandler(db, renderer, sessionManager)
	eventsHandler := handler.NewEventsHandler(db, renderer, sessionManager)
	cacheHandler := handler.NewCacheHandler(db, renderer, sessionManager, cacheManager)
	apiKeysHandler := handler.NewAPIKeysHandler(db, renderer, sessionManager)
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir, buildInfo())
	frontendHandler := handler.NewFrontendHandler(handler.FrontendConfig{
		DB:                db,
		Renderer:          renderer,
		PageService:       pageService,
		MenuService:       menuService,
		CacheManager:      cacheManager,
		SiteURL:           cfg.SiteURL,
		RobotsDisallowAll: cfg.RobotsDisallowAll,
	})
	apiHandler := api.NewHandler(db, pageService, menuService, mediaService)

	// Health check (details for authenticated callers)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))
		r.Get("/health", healthHandler.Check)
	})

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(csrfMiddleware)
		r.Use(middleware.OptionalLoadUser(sessionManager, db))
		r.Use(middleware.LoadSiteConfig(db))
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.LoadSiteConfig(db))

		// Editor routes (editor + admin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditor())

			r.Get(handler.RouteRoot, adminHandler.Dashboard)
			r.Get(handler.RouteEvents, eventsHandler.List)

			// Pages
			r.Get(handler.RoutePages, pagesHandler.List)
			r.Get(handler.RoutePages+handler.RouteSuffixNew, pagesHandler.NewForm)
			r.Post(handler.RoutePages, pagesHandler.Create)
			r.Get(handler.RoutePages+handler.RouteParamID, pagesHandler.EditForm)
			r.Post(handler.RoutePages+handler.RouteParamID, pagesHandler.Update)
			r.Post(handler.RoutePages+handler.RouteParamID+"/delete", pagesHandler.Delete)
			r.Post(handler.RoutePages+handler.RouteParamID+handler.RouteSuffixPublish, pagesHandler.Publish)
			r.Post(handler.RoutePages+handler.RouteParamID+handler.RouteSuffixHome, pagesHandler.SetHome)
			r.Get(handler.RoutePages+handler.RouteParamID+handler.RouteSuffixEditor, pagesHandler.Editor)
			r.Get(handler.RoutePages+handler.RouteParamID+"/preview", pagesHandler.Preview)

			// Sections (created under a page, managed by ID)
			r.Post(handler.RoutePages+handler.RouteParamID+handler.RouteSections, sectionsHandler.Create)
			r.Post(handler.RoutePages+handler.RouteParamID+handler.RouteSections+handler.RouteSuffixReorder, sectionsHandler.Reorder)
			r.Post(handler.RouteSections+handler.RouteParamID, sectionsHandler.Update)
			r.Post(handler.RouteSections+handler.RouteParamID+"/visibility", sectionsHandler.ToggleVisibility)
			r.Post(handler.RouteSections+handler.RouteParamID+"/delete", sectionsHandler.Delete)

			// Blocks (created under a section, managed by ID)
			r.Post(handler.RouteSections+handler.RouteParamID+handler.RouteBlocks, blocksHandler.Create)
			r.Post(handler.RouteSections+handler.RouteParamID+handler.RouteBlocks+handler.RouteSuffixReorder, blocksHandler.Reorder)
			r.Post(handler.RouteBlocks+handler.RouteParamID, blocksHandler.Update)
			r.Post(handler.RouteBlocks+handler.RouteParamID+"/delete", blocksHandler.Delete)

			// Gallery images (created under a gallery block, managed by ID)
			r.Post(handler.RouteBlocks+handler.RouteParamID+handler.RouteGallery, galleryHandler.Add)
			r.Post(handler.RouteBlocks+handler.RouteParamID+handler.RouteGallery+handler.RouteSuffixReorder, galleryHandler.Reorder)
			r.Post(handler.RouteGallery+handler.RouteParamID, galleryHandler.Update)
			r.Post(handler.RouteGallery+handler.RouteParamID+"/delete", galleryHandler.Delete)

			// Menu
			r.Get(handler.RouteMenu, menuHandler.List)
			r.Post(handler.RouteMenu, menuHandler.Create)
			r.Post(handler.RouteMenu+handler.RouteSuffixReorder, menuHandler.Reorder)
			r.Post(handler.RouteMenu+handler.RouteParamID, menuHandler.Update)
			r.Post(handler.RouteMenu+handler.RouteParamID+"/delete", menuHandler.Delete)

			// Media library
			r.Get(handler.RouteMedia, mediaHandler.Library)
			r.Post(handler.RouteMedia+handler.RouteSuffixUpload, mediaHandler.Upload)
			r.Get(handler.RouteMedia+handler.RouteParamID, mediaHandler.EditForm)
			r.Post(handler.RouteMedia+handler.RouteParamID, mediaHandler.Update)
			r.Post(handler.RouteMedia+handler.RouteParamID+"/delete", mediaHandler.Delete)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Get(handler.RouteSettings, settingsHandler.Form)
			r.Post(handler.RouteSettings, settingsHandler.Update)

			r.Get(handler.RouteUsers, usersHandler.List)
			r.Get(handler.RouteUsers+handler.RouteSuffixNew, usersHandler.NewForm)
			r.Post(handler.RouteUsers, usersHandler.Create)
			r.Get(handler.RouteUsers+handler.RouteParamID, usersHandler.EditForm)
			r.Post(handler.RouteUsers+handler.RouteParamID, usersHandler.Update)
			r.Post(handler.RouteUsers+handler.RouteParamID+"/delete", usersHandler.Delete)

			r.Get(handler.RouteAPIKeys, apiKeysHandler.List)
			r.Post(handler.RouteAPIKeys, apiKeysHandler.Create)
			r.Post(handler.RouteAPIKeys+handler.RouteParamID+"/toggle", apiKeysHandler.Toggle)
			r.Post(handler.RouteAPIKeys+handler.RouteParamID+"/delete", apiKeysHandler.Delete)

			r.Get(handler.RouteCache, cacheHandler.Stats)
			r.Post(handler.RouteCache+"/clear", cacheHandler.Clear)
		})
	})

	// REST API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)
		r.Use(apiRateLimiter.Middleware())

		r.Get("/status", apiHandler.Status)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAPIKeyAuth(db))
			r.Get(handler.RoutePages, apiHandler.ListPages)
			r.Get(handler.RoutePages+"/home", apiHandler.GetHomepage)
			r.Get(handler.RoutePages+handler.RouteParamSlug, apiHandler.GetPage)
			r.Get(handler.RouteMenu, apiHandler.GetMenu)
			r.Get(handler.RouteMedia, apiHandler.ListMedia)
			r.Get(handler.RouteMedia+handler.RouteParamID, apiHandler.GetMedia)
			r.Get("/config", apiHandler.GetSiteConfig)
		})
	})
	slog.Info("REST API v1 mounted at /api/v1")

	// Static file serving
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Uploaded media
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	// Public frontend routes (catch-all slug registered last)
	r.Group(func(r chi.Router) {
		r.Get("/sitemap.xml", frontendHandler.Sitemap)
		r.Get("/robots.txt", frontendHandler.Robots)
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteParamSlug, frontendHandler.Page)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		frontendHandler.NotFound(w, req)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
