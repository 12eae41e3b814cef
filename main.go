package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gojipedia/gojipedia/handlers"
	"github.com/gojipedia/gojipedia/lib/amazon"
	"github.com/gojipedia/gojipedia/lib/auth"
	"github.com/gojipedia/gojipedia/lib/config"
	"github.com/gojipedia/gojipedia/lib/db"
	"github.com/gojipedia/gojipedia/lib/draft"
	"github.com/gojipedia/gojipedia/lib/health"
	"github.com/gojipedia/gojipedia/lib/lock"
	"github.com/gojipedia/gojipedia/lib/refresh"
	"github.com/gojipedia/gojipedia/lib/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type App struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	router *chi.Mux
}

func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	gdb, err := gorm.Open(sqlite.Open(cfg.DB.Path), &gorm.Config{
		Logger: db.NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(gdb, logger); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if cfg.DB.Seed {
		if err := db.Seed(gdb, logger); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	app := &App{
		cfg:    cfg,
		store:  store.New(gdb, logger),
		logger: logger,
		router: chi.NewRouter(),
	}

	app.setupRoutes()
	return app, nil
}

func (a *App) setupRoutes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(60 * time.Second))

	a.router.Get("/healthz", health.Check(a.store.DB()))

	tokens := auth.TokenService{
		Secret:   []byte(a.cfg.Auth.JWTSecret),
		Issuer:   "gojipedia",
		Duration: time.Duration(a.cfg.Auth.TokenLifetime) * time.Hour,
	}

	catalog := amazon.NewClient(a.cfg.Amazon, a.logger)
	locks := lock.NewFileLock(a.logger)
	refreshJob := refresh.NewJob(a.store, catalog, a.cfg.Jobs, a.logger)
	draftWriter := draft.NewWriter(a.store, a.cfg.OpenAI.APIKey, a.logger)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/monsters", handlers.HandleMonsters(a.store))
		r.Get("/monsters/{slug}", handlers.HandleMonster(a.store))
		r.Get("/works", handlers.HandleWorks(a.store))
		r.Get("/works/{slug}", handlers.HandleWork(a.store))
		r.Get("/battles", handlers.HandleBattles(a.store))
		r.Get("/battles/{slug}", handlers.HandleBattle(a.store))
		r.Get("/products", handlers.HandleProducts(a.store))
		r.Get("/collections", handlers.HandleCollections(a.store))
		r.Get("/collections/{slug}", handlers.HandleCollection(a.store))
		r.Get("/posts", handlers.HandlePosts(a.store))
		r.Get("/posts/{slug}", handlers.HandlePost(a.store))
		r.Get("/stories", handlers.HandleStories(a.store))
		r.Get("/timeline", handlers.HandleTimeline(a.store))
		r.Get("/featured", handlers.HandleFeatured(a.store))
		r.Get("/stats", handlers.HandleStats(a.store))

		r.Post("/admin/login", handlers.HandleLogin(a.store, tokens))

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware)

			r.Get("/admin/monsters", handlers.HandleAdminMonsters(a.store))
			r.Post("/admin/monsters", handlers.HandleSaveMonster(a.store))
			r.Get("/admin/works", handlers.HandleAdminWorks(a.store))
			r.Get("/admin/products", handlers.HandleAdminProducts(a.store))
			r.Get("/admin/products/suggested", handlers.HandleSuggestedProducts(a.store))
			r.Post("/admin/products/{id}/approve", handlers.HandleApproveProduct(a.store))

			r.Post("/admin/jobs/product-refresh", handlers.HandleRunJob("product_refresh", refreshJob, locks))
			r.Post("/admin/jobs/content-draft", handlers.HandleRunJob("content_draft", draftWriter, locks))
		})
	})
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("GOJIPEDIA_AUTH_JWTSECRET is not set, admin endpoints are effectively disabled")
	}

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to start", slog.Any("error", err))
		os.Exit(1)
	}

	addr := ":" + cfg.Server.Port
	logger.Info("Listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, app.router); err != nil {
		logger.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
