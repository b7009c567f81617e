package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "modernc.org/sqlite"

	"newsdeck/internal/auth"
	"newsdeck/internal/core"
	newshandlers "newsdeck/internal/news/handlers"
	newsmigrations "newsdeck/internal/news/migrations"
	"newsdeck/internal/news/services"
)

// Server wires the article cache, sync repository and auth service behind an
// HTTP API.
type Server struct {
	config      *core.Config
	logger      *slog.Logger
	coreLogger  *core.Logger
	db          *core.Database
	authService *auth.Service
	repository  *services.SyncRepository
	refresher   *services.Refresher
	server      *http.Server
}

// New builds a fully wired server from environment configuration.
func New(logger *slog.Logger) (*Server, error) {
	config, err := core.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	coreLogger := core.NewLoggerWith(logger)

	db, err := core.OpenDatabase(config.Database.Path, coreLogger)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		config:     config,
		logger:     logger,
		coreLogger: coreLogger,
		db:         db,
	}

	ctx := context.Background()

	// Auth tables are created directly; the article cache goes through
	// versioned migrations.
	if err := srv.initDatabase(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := newsmigrations.NewManager(db, coreLogger.ForComponent("migrations")).Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	srv.authService = auth.NewService(db, coreLogger.ForComponent("auth"))
	if err := srv.authService.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	store := services.NewArticleStore(db, coreLogger.ForComponent("store"))
	client := services.NewNewsAPIClient(coreLogger.ForComponent("newsapi"), &config.Feed)
	srv.repository = services.NewSyncRepository(client, store, coreLogger.ForComponent("sync"))
	srv.refresher = services.NewRefresher(srv.repository, coreLogger.ForComponent("refresher"), &config.Refresh)

	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupRoutes() {
	authHandler := auth.NewHandler(s.authService, s.coreLogger.ForComponent("auth"))
	newsHandler := newshandlers.NewHandlers(s.coreLogger.ForComponent("news"), s.repository, s.refresher)

	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)

	// Health check
	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Session routes
	mux.Post("/auth/signup", authHandler.SignUpHandler)
	mux.Post("/auth/login", authHandler.LoginHandler)
	mux.Post("/auth/logout", authHandler.LogoutHandler)
	mux.Get("/auth/me", authHandler.MeHandler)

	// News routes sit behind the login wall
	mux.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin(s.authService))

		r.Get("/news/headlines", newsHandler.FetchHeadlines)
		r.Post("/news/refresh", newsHandler.Refresh)
		r.Get("/news/search", newsHandler.Search)
		r.Get("/news/articles", newsHandler.ListCached)
		r.Get("/news/articles/favorites", newsHandler.ListFavorites)
		r.Get("/news/articles/category/{category}", newsHandler.ListByCategory)
		r.Get("/news/article", newsHandler.GetArticle)
		r.Put("/news/articles/favorite", newsHandler.SetFavorite)
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: mux,
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting server", "host", s.config.Server.Host, "port", s.config.Server.Port)

	if err := s.refresher.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start refresher: %w", err)
	}

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.refresher.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop refresher: %w", err)
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
