// Package server is the composition root: it builds every service from the
// configuration, mounts the routes and runs the HTTP server with graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bloom/internal/auth"
	"github.com/sakif/bloom/internal/config"
	"github.com/sakif/bloom/internal/handler"
	"github.com/sakif/bloom/internal/middleware"
	"github.com/sakif/bloom/internal/pagecache"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/service"
	"github.com/sakif/bloom/internal/suggest"
	"github.com/sakif/bloom/internal/view"
	"github.com/sakif/bloom/web"
)

const shutdownTimeout = 30 * time.Second

// Server owns the store and page cache and closes them on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
	pages  *pagecache.Cache // nil when cache.max_cost is 0
}

// New opens the configured store and builds the server on it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds the server on an already open store. The server takes
// ownership of store.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if cfg.Cache.MaxCost > 0 {
		pages, err := pagecache.New(cfg.Cache.MaxCost, logger)
		if err != nil {
			return nil, fmt.Errorf("creating page cache: %w", err)
		}
		s.pages = pages
	}

	if err := s.setupRoutes(); err != nil {
		s.closeCache()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler is the root handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	images, err := openImageStore(cfg.Storage, s.logger)
	if err != nil {
		return fmt.Errorf("opening image store: %w", err)
	}

	renderer, err := view.NewRenderer(web.FS, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	if cfg.AI.APIKey == "" {
		s.logger.Warn("ai.api_key not set; project suggestions will fail")
	}
	flow := suggest.NewFlow(suggest.NewOpenAIGenerator(suggest.OpenAIConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}), s.logger)

	// A nil *pagecache.Cache must not become a non-nil Invalidator.
	var invalidator service.Invalidator = service.NopInvalidator{}
	if s.pages != nil {
		invalidator = s.pages
	}

	postService := service.NewPostService(s.store, s.store, images.store, invalidator, s.logger)
	profileService := service.NewProfileService(s.store, postService, s.logger)
	featuredService := service.NewFeaturedService(s.store, invalidator, s.logger)
	feedbackService := service.NewFeedbackService(s.store, s.logger)
	suggestionService := service.NewSuggestionService(s.store, flow, s.logger)
	authService := service.NewAuthService(s.store, tokens, invalidator, s.logger)

	api := handler.NewAPIHandler(postService, profileService, featuredService, feedbackService, suggestionService, s.logger)
	pages := handler.NewPageHandler(postService, profileService, featuredService, renderer, images.store != nil, s.logger)
	limiter := middleware.NewRateLimiter(cfg.AI.RequestsPerMinute, cfg.AI.Burst, s.logger)

	// === Global middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.Session(tokens))

	// === Static files ===
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return fmt.Errorf("opening static assets: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if images.files != nil {
		s.router.Handle(images.mountPath+"/*", http.StripPrefix(images.mountPath, images.files))
	}

	s.router.Get("/healthz", handler.HandleHealth)

	// === Pages ===
	s.router.Group(func(r chi.Router) {
		if s.pages != nil {
			r.Use(s.pages.Middleware)
		}
		r.Get("/", pages.HandleHome)
		r.Get("/category/{slug}", pages.HandleCategory)
		r.Get("/profile/{userID}", pages.HandleProfile)
		r.Get("/post/{postID}", pages.HandlePost)
	})
	s.router.NotFound(pages.HandleNotFound)

	// === API ===
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/posts", api.HandleListPosts)
		r.Get("/posts/{id}", api.HandleGetPost)
		r.Post("/posts/{id}/like", api.HandleLike)
		r.Get("/featured", api.HandleFeatured)
		r.Get("/users/{id}", api.HandleProfile)
		r.Post("/feedback", api.HandleFeedback)
		r.With(limiter.Middleware).Post("/suggestions", api.HandleSuggestions)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/posts", api.HandleCreatePost)
			r.Post("/posts/{id}/comments", api.HandleComment)
			r.Delete("/posts/{id}", api.HandleDeletePost)
			r.Get("/me", api.HandleMe)
		})
	})

	// === Auth ===
	var github handler.IdentityProvider
	if cfg.Auth.GitHubEnabled() {
		github = auth.NewGitHubProvider(cfg.Auth.GitHubClientID, cfg.Auth.GitHubClientSecret, cfg.Auth.GitHubCallbackURL)
	} else {
		s.logger.Warn("GitHub OAuth not configured; sign-in is disabled")
	}
	authHandler := handler.NewAuthHandler(github, authService, cfg.Server.SecureCookies, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
		r.Post("/logout", authHandler.HandleLogout)
	})

	return nil
}

// Start serves HTTP until SIGINT or SIGTERM, drains in-flight requests for
// up to 30 seconds, then closes the store and page cache.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", s.config.Server.BaseURL),
			slog.String("store", s.config.Store.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Close releases the store and the page cache.
func (s *Server) Close() error {
	s.closeCache()
	if err := s.store.Close(); err != nil {
		s.logger.Error("closing store", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *Server) closeCache() {
	if s.pages != nil {
		s.pages.Close()
		s.pages = nil
	}
}
