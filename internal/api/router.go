package api

import (
	"net/http"
	"strings"

	"github.com/Rrens/slidecraft/internal/api/handler"
	customMiddleware "github.com/Rrens/slidecraft/internal/api/middleware"
	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/Rrens/slidecraft/internal/repository/redis"
	"github.com/Rrens/slidecraft/internal/security"
	"github.com/Rrens/slidecraft/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Services is everything the HTTP layer serves
type Services struct {
	JWT         *security.JWTManager
	LLM         *llm.Router
	Auth        *service.AuthService
	Generation  *service.GenerationService
	Quota       *service.QuotaService
	Decks       *service.DeckService
	Folders     *service.FolderService
	Uploads     *service.UploadService
	RateLimiter *redis.RateLimiter
	// Backends are pinged by the readiness probe
	Backends map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", customMiddleware.SessionHeader},
		ExposedHeaders:   []string{"X-Request-ID", customMiddleware.SessionHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(svc.Auth, svc.Quota)
	generationHandler := handler.NewGenerationHandler(svc.Generation)
	creditsHandler := handler.NewCreditsHandler(svc.Quota)
	deckHandler := handler.NewDeckHandler(svc.Decks)
	folderHandler := handler.NewFolderHandler(svc.Folders)
	uploadHandler := handler.NewUploadHandler(svc.Uploads, cfg.Upload.MaxBytes)

	authMiddleware := customMiddleware.NewAuthMiddleware(svc.JWT)

	if cfg.Upload.Driver == "local" && cfg.Upload.LocalDir != "" && strings.HasPrefix(cfg.Upload.BaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.Upload.BaseURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Upload.LocalDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(svc.Backends))

		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
		})

		// Routes open to users and anonymous sessions
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Identify)
			if svc.RateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(svc.RateLimiter).Limit)
			}

			r.Get("/llm-providers", handler.ListLLMProviders(svc.LLM))

			r.Route("/credits", func(r chi.Router) {
				r.Get("/", creditsHandler.Get)
				r.Post("/purchase", creditsHandler.Purchase)
			})

			r.Route("/decks", func(r chi.Router) {
				r.Get("/", deckHandler.List)
				r.Post("/", deckHandler.Save)
				r.Post("/generate", generationHandler.Generate)
				r.Post("/improve", generationHandler.Improve)
				r.Post("/export", generationHandler.Export)

				r.Route("/{deckID}", func(r chi.Router) {
					r.Get("/", deckHandler.Get)
					r.Delete("/", deckHandler.Delete)
					r.Get("/export", deckHandler.Export)
				})
			})

			r.Post("/uploads", uploadHandler.Upload)

			r.Route("/folders", func(r chi.Router) {
				r.Get("/", folderHandler.List)
				r.Post("/", folderHandler.Create)
				r.Delete("/{folderID}", folderHandler.Delete)
			})
		})
	})

	return r
}
