package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/slidecraft/internal/api"
	"github.com/Rrens/slidecraft/internal/api/handler"
	"github.com/Rrens/slidecraft/internal/bootstrap"
	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/logging"
	"github.com/Rrens/slidecraft/internal/repository/mongo"
	"github.com/Rrens/slidecraft/internal/repository/postgres"
	"github.com/Rrens/slidecraft/internal/repository/redis"
	"github.com/Rrens/slidecraft/internal/security"
	"github.com/Rrens/slidecraft/internal/service"
	"github.com/Rrens/slidecraft/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := ""
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			envLoaded = p
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if !cfg.IsProduction() {
		cfg.Logging.Format = "console"
	}
	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if envLoaded != "" {
		log.Debug().Str("path", envLoaded).Msg("Loaded .env")
	} else {
		log.Warn().Msg(".env file not found in any standard location")
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting slidecraft API server")

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	backends := map[string]handler.Pinger{
		"postgres": db,
		"redis":    redisClient,
	}

	userRepo := postgres.NewUserRepository(db)

	// Decks of registered users live in postgres unless mongo is selected
	var userDecks domain.DeckStore = postgres.NewDeckRepository(db)
	if cfg.Storage.Driver == "mongo" {
		mongoStore, err := mongo.Connect(ctx, cfg.Storage.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer mongoStore.Close(context.Background())
		userDecks = mongoStore
		backends["mongo"] = mongoStore
	}

	stores := service.Stores{
		UserDecks:    userDecks,
		UserQuota:    userRepo,
		SessionDecks: redis.NewDeckStore(redisClient, cfg.Redis.SessionTTL),
		SessionQuota: redis.NewQuotaStore(redisClient, cfg.Redis.SessionTTL),
	}

	policy, err := bootstrap.Policy(cfg.Quota)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid quota configuration")
	}

	uploader, err := storage.New(cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upload storage")
	}

	llmRouter := bootstrap.NewLLMRouter(cfg.LLM)
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	folderRepo := postgres.NewFolderRepository(db)
	locks := service.NewOwnerLocks()

	router := api.NewRouter(cfg, api.Services{
		JWT:         jwtManager,
		LLM:         llmRouter,
		Auth:        service.NewAuthService(userRepo, jwtManager),
		Generation:  service.NewGenerationService(llmRouter, stores, policy, postgres.NewGenerationRepository(db), locks),
		Quota:       service.NewQuotaService(stores, policy, locks),
		Decks:       service.NewDeckService(stores, folderRepo),
		Folders:     service.NewFolderService(folderRepo),
		Uploads:     service.NewUploadService(uploader, cfg.Upload.MaxBytes),
		RateLimiter: redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst),
		Backends:    backends,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
