package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/easytalk/easytalk-backend/internal/cache"
	"github.com/easytalk/easytalk-backend/internal/config"
	"github.com/easytalk/easytalk-backend/internal/docstore"
	appHTTP "github.com/easytalk/easytalk-backend/internal/http"
	"github.com/easytalk/easytalk-backend/internal/http/handlers"
	"github.com/easytalk/easytalk-backend/internal/http/middleware"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/repos"
	"github.com/easytalk/easytalk-backend/internal/services"
)

func main() {
	// Env
	if err := godotenv.Load(".env"); err != nil {
		fmt.Println("No .env file loaded, relying on environment")
	}
	cfg, err := config.New()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Document store
	log.Info("Connecting to Firestore", "project_id", cfg.FirestoreProjectID)
	store, err := docstore.NewFirestoreStore(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatal("Could not init document store", "error", err)
	}
	defer store.Close()

	// Repos
	log.Info("Setting up repos")
	progressRepo := repos.NewProgressRepo(store, log)
	sessionRepo := repos.NewSessionRepo(store, log)
	achievementRepo := repos.NewAchievementRepo(store, log)
	catalogRepo := repos.NewCatalogRepo(store, log)

	// The catalog is reference data; seeding is a no-op when it is
	// already populated.
	if err := catalogRepo.SeedDefaults(ctx); err != nil {
		log.Warn("Catalog seeding failed", "error", err)
	}
	catalogCache := cache.NewCatalogCache(catalogRepo, cfg.CatalogCacheTTL, log)

	// Services
	log.Info("Setting up services")
	authService := services.NewAuthService(log, cfg.JWTSecretKey)
	achievementService := services.NewAchievementService(log, achievementRepo, progressRepo, catalogCache)
	progressService := services.NewProgressService(log, progressRepo, achievementService)
	sessionService := services.NewSessionService(log, sessionRepo, achievementService)

	// HTTP
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	server := appHTTP.NewServer(appHTTP.RouterConfig{
		AuthMiddleware:     authMiddleware,
		ProgressHandler:    handlers.NewProgressHandler(log, progressService),
		SessionHandler:     handlers.NewSessionHandler(log, sessionService),
		AchievementHandler: handlers.NewAchievementHandler(log, achievementService),
		CORSOrigins:        cfg.CORSOrigins,
	})

	log.Info("Server starting", "addr", cfg.ListenAddr)
	if err := server.Run(cfg.ListenAddr); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
