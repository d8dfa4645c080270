// Command seedcatalog populates the achievement catalog collection with
// the default items. It skips the write when the catalog already has
// documents, so it is safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/easytalk/easytalk-backend/internal/config"
	"github.com/easytalk/easytalk-backend/internal/docstore"
	"github.com/easytalk/easytalk-backend/internal/logger"
	"github.com/easytalk/easytalk-backend/internal/repos"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Println("No .env file loaded, relying on environment")
	}
	cfg, err := config.New()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	store, err := docstore.NewFirestoreStore(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatal("Could not init document store", "error", err)
	}

	catalogRepo := repos.NewCatalogRepo(store, log)
	if err := catalogRepo.SeedDefaults(ctx); err != nil {
		log.Fatal("Catalog seeding failed", "error", err)
	}
	log.Info("Catalog seeding complete")
}
