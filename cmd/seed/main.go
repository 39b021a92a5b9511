// Command seed creates or resets the admin account and optionally imports a
// product catalog from a CSV file on disk or in S3.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"mini-pos/internal/catalogimport"
	"mini-pos/internal/config"
	"mini-pos/internal/database"
	"mini-pos/internal/model"
	"mini-pos/internal/repository"
	"mini-pos/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	username := flag.String("username", envOr("ADMIN_USERNAME", "admin"), "admin username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (default $ADMIN_PASSWORD)")
	catalogPath := flag.String("catalog", "", "catalog CSV to import, optionally gzipped")
	flag.Parse()

	if *password == "" {
		return fmt.Errorf("admin password is required (-password or ADMIN_PASSWORD)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Seeding never opens sessions.
	users := service.NewUserService(repository.NewUserRepository(pool, logger), nil, logger)

	admin, err := users.EnsureAdmin(ctx, *username, *password)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	logger.Info().Str("username", admin.Username).Msg("admin user ready")

	if *catalogPath == "" {
		return nil
	}

	rows, err := newCatalogLoader(ctx, cfg.S3, logger).Load(ctx, *catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	catalog := service.NewCatalogService(
		repository.NewCategoryRepository(pool, logger),
		repository.NewProductRepository(pool, logger),
		discardEmitter{},
		logger,
	)

	result, err := catalogimport.NewImporter(catalog, logger).Import(ctx, rows)
	if err != nil {
		return fmt.Errorf("catalog import failed: %w", err)
	}

	for _, skipped := range result.Skipped {
		logger.Warn().Err(skipped).Msg("row not imported")
	}

	return nil
}

// newCatalogLoader reads from S3 when enabled, falling back to local files.
func newCatalogLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) catalogimport.Loader {
	fileLoader := catalogimport.NewFileLoader(logger)
	if !cfg.Enabled {
		return fileLoader
	}

	s3Loader, err := catalogimport.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
		return fileLoader
	}

	return catalogimport.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// discardEmitter drops stock events; nothing is listening during a seed run.
type discardEmitter struct{}

func (discardEmitter) Emit(...model.Event) {}
