package cmd

import (
	"context"
	"fmt"

	"vendsync/core/config"
	"vendsync/core/database"
	"vendsync/core/logger"
	"vendsync/core/snapshot"
	"vendsync/core/storage"
	"vendsync/feature/shopify"
	"vendsync/feature/sync"
	"vendsync/feature/vendus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// pipeline bundles the wired components shared by the server and CLI commands.
type pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	service *sync.Service
}

// buildPipeline loads configuration and wires the full sync pipeline.
// The database is optional: without it the service uses the configured
// reference list and keeps no run history.
func buildPipeline(ctx context.Context) (*pipeline, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
		logg.Info("Connected to database")
	}

	store, err := buildSnapshotStore(ctx, cfg, logg)
	if err != nil {
		return nil, err
	}

	source, err := vendus.NewClient(cfg.Vendus, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create source client: %w", err)
	}
	scanner := vendus.NewScanner(source, logg)

	dest, err := shopify.NewClient(cfg.Shopify, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination client: %w", err)
	}

	svc := sync.NewService(cfg.Sync, scanner, store, dest, cfg.Shopify.TagPrefix, db, logg)
	if err := svc.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &pipeline{cfg: cfg, logger: logg, db: db, service: svc}, nil
}

// buildSnapshotStore selects the snapshot backend: object storage when
// configured, the local filesystem otherwise.
func buildSnapshotStore(ctx context.Context, cfg *config.Config, logg *zap.Logger) (snapshot.Store, error) {
	if cfg.Sync.SnapshotBackend == "s3" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		store, err := snapshot.NewObjectStore(ctx, client, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare snapshot bucket: %w", err)
		}
		logg.Info("Using object storage snapshots", zap.String("bucket", cfg.Storage.Bucket))
		return store, nil
	}

	store, err := snapshot.NewFileStore(cfg.Sync.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare snapshot directory: %w", err)
	}
	return store, nil
}
