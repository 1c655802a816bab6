// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Listing Prep — API & Worker Service
//
// Entry point for the listing preparation service. It:
//  1. Loads configuration from config.yaml and the environment
//  2. Connects to PostgreSQL, Redis, MinIO, and the Gemini API
//  3. Serves the HTTP API (listings, documents, images, MLS, automation)
//  4. Consumes extraction/enrichment tasks from the Redis queue
//  5. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/brightdoor/listingprep/internal/ai"
	"github.com/brightdoor/listingprep/internal/automation"
	"github.com/brightdoor/listingprep/internal/config"
	"github.com/brightdoor/listingprep/internal/enrich"
	"github.com/brightdoor/listingprep/internal/geo"
	"github.com/brightdoor/listingprep/internal/httpapi"
	"github.com/brightdoor/listingprep/internal/mls"
	"github.com/brightdoor/listingprep/internal/objstore"
	"github.com/brightdoor/listingprep/internal/pipeline"
	"github.com/brightdoor/listingprep/internal/queue"
	"github.com/brightdoor/listingprep/internal/store"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting listing prep service")

	// The mapping table is static; a bad canonical path is a programming
	// error worth failing fast on.
	if err := mls.VerifyMappings(); err != nil {
		slog.Error("MLS mapping table is invalid", "error", err)
		os.Exit(1)
	}

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Connect to PostgreSQL ---
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	if err := pgPool.Ping(ctx); err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to PostgreSQL")

	st, err := store.New(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise store", "error", err)
		os.Exit(1)
	}

	// --- Connect to Redis ---
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)

	publisher := queue.NewPublisher(rdb, cfg.TasksQueue)
	if err := publisher.Ping(ctx); err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to Redis")

	// --- Object storage ---
	blobs, err := objstore.New(ctx, objstore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		slog.Error("failed to connect to object storage", "error", err)
		os.Exit(1)
	}

	// --- AI client ---
	aiClient, err := ai.New(ctx, ai.Config{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		slog.Error("failed to create AI client", "error", err)
		os.Exit(1)
	}

	// --- Services ---
	mapsClient := geo.NewClient(&http.Client{Timeout: 15 * time.Second}, "", cfg.MapsAPIKey)
	geoService := geo.NewService(mapsClient, geo.NewCache(rdb))

	extraction := pipeline.NewService(st, blobs, aiClient)
	enrichment := enrich.NewService(st, blobs, aiClient, geoService)

	sessions := automation.NewManager()
	autofill := automation.NewService(st, blobs, sessions, cfg.ScreenshotDir)

	// --- Task consumer ---
	consumer := queue.NewConsumer(rdb, cfg.TasksQueue, func(ctx context.Context, task queue.Task) error {
		switch task.Kind {
		case queue.TaskExtract:
			_, err := extraction.Run(ctx, task.ListingID)
			return err
		case queue.TaskEnrich:
			_, err := enrichment.Run(ctx, task.ListingID, enrich.DefaultOptions())
			return err
		default:
			return fmt.Errorf("unknown task kind %q", task.Kind)
		}
	})

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("task consumer stopped", "error", err)
		}
	}()

	// --- HTTP API ---
	handler := httpapi.NewHandler(st, blobs, publisher, enrichment, autofill, sessions)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler.Router(),
	}

	go func() {
		slog.Info("HTTP API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	// --- Graceful shutdown ---
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		slog.Info("received shutdown signal", "signal", s.String())
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}

	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		slog.Warn("task consumer did not stop in time")
	}

	slog.Info("listing prep service stopped")
}
