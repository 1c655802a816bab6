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

// Listing Prep — MLS Autofill Command
//
// Standalone CLI that prepares MLS fields for a validated listing and,
// unless run with --preview, opens a browser to fill the MLS form and save
// it as a draft. The operator logs in by hand when the browser opens.
//
// Usage:
//
//	go run ./cmd/autofill/ --listing <uuid> --url https://mls.example.com/new [--preview] [--headless]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightdoor/listingprep/internal/automation"
	"github.com/brightdoor/listingprep/internal/config"
	"github.com/brightdoor/listingprep/internal/mls"
	"github.com/brightdoor/listingprep/internal/objstore"
	"github.com/brightdoor/listingprep/internal/store"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	listingFlag := flag.String("listing", "", "Listing UUID (required)")
	urlFlag := flag.String("url", "", "MLS form URL (required unless --preview)")
	previewFlag := flag.Bool("preview", false, "Print the prepared MLS fields and exit without opening a browser")
	headlessFlag := flag.Bool("headless", false, "Run the browser headless (skips manual login)")
	flag.Parse()

	if *listingFlag == "" {
		fmt.Fprintln(os.Stderr, "error: --listing is required")
		flag.Usage()
		os.Exit(2)
	}
	listingID, err := uuid.Parse(*listingFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid listing id %q\n", *listingFlag)
		os.Exit(2)
	}
	if !*previewFlag && *urlFlag == "" {
		fmt.Fprintln(os.Stderr, "error: --url is required unless --preview is set")
		flag.Usage()
		os.Exit(2)
	}

	if err := mls.VerifyMappings(); err != nil {
		slog.Error("MLS mapping table is invalid", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create Postgres pool", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()

	st, err := store.New(ctx, pgPool)
	if err != nil {
		slog.Error("failed to initialise store", "error", err)
		os.Exit(1)
	}

	if *previewFlag {
		listing, err := st.GetCanonical(ctx, listingID)
		if err != nil {
			slog.Error("failed to load listing", "listing_id", listingID, "error", err)
			os.Exit(1)
		}
		out, err := json.MarshalIndent(mls.PrepareFields(listing), "", "  ")
		if err != nil {
			slog.Error("failed to encode prepared fields", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

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

	autofill := automation.NewService(st, blobs, automation.NewManager(), cfg.ScreenshotDir)
	result, err := autofill.Run(ctx, listingID, *urlFlag, !*headlessFlag)
	if err != nil {
		slog.Error("autofill failed", "listing_id", listingID, "error", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if result.Status != automation.StatusSaved {
		os.Exit(1)
	}
}
