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

// Package store provides the Postgres-backed persistence layer for
// listings, their canonical payloads, uploaded documents and images, and
// the extraction fact audit trail.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound means the listing (or child record) does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrLocked means the canonical payload is validated and locked;
	// writes are rejected until it is unlocked.
	ErrLocked = errors.New("store: canonical is locked")
)

// Store provides CRUD operations for listing state in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store backed by the given Postgres pool. It ensures all
// tables exist on creation.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure listing schema: %w", err)
	}
	slog.Info("listing store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			status     TEXT DEFAULT 'draft',
			created_by TEXT DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS canonical_listings (
			listing_id        UUID PRIMARY KEY REFERENCES listings(id) ON DELETE CASCADE,
			schema_version    TEXT NOT NULL,
			canonical_payload JSONB NOT NULL,
			mode              TEXT DEFAULT 'draft',
			locked            BOOLEAN DEFAULT FALSE,
			validated_at      TIMESTAMPTZ,
			validated_by      TEXT,
			updated_at        TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS documents (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			listing_id   UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			filename     TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			uploaded_at  TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_documents_listing ON documents(listing_id);

		CREATE TABLE IF NOT EXISTS listing_images (
			id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			listing_id         UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			storage_path       TEXT NOT NULL,
			original_filename  TEXT NOT NULL,
			ai_suggested_label TEXT,
			final_label        TEXT,
			display_order      INT DEFAULT 0,
			is_primary         BOOLEAN DEFAULT FALSE,
			uploaded_at        TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_images_listing ON listing_images(listing_id);

		CREATE TABLE IF NOT EXISTS image_ai_analysis (
			image_id          UUID PRIMARY KEY REFERENCES listing_images(id) ON DELETE CASCADE,
			description       TEXT,
			detected_features JSONB,
			analyzed_at       TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS extracted_field_facts (
			id              BIGSERIAL PRIMARY KEY,
			listing_id      UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
			canonical_path  TEXT NOT NULL,
			extracted_value JSONB,
			source_type     TEXT NOT NULL,
			source_ref      TEXT NOT NULL,
			status          TEXT DEFAULT 'proposed',
			created_at      TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(listing_id, canonical_path, source_ref)
		);
		CREATE INDEX IF NOT EXISTS idx_facts_listing ON extracted_field_facts(listing_id);
	`)
	return err
}
