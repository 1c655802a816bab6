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

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightdoor/listingprep/internal/photos"
)

// Image is one uploaded listing photo.
type Image struct {
	ID               uuid.UUID
	ListingID        uuid.UUID
	StoragePath      string
	OriginalFilename string
	AISuggestedLabel *string
	FinalLabel       *string
	DisplayOrder     int
	IsPrimary        bool
	UploadedAt       time.Time
}

// EffectiveLabel is the room label sequencing uses: the user's final label
// when set, else the AI suggestion, else "other".
func (i Image) EffectiveLabel() string {
	if i.FinalLabel != nil && *i.FinalLabel != "" {
		return *i.FinalLabel
	}
	if i.AISuggestedLabel != nil && *i.AISuggestedLabel != "" {
		return *i.AISuggestedLabel
	}
	return "other"
}

// AddImage records an uploaded image and returns its ID. Uploads are
// refused once the listing's canonical is locked.
func (s *Store) AddImage(ctx context.Context, listingID uuid.UUID, storagePath, originalFilename string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO listing_images (listing_id, storage_path, original_filename)
		SELECT $1, $2, $3
		FROM canonical_listings cl
		WHERE cl.listing_id = $1 AND cl.locked = false
		RETURNING id
	`, listingID, storagePath, originalFilename).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		locked, lockErr := s.IsLocked(ctx, listingID)
		if lockErr != nil {
			return uuid.Nil, lockErr
		}
		if locked {
			return uuid.Nil, ErrLocked
		}
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert image: %w", err)
	}
	return id, nil
}

// GetImage retrieves a single image record.
func (s *Store) GetImage(ctx context.Context, imageID uuid.UUID) (*Image, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, listing_id, storage_path, original_filename,
		       ai_suggested_label, final_label, display_order, is_primary, uploaded_at
		FROM listing_images
		WHERE id = $1
	`, imageID)
	return scanImage(row)
}

// ListImages returns all images for a listing, oldest upload first.
func (s *Store) ListImages(ctx context.Context, listingID uuid.UUID) ([]Image, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, listing_id, storage_path, original_filename,
		       ai_suggested_label, final_label, display_order, is_primary, uploaded_at
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY uploaded_at
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("select images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var i Image
		if err := rows.Scan(&i.ID, &i.ListingID, &i.StoragePath, &i.OriginalFilename,
			&i.AISuggestedLabel, &i.FinalLabel, &i.DisplayOrder, &i.IsPrimary, &i.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, i)
	}
	return images, rows.Err()
}

// ListUnanalyzedImages returns the listing's images with no vision
// analysis row yet, oldest upload first.
func (s *Store) ListUnanalyzedImages(ctx context.Context, listingID uuid.UUID) ([]Image, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT li.id, li.listing_id, li.storage_path, li.original_filename,
		       li.ai_suggested_label, li.final_label, li.display_order, li.is_primary, li.uploaded_at
		FROM listing_images li
		LEFT JOIN image_ai_analysis ia ON ia.image_id = li.id
		WHERE li.listing_id = $1 AND ia.image_id IS NULL
		ORDER BY li.uploaded_at
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("select unanalyzed images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var i Image
		if err := rows.Scan(&i.ID, &i.ListingID, &i.StoragePath, &i.OriginalFilename,
			&i.AISuggestedLabel, &i.FinalLabel, &i.DisplayOrder, &i.IsPrimary, &i.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, i)
	}
	return images, rows.Err()
}

// SequenceView converts stored images into the sequencing package's view,
// assigning 1-based upload order by upload time.
func SequenceView(images []Image) []photos.Image {
	view := make([]photos.Image, len(images))
	for i, img := range images {
		view[i] = photos.Image{
			ID:          img.ID.String(),
			Label:       img.EffectiveLabel(),
			UploadOrder: i + 1,
			IsPrimary:   img.IsPrimary,
		}
	}
	return view
}

// DeleteImage removes an image row (the analysis row cascades) and returns
// its storage path so the caller can delete the stored object. Deletion is
// refused once the listing's canonical is locked.
func (s *Store) DeleteImage(ctx context.Context, imageID uuid.UUID) (string, error) {
	var storagePath string
	err := s.pool.QueryRow(ctx, `
		DELETE FROM listing_images li
		USING canonical_listings cl
		WHERE li.id = $1 AND cl.listing_id = li.listing_id AND cl.locked = false
		RETURNING li.storage_path
	`, imageID).Scan(&storagePath)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", s.imageWriteRefused(ctx, imageID)
	}
	if err != nil {
		return "", fmt.Errorf("delete image: %w", err)
	}
	return storagePath, nil
}

// SetFinalLabel sets the user-assigned room label for an image. Label
// edits are refused once the listing's canonical is locked.
func (s *Store) SetFinalLabel(ctx context.Context, imageID uuid.UUID, label string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE listing_images li
		SET final_label = $1
		FROM canonical_listings cl
		WHERE li.id = $2 AND cl.listing_id = li.listing_id AND cl.locked = false
	`, label, imageID)
	if err != nil {
		return fmt.Errorf("update final label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.imageWriteRefused(ctx, imageID)
	}
	return nil
}

// imageWriteRefused explains a zero-row lock-gated image write: ErrLocked
// when the image exists under a locked canonical, ErrNotFound otherwise.
func (s *Store) imageWriteRefused(ctx context.Context, imageID uuid.UUID) error {
	var locked bool
	err := s.pool.QueryRow(ctx, `
		SELECT cl.locked
		FROM listing_images li
		JOIN canonical_listings cl ON cl.listing_id = li.listing_id
		WHERE li.id = $1
	`, imageID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check image lock: %w", err)
	}
	if locked {
		return ErrLocked
	}
	return ErrNotFound
}

// UpdateImagePath records the image's new storage path after an object
// rename.
func (s *Store) UpdateImagePath(ctx context.Context, imageID uuid.UUID, storagePath string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE listing_images
		SET storage_path = $1
		WHERE id = $2
	`, storagePath, imageID)
	if err != nil {
		return fmt.Errorf("update image path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveAnalysis upserts the AI analysis for an image and mirrors the
// detected room label into ai_suggested_label for cheap reads.
func (s *Store) SaveAnalysis(ctx context.Context, imageID uuid.UUID, description string, features map[string]any) error {
	encoded, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("marshal detected features: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO image_ai_analysis (image_id, description, detected_features, analyzed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (image_id) DO UPDATE SET
			description       = EXCLUDED.description,
			detected_features = EXCLUDED.detected_features,
			analyzed_at       = NOW()
	`, imageID, description, encoded); err != nil {
		return fmt.Errorf("upsert image analysis: %w", err)
	}

	if label, ok := features["room_label"].(string); ok && label != "" {
		if _, err := s.pool.Exec(ctx, `
			UPDATE listing_images
			SET ai_suggested_label = $1
			WHERE id = $2
		`, label, imageID); err != nil {
			return fmt.Errorf("update suggested label: %w", err)
		}
	}
	return nil
}

// ApplySequence overwrites display order and primary flags for a listing's
// images in one transaction. Placements are authoritative: every image in
// the plan gets its new slot, and the primary flag is reset listing-wide
// before being re-applied.
func (s *Store) ApplySequence(ctx context.Context, listingID uuid.UUID, placements []photos.Placement) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin apply sequence: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE listing_images SET is_primary = false WHERE listing_id = $1
	`, listingID); err != nil {
		return fmt.Errorf("reset primary flags: %w", err)
	}

	for _, p := range placements {
		imageID, err := uuid.Parse(p.ImageID)
		if err != nil {
			return fmt.Errorf("parse image id %q: %w", p.ImageID, err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE listing_images
			SET display_order = $1, is_primary = $2
			WHERE id = $3 AND listing_id = $4
		`, p.DisplayOrder, p.IsPrimary, imageID, listingID); err != nil {
			return fmt.Errorf("apply placement: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func scanImage(row pgx.Row) (*Image, error) {
	var i Image
	err := row.Scan(&i.ID, &i.ListingID, &i.StoragePath, &i.OriginalFilename,
		&i.AISuggestedLabel, &i.FinalLabel, &i.DisplayOrder, &i.IsPrimary, &i.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}
