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

	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/photos"
)

// CreateListing creates a listing row plus its empty draft canonical and
// returns the new listing ID.
func (s *Store) CreateListing(ctx context.Context, createdBy string) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin create listing: %w", err)
	}
	defer tx.Rollback(ctx)

	var listingID uuid.UUID
	if err := tx.QueryRow(ctx, `
		INSERT INTO listings (status, created_by)
		VALUES ('draft', $1)
		RETURNING id
	`, createdBy).Scan(&listingID); err != nil {
		return uuid.Nil, fmt.Errorf("insert listing: %w", err)
	}

	empty := canonical.New()
	payload, err := json.Marshal(empty)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal empty canonical: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO canonical_listings (listing_id, schema_version, canonical_payload, mode, locked)
		VALUES ($1, $2, $3, 'draft', false)
	`, listingID, empty.SchemaVersion, payload); err != nil {
		return uuid.Nil, fmt.Errorf("insert canonical: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit create listing: %w", err)
	}
	return listingID, nil
}

// GetCanonical loads the canonical payload for a listing and hydrates its
// media image list from the images tables. AI-suggested fields refresh from
// the database on every load; user-edited label, description and room type
// survive untouched once set.
func (s *Store) GetCanonical(ctx context.Context, listingID uuid.UUID) (*canonical.Listing, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT canonical_payload
		FROM canonical_listings
		WHERE listing_id = $1
	`, listingID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select canonical: %w", err)
	}

	var l canonical.Listing
	if err := json.Unmarshal(payload, &l); err != nil {
		return nil, fmt.Errorf("unmarshal canonical: %w", err)
	}

	if err := s.hydrateMedia(ctx, listingID, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

type mediaRow struct {
	imageID      uuid.UUID
	aiLabel      *string
	finalLabel   *string
	displayOrder int
	isPrimary    bool
	description  *string
	roomLabel    *string
}

func (s *Store) hydrateMedia(ctx context.Context, listingID uuid.UUID, l *canonical.Listing) error {
	rows, err := s.pool.Query(ctx, `
		SELECT li.id, li.ai_suggested_label, li.final_label,
		       li.display_order, li.is_primary,
		       ia.description, ia.detected_features
		FROM listing_images li
		LEFT JOIN image_ai_analysis ia ON li.id = ia.image_id
		WHERE li.listing_id = $1
		ORDER BY li.display_order, li.uploaded_at
	`, listingID)
	if err != nil {
		return fmt.Errorf("select listing images: %w", err)
	}
	defer rows.Close()

	var media []mediaRow
	for rows.Next() {
		var (
			r        mediaRow
			features []byte
		)
		if err := rows.Scan(&r.imageID, &r.aiLabel, &r.finalLabel, &r.displayOrder, &r.isPrimary, &r.description, &features); err != nil {
			return fmt.Errorf("scan listing image: %w", err)
		}
		r.roomLabel = roomLabelFromFeatures(features)
		if r.roomLabel == nil {
			r.roomLabel = r.aiLabel
		}
		media = append(media, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	existing := make(map[string]*canonical.ImageMedia, len(l.Media.MediaImages))
	for i := range l.Media.MediaImages {
		existing[l.Media.MediaImages[i].ImageID] = &l.Media.MediaImages[i]
	}

	for _, r := range media {
		id := r.imageID.String()
		if img, ok := existing[id]; ok {
			img.AISuggestedLabel = r.aiLabel
			img.AISuggestedDescription = r.description
			img.AISuggestedRoomType = r.roomLabel

			if img.Label == nil && r.finalLabel != nil {
				img.Label = r.finalLabel
			}
			if img.Description == nil && r.description != nil {
				img.Description = r.description
			}
			if img.RoomType == nil && r.roomLabel != nil {
				formatted := photos.FormatLabel(*r.roomLabel)
				img.RoomType = &formatted
			}
			img.DisplayOrder = r.displayOrder
			img.IsPrimary = r.isPrimary
			continue
		}

		img := canonical.ImageMedia{
			ImageID:                id,
			AISuggestedLabel:       r.aiLabel,
			Label:                  r.finalLabel,
			AISuggestedDescription: r.description,
			Description:            r.description,
			AISuggestedRoomType:    r.roomLabel,
			DisplayOrder:           r.displayOrder,
			IsPrimary:              r.isPrimary,
		}
		if r.roomLabel != nil {
			formatted := photos.FormatLabel(*r.roomLabel)
			img.RoomType = &formatted
		}
		l.Media.MediaImages = append(l.Media.MediaImages, img)
	}
	return nil
}

func roomLabelFromFeatures(features []byte) *string {
	if len(features) == 0 {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(features, &decoded); err != nil {
		return nil
	}
	if label, ok := decoded["room_label"].(string); ok && label != "" {
		return &label
	}
	return nil
}

// LabelChange reports a user-assigned image label that changed during an
// update, so the caller can rename the stored object to match.
type LabelChange struct {
	ImageID uuid.UUID
	Label   string
}

// UpdateCanonical replaces the canonical payload if the listing is not
// locked. The update is conditional at the SQL level; a concurrent lock
// between read and write still loses. User-set image labels are synced
// back to the images table, and any that changed are returned.
func (s *Store) UpdateCanonical(ctx context.Context, listingID uuid.UUID, l *canonical.Listing) ([]LabelChange, error) {
	var locked bool
	err := s.pool.QueryRow(ctx, `
		SELECT locked FROM canonical_listings WHERE listing_id = $1
	`, listingID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check lock: %w", err)
	}
	if locked {
		return nil, ErrLocked
	}

	l.Touch()
	payload, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal canonical: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE canonical_listings
		SET canonical_payload = $1, updated_at = NOW()
		WHERE listing_id = $2 AND locked = false
	`, payload, listingID)
	if err != nil {
		return nil, fmt.Errorf("update canonical: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Locked between the check and the update.
		return nil, ErrLocked
	}

	return s.syncImageLabels(ctx, listingID, l)
}

func (s *Store) syncImageLabels(ctx context.Context, listingID uuid.UUID, l *canonical.Listing) ([]LabelChange, error) {
	var changes []LabelChange
	for _, img := range l.Media.MediaImages {
		if img.Label == nil {
			continue
		}
		imageID, err := uuid.Parse(img.ImageID)
		if err != nil {
			continue
		}

		var current *string
		err = s.pool.QueryRow(ctx, `
			SELECT final_label FROM listing_images
			WHERE id = $1 AND listing_id = $2
		`, imageID, listingID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return changes, fmt.Errorf("select image label: %w", err)
		}

		if _, err := s.pool.Exec(ctx, `
			UPDATE listing_images
			SET final_label = $1
			WHERE id = $2 AND listing_id = $3
		`, *img.Label, imageID, listingID); err != nil {
			return changes, fmt.Errorf("update image label: %w", err)
		}

		if current == nil || *current != *img.Label {
			changes = append(changes, LabelChange{ImageID: imageID, Label: *img.Label})
		}
	}
	return changes, nil
}

// ValidateResult reports the outcome of a validate-and-lock attempt.
// Validation failures are data, not errors.
type ValidateResult struct {
	Success     bool       `json:"success"`
	Errors      []string   `json:"errors,omitempty"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// Validate checks the required canonical fields and, if all are present,
// marks the canonical validated and locked. An already-locked canonical
// fails validation rather than erroring.
func (s *Store) Validate(ctx context.Context, listingID uuid.UUID, userID string) (ValidateResult, error) {
	var (
		payload []byte
		locked  bool
	)
	err := s.pool.QueryRow(ctx, `
		SELECT canonical_payload, locked
		FROM canonical_listings
		WHERE listing_id = $1
	`, listingID).Scan(&payload, &locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ValidateResult{}, ErrNotFound
	}
	if err != nil {
		return ValidateResult{}, fmt.Errorf("select canonical: %w", err)
	}
	if locked {
		return ValidateResult{Success: false, Errors: []string{"canonical already validated"}}, nil
	}

	var l canonical.Listing
	if err := json.Unmarshal(payload, &l); err != nil {
		return ValidateResult{}, fmt.Errorf("unmarshal canonical: %w", err)
	}

	if missing := canonical.MissingRequired(&l); len(missing) > 0 {
		return ValidateResult{Success: false, Errors: missing}, nil
	}

	now := time.Now().UTC()
	validatedAt := canonical.NewUSDate(now)
	l.State.Mode = canonical.ModeLocked
	l.State.Locked = true
	l.State.Validated = true
	l.State.ValidatedAt = &validatedAt
	l.State.ValidatedBy = &userID

	updated, err := json.Marshal(&l)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("marshal canonical: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE canonical_listings
		SET canonical_payload = $1,
		    mode = 'locked',
		    locked = true,
		    validated_at = NOW(),
		    validated_by = $2
		WHERE listing_id = $3 AND locked = false
	`, updated, userID, listingID)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("lock canonical: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Locked between the read and the write; the payload we validated
		// is stale, so do not report success.
		return ValidateResult{Success: false, Errors: []string{"canonical already validated"}}, nil
	}

	return ValidateResult{Success: true, ValidatedAt: &now}, nil
}

// IsLocked reports whether the canonical for a listing is validated and
// locked.
func (s *Store) IsLocked(ctx context.Context, listingID uuid.UUID) (bool, error) {
	var locked bool
	err := s.pool.QueryRow(ctx, `
		SELECT locked FROM canonical_listings WHERE listing_id = $1
	`, listingID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("select lock state: %w", err)
	}
	return locked, nil
}
