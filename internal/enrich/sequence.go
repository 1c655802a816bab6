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

package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/objstore"
	"github.com/brightdoor/listingprep/internal/photos"
	"github.com/brightdoor/listingprep/internal/store"
)

// Renamer moves a stored blob to a new object name. Satisfied by
// *objstore.Client.
type Renamer interface {
	Rename(ctx context.Context, oldName, newName string) error
}

// SequenceResult reports the applied photo ordering.
type SequenceResult struct {
	Placements []photos.Placement `json:"placements"`
	Renamed    int                `json:"renamed"`
	PrimaryID  string             `json:"primary_image_id,omitempty"`
}

// Resequence recomputes the full display order for a listing's photos from
// their effective labels, persists it, and renames stored objects to match
// ("001 Front Exterior.jpeg"). Locked listings are rejected.
func (s *Service) Resequence(ctx context.Context, listingID uuid.UUID, blobs Renamer) (*SequenceResult, error) {
	locked, err := s.store.IsLocked(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("checking listing state: %w", err)
	}
	if locked {
		return nil, store.ErrLocked
	}

	images, err := s.store.ListImages(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	if len(images) == 0 {
		return &SequenceResult{}, nil
	}

	view := store.SequenceView(images)
	placements := photos.Sequence(view)
	if err := s.store.ApplySequence(ctx, listingID, placements); err != nil {
		return nil, fmt.Errorf("applying sequence: %w", err)
	}

	result := &SequenceResult{Placements: placements}
	for _, p := range placements {
		if p.IsPrimary {
			result.PrimaryID = p.ImageID
		}
	}

	// Rename stored objects to their sequence-position names. A failed
	// rename keeps the old path; the ordering above already stuck.
	byID := make(map[string]store.Image, len(images))
	ext := make(map[string]string, len(images))
	for _, img := range images {
		id := img.ID.String()
		byID[id] = img
		ext[id] = strings.ToLower(path.Ext(img.OriginalFilename))
	}

	for _, rename := range photos.RenamePlan(view, ext) {
		img := byID[rename.ImageID]
		newPath := objstore.ImagePath(listingID, rename.ObjectName)
		if newPath == img.StoragePath {
			continue
		}
		if err := blobs.Rename(ctx, img.StoragePath, newPath); err != nil {
			slog.Warn("image rename failed, keeping old path",
				"image_id", rename.ImageID, "error", err)
			continue
		}
		if err := s.store.UpdateImagePath(ctx, img.ID, newPath); err != nil {
			slog.Error("updating image path failed", "image_id", rename.ImageID, "error", err)
			continue
		}
		result.Renamed++
	}

	slog.Info("photo sequence applied",
		"listing_id", listingID,
		"images", len(placements),
		"renamed", result.Renamed,
		"primary", result.PrimaryID,
	)
	return result, nil
}
