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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/extract"
	"github.com/brightdoor/listingprep/internal/store"
)

// BlobSource fetches stored document and image bytes. Satisfied by
// *objstore.Client.
type BlobSource interface {
	Fetch(ctx context.Context, storagePath string) ([]byte, string, error)
}

// Service runs the full extraction pass for a listing: document fan-out,
// fact audit, canonical build, material pass, conditional write-back.
type Service struct {
	store     *store.Store
	blobs     BlobSource
	extractor Extractor
}

// NewService wires an extraction service.
func NewService(st *store.Store, blobs BlobSource, ex Extractor) *Service {
	return &Service{store: st, blobs: blobs, extractor: ex}
}

// Result summarises one extraction run.
type Result struct {
	DocumentsProcessed int      `json:"documents_processed"`
	FieldsExtracted    int      `json:"fields_extracted"`
	MaterialFields     []string `json:"material_fields,omitempty"`
}

// Run extracts fields from every document on the listing, folds them into
// the canonical payload, runs the material pass over photos for whatever is
// still missing, and saves the result. Locked listings are rejected by the
// conditional update in the store.
func (s *Service) Run(ctx context.Context, listingID uuid.UUID) (*Result, error) {
	listing, err := s.store.GetCanonical(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("loading canonical listing: %w", err)
	}

	docs, err := s.loadDocuments(ctx, listingID)
	if err != nil {
		return nil, err
	}

	fields := ExtractDocuments(ctx, s.extractor, docs)
	if err := s.store.SaveFacts(ctx, listingID, fields); err != nil {
		slog.Error("persisting extraction facts failed", "listing_id", listingID, "error", err)
	}

	listing = canonical.Build(fields, listing)

	materials, err := s.runMaterialsPass(ctx, listingID, listing)
	if err != nil {
		slog.Warn("material pass skipped", "listing_id", listingID, "error", err)
	} else if len(materials) > 0 {
		if err := s.store.SaveFacts(ctx, listingID, materials); err != nil {
			slog.Error("persisting material facts failed", "listing_id", listingID, "error", err)
		}
		listing = canonical.Build(materials, listing)
	}

	if _, err := s.store.UpdateCanonical(ctx, listingID, listing); err != nil {
		return nil, fmt.Errorf("saving canonical listing: %w", err)
	}

	result := &Result{
		DocumentsProcessed: len(docs),
		FieldsExtracted:    len(fields),
	}
	for path := range materials {
		result.MaterialFields = append(result.MaterialFields, path)
	}
	slog.Info("extraction run complete",
		"listing_id", listingID,
		"documents", result.DocumentsProcessed,
		"fields", result.FieldsExtracted,
		"material_fields", len(result.MaterialFields),
	)
	return result, nil
}

// loadDocuments fetches each stored document and prepares it for
// extraction. Text blobs carry their content directly; image blobs become a
// single vision page. Fetch failures exclude the document, they do not fail
// the run.
func (s *Service) loadDocuments(ctx context.Context, listingID uuid.UUID) ([]Document, error) {
	records, err := s.store.ListDocuments(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		data, contentType, err := s.blobs.Fetch(ctx, rec.StoragePath)
		if err != nil {
			slog.Error("fetching document failed, excluding from run",
				"document_id", rec.ID,
				"storage_path", rec.StoragePath,
				"error", err,
			)
			continue
		}
		doc := Document{ID: rec.ID.String()}
		if strings.HasPrefix(contentType, "image/") {
			doc.Pages = []Page{{Number: 1, Data: data, MIMEType: contentType}}
		} else {
			doc.Text = string(data)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Service) runMaterialsPass(ctx context.Context, listingID uuid.UUID, listing *canonical.Listing) (extract.FieldSet, error) {
	if len(MissingMaterialPaths(listing)) == 0 {
		return nil, nil
	}

	images, err := s.store.ListImages(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	photos := make([]Photo, 0, len(images))
	for _, img := range images {
		data, contentType, err := s.blobs.Fetch(ctx, img.StoragePath)
		if err != nil {
			slog.Warn("fetching image failed, excluding from material pass",
				"image_id", img.ID,
				"error", err,
			)
			continue
		}
		photos = append(photos, Photo{ID: img.ID.String(), Data: data, MIMEType: contentType})
	}

	return MaterialsPass(ctx, s.extractor, listing, photos), nil
}
