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

// Package pipeline orchestrates document extraction: fan out over uploaded
// documents, merge the extracted field sets deterministically, run the
// targeted material pass over photos, and fold everything into the
// canonical payload. One bad document never sinks the batch.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/extract"
)

// Worker pool sizes. Documents and images are I/O bound model calls, so
// modest parallelism saturates the API quota without thundering it.
const (
	documentWorkers = 5
	materialWorkers = 5
)

// materialPaths are the canonical fields the photo material pass may fill.
// The pass only runs for paths still empty after document extraction.
var materialPaths = []string{
	"features.flooring",
	"property.roof",
	"property.construction_material",
	"features.horse_amenities",
}

// Extractor is the model-call surface the pipeline depends on.
type Extractor interface {
	ExtractFromText(ctx context.Context, text string, prov extract.Provenance) (extract.FieldSet, error)
	ExtractFromImage(ctx context.Context, image []byte, mimeType string, prov extract.Provenance) (extract.FieldSet, error)
	MaterialsFromImage(ctx context.Context, image []byte, mimeType string, prov extract.Provenance) (extract.FieldSet, error)
}

// Page is one rendered document page for vision extraction.
type Page struct {
	Number   int
	Data     []byte
	MIMEType string
}

// Document is one uploaded document prepared for extraction: either a
// usable native text layer, or rendered page images when the text layer is
// missing or garbage.
type Document struct {
	ID    string
	Text  string
	Pages []Page
}

// Photo is one listing image prepared for the material pass.
type Photo struct {
	ID       string
	Data     []byte
	MIMEType string
}

// ExtractDocuments runs extraction over all documents with bounded
// parallelism and merges the results in document order, so reruns over the
// same inputs produce the same merged set. Documents that fail extraction
// are logged and excluded.
func ExtractDocuments(ctx context.Context, ex Extractor, docs []Document) extract.FieldSet {
	results := make([]extract.FieldSet, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(documentWorkers)

	for i, doc := range docs {
		g.Go(func() error {
			fields, err := extractDocument(gctx, ex, doc)
			if err != nil {
				slog.Error("document extraction failed, excluding document",
					"file_id", doc.ID,
					"error", err,
				)
				return nil
			}
			results[i] = fields
			return nil
		})
	}
	g.Wait()

	return extract.MergeAll(results)
}

func extractDocument(ctx context.Context, ex Extractor, doc Document) (extract.FieldSet, error) {
	if doc.Text != "" {
		prov := extract.Provenance{
			FileID:     doc.ID,
			PageNumber: 1,
			SourceType: extract.SourceText,
		}
		return ex.ExtractFromText(ctx, doc.Text, prov)
	}

	// No usable text layer: vision extraction per rendered page, merged in
	// page order.
	merged := extract.FieldSet{}
	for _, page := range doc.Pages {
		prov := extract.Provenance{
			FileID:     doc.ID,
			PageNumber: page.Number,
			SourceType: extract.SourceVision,
		}
		fields, err := ex.ExtractFromImage(ctx, page.Data, page.MIMEType, prov)
		if err != nil {
			return nil, err
		}
		merged = extract.Merge(merged, fields)
	}
	return merged, nil
}

// MissingMaterialPaths returns the material paths still empty on a
// listing, in fixed order.
func MissingMaterialPaths(l *canonical.Listing) []string {
	var missing []string
	for _, path := range materialPaths {
		acc, ok := canonical.Lookup(path)
		if !ok {
			continue
		}
		if acc.Get(l).IsEmpty() {
			missing = append(missing, path)
		}
	}
	return missing
}

// MaterialsPass runs photo material extraction for the material fields the
// document pass left empty. When none are missing the pass is skipped
// entirely and no model calls are made. Per-photo failures are logged and
// excluded.
func MaterialsPass(ctx context.Context, ex Extractor, l *canonical.Listing, photos []Photo) extract.FieldSet {
	missing := MissingMaterialPaths(l)
	if len(missing) == 0 || len(photos) == 0 {
		return extract.FieldSet{}
	}
	wanted := make(map[string]bool, len(missing))
	for _, path := range missing {
		wanted[path] = true
	}

	var (
		mu     sync.Mutex
		merged = extract.FieldSet{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(materialWorkers)

	for _, photo := range photos {
		g.Go(func() error {
			prov := extract.Provenance{
				FileID:     photo.ID,
				PageNumber: 1,
				SourceType: extract.SourceVision,
			}
			fields, err := ex.MaterialsFromImage(gctx, photo.Data, photo.MIMEType, prov)
			if err != nil {
				slog.Warn("material extraction failed, excluding photo",
					"image_id", photo.ID,
					"error", err,
				)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for path, field := range fields {
				if !wanted[path] {
					continue
				}
				if existing, ok := merged[path]; ok {
					merged[path] = extract.MergeField(existing, field)
				} else {
					merged[path] = field
				}
			}
			return nil
		})
	}
	g.Wait()

	return merged
}
