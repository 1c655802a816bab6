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

// Package enrich orchestrates post-extraction enrichment: photo vision
// analysis, geo intelligence, and description generation run concurrently
// with partial-failure isolation, then results fold into the canonical
// payload through the lock-guarded update.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brightdoor/listingprep/internal/ai"
	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/geo"
	"github.com/brightdoor/listingprep/internal/photos"
	"github.com/brightdoor/listingprep/internal/store"
)

// Pool sizes: two independent track slots (images, geo), five concurrent
// vision calls within the image track.
const (
	trackWorkers = 2
	imageWorkers = 5
)

// Analyzer is the vision/description surface of the AI client the
// orchestrator needs.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (ai.ImageAnalysis, error)
	ListingRemarks(ctx context.Context, l *canonical.Listing) string
	PropertyDescription(ctx context.Context, l *canonical.Listing) (string, error)
}

// GeoEnricher fills empty location fields in place. Satisfied by
// *geo.Service.
type GeoEnricher interface {
	Enrich(ctx context.Context, l *canonical.Listing) (*geo.Summary, error)
}

// BlobSource fetches stored image bytes.
type BlobSource interface {
	Fetch(ctx context.Context, storagePath string) ([]byte, string, error)
}

// Storage is the persistence surface the orchestrator needs. Satisfied by
// *store.Store.
type Storage interface {
	IsLocked(ctx context.Context, listingID uuid.UUID) (bool, error)
	GetCanonical(ctx context.Context, listingID uuid.UUID) (*canonical.Listing, error)
	UpdateCanonical(ctx context.Context, listingID uuid.UUID, l *canonical.Listing) ([]store.LabelChange, error)
	ListImages(ctx context.Context, listingID uuid.UUID) ([]store.Image, error)
	ListUnanalyzedImages(ctx context.Context, listingID uuid.UUID) ([]store.Image, error)
	SaveAnalysis(ctx context.Context, imageID uuid.UUID, description string, features map[string]any) error
	ApplySequence(ctx context.Context, listingID uuid.UUID, placements []photos.Placement) error
	UpdateImagePath(ctx context.Context, imageID uuid.UUID, storagePath string) error
}

// Options select which enrichment tracks run.
type Options struct {
	AnalyzeImages        bool
	EnrichGeo            bool
	GenerateDescriptions bool
}

// DefaultOptions runs everything.
func DefaultOptions() Options {
	return Options{AnalyzeImages: true, EnrichGeo: true, GenerateDescriptions: true}
}

// Service coordinates the enrichment tracks for one listing.
type Service struct {
	store    Storage
	blobs    BlobSource
	analyzer Analyzer
	geo      GeoEnricher
}

// NewService wires an enrichment orchestrator.
func NewService(st Storage, blobs BlobSource, analyzer Analyzer, geoSvc GeoEnricher) *Service {
	return &Service{store: st, blobs: blobs, analyzer: analyzer, geo: geoSvc}
}

// Result summarises one enrichment run.
type Result struct {
	ImagesAnalyzed    int          `json:"images_analyzed"`
	GeoSummary        *geo.Summary `json:"geo,omitempty"`
	RemarksGenerated  bool         `json:"remarks_generated"`
	DescriptionLength int          `json:"description_length,omitempty"`
	Skipped           []string     `json:"skipped,omitempty"`
}

// Run executes the selected enrichment tracks. Image analysis and geo
// intelligence run concurrently; description generation follows since it
// reads what they wrote. A locked listing skips all canonical writes; a
// failed track is reported in Skipped and never sinks the others.
func (s *Service) Run(ctx context.Context, listingID uuid.UUID, opts Options) (*Result, error) {
	locked, err := s.store.IsLocked(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("checking listing state: %w", err)
	}
	if locked {
		return nil, store.ErrLocked
	}

	result := &Result{}

	var (
		mu         sync.Mutex
		geoListing *canonical.Listing
	)
	skip := func(track string) {
		mu.Lock()
		defer mu.Unlock()
		result.Skipped = append(result.Skipped, track)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trackWorkers)

	if opts.AnalyzeImages {
		g.Go(func() error {
			n, err := s.analyzeImages(gctx, listingID)
			if err != nil {
				slog.Error("image analysis track failed", "listing_id", listingID, "error", err)
				skip("image_analysis")
				return nil
			}
			result.ImagesAnalyzed = n
			return nil
		})
	}
	if opts.EnrichGeo {
		g.Go(func() error {
			listing, summary, err := s.enrichGeo(gctx, listingID)
			if err != nil {
				slog.Warn("geo track skipped", "listing_id", listingID, "error", err)
				skip("geo_intelligence")
				return nil
			}
			geoListing = listing
			result.GeoSummary = summary
			return nil
		})
	}
	g.Wait()

	// Persist geo after both tracks settle so image analysis rows hydrate
	// into the same snapshot descriptions will read.
	if geoListing != nil && result.GeoSummary != nil && result.GeoSummary.CanonicalUpdated {
		if _, err := s.store.UpdateCanonical(ctx, listingID, geoListing); err != nil {
			if errors.Is(err, store.ErrLocked) {
				return result, store.ErrLocked
			}
			return result, fmt.Errorf("saving geo enrichment: %w", err)
		}
	}

	if opts.GenerateDescriptions {
		if err := s.generateDescriptions(ctx, listingID, result); err != nil {
			slog.Warn("description track skipped", "listing_id", listingID, "error", err)
			result.Skipped = append(result.Skipped, "descriptions")
		}
	}

	slog.Info("enrichment complete",
		"listing_id", listingID,
		"images_analyzed", result.ImagesAnalyzed,
		"geo", result.GeoSummary != nil,
		"skipped", result.Skipped,
	)
	return result, nil
}

// analyzeImages runs vision analysis over every image that has no analysis
// row yet, five at a time. A failed image is logged and skipped.
func (s *Service) analyzeImages(ctx context.Context, listingID uuid.UUID) (int, error) {
	images, err := s.store.ListUnanalyzedImages(ctx, listingID)
	if err != nil {
		return 0, fmt.Errorf("listing unanalyzed images: %w", err)
	}
	if len(images) == 0 {
		return 0, nil
	}

	analyzed := make([]bool, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageWorkers)

	for i, img := range images {
		g.Go(func() error {
			data, contentType, err := s.blobs.Fetch(gctx, img.StoragePath)
			if err != nil {
				slog.Warn("fetching image failed, skipping analysis",
					"image_id", img.ID, "error", err)
				return nil
			}

			analysis, err := s.analyzer.AnalyzeImage(gctx, data, contentType)
			if err != nil {
				slog.Warn("image analysis failed",
					"image_id", img.ID,
					"filename", img.OriginalFilename,
					"error", err,
				)
				return nil
			}

			features := map[string]any{
				"room_label": analysis.RoomLabel,
				"photo_type": analysis.PhotoType,
			}
			if err := s.store.SaveAnalysis(gctx, img.ID, analysis.Description, features); err != nil {
				slog.Error("saving image analysis failed", "image_id", img.ID, "error", err)
				return nil
			}
			analyzed[i] = true
			return nil
		})
	}
	g.Wait()

	count := 0
	for _, ok := range analyzed {
		if ok {
			count++
		}
	}
	return count, nil
}

func (s *Service) enrichGeo(ctx context.Context, listingID uuid.UUID) (*canonical.Listing, *geo.Summary, error) {
	listing, err := s.store.GetCanonical(ctx, listingID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading canonical listing: %w", err)
	}
	summary, err := s.geo.Enrich(ctx, listing)
	if err != nil {
		return nil, nil, err
	}
	return listing, summary, nil
}

// generateDescriptions loads a fresh snapshot (so it sees geo results and
// hydrated image analyses) and writes the generated remarks back.
func (s *Service) generateDescriptions(ctx context.Context, listingID uuid.UUID, result *Result) error {
	listing, err := s.store.GetCanonical(ctx, listingID)
	if err != nil {
		return fmt.Errorf("loading canonical listing: %w", err)
	}

	remarks := s.analyzer.ListingRemarks(ctx, listing)
	if remarks != "" {
		listing.Remarks.PublicRemarks = &remarks
		listing.Remarks.SyndicationRemarks = &remarks
		result.RemarksGenerated = true
	}

	description, err := s.analyzer.PropertyDescription(ctx, listing)
	if err != nil {
		slog.Warn("property description generation failed", "listing_id", listingID, "error", err)
	} else if description != "" {
		listing.Remarks.AIPropertyDescription = &description
		result.DescriptionLength = len(description)
	}

	if !result.RemarksGenerated && result.DescriptionLength == 0 {
		return nil
	}
	if _, err := s.store.UpdateCanonical(ctx, listingID, listing); err != nil {
		return fmt.Errorf("saving descriptions: %w", err)
	}
	return nil
}
