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
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/ai"
	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/geo"
	"github.com/brightdoor/listingprep/internal/photos"
	"github.com/brightdoor/listingprep/internal/store"
)

type fakeStorage struct {
	mu       sync.Mutex
	locked   bool
	listing  *canonical.Listing
	images   []store.Image
	analyses map[uuid.UUID]string
	updates  int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		listing:  canonical.New(),
		analyses: make(map[uuid.UUID]string),
	}
}

func (f *fakeStorage) IsLocked(context.Context, uuid.UUID) (bool, error) {
	return f.locked, nil
}

func (f *fakeStorage) GetCanonical(context.Context, uuid.UUID) (*canonical.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := *f.listing
	return &snapshot, nil
}

func (f *fakeStorage) UpdateCanonical(_ context.Context, _ uuid.UUID, l *canonical.Listing) ([]store.LabelChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return nil, store.ErrLocked
	}
	f.listing = l
	f.updates++
	return nil, nil
}

func (f *fakeStorage) ListImages(context.Context, uuid.UUID) ([]store.Image, error) {
	return f.images, nil
}

func (f *fakeStorage) ListUnanalyzedImages(context.Context, uuid.UUID) ([]store.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Image
	for _, img := range f.images {
		if _, done := f.analyses[img.ID]; !done {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeStorage) SaveAnalysis(_ context.Context, imageID uuid.UUID, description string, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses[imageID] = description
	return nil
}

func (f *fakeStorage) ApplySequence(context.Context, uuid.UUID, []photos.Placement) error {
	return nil
}

func (f *fakeStorage) UpdateImagePath(context.Context, uuid.UUID, string) error {
	return nil
}

type fakeBlobs struct {
	failPaths map[string]bool
}

func (f *fakeBlobs) Fetch(_ context.Context, storagePath string) ([]byte, string, error) {
	if f.failPaths[storagePath] {
		return nil, "", errors.New("blob missing")
	}
	return []byte{0xff, 0xd8}, "image/jpeg", nil
}

type fakeAnalyzer struct {
	mu          sync.Mutex
	imageCalls  int
	failImages  bool
	remarks     string
	description string
	descErr     error
}

func (f *fakeAnalyzer) AnalyzeImage(context.Context, []byte, string) (ai.ImageAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls++
	if f.failImages {
		return ai.ImageAnalysis{}, errors.New("vision unavailable")
	}
	return ai.ImageAnalysis{RoomLabel: "kitchen", PhotoType: "interior", Description: "A kitchen."}, nil
}

func (f *fakeAnalyzer) ListingRemarks(context.Context, *canonical.Listing) string {
	return f.remarks
}

func (f *fakeAnalyzer) PropertyDescription(context.Context, *canonical.Listing) (string, error) {
	return f.description, f.descErr
}

type fakeGeo struct {
	fail bool
}

func (f *fakeGeo) Enrich(_ context.Context, l *canonical.Listing) (*geo.Summary, error) {
	if f.fail {
		return nil, errors.New("maps unreachable")
	}
	lat, lng := 30.2672, -97.7431
	l.Location.Latitude = &lat
	l.Location.Longitude = &lng
	return &geo.Summary{Latitude: lat, Longitude: lng, CanonicalUpdated: true}, nil
}

func imageRow(name string) store.Image {
	return store.Image{ID: uuid.New(), StoragePath: "x/images/" + name, OriginalFilename: name}
}

func TestRun_AllTracks(t *testing.T) {
	st := newFakeStorage()
	st.images = []store.Image{imageRow("a.jpg"), imageRow("b.jpg")}
	analyzer := &fakeAnalyzer{remarks: "A fine home.", description: "Charming property."}

	svc := NewService(st, &fakeBlobs{}, analyzer, &fakeGeo{})
	result, err := svc.Run(context.Background(), uuid.New(), DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ImagesAnalyzed != 2 {
		t.Errorf("ImagesAnalyzed = %d, want 2", result.ImagesAnalyzed)
	}
	if result.GeoSummary == nil || !result.GeoSummary.CanonicalUpdated {
		t.Error("geo summary missing or canonical not updated")
	}
	if !result.RemarksGenerated {
		t.Error("remarks not generated")
	}
	if len(result.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", result.Skipped)
	}
	if st.listing.Remarks.PublicRemarks == nil || *st.listing.Remarks.PublicRemarks != "A fine home." {
		t.Errorf("public remarks = %v", st.listing.Remarks.PublicRemarks)
	}
	if st.listing.Remarks.SyndicationRemarks == nil || *st.listing.Remarks.SyndicationRemarks != "A fine home." {
		t.Error("syndication remarks should match public remarks")
	}
	if st.listing.Location.Latitude == nil {
		t.Error("geo latitude not persisted")
	}
}

func TestRun_GeoFailureIsolated(t *testing.T) {
	st := newFakeStorage()
	st.images = []store.Image{imageRow("a.jpg")}
	analyzer := &fakeAnalyzer{remarks: "Remarks."}

	svc := NewService(st, &fakeBlobs{}, analyzer, &fakeGeo{fail: true})
	result, err := svc.Run(context.Background(), uuid.New(), DefaultOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ImagesAnalyzed != 1 {
		t.Errorf("ImagesAnalyzed = %d, want 1 despite geo failure", result.ImagesAnalyzed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "geo_intelligence" {
		t.Errorf("Skipped = %v, want [geo_intelligence]", result.Skipped)
	}
	if !result.RemarksGenerated {
		t.Error("descriptions should still run when geo fails")
	}
}

func TestRun_FailedImageSkipped(t *testing.T) {
	st := newFakeStorage()
	good := imageRow("good.jpg")
	bad := imageRow("bad.jpg")
	st.images = []store.Image{bad, good}
	blobs := &fakeBlobs{failPaths: map[string]bool{bad.StoragePath: true}}

	svc := NewService(st, blobs, &fakeAnalyzer{remarks: "r"}, &fakeGeo{})
	result, err := svc.Run(context.Background(), uuid.New(), Options{AnalyzeImages: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ImagesAnalyzed != 1 {
		t.Errorf("ImagesAnalyzed = %d, want 1", result.ImagesAnalyzed)
	}
	if _, ok := st.analyses[good.ID]; !ok {
		t.Error("good image analysis not saved")
	}
	if _, ok := st.analyses[bad.ID]; ok {
		t.Error("failed image should have no analysis row")
	}
}

func TestRun_LockedListingRejected(t *testing.T) {
	st := newFakeStorage()
	st.locked = true

	svc := NewService(st, &fakeBlobs{}, &fakeAnalyzer{}, &fakeGeo{})
	if _, err := svc.Run(context.Background(), uuid.New(), DefaultOptions()); !errors.Is(err, store.ErrLocked) {
		t.Errorf("Run error = %v, want ErrLocked", err)
	}
}

func TestRun_OnlyUnanalyzedImagesProcessed(t *testing.T) {
	st := newFakeStorage()
	done := imageRow("done.jpg")
	fresh := imageRow("fresh.jpg")
	st.images = []store.Image{done, fresh}
	st.analyses[done.ID] = "already analyzed"
	analyzer := &fakeAnalyzer{}

	svc := NewService(st, &fakeBlobs{}, analyzer, &fakeGeo{})
	result, err := svc.Run(context.Background(), uuid.New(), Options{AnalyzeImages: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if analyzer.imageCalls != 1 {
		t.Errorf("vision calls = %d, want 1 (analyzed image skipped)", analyzer.imageCalls)
	}
	if result.ImagesAnalyzed != 1 {
		t.Errorf("ImagesAnalyzed = %d, want 1", result.ImagesAnalyzed)
	}
}
