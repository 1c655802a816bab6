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
	"errors"
	"sync"
	"testing"

	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/extract"
)

// fakeExtractor returns canned field sets keyed by document id / image id
// and can be told to fail for specific ids.
type fakeExtractor struct {
	mu        sync.Mutex
	byText    map[string]extract.FieldSet
	byImage   map[string]extract.FieldSet
	materials map[string]extract.FieldSet
	fail      map[string]bool
	calls     int
}

func (f *fakeExtractor) ExtractFromText(_ context.Context, _ string, prov extract.Provenance) (extract.FieldSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[prov.FileID] {
		return nil, errors.New("model unavailable")
	}
	return f.byText[prov.FileID], nil
}

func (f *fakeExtractor) ExtractFromImage(_ context.Context, _ []byte, _ string, prov extract.Provenance) (extract.FieldSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[prov.FileID] {
		return nil, errors.New("model unavailable")
	}
	return f.byImage[prov.FileID], nil
}

func (f *fakeExtractor) MaterialsFromImage(_ context.Context, _ []byte, _ string, prov extract.Provenance) (extract.FieldSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[prov.FileID] {
		return nil, errors.New("model unavailable")
	}
	return f.materials[prov.FileID], nil
}

func textField(s string) extract.Field {
	return extract.Field{
		Value:      extract.String(s),
		Provenance: extract.Provenance{SourceType: extract.SourceText},
	}
}

func listField(items ...string) extract.Field {
	return extract.Field{
		Value:      extract.StringList(items),
		Provenance: extract.Provenance{SourceType: extract.SourceVision},
	}
}

func TestExtractDocuments_MergesInDocumentOrder(t *testing.T) {
	ex := &fakeExtractor{
		byText: map[string]extract.FieldSet{
			"doc-a": {
				"location.city":     textField("Austin"),
				"features.flooring": listField("Carpet", "Tile"),
			},
			"doc-b": {
				"location.city":     textField("Round Rock"),
				"features.flooring": listField("Tile", "Hardwood"),
				"location.state":    textField("TX"),
			},
		},
	}

	docs := []Document{
		{ID: "doc-a", Text: "contract a"},
		{ID: "doc-b", Text: "contract b"},
	}
	merged := ExtractDocuments(context.Background(), ex, docs)

	if got := merged["location.city"].Value.AsAny(); got != "Austin" {
		t.Errorf("location.city = %v, want Austin (first document wins on conflict)", got)
	}
	if got := merged["location.state"].Value.AsAny(); got != "TX" {
		t.Errorf("location.state = %v, want TX", got)
	}
	floors := merged["features.flooring"].Value.ListVal()
	want := []string{"Carpet", "Tile", "Hardwood"}
	if len(floors) != len(want) {
		t.Fatalf("features.flooring = %v, want %v", floors, want)
	}
	for i := range want {
		if floors[i] != want[i] {
			t.Errorf("features.flooring[%d] = %q, want %q", i, floors[i], want[i])
		}
	}
}

func TestExtractDocuments_FailedDocumentExcluded(t *testing.T) {
	ex := &fakeExtractor{
		byText: map[string]extract.FieldSet{
			"doc-good": {"location.city": textField("Austin")},
		},
		fail: map[string]bool{"doc-bad": true},
	}

	docs := []Document{
		{ID: "doc-bad", Text: "corrupted"},
		{ID: "doc-good", Text: "contract"},
	}
	merged := ExtractDocuments(context.Background(), ex, docs)

	if len(merged) != 1 {
		t.Fatalf("merged has %d fields, want 1", len(merged))
	}
	if got := merged["location.city"].Value.AsAny(); got != "Austin" {
		t.Errorf("location.city = %v, want Austin", got)
	}
}

func TestExtractDocuments_VisionPagesMerged(t *testing.T) {
	ex := &fakeExtractor{
		byImage: map[string]extract.FieldSet{
			"doc-scan": {"location.zip_code": textField("78701")},
		},
	}

	docs := []Document{{
		ID: "doc-scan",
		Pages: []Page{
			{Number: 1, Data: []byte{0x1}, MIMEType: "image/jpeg"},
			{Number: 2, Data: []byte{0x2}, MIMEType: "image/jpeg"},
		},
	}}
	merged := ExtractDocuments(context.Background(), ex, docs)

	if got := merged["location.zip_code"].Value.AsAny(); got != "78701" {
		t.Errorf("location.zip_code = %v, want 78701", got)
	}
	if ex.calls != 2 {
		t.Errorf("extractor calls = %d, want one per page (2)", ex.calls)
	}
}

func TestMissingMaterialPaths(t *testing.T) {
	l := canonical.New()
	missing := MissingMaterialPaths(l)
	if len(missing) != len(materialPaths) {
		t.Fatalf("missing = %v, want all %d material paths", missing, len(materialPaths))
	}

	roof := "Composition Shingle"
	l.Property.Roof = []string{roof}
	l.Features.Flooring = []string{"Tile"}
	missing = MissingMaterialPaths(l)
	want := []string{"property.construction_material", "features.horse_amenities"}
	if len(missing) != len(want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, missing[i], want[i])
		}
	}
}

func TestMaterialsPass_SkipsWhenNothingMissing(t *testing.T) {
	ex := &fakeExtractor{}
	l := canonical.New()
	l.Features.Flooring = []string{"Tile"}
	l.Property.Roof = []string{"Metal"}
	l.Property.ConstructionMaterial = []string{"Brick"}
	l.Features.HorseAmenities = []string{"None"}

	photos := []Photo{{ID: "img-1", Data: []byte{0x1}, MIMEType: "image/jpeg"}}
	fields := MaterialsPass(context.Background(), ex, l, photos)

	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	if ex.calls != 0 {
		t.Errorf("extractor calls = %d, want 0 when no material field is missing", ex.calls)
	}
}

func TestMaterialsPass_OnlyMissingPathsKept(t *testing.T) {
	ex := &fakeExtractor{
		materials: map[string]extract.FieldSet{
			"img-1": {
				"features.flooring": listField("Carpet"),
				"property.roof":     listField("Metal"),
				"location.city":     textField("Austin"),
			},
		},
	}
	l := canonical.New()
	l.Property.Roof = []string{"Composition Shingle"}

	photos := []Photo{{ID: "img-1", Data: []byte{0x1}, MIMEType: "image/jpeg"}}
	fields := MaterialsPass(context.Background(), ex, l, photos)

	if _, ok := fields["features.flooring"]; !ok {
		t.Error("features.flooring missing from material fields")
	}
	if _, ok := fields["property.roof"]; ok {
		t.Error("property.roof kept despite being populated before the pass")
	}
	if _, ok := fields["location.city"]; ok {
		t.Error("non-material path location.city leaked into material fields")
	}
}

func TestMaterialsPass_FailedPhotoExcluded(t *testing.T) {
	ex := &fakeExtractor{
		materials: map[string]extract.FieldSet{
			"img-good": {"features.flooring": listField("Hardwood")},
		},
		fail: map[string]bool{"img-bad": true},
	}
	l := canonical.New()

	photos := []Photo{
		{ID: "img-bad", Data: []byte{0x1}, MIMEType: "image/jpeg"},
		{ID: "img-good", Data: []byte{0x2}, MIMEType: "image/jpeg"},
	}
	fields := MaterialsPass(context.Background(), ex, l, photos)

	floors := fields["features.flooring"].Value.ListVal()
	if len(floors) != 1 || floors[0] != "Hardwood" {
		t.Errorf("features.flooring = %v, want [Hardwood]", floors)
	}
}
