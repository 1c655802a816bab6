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

package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/store"
)

func TestManagerSessionLifecycle(t *testing.T) {
	m := NewManager()
	m.launch = func(ctx context.Context, url string, headed bool) (*Session, error) {
		return &Session{}, nil
	}

	listingID := uuid.New()

	if m.IsActive(listingID) {
		t.Fatal("session active before open")
	}

	sess, err := m.Open(context.Background(), listingID, "https://mls.example.com/form", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.URL != "https://mls.example.com/form" {
		t.Errorf("URL = %q", sess.URL)
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
	if !m.IsActive(listingID) {
		t.Error("session not active after open")
	}

	if _, err := m.Open(context.Background(), listingID, "https://mls.example.com/form", true); err == nil {
		t.Error("second open for same listing should fail")
	}

	got, ok := m.Get(listingID)
	if !ok || got != sess {
		t.Error("Get did not return the open session")
	}

	m.Close(listingID)
	if m.IsActive(listingID) {
		t.Error("session still active after close")
	}
	// Closing again is a no-op.
	m.Close(listingID)
}

func TestManagerLaunchFailureReleasesSlot(t *testing.T) {
	m := NewManager()
	m.launch = func(ctx context.Context, url string, headed bool) (*Session, error) {
		return nil, context.DeadlineExceeded
	}

	listingID := uuid.New()
	if _, err := m.Open(context.Background(), listingID, "https://mls.example.com", false); err == nil {
		t.Fatal("expected launch error")
	}
	if m.IsActive(listingID) {
		t.Error("failed launch left the listing slot reserved")
	}
}

func TestIsSaveLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Save", true},
		{"Save Draft", true},
		{"  save changes  ", true},
		{"Save & Continue", true},
		{"Submit", false},
		{"Save & Publish", false},
		{"Save and Submit", false},
		{"Publish Listing", false},
		{"Activate", false},
		{"Post Listing", false},
		{"Cancel", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSaveLabel(tt.label); got != tt.want {
			t.Errorf("IsSaveLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestFormatDateValue(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2026-06-15", "06/15/2026", false},
		{"06/15/2026", "06/15/2026", false},
		{"2026-06-15T10:30:00", "06/15/2026", false},
		{"June 15, 2026", "06/15/2026", false},
		{"Jun 15, 2026", "06/15/2026", false},
		{"not a date", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := FormatDateValue(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatDateValue(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("FormatDateValue(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatDateValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeOption(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Single-Family Residence", "singlefamilyresidence"},
		{"single family residence", "singlefamilyresidence"},
		{"  Cable Available  ", "cableavailable"},
		{"R-1", "r1"},
	}
	for _, tt := range tests {
		if got := normalizeOption(tt.in); got != tt.want {
			t.Errorf("normalizeOption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValueCoercions(t *testing.T) {
	if got := asString(275000.0); got != "275000" {
		t.Errorf("asString(275000.0) = %q", got)
	}
	if got := asString(true); got != "Yes" {
		t.Errorf("asString(true) = %q", got)
	}
	if n, ok := asFloat("3.5"); !ok || n != 3.5 {
		t.Errorf("asFloat(\"3.5\") = %v, %v", n, ok)
	}
	if _, ok := asFloat("three"); ok {
		t.Error("asFloat(\"three\") should fail")
	}
	if !asBool("Yes") || asBool("no") || !asBool(true) {
		t.Error("asBool truthiness wrong")
	}

	list := asList([]any{"Carpet", "Tile"})
	if len(list) != 2 || list[0] != "Carpet" || list[1] != "Tile" {
		t.Errorf("asList([]any) = %v", list)
	}
	if got := asList("Carpet"); len(got) != 1 || got[0] != "Carpet" {
		t.Errorf("asList(scalar) = %v", got)
	}
	if asList(nil) != nil {
		t.Error("asList(nil) should be nil")
	}
}

type fakeBlobs struct {
	objects map[string][]byte
}

func (f fakeBlobs) Fetch(ctx context.Context, objectName string) ([]byte, string, error) {
	data, ok := f.objects[objectName]
	if !ok {
		return nil, "", errors.New("object not found")
	}
	return data, "image/jpeg", nil
}

func TestPhotoOrder(t *testing.T) {
	base := time.Now()
	images := []store.Image{
		{StoragePath: "b.jpg", DisplayOrder: 2, UploadedAt: base},
		{StoragePath: "a.jpg", DisplayOrder: 1, UploadedAt: base.Add(time.Hour)},
		{StoragePath: "c.jpg", DisplayOrder: 2, UploadedAt: base.Add(-time.Hour)},
	}

	got := photoOrder(images)
	want := []string{"a.jpg", "c.jpg", "b.jpg"}
	for i, w := range want {
		if got[i].StoragePath != w {
			t.Errorf("order[%d] = %s, want %s", i, got[i].StoragePath, w)
		}
	}
	if images[0].StoragePath != "b.jpg" {
		t.Error("input slice reordered")
	}
}

func TestPhotoOrderCap(t *testing.T) {
	images := make([]store.Image, maxUploadPhotos+5)
	for i := range images {
		images[i].DisplayOrder = i + 1
	}
	if got := photoOrder(images); len(got) != maxUploadPhotos {
		t.Errorf("len = %d, want %d", len(got), maxUploadPhotos)
	}
}

func TestStagePhotos(t *testing.T) {
	blobs := fakeBlobs{objects: map[string][]byte{
		"listings/x/images/front.jpg":   []byte("front"),
		"listings/x/images/kitchen.jpg": []byte("kitchen"),
	}}
	images := []store.Image{
		{StoragePath: "listings/x/images/front.jpg", DisplayOrder: 1},
		{StoragePath: "listings/x/images/missing.jpg", DisplayOrder: 2},
		{StoragePath: "listings/x/images/kitchen.jpg", DisplayOrder: 3},
	}

	dir, paths, warnings, err := stagePhotos(context.Background(), blobs, images)
	if err != nil {
		t.Fatalf("stagePhotos: %v", err)
	}
	defer os.RemoveAll(dir)

	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 staged", paths)
	}
	if filepath.Base(paths[0]) != "001_front.jpg" || filepath.Base(paths[1]) != "003_kitchen.jpg" {
		t.Errorf("staged names = %s, %s", filepath.Base(paths[0]), filepath.Base(paths[1]))
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != "front" {
		t.Errorf("staged content = %q, %v", data, err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one for the missing object", warnings)
	}
}
