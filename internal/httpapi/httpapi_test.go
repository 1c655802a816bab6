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

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/automation"
	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/enrich"
	"github.com/brightdoor/listingprep/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	listings map[uuid.UUID]*canonical.Listing
	locked   map[uuid.UUID]bool
	images   map[uuid.UUID]uuid.UUID // image -> owning listing
	labels   map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings: make(map[uuid.UUID]*canonical.Listing),
		locked:   make(map[uuid.UUID]bool),
		images:   make(map[uuid.UUID]uuid.UUID),
		labels:   make(map[uuid.UUID]string),
	}
}

func (f *fakeStore) CreateListing(ctx context.Context, createdBy string) (uuid.UUID, error) {
	id := uuid.New()
	f.listings[id] = canonical.New()
	return id, nil
}

func (f *fakeStore) GetCanonical(ctx context.Context, id uuid.UUID) (*canonical.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) UpdateCanonical(ctx context.Context, id uuid.UUID, l *canonical.Listing) ([]store.LabelChange, error) {
	if _, ok := f.listings[id]; !ok {
		return nil, store.ErrNotFound
	}
	if f.locked[id] {
		return nil, store.ErrLocked
	}
	f.listings[id] = l
	return nil, nil
}

func (f *fakeStore) Validate(ctx context.Context, id uuid.UUID, userID string) (store.ValidateResult, error) {
	if _, ok := f.listings[id]; !ok {
		return store.ValidateResult{}, store.ErrNotFound
	}
	return store.ValidateResult{Success: false, Errors: []string{"location.street_address"}}, nil
}

func (f *fakeStore) AddDocument(ctx context.Context, id uuid.UUID, filename, storagePath string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeStore) ListDocuments(ctx context.Context, id uuid.UUID) ([]store.Document, error) {
	return nil, nil
}

func (f *fakeStore) DeleteDocument(ctx context.Context, id uuid.UUID) (string, error) {
	return "", store.ErrNotFound
}

func (f *fakeStore) AddImage(ctx context.Context, id uuid.UUID, storagePath, originalFilename string) (uuid.UUID, error) {
	if _, ok := f.listings[id]; !ok {
		return uuid.Nil, store.ErrNotFound
	}
	if f.locked[id] {
		return uuid.Nil, store.ErrLocked
	}
	imageID := uuid.New()
	f.images[imageID] = id
	return imageID, nil
}

func (f *fakeStore) GetImage(ctx context.Context, id uuid.UUID) (*store.Image, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListImages(ctx context.Context, id uuid.UUID) ([]store.Image, error) {
	return nil, nil
}

func (f *fakeStore) DeleteImage(ctx context.Context, id uuid.UUID) (string, error) {
	listingID, ok := f.images[id]
	if !ok {
		return "", store.ErrNotFound
	}
	if f.locked[listingID] {
		return "", store.ErrLocked
	}
	delete(f.images, id)
	return "images/" + id.String(), nil
}

func (f *fakeStore) SetFinalLabel(ctx context.Context, id uuid.UUID, label string) error {
	listingID, ok := f.images[id]
	if !ok {
		return store.ErrNotFound
	}
	if f.locked[listingID] {
		return store.ErrLocked
	}
	f.labels[id] = label
	return nil
}

func (f *fakeStore) UpdateImagePath(ctx context.Context, id uuid.UUID, storagePath string) error {
	return nil
}

type fakeBlobs struct{}

func (fakeBlobs) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	return nil
}
func (fakeBlobs) Delete(ctx context.Context, objectName string) error       { return nil }
func (fakeBlobs) Rename(ctx context.Context, oldName, newName string) error { return nil }

type fakeJobs struct {
	published []string
}

func (f *fakeJobs) Publish(ctx context.Context, kind string, listingID uuid.UUID) (string, error) {
	f.published = append(f.published, kind)
	return "task-1", nil
}

type fakeEnricher struct{}

func (fakeEnricher) Resequence(ctx context.Context, id uuid.UUID, blobs enrich.Renamer) (*enrich.SequenceResult, error) {
	return &enrich.SequenceResult{}, nil
}

type fakeAutofiller struct{}

func (fakeAutofiller) Run(ctx context.Context, id uuid.UUID, url string, headed bool) (automation.Result, error) {
	return automation.Result{Status: automation.StatusSaved}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeStore, *fakeJobs) {
	t.Helper()
	st := newFakeStore()
	jobs := &fakeJobs{}
	h := NewHandler(st, fakeBlobs{}, jobs, fakeEnricher{}, fakeAutofiller{}, automation.NewManager())
	return h.Router(), st, jobs
}

func TestCreateAndGetListing(t *testing.T) {
	router, st, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/listings", strings.NewReader(`{"created_by":"agent1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		ListingID uuid.UUID `json:"listing_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if _, ok := st.listings[created.ListingID]; !ok {
		t.Fatal("listing not stored")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/listings/"+created.ListingID.String()+"/canonical", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
}

func TestGetCanonicalNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/listings/"+uuid.NewString()+"/canonical", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateCanonicalLockedConflict(t *testing.T) {
	router, st, _ := newTestRouter(t)

	id := uuid.New()
	st.listings[id] = canonical.New()
	st.locked[id] = true

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/listings/"+id.String()+"/canonical", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestValidateReturnsMissingPaths(t *testing.T) {
	router, st, _ := newTestRouter(t)

	id := uuid.New()
	st.listings[id] = canonical.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/listings/"+id.String()+"/validate", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var result store.ValidateResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if result.Success {
		t.Error("expected validation failure")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "location.street_address" {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestEnqueueExtract(t *testing.T) {
	router, st, jobs := newTestRouter(t)

	id := uuid.New()
	st.listings[id] = canonical.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/listings/"+id.String()+"/extract", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	if len(jobs.published) != 1 || jobs.published[0] != "listing.extract" {
		t.Errorf("published = %v", jobs.published)
	}
}

func TestSetImageLabelRequiresLabel(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/images/"+uuid.NewString()+"/label", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImageWritesLockedConflict(t *testing.T) {
	router, st, _ := newTestRouter(t)

	listingID := uuid.New()
	st.listings[listingID] = canonical.New()
	st.locked[listingID] = true
	imageID := uuid.New()
	st.images[imageID] = listingID

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/images/"+imageID.String()+"/label", strings.NewReader(`{"label":"kitchen"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("label status = %d, want 409", w.Code)
	}
	if _, ok := st.labels[imageID]; ok {
		t.Error("label written despite lock")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/images/"+imageID.String(), nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("delete status = %d, want 409", w.Code)
	}
	if _, ok := st.images[imageID]; !ok {
		t.Error("image deleted despite lock")
	}

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "front.jpg")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("jpegdata"))
	mw.Close()

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/listings/"+listingID.String()+"/images", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("upload status = %d, want 409", w.Code)
	}
}
