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

// Package httpapi exposes the listing-prep services over HTTP. Handlers are
// thin: parse, call a service, translate sentinel errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/automation"
	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/enrich"
	"github.com/brightdoor/listingprep/internal/store"
)

// Store is the persistence surface the routes consume.
type Store interface {
	CreateListing(ctx context.Context, createdBy string) (uuid.UUID, error)
	GetCanonical(ctx context.Context, listingID uuid.UUID) (*canonical.Listing, error)
	UpdateCanonical(ctx context.Context, listingID uuid.UUID, l *canonical.Listing) ([]store.LabelChange, error)
	Validate(ctx context.Context, listingID uuid.UUID, userID string) (store.ValidateResult, error)

	AddDocument(ctx context.Context, listingID uuid.UUID, filename, storagePath string) (uuid.UUID, error)
	ListDocuments(ctx context.Context, listingID uuid.UUID) ([]store.Document, error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) (string, error)

	AddImage(ctx context.Context, listingID uuid.UUID, storagePath, originalFilename string) (uuid.UUID, error)
	GetImage(ctx context.Context, imageID uuid.UUID) (*store.Image, error)
	ListImages(ctx context.Context, listingID uuid.UUID) ([]store.Image, error)
	DeleteImage(ctx context.Context, imageID uuid.UUID) (string, error)
	SetFinalLabel(ctx context.Context, imageID uuid.UUID, label string) error
	UpdateImagePath(ctx context.Context, imageID uuid.UUID, storagePath string) error
}

// Blobs is the object-store surface the routes consume.
type Blobs interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
	Delete(ctx context.Context, objectName string) error
	Rename(ctx context.Context, oldName, newName string) error
}

// Jobs publishes async pipeline tasks.
type Jobs interface {
	Publish(ctx context.Context, kind string, listingID uuid.UUID) (string, error)
}

// Enricher runs the synchronous enrichment operations the API exposes
// directly.
type Enricher interface {
	Resequence(ctx context.Context, listingID uuid.UUID, blobs enrich.Renamer) (*enrich.SequenceResult, error)
}

// Autofiller drives a browser autofill run.
type Autofiller interface {
	Run(ctx context.Context, listingID uuid.UUID, url string, headed bool) (automation.Result, error)
}

// Handler wires the services into gin routes.
type Handler struct {
	store    Store
	blobs    Blobs
	jobs     Jobs
	enricher Enricher
	autofill Autofiller
	sessions *automation.Manager

	mu          sync.Mutex
	autofillRes map[uuid.UUID]*automation.Result
}

func NewHandler(st Store, blobs Blobs, jobs Jobs, enricher Enricher, autofill Autofiller, sessions *automation.Manager) *Handler {
	return &Handler{
		store:       st,
		blobs:       blobs,
		jobs:        jobs,
		enricher:    enricher,
		autofill:    autofill,
		sessions:    sessions,
		autofillRes: make(map[uuid.UUID]*automation.Result),
	}
}

// Router builds the full route table.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/listings", h.createListing)
		api.GET("/listings/:id/canonical", h.getCanonical)
		api.PUT("/listings/:id/canonical", h.updateCanonical)
		api.POST("/listings/:id/validate", h.validateListing)

		api.POST("/listings/:id/extract", h.enqueueExtract)
		api.POST("/listings/:id/enrich", h.enqueueEnrich)
		api.POST("/listings/:id/resequence", h.resequence)
		api.GET("/listings/:id/mls/preview", h.mlsPreview)

		api.POST("/listings/:id/documents", h.uploadDocument)
		api.GET("/listings/:id/documents", h.listDocuments)
		api.DELETE("/documents/:id", h.deleteDocument)

		api.POST("/listings/:id/images", h.uploadImage)
		api.GET("/listings/:id/images", h.listImages)
		api.DELETE("/images/:id", h.deleteImage)
		api.PUT("/images/:id/label", h.setImageLabel)

		api.POST("/listings/:id/automation", h.startAutomation)
		api.GET("/listings/:id/automation", h.automationStatus)
		api.DELETE("/listings/:id/automation", h.closeAutomation)
	}
	return r
}

// listingID parses the :id path parameter, writing the 400 itself on
// failure.
func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeStoreError maps the store sentinels onto HTTP statuses.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "listing is validated and locked"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
