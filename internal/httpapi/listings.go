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
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/canonical"
	"github.com/brightdoor/listingprep/internal/mls"
	"github.com/brightdoor/listingprep/internal/objstore"
	"github.com/brightdoor/listingprep/internal/photos"
	"github.com/brightdoor/listingprep/internal/queue"
	"github.com/brightdoor/listingprep/internal/store"
)

func (h *Handler) createListing(c *gin.Context) {
	var body struct {
		CreatedBy string `json:"created_by"`
	}
	// Body is optional; an anonymous create is fine.
	_ = c.ShouldBindJSON(&body)

	id, err := h.store.CreateListing(c.Request.Context(), body.CreatedBy)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing_id": id})
}

func (h *Handler) getCanonical(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.store.GetCanonical(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) updateCanonical(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var listing canonical.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid canonical payload: " + err.Error()})
		return
	}

	labelChanges, err := h.store.UpdateCanonical(c.Request.Context(), id, &listing)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	// Label edits rename the stored object so filenames track room labels.
	var warnings []string
	for _, change := range labelChanges {
		if err := h.renameForLabel(c.Request.Context(), id, change); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if len(warnings) > 0 {
		c.JSON(http.StatusOK, gin.H{"updated": true, "warnings": warnings})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// renameForLabel moves an image's stored object to a filename matching its
// new room label.
func (h *Handler) renameForLabel(ctx context.Context, listingID uuid.UUID, change store.LabelChange) error {
	img, err := h.store.GetImage(ctx, change.ImageID)
	if err != nil {
		return fmt.Errorf("image %s: %w", change.ImageID, err)
	}

	base := photos.FormatLabel(change.Label)
	if base == "" {
		base = "Other"
	}
	newPath := objstore.ImagePath(listingID, base+strings.ToLower(path.Ext(img.OriginalFilename)))
	if newPath == img.StoragePath {
		return nil
	}
	if err := h.blobs.Rename(ctx, img.StoragePath, newPath); err != nil {
		return fmt.Errorf("renaming image %s: %w", change.ImageID, err)
	}
	return h.store.UpdateImagePath(ctx, change.ImageID, newPath)
}

func (h *Handler) validateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := h.store.Validate(c.Request.Context(), id, body.UserID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) enqueueExtract(c *gin.Context) {
	h.enqueue(c, queue.TaskExtract)
}

func (h *Handler) enqueueEnrich(c *gin.Context) {
	h.enqueue(c, queue.TaskEnrich)
}

func (h *Handler) enqueue(c *gin.Context, kind string) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	taskID, err := h.jobs.Publish(c.Request.Context(), kind, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "kind": kind})
}

func (h *Handler) resequence(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	result, err := h.enricher.Resequence(c.Request.Context(), id, h.blobs)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) mlsPreview(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.store.GetCanonical(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, mls.PrepareFields(listing))
}
