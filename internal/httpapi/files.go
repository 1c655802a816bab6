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
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightdoor/listingprep/internal/objstore"
)

// readUpload pulls the multipart "file" part into memory, writing the 400
// itself on failure.
func readUpload(c *gin.Context) (data []byte, filename, contentType string, ok bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading upload: " + err.Error()})
		return nil, "", "", false
	}

	contentType = header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, header.Filename, contentType, true
}

func (h *Handler) uploadDocument(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	data, filename, contentType, ok := readUpload(c)
	if !ok {
		return
	}

	objectName := objstore.DocumentPath(id, filename)
	if err := h.blobs.Put(c.Request.Context(), objectName, data, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storing document: " + err.Error()})
		return
	}

	docID, err := h.store.AddDocument(c.Request.Context(), id, filename, objectName)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document_id": docID, "storage_path": objectName})
}

func (h *Handler) listDocuments(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	docs, err := h.store.ListDocuments(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) deleteDocument(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	storagePath, err := h.store.DeleteDocument(c.Request.Context(), docID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if err := h.blobs.Delete(c.Request.Context(), storagePath); err != nil {
		// The row is gone; the orphaned object is only worth a log line.
		slog.Warn("deleting stored document", "path", storagePath, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) uploadImage(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	data, filename, contentType, ok := readUpload(c)
	if !ok {
		return
	}

	objectName := objstore.ImagePath(id, filename)
	if err := h.blobs.Put(c.Request.Context(), objectName, data, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storing image: " + err.Error()})
		return
	}

	imageID, err := h.store.AddImage(c.Request.Context(), id, objectName, filename)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image_id": imageID, "storage_path": objectName})
}

func (h *Handler) listImages(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	images, err := h.store.ListImages(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *Handler) deleteImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	storagePath, err := h.store.DeleteImage(c.Request.Context(), imageID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if err := h.blobs.Delete(c.Request.Context(), storagePath); err != nil {
		slog.Warn("deleting stored image", "path", storagePath, "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) setImageLabel(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body struct {
		Label string `json:"label" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label is required"})
		return
	}

	if err := h.store.SetFinalLabel(c.Request.Context(), imageID, body.Label); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
