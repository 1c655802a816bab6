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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// startAutomation kicks off a browser autofill run in the background. The
// run outlives the request: the operator may spend minutes logging in to
// the MLS before the fill proceeds.
func (h *Handler) startAutomation(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var body struct {
		URL    string `json:"url" binding:"required"`
		Headed *bool  `json:"headed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	headed := true
	if body.Headed != nil {
		headed = *body.Headed
	}

	if h.sessions.IsActive(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "automation already running for this listing"})
		return
	}

	h.mu.Lock()
	delete(h.autofillRes, id)
	h.mu.Unlock()

	go h.runAutofill(id, body.URL, headed)

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *Handler) runAutofill(id uuid.UUID, url string, headed bool) {
	result, err := h.autofill.Run(context.Background(), id, url, headed)
	if err != nil {
		slog.Error("autofill run failed", "listing_id", id, "error", err)
		result.Errors = append(result.Errors, err.Error())
	}

	h.mu.Lock()
	h.autofillRes[id] = &result
	h.mu.Unlock()
}

func (h *Handler) automationStatus(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	h.mu.Lock()
	result := h.autofillRes[id]
	h.mu.Unlock()

	status := gin.H{"active": h.sessions.IsActive(id)}
	if sess, ok := h.sessions.Get(id); ok {
		status["url"] = sess.URL
		status["started_at"] = sess.StartedAt
	}
	if result != nil {
		status["result"] = result
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) closeAutomation(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}
	h.sessions.Close(id)
	c.JSON(http.StatusOK, gin.H{"closed": true})
}
