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

// Package automation drives a Chrome session that fills an MLS listing form
// from prepared field values. It only ever saves drafts: nothing in this
// package clicks submit, publish, activate, or post.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// Session is one live browser tab working on one listing's MLS form.
type Session struct {
	ListingID uuid.UUID
	URL       string
	StartedAt time.Time

	ctx     context.Context
	cancels []context.CancelFunc
}

// Ctx returns the chromedp tab context for running actions.
func (s *Session) Ctx() context.Context { return s.ctx }

// Close tears down the tab and its browser allocator.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Manager tracks at most one browser session per listing. Concurrent runs
// against the same listing are rejected rather than queued.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	launch func(ctx context.Context, url string, headed bool) (*Session, error)
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		launch:   launchBrowser,
	}
}

// Open starts a browser session for the listing and navigates to url.
// Headed mode is the default in practice: the operator logs in to the MLS
// by hand before the fill starts.
func (m *Manager) Open(ctx context.Context, listingID uuid.UUID, url string, headed bool) (*Session, error) {
	m.mu.Lock()
	if _, busy := m.sessions[listingID]; busy {
		m.mu.Unlock()
		return nil, fmt.Errorf("session already active for listing %s", listingID)
	}
	// Reserve the slot before the slow browser launch.
	m.sessions[listingID] = nil
	m.mu.Unlock()

	sess, err := m.launch(ctx, url, headed)
	if err != nil {
		m.mu.Lock()
		delete(m.sessions, listingID)
		m.mu.Unlock()
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	sess.ListingID = listingID
	sess.URL = url
	sess.StartedAt = time.Now().UTC()

	m.mu.Lock()
	m.sessions[listingID] = sess
	m.mu.Unlock()

	slog.Info("automation session opened", "listing_id", listingID, "url", url, "headed", headed)
	return sess, nil
}

// Get returns the active session for a listing, if any.
func (m *Manager) Get(listingID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[listingID]
	return sess, ok && sess != nil
}

// IsActive reports whether a session exists (or is being opened) for the
// listing.
func (m *Manager) IsActive(listingID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[listingID]
	return ok
}

// Close shuts down the listing's session. Closing a listing with no session
// is a no-op.
func (m *Manager) Close(listingID uuid.UUID) {
	m.mu.Lock()
	sess := m.sessions[listingID]
	delete(m.sessions, listingID)
	m.mu.Unlock()

	if sess != nil {
		sess.Close()
		slog.Info("automation session closed", "listing_id", listingID)
	}
}

func launchBrowser(ctx context.Context, url string, headed bool) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !headed),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	sess := &Session{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelAlloc, cancelTab},
	}

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		sess.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	return sess, nil
}
