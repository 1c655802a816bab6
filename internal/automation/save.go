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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// SaveResult reports a save-draft attempt.
type SaveResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// savePatterns are the button labels treated as draft saves.
var savePatterns = []string{
	"save draft",
	"save as draft",
	"save & continue",
	"save and continue",
	"save changes",
	"save listing",
	"save",
}

// forbiddenPatterns are labels that move a listing toward going live. A
// button matching any of these is never clicked, even when it also matches a
// save pattern.
var forbiddenPatterns = []string{
	"submit",
	"publish",
	"activate",
	"post",
	"go live",
}

// IsSaveLabel reports whether a button label is a safe draft-save target.
func IsSaveLabel(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, bad := range forbiddenPatterns {
		if strings.Contains(l, bad) {
			return false
		}
	}
	for _, want := range savePatterns {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

// clickSaveScript finds the first visible enabled button whose label passes
// the same allow/deny filtering as IsSaveLabel, clicks it, and returns its
// label. The deny list is applied first so a "Save & Publish" button is
// never touched.
const clickSaveScript = `
(function() {
	var deny = ["submit", "publish", "activate", "post", "go live"];
	var allow = ["save draft", "save as draft", "save & continue", "save and continue",
		"save changes", "save listing", "save"];

	var candidates = document.querySelectorAll(
		'button, input[type="button"], input[type="submit"], a[role="button"]');
	for (var i = 0; i < candidates.length; i++) {
		var el = candidates[i];
		var label = (el.textContent || el.value || '').toLowerCase().trim();
		if (!label || el.disabled) continue;
		if (el.offsetParent === null) continue;

		var denied = false;
		for (var d = 0; d < deny.length; d++) {
			if (label.includes(deny[d])) { denied = true; break; }
		}
		if (denied) continue;

		for (var a = 0; a < allow.length; a++) {
			if (label.includes(allow[a])) {
				el.click();
				return label;
			}
		}
	}
	return "";
})()
`

const saveStatusScript = `
(function() {
	var out = { success: "", errors: [] };

	var successSel = ['[class*="success"]', '[role="alert"]', '.toast-success'];
	for (var i = 0; i < successSel.length && !out.success; i++) {
		var els = document.querySelectorAll(successSel[i]);
		for (var j = 0; j < els.length; j++) {
			var text = (els[j].textContent || '').trim();
			if (text && text.toLowerCase().includes('saved') && els[j].offsetParent !== null) {
				out.success = text;
				break;
			}
		}
	}

	var errorSel = ['[class*="error"]', '[class*="alert-danger"]', '[aria-invalid="true"]',
		'.toast-error', '[class*="validation"]'];
	for (var i = 0; i < errorSel.length; i++) {
		var els = document.querySelectorAll(errorSel[i]);
		for (var j = 0; j < els.length && out.errors.length < 10; j++) {
			var text = (els[j].textContent || '').trim();
			if (text && text.length < 500 && els[j].offsetParent !== null &&
				out.errors.indexOf(text) === -1) {
				out.errors.push(text);
			}
		}
	}
	return JSON.stringify(out);
})()
`

type saveStatus struct {
	Success string   `json:"success"`
	Errors  []string `json:"errors"`
}

// ClickSave clicks the form's save-draft button and waits for the page to
// acknowledge: a success message, validation errors, or a URL change. It
// never clicks submit or publish.
func (s *Session) ClickSave(timeout time.Duration) SaveResult {
	var originalURL string
	if err := chromedp.Run(s.ctx, chromedp.Location(&originalURL)); err != nil {
		return SaveResult{Message: fmt.Sprintf("reading page location: %v", err)}
	}

	var clicked string
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(clickSaveScript, &clicked)); err != nil {
		return SaveResult{Message: fmt.Sprintf("clicking save: %v", err)}
	}
	if clicked == "" {
		return SaveResult{Message: "save button not found"}
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var raw string
		if err := chromedp.Run(s.ctx, chromedp.Evaluate(saveStatusScript, &raw)); err != nil {
			// Navigation mid-poll invalidates evaluation; treat as pending.
			time.Sleep(500 * time.Millisecond)
			continue
		}

		var status saveStatus
		if err := json.Unmarshal([]byte(raw), &status); err == nil {
			if status.Success != "" {
				return SaveResult{Success: true, Message: status.Success}
			}
			if len(status.Errors) > 0 {
				return SaveResult{Message: "save completed with errors", Errors: status.Errors}
			}
		}

		var url string
		if err := chromedp.Run(s.ctx, chromedp.Location(&url)); err == nil && url != originalURL {
			return SaveResult{Success: true, Message: "save successful (redirect detected)"}
		}

		time.Sleep(500 * time.Millisecond)
	}

	return SaveResult{Message: "save status unclear (timeout)"}
}

// Screenshot captures the page and writes it under dir, returning the file
// path.
func (s *Session) Screenshot(dir, stage string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}

	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.png", s.ListingID, stage, time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return path, nil
}
