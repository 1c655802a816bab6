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
	"sync/atomic"

	"github.com/chromedp/chromedp"
)

// Field is a located form control, addressable by the marker attribute the
// finder stamped on it.
type Field struct {
	Selector  string `json:"selector"`
	Tag       string `json:"tag"`
	InputType string `json:"input_type"`
}

var fieldToken atomic.Int64

// findFieldScript locates a form control for a human-readable label. The
// strategies run in order of reliability: label[for], label-wrapped control,
// aria-label, placeholder, then text proximity. The winner is stamped with a
// data-autofill-target marker so later actions address it unambiguously.
const findFieldScript = `
(function(label, token) {
	var needle = label.toLowerCase().trim();
	var found = null;

	function control(el) {
		if (!el) return null;
		var tag = el.tagName.toLowerCase();
		if (tag === 'input' || tag === 'select' || tag === 'textarea') return el;
		return el.querySelector('input, select, textarea');
	}

	// 1. <label for="..."> pointing at the control's id.
	var labels = document.querySelectorAll('label[for]');
	for (var i = 0; i < labels.length && !found; i++) {
		if ((labels[i].textContent || '').toLowerCase().includes(needle)) {
			found = document.getElementById(labels[i].getAttribute('for'));
		}
	}

	// 2. <label> wrapping the control.
	if (!found) {
		var wrapped = document.querySelectorAll('label');
		for (var i = 0; i < wrapped.length && !found; i++) {
			if ((wrapped[i].textContent || '').toLowerCase().includes(needle)) {
				found = control(wrapped[i]);
			}
		}
	}

	// 3. aria-label, case-insensitive substring.
	if (!found) {
		var aria = document.querySelectorAll('input[aria-label], select[aria-label], textarea[aria-label]');
		for (var i = 0; i < aria.length && !found; i++) {
			if (aria[i].getAttribute('aria-label').toLowerCase().includes(needle)) {
				found = aria[i];
			}
		}
	}

	// 4. placeholder, case-insensitive substring.
	if (!found) {
		var ph = document.querySelectorAll('input[placeholder], textarea[placeholder]');
		for (var i = 0; i < ph.length && !found; i++) {
			if (ph[i].getAttribute('placeholder').toLowerCase().includes(needle)) {
				found = ph[i];
			}
		}
	}

	// 5. Proximity: any element whose own text matches, control in the same
	// container.
	if (!found) {
		var all = document.querySelectorAll('span, div, td, th, p');
		for (var i = 0; i < all.length && !found; i++) {
			var own = '';
			for (var c = 0; c < all[i].childNodes.length; c++) {
				if (all[i].childNodes[c].nodeType === 3) own += all[i].childNodes[c].textContent;
			}
			if (own.toLowerCase().trim() === needle && all[i].parentElement) {
				found = control(all[i].parentElement);
			}
		}
	}

	if (!found) return null;
	found.setAttribute('data-autofill-target', token);
	return JSON.stringify({
		selector: '[data-autofill-target="' + token + '"]',
		tag: found.tagName.toLowerCase(),
		input_type: (found.getAttribute('type') || '').toLowerCase()
	});
})(%s, %s)
`

// FindFieldByLabel locates the form control matching an MLS field label.
// Returns ok=false when no strategy matched, which the caller records as a
// skipped field rather than an error. The session's tab context bounds the
// call.
func (s *Session) FindFieldByLabel(label string) (Field, bool, error) {
	token := fmt.Sprintf("f%d", fieldToken.Add(1))
	labelJSON, _ := json.Marshal(label)
	tokenJSON, _ := json.Marshal(token)

	var raw string
	script := fmt.Sprintf(findFieldScript, labelJSON, tokenJSON)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return Field{}, false, fmt.Errorf("finding field %q: %w", label, err)
	}
	if raw == "" {
		return Field{}, false, nil
	}

	var f Field
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Field{}, false, fmt.Errorf("decoding field match for %q: %w", label, err)
	}
	return f, true, nil
}

// findFileInputScript stamps the form's first file input with the marker
// attribute, falling back to a file input inside an upload/dropzone
// container when the input itself is hidden behind a picker button.
const findFileInputScript = `
(function(token) {
	var found = document.querySelector('input[type="file"]');
	if (!found) {
		var zone = document.querySelector('[class*="dropzone" i], [class*="upload" i], [id*="upload" i]');
		if (zone) found = zone.querySelector('input[type="file"]');
	}
	if (!found) return null;
	found.setAttribute('data-autofill-target', token);
	return JSON.stringify({
		selector: '[data-autofill-target="' + token + '"]',
		tag: 'input',
		input_type: 'file'
	});
})(%s)
`

// FindFileInput locates the form's photo upload input. Returns ok=false
// when the form has none.
func (s *Session) FindFileInput() (Field, bool, error) {
	token := fmt.Sprintf("f%d", fieldToken.Add(1))
	tokenJSON, _ := json.Marshal(token)

	var raw string
	script := fmt.Sprintf(findFileInputScript, tokenJSON)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return Field{}, false, fmt.Errorf("finding file input: %w", err)
	}
	if raw == "" {
		return Field{}, false, nil
	}

	var f Field
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Field{}, false, fmt.Errorf("decoding file input match: %w", err)
	}
	return f, true, nil
}
