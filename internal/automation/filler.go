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
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeOption reduces an option label to lowercase alphanumerics so
// "Single-Family Residence" matches "single family residence".
func normalizeOption(s string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// dateInputFormats are the value shapes the canonical pipeline and the MLS
// transforms can hand us.
var dateInputFormats = []string{
	"01/02/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// FormatDateValue parses a date in any accepted shape and renders it the way
// MLS date inputs expect, MM/DD/YYYY.
func FormatDateValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateInputFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("01/02/2006"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", value)
}

// FillText clears the control, types the value, and verifies the control
// holds it afterwards.
func (s *Session) FillText(f Field, value string) (bool, error) {
	var got string
	err := chromedp.Run(s.ctx,
		chromedp.SetValue(f.Selector, value, chromedp.ByQuery),
		fireChangeEvent(f.Selector),
		chromedp.Value(f.Selector, &got, chromedp.ByQuery),
	)
	if err != nil {
		return false, fmt.Errorf("filling text field: %w", err)
	}
	return got == value, nil
}

// FillNumber renders the number without trailing zeros and fills it as text.
func (s *Session) FillNumber(f Field, value float64) (bool, error) {
	return s.FillText(f, strconv.FormatFloat(value, 'f', -1, 64))
}

// FillDate accepts any supported date shape and fills the MM/DD/YYYY form.
func (s *Session) FillDate(f Field, value string) (bool, error) {
	formatted, err := FormatDateValue(value)
	if err != nil {
		return false, err
	}
	return s.FillText(f, formatted)
}

// selectOptionScript picks an option by exact match on text or value first,
// then by normalized match (lowercase, alphanumerics only). Multi-selects
// accumulate selections across calls instead of replacing them.
const selectOptionScript = `
(function(selector, want, wantNorm) {
	var el = document.querySelector(selector);
	if (!el || el.tagName.toLowerCase() !== 'select') return false;

	function norm(s) { return (s || '').toLowerCase().trim().replace(/[^a-z0-9]+/g, ''); }

	var match = null;
	for (var i = 0; i < el.options.length && !match; i++) {
		var o = el.options[i];
		if (o.text.trim() === want || o.value === want) match = o;
	}
	for (var i = 0; i < el.options.length && !match; i++) {
		var o = el.options[i];
		if (norm(o.text) === wantNorm || norm(o.value) === wantNorm) match = o;
	}
	if (!match) return false;

	if (!el.multiple) {
		el.value = match.value;
	} else {
		match.selected = true;
	}
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})(%s, %s, %s)
`

// FillDropdown selects one option. For multi-enum values the caller invokes
// it once per value; selections on a multi-select accumulate.
func (s *Session) FillDropdown(f Field, value string) (bool, error) {
	value = strings.TrimSpace(value)
	selJSON, _ := json.Marshal(f.Selector)
	wantJSON, _ := json.Marshal(value)
	normJSON, _ := json.Marshal(normalizeOption(value))

	var ok bool
	script := fmt.Sprintf(selectOptionScript, selJSON, wantJSON, normJSON)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return false, fmt.Errorf("selecting dropdown option: %w", err)
	}
	return ok, nil
}

const setCheckboxScript = `
(function(selector, want) {
	var el = document.querySelector(selector);
	if (!el) return false;
	if (el.checked !== want) {
		el.click();
	}
	return el.checked === want;
})(%s, %t)
`

// FillCheckbox toggles only when the current state differs from the target,
// then verifies.
func (s *Session) FillCheckbox(f Field, checked bool) (bool, error) {
	selJSON, _ := json.Marshal(f.Selector)

	var ok bool
	script := fmt.Sprintf(setCheckboxScript, selJSON, checked)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return false, fmt.Errorf("setting checkbox: %w", err)
	}
	return ok, nil
}

const setRadioScript = `
(function(selector, want) {
	var el = document.querySelector(selector);
	if (!el) return false;
	var name = el.getAttribute('name');
	if (!name) return false;
	var group = document.querySelectorAll('input[type="radio"][name="' + name + '"]');
	for (var i = 0; i < group.length; i++) {
		if (group[i].value.toLowerCase() === want.toLowerCase()) {
			group[i].click();
			return group[i].checked;
		}
	}
	return false;
})(%s, %s)
`

// FillRadio selects the radio in the located control's name group whose
// value matches case-insensitively.
func (s *Session) FillRadio(f Field, value string) (bool, error) {
	selJSON, _ := json.Marshal(f.Selector)
	wantJSON, _ := json.Marshal(strings.TrimSpace(value))

	var ok bool
	script := fmt.Sprintf(setRadioScript, selJSON, wantJSON)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return false, fmt.Errorf("setting radio: %w", err)
	}
	return ok, nil
}

// UploadFile attaches local files to a file input.
func (s *Session) UploadFile(f Field, paths ...string) (bool, error) {
	if err := chromedp.Run(s.ctx,
		chromedp.SetUploadFiles(f.Selector, paths, chromedp.ByQuery),
	); err != nil {
		return false, fmt.Errorf("uploading files: %w", err)
	}
	return true, nil
}

// fireChangeEvent nudges frameworks that watch for input/change instead of
// reading the DOM value directly.
func fireChangeEvent(selector string) chromedp.Action {
	selJSON, _ := json.Marshal(selector)
	script := fmt.Sprintf(`
(function(selector) {
	var el = document.querySelector(selector);
	if (!el) return;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
})(%s)`, selJSON)
	return chromedp.Evaluate(script, nil)
}
