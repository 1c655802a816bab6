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

package mls

import (
	"strings"
	"testing"
)

func validFields() map[string]any {
	return map[string]any{
		"Street Address":    "123 Ranch Rd",
		"List Price":        525000,
		"Property Sub Type": "Single Family Residence",
		"City":              "Austin",
		"State":             "TX",
		"Zip Code":          78701,
		"Country":           "United States of America",
	}
}

func TestValidate_Ready(t *testing.T) {
	got := Validate(validFields())
	if !got.ReadyForAutofill {
		t.Fatalf("ReadyForAutofill = false, blocking: %v", got.BlockingIssues)
	}
	if len(got.BlockingIssues) != 0 {
		t.Errorf("BlockingIssues = %v, want none", got.BlockingIssues)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	fields := validFields()
	delete(fields, "List Price")

	got := Validate(fields)
	if got.ReadyForAutofill {
		t.Error("ReadyForAutofill = true with missing List Price")
	}
	if !containsSubstring(got.BlockingIssues, "List Price") {
		t.Errorf("BlockingIssues = %v, want mention of List Price", got.BlockingIssues)
	}
}

func TestValidate_TypeMismatchBlocks(t *testing.T) {
	fields := validFields()
	fields["List Price"] = "525000"

	got := Validate(fields)
	if got.ReadyForAutofill {
		t.Error("ReadyForAutofill = true with string List Price")
	}
	if !containsSubstring(got.BlockingIssues, "must be a number") {
		t.Errorf("BlockingIssues = %v, want type mismatch", got.BlockingIssues)
	}
}

func TestValidate_LongStringWarns(t *testing.T) {
	fields := validFields()
	fields["Public Remarks"] = strings.Repeat("x", 1001)

	got := Validate(fields)
	if !got.ReadyForAutofill {
		t.Errorf("long string blocked autofill: %v", got.BlockingIssues)
	}
	if !containsSubstring(got.Warnings, "Public Remarks") {
		t.Errorf("Warnings = %v, want over-length warning", got.Warnings)
	}
}

func TestValidate_Dependencies(t *testing.T) {
	fields := validFields()
	fields["Association"] = true

	got := Validate(fields)
	if got.ReadyForAutofill {
		t.Error("ReadyForAutofill = true with Association and no name")
	}
	if !containsSubstring(got.BlockingIssues, "Association Name") {
		t.Errorf("BlockingIssues = %v, want Association Name dependency", got.BlockingIssues)
	}

	fields["Association Name"] = "Barton Creek HOA"
	if got := Validate(fields); !got.ReadyForAutofill {
		t.Errorf("still blocked after supplying name: %v", got.BlockingIssues)
	}

	fields["Additional Parcel"] = true
	if got := Validate(fields); got.ReadyForAutofill {
		t.Error("ReadyForAutofill = true with Additional Parcel and no description")
	}
}

func TestPrepareFields_EndToEnd(t *testing.T) {
	got := PrepareFields(sampleListing())
	if !got.ReadyForAutofill {
		t.Fatalf("ReadyForAutofill = false, blocking: %v", got.Validation.BlockingIssues)
	}
	if got.Fields["Zip Code"] != 78701 {
		t.Errorf("Zip Code = %v, want 78701", got.Fields["Zip Code"])
	}
	if _, ok := got.FieldMappings["listing_location"]["Street Address"]; !ok {
		t.Error("field mapping summary missing listing_location/Street Address")
	}
}

func containsSubstring(items []string, sub string) bool {
	for _, s := range items {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
