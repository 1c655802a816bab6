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

package extract

import "testing"

// TestParseResponse_Nested verifies flattening of nested sections with
// value/confidence leaves.
func TestParseResponse_Nested(t *testing.T) {
	raw := []byte(`{
		"location": {
			"street_address": {"value": "123 Main St", "confidence": 0.95},
			"city": {"value": "Austin", "confidence": 0.9}
		},
		"property": {
			"bedrooms_total": {"value": 4, "confidence": 0.85}
		},
		"features": {
			"flooring": {"value": ["Hardwood", "Tile"], "confidence": 0.8}
		}
	}`)

	prov := Provenance{FileID: "doc-1", SourceType: SourceText}
	fields := ParseResponse(raw, prov)

	if len(fields) != 4 {
		t.Fatalf("field count = %d, want 4", len(fields))
	}

	addr := fields["location.street_address"]
	if !addr.Value.Equal(String("123 Main St")) {
		t.Errorf("street_address = %v", addr.Value.AsAny())
	}
	if addr.Provenance.Confidence == nil || *addr.Provenance.Confidence != 0.95 {
		t.Errorf("street_address confidence = %v, want 0.95", addr.Provenance.Confidence)
	}
	if addr.Provenance.FileID != "doc-1" || addr.Provenance.SourceType != SourceText {
		t.Errorf("unexpected provenance: %+v", addr.Provenance)
	}

	if beds := fields["property.bedrooms_total"].Value; !beds.Equal(Number(4)) {
		t.Errorf("bedrooms_total = %v, want 4", beds.AsAny())
	}

	flooring := fields["features.flooring"].Value
	if flooring.Kind() != KindStringList || len(flooring.ListVal()) != 2 {
		t.Errorf("flooring = %v, want two-element list", flooring.AsAny())
	}
}

// TestParseResponse_Malformed verifies that non-JSON input degrades to zero
// fields rather than an error.
func TestParseResponse_Malformed(t *testing.T) {
	inputs := [][]byte{
		[]byte("I could not find any structured data in this document."),
		[]byte("{truncated"),
		[]byte(""),
		[]byte("[1, 2, 3]"),
	}

	for _, raw := range inputs {
		fields := ParseResponse(raw, Provenance{FileID: "doc-x", SourceType: SourceText})
		if len(fields) != 0 {
			t.Errorf("ParseResponse(%q) = %d fields, want 0", raw, len(fields))
		}
	}
}

// TestParseResponse_CodeFence verifies that a markdown-fenced response is
// still parsed.
func TestParseResponse_CodeFence(t *testing.T) {
	raw := []byte("```json\n{\"location\": {\"city\": {\"value\": \"Austin\", \"confidence\": 0.9}}}\n```")

	fields := ParseResponse(raw, Provenance{FileID: "doc-2", SourceType: SourceVision})
	if len(fields) != 1 {
		t.Fatalf("field count = %d, want 1", len(fields))
	}
	if !fields["location.city"].Value.Equal(String("Austin")) {
		t.Errorf("city = %v", fields["location.city"].Value.AsAny())
	}
}

// TestParseResponse_NullAndUnsupportedLeaves verifies null leaves are
// dropped and object-valued leaves are skipped, not fatal.
func TestParseResponse_NullAndUnsupportedLeaves(t *testing.T) {
	raw := []byte(`{
		"location": {
			"city": {"value": null, "confidence": 0.9},
			"state": {"value": "TX", "confidence": 0.9},
			"poi": {"value": {"nested": "object"}, "confidence": 0.5}
		}
	}`)

	fields := ParseResponse(raw, Provenance{FileID: "doc-3", SourceType: SourceText})
	if len(fields) != 1 {
		t.Fatalf("field count = %d, want 1", len(fields))
	}
	if _, ok := fields["location.state"]; !ok {
		t.Error("expected location.state to survive")
	}
}

// TestParseResponse_BareLeaf verifies a leaf without the value/confidence
// wrapper is accepted with default confidence semantics.
func TestParseResponse_BareLeaf(t *testing.T) {
	raw := []byte(`{"location": {"zip_code": "78701"}}`)

	fields := ParseResponse(raw, Provenance{FileID: "doc-4", SourceType: SourceText})
	f, ok := fields["location.zip_code"]
	if !ok {
		t.Fatal("expected location.zip_code")
	}
	if f.Provenance.Confidence != nil {
		t.Errorf("confidence = %v, want nil (defaulted at merge time)", *f.Provenance.Confidence)
	}
	if !f.Value.Equal(String("78701")) {
		t.Errorf("zip = %v", f.Value.AsAny())
	}
}
