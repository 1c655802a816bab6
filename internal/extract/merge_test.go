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

import (
	"sort"
	"testing"
)

func conf(c float64) *float64 { return &c }

func textField(v Value, c *float64) Field {
	return Field{Value: v, Provenance: Provenance{FileID: "doc-a", SourceType: SourceText, Confidence: c}}
}

func visionField(v Value, c *float64) Field {
	return Field{Value: v, Provenance: Provenance{FileID: "img-b", SourceType: SourceVision, Confidence: c}}
}

// TestMergeField_EmptyWins verifies that an empty accumulated value is
// replaced unconditionally and an empty incoming value never replaces.
func TestMergeField_EmptyWins(t *testing.T) {
	tests := []struct {
		name string
		a, b Field
		want Value
	}{
		{"null a takes b", textField(Null(), nil), textField(String("4 beds"), conf(0.2)), String("4 beds")},
		{"empty string a takes b", textField(String(""), conf(0.99)), textField(String("x"), conf(0.1)), String("x")},
		{"empty list a takes b", textField(StringList(nil), nil), textField(StringList([]string{"Tile"}), nil), StringList([]string{"Tile"})},
		{"null b keeps a", textField(String("kept"), conf(0.1)), textField(Null(), conf(0.99)), String("kept")},
		{"empty string b keeps a", textField(Number(3), nil), textField(String(""), nil), Number(3)},
		{"null a and empty string b collapse to null", textField(Null(), nil), textField(String(""), conf(0.8)), Null()},
		{"empty string a and null b collapse to null", textField(String(""), conf(0.8)), textField(Null(), nil), Null()},
		{"empty string a and empty list b collapse to null", textField(String(""), nil), textField(StringList(nil), nil), Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeField(tt.a, tt.b)
			if !got.Value.Equal(tt.want) {
				t.Errorf("MergeField value = %v, want %v", got.Value.AsAny(), tt.want.AsAny())
			}
		})
	}
}

// TestMergeField_Commutative verifies that the empty and array cases merge
// the same in either direction: A-then-B equals B-then-A.
func TestMergeField_Commutative(t *testing.T) {
	pairs := []struct {
		name string
		a, b Field
	}{
		{"one empty", textField(Null(), nil), textField(String("v"), conf(0.7))},
		{"both empty", textField(String(""), nil), textField(Null(), nil)},
		{"both arrays equal confidence", textField(StringList([]string{"Wood", "Tile"}), conf(0.5)), visionField(StringList([]string{"Tile", "Slate"}), conf(0.5))},
		{"both arrays differing confidence", textField(StringList([]string{"Wood"}), conf(0.3)), visionField(StringList([]string{"Slate"}), conf(0.9))},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			ab := MergeField(tt.a, tt.b)
			ba := MergeField(tt.b, tt.a)

			if ab.Value.Kind() == KindStringList {
				// Union order is not significant; compare as sets.
				got, rev := ab.Value.ListVal(), ba.Value.ListVal()
				sort.Strings(got)
				sort.Strings(rev)
				if len(got) != len(rev) {
					t.Fatalf("union sizes differ: %v vs %v", got, rev)
				}
				for i := range got {
					if got[i] != rev[i] {
						t.Errorf("union mismatch: %v vs %v", got, rev)
					}
				}
				return
			}

			if !ab.Value.Equal(ba.Value) {
				t.Errorf("A-then-B = %v, B-then-A = %v", ab.Value.AsAny(), ba.Value.AsAny())
			}
		})
	}
}

// TestMergeField_Idempotent verifies merging a field with itself is a no-op.
func TestMergeField_Idempotent(t *testing.T) {
	fields := []Field{
		textField(String("123 Main St"), conf(0.9)),
		textField(Number(450000), nil),
		textField(StringList([]string{"Hardwood", "Tile"}), conf(0.8)),
		textField(Null(), nil),
		textField(Bool(true), conf(0.6)),
	}

	for _, f := range fields {
		got := MergeField(f, f)
		if !got.Value.Equal(f.Value) {
			t.Errorf("self-merge changed value: %v -> %v", f.Value.AsAny(), got.Value.AsAny())
		}
		if got.Provenance.FileID != f.Provenance.FileID {
			t.Errorf("self-merge changed provenance: %q -> %q", f.Provenance.FileID, got.Provenance.FileID)
		}
	}
}

// TestMergeField_ConfidenceWins verifies the scalar conflict rule: strictly
// higher confidence wins, ties keep the first-seen field, and a missing
// confidence defaults to 0.5.
func TestMergeField_ConfidenceWins(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Field
		wantVal  Value
		wantFile string
	}{
		{"b strictly higher", textField(String("old"), conf(0.6)), visionField(String("new"), conf(0.8)), String("new"), "img-b"},
		{"a strictly higher", textField(String("old"), conf(0.8)), visionField(String("new"), conf(0.6)), String("old"), "doc-a"},
		{"tie keeps a", textField(String("old"), conf(0.7)), visionField(String("new"), conf(0.7)), String("old"), "doc-a"},
		{"default 0.5 vs 0.4 keeps a", textField(String("old"), nil), visionField(String("new"), conf(0.4)), String("old"), "doc-a"},
		{"default 0.5 vs 0.6 takes b", textField(String("old"), nil), visionField(String("new"), conf(0.6)), String("new"), "img-b"},
		{"both default tie keeps a", textField(String("old"), nil), visionField(String("new"), nil), String("old"), "doc-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeField(tt.a, tt.b)
			if !got.Value.Equal(tt.wantVal) {
				t.Errorf("value = %v, want %v", got.Value.AsAny(), tt.wantVal.AsAny())
			}
			if got.Provenance.FileID != tt.wantFile {
				t.Errorf("provenance file = %q, want %q", got.Provenance.FileID, tt.wantFile)
			}
		})
	}
}

// TestMergeField_ArrayUnionProvenance verifies the union keeps the
// provenance of the higher-confidence contributor.
func TestMergeField_ArrayUnionProvenance(t *testing.T) {
	a := textField(StringList([]string{"Hardwood", "Tile"}), conf(0.4))
	b := visionField(StringList([]string{"Tile", "Carpet"}), conf(0.9))

	got := MergeField(a, b)

	want := []string{"Hardwood", "Tile", "Carpet"}
	gotList := got.Value.ListVal()
	sort.Strings(gotList)
	sort.Strings(want)
	for i := range want {
		if gotList[i] != want[i] {
			t.Fatalf("union = %v, want %v", gotList, want)
		}
	}
	if got.Provenance.FileID != "img-b" {
		t.Errorf("provenance file = %q, want img-b", got.Provenance.FileID)
	}
}

// TestMergeAll_Deterministic verifies the fold yields the same result for
// the same arrival order.
func TestMergeAll_Deterministic(t *testing.T) {
	results := []FieldSet{
		{
			"location.city":     textField(String("Austin"), conf(0.9)),
			"features.flooring": textField(StringList([]string{"Hardwood"}), conf(0.7)),
		},
		{
			"location.city":     textField(String("Round Rock"), conf(0.6)),
			"features.flooring": visionField(StringList([]string{"Tile"}), conf(0.8)),
			"property.roof":     visionField(StringList([]string{"Composition"}), nil),
		},
		{
			"location.city": textField(String(""), conf(1.0)),
		},
	}

	first := MergeAll(results)
	second := MergeAll(results)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("merged field counts = %d, %d, want 3", len(first), len(second))
	}
	for path, f := range first {
		if !f.Value.Equal(second[path].Value) {
			t.Errorf("non-deterministic fold at %s: %v vs %v", path, f.Value.AsAny(), second[path].Value.AsAny())
		}
	}

	if city := first["location.city"].Value; !city.Equal(String("Austin")) {
		t.Errorf("city = %v, want Austin", city.AsAny())
	}
	flooring := first["features.flooring"].Value.ListVal()
	if len(flooring) != 2 {
		t.Errorf("flooring union = %v, want 2 entries", flooring)
	}
}
