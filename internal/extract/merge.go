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

// MergeField reconciles two candidates for the same field path. a is the
// already-accumulated field, b the incoming one.
//
// Rules, in order:
//  1. Both lists: union by value, provenance of the higher-confidence side
//     (ties keep a).
//  2. Both empty: null, regardless of which empty representation each side
//     carried (null, "", empty list).
//  3. a empty: take b.
//  4. b empty: keep a.
//  5. Both non-empty scalars: strictly higher confidence wins; ties keep a.
//
// Rules 1-4 are commutative; only the equal-confidence scalar tie-break
// depends on arrival order, which is why the fold in Merge runs over
// completed results sequentially.
func MergeField(a, b Field) Field {
	if a.Value.Kind() == KindStringList && b.Value.Kind() == KindStringList {
		prov := a.Provenance
		if b.Provenance.confidence() > a.Provenance.confidence() {
			prov = b.Provenance
		}
		return Field{Value: a.Value.Union(b.Value), Provenance: prov}
	}
	if a.Value.IsEmpty() {
		if b.Value.IsEmpty() {
			return Field{Value: Null(), Provenance: a.Provenance}
		}
		return b
	}
	if b.Value.IsEmpty() {
		return a
	}
	if b.Provenance.confidence() > a.Provenance.confidence() {
		return b
	}
	return a
}

// Merge folds an incoming field set into the accumulator, path by path.
// The accumulator is mutated and returned.
func Merge(acc, incoming FieldSet) FieldSet {
	if acc == nil {
		acc = make(FieldSet, len(incoming))
	}
	for path, field := range incoming {
		if existing, ok := acc[path]; ok {
			acc[path] = MergeField(existing, field)
		} else {
			acc[path] = field
		}
	}
	return acc
}

// MergeAll folds a sequence of per-document results in order. The result is
// deterministic for a fixed order of results.
func MergeAll(results []FieldSet) FieldSet {
	acc := make(FieldSet)
	for _, r := range results {
		acc = Merge(acc, r)
	}
	return acc
}
