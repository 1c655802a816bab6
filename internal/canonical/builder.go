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

package canonical

import (
	"log/slog"

	"github.com/brightdoor/listingprep/internal/extract"
)

// Build projects a merged extraction field set onto a listing. A nil
// existing listing starts from an empty draft.
//
// Per-field rules:
//   - unknown path: log and skip (extraction output is untrusted)
//   - current value empty: set the extracted value
//   - both sides lists: union
//   - anything else: leave the current value untouched — a populated
//     canonical field is authoritative under re-extraction
//
// Date-typed fields additionally require a parseable date string; a value
// that fails to parse is skipped rather than assigned half-formed.
func Build(fields extract.FieldSet, existing *Listing) *Listing {
	listing := existing
	if listing == nil {
		listing = New()
	}

	for path, field := range fields {
		if field.Value.Kind() == extract.KindNull {
			continue
		}

		acc, ok := Lookup(path)
		if !ok {
			slog.Warn("unknown canonical field path, skipping", "path", path)
			continue
		}

		current := acc.Get(listing)

		switch {
		case current.IsEmpty():
			if err := acc.Set(listing, field.Value); err != nil {
				slog.Warn("failed to assign extracted value, skipping",
					"path", path,
					"value", field.Value.AsAny(),
					"error", err,
				)
			}
		case current.Kind() == extract.KindStringList && field.Value.Kind() == extract.KindStringList:
			if err := acc.Set(listing, current.Union(field.Value)); err != nil {
				slog.Warn("failed to union list field, skipping", "path", path, "error", err)
			}
		default:
			// Populated and not a list union: user-authoritative.
		}
	}

	return listing
}
