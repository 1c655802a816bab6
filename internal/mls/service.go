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

import "github.com/brightdoor/listingprep/internal/canonical"

// MappingSummary is the per-field mapping metadata echoed back to API
// consumers so the UI can explain where each MLS value came from.
type MappingSummary struct {
	CanonicalPath string    `json:"canonical_path"`
	Confidence    float64   `json:"confidence"`
	Type          FieldType `json:"type"`
}

// PrepareResult is the full map → transform → validate pipeline output.
type PrepareResult struct {
	FieldMappings    map[string]map[string]MappingSummary `json:"field_mappings"`
	Fields           map[string]any                       `json:"transformed_fields"`
	UnmappedRequired []string                             `json:"unmapped_required_fields"`
	Notes            []MappingNote                        `json:"mapping_notes"`
	Validation       ValidationResult                     `json:"validation"`
	ReadyForAutofill bool                                 `json:"ready_for_autofill"`
}

// PrepareFields runs the complete MLS preparation pipeline over a canonical
// listing. It never fails: mapping gaps and validation problems are data in
// the result, not errors.
func PrepareFields(l *canonical.Listing) PrepareResult {
	transformed := Transform(l)
	validation := Validate(transformed.Fields)

	summaries := make(map[string]map[string]MappingSummary, len(Sections))
	for _, section := range Sections {
		fields := make(map[string]MappingSummary, len(section.Fields))
		for _, m := range section.Fields {
			path := m.CanonicalPath
			if path == "" {
				path = "default"
			}
			fields[m.MLSField] = MappingSummary{
				CanonicalPath: path,
				Confidence:    m.Confidence,
				Type:          m.Type,
			}
		}
		summaries[section.Name] = fields
	}

	return PrepareResult{
		FieldMappings:    summaries,
		Fields:           transformed.Fields,
		UnmappedRequired: transformed.UnmappedRequired,
		Notes:            transformed.Notes,
		Validation:       validation,
		ReadyForAutofill: validation.ReadyForAutofill,
	}
}
