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
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/brightdoor/listingprep/internal/canonical"
)

// MappingNote records a default or transform applied during mapping, so the
// UI can flag machine-chosen values for agent review.
type MappingNote struct {
	MLSField        string  `json:"mls_field"`
	CanonicalSource string  `json:"canonical_source"`
	Action          string  `json:"action"`
	Confidence      float64 `json:"confidence"`
}

// TransformResult is the output of mapping a canonical listing onto the
// MLS form vocabulary.
type TransformResult struct {
	Fields           map[string]any `json:"unlock_mls_ready_fields"`
	UnmappedRequired []string       `json:"unmapped_required_fields"`
	Notes            []MappingNote  `json:"mapping_notes"`
}

// Transform maps a canonical listing to MLS-ready field values. For each
// mapping: read the canonical value, fall back to the default when absent,
// apply the transform, then coerce to the declared MLS type. Fields with
// neither a value nor a default land in UnmappedRequired.
func Transform(l *canonical.Listing) TransformResult {
	result := TransformResult{
		Fields:           make(map[string]any),
		UnmappedRequired: []string{},
		Notes:            []MappingNote{},
	}

	for _, section := range Sections {
		for _, m := range section.Fields {
			var value any

			if m.CanonicalPath != "" {
				if acc, ok := canonical.Lookup(m.CanonicalPath); ok {
					if v := acc.Get(l); !v.IsEmpty() {
						value = v.AsAny()
					}
				}
			}

			if value == nil && m.Default != nil {
				value = m.Default
				source := m.CanonicalPath
				if source == "" {
					source = "default"
				}
				result.Notes = append(result.Notes, MappingNote{
					MLSField:        m.MLSField,
					CanonicalSource: source,
					Action:          "used_default",
					Confidence:      m.Confidence,
				})
			}

			if value != nil && m.Transform != "" {
				transformed := applyTransform(value, m.Transform, l)
				if !reflect.DeepEqual(transformed, value) {
					result.Notes = append(result.Notes, MappingNote{
						MLSField:        m.MLSField,
						CanonicalSource: m.CanonicalPath,
						Action:          "transformed",
						Confidence:      m.Confidence * 0.9,
					})
				}
				value = transformed
			}

			if value != nil {
				value = convertType(value, m.Type)
			}

			switch {
			case value != nil || m.Default != nil:
				result.Fields[m.MLSField] = value
			case m.CanonicalPath != "":
				result.UnmappedRequired = append(result.UnmappedRequired, m.MLSField)
			}
		}
	}

	return result
}

var digitRun = regexp.MustCompile(`\d+`)

func applyTransform(value any, name string, l *canonical.Listing) any {
	switch name {
	case "format_date":
		// Dates arrive already rendered in their wire format; just pin the
		// string shape.
		if s, ok := value.(string); ok {
			return s
		}
		return fmt.Sprint(value)

	case "zip_to_number":
		if s, ok := value.(string); ok {
			var digits strings.Builder
			for _, r := range s {
				if r >= '0' && r <= '9' {
					digits.WriteRune(r)
				}
			}
			clean := digits.String()
			if len(clean) > 5 {
				clean = clean[:5]
			}
			if n, err := strconv.Atoi(clean); err == nil {
				return n
			}
			return nil
		}
		return value

	case "string_to_number":
		if s, ok := value.(string); ok {
			if run := digitRun.FindString(s); run != "" {
				if n, err := strconv.Atoi(run); err == nil {
					return n
				}
			}
			return nil
		}
		return value

	case "string_to_multi_enum":
		switch t := value.(type) {
		case string:
			parts := strings.Split(strings.ReplaceAll(t, ";", ","), ",")
			var out []string
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		case []string:
			return t
		}
		return []string{fmt.Sprint(value)}

	case "count_fireplaces":
		switch t := value.(type) {
		case []string:
			return len(t)
		case string:
			if run := digitRun.FindString(t); run != "" {
				if n, err := strconv.Atoi(run); err == nil {
					return n
				}
			}
			return 0
		case int:
			return t
		case float64:
			return int(t)
		}
		return 0

	case "infer_ownership_type":
		if l.Property.PropertySubType != nil {
			sub := strings.ToLower(*l.Property.PropertySubType)
			switch {
			case strings.Contains(sub, "single family") || strings.Contains(sub, "residential"):
				return "Fee Simple"
			case strings.Contains(sub, "condo"):
				return "Common"
			}
		}
		return value
	}
	return value
}

// convertType coerces a transformed value into the declared MLS field type.
// A nil return drops the field.
func convertType(value any, target FieldType) any {
	if value == nil {
		return nil
	}

	switch target {
	case TypeString, TypeEnum:
		if s, ok := value.(string); ok {
			return s
		}
		return fmt.Sprint(value)

	case TypeNumber:
		switch t := value.(type) {
		case int:
			return t
		case float64:
			return t
		case string:
			if strings.Contains(t, ".") {
				if f, err := strconv.ParseFloat(t, 64); err == nil {
					return f
				}
			} else if n, err := strconv.Atoi(t); err == nil {
				return n
			}
			return nil
		}
		return nil

	case TypeBoolean:
		switch t := value.(type) {
		case bool:
			return t
		case string:
			switch strings.ToLower(t) {
			case "yes", "true", "1", "y":
				return true
			}
			return false
		}
		return value != nil

	case TypeMultiEnum:
		switch t := value.(type) {
		case []string:
			var out []string
			for _, v := range t {
				if v != "" {
					out = append(out, v)
				}
			}
			if out == nil {
				out = []string{}
			}
			return out
		case string:
			if t == "" {
				return []string{}
			}
			return []string{t}
		}
		return []string{fmt.Sprint(value)}
	}
	return value
}
