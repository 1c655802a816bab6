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

import "fmt"

// requiredMLSFields must be present and non-nil before autofill may start.
var requiredMLSFields = []string{
	"Street Address",
	"List Price",
	"Property Sub Type",
	"City",
	"State",
	"Zip Code",
	"Country",
}

// maxStringLen is the soft limit past which free-text fields draw a warning.
const maxStringLen = 1000

// ValidationResult reports whether autofill may proceed. Blocking issues
// stop it; warnings surface to the agent but do not.
type ValidationResult struct {
	ReadyForAutofill bool     `json:"ready_for_autofill"`
	BlockingIssues   []string `json:"blocking_issues"`
	Warnings         []string `json:"warnings"`
}

// Validate checks transformed MLS fields: required presence and type
// mismatches block, enum violations and over-length strings warn, and
// cross-field dependencies block.
func Validate(fields map[string]any) ValidationResult {
	blocking := []string{}
	warnings := []string{}

	for _, name := range requiredMLSFields {
		if v, ok := fields[name]; !ok || v == nil {
			blocking = append(blocking, fmt.Sprintf("Required field %q is missing or null", name))
		}
	}

	for _, section := range Sections {
		for _, m := range section.Fields {
			value, ok := fields[m.MLSField]
			if !ok || value == nil {
				continue
			}

			if issue := validateType(value, m.Type, m.MLSField); issue != "" {
				blocking = append(blocking, issue)
			}

			if len(m.EnumValues) > 0 && (m.Type == TypeEnum || m.Type == TypeMultiEnum) {
				if issue := validateEnum(value, m.EnumValues, m.MLSField, m.Type); issue != "" {
					warnings = append(warnings, issue)
				}
			}

			if m.Type == TypeString {
				if s, ok := value.(string); ok && len(s) > maxStringLen {
					warnings = append(warnings, fmt.Sprintf("Field %q exceeds %d characters", m.MLSField, maxStringLen))
				}
			}
		}
	}

	blocking = append(blocking, validateDependencies(fields)...)

	return ValidationResult{
		ReadyForAutofill: len(blocking) == 0,
		BlockingIssues:   blocking,
		Warnings:         warnings,
	}
}

func validateType(value any, expected FieldType, name string) string {
	switch expected {
	case TypeString, TypeEnum:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("Field %q must be a string, got %T", name, value)
		}
	case TypeNumber:
		switch value.(type) {
		case int, float64:
		default:
			return fmt.Sprintf("Field %q must be a number, got %T", name, value)
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("Field %q must be a boolean, got %T", name, value)
		}
	case TypeMultiEnum:
		switch t := value.(type) {
		case []string:
		case []any:
			// Transform output uses []string; []any means the field came
			// from a raw JSON caller and needs element checks.
			for _, v := range t {
				if _, ok := v.(string); !ok {
					return fmt.Sprintf("Field %q must be a list of strings", name)
				}
			}
		default:
			return fmt.Sprintf("Field %q must be a list, got %T", name, value)
		}
	}
	return ""
}

func validateEnum(value any, allowed []string, name string, t FieldType) string {
	member := func(s string) bool {
		for _, a := range allowed {
			if a == s {
				return true
			}
		}
		return false
	}

	switch t {
	case TypeEnum:
		if s, ok := value.(string); ok && !member(s) {
			return fmt.Sprintf("Field %q value %q not in allowed values", name, s)
		}
	case TypeMultiEnum:
		if list, ok := value.([]string); ok {
			var invalid []string
			for _, v := range list {
				if !member(v) {
					invalid = append(invalid, v)
				}
			}
			if len(invalid) > 0 {
				return fmt.Sprintf("Field %q contains invalid values: %v", name, invalid)
			}
		}
	}
	return ""
}

func validateDependencies(fields map[string]any) []string {
	var issues []string

	if b, ok := fields["Association"].(bool); ok && b {
		if s, _ := fields["Association Name"].(string); s == "" {
			issues = append(issues, "Association Name is required when Association is Yes")
		}
	}

	if b, ok := fields["Additional Parcel"].(bool); ok && b {
		if s, _ := fields["Additional Parcel Description"].(string); s == "" {
			issues = append(issues, "Additional Parcel Description is required when Additional Parcel is Yes")
		}
	}

	return issues
}
