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

package photos

import "strings"

// FormatLabel converts a room label to a display filename base:
// "living_room" becomes "Living Room". Characters invalid in filenames are
// stripped and whitespace is collapsed.
func FormatLabel(label string) string {
	if label == "" {
		return ""
	}

	formatted := strings.ReplaceAll(label, "_", " ")
	formatted = titleCase(formatted)
	formatted = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		return r
	}, formatted)
	formatted = strings.Join(strings.Fields(formatted), " ")
	return strings.Trim(formatted, ". ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
