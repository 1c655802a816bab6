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

package ai

import (
	"path/filepath"
	"strings"
)

// ValidRoomLabels are the room identifiers the vision model may assign.
var ValidRoomLabels = []string{
	"front_exterior", "back_exterior", "side_exterior", "backyard",
	"living_room", "kitchen", "bedroom", "bathroom", "dining_room",
	"master_bedroom", "primary_bedroom", "guest_bedroom",
	"master_bathroom", "primary_bathroom", "guest_bathroom",
	"patio", "deck", "garage", "basement", "attic",
	"community", "amenities", "floor_plan", "map", "other",
}

var validLabelSet = func() map[string]bool {
	m := make(map[string]bool, len(ValidRoomLabels))
	for _, l := range ValidRoomLabels {
		m[l] = true
	}
	return m
}()

// IsValidRoomLabel reports whether a label is in the known vocabulary.
func IsValidRoomLabel(label string) bool {
	return validLabelSet[strings.ToLower(label)]
}

// keyword fallbacks, checked after exact label matches. Order matters:
// "bathroom" contains "bath" but also "room", so precise keywords first.
var labelKeywords = []struct {
	keyword string
	label   string
}{
	{"front", "front_exterior"},
	{"back", "back_exterior"},
	{"side", "side_exterior"},
	{"yard", "backyard"},
	{"living", "living_room"},
	{"dining", "dining_room"},
	{"master", "master_bedroom"},
	{"primary", "primary_bedroom"},
	{"guest", "guest_bedroom"},
	{"bath", "bathroom"},
	{"bed", "bedroom"},
}

// LabelFromFilename extracts a room label from an uploaded image filename
// when one is clearly present ("kitchen.jpg", "front_exterior_1.png").
// Returns "" when the filename is ambiguous.
func LabelFromFilename(filename string) string {
	if filename == "" {
		return ""
	}
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	for _, label := range ValidRoomLabels {
		if strings.Contains(name, label) {
			return label
		}
	}
	for _, kw := range labelKeywords {
		if strings.Contains(name, kw.keyword) {
			return kw.label
		}
	}
	return ""
}
