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

// Package photos orders listing images the way MLS buyers expect to see
// them: front exterior first, then living spaces, then everything else.
// The package is pure; persistence and object renames live with the caller.
package photos

import (
	"fmt"
	"sort"
	"strings"
)

// sequencePriority is the room label order for MLS photo sequencing. Index
// is precedence; lower appears first.
var sequencePriority = []string{
	"front_exterior",
	"living_room",
	"kitchen",
	"master_bedroom",
	"primary_bedroom",
	"bathroom",
	"master_bathroom",
	"primary_bathroom",
	"guest_bathroom",
	"dining_room",
	"bedroom",
	"guest_bedroom",
	"backyard",
	"patio",
	"deck",
	"garage",
	"basement",
	"attic",
	"community",
	"amenities",
	"floor_plan",
	"map",
	"other",
}

var labelPrecedence = func() map[string]int {
	m := make(map[string]int, len(sequencePriority)+2)
	for i, label := range sequencePriority {
		m[label] = i
	}
	// Back and side exteriors sort with the backyard tier.
	m["back_exterior"] = m["backyard"]
	m["side_exterior"] = m["backyard"]
	return m
}()

// otherPrecedence is where unknown or missing labels land.
var otherPrecedence = len(sequencePriority) - 1

// Image is the sequencing view of one listing photo. Label is the effective
// room label: the user's final label when set, else the AI suggestion, else
// "other". UploadOrder is 1-based and preserves relative upload time.
type Image struct {
	ID          string
	Label       string
	UploadOrder int
	IsPrimary   bool
}

// Precedence returns the sort tier for a room label. Unknown labels sort
// with "other".
func Precedence(label string) int {
	if label == "" {
		return otherPrecedence
	}
	if p, ok := labelPrecedence[strings.ToLower(label)]; ok {
		return p
	}
	return otherPrecedence
}

// GenerateSequence returns image IDs in recommended MLS display order.
// Within a tier, upload order is preserved.
func GenerateSequence(images []Image) []string {
	sorted := sortByPrecedence(images)
	ids := make([]string, len(sorted))
	for i, img := range sorted {
		ids[i] = img.ID
	}
	return ids
}

// IdentifyPrimary picks the best primary photo candidate: a front exterior
// already flagged primary, else the earliest-uploaded front exterior. The
// second return is false when the listing has no front exterior at all.
func IdentifyPrimary(images []Image) (string, bool) {
	var front []Image
	for _, img := range images {
		if strings.EqualFold(img.Label, "front_exterior") {
			front = append(front, img)
		}
	}
	if len(front) == 0 {
		return "", false
	}
	for _, img := range front {
		if img.IsPrimary {
			return img.ID, true
		}
	}
	sort.SliceStable(front, func(i, j int) bool { return front[i].UploadOrder < front[j].UploadOrder })
	return front[0].ID, true
}

// Placement is one slot in the final display order.
type Placement struct {
	ImageID      string
	DisplayOrder int
	IsPrimary    bool
}

// Sequence computes the full display-order overwrite for a listing: every
// image gets a 1-based display order and exactly one image (when a front
// exterior exists) is primary.
func Sequence(images []Image) []Placement {
	sorted := sortByPrecedence(images)
	primaryID, hasPrimary := IdentifyPrimary(images)

	placements := make([]Placement, len(sorted))
	for i, img := range sorted {
		placements[i] = Placement{
			ImageID:      img.ID,
			DisplayOrder: i + 1,
			IsPrimary:    hasPrimary && img.ID == primaryID,
		}
	}
	return placements
}

// Rename is one planned object rename in storage.
type Rename struct {
	ImageID    string
	ObjectName string
}

// RenamePlan names every image file after its sequence position and label,
// like "001 Front Exterior.jpeg". ext maps image ID to its file extension
// (with leading dot). Colliding names get a numeric suffix.
func RenamePlan(images []Image, ext map[string]string) []Rename {
	sorted := sortByPrecedence(images)
	taken := make(map[string]bool, len(sorted))

	plan := make([]Rename, 0, len(sorted))
	for i, img := range sorted {
		base := FormatLabel(img.Label)
		if base == "" {
			base = "Other"
		}
		base = fmt.Sprintf("%03d %s", i+1, base)

		name := base + ext[img.ID]
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s %d%s", base, n, ext[img.ID])
		}
		taken[name] = true

		plan = append(plan, Rename{ImageID: img.ID, ObjectName: name})
	}
	return plan
}

func sortByPrecedence(images []Image) []Image {
	sorted := make([]Image, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := Precedence(sorted[i].Label), Precedence(sorted[j].Label)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].UploadOrder < sorted[j].UploadOrder
	})
	return sorted
}
