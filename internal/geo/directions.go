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

package geo

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// minorRoadIndicators mark road names that are useless as a directions
// starting point.
var minorRoadIndicators = []string{
	"alley", "lane", "court", "place", "circle",
	"restricted", "private", "unnamed", "service road",
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	roadSuffixRe = regexp.MustCompile(`(?i)\s*\(?(Restricted usage road|Unnamed road|Private road|Service road|Access road)\)?.*$`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

const maxDirectionSteps = 3

// Directions holds the nearest major road and a short human-readable
// driving summary for the listing's Directions remark.
type Directions struct {
	NearestMajorRoad string `json:"nearest_major_road,omitempty"`
	Summary          string `json:"summary,omitempty"`
}

// RoadDirections finds the nearest major road by reverse geocoding and
// condenses a driving route from it into at most three plain-text steps.
// When the route lookup fails the summary falls back to naming the road.
func (s *Service) RoadDirections(ctx context.Context, lat, lng float64, destination string) Directions {
	road := s.nearestMajorRoad(ctx, lat, lng)
	if road == "" {
		return Directions{}
	}

	result := Directions{NearestMajorRoad: road}

	steps, err := s.maps.DirectionSteps(ctx, road, destination)
	if err != nil {
		slog.Warn("directions lookup failed", "road", road, "error", err)
	}
	if summary := summarizeSteps(steps); summary != "" {
		result.Summary = summary
	} else {
		result.Summary = fmt.Sprintf("From %s, follow directions to property", road)
	}
	return result
}

func (s *Service) nearestMajorRoad(ctx context.Context, lat, lng float64) string {
	hits, err := s.maps.reverseGeocode(ctx, lat, lng)
	if err != nil {
		slog.Warn("reverse geocode failed", "error", err)
		return ""
	}

	for _, components := range hits {
		for _, comp := range components {
			isRoute := false
			for _, t := range comp.Types {
				if t == "route" {
					isRoute = true
					break
				}
			}
			if !isRoute {
				continue
			}
			name := comp.LongName
			if name == "" {
				name = comp.ShortName
			}
			if name == "" || isMinorRoad(name) {
				continue
			}
			if clean := strings.TrimSpace(roadSuffixRe.ReplaceAllString(name, "")); clean != "" {
				return clean
			}
			return name
		}
	}
	return ""
}

func isMinorRoad(name string) bool {
	lower := strings.ToLower(name)
	for _, indicator := range minorRoadIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// summarizeSteps turns raw HTML route steps into a short plain sentence
// chain, capped at three steps and 200 characters.
func summarizeSteps(steps []string) string {
	var parts []string
	for _, step := range steps {
		if len(parts) == maxDirectionSteps {
			break
		}
		text := htmlTagRe.ReplaceAllString(step, "")
		text = strings.NewReplacer(
			"&nbsp;", " ",
			"&amp;", "&",
			"&lt;", "<",
			"&gt;", ">",
			"&quot;", `"`,
			"&#39;", "'",
		).Replace(text)
		text = roadSuffixRe.ReplaceAllString(text, "")

		// Compress the instruction into imperative shorthand.
		text = strings.ReplaceAll(text, "toward ", "onto ")
		text = strings.TrimPrefix(text, "Head ")
		text = strings.TrimPrefix(text, "Continue ")
		text = strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))
		if text == "" {
			continue
		}
		parts = append(parts, titleWord(text))
	}
	if len(parts) == 0 {
		return ""
	}

	summary := strings.Join(parts, ". ")
	if len(summary) > 200 {
		summary = summary[:197] + "..."
	}
	return summary
}
