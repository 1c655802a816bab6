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
	"math"
	"strings"
)

const (
	// waterSearchRadius bounds how far out a water body still counts as
	// "near" the property.
	waterSearchRadius = 500

	// adjacentThreshold is the distance under which the property is
	// treated as directly on the water.
	adjacentThreshold = 100
)

var waterKeywords = []string{
	"lake", "river", "creek", "pond", "bay", "harbor", "marina", "ocean", "beach",
}

// WaterBody describes the nearest named water body to a property.
type WaterBody struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	DistanceMeters float64 `json:"distance_meters"`
	DistanceMiles  float64 `json:"distance_miles"`
	IsAdjacent     bool    `json:"is_adjacent"`
	Features       string  `json:"features,omitempty"`
}

// WaterProximity finds the nearest named water body within the search
// radius. Returns nil when none is found. Adjacent bodies (within 100m)
// also carry a "Name, Type" features string for waterfront_features.
func (s *Service) WaterProximity(ctx context.Context, lat, lng float64) *WaterBody {
	nearest := struct {
		name     string
		kind     string
		distance float64
	}{distance: math.Inf(1)}

	consider := func(name string, placeLat, placeLng float64, fallbackType string) {
		nameLower := strings.ToLower(name)
		kind := fallbackType
		for _, keyword := range waterKeywords {
			if strings.Contains(nameLower, keyword) {
				kind = keyword
				break
			}
		}
		if kind == "" {
			return
		}
		dist := Haversine(lat, lng, placeLat, placeLng)
		if dist <= waterSearchRadius && dist < nearest.distance {
			nearest.name = name
			nearest.kind = kind
			nearest.distance = dist
		}
	}

	places, err := s.maps.NearbyByType(ctx, lat, lng, waterSearchRadius, "natural_feature")
	if err != nil {
		slog.Warn("water body type search failed", "error", err)
	}
	for _, place := range places {
		consider(place.Name, place.Latitude, place.Longitude, "")
	}

	for _, keyword := range []string{"lake", "river", "water"} {
		places, err := s.maps.NearbyByKeyword(ctx, lat, lng, waterSearchRadius, keyword)
		if err != nil {
			slog.Warn("water body keyword search failed", "keyword", keyword, "error", err)
			continue
		}
		for _, place := range places {
			consider(place.Name, place.Latitude, place.Longitude, keyword)
		}
	}

	if math.IsInf(nearest.distance, 1) {
		return nil
	}

	body := &WaterBody{
		Name:           nearest.name,
		Type:           nearest.kind,
		DistanceMeters: nearest.distance,
		DistanceMiles:  math.Round(nearest.distance/metersPerMile*100) / 100,
		IsAdjacent:     nearest.distance <= adjacentThreshold,
	}
	if body.IsAdjacent {
		body.Features = fmt.Sprintf("%s, %s", body.Name, titleWord(body.Type))
	}
	return body
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
