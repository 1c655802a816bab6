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
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// POISearchRadius is the default nearby-POI radius: 0.3 miles.
const POISearchRadius = 483

// maxPerCategory caps how many POIs one category may contribute.
const maxPerCategory = 3

// poiWorkers bounds the category fan-out.
const poiWorkers = 3

// POI is one nearby point of interest.
type POI struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	DistanceMeters int    `json:"distance_meters"`
}

// poiCategories maps Maps place types to the category labels shown on the
// listing. Fixed order keeps the fan-out and category caps deterministic.
var poiCategories = []struct {
	placeType string
	category  string
}{
	{"park", "Parks / trails"},
	{"amusement_park", "Parks / trails"},
	{"campground", "Parks / trails"},
	{"natural_feature", "Lakes / water bodies"},
	{"school", "Schools"},
	{"supermarket", "Grocery / shopping"},
	{"shopping_mall", "Grocery / shopping"},
	{"store", "Grocery / shopping"},
	{"restaurant", "Dining"},
	{"cafe", "Dining"},
	{"transit_station", "Public transit"},
	{"subway_station", "Public transit"},
	{"bus_station", "Public transit"},
}

// NearbyPOIs searches every category around a coordinate with a bounded
// worker pool, caps each category, deduplicates by name, and returns the
// result sorted by distance. A failed category contributes nothing.
func (s *Service) NearbyPOIs(ctx context.Context, lat, lng float64, radius int) []POI {
	results := make([][]POI, len(poiCategories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poiWorkers)

	for i, cat := range poiCategories {
		g.Go(func() error {
			places, err := s.maps.NearbyByType(gctx, lat, lng, radius, cat.placeType)
			if err != nil {
				slog.Warn("POI category search failed",
					"category", cat.category,
					"place_type", cat.placeType,
					"error", err,
				)
				return nil
			}
			var pois []POI
			for _, place := range places {
				dist := Haversine(lat, lng, place.Latitude, place.Longitude)
				if dist <= float64(radius) {
					pois = append(pois, POI{
						Name:           place.Name,
						Category:       cat.category,
						DistanceMeters: int(dist),
					})
				}
			}
			results[i] = pois
			return nil
		})
	}
	g.Wait()

	var all []POI
	counts := make(map[string]int)
	for _, pois := range results {
		for _, poi := range pois {
			if counts[poi.Category] < maxPerCategory {
				all = append(all, poi)
				counts[poi.Category]++
			}
		}
	}

	all = DeduplicateByName(all)

	// Dedup can free category slots, so re-apply the cap afterwards.
	var final []POI
	counts = make(map[string]int)
	for _, poi := range all {
		if counts[poi.Category] < maxPerCategory {
			final = append(final, poi)
			counts[poi.Category]++
		}
	}

	sort.SliceStable(final, func(i, j int) bool {
		return final[i].DistanceMeters < final[j].DistanceMeters
	})
	return final
}

// DeduplicateByName collapses POIs sharing a name (case-insensitive),
// keeping the closest instance. Maps sometimes returns the same place at
// slightly different coordinates. Result is sorted by distance.
func DeduplicateByName(pois []POI) []POI {
	byName := make(map[string]POI)
	var order []string

	for _, poi := range pois {
		name := strings.ToLower(strings.TrimSpace(poi.Name))
		if name == "" {
			continue
		}
		existing, seen := byName[name]
		if !seen {
			byName[name] = poi
			order = append(order, name)
			continue
		}
		if poi.DistanceMeters < existing.DistanceMeters {
			byName[name] = poi
		}
	}

	deduped := make([]POI, 0, len(order))
	for _, name := range order {
		deduped = append(deduped, byName[name])
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].DistanceMeters < deduped[j].DistanceMeters
	})
	return deduped
}
