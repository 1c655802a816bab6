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
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/brightdoor/listingprep/internal/canonical"
)

// ErrInsufficientAddress means the listing carries too little location
// data to geocode.
var ErrInsufficientAddress = errors.New("insufficient location data: need street_address or city and state")

// geoTaskWorkers bounds the independent top-level lookups (directions,
// POIs, water) that run once the geocode lands.
const geoTaskWorkers = 3

// Service runs geo-intelligence enrichment against the Maps API with a
// Redis response cache.
type Service struct {
	maps  *Client
	cache *Cache
}

// NewService wires a geo enrichment service. Cache may be nil.
func NewService(maps *Client, cache *Cache) *Service {
	return &Service{maps: maps, cache: cache}
}

// Summary reports what one enrichment run found and changed.
type Summary struct {
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	POIs             []POI      `json:"nearby_pois,omitempty"`
	WaterBody        *WaterBody `json:"water_body,omitempty"`
	Directions       Directions `json:"directions"`
	CanonicalUpdated bool       `json:"canonical_updated"`
}

// BuildAddress joins the listing's location parts into a geocodable
// address string. US is always appended.
func BuildAddress(loc canonical.Location) (string, error) {
	hasStreet := loc.StreetAddress != nil && *loc.StreetAddress != ""
	hasCityState := loc.City != nil && *loc.City != "" && loc.State != nil && *loc.State != ""
	if !hasStreet && !hasCityState {
		return "", ErrInsufficientAddress
	}

	var parts []string
	for _, p := range []*string{loc.StreetAddress, loc.City, loc.State, loc.ZipCode} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, ", ") + ", US", nil
}

// Enrich geocodes the listing address, fans out the independent lookups,
// and fills empty canonical fields in place. Populated fields are never
// overwritten. The caller persists the listing.
func (s *Service) Enrich(ctx context.Context, l *canonical.Listing) (*Summary, error) {
	address, err := BuildAddress(l.Location)
	if err != nil {
		return nil, err
	}

	geocode, err := s.geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", address, err)
	}
	if geocode == nil {
		return nil, fmt.Errorf("geocoding %q: no results", address)
	}

	lat, lng := geocode.Latitude, geocode.Longitude
	summary := &Summary{Latitude: lat, Longitude: lng}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(geoTaskWorkers)
	g.Go(func() error {
		summary.Directions = s.directions(gctx, lat, lng, address)
		return nil
	})
	g.Go(func() error {
		summary.POIs = s.nearbyPOIs(gctx, lat, lng)
		return nil
	})
	g.Go(func() error {
		summary.WaterBody = s.waterProximity(gctx, lat, lng)
		return nil
	})
	g.Wait()

	summary.CanonicalUpdated = apply(l, geocode, summary)
	return summary, nil
}

// apply writes enrichment results into empty canonical fields only.
func apply(l *canonical.Listing, geocode *GeocodeResult, summary *Summary) bool {
	updated := false
	set := func(dst **float64, v float64) {
		if *dst == nil {
			val := v
			*dst = &val
			updated = true
		}
	}
	setStr := func(dst **string, v string) {
		if *dst == nil && v != "" {
			val := v
			*dst = &val
			updated = true
		}
	}

	set(&l.Location.Latitude, geocode.Latitude)
	set(&l.Location.Longitude, geocode.Longitude)
	setStr(&l.Location.County, geocode.County)
	setStr(&l.Location.Country, "US")
	setStr(&l.Remarks.Directions, summary.Directions.Summary)

	if water := summary.WaterBody; water != nil {
		if l.Property.DistanceToWater == nil && water.DistanceMeters > 0 {
			miles := water.DistanceMiles
			if miles == 0 {
				miles = water.DistanceMeters / metersPerMile
			}
			l.Property.DistanceToWater = &miles
			updated = true
		}
		if water.IsAdjacent {
			setStr(&l.Property.WaterfrontFeatures, water.Features)
		}
	}

	if len(summary.POIs) > 0 {
		pois := make([]canonical.POI, 0, len(summary.POIs))
		for _, poi := range summary.POIs {
			pois = append(pois, canonical.POI{
				Name:     poi.Name,
				Category: poi.Category,
				Distance: float64(poi.DistanceMeters),
			})
		}
		l.Location.POI = pois
		updated = true
	}

	return updated
}

// Cached wrappers around the lookups. Cache misses fall through to the
// API; cache failures never block enrichment.

func (s *Service) geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	var cached GeocodeResult
	if s.cache.Get(ctx, "geocode", address, &cached) {
		return &cached, nil
	}
	result, err := s.maps.Geocode(ctx, address)
	if err != nil || result == nil {
		return result, err
	}
	s.cache.Put(ctx, "geocode", address, result)
	return result, nil
}

func (s *Service) directions(ctx context.Context, lat, lng float64, address string) Directions {
	key := fmt.Sprintf("%f,%f", lat, lng)
	var cached Directions
	if s.cache.Get(ctx, "directions", key, &cached) {
		return cached
	}
	result := s.RoadDirections(ctx, lat, lng, address)
	if result.NearestMajorRoad != "" {
		s.cache.Put(ctx, "directions", key, result)
	}
	return result
}

func (s *Service) nearbyPOIs(ctx context.Context, lat, lng float64) []POI {
	key := fmt.Sprintf("%f,%f,%d", lat, lng, POISearchRadius)
	var cached []POI
	if s.cache.Get(ctx, "pois", key, &cached) {
		return cached
	}
	pois := s.NearbyPOIs(ctx, lat, lng, POISearchRadius)
	if len(pois) > 0 {
		s.cache.Put(ctx, "pois", key, pois)
	}
	return pois
}

func (s *Service) waterProximity(ctx context.Context, lat, lng float64) *WaterBody {
	key := fmt.Sprintf("%f,%f,%d", lat, lng, waterSearchRadius)
	var cached WaterBody
	if s.cache.Get(ctx, "water", key, &cached) {
		return &cached
	}
	body := s.WaterProximity(ctx, lat, lng)
	if body != nil {
		s.cache.Put(ctx, "water", key, *body)
	}
	return body
}
