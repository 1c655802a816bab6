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

// Package geo enriches listings with location intelligence from the Google
// Maps web services: geocoding, nearby points of interest, water-body
// proximity, and a short driving-direction summary.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the Google Maps web-service root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client calls the Maps geocoding, places, and directions endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Maps API client.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// GeocodeResult is the useful subset of one geocoding hit.
type GeocodeResult struct {
	Latitude     float64
	Longitude    float64
	Neighborhood string
	County       string
}

// Place is one nearby-search hit.
type Place struct {
	Name      string
	Types     []string
	Latitude  float64
	Longitude float64
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry          geometry           `json:"geometry"`
		AddressComponents []addressComponent `json:"address_components"`
	} `json:"results"`
}

type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name     string   `json:"name"`
		Types    []string `json:"types"`
		Geometry geometry `json:"geometry"`
	} `json:"results"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Steps []struct {
				HTMLInstructions string `json:"html_instructions"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Geocode resolves a street address to coordinates plus the neighborhood
// and county components. Returns nil when the address has no match.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	q := url.Values{"address": {address}}

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, nil
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("geocode status %s", resp.Status)
	}

	// First result carries the highest confidence.
	best := resp.Results[0]
	result := &GeocodeResult{
		Latitude:  best.Geometry.Location.Lat,
		Longitude: best.Geometry.Location.Lng,
	}
	for _, comp := range best.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "sublocality", "neighborhood":
				result.Neighborhood = comp.LongName
			case "administrative_area_level_2":
				result.County = comp.LongName
			}
		}
	}
	return result, nil
}

// reverseGeocode returns the address components of the hits around a
// coordinate, best match first.
func (c *Client) reverseGeocode(ctx context.Context, lat, lng float64) ([][]addressComponent, error) {
	q := url.Values{"latlng": {fmt.Sprintf("%f,%f", lat, lng)}}

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("reverse geocode status %s", resp.Status)
	}

	components := make([][]addressComponent, 0, len(resp.Results))
	for _, r := range resp.Results {
		components = append(components, r.AddressComponents)
	}
	return components, nil
}

// NearbyByType searches places of a given type within radius meters.
func (c *Client) NearbyByType(ctx context.Context, lat, lng float64, radius int, placeType string) ([]Place, error) {
	q := url.Values{
		"location": {fmt.Sprintf("%f,%f", lat, lng)},
		"radius":   {fmt.Sprintf("%d", radius)},
		"type":     {placeType},
	}
	return c.nearby(ctx, q)
}

// NearbyByKeyword searches places matching a keyword within radius meters.
func (c *Client) NearbyByKeyword(ctx context.Context, lat, lng float64, radius int, keyword string) ([]Place, error) {
	q := url.Values{
		"location": {fmt.Sprintf("%f,%f", lat, lng)},
		"radius":   {fmt.Sprintf("%d", radius)},
		"keyword":  {keyword},
	}
	return c.nearby(ctx, q)
}

func (c *Client) nearby(ctx context.Context, q url.Values) ([]Place, error) {
	var resp placesResponse
	if err := c.get(ctx, "/place/nearbysearch/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("nearby search status %s", resp.Status)
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Name == "" {
			continue
		}
		places = append(places, Place{
			Name:      r.Name,
			Types:     r.Types,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		})
	}
	return places, nil
}

// DirectionSteps returns the raw HTML step instructions of the best driving
// route from origin to destination.
func (c *Client) DirectionSteps(ctx context.Context, origin, destination string) ([]string, error) {
	q := url.Values{
		"origin":      {origin},
		"destination": {destination},
		"mode":        {"driving"},
	}

	var resp directionsResponse
	if err := c.get(ctx, "/directions/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, nil
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("directions status %s", resp.Status)
	}

	var steps []string
	for _, step := range resp.Routes[0].Legs[0].Steps {
		steps = append(steps, step.HTMLInstructions)
	}
	return steps, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("maps request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps API returned HTTP %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode maps response: %w", err)
	}
	return nil
}
