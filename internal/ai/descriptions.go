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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/brightdoor/listingprep/internal/canonical"
)

const (
	maxPublicRemarksLen = 1500
	maxAIDescriptionLen = 1200
)

const remarksPrompt = `Generate MLS listing descriptions based on the following property information.

Analyze the property characteristics and automatically determine the most appropriate writing tone: refined for high-end properties, family-oriented where the layout suggests it, neutral and professional otherwise.

CRITICAL RULES:
- Do NOT add features not present in the provided data
- Must be MLS-safe and Fair Housing compliant
- No demographic, lifestyle, or neighborhood claims
- No investment or appreciation language
- Paragraph format (no bullet points)
- public_remarks must be <= 1500 characters
- If the property has only 1 level, all bedrooms are on the main level; never reference upper or lower levels for single-level properties
- Include appliance information when provided
- public_remarks and syndication_remarks MUST be identical
- Do NOT generate private_remarks

Return JSON:
{
  "public_remarks": "string",
  "syndication_remarks": "string"
}

Property Information:
`

const propertyDescriptionPrompt = `You are an experienced property listing agent. Write an attractive, professional description of the property below for buyers.

INSTRUCTIONS:
1. Highlight the most attractive features and key statistics (condition, year built, size) naturally
2. Naturally incorporate nearby amenities when points of interest are listed
3. Highlight waterfront features or water proximity when present
4. Mention schools when available
5. Keep the description under 1200 characters, in flowing paragraphs with no blank lines and no bullet points
6. Be enthusiastic but factual: only mention features present in the data, never invent or exaggerate
7. Keep it professional and MLS-appropriate

PROPERTY INFORMATION:
%s

Generate the property description now:`

type remarksResponse struct {
	PublicRemarks      string `json:"public_remarks"`
	SyndicationRemarks string `json:"syndication_remarks"`
}

var blankLinesRe = regexp.MustCompile(`\n\s*\n`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// ListingRemarks generates the public MLS description from canonical data.
// Public and syndication remarks are identical by contract, so one string
// comes back. A failed or malformed model response falls back to the
// template rendition instead of erroring.
func (c *Client) ListingRemarks(ctx context.Context, l *canonical.Listing) string {
	resp, err := c.genai.Models.GenerateContent(ctx, c.textModel,
		genai.Text(remarksPrompt+formatPropertyInfo(l)), jsonResponse)
	if err != nil {
		slog.Warn("remarks generation failed, using template", "error", err)
		return TemplateRemarks(l)
	}

	var parsed remarksResponse
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Text())), &parsed); err != nil || parsed.PublicRemarks == "" {
		slog.Warn("remarks response malformed, using template", "error", err)
		return TemplateRemarks(l)
	}

	return truncate(parsed.PublicRemarks, maxPublicRemarksLen)
}

// PropertyDescription generates the buyer-facing narrative shown in the
// app, incorporating POIs and water proximity from geo enrichment.
func (c *Client) PropertyDescription(ctx context.Context, l *canonical.Listing) (string, error) {
	info, err := json.MarshalIndent(propertyInfo(l), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal property info: %w", err)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.textModel,
		genai.Text(fmt.Sprintf(propertyDescriptionPrompt, info)), nil)
	if err != nil {
		return "", fmt.Errorf("property description: %w", err)
	}

	description := strings.TrimSpace(resp.Text())
	description = blankLinesRe.ReplaceAllString(description, " ")
	description = strings.TrimSpace(whitespaceRe.ReplaceAllString(description, " "))
	if description == "" {
		return "", fmt.Errorf("property description: empty response")
	}
	return truncate(description, maxAIDescriptionLen), nil
}

// TemplateRemarks renders a plain factual description without the model.
// Used when generation fails so the listing still carries remarks.
func TemplateRemarks(l *canonical.Listing) string {
	var parts []string

	if l.Location.City != nil {
		subType := "property"
		if l.Property.PropertySubType != nil {
			subType = *l.Property.PropertySubType
		}
		sentence := fmt.Sprintf("This %s is located in %s", subType, *l.Location.City)
		if l.Location.State != nil {
			sentence += ", " + *l.Location.State
		}
		parts = append(parts, sentence+".")
	}

	if l.Property.BedroomsTotal != nil && l.Property.BathroomsFull != nil {
		beds := *l.Property.BedroomsTotal
		layout := fmt.Sprintf("%d bedroom", beds)
		if beds != 1 {
			layout += "s"
		}
		layout += fmt.Sprintf(", %d full bathroom", *l.Property.BathroomsFull)
		if *l.Property.BathroomsFull != 1 {
			layout += "s"
		}
		if l.Property.BathroomsHalf != nil && *l.Property.BathroomsHalf > 0 {
			layout += fmt.Sprintf(", %d half bathroom", *l.Property.BathroomsHalf)
			if *l.Property.BathroomsHalf != 1 {
				layout += "s"
			}
		}
		parts = append(parts, fmt.Sprintf("The home features %s.", layout))
	}

	if l.Property.LivingAreaSqft != nil {
		parts = append(parts, fmt.Sprintf("Living area is approximately %d square feet.", *l.Property.LivingAreaSqft))
	}
	if l.Property.LotSizeAcres != nil {
		parts = append(parts, fmt.Sprintf("Lot size is %g acres.", *l.Property.LotSizeAcres))
	}
	if l.Property.YearBuilt != nil {
		parts = append(parts, fmt.Sprintf("Built in %d.", *l.Property.YearBuilt))
	}
	if l.Property.GarageSpaces != nil && *l.Property.GarageSpaces > 0 {
		parts = append(parts, fmt.Sprintf("Garage space for %g vehicle(s).", *l.Property.GarageSpaces))
	}
	if len(l.Features.Appliances) > 0 {
		parts = append(parts, fmt.Sprintf("Appliances include %s.", strings.Join(l.Features.Appliances, ", ")))
	}
	if len(l.Features.InteriorFeatures) > 0 {
		interior := l.Features.InteriorFeatures
		if len(interior) > 5 {
			interior = interior[:5]
		}
		parts = append(parts, fmt.Sprintf("Interior features include %s.", strings.Join(interior, ", ")))
	}

	return truncate(strings.Join(parts, " "), maxPublicRemarksLen)
}

// formatPropertyInfo renders the remark-relevant canonical fields as plain
// prompt lines, skipping everything unset.
func formatPropertyInfo(l *canonical.Listing) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if l.Property.PropertySubType != nil {
		add("Property Type: %s", *l.Property.PropertySubType)
	}
	if l.Property.Levels != nil {
		add("Levels: %d", *l.Property.Levels)
		if *l.Property.Levels == 1 {
			add("NOTE: Single-level property - all bedrooms are on the main level")
		}
	}
	if l.Property.MainLevelBedrooms != nil {
		add("Main Level Bedrooms: %d", *l.Property.MainLevelBedrooms)
	}
	if l.Property.OtherLevelBedrooms != nil && *l.Property.OtherLevelBedrooms > 0 {
		add("Other Level Bedrooms: %d", *l.Property.OtherLevelBedrooms)
	}
	if l.Property.BathroomsFull != nil {
		add("Full Bathrooms: %d", *l.Property.BathroomsFull)
	}
	if l.Property.BathroomsHalf != nil {
		add("Half Bathrooms: %d", *l.Property.BathroomsHalf)
	}
	if l.Property.LivingAreaSqft != nil {
		add("Living Area: %d sqft", *l.Property.LivingAreaSqft)
	}
	if l.Property.LotSizeAcres != nil {
		add("Lot Size: %g acres", *l.Property.LotSizeAcres)
	}
	if l.Property.YearBuilt != nil {
		add("Year Built: %d", *l.Property.YearBuilt)
	}
	if l.Property.GarageSpaces != nil {
		add("Garage Spaces: %g", *l.Property.GarageSpaces)
	}
	if len(l.Features.Appliances) > 0 {
		add("Appliances: %s", strings.Join(l.Features.Appliances, ", "))
	}
	if len(l.Features.InteriorFeatures) > 0 {
		add("Interior Features: %s", strings.Join(l.Features.InteriorFeatures, ", "))
	}
	if len(l.Features.ExteriorFeatures) > 0 {
		add("Exterior Features: %s", strings.Join(l.Features.ExteriorFeatures, ", "))
	}
	if len(l.Utilities.Heating) > 0 {
		add("Heating: %s", strings.Join(l.Utilities.Heating, ", "))
	}
	if len(l.Utilities.Cooling) > 0 {
		add("Cooling: %s", strings.Join(l.Utilities.Cooling, ", "))
	}
	if l.Location.City != nil {
		state := ""
		if l.Location.State != nil {
			state = *l.Location.State
		}
		add("Location: %s, %s", *l.Location.City, state)
	}
	if l.Location.Subdivision != nil {
		add("Subdivision: %s", *l.Location.Subdivision)
	}
	if l.ListingMeta.ListPrice != nil {
		add("List Price: $%.0f", *l.ListingMeta.ListPrice)
	}

	return strings.Join(lines, "\n")
}

// propertyInfo collects the full canonical snapshot used by the property
// description prompt, with empty values dropped.
func propertyInfo(l *canonical.Listing) map[string]any {
	info := map[string]any{
		"location": map[string]any{
			"street_address": l.Location.StreetAddress,
			"city":           l.Location.City,
			"state":          l.Location.State,
			"zip_code":       l.Location.ZipCode,
			"subdivision":    l.Location.Subdivision,
			"county":         l.Location.County,
		},
		"property": map[string]any{
			"property_sub_type":   l.Property.PropertySubType,
			"levels":              l.Property.Levels,
			"main_level_bedrooms": l.Property.MainLevelBedrooms,
			"bathrooms_full":      l.Property.BathroomsFull,
			"bathrooms_half":      l.Property.BathroomsHalf,
			"living_area_sqft":    l.Property.LivingAreaSqft,
			"year_built":          l.Property.YearBuilt,
			"property_condition":  l.Property.PropertyCondition,
			"lot_size_acres":      l.Property.LotSizeAcres,
			"garage_spaces":       l.Property.GarageSpaces,
			"view":                l.Property.View,
			"distance_to_water":   l.Property.DistanceToWater,
			"waterfront_features": l.Property.WaterfrontFeatures,
		},
		"features": map[string]any{
			"interior_features":    l.Features.InteriorFeatures,
			"exterior_features":    l.Features.ExteriorFeatures,
			"patio_porch_features": l.Features.PatioPorchFeatures,
			"fireplaces":           l.Features.Fireplaces,
			"flooring":             l.Features.Flooring,
			"appliances":           l.Features.Appliances,
			"pool_features":        l.Features.PoolFeatures,
			"community_features":   l.Features.CommunityFeatures,
		},
		"construction": map[string]any{
			"construction_material": l.Property.ConstructionMaterial,
			"foundation_details":    l.Property.FoundationDetails,
			"roof":                  l.Property.Roof,
			"lot_features":          l.Property.LotFeatures,
		},
		"utilities": map[string]any{
			"heating":      l.Utilities.Heating,
			"cooling":      l.Utilities.Cooling,
			"water_source": l.Utilities.WaterSource,
			"sewer":        l.Utilities.Sewer,
		},
		"financial": map[string]any{
			"list_price":        l.ListingMeta.ListPrice,
			"tax_annual_amount": l.Financial.TaxAnnualAmount,
			"tax_year":          l.Financial.TaxYear,
			"association_fee":   l.Financial.AssociationFee,
		},
		"schools": map[string]any{
			"school_district": l.Schools.SchoolDistrict,
			"high_school":     l.Schools.HighSchool,
		},
		"poi":        l.Location.POI,
		"directions": l.Remarks.Directions,
	}
	return cleanMap(info)
}

func cleanMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			if cleaned := cleanMap(val); len(cleaned) > 0 {
				out[k] = cleaned
			}
		case nil:
			continue
		default:
			if isZeroValue(v) {
				continue
			}
			out[k] = v
		}
	}
	return out
}

func isZeroValue(v any) bool {
	switch val := v.(type) {
	case []string:
		return len(val) == 0
	case []canonical.POI:
		return len(val) == 0
	case *string:
		return val == nil
	case *int:
		return val == nil
	case *float64:
		return val == nil
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
