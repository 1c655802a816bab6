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

// extractionSchema is the shared output contract for text and vision
// document extraction: nested sections of {value, confidence} leaves keyed
// by canonical field name.
const extractionSchema = `Return a JSON object keyed by section (listing_meta, location, schools,
property, features, utilities, green_energy, financial, showing, agents,
remarks). Each field inside a section must be an object:

  { "value": string | number | boolean | array | null, "confidence": number }

Use the canonical field names, for example:

{
  "listing_meta": {
    "list_price": { "value": 525000, "confidence": 0.95 },
    "expiration_date": { "value": "2026-04-02T00:00:00", "confidence": 0.9 }
  },
  "location": {
    "street_address": { "value": "123 Ranch Rd", "confidence": 0.95 },
    "city": { "value": "Austin", "confidence": 0.95 },
    "zip_code": { "value": "78701", "confidence": 0.95 }
  },
  "property": {
    "bedrooms_total": { "value": 4, "confidence": 0.9 },
    "living_area_sqft": { "value": 2500, "confidence": 0.9 }
  },
  "financial": {
    "tax_year": { "value": 2024, "confidence": 0.9 }
  }
}

Omit sections with nothing extracted. Set value to null when absent.`

const extractionRules = `CRITICAL RULES:
- ONLY extract information that is CLEARLY PRESENT in the source
- DO NOT guess, infer, or fabricate values
- If a value is not present, return null
- Output MUST be valid JSON matching the provided schema

DATE FORMAT:
- Dates in documents are US format (MM/DD/YYYY), e.g. "04/02/2026"
- Output dates in date-time format: "04/02/2026" becomes "2026-04-02T00:00:00"

SPECIAL CONDITIONS:
- Extract special_conditions ONLY when "short sale" is explicitly mentioned;
  otherwise return null

PROPERTY CONDITION:
- "new construction", "new build", "to be built" and similar keywords mean
  property_condition is "new construction"; otherwise "resale" when the
  document describes an existing home

WATERFRONT:
- Extract waterfront_features ONLY when the property is directly adjacent
  to a water body; format as "Name, Type" (e.g. "Lake Travis, Lake").
  Distance alone goes in distance_to_water instead

TAX INFORMATION:
- When multiple tax years appear, extract tax_year, tax_annual_amount,
  tax_assessed_value and tax_rate for the LATEST year only

INTERMEDIARY:
- Prefer explicit text ("Intermediary: Yes"); otherwise read the checkbox
  in listing agreement documents: marked means true, empty means false,
  section absent means null

LIVING AREA (property.living_area_sqft):
- Interior heated/finished square footage only, never lot or garage size
- Strip commas and output an integer ("2,500 sqft" becomes 2500)
- Prefer heated, then finished, then total living area when several appear`

const textExtractionPrompt = `Extract structured MLS listing information from the following document text.

` + extractionRules + `

` + extractionSchema

const visionExtractionPrompt = `Extract structured MLS listing information from this scanned document page.
Read all printed and handwritten text, checkboxes and tables.

` + extractionRules + `

` + extractionSchema

const imageAnalysisPrompt = `You are an expert real estate copywriter and top-tier listing agent. Analyze
this property photo for a listing website.

Task:

1. Identify the room or area shown. Choose ONE room_label from:
   front_exterior, back_exterior, side_exterior, backyard,
   living_room, kitchen, bedroom, bathroom, dining_room,
   master_bedroom, primary_bedroom, guest_bedroom,
   master_bathroom, primary_bathroom, guest_bathroom,
   patio, deck, garage, basement, attic,
   community, amenities, floor_plan, map, other

2. Photo type: interior | exterior | floor_plan | map | other

3. Detect key selling points: flooring type, natural lighting, fixtures,
   architectural details (open concept, high ceilings).

4. Write a punchy photo caption (2-3 sentences max).

Style: inviting and professional; neutral, MLS-safe language; no Fair
Housing language; no assumptions about materials or condition unless
clearly visible; never describe clutter.

Return JSON:
{
  "room_label": "string",
  "photo_type": "string",
  "description": "string"
}`

const materialExtractionPrompt = `Analyze this property photo and extract material information.

CRITICAL RULES:
- ONLY extract materials that are CLEARLY VISIBLE in the image
- DO NOT guess, infer, or fabricate
- If a material is not visible or ambiguous, return an empty array []

FLOORING (interior photos): Hardwood, Tile, Carpet, Laminate, Vinyl,
Concrete, Marble, Bamboo, etc.

ROOF (exterior photos showing the roof): Composition Shingle, Metal, Tile,
Slate, Wood Shake, Asphalt, etc.

CONSTRUCTION MATERIAL (exterior photos): Brick, Stucco, Wood, Stone,
Siding, Concrete, Vinyl Siding, etc.

HORSE AMENITIES: barns, stables, paddocks, riding arenas, corrals.
First decide whether this is an urban/city property (dense housing, city
streets, no open space). If urban, set is_urban_city true and return []
for horse_amenities.

Return JSON:
{
  "flooring": [],
  "roof": [],
  "construction_material": [],
  "horse_amenities": [],
  "is_urban_city": false
}`
