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

// Package mls maps canonical listing fields onto the Unlock MLS form
// vocabulary, applies per-field transforms, and validates the result
// before it is handed to browser automation.
package mls

import (
	"fmt"

	"github.com/brightdoor/listingprep/internal/canonical"
)

// FieldType is the MLS-side value shape expected by the form.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeEnum      FieldType = "enum"
	TypeMultiEnum FieldType = "multi_enum"
)

// FieldMapping declares one MLS form field: where its value comes from in
// the canonical model, how confident the mapping is, and any transform to
// apply on the way out. An empty CanonicalPath means the field is filled
// purely from Default.
type FieldMapping struct {
	MLSField      string
	CanonicalPath string
	Confidence    float64
	Type          FieldType
	EnumValues    []string
	Default       any
	Transform     string
	Notes         string
}

// Section groups MLS form fields the way the Unlock MLS UI pages them.
type Section struct {
	Name   string
	Fields []FieldMapping
}

// Sections is the complete Unlock MLS mapping table, in form order.
// Iteration order is significant: transform output and validation messages
// follow it.
var Sections = []Section{
	{
		Name: "listing_location",
		Fields: []FieldMapping{
			{MLSField: "Street Address", CanonicalPath: "location.street_address", Confidence: 0.95, Type: TypeString},
			{MLSField: "Flex Listing", Confidence: 1.0, Type: TypeBoolean, Default: false},
			{MLSField: "Listing Agreement", CanonicalPath: "listing_meta.listing_agreement", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Listing Service", CanonicalPath: "listing_meta.listing_service", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "List Price", CanonicalPath: "listing_meta.list_price", Confidence: 0.95, Type: TypeNumber},
			{MLSField: "Expiration Date", CanonicalPath: "listing_meta.expiration_date", Confidence: 0.9, Type: TypeString, Transform: "format_date"},
			{MLSField: "Tentative Close Date", CanonicalPath: "listing_meta.tentative_close_date", Confidence: 0.85, Type: TypeString, Transform: "format_date"},
			{MLSField: "Auction Date", CanonicalPath: "listing_meta.auction_date", Confidence: 0.85, Type: TypeString, Transform: "format_date"},
			{MLSField: "Listing Special Conditions", CanonicalPath: "listing_meta.listing_special_conditions", Confidence: 0.85, Type: TypeMultiEnum},
			{MLSField: "Listing Agreement Document", CanonicalPath: "listing_meta.listing_agreement_document", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Street #", CanonicalPath: "location.street_number", Confidence: 0.9, Type: TypeString},
			{MLSField: "Street Name", CanonicalPath: "location.street_name", Confidence: 0.9, Type: TypeString},
			{MLSField: "Street Suffix", CanonicalPath: "location.street_suffix", Confidence: 0.9, Type: TypeString},
			{MLSField: "County", CanonicalPath: "location.county", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "City", CanonicalPath: "location.city", Confidence: 0.95, Type: TypeEnum},
			{MLSField: "State", CanonicalPath: "location.state", Confidence: 0.95, Type: TypeEnum},
			{MLSField: "Country", Confidence: 1.0, Type: TypeEnum, Default: "United States of America"},
			{MLSField: "Zip Code", CanonicalPath: "location.zip_code", Confidence: 0.95, Type: TypeNumber, Transform: "zip_to_number"},
			{MLSField: "Subdivision", CanonicalPath: "location.subdivision", Confidence: 0.85, Type: TypeString},
			{MLSField: "Tax Legal Description", CanonicalPath: "location.tax_legal_description", Confidence: 0.8, Type: TypeString},
			{MLSField: "Tax Lot", CanonicalPath: "location.tax_lot", Confidence: 0.85, Type: TypeNumber, Transform: "string_to_number"},
			{MLSField: "Parcel Number (PID)", CanonicalPath: "location.parcel_number", Confidence: 0.85, Type: TypeNumber, Transform: "string_to_number"},
			{MLSField: "Additional Parcel", CanonicalPath: "location.additional_parcel", Confidence: 0.9, Type: TypeBoolean},
			{MLSField: "Additional Parcel Description", CanonicalPath: "location.additional_parcel_description", Confidence: 0.8, Type: TypeString},
			{MLSField: "MLA Area", CanonicalPath: "location.mla_area", Confidence: 0.85, Type: TypeEnum},
			{MLSField: "FEMA Flood Plain", CanonicalPath: "location.flood_plain", Confidence: 0.9, Type: TypeBoolean},
			{MLSField: "ETJ", CanonicalPath: "location.etj", Confidence: 0.8, Type: TypeEnum, Default: "See Remarks", Notes: "Default to 'See Remarks' if not provided"},
			{MLSField: "Latitude", CanonicalPath: "location.latitude", Confidence: 0.95, Type: TypeNumber},
			{MLSField: "Longitude", CanonicalPath: "location.longitude", Confidence: 0.95, Type: TypeNumber},
			{MLSField: "School District", CanonicalPath: "schools.school_district", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Elementary", CanonicalPath: "schools.elementary_school_district", Confidence: 0.9, Type: TypeString},
			{MLSField: "Middle or Junior", CanonicalPath: "schools.middle_junior_school", Confidence: 0.9, Type: TypeString},
			{MLSField: "High School", CanonicalPath: "schools.high_school", Confidence: 0.9, Type: TypeString},
		},
	},
	{
		Name: "general",
		Fields: []FieldMapping{
			{MLSField: "Property Sub Type", CanonicalPath: "property.property_sub_type", Confidence: 0.95, Type: TypeEnum},
			{MLSField: "Ownership Type", CanonicalPath: "property.ownership_type", Confidence: 0.9, Type: TypeEnum, Transform: "infer_ownership_type"},
			{MLSField: "Levels", CanonicalPath: "property.levels", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Main Level Bedrooms", CanonicalPath: "property.main_level_bedrooms", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Other Level Beds", CanonicalPath: "property.other_level_bedrooms", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Total Bedrooms", CanonicalPath: "property.bedrooms_total", Confidence: 0.95, Type: TypeNumber},
			{MLSField: "Year Built", CanonicalPath: "property.year_built", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Year Built Source", CanonicalPath: "property.year_built_source", Confidence: 0.85, Type: TypeEnum, Default: "Public Records"},
			{MLSField: "Bathrooms Full", CanonicalPath: "property.bathrooms_full", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Bathrooms Half", CanonicalPath: "property.bathrooms_half", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Total Bathrooms", CanonicalPath: "property.bathrooms_total", Confidence: 0.95, Type: TypeNumber},
			{MLSField: "Living Room", CanonicalPath: "property.living_room", Confidence: 0.85, Type: TypeNumber, Transform: "string_to_number"},
			{MLSField: "Dining Room", CanonicalPath: "property.dining_room", Confidence: 0.85, Type: TypeNumber, Transform: "string_to_number"},
			{MLSField: "Living Area", CanonicalPath: "property.living_area_sqft", Confidence: 0.95, Type: TypeNumber},
			{MLSField: "Living Area Source", CanonicalPath: "property.living_area_source", Confidence: 0.85, Type: TypeEnum, Default: "Public Records"},
			{MLSField: "Garage Spaces", CanonicalPath: "property.garage_spaces", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Parking Total", CanonicalPath: "property.parking_total", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Direction Faces", CanonicalPath: "property.direction_faces", Confidence: 0.85, Type: TypeEnum},
			{MLSField: "Lot Size Acres", CanonicalPath: "property.lot_size_acres", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Property Condition", CanonicalPath: "property.property_condition", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "View", CanonicalPath: "property.view", Confidence: 0.85, Type: TypeMultiEnum, Transform: "string_to_multi_enum"},
			{MLSField: "Flooring", CanonicalPath: "features.flooring", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Construction Material", CanonicalPath: "property.construction_material", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Waterfront Features", CanonicalPath: "property.waterfront_features", Confidence: 0.85, Type: TypeMultiEnum, Transform: "string_to_multi_enum"},
			{MLSField: "Distance to Water Access", CanonicalPath: "property.distance_to_water", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Parking Features", CanonicalPath: "features.parking_features", Confidence: 0.8, Type: TypeMultiEnum},
			{MLSField: "Restrictions", CanonicalPath: "property.restrictions", Confidence: 0.85, Type: TypeMultiEnum, Transform: "string_to_multi_enum"},
			{MLSField: "Foundation Details", CanonicalPath: "property.foundation_details", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Roof", CanonicalPath: "property.roof", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Lot Features", CanonicalPath: "property.lot_features", Confidence: 0.9, Type: TypeMultiEnum},
		},
	},
	{
		Name: "additional",
		Fields: []FieldMapping{
			{MLSField: "Interior Features", CanonicalPath: "features.interior_features", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Exterior Features", CanonicalPath: "features.exterior_features", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Patio and Porch Features", CanonicalPath: "features.patio_porch_features", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Fireplaces", CanonicalPath: "features.fireplaces", Confidence: 0.9, Type: TypeNumber, Transform: "count_fireplaces"},
			{MLSField: "Accessibility Features", CanonicalPath: "features.accessibility_features", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Horse Amenities", CanonicalPath: "features.horse_amenities", Confidence: 0.85, Type: TypeMultiEnum},
			{MLSField: "Other Structures", CanonicalPath: "features.other_structures", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Appliances", CanonicalPath: "features.appliances", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Pool Features", CanonicalPath: "features.pool_features", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Guest Accommodations", CanonicalPath: "features.guest_accommodations", Confidence: 0.85, Type: TypeMultiEnum, Transform: "string_to_multi_enum"},
			{MLSField: "Window Features", CanonicalPath: "features.window_features", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Security Features", CanonicalPath: "features.security_features", Confidence: 0.85, Type: TypeMultiEnum, Default: []string{"None"}},
			{MLSField: "Laundry Location", CanonicalPath: "features.laundry_location", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Fencing", CanonicalPath: "features.fencing", Confidence: 0.85, Type: TypeMultiEnum, Transform: "string_to_multi_enum"},
			{MLSField: "Community Features", CanonicalPath: "features.community_features", Confidence: 0.9, Type: TypeMultiEnum},
		},
	},
	{
		Name: "documents_utilities",
		Fields: []FieldMapping{
			{MLSField: "Disclosures", CanonicalPath: "utilities.disclosures", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Utilities", CanonicalPath: "utilities.utilities", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Documents Available", CanonicalPath: "utilities.documents_available", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Heating", CanonicalPath: "utilities.heating", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Cooling", CanonicalPath: "utilities.cooling", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Water Source", CanonicalPath: "utilities.water_source", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Sewer", CanonicalPath: "utilities.sewer", Confidence: 0.9, Type: TypeMultiEnum},
		},
	},
	{
		Name: "green_energy",
		Fields: []FieldMapping{
			{MLSField: "Green Energy", CanonicalPath: "green_energy.green_energy", Confidence: 0.85, Type: TypeMultiEnum, Default: []string{"None"}},
			{MLSField: "Green Sustainability", CanonicalPath: "green_energy.green_sustainability", Confidence: 0.85, Type: TypeMultiEnum, Default: []string{"None"}},
		},
	},
	{
		Name: "financial",
		Fields: []FieldMapping{
			{MLSField: "Association", CanonicalPath: "financial.association", Confidence: 0.9, Type: TypeBoolean},
			{MLSField: "Association Name", CanonicalPath: "financial.association_name", Confidence: 0.9, Type: TypeString},
			{MLSField: "Association Amount", CanonicalPath: "financial.association_amount", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Association Fee", CanonicalPath: "financial.association_fee", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Acceptable Financing", CanonicalPath: "financial.acceptable_financing", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Estimated Tax", CanonicalPath: "financial.estimated_tax", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Tax Year", CanonicalPath: "financial.tax_year", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Tax Annual Amount", CanonicalPath: "financial.tax_annual_amount", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Tax Assessed Value", CanonicalPath: "financial.tax_assessed_value", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Tax Rate", CanonicalPath: "financial.tax_rate", Confidence: 0.9, Type: TypeNumber},
			{MLSField: "Buyer Incentive", CanonicalPath: "financial.buyer_incentive", Confidence: 0.85, Type: TypeEnum, Default: "None"},
			{MLSField: "Tax Exemptions", CanonicalPath: "financial.tax_exemptions", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Possession", CanonicalPath: "financial.possession", Confidence: 0.9, Type: TypeMultiEnum, Transform: "string_to_multi_enum"},
			{MLSField: "Seller Contributions", CanonicalPath: "financial.seller_contributions", Confidence: 0.9, Type: TypeBoolean},
			{MLSField: "Intermediary", CanonicalPath: "financial.intermediary", Confidence: 0.9, Type: TypeBoolean},
		},
	},
	{
		Name: "showing",
		Fields: []FieldMapping{
			{MLSField: "Occupant Type", CanonicalPath: "showing.occupant_type", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Showing Requirements", CanonicalPath: "showing.showing_requirements", Confidence: 0.9, Type: TypeMultiEnum},
			{MLSField: "Owner Name", CanonicalPath: "showing.owner_name", Confidence: 0.9, Type: TypeString},
			{MLSField: "Lockbox Type", CanonicalPath: "showing.lockbox_type", Confidence: 0.9, Type: TypeEnum},
			{MLSField: "Lockbox Location", CanonicalPath: "showing.lockbox_location", Confidence: 0.9, Type: TypeString},
			{MLSField: "Showing Instructions", CanonicalPath: "showing.showing_instructions", Confidence: 0.9, Type: TypeString},
		},
	},
	{
		Name: "agent_office",
		Fields: []FieldMapping{
			{MLSField: "Listing Agent", CanonicalPath: "agents.listing_agent", Confidence: 0.95, Type: TypeString},
			{MLSField: "Co List Agent", CanonicalPath: "agents.co_listing_agent", Confidence: 0.9, Type: TypeString},
		},
	},
	{
		Name: "remarks",
		Fields: []FieldMapping{
			{MLSField: "Directions", CanonicalPath: "remarks.directions", Confidence: 0.9, Type: TypeString},
			{MLSField: "Private Remarks", CanonicalPath: "remarks.private_remarks", Confidence: 0.9, Type: TypeString},
			{MLSField: "Public Remarks", CanonicalPath: "remarks.public_remarks", Confidence: 0.9, Type: TypeString},
			{MLSField: "Syndication Remarks", CanonicalPath: "remarks.syndication_remarks", Confidence: 0.9, Type: TypeString},
			{MLSField: "Branded Virtual Tour URL", CanonicalPath: "media.branded_virtual_tour_url", Confidence: 0.9, Type: TypeString},
			{MLSField: "Unbranded Virtual Tour URL", CanonicalPath: "media.unbranded_virtual_tour_url", Confidence: 0.9, Type: TypeString},
			{MLSField: "Branded Video Tour URL", CanonicalPath: "media.branded_video_tour_url", Confidence: 0.9, Type: TypeString},
			{MLSField: "Unbranded Video Tour URL", CanonicalPath: "media.unbranded_video_tour_url", Confidence: 0.9, Type: TypeString},
		},
	},
	{
		Name: "internet",
		Fields: []FieldMapping{
			{MLSField: "Internet Entire Listing Display", Confidence: 1.0, Type: TypeBoolean, Default: true},
			{MLSField: "Internet Automated Valuation Display", Confidence: 1.0, Type: TypeBoolean, Default: false},
			{MLSField: "Internet Consumer Comment", Confidence: 1.0, Type: TypeBoolean, Default: false},
			{MLSField: "Internet Address Display", Confidence: 1.0, Type: TypeBoolean, Default: true},
		},
	},
}

// LookupField finds a mapping by section and MLS field name.
func LookupField(section, mlsField string) (FieldMapping, bool) {
	for _, s := range Sections {
		if s.Name != section {
			continue
		}
		for _, f := range s.Fields {
			if f.MLSField == mlsField {
				return f, true
			}
		}
	}
	return FieldMapping{}, false
}

// VerifyMappings checks every mapping's canonical path against the path
// registry. Called once at startup so a table typo fails fast instead of
// silently dropping a form field.
func VerifyMappings() error {
	for _, s := range Sections {
		for _, f := range s.Fields {
			if f.CanonicalPath == "" {
				continue
			}
			if _, ok := canonical.Lookup(f.CanonicalPath); !ok {
				return fmt.Errorf("mls mapping %s/%s references unknown canonical path %q", s.Name, f.MLSField, f.CanonicalPath)
			}
		}
	}
	return nil
}
