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

// Package canonical defines the canonical listing record, its draft/locked
// lifecycle, the field-path registry, and the builder that projects merged
// extraction results onto a listing.
package canonical

import "time"

// SchemaVersion is informational; bumped when section shapes change.
const SchemaVersion = "1.0"

// Mode is the lifecycle mode of a canonical listing.
type Mode string

const (
	ModeDraft  Mode = "draft"
	ModeLocked Mode = "locked"
)

// State tracks the draft → locked lifecycle. Locked listings reject every
// canonical mutation, including image metadata edits.
type State struct {
	Mode        Mode    `json:"mode"`
	Validated   bool    `json:"validated"`
	Locked      bool    `json:"locked"`
	ValidatedAt *USDate `json:"validated_at"`
	ValidatedBy *string `json:"validated_by"`
}

// ListingMeta holds agreement and pricing metadata.
type ListingMeta struct {
	FlexListing              *bool    `json:"flex_listing"`
	ListingAgreement         *string  `json:"listing_agreement"`
	ListingAgreementDocument *string  `json:"listing_agreement_document"`
	ListingService           *string  `json:"listing_service"`
	ListPrice                *float64 `json:"list_price"`
	ExpirationDate           *USDate  `json:"expiration_date"`
	SpecialConditions        *string  `json:"special_conditions"`
	ListingSpecialConditions []string `json:"listing_special_conditions"`
	TentativeCloseDate       *ISODate `json:"tentative_close_date"`
	AuctionDate              *ISODate `json:"auction_date"`
}

// POI is one point of interest attached by geo enrichment.
type POI struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Distance float64 `json:"distance_m"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// Location holds address, tax and geo fields.
type Location struct {
	StreetNumber  *string `json:"street_number"`
	StreetName    *string `json:"street_name"`
	StreetSuffix  *string `json:"street_suffix"`
	StreetAddress *string `json:"street_address"`

	City    *string `json:"city"`
	County  *string `json:"county"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	ZipCode *string `json:"zip_code"`

	Subdivision         *string `json:"subdivision"`
	TaxLegalDescription *string `json:"tax_legal_description"`
	TaxLot              *string `json:"tax_lot"`
	ParcelNumber        *string `json:"parcel_number"`

	AdditionalParcel            *bool   `json:"additional_parcel"`
	AdditionalParcelDescription *string `json:"additional_parcel_description"`

	MLAArea    *string `json:"mla_area"`
	FloodPlain *bool   `json:"flood_plain"`
	ETJ        *bool   `json:"etj"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	POI []POI `json:"poi"`
}

// Schools holds school assignment fields.
type Schools struct {
	ElementarySchoolDistrict *string `json:"elementary_school_district"`
	MiddleJuniorSchool       *string `json:"middle_junior_school"`
	HighSchool               *string `json:"high_school"`
	SchoolDistrict           *string `json:"school_district"`
}

// Property holds structural facts about the property.
type Property struct {
	PropertySubType *string `json:"property_sub_type"`
	OwnershipType   *string `json:"ownership_type"`

	Levels             *int `json:"levels"`
	MainLevelBedrooms  *int `json:"main_level_bedrooms"`
	OtherLevelBedrooms *int `json:"other_level_bedrooms"`
	BedroomsTotal      *int `json:"bedrooms_total"`

	YearBuilt       *int    `json:"year_built"`
	YearBuiltSource *string `json:"year_built_source"`

	BathroomsFull  *int     `json:"bathrooms_full"`
	BathroomsHalf  *int     `json:"bathrooms_half"`
	BathroomsTotal *float64 `json:"bathrooms_total"`

	LivingAreaSqft   *int    `json:"living_area_sqft"`
	LivingAreaSource *string `json:"living_area_source"`

	GarageSpaces   *float64 `json:"garage_spaces"`
	ParkingTotal   *float64 `json:"parking_total"`
	DirectionFaces *string  `json:"direction_faces"`

	LotSizeAcres       *float64 `json:"lot_size_acres"`
	PropertyCondition  *string  `json:"property_condition"`
	View               *string  `json:"view"`
	DistanceToWater    *float64 `json:"distance_to_water"`
	WaterfrontFeatures *string  `json:"waterfront_features"`
	Restrictions       *string  `json:"restrictions"`

	LivingRoom *string `json:"living_room"`
	DiningRoom *string `json:"dining_room"`

	ConstructionMaterial []string `json:"construction_material"`
	FoundationDetails    []string `json:"foundation_details"`
	Roof                 []string `json:"roof"`
	LotFeatures          []string `json:"lot_features"`
}

// Features holds interior/exterior feature lists.
type Features struct {
	InteriorFeatures []string `json:"interior_features"`
	ExteriorFeatures []string `json:"exterior_features"`

	PatioPorchFeatures []string `json:"patio_porch_features"`
	Fireplaces         []string `json:"fireplaces"`
	Flooring           []string `json:"flooring"`

	AccessibilityFeatures []string `json:"accessibility_features"`
	HorseAmenities        []string `json:"horse_amenities"`
	OtherStructures       []string `json:"other_structures"`

	Appliances          []string `json:"appliances"`
	PoolFeatures        []string `json:"pool_features"`
	GuestAccommodations *string  `json:"guest_accommodations"`

	WindowFeatures    []string `json:"window_features"`
	SecurityFeatures  []string `json:"security_features"`
	LaundryLocation   *string  `json:"laundry_location"`
	Fencing           *string  `json:"fencing"`
	CommunityFeatures []string `json:"community_features"`
	ParkingFeatures   []string `json:"parking_features"`
}

// Utilities holds utility and disclosure lists.
type Utilities struct {
	Utilities          []string `json:"utilities"`
	Heating            []string `json:"heating"`
	Cooling            []string `json:"cooling"`
	WaterSource        []string `json:"water_source"`
	Sewer              []string `json:"sewer"`
	DocumentsAvailable []string `json:"documents_available"`
	Disclosures        []string `json:"disclosures"`
}

// GreenEnergy holds efficiency feature lists.
type GreenEnergy struct {
	GreenEnergy         []string `json:"green_energy"`
	GreenSustainability []string `json:"green_sustainability"`
}

// Financial holds taxes, fees and financing terms.
type Financial struct {
	Association       *bool    `json:"association"`
	AssociationName   *string  `json:"association_name"`
	AssociationFee    *float64 `json:"association_fee"`
	AssociationAmount *float64 `json:"association_amount"`

	AcceptableFinancing []string `json:"acceptable_financing"`

	EstimatedTax     *float64 `json:"estimated_tax"`
	TaxYear          *int     `json:"tax_year"`
	TaxAnnualAmount  *float64 `json:"tax_annual_amount"`
	TaxAssessedValue *float64 `json:"tax_assessed_value"`
	TaxRate          *float64 `json:"tax_rate"`

	BuyerIncentive *string  `json:"buyer_incentive"`
	TaxExemptions  []string `json:"tax_exemptions"`

	Possession          *string `json:"possession"`
	SellerContributions *bool   `json:"seller_contributions"`
	Intermediary        *bool   `json:"intermediary"`
}

// Showing holds access and occupancy fields.
type Showing struct {
	OccupantType        *string  `json:"occupant_type"`
	ShowingRequirements []string `json:"showing_requirements"`

	OwnerName       *string `json:"owner_name"`
	LockboxType     *string `json:"lockbox_type"`
	LockboxLocation *string `json:"lockbox_location"`

	ShowingInstructions *string `json:"showing_instructions"`
}

// Agents holds agent attribution.
type Agents struct {
	ListingAgent   *string `json:"listing_agent"`
	CoListingAgent *string `json:"co_listing_agent"`
}

// Remarks holds the free-text remark fields.
type Remarks struct {
	Directions            *string `json:"directions"`
	PrivateRemarks        *string `json:"private_remarks"`
	PublicRemarks         *string `json:"public_remarks"`
	SyndicationRemarks    *string `json:"syndication_remarks"`
	AIPropertyDescription *string `json:"ai_property_description"`
}

// ImageMedia is per-image metadata inside the canonical payload. The
// ai_suggested_* fields are refreshed on every re-analysis; the user-edited
// label/description/room_type, once non-nil, are never overwritten by AI.
type ImageMedia struct {
	ImageID                string  `json:"image_id"`
	AISuggestedDescription *string `json:"ai_suggested_description"`
	Description            *string `json:"description"`
	AISuggestedLabel       *string `json:"ai_suggested_label"`
	Label                  *string `json:"label"`
	AISuggestedRoomType    *string `json:"ai_suggested_room_type"`
	RoomType               *string `json:"room_type"`
	IsPrimary              bool    `json:"is_primary"`
	DisplayOrder           int     `json:"display_order"`
}

// Media holds tour URLs and the ordered image list.
type Media struct {
	BrandedVirtualTourURL   *string      `json:"branded_virtual_tour_url"`
	UnbrandedVirtualTourURL *string      `json:"unbranded_virtual_tour_url"`
	BrandedVideoTourURL     *string      `json:"branded_video_tour_url"`
	UnbrandedVideoTourURL   *string      `json:"unbranded_video_tour_url"`
	MediaImages             []ImageMedia `json:"media_images"`
}

// InternetSettings holds syndication display toggles.
type InternetSettings struct {
	InternetEntireListingDisplay      *bool `json:"internet_entire_listing_display"`
	InternetAutomatedValuationDisplay *bool `json:"internet_automated_valuation_display"`
	InternetConsumerComment           *bool `json:"internet_consumer_comment"`
	InternetAddressDisplay            *bool `json:"internet_address_display"`
}

// Listing is the root canonical aggregate: one per property listing. Every
// field is independently optional; absence is a first-class state.
type Listing struct {
	SchemaVersion string `json:"schema_version"`
	State         State  `json:"state"`

	ListingMeta      ListingMeta      `json:"listing_meta"`
	Location         Location         `json:"location"`
	Schools          Schools          `json:"schools"`
	Property         Property         `json:"property"`
	Features         Features         `json:"features"`
	Utilities        Utilities        `json:"utilities"`
	GreenEnergy      GreenEnergy      `json:"green_energy"`
	Financial        Financial        `json:"financial"`
	Showing          Showing          `json:"showing"`
	Agents           Agents           `json:"agents"`
	Remarks          Remarks          `json:"remarks"`
	Media            Media            `json:"media"`
	InternetSettings InternetSettings `json:"internet_settings"`

	UpdatedAt USDate `json:"updated_at"`
}

// New returns an empty draft listing.
func New() *Listing {
	return &Listing{
		SchemaVersion: SchemaVersion,
		State:         State{Mode: ModeDraft},
		UpdatedAt:     NewUSDate(time.Now().UTC()),
	}
}

// Touch refreshes the updated_at stamp.
func (l *Listing) Touch() {
	l.UpdatedAt = NewUSDate(time.Now().UTC())
}
