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

package canonical

import (
	"reflect"
	"testing"

	"github.com/brightdoor/listingprep/internal/extract"
)

func fieldOf(v extract.Value) extract.Field {
	return extract.Field{Value: v, Provenance: extract.Provenance{FileID: "doc-1", PageNumber: 1, SourceType: extract.SourceText}}
}

func TestBuild_FromEmpty(t *testing.T) {
	fields := extract.FieldSet{
		"location.city":            fieldOf(extract.String("Dripping Springs")),
		"property.bedrooms_total":  fieldOf(extract.Number(3)),
		"financial.association":    fieldOf(extract.Bool(true)),
		"features.flooring":        fieldOf(extract.StringList([]string{"Carpet", "Vinyl"})),
		"listing_meta.list_price":  fieldOf(extract.Number(525000)),
		"location.unknown_field_x": fieldOf(extract.String("ignored")),
	}

	l := Build(fields, nil)

	if got := *l.Location.City; got != "Dripping Springs" {
		t.Errorf("city = %q, want Dripping Springs", got)
	}
	if got := *l.Property.BedroomsTotal; got != 3 {
		t.Errorf("bedrooms_total = %d, want 3", got)
	}
	if !*l.Financial.Association {
		t.Error("association = false, want true")
	}
	if got := l.Features.Flooring; !reflect.DeepEqual(got, []string{"Carpet", "Vinyl"}) {
		t.Errorf("flooring = %v", got)
	}
	if got := *l.ListingMeta.ListPrice; got != 525000 {
		t.Errorf("list_price = %v, want 525000", got)
	}
}

// TestBuild_PopulatedScalarUntouched verifies re-extraction never overwrites
// a scalar the user (or a prior pass) already filled in.
func TestBuild_PopulatedScalarUntouched(t *testing.T) {
	l := New()
	city := "Austin"
	l.Location.City = &city
	price := 450000.0
	l.ListingMeta.ListPrice = &price

	Build(extract.FieldSet{
		"location.city":           fieldOf(extract.String("Houston")),
		"listing_meta.list_price": fieldOf(extract.Number(999999)),
	}, l)

	if *l.Location.City != "Austin" {
		t.Errorf("city = %q, want Austin", *l.Location.City)
	}
	if *l.ListingMeta.ListPrice != 450000 {
		t.Errorf("list_price = %v, want 450000", *l.ListingMeta.ListPrice)
	}
}

func TestBuild_ListUnion(t *testing.T) {
	l := New()
	l.Features.Flooring = []string{"Carpet", "Tile"}

	Build(extract.FieldSet{
		"features.flooring": fieldOf(extract.StringList([]string{"Tile", "Hardwood"})),
	}, l)

	want := []string{"Carpet", "Tile", "Hardwood"}
	if !reflect.DeepEqual(l.Features.Flooring, want) {
		t.Errorf("flooring = %v, want %v", l.Features.Flooring, want)
	}
}

// TestBuild_BadDateSkipped verifies an unparseable date string leaves the
// field empty instead of assigning garbage.
func TestBuild_BadDateSkipped(t *testing.T) {
	l := Build(extract.FieldSet{
		"listing_meta.expiration_date":      fieldOf(extract.String("sometime next spring")),
		"listing_meta.tentative_close_date": fieldOf(extract.String("07/01/2026")),
	}, nil)

	if l.ListingMeta.ExpirationDate != nil {
		t.Errorf("expiration_date = %v, want nil", l.ListingMeta.ExpirationDate)
	}
	if l.ListingMeta.TentativeCloseDate == nil {
		t.Fatal("tentative_close_date = nil, want set")
	}
	if got := l.ListingMeta.TentativeCloseDate.Format("2006-01-02"); got != "2026-07-01" {
		t.Errorf("tentative_close_date = %s, want 2026-07-01", got)
	}
}

func TestBuild_NullSkipped(t *testing.T) {
	l := Build(extract.FieldSet{
		"location.city": fieldOf(extract.Null()),
	}, nil)
	if l.Location.City != nil {
		t.Errorf("city = %v, want nil", *l.Location.City)
	}
}

func TestMissingRequired(t *testing.T) {
	l := New()
	if got := MissingRequired(l); !reflect.DeepEqual(got, RequiredFields) {
		t.Errorf("MissingRequired(empty) = %v, want all of %v", got, RequiredFields)
	}

	addr := "123 Main St"
	city := "Austin"
	state := "TX"
	zip := "78701"
	price := 500000.0
	l.Location.StreetAddress = &addr
	l.Location.City = &city
	l.Location.State = &state
	l.Location.ZipCode = &zip
	l.ListingMeta.ListPrice = &price

	want := []string{"property.property_sub_type"}
	if got := MissingRequired(l); !reflect.DeepEqual(got, want) {
		t.Errorf("MissingRequired = %v, want %v", got, want)
	}

	sub := "Single Family Residence"
	l.Property.PropertySubType = &sub
	if got := MissingRequired(l); got != nil {
		t.Errorf("MissingRequired = %v, want nil", got)
	}
}
