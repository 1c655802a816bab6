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

// RequiredFields are the canonical paths that must be non-empty before a
// listing can be validated and locked.
var RequiredFields = []string{
	"location.street_address",
	"location.city",
	"location.state",
	"location.zip_code",
	"listing_meta.list_price",
	"property.property_sub_type",
}

// MissingRequired returns the required paths that are still empty, in the
// fixed declaration order. An empty result means the listing may be locked.
func MissingRequired(l *Listing) []string {
	var missing []string
	for _, path := range RequiredFields {
		acc, ok := Lookup(path)
		if !ok || acc.Get(l).IsEmpty() {
			missing = append(missing, path)
		}
	}
	return missing
}
