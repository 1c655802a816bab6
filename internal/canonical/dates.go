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
	"encoding/json"
	"strings"
	"time"
)

// dateFormats are tried in order when parsing extracted date strings. US
// formats come first because they dominate MLS paperwork.
var dateFormats = []string{
	"01/02/2006",
	"01/02/06",
	"01-02-2006",
	"01-02-06",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ParseDate parses a date string in any of the formats seen in MLS
// documents. The second return is false when nothing matched.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339, strings.Replace(s, "Z", "+00:00", 1)); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// USDate serializes as MM/DD/YYYY. Used for validated_at, expiration_date
// and updated_at. The MLS target consumes these verbatim, so the format is
// a compatibility requirement, not a style choice.
type USDate struct {
	time.Time
}

// NewUSDate wraps a time.
func NewUSDate(t time.Time) USDate { return USDate{Time: t} }

// MarshalJSON renders MM/DD/YYYY.
func (d USDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("01/02/2006"))
}

// UnmarshalJSON accepts null or any supported date string.
func (d *USDate) UnmarshalJSON(data []byte) error {
	return unmarshalDate(&d.Time, data)
}

// ISODate serializes as YYYY-MM-DD. Used for tentative_close_date and
// auction_date only; see USDate for why the split exists.
type ISODate struct {
	time.Time
}

// NewISODate wraps a time.
func NewISODate(t time.Time) ISODate { return ISODate{Time: t} }

// MarshalJSON renders YYYY-MM-DD.
func (d ISODate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

// UnmarshalJSON accepts null or any supported date string.
func (d *ISODate) UnmarshalJSON(data []byte) error {
	return unmarshalDate(&d.Time, data)
}

func unmarshalDate(dst *time.Time, data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*dst = time.Time{}
		return nil
	}
	if t, ok := ParseDate(*s); ok {
		*dst = t
	} else {
		// Unparseable stored dates degrade to zero rather than failing the
		// whole payload load; extraction already guards its own inputs.
		*dst = time.Time{}
	}
	return nil
}
