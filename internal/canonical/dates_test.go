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
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // YYYY-MM-DD, empty means parse failure expected
	}{
		{"06/15/2026", "2026-06-15"},
		{"06-15-2026", "2026-06-15"},
		{"2026-06-15", "2026-06-15"},
		{"2026/06/15", "2026-06-15"},
		{"June 15, 2026", "2026-06-15"},
		{"Jun 15, 2026", "2026-06-15"},
		{"15 June 2026", "2026-06-15"},
		{"2026-06-15T10:30:00Z", "2026-06-15"},
		{"2026-06-15T10:30:00", "2026-06-15"},
		{"  06/15/2026  ", "2026-06-15"},
		{"", ""},
		{"not a date", ""},
		{"13/45/2026", ""},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if tt.want == "" {
			if ok {
				t.Errorf("ParseDate(%q) = %v, want failure", tt.in, got)
			}
			continue
		}
		if !ok {
			t.Errorf("ParseDate(%q) failed, want %s", tt.in, tt.want)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

// TestDateFormats pins the serialization split: USDate renders MM/DD/YYYY,
// ISODate renders YYYY-MM-DD.
func TestDateFormats(t *testing.T) {
	d := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	us, err := json.Marshal(NewUSDate(d))
	if err != nil {
		t.Fatalf("marshal USDate: %v", err)
	}
	if string(us) != `"03/09/2026"` {
		t.Errorf("USDate = %s, want \"03/09/2026\"", us)
	}

	iso, err := json.Marshal(NewISODate(d))
	if err != nil {
		t.Fatalf("marshal ISODate: %v", err)
	}
	if string(iso) != `"2026-03-09"` {
		t.Errorf("ISODate = %s, want \"2026-03-09\"", iso)
	}
}

func TestDateUnmarshal_Lenient(t *testing.T) {
	var d USDate
	if err := json.Unmarshal([]byte(`"03/09/2026"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Format("2006-01-02") != "2026-03-09" {
		t.Errorf("unmarshaled = %s, want 2026-03-09", d.Format("2006-01-02"))
	}

	// Nulls and junk both degrade to zero instead of erroring.
	for _, raw := range []string{`null`, `"garbage"`} {
		var z ISODate
		if err := json.Unmarshal([]byte(raw), &z); err != nil {
			t.Errorf("unmarshal %s: %v", raw, err)
		}
		if !z.IsZero() {
			t.Errorf("unmarshal %s = %v, want zero", raw, z.Time)
		}
	}
}
