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

import "testing"

func TestLabelFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"kitchen.jpg", "kitchen"},
		{"front_exterior_1.png", "front_exterior"},
		{"IMG_master_suite.jpeg", "master_bedroom"},
		{"Living-Area.png", "living_room"},
		{"backyard2.jpg", "backyard"},
		{"photos/upstairs/guest_bathroom.jpg", "bathroom"},
		{"DSC00142.jpg", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LabelFromFilename(tt.filename); got != tt.want {
			t.Errorf("LabelFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestIsValidRoomLabel(t *testing.T) {
	if !IsValidRoomLabel("front_exterior") {
		t.Error("front_exterior should be valid")
	}
	if !IsValidRoomLabel("KITCHEN") {
		t.Error("label check should be case-insensitive")
	}
	if IsValidRoomLabel("wine_cellar") {
		t.Error("wine_cellar should not be valid")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
