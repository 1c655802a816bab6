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

package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestEffectiveLabel(t *testing.T) {
	final := "living_room"
	ai := "kitchen"
	empty := ""

	tests := []struct {
		name string
		img  Image
		want string
	}{
		{"final wins", Image{FinalLabel: &final, AISuggestedLabel: &ai}, "living_room"},
		{"ai fallback", Image{AISuggestedLabel: &ai}, "kitchen"},
		{"empty final falls through", Image{FinalLabel: &empty, AISuggestedLabel: &ai}, "kitchen"},
		{"nothing set", Image{}, "other"},
	}
	for _, tt := range tests {
		if got := tt.img.EffectiveLabel(); got != tt.want {
			t.Errorf("%s: EffectiveLabel() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSequenceView_UploadOrder(t *testing.T) {
	label := "kitchen"
	images := []Image{
		{ID: uuid.New(), AISuggestedLabel: &label},
		{ID: uuid.New(), AISuggestedLabel: &label},
		{ID: uuid.New()},
	}

	view := SequenceView(images)
	if len(view) != 3 {
		t.Fatalf("len = %d, want 3", len(view))
	}
	for i, v := range view {
		if v.UploadOrder != i+1 {
			t.Errorf("view[%d].UploadOrder = %d, want %d", i, v.UploadOrder, i+1)
		}
	}
	if view[2].Label != "other" {
		t.Errorf("unlabeled image label = %q, want other", view[2].Label)
	}
}

func TestRoomLabelFromFeatures(t *testing.T) {
	if got := roomLabelFromFeatures([]byte(`{"room_label":"front_exterior"}`)); got == nil || *got != "front_exterior" {
		t.Errorf("roomLabelFromFeatures = %v, want front_exterior", got)
	}
	if got := roomLabelFromFeatures([]byte(`{"condition":"good"}`)); got != nil {
		t.Errorf("roomLabelFromFeatures = %q, want nil", *got)
	}
	if got := roomLabelFromFeatures(nil); got != nil {
		t.Errorf("roomLabelFromFeatures(nil) = %q, want nil", *got)
	}
	if got := roomLabelFromFeatures([]byte(`not json`)); got != nil {
		t.Errorf("roomLabelFromFeatures(garbage) = %q, want nil", *got)
	}
}
