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

package extract

import "fmt"

// SourceType identifies the extraction method that produced a field.
type SourceType string

const (
	SourceText   SourceType = "text"
	SourceVision SourceType = "vision"
)

// defaultConfidence applies when a model omits the confidence score.
const defaultConfidence = 0.5

// Provenance records where an extracted value came from.
type Provenance struct {
	FileID     string     `json:"file_id"`
	PageNumber int        `json:"page_number,omitempty"`
	SourceType SourceType `json:"source_type"`
	Confidence *float64   `json:"confidence,omitempty"`
}

// SourceRef renders the provenance as "file:page_N" for audit rows.
func (p Provenance) SourceRef() string {
	page := p.PageNumber
	if page == 0 {
		page = 1
	}
	return fmt.Sprintf("%s:page_%d", p.FileID, page)
}

func (p Provenance) confidence() float64 {
	if p.Confidence == nil {
		return defaultConfidence
	}
	return *p.Confidence
}

// Field is one extracted value together with its provenance.
type Field struct {
	Value      Value      `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// FieldSet maps canonical field paths ("section.field") to extracted fields.
type FieldSet map[string]Field

// Clone returns a shallow copy of the set (Values are immutable).
func (fs FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}
