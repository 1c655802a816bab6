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

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// ParseResponse flattens a model response into a FieldSet. The expected
// shape is a nested object whose leaves are {"value": ..., "confidence": ...},
// e.g. {"location": {"city": {"value": "Austin", "confidence": 0.9}}}.
//
// The response is untrusted: non-JSON input, unexpected nesting, or
// unrepresentable leaf values all degrade to "zero fields extracted" (or a
// skipped leaf) rather than an error. Model responses sometimes arrive
// wrapped in a markdown code fence, which is stripped first.
func ParseResponse(raw []byte, prov Provenance) FieldSet {
	fields := make(FieldSet)

	data := stripCodeFence(raw)
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		slog.Warn("malformed extraction response, treating as zero fields",
			"file_id", prov.FileID,
			"source", prov.SourceType,
			"error", err,
		)
		return fields
	}

	flattenInto(fields, root, "", prov)
	return fields
}

func flattenInto(fields FieldSet, node map[string]any, prefix string, prov Provenance) {
	for key, raw := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		obj, isObj := raw.(map[string]any)
		if !isObj {
			// Bare leaf without a value/confidence wrapper.
			addLeaf(fields, path, raw, nil, prov)
			continue
		}

		_, hasValue := obj["value"]
		_, hasConfidence := obj["confidence"]
		if hasValue || hasConfidence {
			var conf *float64
			if c, ok := obj["confidence"].(float64); ok {
				conf = &c
			}
			addLeaf(fields, path, obj["value"], conf, prov)
			continue
		}

		flattenInto(fields, obj, path, prov)
	}
}

func addLeaf(fields FieldSet, path string, raw any, conf *float64, prov Provenance) {
	if raw == nil {
		return
	}
	value, err := FromAny(raw)
	if err != nil {
		slog.Warn("skipping unrepresentable extracted value",
			"path", path,
			"file_id", prov.FileID,
			"error", err,
		)
		return
	}
	fp := prov
	fp.Confidence = conf
	fields[path] = Field{Value: value, Provenance: fp}
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
