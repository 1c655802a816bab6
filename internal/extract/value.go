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

// Package extract defines the extraction value model and the merge engine
// that reconciles per-document extraction results into a single field set.
package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind enumerates the closed set of value shapes an extraction can produce.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindStringList:
		return "string_list"
	}
	return "unknown"
}

// Value is a tagged variant holding one extracted value. AI extraction
// output is untrusted, so every shape it can legally take is an explicit
// case here rather than an interface{} that callers must type-switch on.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	list []string
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// StringList returns a list value. The slice is copied so callers cannot
// mutate a Value after construction.
func StringList(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindStringList, list: cp}
}

// Kind reports the variant case.
func (v Value) Kind() Kind { return v.kind }

// BoolVal returns the boolean payload. Valid only for KindBool.
func (v Value) BoolVal() bool { return v.b }

// NumberVal returns the numeric payload. Valid only for KindNumber.
func (v Value) NumberVal() float64 { return v.num }

// StringVal returns the string payload. Valid only for KindString.
func (v Value) StringVal() string { return v.str }

// ListVal returns a copy of the list payload. Valid only for KindStringList.
func (v Value) ListVal() []string {
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp
}

// IsEmpty reports whether the value is null, an empty string, or an empty
// list. These are the cases the merge engine treats as "absent".
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindStringList:
		return len(v.list) == 0
	}
	return false
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindStringList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Union returns the order-preserving union of two list values: all of v's
// items followed by items of o not already present.
func (v Value) Union(o Value) Value {
	seen := make(map[string]struct{}, len(v.list)+len(o.list))
	out := make([]string, 0, len(v.list)+len(o.list))
	for _, s := range v.list {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range o.list {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return Value{kind: KindStringList, list: out}
}

// AsAny converts the value to its natural Go representation for JSON
// serialization and transform output. Integral numbers come back as int so
// they round-trip as 2024, not 2024.0 or "2024".
func (v Value) AsAny() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.num == math.Trunc(v.num) && !math.IsInf(v.num, 0) {
			return int(v.num)
		}
		return v.num
	case KindString:
		return v.str
	case KindStringList:
		return v.ListVal()
	}
	return nil
}

// FromAny builds a Value from a decoded JSON value. Scalars inside arrays
// are stringified; anything else (objects, mixed nesting) is rejected.
func FromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case string:
		return String(t), nil
	case []string:
		return StringList(t), nil
	case []any:
		items := make([]string, 0, len(t))
		for _, el := range t {
			s, err := stringifyScalar(el)
			if err != nil {
				return Null(), fmt.Errorf("list element: %w", err)
			}
			if s != "" {
				items = append(items, s)
			}
		}
		return StringList(items), nil
	}
	return Null(), fmt.Errorf("unsupported value type %T", raw)
}

func stringifyScalar(raw any) (string, error) {
	switch t := raw.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10), nil
		}
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported scalar type %T", raw)
}

// MarshalJSON serializes the value for audit-row storage.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.AsAny())
}

// UnmarshalJSON decodes a JSON value into the closed variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
