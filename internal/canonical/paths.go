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
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/brightdoor/listingprep/internal/extract"
)

// FieldKind classifies a canonical leaf field for typed get/set.
type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldInt
	FieldFloat
	FieldBool
	FieldStringList
	FieldUSDate
	FieldISODate
)

// Accessor is a typed getter/setter pair for one "section.field" path. The
// registry of accessors is built once at package init and validated against
// the Listing schema, so an unknown path fails at lookup time instead of
// silently at runtime.
type Accessor struct {
	Path string
	Kind FieldKind

	sectionIdx int
	fieldIdx   int
}

var registry = buildRegistry()

// Lookup resolves a dot-notation path to its accessor.
func Lookup(path string) (Accessor, bool) {
	a, ok := registry[path]
	return a, ok
}

// Paths returns every registered canonical field path.
func Paths() []string {
	out := make([]string, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	return out
}

// Get reads the value at the accessor's path as an extraction Value. Nil
// pointers and empty slices come back as Null / empty list respectively.
// Date fields return their wire-format string so downstream mapping sees
// exactly what the MLS target will receive.
func (a Accessor) Get(l *Listing) extract.Value {
	fv := reflect.ValueOf(l).Elem().Field(a.sectionIdx).Field(a.fieldIdx)

	switch a.Kind {
	case FieldString:
		if fv.IsNil() {
			return extract.Null()
		}
		return extract.String(fv.Elem().String())
	case FieldInt:
		if fv.IsNil() {
			return extract.Null()
		}
		return extract.Number(float64(fv.Elem().Int()))
	case FieldFloat:
		if fv.IsNil() {
			return extract.Null()
		}
		return extract.Number(fv.Elem().Float())
	case FieldBool:
		if fv.IsNil() {
			return extract.Null()
		}
		return extract.Bool(fv.Elem().Bool())
	case FieldStringList:
		if fv.IsNil() {
			return extract.StringList(nil)
		}
		return extract.StringList(fv.Interface().([]string))
	case FieldUSDate:
		if fv.IsNil() {
			return extract.Null()
		}
		return extract.String(fv.Interface().(*USDate).Format("01/02/2006"))
	case FieldISODate:
		if fv.IsNil() {
			return extract.Null()
		}
		return extract.String(fv.Interface().(*ISODate).Format("2006-01-02"))
	}
	return extract.Null()
}

// Set writes an extraction Value into the field, coercing compatible shapes
// (numeric strings into numbers, scalars into single-element lists, yes/no
// strings into booleans). Incompatible values are an error so the builder
// can skip the field.
func (a Accessor) Set(l *Listing, v extract.Value) error {
	fv := reflect.ValueOf(l).Elem().Field(a.sectionIdx).Field(a.fieldIdx)

	switch a.Kind {
	case FieldString:
		s, err := coerceString(v)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(&s))
	case FieldInt:
		f, err := coerceNumber(v)
		if err != nil {
			return err
		}
		n := int(f)
		fv.Set(reflect.ValueOf(&n))
	case FieldFloat:
		f, err := coerceNumber(v)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(&f))
	case FieldBool:
		b, err := coerceBool(v)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(&b))
	case FieldStringList:
		list, err := coerceList(v)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(list))
	case FieldUSDate:
		t, ok := ParseDate(v.StringVal())
		if v.Kind() != extract.KindString || !ok {
			return fmt.Errorf("cannot parse %v as date", v.AsAny())
		}
		d := NewUSDate(t)
		fv.Set(reflect.ValueOf(&d))
	case FieldISODate:
		t, ok := ParseDate(v.StringVal())
		if v.Kind() != extract.KindString || !ok {
			return fmt.Errorf("cannot parse %v as date", v.AsAny())
		}
		d := NewISODate(t)
		fv.Set(reflect.ValueOf(&d))
	}
	return nil
}

func coerceString(v extract.Value) (string, error) {
	switch v.Kind() {
	case extract.KindString:
		return v.StringVal(), nil
	case extract.KindNumber:
		n := v.NumberVal()
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10), nil
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case extract.KindBool:
		return strconv.FormatBool(v.BoolVal()), nil
	}
	return "", fmt.Errorf("cannot coerce %s to string", v.Kind())
}

func coerceNumber(v extract.Value) (float64, error) {
	switch v.Kind() {
	case extract.KindNumber:
		return v.NumberVal(), nil
	case extract.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.StringVal()), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to number", v.StringVal())
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot coerce %s to number", v.Kind())
}

func coerceBool(v extract.Value) (bool, error) {
	switch v.Kind() {
	case extract.KindBool:
		return v.BoolVal(), nil
	case extract.KindString:
		switch strings.ToLower(strings.TrimSpace(v.StringVal())) {
		case "yes", "true", "1", "y":
			return true, nil
		case "no", "false", "0", "n":
			return false, nil
		}
		return false, fmt.Errorf("cannot coerce %q to bool", v.StringVal())
	}
	return false, fmt.Errorf("cannot coerce %s to bool", v.Kind())
}

func coerceList(v extract.Value) ([]string, error) {
	switch v.Kind() {
	case extract.KindStringList:
		return v.ListVal(), nil
	case extract.KindString:
		if v.StringVal() == "" {
			return nil, nil
		}
		return []string{v.StringVal()}, nil
	}
	return nil, fmt.Errorf("cannot coerce %s to string list", v.Kind())
}

// buildRegistry walks the Listing schema once and records an accessor per
// leaf field. Sections and leaves are addressed by their json tags, which
// are the wire names extraction output uses. Unsupported leaf types (the
// POI list, media_images) are intentionally absent from the registry.
func buildRegistry() map[string]Accessor {
	out := make(map[string]Accessor)

	listingType := reflect.TypeOf(Listing{})
	skip := map[string]struct{}{
		"schema_version": {},
		"state":          {},
		"updated_at":     {},
	}

	for si := 0; si < listingType.NumField(); si++ {
		sectionField := listingType.Field(si)
		sectionName := jsonName(sectionField)
		if _, ok := skip[sectionName]; ok {
			continue
		}
		sectionType := sectionField.Type

		for fi := 0; fi < sectionType.NumField(); fi++ {
			leaf := sectionType.Field(fi)
			kind, ok := leafKind(leaf.Type)
			if !ok {
				continue
			}
			path := sectionName + "." + jsonName(leaf)
			if _, dup := out[path]; dup {
				panic("canonical: duplicate field path " + path)
			}
			out[path] = Accessor{Path: path, Kind: kind, sectionIdx: si, fieldIdx: fi}
		}
	}

	return out
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

func leafKind(t reflect.Type) (FieldKind, bool) {
	switch t {
	case reflect.TypeOf((*string)(nil)):
		return FieldString, true
	case reflect.TypeOf((*int)(nil)):
		return FieldInt, true
	case reflect.TypeOf((*float64)(nil)):
		return FieldFloat, true
	case reflect.TypeOf((*bool)(nil)):
		return FieldBool, true
	case reflect.TypeOf([]string(nil)):
		return FieldStringList, true
	case reflect.TypeOf((*USDate)(nil)):
		return FieldUSDate, true
	case reflect.TypeOf((*ISODate)(nil)):
		return FieldISODate, true
	}
	return 0, false
}
