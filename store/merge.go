package store

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
)

// fieldIndexCache maps record types to their json-tag → field-index tables
// so reflection walks each struct shape once.
var fieldIndexCache sync.Map // reflect.Type -> map[string][]int

// fieldIndexes returns the json tag name → struct field index path table for
// a record type, descending into embedded structs (the shared Record base).
func fieldIndexes(t reflect.Type) map[string][]int {
	if v, ok := fieldIndexCache.Load(t); ok {
		return v.(map[string][]int)
	}

	idx := make(map[string][]int)
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, append(slices.Clone(prefix), i))
				continue
			}
			name := f.Name
			if tag := f.Tag.Get("json"); tag != "" {
				tag, _, _ = strings.Cut(tag, ",")
				if tag == "-" {
					continue
				}
				if tag != "" {
					name = tag
				}
			}
			idx[name] = append(slices.Clone(prefix), i)
		}
	}
	walk(t, nil)

	fieldIndexCache.Store(t, idx)
	return idx
}

// fieldEquals reports whether the record's field (addressed by json tag
// name) is exactly equal to want. Comparable representations of the same
// value (e.g. an untyped string against a named string type) are converted
// before comparison; anything else does not match.
func fieldEquals(item any, field string, want any) bool {
	v := reflect.ValueOf(item)
	path, ok := fieldIndexes(v.Type())[field]
	if !ok {
		return false
	}
	fv := v.FieldByIndex(path)
	if want == nil {
		return fv.IsZero()
	}
	wv := reflect.ValueOf(want)
	if wv.Type() != fv.Type() {
		if !convertible(wv.Type(), fv.Type()) {
			return false
		}
		wv = wv.Convert(fv.Type())
	}
	return reflect.DeepEqual(fv.Interface(), wv.Interface())
}

// applyUpdates shallow-merges the updates map onto the record: keys are json
// tag names, values overwrite the corresponding fields, untouched fields
// keep their values. Store-managed fields are skipped; unknown keys are
// ignored the same way an absent struct field would swallow them during
// unmarshaling.
func applyUpdates(ptr any, updates map[string]any) error {
	v := reflect.ValueOf(ptr).Elem()
	indexes := fieldIndexes(v.Type())
	for key, val := range updates {
		switch key {
		case "id", "createdAt", "updatedAt":
			// Assigned by the store, never by callers.
			continue
		}
		path, ok := indexes[key]
		if !ok {
			continue
		}
		field := v.FieldByIndex(path)
		if !field.CanSet() {
			continue
		}
		converted, err := convertValue(val, field.Type())
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		field.Set(converted)
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// convertValue coerces an update value to the target field type. It accepts
// exact and assignable types, numeric and named-string conversions, RFC 3339
// strings for time fields, and element-wise conversion of []any slices (the
// shape JSON/YAML decoding produces). Pointer targets are allocated and
// filled with the converted value.
func convertValue(val any, target reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type() == target || rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if target.Kind() == reflect.Pointer {
		cv, err := convertValue(val, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target.Elem())
		out.Elem().Set(cv)
		return out, nil
	}
	if convertible(rv.Type(), target) {
		return rv.Convert(target), nil
	}
	if target == timeType {
		if s, ok := val.(string); ok {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("cannot parse %q as a timestamp: %w", s, err)
			}
			return reflect.ValueOf(t), nil
		}
	}
	if target.Kind() == reflect.Slice {
		if items, ok := val.([]any); ok {
			out := reflect.MakeSlice(target, 0, len(items))
			for _, item := range items {
				cv, err := convertValue(item, target.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out = reflect.Append(out, cv)
			}
			return out, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unsupported type conversion from %v to %v", rv.Type(), target)
}

// convertible restricts reflect convertibility to conversions that preserve
// meaning: numeric to numeric and string-kind to string-kind. Without this
// guard Go would happily convert an int to a one-rune string.
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if isNumericKind(from.Kind()) && isNumericKind(to.Kind()) {
		return true
	}
	if from.Kind() == reflect.String && to.Kind() == reflect.String {
		return true
	}
	return false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
