package cache

import (
	"reflect"
	"time"
)

// Measurable lets a stored value report its own in-memory footprint,
// bypassing the structural estimate.
type Measurable interface {
	SizeBytes() int64
}

// maxDepth bounds the structural traversal against cyclic values
const maxDepth = 8

// SizeOf returns a best-effort estimate of a value's in-memory footprint.
// Values implementing Measurable are asked directly; everything else is
// charged by structural traversal: 2 bytes per string character, 8 per
// number, 4 per bool, containers summed recursively including field and
// key name overhead. The result is always >= 0.
func SizeOf(v any) int64 {
	if v == nil {
		return 0
	}
	if m, ok := v.(Measurable); ok {
		return m.SizeBytes()
	}
	return estimate(reflect.ValueOf(v), 0)
}

var timeType = reflect.TypeOf(time.Time{})

func estimate(v reflect.Value, depth int) int64 {
	if depth > maxDepth || !v.IsValid() {
		return 0
	}

	switch v.Kind() {
	case reflect.String:
		return int64(2 * v.Len())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 8
	case reflect.Bool:
		return 4
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return 0
		}
		return estimate(v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		var sum int64
		for i := 0; i < v.Len(); i++ {
			sum += estimate(v.Index(i), depth+1)
		}
		return sum
	case reflect.Map:
		var sum int64
		iter := v.MapRange()
		for iter.Next() {
			sum += estimate(iter.Key(), depth+1)
			sum += estimate(iter.Value(), depth+1)
		}
		return sum
	case reflect.Struct:
		if v.Type() == timeType {
			return 24
		}
		var sum int64
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			sum += int64(2 * len(t.Field(i).Name))
			sum += estimate(v.Field(i), depth+1)
		}
		return sum
	default:
		return 0
	}
}
