package core

import (
	"fmt"
	"reflect"
)

// as converts a driver-supplied value to T. A nil value yields the zero T.
// Besides direct assertion it handles the widenings drivers commonly apply:
// int64 for integer columns, []byte for text columns.
func as[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}

	target := reflect.TypeOf(&zero).Elem()
	if b, ok := v.([]byte); ok && target.Kind() == reflect.String {
		return any(string(b)).(T), nil
	}
	rv := reflect.ValueOf(v)
	if target.Kind() == reflect.String && isScalarKind(rv.Kind()) {
		// reflect.Convert turns an integer into the rune it codes for, not
		// its decimal rendering, so scalars are formatted instead.
		return reflect.ValueOf(fmt.Sprint(v)).Convert(target).Interface().(T), nil
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, fmt.Errorf("cannot convert %T to %s", v, target)
}

// isScalarKind reports whether k is a numeric or boolean kind whose string
// form is its formatted value rather than a reflect conversion.
func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool:
		return true
	}
	return false
}
