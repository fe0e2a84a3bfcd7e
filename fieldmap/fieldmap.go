package fieldmap

import (
	"fmt"
	"reflect"
	"sort"
)

// Pair is a single name/value binding produced from a record.
type Pair struct {
	Name  string
	Value any
}

// Mapper converts structured records to ordered name/value pairs and back.
// The executor never assumes a particular naming convention beyond "apply
// Normalize consistently"; callers may plug in their own implementation.
type Mapper interface {
	// FieldPairs decomposes a struct, pointer to struct, or map[string]any
	// into ordered name/value pairs with normalized names.
	FieldPairs(record any) ([]Pair, error)
	// Assign writes a column-name keyed row onto the struct pointed to by dest.
	Assign(row map[string]any, dest any) error
	// Normalize converts a field or parameter name to the mapper's convention.
	Normalize(name string) string
}

// Default returns the reflection-based mapper using snake_case names and the
// "jsql" struct tag for overrides.
func Default() Mapper {
	return &reflectMapper{}
}

type reflectMapper struct{}

func (m *reflectMapper) Normalize(name string) string {
	return camelToSnake(name)
}

func (m *reflectMapper) FieldPairs(record any) ([]Pair, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}

	val := reflect.ValueOf(record)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("record is nil")
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Map:
		return m.mapPairs(val)
	case reflect.Struct:
		return m.structPairs(val)
	default:
		return nil, fmt.Errorf("record must be a struct or map, got %s", val.Kind())
	}
}

// mapPairs flattens a map record. Go map iteration order is random, so keys
// are sorted to keep the result deterministic.
func (m *reflectMapper) mapPairs(val reflect.Value) ([]Pair, error) {
	if val.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map record must have string keys, got %s", val.Type().Key())
	}

	keys := make([]string, 0, val.Len())
	for _, k := range val.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{
			Name:  m.Normalize(k),
			Value: val.MapIndex(reflect.ValueOf(k)).Interface(),
		})
	}
	return pairs, nil
}

func (m *reflectMapper) structPairs(val reflect.Value) ([]Pair, error) {
	meta, err := getMeta(val.Type())
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(meta.fields))
	for _, f := range meta.fields {
		pairs = append(pairs, Pair{
			Name:  f.column,
			Value: val.Field(f.index).Interface(),
		})
	}
	return pairs, nil
}

func (m *reflectMapper) Assign(row map[string]any, dest any) error {
	val := reflect.ValueOf(dest)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("dest must be a non-nil pointer to a struct")
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("dest must point to a struct, got %s", val.Kind())
	}

	meta, err := getMeta(val.Type())
	if err != nil {
		return err
	}

	for col, v := range row {
		f, ok := meta.fieldMap[m.Normalize(col)]
		if !ok {
			continue
		}
		if err := setField(val.Field(f.index), v); err != nil {
			return fmt.Errorf("assign column %s: %w", col, err)
		}
	}
	return nil
}

// setField stores v into the struct field, converting compatible kinds the
// way drivers commonly widen them (int64 for integers, []byte for strings).
func setField(field reflect.Value, v any) error {
	if v == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	vv := reflect.ValueOf(v)
	if vv.Type().AssignableTo(field.Type()) {
		field.Set(vv)
		return nil
	}
	if b, ok := v.([]byte); ok && field.Kind() == reflect.String {
		field.SetString(string(b))
		return nil
	}
	if field.Kind() == reflect.String && isScalarKind(vv.Kind()) {
		// reflect.Convert turns an integer into the rune it codes for, not
		// its decimal rendering, so scalars are formatted instead.
		field.SetString(fmt.Sprint(v))
		return nil
	}
	if vv.Type().ConvertibleTo(field.Type()) {
		field.Set(vv.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %s to %s", vv.Type(), field.Type())
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
