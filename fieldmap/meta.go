package fieldmap

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// meta caches the column layout of a struct type.
type meta struct {
	fields   []*fieldInfo
	fieldMap map[string]*fieldInfo
}

// fieldInfo describes one exported struct field mapped to a column.
type fieldInfo struct {
	name   string // struct field name
	column string // normalized column name
	index  int    // struct field index
}

var metaCache sync.Map

func getMeta(typ reflect.Type) (*meta, error) {
	if cached, ok := metaCache.Load(typ); ok {
		return cached.(*meta), nil
	}

	m, err := parseMeta(typ)
	if err != nil {
		return nil, err
	}

	metaCache.Store(typ, m)
	return m, nil
}

func parseMeta(typ reflect.Type) (*meta, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct type, got %s", typ.Kind())
	}

	m := &meta{fieldMap: make(map[string]*fieldInfo)}
	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		if !structField.IsExported() {
			continue
		}

		tag := structField.Tag.Get("jsql")
		if tag == "-" {
			continue
		}
		column := strings.TrimSpace(tag)
		if column == "" {
			column = camelToSnake(structField.Name)
		}

		f := &fieldInfo{
			name:   structField.Name,
			column: column,
			index:  i,
		}
		m.fields = append(m.fields, f)
		m.fieldMap[column] = f
	}
	return m, nil
}

func camelToSnake(s string) string {
	if s == "ID" {
		return "id"
	}
	var res []rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rune(s[i-1])) || (i+1 < len(s) && unicode.IsLower(rune(s[i+1])))) {
				res = append(res, '_')
			}
			res = append(res, unicode.ToLower(r))
		} else {
			res = append(res, r)
		}
	}
	return string(res)
}
