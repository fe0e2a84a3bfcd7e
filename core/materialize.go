package core

import (
	"context"
	"fmt"

	"github.com/shrek82/jsql/client"
)

// Row is one result row handed to a row converter. Values are raw driver
// values; column order matches the result set.
type Row struct {
	cols []string
	vals []any
}

// Columns returns the result set's column names.
func (r Row) Columns() []string { return r.cols }

// Value returns the value at the given ordinal.
func (r Row) Value(i int) any { return r.vals[i] }

// Lookup returns the value of the named column.
func (r Row) Lookup(name string) (any, bool) {
	for i, c := range r.cols {
		if c == name {
			return r.vals[i], true
		}
	}
	return nil, false
}

// Map materializes the row as a column-name keyed dictionary, optionally
// renaming columns through rename.
func (r Row) Map(rename func(string) string) map[string]any {
	m := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		name := c
		if rename != nil {
			name = rename(c)
		}
		m[name] = r.vals[i]
	}
	return m
}

// ExecuteAndTransform runs a reader to completion and applies fn to every
// row, returning the ordered results. All dictionary, lookup, and array
// materializers are built on this primitive and share the data-read
// completion hook. Converter errors surface to the caller even when error
// handlers are registered.
func ExecuteAndTransform[T any](ctx context.Context, e *Executor, fn func(r Row) (T, error)) ([]T, error) {
	return executeTransform(ctx, e, KindQuery, fn)
}

func executeTransform[T any](ctx context.Context, e *Executor, kind string, fn func(r Row) (T, error)) ([]T, error) {
	v, err := e.runQuery(ctx, kind, client.BehaviorDefault, func(rows client.Rows) (any, error) {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, 16)
		for rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return nil, err
			}
			t, err := fn(row)
			if err != nil {
				return nil, bypass(err)
			}
			out = append(out, t)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return out, nil
	}, true)
	if err != nil {
		return nil, err
	}
	out, _ := v.([]T)
	return out, nil
}

func scanRow(rows client.Rows, cols []string) (Row, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Row{}, err
	}
	return Row{cols: cols, vals: vals}, nil
}

// ExecuteDictionaries runs a reader to completion and materializes each row
// as a column-name keyed dictionary, optionally renaming column names
// through rename.
func (e *Executor) ExecuteDictionaries(ctx context.Context, rename func(string) string) ([]map[string]any, error) {
	return executeTransform(ctx, e, KindDictionaries, func(r Row) (map[string]any, error) {
		return r.Map(rename), nil
	})
}

// ExecuteAndAutoMap runs a reader to completion and maps every row onto a T
// by column-name-to-field matching through the field-map adapter.
func ExecuteAndAutoMap[T any](ctx context.Context, e *Executor) ([]T, error) {
	return executeTransform(ctx, e, KindQuery, func(r Row) (T, error) {
		var t T
		if err := e.mapper.Assign(r.Map(nil), &t); err != nil {
			return t, err
		}
		return t, nil
	})
}

// ExecuteArray runs a reader to completion and collects one column across
// all rows into an ordered slice. An empty column name selects the first
// column.
func ExecuteArray[T any](ctx context.Context, e *Executor, column string) ([]T, error) {
	return executeTransform(ctx, e, KindQuery, func(r Row) (T, error) {
		var raw any
		if column == "" {
			raw = r.Value(0)
		} else {
			v, ok := r.Lookup(column)
			if !ok {
				var zero T
				return zero, fmt.Errorf("unknown column %s", column)
			}
			raw = v
		}
		return as[T](raw)
	})
}

// ExecuteVerticalDictionary runs a reader to completion and builds a
// one-to-one map from the key column to the value column. A repeated key
// fails with ErrDuplicateKey.
func ExecuteVerticalDictionary[K comparable, V any](ctx context.Context, e *Executor, keyCol, valCol string) (map[K]V, error) {
	return verticalDict[K, V](ctx, e, columnPicker(keyCol), columnPicker(valCol))
}

// ExecuteVerticalDictionaryOrdinal is ExecuteVerticalDictionary with columns
// selected by ordinal instead of name.
func ExecuteVerticalDictionaryOrdinal[K comparable, V any](ctx context.Context, e *Executor, keyIdx, valIdx int) (map[K]V, error) {
	return verticalDict[K, V](ctx, e, ordinalPicker(keyIdx), ordinalPicker(valIdx))
}

type picker func(r Row) (any, error)

func columnPicker(name string) picker {
	return func(r Row) (any, error) {
		v, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %s", name)
		}
		return v, nil
	}
}

func ordinalPicker(i int) picker {
	return func(r Row) (any, error) {
		if i < 0 || i >= len(r.cols) {
			return nil, fmt.Errorf("column ordinal %d out of range", i)
		}
		return r.Value(i), nil
	}
}

func verticalDict[K comparable, V any](ctx context.Context, e *Executor, key, val picker) (map[K]V, error) {
	v, err := e.runQuery(ctx, KindQuery, client.BehaviorDefault, func(rows client.Rows) (any, error) {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		out := make(map[K]V)
		for rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return nil, err
			}
			k, v, err := verticalPair[K, V](row, key, val)
			if err != nil {
				return nil, bypass(err)
			}
			if _, dup := out[k]; dup {
				return nil, bypass(fmt.Errorf("%w: %v", ErrDuplicateKey, k))
			}
			out[k] = v
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return out, nil
	}, true)
	if err != nil {
		return nil, err
	}
	out, _ := v.(map[K]V)
	return out, nil
}

// ExecuteVerticalLookup runs a reader to completion and builds a one-to-many
// grouping from the key column to the value column; duplicate keys are
// permitted and grouped in row order.
func ExecuteVerticalLookup[K comparable, V any](ctx context.Context, e *Executor, keyCol, valCol string) (map[K][]V, error) {
	key, val := columnPicker(keyCol), columnPicker(valCol)
	v, err := e.runQuery(ctx, KindQuery, client.BehaviorDefault, func(rows client.Rows) (any, error) {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		out := make(map[K][]V)
		for rows.Next() {
			row, err := scanRow(rows, cols)
			if err != nil {
				return nil, err
			}
			k, v, err := verticalPair[K, V](row, key, val)
			if err != nil {
				return nil, bypass(err)
			}
			out[k] = append(out[k], v)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return out, nil
	}, true)
	if err != nil {
		return nil, err
	}
	out, _ := v.(map[K][]V)
	return out, nil
}

// verticalPair extracts and converts one key/value pair from a row.
func verticalPair[K comparable, V any](row Row, key, val picker) (K, V, error) {
	var zeroK K
	var zeroV V
	rawKey, err := key(row)
	if err != nil {
		return zeroK, zeroV, err
	}
	k, err := as[K](rawKey)
	if err != nil {
		return zeroK, zeroV, err
	}
	rawVal, err := val(row)
	if err != nil {
		return zeroK, zeroV, err
	}
	v, err := as[V](rawVal)
	if err != nil {
		return zeroK, zeroV, err
	}
	return k, v, nil
}
