package core

import (
	"fmt"
	"reflect"

	"github.com/shrek82/jsql/fieldmap"
)

// params is the ordered parameter store backing one executor. Names are
// normalized once, at insertion, and unique for the executor's lifetime.
type params struct {
	names     []string
	values    map[string]any
	normalize func(string) string
}

func newParams(normalize func(string) string) *params {
	return &params{
		values:    make(map[string]any),
		normalize: normalize,
	}
}

func (p *params) add(name string, value any) error {
	name = p.normalize(name)
	if _, ok := p.values[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateParameter, name)
	}
	p.names = append(p.names, name)
	p.values[name] = value
	return nil
}

// set overwrites the value of an existing parameter in place, or appends a
// new one. Used by CRUD command creation, which merges rather than rejects.
func (p *params) set(name string, value any) {
	name = p.normalize(name)
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

func (p *params) remove(name string) bool {
	name = p.normalize(name)
	if _, ok := p.values[name]; !ok {
		return false
	}
	delete(p.values, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	return true
}

// removeIf removes every parameter whose value matches pred, preserving the
// order of the survivors, and reports how many were removed.
func (p *params) removeIf(pred func(v any) bool) int {
	kept := p.names[:0]
	removed := 0
	for _, n := range p.names {
		if pred(p.values[n]) {
			delete(p.values, n)
			removed++
			continue
		}
		kept = append(kept, n)
	}
	p.names = kept
	return removed
}

func (p *params) get(name string) (any, bool) {
	v, ok := p.values[p.normalize(name)]
	return v, ok
}

func (p *params) len() int {
	return len(p.names)
}

// pairs returns an ordered snapshot of the store.
func (p *params) pairs() []fieldmap.Pair {
	out := make([]fieldmap.Pair, 0, len(p.names))
	for _, n := range p.names {
		out = append(out, fieldmap.Pair{Name: n, Value: p.values[n]})
	}
	return out
}

// isNullValue reports whether v binds as SQL NULL: a nil interface or a
// typed nil pointer.
func isNullValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// isBlankValue reports whether v is the empty string. Whitespace-only
// strings are not blank.
func isBlankValue(v any) bool {
	s, ok := v.(string)
	return ok && s == ""
}
