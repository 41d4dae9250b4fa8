// Package compose folds partial build configurations into a single effective configuration.
//
// A Config is a generic mapping of section name to value. Values are scalars, ordered
// sequences ([]any) or nested mappings (Config). Composition is a left fold of Merge:
//
//   - keys defined on one side only are copied
//   - two sequences are concatenated, earlier elements first
//   - two mappings are merged recursively
//   - anything else is replaced by the later value
//
// Compose never fails; shape errors surface when the result is decoded by the bundler adapter.
package compose

import (
	"maps"
	"reflect"
	"slices"
)

// Config is a partial build configuration.
type Config map[string]any

// Compose merges the sequence left to right into a new Config. Nil entries are skipped.
func Compose(seq ...Config) Config {
	out := Config{}
	for _, part := range seq {
		out = mergeInto(out, part)
	}
	return out
}

// Merge returns the composition of a followed by b.
func Merge(a, b Config) Config {
	return Compose(a, b)
}

// mergeInto merges src into dst, which is owned by the caller and may be mutated.
func mergeInto(dst, src Config) Config {
	for key, next := range src {
		prev, ok := dst[key]
		if !ok {
			dst[key] = Normalize(next)
			continue
		}
		dst[key] = mergeValue(prev, next)
	}
	return dst
}

// mergeValue combines an already normalized prev with next.
func mergeValue(prev, next any) any {
	next = Normalize(next)

	switch p := prev.(type) {
	case []any:
		if n, ok := next.([]any); ok {
			return append(slices.Clip(p), n...)
		}
	case Config:
		if n, ok := next.(Config); ok {
			return mergeInto(p, n)
		}
	}

	return next
}

// Normalize returns a deep copy of v with every mapping converted to Config and every
// sequence converted to []any. Scalars are returned unchanged. []byte counts as a scalar.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Config:
		out := make(Config, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case map[string]any:
		return Normalize(Config(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []byte:
		return slices.Clone(t)
	case string, bool, int, int64, float64:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(Config, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, ok := mapKey(iter.Key())
			if !ok {
				return v
			}
			out[k] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}

	return v
}

func mapKey(k reflect.Value) (string, bool) {
	if k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	if k.Kind() != reflect.String {
		return "", false
	}
	return k.String(), true
}

// Lookup walks nested mappings along path.
func (c Config) Lookup(path ...string) (any, bool) {
	var cur any = c
	for _, key := range path {
		var ok bool
		switch m := cur.(type) {
		case Config:
			cur, ok = m[key]
		case map[string]any:
			cur, ok = m[key]
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Keys returns the top level section names in sorted order.
func (c Config) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}
