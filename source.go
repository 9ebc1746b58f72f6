package marshmallow

import (
	"reflect"
	"strings"
	"sync"
)

// accessor is the capability interface over a source object. The shape of the
// source (key-bearing map vs attribute-bearing struct) is probed once per
// marshal call, never per field.
type accessor interface {
	// get returns the value stored under name. ok is false when the source
	// carries no such attribute or key at all; a present-but-nil value
	// returns (nil, true).
	get(name string) (any, bool)
}

// ResolveFieldKey applies the repository-wide rule to resolve a struct
// field's external key.
// Priority: marshmallow tag > json tag name > field name; "-" disables the
// field.
func ResolveFieldKey(sf reflect.StructField) string {
	if mt := sf.Tag.Get("marshmallow"); mt != "" {
		if i := strings.IndexByte(mt, ','); i >= 0 {
			mt = mt[:i]
		}
		return mt
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// resolveAccessor probes the source once and returns the matching accessor.
// nil sources resolve to an empty accessor so that marshaling a nil object
// yields per-variant defaults instead of failing.
func resolveAccessor(src any) accessor {
	if src == nil {
		return emptyAccessor{}
	}
	switch m := src.(type) {
	case map[string]any:
		return mapAccessor(m)
	case map[string]string:
		sm := make(map[string]any, len(m))
		for k, v := range m {
			sm[k] = v
		}
		return mapAccessor(sm)
	}
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return emptyAccessor{}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			sm := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				sm[iter.Key().String()] = iter.Value().Interface()
			}
			return mapAccessor(sm)
		}
		return emptyAccessor{}
	case reflect.Struct:
		return &structAccessor{v: rv, idx: structIndexFor(rv.Type())}
	default:
		return emptyAccessor{}
	}
}

type emptyAccessor struct{}

func (emptyAccessor) get(string) (any, bool) { return nil, false }

type mapAccessor map[string]any

func (m mapAccessor) get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// structAccessor reads exported fields by their resolved key, falling back
// to a case-insensitive match so a schema can declare "name" against a
// struct field Name without tagging.
type structAccessor struct {
	v   reflect.Value
	idx *structIndex
}

func (a *structAccessor) get(name string) (any, bool) {
	i, ok := a.idx.byKey[name]
	if !ok {
		i, ok = a.idx.byFold[strings.ToLower(name)]
	}
	if !ok {
		return nil, false
	}
	fv := a.v.Field(i)
	if isNilValue(fv) {
		return nil, true
	}
	return fv.Interface(), true
}

type structIndex struct {
	byKey  map[string]int
	byFold map[string]int
}

var structIndexCache sync.Map // reflect.Type -> *structIndex

func structIndexFor(t reflect.Type) *structIndex {
	if cached, ok := structIndexCache.Load(t); ok {
		return cached.(*structIndex)
	}
	idx := &structIndex{byKey: map[string]int{}, byFold: map[string]int{}}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveFieldKey(sf)
		if key == "-" {
			continue
		}
		idx.byKey[key] = i
		if _, dup := idx.byFold[strings.ToLower(key)]; !dup {
			idx.byFold[strings.ToLower(key)] = i
		}
		if _, dup := idx.byFold[strings.ToLower(sf.Name)]; !dup {
			idx.byFold[strings.ToLower(sf.Name)] = i
		}
	}
	actual, _ := structIndexCache.LoadOrStore(t, idx)
	return actual.(*structIndex)
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// isMissing reports whether a looked-up value counts as absent for the
// required check. Falsy-but-present values ("", 0, false) are present;
// only true absence or nil is missing.
func isMissing(v any, ok bool) bool {
	if !ok || v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return isNilValue(rv)
}

// asSequence returns the reflected slice/array form of src, or ok=false when
// src is not a finite sequence. Strings and byte slices are scalars here.
func asSequence(src any) (reflect.Value, bool) {
	if src == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return reflect.Value{}, false
		}
		return rv, true
	default:
		return reflect.Value{}, false
	}
}
