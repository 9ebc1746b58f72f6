package marshmallow

import (
	"fmt"

	"github.com/brotich/marshmallow/i18n"
)

// marshalEnv carries the per-call surroundings a field may need: the owning
// schema (Method lookup, date format), the whole source object (Method and
// Function fields), and the caller-supplied context.
type marshalEnv struct {
	schema     *Schema
	inst       *Instance
	obj        any
	ctx        Context
	dateformat string
}

func (env *marshalEnv) callMethod(name string) (any, error) {
	if env.schema == nil {
		return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
			"cause": fmt.Sprintf("method %q cannot be resolved outside a schema", name),
		}), nil)
	}
	fn, ok := env.schema.methods[name]
	if !ok {
		return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
			"cause": fmt.Sprintf("no method %q registered on schema", name),
		}), fmt.Errorf("method %q not registered", name))
	}
	switch m := fn.(type) {
	case MethodFunc:
		return m(env.obj)
	case MethodFuncCtx:
		if env.ctx == nil {
			return nil, marshalErr(i18n.T(i18n.CodeMarshal, map[string]string{
				"cause": "no context available for context-aware field",
			}), nil)
		}
		return m(env.obj, env.ctx)
	default:
		return nil, configErrf("marshmallow: method %q has an unsupported signature %T", name, fn)
	}
}

// MethodFunc is a method registered on a schema type, invoked with the
// source object.
type MethodFunc func(obj any) (any, error)

// MethodFuncCtx is a schema method that also receives the marshal Context.
type MethodFuncCtx func(obj any, ctx Context) (any, error)

// Marshaller drives one field pass over one source object or a sequence of
// them. It owns error aggregation: in non-strict mode every field failure is
// collected into Errors, in strict mode the first failure aborts the pass.
// The zero value marshals standalone field sets; schema-bound marshaling
// (Method fields, schema date format) goes through Schema.Bind.
type Marshaller struct {
	Strict  bool
	Prefix  string
	Context Context
	Schema  *Schema

	// Errors holds the error mapping collected by the most recent call. In
	// many mode the per-object mappings are merged key-wise.
	Errors ErrorMap
}

// Marshal runs one pass over a single source object. Passing a sequence is a
// configuration error; collection mode must be requested via MarshalMany.
func (m *Marshaller) Marshal(obj any, fields *FieldSet) (*Data, error) {
	m.Errors = nil
	if _, ok := asSequence(obj); ok {
		return nil, configErrf("marshmallow: got a sequence of objects; use MarshalMany (many mode)")
	}
	env := m.env(obj)
	data, em, err := m.marshalOne(obj, fields, env)
	if err != nil {
		return nil, err
	}
	m.Errors = em
	return data, nil
}

// MarshalMany runs one pass per element of a finite sequence, in input
// order. An empty sequence yields an empty result and no error.
func (m *Marshaller) MarshalMany(objs any, fields *FieldSet) ([]*Data, error) {
	m.Errors = nil
	seq, ok := asSequence(objs)
	if !ok {
		return nil, configErrf("marshmallow: MarshalMany requires a sequence, got %T", objs)
	}
	out := make([]*Data, 0, seq.Len())
	merged := ErrorMap{}
	for i := 0; i < seq.Len(); i++ {
		obj := seq.Index(i).Interface()
		env := m.env(obj)
		data, em, err := m.marshalOne(obj, fields, env)
		if err != nil {
			return nil, err
		}
		for k, v := range em {
			merged[k] = v
		}
		out = append(out, data)
	}
	m.Errors = merged
	return out, nil
}

func (m *Marshaller) env(obj any) *marshalEnv {
	env := &marshalEnv{schema: m.Schema, obj: obj, ctx: m.Context}
	if m.Schema != nil {
		env.dateformat = m.Schema.meta.dateformat
	}
	return env
}

// marshalOne iterates the field set in order. On success the value lands in
// the output mapping under the (possibly prefixed) key; on failure the
// message lands in the error mapping under the unprefixed name and the
// output key holds the field's default so the mapping stays shaped.
func (m *Marshaller) marshalOne(obj any, fields *FieldSet, env *marshalEnv) (*Data, ErrorMap, error) {
	acc := resolveAccessor(obj)
	data := NewData()
	em := ErrorMap{}
	for _, name := range fields.names {
		f := fields.fields[name]
		v, err := f.output(name, acc, env)
		if err != nil {
			if _, fatal := AsConfigError(err); fatal {
				return nil, nil, err
			}
			if m.Strict {
				return nil, nil, strictError(name, err)
			}
			em[name] = errEntry(err)
			data.Set(m.Prefix+name, f.failValue())
			continue
		}
		data.Set(m.Prefix+name, v)
	}
	return data, em, nil
}

// strictError surfaces the first field failure as a *MarshalError.
func strictError(name string, err error) error {
	if me, ok := AsMarshalError(err); ok {
		return me
	}
	if child, ok := err.(ErrorMap); ok {
		return &MarshalError{Msg: fmt.Sprintf("%s: %s", name, child.Error()), Underlying: child}
	}
	return err
}
