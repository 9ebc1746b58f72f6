package marshmallow

import "strconv"

// outputNested delegates to the sub-schema bound to the extracted
// sub-object. Sub-marshal errors embed verbatim as a nested error mapping
// under this field's key; a clean sub-result contributes no error entry.
func (f *Field) outputNested(v any, missing bool, env *marshalEnv) (any, error) {
	if missing {
		return nil, nil
	}
	sub, cfg, err := f.resolveNested(env)
	if err != nil {
		return nil, err
	}

	if f.nested.many {
		seq, ok := asSequence(v)
		if !ok {
			return nil, configErrf("marshmallow: nested many field requires a sequence, got %T", v)
		}
		out := make([]any, 0, seq.Len())
		var em ErrorMap
		for i := 0; i < seq.Len(); i++ {
			data, childErrs, err := sub.marshalNested(seq.Index(i).Interface(), cfg)
			if err != nil {
				return nil, err
			}
			if len(childErrs) > 0 {
				if em == nil {
					em = ErrorMap{}
				}
				em[strconv.Itoa(i)] = childErrs
			}
			out = append(out, f.projectNested(data))
		}
		if em != nil {
			return out, em
		}
		return out, nil
	}

	if _, ok := asSequence(v); ok {
		return nil, configErrf("marshmallow: nested field got a sequence of objects; did you mean NestedMany()?")
	}
	data, childErrs, err := sub.marshalNested(v, cfg)
	if err != nil {
		return nil, err
	}
	if len(childErrs) > 0 {
		return nil, childErrs
	}
	return f.projectNested(data), nil
}

// projectNested applies the Pluck projection when configured.
func (f *Field) projectNested(data *Data) any {
	if f.nested.pluck != "" {
		return data.Value(f.nested.pluck)
	}
	return data
}

// resolveNested binds the nested target: a concrete schema, a factory's
// schema plus its pre-bound options, or, for the self token, the owning
// schema type, resolved on first use and cached on this instance-owned
// field copy. Recursion terminates with the data (a nil relation), not an
// engine-enforced depth limit.
func (f *Field) resolveNested(env *marshalEnv) (*Schema, bindConfig, error) {
	ns := f.nested
	var pre []BindOption
	switch t := ns.target.(type) {
	case *Schema:
		ns.resolved = t
	case *Factory:
		ns.resolved = t.schema
		pre = t.opts
	default:
		if ns.self && ns.resolved == nil {
			if env.schema == nil {
				return nil, bindConfig{}, configErrf("marshmallow: self-nested field marshaled outside a schema")
			}
			ns.resolved = env.schema
		}
	}
	if ns.resolved == nil {
		return nil, bindConfig{}, configErrf("marshmallow: nested field has no schema target")
	}

	cfg := applyBindOpts(pre)
	if ns.pluck != "" {
		cfg.only = []string{ns.pluck}
	} else if len(ns.only) > 0 {
		cfg.only = ns.only
	}
	if len(ns.exclude) > 0 {
		cfg.exclude = ns.exclude
	}
	if cfg.context == nil {
		cfg.context = env.ctx
	}
	return ns.resolved, cfg, nil
}

// marshalNested runs a plain field pass of this schema over a sub-object.
// Hooks, Extra, and strictness belong to the root instance; the sub-pass
// only produces the output/error pair.
func (s *Schema) marshalNested(obj any, cfg bindConfig) (*Data, ErrorMap, error) {
	fields, err := s.composeInstanceFields(obj, cfg.only, cfg.exclude)
	if err != nil {
		return nil, nil, err
	}
	m := &Marshaller{Prefix: cfg.prefix, Context: cfg.context, Schema: s}
	return m.marshalOne(obj, fields, m.env(obj))
}
