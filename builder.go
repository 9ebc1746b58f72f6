package marshmallow

// Builder assembles a schema type: declared fields in declaration order,
// Meta-style options, registered methods. Build happens once per schema
// type; the resulting Schema is immutable and safe for concurrent use.
type Builder struct {
	doc      string
	declared *FieldSet
	meta     metaOptions
	methods  map[string]any

	dataHandlers []DataHandler
	errorHandler ErrorHandler

	errs []error
}

// New starts a schema type definition.
func New() *Builder {
	return &Builder{
		declared: NewFieldSet(),
		methods:  map[string]any{},
	}
}

// Extend starts a definition inheriting the parent's declared fields, Meta
// options, methods, and the handlers registered on the parent so far.
// Re-declaring a field name overrides it in place without reordering.
func Extend(parent *Schema) *Builder {
	b := New()
	b.declared = parent.declared.clone()
	b.meta = parent.meta
	for name, fn := range parent.methods {
		b.methods[name] = fn
	}
	b.dataHandlers, b.errorHandler = parent.hooks()
	return b
}

// Doc sets the schema's descriptive text, exposed unchanged by factories.
func (b *Builder) Doc(s string) *Builder {
	b.doc = s
	return b
}

// Field declares a named field. Declaring an existing name replaces it,
// keeping its position.
func (b *Builder) Field(name string, f *Field) *Builder {
	if f == nil {
		b.errs = append(b.errs, configErrf("marshmallow: field %q must be declared as a field instance", name))
		return b
	}
	b.declared.Add(name, f)
	return b
}

// Method registers a named method for Method fields. fn must be a MethodFunc
// or a MethodFuncCtx.
func (b *Builder) Method(name string, fn any) *Builder {
	switch m := fn.(type) {
	case MethodFunc:
		b.methods[name] = m
	case MethodFuncCtx:
		b.methods[name] = m
	case func(obj any) (any, error):
		b.methods[name] = MethodFunc(m)
	case func(obj any, ctx Context) (any, error):
		b.methods[name] = MethodFuncCtx(m)
	default:
		b.errs = append(b.errs, configErrf("marshmallow: method %q has an unsupported signature %T", name, fn))
	}
	return b
}

// Fields restricts the schema to exactly the named set. Names not declared
// are inferred from the first bound object. Mutually exclusive with
// Additional.
func (b *Builder) Fields(names ...string) *Builder {
	b.meta.fields = names
	return b
}

// Additional extends the declared fields with names inferred from the first
// bound object. Mutually exclusive with Fields.
func (b *Builder) Additional(names ...string) *Builder {
	b.meta.additional = names
	return b
}

// Exclude drops the named fields at the type level.
func (b *Builder) Exclude(names ...string) *Builder {
	b.meta.exclude = names
	return b
}

// Strict makes fail-fast marshaling the type-level default; instances may
// override it per call.
func (b *Builder) Strict() *Builder {
	b.meta.strict = true
	return b
}

// DateFormat sets the default format for DateTime fields that carry no
// Format of their own: "rfc", "iso", or a Go time layout.
func (b *Builder) DateFormat(format string) *Builder {
	b.meta.dateformat = format
	return b
}

// Encoder replaces the schema's output encoder (JSON by default).
func (b *Builder) Encoder(e Encoder) *Builder {
	b.meta.encoder = e
	return b
}

// Build resolves the schema type. Configuration errors (invalid option
// combinations, malformed field declarations) surface here and never at
// marshal time.
func (b *Builder) Build() (*Schema, error) {
	if len(b.meta.fields) > 0 && len(b.meta.additional) > 0 {
		return nil, configErrf("marshmallow: cannot set both Fields and Additional")
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	for _, name := range b.declared.names {
		f := b.declared.fields[name]
		if f.declErr != nil {
			return nil, f.declErr
		}
		if f.elem != nil && f.elem.declErr != nil {
			return nil, f.elem.declErr
		}
	}
	s := &Schema{
		doc:          b.doc,
		declared:     b.declared.clone(),
		meta:         b.meta,
		methods:      make(map[string]any, len(b.methods)),
		dataHandlers: append([]DataHandler(nil), b.dataHandlers...),
		errorHandler: b.errorHandler,
	}
	for name, fn := range b.methods {
		s.methods[name] = fn
	}
	if s.meta.encoder == nil {
		s.meta.encoder = JSONEncoder{}
	}
	return s, nil
}

// MustBuild is Build panicking on configuration errors, for package-level
// schema definitions.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
