package marshmallow

// FieldSet is an ordered mapping from field name to Field. Field names are
// unique; insertion order is declaration order, and replacing an existing
// name keeps its position (subtype overrides never reorder).
type FieldSet struct {
	names  []string
	fields map[string]*Field
}

// NewFieldSet returns an empty ordered field set.
func NewFieldSet() *FieldSet {
	return &FieldSet{fields: map[string]*Field{}}
}

// Add inserts or replaces a field, keeping the original position on replace.
func (fs *FieldSet) Add(name string, f *Field) *FieldSet {
	if _, ok := fs.fields[name]; !ok {
		fs.names = append(fs.names, name)
	}
	fs.fields[name] = f
	return fs
}

// Get returns the field declared under name.
func (fs *FieldSet) Get(name string) (*Field, bool) {
	f, ok := fs.fields[name]
	return f, ok
}

// Has reports whether name is declared.
func (fs *FieldSet) Has(name string) bool {
	_, ok := fs.fields[name]
	return ok
}

// Names returns the field names in declaration order.
func (fs *FieldSet) Names() []string {
	out := make([]string, len(fs.names))
	copy(out, fs.names)
	return out
}

// Len returns the number of fields.
func (fs *FieldSet) Len() int { return len(fs.names) }

// clone deep-copies the set so per-instance state (lazy nested resolution)
// is never shared between concurrently-live instances.
func (fs *FieldSet) clone() *FieldSet {
	out := &FieldSet{
		names:  make([]string, len(fs.names)),
		fields: make(map[string]*Field, len(fs.fields)),
	}
	copy(out.names, fs.names)
	for name, f := range fs.fields {
		out.fields[name] = f.clone()
	}
	return out
}

// selectOnly restricts the set to the given names, keeping declaration
// order.
func (fs *FieldSet) selectOnly(names []string) *FieldSet {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	out := NewFieldSet()
	for _, n := range fs.names {
		if _, ok := keep[n]; ok {
			out.Add(n, fs.fields[n])
		}
	}
	return out
}

// drop removes the given names, keeping the relative order of the rest.
func (fs *FieldSet) drop(names []string) *FieldSet {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := NewFieldSet()
	for _, n := range fs.names {
		if _, ok := skip[n]; !ok {
			out.Add(n, fs.fields[n])
		}
	}
	return out
}
