package marshmallow

import (
	"sort"
	"sync"
	"time"

	guuid "github.com/google/uuid"
)

type metaOptions struct {
	fields     []string
	additional []string
	exclude    []string
	strict     bool
	dateformat string
	encoder    Encoder
}

// Schema is a resolved schema type: an ordered field set plus composition
// options, methods, and hooks. It is built once, lives for the process
// lifetime, and is read-mostly: hook registration and first-use field
// inference are the only mutations and both are synchronized.
type Schema struct {
	doc      string
	declared *FieldSet
	meta     metaOptions
	methods  map[string]any

	mu           sync.RWMutex
	dataHandlers []DataHandler
	errorHandler ErrorHandler
	typeFields   *FieldSet // cached type-level resolution
}

// Doc returns the schema's descriptive text.
func (s *Schema) Doc() string { return s.doc }

// needsInference reports whether Fields/Additional reference names that are
// not declared and must be inferred from a representative object.
func (s *Schema) needsInference() bool {
	for _, n := range s.meta.fields {
		if !s.declared.Has(n) {
			return true
		}
	}
	for _, n := range s.meta.additional {
		if !s.declared.Has(n) {
			return true
		}
	}
	return false
}

// resolveTypeFields merges declared fields with the Fields/Additional
// options into the concrete type-level field set. Inference against a live
// representative object happens once and is cached; a nil representative
// resolves every inferred name to Raw without touching the cache.
func (s *Schema) resolveTypeFields(repr any) (*FieldSet, error) {
	s.mu.RLock()
	cached := s.typeFields
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	acc := resolveAccessor(repr)
	reprLive := repr != nil
	fs := NewFieldSet()

	if len(s.meta.fields) > 0 {
		named := make(map[string]struct{}, len(s.meta.fields))
		for _, n := range s.meta.fields {
			named[n] = struct{}{}
		}
		// declared fields first, in declaration order
		for _, n := range s.declared.names {
			if _, ok := named[n]; ok {
				fs.Add(n, s.declared.fields[n])
			}
		}
		// then the extra names, in the order given
		for _, n := range s.meta.fields {
			if fs.Has(n) {
				continue
			}
			f, err := inferField(n, acc, reprLive)
			if err != nil {
				return nil, err
			}
			fs.Add(n, f)
		}
	} else {
		for _, n := range s.declared.names {
			fs.Add(n, s.declared.fields[n])
		}
		for _, n := range s.meta.additional {
			if fs.Has(n) {
				continue
			}
			f, err := inferField(n, acc, reprLive)
			if err != nil {
				return nil, err
			}
			fs.Add(n, f)
		}
	}

	if len(s.meta.exclude) > 0 {
		fs = fs.drop(s.meta.exclude)
	}

	if !s.needsInference() || reprLive {
		s.mu.Lock()
		if s.typeFields == nil {
			s.typeFields = fs
		} else {
			fs = s.typeFields
		}
		s.mu.Unlock()
	}
	return fs, nil
}

// inferField maps a live attribute value to a concrete field variant. An
// unresolvable name on a live representative is a configuration error; a nil
// representative yields Raw.
func inferField(name string, acc accessor, live bool) (*Field, error) {
	if !live {
		return Raw(), nil
	}
	v, ok := acc.get(name)
	if !ok {
		return nil, configErrf("marshmallow: cannot resolve field %q on the bound object", name)
	}
	switch v.(type) {
	case time.Time, *time.Time:
		return DateTime(), nil
	case time.Duration:
		return TimeDelta(), nil
	case guuid.UUID, *guuid.UUID:
		return UUID(), nil
	case bool:
		return Boolean(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Integer(), nil
	case float32, float64:
		return Float(), nil
	case string:
		return String(), nil
	default:
		return Raw(), nil
	}
}

// composeInstanceFields specializes the type-level field set for one
// instance: a private deep copy with Only/Exclude applied. Only wins over
// Exclude; an Only name that resolves to nothing is a configuration error.
func (s *Schema) composeInstanceFields(repr any, only, exclude []string) (*FieldSet, error) {
	base, err := s.resolveTypeFields(repr)
	if err != nil {
		return nil, err
	}
	fs := base.clone()
	if len(only) > 0 {
		for _, n := range only {
			if !fs.Has(n) {
				return nil, configErrf("marshmallow: cannot resolve field %q named in Only", n)
			}
		}
		return fs.selectOnly(only), nil
	}
	if len(exclude) > 0 {
		fs = fs.drop(exclude)
	}
	return fs, nil
}

// Result is one marshaled object's output/error pair.
type Result struct {
	Data   *Data
	Errors ErrorMap
}

// Instance is a schema bound to one source object (or sequence) plus
// configuration. Marshaling runs eagerly at Bind and is cached: repeated
// Data access never re-runs fields or hooks. An Instance is exclusively
// owned by its creator and must not be shared between goroutines.
type Instance struct {
	schema  *Schema
	obj     any
	cfg     bindConfig
	fields  *FieldSet
	results []Result
	data    *Data
	errs    ErrorMap
}

// Bind constructs a schema instance around obj and marshals it. Strict-mode
// field failures, configuration errors, and an error returned by the error
// handler all surface here; non-strict bad data never does.
func (s *Schema) Bind(obj any, opts ...BindOption) (*Instance, error) {
	cfg := applyBindOpts(opts)
	if cfg.many {
		if _, ok := asSequence(obj); !ok && obj != nil {
			return nil, configErrf("marshmallow: many mode requires a sequence of objects, got %T", obj)
		}
	} else if _, ok := asSequence(obj); ok {
		return nil, configErrf("marshmallow: got a sequence of objects; did you mean Many()?")
	}

	repr := obj
	if cfg.many {
		repr = nil
		if seq, ok := asSequence(obj); ok && seq.Len() > 0 {
			repr = seq.Index(0).Interface()
		}
	}
	fields, err := s.composeInstanceFields(repr, cfg.only, cfg.exclude)
	if err != nil {
		return nil, err
	}

	inst := &Instance{schema: s, obj: obj, cfg: cfg, fields: fields}
	if err := inst.run(); err != nil {
		return nil, err
	}
	return inst, nil
}

// BindMany is Bind with collection mode pre-selected.
func (s *Schema) BindMany(objs any, opts ...BindOption) (*Instance, error) {
	return s.Bind(objs, append(opts, Many())...)
}

// Dump marshals obj in one shot and returns the output/error pair.
func (s *Schema) Dump(obj any, opts ...BindOption) (*Data, ErrorMap, error) {
	inst, err := s.Bind(obj, opts...)
	if err != nil {
		return nil, nil, err
	}
	return inst.data, inst.errs, nil
}

func (inst *Instance) strict() bool {
	if inst.cfg.strict != nil {
		return *inst.cfg.strict
	}
	return inst.schema.meta.strict
}

func (inst *Instance) run() error {
	m := &Marshaller{
		Strict:  inst.strict(),
		Prefix:  inst.cfg.prefix,
		Context: inst.cfg.context,
		Schema:  inst.schema,
	}

	handlers, errHandler := inst.schema.hooks()

	finish := func(obj any, data *Data) *Data {
		for _, k := range sortedKeys(inst.cfg.extra) {
			data.Set(k, inst.cfg.extra[k])
		}
		for _, h := range handlers {
			data = h(inst, data, obj)
		}
		return data
	}

	if inst.cfg.many {
		merged := ErrorMap{}
		inst.results = []Result{}
		if seq, ok := asSequence(inst.obj); ok {
			for i := 0; i < seq.Len(); i++ {
				obj := seq.Index(i).Interface()
				data, em, err := m.marshalOne(obj, inst.fields, m.env(obj))
				if err != nil {
					return err
				}
				data = finish(obj, data)
				inst.results = append(inst.results, Result{Data: data, Errors: em})
				for k, v := range em {
					merged[k] = v
				}
			}
		}
		inst.errs = merged
		if len(merged) > 0 && errHandler != nil {
			if err := errHandler(inst, merged, inst.obj); err != nil {
				return err
			}
		}
		return nil
	}

	data, em, err := m.marshalOne(inst.obj, inst.fields, m.env(inst.obj))
	if err != nil {
		return err
	}
	inst.data = finish(inst.obj, data)
	inst.errs = em
	if len(em) > 0 && errHandler != nil {
		if err := errHandler(inst, em, inst.obj); err != nil {
			return err
		}
	}
	return nil
}

// Data returns the marshaled, hook-processed output mapping. In many mode it
// returns nil; use DataMany.
func (inst *Instance) Data() *Data { return inst.data }

// DataMany returns the per-object output mappings in input order.
func (inst *Instance) DataMany() []*Data {
	out := make([]*Data, len(inst.results))
	for i, r := range inst.results {
		out[i] = r.Data
	}
	return out
}

// Results returns the per-object output/error pairs in input order.
func (inst *Instance) Results() []Result { return inst.results }

// Errors returns the final error mapping. In many mode the per-object
// mappings are merged key-wise.
func (inst *Instance) Errors() ErrorMap { return inst.errs }

// Fields returns the instance's private field set.
func (inst *Instance) Fields() *FieldSet { return inst.fields }

// Schema returns the owning schema type.
func (inst *Instance) Schema() *Schema { return inst.schema }

// Object returns the bound source object.
func (inst *Instance) Object() any { return inst.obj }

// IsValid reports whether all (or only the named) fields marshaled without
// error. Naming an unknown field is a lookup error, not a false result.
func (inst *Instance) IsValid(names ...string) (bool, error) {
	if len(names) == 0 {
		return len(inst.errs) == 0, nil
	}
	for _, n := range names {
		if !inst.fields.Has(n) {
			return false, configErrf("marshmallow: unknown field %q in IsValid", n)
		}
		if inst.errs.Has(n) {
			return false, nil
		}
	}
	return true, nil
}

// Encode renders the output mapping (or, in many mode, the sequence of
// mappings) through the schema's encoder.
func (inst *Instance) Encode() ([]byte, error) {
	if inst.cfg.many {
		return inst.schema.meta.encoder.Marshal(inst.DataMany())
	}
	return inst.schema.meta.encoder.Marshal(inst.data)
}

// Factory pre-binds construction-time configuration into a reusable binder.
// Per-call options override the pre-bound ones.
type Factory struct {
	schema *Schema
	opts   []BindOption
}

// Factory returns a reusable binder carrying the given options.
func (s *Schema) Factory(opts ...BindOption) *Factory {
	return &Factory{schema: s, opts: opts}
}

// Bind binds obj with the pre-bound options applied first, then the per-call
// overrides.
func (fc *Factory) Bind(obj any, opts ...BindOption) (*Instance, error) {
	all := make([]BindOption, 0, len(fc.opts)+len(opts))
	all = append(all, fc.opts...)
	all = append(all, opts...)
	return fc.schema.Bind(obj, all...)
}

// Dump is the one-shot counterpart of Bind.
func (fc *Factory) Dump(obj any, opts ...BindOption) (*Data, ErrorMap, error) {
	inst, err := fc.Bind(obj, opts...)
	if err != nil {
		return nil, nil, err
	}
	return inst.data, inst.errs, nil
}

// Doc exposes the originating schema's descriptive text.
func (fc *Factory) Doc() string { return fc.schema.doc }

// Schema returns the originating schema type.
func (fc *Factory) Schema() *Schema { return fc.schema }

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
