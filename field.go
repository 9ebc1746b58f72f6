package marshmallow

// Kind identifies a Field's coercion strategy.
type Kind int

const (
	KindRaw Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindFixed
	KindArbitrary
	KindDateTime
	KindLocalDateTime
	KindDate
	KindTime
	KindTimeDelta
	KindUUID
	KindURL
	KindEmail
	KindSelect
	KindList
	KindMethod
	KindFunction
	KindNested
)

// Context is an opaque, caller-supplied mapping made available to Method and
// Function fields for the duration of one marshal call. It is passed by
// reference and never copied or persisted.
type Context map[string]any

// FieldFunc is the callable behind a Function field.
type FieldFunc func(obj any) (any, error)

// FieldFuncCtx is the callable behind a Function field that needs the
// marshal-time Context.
type FieldFuncCtx func(obj any, ctx Context) (any, error)

// selfToken is the type of the Self sentinel.
type selfToken struct{}

// Self is the nested-field target meaning "an instance of the owning schema
// type", resolved lazily on first marshal to break the definitional cycle.
// The literal string "self" is accepted as an equivalent spelling.
var Self selfToken

// Field is the immutable configuration for one named output entry: how to
// extract it from the source, coerce it, and validate it. A Field is declared
// once per schema type and is safely reusable across marshal calls and
// concurrently-live schema instances.
type Field struct {
	kind     Kind
	required bool
	def      any
	hasDef   bool
	validate func(any) bool
	errMsg   string

	format   string // DateTime/LocalDateTime: "rfc", "iso", or a Go layout
	digits   int    // Fixed
	choices  []any  // Select
	relative bool   // URL: accept scheme-less/rooted references

	elem       *Field // List element
	methodName string // Method
	fn         FieldFunc
	fnCtx      FieldFuncCtx

	nested *nestedSpec

	declErr error // malformed declaration, reported at Build
}

// nestedSpec carries the Nested field configuration. resolved is the lazily
// bound target schema; it lives on the per-instance Field clone, so schema
// instances never share it.
type nestedSpec struct {
	target   any
	self     bool
	only     []string
	exclude  []string
	many     bool
	pluck    string
	resolved *Schema
}

// Kind returns the field's coercion strategy tag.
func (f *Field) Kind() Kind { return f.kind }

// Required reports whether absence of the source attribute is an error.
func (f *Field) Required() bool { return f.required }

// clone returns a per-instance copy. Nested specs are copied so the lazy
// target resolution is instance-owned.
func (f *Field) clone() *Field {
	cp := *f
	if f.nested != nil {
		ns := *f.nested
		ns.resolved = nil
		cp.nested = &ns
	}
	return &cp
}

// Option configures a Field at declaration time.
type Option func(*Field)

// Required marks the field as required: true absence of the source attribute
// fails with the missing-required message. Present-but-falsy values ("", 0)
// never trigger it.
func Required() Option { return func(f *Field) { f.required = true } }

// Default supplies the value used when the source attribute is absent. The
// default passes through the field's coercion like a live value.
func Default(v any) Option {
	return func(f *Field) {
		f.def = v
		f.hasDef = true
	}
}

// Validate attaches a predicate run on the coerced output value. A predicate
// that returns false or panics fails the field; the two are deliberately
// indistinguishable.
func Validate(pred func(any) bool) Option {
	return func(f *Field) { f.validate = pred }
}

// ErrorMsg overrides every generated failure message for this field except
// the missing-required message, which always wins.
func ErrorMsg(msg string) Option {
	return func(f *Field) { f.errMsg = msg }
}

// Format sets the output format for DateTime/LocalDateTime fields: "rfc"
// (default), "iso", or an explicit Go time layout.
func Format(layout string) Option {
	return func(f *Field) { f.format = layout }
}

// Relative lets a URL field accept scheme-less or rooted references.
func Relative() Option { return func(f *Field) { f.relative = true } }

// NestedOnly restricts a Nested field's sub-schema to the named fields.
func NestedOnly(names ...string) Option {
	return func(f *Field) {
		if f.nested != nil {
			f.nested.only = names
		}
	}
}

// NestedExclude drops the named fields from a Nested field's sub-schema.
func NestedExclude(names ...string) Option {
	return func(f *Field) {
		if f.nested != nil {
			f.nested.exclude = names
		}
	}
}

// NestedMany marks the Nested field as wrapping a sequence of sub-objects.
func NestedMany() Option {
	return func(f *Field) {
		if f.nested != nil {
			f.nested.many = true
		}
	}
}

// Pluck projects a single sub-schema field as the Nested field's bare value
// instead of a mapping.
func Pluck(name string) Option {
	return func(f *Field) {
		if f.nested != nil {
			f.nested.pluck = name
		}
	}
}

func newField(kind Kind, opts ...Option) *Field {
	f := &Field{kind: kind}
	for _, o := range opts {
		o(f)
	}
	return f
}

// String stringifies the attribute; binary input is decoded as UTF-8 and a
// missing value falls back to "" rather than failing.
func String(opts ...Option) *Field { return newField(KindString, opts...) }

// Integer casts the attribute to an integer; a missing value yields 0.
func Integer(opts ...Option) *Field { return newField(KindInteger, opts...) }

// Float casts the attribute to a float; a missing value yields 0.0.
func Float(opts ...Option) *Field { return newField(KindFloat, opts...) }

// Number is an alias for Float.
func Number(opts ...Option) *Field { return Float(opts...) }

// Boolean coerces the attribute by truthiness; a missing value yields false.
func Boolean(opts ...Option) *Field { return newField(KindBoolean, opts...) }

// Fixed formats the numeric attribute as a decimal string with the given
// number of fractional digits.
func Fixed(digits int, opts ...Option) *Field {
	f := newField(KindFixed, opts...)
	f.digits = digits
	return f
}

// Price is a Fixed field with two fractional digits.
func Price(opts ...Option) *Field { return Fixed(2, opts...) }

// Arbitrary formats the numeric attribute as a decimal string with full
// precision; a missing value yields "0".
func Arbitrary(opts ...Option) *Field { return newField(KindArbitrary, opts...) }

// DateTime formats a time attribute per the field's Format option, falling
// back to the schema's DateFormat and finally to "rfc".
func DateTime(opts ...Option) *Field { return newField(KindDateTime, opts...) }

// LocalDateTime is DateTime converted to the local timezone before
// formatting.
func LocalDateTime(opts ...Option) *Field { return newField(KindLocalDateTime, opts...) }

// Date formats a time attribute as an ISO date.
func Date(opts ...Option) *Field { return newField(KindDate, opts...) }

// Time formats a time attribute as an ISO time.
func Time(opts ...Option) *Field { return newField(KindTime, opts...) }

// TimeDelta renders a duration attribute as total elapsed seconds.
func TimeDelta(opts ...Option) *Field { return newField(KindTimeDelta, opts...) }

// UUID renders a UUID attribute in canonical string form.
func UUID(opts ...Option) *Field { return newField(KindUUID, opts...) }

// URL validates a well-formed absolute URL; see Relative for scheme-less
// references.
func URL(opts ...Option) *Field { return newField(KindURL, opts...) }

// Email validates a local@domain shape with a dotted, non-empty domain.
func Email(opts ...Option) *Field { return newField(KindEmail, opts...) }

// Select validates membership in the fixed allowed set.
func Select(choices []any, opts ...Option) *Field {
	f := newField(KindSelect, opts...)
	f.choices = choices
	return f
}

// Enum is an alias for Select.
func Enum(choices []any, opts ...Option) *Field { return Select(choices, opts...) }

// Raw passes the attribute through without coercion.
func Raw(opts ...Option) *Field { return newField(KindRaw, opts...) }

// List wraps an element field and coerces each element of a sequence
// attribute, collecting failures per index. The element must be a field
// instance; a nil element is a declaration error reported at Build.
func List(elem *Field, opts ...Option) *Field {
	f := newField(KindList, opts...)
	f.elem = elem
	if elem == nil {
		f.declErr = configErrf("marshmallow: List element must be a field instance")
	} else if elem.kind == KindNested {
		f.declErr = configErrf("marshmallow: List cannot wrap a Nested field; use Nested with NestedMany")
	}
	return f
}

// Method invokes the named method registered on the owning schema type. A
// name that does not resolve at marshal time fails lazily with a
// MarshalError wrapping the lookup failure.
func Method(name string, opts ...Option) *Field {
	f := newField(KindMethod, opts...)
	f.methodName = name
	return f
}

// Function invokes the supplied callable with the source object. A nil
// callable is a declaration error reported at Build.
func Function(fn FieldFunc, opts ...Option) *Field {
	f := newField(KindFunction, opts...)
	f.fn = fn
	if fn == nil {
		f.declErr = configErrf("marshmallow: Function field requires a callable")
	}
	return f
}

// FunctionCtx is Function for callables that need the marshal Context. A
// marshal without a context fails the field.
func FunctionCtx(fn FieldFuncCtx, opts ...Option) *Field {
	f := newField(KindFunction, opts...)
	f.fnCtx = fn
	if fn == nil {
		f.declErr = configErrf("marshmallow: Function field requires a callable")
	}
	return f
}

// Nested delegates to a sub-schema bound to the extracted sub-object. The
// target is a *Schema, a *Factory, Self, or the literal string "self"; any
// other target is a declaration error reported at Build.
func Nested(target any, opts ...Option) *Field {
	f := &Field{kind: KindNested, nested: &nestedSpec{target: target}}
	switch t := target.(type) {
	case *Schema, *Factory:
	case selfToken:
		f.nested.self = true
	case string:
		if t == "self" {
			f.nested.self = true
		} else {
			f.declErr = configErrf("marshmallow: Nested target %q is not a schema or the self token", t)
		}
	default:
		f.declErr = configErrf("marshmallow: Nested fields must be passed a schema, got %T", target)
	}
	for _, o := range opts {
		o(f)
	}
	return f
}
