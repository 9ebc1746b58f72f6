package marshmallow

// BindOption configures one schema instance at construction time.
type BindOption func(*bindConfig)

type bindConfig struct {
	many    bool
	strict  *bool
	only    []string
	exclude []string
	extra   map[string]any
	context Context
	prefix  string
}

func applyBindOpts(opts []BindOption) bindConfig {
	var cfg bindConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Many opts into collection mode: the bound source must be a finite sequence
// and every element is marshaled in input order.
func Many() BindOption { return func(c *bindConfig) { c.many = true } }

// Strict overrides the schema's fail-fast setting for this instance. The
// last setting wins, so a factory-bound Strict(true) can be overridden per
// call with Strict(false).
func Strict(on bool) BindOption { return func(c *bindConfig) { c.strict = &on } }

// Only restricts the output to the named fields. It takes precedence over
// Exclude when a name appears in both.
func Only(names ...string) BindOption { return func(c *bindConfig) { c.only = names } }

// Exclude drops the named fields from the output.
func Exclude(names ...string) BindOption { return func(c *bindConfig) { c.exclude = names } }

// Extra merges static key/value pairs into the output mapping after
// marshaling. In many mode every element receives them.
func Extra(kv map[string]any) BindOption { return func(c *bindConfig) { c.extra = kv } }

// WithContext supplies the opaque sidecar mapping handed to Method and
// Function fields for the duration of the marshal call.
func WithContext(ctx Context) BindOption { return func(c *bindConfig) { c.context = ctx } }

// Prefix prepends the given string to every output key. Error keys are never
// prefixed.
func Prefix(p string) BindOption { return func(c *bindConfig) { c.prefix = p } }
