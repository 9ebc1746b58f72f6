package marshmallow

import (
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Encoder renders a marshaled output mapping (or sequence of mappings) into
// a byte form. It is swappable per schema type via the builder's Encoder
// option.
type Encoder interface {
	Marshal(v any) ([]byte, error)
}

// JSONEncoder is the default encoder. Indent, when non-empty, switches to
// indented output.
type JSONEncoder struct {
	Indent string
}

func (e JSONEncoder) Marshal(v any) ([]byte, error) {
	if e.Indent != "" {
		return json.MarshalIndent(v, "", e.Indent)
	}
	return json.Marshal(v)
}

// YAMLEncoder renders the output mapping as YAML, preserving field order.
type YAMLEncoder struct{}

func (YAMLEncoder) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}
