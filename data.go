package marshmallow

import (
	"bytes"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Data is the output mapping of a marshal pass. It preserves insertion order
// (the resolved field-set order) through encoding, unlike a plain Go map.
// Nested fields contribute *Data values; nested many fields contribute
// []*Data values.
type Data struct {
	keys []string
	m    map[string]any
}

// NewData returns an empty ordered mapping.
func NewData() *Data {
	return &Data{m: map[string]any{}}
}

// Set inserts or replaces a key. Replacing keeps the original position.
func (d *Data) Set(key string, value any) *Data {
	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.m[key] = value
	return d
}

// Get returns the value stored under key.
func (d *Data) Get(key string) (any, bool) {
	v, ok := d.m[key]
	return v, ok
}

// Value returns the value stored under key, or nil when absent.
func (d *Data) Value(key string) any { return d.m[key] }

// Has reports whether key is present.
func (d *Data) Has(key string) bool {
	_, ok := d.m[key]
	return ok
}

// Delete removes a key, keeping the relative order of the rest.
func (d *Data) Delete(key string) {
	if _, ok := d.m[key]; !ok {
		return
	}
	delete(d.m, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Data) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Data) Len() int { return len(d.keys) }

// Map returns a plain map copy, losing order. Nested *Data values are kept
// as-is.
func (d *Data) Map() map[string]any {
	out := make(map[string]any, len(d.m))
	for k, v := range d.m {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (d *Data) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the mapping as a YAML mapping node in insertion order.
func (d *Data) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range d.keys {
		kn := &yaml.Node{}
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		vn := &yaml.Node{}
		if err := vn.Encode(d.m[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, kn, vn)
	}
	return node, nil
}
