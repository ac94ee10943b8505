package composer

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// AttributeSchema is the serialized shape of an attribute:
// {"kind":"options","options":[...]} or {"kind":"text"}.
type AttributeSchema struct {
	Kind    AttributeKind `json:"kind" msgpack:"kind"`
	Options []string      `json:"options,omitempty" msgpack:"options,omitempty"`
}

// fields returns the exact wire shape. Options are always present for the
// options kind, even when empty, and never present for text.
func (s AttributeSchema) fields() map[string]any {
	m := map[string]any{"kind": string(s.Kind)}
	if s.Kind == KindOptions {
		opts := s.Options
		if opts == nil {
			opts = []string{}
		}
		m["options"] = opts
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (s AttributeSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields())
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (s AttributeSchema) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(s.fields())
}

// ComponentSchema is the serialized shape of one component type.
type ComponentSchema struct {
	Attributes map[string]AttributeSchema `json:"attributes" msgpack:"attributes"`
	SlotNames  []string                   `json:"slotNames" msgpack:"slotNames"`
}

// CatalogSchema is the full catalog sent to the host during the handshake.
type CatalogSchema struct {
	Components map[string]ComponentSchema `json:"components" msgpack:"components"`
}

// Description is the recursive document describing one UI node and the
// children placed in its slots.
//
// Descriptions must form a finite tree. Nesting beyond the composer's
// maximum depth renders to nothing.
type Description struct {
	Type       string                   `json:"type" msgpack:"type"`
	Attributes map[string]string        `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
	Slots      map[string][]Description `json:"slots,omitempty" msgpack:"slots,omitempty"`
}

// DescriptionFromMap reconstructs a Description from a decoded object.
//
// Decoding is tolerant: a missing or non-string type yields an empty type
// (which renders to nothing), non-string attribute values are dropped, and
// slot entries that are not objects become empty descriptions so that sibling
// positions are preserved.
func DescriptionFromMap(m map[string]any) Description {
	d := Description{}
	if v, ok := m["type"].(string); ok {
		d.Type = v
	}

	if attrs, ok := AsObject(m["attributes"]); ok {
		d.Attributes = make(map[string]string, len(attrs))
		for name, raw := range attrs {
			if s, ok := raw.(string); ok {
				d.Attributes[name] = s
			}
		}
	}

	if slots, ok := AsObject(m["slots"]); ok {
		d.Slots = make(map[string][]Description, len(slots))
		for name, raw := range slots {
			items, ok := raw.([]any)
			if !ok {
				continue
			}
			children := make([]Description, len(items))
			for i, item := range items {
				if obj, ok := AsObject(item); ok {
					children[i] = DescriptionFromMap(obj)
				}
			}
			d.Slots[name] = children
		}
	}

	return d
}

// AsObject reports whether v is a non-null decoded object and returns it
// with string keys. Both map shapes produced by the JSON and msgpack
// decoders are accepted.
func AsObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case map[any]any:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

