package encoding

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty selects json", "", NameJSON, false},
		{"json", "json", NameJSON, false},
		{"case insensitive", "MsgPack", NameMsgPack, false},
		{"padded", " msgpack ", NameMsgPack, false},
		{"unknown", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := Lookup(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCodec) {
					t.Fatalf("Lookup(%q) error = %v, want ErrUnknownCodec", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.input, err)
			}
			if codec.Name() != tt.want {
				t.Errorf("Lookup(%q).Name() = %q, want %q", tt.input, codec.Name(), tt.want)
			}
		})
	}
}

func TestCodecContentTypes(t *testing.T) {
	if got := JSON().ContentType(); got != "application/json" {
		t.Errorf("JSON ContentType = %q", got)
	}
	if got := MsgPack().ContentType(); got != "application/msgpack" {
		t.Errorf("MsgPack ContentType = %q", got)
	}
}

func TestCodecsDecodeObjectsToStringMaps(t *testing.T) {
	frame := map[string]any{
		"type": "component-composer-ui",
		"payload": map[string]any{
			"type":  "Text",
			"slots": map[string]any{"children": []any{"x"}},
		},
	}

	for _, codec := range []Codec{JSON(), MsgPack()} {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(frame)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var decoded any
			if err := codec.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			obj, ok := decoded.(map[string]any)
			if !ok {
				t.Fatalf("decoded frame is %T, want map[string]any", decoded)
			}
			if obj["type"] != "component-composer-ui" {
				t.Errorf("type = %v", obj["type"])
			}
			payload, ok := obj["payload"].(map[string]any)
			if !ok {
				t.Fatalf("payload is %T, want map[string]any", obj["payload"])
			}
			slots := payload["slots"].(map[string]any)
			if !reflect.DeepEqual(slots["children"], []any{"x"}) {
				t.Errorf("children = %#v", slots["children"])
			}
		})
	}
}

func TestCheckNesting(t *testing.T) {
	nested := func(levels int) []byte {
		return append(bytes.Repeat([]byte{0x91}, levels), 0xc0)
	}

	tests := []struct {
		name    string
		data    []byte
		limit   int
		wantErr error
	}{
		{"scalar", []byte{0x2a}, 1, nil},
		{"at limit", nested(3), 3, nil},
		{"past limit", nested(4), 3, ErrTooDeep},
		{"empty arrays do not nest", []byte{0x92, 0x90, 0x90}, 1, nil},
		{"map values count", []byte{0x81, 0xa1, 'k', 0x81, 0xa1, 'v', 0x91, 0xc0}, 2, ErrTooDeep},
		{"siblings share a level", []byte{0x92, 0x91, 0x01, 0x91, 0x02}, 2, nil},
		{"very deep", nested(1 << 20), 64, ErrTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNesting(tt.data, tt.limit)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckNesting error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckNesting error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckNestingTruncatedFrame(t *testing.T) {
	if err := CheckNesting([]byte{0x93, 0x01}, 8); err == nil {
		t.Fatal("expected error for truncated array")
	}
}
