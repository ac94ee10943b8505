// Package encoding provides the wire codecs and message signing used by the
// composer protocol.
package encoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec names accepted by Lookup.
const (
	NameJSON    = "json"
	NameMsgPack = "msgpack"
)

// Sentinel errors for encoding operations.
var (
	ErrUnknownCodec     = errors.New("encoding: unknown codec")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrInvalidFormat    = errors.New("encoding: invalid signature format")
)

// Codec marshals protocol frames. Implementations must be deterministic for
// a given value and safe for concurrent use.
type Codec interface {
	Name() string
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON returns the JSON codec.
func JSON() Codec { return jsonCodec{} }

// MsgPack returns the msgpack codec.
func MsgPack() Codec { return msgpackCodec{} }

// Lookup returns the codec registered under name (case-insensitive).
// An empty name selects JSON.
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameJSON:
		return JSON(), nil
	case NameMsgPack:
		return MsgPack(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string        { return NameJSON }
func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string        { return NameMsgPack }
func (msgpackCodec) ContentType() string { return "application/msgpack" }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
