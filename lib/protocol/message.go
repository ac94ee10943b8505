// Package protocol exchanges the composer catalog and render commands with
// an embedding host over an asynchronous message channel.
//
// Two message types exist:
//
//	{"type":"component-composer-schema","payload":<catalog>}  composer -> host, once
//	{"type":"component-composer-ui","payload":<description>}  host -> composer, repeatedly
//
// Inbound validation is minimal. A frame that does not decode
// to an object, carries a null or non-object payload, or names an
// unrecognized type is ignored without any signal to the host.
package protocol

import (
	"errors"
	"fmt"

	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/encoding"
)

// Message type discriminators.
const (
	TypeSchema = "component-composer-schema"
	TypeUI     = "component-composer-ui"
)

// Reasons a frame is ignored. These never reach the host; they exist for
// logs and tests.
var (
	ErrMalformed      = errors.New("protocol: malformed message")
	ErrInvalidPayload = errors.New("protocol: payload is not an object")
	ErrUnrecognized   = errors.New("protocol: unrecognized message type")
)

// Message is the envelope of every frame.
type Message struct {
	Type    string `json:"type" msgpack:"type"`
	Payload any    `json:"payload" msgpack:"payload"`
}

// SchemaMessage builds the outbound handshake.
func SchemaMessage(cat composer.CatalogSchema) Message {
	return Message{Type: TypeSchema, Payload: cat}
}

// UIMessage builds a render command, as a host would send it.
func UIMessage(desc composer.Description) Message {
	return Message{Type: TypeUI, Payload: desc}
}

// NestingLimit is the container depth a frame may reach when its
// description nests maxDepth levels: each level adds a description object,
// its slots object and a slot list, and the envelope adds one more.
func NestingLimit(maxDepth int) int {
	if maxDepth < 1 {
		maxDepth = composer.DefaultMaxDepth
	}
	return 3*maxDepth + 4
}

// Decode validates an inbound frame and extracts the render command's
// description. The returned error only explains why the frame is ignored.
func Decode(codec encoding.Codec, frame []byte) (composer.Description, error) {
	return DecodeLimit(codec, frame, NestingLimit(composer.DefaultMaxDepth))
}

// DecodeLimit is Decode with an explicit container nesting limit. Frames
// nested deeper are malformed.
func DecodeLimit(codec encoding.Codec, frame []byte, limit int) (composer.Description, error) {
	if codec.Name() == encoding.NameMsgPack {
		if err := encoding.CheckNesting(frame, limit); err != nil {
			return composer.Description{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	var raw any
	if err := codec.Unmarshal(frame, &raw); err != nil {
		return composer.Description{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	envelope, ok := composer.AsObject(raw)
	if !ok {
		return composer.Description{}, ErrMalformed
	}

	typ, _ := envelope["type"].(string)
	payload, ok := composer.AsObject(envelope["payload"])
	if !ok {
		return composer.Description{}, ErrInvalidPayload
	}

	switch typ {
	case TypeUI:
		return composer.DescriptionFromMap(payload), nil
	default:
		return composer.Description{}, fmt.Errorf("%w: %q", ErrUnrecognized, typ)
	}
}
