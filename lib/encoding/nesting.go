package encoding

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ErrTooDeep reports a frame whose containers nest past the allowed limit.
var ErrTooDeep = errors.New("encoding: nesting too deep")

// CheckNesting walks a msgpack value without materializing it and fails if
// arrays and maps nest more than limit levels. Decoding into an interface
// recurses once per level, so untrusted frames must pass this first.
func CheckNesting(data []byte, limit int) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	// pending[i] counts the values still to be read at depth i.
	pending := []int{1}
	for len(pending) > 0 {
		top := len(pending) - 1
		if pending[top] == 0 {
			pending = pending[:top]
			continue
		}
		pending[top]--

		code, err := dec.PeekCode()
		if err != nil {
			return err
		}

		var n int
		switch {
		case msgpcode.IsFixedArray(code), code == msgpcode.Array16, code == msgpcode.Array32:
			n, err = dec.DecodeArrayLen()
		case msgpcode.IsFixedMap(code), code == msgpcode.Map16, code == msgpcode.Map32:
			n, err = dec.DecodeMapLen()
			n *= 2
		default:
			if err := dec.Skip(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if n <= 0 {
			continue
		}
		if len(pending) > limit {
			return fmt.Errorf("%w: more than %d levels", ErrTooDeep, limit)
		}
		pending = append(pending, n)
	}
	return nil
}
