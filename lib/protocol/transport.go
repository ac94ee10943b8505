package protocol

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// MaxFrameSize bounds a single inbound frame.
const MaxFrameSize = 16 << 20

// ErrFrameTooLarge is returned by transports for frames above MaxFrameSize.
var ErrFrameTooLarge = errors.New("protocol: frame too large")

// Transport moves encoded frames between the composer and its host.
type Transport interface {
	Send(frame []byte) error
	// Receive blocks for the next frame and returns io.EOF when the host
	// closes the channel.
	Receive() ([]byte, error)
}

// Serve sends the handshake, then handles inbound frames until the host
// closes the channel (returns nil), the transport fails, or ctx is done.
//
// Frames are handled strictly in arrival order. A blocked Receive is not
// interrupted by ctx; close the underlying reader to release it.
func Serve(ctx context.Context, s *Session, t Transport) error {
	hs, err := s.Handshake()
	if err != nil {
		return err
	}
	if err := t.Send(hs); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}
	s.logger.Info().Str("codec", s.codec.Name()).Msg("handshake sent")

	frames := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		for {
			frame, err := t.Receive()
			if err != nil {
				errc <- err
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				s.logger.Info().Msg("host closed channel")
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		case frame := <-frames:
			s.Handle(ctx, frame)
		}
	}
}

// LineTransport carries one frame per line. Suitable for JSON, whose
// encoder never emits raw newlines; use FrameTransport for msgpack.
type LineTransport struct {
	mu      sync.Mutex
	w       io.Writer
	scanner *bufio.Scanner
}

// NewLineTransport creates a newline-delimited transport.
func NewLineTransport(r io.Reader, w io.Writer) *LineTransport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxFrameSize)
	return &LineTransport{w: w, scanner: scanner}
}

// Send writes frame followed by a newline.
func (t *LineTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := make([]byte, 0, len(frame)+1)
	buf = append(buf, frame...)
	buf = append(buf, '\n')
	_, err := t.w.Write(buf)
	return err
}

// Receive returns the next non-empty line.
func (t *LineTransport) Receive() ([]byte, error) {
	for t.scanner.Scan() {
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame := make([]byte, len(line))
		copy(frame, line)
		return frame, nil
	}
	if err := t.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrFrameTooLarge
		}
		return nil, err
	}
	return nil, io.EOF
}

// FrameTransport carries frames prefixed by a 4-byte big-endian length.
type FrameTransport struct {
	mu sync.Mutex
	w  io.Writer
	r  *bufio.Reader
}

// NewFrameTransport creates a length-prefixed transport.
func NewFrameTransport(r io.Reader, w io.Writer) *FrameTransport {
	return &FrameTransport{w: w, r: bufio.NewReader(r)}
}

// Send writes the length prefix and frame.
func (t *FrameTransport) Send(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := make([]byte, 4+len(frame))
	binary.BigEndian.PutUint32(buf, uint32(len(frame)))
	copy(buf[4:], frame)
	_, err := t.w.Write(buf)
	return err
}

// Receive reads the next length-prefixed frame.
func (t *FrameTransport) Receive() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(t.r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(t.r, frame); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return frame, nil
}

// NewTransport selects a transport by framing name: "lines" (default) or
// "length".
func NewTransport(framing string, r io.Reader, w io.Writer) (Transport, error) {
	switch framing {
	case "", FramingLines:
		return NewLineTransport(r, w), nil
	case FramingLength:
		return NewFrameTransport(r, w), nil
	default:
		return nil, fmt.Errorf("protocol: unknown framing %q", framing)
	}
}

// Framing names accepted by NewTransport.
const (
	FramingLines  = "lines"
	FramingLength = "length"
)
