package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/encoding"
	"github.com/pthm/composer/lib/metrics"
	"github.com/rs/zerolog"
)

// Sink receives the node produced by each render pass. The display package
// provides the standard implementation.
type Sink interface {
	Show(ctx context.Context, node templ.Component) error
}

// Session binds a composer to a sink and handles inbound frames one at a
// time: a render pass always completes before the next frame is handled.
type Session struct {
	mu       sync.Mutex
	composer *composer.Composer
	sink     Sink
	codec    encoding.Codec
	rootKey  string
	logger   zerolog.Logger
	metrics  *metrics.Collector
}

// Option configures a Session.
type Option func(*Session)

// WithCodec sets the wire codec. Defaults to JSON.
func WithCodec(c encoding.Codec) Option {
	return func(s *Session) {
		s.codec = c
	}
}

// WithRootKey sets the identity key of top-level renders.
// Defaults to composer.DefaultKey.
func WithRootKey(key string) Option {
	return func(s *Session) {
		s.rootKey = key
	}
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession creates a session rendering with c into sink.
func NewSession(c *composer.Composer, sink Sink, opts ...Option) *Session {
	s := &Session{
		composer: c,
		sink:     sink,
		codec:    encoding.JSON(),
		rootKey:  composer.DefaultKey,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Codec returns the session's wire codec.
func (s *Session) Codec() encoding.Codec {
	return s.codec
}

// Composer returns the session's composer.
func (s *Session) Composer() *composer.Composer {
	return s.composer
}

// Handshake encodes the catalog message sent to the host at startup.
func (s *Session) Handshake() ([]byte, error) {
	frame, err := s.codec.Marshal(SchemaMessage(s.composer.Catalog()))
	if err != nil {
		return nil, fmt.Errorf("encode handshake: %w", err)
	}
	s.metrics.Handshake()
	return frame, nil
}

// Handle processes one inbound frame. It reports whether the frame was a
// render command; every other frame is ignored.
func (s *Session) Handle(ctx context.Context, frame []byte) bool {
	desc, err := DecodeLimit(s.codec, frame, NestingLimit(s.composer.MaxDepth()))
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if errors.Is(err, ErrUnrecognized) {
			outcome = metrics.OutcomeIgnored
		}
		s.metrics.Message(outcome)
		s.logger.Debug().Err(err).Int("bytes", len(frame)).Msg("ignoring inbound message")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pass := uuid.New().String()
	log := s.logger.With().Str("pass", pass).Str("type", desc.Type).Logger()

	node := s.composer.Render(desc, s.rootKey)
	if node == nil {
		log.Debug().Msg("render command produced no output")
	}
	if err := s.sink.Show(ctx, node); err != nil {
		log.Error().Err(err).Msg("display update failed")
	}

	s.metrics.Message(metrics.OutcomeHandled)
	log.Debug().Msg("render command handled")
	return true
}
