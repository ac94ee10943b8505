package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/encoding"
	"github.com/pthm/composer/lib/metrics"
	"github.com/pthm/composer/lib/protocol"
)

// SSE event names.
const (
	EventSchema = protocol.TypeSchema
	EventUI     = "ui"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if composer.IsHTMX(r) {
		s.handleUI(w, r)
		return
	}
	if err := composer.Render(w, r, page(s.title, s.basePathFor(r), s.display.HTML())); err != nil {
		s.logger.Error().Err(err).Msg("render page failed")
	}
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, s.display.HTML()); err != nil {
		s.logger.Error().Err(err).Msg("write ui failed")
	}
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	frame, err := s.session.Handshake()
	if err != nil {
		s.logger.Error().Err(err).Msg("encode handshake failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if s.signer.Enabled() {
		w.Header().Set(SignatureHeader, s.signer.Sign(frame))
	}
	w.Header().Set("Content-Type", s.session.Codec().ContentType())
	if _, err := w.Write(frame); err != nil {
		s.logger.Error().Err(err).Msg("write schema failed")
	}
}

// handleMessage accepts one inbound frame. The response is 202 whatever
// happens to the frame: invalid messages are dropped without a signal.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusAccepted)

	frame, err := io.ReadAll(http.MaxBytesReader(w, r.Body, protocol.MaxFrameSize))
	if err != nil {
		s.logger.Debug().Err(err).Msg("read message body failed")
		s.metrics.Message(metrics.OutcomeInvalid)
		return
	}

	if s.signer.Enabled() {
		if err := s.signer.Verify(frame, r.Header.Get(SignatureHeader)); err != nil {
			s.logger.Debug().Err(err).Msg("message signature rejected")
			s.metrics.Message(metrics.OutcomeInvalid)
			return
		}
	}

	s.session.Handle(r.Context(), frame)
}

// handleEvents streams the display. The first event is the catalog
// handshake (always JSON), followed by the current output and every later
// update as "ui" events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	schema, err := encoding.JSON().Marshal(protocol.SchemaMessage(s.session.Composer().Catalog()))
	if err != nil {
		s.logger.Error().Err(err).Msg("encode handshake failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	id, updates, cancel := s.display.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log := s.logger.With().Str("subscriber", id).Logger()
	log.Debug().Msg("event stream opened")
	defer log.Debug().Msg("event stream closed")

	if err := writeEvent(w, EventSchema, string(schema)); err != nil {
		return
	}
	s.metrics.Handshake()

	current := s.display.Current()
	if err := writeEvent(w, EventUI, current.HTML); err != nil {
		return
	}
	flusher.Flush()
	last := current.Version

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Version <= last {
				continue
			}
			last = u.Version
			if err := writeEvent(w, EventUI, u.HTML); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"status":"ok","subscribers":%d}`, s.display.Subscribers()); err != nil {
		s.logger.Error().Err(err).Msg("write health failed")
	}
}

// writeEvent writes one SSE event. Multi-line data is split across data
// fields so that the client reassembles it verbatim.
func writeEvent(w io.Writer, event, data string) error {
	var sb strings.Builder
	sb.WriteString("event: " + event + "\n")
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
