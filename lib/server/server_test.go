package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pthm/composer/lib/display"
	"github.com/pthm/composer/lib/encoding"
	"github.com/pthm/composer/lib/metrics"
	"github.com/pthm/composer/lib/protocol"
	"github.com/pthm/composer/lib/toolkit"
	"github.com/rs/zerolog"
)

const hiFrame = `{"type":"component-composer-ui","payload":{"type":"Text","attributes":{"text":"Hi"}}}`

func newTestServer(t *testing.T, opts ...Option) (*Server, *display.Display) {
	t.Helper()
	c, err := toolkit.Default()
	if err != nil {
		t.Fatalf("toolkit.Default failed: %v", err)
	}
	d := display.New(display.DefaultPlaceholder)
	s := New(protocol.NewSession(c, d), d, opts...)
	t.Cleanup(s.Close)
	return s, d
}

func do(s *Server, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPage(t *testing.T) {
	s, _ := newTestServer(t, WithTitle("Demo <app>"))

	rec := do(s, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Demo &lt;app&gt;</title>",
		`sse-connect="/events"`,
		`<main id="composer-root" sse-swap="ui">Loading...</main>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageBasePath(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		ctx  string
		want string
	}{
		{"option", []Option{WithBasePath("/live/")}, "", `sse-connect="/live/events"`},
		{"request context", nil, "/mounted", `sse-connect="/mounted/events"`},
		{"context wins", []Option{WithBasePath("/live")}, "/app/composer/", `sse-connect="/app/composer/events"`},
		{"quoted", []Option{WithBasePath(`/a"b`)}, "", `sse-connect="/a&#34;b/events"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.opts...)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.ctx != "" {
				req = req.WithContext(ContextWithBasePath(req.Context(), tt.ctx))
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("page missing %s in %q", tt.want, rec.Body.String())
			}
		})
	}
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteFailuresAreLogged(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/ui", "write ui failed"},
		{"/schema", "write schema failed"},
		{"/healthz", "write health failed"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var logs bytes.Buffer
			s, _ := newTestServer(t, WithLogger(zerolog.New(&logs)))

			w := brokenWriter{httptest.NewRecorder()}
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if !strings.Contains(logs.String(), tt.want) {
				t.Errorf("logs = %q, want %q", logs.String(), tt.want)
			}
		})
	}
}

func TestPageHTMXReturnsFragment(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/", "", http.Header{"Hx-Request": {"true"}})
	if rec.Body.String() != "Loading..." {
		t.Errorf("body = %q, want the bare fragment", rec.Body.String())
	}
}

func TestPostMessageUpdatesDisplay(t *testing.T) {
	s, d := newTestServer(t)

	rec := do(s, http.MethodPost, "/messages", hiFrame, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if d.HTML() != "Hi" {
		t.Errorf("display = %q, want Hi", d.HTML())
	}

	rec = do(s, http.MethodGet, "/ui", "", nil)
	if rec.Body.String() != "Hi" {
		t.Errorf("/ui = %q, want Hi", rec.Body.String())
	}
}

func TestPostInvalidMessageIsAccepted(t *testing.T) {
	s, d := newTestServer(t)

	for _, body := range []string{
		"",
		"not json",
		`{"type":"component-composer-ui","payload":null}`,
		`{"type":"other","payload":{}}`,
	} {
		rec := do(s, http.MethodPost, "/messages", body, nil)
		if rec.Code != http.StatusAccepted {
			t.Errorf("POST %q status = %d, want 202", body, rec.Code)
		}
	}
	if d.HTML() != "Loading..." {
		t.Errorf("display = %q, invalid messages must not change it", d.HTML())
	}
}

func TestSchema(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/schema", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get(SignatureHeader) != "" {
		t.Error("unsigned server set a signature")
	}

	var msg struct {
		Type    string `json:"type"`
		Payload struct {
			Components map[string]json.RawMessage `json:"components"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if msg.Type != protocol.TypeSchema {
		t.Errorf("type = %q", msg.Type)
	}
	if _, ok := msg.Payload.Components["Button"]; !ok {
		t.Error("schema missing Button")
	}
}

func TestSignedMessages(t *testing.T) {
	signer := encoding.NewSigner([]byte("shared-secret"))
	s, d := newTestServer(t, WithSigner(signer))

	schema := do(s, http.MethodGet, "/schema", "", nil)
	if err := signer.Verify(schema.Body.Bytes(), schema.Header().Get(SignatureHeader)); err != nil {
		t.Errorf("handshake signature invalid: %v", err)
	}

	tests := []struct {
		name    string
		sig     string
		applied bool
	}{
		{"missing signature", "", false},
		{"wrong signature", encoding.NewSigner([]byte("other")).Sign([]byte(hiFrame)), false},
		{"valid signature", signer.Sign([]byte(hiFrame)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/messages", hiFrame, http.Header{SignatureHeader: {tt.sig}})
			if rec.Code != http.StatusAccepted {
				t.Errorf("status = %d, want 202", rec.Code)
			}
			if got := d.HTML() == "Hi"; got != tt.applied {
				t.Errorf("applied = %v, want %v", got, tt.applied)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	s, _ := newTestServer(t, WithMetrics(m, "/metrics"))

	rec := do(s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	do(s, http.MethodGet, "/schema", "", nil)
	rec = do(s, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}

	plain, _ := newTestServer(t)
	if rec := do(plain, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("metrics without collector = %d, want 404", rec.Code)
	}
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	var data []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "":
			if ev.name == "" && data == nil {
				continue
			}
			ev.data = strings.Join(data, "\n")
			return ev
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
}

func TestEventStream(t *testing.T) {
	s, d := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)

	first := readEvent(t, r)
	if first.name != EventSchema {
		t.Fatalf("first event = %q, want %q", first.name, EventSchema)
	}
	var msg protocol.Message
	if err := json.Unmarshal([]byte(first.data), &msg); err != nil || msg.Type != protocol.TypeSchema {
		t.Errorf("schema event data = %q", first.data)
	}

	initial := readEvent(t, r)
	if initial.name != EventUI || initial.data != "Loading..." {
		t.Errorf("initial event = %+v", initial)
	}

	for d.Subscribers() == 0 {
		time.Sleep(time.Millisecond)
	}
	post, err := http.Post(ts.URL+"/messages", "application/json", bytes.NewBufferString(hiFrame))
	if err != nil {
		t.Fatalf("POST /messages: %v", err)
	}
	post.Body.Close()

	update := readEvent(t, r)
	if update.name != EventUI || update.data != "Hi" {
		t.Errorf("update event = %+v", update)
	}
}

func TestWriteEventMultiline(t *testing.T) {
	var buf bytes.Buffer
	if err := writeEvent(&buf, EventUI, "<div>\n<p>x</p>\n</div>"); err != nil {
		t.Fatal(err)
	}
	want := "event: ui\ndata: <div>\ndata: <p>x</p>\ndata: </div>\n\n"
	if buf.String() != want {
		t.Errorf("event = %q, want %q", buf.String(), want)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx, "127.0.0.1:0", time.Second, time.Second)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
