package composer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// TestResult holds the result of rendering a description for testing.
type TestResult struct {
	// Node is the rendered node; nil when the description rendered to nothing.
	Node templ.Component
	HTML string
}

// TestRender renders a description with the default key and returns
// testable output.
//
//	result, err := composer.TestRender(c, desc)
//	if !result.HTMLContains("expected text") {
//	    t.Fatal("missing expected content")
//	}
func TestRender(c *Composer, desc Description) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), c, desc)
}

// TestRenderWithContext renders a description with a custom context.
func TestRenderWithContext(ctx context.Context, c *Composer, desc Description) (*TestResult, error) {
	node := c.Render(desc, DefaultKey)
	html, err := RenderString(ctx, node)
	if err != nil {
		return nil, err
	}
	return &TestResult{Node: node, HTML: html}, nil
}

// Rendered reports whether the description produced a node.
func (r *TestResult) Rendered() bool {
	return r.Node != nil
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// Recorder is a Primitive that records every property bag it receives and
// renders a deterministic markup of its input:
//
//	<Name key="k" attr="v"><slot name="children">...</slot></Name>
//
// Attributes and slots are written in sorted order, nil children as <nil/>.
// Two recorders' output is equal exactly when the props trees are equal,
// which makes it useful for structural comparisons in tests.
type Recorder struct {
	Name string

	mu    sync.Mutex
	calls []Props
}

// NewRecorder creates a Recorder that renders elements named name.
func NewRecorder(name string) *Recorder {
	return &Recorder{Name: name}
}

// Render implements Primitive.
func (r *Recorder) Render(props Props) templ.Component {
	r.mu.Lock()
	r.calls = append(r.calls, props)
	r.mu.Unlock()

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString("<" + r.Name)
		sb.WriteString(fmt.Sprintf(" key=%q", props.Key))
		for _, name := range sortedKeys(props.Attrs) {
			sb.WriteString(fmt.Sprintf(" %s=%q", name, props.Attrs[name]))
		}
		sb.WriteString(">")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}

		for _, name := range sortedKeys(props.Slots) {
			if _, err := fmt.Fprintf(w, "<slot name=%q>", name); err != nil {
				return err
			}
			for _, child := range props.Slots[name] {
				if child == nil {
					if _, err := io.WriteString(w, "<nil/>"); err != nil {
						return err
					}
					continue
				}
				if err := child.Render(ctx, w); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</slot>"); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</"+r.Name+">")
		return err
	})
}

// Calls returns the recorded property bags in call order.
func (r *Recorder) Calls() []Props {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Props(nil), r.calls...)
}

// Last returns the most recent property bag.
func (r *Recorder) Last() (Props, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Props{}, false
	}
	return r.calls[len(r.calls)-1], true
}

// Reset clears recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
