package composer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
)

func TestTestRender(t *testing.T) {
	c := New().Register("Text", NewType(NewRecorder("text")).WithAttribute("text", Text()))

	result, err := TestRender(c, Description{Type: "Text", Attributes: map[string]string{"text": "Hello"}})
	if err != nil {
		t.Fatalf("TestRender failed: %v", err)
	}
	if !result.Rendered() {
		t.Fatal("expected a node")
	}
	if !result.HTMLContains(`text="Hello"`) {
		t.Errorf("HTML = %q", result.HTML)
	}
	if !result.HTMLContainsAll(`<text`, `key="none"`) {
		t.Errorf("HTML = %q", result.HTML)
	}
	if !result.HTMLContainsAny("missing", "Hello") {
		t.Error("HTMLContainsAny should match Hello")
	}
	if result.HTMLContainsAny("missing", "absent") {
		t.Error("HTMLContainsAny matched nothing present")
	}
}

func TestTestRenderUnknownType(t *testing.T) {
	result, err := TestRender(New(), Description{Type: "Missing"})
	if err != nil {
		t.Fatalf("TestRender failed: %v", err)
	}
	if result.Rendered() || result.HTML != "" {
		t.Errorf("unknown type rendered %q", result.HTML)
	}
}

func TestTestRenderError(t *testing.T) {
	failing := PrimitiveFunc(func(Props) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return errors.New("boom")
		})
	})
	c := New().Register("Bad", NewType(failing))

	if _, err := TestRender(c, Description{Type: "Bad"}); err == nil {
		t.Error("expected render error")
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder("box")
	if _, ok := rec.Last(); ok {
		t.Fatal("fresh recorder has calls")
	}

	node := rec.Render(Props{
		Key:   "k",
		Attrs: map[string]string{"b": "2", "a": "1"},
		Slots: map[string][]templ.Component{
			"z": {templ.Raw("x")},
			"a": {nil, templ.Raw("y")},
		},
	})

	html, err := RenderString(context.Background(), node)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := `<box key="k" a="1" b="2"><slot name="a"><nil/>y</slot><slot name="z">x</slot></box>`
	if html != want {
		t.Errorf("html = %q, want %q", html, want)
	}

	last, ok := rec.Last()
	if !ok || last.Key != "k" {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
	if len(rec.Calls()) != 1 {
		t.Errorf("Calls() = %d, want 1", len(rec.Calls()))
	}

	rec.Reset()
	if len(rec.Calls()) != 0 {
		t.Error("Reset did not clear calls")
	}
}
