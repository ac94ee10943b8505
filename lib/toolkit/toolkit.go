// Package toolkit provides a minimal HTML rendition of the render primitives
// the composer delegates to, plus the default catalog that exposes them.
//
// The primitives only emit markup. Presentation is left to the host page's
// stylesheet through class names and data attributes.
package toolkit

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/pthm/composer"
)

// Primitive names used by DefaultCatalog and accepted in catalog files.
const (
	PrimitiveFragment = "fragment"
	PrimitiveText     = "text"
	PrimitiveButton   = "button"
	PrimitiveStack    = "stack"
)

// Primitives returns the toolkit's primitives keyed by name, for use with
// composer.Build.
func Primitives() map[string]composer.Primitive {
	return map[string]composer.Primitive{
		PrimitiveFragment: composer.Fragment(composer.DefaultSlot),
		PrimitiveText:     Text(),
		PrimitiveButton:   Button(),
		PrimitiveStack:    Stack(),
	}
}

// Text renders the "text" attribute as escaped character data with no
// surrounding element.
func Text() composer.Primitive {
	return composer.PrimitiveFunc(func(p composer.Props) templ.Component {
		text := p.AttrOr("text", "")
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, templ.EscapeString(text))
			return err
		})
	})
}

// Button renders a <button> with the leftIcon, children and rightIcon slots
// in that order. The variant and colorScheme attributes become classes.
func Button() composer.Primitive {
	return composer.PrimitiveFunc(func(p composer.Props) templ.Component {
		classes := []string{"btn"}
		if v, ok := p.Attr("variant"); ok && v != "" {
			classes = append(classes, "btn-"+v)
		}
		if v, ok := p.Attr("colorScheme"); ok && v != "" {
			classes = append(classes, "btn-"+v)
		}
		attrs := map[string]string{
			"type":  "button",
			"class": strings.Join(classes, " "),
		}
		return element("button", attrs, p, "leftIcon", composer.DefaultSlot, "rightIcon")
	})
}

// Stack renders a <div> container for its children. The direction, spacing
// and align attributes are exposed as data attributes.
func Stack() composer.Primitive {
	return composer.PrimitiveFunc(func(p composer.Props) templ.Component {
		attrs := map[string]string{
			"class":          "stack",
			"data-direction": p.AttrOr("direction", "column"),
		}
		if v, ok := p.Attr("spacing"); ok {
			attrs["data-spacing"] = v
		}
		if v, ok := p.Attr("align"); ok {
			attrs["data-align"] = v
		}
		return element("div", attrs, p, composer.DefaultSlot)
	})
}

// element renders <tag attrs...>slots...</tag>. Attributes are written in
// sorted order so output is stable.
func element(tag string, attrs map[string]string, p composer.Props, slots ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString("<" + tag)
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString(" " + name + `="` + templ.EscapeString(attrs[name]) + `"`)
		}
		sb.WriteString(">")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}

		for _, slot := range slots {
			if err := composer.RenderNodes(ctx, w, p.Slot(slot)); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}
