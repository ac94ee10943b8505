package composer

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Props is the property bag assembled for a render primitive.
//
// Attrs holds mapped values for the attributes the component type declares
// and the description supplied. Slots holds the rendered children for each
// declared slot the description supplied, in order; a nil entry is a child
// that rendered to nothing. Slots absent from the description are absent
// here, so primitives can fall back to their own defaults.
type Props struct {
	Key   string
	Attrs map[string]string
	Slots map[string][]templ.Component
}

// Attr returns the mapped value of a named attribute.
func (p Props) Attr(name string) (string, bool) {
	v, ok := p.Attrs[name]
	return v, ok
}

// AttrOr returns the mapped value of a named attribute, or def when unset.
func (p Props) AttrOr(name, def string) string {
	if v, ok := p.Attrs[name]; ok {
		return v
	}
	return def
}

// Slot returns the rendered children of a named slot.
func (p Props) Slot(name string) []templ.Component {
	return p.Slots[name]
}

// HasSlot reports whether the description supplied the named slot.
func (p Props) HasSlot(name string) bool {
	_, ok := p.Slots[name]
	return ok
}

// Primitive turns an assembled property bag into one UI node.
//
// Primitives are supplied by the UI toolkit; the composer never looks inside
// them. Render should be pure: it reads props and returns a component
// without side effects.
//
//	text := composer.PrimitiveFunc(func(p composer.Props) templ.Component {
//	    return templ.Raw(templ.EscapeString(p.AttrOr("text", "")))
//	})
type Primitive interface {
	Render(props Props) templ.Component
}

// PrimitiveFunc adapts a function to the Primitive interface.
type PrimitiveFunc func(props Props) templ.Component

// Render calls f(props).
func (f PrimitiveFunc) Render(props Props) templ.Component {
	return f(props)
}

// Fragment renders the children of every slot, in the order the slots
// appear in slotNames, without a wrapping element. Nil children are skipped.
func Fragment(slotNames ...string) Primitive {
	names := append([]string(nil), slotNames...)
	return PrimitiveFunc(func(p Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			for _, name := range names {
				if err := RenderNodes(ctx, w, p.Slot(name)); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// RenderNodes renders nodes in order, skipping nil entries.
func RenderNodes(ctx context.Context, w io.Writer, nodes []templ.Component) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := n.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}
