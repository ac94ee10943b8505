// Package composer provides a declarative UI-composition engine built on
// Templ components.
//
// A Composer holds a catalog of component types. Each type declares typed
// attributes and named child slots, and delegates the actual markup to a
// render primitive supplied by a UI toolkit. The catalog is serialized as a
// schema for an external host, which answers with JSON component
// descriptions that the composer renders recursively into a templ.Component
// tree.
//
// # Core Concepts
//
// Attribute types map raw description strings to prop values and describe
// their own shape. There are two variants:
//
//	composer.Options("solid", "outline", "ghost", "link") // {"kind":"options","options":[...]}
//	composer.Text()                                       // {"kind":"text"}
//
// Component types bundle attributes, ordered slots and a primitive:
//
//	button := composer.NewType(toolkit.Button()).
//	    WithAttribute("variant", composer.Options("solid", "outline")).
//	    WithSlot("leftIcon").
//	    WithChildren().
//	    WithSlot("rightIcon")
//
// The composer registers types by name and renders descriptions:
//
//	c := composer.New().Register("Button", button)
//	node := c.Render(composer.Description{
//	    Type:       "Button",
//	    Attributes: map[string]string{"variant": "outline"},
//	}, composer.DefaultKey)
//
// # Rendering Rules
//
// Render never fails. A description whose type is not registered renders to
// nil. Attributes and slots the type does not declare are ignored. Slot
// children keep their positions, including children that rendered to nil,
// and each child is keyed by its slot name and index ("children0",
// "children1", ...). Nesting deeper than the configured maximum depth
// renders to nil, which bounds the work done for a hostile host.
//
// # Declarative Catalogs
//
// Instead of chained Register calls, a composer can be assembled in one step
// from a Catalog, typically loaded from YAML:
//
//	c, err := composer.Build(cfg.Catalog, toolkit.Primitives())
//
// # Protocol
//
// The lib/protocol package exchanges the catalog and render commands with a
// host over a message channel; lib/server exposes the same exchange over
// HTTP with Server-Sent Events for output.
package composer
