package composer

// DefaultSlot is the slot name used when WithSlot is given an empty name.
const DefaultSlot = "children"

// ComponentType describes one renderable kind: the attributes it accepts,
// the ordered slots it exposes, and the primitive that renders it.
//
// Types are configured by chaining:
//
//	button := composer.NewType(toolkit.Button()).
//	    WithAttribute("variant", composer.Options("solid", "outline", "ghost", "link")).
//	    WithSlot("leftIcon").
//	    WithChildren().
//	    WithSlot("rightIcon")
//
// A type is meant to be configured once, before it is registered. It is not
// safe to mutate a type while a composer renders with it.
type ComponentType struct {
	attributes map[string]AttributeType
	slotNames  []string
	primitive  Primitive
}

// NewType creates a component type rendered by p.
func NewType(p Primitive) *ComponentType {
	return &ComponentType{
		attributes: make(map[string]AttributeType),
		primitive:  p,
	}
}

// WithAttribute declares (or replaces) a named attribute.
func (t *ComponentType) WithAttribute(name string, at AttributeType) *ComponentType {
	t.attributes[name] = at
	return t
}

// WithSlot appends a slot name. An empty name means DefaultSlot.
// Duplicate names are kept; each occurrence is a separate declaration.
func (t *ComponentType) WithSlot(name string) *ComponentType {
	if name == "" {
		name = DefaultSlot
	}
	t.slotNames = append(t.slotNames, name)
	return t
}

// WithChildren appends the DefaultSlot.
func (t *ComponentType) WithChildren() *ComponentType {
	return t.WithSlot(DefaultSlot)
}

// Attribute returns the declared attribute type for name.
func (t *ComponentType) Attribute(name string) (AttributeType, bool) {
	at, ok := t.attributes[name]
	return at, ok
}

// SlotNames returns the declared slot names in declaration order.
func (t *ComponentType) SlotNames() []string {
	return append([]string(nil), t.slotNames...)
}

// Primitive returns the render primitive.
func (t *ComponentType) Primitive() Primitive {
	return t.primitive
}

// Schema returns a snapshot of the type's shape.
func (t *ComponentType) Schema() ComponentSchema {
	attrs := make(map[string]AttributeSchema, len(t.attributes))
	for name, at := range t.attributes {
		attrs[name] = at.Schema()
	}
	slots := make([]string, len(t.slotNames))
	copy(slots, t.slotNames)
	return ComponentSchema{
		Attributes: attrs,
		SlotNames:  slots,
	}
}
