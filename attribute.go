package composer

// AttributeKind discriminates the attribute variants.
type AttributeKind string

const (
	// KindOptions is an enumerated attribute with a fixed, ordered set of values.
	KindOptions AttributeKind = "options"

	// KindText is a free-text attribute.
	KindText AttributeKind = "text"
)

// AttributeType maps a raw attribute string from a Description to the value
// handed to a render primitive, and describes its own shape for the catalog.
//
// There are exactly two variants, built with Options and Text. The zero value
// is not a valid attribute type.
//
//	composer.NewType(button).
//	    WithAttribute("variant", composer.Options("solid", "outline", "ghost", "link")).
//	    WithAttribute("label", composer.Text())
//
// Mapping is permissive: PropValue never fails, and option values are not
// checked against the declared set.
type AttributeType struct {
	kind         AttributeKind
	options      []string
	defaultValue string
}

// Options creates an enumerated attribute. The order of values is preserved
// in the serialized schema.
func Options(values ...string) AttributeType {
	opts := make([]string, len(values))
	copy(opts, values)
	return AttributeType{kind: KindOptions, options: opts}
}

// Text creates a free-text attribute with an empty default.
func Text() AttributeType {
	return AttributeType{kind: KindText}
}

// TextDefault creates a free-text attribute carrying a default value.
//
// The default is kept for hosts and tooling that read it through Default;
// it is neither serialized nor applied when an attribute is missing.
func TextDefault(def string) AttributeType {
	return AttributeType{kind: KindText, defaultValue: def}
}

// Kind returns the attribute variant.
func (a AttributeType) Kind() AttributeKind {
	return a.kind
}

// Values returns a copy of the declared options (nil for text attributes).
func (a AttributeType) Values() []string {
	if a.kind != KindOptions {
		return nil
	}
	out := make([]string, len(a.options))
	copy(out, a.options)
	return out
}

// Default returns the text default value.
func (a AttributeType) Default() string {
	return a.defaultValue
}

// Schema serializes the attribute shape.
func (a AttributeType) Schema() AttributeSchema {
	switch a.kind {
	case KindOptions:
		return AttributeSchema{Kind: KindOptions, Options: a.Values()}
	default:
		return AttributeSchema{Kind: KindText}
	}
}

// PropValue maps a raw description value to the prop value. Both variants
// pass the value through unchanged; values outside an options set are kept.
func (a AttributeType) PropValue(raw string) string {
	return raw
}
