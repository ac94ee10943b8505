package composer

import "errors"

// Sentinel errors for catalog assembly. Rendering itself never returns an
// error; these only surface while building a composer from configuration.
var (
	ErrEmptyTypeName        = errors.New("composer: empty component type name")
	ErrUnknownPrimitive     = errors.New("composer: unknown render primitive")
	ErrInvalidAttributeKind = errors.New("composer: invalid attribute kind")
)

// IsUnknownPrimitive checks if err is an unknown-primitive error.
func IsUnknownPrimitive(err error) bool {
	return errors.Is(err, ErrUnknownPrimitive)
}

// IsInvalidDefinition checks if err reports a malformed type definition.
func IsInvalidDefinition(err error) bool {
	return errors.Is(err, ErrEmptyTypeName) || errors.Is(err, ErrInvalidAttributeKind)
}
