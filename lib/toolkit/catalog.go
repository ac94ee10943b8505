package toolkit

import "github.com/pthm/composer"

// DefaultCatalog returns the built-in catalog: Text, Button and Stack.
func DefaultCatalog() composer.Catalog {
	return composer.Catalog{
		"Text": {
			Primitive: PrimitiveText,
			Attributes: map[string]composer.AttributeDef{
				"text": {Kind: composer.KindText},
			},
		},
		"Button": {
			Primitive: PrimitiveButton,
			Attributes: map[string]composer.AttributeDef{
				"colorScheme": {
					Kind: composer.KindOptions,
					Options: []string{
						"gray", "red", "orange", "yellow", "green",
						"teal", "blue", "cyan", "purple", "pink",
					},
				},
				"variant": {
					Kind:    composer.KindOptions,
					Options: []string{"solid", "outline", "ghost", "link"},
				},
			},
			Slots: []string{"leftIcon", composer.DefaultSlot, "rightIcon"},
		},
		"Stack": {
			Primitive: PrimitiveStack,
			Attributes: map[string]composer.AttributeDef{
				"direction": {Kind: composer.KindOptions, Options: []string{"row", "column"}},
				"spacing":   {Kind: composer.KindText},
				"align": {
					Kind:    composer.KindOptions,
					Options: []string{"baseline", "center", "end", "start", "stretch"},
				},
			},
			Slots: []string{composer.DefaultSlot},
		},
	}
}

// Default builds a composer from DefaultCatalog and the toolkit primitives.
func Default(opts ...composer.Option) (*composer.Composer, error) {
	return composer.Build(DefaultCatalog(), Primitives(), opts...)
}
