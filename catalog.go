package composer

import (
	"fmt"
	"sort"
)

// AttributeDef declares one attribute in a Catalog.
type AttributeDef struct {
	Kind    AttributeKind `yaml:"kind" json:"kind"`
	Options []string      `yaml:"options,omitempty" json:"options,omitempty"`
	Default string        `yaml:"default,omitempty" json:"default,omitempty"`
}

// TypeDef declares one component type in a Catalog. Primitive names an
// entry of the primitive set passed to Build.
type TypeDef struct {
	Primitive  string                  `yaml:"primitive" json:"primitive"`
	Attributes map[string]AttributeDef `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Slots      []string                `yaml:"slots,omitempty" json:"slots,omitempty"`
}

// Catalog is a declarative description of a composer's types, keyed by
// type name. It is the configuration-file alternative to chained Register
// calls.
type Catalog map[string]TypeDef

// Attribute converts the definition to an AttributeType.
func (d AttributeDef) Attribute() (AttributeType, error) {
	switch d.Kind {
	case KindOptions:
		return Options(d.Options...), nil
	case KindText:
		return TextDefault(d.Default), nil
	default:
		return AttributeType{}, fmt.Errorf("%w: %q", ErrInvalidAttributeKind, d.Kind)
	}
}

// Build assembles a composer from a catalog in one step. Types are
// registered in name order so that logs and errors are deterministic.
//
//	c, err := composer.Build(cfg.Catalog, toolkit.Primitives(), composer.WithLogger(logger))
func Build(cat Catalog, primitives map[string]Primitive, opts ...Option) (*Composer, error) {
	names := make([]string, 0, len(cat))
	for name := range cat {
		names = append(names, name)
	}
	sort.Strings(names)

	types := make(map[string]*ComponentType, len(cat))
	for _, name := range names {
		def := cat[name]
		if name == "" {
			return nil, ErrEmptyTypeName
		}

		p, ok := primitives[def.Primitive]
		if !ok || p == nil {
			return nil, fmt.Errorf("type %s: %w: %q", name, ErrUnknownPrimitive, def.Primitive)
		}

		t := NewType(p)

		attrNames := make([]string, 0, len(def.Attributes))
		for attr := range def.Attributes {
			attrNames = append(attrNames, attr)
		}
		sort.Strings(attrNames)
		for _, attr := range attrNames {
			at, err := def.Attributes[attr].Attribute()
			if err != nil {
				return nil, fmt.Errorf("type %s attribute %s: %w", name, attr, err)
			}
			t.WithAttribute(attr, at)
		}

		for _, slot := range def.Slots {
			t.WithSlot(slot)
		}
		types[name] = t
	}

	c := New(opts...)
	for _, name := range names {
		c.Register(name, types[name])
	}
	return c, nil
}
