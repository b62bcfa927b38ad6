package attr

import (
	"fmt"
	"strings"
)

// EnumKind is the runtime behavior of enum attributes.
type EnumKind struct {
	Values []string // Permitted values, in declaration order.
}

// Name returns the kind name.
func (*EnumKind) Name() string { return "enum" }

// Clean coerces strings and stringers; membership is checked by Validate.
func (*EnumKind) Clean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.TrimSpace(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("cannot clean %T as enum", raw)
	}
}

// Validate checks membership in the declared value set.
func (k *EnumKind) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected enum string, got %T", v)
	}
	for _, want := range k.Values {
		if s == want {
			return nil
		}
	}
	return fmt.Errorf("value %q is not one of %v", s, k.Values)
}

// Serialize returns the value unchanged.
func (*EnumKind) Serialize(v any) string {
	s, _ := v.(string)
	return s
}

// Deserialize returns the string unchanged.
func (*EnumKind) Deserialize(s string) (any, error) { return s, nil }

// ToBuiltin returns the value unchanged.
func (*EnumKind) ToBuiltin(v any) any { return v }

// FromBuiltin accepts strings.
func (k *EnumKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// Equal reports exact equality.
func (*EnumKind) Equal(a, b any) bool { return a == b }

// EnumBuilder builds enum attribute descriptors.
type EnumBuilder struct {
	desc *Descriptor
	kind *EnumKind
}

// Enum returns a new enum attribute builder.
func Enum(name string) *EnumBuilder {
	k := &EnumKind{}
	return &EnumBuilder{desc: &Descriptor{Name: name, Kind: k}, kind: k}
}

// Values declares the permitted values.
func (b *EnumBuilder) Values(vs ...string) *EnumBuilder {
	b.kind.Values = append(b.kind.Values, vs...)
	return b
}

// Default sets the default value.
func (b *EnumBuilder) Default(v string) *EnumBuilder {
	b.desc.Default = v
	return b
}

// Optional allows the value to be absent.
func (b *EnumBuilder) Optional() *EnumBuilder {
	b.desc.Optional = true
	return b
}

// Comment documents the attribute.
func (b *EnumBuilder) Comment(c string) *EnumBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *EnumBuilder) Descriptor() *Descriptor {
	if b.desc.Err == nil && len(b.kind.Values) == 0 {
		b.desc.Err = fmt.Errorf("attr: enum %q has no values", b.desc.Name)
	}
	if b.desc.Err == nil {
		seen := make(map[string]bool, len(b.kind.Values))
		for _, v := range b.kind.Values {
			if seen[v] {
				b.desc.Err = fmt.Errorf("attr: enum %q has duplicate value %q", b.desc.Name, v)
				break
			}
			seen[v] = true
		}
	}
	return b.desc
}
