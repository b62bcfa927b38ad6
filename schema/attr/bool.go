package attr

import (
	"fmt"
	"strings"
)

// BoolKind is the runtime behavior of boolean attributes.
type BoolKind struct{}

// Name returns the kind name.
func (*BoolKind) Name() string { return "bool" }

// Clean coerces booleans, "true"/"1" and "false"/"0" strings, and 0/1
// integers.
func (*BoolKind) Clean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("cannot clean %q as bool", v)
	case int:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, fmt.Errorf("cannot clean %d as bool", v)
	case int64:
		return (&BoolKind{}).Clean(int(v))
	case float64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, fmt.Errorf("cannot clean %v as bool", v)
	default:
		return nil, fmt.Errorf("cannot clean %T as bool", raw)
	}
}

// Validate checks the value type.
func (*BoolKind) Validate(v any) error {
	if _, ok := v.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", v)
	}
	return nil
}

// Serialize renders "true" or "false".
func (*BoolKind) Serialize(v any) string {
	if b, _ := v.(bool); b {
		return "true"
	}
	return "false"
}

// Deserialize parses the string form.
func (k *BoolKind) Deserialize(s string) (any, error) { return k.Clean(s) }

// ToBuiltin returns the boolean unchanged.
func (*BoolKind) ToBuiltin(v any) any { return v }

// FromBuiltin accepts any boolean representation.
func (k *BoolKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// Equal reports exact equality.
func (*BoolKind) Equal(a, b any) bool { return a == b }

// BoolBuilder builds boolean attribute descriptors.
type BoolBuilder struct {
	desc *Descriptor
}

// Bool returns a new boolean attribute builder.
func Bool(name string) *BoolBuilder {
	return &BoolBuilder{desc: &Descriptor{Name: name, Kind: &BoolKind{}}}
}

// Default sets the default value.
func (b *BoolBuilder) Default(v bool) *BoolBuilder {
	b.desc.Default = v
	return b
}

// Optional allows the value to be absent.
func (b *BoolBuilder) Optional() *BoolBuilder {
	b.desc.Optional = true
	return b
}

// Comment documents the attribute.
func (b *BoolBuilder) Comment(c string) *BoolBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *BoolBuilder) Descriptor() *Descriptor { return b.desc }
