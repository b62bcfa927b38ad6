package attr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// StringKind is the runtime behavior of string attributes. It carries
// length bounds and an optional regular-expression constraint.
type StringKind struct {
	MinLen  int            // Minimum length in runes; 0 means unbounded.
	MaxLen  int            // Maximum length in runes; 0 means unbounded.
	Pattern *regexp.Regexp // Optional full-value constraint.
}

// Name returns the kind name.
func (*StringKind) Name() string { return "string" }

// Clean coerces strings, byte slices, stringers and numbers.
func (*StringKind) Clean(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return nil, fmt.Errorf("cannot clean %T as string", raw)
	}
}

// Validate checks the value type, the length bounds and the pattern.
func (k *StringKind) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	if n := utf8.RuneCountInString(s); n < k.MinLen {
		return fmt.Errorf("length %d below minimum %d", n, k.MinLen)
	} else if k.MaxLen > 0 && n > k.MaxLen {
		return fmt.Errorf("length %d above maximum %d", n, k.MaxLen)
	}
	if k.Pattern != nil && !k.Pattern.MatchString(s) {
		return fmt.Errorf("value %q does not match %s", s, k.Pattern)
	}
	return nil
}

// Serialize returns the value unchanged.
func (*StringKind) Serialize(v any) string {
	s, _ := v.(string)
	return s
}

// Deserialize returns the string unchanged.
func (*StringKind) Deserialize(s string) (any, error) { return s, nil }

// ToBuiltin returns the value unchanged.
func (*StringKind) ToBuiltin(v any) any { return v }

// FromBuiltin accepts strings.
func (k *StringKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// Equal reports exact string equality.
func (*StringKind) Equal(a, b any) bool { return a == b }

// identifierPattern is the restricted form of primary identifiers: a
// leading letter or underscore followed by word characters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IdentifierKind is the primary-identifier attribute kind: a restricted
// regular expression that additionally forbids tokens that look like plain
// numbers (e.g. "NaN", "Inf"), so identifiers are unambiguous in formulas.
type IdentifierKind struct {
	StringKind
}

// Name returns the kind name.
func (*IdentifierKind) Name() string { return "identifier" }

// Validate applies the string checks plus the number-likeness guard.
func (k *IdentifierKind) Validate(v any) error {
	if err := k.StringKind.Validate(v); err != nil {
		return err
	}
	s := v.(string)
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return fmt.Errorf("identifier %q is indistinguishable from a number", s)
	}
	return nil
}

// FromBuiltin accepts strings.
func (k *IdentifierKind) FromBuiltin(v any) (any, error) { return k.Clean(v) }

// StringBuilder builds string attribute descriptors.
type StringBuilder struct {
	desc *Descriptor
	kind *StringKind
}

// String returns a new string attribute builder.
func String(name string) *StringBuilder {
	k := &StringKind{}
	return &StringBuilder{desc: &Descriptor{Name: name, Kind: k}, kind: k}
}

// Text returns a new unbounded string attribute builder.
func Text(name string) *StringBuilder {
	return String(name)
}

// Identifier returns a builder for the primary-identifier kind.
func Identifier(name string) *StringBuilder {
	k := &IdentifierKind{StringKind{Pattern: identifierPattern}}
	return &StringBuilder{desc: &Descriptor{Name: name, Kind: k}, kind: &k.StringKind}
}

// MinLen sets the minimum length in runes.
func (b *StringBuilder) MinLen(n int) *StringBuilder {
	b.kind.MinLen = n
	return b
}

// MaxLen sets the maximum length in runes.
func (b *StringBuilder) MaxLen(n int) *StringBuilder {
	b.kind.MaxLen = n
	return b
}

// NotEmpty requires a non-empty value.
func (b *StringBuilder) NotEmpty() *StringBuilder {
	return b.MinLen(1)
}

// Match constrains values to the given regular expression.
func (b *StringBuilder) Match(re *regexp.Regexp) *StringBuilder {
	if b.kind.Pattern != nil && b.desc.Err == nil {
		b.desc.Err = fmt.Errorf("attr: pattern already set for %q", b.desc.Name)
	}
	b.kind.Pattern = re
	return b
}

// Primary marks the attribute as the entity type's primary attribute.
func (b *StringBuilder) Primary() *StringBuilder {
	b.desc.Primary = true
	return b
}

// Unique requires the value to be unique across the live population.
func (b *StringBuilder) Unique() *StringBuilder {
	b.desc.Unique = true
	return b
}

// UniqueCaseInsensitive requires case-folded uniqueness.
func (b *StringBuilder) UniqueCaseInsensitive() *StringBuilder {
	b.desc.Unique = true
	b.desc.UniqueFold = true
	return b
}

// Default sets the default value.
func (b *StringBuilder) Default(s string) *StringBuilder {
	b.desc.Default = s
	return b
}

// Optional allows the value to be absent.
func (b *StringBuilder) Optional() *StringBuilder {
	b.desc.Optional = true
	return b
}

// Comment documents the attribute.
func (b *StringBuilder) Comment(c string) *StringBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *StringBuilder) Descriptor() *Descriptor {
	if b.desc.Err == nil && strings.TrimSpace(b.desc.Name) == "" {
		b.desc.Err = fmt.Errorf("attr: attribute name cannot be empty")
	}
	return b.desc
}
