// Package attr provides fluent builders for defining entity attributes,
// together with the runtime behavior of every attribute kind: permissive
// cleaning of loosely-typed input, strict validation, string and
// builtin-tree (JSON-like) round trips, and tolerant equality.
//
// Builders follow the descriptor pattern:
//
//	attr.String("name").NotEmpty().MaxLen(100)
//	attr.Identifier("id").Primary().Unique()
//	attr.Float("mass").NonNegative().Tolerance(1e-9)
//	attr.Enum("status").Values("draft", "final")
package attr

import (
	"golang.org/x/text/cases"
)

// A Kind implements the runtime behavior of one attribute kind. Clean
// coerces permissively and may be fed arbitrary input; Validate is strict
// and is only ever called on already-cleaned values. Serialize/Deserialize
// round-trip through a human-editable string, ToBuiltin/FromBuiltin through
// a JSON-compatible tree.
type Kind interface {
	// Name returns the kind name (e.g. "string", "float").
	Name() string
	// Clean coerces loosely-typed input into the kind's value type.
	Clean(raw any) (any, error)
	// Validate strictly checks an already-cleaned value.
	Validate(v any) error
	// Serialize renders a value as a human-editable string.
	Serialize(v any) string
	// Deserialize parses the string form produced by Serialize.
	Deserialize(s string) (any, error)
	// ToBuiltin converts a value to a JSON-compatible representation.
	ToBuiltin(v any) any
	// FromBuiltin converts a JSON-compatible representation back to a value.
	FromBuiltin(v any) (any, error)
	// Equal reports tolerant equality between two cleaned values.
	Equal(a, b any) bool
}

// Descriptor holds the compiled configuration of a single attribute.
// Builders construct it; the schema compiler consumes it.
type Descriptor struct {
	Name       string // Attribute name.
	Kind       Kind   // Runtime behavior.
	Default    any    // Default value applied on instance construction; nil means none.
	Primary    bool   // At most one per entity type.
	Unique     bool   // Value must be unique across the live population.
	UniqueFold bool   // Uniqueness compared case-insensitively.
	Optional   bool   // A nil value is not a validation error.
	Comment    string // Free-form documentation.
	Err        error  // First configuration error observed by the builder.
}

// Fold returns the case-folded form of s, used as the canonical key for
// case-insensitive uniqueness.
func Fold(s string) string {
	return cases.Fold().String(s)
}
