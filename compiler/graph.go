// Package compiler turns a set of schema definitions into a closed,
// cross-validated graph of immutable entity-type descriptors. All
// schema-level problems (duplicate primary attributes, inconsistent
// mixin merging, malformed unique_together tuples, dangling relationship
// references) are fatal and reported before any instance exists.
package compiler

import (
	"sort"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/schema/attr"
	"github.com/typegraph/typegraph/schema/rel"
)

// Graph is a compiled schema: the closed set of entity types it declares.
type Graph struct {
	// Types holds the entity types in compilation order.
	Types []*EntityType
	types map[string]*EntityType
}

// Type returns the entity type with the given name.
func (g *Graph) Type(name string) (*EntityType, bool) {
	t, ok := g.types[name]
	return t, ok
}

// EntityType describes one kind of instance: its ordered,
// inheritance-flattened attributes, its relationships, and its
// constraints. Created once at schema-compile time; immutable thereafter.
type EntityType struct {
	// Name of the entity type.
	Name string
	// Attributes in declaration order, mixins first.
	Attributes []*Attribute
	attrs      map[string]*Attribute
	// Primary is the entity type's primary attribute, or nil.
	Primary *Attribute
	// Relationships in declaration order, including materialized
	// reverse sides.
	Relationships []*Relationship
	rels          map[string]*Relationship
	// UniqueTogether holds the attribute-name tuples that must be
	// jointly unique across the live population, in declaration order.
	UniqueTogether [][]string
	// IndexKeys holds the declared lookup key tuples, each stored
	// sorted for a canonical lookup key.
	IndexKeys [][]string
	// Orientation hints how tabular adapters should lay the type out.
	Orientation typegraph.Orientation
}

// Attribute returns the literal attribute with the given name.
func (t *EntityType) Attribute(name string) (*Attribute, bool) {
	a, ok := t.attrs[name]
	return a, ok
}

// Relationship returns the relationship with the given name.
func (t *EntityType) Relationship(name string) (*Relationship, bool) {
	r, ok := t.rels[name]
	return r, ok
}

// SingleUnique returns the entity type's sole unique attribute, or nil if
// there are zero or several.
func (t *EntityType) SingleUnique() *Attribute {
	var found *Attribute
	for _, a := range t.Attributes {
		if !a.Unique {
			continue
		}
		if found != nil {
			return nil
		}
		found = a
	}
	return found
}

// ShortestUniqueTogether returns the shortest unique_together tuple, or
// nil if none is declared. Length ties resolve to the earliest declared.
func (t *EntityType) ShortestUniqueTogether() []string {
	var best []string
	for _, tuple := range t.UniqueTogether {
		if best == nil || len(tuple) < len(best) {
			best = tuple
		}
	}
	return best
}

// Attribute is the compiled, typed, constrained definition of one scalar
// field. It is owned by exactly one entity type.
type Attribute struct {
	// Name of the attribute.
	Name string
	// Kind carries the clean/validate/serialize behavior.
	Kind attr.Kind
	// Default value applied on instance construction; nil means none.
	Default any
	// Primary marks the entity type's primary attribute.
	Primary bool
	// Unique requires the value to be unique across the population.
	Unique bool
	// UniqueFold compares uniqueness case-insensitively.
	UniqueFold bool
	// Optional admits absent values.
	Optional bool
	// Comment is free-form documentation.
	Comment string
	// Owner is the declaring entity type.
	Owner *EntityType
}

// UniqueKey returns the canonical uniqueness key for a serialized value,
// folding case when the attribute is case-insensitively unique.
func (a *Attribute) UniqueKey(serialized string) string {
	if a.UniqueFold {
		return attr.Fold(serialized)
	}
	return serialized
}

// Relationship is the compiled definition of one relationship side.
// Both sides of a paired relationship are materialized, each holding an
// Inverse backlink to the other.
type Relationship struct {
	// Name of the relationship attribute on the owning type.
	Name string
	// Owner is the declaring entity type.
	Owner *EntityType
	// Type is the target entity type.
	Type *EntityType
	// Class is the cardinality class seen from the owning side.
	Class rel.Class
	// Reverse is the paired attribute name on the target type; empty if
	// no reverse attribute exists.
	Reverse string
	// Inverse is the paired relationship on the target type; nil iff
	// Reverse is empty.
	Inverse *Relationship
	// Required demands at least one linked target at validation time.
	Required bool

	// Cardinality bounds, checked at validation time. Max bounds of
	// rel.Unbounded mean no limit.
	MinRelated, MaxRelated       int
	MinRelatedRev, MaxRelatedRev int

	// Comment is free-form documentation.
	Comment string
}

// ToOne reports whether the owning side holds at most one target (a slot
// rather than a collection).
func (r *Relationship) ToOne() bool { return r.Class.ToOne() }

// sortedTuple returns a sorted copy of an attribute-name tuple, the
// canonical form for index lookup keys.
func sortedTuple(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
