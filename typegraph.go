// Package typegraph provides an in-memory typed object-graph engine: a
// declarative schema DSL (attributes, relationships, indexes), a schema
// compiler that emits immutable entity-type descriptors, instance graphs
// with enforced bidirectional relationships, a multi-key instance registry,
// graph algorithms (canonicalization, equality, diff, merge, copy, cut),
// and an embedded expression sub-language over entity instances.
package typegraph

import (
	"github.com/typegraph/typegraph/schema/attr"
	"github.com/typegraph/typegraph/schema/index"
	"github.com/typegraph/typegraph/schema/rel"
)

// Interface is the minimal surface a schema definition must implement.
// Definitions usually embed Schema, which provides empty defaults, and
// override the methods they need:
//
//	type Compound struct{ typegraph.Schema }
//
//	func (Compound) Fields() []typegraph.Attribute {
//	    return []typegraph.Attribute{
//	        attr.Identifier("id").Primary().Unique(),
//	        attr.Float("mass").NonNegative(),
//	    }
//	}
//
//	func (Compound) Relations() []typegraph.Relation {
//	    return []typegraph.Relation{
//	        rel.To("parts", "Part").Ref("compound").RevUnique(),
//	    }
//	}
type Interface interface {
	// Fields returns the attribute declarations of the entity type.
	Fields() []Attribute
	// Relations returns the relationship declarations of the entity type.
	Relations() []Relation
	// Indexes returns the index key-tuple declarations of the entity type.
	Indexes() []Index
	// Mixin returns reused schema fragments that are flattened into the
	// entity type ahead of its own declarations.
	Mixin() []Mixin
}

// Attribute is implemented by all builders in schema/attr.
type Attribute interface {
	Descriptor() *attr.Descriptor
}

// Relation is implemented by all builders in schema/rel.
type Relation interface {
	Descriptor() *rel.Descriptor
}

// Index is implemented by the builder in schema/index.
type Index interface {
	Descriptor() *index.Descriptor
}

// Mixin is a composable schema fragment. Its declarations are merged into
// every entity type that lists it, before the type's own declarations.
type Mixin interface {
	Fields() []Attribute
	Relations() []Relation
	Indexes() []Index
}

// Schema is the default implementation of Interface. Embed it in schema
// definitions and override the relevant methods.
type Schema struct{}

// Fields of the schema. Empty by default.
func (Schema) Fields() []Attribute { return nil }

// Relations of the schema. Empty by default.
func (Schema) Relations() []Relation { return nil }

// Indexes of the schema. Empty by default.
func (Schema) Indexes() []Index { return nil }

// Mixin of the schema. Empty by default.
func (Schema) Mixin() []Mixin { return nil }

// Namer is an optional interface for schema definitions whose entity-type
// name cannot be derived from the Go type name (e.g. schemas loaded from
// declaration files).
type Namer interface {
	TypeName() string
}

// Orientation hints how tabular adapters should lay out a population of an
// entity type.
type Orientation int

// Orientation values.
const (
	// RowMajor lays out one instance per row (the default).
	RowMajor Orientation = iota
	// ColumnMajor lays out one instance per column.
	ColumnMajor
	// SingleCell packs the whole population into one cell.
	SingleCell
	// MultiCell spreads a single instance over multiple cells.
	MultiCell
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case RowMajor:
		return "row-major"
	case ColumnMajor:
		return "column-major"
	case SingleCell:
		return "single-cell"
	case MultiCell:
		return "multi-cell"
	default:
		return "unknown"
	}
}

// Orienter is an optional interface for schema definitions that carry a
// table-orientation hint.
type Orienter interface {
	Orientation() Orientation
}
