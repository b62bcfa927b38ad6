// Package mixin provides the base mixin implementation for typegraph
// schemas.
//
// A mixin is a reusable set of attributes, relationships and indexes that
// can be flattened into multiple schema definitions; it is the inheritance
// mechanism of the schema compiler. Mixed-in declarations precede the
// type's own declarations in attribute order.
//
// To create a custom mixin, embed Schema and override the methods you
// need:
//
//	type Provenanced struct {
//	    mixin.Schema
//	}
//
//	func (Provenanced) Fields() []typegraph.Attribute {
//	    return []typegraph.Attribute{
//	        attr.String("source").Optional(),
//	    }
//	}
//
//	func (Compound) Mixin() []typegraph.Mixin {
//	    return []typegraph.Mixin{
//	        mixin.Identified{},
//	        Provenanced{},
//	    }
//	}
package mixin

import (
	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/schema/attr"
)

// Schema is the default implementation of the typegraph.Mixin interface.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields of the mixin. Empty by default.
func (Schema) Fields() []typegraph.Attribute { return nil }

// Relations of the mixin. Empty by default.
func (Schema) Relations() []typegraph.Relation { return nil }

// Indexes of the mixin. Empty by default.
func (Schema) Indexes() []typegraph.Index { return nil }

// Identified adds a primary, unique identifier attribute named "id" in the
// restricted identifier form that is unambiguous in formulas.
type Identified struct{ Schema }

// Fields of the Identified mixin.
func (Identified) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.Identifier("id").Primary().Unique(),
	}
}

// Named adds a non-empty "name" attribute.
type Named struct{ Schema }

// Fields of the Named mixin.
func (Named) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.String("name").NotEmpty(),
	}
}

// Annotated adds a free-form optional "comment" attribute.
type Annotated struct{ Schema }

// Fields of the Annotated mixin.
func (Annotated) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.String("comment").Optional(),
	}
}

// Timestamped adds optional "created_at" and "updated_at" time
// attributes.
type Timestamped struct{ Schema }

// Fields of the Timestamped mixin.
func (Timestamped) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.Time("created_at").Optional(),
		attr.Time("updated_at").Optional(),
	}
}
