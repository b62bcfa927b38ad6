// Package rel provides fluent builders for defining typed relationships
// between entity types.
//
// A relationship is declared on its owning side with To, and optionally
// paired on the target side with From:
//
//	// Compound side: one compound has many parts.
//	rel.To("parts", "Part").Ref("compound")
//
//	// Part side: each part belongs to one compound.
//	rel.From("compound", "Compound").Ref("parts").Unique()
//
// Cardinality follows the Unique modifier on each side: the four classes
// OneToOne, OneToMany, ManyToOne and ManyToMany cover every combination of
// singular and plural forward/reverse sides.
package rel

import "fmt"

// Class is the cardinality class of a compiled relationship, a distinct
// (forward-max, reverse-max) pair.
type Class int

// Relationship classes.
const (
	// ManyToMany is the (∞, ∞) class.
	ManyToMany Class = iota
	// OneToMany is the (∞, 1) class: the owner holds many, each target
	// holds one owner.
	OneToMany
	// ManyToOne is the (1, ∞) class: the owner holds one, each target
	// holds many owners.
	ManyToOne
	// OneToOne is the (1, 1) class.
	OneToOne
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ManyToMany:
		return "M2M"
	case OneToMany:
		return "O2M"
	case ManyToOne:
		return "M2O"
	case OneToOne:
		return "O2O"
	default:
		return "unknown"
	}
}

// ToOne reports whether the forward side of the class is singular.
func (c Class) ToOne() bool { return c == ManyToOne || c == OneToOne }

// RevOne reports whether the reverse side of the class is singular.
func (c Class) RevOne() bool { return c == OneToMany || c == OneToOne }

// Unbounded marks an absent cardinality bound.
const Unbounded = -1

// Descriptor holds the compiled configuration of one relationship side.
type Descriptor struct {
	Name     string // Attribute name on the declaring type.
	Type     string // Target entity type name.
	Inverse  bool   // Declared with From (reverse side).
	Unique   bool   // The declaring side holds at most one target.
	RefName  string // Reverse attribute name on the target type; may be empty.
	Backref  bool   // Derive a reverse attribute name from the owner type.
	Required bool   // At least one target must be linked.

	// Cardinality bounds checked at validation time. Max bounds of
	// Unbounded mean no limit.
	MinRelated, MaxRelated       int
	MinRelatedRev, MaxRelatedRev int

	Comment string
	Err     error
}

// Builder constructs relationship descriptors.
type Builder struct {
	desc *Descriptor
}

// To declares the forward side of a relationship from the declaring type
// to the named target type.
func To(name, target string) *Builder {
	return &Builder{desc: &Descriptor{
		Name: name, Type: target,
		MaxRelated: Unbounded, MaxRelatedRev: Unbounded,
	}}
}

// From declares the reverse side of a relationship; pair it with the
// forward side using Ref.
func From(name, target string) *Builder {
	b := To(name, target)
	b.desc.Inverse = true
	return b
}

// Unique restricts the declaring side to at most one target.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	b.desc.MaxRelated = 1
	return b
}

// Ref names the paired attribute on the target type.
func (b *Builder) Ref(name string) *Builder {
	b.desc.RefName = name
	return b
}

// Backref materializes a reverse attribute on the target type with a name
// derived from the owner type (singular or plural to match the reverse
// cardinality).
func (b *Builder) Backref() *Builder {
	if b.desc.Inverse && b.desc.Err == nil {
		b.desc.Err = fmt.Errorf("rel: Backref is only valid on the forward side of %q", b.desc.Name)
	}
	b.desc.Backref = true
	return b
}

// RevUnique restricts the reverse side to at most one owner. Only
// meaningful on the forward side; a declared From side carries its own
// Unique modifier instead.
func (b *Builder) RevUnique() *Builder {
	b.desc.MaxRelatedRev = 1
	return b
}

// Required demands at least one linked target.
func (b *Builder) Required() *Builder {
	b.desc.Required = true
	if b.desc.MinRelated == 0 {
		b.desc.MinRelated = 1
	}
	return b
}

// MinRelated sets the forward lower cardinality bound.
func (b *Builder) MinRelated(n int) *Builder {
	b.desc.MinRelated = n
	return b
}

// MaxRelated sets the forward upper cardinality bound.
func (b *Builder) MaxRelated(n int) *Builder {
	b.desc.MaxRelated = n
	return b
}

// MinRelatedRev sets the reverse lower cardinality bound.
func (b *Builder) MinRelatedRev(n int) *Builder {
	b.desc.MinRelatedRev = n
	return b
}

// MaxRelatedRev sets the reverse upper cardinality bound.
func (b *Builder) MaxRelatedRev(n int) *Builder {
	b.desc.MaxRelatedRev = n
	return b
}

// Comment documents the relationship.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the built descriptor.
func (b *Builder) Descriptor() *Descriptor {
	d := b.desc
	if d.Err == nil && d.Name == "" {
		d.Err = fmt.Errorf("rel: relationship name cannot be empty")
	}
	if d.Err == nil && d.Type == "" {
		d.Err = fmt.Errorf("rel: relationship %q has no target type", d.Name)
	}
	if d.Err == nil && d.Unique && d.MaxRelated != 1 {
		d.Err = fmt.Errorf("rel: relationship %q is unique but max_related is %d", d.Name, d.MaxRelated)
	}
	if d.Err == nil && d.Backref && d.RefName != "" {
		d.Err = fmt.Errorf("rel: relationship %q declares both Ref and Backref", d.Name)
	}
	return d
}
