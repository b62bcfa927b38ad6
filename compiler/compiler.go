package compiler

import (
	"fmt"
	"reflect"

	"github.com/go-openapi/inflect"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/schema/rel"
)

// Compile collects the declarations of the given schema definitions,
// cross-validates them, and emits an immutable entity-type graph. Mixins
// are flattened ahead of each type's own declarations. Any schema problem
// is fatal: Compile either returns a complete, closed graph or an error.
func Compile(schemas ...typegraph.Interface) (*Graph, error) {
	g := &Graph{types: make(map[string]*EntityType, len(schemas))}
	decls := make(map[string][]*rel.Descriptor, len(schemas))
	for _, s := range schemas {
		name, err := typeName(s)
		if err != nil {
			return nil, err
		}
		if _, dup := g.types[name]; dup {
			return nil, fmt.Errorf("compiler: duplicate entity type %q", name)
		}
		t := &EntityType{
			Name:  name,
			attrs: make(map[string]*Attribute),
			rels:  make(map[string]*Relationship),
		}
		if o, ok := s.(typegraph.Orienter); ok {
			t.Orientation = o.Orientation()
		}
		if err := compileAttributes(t, s); err != nil {
			return nil, err
		}
		decls[name] = collectRelations(s)
		g.Types = append(g.Types, t)
		g.types[name] = t
	}
	if err := compileRelationships(g, decls); err != nil {
		return nil, err
	}
	for i, s := range schemas {
		if err := compileIndexes(g.Types[i], s); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// typeName derives the entity-type name from the schema definition: an
// explicit Namer wins, otherwise the Go type name.
func typeName(s typegraph.Interface) (string, error) {
	if n, ok := s.(typegraph.Namer); ok {
		if name := n.TypeName(); name != "" {
			return name, nil
		}
	}
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "", fmt.Errorf("compiler: cannot derive an entity type name from %T", s)
	}
	return t.Name(), nil
}

func compileAttributes(t *EntityType, s typegraph.Interface) error {
	var builders []typegraph.Attribute
	for _, m := range s.Mixin() {
		builders = append(builders, m.Fields()...)
	}
	builders = append(builders, s.Fields()...)
	for _, b := range builders {
		d := b.Descriptor()
		if d.Err != nil {
			return fmt.Errorf("compiler: %s: %w", t.Name, d.Err)
		}
		if _, dup := t.attrs[d.Name]; dup {
			return fmt.Errorf("compiler: %s: attribute %q declared twice (inconsistent mixin merge)", t.Name, d.Name)
		}
		a := &Attribute{
			Name:       d.Name,
			Kind:       d.Kind,
			Default:    d.Default,
			Primary:    d.Primary,
			Unique:     d.Unique,
			UniqueFold: d.UniqueFold,
			Optional:   d.Optional,
			Comment:    d.Comment,
			Owner:      t,
		}
		if a.Default != nil {
			v, err := a.Kind.Clean(a.Default)
			if err != nil {
				return fmt.Errorf("compiler: %s.%s: invalid default: %w", t.Name, a.Name, err)
			}
			a.Default = v
		}
		if a.Primary {
			if t.Primary != nil {
				return fmt.Errorf("compiler: %s: multiple primary attributes (%q, %q)", t.Name, t.Primary.Name, a.Name)
			}
			t.Primary = a
		}
		t.Attributes = append(t.Attributes, a)
		t.attrs[a.Name] = a
	}
	return nil
}

func collectRelations(s typegraph.Interface) []*rel.Descriptor {
	var ds []*rel.Descriptor
	for _, m := range s.Mixin() {
		for _, r := range m.Relations() {
			ds = append(ds, r.Descriptor())
		}
	}
	for _, r := range s.Relations() {
		ds = append(ds, r.Descriptor())
	}
	return ds
}

// compileRelationships resolves the declared relationship sides of the
// whole graph: forward sides first, then the pairing of declared reverse
// sides, then the materialization of requested-but-undeclared reverse
// sides, and finally class assignment.
func compileRelationships(g *Graph, decls map[string][]*rel.Descriptor) error {
	type pending struct {
		owner *EntityType
		d     *rel.Descriptor
	}
	var forwards []*Relationship
	var inverses []pending
	for _, t := range g.Types {
		for _, d := range decls[t.Name] {
			if d.Err != nil {
				return fmt.Errorf("compiler: %s: %w", t.Name, d.Err)
			}
			target, ok := g.Type(d.Type)
			if !ok {
				return fmt.Errorf("compiler: %s.%s: unknown target type %q", t.Name, d.Name, d.Type)
			}
			if _, clash := t.attrs[d.Name]; clash {
				return fmt.Errorf("compiler: %s: relationship %q collides with an attribute", t.Name, d.Name)
			}
			if d.Inverse {
				inverses = append(inverses, pending{owner: t, d: d})
				continue
			}
			if _, dup := t.rels[d.Name]; dup {
				return fmt.Errorf("compiler: %s: relationship %q declared twice", t.Name, d.Name)
			}
			r := &Relationship{
				Name:          d.Name,
				Owner:         t,
				Type:          target,
				Reverse:       d.RefName,
				Required:      d.Required,
				MinRelated:    d.MinRelated,
				MaxRelated:    d.MaxRelated,
				MinRelatedRev: d.MinRelatedRev,
				MaxRelatedRev: d.MaxRelatedRev,
				Comment:       d.Comment,
			}
			if d.Backref {
				r.Reverse = backrefName(t.Name, d.MaxRelatedRev != 1)
			}
			t.Relationships = append(t.Relationships, r)
			t.rels[r.Name] = r
			forwards = append(forwards, r)
		}
	}
	// Pair declared reverse sides with their forward sides.
	for _, p := range inverses {
		d := p.d
		if d.RefName == "" {
			return fmt.Errorf("compiler: %s.%s: reverse side must name its forward side with Ref", p.owner.Name, d.Name)
		}
		target := g.types[d.Type]
		fwd, ok := target.rels[d.RefName]
		if !ok || fwd.Type != p.owner {
			return fmt.Errorf("compiler: %s.%s: no forward relationship %s.%s targeting %s", p.owner.Name, d.Name, d.Type, d.RefName, p.owner.Name)
		}
		if fwd.Reverse != "" && fwd.Reverse != d.Name {
			return fmt.Errorf("compiler: %s.%s: forward side names reverse %q, declared reverse is %q", p.owner.Name, d.Name, fwd.Reverse, d.Name)
		}
		if fwd.Inverse != nil {
			return fmt.Errorf("compiler: %s.%s: forward side already paired with %q", p.owner.Name, d.Name, fwd.Reverse)
		}
		if fwd.MaxRelatedRev == 1 && !d.Unique {
			return fmt.Errorf("compiler: %s.%s: forward side declares a singular reverse but %q is not unique", p.owner.Name, d.Name, d.Name)
		}
		fwd.Reverse = d.Name
		fwd.MinRelatedRev = d.MinRelated
		fwd.MaxRelatedRev = d.MaxRelated
		if err := addReverse(fwd, d.Name, d.Required, d.Comment); err != nil {
			return err
		}
	}
	// Materialize reverse sides that the forward side requested.
	for _, fwd := range forwards {
		if fwd.Reverse == "" || fwd.Inverse != nil {
			continue
		}
		if err := addReverse(fwd, fwd.Reverse, false, ""); err != nil {
			return err
		}
	}
	// Forward sides with no reverse attribute still need a class.
	for _, fwd := range forwards {
		if fwd.Inverse == nil {
			fwd.Class = classOf(fwd.MaxRelated == 1, fwd.MaxRelatedRev == 1)
		}
	}
	return nil
}

// addReverse materializes the reverse relationship of fwd on its target
// type, links the Inverse pointers, and assigns both classes.
func addReverse(fwd *Relationship, name string, required bool, comment string) error {
	target := fwd.Type
	if _, clash := target.attrs[name]; clash {
		return fmt.Errorf("compiler: %s: reverse relationship %q collides with an attribute", target.Name, name)
	}
	if _, dup := target.rels[name]; dup {
		return fmt.Errorf("compiler: %s: reverse relationship %q collides with another relationship", target.Name, name)
	}
	fwd.Class = classOf(fwd.MaxRelated == 1, fwd.MaxRelatedRev == 1)
	inv := &Relationship{
		Name:          name,
		Owner:         target,
		Type:          fwd.Owner,
		Class:         inverseClass(fwd.Class),
		Reverse:       fwd.Name,
		Inverse:       fwd,
		Required:      required,
		MinRelated:    fwd.MinRelatedRev,
		MaxRelated:    fwd.MaxRelatedRev,
		MinRelatedRev: fwd.MinRelated,
		MaxRelatedRev: fwd.MaxRelated,
		Comment:       comment,
	}
	fwd.Inverse = inv
	target.Relationships = append(target.Relationships, inv)
	target.rels[name] = inv
	return nil
}

func classOf(fwdOne, revOne bool) rel.Class {
	switch {
	case fwdOne && revOne:
		return rel.OneToOne
	case fwdOne:
		return rel.ManyToOne
	case revOne:
		return rel.OneToMany
	default:
		return rel.ManyToMany
	}
}

func inverseClass(c rel.Class) rel.Class {
	switch c {
	case rel.OneToMany:
		return rel.ManyToOne
	case rel.ManyToOne:
		return rel.OneToMany
	default:
		return c
	}
}

// backrefName derives a reverse attribute name from the owner type name:
// plural when the reverse side is a collection, singular when it is a
// slot.
func backrefName(owner string, plural bool) string {
	name := inflect.Underscore(owner)
	if plural {
		return inflect.Pluralize(name)
	}
	return inflect.Singularize(name)
}

func compileIndexes(t *EntityType, s typegraph.Interface) error {
	var builders []typegraph.Index
	for _, m := range s.Mixin() {
		builders = append(builders, m.Indexes()...)
	}
	builders = append(builders, s.Indexes()...)
	for _, b := range builders {
		d := b.Descriptor()
		if d.Err != nil {
			return fmt.Errorf("compiler: %s: %w", t.Name, d.Err)
		}
		for _, f := range d.Fields {
			if _, ok := t.attrs[f]; !ok {
				return fmt.Errorf("compiler: %s: index tuple names unknown attribute %q", t.Name, f)
			}
		}
		if d.Unique {
			tuple := make([]string, len(d.Fields))
			copy(tuple, d.Fields)
			t.UniqueTogether = append(t.UniqueTogether, tuple)
		}
		t.IndexKeys = append(t.IndexKeys, sortedTuple(d.Fields))
	}
	return nil
}
