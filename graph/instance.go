// Package graph implements instance graphs over a compiled schema: typed
// entity instances, bidirectionally consistent relationship collections,
// and the graph algorithms (canonicalization, tolerant equality,
// structural diff, merge, copy, cut) that operate over them.
//
// The engine is single-threaded and synchronous. All algorithms walk
// possibly-cyclic graphs with explicit work-lists, keeping stack use
// bounded on deep graphs.
package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/schema/rel"
)

// Provenance records where an instance was read from.
type Provenance struct {
	File  string
	Sheet string
	Row   int
}

// Instance is one typed entity instance: a value per literal attribute, a
// slot per *-to-one relationship, and an ordered collection per
// *-to-many relationship. Mutations through the public setters keep both
// sides of every paired relationship consistent.
type Instance struct {
	typ    *compiler.EntityType
	uid    uuid.UUID
	values map[string]any
	slots  map[string]*Instance
	colls  map[string]*Collection

	// Provenance optionally records the instance's source location.
	Provenance *Provenance
}

// New returns a new empty instance of the given entity type with default
// attribute values applied.
func New(t *compiler.EntityType) *Instance {
	i := &Instance{
		typ:    t,
		uid:    uuid.New(),
		values: make(map[string]any, len(t.Attributes)),
		slots:  make(map[string]*Instance),
		colls:  make(map[string]*Collection),
	}
	for _, a := range t.Attributes {
		if a.Default != nil {
			i.values[a.Name] = a.Default
		}
	}
	for _, r := range t.Relationships {
		if !r.ToOne() {
			i.colls[r.Name] = &Collection{owner: i, rel: r}
		}
	}
	return i
}

// NewWith returns a new instance with the given raw attribute values
// cleaned and applied.
func NewWith(t *compiler.EntityType, values map[string]any) (*Instance, error) {
	i := New(t)
	for name, raw := range values {
		if err := i.Set(name, raw); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Type returns the instance's entity type.
func (i *Instance) Type() *compiler.EntityType { return i.typ }

// UID returns the instance's internal identity.
func (i *Instance) UID() uuid.UUID { return i.uid }

// Label returns a human-readable identity: the serialized primary value
// when one is set, otherwise a shortened internal id.
func (i *Instance) Label() string {
	if p := i.typ.Primary; p != nil {
		if v, ok := i.values[p.Name]; ok && v != nil {
			return p.Kind.Serialize(v)
		}
	}
	return i.uid.String()[:8]
}

// Get returns the cleaned value of a literal attribute, or nil when
// unset.
func (i *Instance) Get(name string) any {
	return i.values[name]
}

// Set cleans the raw input with the attribute's kind and stores it.
// Strict validation is not applied here; it is explicitly invoked through
// Validate so one pass can surface every defect in a population.
func (i *Instance) Set(name string, raw any) error {
	a, ok := i.typ.Attribute(name)
	if !ok {
		if _, isRel := i.typ.Relationship(name); isRel {
			return fmt.Errorf("graph: %s.%s is a relationship; use SetRelated or the collection", i.typ.Name, name)
		}
		return fmt.Errorf("graph: %s has no attribute %q", i.typ.Name, name)
	}
	if raw == nil {
		delete(i.values, name)
		return nil
	}
	v, err := a.Kind.Clean(raw)
	if err != nil {
		return typegraph.NewAttributeError(i.typ.Name, name, err.Error())
	}
	i.values[name] = v
	return nil
}

// Related returns the target of a *-to-one relationship slot, or nil.
func (i *Instance) Related(name string) *Instance {
	return i.slots[name]
}

// RelatedAll returns the collection of a *-to-many relationship, or nil
// if the name does not denote one.
func (i *Instance) RelatedAll(name string) *Collection {
	return i.colls[name]
}

// SetRelated assigns a *-to-one relationship slot, propagating the single
// corresponding inverse-side update. Passing nil clears both sides.
//
// For a one-to-one relationship whose target is already exclusively
// linked to a different partner, the assignment is rejected with a
// conflict error rather than silently detaching the third instance; the
// caller must clear the existing edge first.
func (i *Instance) SetRelated(name string, target *Instance) error {
	r, ok := i.typ.Relationship(name)
	if !ok {
		return fmt.Errorf("graph: %s has no relationship %q", i.typ.Name, name)
	}
	if !r.ToOne() {
		return fmt.Errorf("graph: %s.%s holds a collection; use Append/Remove", i.typ.Name, name)
	}
	if target != nil && target.typ != r.Type {
		return fmt.Errorf("graph: %s.%s expects %s, got %s", i.typ.Name, name, r.Type.Name, target.typ.Name)
	}
	cur := i.slots[name]
	if cur == target {
		return nil
	}
	if r.Class == rel.OneToOne && r.Reverse != "" && target != nil {
		if other := target.slots[r.Reverse]; other != nil && other != i {
			return typegraph.NewConflictError(i.typ.Name, name,
				fmt.Sprintf("target %s is already linked to %s; clear that edge first", target.Label(), other.Label()))
		}
	}
	// Detach the current edge on both sides.
	if cur != nil && r.Reverse != "" {
		if r.Class == rel.OneToOne {
			delete(cur.slots, r.Reverse)
		} else {
			cur.colls[r.Reverse].removeLocal(i)
		}
	}
	if target == nil {
		delete(i.slots, name)
		return nil
	}
	i.slots[name] = target
	if r.Reverse != "" {
		if r.Class == rel.OneToOne {
			target.slots[r.Reverse] = i
		} else {
			target.colls[r.Reverse].appendLocal(i)
		}
	}
	return nil
}

// Reachable returns every instance reachable from root over
// relationship edges in either direction, root first, in breadth-first
// order.
func Reachable(root *Instance) []*Instance { return reach(root) }

// reach returns every instance reachable from root over relationship
// edges in either direction, root first, in breadth-first order.
func reach(root *Instance) []*Instance {
	seen := map[*Instance]bool{root: true}
	out := []*Instance{root}
	for n := 0; n < len(out); n++ {
		i := out[n]
		for _, r := range i.typ.Relationships {
			if r.ToOne() {
				if t := i.slots[r.Name]; t != nil && !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
				continue
			}
			for _, t := range i.colls[r.Name].items {
				if !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
			}
		}
	}
	return out
}
