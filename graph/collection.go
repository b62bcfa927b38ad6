package graph

import (
	"fmt"

	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/schema/rel"
)

// Collection is the ordered sequence of instances on the *-to-many side
// of a relationship. The public mutators propagate the single
// corresponding inverse-side update; the unexported primitives touch only
// the local side and exist strictly for the inverse side's own updates,
// so the two sides never recurse into each other.
type Collection struct {
	owner *Instance
	rel   *compiler.Relationship
	items []*Instance
}

// Len returns the number of related instances.
func (c *Collection) Len() int { return len(c.items) }

// At returns the related instance at position i.
func (c *Collection) At(i int) *Instance { return c.items[i] }

// All returns a copy of the related instances in order.
func (c *Collection) All() []*Instance {
	out := make([]*Instance, len(c.items))
	copy(out, c.items)
	return out
}

// Contains reports whether x is in the collection.
func (c *Collection) Contains(x *Instance) bool {
	return c.index(x) >= 0
}

// Append adds x and propagates the inverse edge. For a one-to-many
// relationship this reparents x: its singular reverse slot moves to the
// collection's owner. Appending an already-present instance is a no-op.
func (c *Collection) Append(x *Instance) error {
	if x == nil {
		return fmt.Errorf("graph: cannot append nil to %s.%s", c.owner.typ.Name, c.rel.Name)
	}
	if x.typ != c.rel.Type {
		return fmt.Errorf("graph: %s.%s expects %s, got %s", c.owner.typ.Name, c.rel.Name, c.rel.Type.Name, x.typ.Name)
	}
	if c.Contains(x) {
		return nil
	}
	if c.rel.Reverse != "" {
		if c.rel.Class == rel.OneToMany {
			if prev := x.slots[c.rel.Reverse]; prev != nil && prev != c.owner {
				prev.colls[c.rel.Name].removeLocal(x)
			}
			x.slots[c.rel.Reverse] = c.owner
		} else {
			x.colls[c.rel.Reverse].appendLocal(c.owner)
		}
	}
	c.items = append(c.items, x)
	return nil
}

// Remove drops x and propagates the inverse edge. It reports whether x
// was present.
func (c *Collection) Remove(x *Instance) bool {
	i := c.index(x)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	if c.rel.Reverse != "" {
		if c.rel.Class == rel.OneToMany {
			if x.slots[c.rel.Reverse] == c.owner {
				delete(x.slots, c.rel.Reverse)
			}
		} else {
			x.colls[c.rel.Reverse].removeLocal(c.owner)
		}
	}
	return true
}

// Clear removes every element, propagating each inverse edge.
func (c *Collection) Clear() {
	for _, x := range c.All() {
		c.Remove(x)
	}
}

// appendLocal adds x without propagation. Inverse-side use only.
func (c *Collection) appendLocal(x *Instance) {
	if c.index(x) < 0 {
		c.items = append(c.items, x)
	}
}

// removeLocal drops x without propagation. Inverse-side use only.
func (c *Collection) removeLocal(x *Instance) {
	if i := c.index(x); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Collection) index(x *Instance) int {
	for i, e := range c.items {
		if e == x {
			return i
		}
	}
	return -1
}
