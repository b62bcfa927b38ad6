package graph

import (
	"sort"
	"strings"

	"github.com/typegraph/typegraph/compiler"
)

// keySep separates tuple components inside a sort key.
const keySep = "\x00"

// Canonicalize sorts every multi-valued relationship collection in the
// graph reachable from root into a deterministic order, so comparisons
// and merges are independent of original insertion order. It is
// idempotent.
//
// Each entity type's sort key generator is chosen once, by priority: the
// serialized value of its single unique attribute; else the serialized
// values of its shortest unique_together tuple; else the serialized
// values of all its attributes in declared order, recursing into related
// instances. A related entity type already being expanded on the current
// recursion branch is not re-expanded, which guarantees termination on
// cyclic schemas.
func Canonicalize(root *Instance) {
	c := canonicalizer{memo: make(map[*Instance]string)}
	insts := reach(root)
	for _, i := range insts {
		for _, r := range i.typ.Relationships {
			if r.ToOne() {
				continue
			}
			coll := i.colls[r.Name]
			sort.SliceStable(coll.items, func(a, b int) bool {
				return c.key(coll.items[a]) < c.key(coll.items[b])
			})
		}
	}
}

// canonicalizer memoizes top-level sort keys for one canonicalization or
// comparison pass.
type canonicalizer struct {
	memo map[*Instance]string
}

// key returns the instance's sort key with a fresh recursion branch.
func (c *canonicalizer) key(i *Instance) string {
	if k, ok := c.memo[i]; ok {
		return k
	}
	k := c.keyOn(i, map[*compiler.EntityType]bool{})
	c.memo[i] = k
	return k
}

// keyOn computes the sort key of i while the types in branch are being
// expanded above it.
func (c *canonicalizer) keyOn(i *Instance, branch map[*compiler.EntityType]bool) string {
	t := i.typ
	if u := t.SingleUnique(); u != nil {
		return serializedOrEmpty(u, i.values[u.Name])
	}
	if tuple := t.ShortestUniqueTogether(); tuple != nil {
		parts := make([]string, len(tuple))
		for n, name := range tuple {
			a, _ := t.Attribute(name)
			parts[n] = serializedOrEmpty(a, i.values[name])
		}
		return strings.Join(parts, keySep)
	}
	var parts []string
	for _, a := range t.Attributes {
		parts = append(parts, serializedOrEmpty(a, i.values[a.Name]))
	}
	branch[t] = true
	defer delete(branch, t)
	for _, r := range t.Relationships {
		if branch[r.Type] {
			continue
		}
		if r.ToOne() {
			if target := i.slots[r.Name]; target != nil {
				parts = append(parts, c.keyOn(target, branch))
			} else {
				parts = append(parts, "")
			}
			continue
		}
		elems := make([]string, 0, i.colls[r.Name].Len())
		for _, e := range i.colls[r.Name].items {
			elems = append(elems, c.keyOn(e, branch))
		}
		// Sorted join keeps the contribution independent of the
		// collection's current order.
		sort.Strings(elems)
		parts = append(parts, strings.Join(elems, keySep))
	}
	return strings.Join(parts, keySep)
}

func serializedOrEmpty(a *compiler.Attribute, v any) string {
	if v == nil {
		return ""
	}
	return a.Kind.Serialize(v)
}
