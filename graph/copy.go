package graph

// Copy deep-copies the graph reachable from root and returns the copy of
// root. It works in two passes: allocate one empty shell per reachable
// instance, then populate every shell's literal and relationship
// attributes by remapping through the old-to-new identity map. Because
// all shells exist before any attribute is copied, cycles are reproduced
// correctly.
func Copy(root *Instance) *Instance {
	insts := reach(root)
	shells := make(map[*Instance]*Instance, len(insts))
	for _, o := range insts {
		n := New(o.typ)
		if o.Provenance != nil {
			p := *o.Provenance
			n.Provenance = &p
		}
		shells[o] = n
	}
	for _, o := range insts {
		n := shells[o]
		for name, v := range o.values {
			n.values[name] = v
		}
		for name, target := range o.slots {
			n.slots[name] = shells[target]
		}
		for name, coll := range o.colls {
			nc := n.colls[name]
			for _, e := range coll.items {
				nc.items = append(nc.items, shells[e])
			}
		}
	}
	return shells[root]
}
