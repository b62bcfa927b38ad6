package graph

// Cut extracts the subgraph spanned by root and its transitive children
// over the named relationship attributes (the "kind" selector). Every
// relationship edge from a member to a non-member is severed on both
// sides: *-to-one slots are nulled, non-members are dropped from
// *-to-many collections. Edges between members are left untouched. The
// member set is returned in breadth-first order, root first.
func Cut(root *Instance, kinds ...string) []*Instance {
	child := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		child[k] = true
	}
	members := []*Instance{root}
	member := map[*Instance]bool{root: true}
	for n := 0; n < len(members); n++ {
		i := members[n]
		for _, r := range i.typ.Relationships {
			if !child[r.Name] {
				continue
			}
			if r.ToOne() {
				if t := i.slots[r.Name]; t != nil && !member[t] {
					member[t] = true
					members = append(members, t)
				}
				continue
			}
			for _, t := range i.colls[r.Name].items {
				if !member[t] {
					member[t] = true
					members = append(members, t)
				}
			}
		}
	}
	for _, i := range members {
		for _, r := range i.typ.Relationships {
			if r.ToOne() {
				if t := i.slots[r.Name]; t != nil && !member[t] {
					// Clearing a slot never conflicts.
					_ = i.SetRelated(r.Name, nil)
				}
				continue
			}
			coll := i.colls[r.Name]
			for _, t := range coll.All() {
				if !member[t] {
					coll.Remove(t)
				}
			}
		}
	}
	return members
}
