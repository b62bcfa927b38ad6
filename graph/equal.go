package graph

// Equal reports whether the graphs rooted at a and b are equal:
// canonicalize both, then walk matched instance pairs with a work-list.
// Literal attributes compare with their kind's tolerant equality;
// relationship attributes must agree on class and collection length, and
// their (identically sorted) elements are queued pairwise.
func Equal(a, b *Instance) bool {
	if a == nil || b == nil {
		return a == b
	}
	Canonicalize(a)
	Canonicalize(b)
	type pair struct{ a, b *Instance }
	matched := make(map[*Instance]*Instance)
	work := []pair{{a, b}}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]
		if m, ok := matched[p.a]; ok {
			if m != p.b {
				return false
			}
			continue
		}
		if p.a.typ.Name != p.b.typ.Name {
			return false
		}
		matched[p.a] = p.b
		for _, at := range p.a.typ.Attributes {
			va, vb := p.a.values[at.Name], p.b.values[at.Name]
			if (va == nil) != (vb == nil) {
				return false
			}
			if va != nil && !at.Kind.Equal(va, vb) {
				return false
			}
		}
		for _, r := range p.a.typ.Relationships {
			if r.ToOne() {
				sa, sb := p.a.slots[r.Name], p.b.slots[r.Name]
				if (sa == nil) != (sb == nil) {
					return false
				}
				if sa != nil {
					work = append(work, pair{sa, sb})
				}
				continue
			}
			ca, cb := p.a.colls[r.Name], p.b.colls[r.Name]
			if ca.Len() != cb.Len() {
				return false
			}
			for n := 0; n < ca.Len(); n++ {
				work = append(work, pair{ca.items[n], cb.items[n]})
			}
		}
	}
	return true
}
