package graph

import (
	"fmt"
	"strings"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
)

// Merge folds the graph rooted at src into the graph rooted at dst. The
// two roots must be instances of the same entity type and are assumed to
// denote the same real-world object; every other pairing is derived from
// equal unique-attribute serializations. Literal attributes of paired
// instances must already be equal under their kind's tolerance;
// relationship children of src are reparented onto their dst images, and
// unmapped src instances join the dst graph as new members.
//
// Merge fails fast the moment an invariant would be violated (a
// conflicting literal, or a *-to-one slot that would be overwritten with
// a different non-null target). After a failed merge the destination
// graph's partial state is undefined and must not be trusted.
func Merge(dst, src *Instance) error {
	if dst.typ != src.typ {
		return fmt.Errorf("graph: cannot merge %s into %s", src.typ.Name, dst.typ.Name)
	}
	Canonicalize(dst)
	Canonicalize(src)
	srcSet := reach(src)
	images := identityMap(dst, src, srcSet)
	for _, s := range srcSet {
		d, mapped := images[s]
		if !mapped {
			d = s
		}
		if d != s {
			if err := mergeLiterals(d, s); err != nil {
				return err
			}
		}
		if err := mergeEdges(d, s, images); err != nil {
			return err
		}
	}
	Canonicalize(dst)
	return nil
}

// identityMap pairs every src-graph instance with the dst-graph instance
// whose unique attribute(s) serialize identically, forcing src onto dst
// for the roots. Instances of types without a uniqueness contract, and
// instances with no dst counterpart, stay unmapped.
func identityMap(dst, src *Instance, srcSet []*Instance) map[*Instance]*Instance {
	index := make(map[*compiler.EntityType]map[string]*Instance)
	for _, d := range reach(dst) {
		k := identityKey(d)
		if k == "" {
			continue
		}
		byKey := index[d.typ]
		if byKey == nil {
			byKey = make(map[string]*Instance)
			index[d.typ] = byKey
		}
		byKey[k] = d
	}
	images := map[*Instance]*Instance{src: dst}
	for _, s := range srcSet {
		if s == src {
			continue
		}
		k := identityKey(s)
		if k == "" {
			continue
		}
		if d, ok := index[s.typ][k]; ok {
			images[s] = d
		}
	}
	return images
}

// identityKey serializes the instance's uniqueness contract: its single
// unique attribute, else its shortest unique_together tuple, else empty.
func identityKey(i *Instance) string {
	t := i.typ
	if u := t.SingleUnique(); u != nil {
		if v := i.values[u.Name]; v != nil {
			return u.Kind.Serialize(v)
		}
		return ""
	}
	tuple := t.ShortestUniqueTogether()
	if tuple == nil {
		return ""
	}
	parts := make([]string, len(tuple))
	for n, name := range tuple {
		a, _ := t.Attribute(name)
		v := i.values[name]
		if v == nil {
			return ""
		}
		parts[n] = a.Kind.Serialize(v)
	}
	return strings.Join(parts, keySep)
}

// mergeLiterals copies src's literal values onto its dst image, failing
// on any value that conflicts beyond the attribute's tolerance.
func mergeLiterals(d, s *Instance) error {
	for _, a := range d.typ.Attributes {
		sv, dv := s.values[a.Name], d.values[a.Name]
		switch {
		case sv == nil:
		case dv == nil:
			d.values[a.Name] = sv
		case !a.Kind.Equal(dv, sv):
			return typegraph.NewAttributeError(d.typ.Name, a.Name,
				fmt.Sprintf("merge conflict: %s != %s", a.Kind.Serialize(dv), a.Kind.Serialize(sv)))
		}
	}
	return nil
}

// mergeEdges redirects all of s's relationship edges onto its image d,
// mapping edge targets through the identity map.
func mergeEdges(d, s *Instance, images map[*Instance]*Instance) error {
	imageOf := func(x *Instance) *Instance {
		if img, ok := images[x]; ok {
			return img
		}
		return x
	}
	for _, r := range s.typ.Relationships {
		if r.ToOne() {
			st := s.slots[r.Name]
			if st == nil {
				continue
			}
			img := imageOf(st)
			if d == s && img == st {
				continue
			}
			cur := d.slots[r.Name]
			if cur != nil && cur != img && cur != st {
				return typegraph.NewConflictError(d.typ.Name, r.Name,
					fmt.Sprintf("merge would overwrite %s with %s", cur.Label(), img.Label()))
			}
			// Detach the src-side edge first so the reverse side does
			// not retain the consumed duplicate.
			if err := s.SetRelated(r.Name, nil); err != nil {
				return err
			}
			if err := d.SetRelated(r.Name, img); err != nil {
				return err
			}
			continue
		}
		for _, e := range s.colls[r.Name].All() {
			img := imageOf(e)
			if d == s && img == e {
				continue
			}
			s.colls[r.Name].Remove(e)
			if err := d.colls[r.Name].Append(img); err != nil {
				return err
			}
		}
	}
	return nil
}
