// Package codec round-trips instance populations through a builtin
// (JSON-compatible) tree, with JSON and MessagePack encodings of that
// tree. The tree maps each entity type name to a list of instance
// objects; relationship values are the serialized primary value of the
// referenced instance, resolved on decode against the candidate set of
// the target type.
package codec

import (
	"fmt"
	"sort"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
)

// Encode renders a population as a builtin tree. Every instance whose
// type participates in a relationship must have its primary value set,
// since relationships are encoded as primary references.
func Encode(insts []*graph.Instance) (map[string]any, error) {
	byType := make(map[string][]*graph.Instance)
	for _, i := range insts {
		byType[i.Type().Name] = append(byType[i.Type().Name], i)
	}
	out := make(map[string]any, len(byType))
	for name, group := range byType {
		objs := make([]any, 0, len(group))
		for _, i := range group {
			obj, err := encodeInstance(i)
			if err != nil {
				return nil, err
			}
			objs = append(objs, obj)
		}
		out[name] = objs
	}
	return out, nil
}

func encodeInstance(i *graph.Instance) (map[string]any, error) {
	t := i.Type()
	obj := make(map[string]any)
	for _, a := range t.Attributes {
		if v := i.Get(a.Name); v != nil {
			obj[a.Name] = a.Kind.ToBuiltin(v)
		}
	}
	for _, r := range t.Relationships {
		if r.ToOne() {
			target := i.Related(r.Name)
			if target == nil {
				continue
			}
			ref, err := primaryRef(target)
			if err != nil {
				return nil, fmt.Errorf("codec: %s[%s].%s: %w", t.Name, i.Label(), r.Name, err)
			}
			obj[r.Name] = ref
			continue
		}
		coll := i.RelatedAll(r.Name)
		if coll.Len() == 0 {
			continue
		}
		refs := make([]any, 0, coll.Len())
		for _, target := range coll.All() {
			ref, err := primaryRef(target)
			if err != nil {
				return nil, fmt.Errorf("codec: %s[%s].%s: %w", t.Name, i.Label(), r.Name, err)
			}
			refs = append(refs, ref)
		}
		obj[r.Name] = refs
	}
	return obj, nil
}

func primaryRef(i *graph.Instance) (string, error) {
	p := i.Type().Primary
	if p == nil {
		return "", fmt.Errorf("%s has no primary attribute to reference by", i.Type().Name)
	}
	v := i.Get(p.Name)
	if v == nil {
		return "", fmt.Errorf("referenced %s instance has no %s value", i.Type().Name, p.Name)
	}
	return p.Kind.Serialize(v), nil
}

// Decode rebuilds a population from a builtin tree against a compiled
// schema. Instances are created first, then relationships are wired by
// resolving each primary reference against the target type's decoded
// candidates; a reference matching zero or more than one candidate is
// an error.
func Decode(g *compiler.Graph, tree map[string]any) ([]*graph.Instance, error) {
	var (
		insts      []*graph.Instance
		rels       []pendingRel
		candidates = make(map[*compiler.EntityType]map[string][]*graph.Instance)
	)
	// Type names are visited sorted so decode order is reproducible.
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t, ok := g.Type(name)
		if !ok {
			return nil, fmt.Errorf("codec: unknown entity type %q", name)
		}
		objs, ok := asList(tree[name])
		if !ok {
			return nil, fmt.Errorf("codec: %s: expected a list of instances, got %T", name, tree[name])
		}
		for k, raw := range objs {
			obj, ok := asMap(raw)
			if !ok {
				return nil, fmt.Errorf("codec: %s[%d]: expected an object, got %T", name, k, raw)
			}
			i, pending, err := decodeInstance(t, obj)
			if err != nil {
				return nil, err
			}
			insts = append(insts, i)
			rels = append(rels, pending...)
			if p := t.Primary; p != nil {
				if v := i.Get(p.Name); v != nil {
					key := p.Kind.Serialize(v)
					if candidates[t] == nil {
						candidates[t] = make(map[string][]*graph.Instance)
					}
					candidates[t][key] = append(candidates[t][key], i)
				}
			}
		}
	}
	for _, pr := range rels {
		if err := pr.wire(candidates); err != nil {
			return nil, err
		}
	}
	return insts, nil
}

type pendingRel struct {
	owner *graph.Instance
	rel   *compiler.Relationship
	refs  []string
}

func decodeInstance(t *compiler.EntityType, obj map[string]any) (*graph.Instance, []pendingRel, error) {
	i := graph.New(t)
	var pending []pendingRel
	for name, raw := range obj {
		if a, ok := t.Attribute(name); ok {
			v, err := a.Kind.FromBuiltin(raw)
			if err != nil {
				return nil, nil, typegraph.NewAttributeError(t.Name, name, err.Error())
			}
			if err := i.Set(name, v); err != nil {
				return nil, nil, err
			}
			continue
		}
		r, ok := t.Relationship(name)
		if !ok {
			return nil, nil, fmt.Errorf("codec: %s has no attribute or relationship %q", t.Name, name)
		}
		refs, err := decodeRefs(t, r, raw)
		if err != nil {
			return nil, nil, err
		}
		pending = append(pending, pendingRel{owner: i, rel: r, refs: refs})
	}
	return i, pending, nil
}

func decodeRefs(t *compiler.EntityType, r *compiler.Relationship, raw any) ([]string, error) {
	if r.ToOne() {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("codec: %s.%s: expected a primary reference string, got %T", t.Name, r.Name, raw)
		}
		return []string{s}, nil
	}
	list, ok := asList(raw)
	if !ok {
		return nil, fmt.Errorf("codec: %s.%s: expected a list of primary references, got %T", t.Name, r.Name, raw)
	}
	refs := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("codec: %s.%s: expected a primary reference string, got %T", t.Name, r.Name, e)
		}
		refs = append(refs, s)
	}
	return refs, nil
}

func (pr pendingRel) wire(candidates map[*compiler.EntityType]map[string][]*graph.Instance) error {
	for _, ref := range pr.refs {
		matches := candidates[pr.rel.Type][ref]
		switch {
		case len(matches) == 0:
			return fmt.Errorf("codec: %s.%s: reference %q matches no %s instance",
				pr.rel.Owner.Name, pr.rel.Name, ref, pr.rel.Type.Name)
		case len(matches) > 1:
			return fmt.Errorf("codec: %s.%s: reference %q matches %d %s instances: %w",
				pr.rel.Owner.Name, pr.rel.Name, ref, len(matches), pr.rel.Type.Name, typegraph.ErrAmbiguous)
		}
		target := matches[0]
		if pr.rel.ToOne() {
			// Both sides of a pair may be present in the tree; rewiring an
			// already-consistent edge is a no-op.
			if err := pr.owner.SetRelated(pr.rel.Name, target); err != nil {
				return err
			}
			continue
		}
		if err := pr.owner.RelatedAll(pr.rel.Name).Append(target); err != nil {
			return err
		}
	}
	return nil
}

func asList(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for n := range v {
			out[n] = v[n]
		}
		return out, true
	default:
		return nil, false
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
