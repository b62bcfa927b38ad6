// Package manager implements the per-entity-type instance registry: a
// multi-key index over live instances that holds only non-owning
// handles, so tracked instances can be reclaimed while registered.
package manager

import (
	"fmt"
	"sort"
	"strings"
	"weak"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
)

const (
	// sweepEvery is how many mutating or querying operations pass
	// between housekeeping sweeps of emptied buckets.
	sweepEvery = 64
	// maxStale caps the recorded empty-bucket list; exceeding it forces
	// an immediate sweep.
	maxStale = 256
)

const keySep = "\x00"

type handle = weak.Pointer[graph.Instance]

// bucket is the set of handles sharing one key-values string.
type bucket map[handle]struct{}

// keyIndex is one declared index key tuple's map from joined key values
// to the instances holding them.
type keyIndex struct {
	tuple   []string // sorted attribute names
	buckets map[string]bucket
}

type staleRef struct {
	idx *keyIndex
	key string
}

// typeIndex tracks one entity type's population.
type typeIndex struct {
	typ     *compiler.EntityType
	indexes map[string]*keyIndex // canonical tuple key -> index
	// reverse maps each indexed handle to the key values it was inserted
	// under, per tuple, so updates are delete-then-reinsert.
	reverse map[handle]map[string]string
	pending []handle
}

// Manager indexes instances of a compiled schema by the index key tuples
// declared at schema-compile time. It holds instances weakly: lookups
// return only instances that are still alive, and the indexes tolerate
// tracked instances disappearing at any point.
//
// A Manager is single-threaded state. Index updates are multi-step and
// must not race with readers; callers share one across goroutines only
// behind their own lock.
type Manager struct {
	types map[*compiler.EntityType]*typeIndex

	ops   int
	stale []staleRef
}

// New returns a Manager with one index per key tuple declared on each
// entity type of the compiled graph.
func New(g *compiler.Graph) *Manager {
	m := &Manager{types: make(map[*compiler.EntityType]*typeIndex, len(g.Types))}
	for _, t := range g.Types {
		ti := &typeIndex{
			typ:     t,
			indexes: make(map[string]*keyIndex, len(t.IndexKeys)),
			reverse: make(map[handle]map[string]string),
		}
		for _, tuple := range t.IndexKeys {
			ti.indexes[tupleKey(tuple)] = &keyIndex{tuple: tuple, buckets: make(map[string]bucket)}
		}
		m.types[t] = ti
	}
	return m
}

// tupleKey is the canonical form of an attribute-name set. Tuples are
// stored sorted by the compiler, so joining is enough.
func tupleKey(tuple []string) string { return strings.Join(tuple, keySep) }

// Track registers an instance. It is buffered rather than indexed
// immediately; indexing happens on the next Flush or Lookup, so bulk
// loads pay index construction once.
func (m *Manager) Track(i *graph.Instance) error {
	ti, ok := m.types[i.Type()]
	if !ok {
		return fmt.Errorf("manager: unknown entity type %s", i.Type().Name)
	}
	ti.pending = append(ti.pending, weak.Make(i))
	m.tick()
	return nil
}

// Flush indexes every pending instance of every type.
func (m *Manager) Flush() {
	for _, ti := range m.types {
		for _, h := range ti.pending {
			if i := h.Value(); i != nil {
				m.insert(ti, h, i)
			}
		}
		ti.pending = ti.pending[:0]
	}
}

// Update re-indexes one instance after its attribute values changed:
// its old index entries are deleted and current ones reinserted. An
// instance never tracked is simply tracked.
func (m *Manager) Update(i *graph.Instance) error {
	ti, ok := m.types[i.Type()]
	if !ok {
		return fmt.Errorf("manager: unknown entity type %s", i.Type().Name)
	}
	h := weak.Make(i)
	if _, indexed := ti.reverse[h]; !indexed {
		return m.Track(i)
	}
	m.remove(ti, h)
	m.insert(ti, h, i)
	m.tick()
	return nil
}

// Lookup returns the still-alive instances of type t whose indexed
// values match the query exactly. The query's attribute-name set must
// equal one of the type's declared index key tuples; any other shape is
// a usage error, not a scan.
func (m *Manager) Lookup(t *compiler.EntityType, query map[string]any) ([]*graph.Instance, error) {
	ti, ok := m.types[t]
	if !ok {
		return nil, fmt.Errorf("manager: unknown entity type %s", t.Name)
	}
	m.Flush()
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)
	idx, ok := ti.indexes[tupleKey(names)]
	if !ok {
		return nil, fmt.Errorf("manager: %s has no index key (%s): %w",
			t.Name, strings.Join(names, ", "), typegraph.ErrBadLookup)
	}
	parts := make([]string, 0, len(idx.tuple))
	for _, name := range idx.tuple {
		a, ok := t.Attribute(name)
		if !ok {
			return nil, fmt.Errorf("manager: %s has no attribute %q: %w", t.Name, name, typegraph.ErrBadLookup)
		}
		v, err := a.Kind.Clean(query[name])
		if err != nil {
			return nil, typegraph.NewAttributeError(t.Name, name, err.Error())
		}
		parts = append(parts, a.UniqueKey(a.Kind.Serialize(v)))
	}
	key := strings.Join(parts, keySep)
	b := idx.buckets[key]
	out := make([]*graph.Instance, 0, len(b))
	for h := range b {
		if i := h.Value(); i != nil {
			out = append(out, i)
		} else {
			delete(b, h)
			delete(ti.reverse, h)
		}
	}
	if len(b) == 0 && b != nil {
		m.markStale(idx, key)
	}
	sort.Slice(out, func(x, y int) bool { return out[x].Label() < out[y].Label() })
	m.tick()
	return out, nil
}

// Reset drops every index and pending buffer, keeping the declared key
// tuples. Used when loading a fresh population.
func (m *Manager) Reset() {
	for _, ti := range m.types {
		for _, idx := range ti.indexes {
			idx.buckets = make(map[string]bucket)
		}
		ti.reverse = make(map[handle]map[string]string)
		ti.pending = nil
	}
	m.stale = nil
	m.ops = 0
}

func (m *Manager) insert(ti *typeIndex, h handle, i *graph.Instance) {
	keys := make(map[string]string, len(ti.indexes))
	for tk, idx := range ti.indexes {
		key, ok := keyValues(ti.typ, i, idx.tuple)
		if !ok {
			continue // a key attribute is unset; not indexable under this tuple
		}
		b := idx.buckets[key]
		if b == nil {
			b = make(bucket)
			idx.buckets[key] = b
		}
		b[h] = struct{}{}
		keys[tk] = key
	}
	ti.reverse[h] = keys
}

func (m *Manager) remove(ti *typeIndex, h handle) {
	for tk, key := range ti.reverse[h] {
		idx := ti.indexes[tk]
		if b := idx.buckets[key]; b != nil {
			delete(b, h)
			if len(b) == 0 {
				m.markStale(idx, key)
			}
		}
	}
	delete(ti.reverse, h)
}

func keyValues(t *compiler.EntityType, i *graph.Instance, tuple []string) (string, bool) {
	parts := make([]string, 0, len(tuple))
	for _, name := range tuple {
		a, ok := t.Attribute(name)
		if !ok {
			return "", false
		}
		v := i.Get(name)
		if v == nil {
			return "", false
		}
		parts = append(parts, a.UniqueKey(a.Kind.Serialize(v)))
	}
	return strings.Join(parts, keySep), true
}

// markStale records a possibly-empty bucket for the next sweep instead
// of deleting it inline, trading bounded memory slack for cheaper
// per-operation cost.
func (m *Manager) markStale(idx *keyIndex, key string) {
	m.stale = append(m.stale, staleRef{idx: idx, key: key})
	if len(m.stale) > maxStale {
		m.sweep()
	}
}

func (m *Manager) tick() {
	m.ops++
	if m.ops%sweepEvery == 0 {
		m.sweep()
	}
}

func (m *Manager) sweep() {
	for _, s := range m.stale {
		if b, ok := s.idx.buckets[s.key]; ok && len(b) == 0 {
			delete(s.idx.buckets, s.key)
		}
	}
	m.stale = m.stale[:0]
}
