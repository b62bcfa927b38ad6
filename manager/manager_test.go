package manager_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
	"github.com/typegraph/typegraph/manager"
	"github.com/typegraph/typegraph/schema/attr"
	"github.com/typegraph/typegraph/schema/index"
)

type Sample struct{ typegraph.Schema }

func (Sample) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.Identifier("id").Primary().Unique(),
		attr.String("species").Optional(),
		attr.String("strain").Optional(),
	}
}

func (Sample) Indexes() []typegraph.Index {
	return []typegraph.Index{
		index.Fields("id"),
		index.Fields("species", "strain"),
	}
}

func setup(t *testing.T) (*compiler.Graph, *compiler.EntityType, *manager.Manager) {
	t.Helper()
	g, err := compiler.Compile(Sample{})
	require.NoError(t, err)
	et, ok := g.Type("Sample")
	require.True(t, ok)
	return g, et, manager.New(g)
}

func newSample(t *testing.T, et *compiler.EntityType, id, species, strain string) *graph.Instance {
	t.Helper()
	i, err := graph.NewWith(et, map[string]any{
		"id": id, "species": species, "strain": strain,
	})
	require.NoError(t, err)
	return i
}

func TestLookup(t *testing.T) {
	t.Parallel()
	_, et, m := setup(t)

	s1 := newSample(t, et, "s1", "coli", "k12")
	s2 := newSample(t, et, "s2", "coli", "b21")
	require.NoError(t, m.Track(s1))
	require.NoError(t, m.Track(s2))

	got, err := m.Lookup(et, map[string]any{"id": "s1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, s1, got[0])

	// Multi-attribute keys match regardless of query map order.
	got, err = m.Lookup(et, map[string]any{"strain": "b21", "species": "coli"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, s2, got[0])

	got, err = m.Lookup(et, map[string]any{"id": "missing"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLookupBadKey(t *testing.T) {
	t.Parallel()
	_, et, m := setup(t)

	// The query's attribute set must exactly equal a declared key tuple;
	// subsets and supersets are usage errors, not scans.
	_, err := m.Lookup(et, map[string]any{"species": "coli"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, typegraph.ErrBadLookup))

	_, err = m.Lookup(et, map[string]any{"id": "s1", "species": "coli"})
	assert.True(t, errors.Is(err, typegraph.ErrBadLookup))
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	_, et, m := setup(t)

	s := newSample(t, et, "s1", "coli", "k12")
	require.NoError(t, m.Track(s))
	m.Flush()

	require.NoError(t, s.Set("strain", "b21"))
	require.NoError(t, m.Update(s))

	got, err := m.Lookup(et, map[string]any{"species": "coli", "strain": "k12"})
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = m.Lookup(et, map[string]any{"species": "coli", "strain": "b21"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, s, got[0])
}

func TestReset(t *testing.T) {
	t.Parallel()
	_, et, m := setup(t)

	require.NoError(t, m.Track(newSample(t, et, "s1", "coli", "k12")))
	m.Reset()
	got, err := m.Lookup(et, map[string]any{"id": "s1"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNonOwning(t *testing.T) {
	_, et, m := setup(t)

	s1 := newSample(t, et, "s1", "coli", "k12")
	require.NoError(t, m.Track(s1))
	require.NoError(t, m.Track(newSample(t, et, "s2", "coli", "b21")))
	m.Flush()

	// The registry holds only weak handles; once the only strong
	// reference is gone the instance must stop appearing in lookups.
	runtime.GC()
	runtime.GC()

	got, err := m.Lookup(et, map[string]any{"id": "s1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, s1, got[0])

	got, err = m.Lookup(et, map[string]any{"id": "s2"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnknownType(t *testing.T) {
	t.Parallel()
	g2, err := compiler.Compile(Sample{})
	require.NoError(t, err)
	other, _ := g2.Type("Sample")

	_, _, m := setup(t)
	_, err = m.Lookup(other, map[string]any{"id": "s1"})
	assert.Error(t, err)
}
