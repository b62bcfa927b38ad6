package codec_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/codec"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
	"github.com/typegraph/typegraph/schema/attr"
	"github.com/typegraph/typegraph/schema/mixin"
	"github.com/typegraph/typegraph/schema/rel"
)

type Plant struct{ typegraph.Schema }

func (Plant) Mixin() []typegraph.Mixin { return []typegraph.Mixin{mixin.Identified{}} }

func (Plant) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{attr.Float("capacity").Optional()}
}

func (Plant) Relations() []typegraph.Relation {
	return []typegraph.Relation{rel.To("units", "Unit").Ref("plant").RevUnique()}
}

type Unit struct{ typegraph.Schema }

func (Unit) Mixin() []typegraph.Mixin { return []typegraph.Mixin{mixin.Identified{}} }

func (Unit) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{attr.Float("duty").Optional()}
}

func compile(t *testing.T) *compiler.Graph {
	t.Helper()
	g, err := compiler.Compile(Plant{}, Unit{})
	require.NoError(t, err)
	return g
}

func buildPopulation(t *testing.T, g *compiler.Graph) []*graph.Instance {
	t.Helper()
	plant, _ := g.Type("Plant")
	unit, _ := g.Type("Unit")
	p, err := graph.NewWith(plant, map[string]any{"id": "site_a", "capacity": 100.0})
	require.NoError(t, err)
	u1, err := graph.NewWith(unit, map[string]any{"id": "r1", "duty": 5.0})
	require.NoError(t, err)
	u2, err := graph.NewWith(unit, map[string]any{"id": "r2"})
	require.NoError(t, err)
	require.NoError(t, p.RelatedAll("units").Append(u1))
	require.NoError(t, p.RelatedAll("units").Append(u2))
	return []*graph.Instance{p, u1, u2}
}

func TestEncode(t *testing.T) {
	t.Parallel()
	g := compile(t)
	tree, err := codec.Encode(buildPopulation(t, g))
	require.NoError(t, err)

	plants, ok := tree["Plant"].([]any)
	require.True(t, ok)
	require.Len(t, plants, 1)
	want := map[string]any{
		"id":       "site_a",
		"capacity": 100.0,
		// Relationships encode as primary references.
		"units": []any{"r1", "r2"},
	}
	assert.Empty(t, cmp.Diff(want, plants[0]))
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	g := compile(t)
	pop := buildPopulation(t, g)

	data, err := codec.MarshalJSON(pop)
	require.NoError(t, err)
	back, err := codec.UnmarshalJSON(g, data)
	require.NoError(t, err)
	require.Len(t, back, len(pop))

	assert.True(t, graph.Equal(pop[0], findByLabel(t, back, "site_a")))
}

func TestMsgpackRoundTrip(t *testing.T) {
	t.Parallel()
	g := compile(t)
	pop := buildPopulation(t, g)

	data, err := codec.MarshalMsgpack(pop)
	require.NoError(t, err)
	back, err := codec.UnmarshalMsgpack(g, data)
	require.NoError(t, err)
	assert.True(t, graph.Equal(pop[0], findByLabel(t, back, "site_a")))
}

func findByLabel(t *testing.T, insts []*graph.Instance, label string) *graph.Instance {
	t.Helper()
	for _, i := range insts {
		if i.Label() == label {
			return i
		}
	}
	t.Fatalf("no instance labeled %q", label)
	return nil
}

func TestDecodeUnknownReference(t *testing.T) {
	t.Parallel()
	g := compile(t)
	_, err := codec.Decode(g, map[string]any{
		"Plant": []any{map[string]any{"id": "site_a", "units": []any{"ghost"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches no")
}

func TestDecodeAmbiguousReference(t *testing.T) {
	t.Parallel()
	g := compile(t)
	_, err := codec.Decode(g, map[string]any{
		"Plant": []any{map[string]any{"id": "site_a", "units": []any{"r1"}}},
		"Unit": []any{
			map[string]any{"id": "r1"},
			map[string]any{"id": "r1"},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, typegraph.ErrAmbiguous))
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	g := compile(t)

	_, err := codec.Decode(g, map[string]any{"Ghost": []any{}})
	assert.Contains(t, err.Error(), "unknown entity type")

	_, err = codec.Decode(g, map[string]any{
		"Unit": []any{map[string]any{"id": "r1", "mystery": 1}},
	})
	assert.Contains(t, err.Error(), "mystery")

	_, err = codec.Decode(g, map[string]any{
		"Unit": []any{map[string]any{"id": "r1", "duty": "not a number"}},
	})
	assert.True(t, typegraph.IsAttributeError(err))
}
