package graph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/graph"
	"github.com/typegraph/typegraph/schema/attr"
	"github.com/typegraph/typegraph/schema/index"
	"github.com/typegraph/typegraph/schema/mixin"
	"github.com/typegraph/typegraph/schema/rel"
)

// The test schema models a process plant: a Plant owns Units (O2M), a
// Unit may have exactly one Controller (O2O), and Units carry Tags
// (M2M).

type Plant struct{ typegraph.Schema }

func (Plant) Mixin() []typegraph.Mixin { return []typegraph.Mixin{mixin.Identified{}} }

func (Plant) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.Float("capacity").NonNegative().Optional(),
	}
}

func (Plant) Relations() []typegraph.Relation {
	return []typegraph.Relation{
		rel.To("units", "Unit").Ref("plant").RevUnique(),
	}
}

type Unit struct{ typegraph.Schema }

func (Unit) Mixin() []typegraph.Mixin { return []typegraph.Mixin{mixin.Identified{}} }

func (Unit) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.Float("duty").Optional(),
	}
}

func (Unit) Relations() []typegraph.Relation {
	return []typegraph.Relation{
		rel.To("controller", "Controller").Unique().RevUnique().Ref("unit"),
		rel.To("tags", "Tag").Ref("units"),
	}
}

type Controller struct{ typegraph.Schema }

func (Controller) Mixin() []typegraph.Mixin { return []typegraph.Mixin{mixin.Identified{}} }

type Tag struct{ typegraph.Schema }

func (Tag) Mixin() []typegraph.Mixin { return []typegraph.Mixin{mixin.Identified{}} }

func (Tag) Fields() []typegraph.Attribute {
	return []typegraph.Attribute{
		attr.String("scheme").Optional(),
		attr.String("label").Optional(),
	}
}

func (Tag) Indexes() []typegraph.Index {
	return []typegraph.Index{
		index.Fields("scheme", "label").Unique(),
	}
}

func compile(t *testing.T) *compiler.Graph {
	t.Helper()
	g, err := compiler.Compile(Plant{}, Unit{}, Controller{}, Tag{})
	require.NoError(t, err)
	return g
}

func mustType(t *testing.T, g *compiler.Graph, name string) *compiler.EntityType {
	t.Helper()
	et, ok := g.Type(name)
	require.True(t, ok, name)
	return et
}

func newInst(t *testing.T, et *compiler.EntityType, id string) *graph.Instance {
	t.Helper()
	i, err := graph.NewWith(et, map[string]any{"id": id})
	require.NoError(t, err)
	return i
}

func TestSetGet(t *testing.T) {
	t.Parallel()
	g := compile(t)
	u := newInst(t, mustType(t, g, "Unit"), "reactor_1")

	require.NoError(t, u.Set("duty", "12.5"))
	assert.Equal(t, 12.5, u.Get("duty"))
	assert.Equal(t, "reactor_1", u.Label())

	// nil unsets.
	require.NoError(t, u.Set("duty", nil))
	assert.Nil(t, u.Get("duty"))

	assert.Error(t, u.Set("missing", 1))
	assert.Error(t, u.Set("tags", 1)) // relationship, not a literal
	err := u.Set("duty", "not a number")
	assert.True(t, typegraph.IsAttributeError(err))
}

func TestOneToManyReciprocity(t *testing.T) {
	t.Parallel()
	g := compile(t)
	plant := mustType(t, g, "Plant")
	unit := mustType(t, g, "Unit")

	p := newInst(t, plant, "site_a")
	u := newInst(t, unit, "reactor_1")

	require.NoError(t, p.RelatedAll("units").Append(u))
	assert.Same(t, p, u.Related("plant"))

	// Appending to another plant silently reparents.
	p2 := newInst(t, plant, "site_b")
	require.NoError(t, p2.RelatedAll("units").Append(u))
	assert.Same(t, p2, u.Related("plant"))
	assert.False(t, p.RelatedAll("units").Contains(u))

	// Setting the singular side updates the collections.
	require.NoError(t, u.SetRelated("plant", p))
	assert.True(t, p.RelatedAll("units").Contains(u))
	assert.False(t, p2.RelatedAll("units").Contains(u))

	// Removing from the collection clears the slot.
	assert.True(t, p.RelatedAll("units").Remove(u))
	assert.Nil(t, u.Related("plant"))
}

func TestOneToOneConflict(t *testing.T) {
	t.Parallel()
	g := compile(t)
	unit := mustType(t, g, "Unit")
	ctrl := mustType(t, g, "Controller")

	u1 := newInst(t, unit, "reactor_1")
	u2 := newInst(t, unit, "reactor_2")
	c := newInst(t, ctrl, "plc_1")

	require.NoError(t, u1.SetRelated("controller", c))
	assert.Same(t, u1, c.Related("unit"))

	// The controller is exclusively linked; stealing it is rejected.
	err := u2.SetRelated("controller", c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, typegraph.ErrConflict))
	assert.Same(t, u1, c.Related("unit"))

	// After clearing the edge the assignment succeeds.
	require.NoError(t, u1.SetRelated("controller", nil))
	assert.Nil(t, c.Related("unit"))
	require.NoError(t, u2.SetRelated("controller", c))
	assert.Same(t, u2, c.Related("unit"))
}

func TestManyToManyReciprocity(t *testing.T) {
	t.Parallel()
	g := compile(t)
	u := newInst(t, mustType(t, g, "Unit"), "reactor_1")
	tag := newInst(t, mustType(t, g, "Tag"), "exothermic")

	require.NoError(t, u.RelatedAll("tags").Append(tag))
	assert.True(t, tag.RelatedAll("units").Contains(u))

	// Idempotent.
	require.NoError(t, u.RelatedAll("tags").Append(tag))
	assert.Equal(t, 1, u.RelatedAll("tags").Len())

	assert.True(t, tag.RelatedAll("units").Remove(u))
	assert.False(t, u.RelatedAll("tags").Contains(tag))
}

// buildPlant constructs a small plant graph; unit insertion order is
// controlled by the caller.
func buildPlant(t *testing.T, g *compiler.Graph, ids ...string) *graph.Instance {
	t.Helper()
	p := newInst(t, mustType(t, g, "Plant"), "site_a")
	require.NoError(t, p.Set("capacity", 100.0))
	for _, id := range ids {
		u := newInst(t, mustType(t, g, "Unit"), id)
		require.NoError(t, p.RelatedAll("units").Append(u))
	}
	return p
}

func TestCanonicalizeOrderIndependence(t *testing.T) {
	t.Parallel()
	g := compile(t)
	a := buildPlant(t, g, "r1", "r2", "r3")
	b := buildPlant(t, g, "r3", "r1", "r2")

	graph.Canonicalize(a)
	graph.Canonicalize(b)
	for n := 0; n < a.RelatedAll("units").Len(); n++ {
		assert.Equal(t, a.RelatedAll("units").At(n).Label(), b.RelatedAll("units").At(n).Label())
	}

	// Idempotent.
	before := a.RelatedAll("units").All()
	graph.Canonicalize(a)
	assert.Equal(t, before, a.RelatedAll("units").All())
}

func TestEqualAndCopy(t *testing.T) {
	t.Parallel()
	g := compile(t)
	p := buildPlant(t, g, "r1", "r2")
	u := p.RelatedAll("units").At(0)
	c := newInst(t, mustType(t, g, "Controller"), "plc_1")
	require.NoError(t, u.SetRelated("controller", c))
	p.Provenance = &graph.Provenance{File: "plant.xlsx", Sheet: "site_a", Row: 2}

	cp := graph.Copy(p)
	assert.NotSame(t, p, cp)
	assert.True(t, graph.Equal(p, cp))
	require.NotNil(t, cp.Provenance)
	assert.Equal(t, "plant.xlsx", cp.Provenance.File)

	// The copy is fully detached: mutating it does not affect the
	// original.
	require.NoError(t, cp.Set("capacity", 50.0))
	assert.False(t, graph.Equal(p, cp))
	assert.Equal(t, 100.0, p.Get("capacity"))
}

func TestEqualTolerance(t *testing.T) {
	t.Parallel()
	g := compile(t)
	a := buildPlant(t, g, "r1")
	b := buildPlant(t, g, "r1")
	require.NoError(t, a.Set("capacity", 100.0))
	require.NoError(t, b.Set("capacity", 100.0+1e-10))
	assert.True(t, graph.Equal(a, b))

	require.NoError(t, b.Set("capacity", 101.0))
	assert.False(t, graph.Equal(a, b))
}

func TestDiff(t *testing.T) {
	t.Parallel()
	g := compile(t)
	a := buildPlant(t, g, "r1", "r2")
	b := buildPlant(t, g, "r1", "r2")
	assert.True(t, graph.Diff(a, b).Empty())

	// Literal mismatch surfaces as a leaf message.
	require.NoError(t, b.RelatedAll("units").At(0).Set("duty", 5.0))
	rep := graph.Diff(a, b)
	require.False(t, rep.Empty())
	assert.Contains(t, rep.String(), "duty")

	// One-sided collection elements are reported unmatched.
	c := buildPlant(t, g, "r1")
	rep = graph.Diff(a, c)
	assert.Contains(t, rep.String(), "only on left: r2")
}

func TestMerge(t *testing.T) {
	t.Parallel()
	g := compile(t)

	// Left graph knows r1's duty; right graph adds r2 and a controller
	// on r1.
	a := buildPlant(t, g, "r1")
	require.NoError(t, a.RelatedAll("units").At(0).Set("duty", 5.0))

	b := buildPlant(t, g, "r1", "r2")
	ctrl := newInst(t, mustType(t, g, "Controller"), "plc_1")
	var br1 *graph.Instance
	for _, u := range b.RelatedAll("units").All() {
		if u.Label() == "r1" {
			br1 = u
		}
	}
	require.NotNil(t, br1)
	require.NoError(t, br1.SetRelated("controller", ctrl))

	require.NoError(t, graph.Merge(a, b))
	units := a.RelatedAll("units")
	assert.Equal(t, 2, units.Len())
	var ar1 *graph.Instance
	for _, u := range units.All() {
		if u.Label() == "r1" {
			ar1 = u
		}
	}
	require.NotNil(t, ar1)
	assert.Equal(t, 5.0, ar1.Get("duty"))
	require.NotNil(t, ar1.Related("controller"))
	assert.Equal(t, "plc_1", ar1.Related("controller").Label())
}

func TestMergeCommutative(t *testing.T) {
	t.Parallel()
	g := compile(t)
	build := func() (*graph.Instance, *graph.Instance) {
		a := buildPlant(t, g, "r1")
		require.NoError(t, a.RelatedAll("units").At(0).Set("duty", 5.0))
		b := buildPlant(t, g, "r1", "r2")
		return a, b
	}
	a1, b1 := build()
	require.NoError(t, graph.Merge(a1, b1))
	a2, b2 := build()
	require.NoError(t, graph.Merge(b2, a2))
	assert.True(t, graph.Equal(a1, b2))
}

func TestMergeLiteralConflict(t *testing.T) {
	t.Parallel()
	g := compile(t)
	a := buildPlant(t, g, "r1")
	b := buildPlant(t, g, "r1")
	require.NoError(t, a.RelatedAll("units").At(0).Set("duty", 5.0))
	require.NoError(t, b.RelatedAll("units").At(0).Set("duty", 7.0))

	err := graph.Merge(a, b)
	require.Error(t, err)
	assert.True(t, typegraph.IsAttributeError(err))
}

func TestMergeSlotConflict(t *testing.T) {
	t.Parallel()
	g := compile(t)
	ctrlType := mustType(t, g, "Controller")

	a := buildPlant(t, g, "r1")
	require.NoError(t, a.RelatedAll("units").At(0).SetRelated("controller", newInst(t, ctrlType, "plc_1")))
	b := buildPlant(t, g, "r1")
	require.NoError(t, b.RelatedAll("units").At(0).SetRelated("controller", newInst(t, ctrlType, "plc_2")))

	err := graph.Merge(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, typegraph.ErrConflict))
}

func TestCut(t *testing.T) {
	t.Parallel()
	g := compile(t)
	p := buildPlant(t, g, "r1", "r2")
	u := p.RelatedAll("units").At(0)
	tag := newInst(t, mustType(t, g, "Tag"), "exothermic")
	require.NoError(t, u.RelatedAll("tags").Append(tag))

	members := graph.Cut(p, "units")
	assert.Len(t, members, 3)
	assert.Same(t, p, members[0])

	// Edges to non-members are severed on both sides; member edges kept.
	assert.Equal(t, 0, u.RelatedAll("tags").Len())
	assert.False(t, tag.RelatedAll("units").Contains(u))
	assert.Same(t, p, u.Related("plant"))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	g := compile(t)
	unit := mustType(t, g, "Unit")

	u := newInst(t, unit, "reactor_1")
	assert.NoError(t, graph.Validate(u))

	// Missing required value.
	bare := graph.New(unit)
	err := graph.Validate(bare)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing value")

	// Strict validation catches stored values Clean admitted.
	neg := newInst(t, mustType(t, g, "Plant"), "site_a")
	require.NoError(t, neg.Set("capacity", -1))
	err = graph.Validate(neg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
}

func TestValidateUniqueness(t *testing.T) {
	t.Parallel()
	g := compile(t)
	unit := mustType(t, g, "Unit")

	u1 := newInst(t, unit, "reactor_1")
	u2 := newInst(t, unit, "reactor_1")
	err := graph.Validate(u1, u2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not unique")

	u3 := newInst(t, unit, "reactor_2")
	assert.NoError(t, graph.Validate(u1, u3))
}

func TestValidateUniqueTogether(t *testing.T) {
	t.Parallel()
	g := compile(t)
	tag := mustType(t, g, "Tag")

	t1 := newInst(t, tag, "t1")
	require.NoError(t, t1.Set("scheme", "color"))
	require.NoError(t, t1.Set("label", "red"))
	t2 := newInst(t, tag, "t2")
	require.NoError(t, t2.Set("scheme", "color"))
	require.NoError(t, t2.Set("label", "red"))
	err := graph.Validate(t1, t2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not unique_together")

	// An unset tuple member exempts the instance from the check.
	t3 := newInst(t, tag, "t3")
	require.NoError(t, t3.Set("label", "red"))
	assert.NoError(t, graph.Validate(t1, t3))
}
