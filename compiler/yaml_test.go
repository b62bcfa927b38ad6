package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/schema/rel"
)

const schemaYAML = `
types:
  - name: Plant
    orientation: column-major
    fields:
      - {name: id, kind: identifier, primary: true, unique: true}
      - {name: capacity, kind: float, min: 0, optional: true}
      - {name: active, kind: bool, optional: true}
    relations:
      - {name: units, type: Unit, ref: plant, rev_unique: true}
    indexes:
      - {fields: [id]}
  - name: Unit
    fields:
      - {name: id, kind: identifier, primary: true, unique: true}
      - {name: kind, kind: enum, values: [reactor, column, pump]}
      - {name: duty, kind: float, optional: true}
`

func TestCompileYAML(t *testing.T) {
	t.Parallel()
	g, err := compiler.CompileYAML(strings.NewReader(schemaYAML))
	require.NoError(t, err)

	plant, ok := g.Type("Plant")
	require.True(t, ok)
	assert.Equal(t, typegraph.ColumnMajor, plant.Orientation)
	require.NotNil(t, plant.Primary)
	assert.Equal(t, "id", plant.Primary.Name)
	assert.Equal(t, [][]string{{"id"}}, plant.IndexKeys)

	units, ok := plant.Relationship("units")
	require.True(t, ok)
	assert.Equal(t, rel.OneToMany, units.Class)
	assert.Equal(t, "plant", units.Reverse)

	unit, ok := g.Type("Unit")
	require.True(t, ok)
	kind, ok := unit.Attribute("kind")
	require.True(t, ok)
	assert.NoError(t, kind.Kind.Validate("reactor"))
	assert.Error(t, kind.Kind.Validate("turbine"))

	back, ok := unit.Relationship("plant")
	require.True(t, ok)
	assert.Equal(t, rel.ManyToOne, back.Class)
}

func TestLoadYAMLErrors(t *testing.T) {
	t.Parallel()
	_, err := compiler.LoadYAML(strings.NewReader(`types: []`))
	assert.ErrorContains(t, err, "no types")

	// Unknown keys are rejected so typos fail loudly.
	_, err = compiler.LoadYAML(strings.NewReader(`
types:
  - name: Plant
    fields:
      - {name: id, kind: identifier, primry: true}
`))
	assert.Error(t, err)

	_, err = compiler.LoadYAML(strings.NewReader(`
types:
  - name: Plant
    fields:
      - {name: id, kind: mystery}
`))
	assert.ErrorContains(t, err, "unknown kind")

	_, err = compiler.LoadYAML(strings.NewReader(`
types:
  - name: Plant
    orientation: diagonal
`))
	assert.ErrorContains(t, err, "unknown orientation")
}
