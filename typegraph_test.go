package typegraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/schema/mixin"
)

// TestSchemaDefaultMethods tests the default implementations of Schema
// methods.
func TestSchemaDefaultMethods(t *testing.T) {
	t.Parallel()

	type TestSchema struct {
		typegraph.Schema
	}

	s := TestSchema{}
	assert.Nil(t, s.Fields())
	assert.Nil(t, s.Relations())
	assert.Nil(t, s.Indexes())
	assert.Nil(t, s.Mixin())

	var _ typegraph.Interface = s
}

func TestMixinDefaultMethods(t *testing.T) {
	t.Parallel()

	type TestMixin struct {
		mixin.Schema
	}

	m := TestMixin{}
	assert.Nil(t, m.Fields())
	assert.Nil(t, m.Relations())
	assert.Nil(t, m.Indexes())

	var _ typegraph.Mixin = m
}

func TestBuiltinMixins(t *testing.T) {
	t.Parallel()

	id := mixin.Identified{}.Fields()
	assert.Len(t, id, 1)
	d := id[0].Descriptor()
	assert.Equal(t, "id", d.Name)
	assert.True(t, d.Primary)
	assert.True(t, d.Unique)

	named := mixin.Named{}.Fields()
	assert.Len(t, named, 1)
	assert.Equal(t, "name", named[0].Descriptor().Name)

	annotated := mixin.Annotated{}.Fields()
	assert.Len(t, annotated, 1)
	assert.True(t, annotated[0].Descriptor().Optional)

	stamped := mixin.Timestamped{}.Fields()
	assert.Len(t, stamped, 2)
	assert.Equal(t, "created_at", stamped[0].Descriptor().Name)
	assert.Equal(t, "updated_at", stamped[1].Descriptor().Name)
}

func TestOrientationString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "row-major", typegraph.RowMajor.String())
	assert.Equal(t, "column-major", typegraph.ColumnMajor.String())
	assert.Equal(t, "single-cell", typegraph.SingleCell.String())
	assert.Equal(t, "multi-cell", typegraph.MultiCell.String())
	assert.Equal(t, "unknown", typegraph.Orientation(42).String())
}
