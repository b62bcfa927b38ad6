package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/typegraph/typegraph/schema/index"
)

func TestFields(t *testing.T) {
	t.Parallel()
	d := index.Fields("species", "strain").Descriptor()
	assert.NoError(t, d.Err)
	assert.Equal(t, []string{"species", "strain"}, d.Fields)
	assert.False(t, d.Unique)

	d = index.Fields("name", "version").Unique().Descriptor()
	assert.NoError(t, d.Err)
	assert.True(t, d.Unique)
}

func TestFieldsErrors(t *testing.T) {
	t.Parallel()
	assert.Error(t, index.Fields().Descriptor().Err)
	assert.Error(t, index.Fields("a", "").Descriptor().Err)
	assert.Error(t, index.Fields("a", "a").Descriptor().Err)
}
