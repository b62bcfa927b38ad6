package rel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/typegraph/typegraph/schema/rel"
)

func TestBuilder(t *testing.T) {
	t.Parallel()
	d := rel.To("parts", "Part").Ref("compound").Comment("comment").Descriptor()
	assert.NoError(t, d.Err)
	assert.Equal(t, "parts", d.Name)
	assert.Equal(t, "Part", d.Type)
	assert.Equal(t, "compound", d.RefName)
	assert.Equal(t, "comment", d.Comment)
	assert.False(t, d.Inverse)
	assert.Equal(t, rel.Unbounded, d.MaxRelated)
	assert.Equal(t, rel.Unbounded, d.MaxRelatedRev)

	d = rel.From("compound", "Compound").Ref("parts").Unique().Descriptor()
	assert.NoError(t, d.Err)
	assert.True(t, d.Inverse)
	assert.True(t, d.Unique)
	assert.Equal(t, 1, d.MaxRelated)

	d = rel.To("owner", "User").Unique().RevUnique().Required().Descriptor()
	assert.NoError(t, d.Err)
	assert.Equal(t, 1, d.MaxRelated)
	assert.Equal(t, 1, d.MaxRelatedRev)
	assert.Equal(t, 1, d.MinRelated)
	assert.True(t, d.Required)
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()
	assert.Error(t, rel.To("", "Part").Descriptor().Err)
	assert.Error(t, rel.To("parts", "").Descriptor().Err)
	assert.Error(t, rel.From("compound", "Compound").Backref().Descriptor().Err)
	assert.Error(t, rel.To("parts", "Part").Ref("compound").Backref().Descriptor().Err)
}

func TestClass(t *testing.T) {
	t.Parallel()
	tests := []struct {
		class         rel.Class
		toOne, revOne bool
		str           string
	}{
		{rel.ManyToMany, false, false, "M2M"},
		{rel.OneToMany, false, true, "O2M"},
		{rel.ManyToOne, true, false, "M2O"},
		{rel.OneToOne, true, true, "O2O"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.toOne, tt.class.ToOne(), tt.str)
		assert.Equal(t, tt.revOne, tt.class.RevOne(), tt.str)
		assert.Equal(t, tt.str, tt.class.String())
	}
}
