package attr_test

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typegraph/typegraph/schema/attr"
)

func TestString(t *testing.T) {
	t.Parallel()
	fd := attr.String("name").
		NotEmpty().
		MaxLen(10).
		Comment("comment").
		Descriptor()
	assert.Equal(t, "name", fd.Name)
	assert.Equal(t, "string", fd.Kind.Name())
	assert.Equal(t, "comment", fd.Comment)
	assert.NoError(t, fd.Err)

	v, err := fd.Kind.Clean("  hello")
	require.NoError(t, err)
	assert.Equal(t, "  hello", v)
	assert.NoError(t, fd.Kind.Validate("hello"))
	assert.Error(t, fd.Kind.Validate(""))
	assert.Error(t, fd.Kind.Validate("this is far too long"))

	v, err = fd.Kind.Clean(42)
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestStringPattern(t *testing.T) {
	t.Parallel()
	re := regexp.MustCompile(`^[A-Z]{3}$`)
	fd := attr.String("code").Match(re).Descriptor()
	require.NoError(t, fd.Err)
	assert.NoError(t, fd.Kind.Validate("ABC"))
	assert.Error(t, fd.Kind.Validate("abc"))

	fd = attr.String("code").Match(re).Match(re).Descriptor()
	assert.Error(t, fd.Err)
}

func TestIdentifier(t *testing.T) {
	t.Parallel()
	fd := attr.Identifier("id").Primary().Unique().Descriptor()
	require.NoError(t, fd.Err)
	assert.True(t, fd.Primary)
	assert.True(t, fd.Unique)

	assert.NoError(t, fd.Kind.Validate("reactor_1"))
	assert.NoError(t, fd.Kind.Validate("_x"))
	// Identifiers must not look like plain numbers, so they stay
	// unambiguous inside formulas.
	assert.Error(t, fd.Kind.Validate("123"))
	assert.Error(t, fd.Kind.Validate("1e5"))
	assert.Error(t, fd.Kind.Validate("foo bar"))
}

func TestFloat(t *testing.T) {
	t.Parallel()
	fd := attr.Float("mass").NonNegative().Descriptor()
	require.NoError(t, fd.Err)

	v, err := fd.Kind.Clean("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
	v, err = fd.Kind.Clean(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	_, err = fd.Kind.Clean("abc")
	assert.Error(t, err)

	assert.NoError(t, fd.Kind.Validate(0.0))
	assert.Error(t, fd.Kind.Validate(-1.0))
	assert.Error(t, fd.Kind.Validate(math.NaN()))
}

func TestFloatTolerantEqual(t *testing.T) {
	t.Parallel()
	fd := attr.Float("x").Descriptor()
	k := fd.Kind
	assert.True(t, k.Equal(1.0, 1.0))
	// Values within the relative tolerance compare equal; the string
	// round trip may perturb the last bits.
	assert.True(t, k.Equal(1.0, 1.0+1e-12))
	assert.False(t, k.Equal(1.0, 1.001))
	assert.True(t, k.Equal(math.NaN(), math.NaN()))

	loose := attr.Float("x").Tolerance(1e-2).Descriptor()
	assert.True(t, loose.Kind.Equal(100.0, 100.5))
	assert.False(t, loose.Kind.Equal(100.0, 102.0))
}

func TestFloatNaNPolicy(t *testing.T) {
	t.Parallel()
	fd := attr.Float("x").AllowNaN().Descriptor()
	assert.NoError(t, fd.Kind.Validate(math.NaN()))
}

func TestFloatRange(t *testing.T) {
	t.Parallel()
	fd := attr.Float("x").Range(2, 1).Descriptor()
	assert.Error(t, fd.Err)
}

func TestInt(t *testing.T) {
	t.Parallel()
	fd := attr.Int("count").Min(0).Max(100).Descriptor()
	require.NoError(t, fd.Err)

	v, err := fd.Kind.Clean("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	v, err = fd.Kind.Clean(42.0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	_, err = fd.Kind.Clean(42.5)
	assert.Error(t, err)

	assert.NoError(t, fd.Kind.Validate(int64(50)))
	assert.Error(t, fd.Kind.Validate(int64(101)))
}

func TestBool(t *testing.T) {
	t.Parallel()
	fd := attr.Bool("active").Default(true).Descriptor()
	require.NoError(t, fd.Err)
	assert.Equal(t, true, fd.Default)

	for raw, want := range map[string]bool{
		"true": true, "1": true, "false": false, "0": false,
	} {
		v, err := fd.Kind.Clean(raw)
		require.NoError(t, err)
		assert.Equal(t, want, v, raw)
	}
	_, err := fd.Kind.Clean("maybe")
	assert.Error(t, err)
}

func TestEnum(t *testing.T) {
	t.Parallel()
	fd := attr.Enum("status").Values("draft", "final").Descriptor()
	require.NoError(t, fd.Err)
	assert.NoError(t, fd.Kind.Validate("draft"))
	assert.Error(t, fd.Kind.Validate("pending"))

	assert.Error(t, attr.Enum("status").Descriptor().Err)
	assert.Error(t, attr.Enum("status").Values("a", "a").Descriptor().Err)
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()
	fd := attr.Time("created").Descriptor()
	require.NoError(t, fd.Err)
	v, err := fd.Kind.Clean("2024-03-01T12:30:00Z")
	require.NoError(t, err)
	s := fd.Kind.Serialize(v)
	back, err := fd.Kind.Deserialize(s)
	require.NoError(t, err)
	assert.True(t, fd.Kind.Equal(v, back))
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()
	fd := attr.Float("x").Descriptor()
	v, err := fd.Kind.Clean(1.0 / 3.0)
	require.NoError(t, err)
	back, err := fd.Kind.Deserialize(fd.Kind.Serialize(v))
	require.NoError(t, err)
	assert.True(t, fd.Kind.Equal(v, back))
}

func TestUniqueCaseInsensitive(t *testing.T) {
	t.Parallel()
	fd := attr.String("name").UniqueCaseInsensitive().Descriptor()
	require.NoError(t, fd.Err)
	assert.True(t, fd.Unique)
	assert.True(t, fd.UniqueFold)
	assert.Equal(t, attr.Fold("Alpha"), attr.Fold("ALPHA"))
}
