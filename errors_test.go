package typegraph_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/typegraph/typegraph"
)

func TestAttributeError(t *testing.T) {
	t.Parallel()

	err := typegraph.NewAttributeError("Compound", "mass", "must be >= 0")
	assert.Equal(t, "typegraph: Compound.mass: must be >= 0", err.Error())

	err.Add("value is required")
	assert.Equal(t, "typegraph: Compound.mass: must be >= 0; value is required", err.Error())

	assert.True(t, typegraph.IsAttributeError(err))
	assert.True(t, typegraph.IsAttributeError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, typegraph.IsAttributeError(errors.New("other error")))
	assert.False(t, typegraph.IsAttributeError(nil))
}

func TestEntityError(t *testing.T) {
	t.Parallel()

	err := typegraph.NewEntityError("Compound", "water")
	assert.True(t, err.Empty())

	err.Append(typegraph.NewAttributeError("Compound", "mass", "missing value"))
	err.Uniqueness = append(err.Uniqueness, `"formula" value "H2O" is not unique`)
	assert.False(t, err.Empty())
	assert.Equal(t, "typegraph: Compound[water] invalid:\n  mass: missing value\n  \"formula\" value \"H2O\" is not unique", err.Error())

	assert.True(t, typegraph.IsEntityError(err))
	assert.True(t, typegraph.IsEntityError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, typegraph.IsEntityError(nil))

	// Population-wide errors carry no instance identity.
	pop := typegraph.NewEntityError("Compound", "")
	assert.Equal(t, "typegraph: Compound invalid:", pop.Error())
}

func TestExpressionError(t *testing.T) {
	t.Parallel()

	err := typegraph.NewExpressionError("x + 1", typegraph.ExprAmbiguity, "x names two instances")
	assert.Equal(t, `typegraph: ambiguity error in "x + 1": x names two instances`, err.Error())
	assert.True(t, typegraph.IsExpressionError(err))

	// Only ambiguity failures match the sentinel.
	assert.True(t, errors.Is(err, typegraph.ErrAmbiguous))
	lexErr := typegraph.NewExpressionError("$", typegraph.ExprLexical, "invalid character")
	assert.False(t, errors.Is(lexErr, typegraph.ErrAmbiguous))
}

func TestExpressionErrorKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lexical", typegraph.ExprLexical.String())
	assert.Equal(t, "ambiguity", typegraph.ExprAmbiguity.String())
	assert.Equal(t, "undefined", typegraph.ExprUndefined.String())
	assert.Equal(t, "evaluation", typegraph.ExprEval.String())
}

func TestConflictError(t *testing.T) {
	t.Parallel()

	err := typegraph.NewConflictError("Unit", "controller", "slot already holds c1")
	assert.Equal(t, "typegraph: Unit.controller: slot already holds c1", err.Error())

	assert.True(t, errors.Is(err, typegraph.ErrConflict))
	assert.True(t, typegraph.IsConflict(err))
	assert.True(t, typegraph.IsConflict(fmt.Errorf("wrapper: %w", err)))
	assert.True(t, typegraph.IsConflict(typegraph.ErrConflict))
	assert.False(t, typegraph.IsConflict(errors.New("other error")))
	assert.False(t, typegraph.IsConflict(nil))
}
