// Package expr implements the expression sub-language: arithmetic over
// named instance references, parsed and disambiguated against a fixed
// set of term entity types and permitted function names, with an
// evaluator and a linear-form coefficient extractor.
package expr

import (
	"math"
	"strings"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
)

// Term binds one entity type into the expression namespace with the set
// of instance ids that may be referenced. Ids are the instances'
// serialized primary values and may contain internal whitespace; such
// ids are matched as multi-token references.
type Term struct {
	Type *compiler.EntityType
	IDs  []string

	ids map[string]bool
	// maxTokens is the longest id's word count, bounding the multi-token
	// reference lookahead.
	maxTokens int
}

func (t *Term) init() {
	t.ids = make(map[string]bool, len(t.IDs))
	t.maxTokens = 1
	for _, id := range t.IDs {
		t.ids[id] = true
		if n := len(strings.Fields(id)); n > t.maxTokens {
			t.maxTokens = n
		}
	}
}

// Context is the namespace an expression is parsed against: the term
// entity types, the permitted function names, and whether bare numeric
// literals are tagged dimensionless for a units-aware consumer.
type Context struct {
	Terms     []*Term
	Functions []string
	Units     bool

	funcs  map[string]bool
	parsed parseCache
}

// NewContext returns a Context over the given terms and functions.
func NewContext(terms []*Term, functions ...string) *Context {
	c := &Context{Terms: terms, Functions: functions}
	c.init()
	return c
}

func (c *Context) init() {
	c.funcs = make(map[string]bool, len(c.Functions))
	for _, f := range c.Functions {
		c.funcs[f] = true
	}
	for _, t := range c.Terms {
		t.init()
	}
}

// Reference identifies one instance of one term type.
type Reference struct {
	Type *compiler.EntityType
	ID   string
}

// String returns the qualified form.
func (r Reference) String() string { return r.Type.Name + "." + r.ID }

// ParsedExpression is the compiled form of one expression: the
// disambiguated token stream, the instance references it mentions, and
// the per-reference coefficients of its linear form. When the
// expression is not linear (even after algebraic normalization), every
// coefficient is NaN and Linear reports false.
type ParsedExpression struct {
	Text       string
	Tokens     []Token
	References []Reference

	// Coefficients maps every declared instance of every term type to
	// its net coefficient; instances the expression never references map
	// to 0. All values are NaN when the expression is not linear.
	Coefficients map[Reference]float64

	ctx  *Context
	root node
}

// Linear reports whether the expression reduced to a weighted sum of
// single instance references.
func (p *ParsedExpression) Linear() bool {
	for _, c := range p.Coefficients {
		return !math.IsNaN(c)
	}
	return true
}

// ParseAndValidate tokenizes, disambiguates and compiles one expression
// against the context. All lexical and resolution failures found in one
// pass are reported together in a single ExpressionError.
func ParseAndValidate(text string, ctx *Context) (*ParsedExpression, error) {
	ctx.init()
	raw, err := lex(text)
	if err != nil {
		return nil, err
	}
	toks, refs, err := resolve(text, raw, ctx)
	if err != nil {
		return nil, err
	}
	if ctx.Units {
		tagDimensionless(toks)
	}
	root, err := parse(text, toks)
	if err != nil {
		return nil, err
	}
	p := &ParsedExpression{
		Text:       text,
		Tokens:     toks,
		References: refs,
		ctx:        ctx,
		root:       root,
	}
	p.Coefficients = coefficients(p)
	return p, nil
}

// tagDimensionless marks bare numeric literals so a units-aware
// consumer treats them as dimensionless rather than unitless-unknown.
func tagDimensionless(toks []Token) {
	for n := range toks {
		if toks[n].Kind == KindNumber {
			toks[n].Dimensionless = true
		}
	}
}

func lexicalErr(text string, msgs ...string) error {
	return typegraph.NewExpressionError(text, typegraph.ExprLexical, msgs...)
}

func ambiguityErr(text string, msgs ...string) error {
	return typegraph.NewExpressionError(text, typegraph.ExprAmbiguity, msgs...)
}

func undefinedErr(text string, msgs ...string) error {
	return typegraph.NewExpressionError(text, typegraph.ExprUndefined, msgs...)
}

func evalErr(text string, msgs ...string) error {
	return typegraph.NewExpressionError(text, typegraph.ExprEval, msgs...)
}
