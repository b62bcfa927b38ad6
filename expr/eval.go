package expr

import (
	"fmt"
	"math"

	"github.com/typegraph/typegraph/compiler"
)

// node is one syntax-tree node of a compiled expression.
type node interface{ isNode() }

type numNode struct {
	v             float64
	dimensionless bool
}

type refNode struct{ ref Reference }

// unary +/-
type unaryNode struct {
	op string
	x  node
}

type binNode struct {
	op   string // + - * / ** or a comparison
	l, r node
}

type callNode struct {
	fn   string
	args []node
}

func (numNode) isNode()   {}
func (refNode) isNode()   {}
func (unaryNode) isNode() {}
func (binNode) isNode()   {}
func (callNode) isNode()  {}

// parser is a recursive-descent parser over the resolved token stream.
type parser struct {
	text string
	toks []Token
	n    int
}

func parse(text string, toks []Token) (node, error) {
	p := &parser{text: text, toks: toks}
	root, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if p.n != len(p.toks) {
		return nil, lexicalErr(text, fmt.Sprintf("unexpected %q at offset %d", p.peek().Text, p.peek().Pos))
	}
	return root, nil
}

func (p *parser) peek() Token {
	if p.n < len(p.toks) {
		return p.toks[p.n]
	}
	return Token{Kind: KindEOF, Pos: len(p.text), Text: "end of expression"}
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	if p.n >= len(p.toks) || p.toks[p.n].Kind != KindOp {
		return "", false
	}
	for _, op := range ops {
		if p.toks[p.n].Text == op {
			p.n++
			return op, true
		}
	}
	return "", false
}

func (p *parser) comparison() (node, error) {
	l, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.n < len(p.toks) && p.toks[p.n].Kind == KindCompare {
		op := p.toks[p.n].Text
		p.n++
		r, err := p.sum()
		if err != nil {
			return nil, err
		}
		return &binNode{op: op, l: l, r: r}, nil
	}
	return l, nil
}

func (p *parser) sum() (node, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return l, nil
		}
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = &binNode{op: op, l: l, r: r}
	}
}

func (p *parser) product() (node, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/")
		if !ok {
			return l, nil
		}
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = &binNode{op: op, l: l, r: r}
	}
}

func (p *parser) unary() (node, error) {
	if op, ok := p.acceptOp("+", "-"); ok {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, x: x}, nil
	}
	return p.power()
}

// power binds tighter than unary minus on the left and parses its
// exponent as a unary so -2**-2 reads as -(2**(-2)).
func (p *parser) power() (node, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("**"); ok {
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &binNode{op: "**", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) atom() (node, error) {
	t := p.peek()
	switch t.Kind {
	case KindNumber:
		p.n++
		return &numNode{v: t.Value, dimensionless: t.Dimensionless}, nil
	case KindRef:
		p.n++
		return &refNode{ref: t.Ref}, nil
	case KindFunc:
		p.n++
		return p.call(t.Text)
	case KindLParen:
		p.n++
		x, err := p.comparison()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != KindRParen {
			return nil, lexicalErr(p.text, fmt.Sprintf("expected ) at offset %d", p.peek().Pos))
		}
		p.n++
		return x, nil
	case KindEOF:
		return nil, lexicalErr(p.text, fmt.Sprintf("expected operand at offset %d", t.Pos))
	default:
		return nil, lexicalErr(p.text, fmt.Sprintf("unexpected %q at offset %d", t.Text, t.Pos))
	}
}

func (p *parser) call(fn string) (node, error) {
	// The resolver guarantees the opening paren.
	p.n++
	c := &callNode{fn: fn}
	if p.peek().Kind == KindRParen {
		p.n++
		return c, nil
	}
	for {
		arg, err := p.comparison()
		if err != nil {
			return nil, err
		}
		c.args = append(c.args, arg)
		switch p.peek().Kind {
		case KindComma:
			p.n++
		case KindRParen:
			p.n++
			return c, nil
		default:
			return nil, lexicalErr(p.text, fmt.Sprintf("expected , or ) at offset %d", p.peek().Pos))
		}
	}
}

// Values maps each term entity type to its instances' values by id. A
// value may be a number or a string holding a nested expression, which
// is compiled against the same context and evaluated recursively.
type Values map[*compiler.EntityType]map[string]any

// evaluator carries one Evaluate call's memo and in-progress set.
type evaluator struct {
	ctx    *Context
	values Values
	memo   map[Reference]float64
	active map[Reference]bool
}

// Evaluate computes the expression's numeric value. Reference values
// that are themselves expressions are evaluated recursively, memoized
// for the duration of this call; reference cycles, undefined ids and
// arithmetic domain failures are evaluation errors.
func (p *ParsedExpression) Evaluate(values Values) (float64, error) {
	e := &evaluator{
		ctx:    p.ctx,
		values: values,
		memo:   make(map[Reference]float64),
		active: make(map[Reference]bool),
	}
	return e.eval(p.Text, p.root)
}

func (e *evaluator) eval(text string, n node) (float64, error) {
	switch n := n.(type) {
	case *numNode:
		return n.v, nil
	case *refNode:
		return e.resolve(text, n.ref)
	case *unaryNode:
		v, err := e.eval(text, n.x)
		if err != nil {
			return 0, err
		}
		if n.op == "-" {
			return -v, nil
		}
		return v, nil
	case *binNode:
		l, err := e.eval(text, n.l)
		if err != nil {
			return 0, err
		}
		r, err := e.eval(text, n.r)
		if err != nil {
			return 0, err
		}
		return e.binary(text, n.op, l, r)
	case *callNode:
		args := make([]float64, len(n.args))
		for k, a := range n.args {
			v, err := e.eval(text, a)
			if err != nil {
				return 0, err
			}
			args[k] = v
		}
		return e.callFn(text, n.fn, args)
	default:
		return 0, evalErr(text, "internal: unknown node")
	}
}

func (e *evaluator) binary(text, op string, l, r float64) (float64, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, evalErr(text, "division by zero")
		}
		return l / r, nil
	case "**":
		return math.Pow(l, r), nil
	case "==":
		return bool2f(l == r), nil
	case "!=":
		return bool2f(l != r), nil
	case "<":
		return bool2f(l < r), nil
	case "<=":
		return bool2f(l <= r), nil
	case ">":
		return bool2f(l > r), nil
	case ">=":
		return bool2f(l >= r), nil
	default:
		return 0, evalErr(text, fmt.Sprintf("internal: unknown operator %q", op))
	}
}

func bool2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (e *evaluator) resolve(text string, ref Reference) (float64, error) {
	if v, ok := e.memo[ref]; ok {
		return v, nil
	}
	if e.active[ref] {
		return 0, evalErr(text, fmt.Sprintf("reference cycle through %s", ref))
	}
	byID, ok := e.values[ref.Type]
	if !ok {
		return 0, evalErr(text, fmt.Sprintf("no values given for %s", ref.Type.Name))
	}
	raw, ok := byID[ref.ID]
	if !ok {
		return 0, evalErr(text, fmt.Sprintf("no value for %s", ref))
	}
	var v float64
	switch raw := raw.(type) {
	case float64:
		v = raw
	case float32:
		v = float64(raw)
	case int:
		v = float64(raw)
	case int64:
		v = float64(raw)
	case string:
		nested, err := e.ctx.compile(raw)
		if err != nil {
			return 0, evalErr(text, fmt.Sprintf("value of %s: %v", ref, err))
		}
		e.active[ref] = true
		v, err = e.eval(raw, nested.root)
		delete(e.active, ref)
		if err != nil {
			return 0, err
		}
	default:
		return 0, evalErr(text, fmt.Sprintf("value of %s has unusable type %T", ref, raw))
	}
	e.memo[ref] = v
	return v, nil
}

func (e *evaluator) callFn(text, fn string, args []float64) (float64, error) {
	f, ok := builtins[fn]
	if !ok {
		return 0, evalErr(text, fmt.Sprintf("function %q is permitted but not implemented", fn))
	}
	return f(text, args)
}

type builtin func(text string, args []float64) (float64, error)

var builtins = map[string]builtin{
	"abs":   unaryFn(math.Abs),
	"sqrt":  domainFn(math.Sqrt, "sqrt of negative number"),
	"exp":   unaryFn(math.Exp),
	"log":   domainFn(math.Log, "log of non-positive number"),
	"log10": domainFn(math.Log10, "log10 of non-positive number"),
	"sin":   unaryFn(math.Sin),
	"cos":   unaryFn(math.Cos),
	"tan":   unaryFn(math.Tan),
	"floor": unaryFn(math.Floor),
	"ceil":  unaryFn(math.Ceil),
	"round": unaryFn(math.Round),
	"min": func(text string, args []float64) (float64, error) {
		if len(args) == 0 {
			return 0, evalErr(text, "min of no arguments")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v, nil
	},
	"max": func(text string, args []float64) (float64, error) {
		if len(args) == 0 {
			return 0, evalErr(text, "max of no arguments")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v, nil
	},
	"pow": func(text string, args []float64) (float64, error) {
		if len(args) != 2 {
			return 0, evalErr(text, "pow takes two arguments")
		}
		return math.Pow(args[0], args[1]), nil
	},
}

func unaryFn(f func(float64) float64) builtin {
	return func(text string, args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, evalErr(text, "function takes one argument")
		}
		return f(args[0]), nil
	}
}

func domainFn(f func(float64) float64, msg string) builtin {
	return func(text string, args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, evalErr(text, "function takes one argument")
		}
		v := f(args[0])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, evalErr(text, msg)
		}
		return v, nil
	}
}
