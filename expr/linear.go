package expr

import "math"

// Linear-form validation accepts the grammar
//
//	expr = term (('+'|'-') term)*
//	term = number? '*'? identifier
//
// via an explicit finite-state acceptor over token categories. An
// expression rejected in raw form gets a second chance after algebraic
// normalization of its syntax tree (unary signs stripped, products
// distributed over sums, subtraction rewritten as signed addition,
// numeric factors commuted left and folded); only if both passes reject
// is the expression non-linear.

type category int

const (
	catNumber category = iota
	catIdent
	catPlus
	catMinus
	catStar
	catOther
)

func categorize(t Token) category {
	switch t.Kind {
	case KindNumber:
		return catNumber
	case KindRef:
		return catIdent
	case KindOp:
		switch t.Text {
		case "+":
			return catPlus
		case "-":
			return catMinus
		case "*":
			return catStar
		}
	}
	return catOther
}

type state int

const (
	sTermStart state = iota // expecting a term: number or identifier
	sNum                    // saw the term's number
	sNumStar                // saw number '*'
	sIdent                  // term complete
	sReject
)

func step(s state, c category) state {
	switch s {
	case sTermStart:
		switch c {
		case catNumber:
			return sNum
		case catIdent:
			return sIdent
		}
	case sNum:
		switch c {
		case catStar:
			return sNumStar
		case catIdent:
			return sIdent
		}
	case sNumStar:
		if c == catIdent {
			return sIdent
		}
	case sIdent:
		switch c {
		case catPlus, catMinus:
			return sTermStart
		}
	}
	return sReject
}

// acceptLinear runs the acceptor; only the term-complete state accepts
// at end of input.
func acceptLinear(toks []Token) bool {
	s := sTermStart
	for _, t := range toks {
		c := categorize(t)
		if c == catOther {
			return false
		}
		if s = step(s, c); s == sReject {
			return false
		}
	}
	return s == sIdent
}

// coefficients computes the per-reference net coefficients of the
// expression's linear form. Declared instances the expression never
// references get 0; a non-linear expression gets NaN throughout.
func coefficients(p *ParsedExpression) map[Reference]float64 {
	acc := make(map[Reference]float64)
	for _, term := range p.ctx.Terms {
		for _, id := range term.IDs {
			acc[Reference{Type: term.Type, ID: id}] = 0
		}
	}
	toks := p.Tokens
	if !acceptLinear(toks) {
		terms, ok := linearTerms(p.root)
		if ok {
			toks = renderTerms(terms)
			ok = acceptLinear(toks)
		}
		if !ok {
			for ref := range acc {
				acc[ref] = math.NaN()
			}
			return acc
		}
	}
	// One pass over the accepted stream, tracking a running sign and the
	// current term's numeric coefficient.
	sign, coef := 1.0, 1.0
	for _, t := range toks {
		switch categorize(t) {
		case catNumber:
			coef = t.Value
		case catIdent:
			acc[t.Ref] += sign * coef
			sign, coef = 1, 1
		case catPlus:
			sign = 1
		case catMinus:
			sign = -1
		}
	}
	return acc
}

// linTerm is one summand of a normalized expression: a numeric
// coefficient times at most one reference.
type linTerm struct {
	coef float64
	ref  *Reference
}

// linearTerms normalizes the syntax tree into a flat sum of linTerms.
// It fails on any construct that cannot reduce to one (function calls,
// comparisons, exponentiation, products of two references, division by
// a non-constant).
func linearTerms(n node) ([]linTerm, bool) {
	switch n := n.(type) {
	case *numNode:
		return []linTerm{{coef: n.v}}, true
	case *refNode:
		ref := n.ref
		return []linTerm{{coef: 1, ref: &ref}}, true
	case *unaryNode:
		ts, ok := linearTerms(n.x)
		if !ok {
			return nil, false
		}
		if n.op == "-" {
			for k := range ts {
				ts[k].coef = -ts[k].coef
			}
		}
		return ts, true
	case *binNode:
		switch n.op {
		case "+", "-":
			l, ok := linearTerms(n.l)
			if !ok {
				return nil, false
			}
			r, ok := linearTerms(n.r)
			if !ok {
				return nil, false
			}
			if n.op == "-" {
				for k := range r {
					r[k].coef = -r[k].coef
				}
			}
			return append(l, r...), true
		case "*":
			l, ok := linearTerms(n.l)
			if !ok {
				return nil, false
			}
			r, ok := linearTerms(n.r)
			if !ok {
				return nil, false
			}
			out := make([]linTerm, 0, len(l)*len(r))
			for _, a := range l {
				for _, b := range r {
					t := linTerm{coef: a.coef * b.coef}
					switch {
					case a.ref == nil:
						t.ref = b.ref
					case b.ref == nil:
						t.ref = a.ref
					default:
						return nil, false // reference times reference
					}
					out = append(out, t)
				}
			}
			return out, true
		case "/":
			l, ok := linearTerms(n.l)
			if !ok {
				return nil, false
			}
			r, ok := linearTerms(n.r)
			if !ok || len(r) != 1 || r[0].ref != nil || r[0].coef == 0 {
				return nil, false
			}
			for k := range l {
				l[k].coef /= r[0].coef
			}
			return l, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// renderTerms emits the normalized sum back as a token stream for the
// acceptor: number '*' identifier terms joined by '+'/'-', numeric-only
// summands folded into a single constant term. A surviving constant
// term makes the stream unacceptable, which is intended: the grammar
// has no constant summand.
func renderTerms(terms []linTerm) []Token {
	var (
		out      []Token
		constant float64
		hasConst bool
	)
	for _, t := range terms {
		if t.ref == nil {
			constant += t.coef
			hasConst = true
			continue
		}
		coef := t.coef
		if len(out) > 0 {
			op := "+"
			if coef < 0 {
				op, coef = "-", -coef
			}
			out = append(out, Token{Kind: KindOp, Text: op})
		}
		out = append(out,
			Token{Kind: KindNumber, Value: coef},
			Token{Kind: KindOp, Text: "*"},
			Token{Kind: KindRef, Ref: *t.ref},
		)
	}
	if hasConst && constant != 0 {
		out = append(out, Token{Kind: KindOp, Text: "+"}, Token{Kind: KindNumber, Value: constant})
	}
	return out
}
