package expr

import (
	"fmt"
	"strings"
)

// match is one successful recognizer outcome at a name position.
type match struct {
	n    int // tokens consumed
	ref  *Reference
	fn   string
	kind string // "qualified", "bare" or "function", for diagnostics
}

// resolve rewrites KindName tokens into KindRef and KindFunc tokens by
// running, at each name position, three longest-match recognizers:
// a qualified Type.id reference, a bare (possibly multi-token) instance
// id, and a function-call name. At most one may succeed across all
// three combined; equally long competing matches are an ambiguity.
// A final pass flags tokens that name both an instance and a function.
func resolve(text string, in []Token, ctx *Context) ([]Token, []Reference, error) {
	var (
		out  []Token
		refs []Reference
		seen = make(map[Reference]bool)
		errm []string
		amb  []string
	)
	for n := 0; n < len(in); {
		t := in[n]
		if t.Kind != KindName {
			out = append(out, t)
			n++
			continue
		}
		var ms []match
		if m, ok := matchQualified(in, n, ctx); ok {
			ms = append(ms, m)
		}
		ms = append(ms, matchBare(in, n, ctx)...)
		if m, ok := matchFunction(in, n, ctx); ok {
			ms = append(ms, m)
		}
		best := longest(ms)
		switch {
		case len(best) == 0:
			errm = append(errm, fmt.Sprintf("undefined name %q at offset %d", t.Text, t.Pos))
			out = append(out, t)
			n++
		case len(best) > 1:
			amb = append(amb, fmt.Sprintf("%q at offset %d matches %s", t.Text, t.Pos, describe(best)))
			out = append(out, t)
			n++
		default:
			m := best[0]
			last := in[n+m.n-1]
			if m.ref != nil {
				out = append(out, Token{Kind: KindRef, Text: m.ref.String(), Pos: t.Pos, End: last.End, Ref: *m.ref})
				if !seen[*m.ref] {
					seen[*m.ref] = true
					refs = append(refs, *m.ref)
				}
			} else {
				out = append(out, Token{Kind: KindFunc, Text: m.fn, Pos: t.Pos, End: last.End})
			}
			n += m.n
		}
	}
	// A reference whose text is also a permitted function name is
	// ambiguous even when only one recognizer fired at its position.
	for _, t := range out {
		if t.Kind == KindRef && ctx.funcs[t.Ref.ID] {
			amb = append(amb, fmt.Sprintf("%q at offset %d is both an instance of %s and a function", t.Ref.ID, t.Pos, t.Ref.Type.Name))
		}
	}
	if len(amb) > 0 {
		return nil, nil, ambiguityErr(text, amb...)
	}
	if len(errm) > 0 {
		return nil, nil, undefinedErr(text, errm...)
	}
	return out, refs, nil
}

// matchQualified recognizes Type.id with no internal whitespace.
func matchQualified(in []Token, n int, ctx *Context) (match, bool) {
	if n+2 >= len(in) || in[n+1].Kind != KindDot || in[n+2].Kind != KindName {
		return match{}, false
	}
	if in[n].End != in[n+1].Pos || in[n+1].End != in[n+2].Pos {
		return match{}, false
	}
	for _, term := range ctx.Terms {
		if term.Type.Name == in[n].Text && term.ids[in[n+2].Text] {
			return match{n: 3, ref: &Reference{Type: term.Type, ID: in[n+2].Text}, kind: "qualified"}, true
		}
	}
	return match{}, false
}

// matchBare recognizes a known instance id spelled as one or more
// adjacent name/number tokens, longest match per term type. All term
// types' longest matches are returned so equal-length ties across types
// surface as an ambiguity.
func matchBare(in []Token, n int, ctx *Context) []match {
	var ms []match
	for _, term := range ctx.Terms {
		var best int
		words := make([]string, 0, term.maxTokens)
		for k := 0; k < term.maxTokens && n+k < len(in); k++ {
			t := in[n+k]
			if t.Kind != KindName && t.Kind != KindNumber {
				break
			}
			words = append(words, t.Text)
			if term.ids[strings.Join(words, " ")] {
				best = k + 1
			}
		}
		if best > 0 {
			id := joinTexts(in[n : n+best])
			ms = append(ms, match{n: best, ref: &Reference{Type: term.Type, ID: id}, kind: "bare"})
		}
	}
	return ms
}

func joinTexts(toks []Token) string {
	words := make([]string, len(toks))
	for n, t := range toks {
		words[n] = t.Text
	}
	return strings.Join(words, " ")
}

// matchFunction recognizes name immediately followed by an opening
// paren, where name is a permitted function.
func matchFunction(in []Token, n int, ctx *Context) (match, bool) {
	if !ctx.funcs[in[n].Text] {
		return match{}, false
	}
	if n+1 >= len(in) || in[n+1].Kind != KindLParen {
		return match{}, false
	}
	return match{n: 1, fn: in[n].Text, kind: "function"}, true
}

// longest keeps only the matches consuming the most tokens; a single
// survivor wins outright, several survivors are an ambiguity.
func longest(ms []match) []match {
	max := 0
	for _, m := range ms {
		if m.n > max {
			max = m.n
		}
	}
	var best []match
	for _, m := range ms {
		if m.n == max {
			best = append(best, m)
		}
	}
	return best
}

func describe(ms []match) string {
	parts := make([]string, len(ms))
	for n, m := range ms {
		if m.ref != nil {
			parts[n] = fmt.Sprintf("%s instance of %s", m.kind, m.ref.Type.Name)
		} else {
			parts[n] = "function " + m.fn
		}
	}
	return strings.Join(parts, " and ")
}
