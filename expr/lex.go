package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// TokenKind is the lexical category of one token.
type TokenKind int

// Token kinds. KindName tokens are produced by the lexer and replaced
// by KindRef and KindFunc tokens during resolution; a KindName token
// surviving resolution is an undefined reference.
const (
	KindNumber TokenKind = iota
	KindName
	KindRef
	KindFunc
	KindOp      // + - * / **
	KindCompare // == != < <= > >=
	KindLParen
	KindRParen
	KindLBracket
	KindRBracket
	KindDot
	KindComma
	// KindEOF is the synthetic token the parser sees past the last real
	// token; the lexer never emits it.
	KindEOF
)

// Token is one lexical unit with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset in the original text
	End  int // byte offset one past the token

	// Value is the parsed value of a KindNumber token.
	Value float64
	// Ref is set on KindRef tokens.
	Ref Reference
	// Dimensionless marks bare numeric literals in units-aware mode.
	Dimensionless bool
}

// digitPrefix reversibly rewrites identifiers that start with a digit
// so the generic lexer does not split them into number-then-name.
const digitPrefix = "\x01d\x01"

var digitIdent = regexp.MustCompile(`(^|[^0-9A-Za-z_.])([0-9]+[A-Za-z_][0-9A-Za-z_]*)`)

// maskDigitIdents prefixes leading-digit identifiers; unmask reverses
// it on the lexed token texts.
func maskDigitIdents(s string) string {
	return digitIdent.ReplaceAllString(s, "$1"+digitPrefix+"$2")
}

func unmask(s string) string {
	return strings.TrimPrefix(s, digitPrefix)
}

// lex splits the expression into tokens of the fixed lexical alphabet:
// numbers, names, the arithmetic operators, comparisons, parens,
// brackets, dot and comma. Any other rune is a lexical error. All
// lexical failures are collected and reported together.
func lex(text string) ([]Token, error) {
	src := maskDigitIdents(text)
	var (
		toks []Token
		msgs []string
	)
	// Positions are reported against the masked source; the prefix is a
	// fixed width so offsets shift only past masked identifiers.
	for n := 0; n < len(src); {
		c := src[n]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			n++
		case c >= '0' && c <= '9' || c == '.' && n+1 < len(src) && isDigit(src[n+1]):
			start := n
			for n < len(src) && (isDigit(src[n]) || src[n] == '.') {
				n++
			}
			// exponent part
			if n < len(src) && (src[n] == 'e' || src[n] == 'E') {
				m := n + 1
				if m < len(src) && (src[m] == '+' || src[m] == '-') {
					m++
				}
				if m < len(src) && isDigit(src[m]) {
					for m < len(src) && isDigit(src[m]) {
						m++
					}
					n = m
				}
			}
			lit := src[start:n]
			v, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				msgs = append(msgs, fmt.Sprintf("malformed number %q at offset %d", lit, start))
				continue
			}
			toks = append(toks, Token{Kind: KindNumber, Text: lit, Pos: start, End: n, Value: v})
		case isNameStart(rune(c)) || strings.HasPrefix(src[n:], digitPrefix):
			start := n
			n += len(nameAt(src, n))
			toks = append(toks, Token{Kind: KindName, Text: unmask(src[start:n]), Pos: start, End: n})
		case c == '*':
			if n+1 < len(src) && src[n+1] == '*' {
				toks = append(toks, Token{Kind: KindOp, Text: "**", Pos: n, End: n + 2})
				n += 2
			} else {
				toks = append(toks, Token{Kind: KindOp, Text: "*", Pos: n, End: n + 1})
				n++
			}
		case c == '+' || c == '-' || c == '/':
			toks = append(toks, Token{Kind: KindOp, Text: string(c), Pos: n, End: n + 1})
			n++
		case c == '=' || c == '!' || c == '<' || c == '>':
			start := n
			n++
			if n < len(src) && src[n] == '=' {
				n++
			}
			op := src[start:n]
			if op == "=" || op == "!" {
				msgs = append(msgs, fmt.Sprintf("invalid operator %q at offset %d", op, start))
				continue
			}
			toks = append(toks, Token{Kind: KindCompare, Text: op, Pos: start, End: n})
		case c == '(':
			toks = append(toks, Token{Kind: KindLParen, Text: "(", Pos: n, End: n + 1})
			n++
		case c == ')':
			toks = append(toks, Token{Kind: KindRParen, Text: ")", Pos: n, End: n + 1})
			n++
		case c == '[':
			toks = append(toks, Token{Kind: KindLBracket, Text: "[", Pos: n, End: n + 1})
			n++
		case c == ']':
			toks = append(toks, Token{Kind: KindRBracket, Text: "]", Pos: n, End: n + 1})
			n++
		case c == '.':
			toks = append(toks, Token{Kind: KindDot, Text: ".", Pos: n, End: n + 1})
			n++
		case c == ',':
			toks = append(toks, Token{Kind: KindComma, Text: ",", Pos: n, End: n + 1})
			n++
		default:
			msgs = append(msgs, fmt.Sprintf("invalid character %q at offset %d", string(rune(c)), n))
			n++
		}
	}
	if len(msgs) > 0 {
		return nil, lexicalErr(text, msgs...)
	}
	adjustPositions(src, toks)
	return toks, nil
}

// adjustPositions maps token offsets in the masked source back to
// offsets in the original text.
func adjustPositions(src string, toks []Token) {
	var masks []int
	for off := 0; ; {
		k := strings.Index(src[off:], digitPrefix)
		if k < 0 {
			break
		}
		masks = append(masks, off+k)
		off += k + len(digitPrefix)
	}
	if len(masks) == 0 {
		return
	}
	shift := func(p int) int {
		s := 0
		for _, m := range masks {
			if m >= p {
				break
			}
			s += len(digitPrefix)
		}
		return p - s
	}
	for n := range toks {
		toks[n].Pos = shift(toks[n].Pos)
		toks[n].End = shift(toks[n].End)
	}
}

// nameAt returns the identifier literal starting at offset n, including
// a leading mask prefix.
func nameAt(src string, n int) string {
	start := n
	if strings.HasPrefix(src[n:], digitPrefix) {
		n += len(digitPrefix)
	}
	for n < len(src) && isNameRune(rune(src[n])) {
		n++
	}
	return src[start:n]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
