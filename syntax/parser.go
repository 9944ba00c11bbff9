// Package syntax parses the surface syntax of regular expressions into
// canonical terms.
//
// The parser is a recursive descent over the pattern bytes. It never builds an
// intermediate tree: every construct is emitted directly through the smart
// constructors of a term.Builder, so the result is canonical and shares nodes
// with everything else interned in that builder.
//
// A pattern always matches the whole input. The anchors ^ and $ are accepted
// only where they restate that, as runs at the start and end of a top-level
// alternative, and contribute nothing to the term. Go's regexp also accepts
// them inside an expression, where they make a branch unmatchable; here that
// is an error.
package syntax

import (
	"github.com/coregx/deriv/alphabet"
	"github.com/coregx/deriv/term"
)

const (
	// MaxRepeat is the largest count accepted in {n,m}, and the largest
	// product of the counts of nested repetitions such as (a{10}){100}.
	MaxRepeat = 1000

	// maxDepth bounds group nesting so the descent cannot exhaust the stack.
	maxDepth = 1000
)

type parser struct {
	b     *term.Builder
	src   string
	pos   int
	depth int
}

// Parse parses pattern and returns its term, built with b.
// On failure the error is a *SyntaxError and no term is returned.
func Parse(pattern string, b *term.Builder) (*term.Term, error) {
	p := &parser{b: b, src: pattern}
	t, _, err := p.parseAlternation(true)
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		// parseAlternation only stops early on ')'.
		return nil, p.errorAt(ErrUnexpectedParen, p.pos)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(pattern string, b *term.Builder) *term.Term {
	t, err := Parse(pattern, b)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) errorAt(code ErrorCode, pos int) *SyntaxError {
	return &SyntaxError{Code: code, Expr: p.src, Pos: pos}
}

// The parse functions also return the weight of what they parsed: the
// largest product of {n,m} counts along any chain of nested repetitions,
// which bounds how many copies Repeat expands.

// parseAlternation handles branch|branch|...
func (p *parser) parseAlternation(top bool) (*term.Term, int, error) {
	var branches []*term.Term
	weight := 1
	for {
		br, w, err := p.parseConcat(top)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, br)
		weight = max(weight, w)
		if p.eof() || p.peek() != '|' {
			break
		}
		p.pos++
	}
	return p.b.Union(branches...), weight, nil
}

// parseConcat handles a sequence of quantified atoms up to '|' or ')'.
func (p *parser) parseConcat(top bool) (*term.Term, int, error) {
	var items []*term.Term
	weight := 1
	for !p.eof() {
		c := p.peek()
		if c == '|' || c == ')' {
			break
		}
		switch c {
		case '^':
			if !top || len(items) > 0 {
				return nil, 0, p.errorAt(ErrMisplacedAnchor, p.pos)
			}
			p.pos++
			continue
		case '$':
			if !top {
				return nil, 0, p.errorAt(ErrMisplacedAnchor, p.pos)
			}
			for !p.eof() && p.peek() == '$' {
				p.pos++
			}
			if !p.eof() && p.peek() != '|' && p.peek() != ')' {
				return nil, 0, p.errorAt(ErrMisplacedAnchor, p.pos-1)
			}
			continue
		}

		atom, w, err := p.parseAtom()
		if err != nil {
			return nil, 0, err
		}
		t, w, err := p.parseRepeat(atom, w)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
		weight = max(weight, w)
	}
	return p.b.ConcatAll(items...), weight, nil
}

// parseRepeat applies at most one quantifier to atom, whose weight is w. A
// trailing '?' after a quantifier marks it lazy, which does not change the
// language.
func (p *parser) parseRepeat(atom *term.Term, w int) (*term.Term, int, error) {
	if p.eof() {
		return atom, w, nil
	}
	opPos := p.pos
	var t *term.Term
	switch p.peek() {
	case '*':
		p.pos++
		t = p.b.Star(atom)
	case '+':
		p.pos++
		t = p.b.Plus(atom)
	case '?':
		p.pos++
		t = p.b.Optional(atom)
	case '{':
		lo, hi, end, ok := p.scanBraces(p.pos)
		if !ok {
			return atom, w, nil
		}
		if lo > MaxRepeat || hi > MaxRepeat || (hi >= 0 && hi < lo) {
			return nil, 0, p.errorAt(ErrInvalidRepeatSize, opPos)
		}
		copies := hi
		if copies < 0 {
			copies = lo
		}
		w *= max(copies, 1)
		if w > MaxRepeat {
			return nil, 0, p.errorAt(ErrInvalidRepeatSize, opPos)
		}
		p.pos = end
		t = p.b.Repeat(atom, lo, hi)
	default:
		return atom, w, nil
	}

	if !p.eof() && p.peek() == '?' {
		p.pos++
	}
	if p.atQuantifier() {
		return nil, 0, p.errorAt(ErrInvalidRepeatOp, p.pos)
	}
	return t, w, nil
}

func (p *parser) atQuantifier() bool {
	if p.eof() {
		return false
	}
	switch p.peek() {
	case '*', '+', '?':
		return true
	case '{':
		_, _, _, ok := p.scanBraces(p.pos)
		return ok
	}
	return false
}

// scanBraces recognizes {n}, {n,} or {n,m} starting at pos. hi is -1 for an
// open upper bound. Counts above MaxRepeat are reported as MaxRepeat+1. When
// ok is false the text is not a repetition and '{' is an ordinary byte.
func (p *parser) scanBraces(pos int) (lo, hi, end int, ok bool) {
	i := pos + 1
	lo, i, ok = scanInt(p.src, i)
	if !ok || i >= len(p.src) {
		return 0, 0, 0, false
	}
	switch p.src[i] {
	case '}':
		return lo, lo, i + 1, true
	case ',':
		i++
	default:
		return 0, 0, 0, false
	}
	if i < len(p.src) && p.src[i] == '}' {
		return lo, -1, i + 1, true
	}
	hi, i, ok = scanInt(p.src, i)
	if !ok || i >= len(p.src) || p.src[i] != '}' {
		return 0, 0, 0, false
	}
	return lo, hi, i + 1, true
}

func scanInt(s string, i int) (n, end int, ok bool) {
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n <= MaxRepeat {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	return min(n, MaxRepeat+1), i, i > start
}

func (p *parser) parseAtom() (*term.Term, int, error) {
	c := p.peek()
	switch c {
	case '(':
		return p.parseGroup()
	case '*', '+', '?':
		return nil, 0, p.errorAt(ErrMissingRepeatArgument, p.pos)
	case '{':
		if _, _, _, ok := p.scanBraces(p.pos); ok {
			return nil, 0, p.errorAt(ErrMissingRepeatArgument, p.pos)
		}
		p.pos++
		return p.b.Byte(c), 1, nil
	case '[':
		set, err := p.parseClass()
		if err != nil {
			return nil, 0, err
		}
		return p.b.Symbol(set), 1, nil
	case '.':
		p.pos++
		return p.b.Symbol(alphabet.AnyNotNL), 1, nil
	case '\\':
		set, err := p.parseEscape()
		if err != nil {
			return nil, 0, err
		}
		return p.b.Symbol(set), 1, nil
	}
	p.pos++
	return p.b.Byte(c), 1, nil
}

func (p *parser) parseGroup() (*term.Term, int, error) {
	open := p.pos
	p.pos++
	if !p.eof() && p.peek() == '?' {
		if p.pos+1 >= len(p.src) || p.src[p.pos+1] != ':' {
			return nil, 0, p.errorAt(ErrUnsupportedGroup, open)
		}
		p.pos += 2
	}

	p.depth++
	if p.depth > maxDepth {
		return nil, 0, p.errorAt(ErrNestingDepth, open)
	}
	inner, w, err := p.parseAlternation(false)
	if err != nil {
		return nil, 0, err
	}
	p.depth--

	if p.eof() {
		return nil, 0, p.errorAt(ErrMissingParen, open)
	}
	p.pos++ // ')'
	return inner, w, nil
}

// parseClass parses [...] or [^...]. A ']' right after the opening bracket
// is a literal member.
func (p *parser) parseClass() (alphabet.Set, error) {
	open := p.pos
	p.pos++
	negate := false
	if !p.eof() && p.peek() == '^' {
		negate = true
		p.pos++
	}

	var set alphabet.Set
	first := true
	for {
		if p.eof() {
			return alphabet.Set{}, p.errorAt(ErrMissingBracket, open)
		}
		if p.peek() == ']' && !first {
			p.pos++
			break
		}
		first = false

		loPos := p.pos
		lo, err := p.parseClassItem()
		if err != nil {
			return alphabet.Set{}, err
		}
		// A '-' followed by ']' is a literal dash.
		if p.pos+1 < len(p.src) && p.peek() == '-' && p.src[p.pos+1] != ']' {
			p.pos++
			hi, err := p.parseClassItem()
			if err != nil {
				return alphabet.Set{}, err
			}
			if lo.Len() != 1 || hi.Len() != 1 {
				return alphabet.Set{}, p.errorAt(ErrInvalidCharRange, loPos)
			}
			l, h := lo.Bytes()[0], hi.Bytes()[0]
			if h < l {
				return alphabet.Set{}, p.errorAt(ErrInvalidCharRange, loPos)
			}
			set = set.AddRange(l, h)
			continue
		}
		set = set.Union(lo)
	}

	if negate {
		set = set.Negate()
	}
	return set, nil
}

func (p *parser) parseClassItem() (alphabet.Set, error) {
	c := p.peek()
	switch {
	case c == '\\':
		return p.parseEscape()
	case c >= 0x80:
		return alphabet.Set{}, p.errorAt(ErrNonASCIIClass, p.pos)
	}
	p.pos++
	return alphabet.Single(c), nil
}

// parseEscape parses a backslash escape and returns the bytes it stands for.
func (p *parser) parseEscape() (alphabet.Set, error) {
	start := p.pos
	p.pos++
	if p.eof() {
		return alphabet.Set{}, p.errorAt(ErrTrailingBackslash, start)
	}
	c := p.peek()
	p.pos++
	switch c {
	case 'd':
		return alphabet.Digit, nil
	case 'D':
		return alphabet.Digit.Negate(), nil
	case 'w':
		return alphabet.Word, nil
	case 'W':
		return alphabet.Word.Negate(), nil
	case 's':
		return alphabet.Space, nil
	case 'S':
		return alphabet.Space.Negate(), nil
	case 'n':
		return alphabet.Single('\n'), nil
	case 't':
		return alphabet.Single('\t'), nil
	case 'r':
		return alphabet.Single('\r'), nil
	case 'f':
		return alphabet.Single('\f'), nil
	case 'v':
		return alphabet.Single('\v'), nil
	case 'x':
		if p.pos+2 > len(p.src) {
			return alphabet.Set{}, p.errorAt(ErrInvalidEscape, start)
		}
		hi, ok1 := unhex(p.src[p.pos])
		lo, ok2 := unhex(p.src[p.pos+1])
		if !ok1 || !ok2 {
			return alphabet.Set{}, p.errorAt(ErrInvalidEscape, start)
		}
		p.pos += 2
		return alphabet.Single(hi<<4 | lo), nil
	}
	if c < 0x80 && isPunct(c) {
		return alphabet.Single(c), nil
	}
	return alphabet.Set{}, p.errorAt(ErrInvalidEscape, start)
}

func isPunct(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return false
	}
	return c > ' ' && c < 0x7f
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
