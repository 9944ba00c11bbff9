package literal

import (
	"github.com/coregx/deriv/term"
)

// ExtractorConfig bounds literal extraction.
type ExtractorConfig struct {
	// MaxLiterals is the largest sequence kept. Larger alternations collapse
	// to their common prefix (or suffix). Default: 64.
	MaxLiterals int

	// MaxLiteralLen truncates longer literals, which become incomplete.
	// Default: 64.
	MaxLiteralLen int

	// MaxClassSize is the largest symbol set expanded into one literal per
	// byte. Larger sets end the literal. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// Extractor extracts literal sequences from terms.
//
// Terms are DAGs with heavy sharing, so results are memoized per term ID. An
// Extractor is not safe for concurrent use.
type Extractor struct {
	config ExtractorConfig

	prefixMemo map[term.ID][]Literal
	suffixMemo map[term.ID][]Literal
	innerMemo  map[term.ID][]Literal
}

// New creates a new Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{
		config:     config,
		prefixMemo: make(map[term.ID][]Literal),
		suffixMemo: make(map[term.ID][]Literal),
		innerMemo:  make(map[term.ID][]Literal),
	}
}

// unconstrained is the literal set of a term that admits any first byte.
var unconstrained = []Literal{{Bytes: []byte{}, Complete: false}}

// ExtractPrefixes returns literals one of which starts every match of t.
// Complete literals are whole matches. The result is empty when no
// constraint was found or when t matches nothing.
//
//	abc      → [abc complete]
//	(foo|ba)r → [foor complete, bar complete]
//	ab\w+    → [ab incomplete]
//	a*b      → [b complete, a incomplete]
func (e *Extractor) ExtractPrefixes(t *term.Term) *Seq {
	return e.export(e.prefixes(t))
}

// ExtractSuffixes returns literals one of which ends every match of t.
//
//	\w+\.txt → [.txt incomplete]
func (e *Extractor) ExtractSuffixes(t *term.Term) *Seq {
	return e.export(e.suffixes(t))
}

// ExtractInner returns literals one of which occurs in every match of t.
// All of them are incomplete. Among the candidate sets the one with the
// longest shortest literal is chosen.
//
//	.*(foo|bar).* → [foo, bar]
func (e *Extractor) ExtractInner(t *term.Term) *Seq {
	lits := e.inner(t)
	if lits == nil {
		return NewSeq()
	}
	return NewSeq(lits...).Clone()
}

func (e *Extractor) export(lits []Literal) *Seq {
	for _, lit := range lits {
		if len(lit.Bytes) == 0 && !lit.Complete {
			return NewSeq()
		}
	}
	return NewSeq(lits...).Clone()
}

func (e *Extractor) prefixes(t *term.Term) []Literal {
	return e.extract(t, false)
}

func (e *Extractor) suffixes(t *term.Term) []Literal {
	return e.extract(t, true)
}

// extract computes the prefix literals of t, or the suffix literals when
// reverse is set. The two only differ in which child of a concatenation comes
// first.
func (e *Extractor) extract(t *term.Term, reverse bool) []Literal {
	memo := e.prefixMemo
	if reverse {
		memo = e.suffixMemo
	}
	if lits, ok := memo[t.ID()]; ok {
		return lits
	}

	var lits []Literal
	switch t.Kind() {
	case term.KindEmptySet:
		lits = nil
	case term.KindEmptyString:
		lits = []Literal{{Bytes: []byte{}, Complete: true}}
	case term.KindSymbol:
		lits = e.symbol(t)
	case term.KindConcat:
		first, second := t.Left(), t.Right()
		if reverse {
			first, second = second, first
		}
		lits = e.cross(e.extract(first, reverse), second, reverse)
	case term.KindUnion:
		for _, m := range t.Members() {
			lits = append(lits, e.extract(m, reverse)...)
		}
		lits = dedup(lits)
		if len(lits) > e.config.MaxLiterals {
			lits = e.collapse(lits, reverse)
		}
	case term.KindStar:
		// x* is ε or x followed by more.
		lits = []Literal{{Bytes: []byte{}, Complete: true}}
		for _, lit := range e.extract(t.Inner(), reverse) {
			lits = append(lits, Literal{Bytes: lit.Bytes, Complete: false})
		}
		lits = dedup(lits)
		if len(lits) > e.config.MaxLiterals {
			lits = unconstrained
		}
	}

	memo[t.ID()] = lits
	return lits
}

func (e *Extractor) symbol(t *term.Term) []Literal {
	set := t.Set()
	if set.Len() > e.config.MaxClassSize {
		return unconstrained
	}
	bs := set.Bytes()
	lits := make([]Literal, len(bs))
	for i, b := range bs {
		lits[i] = Literal{Bytes: []byte{b}, Complete: true}
	}
	return lits
}

// cross extends every complete literal of head with the literals of rest.
// Incomplete literals already end the constraint and are kept as they are.
func (e *Extractor) cross(head []Literal, rest *term.Term, reverse bool) []Literal {
	extend := false
	for _, lit := range head {
		if lit.Complete && len(lit.Bytes) < e.config.MaxLiteralLen {
			extend = true
			break
		}
	}
	if !extend {
		return inexact(head)
	}

	tail := e.extract(rest, reverse)
	out := make([]Literal, 0, len(head)*max(len(tail), 1))
	for _, h := range head {
		if !h.Complete {
			out = append(out, h)
			continue
		}
		for _, r := range tail {
			var b []byte
			if reverse {
				b = append(append(make([]byte, 0, len(r.Bytes)+len(h.Bytes)), r.Bytes...), h.Bytes...)
			} else {
				b = append(append(make([]byte, 0, len(h.Bytes)+len(r.Bytes)), h.Bytes...), r.Bytes...)
			}
			out = append(out, e.truncate(Literal{Bytes: b, Complete: r.Complete}, reverse))
		}
	}
	if len(out) > e.config.MaxLiterals {
		return inexact(head)
	}
	return dedup(out)
}

func (e *Extractor) truncate(lit Literal, reverse bool) Literal {
	n := e.config.MaxLiteralLen
	if len(lit.Bytes) <= n {
		return lit
	}
	if reverse {
		return Literal{Bytes: lit.Bytes[len(lit.Bytes)-n:], Complete: false}
	}
	return Literal{Bytes: lit.Bytes[:n], Complete: false}
}

// collapse replaces an oversized alternation by its common prefix (suffix).
func (e *Extractor) collapse(lits []Literal, reverse bool) []Literal {
	seq := NewSeq(lits...)
	var common []byte
	if reverse {
		common = seq.LongestCommonSuffix()
	} else {
		common = seq.LongestCommonPrefix()
	}
	return []Literal{{Bytes: common, Complete: false}}
}

// inner computes the literals one of which occurs in every match of t, or
// nil when there are none.
func (e *Extractor) inner(t *term.Term) []Literal {
	if lits, ok := e.innerMemo[t.ID()]; ok {
		return lits
	}

	var lits []Literal
	switch {
	case t.Nullable():
		// The empty match contains nothing.
	case t.Kind() == term.KindSymbol:
		lits = usable(e.prefixes(t))
	case t.Kind() == term.KindConcat:
		lits = best(usable(e.prefixes(t)), e.inner(t.Left()), e.inner(t.Right()))
	case t.Kind() == term.KindUnion:
		lits = e.innerUnion(t)
	}

	e.innerMemo[t.ID()] = lits
	return lits
}

func (e *Extractor) innerUnion(t *term.Term) []Literal {
	var lits []Literal
	for _, m := range t.Members() {
		ml := e.inner(m)
		if ml == nil {
			return nil
		}
		lits = append(lits, ml...)
	}
	lits = dedup(lits)
	if len(lits) > e.config.MaxLiterals {
		return nil
	}
	return lits
}

// usable returns lits as inexact literals when none of them is empty.
func usable(lits []Literal) []Literal {
	if len(lits) == 0 {
		return nil
	}
	for _, lit := range lits {
		if len(lit.Bytes) == 0 {
			return nil
		}
	}
	return inexact(lits)
}

// best picks the candidate with the longest shortest literal, then the one
// with fewer literals.
func best(candidates ...[]Literal) []Literal {
	var out []Literal
	outMin := 0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		m := NewSeq(c...).MinLen()
		if out == nil || m > outMin || (m == outMin && len(c) < len(out)) {
			out, outMin = c, m
		}
	}
	return out
}

func inexact(lits []Literal) []Literal {
	out := make([]Literal, len(lits))
	for i, lit := range lits {
		out[i] = Literal{Bytes: lit.Bytes, Complete: false}
	}
	return out
}
