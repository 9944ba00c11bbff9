// Package prefilter rejects inputs that cannot match before the derivative
// matcher runs.
//
// Matching always covers the whole input, so the literals extracted from a
// term give cheap necessary conditions:
//   - the input starts with one of the prefix literals
//   - the input ends with one of the suffix literals
//   - the input contains one of the inner literals
//
// A prefilter checks some of these conditions. When MayMatch returns false the
// input does not match; when it returns true the matcher still has to decide,
// unless IsComplete reports that the prefilter is exact.
//
// Example usage:
//
//	e := literal.New(literal.DefaultConfig())
//	pf := prefilter.NewBuilder(e.ExtractPrefixes(t), e.ExtractSuffixes(t), e.ExtractInner(t)).Build()
//	if pf != nil && !pf.MayMatch(input) {
//	    return false
//	}
package prefilter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/deriv/literal"
)

// Prefilter is a necessary condition for a match.
type Prefilter interface {
	// MayMatch reports whether haystack can be matched as a whole.
	// A false result is definitive.
	MayMatch(haystack []byte) bool

	// MayMatchString is MayMatch for a string haystack.
	MayMatchString(haystack string) bool

	// IsComplete reports whether MayMatch is also sufficient, in which case
	// its result is the match result.
	IsComplete() bool

	// HeapBytes returns the heap memory held by the prefilter, for
	// profiling and memory budgeting.
	HeapBytes() int

	// String describes the prefilter for logs.
	String() string
}

// Builder constructs a prefilter from extracted literal sequences.
//
// Selection:
//  1. Complete prefix set → exact set lookup (complete prefilter)
//  2. Prefix literals → prefix check
//  3. Suffix literals → suffix check
//  4. Inner literals longer than any prefix or suffix → substring check,
//     with Aho-Corasick for more than one literal
//
// The checks of steps 2-4 are combined; all must pass.
type Builder struct {
	prefixes *literal.Seq
	suffixes *literal.Seq
	inner    *literal.Seq
}

// NewBuilder creates a new prefilter builder. Any sequence may be nil.
func NewBuilder(prefixes, suffixes, inner *literal.Seq) *Builder {
	return &Builder{
		prefixes: prefixes,
		suffixes: suffixes,
		inner:    inner,
	}
}

// Build returns the prefilter, or nil when no literals are available.
func (b *Builder) Build() Prefilter {
	if b.prefixes.AllComplete() {
		return newExact(b.prefixes)
	}

	var parts []Prefilter
	if !b.prefixes.IsEmpty() {
		seq := b.prefixes.Clone()
		seq.Minimize()
		parts = append(parts, newAffix(seq, false))
	}
	if !b.suffixes.IsEmpty() {
		seq := b.suffixes.Clone()
		seq.MinimizeSuffixes()
		parts = append(parts, newAffix(seq, true))
	}
	if !b.inner.IsEmpty() && b.inner.MinLen() > max(b.prefixes.MinLen(), b.suffixes.MinLen()) {
		if pf := newInner(b.inner); pf != nil {
			parts = append(parts, pf)
		}
	}

	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}
	return &allPrefilter{parts: parts}
}

// exactPrefilter answers by set membership: the language is finite and every
// word was extracted.
type exactPrefilter struct {
	set   map[string]struct{}
	bytes int
}

func newExact(seq *literal.Seq) Prefilter {
	p := &exactPrefilter{set: make(map[string]struct{}, seq.Len())}
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		p.set[string(lit.Bytes)] = struct{}{}
		p.bytes += lit.Len()
	}
	return p
}

func (p *exactPrefilter) MayMatch(haystack []byte) bool {
	_, ok := p.set[string(haystack)]
	return ok
}

func (p *exactPrefilter) MayMatchString(haystack string) bool {
	_, ok := p.set[haystack]
	return ok
}

func (p *exactPrefilter) IsComplete() bool { return true }

func (p *exactPrefilter) HeapBytes() int { return p.bytes }

func (p *exactPrefilter) String() string {
	return "exact(" + strconv.Itoa(len(p.set)) + ")"
}

// affixPrefilter checks that the input starts (or ends) with one of its
// literals. A complete literal must be the whole input.
//
// Literals are bucketed by their first (last) byte, so only candidates
// sharing the boundary byte of the input are compared.
type affixPrefilter struct {
	suffix  bool
	buckets [256][]affixLit
	// emptyOK is set when the empty input is one of the literals.
	emptyOK bool
	count   int
	bytes   int
}

type affixLit struct {
	s        string
	complete bool
}

func newAffix(seq *literal.Seq, suffix bool) Prefilter {
	p := &affixPrefilter{suffix: suffix, count: seq.Len()}
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		p.bytes += lit.Len()
		if lit.Len() == 0 {
			// Extraction never yields an empty incomplete literal.
			p.emptyOK = true
			continue
		}
		key := lit.Bytes[0]
		if suffix {
			key = lit.Bytes[lit.Len()-1]
		}
		p.buckets[key] = append(p.buckets[key], affixLit{s: string(lit.Bytes), complete: lit.Complete})
	}
	return p
}

func (p *affixPrefilter) MayMatch(haystack []byte) bool {
	if len(haystack) == 0 {
		return p.emptyOK
	}
	key := haystack[0]
	if p.suffix {
		key = haystack[len(haystack)-1]
	}
	for _, lit := range p.buckets[key] {
		n := len(lit.s)
		switch {
		case lit.complete:
			if string(haystack) == lit.s {
				return true
			}
		case n > len(haystack):
		case p.suffix:
			if string(haystack[len(haystack)-n:]) == lit.s {
				return true
			}
		default:
			if string(haystack[:n]) == lit.s {
				return true
			}
		}
	}
	return false
}

func (p *affixPrefilter) MayMatchString(haystack string) bool {
	if len(haystack) == 0 {
		return p.emptyOK
	}
	key := haystack[0]
	if p.suffix {
		key = haystack[len(haystack)-1]
	}
	for _, lit := range p.buckets[key] {
		switch {
		case lit.complete:
			if haystack == lit.s {
				return true
			}
		case p.suffix:
			if strings.HasSuffix(haystack, lit.s) {
				return true
			}
		default:
			if strings.HasPrefix(haystack, lit.s) {
				return true
			}
		}
	}
	return false
}

func (p *affixPrefilter) IsComplete() bool { return false }

func (p *affixPrefilter) HeapBytes() int { return p.bytes }

func (p *affixPrefilter) String() string {
	kind := "prefix"
	if p.suffix {
		kind = "suffix"
	}
	return kind + "(" + strconv.Itoa(p.count) + ")"
}

// containsPrefilter checks that the input contains a single literal.
type containsPrefilter struct {
	needle []byte
	str    string
}

func (p *containsPrefilter) MayMatch(haystack []byte) bool {
	return bytes.Contains(haystack, p.needle)
}

func (p *containsPrefilter) MayMatchString(haystack string) bool {
	return strings.Contains(haystack, p.str)
}

func (p *containsPrefilter) IsComplete() bool { return false }

func (p *containsPrefilter) HeapBytes() int { return len(p.needle) }

func (p *containsPrefilter) String() string {
	return "contains(" + strconv.Quote(p.str) + ")"
}

// ahoCorasickPrefilter checks that the input contains any of several
// literals in one pass.
type ahoCorasickPrefilter struct {
	auto  *ahocorasick.Automaton
	count int
	bytes int
}

func (p *ahoCorasickPrefilter) MayMatch(haystack []byte) bool {
	return p.auto.IsMatch(haystack)
}

// MayMatchString copies haystack; the automaton only scans byte slices.
func (p *ahoCorasickPrefilter) MayMatchString(haystack string) bool {
	return p.auto.IsMatch([]byte(haystack))
}

func (p *ahoCorasickPrefilter) IsComplete() bool { return false }

func (p *ahoCorasickPrefilter) HeapBytes() int { return p.bytes }

func (p *ahoCorasickPrefilter) String() string {
	return "aho-corasick(" + strconv.Itoa(p.count) + ")"
}

// newInner returns a substring prefilter for seq, or nil when the automaton
// cannot be built.
func newInner(seq *literal.Seq) Prefilter {
	if seq.Len() == 1 {
		needle := bytes.Clone(seq.Get(0).Bytes)
		return &containsPrefilter{needle: needle, str: string(needle)}
	}

	builder := ahocorasick.NewBuilder()
	total := 0
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		builder.AddPattern(lit.Bytes)
		total += lit.Len()
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{auto: auto, count: seq.Len(), bytes: total}
}

// allPrefilter passes when every part passes.
type allPrefilter struct {
	parts []Prefilter
}

func (p *allPrefilter) MayMatch(haystack []byte) bool {
	for _, part := range p.parts {
		if !part.MayMatch(haystack) {
			return false
		}
	}
	return true
}

func (p *allPrefilter) MayMatchString(haystack string) bool {
	for _, part := range p.parts {
		if !part.MayMatchString(haystack) {
			return false
		}
	}
	return true
}

func (p *allPrefilter) IsComplete() bool { return false }

func (p *allPrefilter) HeapBytes() int {
	n := 0
	for _, part := range p.parts {
		n += part.HeapBytes()
	}
	return n
}

func (p *allPrefilter) String() string {
	names := make([]string, len(p.parts))
	for i, part := range p.parts {
		names[i] = part.String()
	}
	return "all(" + strings.Join(names, ", ") + ")"
}
