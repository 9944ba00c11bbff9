// Package literal extracts literal byte sequences that every match of a term
// must contain.
//
// Matching in this module is always against the whole input, so the literals
// have a stronger meaning than in a search engine:
//   - a prefix literal must start the input
//   - a suffix literal must end the input
//   - an inner literal must occur somewhere in the input
//
// A prefix Seq whose literals are all Complete enumerates the whole language
// of the term: the input matches exactly when it equals one of them.
package literal

import (
	"bytes"
	"sort"
)

// Literal is a byte sequence extracted from a term.
//
// Complete reports whether the literal is a whole match on its own (true), or
// only the beginning (or end) of longer matches (false).
type Literal struct {
	Bytes    []byte
	Complete bool
}

// NewLiteral creates a Literal.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{
		Bytes:    b,
		Complete: complete,
	}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a debugging representation: "literal{bytes, complete=bool}".
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq is a set of alternative literals.
//
// An empty Seq carries no information: extraction found no literal every
// match must contain.
type Seq struct {
	literals []Literal
}

// NewSeq creates a new sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{
		literals: lits,
	}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at index i.
// Panics if i is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// IsEmpty returns true if the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// AllComplete reports whether the sequence is non-empty and every literal is
// complete.
func (s *Seq) AllComplete() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// MinLen returns the length of the shortest literal, or 0 for an empty
// sequence.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	m := len(s.literals[0].Bytes)
	for _, lit := range s.literals[1:] {
		m = min(m, len(lit.Bytes))
	}
	return m
}

// Clone returns a deep copy of the sequence.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}

	cloned := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal{
			Bytes:    bytes.Clone(lit.Bytes),
			Complete: lit.Complete,
		}
	}
	return &Seq{literals: cloned}
}

// MakeInexact marks every literal as incomplete.
func (s *Seq) MakeInexact() {
	if s == nil {
		return
	}
	for i := range s.literals {
		s.literals[i].Complete = false
	}
}

// Minimize removes literals made redundant by a shorter incomplete literal
// that is a prefix of them: any input starting with "foobar" also starts with
// "foo". A complete literal only stands for itself and covers nothing else.
func (s *Seq) Minimize() {
	s.minimize(isPrefix)
}

// MinimizeSuffixes is Minimize for suffix literals: a literal is dropped
// when a shorter kept incomplete literal is a suffix of it.
func (s *Seq) MinimizeSuffixes() {
	s.minimize(isSuffix)
}

func (s *Seq) minimize(covers func(short, long []byte) bool) {
	if s.IsEmpty() {
		return
	}

	sort.SliceStable(s.literals, func(i, j int) bool {
		return len(s.literals[i].Bytes) < len(s.literals[j].Bytes)
	})

	kept := make([]Literal, 0, len(s.literals))
	for _, current := range s.literals {
		redundant := false
		for _, k := range kept {
			if !k.Complete && covers(k.Bytes, current.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, current)
		}
	}
	s.literals = kept
}

// LongestCommonPrefix returns the longest common prefix of all literals in
// the sequence, or an empty slice.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return []byte{}
	}
	prefix := s.literals[0].Bytes
	for _, lit := range s.literals[1:] {
		prefix = commonPrefix(prefix, lit.Bytes)
		if len(prefix) == 0 {
			return []byte{}
		}
	}
	return bytes.Clone(prefix)
}

// LongestCommonSuffix returns the longest common suffix of all literals in
// the sequence, or an empty slice.
func (s *Seq) LongestCommonSuffix() []byte {
	if s.IsEmpty() {
		return []byte{}
	}
	suffix := s.literals[0].Bytes
	for _, lit := range s.literals[1:] {
		suffix = commonSuffix(suffix, lit.Bytes)
		if len(suffix) == 0 {
			return []byte{}
		}
	}
	return bytes.Clone(suffix)
}

// dedup returns lits without duplicates. When the same bytes occur both
// complete and incomplete, the incomplete literal wins: it already admits the
// complete one.
func dedup(lits []Literal) []Literal {
	index := make(map[string]int, len(lits))
	out := lits[:0:0]
	for _, lit := range lits {
		if i, ok := index[string(lit.Bytes)]; ok {
			out[i].Complete = out[i].Complete && lit.Complete
			continue
		}
		index[string(lit.Bytes)] = len(out)
		out = append(out, lit)
	}
	return out
}

func isPrefix(prefix, s []byte) bool {
	return bytes.HasPrefix(s, prefix)
}

func isSuffix(suffix, s []byte) bool {
	return bytes.HasSuffix(s, suffix)
}

// commonPrefix returns the longest common prefix of a and b.
func commonPrefix(a, b []byte) []byte {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// commonSuffix returns the longest common suffix of a and b.
func commonSuffix(a, b []byte) []byte {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[len(a)-1-i] != b[len(b)-1-i] {
			return a[len(a)-i:]
		}
	}
	return a[len(a)-n:]
}
