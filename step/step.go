// Package step implements a combinator matcher: every term shape becomes a
// small stateful machine, and a pattern is a tree of them.
//
// A Matcher tracks a set of strings. Reset empties the set, Start adds the
// empty string and Advance appends a byte to every tracked string. Accepts
// reports whether any tracked string is in the language. The state of each
// combinator is a few booleans, so a match costs O(n·m) for an input of n
// bytes and a tree of m matchers, with no allocation after Compile.
//
// This is an alternative to the derivative engine in package meta. The two
// accept the same language for the same term.
//
// Matchers are not safe for concurrent use. Compile one tree per goroutine.
package step

import (
	"github.com/coregx/deriv/alphabet"
	"github.com/coregx/deriv/term"
)

// Matcher is a stateful recognizer.
type Matcher interface {
	// Reset empties the tracked set.
	Reset()

	// Start adds the empty string to the tracked set.
	Start()

	// Advance appends c to every tracked string.
	Advance(c byte)

	// Accepts reports whether the language contains a tracked string.
	Accepts() bool

	// IsDead reports that Accepts is false and stays false whatever bytes
	// follow. Match uses it to stop early.
	IsDead() bool
}

// Match reports whether the whole input is accepted by m. The state of m is
// reset first.
func Match(m Matcher, input []byte) bool {
	m.Reset()
	m.Start()
	for _, c := range input {
		m.Advance(c)
		if m.IsDead() {
			return false
		}
	}
	return m.Accepts()
}

// MatchString is like Match but takes a string.
func MatchString(m Matcher, s string) bool {
	m.Reset()
	m.Start()
	for i := 0; i < len(s); i++ {
		m.Advance(s[i])
		if m.IsDead() {
			return false
		}
	}
	return m.Accepts()
}

// Compile builds a fresh matcher tree for t.
//
// Terms share subterms, but matchers carry state, so every occurrence of a
// subterm gets its own matcher.
func Compile(t *term.Term) Matcher {
	switch t.Kind() {
	case term.KindEmptySet:
		return &Never{}
	case term.KindEmptyString:
		return &Empty{}
	case term.KindSymbol:
		return NewClass(t.Set())
	case term.KindConcat:
		return &Seq{First: Compile(t.Left()), Second: Compile(t.Right())}
	case term.KindStar:
		return &Star{Inner: Compile(t.Inner())}
	case term.KindUnion:
		members := t.Members()
		optional := members[0].Kind() == term.KindEmptyString
		if optional {
			members = members[1:]
		}
		var m Matcher
		if len(members) == 1 {
			m = Compile(members[0])
		} else {
			alt := &Alt{Members: make([]Matcher, len(members))}
			for i, x := range members {
				alt.Members[i] = Compile(x)
			}
			m = alt
		}
		if optional {
			return &Maybe{Inner: m}
		}
		return m
	}
	panic("step: unknown term kind " + t.Kind().String())
}

// Never matches nothing.
type Never struct{}

func (*Never) Reset()        {}
func (*Never) Start()        {}
func (*Never) Advance(byte)  {}
func (*Never) Accepts() bool { return false }
func (*Never) IsDead() bool  { return true }

// Empty matches only the empty string.
type Empty struct {
	empty bool
}

func (m *Empty) Reset()        { m.empty = false }
func (m *Empty) Start()        { m.empty = true }
func (m *Empty) Advance(byte)  { m.empty = false }
func (m *Empty) Accepts() bool { return m.empty }
func (m *Empty) IsDead() bool  { return !m.empty }

// classState records which of the two interesting strings a Class tracks:
// the empty string and a one-byte string in the set.
type classState uint8

const (
	tracksNeither classState = iota
	tracksStart
	tracksEnd
	tracksBoth
)

// Class matches one byte of a set.
type Class struct {
	set   alphabet.Set
	state classState
}

// NewClass returns a matcher for one byte of set.
func NewClass(set alphabet.Set) *Class {
	return &Class{set: set}
}

func (m *Class) Reset() { m.state = tracksNeither }

func (m *Class) Start() {
	switch m.state {
	case tracksNeither, tracksStart:
		m.state = tracksStart
	default:
		m.state = tracksBoth
	}
}

func (m *Class) Advance(c byte) {
	// Only the tracked empty string can grow into an accepted string.
	if m.set.Contains(c) && (m.state == tracksStart || m.state == tracksBoth) {
		m.state = tracksEnd
		return
	}
	m.state = tracksNeither
}

func (m *Class) Accepts() bool { return m.state == tracksEnd || m.state == tracksBoth }

func (m *Class) IsDead() bool { return m.state == tracksNeither }

// Seq matches First followed by Second.
type Seq struct {
	First, Second Matcher
}

func (m *Seq) Reset() {
	m.First.Reset()
	m.Second.Reset()
}

func (m *Seq) Start() {
	m.First.Start()
	if m.First.Accepts() {
		m.Second.Start()
	}
}

func (m *Seq) Advance(c byte) {
	// Second goes first: a string First accepts only after c must not also
	// see c in Second.
	m.Second.Advance(c)
	m.First.Advance(c)
	if m.First.Accepts() {
		m.Second.Start()
	}
}

func (m *Seq) Accepts() bool { return m.Second.Accepts() }

func (m *Seq) IsDead() bool { return m.First.IsDead() && m.Second.IsDead() }

// Alt matches any of its members.
type Alt struct {
	Members []Matcher
}

func (m *Alt) Reset() {
	for _, x := range m.Members {
		x.Reset()
	}
}

func (m *Alt) Start() {
	for _, x := range m.Members {
		x.Start()
	}
}

func (m *Alt) Advance(c byte) {
	for _, x := range m.Members {
		x.Advance(c)
	}
}

func (m *Alt) Accepts() bool {
	for _, x := range m.Members {
		if x.Accepts() {
			return true
		}
	}
	return false
}

func (m *Alt) IsDead() bool {
	for _, x := range m.Members {
		if !x.IsDead() {
			return false
		}
	}
	return true
}

// Star matches zero or more repetitions of Inner.
type Star struct {
	Inner Matcher
	// init is set while the tracked set holds a string that ends exactly
	// after a whole number of repetitions.
	init bool
}

func (m *Star) Reset() {
	m.init = false
	m.Inner.Reset()
}

func (m *Star) Start() {
	m.init = true
	m.Inner.Start()
}

func (m *Star) Advance(c byte) {
	m.init = false
	m.Inner.Advance(c)
	if m.Inner.Accepts() {
		m.init = true
		m.Inner.Start()
	}
}

func (m *Star) Accepts() bool { return m.init || m.Inner.Accepts() }

func (m *Star) IsDead() bool { return !m.init && m.Inner.IsDead() }

// Maybe matches Inner or the empty string.
type Maybe struct {
	Inner Matcher
	init  bool
}

func (m *Maybe) Reset() {
	m.init = false
	m.Inner.Reset()
}

func (m *Maybe) Start() {
	m.init = true
	m.Inner.Start()
}

func (m *Maybe) Advance(c byte) {
	m.init = false
	m.Inner.Advance(c)
}

func (m *Maybe) Accepts() bool { return m.init || m.Inner.Accepts() }

func (m *Maybe) IsDead() bool { return !m.init && m.Inner.IsDead() }
