// Package alphabet provides the symbol predicates of the derivative engine.
//
// The engine works over a finite alphabet of bytes. A Set is a 256-bit set of
// accepted bytes; a Symbol term matches exactly one input byte contained in its
// set. Sets are plain comparable values, so two symbol terms with the same set
// are structurally equal and intern to the same node.
//
// ByteClasses partitions the alphabet into equivalence classes with respect to
// all the sets of a term, so that derivative caches can be keyed by class
// instead of by byte.
package alphabet

import (
	"math/bits"
	"strconv"
	"strings"
)

// Set is a set of bytes stored as a 256-bit bitmap.
//
// The zero value is the empty set. Sets are immutable values: every operation
// returns a new Set.
type Set struct {
	bits [4]uint64
}

// Range is an inclusive byte range [Lo, Hi].
type Range struct {
	Lo, Hi byte
}

// Predefined classes of the surface syntax.
var (
	// Digit is [0-9].
	Digit = RangeSet('0', '9')

	// Word is [0-9A-Za-z_].
	Word = RangeSet('0', '9').AddRange('A', 'Z').AddRange('a', 'z').Add('_')

	// Space is [\t\n\v\f\r ].
	Space = Of('\t', '\n', '\v', '\f', '\r', ' ')

	// AnyNotNL is every byte except '\n'.
	AnyNotNL = Single('\n').Negate()
)

// Empty returns the empty set.
func Empty() Set {
	return Set{}
}

// Full returns the set of all 256 bytes.
func Full() Set {
	return Set{bits: [4]uint64{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}}
}

// Single returns the set containing only b.
func Single(b byte) Set {
	return Set{}.Add(b)
}

// RangeSet returns the set of bytes in [lo, hi]. An inverted range is empty.
func RangeSet(lo, hi byte) Set {
	return Set{}.AddRange(lo, hi)
}

// Of returns the set of the given bytes.
func Of(bs ...byte) Set {
	var s Set
	for _, b := range bs {
		s = s.Add(b)
	}
	return s
}

// Contains reports whether b is in the set.
func (s Set) Contains(b byte) bool {
	return s.bits[b>>6]&(1<<(b&63)) != 0
}

// Add returns s with b added.
func (s Set) Add(b byte) Set {
	s.bits[b>>6] |= 1 << (b & 63)
	return s
}

// AddRange returns s with every byte of [lo, hi] added.
func (s Set) AddRange(lo, hi byte) Set {
	for c := int(lo); c <= int(hi); c++ {
		s.bits[c>>6] |= 1 << (c & 63)
	}
	return s
}

// Union returns the bytes in s or o.
func (s Set) Union(o Set) Set {
	for i := range s.bits {
		s.bits[i] |= o.bits[i]
	}
	return s
}

// Intersect returns the bytes in both s and o.
func (s Set) Intersect(o Set) Set {
	for i := range s.bits {
		s.bits[i] &= o.bits[i]
	}
	return s
}

// Negate returns the complement of s.
func (s Set) Negate() Set {
	for i := range s.bits {
		s.bits[i] = ^s.bits[i]
	}
	return s
}

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool {
	return s.bits == [4]uint64{}
}

// IsFull reports whether the set contains every byte.
func (s Set) IsFull() bool {
	return s == Full()
}

// Len returns the number of bytes in the set.
func (s Set) Len() int {
	n := 0
	for _, w := range s.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Equal reports whether s and o contain the same bytes.
func (s Set) Equal(o Set) bool {
	return s == o
}

// AppendKey appends the 32-byte canonical encoding of the set to dst.
// Used to build structural hash-consing keys.
func (s Set) AppendKey(dst []byte) []byte {
	for _, w := range s.bits {
		for i := 0; i < 8; i++ {
			dst = append(dst, byte(w>>(8*i)))
		}
	}
	return dst
}

// Bytes returns the members in ascending order.
func (s Set) Bytes() []byte {
	out := make([]byte, 0, s.Len())
	for c := 0; c < 256; c++ {
		if s.Contains(byte(c)) {
			out = append(out, byte(c))
		}
	}
	return out
}

// Ranges returns the members as maximal ascending ranges.
func (s Set) Ranges() []Range {
	var out []Range
	c := 0
	for c < 256 {
		if !s.Contains(byte(c)) {
			c++
			continue
		}
		lo := c
		for c < 256 && s.Contains(byte(c)) {
			c++
		}
		out = append(out, Range{Lo: byte(lo), Hi: byte(c - 1)})
	}
	return out
}

// String renders the set in character-class syntax: a single printable byte
// is written bare, the full set as ".", everything else as "[...]" (negated
// when that is shorter).
func (s Set) String() string {
	switch {
	case s.IsEmpty():
		return "[]"
	case s.IsFull():
		return "."
	case s.Len() == 1:
		return quoteByte(s.Bytes()[0], false)
	}
	if s.Len() > 128 {
		return "[^" + rangesString(s.Negate().Ranges()) + "]"
	}
	return "[" + rangesString(s.Ranges()) + "]"
}

func rangesString(rs []Range) string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString(quoteByte(r.Lo, true))
		if r.Hi > r.Lo {
			if r.Hi > r.Lo+1 {
				sb.WriteByte('-')
			}
			sb.WriteString(quoteByte(r.Hi, true))
		}
	}
	return sb.String()
}

func quoteByte(b byte, inClass bool) string {
	const meta = `\.+*?()|[]{}^$`
	const classMeta = `\]^-`
	switch {
	case b == '\n':
		return `\n`
	case b == '\t':
		return `\t`
	case b == '\r':
		return `\r`
	case b < 0x20 || b >= 0x7f:
		return `\x` + leftPad(strconv.FormatUint(uint64(b), 16))
	case inClass && strings.IndexByte(classMeta, b) >= 0:
		return `\` + string(b)
	case !inClass && strings.IndexByte(meta, b) >= 0:
		return `\` + string(b)
	}
	return string(b)
}

func leftPad(hex string) string {
	if len(hex) == 1 {
		return "0" + hex
	}
	return hex
}
