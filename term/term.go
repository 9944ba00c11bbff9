// Package term implements regular expressions as algebraic terms and the
// Brzozowski derivative over them.
//
// A Term is one of six shapes: EmptySet, EmptyString, Symbol, Concat, Union
// and Star. Terms are never built directly: every term comes out of a
// Builder, whose smart constructors fold the algebraic identities of the
// shapes (concatenation with the empty language, union idempotence, nested
// stars, ...) at construction time. Every term a Builder returns is therefore
// in canonical form, and the derivative operator, which only uses the smart
// constructors, preserves that form.
//
// A Builder also hash-conses its terms: structurally equal terms are the same
// pointer. Equality is pointer comparison and union members can be kept as a
// sorted, duplicate-free set of IDs.
//
// Matching a byte string is a fold of Derivative over the input followed by a
// Nullable check on the final term:
//
//	b := term.NewBuilder()
//	digits := b.Plus(b.Symbol(alphabet.Digit))
//	b.Matches(digits, []byte("2024")) // true
package term

import (
	"strconv"
	"strings"

	"github.com/coregx/deriv/alphabet"
)

// Kind identifies the shape of a term.
type Kind uint8

const (
	// KindEmptySet matches nothing.
	KindEmptySet Kind = iota

	// KindEmptyString matches only the zero-length string.
	KindEmptyString

	// KindSymbol matches exactly one byte of its set.
	KindSymbol

	// KindConcat matches its left child followed by its right child.
	KindConcat

	// KindUnion matches any one of its members.
	KindUnion

	// KindStar matches zero or more repetitions of its inner term.
	KindStar
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmptySet:
		return "EmptySet"
	case KindEmptyString:
		return "EmptyString"
	case KindSymbol:
		return "Symbol"
	case KindConcat:
		return "Concat"
	case KindUnion:
		return "Union"
	case KindStar:
		return "Star"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ID is the dense identifier a Builder assigns to each interned term.
// IDs are unique within one Builder.
type ID uint32

// Term is an immutable, hash-consed regular expression node.
//
// Children are shared by reference: a derivative allocates new top-level
// nodes only and points into the terms it was derived from.
type Term struct {
	id       ID
	kind     Kind
	nullable bool

	// set is the accepted bytes of a Symbol.
	set alphabet.Set

	// left is the first child of a Concat and the inner term of a Star.
	left *Term

	// right is the second child of a Concat.
	right *Term

	// members of a Union, strictly ascending by ID.
	members []*Term
}

// ID returns the term's identifier within its Builder.
func (t *Term) ID() ID { return t.id }

// Kind returns the shape of the term.
func (t *Term) Kind() Kind { return t.kind }

// Nullable reports whether the term matches the empty string.
func (t *Term) Nullable() bool { return t.nullable }

// Set returns the accepted bytes of a Symbol term, or the empty set.
func (t *Term) Set() alphabet.Set { return t.set }

// Left returns the first child of a Concat term.
func (t *Term) Left() *Term {
	if t.kind != KindConcat {
		return nil
	}
	return t.left
}

// Right returns the second child of a Concat term.
func (t *Term) Right() *Term { return t.right }

// Inner returns the repeated term of a Star term.
func (t *Term) Inner() *Term {
	if t.kind != KindStar {
		return nil
	}
	return t.left
}

// Members returns the members of a Union term in canonical order.
// The slice must not be modified.
func (t *Term) Members() []*Term { return t.members }

// Nullable reports whether t matches the empty string.
func Nullable(t *Term) bool { return t.nullable }

// Equal reports whether a and b are the same term.
// Both must come from the same Builder.
func Equal(a, b *Term) bool { return a == b }

// String renders the term in regular-expression syntax.
// EmptySet is written as ∅ and a bare EmptyString as ε.
func (t *Term) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Term) write(sb *strings.Builder) {
	switch t.kind {
	case KindEmptySet:
		sb.WriteString("∅")
	case KindEmptyString:
		sb.WriteString("ε")
	case KindSymbol:
		sb.WriteString(t.set.String())
	case KindConcat:
		t.left.write(sb)
		t.right.write(sb)
	case KindUnion:
		t.writeUnion(sb)
	case KindStar:
		inner := t.left
		atomic := inner.kind == KindSymbol || inner.kind == KindUnion
		if !atomic {
			sb.WriteByte('(')
		}
		inner.write(sb)
		if !atomic {
			sb.WriteByte(')')
		}
		sb.WriteByte('*')
	}
}

// writeUnion prints an ε member as a trailing '?' on the remaining members.
func (t *Term) writeUnion(sb *strings.Builder) {
	optional := false
	sb.WriteByte('(')
	first := true
	for _, m := range t.members {
		if m.kind == KindEmptyString {
			optional = true
			continue
		}
		if !first {
			sb.WriteByte('|')
		}
		first = false
		m.write(sb)
	}
	sb.WriteByte(')')
	if optional {
		sb.WriteByte('?')
	}
}
