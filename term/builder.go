package term

import (
	"encoding/binary"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/coregx/deriv/alphabet"
	"github.com/coregx/deriv/internal/conv"
)

// Builder owns a hash-consing table of terms and provides the smart
// constructors, the only way to create terms.
//
// Every constructor returns a canonical term: the identities of the shapes are
// applied before the node is interned, and a node that already exists in the
// table is returned instead of a fresh allocation.
//
// A Builder is safe for concurrent use. Terms built by different Builders must
// not be combined.
type Builder struct {
	table  *xsync.MapOf[string, *Term]
	nextID atomic.Int64

	emptySet    *Term
	emptyString *Term
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	b := &Builder{
		table: xsync.NewMapOf[string, *Term](),
	}
	b.emptySet = b.intern([]byte{byte(KindEmptySet)}, Term{kind: KindEmptySet})
	b.emptyString = b.intern([]byte{byte(KindEmptyString)}, Term{kind: KindEmptyString, nullable: true})
	return b
}

// Len returns the number of distinct terms interned so far.
func (b *Builder) Len() int {
	return b.table.Size()
}

// intern returns the table entry for key, inserting proto with a fresh ID
// when the key is new.
func (b *Builder) intern(key []byte, proto Term) *Term {
	k := string(key)
	if t, ok := b.table.Load(k); ok {
		return t
	}
	t, _ := b.table.LoadOrCompute(k, func() *Term {
		n := proto
		n.id = ID(conv.IntToUint32(int(b.nextID.Add(1) - 1)))
		return &n
	})
	return t
}

func appendID(dst []byte, t *Term) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(t.id))
}

// EmptySet returns the term matching nothing.
func (b *Builder) EmptySet() *Term {
	return b.emptySet
}

// EmptyString returns the term matching only the empty string.
func (b *Builder) EmptyString() *Term {
	return b.emptyString
}

// Symbol returns the term matching one byte of set.
// An empty set matches nothing and yields EmptySet.
func (b *Builder) Symbol(set alphabet.Set) *Term {
	if set.IsEmpty() {
		return b.emptySet
	}
	key := set.AppendKey([]byte{byte(KindSymbol)})
	return b.intern(key, Term{kind: KindSymbol, set: set})
}

// Byte returns the term matching exactly c.
func (b *Builder) Byte(c byte) *Term {
	return b.Symbol(alphabet.Single(c))
}

// Literal returns the term matching exactly s.
func (b *Builder) Literal(s string) *Term {
	t := b.emptyString
	for i := len(s) - 1; i >= 0; i-- {
		t = b.Concat(b.Byte(s[i]), t)
	}
	return t
}

// Concat returns the term matching x followed by y.
//
//   - ∅·y = x·∅ = ∅
//   - ε·y = y, x·ε = x
//   - (p·q)·y = p·(q·y), so concatenations are always right-leaning
func (b *Builder) Concat(x, y *Term) *Term {
	switch {
	case x.kind == KindEmptySet || y.kind == KindEmptySet:
		return b.emptySet
	case x.kind == KindEmptyString:
		return y
	case y.kind == KindEmptyString:
		return x
	case x.kind == KindConcat:
		return b.Concat(x.left, b.Concat(x.right, y))
	}
	key := make([]byte, 0, 9)
	key = append(key, byte(KindConcat))
	key = appendID(key, x)
	key = appendID(key, y)
	return b.intern(key, Term{
		kind:     KindConcat,
		nullable: x.nullable && y.nullable,
		left:     x,
		right:    y,
	})
}

// ConcatAll concatenates ts from left to right. No terms yield EmptyString.
func (b *Builder) ConcatAll(ts ...*Term) *Term {
	t := b.emptyString
	for i := len(ts) - 1; i >= 0; i-- {
		t = b.Concat(ts[i], t)
	}
	return t
}

// Union returns the term matching any of ts.
//
// Nested unions are flattened, ∅ members dropped and duplicates removed; ε is
// dropped when another member is already nullable. No members yield ∅ and a
// single member is returned as is. Members are stored in ID order, so the
// order of ts never affects the result.
func (b *Builder) Union(ts ...*Term) *Term {
	members := make([]*Term, 0, len(ts))
	for _, t := range ts {
		switch t.kind {
		case KindEmptySet:
		case KindUnion:
			members = append(members, t.members...)
		default:
			members = append(members, t)
		}
	}
	slices.SortFunc(members, func(x, y *Term) int {
		switch {
		case x.id < y.id:
			return -1
		case x.id > y.id:
			return 1
		}
		return 0
	})
	members = slices.Compact(members)

	nullable := false
	hasEpsilon := false
	for _, m := range members {
		if m.kind == KindEmptyString {
			hasEpsilon = true
		} else if m.nullable {
			nullable = true
		}
	}
	if hasEpsilon && nullable {
		members = members[1:]
	}

	switch len(members) {
	case 0:
		return b.emptySet
	case 1:
		return members[0]
	}

	key := make([]byte, 0, 1+4*len(members))
	key = append(key, byte(KindUnion))
	for _, m := range members {
		key = appendID(key, m)
	}
	return b.intern(key, Term{
		kind:     KindUnion,
		nullable: nullable || hasEpsilon,
		members:  slices.Clip(members),
	})
}

// Star returns the term matching zero or more repetitions of x.
//
//   - ∅* = ε* = ε
//   - (x*)* = x*
//   - (ε|x)* = x*
func (b *Builder) Star(x *Term) *Term {
	switch x.kind {
	case KindEmptySet, KindEmptyString:
		return b.emptyString
	case KindStar:
		return x
	case KindUnion:
		// ε has the lowest ID a union member can have, so it sorts first.
		if x.members[0].kind == KindEmptyString {
			return b.Star(b.Union(x.members[1:]...))
		}
	}
	key := make([]byte, 0, 5)
	key = append(key, byte(KindStar))
	key = appendID(key, x)
	return b.intern(key, Term{
		kind:     KindStar,
		nullable: true,
		left:     x,
	})
}

// Optional returns the term matching x or the empty string.
func (b *Builder) Optional(x *Term) *Term {
	return b.Union(b.emptyString, x)
}

// Plus returns the term matching one or more repetitions of x.
func (b *Builder) Plus(x *Term) *Term {
	return b.Concat(x, b.Star(x))
}

// Repeat returns the term matching between min and max repetitions of x.
// A negative max means no upper bound. min > max yields EmptySet.
func (b *Builder) Repeat(x *Term, min, max int) *Term {
	if min < 0 {
		min = 0
	}
	if max >= 0 && max < min {
		return b.emptySet
	}
	var tail *Term
	if max < 0 {
		tail = b.Star(x)
	} else {
		// x{0,k} nests as (x(x(...)?)?)? so each copy depends on the previous one.
		tail = b.emptyString
		for i := 0; i < max-min; i++ {
			tail = b.Optional(b.Concat(x, tail))
		}
	}
	t := tail
	for i := 0; i < min; i++ {
		t = b.Concat(x, t)
	}
	return t
}
