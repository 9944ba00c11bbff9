package term

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/deriv/alphabet"
)

func TestCheckDetectsViolations(t *testing.T) {
	b := NewBuilder()
	a := b.Byte('a')
	c := b.Byte('c')
	ac := b.Concat(a, c)
	as := b.Star(a)

	// Hand-made nodes bypass the smart constructors. IDs are chosen above
	// everything the builder has handed out.
	raw := func(id ID, n Term) *Term {
		n.id = id
		return &n
	}

	tests := []struct {
		name string
		term *Term
		rule Rule
	}{
		{"concat with ∅", raw(100, Term{kind: KindConcat, left: b.EmptySet(), right: a}), RuleConcatEmptySet},
		{"concat with ε", raw(101, Term{kind: KindConcat, left: a, right: b.EmptyString()}), RuleConcatEmptyString},
		{"left-nested concat", raw(102, Term{kind: KindConcat, left: ac, right: c}), RuleConcatLeftConcat},
		{"concat nullability", raw(103, Term{kind: KindConcat, nullable: true, left: a, right: c}), RuleNullable},
		{"singleton union", raw(104, Term{kind: KindUnion, members: []*Term{a}}), RuleUnionSize},
		{"union with ∅", raw(105, Term{kind: KindUnion, members: []*Term{b.EmptySet(), a}}), RuleUnionEmptySet},
		{"nested union", raw(106, Term{kind: KindUnion, members: []*Term{a, b.Union(c, ac)}}), RuleUnionNested},
		{"unordered union", raw(107, Term{kind: KindUnion, members: []*Term{c, a}}), RuleUnionOrder},
		{"duplicate members", raw(108, Term{kind: KindUnion, members: []*Term{a, a}}), RuleUnionOrder},
		{"ε beside nullable", raw(109, Term{kind: KindUnion, nullable: true, members: []*Term{b.EmptyString(), as}}), RuleUnionEpsilon},
		{"star of star", raw(110, Term{kind: KindStar, nullable: true, left: as}), RuleStarInner},
		{"star of ε", raw(111, Term{kind: KindStar, nullable: true, left: b.EmptyString()}), RuleStarInner},
		{"star of optional", raw(112, Term{kind: KindStar, nullable: true, left: b.Optional(ac)}), RuleStarEpsilon},
		{"empty symbol", raw(113, Term{kind: KindSymbol, set: alphabet.Empty()}), RuleSymbolEmpty},
		{"nested violation", raw(115, Term{kind: KindStar, nullable: true,
			left: raw(114, Term{kind: KindConcat, left: a, right: b.EmptyString()})}), RuleConcatEmptyString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.term)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotCanonical))

			var inv *InvariantError
			require.True(t, errors.As(err, &inv))
			assert.Equal(t, tt.rule, inv.Rule, "error: %v", err)
		})
	}
}

func TestCheckAcceptsBuilderTerms(t *testing.T) {
	b := NewBuilder()
	terms := []*Term{
		b.EmptySet(),
		b.EmptyString(),
		b.Literal("abc"),
		b.Star(b.Union(b.Literal("ab"), b.Byte('c'))),
		b.Optional(b.Plus(b.Symbol(alphabet.Word))),
		b.Repeat(b.Byte('x'), 2, 5),
	}
	for _, tm := range terms {
		assert.NoError(t, Check(tm), "term %s", tm)
	}
}

func TestWalkAndSize(t *testing.T) {
	b := NewBuilder()
	a := b.Byte('a')
	as := b.Star(a)
	// a* is shared by both members.
	u := b.Union(b.Concat(b.Byte('x'), as), b.Concat(b.Byte('y'), as))

	// u, xa*, ya*, x, y, a*, a
	assert.Equal(t, 7, Size(u))
	assert.Equal(t, 1, Size(a))

	visited := 0
	Walk(u, func(*Term) bool {
		visited++
		return visited < 3
	})
	assert.Equal(t, 3, visited, "walk must stop when fn returns false")
}

func TestSetsAndByteClasses(t *testing.T) {
	b := NewBuilder()
	tm := b.Concat(b.Symbol(alphabet.Digit), b.Star(b.Union(b.Byte('.'), b.Symbol(alphabet.Digit))))

	sets := Sets(tm)
	assert.Len(t, sets, 2)
	assert.ElementsMatch(t, []alphabet.Set{alphabet.Digit, alphabet.Single('.')}, sets)

	bc := ByteClasses(tm)
	// [0x00-'-'], '.', '/', ['0'-'9'], [':'-0xff]
	assert.Equal(t, 5, bc.AlphabetLen())
	assert.Equal(t, bc.Get('0'), bc.Get('9'))
	assert.NotEqual(t, bc.Get('.'), bc.Get('/'))
}
