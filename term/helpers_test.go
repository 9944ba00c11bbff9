package term

import (
	"math/rand/v2"

	"github.com/coregx/deriv/alphabet"
)

// testAlphabet is the set of bytes random inputs are drawn from. 'd' never
// occurs in generated symbols, so it exercises the reject paths.
var testAlphabet = []byte("abcd")

var testSets = []alphabet.Set{
	alphabet.Single('a'),
	alphabet.Single('b'),
	alphabet.Single('c'),
	alphabet.RangeSet('a', 'b'),
	alphabet.Of('a', 'c'),
}

// randomTerm builds a random term of bounded depth through the smart
// constructors only.
func randomTerm(rng *rand.Rand, b *Builder, depth int) *Term {
	if depth <= 0 {
		switch rng.IntN(6) {
		case 0:
			return b.EmptySet()
		case 1:
			return b.EmptyString()
		default:
			return b.Symbol(testSets[rng.IntN(len(testSets))])
		}
	}
	switch rng.IntN(7) {
	case 0, 1:
		return b.Concat(randomTerm(rng, b, depth-1), randomTerm(rng, b, depth-1))
	case 2, 3:
		n := 1 + rng.IntN(3)
		ts := make([]*Term, n)
		for i := range ts {
			ts[i] = randomTerm(rng, b, depth-1)
		}
		return b.Union(ts...)
	case 4:
		return b.Star(randomTerm(rng, b, depth-1))
	case 5:
		return b.Optional(randomTerm(rng, b, depth-1))
	default:
		return randomTerm(rng, b, 0)
	}
}

func randomInput(rng *rand.Rand, maxLen int) []byte {
	n := rng.IntN(maxLen + 1)
	s := make([]byte, n)
	for i := range s {
		s[i] = testAlphabet[rng.IntN(len(testAlphabet))]
	}
	return s
}

// refMatch is an oracle independent of the derivative: it computes the set of
// positions at which a match of t starting at 0 can end.
func refMatch(t *Term, s []byte) bool {
	return refEnds(t, s, 0)[len(s)]
}

func refEnds(t *Term, s []byte, i int) map[int]bool {
	out := make(map[int]bool)
	switch t.kind {
	case KindEmptyString:
		out[i] = true
	case KindSymbol:
		if i < len(s) && t.set.Contains(s[i]) {
			out[i+1] = true
		}
	case KindConcat:
		for j := range refEnds(t.left, s, i) {
			for k := range refEnds(t.right, s, j) {
				out[k] = true
			}
		}
	case KindUnion:
		for _, m := range t.members {
			for k := range refEnds(m, s, i) {
				out[k] = true
			}
		}
	case KindStar:
		out[i] = true
		frontier := []int{i}
		for len(frontier) > 0 {
			j := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			for k := range refEnds(t.left, s, j) {
				if !out[k] {
					out[k] = true
					frontier = append(frontier, k)
				}
			}
		}
	}
	return out
}
