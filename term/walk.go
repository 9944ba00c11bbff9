package term

import (
	"github.com/coregx/deriv/alphabet"
	"github.com/coregx/deriv/internal/sparse"
)

// Walk calls fn once for every distinct term reachable from t, parents
// before children. Shared subterms are visited once. Walk stops early when fn
// returns false.
func Walk(t *Term, fn func(*Term) bool) {
	// Children are interned before their parents, so every reachable ID is
	// at most t's.
	seen := sparse.NewSparseSet(uint32(t.id) + 1)
	stack := []*Term{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Insert(uint32(n.id)) {
			continue
		}
		if !fn(n) {
			return
		}
		switch n.kind {
		case KindConcat:
			stack = append(stack, n.right, n.left)
		case KindStar:
			stack = append(stack, n.left)
		case KindUnion:
			for i := len(n.members) - 1; i >= 0; i-- {
				stack = append(stack, n.members[i])
			}
		}
	}
}

// Size returns the number of distinct nodes reachable from t.
func Size(t *Term) int {
	n := 0
	Walk(t, func(*Term) bool {
		n++
		return true
	})
	return n
}

// Sets returns the distinct symbol sets occurring in t.
func Sets(t *Term) []alphabet.Set {
	// Symbols are interned by set, so distinct nodes carry distinct sets.
	var sets []alphabet.Set
	Walk(t, func(n *Term) bool {
		if n.kind == KindSymbol {
			sets = append(sets, n.set)
		}
		return true
	})
	return sets
}

// ByteClasses partitions the alphabet by the symbol sets of t.
//
// Derivatives never introduce new sets, so the partition of a term is valid
// for every term derived from it.
func ByteClasses(t *Term) alphabet.ByteClasses {
	bcs := alphabet.NewByteClassSet()
	for _, s := range Sets(t) {
		bcs.AddSet(s)
	}
	return bcs.ByteClasses()
}
