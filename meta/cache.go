package meta

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/coregx/deriv/term"
)

// transition identifies a derivative by its source term and the equivalence
// class of the consumed byte. Every byte of a class has the same derivative.
type transition struct {
	from  term.ID
	class byte
}

// transitionCache memoizes derivatives. It holds at most a fixed number of
// transitions and evicts the least recently used one when full.
//
// The cache is safe for concurrent use. A nil *transitionCache is valid and
// never hits.
type transitionCache struct {
	lru *lru.Cache[transition, *term.Term]
}

// newTransitionCache returns a cache of the given capacity, or nil when size
// is zero.
func newTransitionCache(size int) (*transitionCache, error) {
	if size == 0 {
		return nil, nil
	}
	c, err := lru.New[transition, *term.Term](size)
	if err != nil {
		return nil, err
	}
	return &transitionCache{lru: c}, nil
}

func (c *transitionCache) get(key transition) (*term.Term, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *transitionCache) add(key transition, t *term.Term) {
	if c == nil {
		return
	}
	c.lru.Add(key, t)
}

// len returns the number of cached transitions.
func (c *transitionCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *transitionCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
