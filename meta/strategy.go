package meta

import (
	"github.com/coregx/deriv/prefilter"
	"github.com/coregx/deriv/term"
)

// Strategy represents the execution strategy for matching.
//
// Strategy selection is automatic based on the compiled term and the
// literals extracted from it.
type Strategy int

const (
	// UseDerivative folds the derivative over the input with no prefilter.
	// Selected when no literal constrains the matches.
	UseDerivative Strategy = iota

	// UseEmptySet answers false without reading the input.
	// Selected when the term is the empty set.
	UseEmptySet

	// UseExactLiteral answers by set lookup.
	// Selected when the language is a finite set of extracted literals.
	UseExactLiteral

	// UsePrefilter rejects inputs that miss a required literal, then derives.
	// Selected when prefix, suffix or inner literals are available.
	UsePrefilter
)

// String returns a human-readable representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case UseDerivative:
		return "UseDerivative"
	case UseEmptySet:
		return "UseEmptySet"
	case UseExactLiteral:
		return "UseExactLiteral"
	case UsePrefilter:
		return "UsePrefilter"
	default:
		return "Unknown"
	}
}

// SelectStrategy picks the strategy for t given its prefilter, which is nil
// when no literals were found or prefiltering is disabled.
func SelectStrategy(t *term.Term, pf prefilter.Prefilter) Strategy {
	switch {
	case t.Kind() == term.KindEmptySet:
		return UseEmptySet
	case pf == nil:
		return UseDerivative
	case pf.IsComplete():
		return UseExactLiteral
	default:
		return UsePrefilter
	}
}
