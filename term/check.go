package term

import (
	"errors"
	"fmt"
)

// ErrNotCanonical is matched by every InvariantError.
var ErrNotCanonical = errors.New("term is not canonical")

// Rule names an invariant of the canonical form.
type Rule string

// Invariants every term produced by a Builder satisfies.
const (
	RuleConcatEmptySet    Rule = "concat has an EmptySet child"
	RuleConcatEmptyString Rule = "concat has an EmptyString child"
	RuleConcatLeftConcat  Rule = "concat is not right-associated"
	RuleUnionSize         Rule = "union has fewer than two members"
	RuleUnionEmptySet     Rule = "union contains EmptySet"
	RuleUnionNested       Rule = "union contains a union"
	RuleUnionOrder        Rule = "union members are not strictly ordered by ID"
	RuleUnionEpsilon      Rule = "union keeps EmptyString next to a nullable member"
	RuleStarInner         Rule = "star wraps EmptySet, EmptyString or a star"
	RuleStarEpsilon       Rule = "star wraps a union containing EmptyString"
	RuleSymbolEmpty       Rule = "symbol has an empty set"
	RuleNullable          Rule = "cached nullability disagrees with the children"
)

// InvariantError reports a term that violates the canonical form.
// It always indicates a bug in the code that built the term.
type InvariantError struct {
	Term *Term
	Rule Rule
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("term %d (%s): %s", e.Term.id, e.Term.kind, e.Rule)
}

// Unwrap returns ErrNotCanonical.
func (e *InvariantError) Unwrap() error {
	return ErrNotCanonical
}

// Check verifies the canonical-form invariants on every term reachable from
// t and returns the first violation found.
func Check(t *Term) error {
	var err error
	Walk(t, func(n *Term) bool {
		if rule, ok := checkNode(n); !ok {
			err = &InvariantError{Term: n, Rule: rule}
			return false
		}
		return true
	})
	return err
}

func checkNode(n *Term) (Rule, bool) {
	switch n.kind {
	case KindEmptySet:
		if n.nullable {
			return RuleNullable, false
		}
	case KindEmptyString:
		if !n.nullable {
			return RuleNullable, false
		}
	case KindSymbol:
		if n.set.IsEmpty() {
			return RuleSymbolEmpty, false
		}
		if n.nullable {
			return RuleNullable, false
		}
	case KindConcat:
		return checkConcat(n)
	case KindUnion:
		return checkUnion(n)
	case KindStar:
		switch n.left.kind {
		case KindEmptySet, KindEmptyString, KindStar:
			return RuleStarInner, false
		case KindUnion:
			if n.left.members[0].kind == KindEmptyString {
				return RuleStarEpsilon, false
			}
		}
		if !n.nullable {
			return RuleNullable, false
		}
	}
	return "", true
}

func checkConcat(n *Term) (Rule, bool) {
	for _, c := range [2]*Term{n.left, n.right} {
		switch c.kind {
		case KindEmptySet:
			return RuleConcatEmptySet, false
		case KindEmptyString:
			return RuleConcatEmptyString, false
		}
	}
	if n.left.kind == KindConcat {
		return RuleConcatLeftConcat, false
	}
	if n.nullable != (n.left.nullable && n.right.nullable) {
		return RuleNullable, false
	}
	return "", true
}

func checkUnion(n *Term) (Rule, bool) {
	if len(n.members) < 2 {
		return RuleUnionSize, false
	}
	nullable := false
	epsilon := false
	others := false
	for i, m := range n.members {
		switch m.kind {
		case KindEmptySet:
			return RuleUnionEmptySet, false
		case KindUnion:
			return RuleUnionNested, false
		case KindEmptyString:
			epsilon = true
		default:
			others = others || m.nullable
		}
		if i > 0 && n.members[i-1].id >= m.id {
			return RuleUnionOrder, false
		}
		nullable = nullable || m.nullable
	}
	if epsilon && others {
		return RuleUnionEpsilon, false
	}
	if n.nullable != nullable {
		return RuleNullable, false
	}
	return "", true
}
