package term

// Derivative returns the term matching every w such that c·w is matched by t.
//
// The rules are the Brzozowski derivative, evaluated bottom-up through the
// smart constructors so the result is canonical:
//
//	∂c ∅      = ∅
//	∂c ε      = ∅
//	∂c S      = ε if c ∈ S, else ∅
//	∂c (x·y)  = ∂c x · y            if x is not nullable
//	          = (∂c x · y) | ∂c y   if x is nullable
//	∂c (x|y…) = ∂c x | ∂c y | …
//	∂c x*     = ∂c x · x*
func (b *Builder) Derivative(t *Term, c byte) *Term {
	switch t.kind {
	case KindEmptySet, KindEmptyString:
		return b.emptySet
	case KindSymbol:
		if t.set.Contains(c) {
			return b.emptyString
		}
		return b.emptySet
	case KindConcat:
		d := b.Concat(b.Derivative(t.left, c), t.right)
		if t.left.nullable {
			return b.Union(d, b.Derivative(t.right, c))
		}
		return d
	case KindUnion:
		ds := make([]*Term, len(t.members))
		for i, m := range t.members {
			ds[i] = b.Derivative(m, c)
		}
		return b.Union(ds...)
	case KindStar:
		return b.Concat(b.Derivative(t.left, c), t)
	}
	panic("term: derivative of unknown kind " + t.kind.String())
}

// DerivativeString folds Derivative over every byte of s.
func (b *Builder) DerivativeString(t *Term, s []byte) *Term {
	for _, c := range s {
		t = b.Derivative(t, c)
	}
	return t
}

// Matches reports whether t matches the whole of input.
//
// The input is consumed one byte at a time; once the current term is ∅ no
// suffix can be accepted and the remaining input is skipped.
func (b *Builder) Matches(t *Term, input []byte) bool {
	for _, c := range input {
		t = b.Derivative(t, c)
		if t.kind == KindEmptySet {
			return false
		}
	}
	return t.nullable
}

// MatchString is like Matches but takes a string.
func (b *Builder) MatchString(t *Term, s string) bool {
	for i := 0; i < len(s); i++ {
		t = b.Derivative(t, s[i])
		if t.kind == KindEmptySet {
			return false
		}
	}
	return t.nullable
}
