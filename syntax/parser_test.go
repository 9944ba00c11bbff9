package syntax

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/deriv/alphabet"
	"github.com/coregx/deriv/term"
)

func TestParseNumber(t *testing.T) {
	b := term.NewBuilder()
	number, err := Parse(`^(0|[1-9][0-9]*)(\.[0-9]*)?$`, b)
	require.NoError(t, err)
	require.NoError(t, term.Check(number))

	tests := []struct {
		input string
		want  bool
	}{
		{"0", true},
		{"007", false},
		{"123.45", true},
		{"123.", true},
		{"", false},
		{"31415926535897932384626.4338327950288419716939937", true},
		{"31415926535897932384626.4338327.95028841971693993", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, b.MatchString(number, tt.input))
		})
	}
}

func TestParseCanonicalShapes(t *testing.T) {
	b := term.NewBuilder()
	a := b.Byte('a')

	tests := []struct {
		pattern string
		want    *term.Term
	}{
		{"", b.EmptyString()},
		{"()", b.EmptyString()},
		{"^$", b.EmptyString()},
		{"abc", b.Literal("abc")},
		{"^abc$", b.Literal("abc")},
		{"^^abc$$", b.Literal("abc")},
		{"^^$$", b.EmptyString()},
		{"(?:a)(b)c", b.Literal("abc")},
		{"ab|ab", b.Literal("ab")},
		{"b|a", b.Union(a, b.Byte('b'))},
		{"a*", b.Star(a)},
		{"a*?", b.Star(a)},
		{"(a*)*", b.Star(a)},
		{"(a?)*", b.Star(a)},
		{"a+", b.Plus(a)},
		{"a?", b.Optional(a)},
		{"a{2}", b.Literal("aa")},
		{"a{0}", b.EmptyString()},
		{"a{2,}", b.Concat(a, b.Concat(a, b.Star(a)))},
		{"[0-9]", b.Symbol(alphabet.Digit)},
		{`\d`, b.Symbol(alphabet.Digit)},
		{`[\d]`, b.Symbol(alphabet.Digit)},
		{`\w`, b.Symbol(alphabet.Word)},
		{`\s`, b.Symbol(alphabet.Space)},
		{".", b.Symbol(alphabet.AnyNotNL)},
		{`[^\n]`, b.Symbol(alphabet.AnyNotNL)},
		{`\x41`, b.Byte('A')},
		{`\.`, b.Byte('.')},
		{"a|^b$", b.Union(a, b.Byte('b'))},
		{"^$$|^^a", b.Union(b.EmptyString(), a)},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Parse(tt.pattern, b)
			require.NoError(t, err)
			assert.Same(t, tt.want, got, "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseMatching(t *testing.T) {
	tests := []struct {
		pattern string
		accept  []string
		reject  []string
	}{
		{"a{,3}", []string{"a{,3}"}, []string{"aaa"}},
		{"a{", []string{"a{"}, []string{"a"}},
		{"x{1,3}", []string{"x", "xxx"}, []string{"", "xxxx"}},
		{"[]a]", []string{"]", "a"}, []string{"b"}},
		{"[a-]", []string{"a", "-"}, []string{"b"}},
		{"[^a]", []string{"b", "\n", "\xff"}, []string{"a", ""}},
		{"[a-c.]", []string{"a", "b", "c", "."}, []string{"d"}},
		{".", []string{"a", "\xff"}, []string{"\n", ""}},
		{`\D\W\S`, []string{"a!x"}, []string{"1!x", "aax", "a! "}},
		{`[\x00-\x1f]`, []string{"\x00", "\x1f"}, []string{" "}},
		{"(?:\xe2\x82\xac)+", []string{"€", "€€"}, []string{"", "\xe2"}},
		{"(a|b)*c", []string{"c", "ababc"}, []string{"abab", "ca"}},
		{"a|", []string{"a", ""}, []string{"b"}},
		{`a\|b`, []string{"a|b"}, []string{"a", "b"}},
		{"a}", []string{"a}"}, nil},
		{"(a{10}b{100}){10}", []string{strings.Repeat(strings.Repeat("a", 10)+strings.Repeat("b", 100), 10)}, []string{strings.Repeat("a", 100)}},
		{"((ab){10}){100}", []string{strings.Repeat("ab", 1000)}, []string{strings.Repeat("ab", 999)}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			b := term.NewBuilder()
			tm, err := Parse(tt.pattern, b)
			require.NoError(t, err)
			require.NoError(t, term.Check(tm))
			for _, s := range tt.accept {
				assert.True(t, b.MatchString(tm, s), "%q should match %q", tt.pattern, s)
			}
			for _, s := range tt.reject {
				assert.False(t, b.MatchString(tm, s), "%q should not match %q", tt.pattern, s)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		pattern string
		code    ErrorCode
		pos     int
	}{
		{"(ab", ErrMissingParen, 0},
		{"a(b(c)", ErrMissingParen, 1},
		{"ab)", ErrUnexpectedParen, 2},
		{"[ab", ErrMissingBracket, 0},
		{"[]", ErrMissingBracket, 0},
		{"[z-a]", ErrInvalidCharRange, 1},
		{`[\d-z]`, ErrInvalidCharRange, 1},
		{`\q`, ErrInvalidEscape, 0},
		{`a\x4`, ErrInvalidEscape, 1},
		{`\xzz`, ErrInvalidEscape, 0},
		{`ab\`, ErrTrailingBackslash, 2},
		{"*a", ErrMissingRepeatArgument, 0},
		{"a|+b", ErrMissingRepeatArgument, 2},
		{"a*??", ErrInvalidRepeatOp, 3},
		{"{2}", ErrMissingRepeatArgument, 0},
		{"a{2,1}", ErrInvalidRepeatSize, 1},
		{"a{1001}", ErrInvalidRepeatSize, 1},
		{"a{99999999999999999999}", ErrInvalidRepeatSize, 1},
		{"a**", ErrInvalidRepeatOp, 2},
		{"a+{2}", ErrInvalidRepeatOp, 2},
		{"a^b", ErrMisplacedAnchor, 1},
		{"a$b", ErrMisplacedAnchor, 1},
		{"(^a)", ErrMisplacedAnchor, 1},
		{"(a$)", ErrMisplacedAnchor, 2},
		{"a$$b", ErrMisplacedAnchor, 2},
		{"a^^", ErrMisplacedAnchor, 1},
		{"(a{1000}){1000}", ErrInvalidRepeatSize, 9},
		{"((a{100}){100}){100}", ErrInvalidRepeatSize, 9},
		{"(a{10}){101}", ErrInvalidRepeatSize, 7},
		{"(a{2,}){501}", ErrInvalidRepeatSize, 7},
		{"(a|b{100}){11}", ErrInvalidRepeatSize, 10},
		{"(?i)a", ErrUnsupportedGroup, 0},
		{"(?P<x>a)", ErrUnsupportedGroup, 0},
		{"[é]", ErrNonASCIIClass, 1},
		{strings.Repeat("(", 1001) + strings.Repeat(")", 1001), ErrNestingDepth, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			tm, err := Parse(tt.pattern, term.NewBuilder())
			require.Error(t, err)
			assert.Nil(t, tm)
			assert.True(t, errors.Is(err, ErrSyntax))

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.Code, "error: %v", err)
			assert.Equal(t, tt.pos, se.Pos, "error: %v", err)
			assert.Equal(t, tt.pattern, se.Expr)
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	_, err := Parse("(ab", term.NewBuilder())
	require.Error(t, err)
	assert.Equal(t, "error parsing regexp: missing closing ) at offset 0: `(ab`", err.Error())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(", term.NewBuilder()) })
	assert.NotPanics(t, func() { MustParse("a", term.NewBuilder()) })
}

// randomPattern generates a pattern over a, b and c that Go's regexp package
// reads with the same meaning.
func randomPattern(rng *rand.Rand, depth int) string {
	if depth <= 0 {
		atoms := []string{"a", "b", "c", "[ab]", "[^a]", ".", `\w`}
		return atoms[rng.IntN(len(atoms))]
	}
	switch rng.IntN(5) {
	case 0:
		return randomPattern(rng, depth-1) + randomPattern(rng, depth-1)
	case 1:
		return randomPattern(rng, depth-1) + "|" + randomPattern(rng, depth-1)
	case 2:
		quants := []string{"*", "+", "?", "{2}", "{1,3}", "{0,}"}
		return "(" + randomPattern(rng, depth-1) + ")" + quants[rng.IntN(len(quants))]
	case 3:
		return "(?:" + randomPattern(rng, depth-1) + ")"
	default:
		return randomPattern(rng, 0)
	}
}

func TestParseAgreesWithRegexp(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for i := 0; i < 300; i++ {
		pattern := randomPattern(rng, 3)
		b := term.NewBuilder()
		tm, err := Parse(pattern, b)
		require.NoError(t, err, pattern)
		require.NoError(t, term.Check(tm), pattern)

		re := regexp.MustCompile(`^(?:` + pattern + `)$`)
		for j := 0; j < 10; j++ {
			n := rng.IntN(7)
			var sb strings.Builder
			for k := 0; k < n; k++ {
				sb.WriteByte("abc"[rng.IntN(3)])
			}
			s := sb.String()
			assert.Equal(t, re.MatchString(s), b.MatchString(tm, s),
				"pattern %q (#%d) input %q", pattern, i, s)
		}
	}
}
