// Package deriv provides a regular expression matcher built on Brzozowski
// derivatives.
//
// A pattern compiles to an algebraic term. Matching takes the derivative of
// the term by each input byte and checks whether the final term accepts the
// empty string. Terms are kept canonical by smart constructors and
// hash-consed, so the terms reached while matching form a small set that is
// memoized like the states of a lazily built automaton.
//
// Matching is always against the whole input, as if the pattern were written
// ^(?:pattern)$.
//
// Basic usage:
//
//	re, err := deriv.Compile(`[0-9]+(\.[0-9]+)?`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	re.MatchString("3.14") // true
//	re.MatchString("pi")   // false
//
// Advanced usage:
//
//	config := deriv.DefaultConfig()
//	config.MaxTerms = 100_000
//	re, err := deriv.CompileWithConfig(`(a|b)*a(a|b){20}`, config)
//	ok, err := re.MatchContext(ctx, input)
//
// Supported syntax: literals, '.', classes [...] and [^...], escapes \d \D
// \w \W \s \S \n \t \r \f \v \xHH, groups (...) and (?:...), alternation,
// the quantifiers * + ? {n} {n,} {n,m}, and ^ and $ at the ends of top-level
// alternatives. Classes are byte classes; there is no Unicode support and no
// capture extraction.
package deriv

import (
	"context"

	"github.com/coregx/deriv/meta"
	"github.com/coregx/deriv/term"
)

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines.
//
// Example:
//
//	re := deriv.MustCompile(`hello|world`)
//	if re.MatchString("hello") {
//	    println("matched!")
//	}
type Regex struct {
	engine  *meta.Engine
	pattern string
}

// Compile compiles a regular expression pattern.
//
// Returns a *syntax.SyntaxError if the pattern is invalid.
//
// Example:
//
//	re, err := deriv.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, meta.DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// This is useful for patterns known to be valid at compile time.
//
// Example:
//
//	var number = deriv.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]*)?$`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("regexp: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Returns a *meta.ConfigError if the configuration is invalid.
//
// Example:
//
//	config := deriv.DefaultConfig()
//	config.CacheSize = 1 << 16 // Larger transition cache
//	re, err := deriv.CompileWithConfig("(a|b|c)*", config)
func CompileWithConfig(pattern string, config meta.Config) (*Regex, error) {
	engine, err := meta.Compile(pattern, config)
	if err != nil {
		return nil, err
	}

	return &Regex{
		engine:  engine,
		pattern: pattern,
	}, nil
}

// DefaultConfig returns the default configuration for compilation.
//
// Users can customize this and pass to CompileWithConfig.
func DefaultConfig() meta.Config {
	return meta.DefaultConfig()
}

// QuoteMeta returns a string that escapes all regular expression metacharacters
// inside the argument text; the returned string is a regular expression matching
// the literal text.
//
// Example:
//
//	escaped := deriv.QuoteMeta("hello.world")
//	// escaped = "hello\\.world"
//	re := deriv.MustCompile(escaped)
//	re.MatchString("hello.world") // true
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// Match reports whether the whole of b matches the pattern.
//
// Example:
//
//	re := deriv.MustCompile(`\d+`)
//	re.Match([]byte("123"))     // true
//	re.Match([]byte("abc 123")) // false
func (r *Regex) Match(b []byte) bool {
	return r.engine.IsMatch(b)
}

// MatchString reports whether the whole of s matches the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.engine.IsMatchString(s)
}

// MatchContext is like Match but stops early when ctx is done or when the
// number of terms grows past Config.MaxTerms. The error is ctx.Err() or
// meta.ErrTermLimitExceeded.
func (r *Regex) MatchContext(ctx context.Context, b []byte) (bool, error) {
	return r.engine.IsMatchContext(ctx, b)
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// Strategy returns the execution strategy selected at compile time.
func (r *Regex) Strategy() meta.Strategy {
	return r.engine.Strategy()
}

// Term returns the compiled term.
func (r *Regex) Term() *term.Term {
	return r.engine.Term()
}

// Stats returns execution statistics.
func (r *Regex) Stats() meta.Stats {
	return r.engine.Stats()
}

// ResetStats resets execution statistics to zero.
func (r *Regex) ResetStats() {
	r.engine.ResetStats()
}

// NumTerms returns the number of distinct terms created so far, including
// the derivatives discovered while matching.
func (r *Regex) NumTerms() int {
	return r.engine.NumTerms()
}
