package deriv

import (
	"regexp"
	"strings"
	"testing"
)

// stdlibFullMatch compiles pattern with the standard library, anchored at
// both ends. It returns nil when stdlib rejects the pattern.
func stdlibFullMatch(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil
	}
	return re
}

// sameSemantics reports whether pattern and input avoid the places where the
// two engines differ by design. Stdlib decodes UTF-8, supports POSIX classes
// and leaves \v out of \s.
func sameSemantics(pattern string, input []byte) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] >= 0x80 {
			return false
		}
	}
	if strings.Contains(pattern, "[:") {
		return false
	}
	for i := 0; i+2 < len(pattern); i++ {
		if pattern[i] == '\\' && pattern[i+1] == 'x' && pattern[i+2] >= '8' {
			return false
		}
	}
	for _, c := range input {
		if c >= 0x80 || c == '\v' {
			return false
		}
	}
	return true
}

var compatPatterns = []string{
	`hello`,
	`\d`,
	`\d+`,
	`\D+`,
	`\w+`,
	`\W`,
	`\s+`,
	`\S+`,
	`[a-z]+`,
	`[A-Z][a-z]*`,
	`[^0-9]+`,
	`[]a]+`,
	`[a-]+`,
	`^hello`,
	`world$`,
	`^hello$`,
	`a*`,
	`a+`,
	`a?`,
	`a{2}`,
	`a{2,}`,
	`a{2,5}`,
	`a*?`,
	`a+?b`,
	`foo|bar|baz`,
	`(a|b)*abb`,
	`(?:ab|cd)+`,
	`((a|b)c)*`,
	`.*`,
	`a.c`,
	`.+@.+`,
	`\w+@\w+\.\w+`,
	`^(0|[1-9][0-9]*)(\.[0-9]*)?$`,
	`[0-9]{3}-[0-9]{4}`,
	`\.txt`,
	`a{`,
	`a{x}`,
	`(|a)+`,
	`()`,
	`\x41+`,
}

var compatInputs = []string{
	"",
	"a",
	"aa",
	"aaaaa",
	"abb",
	"aabb",
	"babb",
	"hello",
	"world",
	"hello world",
	"Hello",
	"foo",
	"baz",
	"abcd",
	"acac",
	"abc",
	"a.c",
	"a\nc",
	"123",
	"007",
	"123.45",
	"555-1234",
	"x@y.z",
	"user@example.com",
	"  \t",
	"]]a",
	"a-a",
	".txt",
	"a{",
	"a{x}",
	"AAA",
}

func TestMatchesStdlib(t *testing.T) {
	for _, pattern := range compatPatterns {
		std := stdlibFullMatch(pattern)
		if std == nil {
			t.Fatalf("stdlib rejects %q", pattern)
		}
		re, err := Compile(pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", pattern, err)
		}
		for _, input := range compatInputs {
			if got, want := re.MatchString(input), std.MatchString(input); got != want {
				t.Errorf("%q: MatchString(%q) = %v, stdlib says %v", pattern, input, got, want)
			}
		}
	}
}

// FuzzMatchStdlib compares full-match results with stdlib regexp.
//
// Run with:
//
//	go test -fuzz=FuzzMatchStdlib -fuzztime=30s
func FuzzMatchStdlib(f *testing.F) {
	for _, p := range compatPatterns {
		for _, in := range compatInputs[:8] {
			f.Add(p, []byte(in))
		}
	}

	f.Fuzz(func(t *testing.T, pattern string, input []byte) {
		if len(pattern) > 64 || len(input) > 256 || !sameSemantics(pattern, input) {
			return
		}
		std := stdlibFullMatch(pattern)
		if std == nil {
			return
		}
		re, err := Compile(pattern)
		if err != nil {
			return
		}
		if got, want := re.Match(input), std.Match(input); got != want {
			t.Errorf("%q: Match(%q) = %v, stdlib says %v", pattern, input, got, want)
		}
	})
}
