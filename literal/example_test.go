package literal_test

import (
	"fmt"

	"github.com/coregx/deriv/literal"
	"github.com/coregx/deriv/syntax"
	"github.com/coregx/deriv/term"
)

// Example extracts the literals a pattern requires.
func Example() {
	b := term.NewBuilder()
	t := syntax.MustParse(`(get|put) /api/\w+\.json`, b)

	e := literal.New(literal.DefaultConfig())
	prefixes := e.ExtractPrefixes(t)
	suffixes := e.ExtractSuffixes(t)
	for i := 0; i < prefixes.Len(); i++ {
		fmt.Printf("prefix %q\n", prefixes.Get(i).Bytes)
	}
	fmt.Printf("suffix %q\n", suffixes.Get(0).Bytes)

	// Output:
	// prefix "get /api/"
	// prefix "put /api/"
	// suffix ".json"
}

// ExampleSeq_Minimize demonstrates removing redundant literals
func ExampleSeq_Minimize() {
	// Every input starting with "foobar" also starts with "foo".
	seq := literal.NewSeq(
		literal.NewLiteral([]byte("foo"), false),
		literal.NewLiteral([]byte("foobar"), false),
	)

	seq.Minimize()
	fmt.Printf("Remaining: %s\n", seq.Get(0).Bytes)

	// Output:
	// Remaining: foo
}

// ExampleSeq_LongestCommonPrefix demonstrates finding common prefix
func ExampleSeq_LongestCommonPrefix() {
	seq := literal.NewSeq(
		literal.NewLiteral([]byte("hello"), true),
		literal.NewLiteral([]byte("help"), true),
		literal.NewLiteral([]byte("hero"), true),
	)

	fmt.Printf("Common prefix: %s\n", seq.LongestCommonPrefix())

	// Output:
	// Common prefix: he
}
