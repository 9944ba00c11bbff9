package syntax

import (
	"errors"
	"strconv"
)

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("regexp: syntax error")

// ErrorCode describes a class of syntax error.
type ErrorCode string

const (
	ErrMissingParen          ErrorCode = "missing closing )"
	ErrUnexpectedParen       ErrorCode = "unexpected )"
	ErrMissingBracket        ErrorCode = "missing closing ]"
	ErrInvalidCharRange      ErrorCode = "invalid character class range"
	ErrInvalidEscape         ErrorCode = "invalid escape sequence"
	ErrTrailingBackslash     ErrorCode = "trailing backslash at end of expression"
	ErrMissingRepeatArgument ErrorCode = "missing argument to repetition operator"
	ErrInvalidRepeatSize     ErrorCode = "invalid repeat count"
	ErrInvalidRepeatOp       ErrorCode = "invalid nested repetition operator"
	ErrMisplacedAnchor       ErrorCode = "anchor not at the start or end of the expression"
	ErrUnsupportedGroup      ErrorCode = "unsupported group syntax"
	ErrNonASCIIClass         ErrorCode = "non-ASCII byte in character class"
	ErrNestingDepth          ErrorCode = "expression nests too deeply"
)

func (c ErrorCode) String() string {
	return string(c)
}

// SyntaxError reports a pattern that cannot be parsed.
type SyntaxError struct {
	Code ErrorCode
	// Expr is the whole pattern.
	Expr string
	// Pos is the byte offset of the offending construct in Expr.
	Pos int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return "error parsing regexp: " + string(e.Code) + " at offset " + strconv.Itoa(e.Pos) + ": `" + e.Expr + "`"
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
