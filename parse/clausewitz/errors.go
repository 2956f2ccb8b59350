package clausewitz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrUnbalancedBracket   = errors.New("unbalanced bracket")
)

// LexError reports input that no token rule accepts.
type LexError struct {
	Pos  Position
	Text string
	Err  error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("clausewitz:%d:%d: %v: %q", e.Pos.Line, e.Pos.Column, e.Err, e.Text)
}

func (e *LexError) Unwrap() error { return e.Err }

// ParseError reports a token the grammar does not allow at its position.
type ParseError struct {
	Expected []TokenKind
	Actual   Token
	Err      error
}

func (e *ParseError) Error() string {
	kinds := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		kinds[i] = k.String()
	}
	return fmt.Sprintf("clausewitz:%d:%d: %v: expected %s, got %s at offset %d",
		e.Actual.Pos.Line, e.Actual.Pos.Column, e.Err,
		strings.Join(kinds, " or "), e.Actual, e.Actual.Pos.Offset)
}

func (e *ParseError) Unwrap() error { return e.Err }
