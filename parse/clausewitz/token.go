package clausewitz

import "fmt"

// =========================
// Tokens
// =========================

type TokenKind uint8

const (
	TokenEOF        TokenKind = iota
	TokenError                // unrecognized input
	TokenOperator             // = <> > < >= <= == != ?=
	TokenString               // "quoted"
	TokenInteger              // 42, -0
	TokenReal                 // 1.5
	TokenDate                 // 1444.11.11
	TokenPercent              // 50%
	TokenSymbol               // bare identifiers, @variables, keywords
	TokenOpen                 // { or [
	TokenClose                // } or ]
	TokenWhitespace           // discarded
	TokenComment              // discarded
)

var tokenKindNames = [...]string{
	TokenEOF:        "EOF",
	TokenError:      "Error",
	TokenOperator:   "Operator",
	TokenString:     "String",
	TokenInteger:    "Integer",
	TokenReal:       "Real",
	TokenDate:       "Date",
	TokenPercent:    "Percent",
	TokenSymbol:     "Symbol",
	TokenOpen:       "Open",
	TokenClose:      "Close",
	TokenWhitespace: "Whitespace",
	TokenComment:    "Comment",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// scalar reports whether a token of this kind can stand alone as a value.
func (k TokenKind) scalar() bool {
	switch k {
	case TokenString, TokenInteger, TokenReal, TokenDate, TokenPercent, TokenSymbol:
		return true
	}
	return false
}

// Position is a location in the source text. Line and Column are 1-based
// and Column counts runes. Offset is a byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d (offset %d)", p.Line, p.Column, p.Offset)
}

// Token is a lexeme. Text slices the source; for strings it excludes the quotes.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position

	err error // cause of a TokenError
}

func (t Token) lexError() *LexError {
	err := t.err
	if err == nil {
		err = ErrUnexpectedCharacter
	}
	return &LexError{Pos: t.Pos, Text: t.Text, Err: err}
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}
