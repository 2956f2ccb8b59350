package clausewitz

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// =========================
// Lexer
// =========================

const byteOrderMark = "\uFEFF"

// Lexer turns Clausewitz script text into tokens. Whitespace and comments
// are recognized but never returned by Next. A Lexer is restartable through
// Reset and is not safe for concurrent use.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func NewLexer(src string) *Lexer {
	l := &Lexer{}
	l.Reset(src)
	return l
}

// Reset rewinds the lexer onto src. Passing the previous input re-scans it
// from the beginning.
func (l *Lexer) Reset(src string) {
	l.src = src
	l.pos = 0
	l.line = 1
	l.col = 1
	if strings.HasPrefix(src, byteOrderMark) {
		l.pos = len(byteOrderMark)
	}
}

// Next returns the next significant token. After the end of input it keeps
// returning TokenEOF.
func (l *Lexer) Next() Token {
	for {
		tok := l.scan()
		if tok.Kind == TokenWhitespace || tok.Kind == TokenComment {
			continue
		}
		return tok
	}
}

// All yields significant tokens up to and including the terminating
// TokenEOF or the first TokenError.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == TokenEOF || tok.Kind == TokenError {
				return
			}
		}
	}
}

// Tokenize scans src completely. The result ends with exactly one TokenEOF.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	tokens := make([]Token, 0, len(src)/4+1)
	for tok := range l.All() {
		if tok.Kind == TokenError {
			return nil, tok.lexError()
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func (l *Lexer) mark() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *Lexer) advance() {
	switch c := l.src[l.pos]; {
	case c == '\n':
		l.line++
		l.col = 1
	case utf8.RuneStart(c):
		l.col++
	}
	l.pos++
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	return Token{Kind: kind, Text: l.src[start.Offset:l.pos], Pos: start}
}

func (l *Lexer) scan() Token {
	start := l.mark()
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: start}
	}

	c := l.src[l.pos]
	switch {
	case isSpace(c):
		for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
			l.advance()
		}
		return l.token(TokenWhitespace, start)
	case c == '#', c == '/' && l.peek(1) == '/':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance()
		}
		return l.token(TokenComment, start)
	case c == '/' && l.peek(1) == '*':
		return l.scanBlockComment(start)
	case c == '"':
		return l.scanString(start)
	case c == '{', c == '[':
		l.advance()
		return l.token(TokenOpen, start)
	case c == '}', c == ']':
		l.advance()
		return l.token(TokenClose, start)
	case c == '=':
		l.advance()
		if l.peek(0) == '=' {
			l.advance()
		}
		return l.token(TokenOperator, start)
	case c == '<':
		l.advance()
		if n := l.peek(0); n == '=' || n == '>' {
			l.advance()
		}
		return l.token(TokenOperator, start)
	case c == '>':
		l.advance()
		if l.peek(0) == '=' {
			l.advance()
		}
		return l.token(TokenOperator, start)
	case (c == '!' || c == '?') && l.peek(1) == '=':
		l.advance()
		l.advance()
		return l.token(TokenOperator, start)
	case isWordByte(c):
		return l.scanWord(start)
	}

	l.advance()
	return l.errorToken(start, ErrUnexpectedCharacter)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advance()
	l.advance()
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peek(1) == '/' {
			l.advance()
			l.advance()
			return l.token(TokenComment, start)
		}
		l.advance()
	}
	return l.errorToken(start, ErrUnterminatedComment)
}

// scanString reads a quoted string. The notation has no escapes and a
// string never spans a line break.
func (l *Lexer) scanString(start Position) Token {
	l.advance()
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '"':
			tok := Token{Kind: TokenString, Text: l.src[start.Offset+1 : l.pos], Pos: start}
			l.advance()
			return tok
		case '\n':
			return l.errorToken(start, ErrUnterminatedString)
		}
		l.advance()
	}
	return l.errorToken(start, ErrUnterminatedString)
}

func (l *Lexer) scanWord(start Position) Token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if !isWordByte(c) {
			break
		}
		if c == '/' && (l.peek(1) == '/' || l.peek(1) == '*') {
			break
		}
		if (c == '!' || c == '?') && l.peek(1) == '=' && l.pos > start.Offset {
			break
		}
		l.advance()
	}
	tok := l.token(TokenSymbol, start)
	tok.Kind = classifyWord(tok.Text)
	return tok
}

func (l *Lexer) errorToken(start Position, err error) Token {
	tok := l.token(TokenError, start)
	tok.err = err
	return tok
}

// classifyWord decides whether a bare run is numeric, a date or a symbol.
// Numbers are read greedily; any leftover character makes the run a symbol.
func classifyWord(s string) TokenKind {
	i := 0
	if s[0] == '-' {
		i++
	}
	j := skipDigits(s, i)
	if j == i {
		return TokenSymbol
	}
	i = j
	if i == len(s) {
		return TokenInteger
	}
	if s[i] == '%' {
		if i+1 == len(s) {
			return TokenPercent
		}
		return TokenSymbol
	}
	if s[i] != '.' {
		return TokenSymbol
	}

	j = skipDigits(s, i+1)
	if j == i+1 {
		return TokenSymbol
	}
	i = j
	if i == len(s) {
		return TokenReal
	}
	if s[i] == '%' && i+1 == len(s) {
		return TokenPercent
	}
	if s[i] != '.' {
		return TokenSymbol
	}

	j = skipDigits(s, i+1)
	if j == i+1 || j != len(s) {
		return TokenSymbol
	}
	return TokenDate
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isWordByte(c byte) bool {
	switch c {
	case '=', '<', '>', '{', '}', '[', ']', '"', '#':
		return false
	}
	return c > ' ' && c != 0x7f
}
