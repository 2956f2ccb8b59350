// Package clausewitz parses the bracket-delimited key/value script notation
// used by grand-strategy game content files.
//
// Scope:
// - Lexing of operators, quoted strings, integers, reals, dates, percents
//   and symbols; comments and whitespace are discarded
// - An LL(2) grammar producing an ordered Config of Assignments
// - Map/Array disambiguation by the second token after an opening bracket
// - Positional errors; one error aborts the input unit
//
// Non-goals:
// - Comment preservation
// - Error recovery or partial trees
// - Game-schema validation
package clausewitz

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrNumberRange = errors.New("number out of range")

// =========================
// Public API
// =========================

// Parse builds a Config from an already lexed token sequence. A missing
// terminator is treated as end of input.
func Parse(tokens []Token) (*Config, error) {
	return newParser(&sliceSource{tokens: tokens}).parseConfig()
}

// ParseString lexes and parses src in one pass.
func ParseString(src string) (*Config, error) {
	return newParser(NewLexer(src)).parseConfig()
}

func ParseBytes(src []byte) (*Config, error) {
	return ParseString(string(src))
}

// =========================
// Parser Implementation
// =========================

type tokenSource interface {
	Next() Token
}

type sliceSource struct {
	tokens []Token
	i      int
}

func (s *sliceSource) Next() Token {
	if s.i < len(s.tokens) {
		tok := s.tokens[s.i]
		s.i++
		return tok
	}
	var pos Position
	if n := len(s.tokens); n > 0 {
		pos = s.tokens[n-1].Pos
	}
	return Token{Kind: TokenEOF, Pos: pos}
}

type parser struct {
	src tokenSource
	buf [3]Token // buf[0] is current, buf[1] and buf[2] are lookahead
}

func newParser(src tokenSource) *parser {
	p := &parser{src: src}
	for i := range p.buf {
		p.buf[i] = src.Next()
	}
	return p
}

func (p *parser) peek() Token {
	return p.buf[0]
}

func (p *parser) peekNth(n int) Token {
	return p.buf[n]
}

func (p *parser) advance() Token {
	tok := p.buf[0]
	if tok.Kind == TokenEOF {
		return tok
	}
	p.buf[0] = p.buf[1]
	p.buf[1] = p.buf[2]
	p.buf[2] = p.src.Next()
	return tok
}

func (p *parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

// unexpected reports the current token. Error tokens from the lexer surface
// as LexError rather than as a grammar violation.
func (p *parser) unexpected(expected ...TokenKind) error {
	tok := p.peek()
	if tok.Kind == TokenError {
		return tok.lexError()
	}
	return &ParseError{Expected: expected, Actual: tok, Err: ErrUnexpectedToken}
}

var valueStart = []TokenKind{
	TokenString, TokenSymbol, TokenInteger, TokenReal, TokenDate, TokenPercent, TokenOpen,
}

func (p *parser) parseConfig() (*Config, error) {
	cfg := &Config{}
	for !p.check(TokenEOF) {
		a, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		cfg.Assignments = append(cfg.Assignments, a)
	}
	return cfg, nil
}

// parseAssignment reads `Field Operator Value` when the token after the
// current one is an operator, otherwise a bare Value.
func (p *parser) parseAssignment() (Assignment, error) {
	a := Assignment{Pos: p.peek().Pos}
	if p.peekNth(1).Kind == TokenOperator {
		field, err := p.parseField()
		if err != nil {
			return a, err
		}
		opTok := p.advance()
		op, ok := ParseOperator(opTok.Text)
		if !ok {
			return a, &ParseError{Expected: []TokenKind{TokenOperator}, Actual: opTok, Err: ErrUnexpectedToken}
		}
		a.Field = &field
		a.Op = op
	}

	v, err := p.parseValue()
	if err != nil {
		return a, err
	}
	a.Value = v
	return a, nil
}

func (p *parser) parseField() (Field, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenInteger:
		p.advance()
		if i, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
			return Field{Kind: FieldInteger, Name: strconv.FormatInt(i, 10), Int: i}, nil
		}
		return Field{Kind: FieldString, Name: tok.Text}, nil
	case TokenString, TokenSymbol, TokenDate, TokenReal, TokenPercent:
		p.advance()
		return Field{Kind: FieldString, Name: tok.Text}, nil
	}
	return Field{}, p.unexpected(TokenString, TokenSymbol, TokenInteger)
}

func (p *parser) parseValue() (Value, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenString:
		p.advance()
		return String{V: tok.Text, Quoted: true}, nil
	case TokenSymbol:
		p.advance()
		return String{V: tok.Text}, nil
	case TokenInteger:
		p.advance()
		return parseInteger(tok)
	case TokenReal:
		p.advance()
		return parseReal(tok)
	case TokenDate:
		p.advance()
		return parseDate(tok)
	case TokenPercent:
		p.advance()
		return parsePercent(tok)
	case TokenOpen:
		return p.parseBlock()
	}
	return nil, p.unexpected(valueStart...)
}

// parseBlock reads a bracketed value. With the opener consumed, an operator
// as the second token selects a Map; anything else, including an empty
// bracket, is an Array.
func (p *parser) parseBlock() (Value, error) {
	open := p.advance()

	if p.check(TokenClose) {
		if err := p.closeBlock(open); err != nil {
			return nil, err
		}
		return &Array{}, nil
	}

	if p.peekNth(1).Kind == TokenOperator {
		m := &Map{}
		for !p.check(TokenClose) {
			if p.check(TokenEOF) {
				return nil, p.unexpected(TokenClose)
			}
			a, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			m.Items = append(m.Items, a)
		}
		if err := p.closeBlock(open); err != nil {
			return nil, err
		}
		return m, nil
	}

	arr := &Array{}
	for !p.check(TokenClose) {
		if p.check(TokenEOF) {
			return nil, p.unexpected(TokenClose)
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, v)
	}
	if err := p.closeBlock(open); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) closeBlock(open Token) error {
	want := "}"
	if open.Text == "[" {
		want = "]"
	}
	closeTok := p.advance()
	if closeTok.Text != want {
		return &ParseError{Expected: []TokenKind{TokenClose}, Actual: closeTok, Err: ErrUnbalancedBracket}
	}
	return nil
}

// =========================
// Scalar Conversion
// =========================

func parseInteger(tok Token) (Value, error) {
	if i, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
		return Integer{V: i}, nil
	}
	// Beyond int64: keep the magnitude as a real.
	return parseReal(tok)
}

func parseReal(tok Token) (Value, error) {
	f, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, &ParseError{Expected: []TokenKind{tok.Kind}, Actual: tok, Err: ErrNumberRange}
	}
	return Real{V: f}, nil
}

func parseDate(tok Token) (Value, error) {
	parts := strings.SplitN(tok.Text, ".", 3)
	var ymd [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, &ParseError{Expected: []TokenKind{TokenDate}, Actual: tok, Err: ErrNumberRange}
		}
		ymd[i] = n
	}
	return Date{Year: ymd[0], Month: ymd[1], Day: ymd[2]}, nil
}

// parsePercent truncates real-shaped percents toward zero.
func parsePercent(tok Token) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(tok.Text, "%"), 64)
	f = math.Trunc(f)
	if err != nil || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, &ParseError{Expected: []TokenKind{TokenPercent}, Actual: tok, Err: ErrNumberRange}
	}
	return Percent{V: int32(f)}, nil
}
