package clausewitz

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	convey.Convey("tokenize a nested clause", t, func() {
		tokens, err := Tokenize(`a = { b >= 1.5 c <> "x y" }`)
		convey.So(err, convey.ShouldBeNil)
		convey.So(kinds(tokens), convey.ShouldResemble, []TokenKind{
			TokenSymbol, TokenOperator, TokenOpen,
			TokenSymbol, TokenOperator, TokenReal,
			TokenSymbol, TokenOperator, TokenString,
			TokenClose, TokenEOF,
		})
		convey.So(tokens[8].Text, convey.ShouldEqual, "x y")
		convey.So(tokens[4].Text, convey.ShouldEqual, ">=")
	})
}

func TestClassifyWord(t *testing.T) {
	convey.Convey("bare runs are classified greedily", t, func() {
		cases := map[string]TokenKind{
			"1444.11.11": TokenDate,
			"-50.1.1":    TokenDate,
			"-0":         TokenInteger,
			"42":         TokenInteger,
			"50%":        TokenPercent,
			"12.5%":      TokenPercent,
			"-1.5":       TokenReal,
			"1.":         TokenSymbol,
			"-":          TokenSymbol,
			"@var":       TokenSymbol,
			"1.2.3.4":    TokenSymbol,
			"12abc":      TokenSymbol,
			"5%x":        TokenSymbol,
			"1-2":        TokenSymbol,
			"10:30":      TokenSymbol,
		}
		for text, want := range cases {
			convey.So(classifyWord(text), convey.ShouldEqual, want)
		}
	})
}

func TestOperators(t *testing.T) {
	convey.Convey("every operator spelling is one token", t, func() {
		tokens, err := Tokenize("= <> > < >= <= == != ?=")
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(tokens), convey.ShouldEqual, 10)
		for _, tok := range tokens[:9] {
			convey.So(tok.Kind, convey.ShouldEqual, TokenOperator)
			_, ok := ParseOperator(tok.Text)
			convey.So(ok, convey.ShouldBeTrue)
		}
	})

	convey.Convey("a symbol stops before a negated comparison", t, func() {
		tokens, err := Tokenize("a!=b")
		convey.So(err, convey.ShouldBeNil)
		convey.So(kinds(tokens), convey.ShouldResemble, []TokenKind{TokenSymbol, TokenOperator, TokenSymbol, TokenEOF})
		convey.So(tokens[1].Text, convey.ShouldEqual, "!=")
	})
}

func TestCommentsAndPositions(t *testing.T) {
	convey.Convey("comments are discarded and positions survive", t, func() {
		tokens, err := Tokenize("# c\na // d\n/* e\nf */ b")
		convey.So(err, convey.ShouldBeNil)
		convey.So(kinds(tokens), convey.ShouldResemble, []TokenKind{TokenSymbol, TokenSymbol, TokenEOF})
		convey.So(tokens[0].Pos, convey.ShouldResemble, Position{Offset: 4, Line: 2, Column: 1})
		convey.So(tokens[1].Pos.Line, convey.ShouldEqual, 4)
		convey.So(tokens[1].Pos.Column, convey.ShouldEqual, 6)
	})

	convey.Convey("columns count characters, not bytes", t, func() {
		tokens, err := Tokenize("name = \"Åland\" x = 1")
		convey.So(err, convey.ShouldBeNil)
		convey.So(tokens[3].Text, convey.ShouldEqual, "x")
		convey.So(tokens[3].Pos.Column, convey.ShouldEqual, 16)
		convey.So(tokens[3].Pos.Offset, convey.ShouldEqual, 16)
	})

	convey.Convey("a leading byte order mark is skipped", t, func() {
		tokens, err := Tokenize("\uFEFFa = 1")
		convey.So(err, convey.ShouldBeNil)
		convey.So(tokens[0].Text, convey.ShouldEqual, "a")
		convey.So(tokens[0].Pos.Offset, convey.ShouldEqual, 3)
		convey.So(tokens[0].Pos.Column, convey.ShouldEqual, 1)
	})
}

func TestTerminator(t *testing.T) {
	convey.Convey("exactly one terminator", t, func() {
		for _, src := range []string{"", "   \n", "# only a comment", "a = b"} {
			tokens, err := Tokenize(src)
			convey.So(err, convey.ShouldBeNil)
			eofs := 0
			for _, tok := range tokens {
				if tok.Kind == TokenEOF {
					eofs++
				}
			}
			convey.So(eofs, convey.ShouldEqual, 1)
			convey.So(tokens[len(tokens)-1].Kind, convey.ShouldEqual, TokenEOF)
		}
	})

	convey.Convey("Next keeps returning EOF", t, func() {
		l := NewLexer("x")
		convey.So(l.Next().Kind, convey.ShouldEqual, TokenSymbol)
		convey.So(l.Next().Kind, convey.ShouldEqual, TokenEOF)
		convey.So(l.Next().Kind, convey.ShouldEqual, TokenEOF)
	})
}

func TestReset(t *testing.T) {
	convey.Convey("reset re-scans from the beginning", t, func() {
		l := NewLexer("a = 1")
		first := []Token{l.Next(), l.Next(), l.Next()}
		l.Reset("a = 1")
		second := []Token{l.Next(), l.Next(), l.Next()}
		convey.So(second, convey.ShouldResemble, first)

		l.Reset("b")
		tok := l.Next()
		convey.So(tok.Text, convey.ShouldEqual, "b")
		convey.So(tok.Pos.Offset, convey.ShouldEqual, 0)
	})
}

func TestLexErrors(t *testing.T) {
	convey.Convey("malformed input yields positioned lex errors", t, func() {
		cases := map[string]error{
			`a = "abc`:       ErrUnterminatedString,
			"a = \"ab\ncd\"": ErrUnterminatedString,
			"a = b /* open":  ErrUnterminatedComment,
			"a = \x01":       ErrUnexpectedCharacter,
		}
		for src, want := range cases {
			_, err := Tokenize(src)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, want), convey.ShouldBeTrue)
			var lexErr *LexError
			convey.So(errors.As(err, &lexErr), convey.ShouldBeTrue)
			convey.So(lexErr.Pos.Line, convey.ShouldEqual, 1)
		}
	})
}
