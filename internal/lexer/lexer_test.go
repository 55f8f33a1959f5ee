package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/lexer"
	"github.com/mna/ore/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := lexer.New([]byte(src))
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Empty(t, lx.Errors())
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestNextBrackets(t *testing.T) {
	// regression: the lexer used to emit a single generic GROUP_OPEN/CLOSE
	// kind for all bracket characters, which the parser's specific-kind
	// checks (LPAREN, RBRACK, ...) could never match.
	toks := scanAll(t, "( ) [ ] { }")
	assert.Equal(t, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACK, token.RBRACK, token.LBRACE, token.RBRACE, token.EOF,
	}, kinds(toks))
}

func TestNextOperators(t *testing.T) {
	cases := []struct {
		src  string
		want token.Kind
	}{
		{"+", token.PLUS}, {"++", token.INC}, {"+=", token.PLUS_EQ},
		{"-", token.MINUS}, {"--", token.DEC}, {"-=", token.MINUS_EQ},
		{"*", token.STAR}, {"*=", token.STAR_EQ},
		{"/", token.SLASH}, {"/=", token.SLASH_EQ},
		{"%", token.PERCENT}, {"%=", token.PERCENT_EQ},
		{"=", token.ASSIGN}, {"==", token.EQL},
		{"!", token.NOT}, {"!=", token.NEQ},
		{"<", token.LT}, {"<=", token.LE}, {"<<", token.SHL},
		{">", token.GT}, {">=", token.GE}, {">>", token.SHR},
		{"&", token.AMP}, {"&&", token.LAND}, {"&=", token.AMP_EQ},
		{"|", token.PIPE}, {"||", token.LOR}, {"|=", token.PIPE_EQ},
		{"^", token.CARET}, {"^=", token.CARET_EQ},
		{".", token.DOT}, {",", token.COMMA}, {":", token.COLON}, {";", token.TERMINATOR},
	}
	for _, c := range cases {
		toks := scanAll(t, c.src)
		require.Len(t, toks, 2, "src %q", c.src)
		assert.Equal(t, c.want, toks[0].Kind, "src %q", c.src)
	}
}

func TestNextKeywordsVsIdent(t *testing.T) {
	toks := scanAll(t, "for while if elif else return break continue import function native sync true false var this null from foobar")
	want := []token.Kind{
		token.FOR, token.WHILE, token.IF, token.ELIF, token.ELSE, token.RETURN,
		token.BREAK, token.CONTINUE, token.IMPORT, token.FUNCTION, token.NATIVE,
		token.SYNC, token.TRUE, token.FALSE, token.VAR, token.THIS, token.NULL,
		token.FROM, token.IDENT, token.EOF,
	}
	assert.Equal(t, want, kinds(toks))
}

func TestNextNumberAndString(t *testing.T) {
	toks := scanAll(t, `123 3.14 "hello"`)
	require.Len(t, toks, 4)
	assert.Equal(t, token.INT, toks[0].Kind)
	assert.Equal(t, "123", toks[0].Text)
	assert.Equal(t, token.FLOAT, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Text)
	assert.Equal(t, token.STRING, toks[2].Kind)
	assert.Equal(t, `"hello"`, toks[2].Text)
	assert.Equal(t, "hello", lexer.DecodeStringLiteral(toks[2].Text))
}

func TestNextStringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\t\"\\c"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, `"a\nb\t\"\\c"`, toks[0].Text)
	assert.Equal(t, "a\nb\t\"\\c", lexer.DecodeStringLiteral(toks[0].Text))
}

func TestNextStringRoundTripsAsRawLexeme(t *testing.T) {
	src := `"hi\nthere"`
	toks := scanAll(t, src)
	require.Len(t, toks, 2)
	tok := toks[0]
	assert.True(t, strings.HasPrefix(src[tok.Offset:], tok.Text))
}

func TestNextCommentsAreSkipped(t *testing.T) {
	toks := scanAll(t, "1 // line comment\n2 /* block\ncomment */ 3")
	require.Len(t, toks, 4)
	assert.Equal(t, "1", toks[0].Text)
	assert.Equal(t, "2", toks[1].Text)
	assert.Equal(t, "3", toks[2].Text)
}

func TestNextIllegalCharacter(t *testing.T) {
	lx := lexer.New([]byte("1 ~ 2"))
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Len(t, lx.Errors(), 1)
	assert.Equal(t, lexer.UnexpectedCharacter, lx.Errors()[0].Kind)
}

func TestNextLineColumnTracking(t *testing.T) {
	toks := scanAll(t, "a\nb")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}
