package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/token"
	"github.com/exprlang/dynlinq/pkg/types"
)

func lexAll(t *testing.T, input string) []token.Token {
	t.Helper()
	lex := token.New(input)
	var toks []token.Token
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.End {
			return toks
		}
	}
}

func TestLexerWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  token.Token
	}{
		{"no whitespace", "abc", token.Token{Kind: token.Identifier, Lexeme: "abc", Position: 0}},
		{"leading whitespace", "   abc", token.Token{Kind: token.Identifier, Lexeme: "abc", Position: 3}},
		{"mixed whitespace", " \t\n\rabc", token.Token{Kind: token.Identifier, Lexeme: "abc", Position: 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks := lexAll(t, tc.input)
			require.Equal(t, tc.want, toks[0])
		})
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"double quoted", `"hello"`, "hello"},
		{"single quoted", `'world'`, "world"},
		{"empty", `""`, ""},
		{"doubled delimiter escapes", `"a""b"`, `a"b`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks := lexAll(t, tc.input)
			require.Equal(t, token.StringLiteral, toks[0].Kind)
			require.Equal(t, tc.want, toks[0].Lexeme)
		})
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := token.New(`"abc`)
	_, err := lex.Next()
	require.Error(t, err)
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrUnterminatedStringLiteral, pe.Code)
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input  string
		kind   token.Kind
		lexeme string
	}{
		{"123", token.IntegerLiteral, "123"},
		{"3.14", token.RealLiteral, "3.14"},
		{"1e10", token.RealLiteral, "1e10"},
		{"1.5e-3", token.RealLiteral, "1.5e-3"},
		{"5f", token.RealLiteral, "5"},
		{"5F", token.RealLiteral, "5"},
		{"10", token.IntegerLiteral, "10"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			toks := lexAll(t, tc.input)
			require.Equal(t, tc.kind, toks[0].Kind)
			require.Equal(t, tc.lexeme, toks[0].Lexeme)
		})
	}
}

func TestLexerPunctuation(t *testing.T) {
	toks := lexAll(t, "!= && <= <> == >= || ! % & ( ) * + , - . / : < = > ? [ ] |")
	kinds := make([]token.Kind, 0, len(toks)-1)
	for _, tok := range toks {
		if tok.Kind != token.End {
			kinds = append(kinds, tok.Kind)
		}
	}
	require.Equal(t, []token.Kind{
		token.NotEqual, token.AndAnd, token.LessEqual, token.NotEqualAlt, token.EqualEqual, token.GreaterEqual, token.OrOr,
		token.Bang, token.Percent, token.Amp, token.LParen, token.RParen, token.Star, token.Plus, token.Comma,
		token.Minus, token.Dot, token.Slash, token.Colon, token.Less, token.Equal, token.Greater, token.Question,
		token.LBracket, token.RBracket, token.Pipe,
	}, kinds)
}

func TestLexerAsIsRetagged(t *testing.T) {
	toks := lexAll(t, "as AS is IS")
	require.Equal(t, token.AsType, toks[0].Kind)
	require.Equal(t, token.AsType, toks[1].Kind)
	require.Equal(t, token.IsType, toks[2].Kind)
	require.Equal(t, token.IsType, toks[3].Kind)
}

func TestLexerInvalidCharacter(t *testing.T) {
	lex := token.New("a ^ b")
	_, err := lex.Next()
	require.NoError(t, err)
	_, err = lex.Next()
	require.Error(t, err)
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrInvalidCharacter, pe.Code)
}

func FuzzLex(f *testing.F) {
	seeds := []string{
		"it.Age > 18 && it.Name == \"Ada\"",
		"new(1 alias x, 2 alias y)",
		"Tags.Any(it == 'g')",
		"1.5e10f",
		"''",
		"\"unterminated",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		lex := token.New(input)
		for i := 0; i < 10000; i++ {
			tok, err := lex.Next()
			if err != nil {
				return
			}
			if tok.Kind == token.End {
				return
			}
		}
		t.Fatalf("lexer did not terminate on input %q", input)
	})
}
