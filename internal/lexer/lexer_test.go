package lexer

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typesOf(tokens []token.Token) []token.Type {
	out := make([]token.Type, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestLexSimpleCall(t *testing.T) {
	tokens, diags := LexAll("saw(440)", "<test>")
	require.Empty(t, diags)
	assert.Equal(t, []token.Type{token.Identifier, token.LParen, token.Number, token.RParen, token.Eof}, typesOf(tokens))
	assert.Equal(t, "saw", tokens[0].Text)
	assert.Equal(t, 440.0, tokens[2].Number.Value)
	assert.True(t, tokens[2].Number.IsInteger)
}

func TestLexPipeOperator(t *testing.T) {
	tokens, diags := LexAll("saw(440) |> lpf(800)", "<test>")
	require.Empty(t, diags)
	assert.Contains(t, typesOf(tokens), token.Pipe)
}

func TestLexNegativeNumber(t *testing.T) {
	tokens, _ := LexAll("-1.5", "<test>")
	require.Len(t, tokens, 2)
	assert.Equal(t, token.Number, tokens[0].Type)
	assert.Equal(t, -1.5, tokens[0].Number.Value)
	assert.False(t, tokens[0].Number.IsInteger)
}

func TestLexArrowVersusMinus(t *testing.T) {
	tokens, _ := LexAll("x -> y - 1", "<test>")
	assert.Equal(t, token.Arrow, tokens[1].Type)
	assert.Equal(t, token.Minus, tokens[3].Type)
}

func TestLexPitchLiteral(t *testing.T) {
	tokens, diags := LexAll("'c4'", "<test>")
	require.Empty(t, diags)
	require.Equal(t, token.PitchLit, tokens[0].Type)
	assert.Equal(t, uint8(60), tokens[0].Pitch.MIDINote)
}

func TestLexChordLiteral(t *testing.T) {
	tokens, _ := LexAll("'a3:min7'", "<test>")
	require.Equal(t, token.ChordLit, tokens[0].Type)
	assert.Equal(t, uint8(57), tokens[0].Chord.RootMIDI)
	assert.Equal(t, []int8{0, 3, 7, 10}, tokens[0].Chord.Intervals)
}

func TestLexPlainSingleQuoteString(t *testing.T) {
	tokens, _ := LexAll("'hello world'", "<test>")
	require.Equal(t, token.String, tokens[0].Type)
	assert.Equal(t, "hello world", tokens[0].Text)
}

func TestLexStringEscapes(t *testing.T) {
	tokens, diags := LexAll(`"a\nb"`, "<test>")
	require.Empty(t, diags)
	assert.Equal(t, "a\nb", tokens[0].Text)
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	tokens, diags := LexAll(`"abc`, "<test>")
	require.Len(t, diags, 1)
	assert.Equal(t, "L001", diags[0].Code)
	assert.Equal(t, token.Error, tokens[0].Type)
}

func TestLexKeywords(t *testing.T) {
	tokens, _ := LexAll("fn match post true false", "<test>")
	assert.Equal(t, []token.Type{token.Fn, token.Match, token.Post, token.True, token.False, token.Eof}, typesOf(tokens))
}

func TestLexLineComment(t *testing.T) {
	tokens, _ := LexAll("1 // a comment\n2", "<test>")
	require.Len(t, tokens, 3)
	assert.Equal(t, 1.0, tokens[0].Number.Value)
	assert.Equal(t, 2.0, tokens[1].Number.Value)
}

func TestLexUnderscoreWildcard(t *testing.T) {
	tokens, _ := LexAll("_", "<test>")
	assert.Equal(t, token.Underscore, tokens[0].Type)
}

func TestLexIdentifierStartingWithUnderscore(t *testing.T) {
	tokens, _ := LexAll("_foo", "<test>")
	assert.Equal(t, token.Identifier, tokens[0].Type)
	assert.Equal(t, "_foo", tokens[0].Text)
}

func TestLexHoleAndSingleCharSymbols(t *testing.T) {
	tokens, _ := LexAll("% @ ! ? ~ ^", "<test>")
	assert.Equal(t, []token.Type{token.Hole, token.At, token.Bang, token.Question, token.Tilde, token.Caret, token.Eof}, typesOf(tokens))
}
