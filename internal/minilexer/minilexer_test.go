package minilexer

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/minitoken"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(pattern string, sampleOnly bool) []minitoken.Token {
	return New(pattern, source.Location{Line: 1, Column: 1}, sampleOnly).LexAll()
}

func TestLexDrumPattern(t *testing.T) {
	tokens := lexAll("bd sd bd sd", false)
	require.Len(t, tokens, 5)
	for i := 0; i < 4; i++ {
		assert.Equal(t, minitoken.SampleToken, tokens[i].Type)
	}
}

func TestLexMelodicSequence(t *testing.T) {
	tokens := lexAll("c4 e4 g4", false)
	require.Len(t, tokens, 4)
	assert.Equal(t, minitoken.PitchToken, tokens[0].Type)
	assert.Equal(t, uint8(60), tokens[0].Pitch.MIDINote)
	assert.True(t, tokens[0].Pitch.HasOctave)
}

func TestLexDefaultOctave(t *testing.T) {
	tokens := lexAll("c", false)
	require.Equal(t, minitoken.PitchToken, tokens[0].Type)
	assert.Equal(t, uint8(60), tokens[0].Pitch.MIDINote)
	assert.False(t, tokens[0].Pitch.HasOctave)
}

func TestLexSampleWithVariant(t *testing.T) {
	tokens := lexAll("cp:2", false)
	require.Equal(t, minitoken.SampleToken, tokens[0].Type)
	assert.Equal(t, "cp", tokens[0].Sample.Name)
	assert.Equal(t, uint8(2), tokens[0].Sample.Variant)
}

func TestLexSubdivisionAndAlternation(t *testing.T) {
	tokens := lexAll("[bd sd] hh", false)
	assert.Equal(t, minitoken.LBracket, tokens[0].Type)
	assert.Equal(t, minitoken.SampleToken, tokens[1].Type)
	assert.Equal(t, minitoken.SampleToken, tokens[2].Type)
	assert.Equal(t, minitoken.RBracket, tokens[3].Type)
	assert.Equal(t, minitoken.SampleToken, tokens[4].Type)
}

func TestLexSpeedModifier(t *testing.T) {
	tokens := lexAll("bd*2", false)
	assert.Equal(t, []minitoken.Type{minitoken.SampleToken, minitoken.Star, minitoken.Number, minitoken.Eof},
		[]minitoken.Type{tokens[0].Type, tokens[1].Type, tokens[2].Type, tokens[3].Type})
}

func TestLexEuclideanArgs(t *testing.T) {
	tokens := lexAll("bd(3,8)", false)
	assert.Equal(t, minitoken.SampleToken, tokens[0].Type)
	assert.Equal(t, minitoken.LParen, tokens[1].Type)
	assert.Equal(t, minitoken.Number, tokens[2].Type)
	assert.Equal(t, minitoken.Comma, tokens[3].Type)
	assert.Equal(t, minitoken.Number, tokens[4].Type)
	assert.Equal(t, minitoken.RParen, tokens[5].Type)
}

func TestLexRest(t *testing.T) {
	tokens := lexAll("bd ~ sd _", false)
	assert.Equal(t, minitoken.Rest, tokens[1].Type)
	assert.Equal(t, minitoken.Rest, tokens[3].Type)
}

func TestLexSampleOnlyTreatsChordsAsChordTokens(t *testing.T) {
	tokens := lexAll("C7 Am", true)
	require.Equal(t, minitoken.ChordToken, tokens[0].Type)
	assert.Equal(t, []int8{0, 4, 7, 10}, tokens[0].Chord.Intervals)
	require.Equal(t, minitoken.ChordToken, tokens[1].Type)
	assert.Equal(t, []int8{0, 3, 7}, tokens[1].Chord.Intervals)
}

func TestLexFlatVersusSampleDisambiguation(t *testing.T) {
	// "bd" must not be parsed as pitch b-flat followed by 'd'.
	tokens := lexAll("bd", false)
	require.Equal(t, minitoken.SampleToken, tokens[0].Type)
	assert.Equal(t, "bd", tokens[0].Sample.Name)
}

func TestLexLocationOffsetFromBase(t *testing.T) {
	base := source.Location{Line: 3, Column: 10, Offset: 100}
	tokens := New("bd sd", base, false).LexAll()
	assert.Equal(t, uint32(3), tokens[0].Location.Line)
	assert.Equal(t, uint32(10), tokens[0].Location.Column)
	assert.Equal(t, uint32(100), tokens[0].Location.Offset)
	assert.Equal(t, uint32(13), tokens[1].Location.Column)
}
