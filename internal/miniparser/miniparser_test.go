package miniparser

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePattern(t *testing.T, pattern string, sampleOnly bool) (*ast.Arena, ast.Index, []string) {
	t.Helper()
	arena := ast.NewArena()
	root, diags := Parse(pattern, arena, source.Zero, sampleOnly)
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.Message
	}
	return arena, root, msgs
}

func TestParseSequenceOfSamples(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd sn", false)
	require.Empty(t, errs)

	require.Equal(t, ast.MiniPattern, arena.Get(root).Type)
	children := arena.Children(root)
	require.Len(t, children, 2)

	first := arena.Get(children[0])
	require.Equal(t, ast.MiniAtom, first.Type)
	assert.Equal(t, ast.MiniAtomSample, first.AsMiniAtom().Kind)
	assert.Equal(t, "bd", first.AsMiniAtom().SampleName)
}

func TestParseChoiceBetweenAtoms(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd|sn", false)
	require.Empty(t, errs)

	choice := arena.Get(arena.Children(root)[0])
	require.Equal(t, ast.MiniChoice, choice.Type)
	assert.Equal(t, 2, arena.ChildCount(arena.Children(root)[0]))
}

func TestParseGroupWithoutComma(t *testing.T) {
	arena, root, errs := parsePattern(t, "[bd sn]", false)
	require.Empty(t, errs)

	groupIdx := arena.Children(root)[0]
	group := arena.Get(groupIdx)
	require.Equal(t, ast.MiniGroup, group.Type)
	assert.Equal(t, 2, arena.ChildCount(groupIdx))
}

func TestParseGroupWithCommaIsPolyrhythm(t *testing.T) {
	arena, root, errs := parsePattern(t, "[bd, sn]", false)
	require.Empty(t, errs)

	groupIdx := arena.Children(root)[0]
	group := arena.Get(groupIdx)
	require.Equal(t, ast.MiniPolyrhythm, group.Type)
	assert.Equal(t, 2, arena.ChildCount(groupIdx))
}

func TestParseSequenceAngleBrackets(t *testing.T) {
	arena, root, errs := parsePattern(t, "<bd sn>", false)
	require.Empty(t, errs)

	seqIdx := arena.Children(root)[0]
	assert.Equal(t, ast.MiniSequence, arena.Get(seqIdx).Type)
	assert.Equal(t, 2, arena.ChildCount(seqIdx))
}

func TestParsePolymeterWithStepCount(t *testing.T) {
	arena, root, errs := parsePattern(t, "{bd sn}%3", false)
	require.Empty(t, errs)

	polyIdx := arena.Children(root)[0]
	poly := arena.Get(polyIdx)
	require.Equal(t, ast.MiniPolymeter, poly.Type)
	assert.EqualValues(t, 3, poly.AsMiniPolymeter().StepCount)
	assert.Equal(t, 2, arena.ChildCount(polyIdx))
}

func TestParsePolymeterWithoutStepCountDefaultsZero(t *testing.T) {
	arena, root, errs := parsePattern(t, "{bd sn}", false)
	require.Empty(t, errs)

	polyIdx := arena.Children(root)[0]
	assert.EqualValues(t, 0, arena.Get(polyIdx).AsMiniPolymeter().StepCount)
}

func TestParseEuclideanRhythm(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd(3,8)", false)
	require.Empty(t, errs)

	eucIdx := arena.Children(root)[0]
	euc := arena.Get(eucIdx)
	require.Equal(t, ast.MiniEuclidean, euc.Type)
	data := euc.AsMiniEuclidean()
	assert.EqualValues(t, 3, data.Hits)
	assert.EqualValues(t, 8, data.Steps)
	assert.EqualValues(t, 0, data.Rotation)
	assert.Equal(t, 1, arena.ChildCount(eucIdx))
}

func TestParseEuclideanWithRotation(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd(3,8,1)", false)
	require.Empty(t, errs)

	eucIdx := arena.Children(root)[0]
	assert.EqualValues(t, 1, arena.Get(eucIdx).AsMiniEuclidean().Rotation)
}

func TestParseSpeedModifierWithExplicitValue(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd*2", false)
	require.Empty(t, errs)

	modIdx := arena.Children(root)[0]
	mod := arena.Get(modIdx)
	require.Equal(t, ast.MiniModified, mod.Type)
	data := mod.AsMiniModifier()
	assert.Equal(t, ast.ModSpeed, data.ModifierType)
	assert.Equal(t, float32(2.0), data.Value)
}

func TestParseRepeatModifierDefaultsToTwo(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd!", false)
	require.Empty(t, errs)

	modIdx := arena.Children(root)[0]
	data := arena.Get(modIdx).AsMiniModifier()
	assert.Equal(t, ast.ModRepeat, data.ModifierType)
	assert.Equal(t, float32(2.0), data.Value)
}

func TestParseChanceModifierDefaultsToHalf(t *testing.T) {
	arena, root, errs := parsePattern(t, "bd?", false)
	require.Empty(t, errs)

	modIdx := arena.Children(root)[0]
	data := arena.Get(modIdx).AsMiniModifier()
	assert.Equal(t, ast.ModChance, data.ModifierType)
	assert.Equal(t, float32(0.5), data.Value)
}

func TestParseStackedModifiersWrapAtomRepeatedly(t *testing.T) {
	// bd*2:3 wraps bd in a Speed modifier, then wraps that in a
	// Duration modifier - the outer node is the last one applied.
	arena, root, errs := parsePattern(t, "bd*2:3", false)
	require.Empty(t, errs)

	outerIdx := arena.Children(root)[0]
	outer := arena.Get(outerIdx)
	require.Equal(t, ast.MiniModified, outer.Type)
	assert.Equal(t, ast.ModDuration, outer.AsMiniModifier().ModifierType)

	innerIdx := outer.FirstChild
	inner := arena.Get(innerIdx)
	require.Equal(t, ast.MiniModified, inner.Type)
	assert.Equal(t, ast.ModSpeed, inner.AsMiniModifier().ModifierType)
}

func TestParseRestTokens(t *testing.T) {
	arena, root, errs := parsePattern(t, "~ _", false)
	require.Empty(t, errs)

	children := arena.Children(root)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.Equal(t, ast.MiniAtomRest, arena.Get(c).AsMiniAtom().Kind)
	}
}

func TestParsePitchAtomNotSampleOnly(t *testing.T) {
	arena, root, errs := parsePattern(t, "c4", false)
	require.Empty(t, errs)

	atom := arena.Get(arena.Children(root)[0])
	require.Equal(t, ast.MiniAtomPitch, atom.AsMiniAtom().Kind)
	assert.EqualValues(t, 60, atom.AsMiniAtom().MIDINote)
}

func TestParseChordAtomInSampleOnlyMode(t *testing.T) {
	// note()'s progression patterns set sample_only so bare words like
	// "Am" lex as chord symbols rather than pitch attempts.
	arena, root, errs := parsePattern(t, "Am", true)
	require.Empty(t, errs)

	atom := arena.Get(arena.Children(root)[0])
	data := atom.AsMiniAtom()
	require.Equal(t, ast.MiniAtomChord, data.Kind)
	assert.Len(t, data.ChordIntervals, 3)
}

func TestParseEmptyPatternProducesEmptyMiniPattern(t *testing.T) {
	arena, root, errs := parsePattern(t, "", false)
	require.Empty(t, errs)

	assert.Equal(t, ast.MiniPattern, arena.Get(root).Type)
	assert.Equal(t, 0, arena.ChildCount(root))
}

func TestParseMissingCloseBracketProducesDiagnostic(t *testing.T) {
	_, _, errs := parsePattern(t, "[bd sn", false)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "]")
}

func TestParseNestedGroupInsideSequence(t *testing.T) {
	arena, root, errs := parsePattern(t, "<[bd sn] cp>", false)
	require.Empty(t, errs)

	seqIdx := arena.Children(root)[0]
	require.Equal(t, ast.MiniSequence, arena.Get(seqIdx).Type)

	seqChildren := arena.Children(seqIdx)
	require.Len(t, seqChildren, 2)
	assert.Equal(t, ast.MiniGroup, arena.Get(seqChildren[0]).Type)
}
