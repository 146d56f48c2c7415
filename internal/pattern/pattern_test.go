package pattern

import (
	"math/rand"
	"testing"

	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/miniparser"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalPattern(t *testing.T, src string, sampleOnly bool, cycle uint32, src2 rand.Source) EventStream {
	t.Helper()
	arena := ast.NewArena()
	root, diags := miniparser.Parse(src, arena, source.Zero, sampleOnly)
	require.Empty(t, diags)
	return NewEvaluator(arena, src2).Evaluate(root, cycle)
}

func TestEvaluateSamplesEvenlySubdivideCycle(t *testing.T) {
	stream := evalPattern(t, "bd sn hh cp", false, 0, nil)
	require.Len(t, stream.Events, 4)

	for i, e := range stream.Events {
		assert.InDelta(t, float32(i)*0.25, e.Time, 0.0001)
		assert.InDelta(t, 0.25, e.Duration, 0.0001)
		assert.True(t, e.IsSample())
	}
	assert.Equal(t, "bd", stream.Events[0].SampleName)
}

func TestEvaluateSequenceRotatesByCycle(t *testing.T) {
	stream0 := evalPattern(t, "<bd sn hh>", false, 0, nil)
	stream1 := evalPattern(t, "<bd sn hh>", false, 1, nil)
	stream2 := evalPattern(t, "<bd sn hh>", false, 2, nil)
	stream3 := evalPattern(t, "<bd sn hh>", false, 3, nil)

	require.Len(t, stream0.Events, 1)
	assert.Equal(t, "bd", stream0.Events[0].SampleName)
	assert.Equal(t, "sn", stream1.Events[0].SampleName)
	assert.Equal(t, "hh", stream2.Events[0].SampleName)
	assert.Equal(t, "bd", stream3.Events[0].SampleName) // wraps
}

func TestEvaluatePolyrhythmPlaysAllChildrenAtFullDuration(t *testing.T) {
	// Polyrhythm slots (grammar: `"[" choice {"," choice} "]"`) are
	// played simultaneously at the parent's full time span, not subdivided.
	stream := evalPattern(t, "[bd, sn]", false, 0, nil)
	require.Len(t, stream.Events, 2)
	for _, e := range stream.Events {
		assert.InDelta(t, 1.0, e.Duration, 0.0001)
		assert.InDelta(t, 0.0, e.Time, 0.0001)
	}
}

func TestEvaluateGroupNestsSubdivision(t *testing.T) {
	stream := evalPattern(t, "[bd sn] hh", false, 0, nil)
	require.Len(t, stream.Events, 3)
	assert.InDelta(t, 0.0, stream.Events[0].Time, 0.0001)
	assert.InDelta(t, 0.25, stream.Events[1].Time, 0.0001)
	assert.InDelta(t, 0.5, stream.Events[2].Time, 0.0001)
}

func TestEvaluateChoiceSelectsDeterministicallyWithFixedSeed(t *testing.T) {
	a := evalPattern(t, "bd|sn|hh", false, 0, rand.NewSource(42))
	b := evalPattern(t, "bd|sn|hh", false, 0, rand.NewSource(42))
	require.Len(t, a.Events, 1)
	require.Len(t, b.Events, 1)
	assert.Equal(t, a.Events[0].SampleName, b.Events[0].SampleName)
}

func TestEvaluateSpeedModifierShrinksDuration(t *testing.T) {
	stream := evalPattern(t, "bd*2", false, 0, nil)
	require.Len(t, stream.Events, 1)
	assert.InDelta(t, 0.5, stream.Events[0].Duration, 0.0001)
}

func TestEvaluateSlowModifierGrowsDuration(t *testing.T) {
	stream := evalPattern(t, "bd/2", false, 0, nil)
	require.Len(t, stream.Events, 1)
	assert.InDelta(t, 2.0, stream.Events[0].Duration, 0.0001)
}

func TestEvaluateRepeatModifierSplitsSpanEvenly(t *testing.T) {
	stream := evalPattern(t, "bd!3", false, 0, nil)
	require.Len(t, stream.Events, 3)
	for i, e := range stream.Events {
		assert.InDelta(t, float32(i)/3.0, e.Time, 0.0001)
		assert.InDelta(t, 1.0/3.0, e.Duration, 0.0001)
	}
}

func TestEvaluateChanceModifierSetsChanceField(t *testing.T) {
	stream := evalPattern(t, "bd?", false, 0, nil)
	require.Len(t, stream.Events, 1)
	assert.Equal(t, float32(0.5), stream.Events[0].Chance)
}

func TestEvaluatePitchEventCarriesMIDINote(t *testing.T) {
	stream := evalPattern(t, "c4 e4 g4", false, 0, nil)
	require.Len(t, stream.Events, 3)
	assert.True(t, stream.Events[0].IsPitch())
	assert.EqualValues(t, 60, stream.Events[0].MIDINote)
}

func TestEvaluateRestProducesNoTrigger(t *testing.T) {
	stream := evalPattern(t, "bd ~ sn", false, 0, nil)
	require.Len(t, stream.Events, 3)
	assert.True(t, stream.Events[1].IsRest())
}

func TestEvaluateEmptyPatternProducesEmptyStream(t *testing.T) {
	stream := evalPattern(t, "", false, 0, nil)
	assert.True(t, stream.Empty())
}

func TestGenerateEuclideanClassicTresillo(t *testing.T) {
	hits := GenerateEuclidean(3, 8, 0)
	require.Len(t, hits, 8)
	// Canonical E(3,8): X..X..X.
	assert.Equal(t, []bool{true, false, false, true, false, false, true, false}, hits)
}

func TestGenerateEuclideanAllHitsWhenHitsGreaterThanSteps(t *testing.T) {
	hits := GenerateEuclidean(8, 4, 0)
	require.Len(t, hits, 4)
	for _, h := range hits {
		assert.True(t, h)
	}
}

func TestGenerateEuclideanNoHitsWhenZero(t *testing.T) {
	hits := GenerateEuclidean(0, 4, 0)
	require.Len(t, hits, 4)
	for _, h := range hits {
		assert.False(t, h)
	}
}

func TestGenerateEuclideanZeroStepsIsEmpty(t *testing.T) {
	assert.Empty(t, GenerateEuclidean(3, 0, 0))
}

func TestEvaluateEuclideanRhythmTriggersOnlyHitSteps(t *testing.T) {
	stream := evalPattern(t, "bd(3,8)", false, 0, nil)
	require.Len(t, stream.Events, 3)
	assert.InDelta(t, 0.0, stream.Events[0].Time, 0.0001)
	assert.InDelta(t, 3.0/8.0, stream.Events[1].Time, 0.0001)
	assert.InDelta(t, 6.0/8.0, stream.Events[2].Time, 0.0001)
}
