package musictheory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePitchText(t *testing.T) {
	cases := []struct {
		text string
		midi uint8
	}{
		{"c4", 60},
		{"a4", 69},
		{"f#3", 54},
		{"Bb5", 82},
	}
	for _, c := range cases {
		midi, ok := ParsePitchText(c.text)
		assert.True(t, ok, c.text)
		assert.Equal(t, c.midi, midi, c.text)
	}
}

func TestParseChordText(t *testing.T) {
	root, intervals, ok := ParseChordText("c4:maj")
	assert.True(t, ok)
	assert.Equal(t, uint8(60), root)
	assert.Equal(t, []int8{0, 4, 7}, intervals)

	root, intervals, ok = ParseChordText("a3:min7")
	assert.True(t, ok)
	assert.Equal(t, uint8(57), root)
	assert.Equal(t, []int8{0, 3, 7, 10}, intervals)
}

func TestMIDIToHzA4(t *testing.T) {
	hz := MIDIToHz(69)
	assert.True(t, math.Abs(hz-440.0) < 1e-9)
}

func TestMIDIToHzA5(t *testing.T) {
	hz := MIDIToHz(81)
	assert.True(t, math.Abs(hz-880.0) < 1e-6)
}
