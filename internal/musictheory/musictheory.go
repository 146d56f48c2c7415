// Package musictheory converts pitch-name and chord-symbol text (as found
// inside quoted literals and mini-notation note patterns) into MIDI note
// numbers and interval sets, and converts MIDI notes to frequency.
package musictheory

import (
	"math"
	"strings"
)

// noteSemitones maps a note letter to its semitone offset above C.
var noteSemitones = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// chordIntervals maps a chord quality name to its semitone intervals above
// the root. This is the union of the short canonical table and the fuller
// set of alternate notations (Strudel-style "^7", jazz "-7"/"o7"/"0", etc.).
var chordIntervals = map[string][]int8{
	// Triads
	"":     {0, 4, 7},
	"maj":  {0, 4, 7},
	"M":    {0, 4, 7},
	"m":    {0, 3, 7},
	"min":  {0, 3, 7},
	"-":    {0, 3, 7},
	"dim":  {0, 3, 6},
	"o":    {0, 3, 6},
	"aug":  {0, 4, 8},
	"+":    {0, 4, 8},
	"sus2": {0, 2, 7},
	"sus4": {0, 5, 7},
	"sus":  {0, 5, 7},

	// Seventh chords
	"7":      {0, 4, 7, 10},
	"dom7":   {0, 4, 7, 10},
	"M7":     {0, 4, 7, 11},
	"maj7":   {0, 4, 7, 11},
	"^":      {0, 4, 7, 11},
	"^7":     {0, 4, 7, 11},
	"m7":     {0, 3, 7, 10},
	"min7":   {0, 3, 7, 10},
	"-7":     {0, 3, 7, 10},
	"dim7":   {0, 3, 6, 9},
	"o7":     {0, 3, 6, 9},
	"m7b5":   {0, 3, 6, 10},
	"0":      {0, 3, 6, 10},
	"aug7":   {0, 4, 8, 10},
	"+7":     {0, 4, 8, 10},
	"mM7":    {0, 3, 7, 11},
	"m^7":    {0, 3, 7, 11},
	"minmaj7": {0, 3, 7, 11},

	// Extended / sixth chords
	"6":     {0, 4, 7, 9},
	"m6":    {0, 3, 7, 9},
	"min6":  {0, 3, 7, 9},
	"9":     {0, 4, 7, 10, 14},
	"M9":    {0, 4, 7, 11, 14},
	"maj9":  {0, 4, 7, 11, 14},
	"m9":    {0, 3, 7, 10, 14},
	"min9":  {0, 3, 7, 10, 14},
	"add9":  {0, 4, 7, 14},
	"add2":  {0, 2, 4, 7},
	"11":    {0, 4, 7, 10, 14, 17},
	"m11":   {0, 3, 7, 10, 14, 17},
	"13":    {0, 4, 7, 10, 14, 21},

	// Power chord
	"5": {0, 7},
}

// LookupChord returns the interval set for a chord quality name, and
// whether it was found. An unknown quality is the caller's responsibility
// to default (conventionally to a major triad).
func LookupChord(quality string) ([]int8, bool) {
	iv, ok := chordIntervals[quality]
	return iv, ok
}

// NoteToMIDI converts a note letter ('a'-'g', case-insensitive), an
// accidental count (positive for sharps, negative for flats), and an
// octave number to a MIDI note, clamped to [0, 127].
func NoteToMIDI(letter byte, accidentals, octave int) (uint8, bool) {
	semitone, ok := noteSemitones[toLower(letter)]
	if !ok {
		return 0, false
	}
	midi := (octave+1)*12 + semitone + accidentals
	if midi < 0 {
		midi = 0
	}
	if midi > 127 {
		midi = 127
	}
	return uint8(midi), true
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// MIDIToHz converts a MIDI note number to frequency using A4 = 440Hz
// twelve-tone equal temperament: 440 * 2^((note-69)/12).
func MIDIToHz(note uint8) float64 {
	return 440.0 * math.Exp2((float64(note)-69.0)/12.0)
}

// ParsePitchText parses note-name text of the form "c4", "f#3", "Bb5":
// one letter, zero or more '#'/'b' accidentals, then an octave number.
// Returns false if text doesn't match this shape.
func ParsePitchText(text string) (midi uint8, ok bool) {
	if text == "" {
		return 0, false
	}
	letter := text[0]
	if !isNoteLetter(letter) {
		return 0, false
	}
	i := 1
	accidentals := 0
	for i < len(text) && (text[i] == '#' || text[i] == 'b') {
		if text[i] == '#' {
			accidentals++
		} else {
			accidentals--
		}
		i++
	}
	if i >= len(text) {
		return 0, false
	}
	octaveText := text[i:]
	octave, ok := parseSignedInt(octaveText)
	if !ok {
		return 0, false
	}
	return mustMIDI(letter, accidentals, octave)
}

// ParseChordText parses chord-symbol text of the form "c4:maj",
// "a3:min7": a pitch prefix, a colon, then a chord quality name. Returns
// the root MIDI note and interval set, or false if text doesn't match.
func ParseChordText(text string) (rootMIDI uint8, intervals []int8, ok bool) {
	idx := strings.IndexByte(text, ':')
	if idx < 0 {
		return 0, nil, false
	}
	root, ok := ParsePitchText(text[:idx])
	if !ok {
		return 0, nil, false
	}
	quality := text[idx+1:]
	iv, found := LookupChord(quality)
	if !found {
		iv = chordIntervals[""]
	}
	return root, iv, true
}

func isNoteLetter(c byte) bool {
	l := toLower(c)
	return l >= 'a' && l <= 'g'
}

func parseSignedInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i++
	}
	if i >= len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

func mustMIDI(letter byte, accidentals, octave int) (uint8, bool) {
	return NoteToMIDI(letter, accidentals, octave)
}
